package jwt

import "github.com/golang-jwt/jwt/v5"

// PlayerClaims identifies the account behind an API call.
type PlayerClaims struct {
	jwt.RegisteredClaims
	DisplayName string `json:"name,omitempty"`
	Role        string `json:"role"`
}

type Role string

const (
	RolePlayer    Role = "player"
	RoleSpectator Role = "spectator"
)
