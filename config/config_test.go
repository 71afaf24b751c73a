package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tournamentdomain "github.com/Black-And-White-Club/cutline/app/modules/tournament/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"HTTP_ADDRESS", "ALLOWED_ORIGINS", "NATS_URL", "NATS_NKEY_SEED", "JWT_SECRET",
		"JWT_DEFAULT_TTL", "ENV", "LOG_LEVEL", "LOG_FORMAT", "OTLP_ENDPOINT", "OTLP_INSECURE",
		"STARTING_BALANCE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
http:
  address: ":9090"
nats:
  url: nats://file:4222
game:
  buy_in_options: [1, 3]
  lobby_timeout: 10s
variants:
  darts:
    entrants: 8
    total_rounds: 3
    house_rake: 0.05
    player_prefix: Thrower
    scores: {min: 0, max: 180}
    ranking:
      direction: higher_wins
      tie_breaks: [seed]
    cut:
      kind: survivor_table
      survivor_targets: {1: 4, 2: 2, 3: 1}
`)
	t.Setenv("NATS_URL", "nats://env:4222")
	t.Setenv("JWT_DEFAULT_TTL", "2h")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Address)
	assert.Equal(t, "nats://env:4222", cfg.NATS.URL)
	assert.Equal(t, 2*time.Hour, cfg.JWT.DefaultTTL)
	assert.Equal(t, []float64{1, 3}, cfg.Game.BuyInOptions)
	assert.Equal(t, 10*time.Second, cfg.Game.LobbyTimeout)
	assert.Equal(t, 30*time.Second, cfg.Game.PostRoundWait, "unset fields keep defaults")

	require.Len(t, cfg.Variants, 3)
	darts := cfg.Variants["darts"]
	assert.Equal(t, "darts", darts.Name)
	assert.Equal(t, map[int]int{1: 4, 2: 2, 3: 1}, darts.Cut.SurvivorTargets)
	assert.Equal(t, tournamentdomain.HigherWins, darts.Ranking.Direction)
	assert.Equal(t, tournamentdomain.GolfVariant(), cfg.Variants["golf"])
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{
			name: "malformed yaml",
			body: "http: [",
		},
		{
			name: "survivor table gap",
			body: `
variants:
  basketball:
    entrants: 10
    total_rounds: 4
    scores: {min: 5, max: 19}
    ranking: {direction: higher_wins}
    cut:
      kind: survivor_table
      survivor_targets: {1: 6, 2: 4, 4: 1}
`,
		},
		{
			name: "mismatched variant name",
			body: `
variants:
  golf:
    name: putting
    entrants: 4
    total_rounds: 2
    scores: {min: 1, max: 5}
    ranking: {direction: lower_wins}
    cut: {kind: proportional}
`,
		},
		{
			name: "empty buy-in options",
			body: "game:\n  buy_in_options: []\n",
		},
		{
			name: "bad env duration",
			body: "{}",
			env:  map[string]string{"JWT_DEFAULT_TTL": "soon"},
		},
		{
			name: "bad starting balance",
			body: "{}",
			env:  map[string]string{"STARTING_BALANCE": "lots"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}
