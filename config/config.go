package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	tournamentdomain "github.com/Black-And-White-Club/cutline/app/modules/tournament/domain"
)

// Config struct to hold the configuration settings
type Config struct {
	HTTP          HTTPConfig                          `yaml:"http"`
	NATS          NATSConfig                          `yaml:"nats"`
	JWT           JWTConfig                           `yaml:"jwt"`
	Observability ObservabilityConfig                 `yaml:"observability"`
	Game          GameConfig                          `yaml:"game"`
	Variants      map[string]tournamentdomain.Variant `yaml:"variants"`
}

// HTTPConfig holds the API listener settings.
type HTTPConfig struct {
	Address        string   `yaml:"address"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	RateLimit      float64  `yaml:"rate_limit"`
	RateBurst      int      `yaml:"rate_burst"`
}

// NATSConfig holds NATS configuration. An empty URL keeps the event bus
// in process.
type NATSConfig struct {
	URL      string `yaml:"url"`
	NKeySeed string `yaml:"nkey_seed"`
}

// JWTConfig holds JWT configuration. An empty secret disables auth and
// every request runs as LocalAccount.
type JWTConfig struct {
	Secret       string        `yaml:"secret"`
	Issuer       string        `yaml:"issuer"`
	DefaultTTL   time.Duration `yaml:"default_ttl"`
	LocalAccount string        `yaml:"local_account"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	ServiceName    string `yaml:"service_name"`
	Environment    string `yaml:"environment"`
	LogLevel       string `yaml:"log_level"`
	LogFormat      string `yaml:"log_format"` // json|text
	MetricsEnabled bool   `yaml:"metrics_enabled"`
	// OTLPEndpoint enables trace export over gRPC when set.
	OTLPEndpoint    string  `yaml:"otlp_endpoint"`
	OTLPInsecure    bool    `yaml:"otlp_insecure"`
	TraceSampleRate float64 `yaml:"trace_sample_rate"`
}

// GameConfig holds contest tiers, the opening balance and phase timers.
type GameConfig struct {
	BuyInOptions      []float64     `yaml:"buy_in_options"`
	StartingBalance   float64       `yaml:"starting_balance"`
	FieldFillInterval time.Duration `yaml:"field_fill_interval"`
	LobbyTimeout      time.Duration `yaml:"lobby_timeout"`
	CutRevealDelay    time.Duration `yaml:"cut_reveal_delay"`
	PostRoundWait     time.Duration `yaml:"post_round_wait"`
}

// Default returns the stock configuration: both variants, in-process bus,
// no auth.
func Default() *Config {
	basketball := tournamentdomain.BasketballVariant()
	golf := tournamentdomain.GolfVariant()
	return &Config{
		HTTP: HTTPConfig{
			Address:   ":8080",
			RateLimit: 20,
			RateBurst: 40,
		},
		JWT: JWTConfig{
			Issuer:       "cutline",
			DefaultTTL:   24 * time.Hour,
			LocalAccount: "local",
		},
		Observability: ObservabilityConfig{
			ServiceName:     "cutline",
			Environment:     "development",
			LogLevel:        "info",
			LogFormat:       "json",
			MetricsEnabled:  true,
			TraceSampleRate: 1,
		},
		Game: GameConfig{
			BuyInOptions:      []float64{2, 5, 10, 20, 50},
			StartingBalance:   1000,
			FieldFillInterval: 300 * time.Millisecond,
			LobbyTimeout:      30 * time.Second,
			CutRevealDelay:    1500 * time.Millisecond,
			PostRoundWait:     30 * time.Second,
		},
		Variants: map[string]tournamentdomain.Variant{
			basketball.Name: basketball,
			golf.Name:       golf,
		},
	}
}

// LoadConfig loads the configuration from a YAML file over the defaults.
// A missing file falls back to defaults plus environment.
func LoadConfig(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides file values with environment variables when present.
func applyEnv(cfg *Config) error {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("NATS_NKEY_SEED"); v != "" {
		cfg.NATS.NKeySeed = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("JWT_DEFAULT_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid JWT_DEFAULT_TTL value: %w", err)
		}
		cfg.JWT.DefaultTTL = d
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
	if v := os.Getenv("OTLP_ENDPOINT"); v != "" {
		cfg.Observability.OTLPEndpoint = v
	}
	if v := os.Getenv("OTLP_INSECURE"); v != "" {
		cfg.Observability.OTLPInsecure = v == "true"
	}
	if v := os.Getenv("STARTING_BALANCE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid STARTING_BALANCE value: %w", err)
		}
		cfg.Game.StartingBalance = f
	}
	return nil
}

// Validate checks the game section and every variant. Variant names default
// to their map key.
func (c *Config) Validate() error {
	if len(c.Game.BuyInOptions) == 0 {
		return errors.New("game.buy_in_options must not be empty")
	}
	for _, b := range c.Game.BuyInOptions {
		if b <= 0 {
			return fmt.Errorf("game.buy_in_options: %v is not positive", b)
		}
	}
	if len(c.Variants) == 0 {
		return errors.New("at least one variant must be configured")
	}
	for key, v := range c.Variants {
		if v.Name == "" {
			v.Name = key
			c.Variants[key] = v
		}
		if v.Name != key {
			return fmt.Errorf("variant %q is named %q", key, v.Name)
		}
		if err := v.Validate(); err != nil {
			return fmt.Errorf("variant %s: %w", key, err)
		}
	}
	return nil
}
