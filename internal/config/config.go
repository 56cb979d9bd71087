// internal/config/config.go
//
// Process configuration for the game-session server.
// Responsibilities:
//   - Loading an optional .env file, then parsing environment variables into Config.
//   - Validating the service identities, tick length and secret-word mode.
//
// Notes:
//   - Real environment variables win over .env entries (godotenv never overrides).

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Secret word selection modes of the Wordle service.
const (
	ModeRandom = "random"
	ModeDaily  = "daily"
	ModeFixed  = "fixed"
)

// Config holds every tunable of the server.
type Config struct {
	Port         string `env:"PORT"          envDefault:"5175"`
	DBPath       string `env:"DB_PATH"       envDefault:"./data/app.db"`
	LogLevel     string `env:"LOG_LEVEL"     envDefault:"info"`
	LogFormat    string `env:"LOG_FORMAT"    envDefault:"json"`
	ClientOrigin string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`

	JWTSecret      string `env:"JWT_SECRET"       envDefault:"dev_secret_change_me"`
	JWTExpiresDays int    `env:"JWT_EXPIRES_DAYS" envDefault:"14"`
	CookieName     string `env:"COOKIE_NAME"      envDefault:"wordle_token"`
	Env            string `env:"NODE_ENV"         envDefault:"development"`

	SessionServiceID string        `env:"SESSION_SERVICE_ID" envDefault:"game-session"`
	WordleServiceID  string        `env:"WORDLE_SERVICE_ID,required"`
	Tick             time.Duration `env:"TICK_DURATION"      envDefault:"3s"`
	WordleReplyDelay time.Duration `env:"WORDLE_REPLY_DELAY" envDefault:"0s"`

	WordleMode        string `env:"WORDLE_MODE"         envDefault:"random"`
	WordleDailySalt   string `env:"WORDLE_DAILY_SALT"   envDefault:"wordle"`
	WordleFixedAnswer string `env:"WORDLE_FIXED_ANSWER"`

	AnswersFile string `env:"WORDS_ANSWERS_FILE"`
	AllowedFile string `env:"WORDS_ALLOWED_FILE"`
}

// Load reads .env (if any) and the environment, then validates the result.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv parses the current environment without touching .env.
func FromEnv() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first inconsistent setting.
func (c Config) Validate() error {
	switch {
	case c.WordleServiceID == "":
		return errors.New("config: WORDLE_SERVICE_ID is empty")
	case c.SessionServiceID == "":
		return errors.New("config: SESSION_SERVICE_ID is empty")
	case c.WordleServiceID == c.SessionServiceID:
		return fmt.Errorf("config: WORDLE_SERVICE_ID must differ from SESSION_SERVICE_ID (%q)", c.WordleServiceID)
	case c.Tick <= 0:
		return fmt.Errorf("config: TICK_DURATION must be positive, got %s", c.Tick)
	case c.WordleReplyDelay < 0:
		return fmt.Errorf("config: WORDLE_REPLY_DELAY must not be negative, got %s", c.WordleReplyDelay)
	}
	switch c.WordleMode {
	case ModeRandom, ModeDaily:
	case ModeFixed:
		if c.WordleFixedAnswer == "" {
			return errors.New("config: WORDLE_MODE=fixed needs WORDLE_FIXED_ANSWER")
		}
	default:
		return fmt.Errorf("config: unknown WORDLE_MODE %q", c.WordleMode)
	}
	return nil
}

// Production reports whether cookies must be Secure.
func (c Config) Production() bool { return c.Env == "production" }

// JWTTTL is the lifetime of issued tokens.
func (c Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTExpiresDays) * 24 * time.Hour
}
