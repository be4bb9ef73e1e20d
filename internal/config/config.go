package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env    string // application environment (e.g. "dev", "prod")
	Port   string // HTTP port to listen on
	DBUser string
	DBPass string // optional
	DBHost string
	DBPort string
	DBName string

	// Agent and root sessions are signed with independent secrets so a
	// leaked agent key can never mint a root cookie.
	AgentJWTSecret   string
	RootJWTSecret    string
	RootUsername     string
	RootPasswordHash string // bcrypt hash of the root password
	SessionTTLMin    int
	BcryptCost       int
	CookieSecure     bool

	LogLevel    string
	LogFormat   string // "json" or "console"
	RabbitMQURL string // empty disables publishing and the payment consumer
}

// Load reads the configuration and exits the process when a required
// variable is missing or malformed.
func Load() Config {
	cfg, err := FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	return cfg
}

// FromEnv reads configuration values from environment variables.  Every
// missing or malformed required variable is reported in the returned error.
func FromEnv() (Config, error) {
	r := &envReader{}
	cfg := Config{
		Env:              r.must("APP_ENV"),
		Port:             r.must("APP_PORT"),
		DBUser:           r.must("DB_USER"),
		DBPass:           os.Getenv("DB_PASS"),
		DBHost:           r.must("DB_HOST"),
		DBPort:           r.must("DB_PORT"),
		DBName:           r.must("DB_NAME"),
		AgentJWTSecret:   r.must("AGENT_JWT_SECRET"),
		RootJWTSecret:    r.must("ROOT_JWT_SECRET"),
		RootUsername:     r.must("ROOT_USERNAME"),
		RootPasswordHash: r.must("ROOT_PASSWORD_HASH"),
		SessionTTLMin:    r.mustInt("SESSION_TTL_MIN"),
		BcryptCost:       r.mustInt("BCRYPT_COST"),
		CookieSecure:     envBool("COOKIE_SECURE", false),
		LogLevel:         envStr("LOG_LEVEL", "info"),
		LogFormat:        envStr("LOG_FORMAT", "json"),
		RabbitMQURL:      os.Getenv("RABBITMQ_URL"),
	}
	if cfg.AgentJWTSecret != "" && cfg.AgentJWTSecret == cfg.RootJWTSecret {
		r.errs = append(r.errs, errors.New("AGENT_JWT_SECRET and ROOT_JWT_SECRET must differ"))
	}
	if cfg.SessionTTLMin < 0 {
		r.errs = append(r.errs, fmt.Errorf("SESSION_TTL_MIN must not be negative, got %d", cfg.SessionTTLMin))
	}
	return cfg, errors.Join(r.errs...)
}

// DSNAddr returns host:port of the database, used in startup logs.
func (c Config) DSNAddr() string { return c.DBHost + ":" + c.DBPort }

type envReader struct {
	errs []error
}

// must retrieves the value of a required environment variable.
func (r *envReader) must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		r.errs = append(r.errs, fmt.Errorf("missing required env var: %s", key))
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func (r *envReader) mustInt(key string) int {
	s := r.must(key)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid int for %s: %q", key, s))
	}
	return n
}
