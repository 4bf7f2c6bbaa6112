package app

import (
	"errors"
	"time"
)

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr string
	LogLevel string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// If true, /readyz returns 503 while the database is unreachable.
	ReadinessRequireDB bool

	// Token secrets. Both are required and must differ: one encrypts the
	// identity payload, the other signs the envelope.
	TokenEncryptSecret string
	TokenSignSecret    string

	// Externally reachable root of this service, used in emailed links.
	BaseURL string

	// SMTP relay. Empty SMTPAddr leaves email delivery disabled (no-op).
	SMTPAddr     string
	SMTPFrom     string
	SMTPUser     string
	SMTPPassword string
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr: EnvString("HEROSG_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel: EnvString("HEROSG_LOG_LEVEL", "info"),

		ReadHeaderTimeout: EnvDuration("HEROSG_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("HEROSG_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("HEROSG_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("HEROSG_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("HEROSG_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("HEROSG_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("HEROSG_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("HEROSG_DB_MIN_CONNS", 0),

		ReadinessRequireDB: EnvBool("HEROSG_READINESS_REQUIRE_DB", true),

		TokenEncryptSecret: EnvString("HEROSG_TOKEN_ENCRYPT_SECRET", ""),
		TokenSignSecret:    EnvString("HEROSG_TOKEN_SIGN_SECRET", ""),

		BaseURL: EnvString("HEROSG_BASE_URL", ""),

		SMTPAddr:     EnvString("HEROSG_SMTP_ADDR", ""),
		SMTPFrom:     EnvString("HEROSG_SMTP_FROM", ""),
		SMTPUser:     EnvString("HEROSG_SMTP_USER", ""),
		SMTPPassword: EnvString("HEROSG_SMTP_PASSWORD", ""),
	}
}

// Validate checks the settings the service cannot start without.
func (c Config) Validate() error {
	if c.TokenEncryptSecret == "" {
		return errors.New("HEROSG_TOKEN_ENCRYPT_SECRET is required")
	}
	if c.TokenSignSecret == "" {
		return errors.New("HEROSG_TOKEN_SIGN_SECRET is required")
	}
	if c.TokenEncryptSecret == c.TokenSignSecret {
		return errors.New("token encrypt and sign secrets must differ")
	}
	if c.DatabaseURL == "" {
		return errors.New("HEROSG_DATABASE_URL is required")
	}
	if c.SMTPAddr != "" && c.SMTPFrom == "" {
		return errors.New("HEROSG_SMTP_FROM is required when SMTP is configured")
	}
	return nil
}
