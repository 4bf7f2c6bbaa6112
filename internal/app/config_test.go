package app

import "testing"

func validConfig() Config {
	return Config{
		TokenEncryptSecret: "enc-secret",
		TokenSignSecret:    "sign-secret",
		DatabaseURL:        "postgres://localhost/herosg",
	}
}

func TestConfigValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing encrypt secret", func(c *Config) { c.TokenEncryptSecret = "" }},
		{"missing sign secret", func(c *Config) { c.TokenSignSecret = "" }},
		{"identical secrets", func(c *Config) { c.TokenSignSecret = c.TokenEncryptSecret }},
		{"missing database url", func(c *Config) { c.DatabaseURL = "" }},
		{"smtp without from", func(c *Config) { c.SMTPAddr = "smtp.example.com:587" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()
	if cfg.HTTPAddr == "" || cfg.LogLevel == "" {
		t.Fatalf("missing defaults: %+v", cfg)
	}
	if cfg.DBMaxConns <= 0 {
		t.Fatalf("DBMaxConns = %d", cfg.DBMaxConns)
	}
}
