package config

import (
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"APP_ENV", "APP_ADDR", "PORT", "DB_DRIVER", "DB_DSN", "DATABASE_URL",
		"ALLOWED_ORIGINS", "FRONTEND_URL", "RENDER_FRONTEND_URL", "REDIS_ADDR",
		"DOCUMENT_CACHE_MINUTES", "INVOICE_PREFIX", "INVOICE_DUE_DAYS",
		"GENERATION_WORKERS", "GENERATION_CRON", "GENERATION_CRON_PERIOD",
		"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASS", "SMTP_FROM",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/billing")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.DbDsn != "postgres://localhost/billing" {
		t.Errorf("DbDsn = %q, want DATABASE_URL fallback", cfg.DbDsn)
	}
	if cfg.Addr != ":5001" {
		t.Errorf("Addr = %q, want :5001", cfg.Addr)
	}
	if cfg.DbDriver != "postgres" {
		t.Errorf("DbDriver = %q, want postgres", cfg.DbDriver)
	}
	if cfg.InvoicePrefix != "FACT" || cfg.InvoiceDueDays != 14 || cfg.GenerationWorkers != 4 {
		t.Errorf("unexpected invoice defaults: %+v", cfg)
	}
	if cfg.MailEnabled() {
		t.Errorf("mail should be disabled without SMTP_HOST")
	}
}

func TestLoadMissingDsn(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "DB_DSN") {
		t.Fatalf("Load() error = %v, want missing DB_DSN", err)
	}
}

func TestLoadPartialSmtp(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DSN", "file::memory:")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_USER", "mailer")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for partial SMTP config")
	}
	if !strings.Contains(err.Error(), "SMTP_PASS") || !strings.Contains(err.Error(), "SMTP_FROM") {
		t.Errorf("error %q should list SMTP_PASS and SMTP_FROM", err)
	}
}

func TestAllowedOriginsFromFrontendURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DSN", "dsn")
	t.Setenv("FRONTEND_URL", "http://localhost:3000")
	t.Setenv("RENDER_FRONTEND_URL", "https://billing.onrender.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	origins := cfg.AllowedOrigins()
	if len(origins) != 2 || origins[0] != "http://localhost:3000" || origins[1] != "https://billing.onrender.com" {
		t.Errorf("AllowedOrigins() = %v", origins)
	}
}

func TestGetEnvIntFallback(t *testing.T) {
	t.Setenv("GENERATION_WORKERS", "many")
	if got := getEnvInt("GENERATION_WORKERS", 4); got != 4 {
		t.Errorf("getEnvInt() = %d, want fallback 4", got)
	}
}
