package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv               string
	Addr                 string
	DbDriver             string
	DbDsn                string
	AllowedOriginsRaw    string
	RedisAddr            string
	DocumentCacheMinutes int
	InvoicePrefix        string
	InvoiceDueDays       int
	GenerationWorkers    int
	GenerationCron       string
	GenerationCronPeriod string
	SmtpHost             string
	SmtpPort             int
	SmtpUser             string
	SmtpPass             string
	SmtpFrom             string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppEnv:               getEnv("APP_ENV", "local"),
		Addr:                 getEnv("APP_ADDR", portAddr()),
		DbDriver:             getEnv("DB_DRIVER", "postgres"),
		DbDsn:                getEnv("DB_DSN", os.Getenv("DATABASE_URL")),
		AllowedOriginsRaw:    getEnv("ALLOWED_ORIGINS", frontendOrigins()),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		DocumentCacheMinutes: getEnvInt("DOCUMENT_CACHE_MINUTES", 60),
		InvoicePrefix:        getEnv("INVOICE_PREFIX", "FACT"),
		InvoiceDueDays:       getEnvInt("INVOICE_DUE_DAYS", 14),
		GenerationWorkers:    getEnvInt("GENERATION_WORKERS", 4),
		GenerationCron:       os.Getenv("GENERATION_CRON"),
		GenerationCronPeriod: getEnv("GENERATION_CRON_PERIOD", "last_month"),
		SmtpHost:             os.Getenv("SMTP_HOST"),
		SmtpPort:             getEnvInt("SMTP_PORT", 587),
		SmtpUser:             os.Getenv("SMTP_USER"),
		SmtpPass:             os.Getenv("SMTP_PASS"),
		SmtpFrom:             os.Getenv("SMTP_FROM"),
	}

	missing := []string{}
	if cfg.DbDsn == "" {
		missing = append(missing, "DB_DSN")
	}
	// Mail is optional, but a half-configured SMTP block is a mistake.
	if cfg.SmtpHost != "" {
		if cfg.SmtpUser == "" {
			missing = append(missing, "SMTP_USER")
		}
		if cfg.SmtpPass == "" {
			missing = append(missing, "SMTP_PASS")
		}
		if cfg.SmtpFrom == "" {
			missing = append(missing, "SMTP_FROM")
		}
	}

	if len(missing) > 0 {
		return cfg, errors.New("missing env: " + strings.Join(missing, ", "))
	}

	if cfg.GenerationWorkers < 1 {
		cfg.GenerationWorkers = 1
	}
	if cfg.InvoiceDueDays < 0 {
		cfg.InvoiceDueDays = 0
	}

	return cfg, nil
}

func (c Config) MailEnabled() bool {
	return c.SmtpHost != ""
}

func (c Config) AllowedOrigins() []string {
	origins := []string{}
	for _, origin := range strings.Split(c.AllowedOriginsRaw, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func portAddr() string {
	return ":" + getEnv("PORT", "5001")
}

func frontendOrigins() string {
	origins := []string{}
	if frontend := os.Getenv("FRONTEND_URL"); frontend != "" {
		origins = append(origins, frontend)
	}
	if render := os.Getenv("RENDER_FRONTEND_URL"); render != "" {
		origins = append(origins, render)
	}
	return strings.Join(origins, ",")
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
