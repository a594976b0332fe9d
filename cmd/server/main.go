package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"billing-backend/internal/config"
	"billing-backend/internal/db"
	"billing-backend/internal/documents"
	"billing-backend/internal/email"
	"billing-backend/internal/invoicing"
	"billing-backend/internal/routes"
	"billing-backend/internal/scheduler"
	"billing-backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	if cfg.AppEnv == "production" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
		gin.SetMode(gin.ReleaseMode)
	}
	decimal.MarshalJSONWithoutQuotes = true

	database, err := db.Open(cfg.DbDriver, cfg.DbDsn)
	if err != nil {
		log.Fatalf("db error: %v", err)
	}
	slog.Info("Database connected", "driver", cfg.DbDriver)

	entities := store.New(database, store.Options{
		InvoicePrefix: cfg.InvoicePrefix,
		DueDays:       cfg.InvoiceDueDays,
	})

	docs := documents.NewService(entities, documents.RedisCache{Client: connectRedis(cfg.RedisAddr)},
		time.Duration(cfg.DocumentCacheMinutes)*time.Minute)

	var notifier invoicing.Notifier
	if cfg.MailEnabled() {
		notifier = email.NewInvoiceNotifier(email.Config{
			Host:     cfg.SmtpHost,
			Port:     cfg.SmtpPort,
			Username: cfg.SmtpUser,
			Password: cfg.SmtpPass,
			From:     cfg.SmtpFrom,
		}, entities, docs)
	} else {
		slog.Warn("SMTP_HOST is not set, invoice mails are disabled")
	}

	generator := invoicing.NewGenerator(entities, cfg.GenerationWorkers, notifier)

	if cfg.GenerationCron != "" {
		job := scheduler.NewInvoiceGeneration(generator, cfg.GenerationCron, cfg.GenerationCronPeriod)
		cron, err := job.Start()
		if err != nil {
			log.Fatalf("scheduler error: %v", err)
		}
		defer cron.Stop()
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	routes.Register(router, routes.Services{
		Store:     entities,
		Generator: generator,
		Documents: docs,
	}, cfg)

	if err := router.Run(cfg.Addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// connectRedis returns nil when redis is not configured or unreachable;
// documents are then rendered on every request.
func connectRedis(addr string) *redis.Client {
	if addr == "" {
		slog.Warn("REDIS_ADDR is not set, document caching is disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		slog.Error("Could not connect to Redis", "error", err)
		_ = client.Close()
		return nil
	}

	slog.Info("Connected to Redis", "addr", addr)
	return client
}
