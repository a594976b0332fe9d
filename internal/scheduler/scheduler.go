// Package scheduler runs invoice generation on a cron schedule.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"billing-backend/internal/invoicing"
)

type generator interface {
	Generate(ctx context.Context, period invoicing.Period) (*invoicing.Result, error)
	Now() time.Time
}

// InvoiceGeneration bills the configured period every time the cron
// expression fires.
type InvoiceGeneration struct {
	Generator generator
	Cron      string
	Period    string
}

func NewInvoiceGeneration(g generator, cron string, period string) *InvoiceGeneration {
	return &InvoiceGeneration{Generator: g, Cron: cron, Period: period}
}

// Start validates the period and schedules the job. Runs never overlap.
func (j *InvoiceGeneration) Start() (*gocron.Scheduler, error) {
	if _, err := invoicing.ParsePeriod(j.Period, "", "", time.Now()); err != nil {
		return nil, err
	}

	scheduler := gocron.NewScheduler(time.Local)
	_, err := scheduler.Cron(j.Cron).SingletonMode().Do(func() {
		if err := j.RunOnce(context.Background()); err != nil {
			slog.Error("Scheduled invoice generation failed", "error", err, "period", j.Period)
		}
	})
	if err != nil {
		return nil, err
	}

	scheduler.StartAsync()
	slog.Info("Invoice generation cron job started", "cron", j.Cron, "period", j.Period)
	return scheduler, nil
}

// RunOnce resolves the period against the current date and generates.
func (j *InvoiceGeneration) RunOnce(ctx context.Context) error {
	period, err := invoicing.ParsePeriod(j.Period, "", "", j.Generator.Now())
	if err != nil {
		return err
	}
	slog.Info("Running scheduled invoice generation", "period", period.Label)
	result, err := j.Generator.Generate(ctx, period)
	if err != nil {
		return err
	}
	slog.Info("Scheduled invoice generation done", "invoices", len(result.Invoices), "skipped", len(result.Skipped))
	return nil
}
