// Package invoicing turns unbilled treatments into invoices, one invoice per
// client per run.
package invoicing

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"billing-backend/internal/apperr"
	"billing-backend/internal/billing"
	"billing-backend/internal/models"
	"billing-backend/internal/store"
)

const (
	ReasonNotFound   = "not_found"
	ReasonValidation = "validation"
	ReasonConflict   = "conflict"
)

// Store is the part of the entity store the generator needs.
type Store interface {
	ListEligible(ctx context.Context, from, to *models.Date) ([]models.Treatment, error)
	MethodsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.TreatmentMethod, error)
	CommitInvoice(ctx context.Context, draft store.InvoiceDraft) (store.CommitResult, error)
	RecordRun(ctx context.Context, run *models.GenerationRun) error
}

// Notifier is told about every invoice a run creates. Calls happen in the
// background after the run returns.
type Notifier interface {
	NotifyInvoice(ctx context.Context, invoice models.Invoice) error
}

type Skipped struct {
	TreatmentID uuid.UUID `json:"treatment_id"`
	ClientID    uuid.UUID `json:"client_id"`
	Reason      string    `json:"reason"`
	Message     string    `json:"message"`
}

type Result struct {
	RunID    uuid.UUID        `json:"run_id"`
	Period   Period           `json:"period"`
	Invoices []models.Invoice `json:"invoices"`
	Skipped  []Skipped        `json:"skipped"`
}

type Generator struct {
	Store    Store
	Workers  int
	Notifier Notifier
	now      func() time.Time
}

func NewGenerator(s Store, workers int, notifier Notifier) *Generator {
	if workers < 1 {
		workers = 1
	}
	return &Generator{Store: s, Workers: workers, Notifier: notifier, now: time.Now}
}

func (g *Generator) Now() time.Time {
	if g.now == nil {
		return time.Now()
	}
	return g.now()
}

type clientBatch struct {
	clientID   uuid.UUID
	treatments []models.Treatment
}

type clientOutcome struct {
	invoice *models.Invoice
	skipped []Skipped
}

// Generate bills every unbilled treatment in period. Treatments that cannot
// be priced are skipped and reported; the rest of their client's treatments
// are still invoiced. Each client's invoice commits on its own, so a storage
// failure stops the run but keeps invoices already written for other
// clients. The partial result is returned together with the error.
func (g *Generator) Generate(ctx context.Context, period Period) (*Result, error) {
	result := &Result{Period: period, Invoices: []models.Invoice{}, Skipped: []Skipped{}}

	treatments, err := g.Store.ListEligible(ctx, period.From, period.To)
	if err != nil {
		g.record(ctx, result, err)
		return result, err
	}

	batches := groupByClient(treatments)
	if len(batches) == 0 {
		g.record(ctx, result, nil)
		return result, nil
	}

	methodIDs := make([]uuid.UUID, 0, len(treatments))
	for _, treatment := range treatments {
		methodIDs = append(methodIDs, treatment.TreatmentMethodID)
	}
	methods, err := g.Store.MethodsByID(ctx, methodIDs)
	if err != nil {
		g.record(ctx, result, err)
		return result, err
	}

	invoiceDate := models.DateOf(g.Now())
	outcomes := make([]clientOutcome, len(batches))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	sem := make(chan struct{}, g.workers())

	for i, batch := range batches {
		wg.Add(1)
		go func(i int, batch clientBatch) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if runCtx.Err() != nil {
				return
			}

			outcome, err := g.billClient(runCtx, batch, methods, invoiceDate)
			outcomes[i] = outcome
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
					cancel()
				}
				mu.Unlock()
			}
		}(i, batch)
	}
	wg.Wait()

	if firstErr == nil {
		// The caller's own cancellation is a failure too.
		firstErr = ctx.Err()
	}

	for _, outcome := range outcomes {
		if outcome.invoice != nil {
			result.Invoices = append(result.Invoices, *outcome.invoice)
		}
		result.Skipped = append(result.Skipped, outcome.skipped...)
	}

	g.record(ctx, result, firstErr)
	g.notify(result.Invoices)

	if firstErr != nil {
		return result, firstErr
	}
	return result, nil
}

func (g *Generator) workers() int {
	if g.Workers < 1 {
		return 1
	}
	return g.Workers
}

// billClient prices one client's treatments and commits them as one invoice.
func (g *Generator) billClient(ctx context.Context, batch clientBatch, methods map[uuid.UUID]models.TreatmentMethod, invoiceDate models.Date) (clientOutcome, error) {
	var outcome clientOutcome
	draft := store.InvoiceDraft{ClientID: batch.clientID, InvoiceDate: invoiceDate}
	total := decimal.Zero

	for _, treatment := range batch.treatments {
		method, ok := methods[treatment.TreatmentMethodID]
		if !ok {
			outcome.skipped = append(outcome.skipped, Skipped{
				TreatmentID: treatment.ID,
				ClientID:    batch.clientID,
				Reason:      ReasonNotFound,
				Message:     "treatment method " + treatment.TreatmentMethodID.String() + " not found",
			})
			continue
		}

		line, err := billing.Price(treatment, method)
		if err != nil {
			outcome.skipped = append(outcome.skipped, Skipped{
				TreatmentID: treatment.ID,
				ClientID:    batch.clientID,
				Reason:      ReasonValidation,
				Message:     apperr.Message(err),
			})
			continue
		}
		if !billing.FitsAmount(total.Add(line.Amount)) {
			outcome.skipped = append(outcome.skipped, Skipped{
				TreatmentID: treatment.ID,
				ClientID:    batch.clientID,
				Reason:      ReasonValidation,
				Message:     "invoice total would exceed " + billing.MaxAmount.String(),
			})
			continue
		}
		total = total.Add(line.Amount)

		draft.Lines = append(draft.Lines, models.InvoiceLine{
			TreatmentID:   line.TreatmentID,
			TreatmentDate: line.TreatmentDate,
			Description:   line.Description,
			BillingType:   line.BillingType,
			Quantity:      line.Quantity,
			UnitRate:      line.UnitRate,
			Amount:        line.Amount,
		})
	}

	if len(draft.Lines) == 0 {
		return outcome, nil
	}

	committed, err := g.Store.CommitInvoice(ctx, draft)
	if err != nil {
		return outcome, err
	}
	for _, id := range committed.Conflicted {
		outcome.skipped = append(outcome.skipped, Skipped{
			TreatmentID: id,
			ClientID:    batch.clientID,
			Reason:      ReasonConflict,
			Message:     "treatment was billed by another run",
		})
	}
	outcome.invoice = committed.Invoice
	return outcome, nil
}

// groupByClient keeps the date order inside each client and orders clients
// by id so runs are reproducible.
func groupByClient(treatments []models.Treatment) []clientBatch {
	index := map[uuid.UUID]int{}
	var batches []clientBatch
	for _, treatment := range treatments {
		i, ok := index[treatment.ClientID]
		if !ok {
			i = len(batches)
			index[treatment.ClientID] = i
			batches = append(batches, clientBatch{clientID: treatment.ClientID})
		}
		batches[i].treatments = append(batches[i].treatments, treatment)
	}
	sort.Slice(batches, func(a, b int) bool {
		return batches[a].clientID.String() < batches[b].clientID.String()
	})
	return batches
}

// record writes the audit row for the run. A failure here is logged and
// does not undo the invoices already committed.
func (g *Generator) record(ctx context.Context, result *Result, runErr error) {
	skipped, err := json.Marshal(result.Skipped)
	if err != nil {
		slog.Error("Failed to encode skipped treatments", "error", err)
		skipped = []byte("[]")
	}

	run := models.GenerationRun{
		Period:       result.Period.Label,
		FromDate:     result.Period.From,
		ToDate:       result.Period.To,
		InvoiceCount: len(result.Invoices),
		SkippedCount: len(result.Skipped),
		Skipped:      skipped,
		Failed:       runErr != nil,
	}

	if err := g.Store.RecordRun(context.WithoutCancel(ctx), &run); err != nil {
		slog.Error("Failed to record generation run", "error", err, "period", run.Period)
		return
	}
	result.RunID = run.ID

	attrs := []any{"run_id", run.ID, "period", run.Period, "invoices", run.InvoiceCount, "skipped", run.SkippedCount}
	if runErr != nil {
		slog.Error("Invoice generation aborted", append(attrs, "error", runErr)...)
		return
	}
	slog.Info("Invoice generation finished", attrs...)
}

func (g *Generator) notify(invoices []models.Invoice) {
	if g.Notifier == nil {
		return
	}
	for _, invoice := range invoices {
		go func(invoice models.Invoice) {
			if err := g.Notifier.NotifyInvoice(context.Background(), invoice); err != nil {
				slog.Warn("Failed to send invoice notification", "invoice", invoice.InvoiceNumber, "error", err)
			}
		}(invoice)
	}
}
