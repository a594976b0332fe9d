package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"billing-backend/internal/apperr"
	"billing-backend/internal/models"
)

// InvoiceDraft is an unsaved invoice for one client. Lines carry their
// treatment id and are claimed one by one on commit.
type InvoiceDraft struct {
	ClientID    uuid.UUID
	InvoiceDate models.Date
	Lines       []models.InvoiceLine
}

type CommitResult struct {
	// Invoice is nil when every treatment had already been claimed.
	Invoice *models.Invoice
	// Conflicted lists treatments another run billed first.
	Conflicted []uuid.UUID
}

type InvoiceFilter struct {
	ClientID *uuid.UUID
	Status   models.InvoiceStatus
}

var errNothingClaimed = errors.New("no treatment could be claimed")

// CommitInvoice claims the draft's treatments and persists the invoice in a
// single transaction. A treatment is claimed by flipping is_billed from false
// to true; when another run got there first the treatment is left out of the
// invoice and reported in Conflicted. The invoice total is the sum of the
// claimed lines only. If nothing is claimed, nothing is written.
func (s *Store) CommitInvoice(ctx context.Context, draft InvoiceDraft) (CommitResult, error) {
	var result CommitResult
	if len(draft.Lines) == 0 {
		return result, apperr.Validation("an invoice needs at least one line")
	}

	invoiceDate := draft.InvoiceDate
	if invoiceDate.IsZero() {
		invoiceDate = models.DateOf(s.now())
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result.Conflicted = nil
		invoiceID := uuid.New()

		claimed := make([]models.InvoiceLine, 0, len(draft.Lines))
		for _, line := range draft.Lines {
			update := tx.Model(&models.Treatment{}).
				Where("id = ? AND client_id = ? AND is_billed = ?", line.TreatmentID, draft.ClientID, false).
				Updates(map[string]interface{}{"is_billed": true, "invoice_id": invoiceID})
			if update.Error != nil {
				return update.Error
			}
			if update.RowsAffected == 0 {
				result.Conflicted = append(result.Conflicted, line.TreatmentID)
				continue
			}
			line.ID = uuid.Nil
			line.InvoiceID = invoiceID
			line.Position = len(claimed) + 1
			claimed = append(claimed, line)
		}
		if len(claimed) == 0 {
			return errNothingClaimed
		}

		number, err := s.nextInvoiceNumber(tx, invoiceDate.Year())
		if err != nil {
			return err
		}

		total := decimal.Zero
		for _, line := range claimed {
			total = total.Add(line.Amount)
		}

		invoice := models.Invoice{
			ID:            invoiceID,
			InvoiceNumber: number,
			ClientID:      draft.ClientID,
			InvoiceDate:   invoiceDate,
			DueDate:       invoiceDate.AddDays(s.opts.DueDays),
			TotalAmount:   total,
			Status:        models.InvoiceUnpaid,
			Lines:         claimed,
		}
		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}

		result.Invoice = &invoice
		return nil
	})

	if errors.Is(err, errNothingClaimed) {
		return CommitResult{Conflicted: result.Conflicted}, nil
	}
	if err != nil {
		return CommitResult{}, apperr.Storage("Failed to persist invoice", err)
	}
	return result, nil
}

// nextInvoiceNumber bumps the sequence for year inside tx. The conditional
// UPDATE takes the row lock, so concurrent transactions get distinct values.
func (s *Store) nextInvoiceNumber(tx *gorm.DB, year int) (string, error) {
	scope := strconv.Itoa(year)

	bump := func() (int64, error) {
		update := tx.Model(&models.InvoiceSequence{}).
			Where("scope = ?", scope).
			Update("last_value", gorm.Expr("last_value + ?", 1))
		return update.RowsAffected, update.Error
	}

	affected, err := bump()
	if err != nil {
		return "", err
	}
	if affected == 0 {
		seed := models.InvoiceSequence{Scope: scope, LastValue: 0}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return "", err
		}
		if affected, err = bump(); err != nil {
			return "", err
		}
		if affected == 0 {
			return "", fmt.Errorf("invoice sequence %s could not be advanced", scope)
		}
	}

	var sequence models.InvoiceSequence
	if err := tx.First(&sequence, "scope = ?", scope).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%03d", s.opts.InvoicePrefix, scope, sequence.LastValue), nil
}

func (s *Store) GetInvoice(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := s.DB.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&invoice, "id = ?", id).Error
	if err != nil {
		return nil, storageError(err, "invoice not found", "Failed to retrieve invoice")
	}

	var client models.Client
	if err := s.DB.WithContext(ctx).First(&client, "id = ?", invoice.ClientID).Error; err == nil {
		invoice.ClientName = client.Name
	}
	return &invoice, nil
}

func (s *Store) ListInvoices(ctx context.Context, filter InvoiceFilter) ([]models.Invoice, error) {
	query := s.DB.WithContext(ctx).Order("invoice_date desc, invoice_number desc")
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	invoices := []models.Invoice{}
	if err := query.Find(&invoices).Error; err != nil {
		return nil, apperr.Storage("Failed to retrieve invoices", err)
	}

	clientIDs := make([]uuid.UUID, 0, len(invoices))
	for _, invoice := range invoices {
		clientIDs = append(clientIDs, invoice.ClientID)
	}
	clients, err := s.clientsByID(ctx, clientIDs)
	if err != nil {
		return nil, err
	}
	for i := range invoices {
		invoices[i].ClientName = clients[invoices[i].ClientID].Name
	}
	return invoices, nil
}

// SetInvoiceStatus is the only mutation an invoice accepts after creation.
func (s *Store) SetInvoiceStatus(ctx context.Context, id uuid.UUID, status models.InvoiceStatus) (*models.Invoice, error) {
	if !status.Valid() {
		return nil, apperr.Validation("Invalid status. Must be 'unpaid' or 'paid'.")
	}

	invoice, err := s.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status == status {
		return invoice, nil
	}

	var paidAt *time.Time
	if status == models.InvoicePaid {
		now := s.now()
		paidAt = &now
	}

	if err := s.DB.WithContext(ctx).Model(&models.Invoice{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "paid_at": paidAt}).Error; err != nil {
		return nil, apperr.Storage("Failed to update invoice status", err)
	}

	invoice.Status = status
	invoice.PaidAt = paidAt
	return invoice, nil
}
