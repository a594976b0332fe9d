package store

import (
	"context"

	"github.com/shopspring/decimal"

	"billing-backend/internal/apperr"
	"billing-backend/internal/models"
)

type Stats struct {
	Clients            int64           `json:"clients"`
	TreatmentMethods   int64           `json:"treatment_methods"`
	UnbilledTreatments int64           `json:"unbilled_treatments"`
	Invoices           int64           `json:"invoices"`
	OutstandingAmount  decimal.Decimal `json:"outstanding_amount"`
	PaidAmount         decimal.Decimal `json:"paid_amount"`
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	db := s.DB.WithContext(ctx)
	var stats Stats

	if err := db.Model(&models.Client{}).Count(&stats.Clients).Error; err != nil {
		return Stats{}, apperr.Storage("could not load dashboard", err)
	}
	if err := db.Model(&models.TreatmentMethod{}).Count(&stats.TreatmentMethods).Error; err != nil {
		return Stats{}, apperr.Storage("could not load dashboard", err)
	}
	if err := db.Model(&models.Treatment{}).Where("is_billed = ?", false).Count(&stats.UnbilledTreatments).Error; err != nil {
		return Stats{}, apperr.Storage("could not load dashboard", err)
	}
	if err := db.Model(&models.Invoice{}).Count(&stats.Invoices).Error; err != nil {
		return Stats{}, apperr.Storage("could not load dashboard", err)
	}

	var err error
	if stats.OutstandingAmount, err = s.sumInvoices(ctx, models.InvoiceUnpaid); err != nil {
		return Stats{}, err
	}
	if stats.PaidAmount, err = s.sumInvoices(ctx, models.InvoicePaid); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

func (s *Store) sumInvoices(ctx context.Context, status models.InvoiceStatus) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := s.DB.WithContext(ctx).Model(&models.Invoice{}).
		Where("status = ?", status).
		Select("COALESCE(SUM(total_amount), 0)").
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, apperr.Storage("could not load dashboard", err)
	}
	return total, nil
}
