package store

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"billing-backend/internal/apperr"
	"billing-backend/internal/billing"
	"billing-backend/internal/models"
)

type TreatmentInput struct {
	ClientID          uuid.UUID
	TreatmentMethodID uuid.UUID
	TreatmentDate     models.Date
	DurationHours     *decimal.Decimal
	Notes             string
}

type TreatmentFilter struct {
	ClientID *uuid.UUID
	Billed   *bool
}

// CreateTreatment rejects a treatment whose duration does not match the
// billing type of its method. Nothing is written when validation fails. The
// client row is held for the insert so a concurrent DeleteClient cannot
// leave the treatment orphaned.
func (s *Store) CreateTreatment(ctx context.Context, in TreatmentInput) (*models.Treatment, error) {
	if in.ClientID == uuid.Nil || in.TreatmentMethodID == uuid.Nil || in.TreatmentDate.IsZero() {
		return nil, apperr.Validation("Missing required fields: client_id, treatment_method_id, treatment_date")
	}

	var treatment models.Treatment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockClient(tx, in.ClientID); err != nil {
			return err
		}
		var method models.TreatmentMethod
		if err := tx.First(&method, "id = ?", in.TreatmentMethodID).Error; err != nil {
			return storageError(err, "treatment method not found", "Failed to retrieve treatment method")
		}

		switch method.BillingType {
		case models.BillingHourly:
			if in.DurationHours == nil {
				return apperr.Validation("duration_hours is required for hourly method %q", method.Name)
			}
			if err := billing.CheckDuration(*in.DurationHours); err != nil {
				return err
			}
		case models.BillingSession:
			if in.DurationHours != nil {
				return apperr.Validation("duration_hours must be empty for session method %q", method.Name)
			}
		}

		treatment = models.Treatment{
			ClientID:          in.ClientID,
			TreatmentMethodID: in.TreatmentMethodID,
			TreatmentDate:     in.TreatmentDate,
			DurationHours:     in.DurationHours,
			Notes:             strings.TrimSpace(in.Notes),
		}
		if err := tx.Create(&treatment).Error; err != nil {
			return apperr.Storage("Failed to add treatment", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &treatment, nil
}

func (s *Store) GetTreatment(ctx context.Context, id uuid.UUID) (*models.Treatment, error) {
	var treatment models.Treatment
	if err := s.DB.WithContext(ctx).First(&treatment, "id = ?", id).Error; err != nil {
		return nil, storageError(err, "treatment not found", "Failed to retrieve treatment")
	}
	return &treatment, nil
}

// ListTreatments returns treatments newest first with client and method
// names filled in. Deleted methods still contribute their name.
func (s *Store) ListTreatments(ctx context.Context, filter TreatmentFilter) ([]models.TreatmentView, error) {
	query := s.DB.WithContext(ctx).Order("treatment_date desc, created_at desc")
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.Billed != nil {
		query = query.Where("is_billed = ?", *filter.Billed)
	}

	var treatments []models.Treatment
	if err := query.Find(&treatments).Error; err != nil {
		return nil, apperr.Storage("Failed to retrieve treatments", err)
	}

	clientIDs := make([]uuid.UUID, 0, len(treatments))
	methodIDs := make([]uuid.UUID, 0, len(treatments))
	for _, treatment := range treatments {
		clientIDs = append(clientIDs, treatment.ClientID)
		methodIDs = append(methodIDs, treatment.TreatmentMethodID)
	}

	clients, err := s.clientsByID(ctx, clientIDs)
	if err != nil {
		return nil, err
	}
	methods, err := s.methodsByID(s.DB.WithContext(ctx).Unscoped(), methodIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.TreatmentView, 0, len(treatments))
	for _, treatment := range treatments {
		method := methods[treatment.TreatmentMethodID]
		views = append(views, models.TreatmentView{
			Treatment:   treatment,
			ClientName:  clients[treatment.ClientID].Name,
			MethodName:  method.Name,
			BillingType: method.BillingType,
			Rate:        method.Rate,
		})
	}
	return views, nil
}

// ListEligible returns unbilled treatments dated within [from, to]. A nil
// bound leaves that side open.
func (s *Store) ListEligible(ctx context.Context, from, to *models.Date) ([]models.Treatment, error) {
	query := s.DB.WithContext(ctx).
		Where("is_billed = ?", false).
		Order("treatment_date, created_at")
	if from != nil {
		query = query.Where("treatment_date >= ?", *from)
	}
	if to != nil {
		query = query.Where("treatment_date <= ?", *to)
	}

	treatments := []models.Treatment{}
	if err := query.Find(&treatments).Error; err != nil {
		return nil, apperr.Storage("Failed to retrieve unbilled treatments", err)
	}
	return treatments, nil
}

// DeleteTreatment removes an unbilled treatment. Billed treatments stay for
// the audit trail of their invoice.
func (s *Store) DeleteTreatment(ctx context.Context, id uuid.UUID) error {
	result := s.DB.WithContext(ctx).Where("id = ? AND is_billed = ?", id, false).Delete(&models.Treatment{})
	if result.Error != nil {
		return apperr.Storage("Failed to delete treatment", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	if _, err := s.GetTreatment(ctx, id); err != nil {
		return err
	}
	return apperr.Conflict("treatment is already billed and cannot be deleted")
}
