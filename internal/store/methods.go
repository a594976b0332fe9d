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

type MethodInput struct {
	Name        string
	BillingType models.BillingType
	Rate        *decimal.Decimal
}

func (in MethodInput) normalize() (MethodInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.BillingType = models.BillingType(strings.ToLower(strings.TrimSpace(string(in.BillingType))))

	if in.Name == "" || in.BillingType == "" || in.Rate == nil {
		return in, apperr.Validation("Missing required fields: name, billing_type, rate")
	}
	if !in.BillingType.Valid() {
		return in, apperr.Validation("Invalid billing_type. Must be 'hourly' or 'session'.")
	}
	if err := billing.CheckRate(*in.Rate); err != nil {
		return in, err
	}
	return in, nil
}

func (s *Store) CreateMethod(ctx context.Context, in MethodInput) (*models.TreatmentMethod, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	method := models.TreatmentMethod{Name: in.Name, BillingType: in.BillingType, Rate: *in.Rate}
	if err := s.DB.WithContext(ctx).Create(&method).Error; err != nil {
		return nil, apperr.Storage("Failed to add treatment method", err)
	}
	return &method, nil
}

func (s *Store) GetMethod(ctx context.Context, id uuid.UUID) (*models.TreatmentMethod, error) {
	var method models.TreatmentMethod
	if err := s.DB.WithContext(ctx).First(&method, "id = ?", id).Error; err != nil {
		return nil, storageError(err, "treatment method not found", "Failed to retrieve treatment method")
	}
	return &method, nil
}

func (s *Store) ListMethods(ctx context.Context) ([]models.TreatmentMethod, error) {
	methods := []models.TreatmentMethod{}
	if err := s.DB.WithContext(ctx).Order("name").Find(&methods).Error; err != nil {
		return nil, apperr.Storage("Failed to retrieve treatment methods", err)
	}
	return methods, nil
}

// UpdateMethod changes name and rate freely; already issued invoice lines
// keep their own copy of the rate. The billing type can only change while
// no unbilled treatment depends on it.
func (s *Store) UpdateMethod(ctx context.Context, id uuid.UUID, in MethodInput) (*models.TreatmentMethod, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	method, err := s.GetMethod(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.BillingType != method.BillingType {
		var pending int64
		if err := s.DB.WithContext(ctx).Model(&models.Treatment{}).
			Where("treatment_method_id = ? AND is_billed = ?", id, false).
			Count(&pending).Error; err != nil {
			return nil, apperr.Storage("Failed to update treatment method", err)
		}
		if pending > 0 {
			return nil, apperr.Conflict("billing_type of %q cannot change while %d unbilled treatments use it", method.Name, pending)
		}
	}

	method.Name = in.Name
	method.BillingType = in.BillingType
	method.Rate = *in.Rate
	if err := s.DB.WithContext(ctx).Save(method).Error; err != nil {
		return nil, apperr.Storage("Failed to update treatment method", err)
	}
	return method, nil
}

// DeleteMethod soft-deletes the method. Unbilled treatments that still point
// at it are skipped by invoice generation until they are re-registered.
func (s *Store) DeleteMethod(ctx context.Context, id uuid.UUID) error {
	result := s.DB.WithContext(ctx).Delete(&models.TreatmentMethod{}, "id = ?", id)
	if result.Error != nil {
		return apperr.Storage("Failed to delete treatment method", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("treatment method not found")
	}
	return nil
}

// MethodsByID returns the live methods among ids. Deleted or unknown ids are
// absent from the map.
func (s *Store) MethodsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.TreatmentMethod, error) {
	return s.methodsByID(s.DB.WithContext(ctx), ids)
}

func (s *Store) methodsByID(db *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]models.TreatmentMethod, error) {
	result := make(map[uuid.UUID]models.TreatmentMethod, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var methods []models.TreatmentMethod
	if err := db.Where("id IN ?", ids).Find(&methods).Error; err != nil {
		return nil, apperr.Storage("Failed to retrieve treatment methods", err)
	}
	for _, method := range methods {
		result[method.ID] = method
	}
	return result, nil
}
