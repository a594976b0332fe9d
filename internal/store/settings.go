package store

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"billing-backend/internal/apperr"
	"billing-backend/internal/models"
)

const (
	companyNameKey         = "company_name"
	companyAddressKey      = "company_address"
	companyEmailKey        = "company_email"
	companyPhoneKey        = "company_phone"
	companyIBANKey         = "company_iban"
	companyRegistrationKey = "company_registration_no"
	companyVatKey          = "company_vat_no"
	companyCurrencyKey     = "company_currency"

	defaultCurrency = "EUR"
)

func (s *Store) Company(ctx context.Context) (models.Company, error) {
	var settings []models.Setting
	if err := s.DB.WithContext(ctx).Find(&settings).Error; err != nil {
		return models.Company{}, apperr.Storage("failed to load settings", err)
	}

	values := map[string]string{}
	for _, setting := range settings {
		values[setting.Key] = strings.TrimSpace(setting.Value)
	}

	company := models.Company{
		Name:           values[companyNameKey],
		Address:        values[companyAddressKey],
		Email:          values[companyEmailKey],
		Phone:          values[companyPhoneKey],
		IBAN:           values[companyIBANKey],
		RegistrationNo: values[companyRegistrationKey],
		VatNo:          values[companyVatKey],
		Currency:       values[companyCurrencyKey],
	}
	if company.Currency == "" {
		company.Currency = defaultCurrency
	}
	return company, nil
}

func (s *Store) SaveCompany(ctx context.Context, company models.Company) (models.Company, error) {
	company.Name = strings.TrimSpace(company.Name)
	if company.Name == "" {
		return models.Company{}, apperr.Validation("company name cannot be empty")
	}
	company.Currency = strings.ToUpper(strings.TrimSpace(company.Currency))
	if company.Currency == "" {
		company.Currency = defaultCurrency
	}

	updates := map[string]string{
		companyNameKey:         company.Name,
		companyAddressKey:      strings.TrimSpace(company.Address),
		companyEmailKey:        strings.TrimSpace(company.Email),
		companyPhoneKey:        strings.TrimSpace(company.Phone),
		companyIBANKey:         strings.TrimSpace(company.IBAN),
		companyRegistrationKey: strings.TrimSpace(company.RegistrationNo),
		companyVatKey:          strings.TrimSpace(company.VatNo),
		companyCurrencyKey:     company.Currency,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for key, value := range updates {
			setting := models.Setting{Key: key, Value: value}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&setting).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.Company{}, apperr.Storage("update failed", err)
	}

	return s.Company(ctx)
}
