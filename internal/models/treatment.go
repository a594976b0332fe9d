package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Treatment struct {
	ID                uuid.UUID        `gorm:"type:char(36);primaryKey" json:"id"`
	ClientID          uuid.UUID        `gorm:"type:char(36);index;not null" json:"client_id"`
	TreatmentMethodID uuid.UUID        `gorm:"type:char(36);index;not null" json:"treatment_method_id"`
	TreatmentDate     Date             `gorm:"type:date;index;not null" json:"treatment_date"`
	DurationHours     *decimal.Decimal `gorm:"type:decimal(6,2)" json:"duration_hours"`
	Notes             string           `gorm:"type:text" json:"notes"`
	IsBilled          bool             `gorm:"index;not null;default:false" json:"is_billed"`
	InvoiceID         *uuid.UUID       `gorm:"type:char(36);index" json:"invoice_id,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

func (t *Treatment) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TreatmentView is a treatment joined with the names shown in listings.
type TreatmentView struct {
	Treatment
	ClientName  string          `json:"client_name"`
	MethodName  string          `json:"method_name"`
	BillingType BillingType     `json:"billing_type"`
	Rate        decimal.Decimal `json:"rate"`
}
