package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BillingType string

const (
	BillingHourly  BillingType = "hourly"
	BillingSession BillingType = "session"
)

func (b BillingType) Valid() bool {
	return b == BillingHourly || b == BillingSession
}

type TreatmentMethod struct {
	ID          uuid.UUID       `gorm:"type:char(36);primaryKey" json:"id"`
	Name        string          `gorm:"size:255;index;not null" json:"name"`
	BillingType BillingType     `gorm:"size:20;not null" json:"billing_type"`
	Rate        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"rate"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (m *TreatmentMethod) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
