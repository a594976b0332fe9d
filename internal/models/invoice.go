package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InvoiceStatus string

const (
	InvoiceUnpaid InvoiceStatus = "unpaid"
	InvoicePaid   InvoiceStatus = "paid"
)

func (s InvoiceStatus) Valid() bool {
	return s == InvoiceUnpaid || s == InvoicePaid
}

type Invoice struct {
	ID            uuid.UUID       `gorm:"type:char(36);primaryKey" json:"id"`
	InvoiceNumber string          `gorm:"uniqueIndex;size:100;not null" json:"invoice_number"`
	ClientID      uuid.UUID       `gorm:"type:char(36);index;not null" json:"client_id"`
	ClientName    string          `gorm:"-" json:"client_name,omitempty"`
	InvoiceDate   Date            `gorm:"type:date;index;not null" json:"invoice_date"`
	DueDate       Date            `gorm:"type:date" json:"due_date"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	Status        InvoiceStatus   `gorm:"size:20;index;not null" json:"status"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	Lines         []InvoiceLine   `gorm:"foreignKey:InvoiceID" json:"lines,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// InvoiceLine is the priced snapshot of one billed treatment.
type InvoiceLine struct {
	ID            uuid.UUID       `gorm:"type:char(36);primaryKey" json:"id"`
	InvoiceID     uuid.UUID       `gorm:"type:char(36);index;not null" json:"invoice_id"`
	Position      int             `gorm:"not null" json:"position"`
	TreatmentID   uuid.UUID       `gorm:"type:char(36);uniqueIndex;not null" json:"treatment_id"`
	TreatmentDate Date            `gorm:"type:date" json:"treatment_date"`
	Description   string          `gorm:"size:500;not null" json:"description"`
	BillingType   BillingType     `gorm:"size:20;not null" json:"billing_type"`
	Quantity      decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"quantity"`
	UnitRate      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_rate"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
}

func (l *InvoiceLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// InvoiceSequence holds the last issued invoice number per scope (a year).
type InvoiceSequence struct {
	Scope     string    `gorm:"size:20;primaryKey" json:"scope"`
	LastValue int64     `gorm:"not null" json:"last_value"`
	UpdatedAt time.Time `json:"updated_at"`
}
