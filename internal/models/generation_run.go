package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GenerationRun records the outcome of one invoice generation run.
type GenerationRun struct {
	ID           uuid.UUID      `gorm:"type:char(36);primaryKey" json:"id"`
	Period       string         `gorm:"size:50" json:"period"`
	FromDate     *Date          `gorm:"type:date" json:"from_date"`
	ToDate       *Date          `gorm:"type:date" json:"to_date"`
	InvoiceCount int            `gorm:"not null" json:"invoice_count"`
	SkippedCount int            `gorm:"not null" json:"skipped_count"`
	Skipped      datatypes.JSON `json:"skipped"`
	Failed       bool           `gorm:"not null;default:false" json:"failed"`
	CreatedAt    time.Time      `json:"created_at"`
}

func (r *GenerationRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
