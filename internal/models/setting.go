package models

import "time"

type Setting struct {
	Key       string    `gorm:"size:64;primaryKey" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Company is the sender block printed on invoice documents.
type Company struct {
	Name           string `json:"name"`
	Address        string `json:"address"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	IBAN           string `json:"iban"`
	RegistrationNo string `json:"registration_no"`
	VatNo          string `json:"vat_no"`
	Currency       string `json:"currency"`
}
