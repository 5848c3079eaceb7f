// Package expenditures records farm costs and attributes them to crops.
package expenditures

import "github.com/farmledger/farmledger/internal/farm"

// CreateExpenditureRequest is the payload for recording a cost. With the
// fieldSize method Allocations is ignored and computed from the involved
// crops' field sizes.
type CreateExpenditureRequest struct {
	Category         string            `json:"category" validate:"required,max=100"`
	SubCategory      string            `json:"subCategory" validate:"max=100"`
	Amount           float64           `json:"amount" validate:"gt=0"`
	Frequency        string            `json:"frequency" validate:"required"`
	PaymentMode      string            `json:"paymentMode"`
	PaidTo           string            `json:"paidTo" validate:"max=200"`
	InvoiceNumber    string            `json:"invoiceNumber" validate:"max=100"`
	FarmSection      string            `json:"farmSection" validate:"max=100"`
	Notes            string            `json:"notes" validate:"max=2000"`
	ExpenseDate      farm.Date         `json:"date"`
	AllocationMethod string            `json:"allocationMethod"`
	CropsInvolved    []string          `json:"cropsInvolved" validate:"dive,required"`
	Allocations      []farm.Allocation `json:"allocations" validate:"dive"`
}

// UpdateExpenditureRequest carries the fields to change; nil fields are kept.
type UpdateExpenditureRequest struct {
	Category         *string            `json:"category,omitempty" validate:"omitempty,min=1,max=100"`
	SubCategory      *string            `json:"subCategory,omitempty" validate:"omitempty,max=100"`
	Amount           *float64           `json:"amount,omitempty" validate:"omitempty,gt=0"`
	Frequency        *string            `json:"frequency,omitempty"`
	PaymentMode      *string            `json:"paymentMode,omitempty"`
	PaidTo           *string            `json:"paidTo,omitempty" validate:"omitempty,max=200"`
	InvoiceNumber    *string            `json:"invoiceNumber,omitempty" validate:"omitempty,max=100"`
	FarmSection      *string            `json:"farmSection,omitempty" validate:"omitempty,max=100"`
	Notes            *string            `json:"notes,omitempty" validate:"omitempty,max=2000"`
	ExpenseDate      *farm.Date         `json:"date,omitempty"`
	AllocationMethod *string            `json:"allocationMethod,omitempty"`
	CropsInvolved    []string           `json:"cropsInvolved,omitempty" validate:"omitempty,dive,required"`
	Allocations      *[]farm.Allocation `json:"allocations,omitempty"`
}

// ListRequest filters an owner's expenditures. Empty fields match all.
type ListRequest struct {
	Category    string
	Frequency   string
	PaymentMode string
	CropID      string
	ExpenseDate farm.Date
}
