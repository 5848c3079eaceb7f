// Package sales records produce sales against crops.
package sales

import "github.com/farmledger/farmledger/internal/farm"

// CreateSaleRequest is the payload for recording a sale. The total is always
// computed from quantity and price; a client supplied total is ignored.
type CreateSaleRequest struct {
	CropID        string    `json:"vegetable" validate:"required"`
	SaleDate      farm.Date `json:"date"`
	Quantity      string    `json:"quantity" validate:"required,max=60"`
	SellingPrice  float64   `json:"sellingPrice" validate:"gte=0"`
	TotalAmount   *float64  `json:"totalAmount,omitempty"`
	BuyerName     string    `json:"buyerName" validate:"required,max=200"`
	PaymentStatus string    `json:"paymentStatus" validate:"required"`
	Notes         string    `json:"notes" validate:"max=2000"`
}

// UpdateSaleRequest carries the fields to change; nil fields are kept.
type UpdateSaleRequest struct {
	CropID        *string    `json:"vegetable,omitempty" validate:"omitempty,min=1"`
	SaleDate      *farm.Date `json:"date,omitempty"`
	Quantity      *string    `json:"quantity,omitempty" validate:"omitempty,min=1,max=60"`
	SellingPrice  *float64   `json:"sellingPrice,omitempty" validate:"omitempty,gte=0"`
	TotalAmount   *float64   `json:"totalAmount,omitempty"`
	BuyerName     *string    `json:"buyerName,omitempty" validate:"omitempty,min=1,max=200"`
	PaymentStatus *string    `json:"paymentStatus,omitempty"`
	Notes         *string    `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// Month filters accepted by List.
const (
	MonthAll     = "all"
	MonthCurrent = "current"
	MonthLast    = "last"
)

// ListRequest filters and pages an owner's sales. An empty or "all" CropID
// matches every crop.
type ListRequest struct {
	Month  string `json:"filterMonth"`
	CropID string `json:"filterVegetable"`
	Limit  int    `json:"limit"`
	Skip   int    `json:"skip"`
}
