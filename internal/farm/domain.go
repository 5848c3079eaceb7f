// Package farm holds the entity model shared by the CRUD services and the
// analytics layer: crops, sales, expenditures and diagnoses, each owned by a
// single user.
package farm

import (
	"time"
)

// ============================================================================
// CROP
// ============================================================================

// Crop is a planting tracked by its owner from sowing to harvest.
type Crop struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"userId"`
	Name            string    `json:"name"`
	Type            CropType  `json:"type"`
	Variety         string    `json:"variety"`
	FieldSize       string    `json:"fieldSize"`
	Location        string    `json:"location"`
	Notes           string    `json:"notes"`
	CurrentStage    Stage     `json:"currentStage"`
	Progress        int       `json:"progress"`
	StartDate       Date      `json:"startDate"`
	ExpectedHarvest Date      `json:"expectedHarvest"`
	WhenToPluck     Date      `json:"whenToPluck"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// FieldSizeValue parses the stored field size with the lax numeric policy.
func (c Crop) FieldSizeValue() float64 {
	return ParseLeadingNumber(c.FieldSize)
}

// ============================================================================
// SALE
// ============================================================================

// Sale records produce sold from a crop. CropID is serialised as "vegetable"
// for compatibility with existing clients.
type Sale struct {
	ID            string        `json:"id"`
	OwnerID       string        `json:"userId"`
	CropID        string        `json:"vegetable"`
	SaleDate      Date          `json:"date"`
	Quantity      string        `json:"quantity"`
	SellingPrice  float64       `json:"sellingPrice"`
	TotalAmount   float64       `json:"totalAmount"`
	BuyerName     string        `json:"buyerName"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	Notes         string        `json:"notes"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// QuantityValue parses the leading numeric token of the quantity text.
func (s Sale) QuantityValue() float64 {
	return ParseLeadingNumber(s.Quantity)
}

// SaleTotal computes quantity × price using the leading number of quantity.
func SaleTotal(quantity string, sellingPrice float64) float64 {
	return ParseLeadingNumber(quantity) * sellingPrice
}

// ============================================================================
// EXPENDITURE
// ============================================================================

// Allocation attributes part of an expenditure to one crop.
type Allocation struct {
	CropID          string  `json:"cropId" validate:"required"`
	AllocatedAmount float64 `json:"allocatedAmount" validate:"gte=0"`
}

// Expenditure is a farm cost, optionally split across crops.
type Expenditure struct {
	ID               string           `json:"id"`
	OwnerID          string           `json:"recordedBy"`
	Category         string           `json:"category"`
	SubCategory      string           `json:"subCategory"`
	Amount           float64          `json:"amount"`
	Frequency        Frequency        `json:"frequency"`
	PaymentMode      PaymentMode      `json:"paymentMode"`
	PaidTo           string           `json:"paidTo"`
	InvoiceNumber    string           `json:"invoiceNumber"`
	FarmSection      string           `json:"farmSection"`
	Notes            string           `json:"notes"`
	ExpenseDate      Date             `json:"date"`
	AllocationMethod AllocationMethod `json:"allocationMethod"`
	CropsInvolved    []string         `json:"cropsInvolved"`
	Allocations      []Allocation     `json:"allocations"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// AllocatedTo sums the allocation entries that name cropID.
func (e Expenditure) AllocatedTo(cropID string) float64 {
	var total float64
	for _, a := range e.Allocations {
		if a.CropID == cropID {
			total += a.AllocatedAmount
		}
	}
	return total
}

// ============================================================================
// DIAGNOSIS
// ============================================================================

// DiagnosisResult is the payload produced by the text or image classifier.
type DiagnosisResult struct {
	Disease    string  `json:"disease"`
	Cause      string  `json:"cause"`
	Organic    string  `json:"organic"`
	Chemical   string  `json:"chemical"`
	Prevention string  `json:"prevention"`
	Confidence float64 `json:"confidence"`
}

// Diagnosis stores one disease diagnosis for a crop named in free text.
type Diagnosis struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"userId"`
	Type      DiagnosisType   `json:"type"`
	Crop      string          `json:"crop"`
	Symptoms  string          `json:"symptoms,omitempty"`
	Result    DiagnosisResult `json:"diagnosis"`
	ImageURL  string          `json:"imageUrl,omitempty"`
	SessionID string          `json:"sessionId,omitempty"`
	Language  string          `json:"language"`
	Severity  Severity        `json:"severity"`
	Status    DiagnosisStatus `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
}
