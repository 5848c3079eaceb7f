// Package diagnoses stores disease diagnoses produced by the external text and
// image classifiers and tracks their treatment.
package diagnoses

import "github.com/farmledger/farmledger/internal/farm"

// RecordRequest stores a classifier result for a crop.
type RecordRequest struct {
	Type      string               `json:"type" validate:"required"`
	Crop      string               `json:"crop" validate:"required,max=100"`
	Symptoms  string               `json:"symptoms" validate:"max=4000"`
	Diagnosis farm.DiagnosisResult `json:"diagnosis"`
	ImageURL  string               `json:"imageUrl" validate:"omitempty,url"`
	SessionID string               `json:"sessionId" validate:"max=100"`
	Language  string               `json:"language" validate:"omitempty,max=10"`
	Severity  string               `json:"severity"`
	Status    string               `json:"status"`
}

// UpdateRequest changes the result or treatment state; nil fields are kept.
type UpdateRequest struct {
	Diagnosis *farm.DiagnosisResult `json:"diagnosis,omitempty"`
	Severity  *string               `json:"severity,omitempty"`
	Status    *string               `json:"status,omitempty"`
}

// ListRequest filters an owner's diagnoses. The JSON form is accepted by the
// POST /history endpoint.
type ListRequest struct {
	Type      string `json:"type"`
	Crop      string `json:"crop"`
	SessionID string `json:"sessionId"`
	Status    string `json:"status"`
	Limit     int    `json:"limit"`
	Skip      int    `json:"skip"`
}

// defaultLanguage is stored when a record omits its language.
const defaultLanguage = "en"
