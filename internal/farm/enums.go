package farm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnrecognizedValue is returned when a closed enumeration receives a value
// outside its set.
var ErrUnrecognizedValue = errors.New("unrecognized value")

// CropType classifies a crop.
type CropType string

const (
	CropTypeVegetable CropType = "Vegetable"
	CropTypeGrain     CropType = "Grain"
	CropTypeFruit     CropType = "Fruit"
	CropTypePulse     CropType = "Pulse"
)

// CropTypes lists every crop type.
var CropTypes = []CropType{CropTypeVegetable, CropTypeGrain, CropTypeFruit, CropTypePulse}

// ParseCropType validates a crop type.
func ParseCropType(raw string) (CropType, error) {
	return parseEnum("type", raw, CropTypes)
}

// Stage is the growth stage of a crop. Stages are ordered.
type Stage string

const (
	StageSowing     Stage = "Sowing"
	StageGrowing    Stage = "Growing"
	StageFlowering  Stage = "Flowering"
	StageHarvesting Stage = "Harvesting"
	StageHarvested  Stage = "Harvested"
)

// Stages lists the growth stages in order.
var Stages = []Stage{StageSowing, StageGrowing, StageFlowering, StageHarvesting, StageHarvested}

// ParseStage validates a growth stage.
func ParseStage(raw string) (Stage, error) {
	return parseEnum("currentStage", raw, Stages)
}

// Progress returns the fixed progress percentage for the stage.
func (s Stage) Progress() (int, error) {
	switch s {
	case StageSowing:
		return 5, nil
	case StageGrowing:
		return 40, nil
	case StageFlowering:
		return 70, nil
	case StageHarvesting:
		return 95, nil
	case StageHarvested:
		return 100, nil
	default:
		return 0, fmt.Errorf("currentStage %q: %w", string(s), ErrUnrecognizedValue)
	}
}

// Ordinal returns the position of the stage, or -1 when unknown.
func (s Stage) Ordinal() int {
	for i, st := range Stages {
		if st == s {
			return i
		}
	}
	return -1
}

// PaymentStatus tracks whether a sale has been paid.
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "Paid"
	PaymentPending PaymentStatus = "Pending"
)

// ParsePaymentStatus validates a payment status.
func ParsePaymentStatus(raw string) (PaymentStatus, error) {
	return parseEnum("paymentStatus", raw, []PaymentStatus{PaymentPaid, PaymentPending})
}

// Frequency is how often an expenditure recurs.
type Frequency string

const (
	FrequencyMonthly  Frequency = "Monthly"
	FrequencySeasonal Frequency = "Seasonal"
	FrequencyYearly   Frequency = "Yearly"
	FrequencyOneTime  Frequency = "One-Time"
)

// ParseFrequency validates an expenditure frequency.
func ParseFrequency(raw string) (Frequency, error) {
	return parseEnum("frequency", raw, []Frequency{FrequencyMonthly, FrequencySeasonal, FrequencyYearly, FrequencyOneTime})
}

// PaymentMode is the instrument used to pay an expenditure.
type PaymentMode string

const (
	PaymentModeCash     PaymentMode = "Cash"
	PaymentModeUPI      PaymentMode = "UPI"
	PaymentModeTransfer PaymentMode = "Bank Transfer"
	PaymentModeCheque   PaymentMode = "Cheque"
	PaymentModeCredit   PaymentMode = "Credit"
)

// ParsePaymentMode validates a payment mode. Empty input defaults to Cash.
func ParsePaymentMode(raw string) (PaymentMode, error) {
	if strings.TrimSpace(raw) == "" {
		return PaymentModeCash, nil
	}
	return parseEnum("paymentMode", raw, []PaymentMode{PaymentModeCash, PaymentModeUPI, PaymentModeTransfer, PaymentModeCheque, PaymentModeCredit})
}

// AllocationMethod selects how an expenditure is split across crops.
type AllocationMethod string

const (
	AllocationManual    AllocationMethod = "manual"
	AllocationFieldSize AllocationMethod = "fieldSize"
)

// ParseAllocationMethod validates an allocation method. Empty input defaults to manual.
func ParseAllocationMethod(raw string) (AllocationMethod, error) {
	if strings.TrimSpace(raw) == "" {
		return AllocationManual, nil
	}
	return parseEnum("allocationMethod", raw, []AllocationMethod{AllocationManual, AllocationFieldSize})
}

// DiagnosisType records how a diagnosis was produced.
type DiagnosisType string

const (
	DiagnosisText  DiagnosisType = "text"
	DiagnosisImage DiagnosisType = "image"
)

// ParseDiagnosisType validates a diagnosis type.
func ParseDiagnosisType(raw string) (DiagnosisType, error) {
	return parseEnum("type", raw, []DiagnosisType{DiagnosisText, DiagnosisImage})
}

// Severity grades a diagnosed disease.
type Severity string

const (
	SeverityMild     Severity = "Mild"
	SeverityModerate Severity = "Moderate"
	SeverityHigh     Severity = "High"
)

// ParseSeverity validates a severity. Empty input defaults to Moderate.
func ParseSeverity(raw string) (Severity, error) {
	if strings.TrimSpace(raw) == "" {
		return SeverityModerate, nil
	}
	return parseEnum("severity", raw, []Severity{SeverityMild, SeverityModerate, SeverityHigh})
}

// DiagnosisStatus tracks treatment of a diagnosis.
type DiagnosisStatus string

const (
	StatusResolved   DiagnosisStatus = "Resolved"
	StatusTreated    DiagnosisStatus = "Treated"
	StatusInProgress DiagnosisStatus = "In Progress"
)

// ParseDiagnosisStatus validates a diagnosis status. Empty input defaults to In Progress.
func ParseDiagnosisStatus(raw string) (DiagnosisStatus, error) {
	if strings.TrimSpace(raw) == "" {
		return StatusInProgress, nil
	}
	return parseEnum("status", raw, []DiagnosisStatus{StatusResolved, StatusTreated, StatusInProgress})
}

func parseEnum[T ~string](field, raw string, allowed []T) (T, error) {
	value := strings.TrimSpace(raw)
	for _, candidate := range allowed {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%s %q: %w", field, raw, ErrUnrecognizedValue)
}
