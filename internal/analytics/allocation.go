package analytics

import (
	"fmt"

	"github.com/farmledger/farmledger/internal/farm"
)

// AllocationInput describes an expenditure whose cost should be attributed to
// crops. FieldSizes maps crop ID to the raw stored field size and is only read
// for the fieldSize method.
type AllocationInput struct {
	Method        farm.AllocationMethod
	Amount        float64
	CropsInvolved []string
	FieldSizes    map[string]string
	Manual        []farm.Allocation
}

// ResolveAllocations computes per-crop allocations. Manual allocations are
// returned as supplied; fieldSize splits Amount proportionally to each
// involved crop's parsed field size.
func ResolveAllocations(in AllocationInput) ([]farm.Allocation, error) {
	switch in.Method {
	case farm.AllocationManual, "":
		out := make([]farm.Allocation, len(in.Manual))
		copy(out, in.Manual)
		return out, nil
	case farm.AllocationFieldSize:
		return splitByFieldSize(in)
	default:
		return nil, &Error{Kind: KindAllocation, Field: "allocationMethod", Message: fmt.Sprintf("unrecognized method %q", in.Method)}
	}
}

func splitByFieldSize(in AllocationInput) ([]farm.Allocation, error) {
	if len(in.CropsInvolved) == 0 {
		return nil, allocationError("cropsInvolved is empty")
	}
	sizes := make([]float64, len(in.CropsInvolved))
	var total float64
	for i, cropID := range in.CropsInvolved {
		raw, ok := in.FieldSizes[cropID]
		if !ok {
			return nil, allocationError(fmt.Sprintf("crop %s not found", cropID))
		}
		size := farm.ParseLeadingNumber(raw)
		if size <= 0 {
			return nil, allocationError(fmt.Sprintf("crop %s has non-positive field size %q", cropID, raw))
		}
		sizes[i] = size
		total += size
	}
	out := make([]farm.Allocation, len(in.CropsInvolved))
	for i, cropID := range in.CropsInvolved {
		out[i] = farm.Allocation{CropID: cropID, AllocatedAmount: in.Amount * sizes[i] / total}
	}
	return out, nil
}

// AllocatedByCrop sums allocatedAmount per crop across expenditures. An
// expenditure split over several crops contributes only each crop's share.
func AllocatedByCrop(exps []farm.Expenditure) map[string]float64 {
	totals := make(map[string]float64)
	for _, exp := range exps {
		for _, a := range exp.Allocations {
			totals[a.CropID] += a.AllocatedAmount
		}
	}
	return totals
}

// AllocatedToCrop sums the share of every expenditure attributed to cropID.
func AllocatedToCrop(exps []farm.Expenditure, cropID string) float64 {
	var total float64
	for _, exp := range exps {
		total += exp.AllocatedTo(cropID)
	}
	return total
}
