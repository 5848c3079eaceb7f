package farmdb

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/farmledger/farmledger/internal/farm"
)

const expenditureColumns = `id, owner_id, category, sub_category, amount, frequency, payment_mode, paid_to,
	invoice_number, farm_section, notes, expense_date, allocation_method, crops_involved, allocations,
	created_at, updated_at`

// ExpenditureFilter narrows ListExpenditures.
type ExpenditureFilter struct {
	Filter
	// CropID keeps expenditures with an allocation entry for the crop.
	CropID      string
	Category    string
	Frequency   farm.Frequency
	PaymentMode farm.PaymentMode
	ExpenseDate farm.Date
}

func scanExpenditure(row pgx.Row) (farm.Expenditure, error) {
	var e farm.Expenditure
	var expenseDate pgtype.Date
	var allocations []byte
	err := row.Scan(&e.ID, &e.OwnerID, &e.Category, &e.SubCategory, &e.Amount, &e.Frequency, &e.PaymentMode,
		&e.PaidTo, &e.InvoiceNumber, &e.FarmSection, &e.Notes, &expenseDate, &e.AllocationMethod,
		&e.CropsInvolved, &allocations, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return farm.Expenditure{}, err
	}
	e.ExpenseDate = dateValue(expenseDate)
	if len(allocations) > 0 {
		if err := json.Unmarshal(allocations, &e.Allocations); err != nil {
			return farm.Expenditure{}, fmt.Errorf("decode allocations of %s: %w", e.ID, err)
		}
	}
	return e, nil
}

func encodeAllocations(allocs []farm.Allocation) (string, error) {
	if allocs == nil {
		allocs = []farm.Allocation{}
	}
	raw, err := json.Marshal(allocs)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// textArray keeps NOT NULL array columns from receiving NULL.
func textArray(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// ListExpenditures returns expenditures newest first.
func (q *Queries) ListExpenditures(ctx context.Context, f ExpenditureFilter) ([]farm.Expenditure, error) {
	var w where
	w.common(f.Filter)
	if f.CropID != "" {
		match, err := json.Marshal([]map[string]string{{"cropId": f.CropID}})
		if err != nil {
			return nil, err
		}
		w.add("allocations @> ?::jsonb", string(match))
	}
	if f.Category != "" {
		w.add("category = ?", f.Category)
	}
	if f.Frequency != "" {
		w.add("frequency = ?", string(f.Frequency))
	}
	if f.PaymentMode != "" {
		w.add("payment_mode = ?", string(f.PaymentMode))
	}
	if !f.ExpenseDate.IsZero() {
		w.add("expense_date = ?", dateParam(f.ExpenseDate))
	}
	query := `SELECT ` + expenditureColumns + ` FROM expenditures ` + w.String() + ` ORDER BY created_at DESC, id` + w.page(f.Filter)
	rows, err := q.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanExpenditure)
}

// GetExpenditure loads one expenditure owned by ownerID.
func (q *Queries) GetExpenditure(ctx context.Context, ownerID, id string) (farm.Expenditure, error) {
	row := q.db.QueryRow(ctx, `SELECT `+expenditureColumns+` FROM expenditures WHERE id = $1 AND owner_id = $2`, id, ownerID)
	return scanExpenditure(row)
}

// InsertExpenditure stores e as given.
func (q *Queries) InsertExpenditure(ctx context.Context, e farm.Expenditure) error {
	allocations, err := encodeAllocations(e.Allocations)
	if err != nil {
		return err
	}
	_, err = q.db.Exec(ctx, `
		INSERT INTO expenditures (`+expenditureColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15::jsonb, $16, $17)`,
		e.ID, e.OwnerID, e.Category, e.SubCategory, e.Amount, string(e.Frequency), string(e.PaymentMode), e.PaidTo,
		e.InvoiceNumber, e.FarmSection, e.Notes, dateParam(e.ExpenseDate), string(e.AllocationMethod),
		textArray(e.CropsInvolved), allocations, e.CreatedAt, e.UpdatedAt)
	return err
}

// UpdateExpenditure overwrites the mutable columns of e.
func (q *Queries) UpdateExpenditure(ctx context.Context, e farm.Expenditure) error {
	allocations, err := encodeAllocations(e.Allocations)
	if err != nil {
		return err
	}
	return affected(q.db.Exec(ctx, `
		UPDATE expenditures SET category = $3, sub_category = $4, amount = $5, frequency = $6, payment_mode = $7,
			paid_to = $8, invoice_number = $9, farm_section = $10, notes = $11, expense_date = $12,
			allocation_method = $13, crops_involved = $14, allocations = $15::jsonb, updated_at = $16
		WHERE id = $1 AND owner_id = $2`,
		e.ID, e.OwnerID, e.Category, e.SubCategory, e.Amount, string(e.Frequency), string(e.PaymentMode),
		e.PaidTo, e.InvoiceNumber, e.FarmSection, e.Notes, dateParam(e.ExpenseDate),
		string(e.AllocationMethod), textArray(e.CropsInvolved), allocations, e.UpdatedAt))
}

// DeleteExpenditure removes an expenditure.
func (q *Queries) DeleteExpenditure(ctx context.Context, ownerID, id string) error {
	return affected(q.db.Exec(ctx, `DELETE FROM expenditures WHERE id = $1 AND owner_id = $2`, id, ownerID))
}

// ListExpenditureCategories returns the distinct categories used by ownerID.
func (q *Queries) ListExpenditureCategories(ctx context.Context, ownerID string) ([]string, error) {
	rows, err := q.db.Query(ctx, `SELECT DISTINCT category FROM expenditures WHERE owner_id = $1 ORDER BY category`, ownerID)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(row pgx.Row) (string, error) {
		var category string
		err := row.Scan(&category)
		return category, err
	})
}
