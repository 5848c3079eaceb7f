package farmdb

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/farmledger/farmledger/internal/farm"
)

const saleColumns = `id, owner_id, crop_id, sale_date, quantity, selling_price, total_amount, buyer_name,
	payment_status, notes, created_at`

// SaleFilter narrows ListSales.
type SaleFilter struct {
	Filter
	CropID string
}

func scanSale(row pgx.Row) (farm.Sale, error) {
	var s farm.Sale
	var saleDate pgtype.Date
	err := row.Scan(&s.ID, &s.OwnerID, &s.CropID, &saleDate, &s.Quantity, &s.SellingPrice, &s.TotalAmount,
		&s.BuyerName, &s.PaymentStatus, &s.Notes, &s.CreatedAt)
	if err != nil {
		return farm.Sale{}, err
	}
	s.SaleDate = dateValue(saleDate)
	return s, nil
}

// ListSales returns sales newest first.
func (q *Queries) ListSales(ctx context.Context, f SaleFilter) ([]farm.Sale, error) {
	var w where
	w.common(f.Filter)
	if f.CropID != "" {
		w.add("crop_id = ?", f.CropID)
	}
	query := `SELECT ` + saleColumns + ` FROM sales ` + w.String() + ` ORDER BY created_at DESC, id` + w.page(f.Filter)
	rows, err := q.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanSale)
}

// GetSale loads one sale owned by ownerID.
func (q *Queries) GetSale(ctx context.Context, ownerID, id string) (farm.Sale, error) {
	row := q.db.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1 AND owner_id = $2`, id, ownerID)
	return scanSale(row)
}

// InsertSale stores s as given.
func (q *Queries) InsertSale(ctx context.Context, s farm.Sale) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO sales (`+saleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		s.ID, s.OwnerID, s.CropID, dateParam(s.SaleDate), s.Quantity, s.SellingPrice, s.TotalAmount,
		s.BuyerName, string(s.PaymentStatus), s.Notes, s.CreatedAt)
	return err
}

// UpdateSale overwrites the mutable columns of s.
func (q *Queries) UpdateSale(ctx context.Context, s farm.Sale) error {
	return affected(q.db.Exec(ctx, `
		UPDATE sales SET crop_id = $3, sale_date = $4, quantity = $5, selling_price = $6, total_amount = $7,
			buyer_name = $8, payment_status = $9, notes = $10
		WHERE id = $1 AND owner_id = $2`,
		s.ID, s.OwnerID, s.CropID, dateParam(s.SaleDate), s.Quantity, s.SellingPrice, s.TotalAmount,
		s.BuyerName, string(s.PaymentStatus), s.Notes))
}

// DeleteSale removes a sale.
func (q *Queries) DeleteSale(ctx context.Context, ownerID, id string) error {
	return affected(q.db.Exec(ctx, `DELETE FROM sales WHERE id = $1 AND owner_id = $2`, id, ownerID))
}
