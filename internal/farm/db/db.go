// Package farmdb holds the PostgreSQL queries for farm entities. CRUD
// repositories and the analytics store both build on it.
package farmdb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/farmledger/farmledger/internal/farm"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Queries runs statements against a pool or transaction.
type Queries struct {
	db DBTX
}

// New wraps db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a copy bound to tx.
func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

// Filter holds the predicates shared by every list query. Zero values are
// ignored. CreatedFrom and CreatedTo are inclusive.
type Filter struct {
	OwnerID     string
	CreatedFrom time.Time
	CreatedTo   time.Time
	Limit       int
	Offset      int
}

// where accumulates AND-ed conditions with positional arguments.
type where struct {
	conds []string
	args  []interface{}
}

// add appends cond, replacing each ? with the next placeholder.
func (w *where) add(cond string, args ...interface{}) {
	for _, arg := range args {
		w.args = append(w.args, arg)
		cond = strings.Replace(cond, "?", fmt.Sprintf("$%d", len(w.args)), 1)
	}
	w.conds = append(w.conds, cond)
}

func (w *where) common(f Filter) {
	if f.OwnerID != "" {
		w.add("owner_id = ?", f.OwnerID)
	}
	if !f.CreatedFrom.IsZero() {
		w.add("created_at >= ?", f.CreatedFrom)
	}
	if !f.CreatedTo.IsZero() {
		w.add("created_at <= ?", f.CreatedTo)
	}
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.conds, " AND ")
}

// page renders LIMIT/OFFSET, appending their arguments.
func (w *where) page(f Filter) string {
	var out string
	if f.Limit > 0 {
		w.args = append(w.args, f.Limit)
		out += fmt.Sprintf(" LIMIT $%d", len(w.args))
	}
	if f.Offset > 0 {
		w.args = append(w.args, f.Offset)
		out += fmt.Sprintf(" OFFSET $%d", len(w.args))
	}
	return out
}

func dateParam(d farm.Date) pgtype.Date {
	if d.IsZero() {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: d.Time, Valid: true}
}

func dateValue(d pgtype.Date) farm.Date {
	if !d.Valid {
		return farm.Date{}
	}
	return farm.NewDate(d.Time)
}

// collect scans every row with scan.
func collect[T any](rows pgx.Rows, scan func(pgx.Row) (T, error)) ([]T, error) {
	defer rows.Close()
	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// affected maps an update or delete that touched nothing to pgx.ErrNoRows.
func affected(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
