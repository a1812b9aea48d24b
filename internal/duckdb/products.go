package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tinytelemetry/stockroom/internal/model"
)

var (
	// ErrDuplicateReference is returned when a product reference is taken.
	ErrDuplicateReference = errors.New("duckdb: reference already exists")
	// ErrUnknownColumn is returned for a requested column the catalogue lacks.
	ErrUnknownColumn = errors.New("duckdb: unknown column")
)

// Product is one catalogue row.
type Product struct {
	ID        int64
	Name      string
	Price     float64
	Reference string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// productColumns maps the field keys clients may request to the SQL that
// renders them as text.
var productColumns = map[string]string{
	"id":         "CAST(id AS VARCHAR)",
	"name":       "name",
	"price":      "printf('%.2f', price)",
	"reference":  "reference",
	"created_at": "strftime(created_at, '%Y-%m-%d %H:%M')",
	"updated_at": "strftime(updated_at, '%Y-%m-%d %H:%M')",
}

// quoteIdent quotes s as a SQL identifier.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// CreateProduct inserts a product. A taken reference yields ErrDuplicateReference.
func (s *Store) CreateProduct(ctx context.Context, name string, price float64, reference string) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	exists, err := s.referenceExists(ctx, reference)
	if err != nil {
		return Product{}, err
	}
	if exists {
		return Product{}, ErrDuplicateReference
	}

	var p Product
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO products (name, price, reference)
		VALUES (?, ?, ?)
		RETURNING id, name, CAST(price AS DOUBLE), reference, created_at, updated_at`,
		name, price, reference,
	).Scan(&p.ID, &p.Name, &p.Price, &p.Reference, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate key") {
			return Product{}, ErrDuplicateReference
		}
		return Product{}, fmt.Errorf("duckdb: insert product: %w", err)
	}
	return p, nil
}

// ReferenceExists reports whether a product already uses reference.
func (s *Store) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()
	return s.referenceExists(ctx, reference)
}

func (s *Store) referenceExists(ctx context.Context, reference string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM products WHERE reference = ?", reference).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("duckdb: lookup reference: %w", err)
	}
	return n > 0, nil
}

// CountProducts returns the number of products in the catalogue.
func (s *Store) CountProducts(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&n); err != nil {
		return 0, fmt.Errorf("duckdb: count products: %w", err)
	}
	return n, nil
}

// ProductsPage returns one page of products, oldest first, with each
// requested column keyed by its label. It also returns the page count.
func (s *Store) ProductsPage(ctx context.Context, format model.ColumnFormat, pageNumber, rowsPerPage int) ([]model.Record, int, error) {
	if rowsPerPage <= 0 {
		return nil, 0, fmt.Errorf("duckdb: rows per page must be positive, got %d", rowsPerPage)
	}
	if pageNumber < 0 {
		return nil, 0, fmt.Errorf("duckdb: page number must not be negative, got %d", pageNumber)
	}

	selects := make([]string, 0, len(format))
	for _, col := range format {
		expr, ok := productColumns[col.Key]
		if !ok {
			return nil, 0, fmt.Errorf("%w: %q", ErrUnknownColumn, col.Key)
		}
		selects = append(selects, expr+" AS "+quoteIdent(col.Label))
	}

	total, err := s.CountProducts(ctx)
	if err != nil {
		return nil, 0, err
	}
	pages := (total + rowsPerPage - 1) / rowsPerPage

	records := []model.Record{}
	if len(selects) == 0 {
		return records, pages, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	query := fmt.Sprintf("SELECT %s FROM products ORDER BY id LIMIT ? OFFSET ?", strings.Join(selects, ", "))
	rows, err := s.db.QueryContext(ctx, query, rowsPerPage, pageNumber*rowsPerPage)
	if err != nil {
		return nil, 0, fmt.Errorf("duckdb: query products page: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		cells := make([]sql.NullString, len(format))
		dest := make([]any, len(format))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, fmt.Errorf("duckdb: scan product: %w", err)
		}
		rec := make(model.Record, len(format))
		for i, col := range format {
			if cells[i].Valid {
				rec[col.Label] = cells[i].String
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("duckdb: iterate products: %w", err)
	}
	return records, pages, nil
}
