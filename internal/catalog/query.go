package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/eco-catalog/backend/internal/domain"
)

// Filter narrows a catalog listing. Zero values mean "no constraint";
// Search matches title or description case-insensitively.
type Filter struct {
	Brand       string
	Category    string
	SubCategory string
	Seller      string
	Search      string
	Limit       int
	Offset      int
}

// List returns catalog rows matching the filter, newest first. This is
// the query surface the external read API consumes.
func (s *Store) List(ctx context.Context, f Filter) ([]domain.Product, error) {
	var (
		where []string
		args  []any
	)

	add := func(clause, value string) {
		args = append(args, value)
		where = append(where, clause+"$"+strconv.Itoa(len(args)))
	}

	if f.Brand != "" {
		add("brand = ", f.Brand)
	}
	if f.Category != "" {
		add("category = ", f.Category)
	}
	if f.SubCategory != "" {
		add("sub_category = ", f.SubCategory)
	}
	if f.Seller != "" {
		add("seller = ", f.Seller)
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := strconv.Itoa(len(args))
		where = append(where, "(title ILIKE $"+n+" OR description ILIKE $"+n+")")
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY scraped_at DESC"

	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += " OFFSET $" + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

func scanProducts(rows pgx.Rows) ([]domain.Product, error) {
	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID, &p.Title, &p.ProductLink,
			&p.SellingPrice, &p.CostPrice, &p.Discount,
			&p.Rating, &p.Description, &p.ImgURL,
			&p.Brand, &p.Category, &p.SubCategory,
			&p.Seller, &p.ScrapedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
