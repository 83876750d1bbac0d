// Package catalog owns the persisted product catalog. The upsert keyed
// on product_link is the pipeline's idempotence guarantee: re-running a
// scrape converges on one row per URL, with scraped_at frozen at
// first-seen time.
package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/eco-catalog/backend/internal/domain"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS products (
	id            UUID PRIMARY KEY,
	title         TEXT NOT NULL,
	product_link  TEXT NOT NULL UNIQUE,
	selling_price VARCHAR(50),
	cost_price    VARCHAR(50),
	discount      VARCHAR(50),
	rating        VARCHAR(50),
	description   TEXT,
	img_url       TEXT,
	brand         VARCHAR(511),
	category      VARCHAR(50),
	sub_category  VARCHAR(50),
	seller        TEXT,
	scraped_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products (category);
CREATE INDEX IF NOT EXISTS idx_products_seller ON products (seller);
`

const upsertSQL = `
INSERT INTO products
	(id, title, product_link, selling_price, cost_price, discount, rating,
	 description, img_url, brand, category, sub_category, seller)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
ON CONFLICT (product_link) DO UPDATE SET
	title         = EXCLUDED.title,
	selling_price = EXCLUDED.selling_price,
	cost_price    = EXCLUDED.cost_price,
	discount      = EXCLUDED.discount,
	rating        = EXCLUDED.rating,
	description   = EXCLUDED.description,
	img_url       = EXCLUDED.img_url,
	brand         = EXCLUDED.brand,
	category      = EXCLUDED.category,
	sub_category  = EXCLUDED.sub_category,
	seller        = EXCLUDED.seller`

const productColumns = `
	id, title, product_link,
	COALESCE(selling_price,''), COALESCE(cost_price,''), COALESCE(discount,''),
	COALESCE(rating,''), COALESCE(description,''), COALESCE(img_url,''),
	COALESCE(brand,''), COALESCE(category,''), COALESCE(sub_category,''),
	COALESCE(seller,''), scraped_at`

// UpsertStats summarizes one batch reconciliation
type UpsertStats struct {
	Upserted int
	Skipped  int
	Failed   int
}

// Store is the Postgres-backed catalog store
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// New connects a pool to Postgres and verifies the connection
func New(ctx context.Context, dsn string, poolSize int, logger *zap.Logger) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres DSN: %w", err)
	}
	if poolSize > 0 {
		cfg.MaxConns = int32(poolSize)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach postgres: %w", err)
	}

	return &Store{pool: pool, logger: logger}, nil
}

// Close releases the connection pool
func (s *Store) Close() {
	s.pool.Close()
}

// EnsureSchema creates the products table if it does not exist
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// Upsert reconciles a scrape batch against the catalog. Items without
// a title or link are skipped silently; a row-level failure is logged
// and skipped so the rest of the batch still lands. The ON CONFLICT
// write is atomic per row, so concurrent writers on the same
// product_link cannot interleave.
func (s *Store) Upsert(ctx context.Context, batch []domain.RawProduct) (UpsertStats, error) {
	var stats UpsertStats

	for _, item := range batch {
		if item.Title == "" || item.ProductLink == "" {
			stats.Skipped++
			continue
		}

		_, err := s.pool.Exec(ctx, upsertSQL,
			uuid.New(), item.Title, item.ProductLink,
			nullable(item.SellingPrice), nullable(item.CostPrice), nullable(item.Discount),
			nullable(item.Rating), nullable(item.Description), nullable(item.ImgURL),
			nullable(item.Brand), nullable(item.Category), nullable(item.SubCategory),
			nullable(item.Seller),
		)
		if err != nil {
			s.logger.Warn("Failed to upsert product row",
				zap.String("productLink", item.ProductLink),
				zap.Error(err),
			)
			stats.Failed++
			continue
		}
		stats.Upserted++
	}

	return stats, ctx.Err()
}

// Unclassified returns up to limit products that still lack a category
// label, oldest first so the backlog drains in scrape order.
func (s *Store) Unclassified(ctx context.Context, limit int) ([]domain.Product, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+productColumns+`
		 FROM products
		 WHERE category IS NULL OR category = ''
		 ORDER BY scraped_at ASC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query unclassified products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// SetClassification writes a parsed label back onto one product
func (s *Store) SetClassification(ctx context.Context, id uuid.UUID, category, subCategory string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE products SET category = $2, sub_category = $3 WHERE id = $1`,
		id, category, subCategory)
	if err != nil {
		return fmt.Errorf("failed to set classification: %w", err)
	}
	return nil
}

// Count returns the total number of catalog rows
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

// nullable maps the adapters' empty-string "absent" convention onto
// SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
