package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/andresuchdata/promolift/backend-go/internal/domain"
	"github.com/andresuchdata/promolift/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
)

type catalogRepository struct {
	db *DB
}

func NewCatalogRepository(db *DB) repository.CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) ResolveProduct(ctx context.Context, code string) (int64, bool, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return 0, false, nil
	}

	query := `
		SELECT code
		FROM products
		WHERE CAST(code AS TEXT) = $1 OR LOWER(name) = LOWER($1)
		ORDER BY code
		LIMIT 1
	`

	var id int64
	err := r.db.withPermit(ctx, func() error {
		return sqlx.GetContext(ctx, r.db, &id, query, code)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to resolve product: %w", err)
	}
	return id, true, nil
}

func (r *catalogRepository) StoresForProduct(ctx context.Context, productID int64, filter domain.CatalogFilter) ([]int64, error) {
	b := buildCatalogFilterClause(filter, "s.", 2)
	query := `
		SELECT DISTINCT s.code
		FROM stores s
		JOIN store_products sp ON sp.store_code = s.code
		WHERE sp.product_code = $1` + b.and() + `
		ORDER BY s.code
	`

	args := append([]any{productID}, b.args...)

	var stores []int64
	err := r.db.withPermit(ctx, func() error {
		return sqlx.SelectContext(ctx, r.db, &stores, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list stores for product %d: %w", productID, err)
	}
	return stores, nil
}

func (r *catalogRepository) AllStores(ctx context.Context, filter domain.CatalogFilter) ([]int64, error) {
	b := buildCatalogFilterClause(filter, "s.", 1)
	query := `
		SELECT s.code
		FROM stores s` + b.where() + `
		ORDER BY s.code
	`

	var stores []int64
	err := r.db.withPermit(ctx, func() error {
		return sqlx.SelectContext(ctx, r.db, &stores, query, b.args...)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	return stores, nil
}
