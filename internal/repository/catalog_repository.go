// backend-go/internal/repository/catalog_repository.go
package repository

import (
	"context"

	"github.com/andresuchdata/promolift/backend-go/internal/domain"
)

// CatalogRepository resolves catalog filters to concrete store and product codes.
type CatalogRepository interface {
	// ResolveProduct looks a product up by code. ok is false when no product matches.
	ResolveProduct(ctx context.Context, code string) (productID int64, ok bool, err error)
	StoresForProduct(ctx context.Context, productID int64, filter domain.CatalogFilter) ([]int64, error)
	AllStores(ctx context.Context, filter domain.CatalogFilter) ([]int64, error)
}
