package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ficus/storefront/internal/domain/entities"
	"github.com/ficus/storefront/internal/infrastructure/logger"
	"github.com/ficus/storefront/internal/ports"
)

// CatalogService handles product browsing
type CatalogService struct {
	productRepo ports.ProductRepository
	logger      *logger.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(productRepo ports.ProductRepository, logger *logger.Logger) *CatalogService {
	return &CatalogService{
		productRepo: productRepo,
		logger:      logger,
	}
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]entities.Product, error) {
	return s.productRepo.GetAll(ctx)
}

func (s *CatalogService) GetProduct(ctx context.Context, id int) (*entities.Product, error) {
	return s.productRepo.GetByID(ctx, id)
}

// Search matches query case-insensitively against product name and category.
// An empty query returns every product.
func (s *CatalogService) Search(ctx context.Context, query string) ([]entities.Product, error) {
	products, err := s.productRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return products, nil
	}

	matched := make([]entities.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), query) ||
			strings.Contains(strings.ToLower(p.Category), query) {
			matched = append(matched, p)
		}
	}

	s.logger.Debugw("Product search", "query", query, "matches", len(matched))
	return matched, nil
}
