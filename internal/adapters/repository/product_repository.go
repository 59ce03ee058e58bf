package repository

import (
	"context"
	"fmt"

	"github.com/ficus/storefront/internal/domain/entities"
	"github.com/ficus/storefront/internal/infrastructure/storage"
	"github.com/ficus/storefront/internal/ports"
)

// ProductRepositoryImpl implements the ProductRepository interface over products.json
type ProductRepositoryImpl struct {
	products *storage.Collection[entities.ProductList]
}

// NewProductRepository creates a new product repository
func NewProductRepository(store *storage.Store) ports.ProductRepository {
	return &ProductRepositoryImpl{products: storage.Register(store, productsDef)}
}

func (r *ProductRepositoryImpl) GetAll(ctx context.Context) ([]entities.Product, error) {
	products, err := r.products.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	return products, nil
}

func (r *ProductRepositoryImpl) GetByID(ctx context.Context, id int) (*entities.Product, error) {
	products, err := r.products.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	i := indexOfProduct(products, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: id %d", entities.ErrProductNotFound, id)
	}

	product := products[i]
	return &product, nil
}

// Create assigns id = max(existing ids, 0) + 1 and appends the product
func (r *ProductRepositoryImpl) Create(ctx context.Context, fields entities.ProductFields) (*entities.Product, error) {
	var created entities.Product
	err := r.products.Mutate(ctx, func(doc *entities.ProductList) error {
		created = entities.Product{
			ID:          doc.NextID(),
			Name:        fields.Name,
			Price:       fields.Price,
			Description: fields.Description,
			Image:       fields.Image,
			Category:    fields.Category,
		}
		*doc = append(*doc, created)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	return &created, nil
}

func (r *ProductRepositoryImpl) DeleteByID(ctx context.Context, id int) error {
	err := r.products.Mutate(ctx, func(doc *entities.ProductList) error {
		i := indexOfProduct(*doc, id)
		if i < 0 {
			return fmt.Errorf("%w: id %d", entities.ErrProductNotFound, id)
		}
		*doc = append((*doc)[:i], (*doc)[i+1:]...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}
