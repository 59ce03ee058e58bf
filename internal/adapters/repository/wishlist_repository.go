package repository

import (
	"context"
	"fmt"

	"github.com/ficus/storefront/internal/domain/entities"
	"github.com/ficus/storefront/internal/infrastructure/storage"
	"github.com/ficus/storefront/internal/ports"
)

// WishlistRepositoryImpl implements the WishlistRepository interface over wishlist.json
type WishlistRepositoryImpl struct {
	wishlists *storage.Collection[entities.Wishlists]
}

// NewWishlistRepository creates a new wishlist repository
func NewWishlistRepository(store *storage.Store) ports.WishlistRepository {
	return &WishlistRepositoryImpl{wishlists: storage.Register(store, wishlistsDef)}
}

func (r *WishlistRepositoryImpl) GetWishlistFor(ctx context.Context, username string) ([]entities.Product, error) {
	wishlists, err := r.wishlists.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("get wishlist: %w", err)
	}
	return nonNilProducts(wishlists[username]), nil
}

// AddProduct is idempotent: a product already on the wishlist is left as is
func (r *WishlistRepositoryImpl) AddProduct(ctx context.Context, username string, product entities.Product) ([]entities.Product, error) {
	var result []entities.Product
	err := r.wishlists.Mutate(ctx, func(doc *entities.Wishlists) error {
		products := (*doc)[username]
		if indexOfProduct(products, product.ID) < 0 {
			products = append(products, product)
		}
		(*doc)[username] = products
		result = products
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("add wishlist product: %w", err)
	}

	return result, nil
}

func (r *WishlistRepositoryImpl) RemoveProduct(ctx context.Context, username string, productID int) ([]entities.Product, error) {
	var result []entities.Product
	err := r.wishlists.Mutate(ctx, func(doc *entities.Wishlists) error {
		products := (*doc)[username]
		i := indexOfProduct(products, productID)
		if i < 0 {
			return entities.ErrWishlistItemNotFound
		}

		products = append(products[:i], products[i+1:]...)
		if len(products) == 0 {
			delete(*doc, username)
		} else {
			(*doc)[username] = products
		}
		result = nonNilProducts(products)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("remove wishlist product: %w", err)
	}

	return result, nil
}

// RenameOwner moves a wishlist to a new username, deduplicating against any existing one
func (r *WishlistRepositoryImpl) RenameOwner(ctx context.Context, from, to string) error {
	if from == to {
		return nil
	}

	err := r.wishlists.Mutate(ctx, func(doc *entities.Wishlists) error {
		moved, ok := (*doc)[from]
		if !ok {
			return nil
		}

		products := (*doc)[to]
		for _, p := range moved {
			if indexOfProduct(products, p.ID) < 0 {
				products = append(products, p)
			}
		}

		delete(*doc, from)
		(*doc)[to] = products
		return nil
	})
	if err != nil {
		return fmt.Errorf("rename wishlist owner: %w", err)
	}
	return nil
}

func indexOfProduct(products []entities.Product, id int) int {
	for i, p := range products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func nonNilProducts(products []entities.Product) []entities.Product {
	if products == nil {
		return []entities.Product{}
	}
	return products
}
