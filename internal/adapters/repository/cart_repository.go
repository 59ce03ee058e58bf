package repository

import (
	"context"
	"fmt"
	"math"

	"github.com/ficus/storefront/internal/domain/entities"
	"github.com/ficus/storefront/internal/infrastructure/storage"
	"github.com/ficus/storefront/internal/ports"
)

// CartRepositoryImpl implements the CartRepository interface over cart.json
type CartRepositoryImpl struct {
	carts *storage.Collection[entities.Carts]
}

// NewCartRepository creates a new cart repository
func NewCartRepository(store *storage.Store) ports.CartRepository {
	return &CartRepositoryImpl{carts: storage.Register(store, cartsDef)}
}

func (r *CartRepositoryImpl) GetCartFor(ctx context.Context, username string) ([]entities.CartLine, error) {
	carts, err := r.carts.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return nonNilLines(carts[username]), nil
}

// AddLine merges quantity into the existing line for productID, or appends a
// new line built from the product snapshot.
func (r *CartRepositoryImpl) AddLine(ctx context.Context, username string, productID, quantity int, product entities.Product) ([]entities.CartLine, error) {
	if productID <= 0 {
		return nil, fmt.Errorf("add cart line: %w", entities.ErrProductNotFound)
	}
	if quantity <= 0 {
		return nil, entities.ErrInvalidQuantity
	}

	var result []entities.CartLine
	err := r.carts.Mutate(ctx, func(doc *entities.Carts) error {
		lines := (*doc)[username]
		if i := indexOfLine(lines, productID); i >= 0 {
			if lines[i].Quantity > math.MaxInt-quantity {
				return entities.ErrInvalidQuantity
			}
			lines[i].Quantity += quantity
		} else {
			line := product.Snapshot(quantity)
			line.ProductID = productID
			lines = append(lines, line)
		}

		(*doc)[username] = lines
		result = lines
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("add cart line: %w", err)
	}

	return result, nil
}

// SetLineQuantity overwrites a line's quantity; zero removes the line
func (r *CartRepositoryImpl) SetLineQuantity(ctx context.Context, username string, productID, quantity int) ([]entities.CartLine, error) {
	if quantity < 0 {
		return nil, entities.ErrInvalidQuantity
	}

	var result []entities.CartLine
	err := r.carts.Mutate(ctx, func(doc *entities.Carts) error {
		lines := (*doc)[username]
		i := indexOfLine(lines, productID)
		if i < 0 {
			return entities.ErrCartLineNotFound
		}

		if quantity == 0 {
			lines = append(lines[:i], lines[i+1:]...)
		} else {
			lines[i].Quantity = quantity
		}

		result = putLines(*doc, username, lines)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("set cart line quantity: %w", err)
	}

	return result, nil
}

func (r *CartRepositoryImpl) RemoveLine(ctx context.Context, username string, productID int) ([]entities.CartLine, error) {
	var result []entities.CartLine
	err := r.carts.Mutate(ctx, func(doc *entities.Carts) error {
		lines := (*doc)[username]
		i := indexOfLine(lines, productID)
		if i < 0 {
			return entities.ErrCartLineNotFound
		}

		result = putLines(*doc, username, append(lines[:i], lines[i+1:]...))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("remove cart line: %w", err)
	}

	return result, nil
}

func (r *CartRepositoryImpl) ClearCart(ctx context.Context, username string) error {
	err := r.carts.Mutate(ctx, func(doc *entities.Carts) error {
		delete(*doc, username)
		return nil
	})
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// TakeCart removes the user's cart and returns its lines in the same
// critical section, so lines added concurrently are never cleared unseen.
func (r *CartRepositoryImpl) TakeCart(ctx context.Context, username string) ([]entities.CartLine, error) {
	var taken []entities.CartLine
	err := r.carts.Mutate(ctx, func(doc *entities.Carts) error {
		taken = (*doc)[username]
		if len(taken) == 0 {
			return entities.ErrEmptyCart
		}
		delete(*doc, username)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("take cart: %w", err)
	}

	return taken, nil
}

// RenameOwner moves a cart to a new username, merging into any existing cart there
func (r *CartRepositoryImpl) RenameOwner(ctx context.Context, from, to string) error {
	if from == to {
		return nil
	}

	err := r.carts.Mutate(ctx, func(doc *entities.Carts) error {
		moved, ok := (*doc)[from]
		if !ok {
			return nil
		}

		lines := (*doc)[to]
		for _, line := range moved {
			if i := indexOfLine(lines, line.ProductID); i >= 0 {
				lines[i].Quantity += line.Quantity
			} else {
				lines = append(lines, line)
			}
		}

		delete(*doc, from)
		(*doc)[to] = lines
		return nil
	})
	if err != nil {
		return fmt.Errorf("rename cart owner: %w", err)
	}
	return nil
}

func indexOfLine(lines []entities.CartLine, productID int) int {
	for i, line := range lines {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

// putLines stores lines for username, dropping the entry once it is empty
func putLines(carts entities.Carts, username string, lines []entities.CartLine) []entities.CartLine {
	if len(lines) == 0 {
		delete(carts, username)
		return []entities.CartLine{}
	}
	carts[username] = lines
	return lines
}

func nonNilLines(lines []entities.CartLine) []entities.CartLine {
	if lines == nil {
		return []entities.CartLine{}
	}
	return lines
}
