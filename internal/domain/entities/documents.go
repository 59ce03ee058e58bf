package entities

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Document types are the on-disk shape of each collection file.
type (
	UserList    []User
	Carts       map[string][]CartLine
	Wishlists   map[string][]Product
	ProductList []Product
	ActivityLog []ActivityEntry
)

var validate = validator.New()

// Validate checks field constraints and username uniqueness
func (l UserList) Validate() error {
	if err := validate.Var(l, "dive"); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(l))
	for i, u := range l {
		if _, ok := seen[u.Username]; ok {
			return fmt.Errorf("users[%d]: duplicate username %q", i, u.Username)
		}
		seen[u.Username] = struct{}{}
	}
	return nil
}

// Validate checks every line and enforces one line per (username, productId)
func (c Carts) Validate() error {
	for username, lines := range c {
		if username == "" {
			return fmt.Errorf("cart: empty username key")
		}
		if err := validate.Var(lines, "dive"); err != nil {
			return fmt.Errorf("cart[%s]: %w", username, err)
		}
		seen := make(map[int]struct{}, len(lines))
		for _, line := range lines {
			if _, ok := seen[line.ProductID]; ok {
				return fmt.Errorf("cart[%s]: duplicate line for product %d", username, line.ProductID)
			}
			seen[line.ProductID] = struct{}{}
		}
	}
	return nil
}

func (w Wishlists) Validate() error {
	for username, products := range w {
		if username == "" {
			return fmt.Errorf("wishlist: empty username key")
		}
		if err := validate.Var(products, "dive"); err != nil {
			return fmt.Errorf("wishlist[%s]: %w", username, err)
		}
		seen := make(map[int]struct{}, len(products))
		for _, p := range products {
			if _, ok := seen[p.ID]; ok {
				return fmt.Errorf("wishlist[%s]: duplicate product %d", username, p.ID)
			}
			seen[p.ID] = struct{}{}
		}
	}
	return nil
}

func (l ProductList) Validate() error {
	if err := validate.Var(l, "dive"); err != nil {
		return err
	}
	seen := make(map[int]struct{}, len(l))
	for i, p := range l {
		if _, ok := seen[p.ID]; ok {
			return fmt.Errorf("products[%d]: duplicate id %d", i, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

func (l ActivityLog) Validate() error {
	return validate.Var(l, "dive")
}

// NextID returns max(existing ids, 0) + 1
func (l ProductList) NextID() int {
	maxID := 0
	for _, p := range l {
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	return maxID + 1
}
