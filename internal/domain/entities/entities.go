package entities

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrNotFound             = errors.New("not found")
	ErrUserNotFound         = fmt.Errorf("user %w", ErrNotFound)
	ErrProductNotFound      = fmt.Errorf("product %w", ErrNotFound)
	ErrCartLineNotFound     = fmt.Errorf("cart line %w", ErrNotFound)
	ErrWishlistItemNotFound = fmt.Errorf("wishlist item %w", ErrNotFound)
	ErrDuplicateUsername    = errors.New("username already taken")
	ErrInvalidQuantity      = errors.New("invalid quantity")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrInvalidSession       = errors.New("invalid session")
	ErrEmptyCart            = errors.New("cart is empty")
)

// ActivityType is the kind of event recorded in the activity log
type ActivityType string

const (
	ActivityLogin              ActivityType = "login"
	ActivityLogout             ActivityType = "logout"
	ActivityRegister           ActivityType = "register"
	ActivityAddToCart          ActivityType = "add-to-cart"
	ActivityUpdateCart         ActivityType = "update-cart"
	ActivityRemoveFromCart     ActivityType = "remove-from-cart"
	ActivityCheckout           ActivityType = "checkout"
	ActivityAddToWishlist      ActivityType = "add-to-wishlist"
	ActivityRemoveFromWishlist ActivityType = "remove-from-wishlist"
	ActivityChangedPassword    ActivityType = "changed-password"
	ActivityUpdatedProfile     ActivityType = "updated-profile"
	ActivityProductCreated     ActivityType = "product-created"
	ActivityProductDeleted     ActivityType = "product-deleted"
)

// User represents a registered shopper. Password holds a bcrypt hash.
type User struct {
	Username string  `json:"username" validate:"required"`
	Password string  `json:"password" validate:"required"`
	Address  *string `json:"address,omitempty"`
}

// Product represents a catalog item
type Product struct {
	ID          int     `json:"id" validate:"gt=0"`
	Name        string  `json:"name" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Category    string  `json:"category,omitempty"`
}

// ProductFields holds the admin-supplied attributes of a new product
type ProductFields struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Price       float64 `json:"price" validate:"gte=0"`
	Description string  `json:"description" validate:"max=2000"`
	Image       string  `json:"image"`
	Category    string  `json:"category" validate:"max=100"`
}

// CartLine is a product snapshot denormalized into a user's cart at add time
type CartLine struct {
	ProductID int     `json:"productId" validate:"gt=0"`
	Quantity  int     `json:"quantity" validate:"gt=0"`
	Name      string  `json:"name" validate:"required"`
	Price     float64 `json:"price" validate:"gte=0"`
}

// ActivityEntry is one append-only activity log record
type ActivityEntry struct {
	Datetime time.Time    `json:"datetime" validate:"required"`
	Username string       `json:"username" validate:"required"`
	Type     ActivityType `json:"type" validate:"required"`
}

// Order is the receipt produced by a successful checkout. It is not persisted.
type Order struct {
	ID            uuid.UUID  `json:"id"`
	Username      string     `json:"username"`
	Address       string     `json:"address"`
	PaymentMethod string     `json:"payment_method"`
	Lines         []CartLine `json:"lines"`
	Total         float64    `json:"total"`
	Date          time.Time  `json:"date"`
}

// Business logic methods for Product
func (p Product) Snapshot(quantity int) CartLine {
	return CartLine{
		ProductID: p.ID,
		Quantity:  quantity,
		Name:      p.Name,
		Price:     p.Price,
	}
}

// Business logic methods for CartLine
func (l CartLine) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}

// CartTotal sums price*quantity over all lines
func CartTotal(lines []CartLine) float64 {
	total := 0.0
	for _, line := range lines {
		total += line.Subtotal()
	}
	return total
}

// IsValid reports whether t is one of the known activity types
func (t ActivityType) IsValid() bool {
	switch t {
	case ActivityLogin, ActivityLogout, ActivityRegister,
		ActivityAddToCart, ActivityUpdateCart, ActivityRemoveFromCart, ActivityCheckout,
		ActivityAddToWishlist, ActivityRemoveFromWishlist,
		ActivityChangedPassword, ActivityUpdatedProfile,
		ActivityProductCreated, ActivityProductDeleted:
		return true
	default:
		return false
	}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
