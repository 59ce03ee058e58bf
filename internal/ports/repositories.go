package ports

import (
	"context"

	"github.com/ficus/storefront/internal/domain/entities"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	GetAll(ctx context.Context) ([]entities.User, error)
	FindByUsername(ctx context.Context, username string) (*entities.User, error)
	// Upsert stores user under currentUsername, or creates it when currentUsername is empty.
	Upsert(ctx context.Context, currentUsername string, user entities.User) error
	// Update applies fn to the stored user in one cycle and returns the result.
	Update(ctx context.Context, username string, fn func(user *entities.User) error) (*entities.User, error)
}

// CartRepository defines the interface for per-user cart operations
type CartRepository interface {
	GetCartFor(ctx context.Context, username string) ([]entities.CartLine, error)
	AddLine(ctx context.Context, username string, productID, quantity int, product entities.Product) ([]entities.CartLine, error)
	SetLineQuantity(ctx context.Context, username string, productID, quantity int) ([]entities.CartLine, error)
	RemoveLine(ctx context.Context, username string, productID int) ([]entities.CartLine, error)
	ClearCart(ctx context.Context, username string) error
	// TakeCart removes and returns the user's cart in one cycle.
	TakeCart(ctx context.Context, username string) ([]entities.CartLine, error)
	RenameOwner(ctx context.Context, from, to string) error
}

// WishlistRepository defines the interface for per-user wishlist operations
type WishlistRepository interface {
	GetWishlistFor(ctx context.Context, username string) ([]entities.Product, error)
	AddProduct(ctx context.Context, username string, product entities.Product) ([]entities.Product, error)
	RemoveProduct(ctx context.Context, username string, productID int) ([]entities.Product, error)
	RenameOwner(ctx context.Context, from, to string) error
}

// ProductRepository defines the interface for catalog operations
type ProductRepository interface {
	GetAll(ctx context.Context) ([]entities.Product, error)
	GetByID(ctx context.Context, id int) (*entities.Product, error)
	Create(ctx context.Context, fields entities.ProductFields) (*entities.Product, error)
	DeleteByID(ctx context.Context, id int) error
}

// ActivityRepository defines the interface for the append-only activity log
type ActivityRepository interface {
	Append(ctx context.Context, username string, activityType entities.ActivityType) (*entities.ActivityEntry, error)
	GetAll(ctx context.Context) ([]entities.ActivityEntry, error)
	QueryByUsernamePrefix(ctx context.Context, prefix string) ([]entities.ActivityEntry, error)
}
