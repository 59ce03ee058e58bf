package ports

import (
	"context"
	"time"

	"github.com/ficus/storefront/internal/domain/entities"
)

// AuthService interface for authentication operations
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Logout(ctx context.Context, username string) error
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// UserService interface for profile operations
type UserService interface {
	GetProfile(ctx context.Context, username string) (*entities.User, error)
	UpdateProfile(ctx context.Context, username string, req UpdateProfileRequest) (*entities.User, error)
}

// CatalogService interface for browsing products
type CatalogService interface {
	ListProducts(ctx context.Context) ([]entities.Product, error)
	GetProduct(ctx context.Context, id int) (*entities.Product, error)
	Search(ctx context.Context, query string) ([]entities.Product, error)
}

// CartService interface for shopping cart operations
type CartService interface {
	GetCart(ctx context.Context, username string) (*CartView, error)
	AddToCart(ctx context.Context, username string, req AddToCartRequest) (*CartView, error)
	UpdateQuantity(ctx context.Context, username string, productID int, req UpdateCartRequest) (*CartView, error)
	RemoveFromCart(ctx context.Context, username string, productID int) (*CartView, error)
	Checkout(ctx context.Context, username string, req CheckoutRequest) (*entities.Order, error)
}

// WishlistService interface for wishlist operations
type WishlistService interface {
	GetWishlist(ctx context.Context, username string) ([]entities.Product, error)
	AddToWishlist(ctx context.Context, username string, productID int) ([]entities.Product, error)
	RemoveFromWishlist(ctx context.Context, username string, productID int) ([]entities.Product, error)
}

// AdminService interface for the admin panel
type AdminService interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
	ActivityByPrefix(ctx context.Context, prefix string) ([]entities.ActivityEntry, error)
	CreateProduct(ctx context.Context, admin string, fields entities.ProductFields) (*entities.Product, error)
	DeleteProduct(ctx context.Context, admin string, id int) error
}

// Request/Response Types

// Auth related types
type RegisterRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=50"`
	Password string  `json:"password" validate:"required,min=6,max=72"`
	Address  *string `json:"address" validate:"omitempty,max=500"`
}

type LoginRequest struct {
	Username   string `json:"username" validate:"required"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe"`
}

type AuthResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      *UserResponse `json:"user"`
}

type Claims struct {
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

// User related types
type UserResponse struct {
	Username string  `json:"username"`
	Address  *string `json:"address,omitempty"`
}

// NewUserResponse strips the password hash from a stored user
func NewUserResponse(user *entities.User) *UserResponse {
	return &UserResponse{Username: user.Username, Address: user.Address}
}

type UpdateProfileRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=50"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
	Address  *string `json:"address" validate:"omitempty,max=500"`
}

// Cart related types
type AddToCartRequest struct {
	ProductID int `json:"productId" validate:"required,gt=0"`
	Quantity  int `json:"quantity" validate:"required,gt=0"`
}

type UpdateCartRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

type CheckoutRequest struct {
	Address       string `json:"address" validate:"required,max=500"`
	PaymentMethod string `json:"payment_method" validate:"required,max=50"`
}

type CartView struct {
	Lines []entities.CartLine `json:"lines"`
	Total float64             `json:"total"`
}

// NewCartView computes the cart total over lines
func NewCartView(lines []entities.CartLine) *CartView {
	if lines == nil {
		lines = []entities.CartLine{}
	}
	return &CartView{Lines: lines, Total: entities.CartTotal(lines)}
}

// Wishlist related types
type WishlistRequest struct {
	ProductID int `json:"productId" validate:"required,gt=0"`
}

// Admin related types
type Dashboard struct {
	Activities []entities.ActivityEntry `json:"activities"`
	Products   []entities.Product       `json:"products"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

