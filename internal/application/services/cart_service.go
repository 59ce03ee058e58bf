package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ficus/storefront/internal/domain/entities"
	"github.com/ficus/storefront/internal/infrastructure/logger"
	"github.com/ficus/storefront/internal/ports"
)

// CartService handles shopping cart operations
type CartService struct {
	productRepo ports.ProductRepository
	cartRepo    ports.CartRepository
	activity    activityRecorder
	logger      *logger.Logger
	now         func() time.Time
}

// NewCartService creates a new cart service
func NewCartService(productRepo ports.ProductRepository, cartRepo ports.CartRepository, activityRepo ports.ActivityRepository, logger *logger.Logger) *CartService {
	return &CartService{
		productRepo: productRepo,
		cartRepo:    cartRepo,
		activity:    activityRecorder{repo: activityRepo, logger: logger},
		logger:      logger,
		now:         time.Now,
	}
}

func (s *CartService) GetCart(ctx context.Context, username string) (*ports.CartView, error) {
	lines, err := s.cartRepo.GetCartFor(ctx, username)
	if err != nil {
		return nil, err
	}
	return ports.NewCartView(lines), nil
}

// AddToCart snapshots the product into the user's cart
func (s *CartService) AddToCart(ctx context.Context, username string, req ports.AddToCartRequest) (*ports.CartView, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	// Product lookup happens outside the cart lock
	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	lines, err := s.cartRepo.AddLine(ctx, username, product.ID, req.Quantity, *product)
	if err != nil {
		return nil, err
	}

	s.activity.record(ctx, username, entities.ActivityAddToCart)
	return ports.NewCartView(lines), nil
}

// UpdateQuantity sets a line's quantity; zero removes the line
func (s *CartService) UpdateQuantity(ctx context.Context, username string, productID int, req ports.UpdateCartRequest) (*ports.CartView, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	lines, err := s.cartRepo.SetLineQuantity(ctx, username, productID, req.Quantity)
	if err != nil {
		return nil, err
	}

	s.activity.record(ctx, username, entities.ActivityUpdateCart)
	return ports.NewCartView(lines), nil
}

func (s *CartService) RemoveFromCart(ctx context.Context, username string, productID int) (*ports.CartView, error) {
	lines, err := s.cartRepo.RemoveLine(ctx, username, productID)
	if err != nil {
		return nil, err
	}

	s.activity.record(ctx, username, entities.ActivityRemoveFromCart)
	return ports.NewCartView(lines), nil
}

// Checkout empties the cart and returns the resulting order
func (s *CartService) Checkout(ctx context.Context, username string, req ports.CheckoutRequest) (*entities.Order, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	lines, err := s.cartRepo.TakeCart(ctx, username)
	if err != nil {
		return nil, err
	}

	order := &entities.Order{
		ID:            uuid.New(),
		Username:      username,
		Address:       req.Address,
		PaymentMethod: req.PaymentMethod,
		Lines:         lines,
		Total:         entities.CartTotal(lines),
		Date:          s.now().UTC(),
	}

	s.logger.LogUserAction(username, "order_placed", map[string]interface{}{
		"order_id": order.ID.String(),
		"lines":    len(order.Lines),
		"total":    fmt.Sprintf("%.2f", order.Total),
	})
	s.activity.record(ctx, username, entities.ActivityCheckout)

	return order, nil
}
