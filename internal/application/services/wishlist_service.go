package services

import (
	"context"

	"github.com/ficus/storefront/internal/domain/entities"
	"github.com/ficus/storefront/internal/infrastructure/logger"
	"github.com/ficus/storefront/internal/ports"
)

// WishlistService handles wishlist operations
type WishlistService struct {
	productRepo  ports.ProductRepository
	wishlistRepo ports.WishlistRepository
	activity     activityRecorder
}

// NewWishlistService creates a new wishlist service
func NewWishlistService(productRepo ports.ProductRepository, wishlistRepo ports.WishlistRepository, activityRepo ports.ActivityRepository, logger *logger.Logger) *WishlistService {
	return &WishlistService{
		productRepo:  productRepo,
		wishlistRepo: wishlistRepo,
		activity:     activityRecorder{repo: activityRepo, logger: logger},
	}
}

func (s *WishlistService) GetWishlist(ctx context.Context, username string) ([]entities.Product, error) {
	return s.wishlistRepo.GetWishlistFor(ctx, username)
}

func (s *WishlistService) AddToWishlist(ctx context.Context, username string, productID int) ([]entities.Product, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	products, err := s.wishlistRepo.AddProduct(ctx, username, *product)
	if err != nil {
		return nil, err
	}

	s.activity.record(ctx, username, entities.ActivityAddToWishlist)
	return products, nil
}

func (s *WishlistService) RemoveFromWishlist(ctx context.Context, username string, productID int) ([]entities.Product, error) {
	products, err := s.wishlistRepo.RemoveProduct(ctx, username, productID)
	if err != nil {
		return nil, err
	}

	s.activity.record(ctx, username, entities.ActivityRemoveFromWishlist)
	return products, nil
}
