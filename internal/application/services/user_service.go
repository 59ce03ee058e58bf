package services

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/ficus/storefront/internal/domain/entities"
	"github.com/ficus/storefront/internal/infrastructure/logger"
	"github.com/ficus/storefront/internal/ports"
)

// UserService handles profile operations
type UserService struct {
	userRepo     ports.UserRepository
	cartRepo     ports.CartRepository
	wishlistRepo ports.WishlistRepository
	activity     activityRecorder
	logger       *logger.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo ports.UserRepository, cartRepo ports.CartRepository, wishlistRepo ports.WishlistRepository, activityRepo ports.ActivityRepository, logger *logger.Logger) *UserService {
	return &UserService{
		userRepo:     userRepo,
		cartRepo:     cartRepo,
		wishlistRepo: wishlistRepo,
		activity:     activityRecorder{repo: activityRepo, logger: logger},
		logger:       logger,
	}
}

// GetProfile retrieves a user by username
func (s *UserService) GetProfile(ctx context.Context, username string) (*entities.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return user, nil
}

// UpdateProfile changes username, password or address. A rename carries the
// user's cart and wishlist over to the new name.
func (s *UserService) UpdateProfile(ctx context.Context, username string, req ports.UpdateProfileRequest) (*entities.User, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	// bcrypt runs before the users lock is taken
	var hashedPassword []byte
	if req.Password != nil {
		var err error
		hashedPassword, err = bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
	}

	updated, err := s.userRepo.Update(ctx, username, func(user *entities.User) error {
		if req.Username != nil {
			user.Username = *req.Username
		}
		if hashedPassword != nil {
			user.Password = string(hashedPassword)
		}
		if req.Address != nil {
			if *req.Address == "" {
				user.Address = nil
			} else {
				address := *req.Address
				user.Address = &address
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	if updated.Username != username {
		if err := s.cartRepo.RenameOwner(ctx, username, updated.Username); err != nil {
			return nil, fmt.Errorf("move cart to %q: %w", updated.Username, err)
		}
		if err := s.wishlistRepo.RenameOwner(ctx, username, updated.Username); err != nil {
			return nil, fmt.Errorf("move wishlist to %q: %w", updated.Username, err)
		}
		s.logger.Infow("User renamed", "from", username, "to", updated.Username)
	}

	s.activity.record(ctx, updated.Username, entities.ActivityUpdatedProfile)
	if hashedPassword != nil {
		s.activity.record(ctx, updated.Username, entities.ActivityChangedPassword)
	}

	return updated, nil
}
