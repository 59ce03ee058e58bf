package services

import (
	"context"
	"fmt"

	"github.com/ficus/storefront/internal/domain/entities"
	"github.com/ficus/storefront/internal/infrastructure/logger"
	"github.com/ficus/storefront/internal/ports"
)

// AdminService backs the admin panel and the CLI catalog commands
type AdminService struct {
	productRepo  ports.ProductRepository
	activityRepo ports.ActivityRepository
	activity     activityRecorder
	logger       *logger.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(productRepo ports.ProductRepository, activityRepo ports.ActivityRepository, logger *logger.Logger) *AdminService {
	return &AdminService{
		productRepo:  productRepo,
		activityRepo: activityRepo,
		activity:     activityRecorder{repo: activityRepo, logger: logger},
		logger:       logger,
	}
}

// Dashboard returns the activity log newest first together with the catalog
func (s *AdminService) Dashboard(ctx context.Context) (*ports.Dashboard, error) {
	entries, err := s.activityRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load activity: %w", err)
	}

	products, err := s.productRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	return &ports.Dashboard{
		Activities: newestFirst(entries),
		Products:   products,
	}, nil
}

// ActivityByPrefix filters the activity log by username prefix, in log order
func (s *AdminService) ActivityByPrefix(ctx context.Context, prefix string) ([]entities.ActivityEntry, error) {
	return s.activityRepo.QueryByUsernamePrefix(ctx, prefix)
}

func (s *AdminService) CreateProduct(ctx context.Context, admin string, fields entities.ProductFields) (*entities.Product, error) {
	if err := validateRequest(fields); err != nil {
		return nil, err
	}

	product, err := s.productRepo.Create(ctx, fields)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("Product created", "product_id", product.ID, "name", product.Name, "admin", admin)
	s.activity.record(ctx, admin, entities.ActivityProductCreated)
	return product, nil
}

func (s *AdminService) DeleteProduct(ctx context.Context, admin string, id int) error {
	if err := s.productRepo.DeleteByID(ctx, id); err != nil {
		return err
	}

	s.logger.Infow("Product deleted", "product_id", id, "admin", admin)
	s.activity.record(ctx, admin, entities.ActivityProductDeleted)
	return nil
}

func newestFirst(entries []entities.ActivityEntry) []entities.ActivityEntry {
	reversed := make([]entities.ActivityEntry, len(entries))
	for i, entry := range entries {
		reversed[len(entries)-1-i] = entry
	}
	return reversed
}
