package services

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/ficus/storefront/internal/domain/entities"
	"github.com/ficus/storefront/internal/infrastructure/logger"
	"github.com/ficus/storefront/internal/infrastructure/storage"
	"github.com/ficus/storefront/internal/ports"
)

var validate = validator.New()

func validateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

// activityRecorder appends to the activity log on behalf of a service.
// A failed append is logged and never fails the user action.
type activityRecorder struct {
	repo   ports.ActivityRepository
	logger *logger.Logger
}

func (r activityRecorder) record(ctx context.Context, username string, activityType entities.ActivityType) {
	if _, err := r.repo.Append(ctx, username, activityType); err != nil {
		log := r.logger.WithError(err)
		if storage.IsCorruptData(err) {
			log.Errorw("Activity log is corrupt, entry dropped", "username", username, "type", activityType)
			return
		}
		log.Warnw("Failed to record activity", "username", username, "type", activityType)
		return
	}

	r.logger.LogUserAction(username, string(activityType), nil)
}
