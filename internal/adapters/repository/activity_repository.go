package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ficus/storefront/internal/domain/entities"
	"github.com/ficus/storefront/internal/infrastructure/storage"
	"github.com/ficus/storefront/internal/ports"
)

// ActivityRepositoryImpl implements the ActivityRepository interface over activity.json
type ActivityRepositoryImpl struct {
	activity *storage.Collection[entities.ActivityLog]
	now      func() time.Time
}

// NewActivityRepository creates a new activity log repository
func NewActivityRepository(store *storage.Store) ports.ActivityRepository {
	return &ActivityRepositoryImpl{
		activity: storage.Register(store, activityDef),
		now:      time.Now,
	}
}

// Append records one entry at the end of the log
func (r *ActivityRepositoryImpl) Append(ctx context.Context, username string, activityType entities.ActivityType) (*entities.ActivityEntry, error) {
	if username == "" {
		return nil, errors.New("append activity: username is required")
	}
	if !activityType.IsValid() {
		return nil, fmt.Errorf("append activity: unknown type %q", activityType)
	}

	var entry entities.ActivityEntry
	err := r.activity.Mutate(ctx, func(doc *entities.ActivityLog) error {
		// stamped inside the lock so timestamps follow insertion order
		entry = entities.ActivityEntry{
			Datetime: r.now().UTC().Truncate(time.Millisecond),
			Username: username,
			Type:     activityType,
		}
		*doc = append(*doc, entry)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("append activity: %w", err)
	}

	return &entry, nil
}

func (r *ActivityRepositoryImpl) GetAll(ctx context.Context) ([]entities.ActivityEntry, error) {
	entries, err := r.activity.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}
	return entries, nil
}

// QueryByUsernamePrefix returns matching entries oldest first. Matching is case-sensitive.
func (r *ActivityRepositoryImpl) QueryByUsernamePrefix(ctx context.Context, prefix string) ([]entities.ActivityEntry, error) {
	entries, err := r.activity.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}

	matched := make([]entities.ActivityEntry, 0, len(entries))
	for _, entry := range entries {
		if strings.HasPrefix(entry.Username, prefix) {
			matched = append(matched, entry)
		}
	}
	return matched, nil
}
