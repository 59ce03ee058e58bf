package repository

import (
	"context"
	"fmt"

	"github.com/ficus/storefront/internal/domain/entities"
	"github.com/ficus/storefront/internal/infrastructure/storage"
	"github.com/ficus/storefront/internal/ports"
)

// UserRepositoryImpl implements the UserRepository interface over users.json
type UserRepositoryImpl struct {
	users *storage.Collection[entities.UserList]
}

// NewUserRepository creates a new user repository
func NewUserRepository(store *storage.Store) ports.UserRepository {
	return &UserRepositoryImpl{users: storage.Register(store, usersDef)}
}

func (r *UserRepositoryImpl) GetAll(ctx context.Context) ([]entities.User, error) {
	users, err := r.users.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	return users, nil
}

func (r *UserRepositoryImpl) FindByUsername(ctx context.Context, username string) (*entities.User, error) {
	users, err := r.users.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	i := indexOfUser(users, username)
	if i < 0 {
		return nil, entities.ErrUserNotFound
	}

	user := users[i]
	return &user, nil
}

func (r *UserRepositoryImpl) Upsert(ctx context.Context, currentUsername string, user entities.User) error {
	err := r.users.Mutate(ctx, func(doc *entities.UserList) error {
		target := -1
		if currentUsername != "" {
			if target = indexOfUser(*doc, currentUsername); target < 0 {
				return entities.ErrUserNotFound
			}
		}

		if holder := indexOfUser(*doc, user.Username); holder >= 0 && holder != target {
			return entities.ErrDuplicateUsername
		}

		if target >= 0 {
			(*doc)[target] = user
		} else {
			*doc = append(*doc, user)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("upsert user %q: %w", user.Username, err)
	}

	return nil
}

func (r *UserRepositoryImpl) Update(ctx context.Context, username string, fn func(user *entities.User) error) (*entities.User, error) {
	var updated entities.User
	err := r.users.Mutate(ctx, func(doc *entities.UserList) error {
		target := indexOfUser(*doc, username)
		if target < 0 {
			return entities.ErrUserNotFound
		}

		updated = (*doc)[target]
		if err := fn(&updated); err != nil {
			return err
		}

		if holder := indexOfUser(*doc, updated.Username); holder >= 0 && holder != target {
			return entities.ErrDuplicateUsername
		}

		(*doc)[target] = updated
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update user %q: %w", username, err)
	}

	return &updated, nil
}

func indexOfUser(users entities.UserList, username string) int {
	for i, u := range users {
		if u.Username == username {
			return i
		}
	}
	return -1
}
