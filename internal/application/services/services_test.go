package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ficus/storefront/internal/adapters/repository"
	"github.com/ficus/storefront/internal/application/services"
	"github.com/ficus/storefront/internal/domain/entities"
	"github.com/ficus/storefront/internal/infrastructure/config"
	"github.com/ficus/storefront/internal/infrastructure/logger"
	"github.com/ficus/storefront/internal/infrastructure/storage"
	"github.com/ficus/storefront/internal/ports"
)

var sessionConfig = config.SessionConfig{
	Secret:      "test-secret",
	CookieName:  "session",
	TTL:         30 * time.Minute,
	RememberTTL: 240 * time.Hour,
	Issuer:      "ficus-test",
}

type fixture struct {
	repos    *repository.Repositories
	auth     *services.AuthService
	users    *services.UserService
	catalog  *services.CatalogService
	cart     *services.CartService
	wishlist *services.WishlistService
	admin    *services.AdminService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := storage.New(t.TempDir())
	require.NoError(t, err)

	repos := repository.New(store)
	log := logger.NewNop()

	return &fixture{
		repos:    repos,
		auth:     services.NewAuthService(repos.Users, repos.Activity, sessionConfig, log),
		users:    services.NewUserService(repos.Users, repos.Carts, repos.Wishlists, repos.Activity, log),
		catalog:  services.NewCatalogService(repos.Products, log),
		cart:     services.NewCartService(repos.Products, repos.Carts, repos.Activity, log),
		wishlist: services.NewWishlistService(repos.Products, repos.Wishlists, repos.Activity, log),
		admin:    services.NewAdminService(repos.Products, repos.Activity, log),
	}
}

func (f *fixture) seedProducts(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	for _, fields := range []entities.ProductFields{
		{Name: "Fiddle Leaf Fig", Price: 40, Category: "Plants"},
		{Name: "Terracotta Pot", Price: 12.5, Category: "Pots"},
		{Name: "Watering Can", Price: 18, Category: "Tools"},
	} {
		_, err := f.admin.CreateProduct(ctx, "admin", fields)
		require.NoError(t, err)
	}
}

func activityTypes(t *testing.T, f *fixture, username string) []entities.ActivityType {
	t.Helper()
	entries, err := f.repos.Activity.QueryByUsernamePrefix(context.Background(), username)
	require.NoError(t, err)

	types := make([]entities.ActivityType, 0, len(entries))
	for _, e := range entries {
		types = append(types, e.Type)
	}
	return types
}

func TestAuthService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	resp, err := f.auth.Register(ctx, ports.RegisterRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.User.Username)

	t.Run("Password is stored hashed", func(t *testing.T) {
		user, err := f.repos.Users.FindByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.NotEqual(t, "secret1", user.Password)
	})

	t.Run("Duplicate registration", func(t *testing.T) {
		_, err := f.auth.Register(ctx, ports.RegisterRequest{Username: "alice", Password: "another"})
		assert.ErrorIs(t, err, entities.ErrDuplicateUsername)
	})

	t.Run("Invalid request", func(t *testing.T) {
		_, err := f.auth.Register(ctx, ports.RegisterRequest{Username: "al", Password: "x"})
		var validationErrs validator.ValidationErrors
		assert.ErrorAs(t, err, &validationErrs)
	})

	t.Run("Wrong password", func(t *testing.T) {
		_, err := f.auth.Login(ctx, ports.LoginRequest{Username: "alice", Password: "nope"})
		assert.ErrorIs(t, err, entities.ErrInvalidCredentials)
	})

	t.Run("Unknown user", func(t *testing.T) {
		_, err := f.auth.Login(ctx, ports.LoginRequest{Username: "mallory", Password: "secret1"})
		assert.ErrorIs(t, err, entities.ErrInvalidCredentials)
	})

	t.Run("Remember me extends the session", func(t *testing.T) {
		short, err := f.auth.Login(ctx, ports.LoginRequest{Username: "alice", Password: "secret1"})
		require.NoError(t, err)
		long, err := f.auth.Login(ctx, ports.LoginRequest{Username: "alice", Password: "secret1", RememberMe: true})
		require.NoError(t, err)

		assert.WithinDuration(t, time.Now().Add(30*time.Minute), short.ExpiresAt, time.Minute)
		assert.WithinDuration(t, time.Now().Add(240*time.Hour), long.ExpiresAt, time.Minute)
	})

	t.Run("Token round trip", func(t *testing.T) {
		claims, err := f.auth.ValidateToken(ctx, resp.Token)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Username)

		other := sessionConfig
		other.Secret = "different"
		foreign := services.NewAuthService(f.repos.Users, f.repos.Activity, other, logger.NewNop())
		_, err = foreign.ValidateToken(ctx, resp.Token)
		assert.ErrorIs(t, err, entities.ErrInvalidSession)
	})

	require.NoError(t, f.auth.Logout(ctx, "alice"))
	assert.Equal(t, []entities.ActivityType{
		entities.ActivityRegister,
		entities.ActivityLogin,
		entities.ActivityLogin,
		entities.ActivityLogout,
	}, activityTypes(t, f, "alice"))
}

func TestCartServiceCheckout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedProducts(t)

	_, err := f.cart.Checkout(ctx, "bob", ports.CheckoutRequest{Address: "1 Fig Lane", PaymentMethod: "card"})
	assert.ErrorIs(t, err, entities.ErrEmptyCart)

	_, err = f.cart.AddToCart(ctx, "bob", ports.AddToCartRequest{ProductID: 1, Quantity: 1})
	require.NoError(t, err)
	view, err := f.cart.AddToCart(ctx, "bob", ports.AddToCartRequest{ProductID: 2, Quantity: 2})
	require.NoError(t, err)
	assert.Len(t, view.Lines, 2)
	assert.InDelta(t, 65.0, view.Total, 0.001)

	_, err = f.cart.AddToCart(ctx, "bob", ports.AddToCartRequest{ProductID: 99, Quantity: 1})
	assert.ErrorIs(t, err, entities.ErrProductNotFound)

	order, err := f.cart.Checkout(ctx, "bob", ports.CheckoutRequest{Address: "1 Fig Lane", PaymentMethod: "card"})
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID.String())
	assert.Equal(t, "bob", order.Username)
	assert.Len(t, order.Lines, 2)
	assert.InDelta(t, 65.0, order.Total, 0.001)

	view, err = f.cart.GetCart(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
	assert.Zero(t, view.Total)

	assert.Equal(t, []entities.ActivityType{
		entities.ActivityAddToCart,
		entities.ActivityAddToCart,
		entities.ActivityCheckout,
	}, activityTypes(t, f, "bob"))
}

func TestCartServiceUpdateAndRemove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedProducts(t)

	_, err := f.cart.AddToCart(ctx, "bob", ports.AddToCartRequest{ProductID: 3, Quantity: 1})
	require.NoError(t, err)

	view, err := f.cart.UpdateQuantity(ctx, "bob", 3, ports.UpdateCartRequest{Quantity: 4})
	require.NoError(t, err)
	assert.InDelta(t, 72.0, view.Total, 0.001)

	view, err = f.cart.RemoveFromCart(ctx, "bob", 3)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)

	_, err = f.cart.RemoveFromCart(ctx, "bob", 3)
	assert.True(t, entities.IsNotFound(err))
}

func TestUserServiceRenameMovesCartAndWishlist(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedProducts(t)

	_, err := f.auth.Register(ctx, ports.RegisterRequest{Username: "carol", Password: "secret1"})
	require.NoError(t, err)
	_, err = f.auth.Register(ctx, ports.RegisterRequest{Username: "dave", Password: "secret1"})
	require.NoError(t, err)
	_, err = f.cart.AddToCart(ctx, "carol", ports.AddToCartRequest{ProductID: 1, Quantity: 2})
	require.NoError(t, err)
	_, err = f.wishlist.AddToWishlist(ctx, "carol", 2)
	require.NoError(t, err)

	t.Run("Taken username", func(t *testing.T) {
		taken := "dave"
		_, err := f.users.UpdateProfile(ctx, "carol", ports.UpdateProfileRequest{Username: &taken})
		assert.ErrorIs(t, err, entities.ErrDuplicateUsername)
	})

	session, err := f.auth.Login(ctx, ports.LoginRequest{Username: "carol", Password: "secret1"})
	require.NoError(t, err)

	newName := "caroline"
	newPassword := "secret2"
	user, err := f.users.UpdateProfile(ctx, "carol", ports.UpdateProfileRequest{Username: &newName, Password: &newPassword})
	require.NoError(t, err)
	assert.Equal(t, "caroline", user.Username)

	_, err = f.auth.ValidateToken(ctx, session.Token)
	assert.ErrorIs(t, err, entities.ErrInvalidSession)

	view, err := f.cart.GetCart(ctx, "caroline")
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 2, view.Lines[0].Quantity)

	wishlist, err := f.wishlist.GetWishlist(ctx, "caroline")
	require.NoError(t, err)
	assert.Len(t, wishlist, 1)

	_, err = f.auth.Login(ctx, ports.LoginRequest{Username: "caroline", Password: "secret2"})
	require.NoError(t, err)

	_, err = f.users.GetProfile(ctx, "carol")
	assert.ErrorIs(t, err, entities.ErrUserNotFound)

	assert.Equal(t, []entities.ActivityType{
		entities.ActivityUpdatedProfile,
		entities.ActivityChangedPassword,
		entities.ActivityLogin,
	}, activityTypes(t, f, "caroline"))
}

func TestUserServiceConcurrentProfileUpdates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.auth.Register(ctx, ports.RegisterRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)

	for round := 0; round < 5; round++ {
		address := fmt.Sprintf("%d Fig Lane", round)
		password := fmt.Sprintf("newpass%d", round)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := f.users.UpdateProfile(ctx, "alice", ports.UpdateProfileRequest{Address: &address})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := f.users.UpdateProfile(ctx, "alice", ports.UpdateProfileRequest{Password: &password})
			assert.NoError(t, err)
		}()
		wg.Wait()

		user, err := f.users.GetProfile(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, user.Address)
		assert.Equal(t, address, *user.Address, "round %d", round)

		_, err = f.auth.Login(ctx, ports.LoginRequest{Username: "alice", Password: password})
		assert.NoError(t, err, "round %d", round)
	}
}

func TestCatalogSearch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedProducts(t)

	tests := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"fig", 1},
		{"POT", 1},
		{"tools", 1},
		{"cactus", 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			products, err := f.catalog.Search(ctx, tt.query)
			require.NoError(t, err)
			assert.Len(t, products, tt.want)
		})
	}
}

func TestAdminDashboard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedProducts(t)

	require.NoError(t, f.admin.DeleteProduct(ctx, "admin", 2))
	assert.True(t, entities.IsNotFound(f.admin.DeleteProduct(ctx, "admin", 2)))

	dashboard, err := f.admin.Dashboard(ctx)
	require.NoError(t, err)
	assert.Len(t, dashboard.Products, 2)
	require.Len(t, dashboard.Activities, 4)
	assert.Equal(t, entities.ActivityProductDeleted, dashboard.Activities[0].Type)
	assert.Equal(t, entities.ActivityProductCreated, dashboard.Activities[3].Type)

	entries, err := f.admin.ActivityByPrefix(ctx, "adm")
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, entities.ActivityProductCreated, entries[0].Type)
	assert.Equal(t, entities.ActivityProductDeleted, entries[3].Type)

	_, err = f.admin.CreateProduct(ctx, "admin", entities.ProductFields{Price: 1})
	assert.Error(t, err)
}
