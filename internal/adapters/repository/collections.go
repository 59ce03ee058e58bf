package repository

import (
	"github.com/ficus/storefront/internal/domain/entities"
	"github.com/ficus/storefront/internal/infrastructure/storage"
	"github.com/ficus/storefront/internal/ports"
)

// Collection names and their backing files in the data directory
var (
	usersDef = storage.Definition[entities.UserList]{
		Name:  "users",
		File:  "users.json",
		Empty: func() entities.UserList { return entities.UserList{} },
	}
	cartsDef = storage.Definition[entities.Carts]{
		Name:  "cart",
		File:  "cart.json",
		Empty: func() entities.Carts { return entities.Carts{} },
	}
	wishlistsDef = storage.Definition[entities.Wishlists]{
		Name:  "wishlist",
		File:  "wishlist.json",
		Empty: func() entities.Wishlists { return entities.Wishlists{} },
	}
	productsDef = storage.Definition[entities.ProductList]{
		Name:  "products",
		File:  "products.json",
		Empty: func() entities.ProductList { return entities.ProductList{} },
	}
	activityDef = storage.Definition[entities.ActivityLog]{
		Name:  "activity",
		File:  "activity.json",
		Empty: func() entities.ActivityLog { return entities.ActivityLog{} },
	}
)

// Repositories bundles the accessors for every collection of one store
type Repositories struct {
	Users     ports.UserRepository
	Carts     ports.CartRepository
	Wishlists ports.WishlistRepository
	Products  ports.ProductRepository
	Activity  ports.ActivityRepository
}

// New creates all collection accessors over store
func New(store *storage.Store) *Repositories {
	return &Repositories{
		Users:     NewUserRepository(store),
		Carts:     NewCartRepository(store),
		Wishlists: NewWishlistRepository(store),
		Products:  NewProductRepository(store),
		Activity:  NewActivityRepository(store),
	}
}
