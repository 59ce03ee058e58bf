package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ficus/storefront/internal/infrastructure/logger"
	"github.com/ficus/storefront/internal/ports"
)

// ShopHandler handles catalog, cart and wishlist requests
type ShopHandler struct {
	catalogService  ports.CatalogService
	cartService     ports.CartService
	wishlistService ports.WishlistService
	logger          *logger.Logger
}

// NewShopHandler creates a new shop handler
func NewShopHandler(catalogService ports.CatalogService, cartService ports.CartService, wishlistService ports.WishlistService, logger *logger.Logger) *ShopHandler {
	return &ShopHandler{
		catalogService:  catalogService,
		cartService:     cartService,
		wishlistService: wishlistService,
		logger:          logger,
	}
}

func (h *ShopHandler) ListProducts(c echo.Context) error {
	products, err := h.catalogService.ListProducts(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ShopHandler) GetProduct(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}

	product, err := h.catalogService.GetProduct(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ShopHandler) Search(c echo.Context) error {
	products, err := h.catalogService.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ShopHandler) GetCart(c echo.Context) error {
	view, err := h.cartService.GetCart(c.Request().Context(), usernameFromContext(c))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *ShopHandler) AddToCart(c echo.Context) error {
	var req ports.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request format")
	}

	view, err := h.cartService.AddToCart(c.Request().Context(), usernameFromContext(c), req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *ShopHandler) UpdateCart(c echo.Context) error {
	productID, err := intParam(c, "productId")
	if err != nil {
		return err
	}

	var req ports.UpdateCartRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request format")
	}

	view, err := h.cartService.UpdateQuantity(c.Request().Context(), usernameFromContext(c), productID, req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *ShopHandler) RemoveFromCart(c echo.Context) error {
	productID, err := intParam(c, "productId")
	if err != nil {
		return err
	}

	view, err := h.cartService.RemoveFromCart(c.Request().Context(), usernameFromContext(c), productID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *ShopHandler) Checkout(c echo.Context) error {
	var req ports.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request format")
	}

	order, err := h.cartService.Checkout(c.Request().Context(), usernameFromContext(c), req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, order)
}

func (h *ShopHandler) GetWishlist(c echo.Context) error {
	products, err := h.wishlistService.GetWishlist(c.Request().Context(), usernameFromContext(c))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ShopHandler) AddToWishlist(c echo.Context) error {
	var req ports.WishlistRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request format")
	}
	if req.ProductID <= 0 {
		return badRequest("Invalid productId")
	}

	products, err := h.wishlistService.AddToWishlist(c.Request().Context(), usernameFromContext(c), req.ProductID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ShopHandler) RemoveFromWishlist(c echo.Context) error {
	productID, err := intParam(c, "productId")
	if err != nil {
		return err
	}

	products, err := h.wishlistService.RemoveFromWishlist(c.Request().Context(), usernameFromContext(c), productID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, products)
}
