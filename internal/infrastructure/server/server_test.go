package server_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ficus/storefront/internal/infrastructure/config"
	"github.com/ficus/storefront/internal/infrastructure/logger"
	"github.com/ficus/storefront/internal/infrastructure/server"
	"github.com/ficus/storefront/internal/infrastructure/storage"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "Ficus", Version: "test", Environment: "development"},
		Session: config.SessionConfig{
			Secret:      "test-secret",
			CookieName:  "session",
			TTL:         30 * time.Minute,
			RememberTTL: 240 * time.Hour,
			Issuer:      "ficus-test",
		},
		Admin:    config.AdminConfig{Usernames: "admin"},
		Security: config.SecurityConfig{CORSAllowedOrigins: "*"},
		Metrics:  config.MetricsConfig{Enabled: true},
	}
}

type client struct {
	t       *testing.T
	handler http.Handler
	cookie  *http.Cookie
	bearer  string
}

func (c *client) do(method, path, body string) *httptest.ResponseRecorder {
	c.t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	if c.bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+c.bearer)
	}

	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "session" {
			if cookie.Value == "" {
				c.cookie = nil
			} else {
				c.cookie = cookie
			}
		}
	}
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	registry := prometheus.NewRegistry()

	store, err := storage.New(t.TempDir(), storage.WithMetrics(storage.NewMetrics(registry)))
	require.NoError(t, err)

	srv, err := server.New(testConfig(), store, registry, logger.NewNop())
	require.NoError(t, err)
	return srv.Handler()
}

func TestShoppingFlow(t *testing.T) {
	handler := newTestServer(t)
	admin := &client{t: t, handler: handler}
	shopper := &client{t: t, handler: handler}

	rec := admin.do(http.MethodPost, "/api/register", `{"username":"admin","password":"hunter22"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, admin.cookie)

	rec = admin.do(http.MethodPost, "/api/admin/products", `{"name":"Fiddle Leaf Fig","price":40,"category":"Plants"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = shopper.do(http.MethodGet, "/api/cart", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = shopper.do(http.MethodPost, "/api/register", `{"username":"bob","password":"hunter22"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("Duplicate registration conflicts", func(t *testing.T) {
		other := &client{t: t, handler: handler}
		rec := other.do(http.MethodPost, "/api/register", `{"username":"bob","password":"another1"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("Shopper cannot reach admin", func(t *testing.T) {
		rec := shopper.do(http.MethodGet, "/api/admin", "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	rec = shopper.do(http.MethodPost, "/api/cart", `{"productId":1,"quantity":2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var cart struct {
		Lines []struct {
			ProductID int `json:"productId"`
			Quantity  int `json:"quantity"`
		} `json:"lines"`
		Total float64 `json:"total"`
	}
	decode(t, rec, &cart)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
	assert.InDelta(t, 80.0, cart.Total, 0.001)

	rec = shopper.do(http.MethodPost, "/api/cart", `{"productId":42,"quantity":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = shopper.do(http.MethodPost, "/api/cart", `{"productId":1,"quantity":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = shopper.do(http.MethodPost, "/api/checkout", `{"address":"1 Fig Lane","payment_method":"card"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var order struct {
		ID    string  `json:"id"`
		Total float64 `json:"total"`
	}
	decode(t, rec, &order)
	assert.NotEmpty(t, order.ID)
	assert.InDelta(t, 80.0, order.Total, 0.001)

	rec = shopper.do(http.MethodPost, "/api/checkout", `{"address":"1 Fig Lane","payment_method":"card"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = admin.do(http.MethodGet, "/api/admin/activity?prefix=bob", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []struct {
		Username string `json:"username"`
		Type     string `json:"type"`
	}
	decode(t, rec, &entries)
	require.Len(t, entries, 3)
	assert.Equal(t, "register", entries[0].Type)
	assert.Equal(t, "checkout", entries[2].Type)

	rec = shopper.do(http.MethodPost, "/api/logout", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, shopper.cookie)
}

func TestWishlistRoutes(t *testing.T) {
	handler := newTestServer(t)
	admin := &client{t: t, handler: handler}

	rec := admin.do(http.MethodPost, "/api/register", `{"username":"admin","password":"hunter22"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = admin.do(http.MethodPost, "/api/admin/products", `{"name":"Watering Can","price":18}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = admin.do(http.MethodPost, "/api/wishlist", `{"productId":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = admin.do(http.MethodPost, "/api/wishlist", `{"productId":1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var products []struct {
		ID int `json:"id"`
	}
	decode(t, rec, &products)
	assert.Len(t, products, 1)

	rec = admin.do(http.MethodDelete, "/api/wishlist/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = admin.do(http.MethodDelete, "/api/wishlist/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = admin.do(http.MethodDelete, "/api/wishlist/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStaleTokenRejected(t *testing.T) {
	handler := newTestServer(t)
	alice := &client{t: t, handler: handler}

	rec := alice.do(http.MethodPost, "/api/register", `{"username":"alice","password":"hunter22"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var auth struct {
		Token string `json:"token"`
	}
	decode(t, rec, &auth)
	stale := &client{t: t, handler: handler, bearer: auth.Token}

	rec = stale.do(http.MethodGet, "/api/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = alice.do(http.MethodPut, "/api/profile", `{"username":"alicia"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Nil(t, alice.cookie)

	t.Run("Old name after rename", func(t *testing.T) {
		rec := stale.do(http.MethodPost, "/api/cart", `{"productId":1,"quantity":1}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Old name taken by a new account", func(t *testing.T) {
		newcomer := &client{t: t, handler: handler}
		rec := newcomer.do(http.MethodPost, "/api/register", `{"username":"alice","password":"another1"}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = stale.do(http.MethodGet, "/api/profile", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = newcomer.do(http.MethodGet, "/api/profile", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Password change", func(t *testing.T) {
		rec := alice.do(http.MethodPost, "/api/login", `{"username":"alicia","password":"hunter22"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		decode(t, rec, &auth)
		before := &client{t: t, handler: handler, bearer: auth.Token}

		rec = alice.do(http.MethodPut, "/api/profile", `{"password":"hunter23"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, alice.cookie)

		rec = before.do(http.MethodGet, "/api/wishlist", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestHealthAndMetrics(t *testing.T) {
	handler := newTestServer(t)
	c := &client{t: t, handler: handler}

	rec := c.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(http.MethodGet, "/api/products", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = c.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
	assert.Contains(t, rec.Body.String(), "storage_operations_total")
}
