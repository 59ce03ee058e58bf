package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	httpHandlers "github.com/ficus/storefront/internal/adapters/http"
	"github.com/ficus/storefront/internal/adapters/repository"
	"github.com/ficus/storefront/internal/application/services"
	"github.com/ficus/storefront/internal/infrastructure/config"
	"github.com/ficus/storefront/internal/infrastructure/logger"
	"github.com/ficus/storefront/internal/infrastructure/storage"
	"github.com/ficus/storefront/internal/ports"
)

// Server represents the HTTP server
type Server struct {
	echo     *echo.Echo
	config   *config.Config
	logger   *logger.Logger
	store    *storage.Store
	registry *prometheus.Registry
	admins   map[string]bool
}

type handlers struct {
	auth  *httpHandlers.AuthHandler
	user  *httpHandlers.UserHandler
	shop  *httpHandlers.ShopHandler
	admin *httpHandlers.AdminHandler
}

// New creates a new server instance. registry may be nil when metrics are disabled.
func New(cfg *config.Config, store *storage.Store, registry *prometheus.Registry, appLogger *logger.Logger) (*Server, error) {
	e := echo.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = true

	// Custom error handler
	e.HTTPErrorHandler = customErrorHandler(appLogger)

	// Initialize repositories
	repos := repository.New(store)

	// Initialize services
	authService := services.NewAuthService(repos.Users, repos.Activity, cfg.Session, appLogger)
	userService := services.NewUserService(repos.Users, repos.Carts, repos.Wishlists, repos.Activity, appLogger)
	catalogService := services.NewCatalogService(repos.Products, appLogger)
	cartService := services.NewCartService(repos.Products, repos.Carts, repos.Activity, appLogger)
	wishlistService := services.NewWishlistService(repos.Products, repos.Wishlists, repos.Activity, appLogger)
	adminService := services.NewAdminService(repos.Products, repos.Activity, appLogger)

	// Initialize handlers
	h := handlers{
		auth:  httpHandlers.NewAuthHandler(authService, cfg.Session, appLogger),
		user:  httpHandlers.NewUserHandler(userService, cfg.Session, appLogger),
		shop:  httpHandlers.NewShopHandler(catalogService, cartService, wishlistService, appLogger),
		admin: httpHandlers.NewAdminHandler(adminService, appLogger),
	}

	admins := make(map[string]bool)
	for _, name := range cfg.Admin.AdminUsernames() {
		admins[name] = true
	}

	server := &Server{
		echo:     e,
		config:   cfg,
		logger:   appLogger.WithComponent("http"),
		store:    store,
		registry: registry,
		admins:   admins,
	}

	// Setup middleware
	server.setupMiddleware()

	// Setup metrics
	if cfg.Metrics.Enabled && registry != nil {
		server.setupMetrics()
	}

	// Setup routes
	server.setupRoutes(h, authService)

	return server, nil
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.echo.Use(middleware.Recover())

	// Request ID middleware
	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string {
			return uuid.NewString()
		},
	}))

	// Logger middleware
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", values.Method,
				"uri", values.URI,
				"status", values.Status,
				"latency_ms", float64(values.Latency.Nanoseconds()) / 1000000,
				"remote_ip", values.RemoteIP,
				"user_agent", values.UserAgent,
			}

			log := s.logger.WithRequestID(values.RequestID)
			if values.Error != nil {
				fields = append(fields, "error", values.Error.Error())
				log.Errorw("HTTP request failed", fields...)
			} else {
				log.Infow("HTTP request", fields...)
			}

			return nil
		},
	}))

	// CORS middleware
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     strings.Split(s.config.Security.CORSAllowedOrigins, ","),
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods:     []string{http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	// Rate limiting middleware
	if s.config.Security.RateLimitRequests > 0 {
		window := s.config.Security.RateLimitWindow
		if window <= 0 {
			window = time.Minute
		}
		s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(float64(s.config.Security.RateLimitRequests) / window.Seconds()),
				Burst:     s.config.Security.RateLimitRequests,
				ExpiresIn: window,
			}),
			IdentifierExtractor: func(ctx echo.Context) (string, error) {
				return ctx.RealIP(), nil
			},
			ErrorHandler: func(context echo.Context, err error) error {
				return context.JSON(http.StatusForbidden, httpHandlers.ErrorResponse{Error: "rate limit exceeded"})
			},
			DenyHandler: func(context echo.Context, identifier string, err error) error {
				return context.JSON(http.StatusTooManyRequests, httpHandlers.ErrorResponse{Error: "rate limit exceeded"})
			},
		}))
	}

	// Security headers
	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
	}))

	// Timeout middleware
	s.echo.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: s.config.Server.WriteTimeout,
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(h handlers, authService ports.AuthService) {
	// Health check routes
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/health/detailed", s.detailedHealthCheck)
	s.echo.GET("/ready", s.readinessCheck)

	api := s.echo.Group("/api")

	// Auth routes (public)
	api.POST("/register", h.auth.Register)
	api.POST("/login", h.auth.Login)
	api.POST("/logout", h.auth.Logout, s.sessionMiddleware(authService))

	// Catalog routes (public)
	api.GET("/products", h.shop.ListProducts)
	api.GET("/products/:id", h.shop.GetProduct)
	api.GET("/search", h.shop.Search)

	// Shopper routes (authenticated)
	shopper := api.Group("", s.sessionMiddleware(authService))
	shopper.GET("/profile", h.user.GetProfile)
	shopper.PUT("/profile", h.user.UpdateProfile)
	shopper.GET("/cart", h.shop.GetCart)
	shopper.POST("/cart", h.shop.AddToCart)
	shopper.PUT("/cart/:productId", h.shop.UpdateCart)
	shopper.DELETE("/cart/:productId", h.shop.RemoveFromCart)
	shopper.POST("/checkout", h.shop.Checkout)
	shopper.GET("/wishlist", h.shop.GetWishlist)
	shopper.POST("/wishlist", h.shop.AddToWishlist)
	shopper.DELETE("/wishlist/:productId", h.shop.RemoveFromWishlist)

	// Admin routes
	admin := api.Group("/admin", s.sessionMiddleware(authService), s.requireAdmin())
	admin.GET("", h.admin.Dashboard)
	admin.GET("/activity", h.admin.Activity)
	admin.POST("/products", h.admin.CreateProduct)
	admin.DELETE("/products/:id", h.admin.DeleteProduct)
}

// setupMetrics configures Prometheus metrics
func (s *Server) setupMetrics() {
	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	s.registry.MustRegister(requestsTotal, requestDuration)

	// Custom metrics middleware
	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start)
			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}

			requestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				fmt.Sprintf("%d", status),
			).Inc()

			requestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
			).Observe(duration.Seconds())

			return err
		}
	})

	// Metrics endpoint
	metricsHandler := promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
	s.echo.GET("/metrics", echo.WrapHandler(metricsHandler))
}

// Health check handlers
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) detailedHealthCheck(c echo.Context) error {
	status := "ok"
	checks := make(map[string]interface{})

	if err := s.store.HealthCheck(); err != nil {
		status = "error"
		checks["storage"] = map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		}
	} else {
		checks["storage"] = map[string]interface{}{
			"status":   "ok",
			"data_dir": s.store.Dir(),
		}
	}

	response := map[string]interface{}{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
		"checks": checks,
		"version": map[string]string{
			"app": s.config.App.Version,
		},
	}

	if status == "ok" {
		return c.JSON(http.StatusOK, response)
	}
	return c.JSON(http.StatusServiceUnavailable, response)
}

func (s *Server) readinessCheck(c echo.Context) error {
	if err := s.store.HealthCheck(); err != nil {
		s.logger.WithError(err).Warnw("Data directory not writable")
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": "storage_not_writable",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.Infow("Starting server", "address", address)

	s.echo.Server.ReadTimeout = s.config.Server.ReadTimeout
	s.echo.Server.WriteTimeout = s.config.Server.WriteTimeout
	s.echo.Server.IdleTimeout = s.config.Server.IdleTimeout

	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Infow("Shutting down server")
	return s.echo.Shutdown(ctx)
}

// customErrorHandler handles HTTP errors
func customErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var (
			code = http.StatusInternalServerError
			msg  interface{}
		)

		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			msg = he.Message
			if he.Internal != nil {
				err = fmt.Errorf("%v, %v", err, he.Internal)
			}
			if text, ok := msg.(string); ok {
				msg = httpHandlers.ErrorResponse{Error: text}
			}
		} else {
			msg = httpHandlers.ErrorResponse{Error: http.StatusText(code)}
		}

		if code == http.StatusInternalServerError {
			logger.Errorw("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		// Send response
		if !c.Response().Committed {
			if c.Request().Method == http.MethodHead {
				err = c.NoContent(code)
			} else {
				err = c.JSON(code, msg)
			}
			if err != nil {
				logger.Errorw("Error sending response", "error", err)
			}
		}
	}
}
