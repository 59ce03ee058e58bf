package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/ficus/storefront/internal/adapters/repository"
	"github.com/ficus/storefront/internal/application/services"
	"github.com/ficus/storefront/internal/domain/entities"
	"github.com/ficus/storefront/internal/infrastructure/config"
	"github.com/ficus/storefront/internal/infrastructure/logger"
	"github.com/ficus/storefront/internal/infrastructure/server"
	"github.com/ficus/storefront/internal/infrastructure/storage"
	"github.com/ficus/storefront/internal/ports"
)

// Build information, set with -ldflags at release time
var (
	Version   = "dev"
	GitCommit = "development"
)

// cliUser is recorded in the activity log for changes made from the command line
const cliUser = "cli"

// NewRootCommand assembles the ficus command tree
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ficus",
		Short:         "Ficus storefront server",
		Long:          `Ficus is a small storefront whose users, carts, wishlists, products and activity log live in JSON files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewUserCommand())
	rootCmd.AddCommand(NewProductCommand())
	rootCmd.AddCommand(NewActivityCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// deps bundles what every command needs
type deps struct {
	cfg      *config.Config
	logger   *logger.Logger
	store    *storage.Store
	repos    *repository.Repositories
	registry *prometheus.Registry
}

func bootstrap(withMetrics bool) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	mode, err := cfg.Storage.Mode()
	if err != nil {
		return nil, err
	}

	opts := []storage.Option{
		storage.WithFileMode(mode),
		storage.WithLogger(appLogger),
	}

	var registry *prometheus.Registry
	if withMetrics && cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		opts = append(opts, storage.WithMetrics(storage.NewMetrics(registry)))
	}

	store, err := storage.New(cfg.Storage.DataDir, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open data directory: %w", err)
	}

	return &deps{
		cfg:      cfg,
		logger:   appLogger,
		store:    store,
		repos:    repository.New(store),
		registry: registry,
	}, nil
}

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the storefront API server",
		Long:  "Start the storefront API server with all configured routes and middleware",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

func runServer(ctx context.Context) error {
	rt, err := bootstrap(true)
	if err != nil {
		return err
	}
	defer rt.logger.Close()

	srv, err := server.New(rt.cfg, rt.store, rt.registry, rt.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt.logger.Infow("Starting storefront API server",
		"address", rt.cfg.Server.GetAddr(),
		"environment", rt.cfg.App.Environment,
		"data_dir", rt.store.Dir(),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(rt.cfg.Server.GetAddr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	rt.logger.Infow("Server shutdown completed")
	return nil
}

// NewUserCommand creates the user management command
func NewUserCommand() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "User management commands",
	}

	createUserCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new user",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			address, _ := cmd.Flags().GetString("address")

			rt, err := bootstrap(false)
			if err != nil {
				return err
			}
			defer rt.logger.Close()

			req := ports.RegisterRequest{Username: username, Password: password}
			if address != "" {
				req.Address = &address
			}

			authService := services.NewAuthService(rt.repos.Users, rt.repos.Activity, rt.cfg.Session, rt.logger)
			if _, err := authService.Register(cmd.Context(), req); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "User created successfully: %s\n", username)
			return nil
		},
	}

	createUserCmd.Flags().String("username", "", "Username (required)")
	createUserCmd.Flags().String("password", "", "Password (required)")
	createUserCmd.Flags().String("address", "", "Shipping address")
	_ = createUserCmd.MarkFlagRequired("username")
	_ = createUserCmd.MarkFlagRequired("password")

	userCmd.AddCommand(createUserCmd)
	return userCmd
}

// NewProductCommand creates the catalog management command
func NewProductCommand() *cobra.Command {
	productCmd := &cobra.Command{
		Use:   "product",
		Short: "Catalog management commands",
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a product to the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			var fields entities.ProductFields
			fields.Name, _ = cmd.Flags().GetString("name")
			fields.Price, _ = cmd.Flags().GetFloat64("price")
			fields.Description, _ = cmd.Flags().GetString("description")
			fields.Image, _ = cmd.Flags().GetString("image")
			fields.Category, _ = cmd.Flags().GetString("category")

			rt, err := bootstrap(false)
			if err != nil {
				return err
			}
			defer rt.logger.Close()

			adminService := services.NewAdminService(rt.repos.Products, rt.repos.Activity, rt.logger)
			product, err := adminService.CreateProduct(cmd.Context(), cliUser, fields)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Product created: #%d %s\n", product.ID, product.Name)
			return nil
		},
	}
	addCmd.Flags().String("name", "", "Product name (required)")
	addCmd.Flags().Float64("price", 0, "Unit price")
	addCmd.Flags().String("description", "", "Product description")
	addCmd.Flags().String("image", "", "Image URL")
	addCmd.Flags().String("category", "", "Product category")
	_ = addCmd.MarkFlagRequired("name")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(false)
			if err != nil {
				return err
			}
			defer rt.logger.Close()

			products, err := rt.repos.Products.GetAll(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPRICE\tCATEGORY")
			for _, p := range products {
				fmt.Fprintf(w, "%d\t%s\t%.2f\t%s\n", p.ID, p.Name, p.Price, p.Category)
			}
			return w.Flush()
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove a product from the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := cmd.Flags().GetInt("id")

			rt, err := bootstrap(false)
			if err != nil {
				return err
			}
			defer rt.logger.Close()

			adminService := services.NewAdminService(rt.repos.Products, rt.repos.Activity, rt.logger)
			if err := adminService.DeleteProduct(cmd.Context(), cliUser, id); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Product deleted: #%d\n", id)
			return nil
		},
	}
	deleteCmd.Flags().Int("id", 0, "Product id (required)")
	_ = deleteCmd.MarkFlagRequired("id")

	productCmd.AddCommand(addCmd, listCmd, deleteCmd)
	return productCmd
}

// NewActivityCommand prints the activity log in the order it was recorded
func NewActivityCommand() *cobra.Command {
	activityCmd := &cobra.Command{
		Use:   "activity",
		Short: "Show the activity log",
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix, _ := cmd.Flags().GetString("prefix")

			rt, err := bootstrap(false)
			if err != nil {
				return err
			}
			defer rt.logger.Close()

			adminService := services.NewAdminService(rt.repos.Products, rt.repos.Activity, rt.logger)
			entries, err := adminService.ActivityByPrefix(cmd.Context(), prefix)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tUSER\tTYPE")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\n", e.Datetime.Format(time.RFC3339), e.Username, e.Type)
			}
			return w.Flush()
		},
	}
	activityCmd.Flags().String("prefix", "", "Only show users whose name starts with this prefix")

	return activityCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print ficus version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Ficus %s\n", Version)
			fmt.Fprintf(cmd.OutOrStdout(), "Git Commit: %s\n", GitCommit)
		},
	}
}
