package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/krama-desa/iuran/internal/auth"
	"github.com/krama-desa/iuran/internal/dashboard"
	"github.com/krama-desa/iuran/internal/metrics"
	"github.com/krama-desa/iuran/internal/middleware"
	"github.com/krama-desa/iuran/internal/money"
	"github.com/krama-desa/iuran/internal/service"
	"github.com/krama-desa/iuran/internal/storage/sqlite"
	"github.com/krama-desa/iuran/internal/web"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard and RPC server",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.InsecureSecret() {
		slog.Warn("Using the development JWT secret; set IURAN_JWT_SECRET in production")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.Storage.DBPath)

	collector := metrics.New(prometheus.DefaultRegisterer)
	client, err := newAPIClient(cfg, collector)
	if err != nil {
		return err
	}
	formatter, err := money.NewFormatterFromLocale(cfg.Dashboard.CurrencySymbol, cfg.Dashboard.Locale)
	if err != nil {
		return err
	}

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	authenticator := auth.NewPasswordAuthenticator(store)

	registry := dashboard.NewRegistry(cfg.Auth.SessionTTL, func(id dashboard.Identity) *dashboard.State {
		return dashboard.New(client,
			dashboard.WithIdentity(id),
			dashboard.WithJournal(store),
			dashboard.WithMetrics(collector),
			dashboard.WithProposalTTL(cfg.Dashboard.ProposalTTL),
			dashboard.WithLogger(slog.Default().With("staff_id", id.StaffID)),
		)
	}, collector)

	site, err := web.New(web.Config{
		Registry:        registry,
		Authenticator:   authenticator,
		JWT:             jwtManager,
		Formatter:       formatter,
		NotificationTTL: cfg.Dashboard.NotificationTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to build dashboard: %w", err)
	}

	router := site.Router()

	// Register Connect services
	authPath, authHandler := service.NewAuthServiceHandler(
		service.NewAuthService(authenticator, jwtManager, slog.Default()),
		connect.WithInterceptors(middleware.LoggingInterceptor()),
	)
	router.Handle(authPath+"*", middleware.CORS(authHandler))

	dashPath, dashHandler := service.NewDashboardServiceHandler(
		service.NewDashboardService(registry, formatter, slog.Default()),
		connect.WithInterceptors(middleware.RequireAuth(jwtManager), middleware.LoggingInterceptor()),
	)
	router.Handle(dashPath+"*", middleware.CORS(dashHandler))

	router.Handle("/metrics", promhttp.Handler())

	go sweep(ctx, cfg.Dashboard.SweepInterval, registry, site)

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	server := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           h2c.NewHandler(router, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "address", cfg.Server.ListenAddr, "api", cfg.API.BaseURL)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// sweep periodically forgets idle sessions until ctx is done.
func sweep(ctx context.Context, interval time.Duration, registry *dashboard.Registry, site *web.Server) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := registry.Sweep() + site.Sweep(); n > 0 {
				slog.Debug("Swept idle sessions", "removed", n, "active", registry.Len())
			}
		}
	}
}
