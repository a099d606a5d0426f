package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"timber-backend/internal/auth"
	"timber-backend/internal/cache"
	"timber-backend/internal/config"
	"timber-backend/internal/database"
	"timber-backend/internal/db"
	"timber-backend/internal/handlers"
	"timber-backend/internal/health"
	h "timber-backend/internal/http"
	"timber-backend/internal/middleware"
	"timber-backend/internal/realtime"
	"timber-backend/internal/repositories"
	"timber-backend/internal/services"
	"timber-backend/internal/storage"
	"timber-backend/internal/timeutil"
	"timber-backend/migrations"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := run(*port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(port int) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if port != 0 {
		cfg.Server.Port = port
	}
	if err := timeutil.SetLocation(cfg.App.Timezone); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()
	zap.L().Info("connected to database", zap.String("host", cfg.Database.Host), zap.String("name", cfg.Database.Name))

	// Run database migrations
	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := database.NewMigratorWithFS(pool, migrations.FS, ".").RunMigrations(migrateCtx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize Redis cache (optional - graceful fallback if unavailable)
	if err := cache.Init(cache.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}); err != nil {
		zap.L().Warn("redis cache unavailable, serving uncached", zap.Error(err))
	}
	defer cache.Close()

	jwtManager := auth.NewJWTManager(cfg)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(pool)
	processRepo := repositories.NewProcessRepository(pool)
	packageRepo := repositories.NewPackageRepository(pool)
	productionRepo := repositories.NewProductionRepository(pool)

	// Initialize services
	hub := realtime.NewHub()
	go hub.Run(ctx)

	userService := services.NewUserService(userRepo, jwtManager)
	processService := services.NewProcessService(processRepo, productionRepo)
	inventoryService := services.NewInventoryService(packageRepo)
	productionService := services.NewProductionService(productionRepo)
	productionService.SetEventPublisher(hub)

	reports := services.NewReportService(cfg.App.CompanyName)
	if cfg.ArchiveEnabled() {
		archive, err := storage.NewSlipArchiveFromConfig(ctx, cfg)
		if err != nil {
			return fmt.Errorf("slip archive: %w", err)
		}
		productionService.SetSlipArchive(reports, archive)
		zap.L().Info("slip archive enabled", zap.String("bucket", cfg.Archive.Bucket))
	} else {
		productionService.SetSlipArchive(reports, nil)
	}

	if err := userService.EnsureAdmin(ctx, cfg.App.AdminOrgID, cfg.App.AdminEmail, cfg.App.AdminPassword); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	// Initialize handlers
	router := h.NewRouter(h.Handlers{
		Auth:       handlers.NewAuthHandler(userService),
		Process:    handlers.NewProcessHandler(processService),
		Inventory:  handlers.NewInventoryHandler(inventoryService),
		Production: handlers.NewProductionHandler(productionService),
		Board:      handlers.NewBoardHandler(hub),
		Health:     handlers.NewHealthHandler(health.NewHealthChecker(pool)),
	}, middleware.NewAuthMiddleware(jwtManager, userRepo))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           middleware.PanicRecovery(middleware.NewCORS(cfg)(router)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("server running", zap.String("addr", srv.Addr), zap.String("env", cfg.Server.Environment))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	return srv.Shutdown(shutdownCtx)
}
