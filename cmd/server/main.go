package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dineqr/dineqr/internal/api"
	"github.com/dineqr/dineqr/internal/app"
	"github.com/dineqr/dineqr/internal/app/maintenance"
	iauth "github.com/dineqr/dineqr/internal/auth"
	"github.com/dineqr/dineqr/internal/database"
	"github.com/dineqr/dineqr/internal/services"
	"github.com/dineqr/dineqr/internal/storage"
	"github.com/dineqr/dineqr/pkg/logger"
	"github.com/dineqr/dineqr/pkg/mail"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "dineqr: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("dineqr", flag.ContinueOnError)
	configPath := flags.String("config", "", "path to a config file or directory")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := loadApplicationConfig(*configPath)
	if err != nil {
		return err
	}

	generated, err := app.ApplyRuntimeDefaults(cfg)
	if err != nil {
		return err
	}

	if err := app.ConfigureLogging(cfg.Server.LogLevel); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.WithModule("server")
	for key := range generated {
		log.Warn("generated runtime secret; set it in configuration to keep sessions across restarts",
			zap.String("key", key))
	}

	if cfg.Server.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg.Database.DatabaseSettings())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	mailer, err := mail.NewSMTPMailer(cfg.Email.SMTPSettings())
	if err != nil {
		return fmt.Errorf("configure mailer: %w", err)
	}

	tokens, err := iauth.NewTokenService(db, cfg.Auth.TokenServiceConfig())
	if err != nil {
		return fmt.Errorf("configure tokens: %w", err)
	}

	relay := iauth.NewSessionRelay()
	defer relay.Close()

	users, err := services.NewUserService(db)
	if err != nil {
		return err
	}
	verification, err := services.NewVerificationService(db, mailer,
		services.WithCodeExpiry(cfg.Auth.Verification.CodeTTL))
	if err != nil {
		return err
	}
	restaurants, err := services.NewRestaurantService(db)
	if err != nil {
		return err
	}
	categories, err := services.NewCategoryService(db, restaurants)
	if err != nil {
		return err
	}
	dishes, err := services.NewDishService(db, restaurants)
	if err != nil {
		return err
	}
	menus, err := services.NewMenuService(db)
	if err != nil {
		return err
	}

	images, err := storage.NewDiskImageStore(cfg.Uploads.Dir)
	if err != nil {
		return fmt.Errorf("configure image store: %w", err)
	}

	cleaner := maintenance.NewCleaner(db)
	if err := cleaner.Start(); err != nil {
		return fmt.Errorf("start maintenance: %w", err)
	}
	defer func() {
		<-cleaner.Stop().Done()
	}()

	router, err := api.NewRouter(api.Dependencies{
		DB:           db,
		Tokens:       tokens,
		Relay:        relay,
		Users:        users,
		Verification: verification,
		Restaurants:  restaurants,
		Categories:   categories,
		Dishes:       dishes,
		Menus:        menus,
		Images:       images,
	}, cfg)
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	if err := cleaner.RunOnce(shutdownCtx); err != nil {
		log.Warn("final cleanup incomplete", zap.Error(err))
	}

	log.Info("server stopped")
	return nil
}

func loadApplicationConfig(path string) (*app.Config, error) {
	if path == "" {
		return app.LoadConfig()
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("config path %q: %w", path, err)
	}
	if info.IsDir() {
		return app.LoadConfig(path)
	}
	return app.LoadConfig(filepath.Dir(path))
}
