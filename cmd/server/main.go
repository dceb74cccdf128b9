package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/news_website/internal/config"
	"github.com/Skotchmaster/news_website/internal/cookie"
	"github.com/Skotchmaster/news_website/internal/db"
	"github.com/Skotchmaster/news_website/internal/events"
	"github.com/Skotchmaster/news_website/internal/httpserver"
	"github.com/Skotchmaster/news_website/internal/identity"
	"github.com/Skotchmaster/news_website/internal/logging"
	"github.com/Skotchmaster/news_website/internal/metrics"
	loggingmw "github.com/Skotchmaster/news_website/internal/middleware/logging"
	"github.com/Skotchmaster/news_website/internal/repo"
	"github.com/Skotchmaster/news_website/internal/service"
	"github.com/Skotchmaster/news_website/internal/tokens"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.ServiceName)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server_stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		return fmt.Errorf("db init: %w", err)
	}
	defer func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()
	if err := db.Migrate(gdb); err != nil {
		return err
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		prod := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer func() {
			if err := prod.Close(); err != nil {
				logger.Warn("kafka_close_failed", "error", err)
			}
		}()
		publisher = prod
	} else {
		logger.Info("events_disabled", "reason", "KAFKA_BROKERS is empty")
	}

	m := metrics.New()
	gormRepo := &repo.GormRepo{DB: gdb}
	provider := identity.NewGoogle(cfg.Identity())
	accounts := &service.AccountDirectory{Repo: gormRepo, Events: publisher}
	session := &service.SessionService{
		Identity:    provider,
		Accounts:    accounts,
		Codec:       tokens.NewCodec([]byte(cfg.JWTSecret)),
		Credentials: &service.CredentialStore{Repo: gormRepo},
		Metrics:     m,
	}

	if len(cfg.AdminSubjects) > 0 {
		if err := accounts.PromoteAdmins(logging.IntoContext(context.Background(), logger), cfg.AdminSubjects); err != nil {
			return fmt.Errorf("admin bootstrap: %w", err)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Server.IdleTimeout = 60 * time.Second

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(
		middleware.Recover(),
		middleware.RequestID(),
		loggingmw.RequestLogger(logger),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderAuthorization, echo.HeaderContentType},
			AllowCredentials: true,
		}),
		middleware.Secure(),
	)

	httpserver.Register(e, &httpserver.Deps{
		Auth: &httpserver.AuthHTTP{
			Svc:         session,
			Provider:    provider,
			Cookies:     cookie.Factory{Secure: cfg.CookieSecure},
			FrontendURL: cfg.FrontendRedirectURL,
		},
		Users:         &httpserver.UsersHTTP{Accounts: accounts},
		Admin:         &httpserver.AdminHTTP{Accounts: accounts},
		Health:        &httpserver.HealthHTTP{DB: gdb},
		Authenticator: session,
		Metrics:       m,
	})

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.ServerPort)
		logger.Info("server_started", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("echo start: %w", err)
	case <-quit:
	}

	logger.Info("shutting_down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("echo shutdown: %w", err)
	}
	logger.Info("shutdown_complete")
	return nil
}
