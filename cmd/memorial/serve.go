package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"memorial"
	"memorial/internal/config"
	"memorial/internal/database"
	"memorial/internal/handlers"
	"memorial/internal/middleware"
	"memorial/internal/session"
	"memorial/pkg/logger"
	"memorial/pkg/storage"
	"memorial/pkg/utils"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the memorial web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	if os.Getenv("STARTUP_LOG_ACTIVE") != "false" {
		printLogo()
		printSignature()
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := loadApp(ctx)
	defer a.Close()
	conf := a.conf

	config.Watch(a.viper)

	// Background workers, all stopped by ctx
	go database.StartJanitor(ctx, a.db,
		utils.ParseDuration(conf.Database.PruneInterval, time.Hour),
		utils.ParseDuration(conf.Database.DraftMaxAge, 72*time.Hour),
	)
	a.pages.Start(ctx)

	var media http.Handler
	if local, ok := a.store.(*storage.Local); ok {
		media = local.Handler("/media/")
	}

	srv, err := handlers.New(handlers.Options{
		Config:      conf,
		Submissions: a.subs,
		Sessions: session.NewManager(session.Options{
			Secret: conf.Security.SessionSecret,
			Name:   conf.Security.SessionName,
			Secure: conf.IsProduction(),
		}),
		Pages:  a.pages,
		Assets: memorial.WebAssets,
		Media:  media,
	})
	if err != nil {
		return fmt.Errorf("init handlers: %w", err)
	}
	go srv.GateLimiter().StartCleanup(ctx)

	limiter := middleware.FromConfig(conf.Security.RateLimit)
	if limiter != nil {
		limiter.Proxies = srv.Proxies()
		go limiter.StartCleanup(ctx)
	}

	finalHandler := limiter.Middleware(
		middleware.CorsMiddleware(conf.Security.CorsOrigins)(
			middleware.LoggerMiddleware(srv.Routes()),
		),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", conf.Server.Port),
		Handler:           finalHandler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second, // large uploads on slow links
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.LogServerStart(conf.App.Name, conf.Server.Port, conf.GetBaseUrl(), config.RequireApproval())

	errc := make(chan error, 1)
	go func() { errc <- server.ListenAndServe() }()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.LogInfo("Shutting down, waiting up to %s for open requests...", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.LogSuccess("Server stopped")
	return nil
}
