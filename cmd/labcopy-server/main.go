package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/labcopy/labcopy/internal/config"
	"github.com/labcopy/labcopy/internal/domain/format"
	"github.com/labcopy/labcopy/internal/domain/labs"
	"github.com/labcopy/labcopy/internal/platform/auth"
	"github.com/labcopy/labcopy/internal/platform/db"
	"github.com/labcopy/labcopy/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "labcopy-server",
		Short: "Lab-result normalization and copy-template API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger := newLogger(cfg.LogLevel)

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer pool.Close()

			e := echo.New()
			e.HideBanner = true
			e.Use(middleware.RequestID())
			e.Use(middleware.Logger(logger))
			e.Use(middleware.Recovery(logger))
			e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
				AllowOrigins: cfg.CORSOrigins,
				AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			}))

			e.GET("/health", db.HealthHandler(pool))

			api := e.Group("/api")
			if cfg.IsDev() {
				logger.Warn().Msg("development mode: all requests get admin access")
				api.Use(auth.DevMiddleware())
			} else {
				api.Use(auth.Middleware([]byte(cfg.AuthSecret)))
			}

			pipeline := labs.NewPipeline(logger)
			overrideRepo := labs.NewRangeOverrideRepoPG(pool)
			labs.NewHandler(pipeline, overrideRepo).RegisterRoutes(api)

			templateRepo := format.NewTemplateRepoPG(pool)
			formatSvc := format.NewService(templateRepo, logger)
			format.NewHandler(formatSvc).RegisterRoutes(api)

			// Graceful shutdown on SIGINT/SIGTERM.
			go func() {
				quit := make(chan os.Signal, 1)
				signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
				<-quit
				logger.Info().Msg("shutting down")
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer shutdownCancel()
				if err := e.Shutdown(shutdownCtx); err != nil {
					logger.Error().Err(err).Msg("shutdown error")
				}
			}()

			logger.Info().Str("port", cfg.Port).Msg("starting server")
			if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg.LogLevel)

			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer pool.Close()

			n, err := db.NewMigrator(pool, dir).Up(ctx)
			if err != nil {
				return err
			}
			logger.Info().Int("applied", n).Msg("migrations complete")
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "migrations", "migrations directory")
	return cmd
}
