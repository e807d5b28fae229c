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

	"github.com/Acon1tum/qhealth-backend-v2-sub002/internal/config"
	"github.com/Acon1tum/qhealth-backend-v2-sub002/internal/platform/auth"
	"github.com/Acon1tum/qhealth-backend-v2-sub002/internal/platform/metrics"
	"github.com/Acon1tum/qhealth-backend-v2-sub002/internal/platform/middleware"
	"github.com/Acon1tum/qhealth-backend-v2-sub002/internal/signaling"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "qhealth-server",
		Short: "qhealth video-consultation signaling server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the signaling server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

// tokenCmd mints a development credential signed with the configured
// secret, for exercising the signaling handshake from a client.
func tokenCmd() *cobra.Command {
	var (
		userID int64
		role   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			token, err := auth.NewVerifier(cfg.JWTSecret).Mint(userID, role, ttl)
			if err != nil {
				return fmt.Errorf("mint token: %w", err)
			}
			fmt.Println(token)
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 1, "user id claim")
	cmd.Flags().StringVar(&role, "role", "DOCTOR", "role claim (DOCTOR, PATIENT, ...)")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	verifier := auth.NewVerifier(cfg.JWTSecret)
	collector := metrics.NewPrometheusCollector()

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Signaling coordinator and websocket endpoint. The handshake carries
	// its own credential, so the endpoint sits outside the REST auth
	// middleware; the upgrader's origin check reuses the CORS allow-list.
	coord := signaling.NewCoordinator(logger, collector)
	wsHandler := signaling.NewHandler(coord, verifier, logger, signaling.Options{
		AllowedOrigins: cfg.CORSOrigins,
		ReadLimit:      cfg.WSReadLimit,
		SendBuffer:     cfg.WSSendBuffer,
	})
	wsHandler.RegisterRoutes(e)

	// Authenticated REST surface
	apiV1 := e.Group("/api/v1")
	apiV1.Use(auth.Middleware(verifier))
	signaling.NewAPI(coord).RegisterRoutes(apiV1)

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})

	// Metrics
	e.GET("/metrics", echo.WrapHandler(collector.Handler()))

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
