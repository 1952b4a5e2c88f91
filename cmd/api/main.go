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

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/WailSalutem-Health-Care/frontdesk-service/internal/config"
	"github.com/WailSalutem-Health-Care/frontdesk-service/internal/diagnosis"
	apphttp "github.com/WailSalutem-Health-Care/frontdesk-service/internal/http"
	"github.com/WailSalutem-Health-Care/frontdesk-service/internal/messaging"
	"github.com/WailSalutem-Health-Care/frontdesk-service/internal/queue"
	"github.com/WailSalutem-Health-Care/frontdesk-service/internal/seed"
	"github.com/WailSalutem-Health-Care/frontdesk-service/internal/session"
	"github.com/WailSalutem-Health-Care/frontdesk-service/internal/telemetry"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "frontdesk-service",
		Short:   "Clinic front-desk queue and encounter API",
		Version: version,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the front-desk API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func seedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Print the initial queue as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			patients, err := seed.Load(file)
			if err != nil {
				return err
			}
			out, err := seed.Marshal(patients)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().StringVar(&file, "file", os.Getenv("SEED_FILE"), "seed file to load instead of the built-in queue")
	return cmd
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.OTelServiceName).Logger()
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider, err := telemetry.InitProvider(ctx, cfg.Telemetry(version), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("telemetry shutdown failed")
		}
	}()

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	var publisher messaging.PublisherInterface = messaging.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		p, err := messaging.NewPublisher(cfg.RabbitMQURL, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("RabbitMQ unavailable, events will not be published")
		} else {
			publisher = p
		}
	} else {
		logger.Info().Msg("RABBITMQ_URL not set, events will not be published")
	}
	defer publisher.Close()

	perms, err := session.LoadPermissions(cfg.PermissionsFile)
	if err != nil {
		return fmt.Errorf("failed to load permissions: %w", err)
	}

	patients, err := seed.Load(cfg.SeedFile)
	if err != nil {
		return fmt.Errorf("failed to load seed queue: %w", err)
	}
	metrics.RecordQueueSeeded(ctx, len(patients))
	logger.Info().Int("patients", len(patients)).Msg("queue seeded")

	svc := queue.NewService(queue.NewController(patients), diagnosis.NewEditor(), queue.ServiceConfig{
		Publisher:       publisher,
		Metrics:         metrics,
		Logger:          logger,
		TransitionDelay: cfg.TransitionDelay,
	})

	router := apphttp.SetupRouter(apphttp.Deps{
		Queue:       svc,
		Tokens:      session.NewTokens(cfg.SessionSecret, cfg.SessionTTL),
		Permissions: perms,
		Metrics:     metrics,
		RoleMetrics: metrics,
		Logger:      logger,
		ServiceName: cfg.OTelServiceName,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           apphttp.CORSMiddleware(cfg.CORSOrigins)(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("frontdesk-service starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}
