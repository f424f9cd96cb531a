package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cloo-solutions/coach/internal/api/handlers"
	"github.com/cloo-solutions/coach/internal/config"
	"github.com/cloo-solutions/coach/internal/logging"
	"github.com/cloo-solutions/coach/internal/openai"
	"github.com/cloo-solutions/coach/internal/prompt"
	"github.com/cloo-solutions/coach/internal/server"
	"github.com/cloo-solutions/coach/internal/service"
	"github.com/cloo-solutions/coach/internal/telemetry"
)

const shutdownTimeout = 30 * time.Second

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the coach API server. Configuration is read from COACH_* environment variables and .env.",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "", "Port to listen on (overrides COACH_PORT)")
	cmd.Flags().Bool("wait-for-model", false, "Wait until the model endpoint serves the configured model before accepting requests")
	cmd.Flags().Duration("wait-timeout", 2*time.Minute, "How long --wait-for-model keeps retrying")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if portFlag, _ := cmd.Flags().GetString("port"); portFlag != "" {
		cfg.Port = portFlag
	}

	logger := logging.New(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Debug:  cfg.Debug,
	})

	if cfg.HasSentry() {
		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			TracesSampleRate: telemetry.SampleRate(cfg.Environment),
			Debug:            cfg.Debug,
		}, logger)
		if err != nil {
			logger.WithError(err).Warn("telemetry init failed, continuing without tracing")
		} else {
			defer shutdownTelemetry()
		}
	}

	modelClient := openai.NewClientWithConfig(openai.Config{
		APIKey:      cfg.ModelAPIKey,
		BaseURL:     cfg.ModelBaseURL,
		Model:       cfg.ModelName,
		Temperature: cfg.ModelTemperature,
		Timeout:     cfg.ModelTimeout,
	})

	if wait, _ := cmd.Flags().GetBool("wait-for-model"); wait {
		waitTimeout, _ := cmd.Flags().GetDuration("wait-timeout")
		if err := waitForModel(ctx, modelClient, probeBackOff(waitTimeout), logger); err != nil {
			return fmt.Errorf("model %q at %s not ready: %w", cfg.ModelName, cfg.ModelBaseURL, err)
		}
	}

	pipeline, err := buildPipeline(modelClient, logger)
	if err != nil {
		return err
	}

	router := server.NewRouter(server.RouterConfig{
		Logger:         logger,
		Model:          modelClient.Model(),
		AskHandler:     handlers.NewAskHandler(pipeline, logger),
		HealthHandler:  handlers.NewHealthHandler(),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		MaxBodyBytes:   cfg.MaxBodyBytes,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"port":  cfg.Port,
			"model": modelClient.Model(),
		}).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}

func buildPipeline(completer *openai.Client, logger logrus.FieldLogger) (*service.Pipeline, error) {
	composer, err := prompt.NewComposer()
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt composer: %w", err)
	}

	cfg := service.PipelineConfig{
		Completer: completer,
		Composer:  composer,
		Model:     completer.Model(),
		Logger:    logger,
	}

	tokens, err := prompt.NewTokenCounter()
	if err != nil {
		logger.WithError(err).Warn("token counter unavailable, prompt sizes will not be logged")
	} else {
		cfg.Tokens = tokens
	}

	return service.NewPipeline(cfg), nil
}

type modelPinger interface {
	Ping(ctx context.Context) error
}

func probeBackOff(timeout time.Duration) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = timeout
	return bo
}

// waitForModel pings the model endpoint until it answers or bo gives up.
func waitForModel(ctx context.Context, pinger modelPinger, bo backoff.BackOff, logger logrus.FieldLogger) error {
	attempt := 0
	op := func() error {
		attempt++
		return pinger.Ping(ctx)
	}
	notify := func(err error, next time.Duration) {
		logger.WithError(err).WithFields(logrus.Fields{
			"attempt":  attempt,
			"retry_in": next.String(),
		}).Warn("model not ready")
	}

	if err := backoff.RetryNotify(op, backoff.WithContext(bo, ctx), notify); err != nil {
		return err
	}
	logger.WithField("attempts", attempt).Info("model ready")
	return nil
}
