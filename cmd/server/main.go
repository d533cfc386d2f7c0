// Package main is the entry point for the hpn-assist server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/hpn/hpn-assist/internal/account"
	"github.com/hpn/hpn-assist/internal/adapter"
	"github.com/hpn/hpn-assist/internal/chat"
	"github.com/hpn/hpn-assist/internal/config"
	"github.com/hpn/hpn-assist/internal/handler"
	"github.com/hpn/hpn-assist/internal/security"
	"github.com/hpn/hpn-assist/internal/ui"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "hpn-assist",
		Short:         "hpn-assist - chat assistant backed by one LLM provider",
		Long:          `hpn-assist serves a chat API that forwards each turn to the configured LLM provider and returns a normalized reply.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and websocket server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			err := serve(ctx, configPath, cmd.OutOrStdout())
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "hpn-assist: %v\n", err)
			}
			return err
		},
	}
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file (default: ./config.yaml if present)")
	rootCmd.AddCommand(serveCmd)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hpn-assist %s\n", version)
		},
	}
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}

// app is a fully wired server that has not started listening yet.
type app struct {
	cfg      *config.Configuration
	logger   *slog.Logger
	provider adapter.ChatProvider
	accounts *account.Store
	server   *http.Server
}

// newApp wires configuration, adapter, orchestrator, stores and router.
// It fails fast when the active provider cannot be initialized.
func newApp(cfg *config.Configuration, logger *slog.Logger) (*app, error) {
	providerType, providerCfg := cfg.ActiveProvider()
	provider, err := adapter.New(providerType, providerCfg,
		adapter.WithTimeout(cfg.Chat.Timeout()),
		adapter.WithProbeTimeout(cfg.Chat.ProbeTimeout()),
		adapter.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize provider %s: %w", providerType, err)
	}

	if cfg.Storage.IsServerURL() {
		logger.Warn("database_url names a database server; using the embedded account store",
			slog.String("database_url", cfg.Storage.RedactedURL()),
			slog.String("path", cfg.Storage.DatabasePath()),
		)
	}
	accounts, err := account.Open(cfg.Storage.DatabasePath())
	if err != nil {
		return nil, err
	}

	uploads, err := handler.NewUploadHandler(cfg.Uploads.Dir, logger)
	if err != nil {
		accounts.Close()
		return nil, err
	}

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handler.NewRouter(handler.RouterConfig{
		Orchestrator:   chat.NewOrchestrator(provider, logger),
		Accounts:       accounts,
		Uploads:        uploads,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         logger,
	})

	return &app{
		cfg:      cfg,
		logger:   logger,
		provider: provider,
		accounts: accounts,
		server: &http.Server{
			Addr:         cfg.Server.Addr(),
			Handler:      router,
			ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
			WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		},
	}, nil
}

// startProbe launches the capability probe for adapters that have one and
// reports its outcome on the console. It never blocks startup.
func (a *app) startProbe(ctx context.Context, console *ui.Console) {
	hub, ok := a.provider.(*adapter.HubAdapter)
	if !ok {
		return
	}
	probe := hub.StartCapabilityProbe(ctx)
	go func() {
		select {
		case <-probe.Done():
			console.PrintProbe(hub.Name(), probe.Status())
		case <-ctx.Done():
		}
	}()
}

func (a *app) close() {
	if err := a.accounts.Close(); err != nil {
		a.logger.Warn("failed to close account store", slog.String("error", err.Error()))
	}
}

func serve(ctx context.Context, configPath string, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Logging, os.Stdout)
	slog.SetDefault(logger)

	console := ui.NewConsole(out)
	console.PrintBanner(version)

	a, err := newApp(cfg, logger)
	if err != nil {
		logger.Error("startup failed", slog.String("error", err.Error()))
		return err
	}
	defer a.close()

	logger.Info("configuration loaded",
		slog.String("address", cfg.Server.Addr()),
		slog.String("provider", a.provider.Name()),
		slog.String("model", a.provider.Model()),
		slog.Duration("chat_timeout", cfg.Chat.Timeout()),
	)

	a.startProbe(ctx, console)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.String("address", a.server.Addr))
		console.PrintStartupInfo(a.server.Addr, a.provider.Name(), a.provider.Model())
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received")
	console.PrintShutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("server stopped gracefully")
	console.PrintGoodbye()
	return nil
}

// newLogger builds the JSON (or text) logger with secret redaction applied to every record.
func newLogger(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	var inner slog.Handler
	if cfg.Format == "text" {
		inner = slog.NewTextHandler(w, opts)
	} else {
		inner = slog.NewJSONHandler(w, opts)
	}
	return slog.New(security.NewRedactedHandler(inner))
}
