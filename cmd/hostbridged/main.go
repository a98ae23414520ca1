// Command hostbridged wires the placement engine end to end: a
// filesystem catalog scanner, the wazero local sandbox host, and the
// orchestrator, configured from the environment.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"

	hostbridge "github.com/hostbridge-dev/hostbridge-sdk"
	"github.com/hostbridge-dev/hostbridge-sdk/catalog"
	"github.com/hostbridge-dev/hostbridge-sdk/host"
	"github.com/hostbridge-dev/hostbridge-sdk/hostsync"
)

type config struct {
	ExtensionsDir    string        `env:"HOSTBRIDGE_EXTENSIONS_DIR" envDefault:"./extensions"`
	BinariesDir      string        `env:"HOSTBRIDGE_BINARIES_DIR" envDefault:"./extensions"`
	RemoteDescriptor string        `env:"HOSTBRIDGE_REMOTE_DESCRIPTOR"`
	RescanInterval   time.Duration `env:"HOSTBRIDGE_RESCAN_INTERVAL" envDefault:"30s"`
	LogLevel         slog.Level    `env:"HOSTBRIDGE_LOG_LEVEL" envDefault:"info"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "hostbridged:", err)
		os.Exit(1)
	}
}

func run() error {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var scannerOpts []catalog.ScannerOption
	scannerOpts = append(scannerOpts, catalog.WithScannerLogger(logger))
	if cfg.RemoteDescriptor != "" {
		scannerOpts = append(scannerOpts,
			catalog.WithRemoteSource(catalog.NewFileRemoteProvider(cfg.RemoteDescriptor)))
	}
	scanner := catalog.NewScanner(cfg.ExtensionsDir, scannerOpts...)

	localHost, err := host.NewLocalManager(ctx, host.DirLoader(cfg.BinariesDir),
		host.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("create local host: %w", err)
	}
	defer func() { _ = localHost.Close(context.Background()) }()

	synchronizer := hostsync.NewSynchronizer(hostsync.WithLogger(logger))
	synchronizer.Attach(hostsync.KindLocal, localHost)

	orchestrator := hostbridge.New(scanner, synchronizer,
		hostbridge.WithLogger(logger))

	if err := orchestrator.Start(ctx); err != nil {
		return fmt.Errorf("start orchestrator: %w", err)
	}

	ticker := time.NewTicker(cfg.RescanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return nil
		case <-ticker.C:
			if err := orchestrator.Resync(ctx); err != nil {
				logger.Warn("rescan failed", "error", err)
			}
		}
	}
}
