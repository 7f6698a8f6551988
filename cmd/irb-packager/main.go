package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/a3tai/irb-packager/internal/config"
	"github.com/a3tai/irb-packager/internal/ledger"
	"github.com/a3tai/irb-packager/internal/logging"
	"github.com/a3tai/irb-packager/internal/mcp"
	"github.com/a3tai/irb-packager/internal/pdf"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// openLedger opens the submission ledger when one is configured
func openLedger(cfg *config.Config) (*ledger.Ledger, error) {
	if !cfg.LedgerEnabled() {
		return nil, nil
	}
	return ledger.Open(cfg.LedgerPath)
}

// newService wires the packaging service to the ledger, if any
func newService(cfg *config.Config, l *ledger.Ledger, logger *slog.Logger) (*pdf.Service, error) {
	opts := pdf.ServiceOptions{
		MaxFileSize:   cfg.MaxFileSize,
		WorkDirectory: cfg.WorkDirectory,
		OutputName:    cfg.OutputName,
		Trigger:       cfg.TriggerConfig(),
		Logger:        logger,
	}
	if l != nil {
		opts.Recorder = l
	}
	return pdf.NewService(opts)
}

// runServerMode handles server mode execution with signal handling
func runServerMode(ctx context.Context, cancel context.CancelFunc, server *mcp.Server, logger *slog.Logger) int {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(signalCh)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		logger.Info("received signal, shutting down", "signal", sig.String())
		cancel()

		if err := <-serverErrCh; err != nil {
			logger.Error("server shutdown with error", "error", err)
			return 1
		}

	case err := <-serverErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			return 1
		}
	}

	logger.Info("server stopped")
	return 0
}

// runStdioMode handles stdio mode execution. The parent process controls
// our lifecycle; we exit when stdin is closed.
func runStdioMode(ctx context.Context, server *mcp.Server, logger *slog.Logger) int {
	if err := server.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run())
}

func run() int {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return 0
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	if version != "dev" {
		cfg.Version = version
	}

	logger := logging.Init(cfg)
	logger.Debug("starting", "config", cfg.String())

	l, err := openLedger(cfg)
	if err != nil {
		logger.Error("failed to open ledger", "path", cfg.LedgerPath, "error", err)
		return 1
	}
	var history mcp.History
	if l != nil {
		defer l.Close()
		history = l
	}

	pdfService, err := newService(cfg, l, logger)
	if err != nil {
		logger.Error("failed to create packaging service", "error", err)
		return 1
	}

	server, err := mcp.NewServer(cfg, pdfService, history)
	if err != nil {
		logger.Error("failed to create MCP server", "error", err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.IsServerMode() {
		return runServerMode(ctx, cancel, server, logger)
	}
	return runStdioMode(ctx, server, logger)
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("IRB Packager\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
