// Package main provides the entry point for the dispute platform server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/brillianbank/dispute-platform/internal/server"
	"github.com/brillianbank/dispute-platform/pkg/platform"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type serverOptions struct {
	configPath  string
	address     string
	logJSON     bool
	showVersion bool
}

func parseFlags() serverOptions {
	opts := serverOptions{}
	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.address, "address", "", "Override the server listen address")
	flag.BoolVar(&opts.logJSON, "log-json", false, "Emit JSON logs")
	flag.BoolVar(&opts.showVersion, "version", false, "Show version and exit")
	flag.Parse()
	return opts
}

func setupLogger(jsonLogs bool) {
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, nil)
	if jsonLogs {
		handler = slog.NewJSONHandler(os.Stderr, nil)
	}
	slog.SetDefault(slog.New(handler))
}

func setupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
	return ctx
}

func loadConfig(opts serverOptions) (*platform.Config, error) {
	if opts.configPath != "" {
		return platform.LoadConfig(opts.configPath)
	}

	cfg := platform.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run() error {
	opts := parseFlags()

	if opts.showVersion {
		fmt.Printf("dispute-platform version %s\n", server.Version)
		return nil
	}

	// Missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	setupLogger(opts.logJSON)

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if opts.address != "" {
		cfg.Server.Address = opts.address
	}

	srv, err := server.New(cfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer srv.Close() //nolint:errcheck // connections are torn down on exit anyway

	return srv.Run(setupSignalHandler())
}
