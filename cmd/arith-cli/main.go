package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/pior/arith"
	"github.com/pior/arith/internal/config"
	"github.com/pior/arith/internal/logging"
	"github.com/pior/arith/ops"
)

func main() {
	fs := pflag.NewFlagSet("arith-cli", pflag.ExitOnError)
	configPath := fs.StringP("config", "c", "", "Path to a YAML config file")
	server := fs.StringP("server", "s", "", "Server address host:port (default localhost:1234)")
	dialTimeout := fs.Duration("dial-timeout", 0, "Max time to establish the connection")
	quiet := fs.BoolP("quiet", "q", false, "Do not print the banner")
	fs.Parse(os.Args[1:])

	cfg := config.DefaultClient()
	if err := config.LoadClient(*configPath, &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if fs.Changed("server") {
		cfg.Server = *server
	}
	if fs.Changed("dial-timeout") {
		cfg.DialTimeout = *dialTimeout
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, "text")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Connecting to server %s\n", cfg.Server)
	client, err := arith.Dial(ctx, cfg.Server, arith.ClientConfig{
		DialTimeout:    cfg.DialTimeout,
		RequestTimeout: cfg.RequestTimeout,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	// Unblock pending reads on either side when interrupted
	context.AfterFunc(ctx, func() {
		client.Close()
		os.Stdin.Close()
	})

	if !*quiet {
		printBanner()
	}

	err = arith.Interact(ctx, client, os.Stdin, os.Stdout)
	switch {
	case err == nil, errors.Is(err, arith.ErrServerClosed):
	case ctx.Err() != nil:
		fmt.Println()
	default:
		slog.Error("arith-cli failed", "error", err)
		os.Exit(1)
	}
}

func printBanner() {
	fmt.Println("Arith CLI")
	fmt.Println("=========")
	fmt.Printf("Operations: %s\n", strings.Join(ops.Names(), ", "))
	fmt.Println("Usage: <OPERATION> <int> [<int> ...], e.g. ADD 2 3 5")
	fmt.Println("Type STOP to quit.")
	fmt.Println()
}
