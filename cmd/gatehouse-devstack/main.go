// ABOUTME: Entry point for the gatehouse development stack
// ABOUTME: Runs a local auth backend and database proxy, and seeds users

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/2389/gatehouse/internal/auth"
	"github.com/2389/gatehouse/internal/devstack"
	"github.com/2389/gatehouse/internal/logging"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: gatehouse-devstack <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve                     Start the auth backend and database proxy")
		fmt.Println("  adduser NAME PASSWORD     Add a user (the user named admin gets the console)")
		fmt.Println("  version                   Print the version")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "adduser":
		err = runAddUser(ctx, os.Args[2:])
	case "version":
		fmt.Println(version)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()
	cfg, err := Load(configPath)
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	store, err := devstack.OpenStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	issuer, err := auth.NewTokenIssuer([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	devstack.RegisterRoutes(mux, devstack.NewAuthority(store, issuer, cfg.Auth.TokenTTL), devstack.NewProxy(store))

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Server.Addr, err)
	}

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Auth API:  http://%s/api\n", ln.Addr())
	green.Print("    ▶ ")
	fmt.Printf("Database:  ws://%s/db\n", ln.Addr())
	fmt.Println()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("dev stack listening", "addr", ln.Addr().String(), "config", configPath)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("HTTP server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runAddUser(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: gatehouse-devstack adduser NAME PASSWORD")
	}

	cfg, err := Load(getConfigPath())
	if err != nil {
		return err
	}

	store, err := devstack.OpenStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.AddUser(ctx, args[0], args[1]); err != nil {
		return err
	}

	color.New(color.FgGreen).Print("✓ ")
	fmt.Printf("added user %s\n", args[0])
	return nil
}
