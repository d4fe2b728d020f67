// ABOUTME: Entry point for the gatehouse portal
// ABOUTME: Serves the login, hub, and admin console views in front of the auth backend and database proxy

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/2389/gatehouse/internal/config"
	"github.com/2389/gatehouse/internal/logging"
	"github.com/2389/gatehouse/internal/server"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
              _       _
   __ _  __ _| |_ ___| |__   ___  _   _ ___  ___
  / _' |/ _' | __/ _ \ '_ \ / _ \| | | / __|/ _ \
 | (_| | (_| | ||  __/ | | | (_) | |_| \__ \  __/
  \__, |\__,_|\__\___|_| |_|\___/ \__,_|___/\___|
  |___/
`

// getConfigPath returns the path to the portal config file.
// Priority: GATEHOUSE_CONFIG env var > XDG_CONFIG_HOME/gatehouse/portal.yaml > ~/.config/gatehouse/portal.yaml
func getConfigPath() string {
	if envPath := os.Getenv("GATEHOUSE_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "portal.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "gatehouse", "portal.yaml")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: gatehouse <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve     Start the portal")
		fmt.Println("  check     Validate the config and endpoint document")
		fmt.Println("  health    Check portal health")
		fmt.Println("  version   Print the version")
		os.Exit(1)
	}

	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: reading .env: %v\n", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "check":
		err = runCheck(ctx)
	case "health":
		err = runHealth(ctx)
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

// loadAll reads the portal config and the endpoint document it names.
func loadAll(ctx context.Context) (string, *config.Config, config.Endpoints, error) {
	configPath := getConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return configPath, nil, config.Endpoints{}, fmt.Errorf("loading config: %w", err)
	}

	client := &http.Client{Timeout: cfg.Client.RequestTimeout}
	endpoints, err := config.LoadEndpoints(ctx, cfg.Client.Endpoints, client)
	if err != nil {
		return configPath, cfg, config.Endpoints{}, fmt.Errorf("loading endpoints: %w", err)
	}

	return configPath, cfg, endpoints, nil
}

func runServe(ctx context.Context) error {
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	configPath, cfg, endpoints, err := loadAll(ctx)
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("Endpoints: %s\n", cfg.Client.Endpoints)
	green.Print("    ▶ ")
	fmt.Printf("Auth:      %s\n", endpoints.AuthenticateURL())
	green.Print("    ▶ ")
	fmt.Printf("Database:  %s\n", endpoints.DatabaseProxyURL)

	if cfg.Tailscale.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("Tailscale: ")
		cyan.Print(cfg.Tailscale.Hostname)
		if cfg.Tailscale.Funnel {
			yellow.Print(" [funnel]")
		} else if cfg.Tailscale.HTTPS {
			yellow.Print(" [https]")
		}
		if cfg.Tailscale.Ephemeral {
			gray.Print(" (ephemeral)")
		}
		fmt.Println()
	} else {
		green.Print("    ▶ ")
		fmt.Printf("HTTP:      %s\n", cfg.Server.HTTPAddr)
	}

	fmt.Println()

	logger.Info("starting gatehouse",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"endpoints", cfg.Client.Endpoints,
	)

	srv, err := server.New(cfg, endpoints)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return srv.Run(ctx)
}

func runCheck(ctx context.Context) error {
	configPath, cfg, endpoints, err := loadAll(ctx)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	check := func(label, value string) {
		green.Print("✓ ")
		fmt.Printf("%-14s %s\n", label, value)
	}

	check("config", configPath)
	check("endpoints", cfg.Client.Endpoints)
	check("token", endpoints.TokenURL())
	check("authenticate", endpoints.AuthenticateURL())
	check("logout", endpoints.LogoutURL())
	check("database", endpoints.DatabaseProxyURL)
	check("hangman", endpoints.HangmanURL)
	check("session", cfg.Session.Lifetime.String())
	return nil
}

func runHealth(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	url := fmt.Sprintf("http://%s/health", cfg.Server.HTTPAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}
