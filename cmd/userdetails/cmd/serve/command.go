// Package serve provides the HTTP server command for the userdetails CLI.
package serve

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agentstation/userdetails/cmd/application"
	"github.com/agentstation/userdetails/internal/server"
	"github.com/agentstation/userdetails/pkg/constants"
)

// NewCommand creates the serve command using app context.
func NewCommand(app application.Application) *cobra.Command {
	defaults := server.DefaultConfig()

	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server"},
		GroupID: "core",
		Short:   "Serve the user details form with live updates",
		Long: `Start the user details web server.

Features:
  - HTML form with validation messages and a live display of the last record
  - JSON API over each browser's form session (/api/v1/form)
  - Delayed submissions that can be canceled while pending
  - WebSocket (/api/v1/updates/ws) and Server-Sent Events
    (/api/v1/updates/stream) for record and submission events
  - Rate limiting, CORS, request logging and panic recovery
  - Graceful shutdown that cancels pending submissions`,
		Example: `  # Start on default port 8080
  userdetails serve

  # Shorter submission delay and session lifetime
  userdetails serve --submit-delay 1s --session-ttl 10m

  # Enable CORS for specific origins
  userdetails serve --cors-origins "https://example.com,https://app.example.com"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd, args, app)
		},
	}

	// Server configuration flags
	cmd.Flags().IntP("port", "p", defaults.Port, "Server port")
	cmd.Flags().String("host", defaults.Host, "Bind address")

	// Form flags
	cmd.Flags().Duration("submit-delay", app.SubmitDelay(), "How long a submission stays pending")
	cmd.Flags().Duration("session-ttl", app.SessionTTL(), "How long an idle form session is kept")
	cmd.Flags().Bool("secure-cookies", false, "Mark the session cookie Secure (HTTPS only)")

	// CORS flags
	cmd.Flags().Bool("cors", false, "Enable CORS for all origins")
	cmd.Flags().StringSlice("cors-origins", []string{}, "Allowed CORS origins (comma-separated)")

	// Performance flags
	cmd.Flags().Int("rate-limit", defaults.RateLimit, "Requests per minute per IP (0 to disable)")

	// Timeout flags
	cmd.Flags().Duration("read-timeout", defaults.ReadTimeout, "HTTP read timeout")
	cmd.Flags().Duration("write-timeout", defaults.WriteTimeout, "HTTP write timeout (0 keeps update streams open)")
	cmd.Flags().Duration("idle-timeout", defaults.IdleTimeout, "HTTP idle timeout")

	// Features flags
	cmd.Flags().Bool("metrics", defaults.MetricsEnabled, "Enable metrics endpoint")
	cmd.Flags().String("prefix", defaults.PathPrefix, "API path prefix")

	return cmd
}

// runServer starts the server.
func runServer(cmd *cobra.Command, _ []string, app application.Application) error {
	cfg, err := parseConfig(cmd)
	if err != nil {
		return err
	}
	logger := app.Logger()

	logger.Info().
		Int("port", cfg.Port).
		Str("host", cfg.Host).
		Str("prefix", cfg.PathPrefix).
		Bool("cors", cfg.CORSEnabled).
		Int("rate_limit", cfg.RateLimit).
		Dur("submit_delay", cfg.SubmitDelay).
		Dur("session_ttl", cfg.SessionTTL).
		Msg("Starting user details server")

	srv, err := server.New(app, cfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	// Start background services (WebSocket hub, SSE broadcaster, event broker)
	srv.Start()

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           srv.Handler(),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	// cmd.Context() carries the signal handling from main.go
	return startWithGracefulShutdown(cmd.Context(), httpServer, srv, logger)
}

// parseConfig parses command flags into server configuration. HTTP_HOST,
// HTTP_PORT and RATE_LIMIT apply when the matching flag is not given.
func parseConfig(cmd *cobra.Command) (server.Config, error) {
	cfg := server.Config{
		Host:           mustGetString(cmd, "host"),
		Port:           mustGetInt(cmd, "port"),
		PathPrefix:     mustGetString(cmd, "prefix"),
		CORSEnabled:    mustGetBool(cmd, "cors"),
		CORSOrigins:    mustGetStringSlice(cmd, "cors-origins"),
		SubmitDelay:    mustGetDuration(cmd, "submit-delay"),
		SessionTTL:     mustGetDuration(cmd, "session-ttl"),
		SecureCookies:  mustGetBool(cmd, "secure-cookies"),
		RateLimit:      mustGetInt(cmd, "rate-limit"),
		ReadTimeout:    mustGetDuration(cmd, "read-timeout"),
		WriteTimeout:   mustGetDuration(cmd, "write-timeout"),
		IdleTimeout:    mustGetDuration(cmd, "idle-timeout"),
		MetricsEnabled: mustGetBool(cmd, "metrics"),
	}

	if envHost := os.Getenv("HTTP_HOST"); envHost != "" && !cmd.Flags().Changed("host") {
		cfg.Host = envHost
	}
	if envPort := os.Getenv("HTTP_PORT"); envPort != "" && !cmd.Flags().Changed("port") {
		port, err := parsePort(envPort)
		if err != nil {
			return server.Config{}, fmt.Errorf("HTTP_PORT: %w", err)
		}
		cfg.Port = port
	}
	if envLimit := os.Getenv("RATE_LIMIT"); envLimit != "" && !cmd.Flags().Changed("rate-limit") {
		limit, err := strconv.Atoi(envLimit)
		if err != nil || limit < 0 {
			return server.Config{}, fmt.Errorf("RATE_LIMIT: invalid value %q", envLimit)
		}
		cfg.RateLimit = limit
	}

	if _, err := parsePort(strconv.Itoa(cfg.Port)); err != nil {
		return server.Config{}, err
	}
	if cfg.SubmitDelay < 0 {
		return server.Config{}, fmt.Errorf("submit delay must not be negative: %s", cfg.SubmitDelay)
	}
	if cfg.SessionTTL <= 0 {
		return server.Config{}, fmt.Errorf("session ttl must be positive: %s", cfg.SessionTTL)
	}

	return cfg, nil
}

// parsePort safely parses a port string to integer.
func parsePort(portStr string) (int, error) {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, fmt.Errorf("invalid port number: %s", portStr)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port out of range: %d", port)
	}
	return port, nil
}

// startWithGracefulShutdown starts the HTTP server and shuts it down when
// ctx is canceled. Form sessions are closed after the listener stops, which
// cancels every pending submission.
func startWithGracefulShutdown(ctx context.Context, httpServer *http.Server, srv *server.Server, logger *zerolog.Logger) error {
	serverErr := make(chan error, 1)

	go func() {
		logger.Info().
			Str("addr", httpServer.Addr).
			Msg("HTTP server listening")

		fmt.Printf("User details server listening on http://%s\n", httpServer.Addr)
		fmt.Println("   Press Ctrl+C to stop")

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- fmt.Errorf("server failed: %w", err)
		}
	}()

	select {
	case err := <-serverErr:
		shutdownBackground(srv, logger)
		return err
	case <-ctx.Done():
		logger.Info().Msg("Shutdown signal received via context")
		fmt.Println("\nShutting down server...")

		// The parent context is already canceled.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("Background services shutdown had issues")
		}

		logger.Info().Msg("Server stopped gracefully")
		fmt.Println("Server stopped gracefully")
		return nil
	}
}

func shutdownBackground(srv *server.Server, logger *zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn().Err(err).Msg("Background services shutdown had issues")
	}
}

// mustGetInt retrieves an integer flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetInt(cmd *cobra.Command, name string) int {
	val, err := cmd.Flags().GetInt(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: failed to get flag %q: %v", name, err))
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: failed to get flag %q: %v", name, err))
	}
	return val
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: failed to get flag %q: %v", name, err))
	}
	return val
}

// mustGetStringSlice retrieves a string slice flag value or panics if the flag doesn't exist.
func mustGetStringSlice(cmd *cobra.Command, name string) []string {
	val, err := cmd.Flags().GetStringSlice(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: failed to get flag %q: %v", name, err))
	}
	return val
}

// mustGetDuration retrieves a duration flag value or panics if the flag doesn't exist.
func mustGetDuration(cmd *cobra.Command, name string) time.Duration {
	val, err := cmd.Flags().GetDuration(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: failed to get flag %q: %v", name, err))
	}
	return val
}
