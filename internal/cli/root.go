// Package cli is the bookctl command tree. It drives the same services as
// the HTTP API, built once per invocation.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/akolanti/BookRAG/internal/app"
	"github.com/akolanti/BookRAG/internal/config"
	"github.com/akolanti/BookRAG/pkg/logger_i"
	"github.com/spf13/cobra"
)

// skipServices marks commands that run without building the application.
const skipServices = "skip-services"

var errNotConfigured = errors.New("services not configured")

// services is built lazily by the root pre-run hook unless SetServices
// installed one first.
var services *app.App

var rootCmd = &cobra.Command{
	Use:   "bookctl",
	Short: "Ingest, search and ask questions about the book",
	Long: `bookctl runs the book RAG pipeline from the terminal.

Configuration is read from the environment and an optional .env file, the
same way the API server reads it.`,
	SilenceUsage:      true,
	PersistentPreRunE: ensureServices,
}

// SetServices installs a prebuilt application, bypassing configuration.
func SetServices(a *app.App) {
	services = a
}

// Execute runs the command tree until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	rootCmd.SetOut(os.Stdout)
	return rootCmd.ExecuteContext(ctx)
}

func ensureServices(cmd *cobra.Command, _ []string) error {
	if services != nil || cmd.Annotations[skipServices] == "true" {
		return nil
	}
	settings, err := config.Load()
	logger_i.InitTo(os.Stderr, settings.LogLevel, settings.LogJSON)
	if err != nil {
		return err
	}
	a, err := app.Build(cmd.Context(), settings)
	if err != nil {
		return fmt.Errorf("build services: %w", err)
	}
	services = a
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
