package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Lllllllleong/docinspector/internal/gcp"
	"github.com/Lllllllleong/docinspector/internal/llm"
	"github.com/Lllllllleong/docinspector/internal/services"
)

var (
	// Global flags
	envFile string
	timeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "docinspector",
	Short: "Analyze documents, review checklists and search similar documents",
	Long: `docinspector extracts the text of a PDF, DOCX or TXT document and derives its
topic, summary and keywords, a review checklist and a list of similar documents
from the search index.

Generation backend and search index are configured through the environment,
optionally loaded from a .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
		setupLogging(gcp.GetEnv("LOG_LEVEL", "info"))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Minute, "Overall operation timeout")

	uploadCmd.Flags().BoolVar(&persist, "persist", false, "Store the original and archive the analysis")
	documentsCmd.Flags().IntVar(&documentsLimit, "limit", 20, "Maximum number of documents to list")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(documentsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setupLogging routes JSON logs to stderr so command output stays clean.
func setupLogging(level string) {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: gcp.LogLevel(level)}))
	slog.SetDefault(logger)
}

// commandContext applies the timeout flag and cancels on SIGINT/SIGTERM.
func commandContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	return ctx, func() {
		stop()
		cancel()
	}
}

// newLocalInspector builds an inspector that never touches cloud storage.
func newLocalInspector(ctx context.Context) (*services.InspectorFunction, llm.Client, error) {
	client, err := llm.NewClient(ctx, llm.LoadConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create generation client: %w", err)
	}
	f := services.NewInspectorWith(services.InspectorConfig{}, client, llm.LoadSearchDataSource(), nil, nil, nil)
	return f, client, nil
}
