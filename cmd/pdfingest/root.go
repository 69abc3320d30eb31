package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"pdfingest/internal/chunker"
	"pdfingest/internal/config"
	"pdfingest/internal/contextutil"
	"pdfingest/internal/converter"
	"pdfingest/internal/embedder"
	"pdfingest/internal/ingest"
	"pdfingest/internal/pipeline"
	"pdfingest/internal/vectorstore"
)

// errPrecondition marks input-path violations caught before the first
// pipeline stage.
var errPrecondition = errors.New("input precondition failed")

func newRootCmd(ctx context.Context) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "pdfingest <pdf_path>",
		Short: "Convert a PDF into searchable vector embeddings",
		Long: `pdfingest converts a PDF document into structured text, segments it
into semantically coherent chunks, computes an embedding per chunk and
stores the chunks with their embeddings in a Qdrant collection.`,
		Example: `  pdfingest document.pdf
  pdfingest data/input/research_paper.pdf --verbose
  pdfingest /path/to/file.pdf -v`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(ctx, args[0], verbose)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output with detailed logging")
	return cmd
}

func run(ctx context.Context, pdfPath string, verbose bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("%w: %v", ingest.ErrInvalidInput, err)
	}
	if verbose {
		cfg.Processing.Verbose = true
		cfg.Processing.LogLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Processing.LogLevel,
	}))
	slog.SetDefault(logger)
	ctx = contextutil.WithLogger(ctx, logger)

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	if err := checkPreconditions(logger, pdfPath); err != nil {
		return err
	}

	fmt.Printf("Processing PDF: %s\n", pdfPath)

	// The store is connected and health-checked up front, so an
	// unreachable Qdrant fails the run before conversion and embedding
	// work is spent.
	store, err := vectorstore.NewManager(ctx, cfg)
	if err != nil {
		reportFailure(logger, cfg, err)
		return err
	}

	pipe := pipeline.New(
		converter.NewClient(cfg),
		chunker.New(cfg.Chunking),
		embedder.NewClient(cfg.Embedding, embedder.NewModelCache()),
		store,
		consoleReporter{out: os.Stdout},
		cfg.Embedding.ShowProgress,
	)

	summary, err := pipe.Run(ctx, pdfPath)
	if err != nil {
		reportFailure(logger, cfg, err)
		return err
	}

	printSummary(os.Stdout, summary)
	return nil
}

// checkPreconditions rejects paths that do not exist, are not regular
// files or are not PDFs, before any stage runs.
func checkPreconditions(logger *slog.Logger, pdfPath string) error {
	info, err := os.Stat(pdfPath)
	if err != nil {
		logger.Error("file not found", "path", pdfPath)
		return fmt.Errorf("%w: file not found: %s", errPrecondition, pdfPath)
	}
	if !info.Mode().IsRegular() {
		logger.Error("path is not a file", "path", pdfPath)
		return fmt.Errorf("%w: path is not a file: %s", errPrecondition, pdfPath)
	}
	if !strings.EqualFold(filepath.Ext(pdfPath), ".pdf") {
		logger.Error("file is not a PDF", "path", pdfPath, "extension", filepath.Ext(pdfPath))
		return fmt.Errorf("%w: file is not a PDF: %s", errPrecondition, pdfPath)
	}
	return nil
}

// reportFailure logs the failure; store failures carry an operator hint.
func reportFailure(logger *slog.Logger, cfg *config.Config, err error) {
	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
		logger.Error("pipeline stage failed", "stage", string(stageErr.Stage), "error", stageErr.Err)
	} else {
		logger.Error("pipeline failed", "error", err)
	}

	if errors.Is(err, ingest.ErrStoreConnection) ||
		errors.Is(err, ingest.ErrStoreWrite) ||
		errors.Is(err, ingest.ErrStoreRead) ||
		errors.Is(err, ingest.ErrStoreSearch) {
		logger.Info("ensure Qdrant is running", "url", cfg.QdrantURL())
	}
}
