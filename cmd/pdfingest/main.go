// Command pdfingest converts one PDF into chunked, embedded vectors and
// stores them in a Qdrant collection.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"pdfingest/internal/ingest"
)

// Process exit codes, one per failure kind.
const (
	exitSuccess      = 0
	exitFileNotFound = 1
	exitConversion   = 2
	exitChunking     = 3
	exitEmbedding    = 4
	exitStore        = 5
	exitValidation   = 6
	exitUnknown      = 99
	exitInterrupted  = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRootCmd(ctx)
	err := root.Execute()
	if err == nil {
		os.Exit(exitSuccess)
	}
	if ctx.Err() != nil {
		os.Exit(exitInterrupted)
	}
	os.Exit(exitCode(err))
}

// exitCode maps a failure to its process exit code.
func exitCode(err error) int {
	switch {
	case errors.Is(err, errPrecondition):
		return exitFileNotFound
	case errors.Is(err, ingest.ErrInvalidInput), errors.Is(err, ingest.ErrEmptyResult):
		return exitValidation
	case errors.Is(err, ingest.ErrConversion):
		return exitConversion
	case errors.Is(err, ingest.ErrChunking):
		return exitChunking
	case errors.Is(err, ingest.ErrEmbedding):
		return exitEmbedding
	case errors.Is(err, ingest.ErrStoreConnection),
		errors.Is(err, ingest.ErrStoreWrite),
		errors.Is(err, ingest.ErrStoreRead),
		errors.Is(err, ingest.ErrStoreSearch):
		return exitStore
	default:
		return exitUnknown
	}
}
