// Package pipeline sequences the four ingestion stages for one PDF:
// Converting, Chunking, Embedding and Storing. Each stage is terminal on
// failure; there are no retries and no rollback of earlier stages'
// in-memory results.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pdfingest/internal/chunker"
	"pdfingest/internal/contextutil"
	"pdfingest/internal/document"
	"pdfingest/internal/ingest"
	"pdfingest/internal/vectorstore"
)

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_collaborators.go -package=mocks pdfingest/internal/pipeline Converter,Embedder,Store

// Converter is the document conversion boundary.
type Converter interface {
	Convert(ctx context.Context, path string) (*document.Document, error)
}

// Embedder is the embedding generation boundary.
type Embedder interface {
	GenerateEmbeddings(ctx context.Context, texts []string, showProgress bool) ([][]float32, error)
}

// Store is the vector store boundary. The store is expected to be
// already connected: connectivity is validated when the manager is
// constructed, before any conversion work is spent.
type Store interface {
	InitializeCollection(ctx context.Context) error
	UpsertPoints(ctx context.Context, chunks []ingest.Chunk, embeddings [][]float32) (int, error)
	CollectionInfo(ctx context.Context) (*vectorstore.CollectionInfo, error)
}

// Summary aggregates the results of one successful run.
type Summary struct {
	Source      string
	Chunks      int
	Vectors     int
	Stored      int
	Collection  string
	TotalPoints int
	StageTimes  map[Stage]time.Duration
	TotalTime   time.Duration
	Status      string
}

// Pipeline runs the four-stage ingestion for single PDF files.
type Pipeline struct {
	converter    Converter
	chunker      *chunker.Chunker
	embedder     Embedder
	store        Store
	reporter     Reporter
	showProgress bool
}

// New creates a pipeline over the given collaborators. A nil reporter
// disables progress output.
func New(conv Converter, chk *chunker.Chunker, emb Embedder, store Store, reporter Reporter, showProgress bool) *Pipeline {
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Pipeline{
		converter:    conv,
		chunker:      chk,
		embedder:     emb,
		store:        store,
		reporter:     reporter,
		showProgress: showProgress,
	}
}

const totalStages = 4

// Run processes one PDF end to end and returns the run summary.
// Preconditions: the path exists, is a regular file and has a .pdf
// extension (case-insensitive); violations are rejected before the first
// stage. Zero chunks after the chunking stage fail the run before any
// vector store call is made.
func (p *Pipeline) Run(ctx context.Context, pdfPath string) (*Summary, error) {
	if err := validatePDFPath(pdfPath); err != nil {
		return nil, err
	}
	logger := contextutil.LoggerFromContext(ctx)
	start := time.Now()
	stageTimes := make(map[Stage]time.Duration)

	// Stage 1: conversion.
	p.reporter.Stage(1, totalStages, "Converting PDF to structured document")
	stageStart := time.Now()
	doc, err := p.converter.Convert(ctx, pdfPath)
	if err != nil {
		return nil, stageFailure(StageConverting, err)
	}
	stageTimes[StageConverting] = time.Since(stageStart)
	p.reporter.StageDone("Conversion complete", stageTimes[StageConverting])

	// Stage 2: chunking.
	p.reporter.Stage(2, totalStages, "Chunking document into semantic segments")
	stageStart = time.Now()
	chunks, err := p.chunker.ChunkDocument(doc, filepath.Base(pdfPath))
	if err != nil {
		return nil, stageFailure(StageChunking, err)
	}
	stageTimes[StageChunking] = time.Since(stageStart)
	p.reporter.StageDone(fmt.Sprintf("Created %d chunks", len(chunks)), stageTimes[StageChunking])

	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no chunks were generated from document", ingest.ErrEmptyResult)
	}

	// Stage 3: embedding.
	p.reporter.Stage(3, totalStages, fmt.Sprintf("Generating embeddings for %d chunks", len(chunks)))
	stageStart = time.Now()
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	embeddings, err := p.embedder.GenerateEmbeddings(ctx, texts, p.showProgress)
	if err != nil {
		return nil, stageFailure(StageEmbedding, err)
	}
	stageTimes[StageEmbedding] = time.Since(stageStart)
	p.reporter.StageDone(fmt.Sprintf("Generated %d embeddings", len(embeddings)), stageTimes[StageEmbedding])

	// Stage 4: storage.
	p.reporter.Stage(4, totalStages, "Storing vectors in the collection")
	stageStart = time.Now()
	if err := p.store.InitializeCollection(ctx); err != nil {
		return nil, stageFailure(StageStoring, err)
	}
	stored, err := p.store.UpsertPoints(ctx, chunks, embeddings)
	if err != nil {
		return nil, stageFailure(StageStoring, err)
	}
	info, err := p.store.CollectionInfo(ctx)
	if err != nil {
		return nil, stageFailure(StageStoring, err)
	}
	stageTimes[StageStoring] = time.Since(stageStart)
	p.reporter.StageDone(fmt.Sprintf("Stored %d points", stored), stageTimes[StageStoring])

	summary := &Summary{
		Source:      filepath.Base(pdfPath),
		Chunks:      len(chunks),
		Vectors:     len(embeddings),
		Stored:      stored,
		Collection:  info.Name,
		TotalPoints: info.PointsCount,
		StageTimes:  stageTimes,
		TotalTime:   time.Since(start),
		Status:      "SUCCESS",
	}
	logger.InfoContext(ctx, "ingestion complete",
		"source", summary.Source, "chunks", summary.Chunks,
		"stored", summary.Stored, "total_points", summary.TotalPoints,
		"elapsed", summary.TotalTime)
	return summary, nil
}

// stageFailure tags err with the stage that produced it. Invalid input
// is the most specific signal and passes through untouched.
func stageFailure(stage Stage, err error) error {
	if errors.Is(err, ingest.ErrInvalidInput) {
		return err
	}
	return &StageError{Stage: stage, Err: err}
}

// validatePDFPath enforces the entry preconditions.
func validatePDFPath(pdfPath string) error {
	info, err := os.Stat(pdfPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: file not found: %s", ingest.ErrInvalidInput, pdfPath)
		}
		return fmt.Errorf("%w: cannot access %s: %v", ingest.ErrInvalidInput, pdfPath, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: path is not a file: %s", ingest.ErrInvalidInput, pdfPath)
	}
	if !strings.EqualFold(filepath.Ext(pdfPath), ".pdf") {
		return fmt.Errorf("%w: file is not a PDF: %s", ingest.ErrInvalidInput, pdfPath)
	}
	return nil
}
