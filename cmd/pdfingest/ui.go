package main

import (
	"fmt"
	"io"
	"time"

	"pdfingest/internal/pipeline"
)

// consoleReporter prints human-readable stage progress to stdout.
type consoleReporter struct {
	out io.Writer
}

func (r consoleReporter) Stage(num, total int, description string) {
	fmt.Fprintf(r.out, "[%d/%d] %s...\n", num, total, description)
}

func (r consoleReporter) StageDone(message string, elapsed time.Duration) {
	fmt.Fprintf(r.out, "%s (%.1fs)\n", message, elapsed.Seconds())
}

// printSummary writes the final processing summary table.
func printSummary(out io.Writer, s *pipeline.Summary) {
	fmt.Fprintln(out, "Processing Summary:")
	fmt.Fprintf(out, "  Source:        %s\n", s.Source)
	fmt.Fprintf(out, "  Chunks:        %d\n", s.Chunks)
	fmt.Fprintf(out, "  Vectors:       %d\n", s.Vectors)
	fmt.Fprintf(out, "  Stored:        %d\n", s.Stored)
	fmt.Fprintf(out, "  Collection:    %s\n", s.Collection)
	fmt.Fprintf(out, "  Total Points:  %d\n", s.TotalPoints)
	fmt.Fprintf(out, "  Total Time:    %.1fs\n", s.TotalTime.Seconds())
	fmt.Fprintf(out, "  Status:        %s\n", s.Status)
}
