package pipeline

import "fmt"

// Stage identifies which pipeline stage produced a failure.
type Stage string

const (
	StageConverting Stage = "converting"
	StageChunking   Stage = "chunking"
	StageEmbedding  Stage = "embedding"
	StageStoring    Stage = "storing"
)

// StageError tags a stage-local failure with the stage that produced it
// so callers can react differently per stage. It unwraps to the
// underlying failure, keeping errors.Is classification intact.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
