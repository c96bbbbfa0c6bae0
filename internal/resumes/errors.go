package resumes

import (
	"errors"
	"fmt"
)

// Failure sentinels for the ingestion pipeline and record store.
var (
	ErrUploadFailure      = errors.New("upload failure")
	ErrConversionFailure  = errors.New("conversion failure")
	ErrAnalysisFailure    = errors.New("analysis failure")
	ErrParseFailure       = errors.New("parse failure")
	ErrPersistFailure     = errors.New("persist failure")
	ErrNotFound           = errors.New("record not found")
	ErrPartialWipeFailure = errors.New("partial wipe failure")
)

// PipelineError reports which stage a submission failed at. Every stage
// error is terminal for that submission; nothing retries and no prior
// stage is rolled back.
type PipelineError struct {
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline stage %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// newPipelineError wraps err with its stage and the matching sentinel.
func newPipelineError(stage Stage, sentinel, err error) *PipelineError {
	return &PipelineError{Stage: stage, Err: fmt.Errorf("%w: %w", sentinel, err)}
}
