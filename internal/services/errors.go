package services

import (
	"errors"
	"fmt"
)

// Data service errors
var (
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrNoFilesUploaded = errors.New("no files uploaded")
	ErrExampleMissing  = errors.New("example data not found")
)

// Analysis service errors
var (
	ErrAnalysisTimeout = errors.New("analysis timed out")
	ErrEngineBusy      = errors.New("too many analyses in flight")
)

// BadInputError marks validation-shaped problems: unparsable uploads or a
// dataset missing categories the requested analysis requires. The transport
// layer maps it to a 400.
type BadInputError struct {
	Category string
	Err      error
}

func (e *BadInputError) Error() string {
	if e.Category != "" {
		return fmt.Sprintf("%s: %v", e.Category, e.Err)
	}
	return e.Err.Error()
}

func (e *BadInputError) Unwrap() error {
	return e.Err
}

// AnalysisError marks execution-shaped problems: anything the engine raised
// while running an analysis. It carries the analysis kind so the caller
// knows which run failed.
type AnalysisError struct {
	Kind string
	Err  error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("%s analysis failed: %v", e.Kind, e.Err)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}
