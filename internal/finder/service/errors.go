package service

import (
	"fmt"

	"github.com/Laisky/errors/v2"
)

// Stage names where generation failed.
type Stage string

const (
	// StagePreconditionFailed means no call was made: empty context or no credential.
	StagePreconditionFailed Stage = "PreconditionFailed"
	// StageUpstreamFailure means the generation service call failed.
	StageUpstreamFailure Stage = "UpstreamFailure"
	// StageParseFailure means the output was not a JSON array.
	StageParseFailure Stage = "ParseFailure"
)

var (
	// ErrEmptyContext is the cause of a precondition failure on blank context.
	ErrEmptyContext = errors.New("context data is required")
	// ErrNoGenerator is the cause of a precondition failure when no backend is wired.
	ErrNoGenerator = errors.New("generation service is not configured")
)

// GenerationError reports a failed generation. RawResponse holds the model
// output on StageParseFailure so callers can show it instead.
type GenerationError struct {
	Stage       Stage
	Message     string
	RawResponse string
	Err         error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Stage, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Message, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IsStage reports whether err is a GenerationError at stage.
func IsStage(err error, stage Stage) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr) && genErr.Stage == stage
}
