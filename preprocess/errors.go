package preprocess

import (
	"errors"
	"fmt"
)

// Failure kinds. Match them with errors.Is; every error returned by this
// package wraps exactly one of them.
var (
	// ErrDimensionMismatch: the input is not InputWidth x InputHeight with
	// three 8-bit color channels.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrEmptyForegroundMask: no component survived the area filter, or
	// none was left after the border crop, so there is nothing to center on.
	ErrEmptyForegroundMask = errors.New("empty foreground mask")

	// ErrCropOutOfBounds: the window centered on the gem leaves the padded
	// canvas and the crop policy is CropFail.
	ErrCropOutOfBounds = errors.New("crop out of bounds")

	// ErrInvalidConfig: a Config field is out of range.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Stage names the part of the pipeline that produced an error.
type Stage string

// Pipeline stages, in order.
const (
	StageConfig    Stage = "config"
	StageInput     Stage = "input"
	StageContrast  Stage = "contrast"
	StageEdges     Stage = "edges"
	StageMask      Stage = "mask"
	StageLocate    Stage = "locate"
	StageComposite Stage = "composite"
)

// Error is the failure result of the pipeline.
type Error struct {
	// Stage is where the condition was detected.
	Stage Stage

	// Kind is one of the Err* sentinels, or a lower-level error for
	// failures that indicate a bug rather than a bad input.
	Kind error

	// Detail describes the offending values.
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %s", e.Stage, e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// StageOf returns the stage recorded in err, or "" if err did not come from
// the pipeline.
func StageOf(err error) Stage {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Stage
	}
	return ""
}
