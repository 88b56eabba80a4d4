package tune

import (
	"errors"
	"fmt"

	"github.com/hupe1980/knntune/distance"
)

// ErrEmptyTestSet is reported by a trial whose split left no testing rows.
// Quality would be 0/0, so the trial fails instead of reporting a number.
var ErrEmptyTestSet = errors.New("empty test set")

// ErrWorkerFailure wraps a panic that escaped a trial worker. The failure
// is tagged with the trial's hyperparameters so it can be attributed; other
// trials are unaffected.
type ErrWorkerFailure struct {
	K      int
	Metric distance.Metric
	Err    error
}

// Error implements the error interface.
func (e *ErrWorkerFailure) Error() string {
	return fmt.Sprintf("worker failure in trial k=%d metric=%s: %v", e.K, e.Metric, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ErrWorkerFailure) Unwrap() error { return e.Err }
