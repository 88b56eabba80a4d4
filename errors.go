package knntune

import (
	"errors"
	"fmt"

	"github.com/hupe1980/knntune/classify"
	"github.com/hupe1980/knntune/store"
	"github.com/hupe1980/knntune/tune"
)

var (
	// ErrNotPartitioned is returned when an operation requires a
	// training/testing split that has not been made yet.
	ErrNotPartitioned = errors.New("store is not partitioned")

	// ErrInvalidK is returned when k is out of range for the training set.
	ErrInvalidK = errors.New("invalid k")

	// ErrEmptyTestSet is the facade-level alias for a split with no
	// testing rows.
	ErrEmptyTestSet = tune.ErrEmptyTestSet
)

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var ih *classify.ErrInvalidHyperparameter
	if errors.As(err, &ih) {
		return fmt.Errorf("%w: %w", ErrInvalidK, err)
	}

	var ir *store.ErrInvalidRecord
	if errors.As(err, &ir) {
		return fmt.Errorf("load rejected: %w", err)
	}

	return err
}
