package contract

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration       = errors.New("configuration is invalid")
	ErrExtraction          = errors.New("query extraction failed")
	ErrInventoryQuery      = errors.New("inventory query failed")
	ErrAugmentationRun     = errors.New("augmentation run failed")
	ErrAugmentationTimeout = errors.New("augmentation run timed out")
	ErrAugmentationParse   = errors.New("augmentation response is not valid market insights")
	ErrValidation          = errors.New("validation failed")
)

// RunError reports a run that reached a terminal failure status
// (failed, cancelled, or expired).
type RunError struct {
	Status string
}

func (e *RunError) Error() string {
	return fmt.Sprintf("augmentation run failed: status=%s", e.Status)
}

func (e *RunError) Unwrap() error {
	return ErrAugmentationRun
}
