package dataset

import (
	"errors"
	"fmt"

	"github.com/Krimson/eeg-explorer/viewer/internal/recording"
)

// ErrDatasetUnavailable matches every *UnavailableError via errors.Is.
var ErrDatasetUnavailable = errors.New("dataset unavailable")

// Reason tells why a dataset could not be produced.
type Reason string

const (
	ReasonNotFound  Reason = "not_found"
	ReasonTransfer  Reason = "transfer"
	ReasonTimeout   Reason = "timeout"
	ReasonMalformed Reason = "malformed"
)

// UnavailableError is returned when neither the local cache nor the remote
// store can supply a dataset.
type UnavailableError struct {
	Key    recording.Key
	Store  string
	Reason Reason
	Err    error
}

func (e *UnavailableError) Error() string {
	switch e.Reason {
	case ReasonNotFound:
		return fmt.Sprintf("dataset %s was not found locally or in %s: %v", e.Key, e.storeName(), e.Err)
	case ReasonTimeout:
		return fmt.Sprintf("dataset %s download from %s timed out: %v", e.Key, e.storeName(), e.Err)
	case ReasonMalformed:
		return fmt.Sprintf("dataset %s is not a valid EEG table: %v", e.Key, e.Err)
	default:
		return fmt.Sprintf("dataset %s could not be downloaded from %s: %v", e.Key, e.storeName(), e.Err)
	}
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

func (e *UnavailableError) Is(target error) bool {
	return target == ErrDatasetUnavailable
}

func (e *UnavailableError) storeName() string {
	if e.Store == "" {
		return "the content store"
	}
	return e.Store
}
