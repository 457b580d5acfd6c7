package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a lookup that matched no record.
var ErrNotFound = errors.New("not found")

// ValidationError reports bad or missing caller input. Never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ConfigurationError reports a missing credential or an unroutable model for
// the selected provider. Raised before any network call, never retried.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return e.Msg }

// SubmitError reports a provider rejecting the job submission outright.
type SubmitError struct {
	Provider   string
	StatusCode int
	Msg        string
}

func (e *SubmitError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: submit failed (%d): %s", e.Provider, e.StatusCode, e.Msg)
	}
	return fmt.Sprintf("%s: submit failed: %s", e.Provider, e.Msg)
}

// ProviderError reports a provider failing a job after it was accepted, or
// returning a malformed success.
type ProviderError struct {
	Provider string
	Msg      string
}

func (e *ProviderError) Error() string { return fmt.Sprintf("%s: %s", e.Provider, e.Msg) }

// TimeoutError reports a polling loop exceeding its attempt cap. The remote
// job is abandoned, not cancelled.
type TimeoutError struct {
	Provider string
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: job not ready after %d polls", e.Provider, e.Attempts)
}

// FetchError reports a failed download of a reference image or a finished
// asset.
type FetchError struct {
	URL        string
	StatusCode int
	Msg        string
}

func (e *FetchError) Error() string { return e.Msg }

// StorageError reports a failed object-storage upload. Fatal for the request;
// there is no inline-data fallback.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage: %s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

// PersistenceError reports a failed record write. When it happens after a
// successful upload the stored object is orphaned.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("persistence: %v", e.Err) }

func (e *PersistenceError) Unwrap() error { return e.Err }

// PipelineError annotates a component failure with the pipeline stage that
// raised it. The orchestrator wraps every failure in one of these so the HTTP
// layer can emit a single flat envelope.
type PipelineError struct {
	Stage string
	Err   error
}

func (e *PipelineError) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }

func (e *PipelineError) Unwrap() error { return e.Err }
