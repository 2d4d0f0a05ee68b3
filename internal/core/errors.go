package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for the conditions callers branch on.
var (
	// ErrInvalidRepository marks a query against a repo id that is not in
	// the configured crawl targets. Maps to a client error, never retried.
	ErrInvalidRepository = errors.New("unknown repository")

	// ErrNoStats is returned by the stats store when a repo has never been
	// crawled. The orchestrator treats it as "crawl unconditionally".
	ErrNoStats = errors.New("no crawl stats recorded")

	// ErrEmptyResponse marks a transport-level success with a semantically
	// empty payload. Usually provider-side throttling in disguise, so it is
	// retried like any transient failure.
	ErrEmptyResponse = errors.New("remote returned empty response")

	// ErrMissingRootReadme and ErrMultipleRootReadmes are structural repo
	// defects that make repo-level summarization impossible. Fatal for that
	// repository's crawl, never retried.
	ErrMissingRootReadme   = errors.New("no root README.md found")
	ErrMultipleRootReadmes = errors.New("found multiple root readmes, can be only one")
)

// RemoteServiceError is the terminal failure of a rate-limited remote call
// after retries are exhausted.
type RemoteServiceError struct {
	Service string // which remote endpoint failed
	Status  int    // last HTTP status, 0 if the transport failed
	Err     error
}

func (e *RemoteServiceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Service, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *RemoteServiceError) Unwrap() error { return e.Err }
