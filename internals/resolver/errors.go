package resolver

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownVersion is returned if a version is neither in the version manifest nor on disk
	ErrUnknownVersion = errors.New("unknown minecraft version")
	// ErrChecksumMismatch is wrapped by a [ManifestFetchError] if a fetched document does not match its sha1
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// ManifestFetchError is returned if a manifest could not be fetched.
// It is usually worth retrying.
type ManifestFetchError struct {
	// ID is the version (or asset index) that was requested
	ID  string
	URL string
	Err error
}

func (e *ManifestFetchError) Error() string {
	return fmt.Sprintf("could not fetch manifest %q from %s: %v", e.ID, e.URL, e.Err)
}

func (e *ManifestFetchError) Unwrap() error {
	return e.Err
}

// StatusError is returned for non 200 responses
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return "invalid status code: " + e.Status
}

// ResolutionCycleError is returned if the `inheritsFrom` chain of a version loops
type ResolutionCycleError struct {
	// Chain is the walked chain, the last element is the revisited version
	Chain []string
}

func (e *ResolutionCycleError) Error() string {
	return "inheritance cycle: " + strings.Join(e.Chain, " -> ")
}
