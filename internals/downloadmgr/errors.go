package downloadmgr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"syscall"
)

// ErrInvalidSha is returned when the downloaded file's sha1 sum does not match the expected one
type ErrInvalidSha struct {
	FileName    string
	ExpectedSha string
	ActualSha   string
}

func (e *ErrInvalidSha) Error() string {
	return fmt.Sprintf(
		"file corrupted: %s sha1 is invalid. expected to be %q but actually is %q",
		e.FileName,
		e.ExpectedSha,
		e.ActualSha,
	)
}

// ErrInvalidSize is returned when the downloaded file is bigger or smaller than expected
type ErrInvalidSize struct {
	FileName     string
	ExpectedSize int64
	ActualSize   int64
}

func (e *ErrInvalidSize) Error() string {
	return fmt.Sprintf("file corrupted: %s has %d bytes but should have %d", e.FileName, e.ActualSize, e.ExpectedSize)
}

// StatusError is returned for non 200 responses
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("invalid status code: %s from %s", e.Status, e.URL)
}

// FailureKind classifies why a task failed
type FailureKind int

const (
	// FailureTransient are network errors, timeouts & 5xx responses that persisted after all retries
	FailureTransient FailureKind = iota
	// FailureChecksumMismatch means the downloaded content did not match the expected sha1 or size.
	// These are never retried.
	FailureChecksumMismatch
	// FailurePermanent are errors that a retry would not fix (4xx responses, local io errors)
	FailurePermanent
	// FailureCanceled is used for tasks that were interrupted or never started because of cancellation
	FailureCanceled
)

func (k FailureKind) String() string {
	switch k {
	case FailureTransient:
		return "transient"
	case FailureChecksumMismatch:
		return "checksum mismatch"
	case FailurePermanent:
		return "permanent"
	case FailureCanceled:
		return "canceled"
	}
	return "unknown"
}

// Failure is a failed task
type Failure struct {
	Task Task
	Kind FailureKind
	Err  error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("downloading %s failed (%s): %v", f.Task.URL, f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// classify returns the failure kind of an error returned by a (retried) download
func classify(ctx context.Context, err error) FailureKind {
	var shaErr *ErrInvalidSha
	var sizeErr *ErrInvalidSize
	switch {
	case ctx.Err() != nil || errors.Is(err, context.Canceled):
		return FailureCanceled
	case errors.As(err, &shaErr), errors.As(err, &sizeErr):
		return FailureChecksumMismatch
	case isTransient(err):
		return FailureTransient
	}
	return FailurePermanent
}

// isTransient reports whether a retry could fix err
func isTransient(err error) bool {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		// local file system
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500 || statusErr.StatusCode == http.StatusTooManyRequests
	}

	// *url.Error is a net.Error too, only dial, read & write errors and timeouts count
	var opErr *net.OpError
	var dnsErr *net.DNSError
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.As(err, &opErr),
		errors.As(err, &dnsErr):
		return true
	case errors.As(err, &netErr):
		return netErr.Timeout()
	}
	return false
}
