package core

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrNoVersionAssigned   = errors.New("no version assigned")
	ErrArtifactMissing     = errors.New("version has no downloadable files")
	ErrNoCompatibleVersion = errors.New("no compatible version found")
	ErrBundlingUnavailable = errors.New("bundled retrieval is not available")
)

// TransportError is a registry or download request that could not be completed
type TransportError struct {
	Op         string
	URL        string
	StatusCode int
	Status     string
	Err        error
}

func (e *TransportError) Error() string {
	msg := e.Op
	if e.URL != "" {
		msg += " " + e.URL
	}
	if e.Status != "" {
		msg += ": " + e.Status
	} else if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status code %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// VersionFetchError means the versions of a single package could not be listed.
// The selection is left untouched when this happens.
type VersionFetchError struct {
	PackageID string
	Err       error
}

func (e *VersionFetchError) Error() string {
	return fmt.Sprintf("failed to fetch versions for %s: %v", e.PackageID, e.Err)
}

func (e *VersionFetchError) Unwrap() error {
	return e.Err
}

type FailureKind int

const (
	FailureArtifactMissingVersion FailureKind = iota
	FailureArtifactMissing
	FailureTransferFailed
)

func (k FailureKind) String() string {
	switch k {
	case FailureArtifactMissingVersion:
		return "no version assigned"
	case FailureArtifactMissing:
		return "artifact missing"
	case FailureTransferFailed:
		return "transfer failed"
	}
	return "unknown"
}

// RetrievalError is the per-task failure recorded in a retrieval report
type RetrievalError struct {
	Kind      FailureKind
	PackageID string
	Filename  string
	Err       error
}

func (e *RetrievalError) Error() string {
	target := e.PackageID
	if e.Filename != "" {
		target += " (" + e.Filename + ")"
	}
	return fmt.Sprintf("%s: %s: %v", target, e.Kind, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}
