// Package pdfmeta reads and writes metadata embedded in PDF containers.
//
// The resolver and mutator depend only on the Store interface; the pdfcpu
// implementation is selected at startup.
package pdfmeta

import (
	"errors"

	"github.com/Kingy2709/pdf-tools/internal/document"
)

// Store is the capability interface for embedded document metadata.
type Store interface {
	// Read returns the embedded properties, with missing fields normalized
	// to empty strings. An unreadable container yields ErrMalformed; callers
	// are expected to degrade to empty properties.
	Read(path string) (document.Properties, error)

	// Write persists the non-empty fields of props into the container,
	// leaving the file untouched on failure. It returns the write method
	// used ("rewrite" or "relaxed") for audit notes.
	Write(path string, props document.Properties) (method string, err error)
}

// Common errors returned by metadata stores.
var (
	// ErrMalformed indicates the container could not be parsed at all.
	ErrMalformed = errors.New("malformed document")

	// ErrWriteFailed indicates every write strategy was exhausted; the
	// original file is guaranteed untouched.
	ErrWriteFailed = errors.New("metadata write failed")
)

// IsMalformed reports whether err indicates an unparseable container.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformed)
}
