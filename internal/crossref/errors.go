package crossref

import "errors"

// Common errors returned by the CrossRef client. Callers resolving metadata
// treat every one of these as "no lookup result" and fall through to the
// next source tier; none of them is fatal to a run.
var (
	// ErrNotFound indicates the DOI is unknown to the registry.
	ErrNotFound = errors.New("DOI not found in CrossRef")

	// ErrUnavailable indicates a network or service failure.
	ErrUnavailable = errors.New("CrossRef unavailable")

	// ErrInvalidResponse indicates an unexpected API response body.
	ErrInvalidResponse = errors.New("invalid response from CrossRef")
)

// IsNotFound reports whether err means the DOI has no registry entry.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
