// Package document defines the core domain types for PDF corpus records.
package document

import "strings"

// Source identifies where a resolved field's value came from.
type Source string

// Sources in strict precedence order: lookup beats embedded beats inferred.
// Mixed provenance across fields on one document is allowed and expected.
const (
	SourceLookup   Source = "lookup"
	SourceEmbedded Source = "embedded"
	SourceInferred Source = "inferred"
	SourceAbsent   Source = "absent"
)

// rank maps a source to its precedence weight (higher wins).
func (s Source) rank() int {
	switch s {
	case SourceLookup:
		return 3
	case SourceEmbedded:
		return 2
	case SourceInferred:
		return 1
	default:
		return 0
	}
}

// Beats reports whether s takes precedence over other.
func (s Source) Beats(other Source) bool {
	return s.rank() > other.rank()
}

// Field is a resolved metadata value with its provenance tag.
type Field struct {
	Value  string `json:"value"`
	Source Source `json:"source"`
}

// IsZero reports whether the field carries no usable value.
func (f Field) IsZero() bool {
	return f.Value == "" || f.Source == SourceAbsent
}

// Properties is a snapshot of the metadata embedded in a document container.
// Fields are empty strings when the container carries no value.
type Properties struct {
	Title        string `json:"title,omitempty"`
	Author       string `json:"author,omitempty"`
	Keywords     string `json:"keywords,omitempty"`
	CreationDate string `json:"creation_date,omitempty"`
	ModDate      string `json:"mod_date,omitempty"`
}

// IsZero reports whether no embedded metadata is present at all.
func (p Properties) IsZero() bool {
	return p.Title == "" && p.Author == "" && p.Keywords == "" &&
		p.CreationDate == "" && p.ModDate == ""
}

// Resolved holds the per-field resolution outcome for one document.
type Resolved struct {
	Title      Field  `json:"title"`
	Author     Field  `json:"author"`
	Year       Field  `json:"year"`
	Journal    string `json:"journal,omitempty"`
	DOI        string `json:"doi,omitempty"`
	JointFirst bool   `json:"joint_first,omitempty"`

	// Authors carries the full ordered author list when the lookup supplied
	// one; empty otherwise.
	Authors []Author `json:"authors,omitempty"`

	// InferredTitle and InferredAuthor keep the structural-pass candidates
	// when inference ran, so reports can flag fields where the chosen
	// value disagrees with the document text.
	InferredTitle  string `json:"inferred_title,omitempty"`
	InferredAuthor string `json:"inferred_author,omitempty"`
}

// Author is one paper author split into family and given names.
type Author struct {
	Family string `json:"family"`
	Given  string `json:"given,omitempty"`
}

// DisplayName returns the sorting-friendly "Family, Given" form.
func (a Author) DisplayName() string {
	if a.Given == "" {
		return a.Family
	}
	return a.Family + ", " + a.Given
}

// Record represents one candidate file discovered during a scan.
// Its path is its identity; a rename logically retires the record.
type Record struct {
	Path     string     `json:"path"`
	Size     int64      `json:"size"`
	ModTime  int64      `json:"mod_time"` // unix seconds
	Embedded Properties `json:"embedded"`
	Text     string     `json:"-"` // first pages only, bounded at scan time
	DOI      string     `json:"doi,omitempty"`

	digest string
}

// Digest returns the cached content digest, or "" when not yet computed.
func (r *Record) Digest() string {
	return r.digest
}

// SetDigest caches the content digest. The digest never changes without the
// underlying bytes changing, so it is recorded once per record lifetime.
func (r *Record) SetDigest(d string) {
	if r.digest == "" {
		r.digest = d
	}
}

// Stem returns the record's filename without directory or extension.
func (r *Record) Stem() string {
	base := r.Path
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base
}
