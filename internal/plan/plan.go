// Package plan turns resolved metadata, duplicate groupings, and
// synthesized destinations into an ordered list of operations. The
// builder performs no I/O, so a full dry run is just a built plan.
package plan

import (
	"sort"

	"github.com/Kingy2709/pdf-tools/internal/document"
)

// Kind is the category of a planned operation.
type Kind string

const (
	Rename       Kind = "rename"
	RenameMeta   Kind = "rename+metadata"
	MetadataOnly Kind = "metadata-only"
	DeleteDup    Kind = "delete-duplicate"
	Skip         Kind = "skip"
	Error        Kind = "error"
)

// Status tracks an operation through its lifecycle.
type Status string

const (
	Planned Status = "planned"
	Applied Status = "applied"
	Skipped Status = "skipped"
	Failed  Status = "failed"
)

// Reason strings recorded on skip and error operations.
const (
	ReasonNoop       = "noop"
	ReasonDstExists  = "dst-exists"
	ReasonMissingSrc = "missing-src"
	ReasonDuplicate  = "duplicate-of-keeper"
	ReasonLimit      = "limit"
)

// Op is one proposed mutation. Dst is empty for deletes and skips
// without a proposed destination; Meta is nil when no metadata write
// is requested.
type Op struct {
	Kind   Kind
	Src    string
	Dst    string
	Meta   *document.Properties
	Reason string
	Notes  string
	Status Status

	// Carried through for the audit trail.
	Original document.Properties
	Resolved document.Resolved
	Digest   string
}

// Request describes one document's proposed outcome before planning.
type Request struct {
	Src       string
	Dst       string // proposed destination; equal to Src means no move
	Identical bool   // Dst is occupied by bit-identical content
	Meta      *document.Properties
	Notes     string
	Original  document.Properties
	Resolved  document.Resolved
	Digest    string
}

// Builder assembles plans. Exists reports whether a path is currently
// present; it is injected so the builder itself stays free of I/O.
type Builder struct {
	Exists func(path string) bool
}

// Build produces one operation per request plus one delete per entry
// in deletes, in a deterministic order. No two operations other than
// skips and errors share a destination; a later request whose
// destination was already claimed is planned as an error.
func (b *Builder) Build(reqs []Request, deletes []string) []Op {
	ops := make([]Op, 0, len(reqs)+len(deletes))
	claimed := make(map[string]bool)

	for _, r := range reqs {
		op := b.planOne(r, claimed)
		if op.Status == Planned && op.Kind != Skip && op.Kind != Error {
			dst := op.Dst
			if dst == "" {
				dst = op.Src
			}
			claimed[dst] = true
		}
		ops = append(ops, op)
	}

	dels := append([]string(nil), deletes...)
	sort.Strings(dels)
	for _, p := range dels {
		op := Op{Kind: DeleteDup, Src: p, Reason: ReasonDuplicate, Status: Planned}
		if !b.exists(p) {
			op.Kind = Error
			op.Reason = ReasonMissingSrc
		}
		ops = append(ops, op)
	}
	return ops
}

func (b *Builder) planOne(r Request, claimed map[string]bool) Op {
	op := Op{
		Src:      r.Src,
		Dst:      r.Dst,
		Meta:     r.Meta,
		Notes:    r.Notes,
		Status:   Planned,
		Original: r.Original,
		Resolved: r.Resolved,
		Digest:   r.Digest,
	}

	if !b.exists(r.Src) {
		op.Kind = Error
		op.Reason = ReasonMissingSrc
		return op
	}
	if r.Identical {
		op.Kind = Skip
		op.Reason = ReasonNoop
		return op
	}

	moving := r.Dst != "" && r.Dst != r.Src
	if moving && claimed[r.Dst] {
		op.Kind = Error
		op.Reason = ReasonDstExists
		return op
	}

	switch {
	case moving && r.Meta != nil:
		op.Kind = RenameMeta
	case moving:
		op.Kind = Rename
	case r.Meta != nil:
		op.Kind = MetadataOnly
	default:
		op.Kind = Skip
		op.Reason = ReasonNoop
	}
	return op
}

// NoteString joins the skip or failure reason with any attached notes
// for reporting.
func (o Op) NoteString() string {
	switch {
	case o.Reason == "":
		return o.Notes
	case o.Notes == "":
		return o.Reason
	}
	return o.Reason + ";" + o.Notes
}

func (b *Builder) exists(path string) bool {
	if b.Exists == nil {
		return true
	}
	return b.Exists(path)
}

// Summary counts terminal and planned outcomes for reporting.
type Summary struct {
	Planned int
	Applied int
	Skipped int
	Failed  int
}

// Summarize tallies operation statuses.
func Summarize(ops []Op) Summary {
	var s Summary
	for _, op := range ops {
		switch op.Status {
		case Applied:
			s.Applied++
		case Skipped:
			s.Skipped++
		case Failed:
			s.Failed++
		default:
			s.Planned++
		}
	}
	return s
}
