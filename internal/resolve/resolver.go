// Package resolve merges embedded metadata, text inference, and registry
// lookups into resolved per-field values with provenance tags.
//
// One precedence table applies uniformly to every field: lookup beats
// plausible embedded metadata, which beats text inference, which beats the
// placeholder tier. Embedded titles that fail the plausibility check are
// demoted to absent even though the field is populated.
package resolve

import (
	"context"
	"regexp"
	"strings"

	"github.com/Kingy2709/pdf-tools/internal/crossref"
	"github.com/Kingy2709/pdf-tools/internal/document"
	"github.com/Kingy2709/pdf-tools/internal/extract"
)

// Placeholder values for the absent tier.
const (
	UnknownAuthor = "unknown-author"
	UnknownYear   = "unknown-year"
)

// Lookuper is the registry capability the resolver depends on.
type Lookuper interface {
	Lookup(ctx context.Context, doi string) (*crossref.Work, error)
}

// Input carries the raw signals for one document.
type Input struct {
	Path     string
	Embedded document.Properties

	// Text is the extracted first-pages snapshot workspace. Identifier
	// scanning always runs over it, together with embedded keywords.
	Text string

	// Infer produces the text inference on demand. It is only invoked when
	// embedded title and author do not already satisfy resolution, so
	// callers can wire the expensive structural pass here.
	Infer func() extract.Inference
}

// Resolver merges the three metadata sources under fixed precedence.
type Resolver struct {
	lookup     Lookuper
	yearDigits int
}

// New creates a Resolver. lookup may be nil to disable registry queries.
// yearDigits selects the naming convention's year token width (4 or 2).
func New(lookup Lookuper, yearDigits int) *Resolver {
	if yearDigits != 2 {
		yearDigits = 4
	}
	return &Resolver{lookup: lookup, yearDigits: yearDigits}
}

var yearTokenRe = regexp.MustCompile(`(19|20)\d{2}`)

// Resolve produces the resolved title, author, and year for one document.
// It is pure over its inputs apart from the single lookup call; lookup
// failures silently degrade to the next tier and are never an error.
func (r *Resolver) Resolve(ctx context.Context, in Input) document.Resolved {
	res := document.Resolved{}

	embTitle := strings.TrimSpace(in.Embedded.Title)
	embAuthor := strings.TrimSpace(in.Embedded.Author)
	titlePlausible := PlausibleTitle(embTitle)

	// Inference is skipped for performance when embedded metadata already
	// satisfies both fields; identifier scanning below still runs.
	var inf extract.Inference
	if (embTitle == "" || !titlePlausible || embAuthor == "") && in.Infer != nil {
		inf = in.Infer()
	}
	res.JointFirst = inf.JointFirst
	res.InferredTitle = strings.TrimSpace(inf.Title)
	res.InferredAuthor = strings.TrimSpace(inf.Author)

	res.DOI = extract.FindDOI(in.Embedded.Keywords + "\n" + in.Text)
	var work *crossref.Work
	if res.DOI != "" && r.lookup != nil {
		if w, err := r.lookup.Lookup(ctx, res.DOI); err == nil {
			work = w
		}
	}
	if work != nil {
		res.Journal = work.Journal
	}

	res.Title = r.resolveTitle(work, embTitle, titlePlausible, inf, in)
	res.Author, res.Authors = r.resolveAuthor(work, embAuthor, inf)
	res.Year = r.resolveYear(work, in.Embedded, inf)
	return res
}

func (r *Resolver) resolveTitle(work *crossref.Work, embTitle string, plausible bool, inf extract.Inference, in Input) document.Field {
	if work != nil && work.Title != "" {
		return document.Field{Value: work.Title, Source: document.SourceLookup}
	}
	if embTitle != "" && plausible {
		return document.Field{Value: embTitle, Source: document.SourceEmbedded}
	}
	if t := strings.TrimSpace(inf.Title); t != "" {
		return document.Field{Value: t, Source: document.SourceInferred}
	}
	return document.Field{Value: stem(in.Path), Source: document.SourceAbsent}
}

func (r *Resolver) resolveAuthor(work *crossref.Work, embAuthor string, inf extract.Inference) (document.Field, []document.Author) {
	if work != nil && len(work.Authors) > 0 {
		tok := SurnameToken(work.Authors[0].Family)
		if tok != "" {
			return document.Field{Value: tok, Source: document.SourceLookup}, work.Authors
		}
	}
	if authors := ParseAuthors(embAuthor); len(authors) > 0 {
		if tok := SurnameToken(authors[0].Family); tok != "" {
			return document.Field{Value: tok, Source: document.SourceEmbedded}, authors
		}
	}
	if authors := ParseAuthors(inf.Author); len(authors) > 0 {
		if tok := SurnameToken(authors[0].Family); tok != "" {
			return document.Field{Value: tok, Source: document.SourceInferred}, authors
		}
	}
	return document.Field{Value: UnknownAuthor, Source: document.SourceAbsent}, nil
}

func (r *Resolver) resolveYear(work *crossref.Work, props document.Properties, inf extract.Inference) document.Field {
	if work != nil && work.Year != "" {
		return document.Field{Value: r.yearToken(work.Year), Source: document.SourceLookup}
	}
	for _, s := range []string{props.CreationDate, props.ModDate} {
		if m := yearTokenRe.FindString(s); m != "" {
			return document.Field{Value: r.yearToken(m), Source: document.SourceEmbedded}
		}
	}
	if inf.Year != "" {
		return document.Field{Value: r.yearToken(inf.Year), Source: document.SourceInferred}
	}
	return document.Field{Value: UnknownYear, Source: document.SourceAbsent}
}

// yearToken normalizes a year to the configured token width.
func (r *Resolver) yearToken(y string) string {
	y = strings.TrimSpace(y)
	if r.yearDigits == 2 && len(y) == 4 {
		return y[2:]
	}
	return y
}

func stem(path string) string {
	base := path
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base
}
