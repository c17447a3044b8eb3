// Package filename turns resolved bibliographic fields into
// filesystem-safe, length-bounded names.
package filename

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/Kingy2709/pdf-tools/internal/document"
	"github.com/Kingy2709/pdf-tools/internal/resolve"
)

// Style selects the token order of a synthesized name.
type Style string

const (
	AuthorYearTitle Style = "author-year-title"
	YearAuthorTitle Style = "year-author-title"
)

// DefaultMaxLen bounds the full basename including the extension.
const DefaultMaxLen = 200

// MinLen is the smallest honorable budget: the hash tag plus the
// extension. Budgets below it are raised to it.
const MinLen = hashLen + len(ext) + 1

const (
	ext      = ".pdf"
	hashLen  = 8
	etAl     = "et-al"
	fallback = "doc"
)

// stopwords dropped from title slugs when the convention asks for a
// clean slug. Kept deliberately small so titles stay recognizable.
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true,
	"of": true, "on": true, "in": true,
	"and": true, "or": true, "for": true,
	"to": true, "with": true,
}

var (
	nonSlugRe = regexp.MustCompile(`[^a-z0-9]+`)
	hyphensRe = regexp.MustCompile(`-{2,}`)
)

// Synthesizer builds names from resolved metadata. The zero value uses
// the author-year-title style with the default length budget.
type Synthesizer struct {
	Style      Style
	MaxLen     int
	DropStopwd bool
}

// Name returns the synthesized basename for r, always ending in the
// document extension and never longer than the configured budget
// (raised to MinLen when set lower). The result is deterministic for
// identical inputs.
func (s *Synthesizer) Name(r document.Resolved) string {
	maxLen := s.MaxLen
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	if maxLen < MinLen {
		maxLen = MinLen
	}

	author := s.authorPiece(r)
	year := r.Year.Value
	if year == "" {
		year = resolve.UnknownYear
	}
	title := s.titlePiece(r.Title.Value)

	var fixed []string
	switch s.Style {
	case YearAuthorTitle:
		fixed = []string{year, author}
	default:
		fixed = []string{author, year}
	}

	full := strings.Join(append(fixed, title), "-") + ext
	if len(full) <= maxLen {
		return full
	}

	// Truncate the title at a word boundary and tag it with a short
	// hash of the pre-truncation name so distinct documents that
	// truncate to the same prefix still get distinct names.
	hash := shortHash(full)
	prefix := strings.Join(fixed, "-") + "-"
	budget := maxLen - len(prefix) - len(ext) - hashLen - 1
	if budget >= 1 {
		return prefix + truncateAtHyphen(title, budget) + "-" + hash + ext
	}

	// The fixed pieces alone overflow the budget. The whole stem is
	// cut instead and only the hash keeps names apart.
	stem := truncateAtHyphen(strings.TrimSuffix(full, ext), maxLen-len(ext)-hashLen-1)
	if stem == "" {
		return hash + ext
	}
	return stem + "-" + hash + ext
}

func (s *Synthesizer) authorPiece(r document.Resolved) string {
	first := r.Author.Value
	if first == "" {
		return resolve.UnknownAuthor
	}
	if len(r.Authors) > 1 && r.Author.Source != document.SourceAbsent {
		if r.JointFirst {
			if second := resolve.SurnameToken(r.Authors[1].Family); second != "" {
				return first + "-" + second
			}
		}
		return first + "-" + etAl
	}
	return first
}

func (s *Synthesizer) titlePiece(title string) string {
	k := Kebab(title)
	if s.DropStopwd {
		words := strings.Split(k, "-")
		kept := words[:0]
		for _, w := range words {
			if !stopwords[w] {
				kept = append(kept, w)
			}
		}
		if len(kept) > 0 {
			k = strings.Join(kept, "-")
		}
	}
	if k == "" {
		return fallback
	}
	return k
}

// Kebab lowercases s and reduces it to hyphen-separated alphanumeric
// runs. Punctuation and whitespace both collapse into single hyphens.
func Kebab(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonSlugRe.ReplaceAllString(s, "-")
	s = hyphensRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// truncateAtHyphen cuts s to at most n characters, backing up to the
// previous hyphen when the cut lands mid-word.
func truncateAtHyphen(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	cut := s[:n]
	if i := strings.LastIndexByte(cut, '-'); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, "-")
}

func shortHash(s string) string {
	sum := blake2b.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:hashLen]
}

// Place resolves name against dir's current contents. When the
// candidate path is taken by a bit-identical file (same content digest
// as srcDigest) the rename degrades to a no-op and noop is true.
// Otherwise a numeric suffix (-2, -3, ...) probes for a free path.
// Callers must serialize Place against concurrent writers to the same
// directory.
func Place(dir, name, srcDigest string, digestOf func(string) (string, error)) (path string, noop bool, err error) {
	candidate := filepath.Join(dir, name)
	stem := strings.TrimSuffix(name, ext)
	for i := 2; ; i++ {
		_, statErr := os.Stat(candidate)
		if os.IsNotExist(statErr) {
			return candidate, false, nil
		}
		if statErr != nil {
			return "", false, statErr
		}
		if srcDigest != "" && digestOf != nil {
			d, derr := digestOf(candidate)
			if derr == nil && d == srcDigest {
				return candidate, true, nil
			}
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s-%d%s", stem, i, ext))
	}
}
