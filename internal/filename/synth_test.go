package filename

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/Kingy2709/pdf-tools/internal/document"
)

func resolved(author, year, title string, more ...document.Author) document.Resolved {
	r := document.Resolved{
		Title:  document.Field{Value: title, Source: document.SourceEmbedded},
		Author: document.Field{Value: author, Source: document.SourceEmbedded},
		Year:   document.Field{Value: year, Source: document.SourceEmbedded},
	}
	if author != "" {
		r.Authors = append([]document.Author{{Family: author}}, more...)
	}
	return r
}

func TestKebab(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Deep Learning for Phylogenetics", "deep-learning-for-phylogenetics"},
		{"  B-cell receptors: a review!  ", "b-cell-receptors-a-review"},
		{"Émigré (2nd ed.)", "migr-2nd-ed"},
		{"---", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Kebab(tt.in); got != tt.want {
			t.Errorf("Kebab(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNameDefaultStyle(t *testing.T) {
	var s Synthesizer
	got := s.Name(resolved("smith", "2020", "Adaptive Immune Repertoires"))
	want := "smith-2020-adaptive-immune-repertoires.pdf"
	if got != want {
		t.Errorf("Name() = %q, want %q", got, want)
	}
}

func TestNameYearAuthorStyle(t *testing.T) {
	s := Synthesizer{Style: YearAuthorTitle}
	got := s.Name(resolved("smith", "2020", "Adaptive Immune Repertoires"))
	want := "2020-smith-adaptive-immune-repertoires.pdf"
	if got != want {
		t.Errorf("Name() = %q, want %q", got, want)
	}
}

func TestNameEtAl(t *testing.T) {
	var s Synthesizer
	got := s.Name(resolved("smith", "2020", "A Study", document.Author{Family: "Jones"}))
	if !strings.HasPrefix(got, "smith-et-al-2020-") {
		t.Errorf("Name() = %q, want et-al author piece", got)
	}
}

func TestNameJointFirst(t *testing.T) {
	var s Synthesizer
	r := resolved("smith", "2020", "A Study", document.Author{Family: "Jones"})
	r.JointFirst = true
	got := s.Name(r)
	if !strings.HasPrefix(got, "smith-jones-2020-") {
		t.Errorf("Name() = %q, want joint-first author piece", got)
	}
}

func TestNamePlaceholders(t *testing.T) {
	var s Synthesizer
	got := s.Name(document.Resolved{
		Title:  document.Field{Value: "Untitled Draft", Source: document.SourceAbsent},
		Author: document.Field{Value: "unknown-author", Source: document.SourceAbsent},
		Year:   document.Field{Source: document.SourceAbsent},
	})
	want := "unknown-author-unknown-year-untitled-draft.pdf"
	if got != want {
		t.Errorf("Name() = %q, want %q", got, want)
	}
}

func TestNameStopwords(t *testing.T) {
	s := Synthesizer{DropStopwd: true}
	got := s.Name(resolved("smith", "2020", "The Evolution of an Antibody"))
	want := "smith-2020-evolution-antibody.pdf"
	if got != want {
		t.Errorf("Name() = %q, want %q", got, want)
	}
}

func TestNameTruncation(t *testing.T) {
	s := Synthesizer{MaxLen: 40}
	long := strings.Repeat("immunoglobulin somatic hypermutation ", 9)
	got := s.Name(resolved("king", "08", long))

	if len(got) > 40 {
		t.Fatalf("len(%q) = %d, want <= 40", got, len(got))
	}
	tail := regexp.MustCompile(`-[0-9a-f]{8}\.pdf$`)
	if !tail.MatchString(got) {
		t.Errorf("Name() = %q, want 8-hex hash suffix before extension", got)
	}
	if !strings.HasPrefix(got, "king-08-") {
		t.Errorf("Name() = %q, want king-08- prefix", got)
	}
}

func TestNameBudgetHoldsWithLongPrefix(t *testing.T) {
	// The placeholder prefix alone can exceed a tight budget; the bound
	// must hold on the assembled name, not just the title piece.
	long := strings.Repeat("comparative morphology of deep sea fauna ", 6)
	unknowns := document.Resolved{
		Title:  document.Field{Value: long, Source: document.SourceInferred},
		Author: document.Field{Value: "unknown-author", Source: document.SourceAbsent},
		Year:   document.Field{Value: "unknown-year", Source: document.SourceAbsent},
	}
	tail := regexp.MustCompile(`[0-9a-f]{8}\.pdf$`)

	for _, maxLen := range []int{MinLen, 20, 28, 30, 40} {
		s := Synthesizer{MaxLen: maxLen}
		got := s.Name(unknowns)
		if len(got) > maxLen {
			t.Errorf("MaxLen %d: len(%q) = %d, want <= %d", maxLen, got, len(got), maxLen)
		}
		if !tail.MatchString(got) {
			t.Errorf("MaxLen %d: Name() = %q, want 8-hex hash before extension", maxLen, got)
		}
	}
}

func TestNameBudgetFloor(t *testing.T) {
	s := Synthesizer{MaxLen: 5}
	got := s.Name(resolved("smith", "2020", "A Title Too Long For Five"))
	if len(got) > MinLen {
		t.Errorf("len(%q) = %d, want <= %d", got, len(got), MinLen)
	}
	if !strings.HasSuffix(got, ".pdf") {
		t.Errorf("Name() = %q, want .pdf extension", got)
	}
}

func TestNameTruncationDistinct(t *testing.T) {
	s := Synthesizer{MaxLen: 40}
	shared := strings.Repeat("common truncation prefix ", 10)
	a := s.Name(resolved("king", "08", shared+"alpha"))
	b := s.Name(resolved("king", "08", shared+"beta"))
	if a == b {
		t.Errorf("distinct titles truncated to identical name %q", a)
	}
}

func TestNameDeterministic(t *testing.T) {
	s := Synthesizer{MaxLen: 60}
	r := resolved("smith", "2020", strings.Repeat("determinism check ", 8))
	if a, b := s.Name(r), s.Name(r); a != b {
		t.Errorf("Name() not deterministic: %q vs %q", a, b)
	}
}

func TestPlaceFree(t *testing.T) {
	dir := t.TempDir()
	path, noop, err := Place(dir, "smith-2020-study.pdf", "", nil)
	if err != nil {
		t.Fatalf("Place() error: %v", err)
	}
	if noop {
		t.Error("Place() noop = true for free path")
	}
	if want := filepath.Join(dir, "smith-2020-study.pdf"); path != want {
		t.Errorf("Place() = %q, want %q", path, want)
	}
}

func TestPlaceProbesSuffixes(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"smith-2020-study.pdf", "smith-2020-study-2.pdf"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	digestOf := func(string) (string, error) { return "other", nil }
	path, noop, err := Place(dir, "smith-2020-study.pdf", "mine", digestOf)
	if err != nil {
		t.Fatalf("Place() error: %v", err)
	}
	if noop {
		t.Error("Place() noop = true for differing digests")
	}
	if want := filepath.Join(dir, "smith-2020-study-3.pdf"); path != want {
		t.Errorf("Place() = %q, want %q", path, want)
	}
}

func TestPlaceIdenticalIsNoop(t *testing.T) {
	dir := t.TempDir()
	taken := filepath.Join(dir, "smith-2020-study.pdf")
	if err := os.WriteFile(taken, []byte("same"), 0o644); err != nil {
		t.Fatal(err)
	}
	digestOf := func(string) (string, error) { return "same-digest", nil }
	path, noop, err := Place(dir, "smith-2020-study.pdf", "same-digest", digestOf)
	if err != nil {
		t.Fatalf("Place() error: %v", err)
	}
	if !noop {
		t.Error("Place() noop = false for identical content")
	}
	if path != taken {
		t.Errorf("Place() = %q, want %q", path, taken)
	}
}
