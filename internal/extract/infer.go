package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Inference is the best-effort metadata guess for a document.
type Inference struct {
	Title      string
	Author     string
	Year       string // 4-digit token, "" when not found
	JointFirst bool
}

const (
	// minTitleSpanLen filters page furniture out of title candidates.
	minTitleSpanLen = 10

	// authorBandPoints bounds how far below the title author lines may sit.
	authorBandPoints = 220.0
)

var (
	yearRe       = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	initialRe    = regexp.MustCompile(`\b[A-Z]\.`)
	jointFirstRe = regexp.MustCompile(`(?i)(contributed equally|co[-\s]?first author)`)
)

// Infer guesses title, author, and year for the PDF at path. It prefers
// structural signal (font-size ranked text spans on the first page) and
// falls back to line heuristics over the extracted text. It never fails;
// when nothing matches the result carries empty strings.
func Infer(path string) Inference {
	text, err := Pages(path, DefaultMaxPages)
	if err != nil {
		return Inference{}
	}

	inf := inferFromSpans(path)
	fallback := InferFromText(text)
	if inf.Title == "" {
		inf.Title = fallback.Title
	}
	if inf.Author == "" {
		inf.Author = fallback.Author
	}
	inf.Year = fallback.Year
	inf.JointFirst = jointFirstRe.MatchString(text)
	return inf
}

// InferFromText applies the line-based fallback: first non-empty line is the
// title, second is the author, and the year is the first 19xx/20xx token in
// the first six lines.
func InferFromText(text string) Inference {
	var inf Inference
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) > 0 {
		inf.Title = lines[0]
	}
	if len(lines) > 1 {
		inf.Author = lines[1]
	}
	limit := 6
	if len(lines) < limit {
		limit = len(lines)
	}
	for _, line := range lines[:limit] {
		if m := yearRe.FindString(line); m != "" {
			inf.Year = m
			break
		}
	}
	inf.JointFirst = jointFirstRe.MatchString(text)
	return inf
}

// span is a run of first-page text sharing one font size and baseline.
type span struct {
	size float64
	y    float64 // PDF user space, larger is higher on the page
	text string
}

// inferFromSpans ranks first-page text spans by font size: the title is the
// largest-font span longer than minTitleSpanLen, top-most on ties; author
// candidates are spans below the title within authorBandPoints that look
// like an author line.
func inferFromSpans(path string) Inference {
	f, r, err := pdf.Open(path)
	if err != nil {
		return Inference{}
	}
	defer f.Close()

	if r.NumPage() < 1 {
		return Inference{}
	}
	page := r.Page(1)
	if page.V.IsNull() {
		return Inference{}
	}

	spans := collectSpans(page.Content())
	if len(spans) == 0 {
		return Inference{}
	}

	title, titleY := pickTitle(spans)
	if title == "" {
		return Inference{}
	}

	inf := Inference{Title: title}
	for _, s := range spans {
		if s.y >= titleY {
			continue
		}
		if titleY-s.y > authorBandPoints {
			continue
		}
		if LooksLikeAuthorLine(s.text) {
			inf.Author = s.text
			break
		}
	}
	return inf
}

// collectSpans groups content texts into spans by font size and baseline.
func collectSpans(content pdf.Content) []span {
	var spans []span
	for _, t := range content.Text {
		if t.S == "" {
			continue
		}
		n := len(spans)
		if n > 0 && spans[n-1].size == t.FontSize && spans[n-1].y == t.Y {
			spans[n-1].text += t.S
			continue
		}
		spans = append(spans, span{size: t.FontSize, y: t.Y, text: t.S})
	}
	for i := range spans {
		spans[i].text = strings.Join(strings.Fields(spans[i].text), " ")
	}
	return spans
}

// pickTitle returns the title span text and its baseline.
func pickTitle(spans []span) (string, float64) {
	candidates := make([]span, 0, len(spans))
	for _, s := range spans {
		if len(s.text) > minTitleSpanLen {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 0 {
		return "", 0
	}
	// Largest font first; on equal size, top-most wins.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].size != candidates[j].size {
			return candidates[i].size > candidates[j].size
		}
		return candidates[i].y > candidates[j].y
	})
	return candidates[0].text, candidates[0].y
}

// LooksLikeAuthorLine reports whether a line matches the author-line shape:
// a comma, a capitalized initial followed by a period, or the word "and".
func LooksLikeAuthorLine(line string) bool {
	if len(line) > 200 {
		return false
	}
	if strings.Contains(line, ",") {
		return true
	}
	if initialRe.MatchString(line) {
		return true
	}
	return strings.Contains(strings.ToLower(line), " and ")
}
