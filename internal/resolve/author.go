package resolve

import (
	"regexp"
	"strings"

	"github.com/Kingy2709/pdf-tools/internal/document"
)

var (
	etAlRe      = regexp.MustCompile(`(?i)et\s+al\.?`)
	authorSepRe = regexp.MustCompile(`(?i)[;]|\sand\s|&`)
	nonAlnumRe  = regexp.MustCompile(`[^a-z0-9-]`)
)

// Common name suffixes to keep with the last name.
var nameSuffixes = map[string]bool{
	"jr":   true,
	"jr.":  true,
	"sr":   true,
	"sr.":  true,
	"ii":   true,
	"iii":  true,
	"iv":   true,
	"phd":  true,
	"ph.d": true,
	"md":   true,
	"m.d":  true,
}

// ParseAuthors splits a raw embedded or inferred author string into an
// ordered author list. Accepts "Last, First", "First Last", and multi-author
// strings separated by semicolons or "and". Returns nil when nothing
// parseable remains.
func ParseAuthors(raw string) []document.Author {
	raw = etAlRe.ReplaceAllString(strings.TrimSpace(raw), "")
	if raw == "" {
		return nil
	}

	// "Last, First" with no other separators is a single author, not a list.
	if strings.Count(raw, ",") == 1 && !authorSepRe.MatchString(raw) {
		if a, ok := parseOne(raw); ok {
			return []document.Author{a}
		}
		return nil
	}

	parts := authorSepRe.Split(raw, -1)
	var out []document.Author
	seen := make(map[string]bool)
	for _, p := range parts {
		for _, q := range splitCommaList(p) {
			a, ok := parseOne(q)
			if !ok {
				continue
			}
			key := strings.ToLower(a.Family + "|" + a.Given)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, a)
		}
	}
	return out
}

// splitCommaList splits "Smith J, Jones K" style lists, but keeps a single
// "Last, First" pair intact.
func splitCommaList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	if len(parts) == 2 && isNamePair(parts[0], parts[1]) {
		return []string{s}
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// isNamePair reports whether a "left, right" comma split looks like one
// "Last, First" name rather than two list entries. A multi-word family
// ("van der Waals, J") counts when the given side is initials.
func isNamePair(left, right string) bool {
	left = strings.TrimSpace(left)
	right = strings.TrimSpace(right)
	if left == "" || right == "" {
		return false
	}
	if len(strings.Fields(left)) == 1 && len(strings.Fields(right)) <= 2 {
		return true
	}
	for _, f := range strings.Fields(right) {
		if len(strings.TrimRight(f, ".")) > 2 {
			return false
		}
	}
	return true
}

// parseOne parses a single author name into family and given parts.
func parseOne(s string) (document.Author, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return document.Author{}, false
	}

	if i := strings.Index(s, ","); i >= 0 {
		family := strings.TrimSpace(s[:i])
		given := strings.TrimSpace(s[i+1:])
		if family == "" {
			return document.Author{}, false
		}
		if f := strings.Fields(given); len(f) > 0 {
			given = f[0]
		}
		return document.Author{Family: family, Given: strings.TrimRight(given, ".")}, true
	}

	parts := strings.Fields(s)
	switch len(parts) {
	case 0:
		return document.Author{}, false
	case 1:
		return document.Author{Family: parts[0]}, true
	}

	// Keep a trailing suffix (Jr, III, PhD) with the family name.
	last := parts[len(parts)-1]
	if nameSuffixes[strings.ToLower(last)] && len(parts) > 2 {
		return document.Author{
			Family: parts[len(parts)-2] + " " + last,
			Given:  strings.Join(parts[:len(parts)-2], " "),
		}, true
	}
	return document.Author{
		Family: last,
		Given:  strings.Join(parts[:len(parts)-1], " "),
	}, true
}

// SurnameToken normalizes a family name for use in filenames and resolved
// author values: lowercase, alphanumeric and hyphens only.
func SurnameToken(family string) string {
	s := strings.ToLower(strings.TrimSpace(family))
	s = strings.ReplaceAll(s, " ", "-")
	s = nonAlnumRe.ReplaceAllString(s, "")
	s = strings.Trim(s, "-")
	return s
}
