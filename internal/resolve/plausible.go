package resolve

import (
	"regexp"
	"unicode"
)

// articleCodeRe matches bare alphanumeric journal article IDs such as
// "CJSM-22-275" that publishers drop into the Title field.
var articleCodeRe = regexp.MustCompile(`^[A-Za-z]{1,10}[-_]?\d[\dA-Za-z_-]*$`)

// PlausibleTitle reports whether an embedded title looks like an actual
// title. Short strings, mostly non-alphabetic strings, and bare article
// codes are treated as embedded-absent even though the field is populated.
func PlausibleTitle(title string) bool {
	if len(title) < 8 {
		return false
	}
	if articleCodeRe.MatchString(title) {
		return false
	}
	letters, total := 0, 0
	for _, r := range title {
		if unicode.IsLetter(r) {
			letters++
		}
		total++
	}
	return letters*2 >= total
}
