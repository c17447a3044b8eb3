// Package extract pulls plain text, identifiers, and heuristic metadata out
// of PDF files. Everything here is best-effort: absence of signal yields
// empty values, never an error the caller must branch on.
package extract

import (
	"strings"

	"github.com/ledongthuc/pdf"
)

// DefaultMaxPages bounds how much text is kept per document. Titles, authors,
// and DOIs live on the first pages.
const DefaultMaxPages = 3

// Pages extracts plain text from the first maxPages pages of a PDF.
func Pages(filePath string, maxPages int) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if maxPages <= 0 || maxPages > r.NumPage() {
		maxPages = r.NumPage()
	}

	var builder strings.Builder
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}

	return builder.String(), nil
}
