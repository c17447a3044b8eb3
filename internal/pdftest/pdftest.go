// Package pdftest builds small but structurally valid PDF files for tests.
package pdftest

import (
	"os"
	"strconv"
	"strings"
	"testing"
)

// Doc describes the fixture to build. Zero-value fields are omitted from the
// output, so a Doc{} yields a PDF without an Info dictionary.
type Doc struct {
	// Lines become the text content of the single page, one Tj per line.
	Lines []string

	Title        string
	Author       string
	Keywords     string
	CreationDate string // PDF date string, e.g. "D:20200114120000Z"
}

// Build returns the raw bytes of a valid single-page PDF with correct xref
// offsets.
func Build(doc Doc) []byte {
	var stream strings.Builder
	stream.WriteString("BT\n/F1 12 Tf\n72 720 Td\n")
	for i, line := range doc.Lines {
		if i > 0 {
			stream.WriteString("0 -16 Td\n")
		}
		stream.WriteString("(" + escape(line) + ") Tj\n")
	}
	stream.WriteString("ET")
	content := stream.String()

	hasInfo := doc.Title != "" || doc.Author != "" || doc.Keywords != "" || doc.CreationDate != ""
	objCount := 6
	if hasInfo {
		objCount = 7
	}

	var b strings.Builder
	b.WriteString("%PDF-1.4\n")

	offsets := make([]int, objCount)

	offsets[1] = b.Len()
	b.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	offsets[2] = b.Len()
	b.WriteString("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")

	offsets[3] = b.Len()
	b.WriteString("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>\nendobj\n")

	offsets[4] = b.Len()
	b.WriteString("4 0 obj\n<< /Length " + strconv.Itoa(len(content)) + " >>\nstream\n")
	b.WriteString(content)
	b.WriteString("\nendstream\nendobj\n")

	offsets[5] = b.Len()
	b.WriteString("5 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n")

	if hasInfo {
		offsets[6] = b.Len()
		b.WriteString("6 0 obj\n<<")
		writeInfoEntry(&b, "Title", doc.Title)
		writeInfoEntry(&b, "Author", doc.Author)
		writeInfoEntry(&b, "Keywords", doc.Keywords)
		writeInfoEntry(&b, "CreationDate", doc.CreationDate)
		b.WriteString(" >>\nendobj\n")
	}

	xrefOffset := b.Len()
	b.WriteString("xref\n0 " + strconv.Itoa(objCount) + "\n")
	b.WriteString("0000000000 65535 f \n")
	for i := 1; i < objCount; i++ {
		b.WriteString(padOffset(offsets[i]) + " 00000 n \n")
	}
	b.WriteString("trailer\n<< /Size " + strconv.Itoa(objCount) + " /Root 1 0 R")
	if hasInfo {
		b.WriteString(" /Info 6 0 R")
	}
	b.WriteString(" >>\nstartxref\n" + strconv.Itoa(xrefOffset) + "\n%%EOF\n")

	return []byte(b.String())
}

// Write builds the fixture and writes it to path.
func Write(t *testing.T, path string, doc Doc) {
	t.Helper()
	if err := os.WriteFile(path, Build(doc), 0644); err != nil {
		t.Fatal(err)
	}
}

func writeInfoEntry(b *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	b.WriteString(" /" + key + " (" + escape(value) + ")")
}

func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "(", `\(`)
	s = strings.ReplaceAll(s, ")", `\)`)
	return s
}

func padOffset(n int) string {
	s := strconv.Itoa(n)
	for len(s) < 10 {
		s = "0" + s
	}
	return s
}
