package crossref

import (
	"strconv"

	"github.com/Kingy2709/pdf-tools/internal/document"
)

// Work is the canonical bibliographic record for one DOI.
type Work struct {
	Title   string            `json:"title"`
	Authors []document.Author `json:"authors"`
	Year    string            `json:"year"`
	Journal string            `json:"journal"`
}

// worksResponse mirrors the CrossRef /works/{doi} envelope.
type worksResponse struct {
	Message workMessage `json:"message"`
}

type workMessage struct {
	Title           []string     `json:"title"`
	Author          []workAuthor `json:"author"`
	ContainerTitle  []string     `json:"container-title"`
	Issued          dateParts    `json:"issued"`
	PublishedPrint  dateParts    `json:"published-print"`
	PublishedOnline dateParts    `json:"published-online"`
}

type workAuthor struct {
	Family string `json:"family"`
	Given  string `json:"given"`
}

type dateParts struct {
	DateParts [][]int `json:"date-parts"`
}

// year returns the leading date part as a string, or "".
func (d dateParts) year() string {
	if len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 {
		return ""
	}
	y := d.DateParts[0][0]
	if y <= 0 {
		return ""
	}
	return strconv.Itoa(y)
}
