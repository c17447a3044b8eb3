// Package audit reads and writes the run's CSV trail. Every operation
// outcome becomes one row keyed by (original_path, proposed_path), and
// later runs consume the same file for revert and reconciliation.
package audit

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/Kingy2709/pdf-tools/internal/document"
	"github.com/Kingy2709/pdf-tools/internal/plan"
)

// Row is one audit record. The first four fields are the minimum
// contract; the rest are the extended columns.
type Row struct {
	OriginalPath string
	ProposedPath string
	Status       string
	Notes        string

	MetaAuthor       string
	MetaTitle        string
	OriginalAuthor   string
	OriginalTitle    string
	OriginalKeywords string
	ProposedKeywords string
	Action           string
	Hash             string
	DOI              string
	TitleSource      string
	AuthorsSource    string
	YearSource       string
}

var header = []string{
	"original_path", "proposed_path", "status", "notes",
	"meta_author", "meta_title",
	"original_author", "original_title", "original_keywords", "proposed_keywords",
	"action", "hash", "doi",
	"title_source", "authors_source", "year_source",
}

// synonyms maps accepted column spellings onto canonical field names.
var synonyms = map[string]string{
	"original_path": "original_path",
	"original":      "original_path",
	"src_path":      "original_path",
	"proposed_path": "proposed_path",
	"new_path":      "proposed_path",
	"proposed":      "proposed_path",
	"target_path":   "proposed_path",
}

// FromOp flattens a planned operation into its audit row. The notes
// column joins the skip or failure reason with any inference diff
// notes the planner attached.
func FromOp(op plan.Op) Row {
	row := Row{
		OriginalPath:     op.Src,
		ProposedPath:     op.Dst,
		Status:           string(op.Status),
		Notes:            op.NoteString(),
		OriginalAuthor:   op.Original.Author,
		OriginalTitle:    op.Original.Title,
		OriginalKeywords: op.Original.Keywords,
		Action:           string(op.Kind),
		Hash:             op.Digest,
		DOI:              op.Resolved.DOI,
		TitleSource:      string(op.Resolved.Title.Source),
		AuthorsSource:    string(op.Resolved.Author.Source),
		YearSource:       string(op.Resolved.Year.Source),
	}
	if op.Meta != nil {
		row.MetaAuthor = op.Meta.Author
		row.MetaTitle = op.Meta.Title
		row.ProposedKeywords = op.Meta.Keywords
	}
	return row
}

// Write emits rows with the full extended header.
func Write(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.OriginalPath, r.ProposedPath, r.Status, r.Notes,
			r.MetaAuthor, r.MetaTitle,
			r.OriginalAuthor, r.OriginalTitle, r.OriginalKeywords, r.ProposedKeywords,
			r.Action, r.Hash, r.DOI,
			r.TitleSource, r.AuthorsSource, r.YearSource,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes rows to path, replacing any existing file.
func WriteFile(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Read parses an audit or plan CSV. Column order is free and the path
// columns accept their synonym spellings; unknown columns are ignored.
func Read(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	head, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	cols := make(map[string]int, len(head))
	for i, name := range head {
		if canon, ok := synonyms[name]; ok {
			name = canon
		}
		cols[name] = i
	}
	if _, ok := cols["original_path"]; !ok {
		return nil, fmt.Errorf("no original_path column (or synonym) in header %v", head)
	}
	if _, ok := cols["proposed_path"]; !ok {
		return nil, fmt.Errorf("no proposed_path column (or synonym) in header %v", head)
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		get := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return rec[i]
		}
		rows = append(rows, Row{
			OriginalPath:     get("original_path"),
			ProposedPath:     get("proposed_path"),
			Status:           get("status"),
			Notes:            get("notes"),
			MetaAuthor:       get("meta_author"),
			MetaTitle:        get("meta_title"),
			OriginalAuthor:   get("original_author"),
			OriginalTitle:    get("original_title"),
			OriginalKeywords: get("original_keywords"),
			ProposedKeywords: get("proposed_keywords"),
			Action:           get("action"),
			Hash:             get("hash"),
			DOI:              get("doi"),
			TitleSource:      get("title_source"),
			AuthorsSource:    get("authors_source"),
			YearSource:       get("year_source"),
		})
	}
	return rows, nil
}

// ReadFile parses the audit CSV at path.
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Reverse builds the undo plan from applied rows. Each applied rename
// moves the destination back to its recorded source, and rows that
// recorded a metadata write get the original_* properties restored on
// the way back. Deletions are not reversible and are ignored.
func Reverse(rows []Row) []plan.Op {
	var ops []plan.Op
	for _, r := range rows {
		if r.OriginalPath == "" {
			continue
		}
		if r.Status != "" && r.Status != string(plan.Applied) {
			continue
		}

		var meta *document.Properties
		if r.MetaTitle != "" || r.MetaAuthor != "" || r.ProposedKeywords != "" {
			meta = &document.Properties{
				Title:    r.OriginalTitle,
				Author:   r.OriginalAuthor,
				Keywords: r.OriginalKeywords,
			}
		}
		renamed := r.ProposedPath != "" && r.ProposedPath != r.OriginalPath

		switch plan.Kind(r.Action) {
		case plan.Rename, plan.RenameMeta, "":
			if !renamed {
				continue
			}
		case plan.MetadataOnly:
			renamed = false
			if meta == nil {
				continue
			}
		default:
			continue
		}

		op := plan.Op{
			Kind:   plan.MetadataOnly,
			Src:    r.OriginalPath,
			Meta:   meta,
			Status: plan.Planned,
		}
		if renamed {
			op.Src = r.ProposedPath
			op.Dst = r.OriginalPath
			op.Kind = plan.Rename
			if meta != nil {
				op.Kind = plan.RenameMeta
			}
		}
		ops = append(ops, op)
	}
	return ops
}

// State is the reconciliation verdict for one audit row.
type State string

const (
	Done      State = "done"
	Reconcile State = "needs-reconciliation"
	Conflict  State = "conflict"
	Pending   State = "pending"
)

// Classify decides a row's state from current on-disk existence. A row
// is done when the proposed path exists and the original is gone (or
// both names refer to the same file); it needs reconciliation when the
// original still exists and the proposal does not; it is a conflict
// when both paths hold distinct files.
func Classify(r Row, exists func(string) bool, sameFile func(a, b string) bool) State {
	if r.ProposedPath == "" {
		return Pending
	}
	srcThere := exists(r.OriginalPath)
	dstThere := exists(r.ProposedPath)
	switch {
	case dstThere && !srcThere:
		return Done
	case dstThere && srcThere && sameFile != nil && sameFile(r.OriginalPath, r.ProposedPath):
		return Done
	case dstThere && srcThere:
		return Conflict
	case srcThere:
		return Reconcile
	}
	return Pending
}
