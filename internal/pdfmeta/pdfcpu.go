package pdfmeta

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/Kingy2709/pdf-tools/internal/document"
)

// PDFCPUStore reads and writes the PDF Info dictionary via pdfcpu.
type PDFCPUStore struct{}

// NewPDFCPUStore returns a Store backed by pdfcpu.
func NewPDFCPUStore() *PDFCPUStore {
	return &PDFCPUStore{}
}

// Read extracts title, author, keywords, and date strings from the Info
// dictionary. A document without an Info dictionary yields empty properties.
func (s *PDFCPUStore) Read(path string) (document.Properties, error) {
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return document.Properties{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return infoProperties(ctx)
}

func infoProperties(ctx *model.Context) (document.Properties, error) {
	var props document.Properties
	if ctx.Info == nil {
		return props, nil
	}

	d, err := ctx.DereferenceDict(*ctx.Info)
	if err != nil || d == nil {
		return props, nil
	}

	props.Title = infoString(d, "Title")
	props.Author = infoString(d, "Author")
	props.Keywords = infoString(d, "Keywords")
	props.CreationDate = infoString(d, "CreationDate")
	props.ModDate = infoString(d, "ModDate")
	return props, nil
}

func infoString(d types.Dict, key string) string {
	if p := d.StringEntry(key); p != nil {
		return strings.TrimSpace(*p)
	}
	return ""
}

// Write updates the Info dictionary and persists the document. The rewrite
// lands in a temporary file in the same directory and replaces the original
// atomically, so an observer sees either the old or the new file. Strategy
// order: strict-validation rewrite, then relaxed-validation rewrite, then
// ErrWriteFailed with the original untouched.
func (s *PDFCPUStore) Write(path string, props document.Properties) (string, error) {
	if method, err := s.writeWith(path, props, model.ValidationStrict); err == nil {
		return method, nil
	}
	if method, err := s.writeWith(path, props, model.ValidationRelaxed); err == nil {
		return method, nil
	} else {
		return "", fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
}

func (s *PDFCPUStore) writeWith(path string, props document.Properties, mode int) (string, error) {
	method := "rewrite"
	if mode == model.ValidationRelaxed {
		method = "relaxed"
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = mode
	ctx, err := api.ReadContext(f, conf)
	f.Close()
	if err != nil {
		return "", fmt.Errorf("reading context: %w", err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return "", fmt.Errorf("validating: %w", err)
	}

	if err := setInfo(ctx, props); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".pdfmeta-*.pdf")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if err := api.WriteContextFile(ctx, tmpPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing context: %w", err)
	}

	// Carry the original permissions onto the replacement.
	if info, err := os.Stat(path); err == nil {
		_ = os.Chmod(tmpPath, info.Mode())
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("replacing %s: %w", path, err)
	}
	return method, nil
}

// setInfo updates the non-empty fields of props in the Info dictionary,
// creating the dictionary when the document has none.
func setInfo(ctx *model.Context, props document.Properties) error {
	var d types.Dict
	if ctx.Info != nil {
		var err error
		d, err = ctx.DereferenceDict(*ctx.Info)
		if err != nil {
			return fmt.Errorf("dereferencing info dict: %w", err)
		}
	}
	if d == nil {
		d = types.NewDict()
		objNr, err := ctx.InsertObject(d)
		if err != nil {
			return fmt.Errorf("inserting info dict: %w", err)
		}
		ctx.Info = types.NewIndirectRef(objNr, 0)
	}

	setInfoString(d, "Title", props.Title)
	setInfoString(d, "Author", props.Author)
	setInfoString(d, "Keywords", props.Keywords)
	return nil
}

func setInfoString(d types.Dict, key, value string) {
	if value == "" {
		return
	}
	d[key] = types.StringLiteral(escapePDFString(value))
}

// escapePDFString escapes the characters that terminate a PDF string literal.
func escapePDFString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
