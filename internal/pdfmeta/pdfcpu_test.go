package pdfmeta

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Kingy2709/pdf-tools/internal/pdftest"
)

func TestReadEmbeddedProperties(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meta.pdf")
	pdftest.Write(t, path, pdftest.Doc{
		Lines:        []string{"Some body text"},
		Title:        "A Study of Things",
		Author:       "Smith, John",
		Keywords:     "shoulder,tendinopathy",
		CreationDate: "D:20200114120000Z",
	})

	store := NewPDFCPUStore()
	props, err := store.Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if props.Title != "A Study of Things" {
		t.Errorf("Title = %q", props.Title)
	}
	if props.Author != "Smith, John" {
		t.Errorf("Author = %q", props.Author)
	}
	if props.Keywords != "shoulder,tendinopathy" {
		t.Errorf("Keywords = %q", props.Keywords)
	}
	if props.CreationDate == "" {
		t.Error("CreationDate empty")
	}
}

func TestReadNoInfoDict(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bare.pdf")
	pdftest.Write(t, path, pdftest.Doc{Lines: []string{"no metadata here"}})

	store := NewPDFCPUStore()
	props, err := store.Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !props.IsZero() {
		t.Errorf("expected empty properties, got %+v", props)
	}
}

func TestReadMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "junk.pdf")
	if err := os.WriteFile(path, []byte("not a pdf at all"), 0644); err != nil {
		t.Fatal(err)
	}

	store := NewPDFCPUStore()
	_, err := store.Read(path)
	if !IsMalformed(err) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.pdf")
	pdftest.Write(t, path, pdftest.Doc{
		Lines:  []string{"body"},
		Title:  "old title here",
		Author: "Old Author",
	})

	store := NewPDFCPUStore()
	method, err := store.Write(path, documentProps("new-title-words", "King, Michael", "lsp,osteoarthritis"))
	if err != nil {
		t.Fatalf("Write: %v (method %s)", err, method)
	}
	if method == "" {
		t.Error("empty write method")
	}

	props, err := store.Read(path)
	if err != nil {
		t.Fatalf("Read after write: %v", err)
	}
	if props.Title != "new-title-words" {
		t.Errorf("Title = %q", props.Title)
	}
	if props.Author != "King, Michael" {
		t.Errorf("Author = %q", props.Author)
	}
	if props.Keywords != "lsp,osteoarthritis" {
		t.Errorf("Keywords = %q", props.Keywords)
	}
}

func TestWriteCreatesInfoDict(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bare.pdf")
	pdftest.Write(t, path, pdftest.Doc{Lines: []string{"body"}})

	store := NewPDFCPUStore()
	if _, err := store.Write(path, documentProps("fresh-title", "Lee, A", "")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	props, err := store.Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if props.Title != "fresh-title" || props.Author != "Lee, A" {
		t.Errorf("round trip got %+v", props)
	}
}

func TestWriteFailureLeavesOriginal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "junk.pdf")
	original := []byte("not a pdf at all")
	if err := os.WriteFile(path, original, 0644); err != nil {
		t.Fatal(err)
	}

	store := NewPDFCPUStore()
	if _, err := store.Write(path, documentProps("t", "a", "")); err == nil {
		t.Fatal("expected write failure on junk input")
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(original) {
		t.Error("original file modified by failed write")
	}

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("leftover files in dir: %d entries", len(entries))
	}
}
