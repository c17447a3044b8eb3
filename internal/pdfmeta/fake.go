package pdfmeta

import (
	"sync"

	"github.com/Kingy2709/pdf-tools/internal/document"
)

// FakeStore is an in-memory Store for tests against the resolver, mutator,
// and orchestrator. Paths not present in Props read as empty properties.
type FakeStore struct {
	mu    sync.Mutex
	Props map[string]document.Properties

	// FailWrite makes every Write return ErrWriteFailed.
	FailWrite bool

	// Writes records the paths written, in order.
	Writes []string
}

// NewFakeStore returns an empty FakeStore.
func NewFakeStore() *FakeStore {
	return &FakeStore{Props: make(map[string]document.Properties)}
}

// Read returns the stored properties for path, or empty properties.
func (f *FakeStore) Read(path string) (document.Properties, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Props[path], nil
}

// Write stores the non-empty fields of props for path.
func (f *FakeStore) Write(path string, props document.Properties) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWrite {
		return "", ErrWriteFailed
	}
	cur := f.Props[path]
	if props.Title != "" {
		cur.Title = props.Title
	}
	if props.Author != "" {
		cur.Author = props.Author
	}
	if props.Keywords != "" {
		cur.Keywords = props.Keywords
	}
	f.Props[path] = cur
	f.Writes = append(f.Writes, path)
	return "fake", nil
}
