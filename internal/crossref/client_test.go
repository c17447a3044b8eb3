package crossref

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const workBody = `{
	"message": {
		"title": ["Canonical Title"],
		"container-title": ["Journal of Things"],
		"author": [
			{"family": "Lee", "given": "A"},
			{"family": "Park", "given": "B"}
		],
		"published-print": {"date-parts": [[2020, 3]]},
		"published-online": {"date-parts": [[2019, 11]]},
		"issued": {"date-parts": [[2019]]}
	}
}`

func TestLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/works/10.1000/test.1" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(workBody))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	w, err := c.Lookup(context.Background(), "10.1000/test.1")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if w.Title != "Canonical Title" {
		t.Errorf("Title = %q", w.Title)
	}
	if w.Journal != "Journal of Things" {
		t.Errorf("Journal = %q", w.Journal)
	}
	if len(w.Authors) != 2 || w.Authors[0].Family != "Lee" || w.Authors[0].Given != "A" {
		t.Errorf("Authors = %+v", w.Authors)
	}
	// Print year wins over online and issued.
	if w.Year != "2020" {
		t.Errorf("Year = %q", w.Year)
	}
}

func TestLookupYearFallsBackToIssued(t *testing.T) {
	body := `{"message": {"title": ["T"], "issued": {"date-parts": [[2015, 6, 1]]}}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	w, err := c.Lookup(context.Background(), "10.1000/x")
	if err != nil {
		t.Fatal(err)
	}
	if w.Year != "2015" {
		t.Errorf("Year = %q", w.Year)
	}
}

func TestLookupNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	if _, err := c.Lookup(context.Background(), "10.9999/missing"); !IsNotFound(err) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLookupServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.Lookup(context.Background(), "10.1000/x")
	if err == nil || IsNotFound(err) {
		t.Errorf("expected unavailable error, got %v", err)
	}
}

func TestLookupEmptyDOI(t *testing.T) {
	c := NewClient()
	if _, err := c.Lookup(context.Background(), ""); !IsNotFound(err) {
		t.Errorf("expected ErrNotFound for empty DOI, got %v", err)
	}
}

func TestLookupMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	if _, err := c.Lookup(context.Background(), "10.1000/x"); err == nil {
		t.Error("expected error for malformed body")
	}
}
