package runner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Kingy2709/pdf-tools/internal/audit"
	"github.com/Kingy2709/pdf-tools/internal/digest"
	"github.com/Kingy2709/pdf-tools/internal/document"
	"github.com/Kingy2709/pdf-tools/internal/pdfmeta"
	"github.com/Kingy2709/pdf-tools/internal/plan"
	"github.com/Kingy2709/pdf-tools/internal/resolve"
)

// newRunner wires a runner over a fake metadata store. Text extraction
// fails harmlessly on the plain-byte fixtures, so resolution runs on
// the store's embedded properties alone.
func newRunner(store *pdfmeta.FakeStore) *Runner {
	return &Runner{
		Store:    store,
		Resolver: resolve.New(nil, 4),
		Digest:   digest.File,
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func seed(store *pdfmeta.FakeStore, path, title, author, created string) {
	store.Props[path] = document.Properties{Title: title, Author: author, CreationDate: created}
}

func TestRunDryRunTouchesNothing(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "draft.pdf")
	writeFile(t, src, "content-one")
	store := pdfmeta.NewFakeStore()
	seed(store, src, "Adaptive Immune Repertoires", "Smith, John", "D:20200102120000")

	res, err := newRunner(store).Run(context.Background(), Options{Root: dir})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(res.Ops) != 1 {
		t.Fatalf("got %d ops, want 1", len(res.Ops))
	}
	op := res.Ops[0]
	if op.Kind != plan.Rename || op.Status != plan.Planned {
		t.Errorf("op = %q/%q, want rename/planned", op.Kind, op.Status)
	}
	want := filepath.Join(dir, "smith-2020-adaptive-immune-repertoires.pdf")
	if op.Dst != want {
		t.Errorf("dst = %q, want %q", op.Dst, want)
	}
	if _, err := os.Stat(src); err != nil {
		t.Error("dry run moved the source file")
	}
	if len(store.Writes) != 0 {
		t.Errorf("dry run wrote metadata: %v", store.Writes)
	}
}

func TestRunApplyRenames(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "draft.pdf")
	writeFile(t, src, "content-one")
	store := pdfmeta.NewFakeStore()
	seed(store, src, "Adaptive Immune Repertoires", "Smith, John", "D:20200102120000")

	res, err := newRunner(store).Run(context.Background(), Options{Root: dir, Apply: true})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.Summary.Applied != 1 {
		t.Errorf("summary = %+v, want 1 applied", res.Summary)
	}
	dst := filepath.Join(dir, "smith-2020-adaptive-immune-repertoires.pdf")
	if _, err := os.Stat(dst); err != nil {
		t.Errorf("destination missing: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("source still present after apply")
	}
}

func TestRunSecondPassIsAllNoops(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "draft.pdf")
	writeFile(t, src, "content-one")
	store := pdfmeta.NewFakeStore()
	seed(store, src, "Adaptive Immune Repertoires", "Smith, John", "D:20200102120000")

	r := newRunner(store)
	if _, err := r.Run(context.Background(), Options{Root: dir, Apply: true}); err != nil {
		t.Fatalf("first Run() error: %v", err)
	}
	// Carry the store's view of the renamed file forward.
	dst := filepath.Join(dir, "smith-2020-adaptive-immune-repertoires.pdf")
	seed(store, dst, "Adaptive Immune Repertoires", "Smith, John", "D:20200102120000")

	res, err := r.Run(context.Background(), Options{Root: dir, Apply: true})
	if err != nil {
		t.Fatalf("second Run() error: %v", err)
	}
	for _, op := range res.Ops {
		if op.Kind != plan.Skip && op.Kind != plan.MetadataOnly {
			t.Errorf("second pass planned %q for %q", op.Kind, op.Src)
		}
	}
}

func TestRunDeletesDuplicates(t *testing.T) {
	dir := t.TempDir()
	keeper := filepath.Join(dir, "paper.pdf")
	dup := filepath.Join(dir, "zzz-copy.pdf")
	writeFile(t, keeper, "same-bytes")
	writeFile(t, dup, "same-bytes")
	// Pin identical mtimes so keeper selection falls to the path
	// tie-break, which favors paper.pdf.
	when := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, p := range []string{keeper, dup} {
		if err := os.Chtimes(p, when, when); err != nil {
			t.Fatal(err)
		}
	}
	store := pdfmeta.NewFakeStore()
	seed(store, keeper, "Adaptive Immune Repertoires", "Smith, John", "D:20200102120000")

	res, err := newRunner(store).Run(context.Background(), Options{Root: dir, Apply: true, Delete: true})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.DupGroups != 1 {
		t.Errorf("DupGroups = %d, want 1", res.DupGroups)
	}
	remaining := 0
	for _, p := range []string{keeper, dup} {
		if _, err := os.Stat(p); err == nil {
			remaining++
		}
	}
	dst := filepath.Join(dir, "smith-2020-adaptive-immune-repertoires.pdf")
	if _, err := os.Stat(dst); err != nil {
		t.Errorf("keeper not renamed: %v", err)
	}
	if remaining != 0 {
		t.Errorf("%d of the original paths remain, want 0", remaining)
	}
}

func TestRunReportsDuplicatesWithoutDelete(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.pdf"), "same-bytes")
	writeFile(t, filepath.Join(dir, "b.pdf"), "same-bytes")
	store := pdfmeta.NewFakeStore()

	res, err := newRunner(store).Run(context.Background(), Options{Root: dir})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	var dupSkips int
	for _, op := range res.Ops {
		if op.Kind == plan.Skip && op.Reason == plan.ReasonDuplicate {
			dupSkips++
		}
		if op.Kind == plan.DeleteDup {
			t.Error("planned a delete without opt-in")
		}
	}
	if dupSkips != 1 {
		t.Errorf("got %d duplicate skips, want 1", dupSkips)
	}
}

func TestRunFlattenAndBadSuffixes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "nested", "deep", "b.pdf"), "bee")
	writeFile(t, filepath.Join(dir, "junk.pdf_"), "junk")
	store := pdfmeta.NewFakeStore()

	res, err := newRunner(store).Run(context.Background(), Options{
		Root: dir, Apply: true, Flatten: true,
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.Flattened != 1 {
		t.Errorf("Flattened = %d, want 1", res.Flattened)
	}
	if res.FixedName != 1 {
		t.Errorf("FixedName = %d, want 1", res.FixedName)
	}
	// Both files end up at the root under their resolved names.
	for _, name := range []string{
		"unknown-author-unknown-year-b.pdf",
		"unknown-author-unknown-year-junk.pdf",
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s after run: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "nested")); !os.IsNotExist(err) {
		t.Error("emptied directory not removed")
	}
}

func TestRunLimitCapsMutations(t *testing.T) {
	dir := t.TempDir()
	store := pdfmeta.NewFakeStore()
	for i, name := range []string{"one.pdf", "two.pdf", "three.pdf"} {
		path := filepath.Join(dir, name)
		writeFile(t, path, name)
		seed(store, path, "Distinct Title Number "+name, "Author"+string(rune('A'+i))+", X", "D:20200102120000")
	}

	res, err := newRunner(store).Run(context.Background(), Options{Root: dir, Apply: true, Limit: 1})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.Summary.Applied != 1 {
		t.Errorf("applied = %d, want 1", res.Summary.Applied)
	}
	var limited int
	for _, op := range res.Ops {
		if op.Status == plan.Planned && op.Reason == plan.ReasonLimit {
			limited++
		}
	}
	if limited != 2 {
		t.Errorf("limited = %d, want 2", limited)
	}
}

func TestRunWritesAuditCSV(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "draft.pdf")
	writeFile(t, src, "content-one")
	store := pdfmeta.NewFakeStore()
	seed(store, src, "Adaptive Immune Repertoires", "Smith, John", "D:20200102120000")

	auditPath := filepath.Join(t.TempDir(), "plan.csv")
	if _, err := newRunner(store).Run(context.Background(), Options{Root: dir, AuditPath: auditPath}); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	rows, err := audit.ReadFile(auditPath)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].OriginalPath != src || rows[0].Action != "rename" {
		t.Errorf("row = %+v", rows[0])
	}
	if rows[0].Hash == "" || rows[0].TitleSource != "embedded" {
		t.Errorf("extended columns = %+v", rows[0])
	}
}

func TestRunBackupCopiesTree(t *testing.T) {
	root := filepath.Join(t.TempDir(), "library")
	writeFile(t, filepath.Join(root, "a.pdf"), "alpha")
	store := pdfmeta.NewFakeStore()

	res, err := newRunner(store).Run(context.Background(), Options{Root: root, Apply: true, Backup: true})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.BackupDir == "" {
		t.Fatal("no backup directory recorded")
	}
	copied, err := os.ReadFile(filepath.Join(res.BackupDir, "a.pdf"))
	if err != nil || string(copied) != "alpha" {
		t.Errorf("backup copy = %q, %v", copied, err)
	}
	if !strings.Contains(res.BackupDir, "library-backups") {
		t.Errorf("backup dir = %q, want under library-backups", res.BackupDir)
	}
}

func TestInferNotes(t *testing.T) {
	tests := []struct {
		name string
		res  document.Resolved
		want string
	}{
		{
			name: "no inference ran",
			res: document.Resolved{
				Title: document.Field{Value: "T", Source: document.SourceEmbedded},
			},
			want: "",
		},
		{
			name: "inference agrees",
			res: document.Resolved{
				Title:         document.Field{Value: "Adaptive Repertoires", Source: document.SourceLookup},
				InferredTitle: "adaptive repertoires",
				Author:        document.Field{Value: "smith", Source: document.SourceLookup},
			},
			want: "",
		},
		{
			name: "title disagrees",
			res: document.Resolved{
				Title:         document.Field{Value: "Final Title", Source: document.SourceLookup},
				InferredTitle: "Draft heading",
			},
			want: "title-infer-diff",
		},
		{
			name: "both disagree",
			res: document.Resolved{
				Title:          document.Field{Value: "Final Title", Source: document.SourceEmbedded},
				InferredTitle:  "Draft heading",
				Author:         document.Field{Value: "smith", Source: document.SourceLookup},
				InferredAuthor: "K. Jones",
			},
			want: "title-infer-diff;author-infer-diff",
		},
		{
			name: "inferred source wins",
			res: document.Resolved{
				Title:         document.Field{Value: "Draft heading", Source: document.SourceInferred},
				InferredTitle: "Draft heading",
			},
			want: "",
		},
	}
	for _, tt := range tests {
		if got := inferNotes(tt.res); got != tt.want {
			t.Errorf("%s: inferNotes() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestIsPDFName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"paper.pdf", true},
		{"SHOUTY.PDF", true},
		{"paper_final.pdf_", true},
		{"notes.pdf~", true},
		{"scan.pdfx", true},
		{"readme.txt", false},
		{"pdf", false},
		{"archive.pdf.zip", false},
	}
	for _, tt := range tests {
		if got := IsPDFName(tt.name); got != tt.want {
			t.Errorf("IsPDFName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRunCountsDuplicateGroupsNotFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "paper.pdf"), "same bytes")
	writeFile(t, filepath.Join(root, "zz-copy-1.pdf"), "same bytes")
	writeFile(t, filepath.Join(root, "zz-copy-2.pdf"), "same bytes")

	res, err := newRunner(pdfmeta.NewFakeStore()).Run(context.Background(), Options{Root: root})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.DupGroups != 1 {
		t.Errorf("DupGroups = %d, want 1 for a single three-copy group", res.DupGroups)
	}
}

func TestExecuteSkippedOpsDoNotConsumeLimit(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a.pdf")
	b := filepath.Join(root, "b.pdf")
	writeFile(t, a, "alpha")
	writeFile(t, b, "beta")

	ops := []plan.Op{
		{Kind: plan.Rename, Src: a, Dst: b, Status: plan.Planned},
		{Kind: plan.Rename, Src: b, Dst: filepath.Join(root, "c.pdf"), Status: plan.Planned},
	}
	newRunner(pdfmeta.NewFakeStore()).execute(ops, 1)

	if ops[0].Status != plan.Skipped || ops[0].Reason != plan.ReasonDstExists {
		t.Fatalf("ops[0] = %s/%s, want skipped/dst-exists", ops[0].Status, ops[0].Reason)
	}
	if ops[1].Status != plan.Applied {
		t.Errorf("ops[1] = %s (%s), want applied after the occupied-target skip", ops[1].Status, ops[1].Reason)
	}
}
