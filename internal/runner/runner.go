// Package runner sequences a full pass over a PDF library: backup,
// layout normalization, deduplication, metadata resolution, planning,
// and (optionally) applying the plan with an audit trail.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Kingy2709/pdf-tools/internal/audit"
	"github.com/Kingy2709/pdf-tools/internal/config"
	"github.com/Kingy2709/pdf-tools/internal/dedup"
	"github.com/Kingy2709/pdf-tools/internal/document"
	"github.com/Kingy2709/pdf-tools/internal/extract"
	"github.com/Kingy2709/pdf-tools/internal/filename"
	"github.com/Kingy2709/pdf-tools/internal/mutate"
	"github.com/Kingy2709/pdf-tools/internal/pdfmeta"
	"github.com/Kingy2709/pdf-tools/internal/plan"
	"github.com/Kingy2709/pdf-tools/internal/resolve"
)

// badSuffixes are trailing-junk spellings of the canonical extension,
// normalized during layout cleanup.
var badSuffixes = []string{".pdf_", ".pdf~", ".pdfx"}

// Options selects what a run does. The zero value is a dry run over
// the root with no backup, no flattening, and no duplicate deletion.
type Options struct {
	Root    string
	Apply   bool
	Limit   int  // max mutations executed; 0 means unlimited
	Backup  bool // copy the tree aside before mutating
	Flatten bool // move nested files up into the root
	Delete  bool // delete duplicate non-keepers instead of reporting

	AuditPath string // write the audit CSV here when non-empty
}

// Result is everything a run produced.
type Result struct {
	Ops       []plan.Op
	Summary   plan.Summary
	BackupDir string
	Flattened int
	FixedName int
	DupGroups int
}

// Runner wires the pipeline's collaborators. Digest is typically a
// digest.Cache method so unchanged files skip re-hashing across runs.
type Runner struct {
	Store    pdfmeta.Store
	Resolver *resolve.Resolver
	Digest   func(path string) (string, error)
	Cfg      *config.Config

	// Progress receives one line per step; nil discards.
	Progress io.Writer
}

// Run executes the whole sequence against opts.Root. Per-document
// failures are recorded in the returned operations and never abort the
// batch; only setup failures (unreadable root, backup failure) return
// an error.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	cfg := r.Cfg
	if cfg == nil {
		cfg = config.Default()
	}
	res := &Result{}

	if opts.Backup && opts.Apply {
		dir, err := r.backup(opts.Root, cfg.BackupDir)
		if err != nil {
			return nil, fmt.Errorf("backup: %w", err)
		}
		res.BackupDir = dir
		r.progress("backed up library to %s", dir)
	}

	if opts.Flatten && opts.Apply {
		n, err := flatten(opts.Root)
		if err != nil {
			return nil, fmt.Errorf("flatten: %w", err)
		}
		res.Flattened = n
	}
	if opts.Apply {
		n, err := fixBadSuffixes(opts.Root)
		if err != nil {
			return nil, fmt.Errorf("normalizing suffixes: %w", err)
		}
		res.FixedName = n
	}

	records, err := r.discover(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", opts.Root, err)
	}
	r.progress("found %d documents", len(records))

	keepers, deletes, dupSkips, groups := r.dedup(records, cfg.Policy(), opts.Delete)
	res.DupGroups = groups

	reqs := r.resolveAll(ctx, keepers, cfg)
	builder := &plan.Builder{Exists: func(p string) bool {
		_, err := os.Stat(p)
		return err == nil
	}}
	ops := builder.Build(reqs, deletes)
	ops = append(ops, dupSkips...)

	if opts.Apply {
		r.execute(ops, opts.Limit)
	}
	res.Ops = ops
	res.Summary = plan.Summarize(ops)

	if opts.AuditPath != "" {
		rows := make([]audit.Row, len(ops))
		for i, op := range ops {
			rows[i] = audit.FromOp(op)
		}
		if err := audit.WriteFile(opts.AuditPath, rows); err != nil {
			return res, fmt.Errorf("writing audit log: %w", err)
		}
	}
	return res, nil
}

// discover walks root collecting PDF records, including files whose
// names carry a junk suffix.
func (r *Runner) discover(root string) ([]*document.Record, error) {
	var records []*document.Record
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if !IsPDFName(d.Name()) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		records = append(records, &document.Record{
			Path:    path,
			Size:    info.Size(),
			ModTime: info.ModTime().Unix(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })
	return records, nil
}

// dedup hashes all records, groups duplicates, and splits the corpus
// into keepers plus either deletions or reported skips. groups counts
// the distinct digests that had more than one copy.
func (r *Runner) dedup(records []*document.Record, policy dedup.Policy, del bool) (keepers []*document.Record, deletes []string, skips []plan.Op, groups int) {
	byDigest := make(map[string][]dedup.File)
	for _, rec := range records {
		d, err := r.Digest(rec.Path)
		if err != nil {
			r.progress("hashing %s: %v", rec.Path, err)
			d = "unreadable:" + rec.Path
		}
		rec.SetDigest(d)
		byDigest[d] = append(byDigest[d], dedup.File{Path: rec.Path, Size: rec.Size, ModTime: time.Unix(rec.ModTime, 0)})
	}

	losers := make(map[string]bool)
	for _, g := range dedup.Groups(byDigest, policy) {
		groups++
		for _, f := range g.Duplicates {
			losers[f.Path] = true
			if del {
				deletes = append(deletes, f.Path)
			} else {
				skips = append(skips, plan.Op{
					Kind:   plan.Skip,
					Src:    f.Path,
					Reason: plan.ReasonDuplicate,
					Status: plan.Planned,
					Digest: g.Digest,
				})
			}
		}
	}
	for _, rec := range records {
		if !losers[rec.Path] {
			keepers = append(keepers, rec)
		}
	}
	return keepers, deletes, skips, groups
}

// resolveAll reads embedded metadata, extracts text, resolves fields,
// and synthesizes each keeper's destination and metadata payload.
func (r *Runner) resolveAll(ctx context.Context, records []*document.Record, cfg *config.Config) []plan.Request {
	synth := &filename.Synthesizer{
		Style:      cfg.Style(),
		MaxLen:     cfg.MaxNameLen,
		DropStopwd: cfg.Stopwords,
	}
	reqs := make([]plan.Request, 0, len(records))
	for _, rec := range records {
		props, err := r.Store.Read(rec.Path)
		if err != nil {
			// Malformed documents resolve with empty metadata and the
			// name falls back to the original stem.
			props = document.Properties{}
		}
		rec.Embedded = props
		rec.Text, _ = extract.Pages(rec.Path, cfg.MaxPages)

		path := rec.Path
		resolved := r.Resolver.Resolve(ctx, resolve.Input{
			Path:     path,
			Embedded: props,
			Text:     rec.Text,
			Infer:    func() extract.Inference { return extract.Infer(path) },
		})

		name := synth.Name(resolved)
		dst, identical, err := filename.Place(filepath.Dir(rec.Path), name, rec.Digest(), r.Digest)
		if err != nil {
			dst = filepath.Join(filepath.Dir(rec.Path), name)
		}
		if identical && !samePath(dst, rec.Path) {
			// The target already holds these bytes under the canonical
			// name; the move degrades to a no-op.
			dst = rec.Path
		} else {
			identical = false
		}

		reqs = append(reqs, plan.Request{
			Src:       rec.Path,
			Dst:       dst,
			Identical: identical,
			Meta:      metaPayload(props, resolved, cfg.Tags),
			Notes:     inferNotes(resolved),
			Original:  props,
			Resolved:  resolved,
			Digest:    rec.Digest(),
		})
	}
	return reqs
}

// metaPayload builds the properties to write, or nil when the embedded
// metadata already matches the proposal.
func metaPayload(current document.Properties, res document.Resolved, tags []string) *document.Properties {
	proposed := document.Properties{
		Title:    res.Title.Value,
		Author:   displayAuthors(res),
		Keywords: mergeKeywords(current.Keywords, tags, res.DOI),
	}
	if proposed.Title == current.Title &&
		proposed.Author == current.Author &&
		proposed.Keywords == current.Keywords {
		return nil
	}
	return &proposed
}

// inferNotes flags fields where the text inference produced a candidate
// but a higher-precedence source won with a different value.
func inferNotes(res document.Resolved) string {
	var notes []string
	if res.InferredTitle != "" && res.Title.Source != document.SourceInferred &&
		!strings.EqualFold(res.InferredTitle, res.Title.Value) {
		notes = append(notes, "title-infer-diff")
	}
	if res.InferredAuthor != "" && res.Author.Source != document.SourceInferred {
		if as := resolve.ParseAuthors(res.InferredAuthor); len(as) > 0 {
			if tok := resolve.SurnameToken(as[0].Family); tok != "" && tok != res.Author.Value {
				notes = append(notes, "author-infer-diff")
			}
		}
	}
	return strings.Join(notes, ";")
}

func displayAuthors(res document.Resolved) string {
	if len(res.Authors) == 0 {
		return ""
	}
	names := make([]string, 0, len(res.Authors))
	for _, a := range res.Authors {
		if n := a.DisplayName(); n != "" {
			names = append(names, n)
		}
	}
	return strings.Join(names, "; ")
}

// mergeKeywords appends configured tags and a doi: marker to the
// existing keywords without duplicating entries.
func mergeKeywords(existing string, tags []string, doi string) string {
	parts := splitKeywords(existing)
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		seen[strings.ToLower(p)] = true
	}
	add := func(kw string) {
		if kw != "" && !seen[strings.ToLower(kw)] {
			parts = append(parts, kw)
			seen[strings.ToLower(kw)] = true
		}
	}
	for _, t := range tags {
		add(t)
	}
	if doi != "" {
		add("doi:" + doi)
	}
	return strings.Join(parts, ", ")
}

func splitKeywords(s string) []string {
	var out []string
	for _, p := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' }) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// execute applies ops in order. limit caps how many mutating
// operations run; the rest stay planned with a limit note so the audit
// log still carries the full plan.
func (r *Runner) execute(ops []plan.Op, limit int) {
	m := &mutate.Mutator{Store: r.Store}
	done := 0
	for i := range ops {
		op := &ops[i]
		mutating := op.Kind != plan.Skip && op.Kind != plan.Error
		if mutating && limit > 0 && done >= limit {
			op.Reason = plan.ReasonLimit
			continue
		}
		if err := m.Apply(op); err != nil {
			r.progress("%s %s: %v", op.Kind, op.Src, err)
		} else {
			r.progress("%s %s -> %s (%s)", op.Kind, op.Src, op.Dst, op.Status)
		}
		// Execute-time downgrades to skipped (noop, occupied target)
		// cost nothing, so they leave the limit budget alone.
		if mutating && op.Status != plan.Skipped {
			done++
		}
	}
}

// backup copies every file under root into a timestamped directory.
func (r *Runner) backup(root, backupDir string) (string, error) {
	if backupDir == "" {
		backupDir = filepath.Join(filepath.Dir(root), filepath.Base(root)+"-backups")
	}
	dir := filepath.Join(backupDir, time.Now().Format("20060102-150405"))
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		return copyFile(path, filepath.Join(dir, rel))
	})
	if err != nil {
		return "", err
	}
	return dir, nil
}

// flatten moves files out of nested directories into root, probing
// with numeric suffixes on name collisions. Emptied directories are
// removed.
func flatten(root string) (int, error) {
	var nested []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if filepath.Dir(path) != filepath.Clean(root) && IsPDFName(d.Name()) {
			nested = append(nested, path)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	sort.Strings(nested)

	moved := 0
	for _, src := range nested {
		dst := uniquePath(filepath.Join(root, filepath.Base(src)))
		if err := os.Rename(src, dst); err != nil {
			return moved, err
		}
		moved++
	}
	removeEmptyDirs(root)
	return moved, nil
}

// fixBadSuffixes renames trailing-junk extensions to the canonical
// one, probing on collisions.
func fixBadSuffixes(root string) (int, error) {
	fixed := 0
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		lower := strings.ToLower(d.Name())
		for _, bad := range badSuffixes {
			if strings.HasSuffix(lower, bad) {
				clean := path[:len(path)-len(bad)] + ".pdf"
				if err := os.Rename(path, uniquePath(clean)); err != nil {
					return err
				}
				fixed++
				break
			}
		}
		return nil
	})
	return fixed, err
}

// uniquePath probes name-2, name-3, ... until the path is free.
func uniquePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d%s", stem, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

func removeEmptyDirs(root string) {
	var dirs []string
	filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err == nil && d.IsDir() && path != filepath.Clean(root) {
			dirs = append(dirs, path)
		}
		return nil
	})
	// Deepest first.
	sort.Sort(sort.Reverse(sort.StringSlice(dirs)))
	for _, d := range dirs {
		os.Remove(d)
	}
}

func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// IsPDFName reports whether name looks like a PDF, including the junk
// suffix spellings that bad-suffix normalization repairs. Matching is
// case-insensitive so SHOUTY.PDF scans like shouty.pdf.
func IsPDFName(name string) bool {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".pdf") {
		return true
	}
	for _, bad := range badSuffixes {
		if strings.HasSuffix(lower, bad) {
			return true
		}
	}
	return false
}

func samePath(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}

func (r *Runner) progress(format string, args ...any) {
	if r.Progress != nil {
		fmt.Fprintf(r.Progress, format+"\n", args...)
	}
}
