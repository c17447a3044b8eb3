package main

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/Kingy2709/pdf-tools/internal/config"
	"github.com/Kingy2709/pdf-tools/internal/crossref"
	"github.com/Kingy2709/pdf-tools/internal/digest"
	"github.com/Kingy2709/pdf-tools/internal/pdfmeta"
	"github.com/Kingy2709/pdf-tools/internal/resolve"
	"github.com/Kingy2709/pdf-tools/internal/runner"
)

// mustLoadConfig loads the config file or exits with ExitConfigError.
func mustLoadConfig() *config.Config {
	path := configPath
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.Load(path)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

func newStore() pdfmeta.Store {
	return pdfmeta.NewPDFCPUStore()
}

// newLookup builds the registry client. A .env file may carry
// CROSSREF_MAILTO; a config value takes precedence.
func newLookup(cfg *config.Config) resolve.Lookuper {
	godotenv.Load()
	var opts []crossref.ClientOption
	if cfg.Mailto != "" {
		opts = append(opts, crossref.WithMailto(cfg.Mailto))
	}
	return crossref.NewClient(opts...)
}

// newDigester opens the persistent digest cache, falling back to
// uncached hashing when the cache cannot be opened.
func newDigester() (func(string) (string, error), func()) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return digest.File, func() {}
	}
	cache, err := digest.OpenCache(filepath.Join(dir, "pdf-tools", "digests.db"))
	if err != nil {
		return digest.File, func() {}
	}
	return cache.File, func() { cache.Close() }
}

// newRunner wires the full pipeline. lookup controls whether registry
// queries run at all.
func newRunner(cfg *config.Config, lookup bool) (*runner.Runner, func()) {
	var lk resolve.Lookuper
	if lookup {
		lk = newLookup(cfg)
	}
	dig, cleanup := newDigester()
	r := &runner.Runner{
		Store:    newStore(),
		Resolver: resolve.New(lk, cfg.YearDigits),
		Digest:   dig,
		Cfg:      cfg,
	}
	if humanOutput {
		r.Progress = os.Stderr
	}
	return r, cleanup
}

func opResponses(resp *RunResponse, res *runner.Result) {
	resp.Summary = SummaryResponse{
		Planned:   res.Summary.Planned,
		Applied:   res.Summary.Applied,
		Skipped:   res.Summary.Skipped,
		Failed:    res.Summary.Failed,
		BackupDir: res.BackupDir,
		Flattened: res.Flattened,
		FixedName: res.FixedName,
		DupGroups: res.DupGroups,
	}
	for _, op := range res.Ops {
		resp.Ops = append(resp.Ops, OpResponse{
			Action:   string(op.Kind),
			Original: op.Src,
			Proposed: op.Dst,
			Status:   string(op.Status),
			Notes:    op.NoteString(),
		})
	}
}

func printOpsTable(ops []OpResponse) {
	rows := make([][]string, 0, len(ops))
	for _, op := range ops {
		rows = append(rows, []string{op.Action, op.Original, op.Proposed, op.Status, op.Notes})
	}
	outputHuman("%s\n", renderTable(
		[]string{"action", "original", "proposed", "status", "notes"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
	))
}
