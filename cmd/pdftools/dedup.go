package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Kingy2709/pdf-tools/internal/dedup"
	"github.com/Kingy2709/pdf-tools/internal/runner"
)

var (
	dedupDelete bool
	dedupPolicy string
)

func init() {
	dedupCmd.Flags().BoolVar(&dedupDelete, "delete-duplicates", false, "Delete non-keepers (default only reports them)")
	dedupCmd.Flags().StringVar(&dedupPolicy, "keep-policy", "", "Keeper policy: clean-suffix, largest, newest, newest-largest")
	rootCmd.AddCommand(dedupCmd)
}

var dedupCmd = &cobra.Command{
	Use:   "dedup <library-root>",
	Short: "Find duplicate PDFs by content digest",
	Long: `Hash every PDF under the root and group bit-identical files.

One keeper is chosen per group under the configured policy; the rest
are reported, or deleted with --delete-duplicates.

Examples:
  pdftools dedup ~/papers                         # report duplicate groups
  pdftools dedup ~/papers --delete-duplicates     # keep one file per group`,
	Args: cobra.ExactArgs(1),
	RunE: runDedupCmd,
}

// DupGroupResponse is one duplicate group in command output.
type DupGroupResponse struct {
	Digest     string   `json:"digest"`
	Keeper     string   `json:"keeper"`
	Duplicates []string `json:"duplicates"`
}

// DedupResponse is the dedup command's output.
type DedupResponse struct {
	Scanned int                `json:"scanned"`
	Groups  []DupGroupResponse `json:"groups"`
	Deleted int                `json:"deleted"`
}

func runDedupCmd(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	if dedupPolicy != "" {
		cfg.KeepPolicy = dedupPolicy
		if err := cfg.Validate(); err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
	}

	dig, cleanup := newDigester()
	defer cleanup()

	byDigest := make(map[string][]dedup.File)
	scanned := 0
	err := filepath.WalkDir(args[0], func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || !runner.IsPDFName(d.Name()) {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		h, err := dig(path)
		if err != nil {
			return nil
		}
		scanned++
		byDigest[h] = append(byDigest[h], dedup.File{
			Path:    path,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		exitWithError(ExitError, "scanning %s: %v", args[0], err)
	}

	resp := DedupResponse{Scanned: scanned}
	for _, g := range dedup.Groups(byDigest, cfg.Policy()) {
		gr := DupGroupResponse{Digest: g.Digest, Keeper: g.Keeper.Path}
		for _, f := range g.Duplicates {
			gr.Duplicates = append(gr.Duplicates, f.Path)
			if dedupDelete {
				if err := os.Remove(f.Path); err == nil {
					resp.Deleted++
				}
			}
		}
		resp.Groups = append(resp.Groups, gr)
	}

	if humanOutput {
		rows := make([][]string, 0, len(resp.Groups))
		for _, g := range resp.Groups {
			rows = append(rows, []string{
				g.Digest[:min(12, len(g.Digest))],
				g.Keeper,
				fmt.Sprintf("%d", len(g.Duplicates)),
			})
		}
		outputHuman("%s\n", renderTable(
			[]string{"digest", "keeper", "duplicates"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight},
		))
		outputHuman("scanned %d, %d duplicate groups, deleted %d\n",
			resp.Scanned, len(resp.Groups), resp.Deleted)
		return nil
	}
	return outputJSON(resp)
}
