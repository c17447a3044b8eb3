package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Kingy2709/pdf-tools/internal/audit"
	"github.com/Kingy2709/pdf-tools/internal/mutate"
	"github.com/Kingy2709/pdf-tools/internal/plan"
)

var revertApply bool

func init() {
	revertCmd.Flags().BoolVar(&revertApply, "apply", false, "Execute the undo plan (default is dry-run)")
	rootCmd.AddCommand(revertCmd)
}

var revertCmd = &cobra.Command{
	Use:   "revert <plan.csv>",
	Short: "Undo the renames recorded in a plan CSV",
	Long: `Build and optionally execute the reverse of a recorded plan.

Each applied rename is undone by moving the destination back to its
original path, and recorded metadata writes are rolled back to the
original_* values from the plan. A different file now occupying the
original path is shuffled aside as <path>.bak first. Deletions are not
reversible and are left alone.

Examples:
  pdftools revert plan.csv            # preview the undo plan
  pdftools revert plan.csv --apply    # move files back`,
	Args: cobra.ExactArgs(1),
	RunE: runRevertCmd,
}

func runRevertCmd(cmd *cobra.Command, args []string) error {
	rows, err := audit.ReadFile(args[0])
	if err != nil {
		exitWithError(ExitDataError, "reading plan: %v", err)
	}

	ops := audit.Reverse(rows)
	if revertApply {
		m := &mutate.Mutator{Store: newStore()}
		for i := range ops {
			if ops[i].Dst != "" {
				if err := shuffleAside(ops[i].Src, ops[i].Dst); err != nil {
					ops[i].Status = plan.Failed
					ops[i].Reason = err.Error()
					continue
				}
			}
			m.Apply(&ops[i])
		}
	}
	return reportOps(ops, !revertApply)
}

// shuffleAside moves a file occupying the revert destination out of
// the way as <dst>.bak so the original name can be restored. A dst
// that is the same file as src (case-insensitive filesystems) stays
// put for os.Rename to handle.
func shuffleAside(src, dst string) error {
	di, err := os.Stat(dst)
	if err != nil {
		return nil
	}
	if si, err := os.Stat(src); err == nil && os.SameFile(si, di) {
		return nil
	}
	bak := dst + ".bak"
	for n := 2; ; n++ {
		if _, err := os.Stat(bak); os.IsNotExist(err) {
			break
		}
		bak = fmt.Sprintf("%s.bak-%d", dst, n)
	}
	return os.Rename(dst, bak)
}
