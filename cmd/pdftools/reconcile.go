package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Kingy2709/pdf-tools/internal/audit"
	"github.com/Kingy2709/pdf-tools/internal/mutate"
	"github.com/Kingy2709/pdf-tools/internal/plan"
)

var reconcileApply bool

func init() {
	reconcileCmd.Flags().BoolVar(&reconcileApply, "apply", false, "Execute the reconciliation renames (default is dry-run)")
	rootCmd.AddCommand(reconcileCmd)
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile <plan.csv>",
	Short: "Finish the renames a recorded plan never completed",
	Long: `Bring the disk in line with a recorded plan.

Rows whose original path still exists while the proposed path does not
are planned as renames original -> proposed. Rows already done are
reported as noops.

Examples:
  pdftools reconcile plan.csv            # preview
  pdftools reconcile plan.csv --apply    # perform the renames`,
	Args: cobra.ExactArgs(1),
	RunE: runReconcileCmd,
}

func runReconcileCmd(cmd *cobra.Command, args []string) error {
	rows, err := audit.ReadFile(args[0])
	if err != nil {
		exitWithError(ExitDataError, "reading plan: %v", err)
	}

	exists := func(p string) bool {
		_, err := os.Stat(p)
		return err == nil
	}

	var ops []plan.Op
	for _, r := range rows {
		if r.ProposedPath == "" || r.OriginalPath == r.ProposedPath {
			continue
		}
		switch audit.Classify(r, exists, nil) {
		case audit.Reconcile:
			ops = append(ops, plan.Op{
				Kind:   plan.Rename,
				Src:    r.OriginalPath,
				Dst:    r.ProposedPath,
				Status: plan.Planned,
			})
		case audit.Done:
			ops = append(ops, plan.Op{
				Kind:   plan.Skip,
				Src:    r.OriginalPath,
				Dst:    r.ProposedPath,
				Reason: plan.ReasonNoop,
				Status: plan.Planned,
			})
		case audit.Conflict:
			ops = append(ops, plan.Op{
				Kind:   plan.Skip,
				Src:    r.OriginalPath,
				Dst:    r.ProposedPath,
				Reason: plan.ReasonDstExists,
				Status: plan.Planned,
			})
		}
	}

	if reconcileApply {
		m := &mutate.Mutator{Store: newStore()}
		for i := range ops {
			m.Apply(&ops[i])
		}
	}
	return reportOps(ops, !reconcileApply)
}
