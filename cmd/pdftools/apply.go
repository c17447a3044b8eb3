package main

import (
	"github.com/spf13/cobra"

	"github.com/Kingy2709/pdf-tools/internal/audit"
	"github.com/Kingy2709/pdf-tools/internal/document"
	"github.com/Kingy2709/pdf-tools/internal/mutate"
	"github.com/Kingy2709/pdf-tools/internal/plan"
)

var (
	applyLimit int
	applyAudit string
)

func init() {
	applyCmd.Flags().IntVar(&applyLimit, "limit", 0, "Cap how many mutations execute (0 = unlimited)")
	applyCmd.Flags().StringVar(&applyAudit, "audit", "", "Write updated outcomes to this CSV")
	rootCmd.AddCommand(applyCmd)
}

var applyCmd = &cobra.Command{
	Use:   "apply <plan.csv>",
	Short: "Execute a previously recorded plan",
	Long: `Re-apply the operations recorded in a plan CSV.

Rows already marked applied are skipped; existence is re-checked
immediately before each mutation, so a partially applied plan is safe
to re-run.

Example:
  pdftools apply pdftools-plan-20240301-120000.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runApplyCmd,
}

func runApplyCmd(cmd *cobra.Command, args []string) error {
	rows, err := audit.ReadFile(args[0])
	if err != nil {
		exitWithError(ExitDataError, "reading plan: %v", err)
	}

	ops := opsFromRows(rows)
	m := &mutate.Mutator{Store: newStore()}
	done := 0
	for i := range ops {
		op := &ops[i]
		mutating := op.Kind != plan.Skip && op.Kind != plan.Error
		if mutating && applyLimit > 0 && done >= applyLimit {
			op.Reason = plan.ReasonLimit
			continue
		}
		m.Apply(op)
		if mutating {
			done++
		}
	}

	if applyAudit != "" {
		out := make([]audit.Row, len(ops))
		for i, op := range ops {
			out[i] = audit.FromOp(op)
		}
		if err := audit.WriteFile(applyAudit, out); err != nil {
			exitWithError(ExitError, "writing audit log: %v", err)
		}
	}

	return reportOps(ops, false)
}

// opsFromRows rebuilds executable operations from recorded rows. Rows
// that already reached a terminal applied state become skips.
func opsFromRows(rows []audit.Row) []plan.Op {
	ops := make([]plan.Op, 0, len(rows))
	for _, r := range rows {
		op := plan.Op{
			Kind:   plan.Kind(r.Action),
			Src:    r.OriginalPath,
			Dst:    r.ProposedPath,
			Reason: r.Notes,
			Status: plan.Planned,
		}
		if r.MetaTitle != "" || r.MetaAuthor != "" || r.ProposedKeywords != "" {
			op.Meta = &document.Properties{
				Title:    r.MetaTitle,
				Author:   r.MetaAuthor,
				Keywords: r.ProposedKeywords,
			}
		}
		if r.Status == string(plan.Applied) || op.Kind == "" {
			op.Kind = plan.Skip
			if op.Reason == "" {
				op.Reason = plan.ReasonNoop
			}
		}
		ops = append(ops, op)
	}
	return ops
}

// reportOps prints operations and their summary in the selected format.
func reportOps(ops []plan.Op, dryRun bool) error {
	resp := &RunResponse{DryRun: dryRun}
	s := plan.Summarize(ops)
	resp.Summary = SummaryResponse{
		Planned: s.Planned, Applied: s.Applied, Skipped: s.Skipped, Failed: s.Failed,
	}
	for _, op := range ops {
		resp.Ops = append(resp.Ops, OpResponse{
			Action:   string(op.Kind),
			Original: op.Src,
			Proposed: op.Dst,
			Status:   string(op.Status),
			Notes:    op.NoteString(),
		})
	}
	if humanOutput {
		printOpsTable(resp.Ops)
		outputHuman("planned %d  applied %d  skipped %d  failed %d\n",
			s.Planned, s.Applied, s.Skipped, s.Failed)
		return nil
	}
	return outputJSON(resp)
}
