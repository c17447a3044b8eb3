package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Kingy2709/pdf-tools/internal/audit"
)

var verifySamples int

func init() {
	verifyCmd.Flags().IntVar(&verifySamples, "samples", 5, "How many mismatch examples to include")
	rootCmd.AddCommand(verifyCmd)
}

var verifyCmd = &cobra.Command{
	Use:   "verify <plan.csv>",
	Short: "Check a recorded plan against the disk and embedded metadata",
	Long: `Verify that a plan CSV matches reality.

Each row is classified as done, pending, in conflict, or needing
reconciliation by checking which of its paths exist. For completed
rows, the embedded title and author are read back and compared against
the proposal.

Example:
  pdftools verify pdftools-plan-20240301-120000.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runVerifyCmd,
}

// VerifyResponse is the verify command's output.
type VerifyResponse struct {
	Rows           int      `json:"rows"`
	Done           int      `json:"done"`
	Pending        int      `json:"pending"`
	Reconcile      int      `json:"needs_reconciliation"`
	Conflicts      int      `json:"conflicts"`
	MetaMismatches int      `json:"metadata_mismatches"`
	Samples        []string `json:"samples,omitempty"`
}

func runVerifyCmd(cmd *cobra.Command, args []string) error {
	rows, err := audit.ReadFile(args[0])
	if err != nil {
		exitWithError(ExitDataError, "reading plan: %v", err)
	}

	store := newStore()
	exists := func(p string) bool {
		_, err := os.Stat(p)
		return err == nil
	}
	sameFile := func(a, b string) bool {
		ai, aerr := os.Stat(a)
		bi, berr := os.Stat(b)
		return aerr == nil && berr == nil && os.SameFile(ai, bi)
	}

	resp := VerifyResponse{Rows: len(rows)}
	addSample := func(s string) {
		if len(resp.Samples) < verifySamples {
			resp.Samples = append(resp.Samples, s)
		}
	}

	for _, r := range rows {
		switch audit.Classify(r, exists, sameFile) {
		case audit.Done:
			resp.Done++
		case audit.Reconcile:
			resp.Reconcile++
			addSample("missing destination: " + r.ProposedPath)
			continue
		case audit.Conflict:
			resp.Conflicts++
			addSample("both paths occupied: " + r.OriginalPath + " / " + r.ProposedPath)
			continue
		default:
			resp.Pending++
			continue
		}

		if r.MetaTitle == "" && r.MetaAuthor == "" {
			continue
		}
		props, err := store.Read(r.ProposedPath)
		if err != nil {
			resp.MetaMismatches++
			addSample("unreadable: " + r.ProposedPath)
			continue
		}
		if (r.MetaTitle != "" && props.Title != r.MetaTitle) ||
			(r.MetaAuthor != "" && props.Author != r.MetaAuthor) {
			resp.MetaMismatches++
			addSample("metadata differs: " + r.ProposedPath)
		}
	}

	if humanOutput {
		outputHuman("rows %d  done %d  pending %d  needs-reconciliation %d  conflicts %d  metadata-mismatches %d\n",
			resp.Rows, resp.Done, resp.Pending, resp.Reconcile, resp.Conflicts, resp.MetaMismatches)
		for _, s := range resp.Samples {
			outputHuman("  %s\n", s)
		}
		return nil
	}
	return outputJSON(resp)
}
