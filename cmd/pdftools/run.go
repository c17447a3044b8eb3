package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Kingy2709/pdf-tools/internal/runner"
)

var (
	runApply    bool
	runLimit    int
	runBackup   bool
	runFlatten  bool
	runDelete   bool
	runNoLookup bool
	runAudit    string
	runPolicy   string
	runStyle    string
	runMaxLen   int
)

func init() {
	runCmd.Flags().BoolVar(&runApply, "apply", false, "Execute the plan (default is dry-run)")
	runCmd.Flags().IntVar(&runLimit, "limit", 0, "Cap how many mutations execute (0 = unlimited)")
	runCmd.Flags().BoolVar(&runBackup, "backup", false, "Copy the library aside before mutating")
	runCmd.Flags().BoolVar(&runFlatten, "flatten", false, "Move nested files up into the root first")
	runCmd.Flags().BoolVar(&runDelete, "delete-duplicates", false, "Delete duplicate non-keepers instead of reporting them")
	runCmd.Flags().BoolVar(&runNoLookup, "no-lookup", false, "Skip registry lookups")
	runCmd.Flags().StringVar(&runAudit, "audit", "", "Audit CSV path (default pdftools-plan-<timestamp>.csv)")
	runCmd.Flags().StringVar(&runPolicy, "keep-policy", "", "Duplicate keeper policy: clean-suffix, largest, newest, newest-largest")
	runCmd.Flags().StringVar(&runStyle, "style", "", "Name style: author-year-title or year-author-title")
	runCmd.Flags().IntVar(&runMaxLen, "max-len", 0, "Maximum filename length")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [library-root]",
	Short: "Resolve, rename, and deduplicate a PDF library",
	Long: `Run the full pipeline against a library root.

Without --apply this is a dry run: every document is hashed, resolved,
and planned, the full plan is written to the audit CSV, and nothing on
disk changes.

Examples:
  pdftools run ~/papers                         # preview the plan
  pdftools run ~/papers --apply --backup        # execute with a backup
  pdftools run ~/papers --apply --limit 20      # execute at most 20 changes`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	if runPolicy != "" {
		cfg.KeepPolicy = runPolicy
	}
	if runStyle != "" {
		cfg.NameStyle = runStyle
	}
	if runMaxLen > 0 {
		cfg.MaxNameLen = runMaxLen
	}
	if err := cfg.Validate(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	root := cfg.Library
	if len(args) == 1 {
		root = args[0]
	}
	if root == "" {
		return fmt.Errorf("no library root given and none configured")
	}

	auditPath := runAudit
	if auditPath == "" {
		auditPath = fmt.Sprintf("pdftools-plan-%s.csv", time.Now().Format("20060102-150405"))
	}

	r, cleanup := newRunner(cfg, !runNoLookup)
	defer cleanup()

	res, err := r.Run(cmd.Context(), runner.Options{
		Root:      root,
		Apply:     runApply,
		Limit:     runLimit,
		Backup:    runBackup,
		Flatten:   runFlatten,
		Delete:    runDelete,
		AuditPath: auditPath,
	})
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	resp := &RunResponse{DryRun: !runApply}
	opResponses(resp, res)
	resp.Summary.AuditPath = auditPath

	if humanOutput {
		printOpsTable(resp.Ops)
		outputHuman("planned %d  applied %d  skipped %d  failed %d  (plan: %s)\n",
			resp.Summary.Planned, resp.Summary.Applied, resp.Summary.Skipped,
			resp.Summary.Failed, auditPath)
		return nil
	}
	return outputJSON(resp)
}
