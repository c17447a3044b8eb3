package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// OpResponse is one planned or executed operation in command output.
type OpResponse struct {
	Action   string `json:"action"`
	Original string `json:"original_path"`
	Proposed string `json:"proposed_path,omitempty"`
	Status   string `json:"status"`
	Notes    string `json:"notes,omitempty"`
}

// SummaryResponse reports a run's outcome counts.
type SummaryResponse struct {
	Planned   int    `json:"planned"`
	Applied   int    `json:"applied"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
	BackupDir string `json:"backup_dir,omitempty"`
	Flattened int    `json:"flattened,omitempty"`
	FixedName int    `json:"fixed_suffixes,omitempty"`
	DupGroups int    `json:"duplicate_groups,omitempty"`
	AuditPath string `json:"audit_path,omitempty"`
}

// RunResponse is the full output of run-style commands.
type RunResponse struct {
	DryRun  bool            `json:"dry_run"`
	Summary SummaryResponse `json:"summary"`
	Ops     []OpResponse    `json:"operations"`
}
