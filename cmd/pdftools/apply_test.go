package main

import (
	"testing"

	"github.com/Kingy2709/pdf-tools/internal/audit"
	"github.com/Kingy2709/pdf-tools/internal/plan"
)

func TestOpsFromRows(t *testing.T) {
	rows := []audit.Row{
		{
			OriginalPath: "/lib/a.pdf", ProposedPath: "/lib/x.pdf",
			Action: "rename", Status: "planned",
		},
		{
			OriginalPath: "/lib/b.pdf", ProposedPath: "/lib/y.pdf",
			Action: "rename+metadata", Status: "planned",
			MetaTitle: "Title", MetaAuthor: "Smith, John",
		},
		{
			OriginalPath: "/lib/c.pdf", ProposedPath: "/lib/z.pdf",
			Action: "rename", Status: "applied",
		},
	}
	ops := opsFromRows(rows)
	if len(ops) != 3 {
		t.Fatalf("got %d ops, want 3", len(ops))
	}
	if ops[0].Kind != plan.Rename || ops[0].Meta != nil {
		t.Errorf("ops[0] = %q meta=%v", ops[0].Kind, ops[0].Meta)
	}
	if ops[1].Kind != plan.RenameMeta || ops[1].Meta == nil || ops[1].Meta.Title != "Title" {
		t.Errorf("ops[1] = %q meta=%+v", ops[1].Kind, ops[1].Meta)
	}
	// Already-applied rows are not re-executed.
	if ops[2].Kind != plan.Skip {
		t.Errorf("ops[2] = %q, want skip", ops[2].Kind)
	}
}
