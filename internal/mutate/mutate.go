// Package mutate executes planned operations against the filesystem.
// Each operation is all-or-nothing: existence is re-checked immediately
// before the mutation, and a failure leaves the files as they were.
package mutate

import (
	"errors"
	"fmt"
	"os"

	"github.com/Kingy2709/pdf-tools/internal/pdfmeta"
	"github.com/Kingy2709/pdf-tools/internal/plan"
)

var (
	// ErrSourceMissing means the file vanished between discovery and
	// execution.
	ErrSourceMissing = errors.New("source file missing")

	// ErrDestinationConflict means the target path is occupied by a
	// different file.
	ErrDestinationConflict = errors.New("destination occupied")

	// ErrRenameFailed wraps a rejected filesystem rename.
	ErrRenameFailed = errors.New("rename failed")
)

// Mutator applies one operation at a time. Store performs the
// metadata writes; it is only consulted for operations that carry a
// metadata payload.
type Mutator struct {
	Store pdfmeta.Store
}

// Apply executes op, updating its status in place, and returns the
// recorded error if the operation failed. A non-nil error never means
// the batch must stop; callers record it and move on.
func (m *Mutator) Apply(op *plan.Op) error {
	switch op.Kind {
	case plan.Skip:
		op.Status = plan.Skipped
		return nil
	case plan.Error:
		op.Status = plan.Failed
		return fmt.Errorf("planned error: %s", op.Reason)
	case plan.DeleteDup:
		return m.delete(op)
	case plan.Rename, plan.RenameMeta, plan.MetadataOnly:
		return m.mutate(op)
	}
	return m.fail(op, fmt.Errorf("unknown operation kind %q", op.Kind))
}

func (m *Mutator) delete(op *plan.Op) error {
	if _, err := os.Stat(op.Src); os.IsNotExist(err) {
		op.Reason = plan.ReasonMissingSrc
		return m.fail(op, ErrSourceMissing)
	}
	if err := os.Remove(op.Src); err != nil {
		return m.fail(op, err)
	}
	op.Status = plan.Applied
	return nil
}

func (m *Mutator) mutate(op *plan.Op) error {
	srcInfo, err := os.Stat(op.Src)
	if os.IsNotExist(err) {
		op.Reason = plan.ReasonMissingSrc
		return m.fail(op, ErrSourceMissing)
	}
	if err != nil {
		return m.fail(op, err)
	}

	target := op.Src
	moving := op.Dst != "" && op.Dst != op.Src
	if moving {
		// Optimistic re-check: the namespace may have changed since
		// planning, and the rename must not overwrite.
		if dstInfo, statErr := os.Stat(op.Dst); statErr == nil {
			if os.SameFile(srcInfo, dstInfo) {
				op.Status = plan.Skipped
				op.Reason = plan.ReasonNoop
				return nil
			}
			op.Status = plan.Skipped
			op.Reason = plan.ReasonDstExists
			return ErrDestinationConflict
		}
		if err := os.Rename(op.Src, op.Dst); err != nil {
			return m.fail(op, fmt.Errorf("%w: %v", ErrRenameFailed, err))
		}
		target = op.Dst
	}

	// Metadata lands on the file at its final path.
	if op.Meta != nil {
		if _, err := m.Store.Write(target, *op.Meta); err != nil {
			return m.fail(op, err)
		}
	}

	op.Status = plan.Applied
	return nil
}

func (m *Mutator) fail(op *plan.Op, err error) error {
	op.Status = plan.Failed
	if op.Reason == "" {
		op.Reason = err.Error()
	}
	return err
}

// IsConflict reports whether err records a destination conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDestinationConflict)
}
