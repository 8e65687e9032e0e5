package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/CBIIT/ccdi-cpi-etl/internal/linkage/models"
	dErrors "github.com/CBIIT/ccdi-cpi-etl/pkg/domain-errors"
)

// ResolutionError means the fact set or participant universe could not be
// read. Nothing was written.
type ResolutionError struct {
	Op  string
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolution failed: %s: %v", e.Op, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return dErrors.Wrap(e.Err, codeFor(e.Err), e.Op)
}

// ApplyError means the plan was not persisted. Plan is intact and can be
// applied again as is.
type ApplyError struct {
	Plan   models.Plan
	Digest string
	Err    error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("apply failed for plan %s (%d instructions): %v", shortDigest(e.Digest), e.Plan.Len(), e.Err)
}

func (e *ApplyError) Unwrap() error {
	return dErrors.Wrap(e.Err, codeFor(e.Err), "apply plan")
}

func codeFor(err error) dErrors.Code {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return dErrors.CodeTimeout
	}
	return dErrors.CodeUnavailable
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
