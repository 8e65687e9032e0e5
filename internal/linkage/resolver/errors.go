package resolver

import (
	"fmt"

	"github.com/CBIIT/ccdi-cpi-etl/internal/linkage/models"
	dErrors "github.com/CBIIT/ccdi-cpi-etl/pkg/domain-errors"
)

// InvalidFactError reports one malformed fact. The fact is skipped and the
// rest of the run continues.
type InvalidFactError struct {
	// Index is the fact's position in the input slice.
	Index  int
	Fact   models.MappingFact
	Reason string
}

func (e *InvalidFactError) Error() string {
	return fmt.Sprintf("invalid fact #%d (%q, %q): %s", e.Index, e.Fact.A, e.Fact.B, e.Reason)
}

func (e *InvalidFactError) Unwrap() error {
	return dErrors.New(dErrors.CodeInvalidInput, e.Reason)
}
