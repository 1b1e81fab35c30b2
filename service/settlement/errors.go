package settlement

import (
	"errors"
	"fmt"
)

// Sentinel errors for settlement rejection. Shape problems are validation
// failures surfaced verbatim; ErrTransient is the only retryable outcome and
// only before any write has been applied.
var (
	ErrBadKind              = errors.New("unknown settlement kind")
	ErrEmptyLines           = errors.New("settlement requires at least one line")
	ErrBadQty               = errors.New("line quantity must be positive")
	ErrNegativePrice        = errors.New("unit price must not be negative")
	ErrNegativePaid         = errors.New("paid amount must not be negative")
	ErrNegativeDue          = errors.New("sale due amount must not be negative")
	ErrBadMode              = errors.New("sale mode not valid for this category")
	ErrLineTarget           = errors.New("line must name exactly one inventory row or accessory")
	ErrStockLineForbidden   = errors.New("due payment and expense entries carry no stock lines")
	ErrAmountRequired       = errors.New("settlement amount required")
	ErrCounterpartyRequired = errors.New("counterparty reference required")
	ErrCounterpartyKind     = errors.New("counterparty kind not valid for this settlement")
	// ErrTransient surfaces after bounded retries all lost the per-row race.
	ErrTransient = errors.New("settlement aborted after repeated conflicts")
)

// ValidationError points a rejection at the request line that caused it, so
// the caller can highlight it. Line is -1 for request-level failures.
type ValidationError struct {
	Line   int
	Err    error
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Line < 0 {
		if e.Detail == "" {
			return e.Err.Error()
		}
		return fmt.Sprintf("%s: %s", e.Err, e.Detail)
	}
	if e.Detail == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: %s: %s", e.Line, e.Err, e.Detail)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func reject(line int, err error, detail string) error {
	return &ValidationError{Line: line, Err: err, Detail: detail}
}
