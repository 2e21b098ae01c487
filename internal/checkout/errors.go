package checkout

import "fmt"

// ValidationError means a precondition failed before any store call was made.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("checkout validation failed: %s", e.Reason)
}

// SubmissionError means the order header insert failed. Nothing was
// persisted; the cart is untouched and the user can retry.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("order submission failed: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// PartialSubmissionError means the order header was persisted but the line
// items were not: the store now holds an orphaned header with zero lines.
// OrderID identifies it for manual reconciliation; there is no automatic
// rollback because the store contract offers no multi-statement transaction.
type PartialSubmissionError struct {
	OrderID int64
	Err     error
}

func (e *PartialSubmissionError) Error() string {
	return fmt.Sprintf("order %d persisted without line items: %v", e.OrderID, e.Err)
}

func (e *PartialSubmissionError) Unwrap() error { return e.Err }
