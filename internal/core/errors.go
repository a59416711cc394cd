package core

import (
	"errors"
	"fmt"
)

// SchemaError reports a missing or misnamed required header column. It is
// raised before any row processing or database work, so no partial state
// exists when the caller sees it.
type SchemaError struct {
	Column string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Column == "" {
		return "schema error: " + e.Reason
	}
	return fmt.Sprintf("schema error: column %q: %s", e.Column, e.Reason)
}

// NewSchemaError builds a SchemaError for the given column.
func NewSchemaError(column, reason string) *SchemaError {
	return &SchemaError{Column: column, Reason: reason}
}

// IsSchemaError reports whether err carries a SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

// TransactionError wraps a database or connectivity failure that aborted a
// persistence run. The whole transaction was rolled back; no partial writes
// survive.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction %s: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

// IsTransactionError reports whether err carries a TransactionError.
func IsTransactionError(err error) bool {
	var te *TransactionError
	return errors.As(err, &te)
}
