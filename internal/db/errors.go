package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"

	"github.com/raphaelgruber/eventqa/internal/search"
)

var (
	// ErrNotFound indicates the requested event does not exist.
	ErrNotFound = search.ErrNotFound

	// ErrTransactionConflict indicates concurrent writes to the same records.
	// Callers may retry.
	ErrTransactionConflict = errors.New("transaction conflict")

	// ErrDimensionMismatch indicates a vector that does not fit the HNSW index.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// wrapQueryError attaches a sentinel to known SurrealDB query errors.
func wrapQueryError(err error) error {
	if err == nil {
		return nil
	}

	var queryErr *surrealdb.QueryError
	if errors.As(err, &queryErr) {
		msg := queryErr.Message
		switch {
		case strings.Contains(msg, "Transaction conflict"):
			return fmt.Errorf("%w: %s", ErrTransactionConflict, msg)
		case strings.Contains(msg, "dimension"):
			return fmt.Errorf("%w: %s", ErrDimensionMismatch, msg)
		}
	}
	return err
}
