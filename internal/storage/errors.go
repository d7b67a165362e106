package storage

import (
	"database/sql"
	"fmt"

	"github.com/pkg/errors"
)

// errors
var (
	ErrDoesNotExist   = errors.New("object does not exist")
	ErrInvalidSession = errors.New("not a sqlite session file")
	ErrUnknownTable   = errors.New("unknown table")
)

// LoadError is returned when a session file can not be loaded. It is fatal
// to the load attempt only.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load session error: %s", e.Err)
}

// Cause returns the underlying error.
func (e *LoadError) Cause() error { return e.Err }

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error { return e.Err }

// QueryError is returned when a query can not be executed against the
// session, e.g. because of malformed SQL or a missing table.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query error: %s", e.Err)
}

// Cause returns the underlying error.
func (e *QueryError) Cause() error { return e.Err }

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error { return e.Err }

// IsLoadError returns true when the given error (or its cause) is a LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

// IsQueryError returns true when the given error (or its cause) is a
// QueryError.
func IsQueryError(err error) bool {
	var qe *QueryError
	return errors.As(err, &qe)
}

func handleSQLiteError(err error, query, description string) error {
	if err == sql.ErrNoRows {
		return ErrDoesNotExist
	}

	return &QueryError{
		Query: query,
		Err:   errors.Wrap(err, description),
	}
}
