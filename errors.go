package sqlitable

import "errors"

// Standard errors returned by the connector and statement builders.
var (
	// errDuplicateColumnName is returned when an input file contains duplicate column names
	errDuplicateColumnName = errors.New("duplicate column name")

	// ErrTableExists indicates the destination table already exists and the
	// if-exists policy is IfExistsFail
	ErrTableExists = errors.New("sqlitable: table already exists")

	// ErrInvalidIfExists indicates an if-exists policy outside {fail, append, drop}
	ErrInvalidIfExists = errors.New("sqlitable: invalid value for if-exists policy")

	// ErrColumnNotFound indicates a column name not present in the table header
	ErrColumnNotFound = errors.New("sqlitable: column not found")

	// ErrEmptyTable indicates a table with no columns was passed where a
	// statement must be generated from its contents
	ErrEmptyTable = errors.New("sqlitable: table has no columns")

	// ErrUnsupportedFormat indicates an unsupported input file format
	ErrUnsupportedFormat = errors.New("sqlitable: unsupported file format")

	// ErrConnectionClosed indicates an operation on a closed connection
	ErrConnectionClosed = errors.New("sqlitable: connection is closed")
)
