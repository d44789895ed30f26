package sqlitable

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Processing constants (rows-based)
const (
	// DefaultQueryBatchSize is the default number of result rows fetched per
	// batch when spilling a query result to disk
	DefaultQueryBatchSize = 100000
	// DefaultChunkSize is the default number of rows per INSERT statement
	DefaultChunkSize = 1000
	// MinChunkSize is the minimum allowed rows per chunk
	MinChunkSize = 1
)

// Character validation constants
const (
	firstDigitChar = '0'
	lastDigitChar  = '9'
	firstLowerChar = 'a'
	lastLowerChar  = 'z'
	firstUpperChar = 'A'
	lastUpperChar  = 'Z'
	underscoreChar = '_'
)

// columnPrefix is prepended to column names that are not valid SQL
// identifiers on their own.
const columnPrefix = "col_"

// IfExists selects what Copy does when the destination table already exists.
type IfExists string

const (
	// IfExistsFail aborts the copy with ErrTableExists
	IfExistsFail IfExists = "fail"
	// IfExistsAppend keeps the existing table and appends rows to it
	IfExistsAppend IfExists = "append"
	// IfExistsDrop drops and recreates the table before inserting
	IfExistsDrop IfExists = "drop"
)

// Validate reports whether the policy is one of fail, append, or drop.
func (e IfExists) Validate() error {
	switch e {
	case IfExistsFail, IfExistsAppend, IfExistsDrop:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidIfExists, string(e))
	}
}

// Header is an ordered list of column names.
type Header []string

// newHeader create new header.
func newHeader(h []string) Header {
	return Header(h)
}

// equal compare header.
func (h Header) equal(h2 Header) bool {
	if len(h) != len(h2) {
		return false
	}
	for i, v := range h {
		if v != h2[i] {
			return false
		}
	}
	return true
}

// Record is one table row. Cells keep their native types: query results
// carry int64, float64, string, []byte, or nil exactly as the driver
// returned them.
type Record []any

// newRecord create new record.
func newRecord(r []any) Record {
	return Record(r)
}

// equal compare record.
func (r Record) equal(r2 Record) bool {
	if len(r) != len(r2) {
		return false
	}
	for i, v := range r {
		if !cellEqual(v, r2[i]) {
			return false
		}
	}
	return true
}

// cellEqual compares two cells. Blobs need bytes.Equal, everything else the
// connector stores is comparable.
func cellEqual(a, b any) bool {
	ab, aok := a.([]byte)
	bb, bok := b.([]byte)
	if aok || bok {
		return aok && bok && bytes.Equal(ab, bb)
	}
	return a == b
}

// ColumnType is a point on the widening lattice used to pick the least
// restrictive SQLite type that fits all observed values in a column.
type ColumnType int

const (
	// columnTypeUnknown is the starting point before any value is observed
	columnTypeUnknown ColumnType = iota
	// ColumnTypeInteger represents the INTEGER column type
	ColumnTypeInteger
	// ColumnTypeReal represents the REAL column type
	ColumnTypeReal
	// ColumnTypeText represents the TEXT column type
	ColumnTypeText
)

const (
	sqlTypeText    = "TEXT"
	sqlTypeInteger = "INTEGER"
	sqlTypeReal    = "REAL"
)

// String returns the SQL column type string. A column that never widened
// past unknown (no non-empty values) renders as TEXT.
func (ct ColumnType) String() string {
	switch ct {
	case ColumnTypeInteger:
		return sqlTypeInteger
	case ColumnTypeReal:
		return sqlTypeReal
	default:
		return sqlTypeText
	}
}

// widenColumnType folds one value into the current type classification.
// Widening is monotonic: unknown -> INTEGER -> REAL -> TEXT, never back.
func widenColumnType(value any, current ColumnType) ColumnType {
	if current == ColumnTypeText {
		return ColumnTypeText
	}

	switch v := value.(type) {
	case nil:
		return current
	case bool:
		return maxColumnType(current, ColumnTypeInteger)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return maxColumnType(current, ColumnTypeInteger)
	case float32, float64:
		return maxColumnType(current, ColumnTypeReal)
	case string:
		return maxColumnType(current, classifyString(v))
	default:
		return ColumnTypeText
	}
}

// classifyString infers a type for a string cell the way file-fed tables
// need: numeric-looking strings stay numeric so CSV input does not force
// every column to TEXT.
func classifyString(value string) ColumnType {
	value = strings.TrimSpace(value)
	if value == "" {
		return columnTypeUnknown
	}
	if _, err := strconv.ParseInt(value, 10, 64); err == nil {
		return ColumnTypeInteger
	}
	if _, err := strconv.ParseFloat(value, 64); err == nil {
		return ColumnTypeReal
	}
	return ColumnTypeText
}

func maxColumnType(a, b ColumnType) ColumnType {
	if a > b {
		return a
	}
	return b
}

// sanitizeColumnName rewrites a column name into a valid SQL identifier:
// spaces and punctuation become underscores, anything else invalid is
// dropped, and names that are empty or start with a digit get columnPrefix.
func sanitizeColumnName(name string) string {
	result := strings.TrimSpace(name)
	result = strings.ReplaceAll(result, " ", "_")
	result = strings.ReplaceAll(result, "-", "_")
	result = strings.ReplaceAll(result, ".", "_")

	var sanitized strings.Builder
	for _, r := range result {
		if (r >= firstLowerChar && r <= lastLowerChar) ||
			(r >= firstUpperChar && r <= lastUpperChar) ||
			(r >= firstDigitChar && r <= lastDigitChar) ||
			r == underscoreChar {
			sanitized.WriteRune(r)
		}
	}

	final := sanitized.String()
	if final == "" || (final[0] >= firstDigitChar && final[0] <= lastDigitChar) {
		final = columnPrefix + final
	}
	return final
}

// formatColumns sanitizes every column name and deduplicates collisions by
// appending a numeric suffix, preserving order. The suffix advances until
// the candidate is free, so a generated name never collides with a name
// already taken.
func formatColumns(columns []string) []string {
	seen := make(map[string]int, len(columns))
	out := make([]string, len(columns))
	for i, col := range columns {
		name := sanitizeColumnName(col)
		if n, ok := seen[name]; ok {
			base := name
			for {
				n++
				name = base + "_" + strconv.Itoa(n)
				if _, taken := seen[name]; !taken {
					break
				}
			}
			seen[base] = n
		}
		seen[name] = 1
		out[i] = name
	}
	return out
}

// validateColumnNames checks for duplicate column names and returns an error
// if found. Comparison is case-sensitive.
func validateColumnNames(columns []string) error {
	columnsSeen := make(map[string]bool)
	for _, col := range columns {
		trimmed := strings.TrimSpace(col)
		if columnsSeen[trimmed] {
			return fmt.Errorf("%w: %s", errDuplicateColumnName, col)
		}
		columnsSeen[trimmed] = true
	}
	return nil
}
