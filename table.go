package sqlitable

import "fmt"

// Table is the in-memory tabular container the connector reads from and
// writes to. It exposes the contract Copy and the statement builders need:
// ordered columns, per-column data access, fixed-size row chunks, a row
// count, and the first value.
type Table struct {
	header  Header
	records []Record
}

// NewTable create new table from column names and rows.
func NewTable(columns []string, records []Record) *Table {
	return &Table{
		header:  newHeader(columns),
		records: records,
	}
}

// Columns return the ordered column names.
func (t *Table) Columns() []string {
	return []string(t.header)
}

// setColumns replaces the header in place. CreateStatement uses this to
// install sanitized column names.
func (t *Table) setColumns(columns []string) {
	t.header = newHeader(columns)
}

// Records return the table rows.
func (t *Table) Records() []Record {
	return t.records
}

// NumRows return the number of data rows.
func (t *Table) NumRows() int {
	return len(t.records)
}

// First returns the first value of the first row, or nil for an empty table.
func (t *Table) First() any {
	if len(t.records) == 0 || len(t.records[0]) == 0 {
		return nil
	}
	return t.records[0][0]
}

// Append adds one row to the table.
func (t *Table) Append(r Record) {
	t.records = append(t.records, r)
}

// ColumnData returns all values of the named column in row order.
func (t *Table) ColumnData(column string) ([]any, error) {
	idx := -1
	for i, name := range t.header {
		if name == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, column)
	}

	values := make([]any, 0, len(t.records))
	for _, record := range t.records {
		if idx < len(record) {
			values = append(values, record[idx])
		} else {
			values = append(values, nil)
		}
	}
	return values, nil
}

// Chunk splits the table into sub-tables of at most size rows, sharing the
// header. A size below MinChunkSize falls back to DefaultChunkSize.
func (t *Table) Chunk(size int) []*Table {
	if size < MinChunkSize {
		size = DefaultChunkSize
	}

	chunks := make([]*Table, 0, (len(t.records)+size-1)/size)
	for start := 0; start < len(t.records); start += size {
		end := start + size
		if end > len(t.records) {
			end = len(t.records)
		}
		chunks = append(chunks, &Table{
			header:  t.header,
			records: t.records[start:end],
		})
	}
	return chunks
}

// Equal compare table contents.
func (t *Table) Equal(t2 *Table) bool {
	if !t.header.equal(t2.header) {
		return false
	}
	if len(t.records) != len(t2.records) {
		return false
	}
	for i, record := range t.records {
		if !record.equal(t2.records[i]) {
			return false
		}
	}
	return true
}
