package sqlitable

import (
	"fmt"
	"strings"
)

// ColumnInfo pairs a column name with its inferred type.
type ColumnInfo struct {
	Name string
	Type ColumnType
}

// EvaluateColumn folds the widening function over every value of a column
// and returns the widest type seen. A column with no usable values stays at
// the lattice bottom and renders as TEXT.
func EvaluateColumn(values []any) ColumnType {
	colType := columnTypeUnknown
	for _, value := range values {
		colType = widenColumnType(value, colType)
	}
	return colType
}

// EvaluateTable applies EvaluateColumn to every column and returns the
// ordered column/type map.
func EvaluateTable(tbl *Table) ([]ColumnInfo, error) {
	columns := tbl.Columns()
	infos := make([]ColumnInfo, 0, len(columns))
	for _, col := range columns {
		values, err := tbl.ColumnData(col)
		if err != nil {
			return nil, err
		}
		infos = append(infos, ColumnInfo{Name: col, Type: EvaluateColumn(values)})
	}
	return infos, nil
}

// CreateStatement renders a CREATE TABLE statement for the table. Column
// names are sanitized first and the table's header is rewritten in place to
// the sanitized names, so the statement and later inserts agree.
func CreateStatement(tbl *Table, tableName string) (string, error) {
	if len(tbl.Columns()) == 0 {
		return "", fmt.Errorf("create statement for %s: %w", tableName, ErrEmptyTable)
	}

	tbl.setColumns(formatColumns(tbl.Columns()))

	infos, err := EvaluateTable(tbl)
	if err != nil {
		return "", err
	}

	columnSyntax := make([]string, 0, len(infos))
	for _, ci := range infos {
		columnSyntax = append(columnSyntax, fmt.Sprintf("%s %s", ci.Name, ci.Type))
	}

	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n);", tableName, strings.Join(columnSyntax, ",\n  ")), nil
}
