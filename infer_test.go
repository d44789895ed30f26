package sqlitable

import (
	"errors"
	"strings"
	"testing"
)

func TestEvaluateColumn(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		values   []any
		expected ColumnType
	}{
		{name: "All integers", values: []any{int64(1), int64(2)}, expected: ColumnTypeInteger},
		{name: "Mixed integer and real", values: []any{int64(1), 2.5}, expected: ColumnTypeReal},
		{name: "Any text wins", values: []any{int64(1), "x", 2.5}, expected: ColumnTypeText},
		{name: "Numeric strings", values: []any{"1", "2.5"}, expected: ColumnTypeReal},
		{name: "Nils ignored", values: []any{nil, int64(3), nil}, expected: ColumnTypeInteger},
		{name: "No values renders text", values: nil, expected: columnTypeUnknown},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := EvaluateColumn(tt.values); got != tt.expected {
				t.Errorf("EvaluateColumn(%v) = %v, want %v", tt.values, got, tt.expected)
			}
		})
	}
}

func TestEvaluateTable(t *testing.T) {
	t.Parallel()

	tbl := NewTable([]string{"id", "score", "name"}, []Record{
		{int64(1), 1.5, "Alice"},
		{int64(2), 2.0, "Bob"},
	})

	infos, err := EvaluateTable(tbl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []ColumnInfo{
		{Name: "id", Type: ColumnTypeInteger},
		{Name: "score", Type: ColumnTypeReal},
		{Name: "name", Type: ColumnTypeText},
	}
	if len(infos) != len(want) {
		t.Fatalf("expected %d columns, got %d", len(want), len(infos))
	}
	for i := range want {
		if infos[i] != want[i] {
			t.Errorf("column %d: expected %+v, got %+v", i, want[i], infos[i])
		}
	}
}

func TestCreateStatement(t *testing.T) {
	t.Parallel()

	t.Run("Renders inferred types", func(t *testing.T) {
		t.Parallel()

		tbl := NewTable([]string{"id", "name"}, []Record{
			{int64(1), "Alice"},
		})
		got, err := CreateStatement(tbl, "people")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := "CREATE TABLE people (\n  id INTEGER,\n  name TEXT\n);"
		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("Sanitizes header in place", func(t *testing.T) {
		t.Parallel()

		tbl := NewTable([]string{"first name", "2nd"}, []Record{
			{"Alice", int64(1)},
		})
		got, err := CreateStatement(tbl, "t")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(got, "first_name TEXT") || !strings.Contains(got, "col_2nd INTEGER") {
			t.Errorf("statement missing sanitized columns: %q", got)
		}
		cols := tbl.Columns()
		if cols[0] != "first_name" || cols[1] != "col_2nd" {
			t.Errorf("header not rewritten in place: %v", cols)
		}
	})

	t.Run("No columns", func(t *testing.T) {
		t.Parallel()

		if _, err := CreateStatement(NewTable(nil, nil), "t"); !errors.Is(err, ErrEmptyTable) {
			t.Errorf("expected ErrEmptyTable, got %v", err)
		}
	})
}
