package sqlitable

import (
	"errors"
	"testing"
)

func TestNewTable(t *testing.T) {
	t.Parallel()

	t.Run("Create table with header and records", func(t *testing.T) {
		t.Parallel()

		records := []Record{
			newRecord([]any{"val1", "val2"}),
			newRecord([]any{"val3", "val4"}),
		}
		table := NewTable([]string{"col1", "col2"}, records)

		if len(table.Columns()) != 2 {
			t.Errorf("expected 2 columns, got %d", len(table.Columns()))
		}
		if table.NumRows() != 2 {
			t.Errorf("expected 2 rows, got %d", table.NumRows())
		}
		if table.First() != "val1" {
			t.Errorf("expected first value 'val1', got %v", table.First())
		}
	})

	t.Run("First on empty table", func(t *testing.T) {
		t.Parallel()

		table := NewTable([]string{"col1"}, nil)
		if table.First() != nil {
			t.Errorf("expected nil, got %v", table.First())
		}
	})
}

func TestTable_ColumnData(t *testing.T) {
	t.Parallel()

	table := NewTable([]string{"name", "age"}, []Record{
		{"Alice", int64(30)},
		{"Bob", int64(25)},
	})

	t.Run("Existing column", func(t *testing.T) {
		t.Parallel()

		values, err := table.ColumnData("age")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(values) != 2 || values[0] != int64(30) || values[1] != int64(25) {
			t.Errorf("unexpected column data: %v", values)
		}
	})

	t.Run("Missing column", func(t *testing.T) {
		t.Parallel()

		if _, err := table.ColumnData("missing"); !errors.Is(err, ErrColumnNotFound) {
			t.Errorf("expected ErrColumnNotFound, got %v", err)
		}
	})

	t.Run("Short row pads with nil", func(t *testing.T) {
		t.Parallel()

		short := NewTable([]string{"a", "b"}, []Record{{"only"}})
		values, err := short.ColumnData("b")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if values[0] != nil {
			t.Errorf("expected nil for missing field, got %v", values[0])
		}
	})
}

func TestTable_Chunk(t *testing.T) {
	t.Parallel()

	table := NewTable([]string{"n"}, []Record{
		{int64(1)}, {int64(2)}, {int64(3)}, {int64(4)}, {int64(5)},
	})

	t.Run("Five rows in chunks of two", func(t *testing.T) {
		t.Parallel()

		chunks := table.Chunk(2)
		if len(chunks) != 3 {
			t.Fatalf("expected 3 chunks, got %d", len(chunks))
		}
		for i, want := range []int{2, 2, 1} {
			if chunks[i].NumRows() != want {
				t.Errorf("chunk %d: expected %d rows, got %d", i, want, chunks[i].NumRows())
			}
		}
	})

	t.Run("Chunk larger than table", func(t *testing.T) {
		t.Parallel()

		chunks := table.Chunk(100)
		if len(chunks) != 1 || chunks[0].NumRows() != 5 {
			t.Errorf("expected a single 5-row chunk, got %d chunks", len(chunks))
		}
	})

	t.Run("Invalid size falls back to default", func(t *testing.T) {
		t.Parallel()

		chunks := table.Chunk(0)
		if len(chunks) != 1 {
			t.Errorf("expected 1 chunk with default size, got %d", len(chunks))
		}
	})
}

func TestTable_Equal(t *testing.T) {
	t.Parallel()

	records := []Record{{"val1", int64(2)}}
	table1 := NewTable([]string{"col1", "col2"}, records)
	table2 := NewTable([]string{"col1", "col2"}, []Record{{"val1", int64(2)}})
	table3 := NewTable([]string{"col1", "colX"}, records)
	table4 := NewTable([]string{"col1", "col2"}, []Record{{"val1", int64(3)}})

	if !table1.Equal(table2) {
		t.Error("expected tables to be equal")
	}
	if table1.Equal(table3) {
		t.Error("expected tables with different headers to be not equal")
	}
	if table1.Equal(table4) {
		t.Error("expected tables with different values to be not equal")
	}
}
