package sqlitable

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFileType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path     string
		expected FileType
	}{
		{path: "data.csv", expected: FileTypeCSV},
		{path: "data.tsv", expected: FileTypeTSV},
		{path: "data.CSV", expected: FileTypeCSV},
		{path: "data.csv.gz", expected: FileTypeCSV},
		{path: "data.tsv.bz2", expected: FileTypeTSV},
		{path: "data.csv.xz", expected: FileTypeCSV},
		{path: "data.csv.zst", expected: FileTypeCSV},
		{path: "data.json", expected: FileTypeUnsupported},
		{path: "data", expected: FileTypeUnsupported},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, detectFileType(tt.path))
		})
	}
}

func TestTableNameFromPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path     string
		expected string
	}{
		{path: "users.csv", expected: "users"},
		{path: "/tmp/out/users.csv.gz", expected: "users"},
		{path: "events.tsv.zst", expected: "events"},
		{path: "plain", expected: "plain"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, TableNameFromPath(tt.path))
		})
	}
}

func TestReadTable(t *testing.T) {
	t.Parallel()

	t.Run("CSV", func(t *testing.T) {
		t.Parallel()

		tbl, err := ReadTable(strings.NewReader("name,age\nAlice,30\nBob,25\n"), FileTypeCSV)
		require.NoError(t, err)
		assert.Equal(t, []string{"name", "age"}, tbl.Columns())
		require.Equal(t, 2, tbl.NumRows())
		assert.Equal(t, Record{"Alice", "30"}, tbl.Records()[0])
	})

	t.Run("TSV", func(t *testing.T) {
		t.Parallel()

		tbl, err := ReadTable(strings.NewReader("name\tage\nAlice\t30\n"), FileTypeTSV)
		require.NoError(t, err)
		assert.Equal(t, []string{"name", "age"}, tbl.Columns())
		assert.Equal(t, 1, tbl.NumRows())
	})

	t.Run("Empty input", func(t *testing.T) {
		t.Parallel()

		_, err := ReadTable(strings.NewReader(""), FileTypeCSV)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("Duplicate header", func(t *testing.T) {
		t.Parallel()

		_, err := ReadTable(strings.NewReader("a,a\n1,2\n"), FileTypeCSV)
		assert.Error(t, err)
	})

	t.Run("Unsupported type", func(t *testing.T) {
		t.Parallel()

		_, err := ReadTable(strings.NewReader("a\n1\n"), FileTypeUnsupported)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}

func TestLoadTable(t *testing.T) {
	t.Parallel()

	t.Run("Plain CSV file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "users.csv")
		require.NoError(t, os.WriteFile(path, []byte("id,name\n1,Alice\n2,Bob\n"), 0o600))

		tbl, err := LoadTable(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "name"}, tbl.Columns())
		assert.Equal(t, 2, tbl.NumRows())
	})

	t.Run("Gzip compressed CSV", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "users.csv.gz")
		var buf bytes.Buffer
		gzWriter := gzip.NewWriter(&buf)
		_, err := gzWriter.Write([]byte("id,name\n1,Alice\n"))
		require.NoError(t, err)
		require.NoError(t, gzWriter.Close())
		require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

		tbl, err := LoadTable(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "name"}, tbl.Columns())
		require.Equal(t, 1, tbl.NumRows())
		assert.Equal(t, Record{"1", "Alice"}, tbl.Records()[0])
	})

	t.Run("Unsupported extension", func(t *testing.T) {
		t.Parallel()

		_, err := LoadTable(filepath.Join(t.TempDir(), "users.json"))
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}

func TestLoadTableIntoDatabase(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "scores.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,score\nAlice,90\nBob,85.5\n"), 0o600))

	tbl, err := LoadTable(path)
	require.NoError(t, err)

	db, err := New(filepath.Join(dir, "test.db"), NewOptions().WithTempDir(dir))
	require.NoError(t, err)
	require.NoError(t, db.Copy(tbl, TableNameFromPath(path), IfExistsFail, 1000))

	rows, err := db.Query("SELECT name, score FROM scores ORDER BY name")
	require.NoError(t, err)
	got, err := rows.Table()
	require.NoError(t, err)
	require.Equal(t, 2, got.NumRows())
	assert.Equal(t, "Alice", got.Records()[0][0])
}

func TestTable_WriteCSV(t *testing.T) {
	t.Parallel()

	tbl := NewTable([]string{"name", "age", "note"}, []Record{
		{"Alice", int64(30), nil},
		{"Bob", 2.5, []byte("raw")},
	})

	var buf bytes.Buffer
	require.NoError(t, tbl.WriteCSV(&buf))
	assert.Equal(t, "name,age,note\nAlice,30,\nBob,2.5,raw\n", buf.String())
}
