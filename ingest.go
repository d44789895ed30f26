package sqlitable

import (
	"compress/bzip2"
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// FileType identifies a delimited input format.
type FileType int

const (
	// FileTypeUnsupported represents an unsupported file format
	FileTypeUnsupported FileType = iota
	// FileTypeCSV represents comma-separated values
	FileTypeCSV
	// FileTypeTSV represents tab-separated values
	FileTypeTSV
)

// File and compression extensions.
const (
	extCSV  = ".csv"
	extTSV  = ".tsv"
	extGZ   = ".gz"
	extBZ2  = ".bz2"
	extXZ   = ".xz"
	extZSTD = ".zst"
)

// delimiter returns the field separator for the format.
func (ft FileType) delimiter() rune {
	if ft == FileTypeTSV {
		return '\t'
	}
	return ','
}

// detectFileType determines the base format after stripping any
// compression extension.
func detectFileType(path string) FileType {
	base := removeCompressionExtension(path)
	switch strings.ToLower(filepath.Ext(base)) {
	case extCSV:
		return FileTypeCSV
	case extTSV:
		return FileTypeTSV
	default:
		return FileTypeUnsupported
	}
}

// removeCompressionExtension strips a trailing compression extension if
// present.
func removeCompressionExtension(path string) string {
	lower := strings.ToLower(path)
	for _, ext := range []string{extGZ, extBZ2, extXZ, extZSTD} {
		if strings.HasSuffix(lower, ext) {
			return path[:len(path)-len(ext)]
		}
	}
	return path
}

// TableNameFromPath derives a table name from a file path: base name with
// compression and format extensions removed.
func TableNameFromPath(path string) string {
	fileName := filepath.Base(removeCompressionExtension(path))
	return strings.TrimSuffix(fileName, filepath.Ext(fileName))
}

// decompressedReader wraps a reader with the decompression matching the
// file path, returning a cleanup function for readers that need closing.
func decompressedReader(reader io.Reader, path string) (io.Reader, func() error, error) {
	switch {
	case strings.HasSuffix(strings.ToLower(path), extGZ):
		gzReader, err := gzip.NewReader(reader)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gzReader, gzReader.Close, nil

	case strings.HasSuffix(strings.ToLower(path), extBZ2):
		return bzip2.NewReader(reader), func() error { return nil }, nil

	case strings.HasSuffix(strings.ToLower(path), extXZ):
		xzReader, err := xz.NewReader(reader)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		return xzReader, func() error { return nil }, nil

	case strings.HasSuffix(strings.ToLower(path), extZSTD):
		decoder, err := zstd.NewReader(reader)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return decoder, func() error { decoder.Close(); return nil }, nil

	default:
		return reader, func() error { return nil }, nil
	}
}

// LoadTable reads a CSV or TSV file, including gzip/bzip2/xz/zstd
// compressed variants, into a Table. The first record is the header.
func LoadTable(path string) (*Table, error) {
	fileType := detectFileType(path)
	if fileType == FileTypeUnsupported {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	file, err := os.Open(path) //nolint:gosec // Caller-provided input path
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	reader, cleanup, err := decompressedReader(file, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cleanup()
	}()

	return ReadTable(reader, fileType)
}

// ReadTable parses delimited data from a reader into a Table. Field values
// are kept as strings; the type-widening fold classifies numeric-looking
// strings when a CREATE TABLE statement is generated.
func ReadTable(r io.Reader, fileType FileType) (*Table, error) {
	if fileType == FileTypeUnsupported {
		return nil, ErrUnsupportedFormat
	}

	csvReader := csv.NewReader(r)
	csvReader.Comma = fileType.delimiter()
	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read delimited data: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrUnsupportedFormat)
	}

	if err := validateColumnNames(records[0]); err != nil {
		return nil, err
	}

	rows := make([]Record, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(Record, len(record))
		for i, field := range record {
			row[i] = field
		}
		rows = append(rows, row)
	}
	return NewTable(records[0], rows), nil
}

// WriteCSV writes the table as CSV, header first. Nil cells become empty
// fields; everything else uses its default string form.
func (t *Table) WriteCSV(w io.Writer) error {
	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write(t.Columns()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	fields := make([]string, len(t.Columns()))
	for _, record := range t.records {
		for i := range fields {
			fields[i] = ""
			if i < len(record) && record[i] != nil {
				fields[i] = formatField(record[i])
			}
		}
		if err := csvWriter.Write(fields); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// formatField renders one cell for CSV output.
func formatField(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}
