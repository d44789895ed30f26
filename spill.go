package sqlitable

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
)

// Spill file layout: one JSON value per line. The first line is the header
// (an array of column names), every following line is one row encoded as an
// array of tagged cells. The tag keeps per-value type fidelity across the
// round trip, which plain JSON arrays would lose.
const (
	cellTagNull    = "n"
	cellTagInteger = "i"
	cellTagReal    = "f"
	cellTagString  = "s"
	cellTagBlob    = "b"
)

// spillCell is the typed envelope for one field value.
type spillCell struct {
	T string `json:"t"`
	V string `json:"v,omitempty"`
}

// encodeCell converts a driver value into its envelope.
func encodeCell(value any) (spillCell, error) {
	switch v := value.(type) {
	case nil:
		return spillCell{T: cellTagNull}, nil
	case int64:
		return spillCell{T: cellTagInteger, V: strconv.FormatInt(v, 10)}, nil
	case int:
		return spillCell{T: cellTagInteger, V: strconv.Itoa(v)}, nil
	case bool:
		if v {
			return spillCell{T: cellTagInteger, V: "1"}, nil
		}
		return spillCell{T: cellTagInteger, V: "0"}, nil
	case float64:
		return spillCell{T: cellTagReal, V: strconv.FormatFloat(v, 'g', -1, 64)}, nil
	case string:
		return spillCell{T: cellTagString, V: v}, nil
	case []byte:
		return spillCell{T: cellTagBlob, V: base64.StdEncoding.EncodeToString(v)}, nil
	case time.Time:
		// Declared datetime columns scan as time.Time; store the SQLite
		// text representation.
		return spillCell{T: cellTagString, V: v.Format(time.RFC3339Nano)}, nil
	default:
		return spillCell{}, fmt.Errorf("sqlitable: cannot spill value of type %T", value)
	}
}

// decodeCell converts an envelope back into the driver value it came from.
func decodeCell(c spillCell) (any, error) {
	switch c.T {
	case cellTagNull:
		return nil, nil
	case cellTagInteger:
		return strconv.ParseInt(c.V, 10, 64)
	case cellTagReal:
		return strconv.ParseFloat(c.V, 64)
	case cellTagString:
		return c.V, nil
	case cellTagBlob:
		return base64.StdEncoding.DecodeString(c.V)
	default:
		return nil, fmt.Errorf("sqlitable: unknown spill cell tag %q", c.T)
	}
}

// spillWriter serializes one header and a stream of rows to a temp file.
type spillWriter struct {
	file *os.File
	zw   *zstd.Encoder
	enc  *json.Encoder
}

// newSpillWriter creates a fresh spill file in the configured temp dir.
func newSpillWriter(opts Options) (*spillWriter, error) {
	file, err := os.CreateTemp(opts.TempDir, "sqlitable-*.spill")
	if err != nil {
		return nil, fmt.Errorf("failed to create spill file: %w", err)
	}

	w := &spillWriter{file: file}
	if opts.SpillCompression {
		zw, err := zstd.NewWriter(file)
		if err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		w.zw = zw
		w.enc = json.NewEncoder(zw)
	} else {
		w.enc = json.NewEncoder(file)
	}
	return w, nil
}

func (w *spillWriter) path() string {
	return w.file.Name()
}

func (w *spillWriter) writeHeader(columns []string) error {
	if err := w.enc.Encode(columns); err != nil {
		return fmt.Errorf("failed to write spill header: %w", err)
	}
	return nil
}

func (w *spillWriter) writeRow(record Record) error {
	cells := make([]spillCell, len(record))
	for i, value := range record {
		cell, err := encodeCell(value)
		if err != nil {
			return err
		}
		cells[i] = cell
	}
	if err := w.enc.Encode(cells); err != nil {
		return fmt.Errorf("failed to write spill row: %w", err)
	}
	return nil
}

func (w *spillWriter) close() error {
	if w.zw != nil {
		if err := w.zw.Close(); err != nil {
			_ = w.file.Close()
			return fmt.Errorf("failed to flush spill file: %w", err)
		}
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("failed to close spill file: %w", err)
	}
	return nil
}

// spillReader replays a spill file: header first, then rows until io.EOF.
type spillReader struct {
	file   *os.File
	zr     *zstd.Decoder
	dec    *json.Decoder
	header Header
}

func openSpill(path string, compressed bool) (*spillReader, error) {
	file, err := os.Open(path) //nolint:gosec // Spill path was created by this package
	if err != nil {
		return nil, fmt.Errorf("failed to open spill file: %w", err)
	}

	r := &spillReader{file: file}
	if compressed {
		zr, err := zstd.NewReader(file)
		if err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		r.zr = zr
		r.dec = json.NewDecoder(zr)
	} else {
		r.dec = json.NewDecoder(file)
	}

	var columns []string
	if err := r.dec.Decode(&columns); err != nil {
		r.close()
		return nil, fmt.Errorf("failed to read spill header: %w", err)
	}
	r.header = newHeader(columns)
	return r, nil
}

// next returns the following row, or io.EOF when the stream is exhausted.
func (r *spillReader) next() (Record, error) {
	var cells []spillCell
	if err := r.dec.Decode(&cells); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to read spill row: %w", err)
	}

	record := make(Record, len(cells))
	for i, cell := range cells {
		value, err := decodeCell(cell)
		if err != nil {
			return nil, err
		}
		record[i] = value
	}
	return record, nil
}

func (r *spillReader) close() {
	if r.zr != nil {
		r.zr.Close()
	}
	_ = r.file.Close()
}

// Rows is a lazy view over a query result spilled to disk. Nothing is read
// until Columns, Each, or Table is called; the backing file is left to
// ambient temp-file cleanup.
type Rows struct {
	path       string
	compressed bool
	header     Header
}

// Path returns the location of the backing spill file.
func (r *Rows) Path() string {
	return r.path
}

// Columns returns the column names of the result.
func (r *Rows) Columns() ([]string, error) {
	if r.header != nil {
		return []string(r.header), nil
	}
	sr, err := openSpill(r.path, r.compressed)
	if err != nil {
		return nil, err
	}
	defer sr.close()
	r.header = sr.header
	return []string(r.header), nil
}

// Each streams every row through fn in order, stopping at the first error.
func (r *Rows) Each(fn func(Record) error) error {
	sr, err := openSpill(r.path, r.compressed)
	if err != nil {
		return err
	}
	defer sr.close()
	r.header = sr.header

	for {
		record, err := sr.next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(record); err != nil {
			return err
		}
	}
}

// Table materializes the whole result into memory.
func (r *Rows) Table() (*Table, error) {
	columns, err := r.Columns()
	if err != nil {
		return nil, err
	}

	tbl := NewTable(columns, nil)
	if err := r.Each(func(record Record) error {
		tbl.Append(record)
		return nil
	}); err != nil {
		return nil, err
	}
	return tbl, nil
}
