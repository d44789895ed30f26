package sqlitable

import (
	"io"
	"log/slog"
)

// Options configures a connector. The zero value is not useful; start from
// NewOptions and chain the With* setters.
//
// Example:
//
//	opts := sqlitable.NewOptions().
//		WithQueryBatchSize(5000).
//		WithSpillCompression(true)
//
//	db, err := sqlitable.New("data.db", opts)
type Options struct {
	// QueryBatchSize is the number of result rows fetched per batch while
	// spilling a query result to disk
	QueryBatchSize int
	// ChunkSize is the default number of rows per INSERT statement for Copy
	ChunkSize int
	// SpillCompression enables zstd compression of spill files
	SpillCompression bool
	// TempDir is the directory for spill files and throwaway databases;
	// empty means the system temp directory
	TempDir string
	// Logger receives the connector's info/debug output; nil discards
	Logger *slog.Logger
}

// NewOptions creates default connector options.
func NewOptions() Options {
	return Options{
		QueryBatchSize: DefaultQueryBatchSize,
		ChunkSize:      DefaultChunkSize,
	}
}

// WithQueryBatchSize sets the result-row fetch batch size.
func (o Options) WithQueryBatchSize(n int) Options {
	if n > 0 {
		o.QueryBatchSize = n
	}
	return o
}

// WithChunkSize sets the default rows-per-INSERT chunk size for Copy.
func (o Options) WithChunkSize(n int) Options {
	if n >= MinChunkSize {
		o.ChunkSize = n
	}
	return o
}

// WithSpillCompression toggles zstd compression of spill files.
func (o Options) WithSpillCompression(enabled bool) Options {
	o.SpillCompression = enabled
	return o
}

// WithTempDir sets the directory for spill files and throwaway databases.
func (o Options) WithTempDir(dir string) Options {
	o.TempDir = dir
	return o
}

// WithLogger sets the connector's logger.
func (o Options) WithLogger(logger *slog.Logger) Options {
	o.Logger = logger
	return o
}

// logger returns the configured logger or a discarding one.
func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
