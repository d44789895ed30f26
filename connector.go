package sqlitable

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// driverName is the database/sql driver name registered by modernc.org/sqlite.
const driverName = "sqlite"

// DB is a connector bound to one SQLite database file. Every top-level call
// opens and closes its own connection, so temporary in-memory semantics are
// not durable across calls; the file on disk is the persisted state.
type DB struct {
	file   string
	opts   Options
	logger *slog.Logger
}

// New creates a connector for the given database file. An empty path
// creates a throwaway temp file that lives for the process lifetime.
func New(file string, opts ...Options) (*DB, error) {
	o := NewOptions()
	if len(opts) > 0 {
		o = opts[0]
	}

	if file == "" {
		f, err := os.CreateTemp(o.TempDir, "sqlitable-*.db")
		if err != nil {
			return nil, fmt.Errorf("failed to create temp database file: %w", err)
		}
		if err := f.Close(); err != nil {
			return nil, fmt.Errorf("failed to close temp database file: %w", err)
		}
		file = f.Name()
	}

	return &DB{
		file:   file,
		opts:   o,
		logger: o.logger(),
	}, nil
}

// File returns the database file path.
func (c *DB) File() string {
	return c.file
}

// Connection is a one-shot handle to the database file. Statements executed
// with commit=false run inside a single transaction that is rolled back by
// Close unless Commit is called first; statements executed with commit=true
// are committed as they run, and also commit any transaction the connection
// has open at that point.
type Connection struct {
	db     *sql.DB
	tx     *sql.Tx
	closed bool
}

// Connection opens a fresh handle to the database file. The caller must
// close it; Close rolls back any open transaction unconditionally.
func (c *DB) Connection() (*Connection, error) {
	return c.ConnectionContext(context.Background())
}

// ConnectionContext opens a fresh handle, verifying the file is reachable.
func (c *DB) ConnectionContext(ctx context.Context) (*Connection, error) {
	db, err := sql.Open(driverName, c.file)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", c.file, err)
	}
	// One underlying connection so uncommitted statements stay visible to
	// each other, matching a single database handle.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to reach database %s: %w", c.file, err)
	}
	return &Connection{db: db}, nil
}

// begin lazily starts the connection's transaction.
func (conn *Connection) begin(ctx context.Context) (*sql.Tx, error) {
	if conn.tx == nil {
		tx, err := conn.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to begin transaction: %w", err)
		}
		conn.tx = tx
	}
	return conn.tx, nil
}

// Commit commits the open transaction, if any.
func (conn *Connection) Commit() error {
	if conn.tx == nil {
		return nil
	}
	err := conn.tx.Commit()
	conn.tx = nil
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Rollback rolls back the open transaction, if any.
func (conn *Connection) Rollback() error {
	if conn.tx == nil {
		return nil
	}
	err := conn.tx.Rollback()
	conn.tx = nil
	if err != nil {
		return fmt.Errorf("failed to rollback: %w", err)
	}
	return nil
}

// Close rolls back any uncommitted transaction and releases the handle.
// It is unconditional: safe on both the success and failure paths.
func (conn *Connection) Close() error {
	if conn.closed {
		return nil
	}
	conn.closed = true
	rollbackErr := conn.Rollback()
	closeErr := conn.db.Close()
	return errors.Join(rollbackErr, closeErr)
}

// exec runs one statement. With commit it runs in autocommit mode so the
// statement is durable immediately; without it the statement joins the
// connection's transaction. An open transaction pins the pool's single
// connection, so it is committed before an autocommit statement runs.
func (conn *Connection) exec(ctx context.Context, stmt string, params []any, commit bool) error {
	if conn.closed {
		return ErrConnectionClosed
	}
	if commit {
		if err := conn.Commit(); err != nil {
			return err
		}
		_, err := conn.db.ExecContext(ctx, stmt, params...)
		return err
	}
	tx, err := conn.begin(ctx)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, stmt, params...)
	return err
}

// query runs one statement that may return rows. The same transaction
// handling as exec applies.
func (conn *Connection) query(ctx context.Context, stmt string, params []any, commit bool) (*sql.Rows, error) {
	if conn.closed {
		return nil, ErrConnectionClosed
	}
	if commit {
		if err := conn.Commit(); err != nil {
			return nil, err
		}
		return conn.db.QueryContext(ctx, stmt, params...)
	}
	tx, err := conn.begin(ctx)
	if err != nil {
		return nil, err
	}
	return tx.QueryContext(ctx, stmt, params...)
}

// Query executes sql against the database on a fresh connection and returns
// a lazy Rows view, or (nil, nil) when the final statement produces no
// result columns.
func (c *DB) Query(query string, params ...any) (*Rows, error) {
	return c.QueryContext(context.Background(), query, params...)
}

// QueryContext is Query with a caller-supplied context.
func (c *DB) QueryContext(ctx context.Context, query string, params ...any) (*Rows, error) {
	conn, err := c.ConnectionContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = conn.Close()
	}()
	return c.QueryWithConnection(ctx, conn, query, params, true)
}

// QueryWithConnection executes sql against an existing connection. The sql
// string is split on ";" into individual statements (empty fragments are
// skipped) which execute in order; each statement is committed as it runs
// when commit is true, otherwise all of them join the connection's
// transaction. Parameters are bound to the final statement only, so the
// parameterized statement of a multi-statement string must come last.
//
// If the final statement produces no result columns the call returns
// (nil, nil). Otherwise its rows are fetched in batches of QueryBatchSize
// and spilled to a temp file backing the returned Rows view.
func (c *DB) QueryWithConnection(ctx context.Context, conn *Connection, query string, params []any, commit bool) (*Rows, error) {
	stmts := splitStatements(query)
	if len(stmts) == 0 {
		return nil, nil
	}

	for _, stmt := range stmts[:len(stmts)-1] {
		c.logger.DebugContext(ctx, "executing statement", slog.String("sql", stmt))
		if err := conn.exec(ctx, stmt, nil, commit); err != nil {
			return nil, fmt.Errorf("failed to execute %q: %w", stmt, err)
		}
	}

	last := stmts[len(stmts)-1]
	c.logger.DebugContext(ctx, "executing statement", slog.String("sql", last))
	rows, err := conn.query(ctx, last, params, commit)
	if err != nil {
		return nil, fmt.Errorf("failed to execute %q: %w", last, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}
	if len(columns) == 0 {
		// Statement produced no result set; drain so the statement runs to
		// completion before the rows handle closes.
		for rows.Next() {
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
		c.logger.DebugContext(ctx, "query returned no result columns")
		return nil, nil
	}

	return c.spillRows(ctx, rows, columns)
}

// spillRows streams a result set into a fresh spill file and wraps it in a
// lazy Rows view. The header is always the first record, even for results
// that turn out to have zero data rows.
func (c *DB) spillRows(ctx context.Context, rows *sql.Rows, columns []string) (*Rows, error) {
	writer, err := newSpillWriter(c.opts)
	if err != nil {
		return nil, err
	}
	if err := writer.writeHeader(columns); err != nil {
		_ = writer.close()
		return nil, err
	}

	batchSize := c.opts.QueryBatchSize
	if batchSize <= 0 {
		batchSize = DefaultQueryBatchSize
	}

	fetched := 0
	values := make([]any, len(columns))
	pointers := make([]any, len(columns))
	for i := range values {
		pointers[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(pointers...); err != nil {
			_ = writer.close()
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		record := make(Record, len(columns))
		copy(record, values)
		if err := writer.writeRow(record); err != nil {
			_ = writer.close()
			return nil, err
		}
		fetched++
		if fetched%batchSize == 0 {
			c.logger.DebugContext(ctx, "fetched rows", slog.Int("count", fetched))
		}
	}
	if err := rows.Err(); err != nil {
		_ = writer.close()
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	if err := writer.close(); err != nil {
		return nil, err
	}

	if fetched == 0 {
		// No data rows: drop the header-only spill file and hand back the
		// explicit no-rows signal.
		_ = os.Remove(writer.path())
		c.logger.DebugContext(ctx, "query returned 0 rows")
		return nil, nil
	}

	c.logger.DebugContext(ctx, "query result spilled",
		slog.Int("rows", fetched), slog.String("file", writer.path()))

	return &Rows{
		path:       writer.path(),
		compressed: c.opts.SpillCompression,
		header:     newHeader(columns),
	}, nil
}

// Copy writes a table to the database: a create-table precheck (which may
// emit DDL), then one INSERT statement per chunk of chunkSize rows, all on
// a single connection. An empty input table is logged and skipped.
func (c *DB) Copy(tbl *Table, tableName string, ifExists IfExists, chunkSize int) error {
	return c.CopyContext(context.Background(), tbl, tableName, ifExists, chunkSize)
}

// CopyContext is Copy with a caller-supplied context.
func (c *DB) CopyContext(ctx context.Context, tbl *Table, tableName string, ifExists IfExists, chunkSize int) error {
	if tbl == nil || tbl.NumRows() == 0 {
		c.logger.InfoContext(ctx, "input table is empty, table will not be created",
			slog.String("table", tableName))
		return nil
	}
	if chunkSize < MinChunkSize {
		chunkSize = c.opts.ChunkSize
	}

	conn, err := c.ConnectionContext(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = conn.Close()
	}()

	needsCreation, err := c.createTablePrecheck(ctx, conn, tableName, ifExists)
	if err != nil {
		return err
	}
	if needsCreation {
		ddl, err := CreateStatement(tbl, tableName)
		if err != nil {
			return err
		}
		if _, err := c.QueryWithConnection(ctx, conn, ddl, nil, true); err != nil {
			return err
		}
		c.logger.InfoContext(ctx, "table created", slog.String("table", tableName))
	}

	for _, chunk := range tbl.Chunk(chunkSize) {
		stmt, err := insertStatement(chunk, tableName)
		if err != nil {
			return err
		}
		if _, err := c.QueryWithConnection(ctx, conn, stmt, nil, true); err != nil {
			return err
		}
	}
	return nil
}

// createTablePrecheck decides what to do about a destination table that may
// already exist. It reports whether the table still needs to be created.
func (c *DB) createTablePrecheck(ctx context.Context, conn *Connection, tableName string, ifExists IfExists) (bool, error) {
	if err := ifExists.Validate(); err != nil {
		return false, err
	}

	exists, err := c.tableExistsWithConnection(ctx, conn, tableName)
	if err != nil {
		return false, err
	}
	if !exists {
		return true, nil
	}

	switch ifExists {
	case IfExistsFail:
		return false, fmt.Errorf("table %s: %w", tableName, ErrTableExists)
	case IfExistsDrop:
		if _, err := c.QueryWithConnection(ctx, conn, "DROP TABLE "+tableName, nil, true); err != nil {
			return false, err
		}
		c.logger.InfoContext(ctx, "table dropped", slog.String("table", tableName))
		return true, nil
	default: // IfExistsAppend: rows simply append
		return false, nil
	}
}

// insertStatement renders one multi-row INSERT for a table chunk. Values
// are rendered as quoted SQL literals; single-column tables render each
// value unwrapped in parentheses.
func insertStatement(chunk *Table, tableName string) (string, error) {
	columns := chunk.Columns()
	if len(columns) == 0 {
		return "", fmt.Errorf("insert into %s: %w", tableName, ErrEmptyTable)
	}

	values := make([]string, 0, chunk.NumRows())
	for _, record := range chunk.Records() {
		if len(record) != len(columns) {
			return "", fmt.Errorf("sqlitable: row has %d fields, table has %d columns", len(record), len(columns))
		}
		if len(columns) == 1 {
			values = append(values, "("+sqlLiteral(record[0])+")")
			continue
		}
		literals := make([]string, len(record))
		for i, value := range record {
			literals[i] = sqlLiteral(value)
		}
		values = append(values, "("+strings.Join(literals, ",")+")")
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s;",
		tableName, strings.Join(columns, ","), strings.Join(values, ",")), nil
}

// sqlLiteral renders one value as a SQLite literal. Strings are quoted with
// doubled single quotes, blobs use hex notation, nil becomes NULL.
func sqlLiteral(value any) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case bool:
		if v {
			return "1"
		}
		return "0"
	case int:
		return strconv.Itoa(v)
	case int8:
		return strconv.FormatInt(int64(v), 10)
	case int16:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	case []byte:
		return "X'" + hex.EncodeToString(v) + "'"
	case time.Time:
		return "'" + v.Format(time.RFC3339Nano) + "'"
	default:
		return "'" + strings.ReplaceAll(fmt.Sprint(v), "'", "''") + "'"
	}
}

// TableExists reports whether a table with the given name exists, using a
// case-insensitive match against the system catalog.
func (c *DB) TableExists(tableName string) (bool, error) {
	return c.TableExistsContext(context.Background(), tableName)
}

// TableExistsContext is TableExists with a caller-supplied context.
func (c *DB) TableExistsContext(ctx context.Context, tableName string) (bool, error) {
	conn, err := c.ConnectionContext(ctx)
	if err != nil {
		return false, err
	}
	defer func() {
		_ = conn.Close()
	}()
	return c.tableExistsWithConnection(ctx, conn, tableName)
}

func (c *DB) tableExistsWithConnection(ctx context.Context, conn *Connection, tableName string) (bool, error) {
	var name string
	err := conn.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type='table' AND name LIKE ?`,
		tableName,
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check table existence: %w", err)
	}
	return true, nil
}

// splitStatements breaks a multi-statement SQL string on ";" and drops
// empty fragments.
func splitStatements(query string) []string {
	parts := strings.Split(query, ";")
	stmts := make([]string, 0, len(parts))
	for _, part := range parts {
		if s := strings.TrimSpace(part); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
