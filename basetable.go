package sqlitable

import (
	"context"
	"fmt"
)

// TableHandle binds a connector to one table name for later operations.
// Construction performs no I/O.
type TableHandle struct {
	db   *DB
	name string
}

// Table returns a handle for the named table.
func (c *DB) Table(tableName string) *TableHandle {
	return &TableHandle{db: c, name: tableName}
}

// Name returns the table name the handle is bound to.
func (h *TableHandle) Name() string {
	return h.name
}

// Exists reports whether the table exists.
func (h *TableHandle) Exists() (bool, error) {
	return h.db.TableExists(h.name)
}

// NumRows counts the table's rows.
func (h *TableHandle) NumRows(ctx context.Context) (int64, error) {
	conn, err := h.db.ConnectionContext(ctx)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = conn.Close()
	}()

	var count int64
	if err := conn.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+h.name).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows of %s: %w", h.name, err)
	}
	return count, nil
}

// Drop removes the table.
func (h *TableHandle) Drop(ctx context.Context) error {
	conn, err := h.db.ConnectionContext(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = conn.Close()
	}()
	_, err = h.db.QueryWithConnection(ctx, conn, "DROP TABLE "+h.name, nil, true)
	return err
}

// Truncate deletes all rows, keeping the table.
func (h *TableHandle) Truncate(ctx context.Context) error {
	conn, err := h.db.ConnectionContext(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = conn.Close()
	}()
	_, err = h.db.QueryWithConnection(ctx, conn, "DELETE FROM "+h.name, nil, true)
	return err
}

// Rows returns a lazy view over the whole table.
func (h *TableHandle) Rows(ctx context.Context) (*Rows, error) {
	return h.db.QueryContext(ctx, "SELECT * FROM "+h.name)
}
