// Package sqlitable connects an in-memory tabular container to an embedded
// SQLite database file. It executes SQL against the file, streams query
// results through a typed spill file into a lazy row view, and generates
// CREATE TABLE / INSERT statements by inferring column types from table
// contents.
//
// sqlitable uses the pure-Go SQLite driver (modernc.org/sqlite), so no cgo
// is required. Each top-level call opens and closes its own connection;
// nothing is pooled or reused across calls.
//
// # Basic Usage
//
//	db, err := sqlitable.New("people.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tbl := sqlitable.NewTable(
//	    []string{"name", "age"},
//	    []sqlitable.Record{{"Alice", int64(30)}, {"Bob", int64(25)}},
//	)
//	if err := db.Copy(tbl, "people", sqlitable.IfExistsFail, 1000); err != nil {
//	    log.Fatal(err)
//	}
//
//	rows, err := db.Query("SELECT * FROM people WHERE age > 26")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, err := rows.Table()
//
// # Query Results
//
// Query returns a *Rows view backed by a temporary spill file. The first
// record in the spill file is always the column-name header; data rows keep
// the native type of every field (INTEGER columns come back as int64, REAL
// as float64, and so on). A statement that produces no result columns
// returns (nil, nil).
//
// # Writing Tables
//
// Copy creates the destination table when needed, inferring a column type
// for every column by widening over all observed values
// (INTEGER -> REAL -> TEXT), then inserts rows in fixed-size chunks. The
// if-exists policy is one of "fail", "append", or "drop".
//
// # Loading Tables From Files
//
// LoadTable reads a CSV or TSV file (optionally gzip, bzip2, xz, or zstd
// compressed) into a Table so it can be copied into the database:
//
//	tbl, err := sqlitable.LoadTable("users.csv.gz")
//
// Since sqlitable uses SQLite as its engine, all SQL syntax follows the
// SQLite dialect: https://www.sqlite.org/lang.html
package sqlitable
