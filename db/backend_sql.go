package db

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// sqlCursorPageSize is the number of rows a cursor fetches per query.  Pages
// are read completely before the next statement runs, which keeps drivers
// that disallow concurrent result sets on one connection happy.
var sqlCursorPageSize = 512

// sqlDialect captures the differences between the supported SQL databases.
type sqlDialect struct {
	name        string
	blobType    string
	listTables  string
	placeholder func(n int) string
}

var (
	sqliteDialect = &sqlDialect{
		name:        "sqlite",
		blobType:    "BLOB",
		listTables:  `SELECT name FROM sqlite_master WHERE type = 'table'`,
		placeholder: func(_ int) string { return "?" },
	}

	postgresDialect = &sqlDialect{
		name:        "postgres",
		blobType:    "bytea",
		listTables:  `SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema()`,
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	}
)

func quoteIdent(name string) string {
	return `"` + strings.Replace(name, `"`, `""`, -1) + `"`
}

// sqlBackend stores every table as a two column (key, value) relation.  It
// is shared by the SQLite and PostgreSQL backends.
type sqlBackend struct {
	dialect *sqlDialect
	opts    *Options
	self    Backend
	db      *sql.DB
	known   map[string]struct{} // Tables which exist.
	mu      sync.Mutex
	knownMu sync.RWMutex
}

func newSQLBackend(dialect *sqlDialect, opts *Options) *sqlBackend {
	be := &sqlBackend{
		dialect: dialect,
		opts:    opts,
		known:   map[string]struct{}{},
	}
	return be
}

// open runs connect unless a connection is already established, then loads
// the table catalog and creates the graph tables when writable.
func (be *sqlBackend) open(connect func() (*sql.DB, error)) error {
	be.mu.Lock()
	defer be.mu.Unlock()

	if be.db != nil {
		return nil
	}

	db, err := connect()
	if err != nil {
		return err
	}

	if err := be.loadCatalog(db); err != nil {
		db.Close()
		return err
	}
	be.db = db

	if !be.opts.ReadOnly {
		if err := be.Update(func(tx Transaction) error {
			for _, table := range tables {
				if err := tx.(*sqlTx).ensureTable(table); err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
			be.db = nil
			return multierr.Append(fmt.Errorf("initDB: %s", err), db.Close())
		}
	}
	return nil
}

func (be *sqlBackend) loadCatalog(db *sql.DB) error {
	rows, err := db.Query(be.dialect.listTables)
	if err != nil {
		return fmt.Errorf("listing %v tables: %s", be.dialect.name, err)
	}
	defer rows.Close()

	be.knownMu.Lock()
	defer be.knownMu.Unlock()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		be.known[name] = struct{}{}
	}
	return rows.Err()
}

func (be *sqlBackend) isKnown(table string) bool {
	be.knownMu.RLock()
	defer be.knownMu.RUnlock()
	_, ok := be.known[table]
	return ok
}

func (be *sqlBackend) Close() error {
	be.mu.Lock()
	defer be.mu.Unlock()

	if be.db == nil {
		return nil
	}

	if err := be.db.Close(); err != nil {
		return err
	}

	be.db = nil

	return nil
}

func (be *sqlBackend) Get(table string, key []byte) ([]byte, error) {
	var v []byte
	if err := be.View(func(tx Transaction) error {
		var err error
		v, err = tx.Get(table, key)
		return err
	}); err != nil {
		return nil, err
	}
	return v, nil
}

func (be *sqlBackend) Put(table string, key []byte, value []byte) error {
	return be.Update(func(tx Transaction) error {
		return tx.Put(table, key, value)
	})
}

func (be *sqlBackend) Delete(table string, keys ...[]byte) error {
	return be.Update(func(tx Transaction) error {
		return tx.Delete(table, keys...)
	})
}

func (be *sqlBackend) Destroy(tables ...string) error {
	if err := be.Update(func(tx Transaction) error {
		sTx := tx.(*sqlTx)
		for _, table := range tables {
			if _, err := sTx.tx.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %s`, quoteIdent(table))); err != nil {
				return fmt.Errorf("dropping table %q: %s", table, err)
			}
		}
		return nil
	}); err != nil {
		return err
	}

	be.knownMu.Lock()
	for _, table := range tables {
		delete(be.known, table)
	}
	be.knownMu.Unlock()
	return nil
}

func (be *sqlBackend) Len(table string) (int, error) {
	if !be.isKnown(table) {
		return 0, nil
	}
	var n int64
	if err := be.db.QueryRow(fmt.Sprintf(`SELECT COUNT(*) FROM %s`, quoteIdent(table))).Scan(&n); err != nil {
		return 0, err
	}
	return int(n), nil
}

func (be *sqlBackend) Begin(writable bool) (Transaction, error) {
	if writable && be.opts.ReadOnly {
		return nil, ErrReadOnly
	}
	opts := &sql.TxOptions{
		ReadOnly: !writable,
	}
	tx, err := be.db.BeginTx(context.Background(), opts)
	if err != nil {
		return nil, err
	}
	sTx := &sqlTx{
		be:       be,
		tx:       tx,
		writable: writable,
		created:  map[string]struct{}{},
	}
	return sTx, nil
}

func (be *sqlBackend) View(fn func(tx Transaction) error) error {
	return be.withTx(false, fn)
}

func (be *sqlBackend) Update(fn func(tx Transaction) error) error {
	return be.withTx(true, fn)
}

func (be *sqlBackend) withTx(writable bool, fn func(tx Transaction) error) error {
	tx, err := be.Begin(writable)
	if err != nil {
		return fmt.Errorf("obtaining %v tx: %s", be.dialect.name, err)
	}
	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return multierr.Append(err, rbErr)
		}
		return err
	}
	if !writable {
		return tx.Rollback()
	}
	return tx.Commit()
}

func (be *sqlBackend) EachRow(table string, fn func(key []byte, value []byte)) error {
	return be.EachRowWithBreak(table, func(k []byte, v []byte) bool {
		fn(k, v)
		return true
	})
}

func (be *sqlBackend) EachRowWithBreak(table string, fn func(key []byte, value []byte) bool) error {
	return be.View(func(tx Transaction) error {
		c := tx.Cursor(table)
		defer c.Close()
		for k, v := c.First().Data(); k != nil; k, v = c.Next().Data() {
			if !fn(k, v) {
				break
			}
		}
		return c.Err()
	})
}

func (be *sqlBackend) EachTable(fn func(table string, tx Transaction) error) error {
	be.knownMu.RLock()
	names := make([]string, 0, len(be.known))
	for name := range be.known {
		names = append(names, name)
	}
	be.knownMu.RUnlock()
	sort.Strings(names)

	return be.View(func(tx Transaction) error {
		for _, name := range names {
			if err := fn(name, tx); err != nil {
				return err
			}
		}
		return nil
	})
}

type sqlTx struct {
	be       *sqlBackend
	tx       *sql.Tx
	writable bool
	created  map[string]struct{} // Tables created by this transaction.
}

func (sTx *sqlTx) exists(table string) bool {
	if _, ok := sTx.created[table]; ok {
		return true
	}
	return sTx.be.isKnown(table)
}

func (sTx *sqlTx) ensureTable(table string) error {
	if sTx.exists(table) {
		return nil
	}
	if !sTx.writable {
		return ErrReadOnly
	}
	q := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s ("key" %s PRIMARY KEY, "value" %s NOT NULL)`,
		quoteIdent(table),
		sTx.be.dialect.blobType,
		sTx.be.dialect.blobType,
	)
	if _, err := sTx.tx.Exec(q); err != nil {
		return fmt.Errorf("creating table %q: %s", table, err)
	}
	sTx.created[table] = struct{}{}
	return nil
}

func (sTx *sqlTx) Get(table string, key []byte) ([]byte, error) {
	if !sTx.exists(table) {
		return nil, ErrKeyNotFound
	}
	var (
		q = fmt.Sprintf(`SELECT "value" FROM %s WHERE "key" = %s`, quoteIdent(table), sTx.be.dialect.placeholder(1))
		v []byte
	)
	if err := sTx.tx.QueryRow(q, key).Scan(&v); err == sql.ErrNoRows {
		return nil, ErrKeyNotFound
	} else if err != nil {
		return nil, err
	}
	if v == nil {
		v = []byte{}
	}
	return v, nil
}

func (sTx *sqlTx) Put(table string, key []byte, value []byte) error {
	if !sTx.writable {
		return ErrReadOnly
	}
	if err := sTx.ensureTable(table); err != nil {
		return err
	}
	if value == nil {
		value = []byte{}
	}
	q := fmt.Sprintf(
		`INSERT INTO %s ("key", "value") VALUES (%s, %s) ON CONFLICT ("key") DO UPDATE SET "value" = excluded."value"`,
		quoteIdent(table),
		sTx.be.dialect.placeholder(1),
		sTx.be.dialect.placeholder(2),
	)
	if _, err := sTx.tx.Exec(q, key, value); err != nil {
		return err
	}
	return nil
}

func (sTx *sqlTx) Delete(table string, keys ...[]byte) error {
	if !sTx.writable {
		return ErrReadOnly
	}
	if !sTx.exists(table) {
		return nil
	}
	q := fmt.Sprintf(`DELETE FROM %s WHERE "key" = %s`, quoteIdent(table), sTx.be.dialect.placeholder(1))
	for _, key := range keys {
		if _, err := sTx.tx.Exec(q, key); err != nil {
			return err
		}
	}
	return nil
}

func (sTx *sqlTx) Commit() error {
	if err := sTx.tx.Commit(); err != nil {
		return err
	}
	if len(sTx.created) > 0 {
		sTx.be.knownMu.Lock()
		for table := range sTx.created {
			sTx.be.known[table] = struct{}{}
		}
		sTx.be.knownMu.Unlock()
	}
	return nil
}

func (sTx *sqlTx) Rollback() error {
	if err := sTx.tx.Rollback(); err != nil && err != sql.ErrTxDone {
		return err
	}
	return nil
}

func (sTx *sqlTx) Backend() Backend {
	return sTx.be.self
}

func (sTx *sqlTx) Cursor(table string) Cursor {
	c := &sqlCursor{
		sTx:   sTx,
		table: table,
	}
	return c
}

type sqlRow struct {
	k []byte
	v []byte
}

// sqlCursor walks a table in key order one page at a time.
type sqlCursor struct {
	sTx   *sqlTx
	table string
	page  []sqlRow
	pos   int
	done  bool // No rows remain beyond the current page.
	err   error
}

func (c *sqlCursor) First() Cursor {
	c.load(`SELECT "key", "value" FROM %s ORDER BY "key" ASC LIMIT %d`)
	return c
}

func (c *sqlCursor) Next() Cursor {
	if c.pos >= len(c.page) {
		return c
	}
	c.pos++
	if c.pos == len(c.page) && !c.done {
		last := c.page[len(c.page)-1].k
		c.load(`SELECT "key", "value" FROM %s WHERE "key" > %s ORDER BY "key" ASC LIMIT %d`, last)
	}
	return c
}

func (c *sqlCursor) Seek(key []byte) Cursor {
	c.load(`SELECT "key", "value" FROM %s WHERE "key" >= %s ORDER BY "key" ASC LIMIT %d`, key)
	return c
}

// load replaces the current page with the result of query, which is a format
// string taking the quoted table name, an optional placeholder and the limit.
func (c *sqlCursor) load(query string, args ...interface{}) {
	c.page, c.pos, c.done = nil, 0, true
	if c.err != nil || !c.sTx.exists(c.table) {
		return
	}

	var q string
	if len(args) > 0 {
		q = fmt.Sprintf(query, quoteIdent(c.table), c.sTx.be.dialect.placeholder(1), sqlCursorPageSize)
	} else {
		q = fmt.Sprintf(query, quoteIdent(c.table), sqlCursorPageSize)
	}

	rows, err := c.sTx.tx.Query(q, args...)
	if err != nil {
		c.err = err
		log.WithField("table", c.table).Errorf("SQL cursor query failed: %s", err)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var row sqlRow
		if err := rows.Scan(&row.k, &row.v); err != nil {
			c.err = err
			return
		}
		if row.v == nil {
			row.v = []byte{}
		}
		c.page = append(c.page, row)
	}
	if err := rows.Err(); err != nil {
		c.err = err
		return
	}
	c.done = len(c.page) < sqlCursorPageSize
}

func (c *sqlCursor) Data() (key []byte, value []byte) {
	if c.pos >= len(c.page) {
		return nil, nil
	}
	row := c.page[c.pos]
	return row.k, row.v
}

func (c *sqlCursor) Close() {
	c.page = nil
	c.pos = 0
}

func (c *sqlCursor) Err() error {
	return c.err
}
