package db

import (
	"fmt"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"
	log "github.com/sirupsen/logrus"
)

// badgerTableSep separates the table name from the key.  Badger has a single
// flat keyspace so tables are emulated with key prefixes.
const badgerTableSep = '\x00'

type BadgerConfig struct {
	Options

	Dir        string
	SyncWrites bool
}

func NewBadgerConfig(dir string) *BadgerConfig {
	cfg := &BadgerConfig{
		Options: Options{
			OpenRetries: DefaultOpenRetries,
		},
		Dir: dir,
	}
	return cfg
}

func (cfg BadgerConfig) Type() Type {
	return Badger
}

func (cfg *BadgerConfig) Common() *Options {
	return &cfg.Options
}

func (cfg BadgerConfig) Location() string {
	return cfg.Dir
}

// badgerLogger routes badger's internal logging through logrus.  Badger is
// chatty at info level so those messages are demoted to debug.
type badgerLogger struct {
	entry *log.Entry
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}

type BadgerBackend struct {
	config *BadgerConfig
	db     *badger.DB
	mu     sync.Mutex
}

func NewBadgerBackend(config *BadgerConfig) *BadgerBackend {
	be := &BadgerBackend{
		config: config,
	}
	return be
}

func (be *BadgerBackend) Open() error {
	be.mu.Lock()
	defer be.mu.Unlock()

	if be.db != nil {
		return nil
	}

	if err := checkExists(&be.config.Options, be.config.Dir); err != nil {
		return err
	}
	if !be.config.ReadOnly {
		if err := os.MkdirAll(be.config.Dir, os.FileMode(int(0700))); err != nil {
			return fmt.Errorf("creating badger directory %q: %s", be.config.Dir, err)
		}
	}

	opts := badger.DefaultOptions(be.config.Dir).
		WithSyncWrites(be.config.SyncWrites).
		WithReadOnly(be.config.ReadOnly).
		WithNumVersionsToKeep(1).
		WithLogger(&badgerLogger{entry: log.WithField("backend", "badger")})

	db, err := badger.Open(opts)
	if err != nil {
		return err
	}
	be.db = db

	log.WithField("dir", be.config.Dir).WithField("read-only", be.config.ReadOnly).Debug("Opened badger backend")
	return nil
}

func (be *BadgerBackend) Close() error {
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

func (be *BadgerBackend) New(name string) (Backend, error) {
	cfg := NewBadgerConfig(name)
	cfg.OpenRetries = be.config.OpenRetries
	cfg.SyncWrites = be.config.SyncWrites
	return NewBadgerBackend(cfg), nil
}

func (be *BadgerBackend) Get(table string, key []byte) ([]byte, error) {
	var v []byte
	if err := be.View(func(tx Transaction) error {
		var err error
		if v, err = tx.Get(table, key); err != nil {
			return err
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return v, nil
}

func (be *BadgerBackend) Put(table string, key []byte, value []byte) error {
	return be.Update(func(tx Transaction) error {
		return tx.Put(table, key, value)
	})
}

func (be *BadgerBackend) Delete(table string, keys ...[]byte) error {
	return be.Update(func(tx Transaction) error {
		return tx.Delete(table, keys...)
	})
}

func (be *BadgerBackend) Destroy(tables ...string) error {
	if be.config.ReadOnly {
		return ErrReadOnly
	}
	prefixes := make([][]byte, 0, len(tables))
	for _, table := range tables {
		prefixes = append(prefixes, badgerTablePrefix(table))
	}
	if len(prefixes) == 0 {
		return nil
	}
	return be.db.DropPrefix(prefixes...)
}

func (be *BadgerBackend) Len(table string) (int, error) {
	var n int
	if err := be.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = badgerTablePrefix(table)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	}); err != nil {
		return 0, err
	}
	return n, nil
}

func (be *BadgerBackend) Begin(writable bool) (Transaction, error) {
	if writable && be.config.ReadOnly {
		return nil, ErrReadOnly
	}
	bTx := &badgerTx{
		be:       be,
		txn:      be.db.NewTransaction(writable),
		writable: writable,
	}
	return bTx, nil
}

func (be *BadgerBackend) View(fn func(tx Transaction) error) error {
	tx, err := be.Begin(false)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	return fn(tx)
}

func (be *BadgerBackend) Update(fn func(tx Transaction) error) error {
	tx, err := be.Begin(true)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (be *BadgerBackend) EachRow(table string, fn func(key []byte, value []byte)) error {
	return be.EachRowWithBreak(table, func(k []byte, v []byte) bool {
		fn(k, v)
		return true
	})
}

func (be *BadgerBackend) EachRowWithBreak(table string, fn func(key []byte, value []byte) bool) error {
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

// EachTable visits every graph table holding at least one key.
func (be *BadgerBackend) EachTable(fn func(table string, tx Transaction) error) error {
	return be.View(func(tx Transaction) error {
		for _, table := range tables {
			c := tx.Cursor(table)
			k, _ := c.First().Data()
			err := c.Err()
			c.Close()
			if err != nil {
				return err
			}
			if k == nil {
				continue
			}
			if err := fn(table, tx); err != nil {
				return err
			}
		}
		return nil
	})
}

func badgerTablePrefix(table string) []byte {
	prefix := make([]byte, 0, len(table)+1)
	prefix = append(prefix, table...)
	return append(prefix, badgerTableSep)
}

func badgerKey(table string, key []byte) []byte {
	k := badgerTablePrefix(table)
	return append(k, key...)
}

type badgerTx struct {
	be       *BadgerBackend
	txn      *badger.Txn
	writable bool
}

func (bTx *badgerTx) Get(table string, key []byte) ([]byte, error) {
	item, err := bTx.txn.Get(badgerKey(table, key))
	if err == badger.ErrKeyNotFound {
		return nil, ErrKeyNotFound
	} else if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

// Put stages a write.  When the transaction outgrows badger's limits the
// pending writes are committed and a fresh transaction takes over, so very
// large batches are applied in several steps.
func (bTx *badgerTx) Put(table string, key []byte, value []byte) error {
	if !bTx.writable {
		return ErrReadOnly
	}
	k := badgerKey(table, key)
	err := bTx.txn.Set(k, value)
	if err == badger.ErrTxnTooBig {
		if err = bTx.flush(); err != nil {
			return err
		}
		err = bTx.txn.Set(k, value)
	}
	return err
}

func (bTx *badgerTx) Delete(table string, keys ...[]byte) error {
	if !bTx.writable {
		return ErrReadOnly
	}
	for _, key := range keys {
		k := badgerKey(table, key)
		err := bTx.txn.Delete(k)
		if err == badger.ErrTxnTooBig {
			if err = bTx.flush(); err != nil {
				return err
			}
			err = bTx.txn.Delete(k)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (bTx *badgerTx) flush() error {
	log.Debug("Badger transaction too big, committing partial batch")
	if err := bTx.txn.Commit(); err != nil {
		return err
	}
	bTx.txn = bTx.be.db.NewTransaction(true)
	return nil
}

func (bTx *badgerTx) Commit() error {
	if !bTx.writable {
		bTx.txn.Discard()
		return nil
	}
	return bTx.txn.Commit()
}

func (bTx *badgerTx) Rollback() error {
	bTx.txn.Discard()
	return nil
}

func (bTx *badgerTx) Backend() Backend {
	return bTx.be
}

func (bTx *badgerTx) Cursor(table string) Cursor {
	c := &badgerCursor{
		txn:    bTx.txn,
		prefix: badgerTablePrefix(table),
	}
	return c
}

type badgerCursor struct {
	txn    *badger.Txn
	prefix []byte
	it     *badger.Iterator
	k      []byte
	v      []byte
	err    error
}

func (c *badgerCursor) iterator() *badger.Iterator {
	if c.it == nil {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = c.prefix
		c.it = c.txn.NewIterator(opts)
	}
	return c.it
}

func (c *badgerCursor) First() Cursor {
	it := c.iterator()
	it.Rewind()
	c.load()
	return c
}

func (c *badgerCursor) Next() Cursor {
	if c.it == nil || !c.it.ValidForPrefix(c.prefix) {
		c.k, c.v = nil, nil
		return c
	}
	c.it.Next()
	c.load()
	return c
}

func (c *badgerCursor) Seek(key []byte) Cursor {
	it := c.iterator()
	seek := make([]byte, 0, len(c.prefix)+len(key))
	seek = append(seek, c.prefix...)
	it.Seek(append(seek, key...))
	c.load()
	return c
}

func (c *badgerCursor) load() {
	c.k, c.v = nil, nil
	if !c.it.ValidForPrefix(c.prefix) {
		return
	}
	item := c.it.Item()
	v, err := item.ValueCopy(nil)
	if err != nil {
		c.err = err
		return
	}
	c.k = item.KeyCopy(nil)[len(c.prefix):]
	c.v = v
}

func (c *badgerCursor) Data() (key []byte, value []byte) {
	return c.k, c.v
}

func (c *badgerCursor) Close() {
	if c.it != nil {
		c.it.Close()
		c.it = nil
	}
	c.k, c.v = nil, nil
}

func (c *badgerCursor) Err() error {
	return c.err
}
