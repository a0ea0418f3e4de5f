package db

import (
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

type BoltConfig struct {
	Options

	DBFile      string
	BoltOptions *bolt.Options
}

func NewBoltConfig(dbFilename string) *BoltConfig {
	cfg := &BoltConfig{
		Options: Options{
			OpenRetries: DefaultOpenRetries,
		},
		DBFile: dbFilename,
		BoltOptions: &bolt.Options{
			Timeout: 1 * time.Second,
		},
	}
	return cfg
}

func (cfg BoltConfig) Type() Type {
	return Bolt
}

func (cfg *BoltConfig) Common() *Options {
	return &cfg.Options
}

func (cfg BoltConfig) Location() string {
	return cfg.DBFile
}

type BoltBackend struct {
	config *BoltConfig
	db     *bolt.DB
	mu     sync.Mutex
}

func NewBoltBackend(config *BoltConfig) *BoltBackend {
	be := &BoltBackend{
		config: config,
	}
	return be
}

func (be *BoltBackend) Open() error {
	be.mu.Lock()
	defer be.mu.Unlock()

	if be.db != nil {
		return nil
	}

	if err := checkExists(&be.config.Options, be.config.DBFile); err != nil {
		return err
	}

	opts := *be.config.BoltOptions
	opts.ReadOnly = be.config.ReadOnly

	db, err := bolt.Open(be.config.DBFile, 0600, &opts)
	if err != nil {
		return err
	}
	be.db = db

	if !be.config.ReadOnly {
		if err := be.initDB(); err != nil {
			return err
		}
	}

	log.WithField("file", be.config.DBFile).WithField("read-only", be.config.ReadOnly).Debug("Opened bolt backend")
	return nil
}

func (be *BoltBackend) Close() error {
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

func (be *BoltBackend) New(name string) (Backend, error) {
	cfg := NewBoltConfig(name)
	cfg.OpenRetries = be.config.OpenRetries
	return NewBoltBackend(cfg), nil
}

func (be *BoltBackend) initDB() error {
	return be.db.Update(func(tx *bolt.Tx) error {
		for _, name := range tables {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("initDB: creating bucket %q: %s", name, err)
			}
		}
		return nil
	})
}

func (be *BoltBackend) Get(table string, key []byte) ([]byte, error) {
	var v []byte
	if err := be.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(table))
		if b == nil {
			return ErrKeyNotFound
		}
		if v = b.Get(key); v == nil {
			return ErrKeyNotFound
		}
		// Bolt values are only valid for the life of the transaction.
		v = append([]byte(nil), v...)
		return nil
	}); err != nil {
		return nil, err
	}
	return v, nil
}

func (be *BoltBackend) Put(table string, key []byte, value []byte) error {
	return be.Update(func(tx Transaction) error {
		return tx.Put(table, key, value)
	})
}

func (be *BoltBackend) Delete(table string, keys ...[]byte) error {
	return be.Update(func(tx Transaction) error {
		return tx.Delete(table, keys...)
	})
}

func (be *BoltBackend) Destroy(tables ...string) error {
	return be.db.Update(func(tx *bolt.Tx) error {
		for _, table := range tables {
			if err := tx.DeleteBucket([]byte(table)); err != nil && err != bolt.ErrBucketNotFound {
				return err
			}
		}
		return nil
	})
}

func (be *BoltBackend) Len(table string) (int, error) {
	var n int
	if err := be.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(table))
		if b == nil {
			return nil
		}
		n = b.Stats().KeyN
		return nil
	}); err != nil {
		return 0, err
	}
	return n, nil
}

func (be *BoltBackend) Begin(writable bool) (Transaction, error) {
	if writable && be.config.ReadOnly {
		return nil, ErrReadOnly
	}
	tx, err := be.db.Begin(writable)
	if err != nil {
		return nil, err
	}
	return be.wrapTx(tx), nil
}

func (be *BoltBackend) View(fn func(tx Transaction) error) error {
	return be.db.View(func(tx *bolt.Tx) error {
		return fn(be.wrapTx(tx))
	})
}

func (be *BoltBackend) Update(fn func(tx Transaction) error) error {
	if be.config.ReadOnly {
		return ErrReadOnly
	}
	return be.db.Update(func(tx *bolt.Tx) error {
		return fn(be.wrapTx(tx))
	})
}

func (be *BoltBackend) EachRow(table string, fn func(key []byte, value []byte)) error {
	return be.EachRowWithBreak(table, func(k []byte, v []byte) bool {
		fn(k, v)
		return true
	})
}

func (be *BoltBackend) EachRowWithBreak(table string, fn func(key []byte, value []byte) bool) error {
	return be.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(table))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if !fn(k, v) {
				break
			}
		}
		return nil
	})
}

func (be *BoltBackend) EachTable(fn func(table string, tx Transaction) error) error {
	return be.View(func(tx Transaction) error {
		return tx.(*boltTx).tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			return fn(string(name), tx)
		})
	})
}

func (be *BoltBackend) wrapTx(tx *bolt.Tx) *boltTx {
	bTx := &boltTx{
		tx: tx,
		be: be,
	}
	return bTx
}

type boltTx struct {
	tx *bolt.Tx
	be *BoltBackend
}

// bucket returns the named bucket, creating it when the transaction is
// writable.  A nil bucket is returned for missing tables in read-only
// transactions.
func (bTx *boltTx) bucket(table string) (*bolt.Bucket, error) {
	if !bTx.tx.Writable() {
		return bTx.tx.Bucket([]byte(table)), nil
	}
	return bTx.tx.CreateBucketIfNotExists([]byte(table))
}

func (bTx *boltTx) Get(table string, key []byte) ([]byte, error) {
	b, err := bTx.bucket(table)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrKeyNotFound
	}
	v := b.Get(key)
	if v == nil {
		return nil, ErrKeyNotFound
	}
	return v, nil
}

func (bTx *boltTx) Put(table string, key []byte, value []byte) error {
	b, err := bTx.bucket(table)
	if err != nil {
		return err
	}
	if b == nil {
		return ErrReadOnly
	}
	return b.Put(key, value)
}

func (bTx *boltTx) Delete(table string, keys ...[]byte) error {
	b, err := bTx.bucket(table)
	if err != nil {
		return err
	}
	if b == nil {
		return ErrReadOnly
	}
	for _, key := range keys {
		if err := b.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

func (bTx *boltTx) Commit() error {
	return bTx.tx.Commit()
}

func (bTx *boltTx) Rollback() error {
	return bTx.tx.Rollback()
}

func (bTx *boltTx) Backend() Backend {
	return bTx.be
}

func (bTx *boltTx) Cursor(table string) Cursor {
	c := &boltCursor{}
	if b, err := bTx.bucket(table); err != nil {
		c.err = err
	} else if b != nil {
		c.c = b.Cursor()
	}
	return c
}

type boltCursor struct {
	c   *bolt.Cursor
	k   []byte
	v   []byte
	err error
}

func (c *boltCursor) First() Cursor {
	if c.c != nil {
		c.k, c.v = c.c.First()
	}
	return c
}

func (c *boltCursor) Next() Cursor {
	if c.c != nil {
		c.k, c.v = c.c.Next()
	}
	return c
}

func (c *boltCursor) Seek(key []byte) Cursor {
	if c.c != nil {
		c.k, c.v = c.c.Seek(key)
	}
	return c
}

func (c *boltCursor) Data() (key []byte, value []byte) {
	if c.k == nil {
		return nil, nil
	}
	// Bolt hands out nil values for nested buckets; normalize to empty.
	if c.v == nil {
		return c.k, []byte{}
	}
	return c.k, c.v
}

func (c *boltCursor) Close() {
	c.c = nil
	c.k, c.v = nil, nil
}

func (c *boltCursor) Err() error {
	return c.err
}
