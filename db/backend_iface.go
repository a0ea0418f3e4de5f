package db

// Backend is a generic K/V persistence interface.
type Backend interface {
	Open() error                                                                 // Open / start the backend.
	Close() error                                                                // Close / shutdown the backend.
	New(name string) (Backend, error)                                            // New returns a fresh, unopened backend of the same kind located at name.
	Get(table string, key []byte) ([]byte, error)                                // Get returns ErrKeyNotFound when key is absent.
	Put(table string, key []byte, value []byte) error                            // Put upserts a single key.
	Delete(table string, keys ...[]byte) error                                   // Delete removes keys, missing keys are ignored.
	Destroy(tables ...string) error                                              // Destroy drops entire tables.
	Len(table string) (int, error)                                               // Len returns the number of rows in a table.
	Begin(writable bool) (Transaction, error)                                    // Begin starts a transaction which must be committed or rolled back.
	View(fn func(tx Transaction) error) error                                    // View runs fn in a read-only transaction.
	Update(fn func(tx Transaction) error) error                                  // Update runs fn in a read-write transaction, committing when fn returns nil.
	EachRow(table string, fn func(key []byte, value []byte)) error               // EachRow invokes fn for each row in key order.
	EachRowWithBreak(table string, fn func(key []byte, value []byte) bool) error // EachRowWithBreak invokes fn until it returns false.
	EachTable(fn func(table string, tx Transaction) error) error                 // EachTable invokes fn for every table known to the backend.
}

// Transaction is a generic TX interface to be provided by each Backend
// implementation.
type Transaction interface {
	Get(table string, key []byte) ([]byte, error)
	Put(table string, key []byte, value []byte) error
	Delete(table string, keys ...[]byte) error
	Commit() error
	Rollback() error
	Backend() Backend
	Cursor(table string) Cursor
}

// Cursor is a generic interface to be provided by each Backend implementation.
//
// Keys and values returned by Data are only valid until the cursor moves or
// the owning transaction ends.
type Cursor interface {
	// First moves the cursor to the beginning of the range of elements.
	First() Cursor

	// Next moves the cursor to the next element.
	Next() Cursor

	// Seek moves the cursor to the first key greater than or equal to the
	// supplied key.
	Seek(key []byte) Cursor

	// Data returns the K/V pair at the current cursor position.
	// Returns (nil, nil) when past the end.
	Data() (key []byte, value []byte)

	// Close cleans up and returns resources to the system.
	Close()

	// Err returns the first error encountered while iterating, if any.
	Err() error
}
