package db

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// RebuildBatchSize is the number of entries to include per transaction during
// rebuild.
var RebuildBatchSize = 25000

// KeyValueFilterFunc may rewrite or drop rows while rebuilding.  Returning a
// nil key drops the row.
type KeyValueFilterFunc func(table []byte, key []byte, value []byte) (keyOut []byte, valueOut []byte)

// RebuildTo copies every table into other, which must already be open.  Rows
// are written in batches of RebuildBatchSize.  Rebuilding compacts the store
// and is also how a store moves between backend types.
func (c *Client) RebuildTo(other Backend, kvFilters ...KeyValueFilterFunc) error {
	return c.be.View(func(tx Transaction) error {
		for _, table := range tables {
			if err := copyTable(tx, other, table, kvFilters); err != nil {
				return fmt.Errorf("rebuilding %v: %s", table, err)
			}
		}
		return nil
	})
}

func copyTable(tx Transaction, other Backend, table string, kvFilters []KeyValueFilterFunc) (err error) {
	otherTx, err := other.Begin(true)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil && otherTx != nil {
			err = multierr.Append(err, otherTx.Rollback())
		}
	}()

	log.WithField("table", table).Debug("Rebuild starting")

	var (
		n      int // Tracks number of pending items in the current transaction.
		t      int // Tracks total number of items copied.
		cursor = tx.Cursor(table)
	)
	defer cursor.Close()

	for k, v := cursor.First().Data(); k != nil; k, v = cursor.Next().Data() {
		for _, kvF := range kvFilters {
			if k == nil {
				break
			}
			k, v = kvF([]byte(table), k, v)
		}
		if len(k) == 0 {
			continue
		}
		if n >= RebuildBatchSize {
			log.WithField("table", table).WithField("items-in-tx", n).WithField("total-items-added", t).Debug("Committing batch")
			if err = otherTx.Commit(); err != nil {
				otherTx = nil
				return
			}
			n = 0
			if otherTx, err = other.Begin(true); err != nil {
				otherTx = nil
				return
			}
		}
		if err = otherTx.Put(table, k, v); err != nil {
			return
		}
		n++
		t++
	}
	if err = cursor.Err(); err != nil {
		return
	}

	if t == 0 {
		log.WithField("table", table).Debug("Table was empty")
	} else {
		log.WithField("table", table).WithField("items-in-tx", n).WithField("total-items-added", t).Debug("Committing batch")
	}
	// N.B.: Don't leave TX open and hanging.
	if err = otherTx.Commit(); err != nil {
		otherTx = nil
		return
	}
	return nil
}

// DropLanguagesFilter returns a filter which removes the language, label and
// language-label rows of the given languages.  Concepts and edges are kept
// so the remaining languages still resolve every edge endpoint.
func DropLanguagesFilter(langs ...string) KeyValueFilterFunc {
	drop := make(map[string]struct{}, len(langs))
	for _, lang := range langs {
		drop[lang] = struct{}{}
	}
	return func(table []byte, key []byte, value []byte) ([]byte, []byte) {
		var lang string
		switch string(table) {
		case TableLanguages:
			lang = string(key)
		case TableLabels:
			_, lang = splitCompositeKey(key)
		case TableLanguageLabels:
			lang, _ = splitCompositeKey(key)
		default:
			return key, value
		}
		if _, ok := drop[lang]; ok {
			return nil, nil
		}
		return key, value
	}
}
