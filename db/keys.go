package db

import (
	"bytes"
	"encoding/binary"
)

// keySep separates the components of composite keys.  Label text and
// language codes never contain a NUL byte.
const keySep = '\x00'

// indexMarker is the value stored in index tables, where only the key
// carries information.
var indexMarker = []byte{1}

func idKey(id uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, id)
	return k
}

func keyID(k []byte) uint64 {
	if len(k) < 8 {
		return 0
	}
	return binary.BigEndian.Uint64(k[:8])
}

// pairKey builds the 16 byte key used by the edges-out and edges-in indexes:
// the concept id followed by the edge id.
func pairKey(conceptID uint64, edgeID uint64) []byte {
	k := make([]byte, 16)
	binary.BigEndian.PutUint64(k, conceptID)
	binary.BigEndian.PutUint64(k[8:], edgeID)
	return k
}

// pairEdgeID extracts the edge id from a pairKey.
func pairEdgeID(k []byte) uint64 {
	if len(k) != 16 {
		return 0
	}
	return binary.BigEndian.Uint64(k[8:])
}

// labelKey is "<text>\x00<lang>", grouping every language's label for a
// given text together.
func labelKey(text string, lang string) []byte {
	return compositeKey(text, lang)
}

// languageLabelKey is "<lang>\x00<text>" and backs per-language label scans.
func languageLabelKey(lang string, text string) []byte {
	return compositeKey(lang, text)
}

func compositeKey(a string, b string) []byte {
	k := make([]byte, 0, len(a)+len(b)+1)
	k = append(k, a...)
	k = append(k, keySep)
	return append(k, b...)
}

// splitCompositeKey is the inverse of compositeKey.
func splitCompositeKey(k []byte) (a string, b string) {
	i := bytes.IndexByte(k, keySep)
	if i == -1 {
		return string(k), ""
	}
	return string(k[:i]), string(k[i+1:])
}

func compositePrefix(a string) []byte {
	k := make([]byte, 0, len(a)+1)
	k = append(k, a...)
	return append(k, keySep)
}

func hasPrefix(k []byte, prefix []byte) bool {
	return k != nil && bytes.HasPrefix(k, prefix)
}

// scanPrefix visits every row of table whose key starts with prefix, in key
// order, until fn returns false.
func scanPrefix(tx Transaction, table string, prefix []byte, fn func(k []byte, v []byte) bool) error {
	c := tx.Cursor(table)
	defer c.Close()

	var k, v []byte
	if len(prefix) == 0 {
		k, v = c.First().Data()
	} else {
		k, v = c.Seek(prefix).Data()
	}
	for ; hasPrefix(k, prefix); k, v = c.Next().Data() {
		if !fn(k, v) {
			break
		}
	}
	return c.Err()
}
