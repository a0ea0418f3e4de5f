package db

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cenkalti/backoff/v4"
	"github.com/gogo/protobuf/proto"
	lru "github.com/hashicorp/golang-lru/v2"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/rominf/conceptnet-lite/domain"
)

// DefaultInternCacheSize is the number of concept URI to id mappings kept in
// memory while writing.
var DefaultInternCacheSize = 1 << 16

// Client reads and writes the ConceptNet graph tables of a Backend.
type Client struct {
	config   Config
	be       Backend
	opened   bool
	interned *lru.Cache[string, uint64]
	mu       sync.Mutex
	writeMu  sync.Mutex
}

// NewClient constructs a new DB client based on the passed configuration.
// The client must be opened before use.
func NewClient(config Config) (*Client, error) {
	be, err := NewBackend(config)
	if err != nil {
		return nil, err
	}
	return newClient(config, be), nil
}

func newClient(config Config, be Backend) *Client {
	c := &Client{
		config: config,
		be:     be,
	}
	return c
}

// Open opens the backend.  Failures other than a missing store are retried
// with exponential backoff since they're usually caused by another process
// holding the file lock.
func (c *Client) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.opened {
		return nil
	}

	var (
		opts    = c.config.Common()
		attempt int
	)
	op := func() error {
		attempt++
		err := c.be.Open()
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrStoreNotFound) {
			return backoff.Permanent(err)
		}
		log.WithField("attempt", attempt).WithField("location", c.config.Location()).Debugf("Opening %v backend failed: %s", c.config.Type(), err)
		return err
	}
	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(opts.OpenRetries))
	if err := backoff.Retry(op, b); err != nil {
		return err
	}

	c.opened = true
	log.WithField("type", c.config.Type()).WithField("read-only", opts.ReadOnly).Debug("Client opened")
	return nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.opened {
		return nil
	}

	if err := c.be.Close(); err != nil {
		return err
	}
	c.opened = false

	log.Debug("Client closed")
	return nil
}

// WithClient is a convenience utility which handles DB client construction,
// open, and close.
func WithClient(config Config, fn func(client *Client) error) (err error) {
	var client *Client
	if client, err = NewClient(config); err != nil {
		return
	}

	if err = client.Open(); err != nil {
		err = fmt.Errorf("opening DB client %v: %w", config.Type(), err)
		return
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			err = multierr.Append(err, fmt.Errorf("closing DB client %v: %s", config.Type(), closeErr))
		}
	}()

	err = fn(client)
	return
}

func (c *Client) Config() Config {
	return c.config
}

// Backend exposes the underlying backend implementation.
func (c *Client) Backend() Backend {
	return c.be
}

func (c *Client) EachRow(table string, fn func(key []byte, value []byte)) error {
	return c.be.EachRow(table, fn)
}

func (c *Client) EachRowWithBreak(table string, fn func(key []byte, value []byte) bool) error {
	return c.be.EachRowWithBreak(table, fn)
}

func (c *Client) Len(table string) (int, error) {
	return c.be.Len(table)
}

// Stats returns the number of rows in every table.
func (c *Client) Stats() (map[string]int, error) {
	stats := map[string]int{}
	for _, table := range tables {
		n, err := c.be.Len(table)
		if err != nil {
			return nil, fmt.Errorf("counting %v: %s", table, err)
		}
		stats[table] = n
	}
	return stats, nil
}

// Destroy drops the named tables.
func (c *Client) Destroy(names ...string) error {
	for _, name := range names {
		if !IsTable(name) {
			return fmt.Errorf("unrecognized table name %q", name)
		}
	}
	if err := c.be.Destroy(names...); err != nil {
		plural := ""
		if len(names) > 1 {
			plural = "s"
		}
		return fmt.Errorf("destroying table%v: %s", plural, err)
	}
	if c.interned != nil {
		c.interned.Purge()
	}
	return nil
}

// Purge empties the named tables, or every table when none are named.
func (c *Client) Purge(names ...string) error {
	if len(names) == 0 {
		names = Tables()
	}
	return c.Destroy(names...)
}

// MetaSave stores a metadata key/value.  NB: src must be one of raw []byte,
// string, or proto.Message struct.
func (c *Client) MetaSave(key string, src interface{}) error {
	var v []byte

	switch src.(type) {
	case []byte:
		v = src.([]byte)

	case string:
		v = []byte(src.(string))

	case proto.Message:
		var err error
		if v, err = proto.Marshal(src.(proto.Message)); err != nil {
			return fmt.Errorf("marshalling %T: %s", src, err)
		}

	default:
		return ErrMetadataUnsupportedSrcType
	}

	return c.be.Put(TableMetadata, []byte(key), v)
}

func (c *Client) MetaDelete(key string) error {
	return c.be.Delete(TableMetadata, []byte(key))
}

// Meta retrieves a metadata key and populates dst.  NB: dst must be one of
// *[]byte, *string, or proto.Message struct.
func (c *Client) Meta(key string, dst interface{}) error {
	v, err := c.be.Get(TableMetadata, []byte(key))
	if err != nil {
		return err
	}

	switch dst.(type) {
	case *[]byte:
		ptr := dst.(*[]byte)
		*ptr = v

	case *string:
		ptr := dst.(*string)
		*ptr = string(v)

	case proto.Message:
		return proto.Unmarshal(v, dst.(proto.Message))

	default:
		return ErrMetadataUnsupportedDstType
	}

	return nil
}

// BuildInfo returns the record left by the most recent ingestion run.
func (c *Client) BuildInfo() (*domain.BuildInfo, error) {
	info := &domain.BuildInfo{}
	if err := c.Meta(MetaBuildInfo, info); err != nil {
		return nil, err
	}
	return info, nil
}

func (c *Client) BuildInfoSave(info *domain.BuildInfo) error {
	return c.MetaSave(MetaBuildInfo, info)
}
