// Package store persists tracked data and configuration in a BoltDB file.
// Values are opaque JSON documents addressed by storage key.
package store

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	stateBucket = []byte("state")
	metaBucket  = []byte("meta")
	versionKey  = []byte("schema_version")
)

const schemaVersion = "1"

var errWebfocusRunning = errors.New(
	"is webfocus already running? Only one instance can use the database at a time",
)

// Client is a BoltDB database client.
type Client struct {
	*bolt.DB
}

// Get returns the stored values of the requested keys. Keys without a value
// are absent from the result.
func (c *Client) Get(keys ...string) (map[string][]byte, error) {
	values := make(map[string][]byte, len(keys))

	err := c.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(stateBucket)

		for _, k := range keys {
			v := b.Get([]byte(k))
			if v == nil {
				continue
			}

			// bolt values are only valid for the life of the transaction
			values[k] = append([]byte(nil), v...)
		}

		return nil
	})

	return values, err
}

// Set writes every value in a single transaction.
func (c *Client) Set(values map[string][]byte) error {
	return c.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(stateBucket)

		for k, v := range values {
			if err := b.Put([]byte(k), v); err != nil {
				return err
			}
		}

		return nil
	})
}

// Remove deletes the given keys.
func (c *Client) Remove(keys ...string) error {
	return c.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(stateBucket)

		for _, k := range keys {
			if err := b.Delete([]byte(k)); err != nil {
				return err
			}
		}

		return nil
	})
}

// openDB creates or opens a database and locks it.
func openDB(pathToDB string) (*bolt.DB, error) {
	var fileMode fs.FileMode = 0o600

	db, err := bolt.Open(
		pathToDB,
		fileMode,
		&bolt.Options{Timeout: 1 * time.Second},
	)
	if err != nil {
		if errors.Is(err, bolt.ErrDatabaseOpen) ||
			errors.Is(err, bolt.ErrTimeout) {
			return nil, errWebfocusRunning
		}

		return nil, err
	}

	return db, nil
}

// NewClient returns a wrapper to a BoltDB connection.
func NewClient(dbPath string) (*Client, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}

	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}

	// Create the necessary buckets for storing data if they do not exist already
	err = db.Update(func(tx *bolt.Tx) error {
		_, err = tx.CreateBucketIfNotExists(stateBucket)
		if err != nil {
			return err
		}

		meta, err := tx.CreateBucketIfNotExists(metaBucket)
		if err != nil {
			return err
		}

		if meta.Get(versionKey) == nil {
			return meta.Put(versionKey, []byte(schemaVersion))
		}

		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Client{
		db,
	}, nil
}
