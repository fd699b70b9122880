package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
)

// Record is the public half of an identity. Private keys are never persisted.
type Record struct {
	Address   string `json:"address"`   // bech32, e.g. "io1..."
	PublicKey string `json:"publicKey"` // uncompressed hex, 130 chars
	CreatedAt int64  `json:"createdAt"` // Unix milliseconds
}

// Directory provides Pebble-based persistence of public identity records
// Thread-safe: Pebble handles concurrent reads and writes
type Directory struct {
	db *pebble.DB
}

// OpenDirectory opens (or creates) a Pebble database at the given path
func OpenDirectory(dbPath string) (*Directory, error) {
	opts := &pebble.Options{
		Cache:        pebble.NewCache(8 << 20), // 8MB cache, records are tiny
		MemTableSize: 4 << 20,
		MaxOpenFiles: 256,
	}
	defer opts.Cache.Unref()

	db, err := pebble.Open(dbPath, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble db at %s: %w", dbPath, err)
	}
	return &Directory{db: db}, nil
}

// OpenInMemory opens a directory backed by an in-memory filesystem
func OpenInMemory() (*Directory, error) {
	db, err := pebble.Open("", &pebble.Options{FS: vfs.NewMem()})
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory pebble db: %w", err)
	}
	return &Directory{db: db}, nil
}

// Close closes the database
func (d *Directory) Close() error {
	return d.db.Close()
}

// Put persists a record, replacing any previous record for the address
func (d *Directory) Put(rec Record) error {
	if rec.Address == "" {
		return errors.New("record has empty address")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if err := d.db.Set(accountKey(rec.Address), data, pebble.Sync); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

// Get loads a record
// Returns nil if the address is unknown
func (d *Directory) Get(addr string) (*Record, error) {
	data, closer, err := d.db.Get(accountKey(addr))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	defer closer.Close()

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &rec, nil
}

// Delete removes a record; deleting an unknown address is not an error
func (d *Directory) Delete(addr string) error {
	if err := d.db.Delete(accountKey(addr), pebble.Sync); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// List returns every record in address order
func (d *Directory) List() ([]Record, error) {
	prefix := []byte(prefixAccount)
	iter, err := d.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open iterator: %w", err)
	}
	defer iter.Close()

	var records []Record
	for iter.First(); iter.Valid(); iter.Next() {
		addr, err := addressFromKey(iter.Key())
		if err != nil {
			continue // Skip foreign keys
		}
		var rec Record
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record %s: %w", addr, err)
		}
		records = append(records, rec)
	}
	return records, iter.Error()
}
