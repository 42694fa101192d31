package esi

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const levelDBEntryPrefix = "e:"

// LevelDBConfig configures an on-disk LevelDB store.
type LevelDBConfig struct {
	// Path is the database directory. It is created if missing.
	Path string
}

// LevelDBStore persists records on disk so a restarted process keeps its cache.
type LevelDBStore struct {
	db *leveldb.DB
}

// NewLevelDBStore opens or creates the database at config.Path.
func NewLevelDBStore(config *LevelDBConfig) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(config.Path, nil)
	if err != nil {
		return nil, fmt.Errorf("opening leveldb %s: %w", config.Path, err)
	}

	return &LevelDBStore{db: db}, nil
}

// Get retrieves a record.
func (s *LevelDBStore) Get(_ context.Context, key string) (*StoredResponse, error) {
	data, err := s.db.Get([]byte(levelDBEntryPrefix+key), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, ErrStoreKeyNotFound
		}

		return nil, fmt.Errorf("reading %s: %w", key, err)
	}

	var record StoredResponse

	err = gob.NewDecoder(bytes.NewReader(data)).Decode(&record)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", key, err)
	}

	if record.Expired(time.Now()) {
		_ = s.db.Delete([]byte(levelDBEntryPrefix+key), nil)

		return nil, ErrStoreEntryExpired
	}

	return &record, nil
}

// Set stores a record.
func (s *LevelDBStore) Set(_ context.Context, key string, record *StoredResponse) error {
	var buf bytes.Buffer

	err := gob.NewEncoder(&buf).Encode(record)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}

	err = s.db.Put([]byte(levelDBEntryPrefix+key), buf.Bytes(), nil)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}

	return nil
}

// Delete removes a record.
func (s *LevelDBStore) Delete(_ context.Context, key string) error {
	err := s.db.Delete([]byte(levelDBEntryPrefix+key), nil)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}

	return nil
}

// Clear removes all records in one batch.
func (s *LevelDBStore) Clear(context.Context) error {
	it := s.db.NewIterator(util.BytesPrefix([]byte(levelDBEntryPrefix)), nil)
	defer it.Release()

	batch := new(leveldb.Batch)
	for it.Next() {
		batch.Delete(append([]byte(nil), it.Key()...))
	}

	err := it.Error()
	if err != nil {
		return fmt.Errorf("iterating records: %w", err)
	}

	err = s.db.Write(batch, nil)
	if err != nil {
		return fmt.Errorf("clearing records: %w", err)
	}

	return nil
}

// Compact removes expired records, compacts the database when any were
// dropped and returns how many were.
func (s *LevelDBStore) Compact() (int, error) {
	it := s.db.NewIterator(util.BytesPrefix([]byte(levelDBEntryPrefix)), nil)
	defer it.Release()

	now := time.Now()
	batch := new(leveldb.Batch)

	for it.Next() {
		var record StoredResponse
		if gob.NewDecoder(bytes.NewReader(it.Value())).Decode(&record) != nil || record.Expired(now) {
			batch.Delete(append([]byte(nil), it.Key()...))
		}
	}

	err := it.Error()
	if err != nil {
		return 0, fmt.Errorf("iterating records: %w", err)
	}

	dropped := batch.Len()
	if dropped == 0 {
		return 0, nil
	}

	err = s.db.Write(batch, nil)
	if err != nil {
		return 0, fmt.Errorf("deleting expired records: %w", err)
	}

	err = s.db.CompactRange(util.Range{})
	if err != nil {
		return dropped, fmt.Errorf("compacting database: %w", err)
	}

	return dropped, nil
}

// Cleanup runs Compact. The agent's janitor calls it periodically.
func (s *LevelDBStore) Cleanup() error {
	_, err := s.Compact()

	return err
}

// Close closes the database.
func (s *LevelDBStore) Close() error {
	return s.db.Close()
}
