package esi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/fivetwenty-io/esi-client/internal/constants"
)

// StoreType represents the type of store backend.
type StoreType string

const (
	// StoreTypeMemory represents an in-process store.
	StoreTypeMemory StoreType = "memory"

	// StoreTypeNATS represents a NATS JetStream key-value bucket.
	StoreTypeNATS StoreType = "nats"

	// StoreTypeLevelDB represents an on-disk LevelDB database.
	StoreTypeLevelDB StoreType = "leveldb"

	// StoreTypeNone disables the second tier.
	StoreTypeNone StoreType = "none"
)

// Static errors for err113 compliance.
var (
	ErrStoreKeyNotFound      = errors.New("key not found")
	ErrStoreEntryExpired     = errors.New("entry expired")
	ErrStoreDisabled         = errors.New("store disabled")
	ErrNATSConfigRequired    = errors.New("NATS configuration required for NATS store")
	ErrLevelDBConfigRequired = errors.New("LevelDB configuration required for LevelDB store")
	ErrUnsupportedStoreType  = errors.New("unsupported store type")
	ErrKeyNotFoundInAnyStore = errors.New("key not found in any store")
)

// StoredResponse is a successful response persisted in a Store.
type StoredResponse struct {
	StatusCode int             `json:"status_code"`
	Header     http.Header     `json:"header,omitempty"`
	Body       json.RawMessage `json:"body,omitempty"`
	ExpiresAt  time.Time       `json:"expires_at"`
}

// Expired reports whether the record is past its expiry at now.
func (r *StoredResponse) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// Store is a second cache tier shared beyond one agent's memory, for example
// across processes. Get returns ErrStoreKeyNotFound or ErrStoreEntryExpired
// when there is nothing usable.
type Store interface {
	Get(ctx context.Context, key string) (*StoredResponse, error)
	Set(ctx context.Context, key string, record *StoredResponse) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Close() error
}

// StoreConfig configures a store backend.
type StoreConfig struct {
	// Type is the store backend type
	Type StoreType

	// Memory store configuration
	Memory *MemoryStoreConfig

	// NATS KV store configuration
	NATS *NATSKVConfig

	// LevelDB store configuration
	LevelDB *LevelDBConfig
}

// MemoryStoreConfig configures a memory store.
type MemoryStoreConfig struct {
	// MaxSize is the maximum number of records in the store
	MaxSize int
}

// DefaultStoreConfig returns default store configuration.
func DefaultStoreConfig() *StoreConfig {
	return &StoreConfig{
		Type: StoreTypeMemory,
		Memory: &MemoryStoreConfig{
			MaxSize: constants.DefaultStoreSize,
		},
	}
}

// NewStoreFromConfig creates a store backend from configuration.
func NewStoreFromConfig(ctx context.Context, config *StoreConfig) (Store, error) {
	if config == nil {
		config = DefaultStoreConfig()
	}

	switch config.Type {
	case StoreTypeMemory:
		maxSize := constants.DefaultStoreSize
		if config.Memory != nil && config.Memory.MaxSize > 0 {
			maxSize = config.Memory.MaxSize
		}

		return NewMemoryStore(maxSize), nil

	case StoreTypeNATS:
		if config.NATS == nil {
			return nil, ErrNATSConfigRequired
		}

		return NewNATSKVStore(ctx, config.NATS)

	case StoreTypeLevelDB:
		if config.LevelDB == nil {
			return nil, ErrLevelDBConfigRequired
		}

		return NewLevelDBStore(config.LevelDB)

	case StoreTypeNone, "":
		return NewNoOpStore(), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedStoreType, config.Type)
	}
}

// MemoryStore keeps records in a map. When full, the record closest to
// expiry is evicted.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*StoredResponse
	maxSize int
}

// NewMemoryStore creates a memory store holding at most maxSize records.
func NewMemoryStore(maxSize int) *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*StoredResponse),
		maxSize: maxSize,
	}
}

// Get retrieves a record.
func (s *MemoryStore) Get(_ context.Context, key string) (*StoredResponse, error) {
	s.mu.RLock()
	record, ok := s.records[key]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrStoreKeyNotFound
	}

	if record.Expired(time.Now()) {
		return nil, ErrStoreEntryExpired
	}

	return record, nil
}

// Set stores a record.
func (s *MemoryStore) Set(_ context.Context, key string, record *StoredResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[key]; !exists && s.maxSize > 0 && len(s.records) >= s.maxSize {
		s.evictLocked()
	}

	s.records[key] = record

	return nil
}

// Delete removes a record.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, key)

	return nil
}

// Clear removes all records.
func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*StoredResponse)

	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

// Has checks if an unexpired record exists.
func (s *MemoryStore) Has(ctx context.Context, key string) bool {
	_, err := s.Get(ctx, key)

	return err == nil
}

// Len returns the number of records, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

// Cleanup removes expired records.
func (s *MemoryStore) Cleanup() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, record := range s.records {
		if record.Expired(now) {
			delete(s.records, key)
		}
	}
}

func (s *MemoryStore) evictLocked() {
	var (
		victim   string
		earliest time.Time
	)

	for key, record := range s.records {
		if victim == "" || record.ExpiresAt.Before(earliest) {
			victim = key
			earliest = record.ExpiresAt
		}
	}

	delete(s.records, victim)
}

// NoOpStore is a store that stores nothing.
type NoOpStore struct{}

// NewNoOpStore creates a new no-op store.
func NewNoOpStore() *NoOpStore {
	return &NoOpStore{}
}

// Get always returns ErrStoreDisabled.
func (s *NoOpStore) Get(context.Context, string) (*StoredResponse, error) {
	return nil, ErrStoreDisabled
}

// Set does nothing.
func (s *NoOpStore) Set(context.Context, string, *StoredResponse) error {
	return nil
}

// Delete does nothing.
func (s *NoOpStore) Delete(context.Context, string) error {
	return nil
}

// Clear does nothing.
func (s *NoOpStore) Clear(context.Context) error {
	return nil
}

// Close does nothing.
func (s *NoOpStore) Close() error {
	return nil
}

// StoreChain implements a chain of stores (L1, L2, etc.).
type StoreChain struct {
	stores []Store
}

// NewStoreChain creates a new store chain.
func NewStoreChain(stores ...Store) *StoreChain {
	return &StoreChain{
		stores: stores,
	}
}

// Get retrieves a record from the first store that has it.
func (c *StoreChain) Get(ctx context.Context, key string) (*StoredResponse, error) {
	for i, store := range c.stores {
		record, err := store.Get(ctx, key)
		if err == nil {
			// Found in this store, populate earlier stores
			for j := range i {
				_ = c.stores[j].Set(ctx, key, record)
			}

			return record, nil
		}
	}

	return nil, ErrKeyNotFoundInAnyStore
}

// Set stores a record in all stores.
func (c *StoreChain) Set(ctx context.Context, key string, record *StoredResponse) error {
	var errs []error

	for _, store := range c.stores {
		err := store.Set(ctx, key, record)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Delete removes a record from all stores.
func (c *StoreChain) Delete(ctx context.Context, key string) error {
	var errs []error

	for _, store := range c.stores {
		err := store.Delete(ctx, key)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Clear removes all records from all stores.
func (c *StoreChain) Clear(ctx context.Context) error {
	var errs []error

	for _, store := range c.stores {
		err := store.Clear(ctx)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Cleanup sweeps expired records from every store that supports it.
func (c *StoreChain) Cleanup() error {
	var errs []error

	for _, store := range c.stores {
		err := cleanupStore(store)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// cleanupStore runs the store's Cleanup method if it has one.
func cleanupStore(store Store) error {
	switch cleaner := store.(type) {
	case interface{ Cleanup() error }:
		return cleaner.Cleanup() //nolint:wrapcheck // store errors carry their context
	case interface{ Cleanup() }:
		cleaner.Cleanup()
	}

	return nil
}

// Close closes every store.
func (c *StoreChain) Close() error {
	var errs []error

	for _, store := range c.stores {
		err := store.Close()
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
