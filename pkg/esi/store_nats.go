package esi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// DefaultNATSBucket is the KV bucket used when none is configured.
const DefaultNATSBucket = "esi_responses"

// NATSKVConfig configures a NATS JetStream KV store.
type NATSKVConfig struct {
	// URL of the NATS server. Ignored when Conn is set.
	URL string
	// Conn reuses an existing connection. The store does not close it.
	Conn *nats.Conn
	// Bucket is the KV bucket name.
	Bucket string
	// TTL is the bucket's max age. Records also carry their own expiry.
	TTL time.Duration
	// Replicas is the bucket replica count.
	Replicas int
}

// NATSKVStore stores records as JSON in a JetStream key-value bucket,
// letting several processes share ESI responses.
type NATSKVStore struct {
	conn     *nats.Conn
	ownsConn bool
	kv       jetstream.KeyValue
}

// NewNATSKVStore connects and creates or updates the bucket.
func NewNATSKVStore(ctx context.Context, config *NATSKVConfig) (*NATSKVStore, error) {
	conn := config.Conn
	ownsConn := false

	if conn == nil {
		url := config.URL
		if url == "" {
			url = nats.DefaultURL
		}

		var err error

		conn, err = nats.Connect(url, nats.Name("esi-client"))
		if err != nil {
			return nil, fmt.Errorf("connecting to NATS: %w", err)
		}

		ownsConn = true
	}

	js, err := jetstream.New(conn)
	if err != nil {
		if ownsConn {
			conn.Close()
		}

		return nil, fmt.Errorf("creating JetStream context: %w", err)
	}

	bucket := config.Bucket
	if bucket == "" {
		bucket = DefaultNATSBucket
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "ESI response cache",
		TTL:         config.TTL,
		Replicas:    config.Replicas,
	})
	if err != nil {
		if ownsConn {
			conn.Close()
		}

		return nil, fmt.Errorf("creating KV bucket %s: %w", bucket, err)
	}

	return &NATSKVStore{conn: conn, ownsConn: ownsConn, kv: kv}, nil
}

// Get retrieves a record.
func (s *NATSKVStore) Get(ctx context.Context, key string) (*StoredResponse, error) {
	entry, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted) {
			return nil, ErrStoreKeyNotFound
		}

		return nil, fmt.Errorf("reading %s: %w", key, err)
	}

	var record StoredResponse

	err = json.Unmarshal(entry.Value(), &record)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", key, err)
	}

	if record.Expired(time.Now()) {
		_ = s.kv.Delete(ctx, key)

		return nil, ErrStoreEntryExpired
	}

	return &record, nil
}

// Set stores a record.
func (s *NATSKVStore) Set(ctx context.Context, key string, record *StoredResponse) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}

	_, err = s.kv.Put(ctx, key, data)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}

	return nil
}

// Delete removes a record.
func (s *NATSKVStore) Delete(ctx context.Context, key string) error {
	err := s.kv.Delete(ctx, key)
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("deleting %s: %w", key, err)
	}

	return nil
}

// Clear removes every record in the bucket.
func (s *NATSKVStore) Clear(ctx context.Context) error {
	lister, err := s.kv.ListKeys(ctx)
	if err != nil {
		return fmt.Errorf("listing keys: %w", err)
	}

	defer func() {
		_ = lister.Stop()
	}()

	var keys []string
	for key := range lister.Keys() {
		keys = append(keys, key)
	}

	for _, key := range keys {
		err = s.kv.Purge(ctx, key)
		if err != nil {
			return fmt.Errorf("purging %s: %w", key, err)
		}
	}

	return nil
}

// Close closes the connection if the store opened it.
func (s *NATSKVStore) Close() error {
	if s.ownsConn {
		s.conn.Close()
	}

	return nil
}
