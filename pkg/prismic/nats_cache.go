package prismic

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/fivetwenty-io/prismic-go/internal/constants"
)

// NATSKVConfig configures the NATS JetStream KV store.
type NATSKVConfig struct {
	// URL of the NATS server, e.g. "nats://127.0.0.1:4222". Ignored when Conn is set.
	URL string

	// Conn is an existing connection to reuse. The store does not close it.
	Conn *nats.Conn

	// Bucket is the KV bucket name. Created when missing.
	Bucket string

	// TTL is the bucket-level maximum age of values. Entries also carry
	// their own expiry, so this only bounds storage.
	TTL time.Duration

	// Timeout bounds connecting and JetStream API calls.
	Timeout time.Duration
}

// NATSKVStore stores entries in a JetStream key-value bucket so that several
// processes can share fetched root documents.
type NATSKVStore struct {
	conn     *nats.Conn
	kv       nats.KeyValue
	ownsConn bool
	now      func() time.Time
}

// NewNATSKVStore connects to NATS and opens (or creates) the bucket.
func NewNATSKVStore(config *NATSKVConfig) (*NATSKVStore, error) {
	if config == nil {
		return nil, ErrNATSConfigRequired
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultNATSTimeout
	}

	bucket := config.Bucket
	if bucket == "" {
		bucket = constants.DefaultNATSBucket
	}

	conn := config.Conn
	ownsConn := false

	if conn == nil {
		var err error

		conn, err = nats.Connect(config.URL, nats.Name("prismic-go"), nats.Timeout(timeout))
		if err != nil {
			return nil, fmt.Errorf("connecting to NATS at %s: %w", config.URL, err)
		}

		ownsConn = true
	}

	kv, err := openBucket(conn, bucket, config.TTL, timeout)
	if err != nil {
		if ownsConn {
			conn.Close()
		}

		return nil, err
	}

	return &NATSKVStore{conn: conn, kv: kv, ownsConn: ownsConn, now: time.Now}, nil
}

func openBucket(conn *nats.Conn, bucket string, ttl, timeout time.Duration) (nats.KeyValue, error) {
	js, err := conn.JetStream(nats.MaxWait(timeout))
	if err != nil {
		return nil, fmt.Errorf("opening JetStream context: %w", err)
	}

	kv, err := js.KeyValue(bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket:      bucket,
			Description: "prismic API root documents",
			TTL:         ttl,
			History:     1,
		})
	}

	if err != nil {
		return nil, fmt.Errorf("opening KV bucket %s: %w", bucket, err)
	}

	return kv, nil
}

// NATSKey maps a cache key (a full request URL) to a valid KV key.
func NATSKey(key string) string {
	sum := sha256.Sum256([]byte(key))

	return "api." + hex.EncodeToString(sum[:])
}

// Get retrieves a live entry.
func (s *NATSKVStore) Get(ctx context.Context, key string) (*CacheEntry, error) {
	kvEntry, err := s.kv.Get(NATSKey(key))
	if errors.Is(err, nats.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}

	if err != nil {
		return nil, fmt.Errorf("reading %s from NATS: %w", key, err)
	}

	entry, err := decodeEntry(kvEntry.Value())
	if err != nil {
		return nil, err
	}

	if entry.Expired(s.now()) {
		_ = s.kv.Delete(NATSKey(key))

		return nil, fmt.Errorf("%w: %s", ErrEntryExpired, key)
	}

	return entry, nil
}

// Set stores an entry.
func (s *NATSKVStore) Set(ctx context.Context, key string, entry *CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	_, err = s.kv.Put(NATSKey(key), data)
	if err != nil {
		return fmt.Errorf("writing %s to NATS: %w", key, err)
	}

	return nil
}

// Delete removes an entry.
func (s *NATSKVStore) Delete(ctx context.Context, key string) error {
	err := s.kv.Delete(NATSKey(key))
	if err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("deleting %s from NATS: %w", key, err)
	}

	return nil
}

// Clear purges every key of the bucket.
func (s *NATSKVStore) Clear(ctx context.Context) error {
	keys, err := s.kv.Keys()
	if errors.Is(err, nats.ErrNoKeysFound) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("listing NATS keys: %w", err)
	}

	for _, key := range keys {
		err = s.kv.Purge(key)
		if err != nil {
			return fmt.Errorf("purging %s: %w", key, err)
		}
	}

	return nil
}

// Has reports whether a live entry exists.
func (s *NATSKVStore) Has(ctx context.Context, key string) bool {
	_, err := s.Get(ctx, key)

	return err == nil
}

// Close closes the connection when the store opened it.
func (s *NATSKVStore) Close() {
	if s.ownsConn {
		s.conn.Close()
	}
}

func decodeEntry(data []byte) (*CacheEntry, error) {
	var entry CacheEntry

	err := json.Unmarshal(data, &entry)
	if err != nil {
		return nil, fmt.Errorf("decoding cache entry: %w", err)
	}

	return &entry, nil
}
