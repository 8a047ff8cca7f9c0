package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// MaxRecentQueries bounds the search history
const MaxRecentQueries = 20

// Bucket names
var (
	bucketSession = []byte("session")
	bucketHistory = []byte("history")
)

// Keys
const (
	keyCredential = "credential"
	keyQueries    = "queries"
)

// SessionStore implements domain.SessionStore using BoltDB. Search results
// are never stored here; only the credential and recent queries persist.
type SessionStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

// NewSessionStore opens the store for one account endpoint. An empty baseDir
// gives a memory-only store.
func NewSessionStore(baseDir, accountURL string) (*SessionStore, error) {
	if baseDir == "" {
		return &SessionStore{cache: make(map[string][]byte)}, nil
	}

	dir := baseDir
	if accountURL != "" {
		dir = filepath.Join(baseDir, hashAccountURL(accountURL))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "session.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketSession, bucketHistory} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SessionStore{db: db, cache: make(map[string][]byte)}, nil
}

func hashAccountURL(accountURL string) string {
	normalized := strings.TrimRight(strings.ToLower(accountURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *SessionStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func (s *SessionStore) get(bucket []byte, key string, dest any) bool {
	cacheKey := string(bucket) + ":" + key

	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *SessionStore) set(bucket []byte, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
}

func (s *SessionStore) delete(bucket []byte, key string) error {
	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	delete(s.cache, cacheKey)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bucket); b != nil {
			return b.Delete([]byte(key))
		}
		return nil
	})
}

// === Session ===

// Credential returns the stored session token
func (s *SessionStore) Credential() (string, bool) {
	var token string
	if !s.get(bucketSession, keyCredential, &token) || token == "" {
		return "", false
	}
	return token, true
}

// SaveCredential stores the session token
func (s *SessionStore) SaveCredential(token string) error {
	return s.set(bucketSession, keyCredential, token)
}

// ClearCredential forgets the session token
func (s *SessionStore) ClearCredential() error {
	return s.delete(bucketSession, keyCredential)
}

// === History ===

// RecentQueries returns past search queries, most recent first
func (s *SessionStore) RecentQueries() []string {
	var queries []string
	s.get(bucketHistory, keyQueries, &queries)
	return queries
}

// PushRecentQuery records a submitted query. Repeats move to the front and
// the history is capped at MaxRecentQueries.
func (s *SessionStore) PushRecentQuery(query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	queries := s.RecentQueries()
	queries = slices.DeleteFunc(queries, func(q string) bool { return strings.EqualFold(q, query) })
	queries = append([]string{query}, queries...)
	if len(queries) > MaxRecentQueries {
		queries = queries[:MaxRecentQueries]
	}
	return s.set(bucketHistory, keyQueries, queries)
}

// ClearHistory removes all recent queries
func (s *SessionStore) ClearHistory() error {
	return s.delete(bucketHistory, keyQueries)
}
