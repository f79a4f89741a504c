package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/talentwire/docpipe/internal/domain"
)

// Hash returns the deterministic content digest used as the cache key and
// the content-addressable storage key for uploaded documents.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Entry is one cached extraction, keyed by content hash. Entries are
// immutable once written. Downstream generative content (suggested
// interview questions) is deliberately not part of the entry: it is
// produced fresh on every completion.
type Entry struct {
	Hash       string                   `json:"hash"`
	JobData    domain.JobPosting        `json:"jobData"`
	Validation domain.ValidationSummary `json:"validation"`
	Model      string                   `json:"model,omitempty"`
	CreatedAt  time.Time                `json:"createdAt"`
}

// ContentCache short-circuits the extraction pipeline on repeat submission
// of identical bytes.
type ContentCache interface {
	Has(hash string) bool
	Get(hash string) (*Entry, bool)
	Put(hash string, entry *Entry)
}

// MemoryCache is a concurrency-safe in-memory ContentCache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]*Entry),
	}
}

// Has reports whether an extraction exists for the hash.
func (c *MemoryCache) Has(hash string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[hash]
	return ok
}

// Get returns the cached extraction for the hash, if any.
func (c *MemoryCache) Get(hash string) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[hash]
	if !ok {
		return nil, false
	}
	cp := *entry
	return &cp, true
}

// Put stores an extraction for the hash. Entries are immutable: a second
// Put for the same hash is a no-op.
func (c *MemoryCache) Put(hash string, entry *Entry) {
	if entry == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[hash]; exists {
		return
	}
	cp := *entry
	cp.Hash = hash
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	c.entries[hash] = &cp
}
