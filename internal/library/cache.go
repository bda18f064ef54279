package library

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/lawref/internal/doctree"
	bolt "go.etcd.io/bbolt"
)

var documentsBucket = []byte("documents")

// Cache holds parsed documents keyed by content hash plus parse mode. An
// in-memory map fronts an optional bbolt file so parses survive restarts.
type Cache struct {
	mu  sync.RWMutex
	mem map[string]*doctree.Document
	db  *bolt.DB
}

// NewMemoryCache returns a cache without persistence.
func NewMemoryCache() *Cache {
	return &Cache{mem: make(map[string]*doctree.Document)}
}

// OpenCache opens (creating if needed) a bbolt-backed cache at path.
func OpenCache(path string) (*Cache, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(documentsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &Cache{mem: make(map[string]*doctree.Document), db: db}, nil
}

// Get returns the cached document for key, loading it from disk into
// memory on first access.
func (c *Cache) Get(key string) (*doctree.Document, bool) {
	c.mu.RLock()
	doc, ok := c.mem[key]
	c.mu.RUnlock()
	if ok || c.db == nil {
		return doc, ok
	}

	var data []byte
	c.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(documentsBucket).Get([]byte(key)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if data == nil {
		return nil, false
	}

	doc = &doctree.Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, false
	}

	c.mu.Lock()
	c.mem[key] = doc
	c.mu.Unlock()
	return doc, true
}

// Put stores doc under key in memory and, when persistent, on disk.
func (c *Cache) Put(key string, doc *doctree.Document) error {
	c.mu.Lock()
	c.mem[key] = doc
	c.mu.Unlock()

	if c.db == nil {
		return nil
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(documentsBucket).Put([]byte(key), data)
	})
}

// Len returns the number of documents held in memory.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.mem)
}

// Close releases the bbolt file, if any.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}
