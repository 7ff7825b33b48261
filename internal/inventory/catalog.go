package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/allegro/bigcache/v3"
	"go.uber.org/zap"
)

// CatalogConfig sizes the lookup cache.
type CatalogConfig struct {
	TTL       time.Duration `yaml:"ttl"`
	Shards    int           `yaml:"shards"`
	MaxSizeMB int           `yaml:"max_size_mb"`
}

// CatalogStats is a point-in-time view of catalog traffic.
type CatalogStats struct {
	Entries int     `yaml:"entries" json:"entries"`
	Hits    uint64  `yaml:"hits" json:"hits"`
	Misses  uint64  `yaml:"misses" json:"misses"`
	HitRate float64 `yaml:"hit_rate" json:"hit_rate"`
}

// Catalog answers (kind, name, level) lookups over loaded inventory
// entries. The first entry loaded for a key wins, the same rule the bonus
// calculation applies to duplicate miners.
type Catalog struct {
	logger *zap.Logger
	cache  *bigcache.BigCache
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewCatalog creates an empty catalog. Zero config fields fall back to
// defaults sized for a few thousand entries.
func NewCatalog(logger *zap.Logger, cfg CatalogConfig) (*Catalog, error) {
	if cfg.TTL == 0 {
		cfg.TTL = 30 * time.Minute
	}
	if cfg.Shards == 0 {
		cfg.Shards = 64
	}
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 32
	}

	bcConfig := bigcache.Config{
		Shards:             cfg.Shards,
		LifeWindow:         cfg.TTL,
		CleanWindow:        5 * time.Minute,
		MaxEntriesInWindow: 10000,
		MaxEntrySize:       512,
		Verbose:            false,
		HardMaxCacheSize:   cfg.MaxSizeMB,
	}

	cache, err := bigcache.New(context.Background(), bcConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog cache: %w", err)
	}

	return &Catalog{
		logger: logger.Named("catalog"),
		cache:  cache,
	}, nil
}

// Key folds an item identity into its catalog key. Names fold case so
// lookups typed by hand still match.
func Key(kind Kind, name string, level int) string {
	return fmt.Sprintf("%s|%s|%d", kind, strings.ToLower(strings.TrimSpace(name)), level)
}

// Put stores an entry unless its key is already present.
func (c *Catalog) Put(e Entry) error {
	key := Key(e.Kind, e.Name, e.Level)
	if _, err := c.cache.Get(key); err == nil {
		return nil
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode catalog entry: %w", err)
	}
	if err := c.cache.Set(key, data); err != nil {
		return fmt.Errorf("failed to store catalog entry: %w", err)
	}
	return nil
}

// PutAll loads entries in order, keeping the first seen per key.
func (c *Catalog) PutAll(entries []Entry) error {
	for i := range entries {
		if err := c.Put(entries[i]); err != nil {
			return err
		}
	}
	c.logger.Debug("Catalog loaded",
		zap.Int("entries", c.cache.Len()),
		zap.Int("items", len(entries)),
	)
	return nil
}

// Lookup fetches the entry stored for a key.
func (c *Catalog) Lookup(kind Kind, name string, level int) (Entry, bool) {
	data, err := c.cache.Get(Key(kind, name, level))
	if err != nil {
		c.misses.Add(1)
		return Entry{}, false
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		c.misses.Add(1)
		return Entry{}, false
	}
	c.hits.Add(1)
	return e, true
}

// Len returns the number of distinct keys stored.
func (c *Catalog) Len() int {
	return c.cache.Len()
}

// Stats snapshots catalog traffic.
func (c *Catalog) Stats() CatalogStats {
	hits := c.hits.Load()
	misses := c.misses.Load()
	s := CatalogStats{
		Entries: c.cache.Len(),
		Hits:    hits,
		Misses:  misses,
	}
	if total := hits + misses; total > 0 {
		s.HitRate = float64(hits) / float64(total) * 100
	}
	return s
}

// Close releases the cache.
func (c *Catalog) Close() error {
	return c.cache.Close()
}
