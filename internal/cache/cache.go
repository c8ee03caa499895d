// Package cache is the shared result cache for provider and AI responses.
// It is fail-open by construction: a missing or broken backend degrades to
// permanent cache misses and silent no-op writes, never to an error the
// caller can observe.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/location-intel/internal/model"
)

// Cache sources. Each source has its own expiry, matching how fast the
// underlying data changes.
const (
	SourceDemographics = "demographics"
	SourceBuilding     = "building"
	SourceTransit      = "transit"
	SourceOpenMap      = "openmap"
	SourceCommercial   = "commercial"
	SourceAIText       = "ai-text"
	SourceAIClassify   = "ai-classify"
	SourceFullAnalysis = "full-analysis"
)

var ttlBySource = map[string]time.Duration{
	SourceDemographics: 365 * 24 * time.Hour,
	SourceBuilding:     30 * 24 * time.Hour,
	SourceTransit:      90 * 24 * time.Hour,
	SourceOpenMap:      7 * 24 * time.Hour,
	SourceCommercial:   24 * time.Hour,
	SourceAIText:       24 * time.Hour,
	SourceAIClassify:   7 * 24 * time.Hour,
	SourceFullAnalysis: 24 * time.Hour,
}

// TTLFor returns the configured expiry for a source, defaulting to 24h for
// unknown tags.
func TTLFor(source string) time.Duration {
	if ttl, ok := ttlBySource[source]; ok {
		return ttl
	}
	return 24 * time.Hour
}

// Key builds the cache key for a point-scoped entry. Coordinates are
// rounded to 4 decimals (~11m buckets) so nearby requests share entries.
func Key(pt model.Point, radiusMeters int, source string) string {
	return fmt.Sprintf("loc:%s:%.4f:%.4f:%d", source, pt.Lat, pt.Lng, radiusMeters)
}

// Cache wraps a Backend with key construction, the per-source TTL table,
// and fail-open semantics. The zero-value niladic methods never return
// errors; backend trouble shows up only as extra latency upstream.
type Cache struct {
	backend Backend
}

// New wraps a backend. A nil backend yields an always-miss cache.
func New(backend Backend) *Cache {
	if backend == nil {
		backend = Disabled()
	}
	return &Cache{backend: backend}
}

// Get looks up a point-scoped entry. A broken backend reads as a miss.
func (c *Cache) Get(ctx context.Context, pt model.Point, radiusMeters int, source string) ([]byte, bool) {
	return c.GetKey(ctx, Key(pt, radiusMeters, source))
}

// Set stores a point-scoped entry under the source's TTL. Failures are
// logged at debug and otherwise dropped.
func (c *Cache) Set(ctx context.Context, pt model.Point, radiusMeters int, source string, v any) {
	c.SetKey(ctx, Key(pt, radiusMeters, source), source, v)
}

// GetKey looks up an entry by explicit key, for callers whose keys are not
// point-shaped (classification hashes, insight keys).
func (c *Cache) GetKey(ctx context.Context, key string) ([]byte, bool) {
	data, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		zap.L().Debug("cache: get failed, treating as miss", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return data, ok
}

// SetKey stores a JSON-encoded entry by explicit key under the source's TTL.
func (c *Cache) SetKey(ctx context.Context, key, source string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		zap.L().Debug("cache: marshal failed, skipping write", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.backend.Set(ctx, key, data, TTLFor(source)); err != nil {
		zap.L().Debug("cache: set failed, skipping write", zap.String("key", key), zap.Error(err))
	}
}

// Close releases the backend.
func (c *Cache) Close() error {
	return c.backend.Close()
}

// GetJSON looks up and decodes a point-scoped entry. Undecodable entries
// read as a miss.
func GetJSON[T any](ctx context.Context, c *Cache, pt model.Point, radiusMeters int, source string) (*T, bool) {
	return GetJSONKey[T](ctx, c, Key(pt, radiusMeters, source))
}

// GetJSONKey looks up and decodes an entry by explicit key.
func GetJSONKey[T any](ctx context.Context, c *Cache, key string) (*T, bool) {
	data, ok := c.GetKey(ctx, key)
	if !ok {
		return nil, false
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		zap.L().Debug("cache: unmarshal failed, treating as miss", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &v, true
}
