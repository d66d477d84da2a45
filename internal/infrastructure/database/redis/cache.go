package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/complyhub/gst-sentinel/internal/domain/assessment"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/logging"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/prometheus"
	"github.com/complyhub/gst-sentinel/pkg/errors"
)

const (
	defaultKeyPrefix = "gstsentinel:"
	defaultRecordTTL = 15 * time.Minute

	riskKeyPrefix = "risk:"
)

// RiskCache caches the latest risk record per client as JSON.  A miss is
// reported as a not-found error so callers can fall through to the store.
type RiskCache struct {
	client  *Client
	logger  logging.Logger
	metrics *prometheus.AppMetrics
	prefix  string
	ttl     time.Duration
}

// NewRiskCache builds the cache from the client's configuration; empty
// prefix and zero TTL fall back to package defaults.
func NewRiskCache(client *Client, logger logging.Logger, metrics *prometheus.AppMetrics) *RiskCache {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = prometheus.NewNopMetrics()
	}
	prefix := client.cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	ttl := client.cfg.DefaultTTL
	if ttl == 0 {
		ttl = defaultRecordTTL
	}
	return &RiskCache{client: client, logger: logger, metrics: metrics, prefix: prefix, ttl: ttl}
}

func (c *RiskCache) key(clientID string) string {
	return c.prefix + riskKeyPrefix + clientID
}

// randFloat is swapped out in tests to make the jitter deterministic.
var randFloat = rand.Float64

// jitterTTL spreads expirations by +/- 10% so a batch run's writes do not
// all expire in the same instant.
func (c *RiskCache) jitterTTL() time.Duration {
	jitter := float64(c.ttl) * 0.1 * (randFloat()*2 - 1)
	return c.ttl + time.Duration(jitter)
}

// GetRecord returns the cached record, or a not-found error on a miss.
func (c *RiskCache) GetRecord(ctx context.Context, clientID string) (*assessment.ClientRiskRecord, error) {
	data, err := c.client.Get(ctx, c.key(clientID))
	if err == goredis.Nil {
		c.metrics.CacheMissesTotal.WithLabelValues("risk_record").Inc()
		return nil, errors.NotFound("risk record not cached")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "failed to read risk record from cache")
	}

	var record assessment.ClientRiskRecord
	if err := json.Unmarshal(data, &record); err != nil {
		// A corrupt entry is dropped so the next read repopulates it.
		c.logger.Warn("dropping undecodable cached risk record",
			logging.String("client_id", clientID), logging.Err(err))
		_ = c.client.Del(ctx, c.key(clientID))
		c.metrics.CacheMissesTotal.WithLabelValues("risk_record").Inc()
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode cached risk record")
	}
	c.metrics.CacheHitsTotal.WithLabelValues("risk_record").Inc()
	return &record, nil
}

// SetRecord stores the record under its client's key.
func (c *RiskCache) SetRecord(ctx context.Context, record *assessment.ClientRiskRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode risk record")
	}
	if err := c.client.Set(ctx, c.key(record.ClientID), data, c.jitterTTL()); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to cache risk record")
	}
	return nil
}

// InvalidateRecord removes the client's cached record.
func (c *RiskCache) InvalidateRecord(ctx context.Context, clientID string) error {
	if err := c.client.Del(ctx, c.key(clientID)); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to invalidate risk record")
	}
	return nil
}
