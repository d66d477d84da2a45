package redis

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/suite"

	"github.com/complyhub/gst-sentinel/internal/config"
	"github.com/complyhub/gst-sentinel/internal/domain/assessment"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/logging"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/prometheus"
	"github.com/complyhub/gst-sentinel/pkg/errors"
)

type RiskCacheTestSuite struct {
	suite.Suite
	mock  redismock.ClientMock
	cache *RiskCache
}

func (s *RiskCacheTestSuite) SetupTest() {
	db, mock := redismock.NewClientMock()
	s.mock = mock

	logger := logging.NewNopLogger()
	client := NewClientWithRedis(db, config.RedisConfig{
		KeyPrefix:  "test:",
		DefaultTTL: 10 * time.Minute,
	}, logger)
	s.cache = NewRiskCache(client, logger, nil)

	// Pin the jitter to zero so Set expectations can match exact TTLs.
	randFloat = func() float64 { return 0.5 }
}

func (s *RiskCacheTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *RiskCacheTestSuite) record() *assessment.ClientRiskRecord {
	return &assessment.ClientRiskRecord{
		ClientID:         "client-1",
		RiskScore:        42,
		ComplianceStatus: assessment.StatusWarning,
		Flags:            assessment.Flags{HasOverdueFiling: true},
		LastAssessedAt:   time.Date(2025, 4, 20, 10, 0, 0, 0, time.UTC),
	}
}

func (s *RiskCacheTestSuite) TestGetRecord_Hit() {
	record := s.record()
	data, err := json.Marshal(record)
	s.Require().NoError(err)

	s.mock.ExpectGet("test:risk:client-1").SetVal(string(data))

	got, err := s.cache.GetRecord(context.Background(), "client-1")
	s.NoError(err)
	s.Equal(record.RiskScore, got.RiskScore)
	s.Equal(assessment.StatusWarning, got.ComplianceStatus)
}

func (s *RiskCacheTestSuite) TestGetRecord_Miss() {
	s.mock.ExpectGet("test:risk:client-2").RedisNil()

	got, err := s.cache.GetRecord(context.Background(), "client-2")
	s.Nil(got)
	s.True(errors.IsNotFound(err))
}

func (s *RiskCacheTestSuite) TestGetRecord_CorruptEntryDropped() {
	s.mock.ExpectGet("test:risk:client-3").SetVal("{not json")
	s.mock.ExpectDel("test:risk:client-3").SetVal(1)

	got, err := s.cache.GetRecord(context.Background(), "client-3")
	s.Nil(got)
	s.True(errors.IsCode(err, errors.ErrCodeSerialization))
}

func (s *RiskCacheTestSuite) TestGetRecord_CountsHitsAndMisses() {
	var hits, misses int32
	metrics := prometheus.NewNopMetrics()
	metrics.CacheHitsTotal = countingCounterVec{n: &hits}
	metrics.CacheMissesTotal = countingCounterVec{n: &misses}
	s.cache.metrics = metrics

	record := s.record()
	data, err := json.Marshal(record)
	s.Require().NoError(err)

	s.mock.ExpectGet("test:risk:client-1").SetVal(string(data))
	_, err = s.cache.GetRecord(context.Background(), "client-1")
	s.NoError(err)

	s.mock.ExpectGet("test:risk:client-2").RedisNil()
	_, err = s.cache.GetRecord(context.Background(), "client-2")
	s.True(errors.IsNotFound(err))

	// One hit and one miss, each counted exactly once in this layer.
	s.EqualValues(1, atomic.LoadInt32(&hits))
	s.EqualValues(1, atomic.LoadInt32(&misses))
}

type countingCounterVec struct{ n *int32 }

func (v countingCounterVec) WithLabelValues(...string) prometheus.Counter {
	return countingCounter{n: v.n}
}

type countingCounter struct{ n *int32 }

func (c countingCounter) Inc()        { atomic.AddInt32(c.n, 1) }
func (c countingCounter) Add(float64) {}

func (s *RiskCacheTestSuite) TestSetRecord() {
	record := s.record()
	data, err := json.Marshal(record)
	s.Require().NoError(err)

	s.mock.ExpectSet("test:risk:client-1", data, 10*time.Minute).SetVal("OK")

	s.NoError(s.cache.SetRecord(context.Background(), record))
}

func (s *RiskCacheTestSuite) TestInvalidateRecord() {
	s.mock.ExpectDel("test:risk:client-1").SetVal(1)

	s.NoError(s.cache.InvalidateRecord(context.Background(), "client-1"))
}

func TestRiskCacheTestSuite(t *testing.T) {
	suite.Run(t, new(RiskCacheTestSuite))
}
