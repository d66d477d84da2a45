package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved(level zapcore.Level) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return NewLoggerFromCore(core), logs
}

func TestLogger_EmitsFields(t *testing.T) {
	log, logs := newObserved(zapcore.DebugLevel)

	log.Info("assessment completed",
		String("client_id", "c-1"),
		Int("risk_score", 42),
		Float64("change_pct", -20.0),
		Bool("critical", false),
		Duration("elapsed", 15*time.Millisecond),
	)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "assessment completed", entry.Message)

	fields := entry.ContextMap()
	assert.Equal(t, "c-1", fields["client_id"])
	assert.Equal(t, int64(42), fields["risk_score"])
	assert.Equal(t, -20.0, fields["change_pct"])
	assert.Equal(t, false, fields["critical"])
}

func TestLogger_ErrField(t *testing.T) {
	log, logs := newObserved(zapcore.DebugLevel)
	log.Error("upsert failed", Err(errors.New("boom")))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "boom", logs.All()[0].ContextMap()["error"])
}

func TestErrField_Nil(t *testing.T) {
	f := Err(nil)
	assert.Equal(t, "error", f.Key)
	assert.Equal(t, "<nil>", f.Value)
}

func TestLogger_With(t *testing.T) {
	log, logs := newObserved(zapcore.DebugLevel)
	child := log.With(String("job_type", "compliance_check"))
	child.Info("batch started")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "compliance_check", logs.All()[0].ContextMap()["job_type"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	log, logs := newObserved(zapcore.WarnLevel)
	log.Debug("noise")
	log.Info("noise")
	log.Warn("kept")
	assert.Equal(t, 1, logs.Len())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("WARN"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestNewLogger_Defaults(t *testing.T) {
	log, err := NewLogger(Config{})
	require.NoError(t, err)
	assert.NotNil(t, log)
}

func TestNopLoggerAndDefault(t *testing.T) {
	nop := NewNopLogger()
	nop.Info("discarded")
	assert.Equal(t, nop, nop.With(String("a", "b")))

	prev := Default()
	defer SetDefault(prev)

	log, logs := newObserved(zapcore.DebugLevel)
	SetDefault(log)
	Default().Info("via default")
	assert.Equal(t, 1, logs.Len())

	// nil is ignored
	SetDefault(nil)
	assert.Equal(t, log, Default())
}
