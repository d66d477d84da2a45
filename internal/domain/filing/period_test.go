package filing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("2025-04")
	require.NoError(t, err)
	assert.Equal(t, Period("2025-04"), p)

	for _, bad := range []string{"", "2025", "2025-13", "04-2025", "2025-4"} {
		_, err := ParsePeriod(bad)
		assert.Error(t, err, bad)
	}
}

func TestPeriod_PrevNext(t *testing.T) {
	p := Period("2025-01")
	assert.Equal(t, Period("2024-12"), p.Prev())
	assert.Equal(t, Period("2025-02"), p.Next())
	assert.True(t, p.Prev().Before(p))
	assert.False(t, p.Before(p))
}

func TestPeriodOf(t *testing.T) {
	assert.Equal(t, Period("2025-04"),
		PeriodOf(time.Date(2025, 4, 30, 23, 59, 0, 0, time.UTC)))
}

func TestPeriodRange(t *testing.T) {
	got := PeriodRange("2025-02", 4)
	assert.Equal(t, []Period{"2024-11", "2024-12", "2025-01", "2025-02"}, got)

	assert.Nil(t, PeriodRange("2025-02", 0))
	assert.Equal(t, []Period{"2025-02"}, PeriodRange("2025-02", 1))
}
