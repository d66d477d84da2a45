// Package filing implements the GST filing bounded context: returns filed
// per tax period, purchase/sales invoices with their ITC match state, and
// the required-document checklist.  The risk aggregator derives one
// RiskFactorSet per (client, period) from these entities.
package filing

import (
	"time"

	"github.com/complyhub/gst-sentinel/pkg/errors"
)

// Period identifies one GST tax period in "YYYY-MM" form.  Quarterly filers
// use the last month of the quarter as their period.
type Period string

const periodLayout = "2006-01"

// ParsePeriod validates and normalizes a period string.
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse(periodLayout, s)
	if err != nil {
		return "", errors.Newf(errors.ErrCodeFilingPeriodInvalid,
			"period %q is not in YYYY-MM form", s)
	}
	return Period(t.Format(periodLayout)), nil
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period(t.UTC().Format(periodLayout))
}

// Validate checks the period is well formed.
func (p Period) Validate() error {
	_, err := ParsePeriod(string(p))
	return err
}

// Time returns the first instant of the period in UTC.
func (p Period) Time() time.Time {
	t, err := time.Parse(periodLayout, string(p))
	if err != nil {
		return time.Time{}
	}
	return t
}

// Prev returns the immediately preceding period.
func (p Period) Prev() Period {
	return Period(p.Time().AddDate(0, -1, 0).Format(periodLayout))
}

// Next returns the immediately following period.
func (p Period) Next() Period {
	return Period(p.Time().AddDate(0, 1, 0).Format(periodLayout))
}

// Before reports whether p is earlier than other.
func (p Period) Before(other Period) bool {
	return p.Time().Before(other.Time())
}

func (p Period) String() string { return string(p) }

// PeriodRange returns the n periods ending at and including end, oldest
// first.  It is used to build the lookback window for factor aggregation.
func PeriodRange(end Period, n int) []Period {
	if n < 1 {
		return nil
	}
	out := make([]Period, n)
	cur := end
	for i := n - 1; i >= 0; i-- {
		out[i] = cur
		cur = cur.Prev()
	}
	return out
}
