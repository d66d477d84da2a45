// Package aggregation derives the measured risk factors for a client from
// the filing, invoice, and document stores.  It is the bridge between the
// bookkeeping subsystem and the pure assessment engine.
package aggregation

import (
	"context"
	"time"

	"github.com/complyhub/gst-sentinel/internal/domain/assessment"
	"github.com/complyhub/gst-sentinel/internal/domain/filing"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/logging"
	"github.com/complyhub/gst-sentinel/pkg/errors"
	"github.com/complyhub/gst-sentinel/pkg/types/common"
)

// DefaultLookbackPeriods is the assessment window: factors are derived from
// the client's last six tax periods.
const DefaultLookbackPeriods = 6

// FactorSource produces one RiskFactorSet per client as of a given instant.
type FactorSource interface {
	BuildFactors(ctx context.Context, clientID common.ID, asOf time.Time) (assessment.RiskFactorSet, error)
}

// Aggregator implements FactorSource on top of the filing repositories.
type Aggregator struct {
	filings   filing.FilingRepository
	invoices  filing.InvoiceRepository
	documents filing.DocumentRepository
	lookback  int
	logger    logging.Logger
}

// NewAggregator creates an Aggregator.  lookback ≤ 0 selects the default
// six-period window.
func NewAggregator(
	filings filing.FilingRepository,
	invoices filing.InvoiceRepository,
	documents filing.DocumentRepository,
	lookback int,
	logger logging.Logger,
) *Aggregator {
	if lookback <= 0 {
		lookback = DefaultLookbackPeriods
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Aggregator{
		filings:   filings,
		invoices:  invoices,
		documents: documents,
		lookback:  lookback,
		logger:    logger.Named("aggregator"),
	}
}

// BuildFactors derives the RiskFactorSet for the client over the lookback
// window ending at asOf.  A client with no bookkeeping data at all yields the
// zero-risk factor set (perfect accuracy, zero counts).
func (a *Aggregator) BuildFactors(ctx context.Context, clientID common.ID, asOf time.Time) (assessment.RiskFactorSet, error) {
	periods := filing.PeriodRange(filing.PeriodOf(asOf), a.lookback)

	filings, err := a.filings.ListByClientPeriods(ctx, clientID, periods)
	if err != nil {
		return assessment.RiskFactorSet{}, errors.Wrap(err, errors.ErrCodeDatabaseError,
			"aggregating filings")
	}
	invoices, err := a.invoices.ListByClientPeriods(ctx, clientID, periods)
	if err != nil {
		return assessment.RiskFactorSet{}, errors.Wrap(err, errors.ErrCodeDatabaseError,
			"aggregating invoices")
	}
	missingDocs, err := a.documents.CountMissing(ctx, clientID, periods)
	if err != nil {
		return assessment.RiskFactorSet{}, errors.Wrap(err, errors.ErrCodeDatabaseError,
			"counting missing documents")
	}

	factors := assessment.RiskFactorSet{
		IncompleteDocsCount: missingDocs,
	}
	applyFilingFactors(&factors, filings, asOf)
	applyInvoiceFactors(&factors, invoices)

	a.logger.Debug("factors aggregated",
		logging.String("client_id", clientID.String()),
		logging.Int("filings", len(filings)),
		logging.Int("invoices", len(invoices)),
		logging.Int("missing_docs", missingDocs),
	)
	return factors, nil
}

// applyFilingFactors fills the filing-derived fields: overdue counts, mean
// lateness, filing accuracy, and amendment rate.
//
// Mean lateness averages over the filings that are or were late, so one
// chronically late return is not diluted by punctual ones.  Accuracy and
// amendment rate are percentages over filed returns; a window with nothing
// filed yet reports 100% accuracy and lets the overdue factors carry the
// signal.
func applyFilingFactors(factors *assessment.RiskFactorSet, filings []*filing.Filing, asOf time.Time) {
	var (
		filed     int
		amended   int
		lateCount int
		lateDays  float64
	)
	for _, f := range filings {
		if f.IsOverdue(asOf) {
			factors.OverdueFilingsCount++
		}
		if days := f.OverdueDays(asOf); days > 0 {
			lateCount++
			lateDays += days
		}
		if f.FiledAt != nil {
			filed++
			if f.Amended() {
				amended++
			}
		}
	}

	if lateCount > 0 {
		factors.OverdueDaysAvg = lateDays / float64(lateCount)
	}
	factors.FilingAccuracy = 100
	if filed > 0 {
		factors.FilingAccuracy = float64(filed-amended) / float64(filed) * 100
		factors.AmendmentRate = float64(amended) / float64(filed) * 100
	}
}

// applyInvoiceFactors fills the ITC fields from purchase invoices.  Pending
// invoices have not been reconciled yet and are excluded from the accuracy
// base; a window with nothing reconciled reports 100%.
func applyInvoiceFactors(factors *assessment.RiskFactorSet, invoices []*filing.Invoice) {
	var reconciled, good int
	for _, inv := range invoices {
		if inv.Kind != filing.InvoicePurchase {
			continue
		}
		switch inv.MatchStatus {
		case filing.ITCMatched, filing.ITCResolved:
			reconciled++
			good++
		case filing.ITCMismatched:
			reconciled++
			factors.ITCMismatchCount++
		}
	}

	factors.ITCClaimAccuracy = 100
	if reconciled > 0 {
		factors.ITCClaimAccuracy = float64(good) / float64(reconciled) * 100
	}
}
