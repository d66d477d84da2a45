package filing

import (
	"context"

	"github.com/complyhub/gst-sentinel/pkg/types/common"
)

// FilingRepository defines the persistence contract for GST filings.
type FilingRepository interface {
	Create(ctx context.Context, f *Filing) error
	GetByID(ctx context.Context, id common.ID) (*Filing, error)
	Update(ctx context.Context, f *Filing) error

	// ListByClientPeriods returns every filing for the client in any of the
	// given periods, oldest first.
	ListByClientPeriods(ctx context.Context, clientID common.ID, periods []Period) ([]*Filing, error)

	// ListByClient returns one page of the client's filings, newest first.
	ListByClient(ctx context.Context, clientID common.ID, p common.Pagination) ([]*Filing, int64, error)
}

// InvoiceRepository defines the persistence contract for invoices.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, id common.ID) (*Invoice, error)
	Update(ctx context.Context, inv *Invoice) error

	// ListByClientPeriods returns every invoice for the client in any of the
	// given periods.
	ListByClientPeriods(ctx context.Context, clientID common.ID, periods []Period) ([]*Invoice, error)
}

// DocumentRepository defines the persistence contract for required documents.
type DocumentRepository interface {
	Create(ctx context.Context, d *Document) error
	GetByID(ctx context.Context, id common.ID) (*Document, error)
	Update(ctx context.Context, d *Document) error

	// CountMissing returns how many required documents are still outstanding
	// for the client across the given periods.
	CountMissing(ctx context.Context, clientID common.ID, periods []Period) (int, error)
}
