package filing

import (
	"fmt"
	"strings"
	"time"

	"github.com/complyhub/gst-sentinel/pkg/errors"
	"github.com/complyhub/gst-sentinel/pkg/types/common"
)

// DocumentType names a document the platform requires to substantiate a
// period's filings.
type DocumentType string

const (
	DocSalesRegister    DocumentType = "sales_register"
	DocPurchaseRegister DocumentType = "purchase_register"
	DocBankStatement    DocumentType = "bank_statement"
	DocEWayBillSummary  DocumentType = "eway_bill_summary"
)

var validDocumentTypes = map[DocumentType]bool{
	DocSalesRegister:    true,
	DocPurchaseRegister: true,
	DocBankStatement:    true,
	DocEWayBillSummary:  true,
}

// Document tracks one required document for a (client, period).  The
// document subsystem records presence only; file storage is out of scope.
type Document struct {
	common.BaseEntity

	ClientID common.ID    `json:"client_id"`
	Period   Period       `json:"period"`
	DocType  DocumentType `json:"doc_type"`

	// ReceivedAt is nil while the document is outstanding.
	ReceivedAt *time.Time `json:"received_at,omitempty"`

	// Reference is an external pointer (mail thread, DMS id) for auditors.
	Reference string `json:"reference,omitempty"`
}

// NewDocument registers a required document for the period.
func NewDocument(clientID common.ID, period Period, docType DocumentType) (*Document, error) {
	if err := clientID.Validate(); err != nil {
		return nil, errors.Validation(fmt.Sprintf("client id: %v", err))
	}
	if err := period.Validate(); err != nil {
		return nil, err
	}
	if !validDocumentTypes[docType] {
		return nil, errors.Validation(fmt.Sprintf("unsupported document type %q", docType))
	}

	now := time.Now().UTC()
	return &Document{
		BaseEntity: common.BaseEntity{
			ID:        common.NewID(),
			CreatedAt: now,
			UpdatedAt: now,
			Version:   1,
		},
		ClientID: clientID,
		Period:   period,
		DocType:  docType,
	}, nil
}

// MarkReceived records that the document arrived.
func (d *Document) MarkReceived(at time.Time, reference string) error {
	if d.ReceivedAt != nil {
		return errors.InvalidState(fmt.Sprintf(
			"document %s for period %s already received", d.DocType, d.Period))
	}
	if at.IsZero() {
		return errors.Validation("received-at time must not be zero")
	}
	t := at.UTC()
	d.ReceivedAt = &t
	d.Reference = strings.TrimSpace(reference)
	d.Touch(time.Now().UTC())
	return nil
}

// Missing reports whether the document is still outstanding.
func (d *Document) Missing() bool {
	return d.ReceivedAt == nil
}
