package filing

import (
	"fmt"
	"strings"
	"time"

	"github.com/complyhub/gst-sentinel/pkg/errors"
	"github.com/complyhub/gst-sentinel/pkg/types/common"
)

// InvoiceKind distinguishes outward (sales) from inward (purchase) invoices.
// Only purchase invoices participate in ITC matching.
type InvoiceKind string

const (
	InvoicePurchase InvoiceKind = "purchase"
	InvoiceSales    InvoiceKind = "sales"
)

// ITCMatchStatus is the reconciliation state of a purchase invoice against
// the supplier-reported GSTR-2B data.
type ITCMatchStatus string

const (
	// ITCPending: not yet reconciled; excluded from accuracy math.
	ITCPending ITCMatchStatus = "pending"
	// ITCMatched: supplier reported the invoice, claim is good.
	ITCMatched ITCMatchStatus = "matched"
	// ITCMismatched: supplier data disagrees; claim at risk of reversal.
	ITCMismatched ITCMatchStatus = "mismatched"
	// ITCResolved: a former mismatch fixed via amendment or vendor followup.
	ITCResolved ITCMatchStatus = "resolved"
)

// Invoice is one inward or outward invoice booked for a client in a period.
type Invoice struct {
	common.BaseEntity

	ClientID      common.ID      `json:"client_id"`
	Kind          InvoiceKind    `json:"kind"`
	Period        Period         `json:"period"`
	InvoiceNumber string         `json:"invoice_number"`
	TaxableValue  float64        `json:"taxable_value"`
	TaxAmount     float64        `json:"tax_amount"`
	MatchStatus   ITCMatchStatus `json:"match_status"`
}

// NewInvoice books an invoice.  Purchase invoices start in ITCPending; sales
// invoices carry no match status.
func NewInvoice(clientID common.ID, kind InvoiceKind, period Period, number string, taxableValue, taxAmount float64) (*Invoice, error) {
	if err := clientID.Validate(); err != nil {
		return nil, errors.Validation(fmt.Sprintf("client id: %v", err))
	}
	if kind != InvoicePurchase && kind != InvoiceSales {
		return nil, errors.Validation(fmt.Sprintf("unsupported invoice kind %q", kind))
	}
	if err := period.Validate(); err != nil {
		return nil, err
	}
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, errors.Validation("invoice number must not be empty")
	}
	if taxableValue < 0 || taxAmount < 0 {
		return nil, errors.Validation("invoice amounts must be ≥ 0")
	}

	status := ITCMatchStatus("")
	if kind == InvoicePurchase {
		status = ITCPending
	}
	now := time.Now().UTC()
	return &Invoice{
		BaseEntity: common.BaseEntity{
			ID:        common.NewID(),
			CreatedAt: now,
			UpdatedAt: now,
			Version:   1,
		},
		ClientID:      clientID,
		Kind:          kind,
		Period:        period,
		InvoiceNumber: number,
		TaxableValue:  taxableValue,
		TaxAmount:     taxAmount,
		MatchStatus:   status,
	}, nil
}

// itcTransitions is the reconciliation state machine for purchase invoices.
var itcTransitions = map[ITCMatchStatus][]ITCMatchStatus{
	ITCPending:    {ITCMatched, ITCMismatched},
	ITCMismatched: {ITCMatched, ITCResolved},
	ITCMatched:    {ITCMismatched},
	ITCResolved:   {},
}

// SetMatchStatus moves a purchase invoice through the reconciliation state
// machine.  Sales invoices are never reconciled.
func (i *Invoice) SetMatchStatus(next ITCMatchStatus) error {
	if i.Kind != InvoicePurchase {
		return errors.InvalidState("only purchase invoices carry an ITC match status")
	}
	for _, allowed := range itcTransitions[i.MatchStatus] {
		if allowed == next {
			i.MatchStatus = next
			i.Touch(time.Now().UTC())
			return nil
		}
	}
	return errors.InvalidState(fmt.Sprintf(
		"illegal ITC match transition %s → %s for invoice %s",
		i.MatchStatus, next, i.InvoiceNumber))
}

// UnresolvedMismatch reports whether the invoice is a purchase invoice stuck
// in the mismatched state.
func (i *Invoice) UnresolvedMismatch() bool {
	return i.Kind == InvoicePurchase && i.MatchStatus == ITCMismatched
}
