package filing

import (
	"fmt"
	"strings"
	"time"

	"github.com/complyhub/gst-sentinel/pkg/errors"
	"github.com/complyhub/gst-sentinel/pkg/types/common"
)

// ReturnType is the GST return form a filing corresponds to.
type ReturnType string

const (
	ReturnGSTR1  ReturnType = "GSTR-1"
	ReturnGSTR3B ReturnType = "GSTR-3B"
	ReturnGSTR9  ReturnType = "GSTR-9"
)

var validReturnTypes = map[ReturnType]bool{
	ReturnGSTR1:  true,
	ReturnGSTR3B: true,
	ReturnGSTR9:  true,
}

// Filing is one GST return owed by a client for one period.  A filing is
// created when the obligation arises (due date known) and later marked filed;
// amendments are counted so filing accuracy can be derived.
type Filing struct {
	common.BaseEntity

	ClientID   common.ID  `json:"client_id"`
	ReturnType ReturnType `json:"return_type"`
	Period     Period     `json:"period"`
	DueDate    time.Time  `json:"due_date"`

	// FiledAt is nil while the return is outstanding.
	FiledAt *time.Time `json:"filed_at,omitempty"`

	// AmendmentCount is the number of times the return was amended after
	// filing.  A filing with zero amendments counts as accurate.
	AmendmentCount int `json:"amendment_count"`
}

// NewFiling creates a filing obligation.  The due date anchors all overdue
// math, so it must be non-zero and must not precede the period itself.
func NewFiling(clientID common.ID, rt ReturnType, period Period, dueDate time.Time) (*Filing, error) {
	if err := clientID.Validate(); err != nil {
		return nil, errors.Validation(fmt.Sprintf("client id: %v", err))
	}
	if !validReturnTypes[rt] {
		return nil, errors.Validation(fmt.Sprintf("unsupported return type %q", rt))
	}
	if err := period.Validate(); err != nil {
		return nil, err
	}
	if dueDate.IsZero() {
		return nil, errors.Validation("due date must not be zero")
	}
	if dueDate.Before(period.Time()) {
		return nil, errors.Validation(fmt.Sprintf(
			"due date %s precedes period %s", dueDate.Format("2006-01-02"), period))
	}

	now := time.Now().UTC()
	return &Filing{
		BaseEntity: common.BaseEntity{
			ID:        common.NewID(),
			CreatedAt: now,
			UpdatedAt: now,
			Version:   1,
		},
		ClientID:   clientID,
		ReturnType: rt,
		Period:     period,
		DueDate:    dueDate.UTC(),
	}, nil
}

// MarkFiled records that the return was submitted at filedAt.  Filing twice
// is rejected; use RecordAmendment for corrections.
func (f *Filing) MarkFiled(filedAt time.Time) error {
	if f.FiledAt != nil {
		return errors.InvalidState(fmt.Sprintf(
			"filing %s for period %s already filed", f.ReturnType, f.Period))
	}
	if filedAt.IsZero() {
		return errors.Validation("filed-at time must not be zero")
	}
	at := filedAt.UTC()
	f.FiledAt = &at
	f.Touch(time.Now().UTC())
	return nil
}

// RecordAmendment counts one amendment against an already-filed return.
func (f *Filing) RecordAmendment() error {
	if f.FiledAt == nil {
		return errors.InvalidState("cannot amend a return that has not been filed")
	}
	f.AmendmentCount++
	f.Touch(time.Now().UTC())
	return nil
}

// Amended reports whether the return required any amendment.
func (f *Filing) Amended() bool {
	return f.AmendmentCount > 0
}

// IsOverdue reports whether the return is outstanding past its due date as
// of the given instant.
func (f *Filing) IsOverdue(asOf time.Time) bool {
	return f.FiledAt == nil && asOf.After(f.DueDate)
}

// OverdueDays returns how many whole days the return is (or was) late as of
// the given instant: zero when filed on time or not yet due, the lateness of
// the submission when filed late, and the running lateness when still
// outstanding.
func (f *Filing) OverdueDays(asOf time.Time) float64 {
	ref := asOf
	if f.FiledAt != nil {
		ref = *f.FiledAt
	}
	late := ref.Sub(f.DueDate).Hours() / 24
	if late < 0 {
		return 0
	}
	return late
}

// Label is a human-readable identifier used in logs.
func (f *Filing) Label() string {
	return strings.Join([]string{string(f.ReturnType), string(f.Period)}, " ")
}
