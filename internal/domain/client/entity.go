// Package client implements the GST client registry bounded context: the
// taxpayer entities whose compliance the platform assesses.  A Client is the
// aggregate root every other context keys on through its ID.
package client

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/complyhub/gst-sentinel/pkg/errors"
	"github.com/complyhub/gst-sentinel/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// GSTIN validation
// ─────────────────────────────────────────────────────────────────────────────

// reGSTIN matches a 15-character GST identification number: a 2-digit state
// code, the 10-character PAN, an entity code, the literal 'Z', and a checksum
// character.  Checksum verification is out of scope; format is enforced.
var reGSTIN = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][0-9A-Z]Z[0-9A-Z]$`)

// ─────────────────────────────────────────────────────────────────────────────
// Enumerations
// ─────────────────────────────────────────────────────────────────────────────

// Status is the registry lifecycle state of a client.
type Status string

const (
	StatusActive       Status = "active"
	StatusSuspended    Status = "suspended"
	StatusDeregistered Status = "deregistered"
)

// FilingFrequency is the GSTR filing cadence the client is registered for.
type FilingFrequency string

const (
	FrequencyMonthly   FilingFrequency = "monthly"
	FrequencyQuarterly FilingFrequency = "quarterly"
)

// allowedTransitions defines the valid next states reachable from each
// status.  Deregistered is terminal.
var allowedTransitions = map[Status][]Status{
	StatusActive:       {StatusSuspended, StatusDeregistered},
	StatusSuspended:    {StatusActive, StatusDeregistered},
	StatusDeregistered: {},
}

var validFrequencies = map[FilingFrequency]bool{
	FrequencyMonthly:   true,
	FrequencyQuarterly: true,
}

// ─────────────────────────────────────────────────────────────────────────────
// Client aggregate root
// ─────────────────────────────────────────────────────────────────────────────

// Client is the aggregate root of the client registry.  Mutations must go
// through the exported methods so that audit fields and status invariants
// are maintained.
type Client struct {
	common.BaseEntity

	GSTIN     string `json:"gstin"`
	LegalName string `json:"legal_name"`
	TradeName string `json:"trade_name,omitempty"`

	// StateCode is the 2-digit GST state code, always derived from the GSTIN.
	StateCode string `json:"state_code"`

	FilingFrequency FilingFrequency `json:"filing_frequency"`
	Status          Status          `json:"status"`
}

// NewClient creates a Client aggregate, enforcing construction invariants:
// the GSTIN must be a well-formed 15-character identifier, the legal name
// must be non-empty, and the filing frequency must be a supported value.
// New clients start active.
func NewClient(gstin, legalName, tradeName string, freq FilingFrequency) (*Client, error) {
	gstin = strings.ToUpper(strings.TrimSpace(gstin))
	if !reGSTIN.MatchString(gstin) {
		return nil, errors.Newf(errors.ErrCodeGSTINInvalid, "malformed GSTIN %q", gstin)
	}
	if strings.TrimSpace(legalName) == "" {
		return nil, errors.Validation("legal name must not be empty")
	}
	if !validFrequencies[freq] {
		return nil, errors.Validation(fmt.Sprintf("unsupported filing frequency %q", freq))
	}

	now := time.Now().UTC()
	return &Client{
		BaseEntity: common.BaseEntity{
			ID:        common.NewID(),
			CreatedAt: now,
			UpdatedAt: now,
			Version:   1,
		},
		GSTIN:           gstin,
		LegalName:       strings.TrimSpace(legalName),
		TradeName:       strings.TrimSpace(tradeName),
		StateCode:       gstin[:2],
		FilingFrequency: freq,
		Status:          StatusActive,
	}, nil
}

// UpdateStatus moves the client to a new registry status, rejecting
// transitions not in the lifecycle state machine.
func (c *Client) UpdateStatus(next Status) error {
	for _, allowed := range allowedTransitions[c.Status] {
		if allowed == next {
			c.Status = next
			c.Touch(time.Now().UTC())
			return nil
		}
	}
	return errors.InvalidState(fmt.Sprintf(
		"illegal client status transition %s → %s", c.Status, next))
}

// ChangeFilingFrequency switches the filing cadence, typically at the start
// of a fiscal year when the taxpayer opts in or out of the quarterly scheme.
func (c *Client) ChangeFilingFrequency(freq FilingFrequency) error {
	if !validFrequencies[freq] {
		return errors.Validation(fmt.Sprintf("unsupported filing frequency %q", freq))
	}
	if c.FilingFrequency == freq {
		return nil
	}
	c.FilingFrequency = freq
	c.Touch(time.Now().UTC())
	return nil
}

// Assessable reports whether the client should be included in compliance
// assessment runs.  Suspended and deregistered clients are skipped.
func (c *Client) Assessable() bool {
	return c.Status == StatusActive
}
