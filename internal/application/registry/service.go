// Package registry is the application service for the client registry and
// its filing records.
package registry

import (
	"context"
	"time"

	"github.com/complyhub/gst-sentinel/internal/domain/client"
	"github.com/complyhub/gst-sentinel/internal/domain/filing"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/logging"
	"github.com/complyhub/gst-sentinel/pkg/types/common"
)

// Service coordinates client registration and filing bookkeeping.
type Service struct {
	clients client.Repository
	filings filing.FilingRepository
	logger  logging.Logger
}

// NewService wires the registry service.
func NewService(clients client.Repository, filings filing.FilingRepository, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Service{clients: clients, filings: filings, logger: logger}
}

// RegisterClientInput carries the fields needed to onboard a client.
type RegisterClientInput struct {
	GSTIN           string
	LegalName       string
	TradeName       string
	FilingFrequency client.FilingFrequency
}

// RegisterClient validates and persists a new client.
func (s *Service) RegisterClient(ctx context.Context, in RegisterClientInput) (*client.Client, error) {
	c, err := client.NewClient(in.GSTIN, in.LegalName, in.TradeName, in.FilingFrequency)
	if err != nil {
		return nil, err
	}
	if err := s.clients.Create(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("client registered",
		logging.String("client_id", c.ID.String()),
		logging.String("gstin", c.GSTIN),
		logging.String("state_code", c.StateCode),
	)
	return c, nil
}

// GetClient returns one client by ID.
func (s *Service) GetClient(ctx context.Context, id common.ID) (*client.Client, error) {
	return s.clients.GetByID(ctx, id)
}

// ListClients returns one page of clients plus the total count.
func (s *Service) ListClients(ctx context.Context, p common.Pagination) ([]*client.Client, int64, error) {
	return s.clients.List(ctx, p)
}

// AddFilingInput carries a new filing obligation for a client.
type AddFilingInput struct {
	ClientID   common.ID
	ReturnType filing.ReturnType
	Period     filing.Period
	DueDate    time.Time
}

// AddFiling records a filing obligation after confirming the client exists.
func (s *Service) AddFiling(ctx context.Context, in AddFilingInput) (*filing.Filing, error) {
	if _, err := s.clients.GetByID(ctx, in.ClientID); err != nil {
		return nil, err
	}
	f, err := filing.NewFiling(in.ClientID, in.ReturnType, in.Period, in.DueDate)
	if err != nil {
		return nil, err
	}
	if err := s.filings.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// ListFilings returns one page of a client's filings, newest period first.
func (s *Service) ListFilings(ctx context.Context, clientID common.ID, p common.Pagination) ([]*filing.Filing, int64, error) {
	if _, err := s.clients.GetByID(ctx, clientID); err != nil {
		return nil, 0, err
	}
	return s.filings.ListByClient(ctx, clientID, p)
}

// MarkFilingSubmitted stamps a filing as submitted.
func (s *Service) MarkFilingSubmitted(ctx context.Context, filingID common.ID, filedAt time.Time) (*filing.Filing, error) {
	f, err := s.filings.GetByID(ctx, filingID)
	if err != nil {
		return nil, err
	}
	if err := f.MarkFiled(filedAt); err != nil {
		return nil, err
	}
	if err := s.filings.Update(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}
