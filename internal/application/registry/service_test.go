package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/complyhub/gst-sentinel/internal/domain/client"
	"github.com/complyhub/gst-sentinel/internal/domain/filing"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/logging"
	"github.com/complyhub/gst-sentinel/pkg/errors"
	"github.com/complyhub/gst-sentinel/pkg/types/common"
)

const validGSTIN = "27AAPFU0939F1ZV"

type mockClientRepo struct{ mock.Mock }

func (m *mockClientRepo) Create(ctx context.Context, c *client.Client) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockClientRepo) GetByID(ctx context.Context, id common.ID) (*client.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

func (m *mockClientRepo) GetByGSTIN(ctx context.Context, gstin string) (*client.Client, error) {
	args := m.Called(ctx, gstin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

func (m *mockClientRepo) Update(ctx context.Context, c *client.Client) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockClientRepo) List(ctx context.Context, p common.Pagination) ([]*client.Client, int64, error) {
	args := m.Called(ctx, p)
	var clients []*client.Client
	if args.Get(0) != nil {
		clients = args.Get(0).([]*client.Client)
	}
	return clients, args.Get(1).(int64), args.Error(2)
}

func (m *mockClientRepo) ListAssessable(ctx context.Context, afterID common.ID, limit int) ([]common.ID, error) {
	args := m.Called(ctx, afterID, limit)
	var ids []common.ID
	if args.Get(0) != nil {
		ids = args.Get(0).([]common.ID)
	}
	return ids, args.Error(1)
}

type mockFilingRepo struct{ mock.Mock }

func (m *mockFilingRepo) Create(ctx context.Context, f *filing.Filing) error {
	return m.Called(ctx, f).Error(0)
}

func (m *mockFilingRepo) GetByID(ctx context.Context, id common.ID) (*filing.Filing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*filing.Filing), args.Error(1)
}

func (m *mockFilingRepo) Update(ctx context.Context, f *filing.Filing) error {
	return m.Called(ctx, f).Error(0)
}

func (m *mockFilingRepo) ListByClientPeriods(ctx context.Context, clientID common.ID, periods []filing.Period) ([]*filing.Filing, error) {
	args := m.Called(ctx, clientID, periods)
	var filings []*filing.Filing
	if args.Get(0) != nil {
		filings = args.Get(0).([]*filing.Filing)
	}
	return filings, args.Error(1)
}

func (m *mockFilingRepo) ListByClient(ctx context.Context, clientID common.ID, p common.Pagination) ([]*filing.Filing, int64, error) {
	args := m.Called(ctx, clientID, p)
	var filings []*filing.Filing
	if args.Get(0) != nil {
		filings = args.Get(0).([]*filing.Filing)
	}
	return filings, args.Get(1).(int64), args.Error(2)
}

func newService(clients *mockClientRepo, filings *mockFilingRepo) *Service {
	return NewService(clients, filings, logging.NewNopLogger())
}

func TestRegisterClient_Success(t *testing.T) {
	clients := new(mockClientRepo)
	clients.On("Create", mock.Anything, mock.AnythingOfType("*client.Client")).Return(nil)
	svc := newService(clients, new(mockFilingRepo))

	c, err := svc.RegisterClient(context.Background(), RegisterClientInput{
		GSTIN:           validGSTIN,
		LegalName:       "Umbrella Traders",
		FilingFrequency: client.FrequencyMonthly,
	})
	require.NoError(t, err)
	assert.Equal(t, "27", c.StateCode)
	assert.Equal(t, client.StatusActive, c.Status)
	clients.AssertExpectations(t)
}

func TestRegisterClient_BadGSTIN(t *testing.T) {
	clients := new(mockClientRepo)
	svc := newService(clients, new(mockFilingRepo))

	_, err := svc.RegisterClient(context.Background(), RegisterClientInput{
		GSTIN:           "not-a-gstin",
		LegalName:       "Umbrella Traders",
		FilingFrequency: client.FrequencyMonthly,
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeGSTINInvalid))
	clients.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAddFiling_UnknownClientRejected(t *testing.T) {
	clients := new(mockClientRepo)
	unknown := common.NewID()
	clients.On("GetByID", mock.Anything, unknown).
		Return(nil, errors.New(errors.ErrCodeClientNotFound, "client not found"))
	filings := new(mockFilingRepo)
	svc := newService(clients, filings)

	_, err := svc.AddFiling(context.Background(), AddFilingInput{
		ClientID:   unknown,
		ReturnType: filing.ReturnGSTR3B,
		Period:     "2025-03",
		DueDate:    time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	filings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAddFiling_Success(t *testing.T) {
	existing, err := client.NewClient(validGSTIN, "Umbrella Traders", "", client.FrequencyMonthly)
	require.NoError(t, err)

	clients := new(mockClientRepo)
	clients.On("GetByID", mock.Anything, existing.ID).Return(existing, nil)
	filings := new(mockFilingRepo)
	filings.On("Create", mock.Anything, mock.AnythingOfType("*filing.Filing")).Return(nil)
	svc := newService(clients, filings)

	f, err := svc.AddFiling(context.Background(), AddFilingInput{
		ClientID:   existing.ID,
		ReturnType: filing.ReturnGSTR3B,
		Period:     "2025-03",
		DueDate:    time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, filing.Period("2025-03"), f.Period)
	assert.Nil(t, f.FiledAt)
	filings.AssertExpectations(t)
}

func TestMarkFilingSubmitted(t *testing.T) {
	f, err := filing.NewFiling(common.NewID(), filing.ReturnGSTR1, "2025-03",
		time.Date(2025, 4, 11, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	filings := new(mockFilingRepo)
	filings.On("GetByID", mock.Anything, f.ID).Return(f, nil)
	filings.On("Update", mock.Anything, f).Return(nil)
	svc := newService(new(mockClientRepo), filings)

	filedAt := time.Date(2025, 4, 10, 9, 0, 0, 0, time.UTC)
	got, err := svc.MarkFilingSubmitted(context.Background(), f.ID, filedAt)
	require.NoError(t, err)
	require.NotNil(t, got.FiledAt)
	assert.True(t, got.FiledAt.Equal(filedAt))

	// A second submission for the same return is refused.
	filings.On("GetByID", mock.Anything, f.ID).Return(f, nil)
	_, err = svc.MarkFilingSubmitted(context.Background(), f.ID, filedAt.Add(time.Hour))
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))
}

func TestListFilings_ChecksClientFirst(t *testing.T) {
	clients := new(mockClientRepo)
	unknown := common.NewID()
	clients.On("GetByID", mock.Anything, unknown).
		Return(nil, errors.New(errors.ErrCodeClientNotFound, "client not found"))
	svc := newService(clients, new(mockFilingRepo))

	_, _, err := svc.ListFilings(context.Background(), unknown, common.Pagination{Page: 1, PageSize: 20})
	assert.True(t, errors.IsNotFound(err))
}
