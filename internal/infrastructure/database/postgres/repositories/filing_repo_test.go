package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/suite"

	"github.com/complyhub/gst-sentinel/internal/domain/filing"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/database/postgres"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/logging"
	"github.com/complyhub/gst-sentinel/pkg/errors"
	"github.com/complyhub/gst-sentinel/pkg/types/common"
)

type FilingRepoTestSuite struct {
	suite.Suite
	mock     sqlmock.Sqlmock
	db       *sql.DB
	repo     *FilingRepository
	clientID common.ID
}

func (s *FilingRepoTestSuite) SetupTest() {
	var err error
	s.db, s.mock, err = sqlmock.New()
	s.Require().NoError(err)

	logger := logging.NewNopLogger()
	conn := postgres.NewConnectionWithDB(s.db, logger)
	s.repo = NewFilingRepository(conn, logger, nil)
	s.clientID = common.NewID()
}

func (s *FilingRepoTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	s.db.Close()
}

func (s *FilingRepoTestSuite) newFiling(period filing.Period) *filing.Filing {
	due := period.Time().AddDate(0, 1, 10)
	f, err := filing.NewFiling(s.clientID, filing.ReturnGSTR3B, period, due)
	s.Require().NoError(err)
	return f
}

func filingRows(fs ...*filing.Filing) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "client_id", "return_type", "period", "due_date",
		"filed_at", "amendment_count", "created_at", "updated_at", "version",
	})
	for _, f := range fs {
		var filedAt interface{}
		if f.FiledAt != nil {
			filedAt = *f.FiledAt
		}
		rows.AddRow(
			string(f.ID), string(f.ClientID), string(f.ReturnType), string(f.Period), f.DueDate,
			filedAt, f.AmendmentCount, f.CreatedAt, f.UpdatedAt, f.Version,
		)
	}
	return rows
}

func (s *FilingRepoTestSuite) TestCreate_DuplicateObligation() {
	f := s.newFiling("2025-03")

	s.mock.ExpectExec("INSERT INTO filings").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "filings_client_id_return_type_period_key"})

	err := s.repo.Create(context.Background(), f)
	s.Error(err)
	s.True(errors.IsConflict(err))
}

func (s *FilingRepoTestSuite) TestGetByID_FiledReturn() {
	f := s.newFiling("2025-03")
	s.Require().NoError(f.MarkFiled(f.DueDate.Add(-48 * time.Hour)))

	s.mock.ExpectQuery(`FROM filings WHERE id = \$1`).
		WithArgs(string(f.ID)).
		WillReturnRows(filingRows(f))

	got, err := s.repo.GetByID(context.Background(), f.ID)
	s.NoError(err)
	s.Require().NotNil(got.FiledAt)
	s.False(got.IsOverdue(f.DueDate.Add(24 * time.Hour)))
}

func (s *FilingRepoTestSuite) TestGetByID_NotFound() {
	id := common.NewID()

	s.mock.ExpectQuery(`FROM filings WHERE id = \$1`).
		WithArgs(string(id)).
		WillReturnRows(filingRows())

	got, err := s.repo.GetByID(context.Background(), id)
	s.Nil(got)
	s.True(errors.IsCode(err, errors.ErrCodeFilingNotFound))
}

func (s *FilingRepoTestSuite) TestListByClientPeriods_WindowQuery() {
	older := s.newFiling("2025-02")
	newer := s.newFiling("2025-03")
	periods := filing.PeriodRange("2025-03", 2)

	s.mock.ExpectQuery(`WHERE client_id = \$1 AND period = ANY\(\$2\)`).
		WithArgs(string(s.clientID), pq.Array([]string{"2025-02", "2025-03"})).
		WillReturnRows(filingRows(older, newer))

	got, err := s.repo.ListByClientPeriods(context.Background(), s.clientID, periods)
	s.NoError(err)
	s.Require().Len(got, 2)
	s.Equal(filing.Period("2025-02"), got[0].Period)
	s.Equal(filing.Period("2025-03"), got[1].Period)
}

func (s *FilingRepoTestSuite) TestListByClient_PagedNewestFirst() {
	f := s.newFiling("2025-03")

	s.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM filings WHERE client_id = \$1`).
		WithArgs(string(s.clientID)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(9))
	s.mock.ExpectQuery("ORDER BY period DESC").
		WithArgs(string(s.clientID), 5, 5).
		WillReturnRows(filingRows(f))

	page, total, err := s.repo.ListByClient(context.Background(), s.clientID, common.Pagination{Page: 2, PageSize: 5})
	s.NoError(err)
	s.Equal(int64(9), total)
	s.Len(page, 1)
}

func (s *FilingRepoTestSuite) TestUpdate_VersionConflict() {
	f := s.newFiling("2025-03")
	s.Require().NoError(f.MarkFiled(f.DueDate))

	s.mock.ExpectExec("UPDATE filings").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.repo.Update(context.Background(), f)
	s.Error(err)
	s.True(errors.IsConflict(err))
}

func TestFilingRepoTestSuite(t *testing.T) {
	suite.Run(t, new(FilingRepoTestSuite))
}
