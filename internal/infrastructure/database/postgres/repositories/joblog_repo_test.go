package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/suite"

	"github.com/complyhub/gst-sentinel/internal/domain/joblog"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/database/postgres"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/logging"
	"github.com/complyhub/gst-sentinel/pkg/errors"
	"github.com/complyhub/gst-sentinel/pkg/types/common"
)

type JobLogRepoTestSuite struct {
	suite.Suite
	mock sqlmock.Sqlmock
	db   *sql.DB
	repo *JobLogRepository
}

func (s *JobLogRepoTestSuite) SetupTest() {
	var err error
	s.db, s.mock, err = sqlmock.New()
	s.Require().NoError(err)

	logger := logging.NewNopLogger()
	conn := postgres.NewConnectionWithDB(s.db, logger)
	s.repo = NewJobLogRepository(conn, logger, nil)
}

func (s *JobLogRepoTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	s.db.Close()
}

func (s *JobLogRepoTestSuite) newJob() *joblog.JobLog {
	j, err := joblog.New(joblog.JobTypeComplianceCheck, 3, "scheduler")
	s.Require().NoError(err)
	return j
}

func jobRows(j *joblog.JobLog) *sqlmock.Rows {
	var started, completed interface{}
	if j.StartedAt != nil {
		started = *j.StartedAt
	}
	if j.CompletedAt != nil {
		completed = *j.CompletedAt
	}
	return sqlmock.NewRows([]string{
		"id", "job_type", "status", "triggered_by", "retry_count", "max_retries",
		"processed_count", "successful_count", "failed_count",
		"started_at", "completed_at", "error_message", "error_stack",
		"created_at", "updated_at", "version",
	}).AddRow(
		string(j.ID), string(j.JobType), string(j.Status), j.TriggeredBy, j.RetryCount, j.MaxRetries,
		j.ProcessedCount, j.SuccessfulCount, j.FailedCount,
		started, completed, j.ErrorMessage, j.ErrorStack,
		j.CreatedAt, j.UpdatedAt, j.Version,
	)
}

func (s *JobLogRepoTestSuite) TestCreate_Success() {
	j := s.newJob()

	s.mock.ExpectExec("INSERT INTO job_logs").
		WillReturnResult(sqlmock.NewResult(0, 1))

	s.NoError(s.repo.Create(context.Background(), j))
}

func (s *JobLogRepoTestSuite) TestGetByID_QueuedJob() {
	j := s.newJob()

	s.mock.ExpectQuery(`FROM job_logs WHERE id = \$1`).
		WithArgs(string(j.ID)).
		WillReturnRows(jobRows(j))

	got, err := s.repo.GetByID(context.Background(), j.ID)
	s.NoError(err)
	s.Equal(joblog.StatusQueued, got.Status)
	s.Nil(got.StartedAt)
	s.Nil(got.CompletedAt)
}

func (s *JobLogRepoTestSuite) TestGetByID_CompletedJob() {
	j := s.newJob()
	now := time.Date(2025, 4, 20, 2, 0, 0, 0, time.UTC)
	s.Require().NoError(j.Start(now))
	s.Require().NoError(j.RecordClientResult(true))
	s.Require().NoError(j.RecordClientResult(false))
	s.Require().NoError(j.Complete(now.Add(5 * time.Minute)))

	s.mock.ExpectQuery(`FROM job_logs WHERE id = \$1`).
		WithArgs(string(j.ID)).
		WillReturnRows(jobRows(j))

	got, err := s.repo.GetByID(context.Background(), j.ID)
	s.NoError(err)
	s.Equal(joblog.StatusCompleted, got.Status)
	s.Equal(2, got.ProcessedCount)
	s.Equal(1, got.FailedCount)
	s.Require().NotNil(got.CompletedAt)
	s.True(got.CompletedAt.After(*got.StartedAt))
}

func (s *JobLogRepoTestSuite) TestGetByID_NotFound() {
	id := common.NewID()

	s.mock.ExpectQuery(`FROM job_logs WHERE id = \$1`).
		WithArgs(string(id)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	got, err := s.repo.GetByID(context.Background(), id)
	s.Nil(got)
	s.True(errors.IsCode(err, errors.ErrCodeJobNotFound))
}

func (s *JobLogRepoTestSuite) TestUpdate_MissingRow() {
	j := s.newJob()

	s.mock.ExpectExec("UPDATE job_logs").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.repo.Update(context.Background(), j)
	s.Error(err)
	s.True(errors.IsCode(err, errors.ErrCodeJobNotFound))
}

func (s *JobLogRepoTestSuite) TestList_FilteredByStatus() {
	j := s.newJob()

	s.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM job_logs`).
		WithArgs(string(joblog.StatusQueued)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	s.mock.ExpectQuery("FROM job_logs").
		WithArgs(string(joblog.StatusQueued), 20, 0).
		WillReturnRows(jobRows(j))

	jobs, total, err := s.repo.List(context.Background(), joblog.StatusQueued, common.Pagination{Page: 1, PageSize: 20})
	s.NoError(err)
	s.Equal(int64(1), total)
	s.Len(jobs, 1)
}

func (s *JobLogRepoTestSuite) TestHasActive() {
	s.mock.ExpectQuery("SELECT EXISTS").
		WithArgs(string(joblog.JobTypeComplianceCheck),
			string(joblog.StatusQueued), string(joblog.StatusRunning), string(joblog.StatusRetrying)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	active, err := s.repo.HasActive(context.Background(), joblog.JobTypeComplianceCheck)
	s.NoError(err)
	s.True(active)
}

func TestJobLogRepoTestSuite(t *testing.T) {
	suite.Run(t, new(JobLogRepoTestSuite))
}
