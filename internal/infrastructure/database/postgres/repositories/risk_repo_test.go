package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/suite"

	"github.com/complyhub/gst-sentinel/internal/domain/assessment"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/database/postgres"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/logging"
	"github.com/complyhub/gst-sentinel/pkg/errors"
	"github.com/complyhub/gst-sentinel/pkg/types/common"
)

type RiskRepoTestSuite struct {
	suite.Suite
	mock sqlmock.Sqlmock
	db   *sql.DB
	repo *RiskRepository
}

func (s *RiskRepoTestSuite) SetupTest() {
	var err error
	s.db, s.mock, err = sqlmock.New()
	s.Require().NoError(err)

	engine, err := assessment.NewEngine(assessment.DefaultPolicy())
	s.Require().NoError(err)

	logger := logging.NewNopLogger()
	conn := postgres.NewConnectionWithDB(s.db, logger)
	s.repo = NewRiskRepository(conn, engine, logger, nil)
}

func (s *RiskRepoTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	s.db.Close()
}

// criticalRecord builds a record whose status follows from its score under
// the default policy, so the write guard lets it through.
func (s *RiskRepoTestSuite) criticalRecord() *assessment.ClientRiskRecord {
	return &assessment.ClientRiskRecord{
		ClientID:         string(common.NewID()),
		RiskScore:        82,
		ComplianceStatus: assessment.StatusCritical,
		Flags: assessment.Flags{
			HasOverdueFiling:         true,
			HasUnresolvedITCMismatch: true,
		},
		FilingTrendScore:        90,
		DocumentComplianceScore: 70,
		ITCComplianceScore:      85,
		RecommendedActions:      []string{"file overdue returns immediately", "reconcile ITC mismatches"},
		LastAssessedAt:          time.Date(2025, 4, 20, 10, 0, 0, 0, time.UTC),
		AssessedBy:              "scheduler",
	}
}

// riskRows renders the record the way the driver would hand it back: nullable
// history columns as nil and the text[] column in Postgres array syntax.
func riskRows(record *assessment.ClientRiskRecord) *sqlmock.Rows {
	var prev, change interface{}
	if record.PreviousRiskScore != nil {
		prev = *record.PreviousRiskScore
	}
	if record.ScoreChangePercentage != nil {
		change = *record.ScoreChangePercentage
	}
	actions, _ := pq.StringArray(record.RecommendedActions).Value()

	return sqlmock.NewRows([]string{
		"client_id", "risk_score", "compliance_status",
		"has_overdue_filing", "has_unresolved_itc_mismatch", "has_missing_documents", "has_recurrent_issues",
		"filing_trend_score", "document_compliance_score", "itc_compliance_score",
		"previous_risk_score", "score_change_percentage", "recommended_actions",
		"last_assessed_at", "assessed_by",
	}).AddRow(
		record.ClientID, record.RiskScore, string(record.ComplianceStatus),
		record.Flags.HasOverdueFiling, record.Flags.HasUnresolvedITCMismatch,
		record.Flags.HasMissingDocuments, record.Flags.HasRecurrentIssues,
		record.FilingTrendScore, record.DocumentComplianceScore, record.ITCComplianceScore,
		prev, change, actions,
		record.LastAssessedAt, record.AssessedBy,
	)
}

func (s *RiskRepoTestSuite) TestUpsert_Success() {
	record := s.criticalRecord()

	s.mock.ExpectExec("INSERT INTO client_risk_records").
		WillReturnResult(sqlmock.NewResult(0, 1))

	s.NoError(s.repo.Upsert(context.Background(), record))
}

func (s *RiskRepoTestSuite) TestUpsert_RejectsHandEditedStatus() {
	record := s.criticalRecord()
	record.RiskScore = 5
	record.ComplianceStatus = assessment.StatusCritical

	err := s.repo.Upsert(context.Background(), record)
	s.Error(err)
	s.True(errors.IsCode(err, errors.ErrCodeStatusWriteForbidden))
}

func (s *RiskRepoTestSuite) TestUpsert_AcceptsOverdueLiftedWarning() {
	record := s.criticalRecord()
	record.RiskScore = 12
	record.ComplianceStatus = assessment.StatusWarning
	record.Flags = assessment.Flags{HasOverdueFiling: true}

	s.mock.ExpectExec("INSERT INTO client_risk_records").
		WillReturnResult(sqlmock.NewResult(0, 1))

	s.NoError(s.repo.Upsert(context.Background(), record))
}

func (s *RiskRepoTestSuite) TestFindByClientID_Found() {
	record := s.criticalRecord()
	prev := 45
	change := 82.2
	record.PreviousRiskScore = &prev
	record.ScoreChangePercentage = &change

	s.mock.ExpectQuery(`FROM client_risk_records WHERE client_id = \$1`).
		WithArgs(record.ClientID).
		WillReturnRows(riskRows(record))

	got, err := s.repo.FindByClientID(context.Background(), record.ClientID)
	s.NoError(err)
	s.Equal(record.RiskScore, got.RiskScore)
	s.Equal(assessment.StatusCritical, got.ComplianceStatus)
	s.Equal(record.RecommendedActions, got.RecommendedActions)
	s.Require().NotNil(got.PreviousRiskScore)
	s.Equal(45, *got.PreviousRiskScore)
}

func (s *RiskRepoTestSuite) TestFindByClientID_NeverAssessed() {
	s.mock.ExpectQuery(`FROM client_risk_records WHERE client_id = \$1`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"client_id"}))

	got, err := s.repo.FindByClientID(context.Background(), "ghost")
	s.Nil(got)
	s.True(errors.IsCode(err, errors.ErrCodeRiskRecordNotFound))
}

func (s *RiskRepoTestSuite) TestFindByClientID_NullHistoryFields() {
	record := s.criticalRecord()

	s.mock.ExpectQuery(`FROM client_risk_records WHERE client_id = \$1`).
		WithArgs(record.ClientID).
		WillReturnRows(riskRows(record))

	got, err := s.repo.FindByClientID(context.Background(), record.ClientID)
	s.NoError(err)
	s.Nil(got.PreviousRiskScore)
	s.Nil(got.ScoreChangePercentage)
}

func (s *RiskRepoTestSuite) TestListByStatus() {
	record := s.criticalRecord()

	s.mock.ExpectQuery(`WHERE compliance_status = \$1`).
		WithArgs(string(assessment.StatusCritical), 50, 0).
		WillReturnRows(riskRows(record))

	got, err := s.repo.ListByStatus(context.Background(), assessment.StatusCritical, 50, 0)
	s.NoError(err)
	s.Len(got, 1)
	s.Equal(record.ClientID, got[0].ClientID)
}

func (s *RiskRepoTestSuite) TestList_WorstFirst() {
	record := s.criticalRecord()

	s.mock.ExpectQuery(`ORDER BY risk_score DESC`).
		WithArgs(100, 0).
		WillReturnRows(riskRows(record))

	got, err := s.repo.List(context.Background(), 100, 0)
	s.NoError(err)
	s.Len(got, 1)
}

func TestRiskRepoTestSuite(t *testing.T) {
	suite.Run(t, new(RiskRepoTestSuite))
}
