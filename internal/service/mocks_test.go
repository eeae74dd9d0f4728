package service

import (
	"context"
	"database/sql"

	"github.com/avoronov/scrumboard-service/internal/domain"
	"github.com/avoronov/scrumboard-service/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"
)

type ProjectRepositoryMock struct {
	mock.Mock
}

var _ repository.ProjectRepository = (*ProjectRepositoryMock)(nil)

func (m *ProjectRepositoryMock) GetProject(ctx context.Context, projectID int64) (*domain.Project, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Project), args.Error(1)
}

func (m *ProjectRepositoryMock) GetMembership(ctx context.Context, projectID, userID int64) (*domain.TeamMembership, error) {
	args := m.Called(ctx, projectID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.TeamMembership), args.Error(1)
}

func (m *ProjectRepositoryMock) GetTeam(ctx context.Context, teamID int64) (*domain.Team, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Team), args.Error(1)
}

func (m *ProjectRepositoryMock) IsTeamMember(ctx context.Context, teamID, userID int64) (bool, error) {
	args := m.Called(ctx, teamID, userID)
	return args.Bool(0), args.Error(1)
}

type MilestoneRepositoryMock struct {
	mock.Mock
}

var _ repository.MilestoneRepository = (*MilestoneRepositoryMock)(nil)

func (m *MilestoneRepositoryMock) CreateMilestone(ctx context.Context, milestone *domain.Milestone) (*domain.Milestone, error) {
	args := m.Called(ctx, milestone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Milestone), args.Error(1)
}

func (m *MilestoneRepositoryMock) GetMilestone(ctx context.Context, milestoneID int64) (*domain.Milestone, error) {
	args := m.Called(ctx, milestoneID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Milestone), args.Error(1)
}

func (m *MilestoneRepositoryMock) UpdateMilestone(ctx context.Context, milestoneID int64, upd domain.MilestoneUpdate) (*domain.Milestone, error) {
	args := m.Called(ctx, milestoneID, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Milestone), args.Error(1)
}

func (m *MilestoneRepositoryMock) DeleteMilestone(ctx context.Context, milestoneID int64) error {
	args := m.Called(ctx, milestoneID)
	return args.Error(0)
}

func (m *MilestoneRepositoryMock) ReplaceUserStoryLinks(ctx context.Context, tx *sqlx.Tx, milestoneID int64, storyIDs []int64) error {
	args := m.Called(ctx, tx, milestoneID, storyIDs)
	return args.Error(0)
}

func (m *MilestoneRepositoryMock) DeleteUserStoryLink(ctx context.Context, milestoneID, storyID int64) error {
	args := m.Called(ctx, milestoneID, storyID)
	return args.Error(0)
}

func (m *MilestoneRepositoryMock) GetMilestoneDetails(ctx context.Context, milestoneID int64) (*domain.MilestoneDetails, error) {
	args := m.Called(ctx, milestoneID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.MilestoneDetails), args.Error(1)
}

type SubmissionRepositoryMock struct {
	mock.Mock
}

var _ repository.SubmissionRepository = (*SubmissionRepositoryMock)(nil)

func (m *SubmissionRepositoryMock) CreateSubmission(ctx context.Context, s *domain.MilestoneSubmission) (*domain.MilestoneSubmission, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.MilestoneSubmission), args.Error(1)
}

func (m *SubmissionRepositoryMock) GetSubmission(ctx context.Context, submissionID int64) (*domain.MilestoneSubmission, error) {
	args := m.Called(ctx, submissionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.MilestoneSubmission), args.Error(1)
}

func (m *SubmissionRepositoryMock) ListByMilestone(ctx context.Context, milestoneID int64) ([]domain.MilestoneSubmission, error) {
	args := m.Called(ctx, milestoneID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.MilestoneSubmission), args.Error(1)
}

func (m *SubmissionRepositoryMock) GetLatestForTeam(ctx context.Context, milestoneID, teamID int64) (*domain.MilestoneSubmission, error) {
	args := m.Called(ctx, milestoneID, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.MilestoneSubmission), args.Error(1)
}

type EvaluationRepositoryMock struct {
	mock.Mock
}

var _ repository.EvaluationRepository = (*EvaluationRepositoryMock)(nil)

func (m *EvaluationRepositoryMock) CreateEvaluation(ctx context.Context, tx *sqlx.Tx, e *domain.MilestoneEvaluation) (*domain.MilestoneEvaluation, error) {
	args := m.Called(ctx, tx, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.MilestoneEvaluation), args.Error(1)
}

func (m *EvaluationRepositoryMock) InsertCriterionScores(ctx context.Context, tx *sqlx.Tx, evaluationID int64, scores []domain.CriterionScore) error {
	args := m.Called(ctx, tx, evaluationID, scores)
	return args.Error(0)
}

func (m *EvaluationRepositoryMock) UpdateEvaluation(ctx context.Context, tx *sqlx.Tx, evaluationID int64, upd domain.EvaluationUpdate) (*domain.MilestoneEvaluation, error) {
	args := m.Called(ctx, tx, evaluationID, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.MilestoneEvaluation), args.Error(1)
}

func (m *EvaluationRepositoryMock) DeleteCriterionScores(ctx context.Context, tx *sqlx.Tx, evaluationID int64) error {
	args := m.Called(ctx, tx, evaluationID)
	return args.Error(0)
}

func (m *EvaluationRepositoryMock) GetEvaluation(ctx context.Context, evaluationID int64) (*domain.MilestoneEvaluation, error) {
	args := m.Called(ctx, evaluationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.MilestoneEvaluation), args.Error(1)
}

func (m *EvaluationRepositoryMock) GetBySubmission(ctx context.Context, submissionID int64) (*domain.EvaluationWithScores, error) {
	args := m.Called(ctx, submissionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.EvaluationWithScores), args.Error(1)
}

func (m *EvaluationRepositoryMock) GetCriterionScores(ctx context.Context, evaluationID int64) ([]domain.CriterionScore, error) {
	args := m.Called(ctx, evaluationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.CriterionScore), args.Error(1)
}

func (m *EvaluationRepositoryMock) DeleteEvaluation(ctx context.Context, evaluationID int64) error {
	args := m.Called(ctx, evaluationID)
	return args.Error(0)
}

type PermissionGateMock struct {
	mock.Mock
}

var _ PermissionGate = (*PermissionGateMock)(nil)

func (m *PermissionGateMock) ResolveRole(ctx context.Context, userID, projectID int64) domain.Role {
	args := m.Called(ctx, userID, projectID)
	return args.Get(0).(domain.Role)
}

func (m *PermissionGateMock) HasPermission(ctx context.Context, userID, projectID int64, allowed ...domain.Role) bool {
	callArgs := []interface{}{ctx, userID, projectID}
	for _, role := range allowed {
		callArgs = append(callArgs, role)
	}

	args := m.Called(callArgs...)
	return args.Bool(0)
}

type TransactorMock struct {
	mock.Mock
}

func (m *TransactorMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	var tx *sqlx.Tx

	args := m.Called(ctx, opts)
	if args.Get(0) != nil {
		tx = args.Get(0).(*sqlx.Tx)
	}

	return tx, args.Error(1)
}
