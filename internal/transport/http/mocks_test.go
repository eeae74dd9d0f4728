package http

import (
	"context"

	"github.com/avoronov/scrumboard-service/internal/domain"
	"github.com/avoronov/scrumboard-service/internal/service"
	"github.com/stretchr/testify/mock"
)

type MilestoneServiceMock struct {
	mock.Mock
}

var _ service.MilestoneService = (*MilestoneServiceMock)(nil)

func (m *MilestoneServiceMock) Create(ctx context.Context, callerID int64, in service.CreateMilestoneInput) (*domain.Milestone, error) {
	args := m.Called(ctx, callerID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Milestone), args.Error(1)
}

func (m *MilestoneServiceMock) Update(ctx context.Context, callerID, milestoneID int64, upd domain.MilestoneUpdate) (*domain.Milestone, error) {
	args := m.Called(ctx, callerID, milestoneID, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Milestone), args.Error(1)
}

func (m *MilestoneServiceMock) Delete(ctx context.Context, callerID, milestoneID int64) error {
	args := m.Called(ctx, callerID, milestoneID)
	return args.Error(0)
}

func (m *MilestoneServiceMock) LinkUserStories(ctx context.Context, callerID, milestoneID int64, storyIDs []int64) error {
	args := m.Called(ctx, callerID, milestoneID, storyIDs)
	return args.Error(0)
}

func (m *MilestoneServiceMock) UnlinkUserStory(ctx context.Context, callerID, milestoneID, storyID int64) error {
	args := m.Called(ctx, callerID, milestoneID, storyID)
	return args.Error(0)
}

func (m *MilestoneServiceMock) GetWithDetails(ctx context.Context, callerID, milestoneID int64) (*domain.MilestoneDetails, error) {
	args := m.Called(ctx, callerID, milestoneID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.MilestoneDetails), args.Error(1)
}

type SubmissionServiceMock struct {
	mock.Mock
}

var _ service.SubmissionService = (*SubmissionServiceMock)(nil)

func (m *SubmissionServiceMock) Submit(ctx context.Context, callerID int64, in service.SubmitInput) (*domain.MilestoneSubmission, error) {
	args := m.Called(ctx, callerID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.MilestoneSubmission), args.Error(1)
}

func (m *SubmissionServiceMock) ListForMilestone(ctx context.Context, callerID, milestoneID int64) ([]domain.MilestoneSubmission, error) {
	args := m.Called(ctx, callerID, milestoneID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.MilestoneSubmission), args.Error(1)
}

type EvaluationServiceMock struct {
	mock.Mock
}

var _ service.EvaluationService = (*EvaluationServiceMock)(nil)

func (m *EvaluationServiceMock) Create(ctx context.Context, callerID int64, in service.CreateEvaluationInput) (*domain.EvaluationWithScores, error) {
	args := m.Called(ctx, callerID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.EvaluationWithScores), args.Error(1)
}

func (m *EvaluationServiceMock) Update(ctx context.Context, callerID, evaluationID int64, upd domain.EvaluationUpdate) (*domain.EvaluationWithScores, error) {
	args := m.Called(ctx, callerID, evaluationID, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.EvaluationWithScores), args.Error(1)
}

func (m *EvaluationServiceMock) Delete(ctx context.Context, callerID, evaluationID int64) error {
	args := m.Called(ctx, callerID, evaluationID)
	return args.Error(0)
}

func (m *EvaluationServiceMock) GetBySubmission(ctx context.Context, callerID, submissionID int64) (*domain.EvaluationWithScores, error) {
	args := m.Called(ctx, callerID, submissionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.EvaluationWithScores), args.Error(1)
}
