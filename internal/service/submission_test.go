package service

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/avoronov/scrumboard-service/internal/apperrors"
	"github.com/avoronov/scrumboard-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSubmissionServiceImpl_Submit(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	filePath := "deliverables/sprint1.zip"

	testCases := []struct {
		name          string
		callerID      int64
		input         SubmitInput
		setupMocks    func(repo *SubmissionRepositoryMock, milestoneRepo *MilestoneRepositoryMock, projectRepo *ProjectRepositoryMock)
		expectedError error
	}{
		{
			name:     "Success on OPEN milestone",
			callerID: 20,
			input:    SubmitInput{MilestoneID: 100, TeamID: 5, FilePath: &filePath},
			setupMocks: func(repo *SubmissionRepositoryMock, milestoneRepo *MilestoneRepositoryMock, projectRepo *ProjectRepositoryMock) {
				milestoneRepo.On("GetMilestone", ctx, int64(100)).
					Return(&domain.Milestone{ID: 100, ProjectID: 1, Status: domain.MilestoneStatusOpen}, nil).Once()
				projectRepo.On("GetTeam", ctx, int64(5)).
					Return(&domain.Team{ID: 5, ProjectID: 1}, nil).Once()
				projectRepo.On("IsTeamMember", ctx, int64(5), int64(20)).Return(true, nil).Once()
				repo.On("CreateSubmission", ctx, mock.MatchedBy(func(s *domain.MilestoneSubmission) bool {
					return s.MilestoneID == 100 && s.TeamID == 5 && !s.SubmittedAt.IsZero()
				})).Return(&domain.MilestoneSubmission{
					ID: 1000, MilestoneID: 100, TeamID: 5, FilePath: &filePath, SubmittedAt: time.Now().UTC(),
				}, nil).Once()
			},
		},
		{
			name:     "PENDING milestone still accepts submissions",
			callerID: 20,
			input:    SubmitInput{MilestoneID: 100, TeamID: 5},
			setupMocks: func(repo *SubmissionRepositoryMock, milestoneRepo *MilestoneRepositoryMock, projectRepo *ProjectRepositoryMock) {
				milestoneRepo.On("GetMilestone", ctx, int64(100)).
					Return(&domain.Milestone{ID: 100, ProjectID: 1, Status: domain.MilestoneStatusPending}, nil).Once()
				projectRepo.On("GetTeam", ctx, int64(5)).
					Return(&domain.Team{ID: 5, ProjectID: 1}, nil).Once()
				projectRepo.On("IsTeamMember", ctx, int64(5), int64(20)).Return(true, nil).Once()
				repo.On("CreateSubmission", ctx, mock.AnythingOfType("*domain.MilestoneSubmission")).
					Return(&domain.MilestoneSubmission{ID: 1001, MilestoneID: 100, TeamID: 5}, nil).Once()
			},
		},
		{
			name:     "Team from another project is a malformed request",
			callerID: 20,
			input:    SubmitInput{MilestoneID: 100, TeamID: 9},
			setupMocks: func(repo *SubmissionRepositoryMock, milestoneRepo *MilestoneRepositoryMock, projectRepo *ProjectRepositoryMock) {
				milestoneRepo.On("GetMilestone", ctx, int64(100)).
					Return(&domain.Milestone{ID: 100, ProjectID: 1, Status: domain.MilestoneStatusOpen}, nil).Once()
				projectRepo.On("GetTeam", ctx, int64(9)).
					Return(&domain.Team{ID: 9, ProjectID: 2}, nil).Once()
			},
			expectedError: apperrors.ErrTeamMismatch,
		},
		{
			name:     "Non-member of the team is forbidden",
			callerID: 30,
			input:    SubmitInput{MilestoneID: 100, TeamID: 5},
			setupMocks: func(repo *SubmissionRepositoryMock, milestoneRepo *MilestoneRepositoryMock, projectRepo *ProjectRepositoryMock) {
				milestoneRepo.On("GetMilestone", ctx, int64(100)).
					Return(&domain.Milestone{ID: 100, ProjectID: 1, Status: domain.MilestoneStatusOpen}, nil).Once()
				projectRepo.On("GetTeam", ctx, int64(5)).
					Return(&domain.Team{ID: 5, ProjectID: 1}, nil).Once()
				projectRepo.On("IsTeamMember", ctx, int64(5), int64(30)).Return(false, nil).Once()
			},
			expectedError: apperrors.ErrForbidden,
		},
		{
			name:     "CLOSED milestone rejects submissions",
			callerID: 20,
			input:    SubmitInput{MilestoneID: 100, TeamID: 5},
			setupMocks: func(repo *SubmissionRepositoryMock, milestoneRepo *MilestoneRepositoryMock, projectRepo *ProjectRepositoryMock) {
				milestoneRepo.On("GetMilestone", ctx, int64(100)).
					Return(&domain.Milestone{ID: 100, ProjectID: 1, Status: domain.MilestoneStatusClosed}, nil).Once()
				projectRepo.On("GetTeam", ctx, int64(5)).
					Return(&domain.Team{ID: 5, ProjectID: 1}, nil).Once()
				projectRepo.On("IsTeamMember", ctx, int64(5), int64(20)).Return(true, nil).Once()
			},
			expectedError: apperrors.ErrMilestoneNotOpen,
		},
		{
			name:     "Milestone not found",
			callerID: 20,
			input:    SubmitInput{MilestoneID: 999, TeamID: 5},
			setupMocks: func(repo *SubmissionRepositoryMock, milestoneRepo *MilestoneRepositoryMock, projectRepo *ProjectRepositoryMock) {
				milestoneRepo.On("GetMilestone", ctx, int64(999)).
					Return(nil, apperrors.ErrNotFound).Once()
			},
			expectedError: apperrors.ErrNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(SubmissionRepositoryMock)
			milestoneRepo := new(MilestoneRepositoryMock)
			projectRepo := new(ProjectRepositoryMock)
			gate := new(PermissionGateMock)
			tc.setupMocks(repo, milestoneRepo, projectRepo)

			svc := NewSubmissionService(logger, repo, milestoneRepo, projectRepo, gate)

			submission, err := svc.Submit(ctx, tc.callerID, tc.input)

			if tc.expectedError != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.expectedError)
			} else {
				require.NoError(t, err)
				assert.NotZero(t, submission.ID)
			}

			repo.AssertExpectations(t)
			milestoneRepo.AssertExpectations(t)
			projectRepo.AssertExpectations(t)
		})
	}
}

func TestSubmissionServiceImpl_ListForMilestone(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	testCases := []struct {
		name          string
		callerID      int64
		setupMocks    func(repo *SubmissionRepositoryMock, milestoneRepo *MilestoneRepositoryMock, projectRepo *ProjectRepositoryMock, gate *PermissionGateMock)
		expectedLen   int
		expectedError error
	}{
		{
			name:     "Owner sees every team's submissions",
			callerID: 10,
			setupMocks: func(repo *SubmissionRepositoryMock, milestoneRepo *MilestoneRepositoryMock, projectRepo *ProjectRepositoryMock, gate *PermissionGateMock) {
				milestoneRepo.On("GetMilestone", ctx, int64(100)).
					Return(&domain.Milestone{ID: 100, ProjectID: 1}, nil).Once()
				gate.On("ResolveRole", ctx, int64(10), int64(1)).Return(domain.RoleOwner).Once()
				repo.On("ListByMilestone", ctx, int64(100)).Return([]domain.MilestoneSubmission{
					{ID: 1, MilestoneID: 100, TeamID: 5},
					{ID: 2, MilestoneID: 100, TeamID: 6},
					{ID: 3, MilestoneID: 100, TeamID: 5},
				}, nil).Once()
			},
			expectedLen: 3,
		},
		{
			name:     "Team member sees only their team's latest",
			callerID: 20,
			setupMocks: func(repo *SubmissionRepositoryMock, milestoneRepo *MilestoneRepositoryMock, projectRepo *ProjectRepositoryMock, gate *PermissionGateMock) {
				milestoneRepo.On("GetMilestone", ctx, int64(100)).
					Return(&domain.Milestone{ID: 100, ProjectID: 1}, nil).Once()
				gate.On("ResolveRole", ctx, int64(20), int64(1)).Return(domain.RoleDeveloper).Once()
				projectRepo.On("GetMembership", ctx, int64(1), int64(20)).
					Return(&domain.TeamMembership{TeamID: 5, UserID: 20, Role: domain.RoleDeveloper}, nil).Once()
				repo.On("GetLatestForTeam", ctx, int64(100), int64(5)).
					Return(&domain.MilestoneSubmission{ID: 3, MilestoneID: 100, TeamID: 5}, nil).Once()
			},
			expectedLen: 1,
		},
		{
			name:     "Member without a team gets an empty list",
			callerID: 25,
			setupMocks: func(repo *SubmissionRepositoryMock, milestoneRepo *MilestoneRepositoryMock, projectRepo *ProjectRepositoryMock, gate *PermissionGateMock) {
				milestoneRepo.On("GetMilestone", ctx, int64(100)).
					Return(&domain.Milestone{ID: 100, ProjectID: 1}, nil).Once()
				gate.On("ResolveRole", ctx, int64(25), int64(1)).Return(domain.RoleScrumMaster).Once()
				projectRepo.On("GetMembership", ctx, int64(1), int64(25)).
					Return(nil, apperrors.ErrNotFound).Once()
			},
			expectedLen: 0,
		},
		{
			name:     "Team that has not submitted gets an empty list",
			callerID: 20,
			setupMocks: func(repo *SubmissionRepositoryMock, milestoneRepo *MilestoneRepositoryMock, projectRepo *ProjectRepositoryMock, gate *PermissionGateMock) {
				milestoneRepo.On("GetMilestone", ctx, int64(100)).
					Return(&domain.Milestone{ID: 100, ProjectID: 1}, nil).Once()
				gate.On("ResolveRole", ctx, int64(20), int64(1)).Return(domain.RoleDeveloper).Once()
				projectRepo.On("GetMembership", ctx, int64(1), int64(20)).
					Return(&domain.TeamMembership{TeamID: 5, UserID: 20, Role: domain.RoleDeveloper}, nil).Once()
				repo.On("GetLatestForTeam", ctx, int64(100), int64(5)).
					Return(nil, apperrors.ErrNotFound).Once()
			},
			expectedLen: 0,
		},
		{
			name:     "Outsider is forbidden",
			callerID: 30,
			setupMocks: func(repo *SubmissionRepositoryMock, milestoneRepo *MilestoneRepositoryMock, projectRepo *ProjectRepositoryMock, gate *PermissionGateMock) {
				milestoneRepo.On("GetMilestone", ctx, int64(100)).
					Return(&domain.Milestone{ID: 100, ProjectID: 1}, nil).Once()
				gate.On("ResolveRole", ctx, int64(30), int64(1)).Return(domain.RoleNone).Once()
			},
			expectedError: apperrors.ErrForbidden,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(SubmissionRepositoryMock)
			milestoneRepo := new(MilestoneRepositoryMock)
			projectRepo := new(ProjectRepositoryMock)
			gate := new(PermissionGateMock)
			tc.setupMocks(repo, milestoneRepo, projectRepo, gate)

			svc := NewSubmissionService(logger, repo, milestoneRepo, projectRepo, gate)

			submissions, err := svc.ListForMilestone(ctx, tc.callerID, 100)

			if tc.expectedError != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.expectedError)
			} else {
				require.NoError(t, err)
				assert.Len(t, submissions, tc.expectedLen)
			}

			repo.AssertExpectations(t)
			milestoneRepo.AssertExpectations(t)
			projectRepo.AssertExpectations(t)
			gate.AssertExpectations(t)
		})
	}
}
