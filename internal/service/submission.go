package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avoronov/scrumboard-service/internal/apperrors"
	"github.com/avoronov/scrumboard-service/internal/domain"
	"github.com/avoronov/scrumboard-service/internal/repository"
)

type SubmissionService interface {
	Submit(ctx context.Context, callerID int64, in SubmitInput) (*domain.MilestoneSubmission, error)
	ListForMilestone(ctx context.Context, callerID, milestoneID int64) ([]domain.MilestoneSubmission, error)
}

type SubmitInput struct {
	MilestoneID int64
	TeamID      int64
	FilePath    *string
	Notes       *string
}

type SubmissionServiceImpl struct {
	log           *slog.Logger
	repo          repository.SubmissionRepository
	milestoneRepo repository.MilestoneRepository
	projectRepo   repository.ProjectRepository
	gate          PermissionGate
}

func NewSubmissionService(
	log *slog.Logger,
	repo repository.SubmissionRepository,
	milestoneRepo repository.MilestoneRepository,
	projectRepo repository.ProjectRepository,
	gate PermissionGate,
) *SubmissionServiceImpl {
	return &SubmissionServiceImpl{
		log:           log,
		repo:          repo,
		milestoneRepo: milestoneRepo,
		projectRepo:   projectRepo,
		gate:          gate,
	}
}

// Submit records a team's deliverable against a milestone. Authorization here
// is team-membership-based, not role-based: even the project owner cannot
// submit on behalf of a team they are not a member of.
func (s *SubmissionServiceImpl) Submit(ctx context.Context, callerID int64, in SubmitInput) (*domain.MilestoneSubmission, error) {
	const op = "internal.service.submission.Submit"
	log := s.log.With(
		slog.String("op", op),
		slog.Int64("milestone_id", in.MilestoneID),
		slog.Int64("team_id", in.TeamID),
	)

	milestone, err := s.milestoneRepo.GetMilestone(ctx, in.MilestoneID)
	if err != nil {
		return nil, fmt.Errorf("repo.GetMilestone failed: %w", err)
	}

	team, err := s.projectRepo.GetTeam(ctx, in.TeamID)
	if err != nil {
		return nil, fmt.Errorf("repo.GetTeam failed: %w", err)
	}

	// The team must belong to the milestone's project. A mismatch means the
	// request itself is malformed, not that the caller lacks permission.
	if team.ProjectID != milestone.ProjectID {
		return nil, fmt.Errorf("team '%d' vs milestone '%d': %w",
			in.TeamID, in.MilestoneID, apperrors.ErrTeamMismatch)
	}

	isMember, err := s.projectRepo.IsTeamMember(ctx, in.TeamID, callerID)
	if err != nil {
		return nil, fmt.Errorf("repo.IsTeamMember failed: %w", err)
	}

	if !isMember {
		return nil, fmt.Errorf("user '%d' is not a member of team '%d': %w",
			callerID, in.TeamID, apperrors.ErrForbidden)
	}

	if !milestone.Status.AcceptsSubmissions() {
		return nil, fmt.Errorf("milestone '%d' has status %s: %w",
			in.MilestoneID, milestone.Status, apperrors.ErrMilestoneNotOpen)
	}

	// Resubmission appends; the newest row is "current" on the read side.
	submission, err := s.repo.CreateSubmission(ctx, &domain.MilestoneSubmission{
		MilestoneID: in.MilestoneID,
		TeamID:      in.TeamID,
		FilePath:    in.FilePath,
		Notes:       in.Notes,
		SubmittedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("repo.CreateSubmission failed: %w", err)
	}

	log.Info("submission accepted", slog.Int64("submission_id", submission.ID))

	return submission, nil
}

// ListForMilestone is visibility-scoped: the project owner sees every team's
// submissions, a team member sees only their own team's most recent one, and a
// project member with no team affiliation gets an empty list.
func (s *SubmissionServiceImpl) ListForMilestone(ctx context.Context, callerID, milestoneID int64) ([]domain.MilestoneSubmission, error) {
	milestone, err := s.milestoneRepo.GetMilestone(ctx, milestoneID)
	if err != nil {
		return nil, fmt.Errorf("repo.GetMilestone failed: %w", err)
	}

	role := s.gate.ResolveRole(ctx, callerID, milestone.ProjectID)

	switch {
	case role == domain.RoleOwner:
		submissions, err := s.repo.ListByMilestone(ctx, milestoneID)
		if err != nil {
			return nil, fmt.Errorf("repo.ListByMilestone failed: %w", err)
		}

		return submissions, nil

	case role == domain.RoleNone:
		return nil, fmt.Errorf("user '%d' on project '%d': %w",
			callerID, milestone.ProjectID, apperrors.ErrForbidden)

	default:
		membership, err := s.projectRepo.GetMembership(ctx, milestone.ProjectID, callerID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				// Member of the project without a team: nothing to see.
				return []domain.MilestoneSubmission{}, nil
			}

			return nil, fmt.Errorf("repo.GetMembership failed: %w", err)
		}

		latest, err := s.repo.GetLatestForTeam(ctx, milestoneID, membership.TeamID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return []domain.MilestoneSubmission{}, nil
			}

			return nil, fmt.Errorf("repo.GetLatestForTeam failed: %w", err)
		}

		return []domain.MilestoneSubmission{*latest}, nil
	}
}
