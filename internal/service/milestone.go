package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/avoronov/scrumboard-service/internal/domain"
	"github.com/avoronov/scrumboard-service/internal/repository"
	"github.com/jmoiron/sqlx"
)

type MilestoneService interface {
	Create(ctx context.Context, callerID int64, in CreateMilestoneInput) (*domain.Milestone, error)
	Update(ctx context.Context, callerID, milestoneID int64, upd domain.MilestoneUpdate) (*domain.Milestone, error)
	Delete(ctx context.Context, callerID, milestoneID int64) error
	LinkUserStories(ctx context.Context, callerID, milestoneID int64, storyIDs []int64) error
	UnlinkUserStory(ctx context.Context, callerID, milestoneID, storyID int64) error
	GetWithDetails(ctx context.Context, callerID, milestoneID int64) (*domain.MilestoneDetails, error)
}

type CreateMilestoneInput struct {
	ProjectID int64
	Name      string
	Deadline  time.Time
	RubricID  *int64
	Status    domain.MilestoneStatus
}

type MilestoneServiceImpl struct {
	BaseService
	repo repository.MilestoneRepository
	gate PermissionGate
}

func NewMilestoneService(
	db Transactor,
	log *slog.Logger,
	repo repository.MilestoneRepository,
	gate PermissionGate,
) *MilestoneServiceImpl {
	return &MilestoneServiceImpl{
		BaseService: NewBaseService(db, log),
		repo:        repo,
		gate:        gate,
	}
}

func (s *MilestoneServiceImpl) Create(ctx context.Context, callerID int64, in CreateMilestoneInput) (*domain.Milestone, error) {
	const op = "internal.service.milestone.Create"
	log := s.log.With(slog.String("op", op), slog.Int64("project_id", in.ProjectID))

	if err := requireRole(ctx, s.gate, callerID, in.ProjectID, domain.RoleOwner); err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = domain.MilestoneStatusPending
	}

	milestone, err := s.repo.CreateMilestone(ctx, &domain.Milestone{
		ProjectID: in.ProjectID,
		Name:      in.Name,
		Deadline:  in.Deadline,
		RubricID:  in.RubricID,
		Status:    status,
		CreatorID: callerID,
	})
	if err != nil {
		return nil, fmt.Errorf("repo.CreateMilestone failed: %w", err)
	}

	log.Info("milestone created", slog.Int64("milestone_id", milestone.ID))

	return milestone, nil
}

func (s *MilestoneServiceImpl) Update(ctx context.Context, callerID, milestoneID int64, upd domain.MilestoneUpdate) (*domain.Milestone, error) {
	const op = "internal.service.milestone.Update"

	// The owning project comes from the stored row, never from the request:
	// a client cannot move a milestone between projects through this path.
	milestone, err := s.repo.GetMilestone(ctx, milestoneID)
	if err != nil {
		return nil, fmt.Errorf("repo.GetMilestone failed: %w", err)
	}

	if err := requireRole(ctx, s.gate, callerID, milestone.ProjectID, domain.RoleOwner); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateMilestone(ctx, milestoneID, upd)
	if err != nil {
		return nil, fmt.Errorf("repo.UpdateMilestone failed: %w", err)
	}

	return updated, nil
}

func (s *MilestoneServiceImpl) Delete(ctx context.Context, callerID, milestoneID int64) error {
	const op = "internal.service.milestone.Delete"
	log := s.log.With(slog.String("op", op), slog.Int64("milestone_id", milestoneID))

	milestone, err := s.repo.GetMilestone(ctx, milestoneID)
	if err != nil {
		return fmt.Errorf("repo.GetMilestone failed: %w", err)
	}

	if err := requireRole(ctx, s.gate, callerID, milestone.ProjectID, domain.RoleOwner); err != nil {
		return err
	}

	if err := s.repo.DeleteMilestone(ctx, milestoneID); err != nil {
		return fmt.Errorf("repo.DeleteMilestone failed: %w", err)
	}

	log.Info("milestone deleted with cascade")

	return nil
}

func (s *MilestoneServiceImpl) LinkUserStories(ctx context.Context, callerID, milestoneID int64, storyIDs []int64) error {
	const op = "internal.service.milestone.LinkUserStories"
	log := s.log.With(slog.String("op", op), slog.Int64("milestone_id", milestoneID))

	milestone, err := s.repo.GetMilestone(ctx, milestoneID)
	if err != nil {
		return fmt.Errorf("repo.GetMilestone failed: %w", err)
	}

	if err := requireRole(ctx, s.gate, callerID, milestone.ProjectID, domain.RoleOwner); err != nil {
		return err
	}

	// Wholesale replacement: an empty storyIDs clears every link. Callers
	// wanting to remove a single link use UnlinkUserStory instead.
	err = s.transaction(ctx, op, func(tx *sqlx.Tx) error {
		return s.repo.ReplaceUserStoryLinks(ctx, tx, milestoneID, storyIDs)
	})
	if err != nil {
		return err
	}

	log.Info("user story links replaced", slog.Int("count", len(storyIDs)))

	return nil
}

func (s *MilestoneServiceImpl) UnlinkUserStory(ctx context.Context, callerID, milestoneID, storyID int64) error {
	milestone, err := s.repo.GetMilestone(ctx, milestoneID)
	if err != nil {
		return fmt.Errorf("repo.GetMilestone failed: %w", err)
	}

	if err := requireRole(ctx, s.gate, callerID, milestone.ProjectID, domain.RoleOwner); err != nil {
		return err
	}

	if err := s.repo.DeleteUserStoryLink(ctx, milestoneID, storyID); err != nil {
		return fmt.Errorf("repo.DeleteUserStoryLink failed: %w", err)
	}

	return nil
}

func (s *MilestoneServiceImpl) GetWithDetails(ctx context.Context, callerID, milestoneID int64) (*domain.MilestoneDetails, error) {
	milestone, err := s.repo.GetMilestone(ctx, milestoneID)
	if err != nil {
		return nil, fmt.Errorf("repo.GetMilestone failed: %w", err)
	}

	// Read view is open to anyone with standing in the project, owner included.
	if err := requireRole(ctx, s.gate, callerID, milestone.ProjectID,
		domain.RoleOwner, domain.RoleScrumMaster, domain.RoleDeveloper); err != nil {
		return nil, err
	}

	details, err := s.repo.GetMilestoneDetails(ctx, milestoneID)
	if err != nil {
		return nil, fmt.Errorf("repo.GetMilestoneDetails failed: %w", err)
	}

	return details, nil
}
