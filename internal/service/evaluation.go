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
	"github.com/jmoiron/sqlx"
)

type EvaluationService interface {
	Create(ctx context.Context, callerID int64, in CreateEvaluationInput) (*domain.EvaluationWithScores, error)
	Update(ctx context.Context, callerID, evaluationID int64, upd domain.EvaluationUpdate) (*domain.EvaluationWithScores, error)
	Delete(ctx context.Context, callerID, evaluationID int64) error
	GetBySubmission(ctx context.Context, callerID, submissionID int64) (*domain.EvaluationWithScores, error)
}

type CreateEvaluationInput struct {
	SubmissionID    int64
	OverallScore    *float64
	GeneralFeedback *string
	Scores          []domain.CriterionScore
}

type EvaluationServiceImpl struct {
	BaseService
	repo           repository.EvaluationRepository
	submissionRepo repository.SubmissionRepository
	milestoneRepo  repository.MilestoneRepository
	projectRepo    repository.ProjectRepository
	gate           PermissionGate
}

func NewEvaluationService(
	db Transactor,
	log *slog.Logger,
	repo repository.EvaluationRepository,
	submissionRepo repository.SubmissionRepository,
	milestoneRepo repository.MilestoneRepository,
	projectRepo repository.ProjectRepository,
	gate PermissionGate,
) *EvaluationServiceImpl {
	return &EvaluationServiceImpl{
		BaseService:    NewBaseService(db, log),
		repo:           repo,
		submissionRepo: submissionRepo,
		milestoneRepo:  milestoneRepo,
		projectRepo:    projectRepo,
		gate:           gate,
	}
}

// projectOfSubmission resolves submission -> milestone -> project.
func (s *EvaluationServiceImpl) projectOfSubmission(ctx context.Context, submissionID int64) (*domain.MilestoneSubmission, int64, error) {
	submission, err := s.submissionRepo.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.GetSubmission failed: %w", err)
	}

	milestone, err := s.milestoneRepo.GetMilestone(ctx, submission.MilestoneID)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.GetMilestone failed: %w", err)
	}

	return submission, milestone.ProjectID, nil
}

func (s *EvaluationServiceImpl) Create(ctx context.Context, callerID int64, in CreateEvaluationInput) (*domain.EvaluationWithScores, error) {
	const op = "internal.service.evaluation.Create"
	log := s.log.With(slog.String("op", op), slog.Int64("submission_id", in.SubmissionID))

	// The whole score set is validated before any write: one malformed entry
	// rejects the call.
	for i, score := range in.Scores {
		if score.RubricCriterionID <= 0 {
			return nil, fmt.Errorf("criteria score at index %d has no rubric criterion: %w",
				i, apperrors.ErrValidation)
		}
	}

	_, projectID, err := s.projectOfSubmission(ctx, in.SubmissionID)
	if err != nil {
		return nil, err
	}

	if err := requireRole(ctx, s.gate, callerID, projectID, domain.RoleOwner); err != nil {
		return nil, err
	}

	// App-level duplicate check is advisory only; the unique index decides
	// races between concurrent creates.
	if _, err := s.repo.GetBySubmission(ctx, in.SubmissionID); err == nil {
		return nil, &apperrors.EvaluationExistsError{SubmissionID: in.SubmissionID}
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("repo.GetBySubmission failed: %w", err)
	}

	var created *domain.MilestoneEvaluation

	err = s.transaction(ctx, op, func(tx *sqlx.Tx) error {
		var err error

		created, err = s.repo.CreateEvaluation(ctx, tx, &domain.MilestoneEvaluation{
			SubmissionID:    in.SubmissionID,
			EvaluatorID:     callerID,
			OverallScore:    in.OverallScore,
			GeneralFeedback: in.GeneralFeedback,
			EvaluatedAt:     time.Now().UTC(),
		})
		if err != nil {
			return err
		}

		if err := s.repo.InsertCriterionScores(ctx, tx, created.ID, in.Scores); err != nil {
			return fmt.Errorf("%s: failed to insert criterion scores: %w", op, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	scores, err := s.repo.GetCriterionScores(ctx, created.ID)
	if err != nil {
		return nil, fmt.Errorf("repo.GetCriterionScores failed: %w", err)
	}

	log.Info("evaluation created", slog.Int64("evaluation_id", created.ID))

	return &domain.EvaluationWithScores{
		MilestoneEvaluation: *created,
		Scores:              scores,
	}, nil
}

// Update lets the original evaluator or the current project owner amend an
// evaluation. When upd.ReplaceScores is set, the stored criterion-score set is
// replaced wholesale inside the same transaction; an empty replacement set
// clears all scores. When it is not set, the stored scores stay untouched.
func (s *EvaluationServiceImpl) Update(ctx context.Context, callerID, evaluationID int64, upd domain.EvaluationUpdate) (*domain.EvaluationWithScores, error) {
	const op = "internal.service.evaluation.Update"
	log := s.log.With(slog.String("op", op), slog.Int64("evaluation_id", evaluationID))

	evaluation, err := s.repo.GetEvaluation(ctx, evaluationID)
	if err != nil {
		return nil, fmt.Errorf("repo.GetEvaluation failed: %w", err)
	}

	if err := s.requireEvaluatorOrOwner(ctx, callerID, evaluation); err != nil {
		return nil, err
	}

	if upd.ReplaceScores {
		for i, score := range upd.Scores {
			if score.RubricCriterionID <= 0 {
				return nil, fmt.Errorf("criteria score at index %d has no rubric criterion: %w",
					i, apperrors.ErrValidation)
			}
		}
	}

	var updated *domain.MilestoneEvaluation

	err = s.transaction(ctx, op, func(tx *sqlx.Tx) error {
		var err error

		updated, err = s.repo.UpdateEvaluation(ctx, tx, evaluationID, upd)
		if err != nil {
			return err
		}

		if upd.ReplaceScores {
			if err := s.repo.DeleteCriterionScores(ctx, tx, evaluationID); err != nil {
				return fmt.Errorf("%s: failed to clear criterion scores: %w", op, err)
			}

			if err := s.repo.InsertCriterionScores(ctx, tx, evaluationID, upd.Scores); err != nil {
				return fmt.Errorf("%s: failed to insert criterion scores: %w", op, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	scores, err := s.repo.GetCriterionScores(ctx, evaluationID)
	if err != nil {
		return nil, fmt.Errorf("repo.GetCriterionScores failed: %w", err)
	}

	log.Info("evaluation updated", slog.Bool("scores_replaced", upd.ReplaceScores))

	return &domain.EvaluationWithScores{
		MilestoneEvaluation: *updated,
		Scores:              scores,
	}, nil
}

func (s *EvaluationServiceImpl) Delete(ctx context.Context, callerID, evaluationID int64) error {
	const op = "internal.service.evaluation.Delete"
	log := s.log.With(slog.String("op", op), slog.Int64("evaluation_id", evaluationID))

	evaluation, err := s.repo.GetEvaluation(ctx, evaluationID)
	if err != nil {
		return fmt.Errorf("repo.GetEvaluation failed: %w", err)
	}

	if err := s.requireEvaluatorOrOwner(ctx, callerID, evaluation); err != nil {
		return err
	}

	if err := s.repo.DeleteEvaluation(ctx, evaluationID); err != nil {
		return fmt.Errorf("repo.DeleteEvaluation failed: %w", err)
	}

	log.Info("evaluation deleted with scores")

	return nil
}

func (s *EvaluationServiceImpl) GetBySubmission(ctx context.Context, callerID, submissionID int64) (*domain.EvaluationWithScores, error) {
	submission, projectID, err := s.projectOfSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	if !s.gate.HasPermission(ctx, callerID, projectID, domain.RoleOwner) {
		// Not the owner: only members of the team that made the submission
		// may read its evaluation.
		isMember, err := s.projectRepo.IsTeamMember(ctx, submission.TeamID, callerID)
		if err != nil {
			return nil, fmt.Errorf("repo.IsTeamMember failed: %w", err)
		}

		if !isMember {
			return nil, fmt.Errorf("user '%d' on submission '%d': %w",
				callerID, submissionID, apperrors.ErrForbidden)
		}
	}

	evaluation, err := s.repo.GetBySubmission(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("repo.GetBySubmission failed: %w", err)
	}

	return evaluation, nil
}

// requireEvaluatorOrOwner allows two distinct actors: the evaluation's original
// author and whoever currently owns the project.
func (s *EvaluationServiceImpl) requireEvaluatorOrOwner(ctx context.Context, callerID int64, evaluation *domain.MilestoneEvaluation) error {
	if evaluation.EvaluatorID == callerID {
		return nil
	}

	_, projectID, err := s.projectOfSubmission(ctx, evaluation.SubmissionID)
	if err != nil {
		return err
	}

	return requireRole(ctx, s.gate, callerID, projectID, domain.RoleOwner)
}
