// package repository defines the interfaces for the data persistence layer.
// These interfaces abstract the underlying database implementation from the service layer.
package repository

import (
	"context"

	"github.com/avoronov/scrumboard-service/internal/domain"
	"github.com/jmoiron/sqlx"
)

// ProjectRepository covers the project/team/membership lookups the role
// resolver and the permission checks are built on.
type ProjectRepository interface {
	// GetProject retrieves a project by id.
	// It returns apperrors.ErrNotFound if the project does not exist.
	GetProject(ctx context.Context, projectID int64) (*domain.Project, error)

	// GetMembership finds the caller's team membership within a project by
	// joining team_memberships against the project's teams, limit 1. A user
	// holds at most one membership per team, so the first row is the answer.
	// It returns apperrors.ErrNotFound when the user has no membership there.
	GetMembership(ctx context.Context, projectID, userID int64) (*domain.TeamMembership, error)

	// GetTeam retrieves a team by id.
	// It returns apperrors.ErrNotFound if the team does not exist.
	GetTeam(ctx context.Context, teamID int64) (*domain.Team, error)

	// IsTeamMember reports whether the user has a membership row in the team.
	IsTeamMember(ctx context.Context, teamID, userID int64) (bool, error)
}

// MilestoneRepository covers milestone rows and their user-story link table.
type MilestoneRepository interface {
	// CreateMilestone inserts a milestone and returns the stored row.
	CreateMilestone(ctx context.Context, m *domain.Milestone) (*domain.Milestone, error)

	// GetMilestone retrieves a milestone by id.
	// It returns apperrors.ErrNotFound if the milestone does not exist.
	GetMilestone(ctx context.Context, milestoneID int64) (*domain.Milestone, error)

	// UpdateMilestone applies the non-nil fields of upd and returns the updated row.
	// It returns apperrors.ErrNotFound if the milestone does not exist.
	UpdateMilestone(ctx context.Context, milestoneID int64, upd domain.MilestoneUpdate) (*domain.Milestone, error)

	// DeleteMilestone removes the milestone row; submissions, evaluations,
	// criterion scores and link rows go with it via FK cascades.
	// It returns apperrors.ErrNotFound if the milestone does not exist.
	DeleteMilestone(ctx context.Context, milestoneID int64) error

	// ReplaceUserStoryLinks wholesale-replaces the milestone's link set inside
	// the given transaction: delete all rows, then insert storyIDs. An empty
	// storyIDs clears every link.
	ReplaceUserStoryLinks(ctx context.Context, tx *sqlx.Tx, milestoneID int64, storyIDs []int64) error

	// DeleteUserStoryLink removes a single link row.
	// It returns apperrors.ErrNotFound if no such link existed.
	DeleteUserStoryLink(ctx context.Context, milestoneID, storyID int64) error

	// GetMilestoneDetails loads the aggregate view: milestone, creator, rubric
	// with its criteria (when attached) and the linked user stories.
	// It returns apperrors.ErrNotFound if the milestone does not exist.
	GetMilestoneDetails(ctx context.Context, milestoneID int64) (*domain.MilestoneDetails, error)
}

// SubmissionRepository covers team deliverables recorded against milestones.
type SubmissionRepository interface {
	// CreateSubmission appends a submission row. Resubmission by the same team
	// is a new row, never an overwrite.
	CreateSubmission(ctx context.Context, s *domain.MilestoneSubmission) (*domain.MilestoneSubmission, error)

	// GetSubmission retrieves a submission by id.
	// It returns apperrors.ErrNotFound if the submission does not exist.
	GetSubmission(ctx context.Context, submissionID int64) (*domain.MilestoneSubmission, error)

	// ListByMilestone returns all submissions for a milestone, most recent first.
	ListByMilestone(ctx context.Context, milestoneID int64) ([]domain.MilestoneSubmission, error)

	// GetLatestForTeam returns the team's most recent submission for a milestone.
	// It returns apperrors.ErrNotFound when the team has not submitted.
	GetLatestForTeam(ctx context.Context, milestoneID, teamID int64) (*domain.MilestoneSubmission, error)
}

// EvaluationRepository covers evaluations and their per-criterion scores.
// Write methods taking a *sqlx.Tx are expected to run within a transaction so
// that an evaluation and its score set commit or roll back together.
type EvaluationRepository interface {
	// CreateEvaluation inserts the evaluation row. The one-evaluation-per-
	// submission rule is enforced by a unique index on milestone_submission_id;
	// a violation surfaces as *apperrors.EvaluationExistsError.
	CreateEvaluation(ctx context.Context, tx *sqlx.Tx, e *domain.MilestoneEvaluation) (*domain.MilestoneEvaluation, error)

	// InsertCriterionScores bulk-inserts the score set stamped with evaluationID.
	InsertCriterionScores(ctx context.Context, tx *sqlx.Tx, evaluationID int64, scores []domain.CriterionScore) error

	// UpdateEvaluation applies the non-nil scalar fields of upd and returns the
	// updated row. It does not touch criterion scores.
	// It returns apperrors.ErrNotFound if the evaluation does not exist.
	UpdateEvaluation(ctx context.Context, tx *sqlx.Tx, evaluationID int64, upd domain.EvaluationUpdate) (*domain.MilestoneEvaluation, error)

	// DeleteCriterionScores removes every score row of the evaluation.
	DeleteCriterionScores(ctx context.Context, tx *sqlx.Tx, evaluationID int64) error

	// GetEvaluation retrieves the evaluation row by id.
	// It returns apperrors.ErrNotFound if the evaluation does not exist.
	GetEvaluation(ctx context.Context, evaluationID int64) (*domain.MilestoneEvaluation, error)

	// GetBySubmission returns the submission's evaluation with its criterion
	// scores attached, or apperrors.ErrNotFound when none exists yet.
	GetBySubmission(ctx context.Context, submissionID int64) (*domain.EvaluationWithScores, error)

	// GetCriterionScores returns the score set of an evaluation.
	GetCriterionScores(ctx context.Context, evaluationID int64) ([]domain.CriterionScore, error)

	// DeleteEvaluation removes the evaluation; criterion scores cascade.
	// It returns apperrors.ErrNotFound if the evaluation does not exist.
	DeleteEvaluation(ctx context.Context, evaluationID int64) error
}
