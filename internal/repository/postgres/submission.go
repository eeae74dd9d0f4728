package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/avoronov/scrumboard-service/internal/apperrors"
	"github.com/avoronov/scrumboard-service/internal/domain"
	"github.com/jmoiron/sqlx"
)

type SubmissionRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewSubmissionRepository(db *sqlx.DB, log *slog.Logger) *SubmissionRepository {
	return &SubmissionRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

const submissionColumns = "id, milestone_id, team_id, file_path, notes, submitted_at"

func (sr *SubmissionRepository) CreateSubmission(ctx context.Context, s *domain.MilestoneSubmission) (*domain.MilestoneSubmission, error) {
	const op = "internal.repository.postgres.CreateSubmission"
	log := sr.log.With(
		slog.String("op", op),
		slog.Int64("milestone_id", s.MilestoneID),
		slog.Int64("team_id", s.TeamID),
	)

	query, args, err := sr.sq.Insert("milestone_submissions").
		Columns("milestone_id", "team_id", "file_path", "notes", "submitted_at").
		Values(s.MilestoneID, s.TeamID, s.FilePath, s.Notes, s.SubmittedAt).
		Suffix("RETURNING " + submissionColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}

	var created domain.MilestoneSubmission
	if err := sr.db.QueryRowxContext(ctx, query, args...).StructScan(&created); err != nil {
		return nil, fmt.Errorf("%s: failed to execute insert: %w", op, err)
	}

	log.Info("submission recorded", slog.Int64("submission_id", created.ID))

	return &created, nil
}

func (sr *SubmissionRepository) GetSubmission(ctx context.Context, submissionID int64) (*domain.MilestoneSubmission, error) {
	const op = "internal.repository.postgres.GetSubmission"

	query, args, err := sr.sq.Select(submissionColumns).
		From("milestone_submissions").
		Where(sq.Eq{"id": submissionID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var s domain.MilestoneSubmission
	if err := sr.db.GetContext(ctx, &s, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: submission with id '%d'", op, apperrors.ErrNotFound, submissionID)
		}

		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	return &s, nil
}

func (sr *SubmissionRepository) ListByMilestone(ctx context.Context, milestoneID int64) ([]domain.MilestoneSubmission, error) {
	const op = "internal.repository.postgres.ListByMilestone"

	query, args, err := sr.sq.Select(submissionColumns).
		From("milestone_submissions").
		Where(sq.Eq{"milestone_id": milestoneID}).
		OrderBy("submitted_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var submissions []domain.MilestoneSubmission
	if err := sr.db.SelectContext(ctx, &submissions, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	return submissions, nil
}

func (sr *SubmissionRepository) GetLatestForTeam(ctx context.Context, milestoneID, teamID int64) (*domain.MilestoneSubmission, error) {
	const op = "internal.repository.postgres.GetLatestForTeam"

	// "Current" submission is a read-path convention: the most recently
	// submitted row wins, there is no uniqueness at the storage level.
	query, args, err := sr.sq.Select(submissionColumns).
		From("milestone_submissions").
		Where(sq.Eq{"milestone_id": milestoneID, "team_id": teamID}).
		OrderBy("submitted_at DESC", "id DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var s domain.MilestoneSubmission
	if err := sr.db.GetContext(ctx, &s, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: no submission from team '%d' for milestone '%d'",
				op, apperrors.ErrNotFound, teamID, milestoneID)
		}

		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	return &s, nil
}
