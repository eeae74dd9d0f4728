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
	"github.com/lib/pq"
)

type EvaluationRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewEvaluationRepository(db *sqlx.DB, log *slog.Logger) *EvaluationRepository {
	return &EvaluationRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

const evaluationColumns = "id, milestone_submission_id, evaluator_id, overall_score, general_feedback, evaluated_at"

func (er *EvaluationRepository) CreateEvaluation(ctx context.Context, tx *sqlx.Tx, e *domain.MilestoneEvaluation) (*domain.MilestoneEvaluation, error) {
	const op = "internal.repository.postgres.CreateEvaluation"

	query, args, err := er.sq.Insert("milestone_evaluations").
		Columns("milestone_submission_id", "evaluator_id", "overall_score", "general_feedback", "evaluated_at").
		Values(e.SubmissionID, e.EvaluatorID, e.OverallScore, e.GeneralFeedback, e.EvaluatedAt).
		Suffix("RETURNING " + evaluationColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}

	var created domain.MilestoneEvaluation
	if err := tx.QueryRowxContext(ctx, query, args...).StructScan(&created); err != nil {
		// The unique index on milestone_submission_id is the authoritative
		// one-evaluation-per-submission guard; concurrent creates lose here.
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, &apperrors.EvaluationExistsError{SubmissionID: e.SubmissionID}
		}

		return nil, fmt.Errorf("%s: failed to execute insert: %w", op, err)
	}

	return &created, nil
}

func (er *EvaluationRepository) InsertCriterionScores(ctx context.Context, tx *sqlx.Tx, evaluationID int64, scores []domain.CriterionScore) error {
	const op = "internal.repository.postgres.InsertCriterionScores"

	if len(scores) == 0 {
		return nil
	}

	insertBuilder := er.sq.Insert("milestone_evaluation_scores").
		Columns("milestone_evaluation_id", "rubric_criteria_id", "score", "feedback")

	for _, score := range scores {
		insertBuilder = insertBuilder.Values(evaluationID, score.RubricCriterionID, score.Score, score.Feedback)
	}

	query, args, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build bulk insert query: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: failed to execute bulk insert: %w", op, err)
	}

	return nil
}

func (er *EvaluationRepository) UpdateEvaluation(ctx context.Context, tx *sqlx.Tx, evaluationID int64, upd domain.EvaluationUpdate) (*domain.MilestoneEvaluation, error) {
	const op = "internal.repository.postgres.UpdateEvaluation"

	builder := er.sq.Update("milestone_evaluations").Where(sq.Eq{"id": evaluationID})

	if upd.OverallScore != nil {
		builder = builder.Set("overall_score", *upd.OverallScore)
	}

	if upd.GeneralFeedback != nil {
		builder = builder.Set("general_feedback", *upd.GeneralFeedback)
	}

	// Even a fields-empty update touches the row so RETURNING always works.
	builder = builder.Set("evaluated_at", sq.Expr("evaluated_at"))

	query, args, err := builder.Suffix("RETURNING " + evaluationColumns).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	var updated domain.MilestoneEvaluation
	if err := tx.QueryRowxContext(ctx, query, args...).StructScan(&updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: evaluation with id '%d'", op, apperrors.ErrNotFound, evaluationID)
		}

		return nil, fmt.Errorf("%s: failed to execute update: %w", op, err)
	}

	return &updated, nil
}

func (er *EvaluationRepository) DeleteCriterionScores(ctx context.Context, tx *sqlx.Tx, evaluationID int64) error {
	const op = "internal.repository.postgres.DeleteCriterionScores"

	query, args, err := er.sq.Delete("milestone_evaluation_scores").
		Where(sq.Eq{"milestone_evaluation_id": evaluationID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build delete query: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: failed to execute delete: %w", op, err)
	}

	return nil
}

func (er *EvaluationRepository) GetEvaluation(ctx context.Context, evaluationID int64) (*domain.MilestoneEvaluation, error) {
	const op = "internal.repository.postgres.GetEvaluation"

	query, args, err := er.sq.Select(evaluationColumns).
		From("milestone_evaluations").
		Where(sq.Eq{"id": evaluationID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var e domain.MilestoneEvaluation
	if err := er.db.GetContext(ctx, &e, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: evaluation with id '%d'", op, apperrors.ErrNotFound, evaluationID)
		}

		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	return &e, nil
}

func (er *EvaluationRepository) GetBySubmission(ctx context.Context, submissionID int64) (*domain.EvaluationWithScores, error) {
	const op = "internal.repository.postgres.GetBySubmission"

	query, args, err := er.sq.Select(evaluationColumns).
		From("milestone_evaluations").
		Where(sq.Eq{"milestone_submission_id": submissionID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var e domain.MilestoneEvaluation
	if err := er.db.GetContext(ctx, &e, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: no evaluation for submission '%d'",
				op, apperrors.ErrNotFound, submissionID)
		}

		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	scores, err := er.GetCriterionScores(ctx, e.ID)
	if err != nil {
		return nil, err
	}

	return &domain.EvaluationWithScores{
		MilestoneEvaluation: e,
		Scores:              scores,
	}, nil
}

func (er *EvaluationRepository) GetCriterionScores(ctx context.Context, evaluationID int64) ([]domain.CriterionScore, error) {
	const op = "internal.repository.postgres.GetCriterionScores"

	query, args, err := er.sq.Select("id", "milestone_evaluation_id", "rubric_criteria_id", "score", "feedback").
		From("milestone_evaluation_scores").
		Where(sq.Eq{"milestone_evaluation_id": evaluationID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var scores []domain.CriterionScore
	if err := er.db.SelectContext(ctx, &scores, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	return scores, nil
}

func (er *EvaluationRepository) DeleteEvaluation(ctx context.Context, evaluationID int64) error {
	const op = "internal.repository.postgres.DeleteEvaluation"
	log := er.log.With(slog.String("op", op), slog.Int64("evaluation_id", evaluationID))

	query, args, err := er.sq.Delete("milestone_evaluations").
		Where(sq.Eq{"id": evaluationID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build delete query: %w", op, err)
	}

	res, err := er.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to execute delete: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to read rows affected: %w", op, err)
	}

	if affected == 0 {
		return fmt.Errorf("%s: %w: evaluation with id '%d'", op, apperrors.ErrNotFound, evaluationID)
	}

	log.Info("evaluation deleted")

	return nil
}
