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

type MilestoneRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewMilestoneRepository(db *sqlx.DB, log *slog.Logger) *MilestoneRepository {
	return &MilestoneRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

const milestoneColumns = "id, project_id, name, deadline, rubric_id, status, creator_id"

func (mr *MilestoneRepository) CreateMilestone(ctx context.Context, m *domain.Milestone) (*domain.Milestone, error) {
	const op = "internal.repository.postgres.CreateMilestone"
	log := mr.log.With(slog.String("op", op), slog.Int64("project_id", m.ProjectID))

	query, args, err := mr.sq.Insert("milestones").
		Columns("project_id", "name", "deadline", "rubric_id", "status", "creator_id").
		Values(m.ProjectID, m.Name, m.Deadline, m.RubricID, m.Status, m.CreatorID).
		Suffix("RETURNING " + milestoneColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build insert query: %w", op, err)
	}

	var created domain.Milestone
	if err := mr.db.QueryRowxContext(ctx, query, args...).StructScan(&created); err != nil {
		return nil, fmt.Errorf("%s: failed to execute insert: %w", op, err)
	}

	log.Info("milestone created", slog.Int64("milestone_id", created.ID))

	return &created, nil
}

func (mr *MilestoneRepository) GetMilestone(ctx context.Context, milestoneID int64) (*domain.Milestone, error) {
	const op = "internal.repository.postgres.GetMilestone"

	query, args, err := mr.sq.Select(milestoneColumns).
		From("milestones").
		Where(sq.Eq{"id": milestoneID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var m domain.Milestone
	if err := mr.db.GetContext(ctx, &m, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: milestone with id '%d'", op, apperrors.ErrNotFound, milestoneID)
		}

		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	return &m, nil
}

func (mr *MilestoneRepository) UpdateMilestone(ctx context.Context, milestoneID int64, upd domain.MilestoneUpdate) (*domain.Milestone, error) {
	const op = "internal.repository.postgres.UpdateMilestone"

	builder := mr.sq.Update("milestones").Where(sq.Eq{"id": milestoneID})

	if upd.Name != nil {
		builder = builder.Set("name", *upd.Name)
	}

	if upd.Deadline != nil {
		builder = builder.Set("deadline", *upd.Deadline)
	}

	if upd.RubricID != nil {
		builder = builder.Set("rubric_id", *upd.RubricID)
	}

	if upd.Status != nil {
		builder = builder.Set("status", *upd.Status)
	}

	// A fields-empty update still needs one SET clause so RETURNING works.
	if upd.Name == nil && upd.Deadline == nil && upd.RubricID == nil && upd.Status == nil {
		builder = builder.Set("id", sq.Expr("id"))
	}

	query, args, err := builder.Suffix("RETURNING " + milestoneColumns).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	var updated domain.Milestone
	if err := mr.db.QueryRowxContext(ctx, query, args...).StructScan(&updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: milestone with id '%d'", op, apperrors.ErrNotFound, milestoneID)
		}

		return nil, fmt.Errorf("%s: failed to execute update: %w", op, err)
	}

	return &updated, nil
}

func (mr *MilestoneRepository) DeleteMilestone(ctx context.Context, milestoneID int64) error {
	const op = "internal.repository.postgres.DeleteMilestone"
	log := mr.log.With(slog.String("op", op), slog.Int64("milestone_id", milestoneID))

	query, args, err := mr.sq.Delete("milestones").
		Where(sq.Eq{"id": milestoneID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build delete query: %w", op, err)
	}

	res, err := mr.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to execute delete: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to read rows affected: %w", op, err)
	}

	if affected == 0 {
		return fmt.Errorf("%s: %w: milestone with id '%d'", op, apperrors.ErrNotFound, milestoneID)
	}

	log.Info("milestone deleted")

	return nil
}

func (mr *MilestoneRepository) ReplaceUserStoryLinks(ctx context.Context, tx *sqlx.Tx, milestoneID int64, storyIDs []int64) error {
	const op = "internal.repository.postgres.ReplaceUserStoryLinks"

	deleteQuery, deleteArgs, err := mr.sq.Delete("milestone_user_stories").
		Where(sq.Eq{"milestone_id": milestoneID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build delete query: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("%s: failed to clear existing links: %w", op, err)
	}

	if len(storyIDs) == 0 {
		return nil
	}

	insertBuilder := mr.sq.Insert("milestone_user_stories").
		Columns("milestone_id", "user_story_id")

	for _, storyID := range storyIDs {
		insertBuilder = insertBuilder.Values(milestoneID, storyID)
	}

	insertQuery, insertArgs, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build bulk insert query: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return fmt.Errorf("%s: failed to execute bulk insert: %w", op, err)
	}

	return nil
}

func (mr *MilestoneRepository) DeleteUserStoryLink(ctx context.Context, milestoneID, storyID int64) error {
	const op = "internal.repository.postgres.DeleteUserStoryLink"

	query, args, err := mr.sq.Delete("milestone_user_stories").
		Where(sq.Eq{"milestone_id": milestoneID, "user_story_id": storyID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build delete query: %w", op, err)
	}

	res, err := mr.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to execute delete: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to read rows affected: %w", op, err)
	}

	if affected == 0 {
		return fmt.Errorf("%s: %w: link between milestone '%d' and user story '%d'",
			op, apperrors.ErrNotFound, milestoneID, storyID)
	}

	return nil
}

func (mr *MilestoneRepository) GetMilestoneDetails(ctx context.Context, milestoneID int64) (*domain.MilestoneDetails, error) {
	const op = "internal.repository.postgres.GetMilestoneDetails"

	milestone, err := mr.GetMilestone(ctx, milestoneID)
	if err != nil {
		return nil, err
	}

	creatorQuery, creatorArgs, err := mr.sq.Select("id", "username").
		From("users").
		Where(sq.Eq{"id": milestone.CreatorID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build creator query: %w", op, err)
	}

	var creator domain.User
	if err := mr.db.GetContext(ctx, &creator, creatorQuery, creatorArgs...); err != nil {
		return nil, fmt.Errorf("%s: failed to get creator: %w", op, err)
	}

	details := &domain.MilestoneDetails{
		Milestone: *milestone,
		Creator:   creator,
	}

	if milestone.RubricID != nil {
		rubric, err := mr.getRubricWithCriteria(ctx, *milestone.RubricID)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to get rubric: %w", op, err)
		}

		details.Rubric = rubric
	}

	storiesQuery, storiesArgs, err := mr.sq.Select("us.id", "us.project_id", "us.title").
		From("user_stories us").
		Join("milestone_user_stories mus ON mus.user_story_id = us.id").
		Where(sq.Eq{"mus.milestone_id": milestoneID}).
		OrderBy("us.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build user stories query: %w", op, err)
	}

	if err := mr.db.SelectContext(ctx, &details.UserStories, storiesQuery, storiesArgs...); err != nil {
		return nil, fmt.Errorf("%s: failed to get linked user stories: %w", op, err)
	}

	return details, nil
}

func (mr *MilestoneRepository) getRubricWithCriteria(ctx context.Context, rubricID int64) (*domain.RubricWithCriteria, error) {
	const op = "internal.repository.postgres.getRubricWithCriteria"

	rubricQuery, rubricArgs, err := mr.sq.Select("id", "creator_id", "max_score").
		From("rubrics").
		Where(sq.Eq{"id": rubricID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build rubric query: %w", op, err)
	}

	var rubric domain.Rubric
	if err := mr.db.GetContext(ctx, &rubric, rubricQuery, rubricArgs...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: rubric with id '%d'", op, apperrors.ErrNotFound, rubricID)
		}

		return nil, fmt.Errorf("%s: failed to get rubric: %w", op, err)
	}

	criteriaQuery, criteriaArgs, err := mr.sq.Select("id", "rubric_id", "weight", "max_score").
		From("rubric_criteria").
		Where(sq.Eq{"rubric_id": rubricID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build criteria query: %w", op, err)
	}

	var criteria []domain.RubricCriterion
	if err := mr.db.SelectContext(ctx, &criteria, criteriaQuery, criteriaArgs...); err != nil {
		return nil, fmt.Errorf("%s: failed to get rubric criteria: %w", op, err)
	}

	return &domain.RubricWithCriteria{
		Rubric:   rubric,
		Criteria: criteria,
	}, nil
}
