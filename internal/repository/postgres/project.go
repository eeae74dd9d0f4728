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

type ProjectRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewProjectRepository(db *sqlx.DB, log *slog.Logger) *ProjectRepository {
	return &ProjectRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (pr *ProjectRepository) GetProject(ctx context.Context, projectID int64) (*domain.Project, error) {
	const op = "internal.repository.postgres.GetProject"

	query, args, err := pr.sq.Select("id", "name", "owner_id").
		From("projects").
		Where(sq.Eq{"id": projectID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var project domain.Project
	if err := pr.db.GetContext(ctx, &project, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: project with id '%d'", op, apperrors.ErrNotFound, projectID)
		}

		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	return &project, nil
}

func (pr *ProjectRepository) GetMembership(ctx context.Context, projectID, userID int64) (*domain.TeamMembership, error) {
	const op = "internal.repository.postgres.GetMembership"

	query, args, err := pr.sq.Select("tm.id", "tm.team_id", "tm.user_id", "tm.role").
		From("team_memberships tm").
		Join("teams t ON t.id = tm.team_id").
		Where(sq.Eq{"t.project_id": projectID, "tm.user_id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var membership domain.TeamMembership
	if err := pr.db.GetContext(ctx, &membership, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: user '%d' has no membership in project '%d'",
				op, apperrors.ErrNotFound, userID, projectID)
		}

		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	return &membership, nil
}

func (pr *ProjectRepository) GetTeam(ctx context.Context, teamID int64) (*domain.Team, error) {
	const op = "internal.repository.postgres.GetTeam"

	query, args, err := pr.sq.Select("id", "project_id", "name").
		From("teams").
		Where(sq.Eq{"id": teamID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var team domain.Team
	if err := pr.db.GetContext(ctx, &team, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: team with id '%d'", op, apperrors.ErrNotFound, teamID)
		}

		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	return &team, nil
}

func (pr *ProjectRepository) IsTeamMember(ctx context.Context, teamID, userID int64) (bool, error) {
	const op = "internal.repository.postgres.IsTeamMember"

	query, args, err := pr.sq.Select("1").
		From("team_memberships").
		Where(sq.Eq{"team_id": teamID, "user_id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var one int
	if err := pr.db.GetContext(ctx, &one, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}

		return false, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	return true, nil
}
