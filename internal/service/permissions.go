package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/avoronov/scrumboard-service/internal/apperrors"
	"github.com/avoronov/scrumboard-service/internal/domain"
	"github.com/avoronov/scrumboard-service/internal/repository"
	"github.com/avoronov/scrumboard-service/pkg/logger/sl"
)

// PermissionGate answers "what is this user to this project" and "may they do
// this". Every mutating operation in the milestone, submission and evaluation
// services consults it before touching storage.
type PermissionGate interface {
	// ResolveRole derives the user's effective role in a project from its two
	// disjoint sources: the project's owner column (checked first, short-
	// circuiting any team lookup) and the team membership table. It returns
	// domain.RoleNone when the user has no standing in the project.
	//
	// Storage errors are folded into RoleNone as well: the resolver fails
	// closed, so a transient outage denies access instead of propagating.
	// The error is logged; callers cannot tell the two cases apart.
	ResolveRole(ctx context.Context, userID, projectID int64) domain.Role

	// HasPermission reports whether the user's resolved role is one of the
	// allowed ones. False for non-positive ids. Side-effect free.
	HasPermission(ctx context.Context, userID, projectID int64, allowed ...domain.Role) bool
}

type PermissionService struct {
	repo repository.ProjectRepository
	log  *slog.Logger
}

var _ PermissionGate = (*PermissionService)(nil)

func NewPermissionService(repo repository.ProjectRepository, log *slog.Logger) *PermissionService {
	return &PermissionService{
		repo: repo,
		log:  log,
	}
}

func (s *PermissionService) ResolveRole(ctx context.Context, userID, projectID int64) domain.Role {
	const op = "internal.service.permissions.ResolveRole"

	project, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.log.Error("role resolution failed closed",
				slog.String("op", op),
				slog.Int64("user_id", userID),
				slog.Int64("project_id", projectID),
				sl.Err(err),
			)
		}

		return domain.RoleNone
	}

	// Ownership wins over any membership rows the owner might also hold.
	if project.OwnerID == userID {
		return domain.RoleOwner
	}

	membership, err := s.repo.GetMembership(ctx, projectID, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.log.Error("role resolution failed closed",
				slog.String("op", op),
				slog.Int64("user_id", userID),
				slog.Int64("project_id", projectID),
				sl.Err(err),
			)
		}

		return domain.RoleNone
	}

	return membership.Role
}

func (s *PermissionService) HasPermission(ctx context.Context, userID, projectID int64, allowed ...domain.Role) bool {
	if userID <= 0 || projectID <= 0 {
		return false
	}

	role := s.ResolveRole(ctx, userID, projectID)
	if role == domain.RoleNone {
		return false
	}

	return role.In(allowed...)
}

// requireRole is the shared guard used by the mutating services: resolve, check,
// and surface a uniform authorization error instead of silently no-opping.
func requireRole(ctx context.Context, gate PermissionGate, userID, projectID int64, allowed ...domain.Role) error {
	if !gate.HasPermission(ctx, userID, projectID, allowed...) {
		return fmt.Errorf("user '%d' on project '%d': %w", userID, projectID, apperrors.ErrForbidden)
	}

	return nil
}
