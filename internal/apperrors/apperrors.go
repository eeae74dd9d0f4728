package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")

	ErrInvalidRequest = errors.New("invalid request body")
	ErrValidation     = errors.New("validation failed")

	ErrNoSession = errors.New("no authenticated session")
	ErrForbidden = errors.New("operation not permitted")

	// ErrMilestoneNotOpen rejects submissions to a milestone whose status is
	// neither OPEN nor PENDING.
	ErrMilestoneNotOpen = errors.New("milestone does not accept submissions")

	// ErrTeamMismatch rejects a submission whose team belongs to a different
	// project than the milestone. This is a malformed request, not an
	// authorization failure.
	ErrTeamMismatch = errors.New("team does not belong to the milestone's project")
)

type EvaluationExistsError struct{ SubmissionID int64 }

func (e *EvaluationExistsError) Error() string {
	return fmt.Sprintf("submission %d already has an evaluation", e.SubmissionID)
}
func (e *EvaluationExistsError) Is(target error) bool { return target == ErrAlreadyExists }
