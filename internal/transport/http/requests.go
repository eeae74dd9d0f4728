package http

import "time"

type createMilestoneRequest struct {
	ProjectID int64      `json:"project_id" validate:"required,gt=0"`
	Name      string     `json:"name" validate:"required,min=1,max=255"`
	Deadline  time.Time  `json:"deadline" validate:"required"`
	RubricID  *int64     `json:"rubric_id" validate:"omitempty,gt=0"`
	Status    string     `json:"status" validate:"omitempty,milestone_status"`
}

// updateMilestoneRequest has no project_id or creator_id on purpose: those
// fields are stripped from update payloads, the owning project always comes
// from the stored row.
type updateMilestoneRequest struct {
	Name     *string    `json:"name" validate:"omitempty,min=1,max=255"`
	Deadline *time.Time `json:"deadline"`
	RubricID *int64     `json:"rubric_id" validate:"omitempty,gt=0"`
	Status   *string    `json:"status" validate:"omitempty,milestone_status"`
}

// linkUserStoriesRequest replaces the milestone's full link set. An empty list
// is a valid payload and clears every link.
type linkUserStoriesRequest struct {
	UserStoryIDs []int64 `json:"user_story_ids" validate:"dive,gt=0"`
}

type submitRequest struct {
	TeamID   int64   `json:"team_id" validate:"required,gt=0"`
	FilePath *string `json:"file_path" validate:"omitempty,max=512"`
	Notes    *string `json:"notes" validate:"omitempty,max=2000"`
}

// criterionScoreInput uses pointers for its required fields so that a missing
// rubric_criteria_id or score is caught as such instead of zero-defaulting.
type criterionScoreInput struct {
	RubricCriteriaID *int64   `json:"rubric_criteria_id" validate:"required,gt=0"`
	Score            *float64 `json:"score" validate:"required"`
	Feedback         *string  `json:"feedback" validate:"omitempty,max=2000"`
}

type createEvaluationRequest struct {
	OverallScore    *float64              `json:"overall_score" validate:"omitempty,gte=0"`
	GeneralFeedback *string               `json:"general_feedback" validate:"omitempty,max=5000"`
	CriteriaScores  []criterionScoreInput `json:"criteria_scores"`
}

// updateEvaluationRequest keeps criteria_scores as a pointer to a slice: nil
// means the key was absent (leave stored scores untouched), a non-nil empty
// slice means "clear all scores". The two decode differently from JSON and
// must stay distinguishable.
type updateEvaluationRequest struct {
	OverallScore    *float64               `json:"overall_score" validate:"omitempty,gte=0"`
	GeneralFeedback *string                `json:"general_feedback" validate:"omitempty,max=5000"`
	CriteriaScores  *[]criterionScoreInput `json:"criteria_scores"`
}
