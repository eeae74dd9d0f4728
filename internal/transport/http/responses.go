package http

import (
	"time"

	"github.com/avoronov/scrumboard-service/internal/domain"
)

type milestoneResponse struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	Name      string    `json:"name"`
	Deadline  time.Time `json:"deadline"`
	RubricID  *int64    `json:"rubric_id,omitempty"`
	Status    string    `json:"status"`
	CreatorID int64     `json:"creator_id"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type rubricCriterionResponse struct {
	ID       int64   `json:"id"`
	Weight   float64 `json:"weight"`
	MaxScore float64 `json:"max_score"`
}

type rubricResponse struct {
	ID       int64                     `json:"id"`
	MaxScore float64                   `json:"max_score"`
	Criteria []rubricCriterionResponse `json:"criteria"`
}

type userStoryResponse struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

type milestoneDetailsResponse struct {
	milestoneResponse
	Creator     userResponse        `json:"creator"`
	Rubric      *rubricResponse     `json:"rubric,omitempty"`
	UserStories []userStoryResponse `json:"user_stories"`
}

type submissionResponse struct {
	ID          int64     `json:"id"`
	MilestoneID int64     `json:"milestone_id"`
	TeamID      int64     `json:"team_id"`
	FilePath    *string   `json:"file_path,omitempty"`
	Notes       *string   `json:"notes,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type criterionScoreResponse struct {
	ID               int64   `json:"id"`
	RubricCriteriaID int64   `json:"rubric_criteria_id"`
	Score            float64 `json:"score"`
	Feedback         *string `json:"feedback,omitempty"`
}

type evaluationResponse struct {
	ID              int64                    `json:"id"`
	SubmissionID    int64                    `json:"submission_id"`
	EvaluatorID     int64                    `json:"evaluator_id"`
	OverallScore    *float64                 `json:"overall_score,omitempty"`
	GeneralFeedback *string                  `json:"general_feedback,omitempty"`
	EvaluatedAt     time.Time                `json:"evaluated_at"`
	CriteriaScores  []criterionScoreResponse `json:"criteria_scores"`
}

func toMilestoneResponse(m *domain.Milestone) milestoneResponse {
	return milestoneResponse{
		ID:        m.ID,
		ProjectID: m.ProjectID,
		Name:      m.Name,
		Deadline:  m.Deadline,
		RubricID:  m.RubricID,
		Status:    string(m.Status),
		CreatorID: m.CreatorID,
	}
}

func toMilestoneDetailsResponse(d *domain.MilestoneDetails) milestoneDetailsResponse {
	resp := milestoneDetailsResponse{
		milestoneResponse: toMilestoneResponse(&d.Milestone),
		Creator: userResponse{
			ID:       d.Creator.ID,
			Username: d.Creator.Username,
		},
		UserStories: make([]userStoryResponse, len(d.UserStories)),
	}

	for i, story := range d.UserStories {
		resp.UserStories[i] = userStoryResponse{
			ID:    story.ID,
			Title: story.Title,
		}
	}

	if d.Rubric != nil {
		rubric := &rubricResponse{
			ID:       d.Rubric.ID,
			MaxScore: d.Rubric.MaxScore,
			Criteria: make([]rubricCriterionResponse, len(d.Rubric.Criteria)),
		}

		for i, criterion := range d.Rubric.Criteria {
			rubric.Criteria[i] = rubricCriterionResponse{
				ID:       criterion.ID,
				Weight:   criterion.Weight,
				MaxScore: criterion.MaxScore,
			}
		}

		resp.Rubric = rubric
	}

	return resp
}

func toSubmissionResponse(s *domain.MilestoneSubmission) submissionResponse {
	return submissionResponse{
		ID:          s.ID,
		MilestoneID: s.MilestoneID,
		TeamID:      s.TeamID,
		FilePath:    s.FilePath,
		Notes:       s.Notes,
		SubmittedAt: s.SubmittedAt,
	}
}

func toEvaluationResponse(e *domain.EvaluationWithScores) evaluationResponse {
	resp := evaluationResponse{
		ID:              e.ID,
		SubmissionID:    e.SubmissionID,
		EvaluatorID:     e.EvaluatorID,
		OverallScore:    e.OverallScore,
		GeneralFeedback: e.GeneralFeedback,
		EvaluatedAt:     e.EvaluatedAt,
		CriteriaScores:  make([]criterionScoreResponse, len(e.Scores)),
	}

	for i, score := range e.Scores {
		resp.CriteriaScores[i] = criterionScoreResponse{
			ID:               score.ID,
			RubricCriteriaID: score.RubricCriterionID,
			Score:            score.Score,
			Feedback:         score.Feedback,
		}
	}

	return resp
}
