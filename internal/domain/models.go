package domain

import "time"

type User struct {
	ID       int64  `db:"id"`
	Username string `db:"username"`
}

type Project struct {
	ID      int64  `db:"id"`
	Name    string `db:"name"`
	OwnerID int64  `db:"owner_id"`
}

type Team struct {
	ID        int64  `db:"id"`
	ProjectID int64  `db:"project_id"`
	Name      string `db:"name"`
}

type TeamMembership struct {
	ID     int64 `db:"id"`
	TeamID int64 `db:"team_id"`
	UserID int64 `db:"user_id"`
	Role   Role  `db:"role"`
}

type UserStory struct {
	ID        int64  `db:"id"`
	ProjectID int64  `db:"project_id"`
	Title     string `db:"title"`
}

type Milestone struct {
	ID        int64           `db:"id"`
	ProjectID int64           `db:"project_id"`
	Name      string          `db:"name"`
	Deadline  time.Time       `db:"deadline"`
	RubricID  *int64          `db:"rubric_id"`
	Status    MilestoneStatus `db:"status"`
	CreatorID int64           `db:"creator_id"`
}

// MilestoneUpdate carries the mutable milestone fields. Nil means "leave as is".
// ProjectID and CreatorID are deliberately absent: a milestone can never be moved
// to another project through the update path.
type MilestoneUpdate struct {
	Name     *string
	Deadline *time.Time
	RubricID *int64
	Status   *MilestoneStatus
}

// MilestoneDetails is the aggregate read view of a milestone: its creator, its
// rubric with criteria (when one is attached) and the linked user stories.
type MilestoneDetails struct {
	Milestone
	Creator     User
	Rubric      *RubricWithCriteria
	UserStories []UserStory
}

type MilestoneSubmission struct {
	ID          int64     `db:"id"`
	MilestoneID int64     `db:"milestone_id"`
	TeamID      int64     `db:"team_id"`
	FilePath    *string   `db:"file_path"`
	Notes       *string   `db:"notes"`
	SubmittedAt time.Time `db:"submitted_at"`
}

type Rubric struct {
	ID        int64   `db:"id"`
	CreatorID int64   `db:"creator_id"`
	MaxScore  float64 `db:"max_score"`
}

type RubricCriterion struct {
	ID       int64   `db:"id"`
	RubricID int64   `db:"rubric_id"`
	Weight   float64 `db:"weight"`
	MaxScore float64 `db:"max_score"`
}

type RubricWithCriteria struct {
	Rubric
	Criteria []RubricCriterion
}

type MilestoneEvaluation struct {
	ID              int64     `db:"id"`
	SubmissionID    int64     `db:"milestone_submission_id"`
	EvaluatorID     int64     `db:"evaluator_id"`
	OverallScore    *float64  `db:"overall_score"`
	GeneralFeedback *string   `db:"general_feedback"`
	EvaluatedAt     time.Time `db:"evaluated_at"`
}

type CriterionScore struct {
	ID                int64   `db:"id"`
	EvaluationID      int64   `db:"milestone_evaluation_id"`
	RubricCriterionID int64   `db:"rubric_criteria_id"`
	Score             float64 `db:"score"`
	Feedback          *string `db:"feedback"`
}

type EvaluationWithScores struct {
	MilestoneEvaluation
	Scores []CriterionScore
}

// EvaluationUpdate carries a partial evaluation update. The ReplaceScores/Scores
// pair keeps "scores key absent" (leave the stored set alone) distinguishable
// from "scores key present but empty" (clear the stored set): when ReplaceScores
// is false, Scores is ignored entirely.
type EvaluationUpdate struct {
	OverallScore    *float64
	GeneralFeedback *string
	ReplaceScores   bool
	Scores          []CriterionScore
}

// SessionUser is the authenticated caller as supplied by the auth layer.
// Role here is the global account role, not a project-scoped one.
type SessionUser struct {
	ID   int64
	Role string
}
