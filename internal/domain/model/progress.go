package model

import (
	"time"

	"codeprep_backend/internal/common"
)

// TierProgress tracks solved/total within one difficulty tier.
type TierProgress struct {
	Solved int `bson:"solved" json:"solved"`
	Total  int `bson:"total" json:"total"`
}

type DifficultyBreakdown struct {
	Easy   TierProgress `bson:"easy" json:"easy"`
	Medium TierProgress `bson:"medium" json:"medium"`
	Hard   TierProgress `bson:"hard" json:"hard"`
}

// Progress is the one-per-(user, topic) progress record. The compound
// uniqueness is enforced by the store's index.
type Progress struct {
	ID      string `bson:"_id" json:"id"`
	UserID  string `bson:"user_id" json:"user_id"`
	TopicID string `bson:"topic_id" json:"topic_id"`

	ProblemsSolved    int     `bson:"problems_solved" json:"problems_solved"`
	ProblemsAttempted int     `bson:"problems_attempted" json:"problems_attempted"`
	TotalScore        int     `bson:"total_score" json:"total_score"`
	AverageAttempts   float64 `bson:"average_attempts" json:"average_attempts"`

	DifficultyBreakdown DifficultyBreakdown `bson:"difficulty_breakdown" json:"difficulty_breakdown"`

	TimeSpent            int        `bson:"time_spent" json:"time_spent"` // minutes
	LastSolvedAt         *time.Time `bson:"last_solved_at,omitempty" json:"last_solved_at,omitempty"`
	StreakCount          int        `bson:"streak_count" json:"streak_count"`
	BestStreak           int        `bson:"best_streak" json:"best_streak"`
	CompletionPercentage float64    `bson:"completion_percentage" json:"completion_percentage"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Normalize applies the documented self-correction: if solved exceeds
// attempted, attempted is raised to match. Re-running on a corrected
// record is a no-op.
func (p *Progress) Normalize() {
	if p.ProblemsSolved > p.ProblemsAttempted {
		p.ProblemsAttempted = p.ProblemsSolved
	}
}

func (p *Progress) Validate() error {
	if p.UserID == "" {
		return common.NewValidationError("user_id", "user ID is required")
	}
	if p.TopicID == "" {
		return common.NewValidationError("topic_id", "topic ID is required")
	}
	if p.ProblemsSolved < 0 {
		return common.NewValidationError("problems_solved", "problems solved cannot be negative")
	}
	if p.ProblemsAttempted < 0 {
		return common.NewValidationError("problems_attempted", "problems attempted cannot be negative")
	}
	if p.TotalScore < 0 {
		return common.NewValidationError("total_score", "total score cannot be negative")
	}
	if p.AverageAttempts < 0 {
		return common.NewValidationError("average_attempts", "average attempts cannot be negative")
	}
	for _, tier := range []TierProgress{p.DifficultyBreakdown.Easy, p.DifficultyBreakdown.Medium, p.DifficultyBreakdown.Hard} {
		if tier.Solved < 0 || tier.Total < 0 {
			return common.NewValidationError("difficulty_breakdown", "counts cannot be negative")
		}
	}
	if p.TimeSpent < 0 {
		return common.NewValidationError("time_spent", "time spent cannot be negative")
	}
	if p.StreakCount < 0 {
		return common.NewValidationError("streak_count", "streak count cannot be negative")
	}
	if p.BestStreak < 0 {
		return common.NewValidationError("best_streak", "best streak cannot be negative")
	}
	if p.CompletionPercentage < 0 || p.CompletionPercentage > 100 {
		return common.NewValidationError("completion_percentage", "completion percentage must be between 0 and 100")
	}
	return nil
}

// SuccessRate is solved/attempted as a percentage, 0 when nothing was
// attempted. Derived, never persisted.
func (p *Progress) SuccessRate() float64 {
	if p.ProblemsAttempted == 0 {
		return 0
	}
	return float64(p.ProblemsSolved) / float64(p.ProblemsAttempted) * 100
}
