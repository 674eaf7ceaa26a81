package model

import (
	"strings"
	"time"
	"unicode/utf8"

	"codeprep_backend/internal/common"
	"codeprep_backend/internal/common/validation"

	"github.com/gosimple/slug"
)

type ProblemType string
type Difficulty string

const (
	ProblemTypeCoding  ProblemType = "coding"
	ProblemTypeMCQ     ProblemType = "mcq"
	ProblemTypeProject ProblemType = "project"
	ProblemTypeTheory  ProblemType = "theory"

	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

type TestCase struct {
	Input    string `bson:"input" json:"input"`
	Output   string `bson:"output" json:"output"`
	IsHidden bool   `bson:"is_hidden" json:"is_hidden"`
	Weight   int    `bson:"weight" json:"weight"`
}

type MCQOption struct {
	Option    string `bson:"option" json:"option"`
	IsCorrect bool   `bson:"is_correct" json:"is_correct"`
}

// Assignment is a problem document. Conditionally required fields
// (test_cases, mcq_options) are enforced only for the matching problem
// type.
type Assignment struct {
	ID               string      `bson:"_id" json:"id"`
	Title            string      `bson:"title" json:"title"`
	Slug             string      `bson:"slug" json:"slug"`
	ProblemStatement string      `bson:"problem_statement" json:"problem_statement"`
	ProblemType      ProblemType `bson:"problem_type" json:"problem_type"`
	CategoryID       string      `bson:"category_id" json:"category_id"`
	Difficulty       Difficulty  `bson:"difficulty" json:"difficulty"`
	Score            int         `bson:"score" json:"score"`

	TestCases  []TestCase  `bson:"test_cases,omitempty" json:"test_cases,omitempty"`
	MCQOptions []MCQOption `bson:"mcq_options,omitempty" json:"mcq_options,omitempty"`

	TimeLimit        int        `bson:"time_limit,omitempty" json:"time_limit,omitempty"`   // seconds
	MemoryLimit      int        `bson:"memory_limit" json:"memory_limit"`                   // MB
	AllowedLanguages []Language `bson:"allowed_languages" json:"allowed_languages"`

	SolutionCode        string `bson:"solution_code,omitempty" json:"-"`
	SolutionVideo       string `bson:"solution_video,omitempty" json:"solution_video,omitempty"`
	SolutionExplanation string `bson:"solution_explanation,omitempty" json:"solution_explanation,omitempty"`

	Hints         []string `bson:"hints" json:"hints"`
	MaxAttempts   int      `bson:"max_attempts" json:"max_attempts"`
	IsActive      bool     `bson:"is_active" json:"is_active"`
	Tags          []string `bson:"tags,omitempty" json:"tags,omitempty"`
	EstimatedTime int      `bson:"estimated_time,omitempty" json:"estimated_time,omitempty"` // minutes

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Normalize derives the slug from the title when absent and fills
// defaults. Idempotent.
func (a *Assignment) Normalize() {
	a.Title = strings.TrimSpace(a.Title)
	if a.Slug == "" && a.Title != "" {
		a.Slug = slug.Make(a.Title)
	}
	a.Slug = strings.ToLower(a.Slug)
	if a.MemoryLimit == 0 {
		a.MemoryLimit = 256
	}
	if a.MaxAttempts == 0 {
		a.MaxAttempts = 3
	}
	if len(a.AllowedLanguages) == 0 {
		a.AllowedLanguages = DefaultAllowedLanguages()
	}
	if a.Hints == nil {
		a.Hints = []string{}
	}
}

func (a *Assignment) Validate() error {
	n := utf8.RuneCountInString(a.Title)
	if n < 3 {
		return common.NewValidationError("title", "title must be at least 3 characters long")
	}
	if n > 100 {
		return common.NewValidationError("title", "title cannot exceed 100 characters")
	}
	if ok, reason := validation.Slug(a.Slug); !ok {
		return common.NewValidationError("slug", reason)
	}
	stmt := utf8.RuneCountInString(a.ProblemStatement)
	if stmt < 10 {
		return common.NewValidationError("problem_statement", "problem statement must be at least 10 characters long")
	}
	if stmt > 5000 {
		return common.NewValidationError("problem_statement", "problem statement cannot exceed 5000 characters")
	}
	switch a.ProblemType {
	case ProblemTypeCoding, ProblemTypeMCQ, ProblemTypeProject, ProblemTypeTheory:
	default:
		return common.NewValidationError("problem_type", "problem type must be coding, mcq, project, or theory")
	}
	if a.CategoryID == "" {
		return common.NewValidationError("category_id", "category is required")
	}
	switch a.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return common.NewValidationError("difficulty", "difficulty must be easy, medium, or hard")
	}
	if a.Score < 1 {
		return common.NewValidationError("score", "score must be at least 1")
	}
	if a.Score > 100 {
		return common.NewValidationError("score", "score cannot exceed 100")
	}

	// Conditional requirements per problem type.
	if a.ProblemType == ProblemTypeCoding && len(a.TestCases) == 0 {
		return common.NewValidationError("test_cases", "coding problems must have at least one test case")
	}
	if a.ProblemType == ProblemTypeMCQ {
		if len(a.MCQOptions) < 2 {
			return common.NewValidationError("mcq_options", "MCQ must have at least 2 options with at least 1 correct answer")
		}
		correct := 0
		for _, opt := range a.MCQOptions {
			if opt.IsCorrect {
				correct++
			}
		}
		if correct < 1 {
			return common.NewValidationError("mcq_options", "MCQ must have at least 2 options with at least 1 correct answer")
		}
	}

	if a.TimeLimit != 0 && (a.TimeLimit < 30 || a.TimeLimit > 7200) {
		return common.NewValidationError("time_limit", "time limit must be between 30 seconds and 2 hours")
	}
	if a.MemoryLimit < 32 || a.MemoryLimit > 512 {
		return common.NewValidationError("memory_limit", "memory limit must be between 32 MB and 512 MB")
	}
	for _, l := range a.AllowedLanguages {
		if !IsValidLanguage(l) {
			return common.NewValidationError("allowed_languages", "invalid programming language")
		}
	}
	if utf8.RuneCountInString(a.SolutionCode) > 10000 {
		return common.NewValidationError("solution_code", "solution code cannot exceed 10000 characters")
	}
	if a.SolutionVideo != "" {
		if ok, reason := validation.URL(a.SolutionVideo); !ok {
			return common.NewValidationError("solution_video", reason)
		}
	}
	if utf8.RuneCountInString(a.SolutionExplanation) > 3000 {
		return common.NewValidationError("solution_explanation", "solution explanation cannot exceed 3000 characters")
	}
	if len(a.Hints) > 5 {
		return common.NewValidationError("hints", "maximum 5 hints are allowed")
	}
	if a.MaxAttempts < 1 || a.MaxAttempts > 10 {
		return common.NewValidationError("max_attempts", "max attempts must be between 1 and 10")
	}
	if len(a.Tags) > 10 {
		return common.NewValidationError("tags", "maximum 10 tags are allowed")
	}
	if a.EstimatedTime != 0 && (a.EstimatedTime < 1 || a.EstimatedTime > 180) {
		return common.NewValidationError("estimated_time", "estimated time must be between 1 and 180 minutes")
	}
	return nil
}

// Sanitized strips the never-returned-by-default fields for public reads.
func (a *Assignment) Sanitized() *Assignment {
	c := *a
	c.SolutionCode = ""
	return &c
}
