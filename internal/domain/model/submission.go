package model

import (
	"time"
	"unicode/utf8"

	"codeprep_backend/internal/common"
	"codeprep_backend/internal/common/validation"
)

type SubmissionResult string

const (
	ResultPassed            SubmissionResult = "passed"
	ResultFailed            SubmissionResult = "failed"
	ResultPartial           SubmissionResult = "partial"
	ResultCompileError      SubmissionResult = "compile_error"
	ResultRuntimeError      SubmissionResult = "runtime_error"
	ResultTimeLimitExceeded SubmissionResult = "time_limit_exceeded"
)

const (
	maxExecutionTimeMs = 30000
	maxMemoryUsedMB    = 512
)

// TestCaseOutcome is the per-test-case breakdown recorded from the
// external judge.
type TestCaseOutcome struct {
	TestCaseID    string `bson:"test_case_id" json:"test_case_id"`
	Passed        bool   `bson:"passed" json:"passed"`
	ExecutionTime int    `bson:"execution_time" json:"execution_time"`
	MemoryUsed    int    `bson:"memory_used" json:"memory_used"`
	ErrorMessage  string `bson:"error_message,omitempty" json:"error_message,omitempty"`
}

// Submission records a judged attempt. Scoring happened in an external
// judge; this document only stores the result.
type Submission struct {
	ID           string `bson:"_id" json:"id"`
	UserID       string `bson:"user_id" json:"user_id"`
	AssignmentID string `bson:"assignment_id" json:"assignment_id"`

	SubmittedCode string           `bson:"submitted_code" json:"submitted_code"`
	LanguageUsed  Language         `bson:"language_used" json:"language_used"`
	Result        SubmissionResult `bson:"result" json:"result"`

	ScoreEarned     int               `bson:"score_earned" json:"score_earned"`
	TestCasesPassed int               `bson:"test_cases_passed" json:"test_cases_passed"`
	TotalTestCases  int               `bson:"total_test_cases" json:"total_test_cases"`
	TestCaseResults []TestCaseOutcome `bson:"test_case_results,omitempty" json:"test_case_results,omitempty"`

	ExecutionTime int `bson:"execution_time" json:"execution_time"` // milliseconds
	MemoryUsed    int `bson:"memory_used" json:"memory_used"`       // MB
	AttemptNumber int `bson:"attempt_number" json:"attempt_number"`

	AIFeedback       string `bson:"ai_feedback,omitempty" json:"ai_feedback,omitempty"`
	CompilationError string `bson:"compilation_error,omitempty" json:"compilation_error,omitempty"`
	RuntimeError     string `bson:"runtime_error,omitempty" json:"runtime_error,omitempty"`
	IPAddress        string `bson:"ip_address,omitempty" json:"ip_address,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

func (s *Submission) Validate() error {
	if s.UserID == "" {
		return common.NewValidationError("user_id", "user ID is required")
	}
	if s.AssignmentID == "" {
		return common.NewValidationError("assignment_id", "assignment ID is required")
	}
	codeLen := utf8.RuneCountInString(s.SubmittedCode)
	if codeLen < 1 {
		return common.NewValidationError("submitted_code", "code cannot be empty")
	}
	if codeLen > 50000 {
		return common.NewValidationError("submitted_code", "code cannot exceed 50000 characters")
	}
	if !IsValidLanguage(s.LanguageUsed) {
		return common.NewValidationError("language_used", "invalid programming language")
	}
	switch s.Result {
	case ResultPassed, ResultFailed, ResultPartial, ResultCompileError, ResultRuntimeError, ResultTimeLimitExceeded:
	default:
		return common.NewValidationError("result", "invalid result status")
	}
	if s.ScoreEarned < 0 {
		return common.NewValidationError("score_earned", "score cannot be negative")
	}
	if s.TestCasesPassed < 0 {
		return common.NewValidationError("test_cases_passed", "test cases passed cannot be negative")
	}
	if s.TotalTestCases < 1 {
		return common.NewValidationError("total_test_cases", "there must be at least 1 test case")
	}
	// Hard invariant: never store more passes than cases.
	if s.TestCasesPassed > s.TotalTestCases {
		return common.NewValidationError("test_cases_passed", "test cases passed cannot exceed total test cases")
	}
	if s.ExecutionTime < 0 || s.ExecutionTime > maxExecutionTimeMs {
		return common.NewValidationError("execution_time", "execution time cannot exceed 30 seconds")
	}
	if s.MemoryUsed < 0 || s.MemoryUsed > maxMemoryUsedMB {
		return common.NewValidationError("memory_used", "memory usage cannot exceed 512 MB")
	}
	if s.AttemptNumber < 1 {
		return common.NewValidationError("attempt_number", "attempt number must be at least 1")
	}
	if utf8.RuneCountInString(s.AIFeedback) > 2000 {
		return common.NewValidationError("ai_feedback", "AI feedback cannot exceed 2000 characters")
	}
	if utf8.RuneCountInString(s.CompilationError) > 1000 {
		return common.NewValidationError("compilation_error", "compilation error message cannot exceed 1000 characters")
	}
	if utf8.RuneCountInString(s.RuntimeError) > 1000 {
		return common.NewValidationError("runtime_error", "runtime error message cannot exceed 1000 characters")
	}
	if s.IPAddress != "" {
		if ok, reason := validation.IPAddress(s.IPAddress); !ok {
			return common.NewValidationError("ip_address", reason)
		}
	}
	return nil
}

// SuccessRate is the passed/total percentage. Derived, never persisted.
func (s *Submission) SuccessRate() float64 {
	if s.TotalTestCases == 0 {
		return 0
	}
	return float64(s.TestCasesPassed) / float64(s.TotalTestCases) * 100
}
