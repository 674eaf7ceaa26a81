package service

import (
	"context"
	"fmt"

	"codeprep_backend/internal/common"
	"codeprep_backend/internal/domain/model"
	"codeprep_backend/internal/domain/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SubmissionService records pre-judged attempts. Scoring happened in an
// external judge; this layer validates the recorded result and keeps
// progress in sync.
type SubmissionService struct {
	submissionRepo repository.SubmissionRepository
	assignmentRepo repository.AssignmentRepository
	userRepo       repository.UserRepository
	progress       *ProgressService
	logger         *zap.Logger
}

func NewSubmissionService(
	submissionRepo repository.SubmissionRepository,
	assignmentRepo repository.AssignmentRepository,
	userRepo repository.UserRepository,
	progress *ProgressService,
	logger *zap.Logger,
) *SubmissionService {
	return &SubmissionService{
		submissionRepo: submissionRepo,
		assignmentRepo: assignmentRepo,
		userRepo:       userRepo,
		progress:       progress,
		logger:         logger,
	}
}

type RecordSubmissionRequest struct {
	UserID          string                  `json:"-"`
	AssignmentID    string                  `json:"assignment_id"`
	SubmittedCode   string                  `json:"submitted_code"`
	LanguageUsed    model.Language          `json:"language_used"`
	Result          model.SubmissionResult  `json:"result"`
	ScoreEarned     int                     `json:"score_earned"`
	TestCasesPassed int                     `json:"test_cases_passed"`
	TotalTestCases  int                     `json:"total_test_cases"`
	TestCaseResults []model.TestCaseOutcome `json:"test_case_results,omitempty"`
	ExecutionTime   int                     `json:"execution_time"`
	MemoryUsed      int                     `json:"memory_used"`
	AIFeedback      string                  `json:"ai_feedback,omitempty"`
	CompilationErr  string                  `json:"compilation_error,omitempty"`
	RuntimeErr      string                  `json:"runtime_error,omitempty"`
	IPAddress       string                  `json:"-"`
}

func (s *SubmissionService) Record(ctx context.Context, req RecordSubmissionRequest) (*model.Submission, error) {
	assignment, err := s.assignmentRepo.FindByID(ctx, req.AssignmentID)
	if err != nil {
		return nil, fmt.Errorf("assignment lookup failed: %w", err)
	}

	allowed := false
	for _, l := range assignment.AllowedLanguages {
		if l == req.LanguageUsed {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, common.NewValidationError("language_used", "language is not allowed for this assignment")
	}

	attempts, err := s.submissionRepo.CountByUserAndAssignment(ctx, req.UserID, req.AssignmentID)
	if err != nil {
		return nil, fmt.Errorf("attempt count failed: %w", err)
	}
	if attempts >= int64(assignment.MaxAttempts) {
		return nil, fmt.Errorf("maximum attempts reached for this assignment: %w", common.ErrForbidden)
	}

	sub := &model.Submission{
		ID:               uuid.NewString(),
		UserID:           req.UserID,
		AssignmentID:     req.AssignmentID,
		SubmittedCode:    req.SubmittedCode,
		LanguageUsed:     req.LanguageUsed,
		Result:           req.Result,
		ScoreEarned:      req.ScoreEarned,
		TestCasesPassed:  req.TestCasesPassed,
		TotalTestCases:   req.TotalTestCases,
		TestCaseResults:  req.TestCaseResults,
		ExecutionTime:    req.ExecutionTime,
		MemoryUsed:       req.MemoryUsed,
		AttemptNumber:    int(attempts) + 1,
		AIFeedback:       req.AIFeedback,
		CompilationError: req.CompilationErr,
		RuntimeError:     req.RuntimeErr,
		IPAddress:        req.IPAddress,
	}
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	if err := s.submissionRepo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to record submission: %w", err)
	}

	if sub.Result == model.ResultPassed {
		// Progress and user counters are updated after the submission is
		// durable; a failure here leaves the records eventually consistent.
		if err := s.progress.RecordSolve(ctx, sub.UserID, assignment); err != nil {
			s.logger.Warn("progress update failed after passed submission",
				zap.String("submission_id", sub.ID), zap.Error(err))
		}
		if err := s.bumpUserCounters(ctx, sub.UserID); err != nil {
			s.logger.Warn("user counter update failed after passed submission",
				zap.String("submission_id", sub.ID), zap.Error(err))
		}
	}
	return sub, nil
}

func (s *SubmissionService) bumpUserCounters(ctx context.Context, userID string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	user.TotalProblemsSolved++
	user.CurrentStreak++
	if user.CurrentStreak > user.MaxStreak {
		user.MaxStreak = user.CurrentStreak
	}
	return s.userRepo.Update(ctx, user)
}

func (s *SubmissionService) GetByID(ctx context.Context, id string) (*model.Submission, error) {
	return s.submissionRepo.FindByID(ctx, id)
}

func (s *SubmissionService) ListByUser(ctx context.Context, userID string, limit int64) ([]*model.Submission, error) {
	return s.submissionRepo.ListByUser(ctx, userID, limit)
}

func (s *SubmissionService) ListByAssignment(ctx context.Context, assignmentID string, limit int64) ([]*model.Submission, error) {
	return s.submissionRepo.ListByAssignment(ctx, assignmentID, limit)
}
