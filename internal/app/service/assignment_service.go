package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"codeprep_backend/internal/domain/model"
	"codeprep_backend/internal/domain/repository"
	"codeprep_backend/internal/platform/cache"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AssignmentService struct {
	assignmentRepo repository.AssignmentRepository
	topicRepo      repository.TopicRepository
	cache          cache.Cache
	cacheTTL       time.Duration
	logger         *zap.Logger
}

func NewAssignmentService(
	assignmentRepo repository.AssignmentRepository,
	topicRepo repository.TopicRepository,
	c cache.Cache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *AssignmentService {
	return &AssignmentService{
		assignmentRepo: assignmentRepo,
		topicRepo:      topicRepo,
		cache:          c,
		cacheTTL:       cacheTTL,
		logger:         logger,
	}
}

type CreateAssignmentRequest struct {
	Title            string             `json:"title"`
	Slug             string             `json:"slug,omitempty"`
	ProblemStatement string             `json:"problem_statement"`
	ProblemType      model.ProblemType  `json:"problem_type"`
	CategoryID       string             `json:"category_id"`
	Difficulty       model.Difficulty   `json:"difficulty"`
	Score            int                `json:"score"`
	TestCases        []model.TestCase   `json:"test_cases,omitempty"`
	MCQOptions       []model.MCQOption  `json:"mcq_options,omitempty"`
	TimeLimit        int                `json:"time_limit,omitempty"`
	MemoryLimit      int                `json:"memory_limit,omitempty"`
	AllowedLanguages []model.Language   `json:"allowed_languages,omitempty"`
	SolutionCode     string             `json:"solution_code,omitempty"`
	SolutionVideo    string             `json:"solution_video,omitempty"`
	Hints            []string           `json:"hints,omitempty"`
	MaxAttempts      int                `json:"max_attempts,omitempty"`
	Tags             []string           `json:"tags,omitempty"`
	EstimatedTime    int                `json:"estimated_time,omitempty"`
}

func (s *AssignmentService) Create(ctx context.Context, req CreateAssignmentRequest) (*model.Assignment, error) {
	// The category must exist before anything hangs off it.
	if _, err := s.topicRepo.FindByID(ctx, req.CategoryID); err != nil {
		return nil, fmt.Errorf("category lookup failed: %w", err)
	}

	a := &model.Assignment{
		ID:               uuid.NewString(),
		Title:            req.Title,
		Slug:             req.Slug,
		ProblemStatement: req.ProblemStatement,
		ProblemType:      req.ProblemType,
		CategoryID:       req.CategoryID,
		Difficulty:       req.Difficulty,
		Score:            req.Score,
		TestCases:        req.TestCases,
		MCQOptions:       req.MCQOptions,
		TimeLimit:        req.TimeLimit,
		MemoryLimit:      req.MemoryLimit,
		AllowedLanguages: req.AllowedLanguages,
		SolutionCode:     req.SolutionCode,
		SolutionVideo:    req.SolutionVideo,
		Hints:            req.Hints,
		MaxAttempts:      req.MaxAttempts,
		IsActive:         true,
		Tags:             req.Tags,
		EstimatedTime:    req.EstimatedTime,
	}
	a.Normalize()
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if err := s.assignmentRepo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}
	return a.Sanitized(), nil
}

type UpdateAssignmentRequest struct {
	Title            *string            `json:"title,omitempty"`
	ProblemStatement *string            `json:"problem_statement,omitempty"`
	Difficulty       *model.Difficulty  `json:"difficulty,omitempty"`
	Score            *int               `json:"score,omitempty"`
	TestCases        *[]model.TestCase  `json:"test_cases,omitempty"`
	MCQOptions       *[]model.MCQOption `json:"mcq_options,omitempty"`
	TimeLimit        *int               `json:"time_limit,omitempty"`
	MemoryLimit      *int               `json:"memory_limit,omitempty"`
	AllowedLanguages *[]model.Language  `json:"allowed_languages,omitempty"`
	SolutionCode     *string            `json:"solution_code,omitempty"`
	Hints            *[]string          `json:"hints,omitempty"`
	MaxAttempts      *int               `json:"max_attempts,omitempty"`
	IsActive         *bool              `json:"is_active,omitempty"`
	Tags             *[]string          `json:"tags,omitempty"`
}

func (s *AssignmentService) Update(ctx context.Context, id string, req UpdateAssignmentRequest) (*model.Assignment, error) {
	a, err := s.assignmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		a.Title = *req.Title
	}
	if req.ProblemStatement != nil {
		a.ProblemStatement = *req.ProblemStatement
	}
	if req.Difficulty != nil {
		a.Difficulty = *req.Difficulty
	}
	if req.Score != nil {
		a.Score = *req.Score
	}
	if req.TestCases != nil {
		a.TestCases = *req.TestCases
	}
	if req.MCQOptions != nil {
		a.MCQOptions = *req.MCQOptions
	}
	if req.TimeLimit != nil {
		a.TimeLimit = *req.TimeLimit
	}
	if req.MemoryLimit != nil {
		a.MemoryLimit = *req.MemoryLimit
	}
	if req.AllowedLanguages != nil {
		a.AllowedLanguages = *req.AllowedLanguages
	}
	if req.SolutionCode != nil {
		a.SolutionCode = *req.SolutionCode
	}
	if req.Hints != nil {
		a.Hints = *req.Hints
	}
	if req.MaxAttempts != nil {
		a.MaxAttempts = *req.MaxAttempts
	}
	if req.IsActive != nil {
		a.IsActive = *req.IsActive
	}
	if req.Tags != nil {
		a.Tags = *req.Tags
	}

	a.Normalize()
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if err := s.assignmentRepo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to update assignment: %w", err)
	}
	s.invalidate(ctx, a.Slug)
	return a.Sanitized(), nil
}

func (s *AssignmentService) GetByID(ctx context.Context, id string) (*model.Assignment, error) {
	a, err := s.assignmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return a.Sanitized(), nil
}

// GetBySlug serves the hot problem pages through the redis cache. Cached
// entries are already sanitized.
func (s *AssignmentService) GetBySlug(ctx context.Context, slugStr string) (*model.Assignment, error) {
	key := assignmentCacheKey(slugStr)
	if cached, hit, err := s.cache.Get(ctx, key); err == nil && hit {
		a := &model.Assignment{}
		if err := json.Unmarshal([]byte(cached), a); err == nil {
			return a, nil
		}
	} else if err != nil {
		s.logger.Warn("assignment cache read failed", zap.Error(err))
	}

	a, err := s.assignmentRepo.FindBySlug(ctx, slugStr)
	if err != nil {
		return nil, err
	}
	sanitized := a.Sanitized()
	if payload, err := json.Marshal(sanitized); err == nil {
		if err := s.cache.Set(ctx, key, string(payload), s.cacheTTL); err != nil {
			s.logger.Warn("assignment cache write failed", zap.Error(err))
		}
	}
	return sanitized, nil
}

type AssignmentPage struct {
	Assignments []*model.Assignment `json:"assignments"`
	TotalCount  int64               `json:"total_count"`
}

func (s *AssignmentService) List(ctx context.Context, filter repository.AssignmentFilter) (*AssignmentPage, error) {
	assignments, total, err := s.assignmentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i, a := range assignments {
		assignments[i] = a.Sanitized()
	}
	return &AssignmentPage{Assignments: assignments, TotalCount: total}, nil
}

func (s *AssignmentService) invalidate(ctx context.Context, slugStr string) {
	if err := s.cache.Delete(ctx, assignmentCacheKey(slugStr)); err != nil {
		s.logger.Warn("assignment cache invalidation failed", zap.Error(err))
	}
}

func assignmentCacheKey(slugStr string) string {
	return "assignment:slug:" + slugStr
}
