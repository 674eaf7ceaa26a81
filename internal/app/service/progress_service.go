package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codeprep_backend/internal/common"
	"codeprep_backend/internal/domain/model"
	"codeprep_backend/internal/domain/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProgressService struct {
	progressRepo repository.ProgressRepository
	topicRepo    repository.TopicRepository
	logger       *zap.Logger
}

func NewProgressService(progressRepo repository.ProgressRepository, topicRepo repository.TopicRepository, logger *zap.Logger) *ProgressService {
	return &ProgressService{progressRepo: progressRepo, topicRepo: topicRepo, logger: logger}
}

func (s *ProgressService) Get(ctx context.Context, userID, topicID string) (*model.Progress, error) {
	return s.progressRepo.FindByUserAndTopic(ctx, userID, topicID)
}

func (s *ProgressService) ListByUser(ctx context.Context, userID string) ([]*model.Progress, error) {
	return s.progressRepo.ListByUser(ctx, userID)
}

// RecordSolve folds one passed assignment into the user's per-topic
// record, creating it on the first solve. Completion percentage is
// recomputed against the topic's problem count.
func (s *ProgressService) RecordSolve(ctx context.Context, userID string, assignment *model.Assignment) error {
	p, err := s.progressRepo.FindByUserAndTopic(ctx, userID, assignment.CategoryID)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("progress lookup failed: %w", err)
		}
		p = &model.Progress{
			ID:      uuid.NewString(),
			UserID:  userID,
			TopicID: assignment.CategoryID,
		}
	}

	now := time.Now()
	p.ProblemsSolved++
	p.ProblemsAttempted++
	p.TotalScore += assignment.Score
	p.LastSolvedAt = &now
	p.StreakCount++
	if p.StreakCount > p.BestStreak {
		p.BestStreak = p.StreakCount
	}

	switch assignment.Difficulty {
	case model.DifficultyEasy:
		p.DifficultyBreakdown.Easy.Solved++
	case model.DifficultyMedium:
		p.DifficultyBreakdown.Medium.Solved++
	case model.DifficultyHard:
		p.DifficultyBreakdown.Hard.Solved++
	}

	if topic, err := s.topicRepo.FindByID(ctx, assignment.CategoryID); err == nil && topic.TotalProblems > 0 {
		p.CompletionPercentage = float64(p.ProblemsSolved) / float64(topic.TotalProblems) * 100
		if p.CompletionPercentage > 100 {
			p.CompletionPercentage = 100
		}
	}

	return s.save(ctx, p)
}

// UpsertRequest lets the boundary write a progress record wholesale, with
// the self-correction invariant applied.
type UpsertProgressRequest struct {
	UserID            string  `json:"-"`
	TopicID           string  `json:"topic_id"`
	ProblemsSolved    int     `json:"problems_solved"`
	ProblemsAttempted int     `json:"problems_attempted"`
	TotalScore        int     `json:"total_score"`
	TimeSpent         int     `json:"time_spent"`
	StreakCount       int     `json:"streak_count"`
	CompletionPercent float64 `json:"completion_percentage"`
}

func (s *ProgressService) Upsert(ctx context.Context, req UpsertProgressRequest) (*model.Progress, error) {
	p, err := s.progressRepo.FindByUserAndTopic(ctx, req.UserID, req.TopicID)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("progress lookup failed: %w", err)
		}
		p = &model.Progress{
			ID:      uuid.NewString(),
			UserID:  req.UserID,
			TopicID: req.TopicID,
		}
	}

	p.ProblemsSolved = req.ProblemsSolved
	p.ProblemsAttempted = req.ProblemsAttempted
	p.TotalScore = req.TotalScore
	p.TimeSpent = req.TimeSpent
	p.StreakCount = req.StreakCount
	if p.StreakCount > p.BestStreak {
		p.BestStreak = p.StreakCount
	}
	p.CompletionPercentage = req.CompletionPercent

	if err := s.save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProgressService) save(ctx context.Context, p *model.Progress) error {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.progressRepo.Save(ctx, p); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}
