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

type TopicService struct {
	topicRepo repository.TopicRepository
	cache     cache.Cache
	cacheTTL  time.Duration
	logger    *zap.Logger
}

func NewTopicService(topicRepo repository.TopicRepository, c cache.Cache, cacheTTL time.Duration, logger *zap.Logger) *TopicService {
	return &TopicService{topicRepo: topicRepo, cache: c, cacheTTL: cacheTTL, logger: logger}
}

type CreateTopicRequest struct {
	Name          string   `json:"name"`
	Slug          string   `json:"slug,omitempty"`
	Description   string   `json:"description,omitempty"`
	Icon          string   `json:"icon,omitempty"`
	ParentTopicID *string  `json:"parent_topic_id,omitempty"`
	Order         int      `json:"order,omitempty"`
	Tags          []string `json:"tags,omitempty"`
}

func (s *TopicService) Create(ctx context.Context, req CreateTopicRequest) (*model.Topic, error) {
	topic := &model.Topic{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Slug:          req.Slug,
		Description:   req.Description,
		Icon:          req.Icon,
		ParentTopicID: req.ParentTopicID,
		Order:         req.Order,
		IsActive:      true,
		Tags:          req.Tags,
	}
	topic.Normalize()
	if err := topic.Validate(); err != nil {
		return nil, err
	}
	if err := s.topicRepo.Create(ctx, topic); err != nil {
		return nil, fmt.Errorf("failed to create topic: %w", err)
	}
	return topic, nil
}

type UpdateTopicRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Icon        *string  `json:"icon,omitempty"`
	Order       *int     `json:"order,omitempty"`
	IsActive    *bool    `json:"is_active,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

func (s *TopicService) Update(ctx context.Context, id string, req UpdateTopicRequest) (*model.Topic, error) {
	topic, err := s.topicRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		topic.Name = *req.Name
	}
	if req.Description != nil {
		topic.Description = *req.Description
	}
	if req.Icon != nil {
		topic.Icon = *req.Icon
	}
	if req.Order != nil {
		topic.Order = *req.Order
	}
	if req.IsActive != nil {
		topic.IsActive = *req.IsActive
	}
	if req.Tags != nil {
		topic.Tags = req.Tags
	}

	topic.Normalize()
	if err := topic.Validate(); err != nil {
		return nil, err
	}
	if err := s.topicRepo.Update(ctx, topic); err != nil {
		return nil, fmt.Errorf("failed to update topic: %w", err)
	}
	s.invalidate(ctx, topic.Slug)
	return topic, nil
}

// Deactivate hides a topic from listings without deleting it; child
// topics and progress records keep their references.
func (s *TopicService) Deactivate(ctx context.Context, id string) (*model.Topic, error) {
	inactive := false
	return s.Update(ctx, id, UpdateTopicRequest{IsActive: &inactive})
}

func (s *TopicService) GetByID(ctx context.Context, id string) (*model.Topic, error) {
	return s.topicRepo.FindByID(ctx, id)
}

// GetBySlug serves hot topic pages through the redis cache.
func (s *TopicService) GetBySlug(ctx context.Context, slugStr string) (*model.Topic, error) {
	key := topicCacheKey(slugStr)
	if cached, hit, err := s.cache.Get(ctx, key); err == nil && hit {
		topic := &model.Topic{}
		if err := json.Unmarshal([]byte(cached), topic); err == nil {
			return topic, nil
		}
	} else if err != nil {
		s.logger.Warn("topic cache read failed", zap.Error(err))
	}

	topic, err := s.topicRepo.FindBySlug(ctx, slugStr)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(topic); err == nil {
		if err := s.cache.Set(ctx, key, string(payload), s.cacheTTL); err != nil {
			s.logger.Warn("topic cache write failed", zap.Error(err))
		}
	}
	return topic, nil
}

func (s *TopicService) List(ctx context.Context, activeOnly bool) ([]*model.Topic, error) {
	return s.topicRepo.List(ctx, activeOnly)
}

func (s *TopicService) ListChildren(ctx context.Context, parentID string) ([]*model.Topic, error) {
	return s.topicRepo.ListChildren(ctx, parentID)
}

func (s *TopicService) invalidate(ctx context.Context, slugStr string) {
	if err := s.cache.Delete(ctx, topicCacheKey(slugStr)); err != nil {
		s.logger.Warn("topic cache invalidation failed", zap.Error(err))
	}
}

func topicCacheKey(slugStr string) string {
	return "topic:slug:" + slugStr
}
