package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codeprep_backend/internal/common"
	"codeprep_backend/internal/domain/model"
	"codeprep_backend/internal/platform/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TopicRepository interface {
	Create(ctx context.Context, topic *model.Topic) error
	FindByID(ctx context.Context, id string) (*model.Topic, error)
	FindBySlug(ctx context.Context, slug string) (*model.Topic, error)
	List(ctx context.Context, activeOnly bool) ([]*model.Topic, error)
	ListChildren(ctx context.Context, parentID string) ([]*model.Topic, error)
	Update(ctx context.Context, topic *model.Topic) error
}

type mongoTopicRepository struct {
	coll *mongo.Collection
}

func NewMongoTopicRepository(db *mongo.Database) TopicRepository {
	return &mongoTopicRepository{coll: db.Collection(database.CollectionTopics)}
}

func (r *mongoTopicRepository) Create(ctx context.Context, topic *model.Topic) error {
	now := time.Now()
	topic.CreatedAt = now
	topic.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, topic)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("topic with given name or slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("mongoTopicRepository.Create: %w", err)
	}
	return nil
}

func (r *mongoTopicRepository) FindByID(ctx context.Context, id string) (*model.Topic, error) {
	return r.findOne(ctx, bson.M{"_id": id}, "FindByID")
}

func (r *mongoTopicRepository) FindBySlug(ctx context.Context, slug string) (*model.Topic, error) {
	return r.findOne(ctx, bson.M{"slug": slug}, "FindBySlug")
}

func (r *mongoTopicRepository) findOne(ctx context.Context, filter bson.M, op string) (*model.Topic, error) {
	topic := &model.Topic{}
	err := r.coll.FindOne(ctx, filter).Decode(topic)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("mongoTopicRepository.%s: %w", op, err)
	}
	return topic, nil
}

func (r *mongoTopicRepository) List(ctx context.Context, activeOnly bool) ([]*model.Topic, error) {
	filter := bson.M{}
	if activeOnly {
		filter["is_active"] = true
	}
	return r.findMany(ctx, filter, "List")
}

func (r *mongoTopicRepository) ListChildren(ctx context.Context, parentID string) ([]*model.Topic, error) {
	return r.findMany(ctx, bson.M{"parent_topic_id": parentID}, "ListChildren")
}

func (r *mongoTopicRepository) findMany(ctx context.Context, filter bson.M, op string) ([]*model.Topic, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongoTopicRepository.%s: %w", op, err)
	}
	defer cursor.Close(ctx)

	var topics []*model.Topic
	if err := cursor.All(ctx, &topics); err != nil {
		return nil, fmt.Errorf("mongoTopicRepository.%s: %w", op, err)
	}
	return topics, nil
}

func (r *mongoTopicRepository) Update(ctx context.Context, topic *model.Topic) error {
	topic.UpdatedAt = time.Now()
	result, err := r.coll.ReplaceOne(ctx, bson.M{"_id": topic.ID}, topic)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("topic with given name or slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("mongoTopicRepository.Update: %w", err)
	}
	if result.MatchedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}
