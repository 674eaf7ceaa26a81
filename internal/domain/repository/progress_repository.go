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

type ProgressRepository interface {
	FindByUserAndTopic(ctx context.Context, userID, topicID string) (*model.Progress, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Progress, error)
	// Save replaces the record by (user, topic), inserting on first write.
	// The compound unique index makes concurrent first writes safe.
	Save(ctx context.Context, p *model.Progress) error
}

type mongoProgressRepository struct {
	coll *mongo.Collection
}

func NewMongoProgressRepository(db *mongo.Database) ProgressRepository {
	return &mongoProgressRepository{coll: db.Collection(database.CollectionProgress)}
}

func (r *mongoProgressRepository) FindByUserAndTopic(ctx context.Context, userID, topicID string) (*model.Progress, error) {
	p := &model.Progress{}
	err := r.coll.FindOne(ctx, bson.M{"user_id": userID, "topic_id": topicID}).Decode(p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("mongoProgressRepository.FindByUserAndTopic: %w", err)
	}
	return p, nil
}

func (r *mongoProgressRepository) ListByUser(ctx context.Context, userID string) ([]*model.Progress, error) {
	opts := options.Find().SetSort(bson.D{{Key: "last_solved_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongoProgressRepository.ListByUser: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*model.Progress
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("mongoProgressRepository.ListByUser: %w", err)
	}
	return records, nil
}

func (r *mongoProgressRepository) Save(ctx context.Context, p *model.Progress) error {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	filter := bson.M{"user_id": p.UserID, "topic_id": p.TopicID}
	opts := options.Replace().SetUpsert(true)
	_, err := r.coll.ReplaceOne(ctx, filter, p, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("progress record for user and topic already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("mongoProgressRepository.Save: %w", err)
	}
	return nil
}
