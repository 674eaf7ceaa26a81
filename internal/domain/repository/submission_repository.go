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

type SubmissionRepository interface {
	Create(ctx context.Context, s *model.Submission) error
	FindByID(ctx context.Context, id string) (*model.Submission, error)
	CountByUserAndAssignment(ctx context.Context, userID, assignmentID string) (int64, error)
	ListByUser(ctx context.Context, userID string, limit int64) ([]*model.Submission, error)
	ListByAssignment(ctx context.Context, assignmentID string, limit int64) ([]*model.Submission, error)
}

type mongoSubmissionRepository struct {
	coll *mongo.Collection
}

func NewMongoSubmissionRepository(db *mongo.Database) SubmissionRepository {
	return &mongoSubmissionRepository{coll: db.Collection(database.CollectionSubmissions)}
}

func (r *mongoSubmissionRepository) Create(ctx context.Context, s *model.Submission) error {
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, s); err != nil {
		return fmt.Errorf("mongoSubmissionRepository.Create: %w", err)
	}
	return nil
}

func (r *mongoSubmissionRepository) FindByID(ctx context.Context, id string) (*model.Submission, error) {
	s := &model.Submission{}
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("mongoSubmissionRepository.FindByID: %w", err)
	}
	return s, nil
}

func (r *mongoSubmissionRepository) CountByUserAndAssignment(ctx context.Context, userID, assignmentID string) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"user_id": userID, "assignment_id": assignmentID})
	if err != nil {
		return 0, fmt.Errorf("mongoSubmissionRepository.CountByUserAndAssignment: %w", err)
	}
	return count, nil
}

func (r *mongoSubmissionRepository) ListByUser(ctx context.Context, userID string, limit int64) ([]*model.Submission, error) {
	return r.findMany(ctx, bson.M{"user_id": userID}, limit, "ListByUser")
}

func (r *mongoSubmissionRepository) ListByAssignment(ctx context.Context, assignmentID string, limit int64) ([]*model.Submission, error) {
	return r.findMany(ctx, bson.M{"assignment_id": assignmentID}, limit, "ListByAssignment")
}

func (r *mongoSubmissionRepository) findMany(ctx context.Context, filter bson.M, limit int64, op string) ([]*model.Submission, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongoSubmissionRepository.%s: %w", op, err)
	}
	defer cursor.Close(ctx)

	var submissions []*model.Submission
	if err := cursor.All(ctx, &submissions); err != nil {
		return nil, fmt.Errorf("mongoSubmissionRepository.%s: %w", op, err)
	}
	return submissions, nil
}
