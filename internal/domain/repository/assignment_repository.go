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

// AssignmentFilter narrows List queries; zero values mean "any".
type AssignmentFilter struct {
	CategoryID  string
	Difficulty  model.Difficulty
	ProblemType model.ProblemType
	ActiveOnly  bool
	Page        int64
	PageSize    int64
}

type AssignmentRepository interface {
	Create(ctx context.Context, a *model.Assignment) error
	FindByID(ctx context.Context, id string) (*model.Assignment, error)
	FindBySlug(ctx context.Context, slug string) (*model.Assignment, error)
	List(ctx context.Context, filter AssignmentFilter) ([]*model.Assignment, int64, error)
	Update(ctx context.Context, a *model.Assignment) error
}

type mongoAssignmentRepository struct {
	coll *mongo.Collection
}

func NewMongoAssignmentRepository(db *mongo.Database) AssignmentRepository {
	return &mongoAssignmentRepository{coll: db.Collection(database.CollectionAssignments)}
}

func (r *mongoAssignmentRepository) Create(ctx context.Context, a *model.Assignment) error {
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, a)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("assignment with given slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("mongoAssignmentRepository.Create: %w", err)
	}
	return nil
}

func (r *mongoAssignmentRepository) FindByID(ctx context.Context, id string) (*model.Assignment, error) {
	return r.findOne(ctx, bson.M{"_id": id}, "FindByID")
}

func (r *mongoAssignmentRepository) FindBySlug(ctx context.Context, slug string) (*model.Assignment, error) {
	return r.findOne(ctx, bson.M{"slug": slug}, "FindBySlug")
}

func (r *mongoAssignmentRepository) findOne(ctx context.Context, filter bson.M, op string) (*model.Assignment, error) {
	a := &model.Assignment{}
	err := r.coll.FindOne(ctx, filter).Decode(a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("mongoAssignmentRepository.%s: %w", op, err)
	}
	return a, nil
}

func (r *mongoAssignmentRepository) List(ctx context.Context, f AssignmentFilter) ([]*model.Assignment, int64, error) {
	filter := bson.M{}
	if f.CategoryID != "" {
		filter["category_id"] = f.CategoryID
	}
	if f.Difficulty != "" {
		filter["difficulty"] = f.Difficulty
	}
	if f.ProblemType != "" {
		filter["problem_type"] = f.ProblemType
	}
	if f.ActiveOnly {
		filter["is_active"] = true
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		opts = opts.SetSkip((page - 1) * f.PageSize).SetLimit(f.PageSize)
	}

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("mongoAssignmentRepository.List: %w", err)
	}
	defer cursor.Close(ctx)

	var assignments []*model.Assignment
	if err := cursor.All(ctx, &assignments); err != nil {
		return nil, 0, fmt.Errorf("mongoAssignmentRepository.List: %w", err)
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("mongoAssignmentRepository.List: %w", err)
	}
	return assignments, total, nil
}

func (r *mongoAssignmentRepository) Update(ctx context.Context, a *model.Assignment) error {
	a.UpdatedAt = time.Now()
	result, err := r.coll.ReplaceOne(ctx, bson.M{"_id": a.ID}, a)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("assignment with given slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("mongoAssignmentRepository.Update: %w", err)
	}
	if result.MatchedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}
