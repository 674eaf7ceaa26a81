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

type PaymentRepository interface {
	Create(ctx context.Context, p *model.Payment) error
	FindByID(ctx context.Context, id string) (*model.Payment, error)
	FindByOrderID(ctx context.Context, orderID string) (*model.Payment, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Payment, error)
	Update(ctx context.Context, p *model.Payment) error
}

type mongoPaymentRepository struct {
	coll *mongo.Collection
}

func NewMongoPaymentRepository(db *mongo.Database) PaymentRepository {
	return &mongoPaymentRepository{coll: db.Collection(database.CollectionPayments)}
}

func (r *mongoPaymentRepository) Create(ctx context.Context, p *model.Payment) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, p)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("payment with given order ID already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("mongoPaymentRepository.Create: %w", err)
	}
	return nil
}

func (r *mongoPaymentRepository) FindByID(ctx context.Context, id string) (*model.Payment, error) {
	return r.findOne(ctx, bson.M{"_id": id}, "FindByID")
}

func (r *mongoPaymentRepository) FindByOrderID(ctx context.Context, orderID string) (*model.Payment, error) {
	return r.findOne(ctx, bson.M{"razorpay_order_id": orderID}, "FindByOrderID")
}

func (r *mongoPaymentRepository) findOne(ctx context.Context, filter bson.M, op string) (*model.Payment, error) {
	p := &model.Payment{}
	err := r.coll.FindOne(ctx, filter).Decode(p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("mongoPaymentRepository.%s: %w", op, err)
	}
	return p, nil
}

func (r *mongoPaymentRepository) ListByUser(ctx context.Context, userID string) ([]*model.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongoPaymentRepository.ListByUser: %w", err)
	}
	defer cursor.Close(ctx)

	var payments []*model.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("mongoPaymentRepository.ListByUser: %w", err)
	}
	return payments, nil
}

func (r *mongoPaymentRepository) Update(ctx context.Context, p *model.Payment) error {
	p.UpdatedAt = time.Now()
	result, err := r.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("payment with given payment or invoice ID already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("mongoPaymentRepository.Update: %w", err)
	}
	if result.MatchedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}
