package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionUsers       = "users"
	CollectionTopics      = "topics"
	CollectionAssignments = "assignments"
	CollectionSubmissions = "submissions"
	CollectionProgress    = "progress_reports"
	CollectionPayments    = "payments"
)

// Connect opens the Mongo client and verifies the connection.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return client, nil
}

func Close(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes creates the unique and query indexes the entity layer
// relies on. The store is the sole point of concurrency control: all
// uniqueness (email, phone, slugs, order ids, user+topic) is enforced
// here atomically at write time.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)
	uniqueSparse := options.Index().SetUnique(true).SetSparse(true)

	indexes := map[string][]mongo.IndexModel{
		CollectionUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "phone", Value: 1}}, Options: uniqueSparse},
			{Keys: bson.D{{Key: "verification_token_hash", Value: 1}}, Options: options.Index().SetSparse(true)},
			{Keys: bson.D{{Key: "reset_token_hash", Value: 1}}, Options: options.Index().SetSparse(true)},
			{Keys: bson.D{{Key: "payment_status", Value: 1}, {Key: "payment_expiry", Value: 1}}},
		},
		CollectionTopics: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "parent_topic_id", Value: 1}}},
			{Keys: bson.D{{Key: "order", Value: 1}}},
		},
		CollectionAssignments: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "category_id", Value: 1}, {Key: "difficulty", Value: 1}}},
			{Keys: bson.D{{Key: "problem_type", Value: 1}, {Key: "is_active", Value: 1}}},
		},
		CollectionSubmissions: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "assignment_id", Value: 1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "assignment_id", Value: 1}, {Key: "result", Value: 1}}},
		},
		CollectionProgress: {
			// One progress record per user per topic.
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "topic_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "last_solved_at", Value: -1}}},
			{Keys: bson.D{{Key: "total_score", Value: -1}}},
		},
		CollectionPayments: {
			{Keys: bson.D{{Key: "razorpay_order_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "razorpay_payment_id", Value: 1}}, Options: uniqueSparse},
			{Keys: bson.D{{Key: "invoice_id", Value: 1}}, Options: uniqueSparse},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}
