// Package mongodb implements the repository interfaces on the document
// store.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/menahealth/medflow-api/internal/config"
)

const (
	collPatients  = "patients"
	collMedOrders = "med_orders"
	collUsers     = "users"
	collThreads   = "telegram_threads"
	collOutbox    = "outbox_events"
)

// NewDB connects to MongoDB and prepares the indexes the repositories
// rely on (rx token equality, specialty membership, outbox draining).
func NewDB(cfg config.MongoConfig) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(cfg.Database)
	if err := ensureIndexes(ctx, db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	patientIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "rx_orders.rx_order_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "specialty", Value: 1}}},
	}
	if _, err := db.Collection(collPatients).Indexes().CreateMany(ctx, patientIdx); err != nil {
		return fmt.Errorf("failed to create patient indexes: %w", err)
	}

	userIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "doctor_specialty", Value: 1}}},
		{Keys: bson.D{{Key: "account_type", Value: 1}}},
	}
	if _, err := db.Collection(collUsers).Indexes().CreateMany(ctx, userIdx); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	outboxIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
	}
	if _, err := db.Collection(collOutbox).Indexes().CreateMany(ctx, outboxIdx); err != nil {
		return fmt.Errorf("failed to create outbox indexes: %w", err)
	}

	threadIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "chat_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := db.Collection(collThreads).Indexes().CreateMany(ctx, threadIdx); err != nil {
		return fmt.Errorf("failed to create telegram thread indexes: %w", err)
	}

	return nil
}
