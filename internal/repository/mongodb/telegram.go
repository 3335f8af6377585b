package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/menahealth/medflow-api/internal/model"
	"github.com/menahealth/medflow-api/internal/repository"
	apperrors "github.com/menahealth/medflow-api/pkg/errors"
)

type telegramRepository struct {
	coll *mongo.Collection
}

func NewTelegramRepository(db *mongo.Database) repository.TelegramRepository {
	return &telegramRepository{coll: db.Collection(collThreads)}
}

func (r *telegramRepository) LinkPatient(ctx context.Context, chatID, patientID, language string) error {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"patient_id": patientID,
			"language":   language,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"_id":        uuid.NewString(),
			"created_at": now,
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := r.coll.UpdateOne(ctx, bson.M{"chat_id": chatID}, update, opts); err != nil {
		return fmt.Errorf("failed to link telegram thread: %w", err)
	}
	return nil
}

func (r *telegramRepository) GetByChatID(ctx context.Context, chatID string) (*model.TelegramThread, error) {
	var thread model.TelegramThread
	err := r.coll.FindOne(ctx, bson.M{"chat_id": chatID}).Decode(&thread)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NotFound("telegram thread", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get telegram thread: %w", err)
	}
	return &thread, nil
}
