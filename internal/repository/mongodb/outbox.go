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
)

// outboxStatusClaimed marks events taken by a worker but not yet resolved.
const outboxStatusClaimed = "CLAIMED"

// staleClaimAge is how long a CLAIMED event may sit unresolved before it
// is treated as orphaned by a crashed worker and offered for re-claim.
const staleClaimAge = 5 * time.Minute

// claimableFilter matches events a worker may take: pending ones, plus
// claims older than staleClaimAge whose worker never resolved them.
func claimableFilter(now time.Time) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"status": model.OutboxStatusPending},
		bson.M{
			"status":     outboxStatusClaimed,
			"claimed_at": bson.M{"$lt": now.Add(-staleClaimAge)},
		},
	}}
}

type outboxRepository struct {
	coll *mongo.Collection
}

func NewOutboxRepository(db *mongo.Database) repository.OutboxRepository {
	return &outboxRepository{coll: db.Collection(collOutbox)}
}

func (r *outboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if event.Payload == nil {
		return fmt.Errorf("event payload cannot be nil")
	}

	event.ID = uuid.NewString()
	event.Status = model.OutboxStatusPending
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt

	if _, err := r.coll.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}

func (r *outboxRepository) ClaimPending(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	events := make([]*model.OutboxEvent, 0, limit)
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetReturnDocument(options.After)

	// One-at-a-time atomic claims; a findAndModify per event keeps two
	// workers from delivering the same notification.
	for i := 0; i < limit; i++ {
		now := time.Now()
		update := bson.M{"$set": bson.M{
			"status":     outboxStatusClaimed,
			"claimed_at": now,
			"updated_at": now,
		}}

		var event model.OutboxEvent
		err := r.coll.FindOneAndUpdate(ctx, claimableFilter(now), update, opts).Decode(&event)
		if errors.Is(err, mongo.ErrNoDocuments) {
			break
		}
		if err != nil {
			return events, fmt.Errorf("failed to claim outbox event: %w", err)
		}
		events = append(events, &event)
	}
	return events, nil
}

func (r *outboxRepository) MarkProcessed(ctx context.Context, id string) error {
	now := time.Now()
	update := bson.M{"$set": bson.M{
		"status":       model.OutboxStatusProcessed,
		"processed_at": now,
		"updated_at":   now,
	}}

	if _, err := r.coll.UpdateByID(ctx, id, update); err != nil {
		return fmt.Errorf("failed to mark outbox event processed: %w", err)
	}
	return nil
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id string, errMsg string) error {
	update := bson.M{
		"$set": bson.M{
			"status":        model.OutboxStatusFailed,
			"error_message": errMsg,
			"updated_at":    time.Now(),
		},
		"$inc": bson.M{"retry_count": 1},
	}

	if _, err := r.coll.UpdateByID(ctx, id, update); err != nil {
		return fmt.Errorf("failed to mark outbox event failed: %w", err)
	}
	return nil
}
