package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/menahealth/medflow-api/internal/model"
	"github.com/menahealth/medflow-api/internal/repository"
)

type medOrderRepository struct {
	coll *mongo.Collection
}

func NewMedOrderRepository(db *mongo.Database) repository.MedOrderRepository {
	return &medOrderRepository{coll: db.Collection(collMedOrders)}
}

func (r *medOrderRepository) Create(ctx context.Context, order *model.MedOrder) error {
	if _, err := r.coll.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("failed to create med order: %w", err)
	}
	return nil
}

func (r *medOrderRepository) GetByIDs(ctx context.Context, ids []string) ([]*model.MedOrder, error) {
	if len(ids) == 0 {
		return []*model.MedOrder{}, nil
	}

	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch med orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := []*model.MedOrder{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode med orders: %w", err)
	}
	return orders, nil
}
