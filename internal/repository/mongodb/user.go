package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/menahealth/medflow-api/internal/model"
	"github.com/menahealth/medflow-api/internal/repository"
	apperrors "github.com/menahealth/medflow-api/pkg/errors"
)

type userRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) repository.UserRepository {
	return &userRepository{coll: db.Collection(collUsers)}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Conflict("email already registered", err)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NotFound("user", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NotFound("user", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("user", nil)
	}
	return nil
}

// refProjection limits recipient queries to the notification fields.
var refProjection = bson.M{"email": 1, "first_name": 1, "last_name": 1}

func (r *userRepository) FindBySpecialty(ctx context.Context, specialty model.Specialty) ([]model.UserRef, error) {
	filter := bson.M{
		"account_type":     model.AccountTypeDoctor,
		"doctor_specialty": specialty,
	}
	return r.findRefs(ctx, filter)
}

func (r *userRepository) FindByAccountType(ctx context.Context, accountType model.AccountType) ([]model.UserRef, error) {
	return r.findRefs(ctx, bson.M{"account_type": accountType})
}

func (r *userRepository) findRefs(ctx context.Context, filter bson.M) ([]model.UserRef, error) {
	opts := options.Find().SetProjection(refProjection)
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer cursor.Close(ctx)

	refs := []model.UserRef{}
	if err := cursor.All(ctx, &refs); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return refs, nil
}
