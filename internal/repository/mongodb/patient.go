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

type patientRepository struct {
	coll *mongo.Collection
}

func NewPatientRepository(db *mongo.Database) repository.PatientRepository {
	return &patientRepository{coll: db.Collection(collPatients)}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = patient.CreatedAt

	if _, err := r.coll.InsertOne(ctx, patient); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Conflict("patient already exists", err)
		}
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Upsert(ctx context.Context, patient *model.Patient) error {
	now := time.Now()
	set := bson.M{"updated_at": now}
	if patient.FirstName != "" {
		set["first_name"] = patient.FirstName
	}
	if patient.LastName != "" {
		set["last_name"] = patient.LastName
	}
	if patient.Language != "" {
		set["language"] = patient.Language
	}
	if patient.Phone != "" {
		set["phone"] = patient.Phone
	}
	if patient.City != "" {
		set["city"] = patient.City
	}
	if patient.Country != "" {
		set["country"] = patient.Country
	}
	if patient.Gender != "" {
		set["gender"] = patient.Gender
	}
	if patient.DOB != nil {
		set["dob"] = patient.DOB
	}
	if patient.TelegramChatID != "" {
		set["telegram_chat_id"] = patient.TelegramChatID
	}

	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"status":     model.PatientStatusNotStarted,
			"priority":   model.PriorityNotSelected,
			"created_at": now,
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := r.coll.UpdateByID(ctx, patient.ID, update, opts); err != nil {
		return fmt.Errorf("failed to upsert patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id string) (*model.Patient, error) {
	var patient model.Patient
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&patient)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NotFound("patient", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	patient.UpdatedAt = time.Now()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": patient.ID}, patient)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("patient", nil)
	}
	return nil
}

func (r *patientRepository) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	if filters == nil {
		filters = &model.PatientFilters{}
	}

	filter := bson.M{}
	if !filters.IncludeArchived {
		filter["status"] = bson.M{"$ne": model.PatientStatusArchived}
	}
	if filters.Status != "" {
		filter["status"] = filters.Status
	}
	if filters.Specialty != "" {
		filter["specialty"] = filters.Specialty
	}
	if filters.Priority != "" {
		filter["priority"] = filters.Priority
	}
	if filters.DoctorEmail != "" {
		filter["doctor.email"] = filters.DoctorEmail
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	defer cursor.Close(ctx)

	var patients []*model.Patient
	if err := cursor.All(ctx, &patients); err != nil {
		return nil, fmt.Errorf("failed to decode patients: %w", err)
	}
	return patients, nil
}

func (r *patientRepository) ApplyStatus(ctx context.Context, id string, expected, target model.PatientStatus, doctor, triagedBy model.ActorRef) (*model.Patient, error) {
	filter := bson.M{"_id": id, "status": expected}
	update := bson.M{"$set": bson.M{
		"status":     target,
		"doctor":     doctor,
		"triaged_by": triagedBy,
		"updated_at": time.Now(),
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var patient model.Patient
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&patient)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Distinguish a missing patient from a stale expected status.
		if _, getErr := r.Get(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, apperrors.Conflict("patient status changed concurrently", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to apply status: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) SetStatus(ctx context.Context, id string, status model.PatientStatus) (*model.Patient, error) {
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var patient model.Patient
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&patient)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NotFound("patient", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to set status: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) SetSpecialty(ctx context.Context, id string, specialty model.Specialty, triagedBy model.ActorRef) (*model.Patient, error) {
	update := bson.M{"$set": bson.M{
		"specialty":  specialty,
		"triaged_by": triagedBy,
		"updated_at": time.Now(),
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var patient model.Patient
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&patient)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NotFound("patient", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to set specialty: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) AppendRxOrder(ctx context.Context, patientID string, order *model.RxOrder) error {
	update := bson.M{
		"$push": bson.M{"rx_orders": order},
		"$set":  bson.M{"updated_at": time.Now()},
	}

	res, err := r.coll.UpdateByID(ctx, patientID, update)
	if err != nil {
		return fmt.Errorf("failed to append rx order: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("patient", nil)
	}
	return nil
}

func (r *patientRepository) SetRxQrCode(ctx context.Context, patientID, rxOrderID, qrDataURL string) error {
	filter := bson.M{"_id": patientID, "rx_orders.rx_order_id": rxOrderID}
	update := bson.M{"$set": bson.M{
		"rx_orders.$.pharmacy_qr_code": qrDataURL,
		"updated_at":                   time.Now(),
	}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to set rx qr code: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("rx order", nil)
	}
	return nil
}

func (r *patientRepository) GetByRxToken(ctx context.Context, token string) (*model.Patient, *model.RxOrder, error) {
	var patient model.Patient
	err := r.coll.FindOne(ctx, bson.M{"rx_orders.rx_order_id": token}).Decode(&patient)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil, apperrors.NotFound("rx order", err)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up rx order: %w", err)
	}

	for i := range patient.RxOrders {
		if patient.RxOrders[i].RxOrderID == token {
			return &patient, &patient.RxOrders[i], nil
		}
	}
	return nil, nil, apperrors.NotFound("rx order", nil)
}

func (r *patientRepository) ReplaceRxOrder(ctx context.Context, token string, order *model.RxOrder) error {
	// Fulfillment matches the token exactly and never an already-validated
	// order, so a second submission with the same token is rejected here.
	filter := bson.M{"rx_orders": bson.M{"$elemMatch": bson.M{
		"rx_order_id": token,
		"validated":   false,
	}}}
	update := bson.M{"$set": bson.M{
		"rx_orders.$": order,
		"updated_at":  time.Now(),
	}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to replace rx order: %w", err)
	}
	if res.MatchedCount == 0 {
		if _, _, getErr := r.GetByRxToken(ctx, token); getErr != nil {
			return getErr
		}
		return apperrors.Conflict("rx order already fulfilled", nil)
	}
	return nil
}

func (r *patientRepository) AppendMedOrderID(ctx context.Context, patientID, medOrderID string) error {
	update := bson.M{
		"$push": bson.M{"med_orders": medOrderID},
		"$set":  bson.M{"updated_at": time.Now()},
	}

	res, err := r.coll.UpdateByID(ctx, patientID, update)
	if err != nil {
		return fmt.Errorf("failed to append med order id: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("patient", nil)
	}
	return nil
}
