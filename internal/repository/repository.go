// Package repository defines the persistence interfaces consumed by the
// service layer. The mongodb subpackage provides the document-store
// implementation.
package repository

import (
	"context"

	"github.com/menahealth/medflow-api/internal/model"
)

type PatientRepository interface {
	Create(ctx context.Context, patient *model.Patient) error
	// Upsert writes intake fields keyed by an externally issued ID,
	// creating the document when absent.
	Upsert(ctx context.Context, patient *model.Patient) error
	Get(ctx context.Context, id string) (*model.Patient, error)
	Update(ctx context.Context, patient *model.Patient) error
	List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)

	// ApplyStatus performs a compare-and-set transition: the write only
	// lands if the stored status still equals expected. A stale expected
	// status yields a Conflict error, a missing patient a NotFound.
	ApplyStatus(ctx context.Context, id string, expected, target model.PatientStatus, doctor, triagedBy model.ActorRef) (*model.Patient, error)
	// SetStatus overwrites the status unconditionally (archive path).
	SetStatus(ctx context.Context, id string, status model.PatientStatus) (*model.Patient, error)
	SetSpecialty(ctx context.Context, id string, specialty model.Specialty, triagedBy model.ActorRef) (*model.Patient, error)

	AppendRxOrder(ctx context.Context, patientID string, order *model.RxOrder) error
	SetRxQrCode(ctx context.Context, patientID, rxOrderID, qrDataURL string) error
	// GetByRxToken resolves the patient holding the embedded order whose
	// rx_order_id equals token exactly.
	GetByRxToken(ctx context.Context, token string) (*model.Patient, *model.RxOrder, error)
	// ReplaceRxOrder overwrites the single embedded order matching token.
	// Orders already marked validated are not matched.
	ReplaceRxOrder(ctx context.Context, token string, order *model.RxOrder) error

	AppendMedOrderID(ctx context.Context, patientID, medOrderID string) error
}

type MedOrderRepository interface {
	Create(ctx context.Context, order *model.MedOrder) error
	GetByIDs(ctx context.Context, ids []string) ([]*model.MedOrder, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	// FindBySpecialty matches users whose specialty list contains the value.
	FindBySpecialty(ctx context.Context, specialty model.Specialty) ([]model.UserRef, error)
	FindByAccountType(ctx context.Context, accountType model.AccountType) ([]model.UserRef, error)
}

type TelegramRepository interface {
	// LinkPatient binds the chat thread to a patient, creating the thread
	// when it does not exist yet.
	LinkPatient(ctx context.Context, chatID, patientID, language string) error
	GetByChatID(ctx context.Context, chatID string) (*model.TelegramThread, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *model.OutboxEvent) error
	// ClaimPending atomically claims up to limit pending events so
	// concurrent workers never deliver the same event twice.
	ClaimPending(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	MarkProcessed(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
}
