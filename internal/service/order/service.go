// Package order issues MedOrders and RxOrders against a patient and
// handles pharmacy-side fulfillment of RxOrders.
package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/menahealth/medflow-api/internal/model"
	"github.com/menahealth/medflow-api/internal/repository"
	apperrors "github.com/menahealth/medflow-api/pkg/errors"
	"github.com/menahealth/medflow-api/pkg/logger"
	"github.com/menahealth/medflow-api/pkg/qr"
)

type Service struct {
	patients  repository.PatientRepository
	medOrders repository.MedOrderRepository
	qrGen     qr.Generator
	baseURL   string
	logger    *logger.Logger
}

func NewService(patients repository.PatientRepository, medOrders repository.MedOrderRepository, qrGen qr.Generator, baseURL string, logger *logger.Logger) *Service {
	return &Service{
		patients:  patients,
		medOrders: medOrders,
		qrGen:     qrGen,
		baseURL:   strings.TrimRight(baseURL, "/"),
		logger:    logger,
	}
}

// CreateMedOrder validates the payload, snapshots the patient contact
// fields onto the order, persists it and appends its id to the patient.
// Nothing is written when validation fails.
func (s *Service) CreateMedOrder(ctx context.Context, patientID string, req *model.CreateMedOrderRequest) (*model.MedOrder, error) {
	if err := validateMedications(req.Medications); err != nil {
		return nil, err
	}

	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}

	orderDate := time.Now()
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}

	medications := make([]model.Medication, len(req.Medications))
	for i, med := range req.Medications {
		med.ID = uuid.NewString()
		medications[i] = med
	}

	order := &model.MedOrder{
		ID:              uuid.NewString(),
		DoctorSpecialty: req.DoctorSpecialty,
		PrescribingDr:   req.PrescribingDr,
		DrEmail:         req.DrEmail,
		DrID:            req.DrID,
		PatientID:       patient.ID,
		PatientName:     strings.TrimSpace(patient.FirstName + " " + patient.LastName),
		PatientPhone:    patient.Phone,
		PatientCity:     patient.City,
		PatientCountry:  patient.Country,
		OrderDate:       orderDate,
		Medications:     medications,
	}

	if err := s.medOrders.Create(ctx, order); err != nil {
		return nil, err
	}

	if err := s.patients.AppendMedOrderID(ctx, patientID, order.ID); err != nil {
		return nil, fmt.Errorf("med order %s created but not linked to patient: %w", order.ID, err)
	}

	s.logger.Info("med order created", "order_id", order.ID, "patient_id", patientID)
	return order, nil
}

// ListMedOrders resolves the patient's order-id list and fetches the
// referenced documents. Malformed ids are skipped, not fatal; a patient
// without orders yields an empty slice.
func (s *Service) ListMedOrders(ctx context.Context, patientID string) ([]*model.MedOrder, error) {
	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}

	validIDs := make([]string, 0, len(patient.MedOrderIDs))
	for _, id := range patient.MedOrderIDs {
		if _, err := uuid.Parse(id); err != nil {
			s.logger.Warn("skipping malformed med order id", "patient_id", patientID, "order_id", id)
			continue
		}
		validIDs = append(validIDs, id)
	}

	return s.medOrders.GetByIDs(ctx, validIDs)
}

// CreateRxOrder embeds a new prescription referral on the patient. A fresh
// token builds both shareable URLs; the pharmacy URL is rendered as a QR
// image and re-embedded on the stored order.
func (s *Service) CreateRxOrder(ctx context.Context, patientID string, req *model.CreateRxOrderRequest) (*model.RxOrder, error) {
	if len(req.Prescriptions) == 0 {
		return nil, apperrors.BadRequest("at least one prescription is required", nil)
	}
	for i, p := range req.Prescriptions {
		if p.Diagnosis == "" || p.Medication == "" || p.Dosage == "" || p.Frequency == "" {
			return nil, apperrors.BadRequest(fmt.Sprintf("prescription %d is incomplete", i+1), nil)
		}
	}

	if _, err := s.patients.Get(ctx, patientID); err != nil {
		return nil, err
	}

	token := uuid.NewString()
	order := &model.RxOrder{
		RxOrderID:       token,
		DoctorSpecialty: req.DoctorSpecialty,
		PrescribingDr:   req.PrescribingDr,
		DrEmail:         req.DrEmail,
		DrID:            req.DrID,
		PrescribedDate:  time.Now(),
		ValidTill:       req.ValidTill,
		City:            req.City,
		Prescriptions:   req.Prescriptions,
		PatientRxURL:    fmt.Sprintf("%s/rx-order/patient/%s", s.baseURL, token),
		PharmacyQrURL:   fmt.Sprintf("%s/rx-order/pharmacy/%s", s.baseURL, token),
	}

	if err := s.patients.AppendRxOrder(ctx, patientID, order); err != nil {
		return nil, err
	}

	qrCode, err := s.qrGen.DataURL(order.PharmacyQrURL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate pharmacy QR code: %w", err)
	}
	order.PharmacyQrCode = qrCode

	if err := s.patients.SetRxQrCode(ctx, patientID, token, qrCode); err != nil {
		return nil, err
	}

	s.logger.Info("rx order created", "rx_order_id", token, "patient_id", patientID)
	return order, nil
}

// GetRxOrderByToken is the pharmacy-side fetch. Fulfilled orders are
// returned with their validated flag set; the caller decides how to
// present them.
func (s *Service) GetRxOrderByToken(ctx context.Context, token string) (*model.RxOrder, error) {
	_, order, err := s.patients.GetByRxToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ListRxOrders returns the patient's embedded prescription referrals.
func (s *Service) ListRxOrders(ctx context.Context, patientID string) ([]model.RxOrder, error) {
	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return patient.RxOrders, nil
}

// FulfillRxOrder records pharmacy fulfillment against the order matching
// token. The match is exact on the token; an already-fulfilled order is a
// Conflict. Only the matching embedded element changes.
func (s *Service) FulfillRxOrder(ctx context.Context, token string, req *model.FulfillRxOrderRequest) (*model.RxOrder, error) {
	_, existing, err := s.patients.GetByRxToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if existing.Validated {
		return nil, apperrors.Conflict("rx order already fulfilled", nil)
	}
	if time.Now().After(existing.ValidTill) {
		return nil, apperrors.Conflict("rx order has expired", nil)
	}

	updated := *existing
	updated.Validated = true
	updated.PharmacyName = req.PharmacyName
	updated.PharmacistID = req.PharmacistID
	updated.Notes = req.Notes
	filled := time.Now()
	if req.FilledDate != nil {
		filled = *req.FilledDate
	}
	updated.FilledDate = &filled
	if len(req.Prescriptions) > 0 {
		updated.Prescriptions = req.Prescriptions
	}

	if err := s.patients.ReplaceRxOrder(ctx, token, &updated); err != nil {
		return nil, err
	}

	s.logger.Info("rx order fulfilled",
		"rx_order_id", token,
		"pharmacy", req.PharmacyName,
	)
	return &updated, nil
}

func validateMedications(medications []model.Medication) error {
	if len(medications) == 0 {
		return apperrors.BadRequest("at least one medication is required", nil)
	}
	for i, med := range medications {
		if med.Diagnosis == "" || med.Medication == "" || med.Dosage == "" ||
			med.Frequency == "" || med.Quantity == "" {
			return apperrors.BadRequest(fmt.Sprintf("medication %d is incomplete", i+1), nil)
		}
	}
	return nil
}
