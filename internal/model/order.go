package model

import (
	"time"
)

// Prescription is one line of an RxOrder.
type Prescription struct {
	Diagnosis  string `bson:"diagnosis" json:"diagnosis" binding:"required"`
	Medication string `bson:"medication" json:"medication" binding:"required"`
	Dosage     string `bson:"dosage" json:"dosage" binding:"required"`
	Frequency  string `bson:"frequency" json:"frequency" binding:"required"`
}

// RxOrder is a prescription referral embedded on the patient document.
// The token in RxOrderID builds both shareable URLs and is the only key
// pharmacy fulfillment matches on.
type RxOrder struct {
	RxOrderID       string         `bson:"rx_order_id" json:"rx_order_id"`
	DoctorSpecialty Specialty      `bson:"doctor_specialty" json:"doctor_specialty"`
	PrescribingDr   string         `bson:"prescribing_dr" json:"prescribing_dr"`
	DrEmail         string         `bson:"dr_email" json:"dr_email"`
	DrID            string         `bson:"dr_id" json:"dr_id"`
	PrescribedDate  time.Time      `bson:"prescribed_date" json:"prescribed_date"`
	ValidTill       time.Time      `bson:"valid_till" json:"valid_till"`
	City            string         `bson:"city,omitempty" json:"city,omitempty"`
	Validated       bool           `bson:"validated" json:"validated"`
	Prescriptions   []Prescription `bson:"prescriptions" json:"prescriptions"`
	PatientRxURL    string         `bson:"patient_rx_url" json:"patient_rx_url"`
	PharmacyQrURL   string         `bson:"pharmacy_qr_url" json:"pharmacy_qr_url"`
	PharmacyQrCode  string         `bson:"pharmacy_qr_code,omitempty" json:"pharmacy_qr_code,omitempty"`

	// Pharmacist-entered fulfillment details, written when Validated flips.
	PharmacyName string     `bson:"pharmacy_name,omitempty" json:"pharmacy_name,omitempty"`
	PharmacistID string     `bson:"pharmacist_id,omitempty" json:"pharmacist_id,omitempty"`
	FilledDate   *time.Time `bson:"filled_date,omitempty" json:"filled_date,omitempty"`
	Notes        string     `bson:"notes,omitempty" json:"notes,omitempty"`
}

// CreateRxOrderRequest is the doctor-facing creation payload.
type CreateRxOrderRequest struct {
	DoctorSpecialty Specialty      `json:"doctor_specialty" binding:"required,specialty"`
	PrescribingDr   string         `json:"prescribing_dr"`
	DrEmail         string         `json:"dr_email"`
	DrID            string         `json:"dr_id"`
	ValidTill       time.Time      `json:"valid_till" binding:"required"`
	City            string         `json:"city"`
	Prescriptions   []Prescription `json:"prescriptions" binding:"required,min=1,dive"`
}

// FulfillRxOrderRequest is the pharmacist-entered fulfillment payload.
type FulfillRxOrderRequest struct {
	PharmacyName  string         `json:"pharmacy_name" binding:"required"`
	PharmacistID  string         `json:"pharmacist_id"`
	FilledDate    *time.Time     `json:"filled_date"`
	Prescriptions []Prescription `json:"prescriptions"`
	Notes         string         `json:"notes"`
}

// Medication is one line of a MedOrder; every field is operator-entered
// free text, all required.
type Medication struct {
	ID         string `bson:"_id" json:"_id"`
	Diagnosis  string `bson:"diagnosis" json:"diagnosis" binding:"required"`
	Medication string `bson:"medication" json:"medication" binding:"required"`
	Dosage     string `bson:"dosage" json:"dosage" binding:"required"`
	Frequency  string `bson:"frequency" json:"frequency" binding:"required"`
	Quantity   string `bson:"quantity" json:"quantity" binding:"required"`
}

// MedOrder is a medication request stored in its own collection and
// referenced from the patient. Patient contact fields are denormalized at
// creation time so the order reflects the patient as issued.
type MedOrder struct {
	ID              string       `bson:"_id" json:"_id"`
	DoctorSpecialty Specialty    `bson:"doctor_specialty" json:"doctor_specialty"`
	PrescribingDr   string       `bson:"prescribing_dr" json:"prescribing_dr"`
	DrEmail         string       `bson:"dr_email" json:"dr_email"`
	DrID            string       `bson:"dr_id" json:"dr_id"`
	PatientID       string       `bson:"patient_id" json:"patient_id"`
	PatientName     string       `bson:"patient_name" json:"patient_name"`
	PatientPhone    string       `bson:"patient_phone" json:"patient_phone"`
	PatientCity     string       `bson:"patient_city" json:"patient_city"`
	PatientCountry  string       `bson:"patient_country" json:"patient_country"`
	OrderDate       time.Time    `bson:"order_date" json:"order_date"`
	Validated       bool         `bson:"validated" json:"validated"`
	Medications     []Medication `bson:"medications" json:"medications"`
}

// CreateMedOrderRequest is the doctor-facing creation payload. The
// medication line items must be complete; partial lines are rejected
// before anything is persisted.
type CreateMedOrderRequest struct {
	DoctorSpecialty Specialty    `json:"doctor_specialty" binding:"required,specialty"`
	PrescribingDr   string       `json:"prescribing_dr" binding:"required"`
	DrEmail         string       `json:"dr_email" binding:"required,email"`
	DrID            string       `json:"dr_id" binding:"required"`
	OrderDate       *time.Time   `json:"order_date"`
	Medications     []Medication `json:"medications" binding:"required,min=1,dive"`
}
