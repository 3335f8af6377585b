package model

import (
	"time"
)

// PatientStatus is the workflow state of a case.
type PatientStatus string

const (
	PatientStatusNotStarted PatientStatus = "Not Started"
	PatientStatusTriaged    PatientStatus = "Triaged"
	PatientStatusInProgress PatientStatus = "In-Progress"
	PatientStatusCompleted  PatientStatus = "Completed"
	PatientStatusArchived   PatientStatus = "Archived"
)

// ValidStatus reports whether s is a known workflow state.
func ValidStatus(s PatientStatus) bool {
	switch s {
	case PatientStatusNotStarted, PatientStatusTriaged, PatientStatusInProgress,
		PatientStatusCompleted, PatientStatusArchived:
		return true
	}
	return false
}

// PatientPriority is the triage priority of a case.
type PatientPriority string

const (
	PriorityNotSelected PatientPriority = "Not Selected"
	PriorityRoutine     PatientPriority = "Routine"
	PriorityModerate    PatientPriority = "Moderate"
	PriorityUrgent      PatientPriority = "Urgent"
	PriorityEmergency   PatientPriority = "Emergency"
)

func ValidPriority(p PatientPriority) bool {
	switch p {
	case PriorityNotSelected, PriorityRoutine, PriorityModerate, PriorityUrgent, PriorityEmergency:
		return true
	}
	return false
}

// Specialty is an enumerated medical domain used to route patients to doctors.
type Specialty string

const (
	SpecialtyCardiology        Specialty = "Cardiology"
	SpecialtyDermatology       Specialty = "Dermatology"
	SpecialtyEndocrinology     Specialty = "Endocrinology"
	SpecialtyGastroenterology  Specialty = "Gastroenterology"
	SpecialtyInternalMedicine  Specialty = "Internal Medicine"
	SpecialtyNephrology        Specialty = "Nephrology"
	SpecialtyNeurology         Specialty = "Neurology"
	SpecialtyObGyn             Specialty = "OB/GYN"
	SpecialtyOncology          Specialty = "Oncology"
	SpecialtyOphthalmology     Specialty = "Ophthalmology"
	SpecialtyOrthopedics       Specialty = "Orthopedics"
	SpecialtyOtolaryngology    Specialty = "Otolaryngology (ENT)"
	SpecialtyPediatrics        Specialty = "Pediatrics"
	SpecialtyPsychiatry        Specialty = "Psychiatry"
	SpecialtyPulmonology       Specialty = "Pulmonology"
	SpecialtyUrology           Specialty = "Urology"
	SpecialtyWoundCare         Specialty = "Wound Care"
	SpecialtyGazaMedEvacuation Specialty = "Gaza Med Evacuations"
)

// Specialties lists every routable specialty, evacuation included.
var Specialties = []Specialty{
	SpecialtyCardiology,
	SpecialtyDermatology,
	SpecialtyEndocrinology,
	SpecialtyGastroenterology,
	SpecialtyInternalMedicine,
	SpecialtyNephrology,
	SpecialtyNeurology,
	SpecialtyObGyn,
	SpecialtyOncology,
	SpecialtyOphthalmology,
	SpecialtyOrthopedics,
	SpecialtyOtolaryngology,
	SpecialtyPediatrics,
	SpecialtyPsychiatry,
	SpecialtyPulmonology,
	SpecialtyUrology,
	SpecialtyWoundCare,
	SpecialtyGazaMedEvacuation,
}

func ValidSpecialty(s Specialty) bool {
	for _, known := range Specialties {
		if s == known {
			return true
		}
	}
	return false
}

// SupportedLanguages is the intake language whitelist; anything else falls
// back to English.
var SupportedLanguages = []string{"English", "Arabic", "Farsi", "Pashto"}

func NormalizeLanguage(lang string) string {
	for _, l := range SupportedLanguages {
		if l == lang {
			return l
		}
	}
	return "English"
}

// Patient is the central case document. The _id may be externally supplied
// by the chat-bot platform, so it is an opaque string rather than a
// generated ObjectID.
type Patient struct {
	ID             string          `bson:"_id" json:"_id"`
	FirstName      string          `bson:"first_name,omitempty" json:"first_name,omitempty"`
	LastName       string          `bson:"last_name,omitempty" json:"last_name,omitempty"`
	DOB            *time.Time      `bson:"dob,omitempty" json:"dob,omitempty"`
	Gender         string          `bson:"gender,omitempty" json:"gender,omitempty"`
	Language       string          `bson:"language,omitempty" json:"language,omitempty"`
	Phone          string          `bson:"phone,omitempty" json:"phone,omitempty"`
	City           string          `bson:"city,omitempty" json:"city,omitempty"`
	Country        string          `bson:"country,omitempty" json:"country,omitempty"`
	TelegramChatID string          `bson:"telegram_chat_id,omitempty" json:"telegram_chat_id,omitempty"`
	Status         PatientStatus   `bson:"status" json:"status"`
	Priority       PatientPriority `bson:"priority" json:"priority"`
	Specialty      Specialty       `bson:"specialty,omitempty" json:"specialty,omitempty"`
	TriagedBy      ActorRef        `bson:"triaged_by,omitempty" json:"triaged_by,omitempty"`
	Doctor         ActorRef        `bson:"doctor,omitempty" json:"doctor,omitempty"`
	RxOrders       []RxOrder       `bson:"rx_orders,omitempty" json:"rx_orders,omitempty"`
	MedOrderIDs    []string        `bson:"med_orders,omitempty" json:"med_orders,omitempty"`
	CreatedAt      time.Time       `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `bson:"updated_at" json:"updated_at"`
}

// CreatePatientRequest is the staff-entry form payload.
type CreatePatientRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	DOB       string `json:"dob"`
	Gender    string `json:"gender"`
	Language  string `json:"language"`
	Phone     string `json:"phone"`
	City      string `json:"city"`
	Country   string `json:"country"`
}

// UpdatePatientRequest carries optional demographic updates.
type UpdatePatientRequest struct {
	FirstName *string          `json:"first_name"`
	LastName  *string          `json:"last_name"`
	DOB       *time.Time       `json:"dob"`
	Gender    *string          `json:"gender"`
	Language  *string          `json:"language"`
	Phone     *string          `json:"phone"`
	City      *string          `json:"city"`
	Country   *string          `json:"country"`
	Priority  *PatientPriority `json:"priority"`
}

// PatientFilters narrows dashboard list queries. Archived cases are
// excluded unless IncludeArchived is set.
type PatientFilters struct {
	Status          PatientStatus   `form:"status"`
	Specialty       Specialty       `form:"specialty"`
	Priority        PatientPriority `form:"priority"`
	DoctorEmail     string          `form:"doctor_email"`
	IncludeArchived bool            `form:"archived"`
}
