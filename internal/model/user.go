package model

import (
	"time"
)

// User is a staff/doctor account. The lifecycle engine only reads
// AccountType and Specialties; everything else belongs to the auth/admin
// surface.
type User struct {
	ID           string      `bson:"_id" json:"_id"`
	Email        string      `bson:"email" json:"email"`
	PasswordHash string      `bson:"password_hash,omitempty" json:"-"`
	FirstName    string      `bson:"first_name" json:"first_name"`
	LastName     string      `bson:"last_name" json:"last_name"`
	Gender       string      `bson:"gender,omitempty" json:"gender,omitempty"`
	DOB          *time.Time  `bson:"dob,omitempty" json:"dob,omitempty"`
	AccountType  AccountType `bson:"account_type" json:"account_type"`
	Specialties  []Specialty `bson:"doctor_specialty,omitempty" json:"doctor_specialty,omitempty"`
	Countries    []string    `bson:"countries,omitempty" json:"countries,omitempty"`
	Languages    []string    `bson:"languages,omitempty" json:"languages,omitempty"`
	Approved     bool        `bson:"approved" json:"approved"`
	Admin        bool        `bson:"admin" json:"admin"`
	CreatedAt    time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `bson:"updated_at" json:"updated_at"`
}

// UserRef is the projection used for notification recipient lists.
type UserRef struct {
	Email     string `bson:"email" json:"email"`
	FirstName string `bson:"first_name" json:"first_name"`
	LastName  string `bson:"last_name" json:"last_name"`
}

// UpdateUserRequest carries optional profile updates. Specialty values are
// validated against the enumerated list; unknown entries are dropped.
type UpdateUserRequest struct {
	FirstName       *string      `json:"first_name"`
	LastName        *string      `json:"last_name"`
	Gender          *string      `json:"gender"`
	DOB             *time.Time   `json:"dob"`
	Countries       *[]string    `json:"countries"`
	Languages       *[]string    `json:"languages"`
	Specialties     *[]Specialty `json:"doctor_specialty"`
	RemoveSpecialty *Specialty   `json:"remove_specialty"`
	AccountType     *AccountType `json:"account_type"`
}
