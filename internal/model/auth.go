package model

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Auth errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type RegisterRequest struct {
	Email       string      `json:"email" binding:"required,email"`
	Password    string      `json:"password" binding:"required,min=8"`
	FirstName   string      `json:"first_name" binding:"required"`
	LastName    string      `json:"last_name" binding:"required"`
	AccountType AccountType `json:"account_type" binding:"required,oneof=Doctor Triage Evac"`
	Specialties []Specialty `json:"doctor_specialty"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// TokenClaims is the session payload: everything the domain layer needs to
// build a Caller without touching the user store again.
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID      string      `json:"user_id"`
	Email       string      `json:"email"`
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	AccountType AccountType `json:"account_type"`
	Admin       bool        `json:"admin"`
	Specialties []Specialty `json:"doctor_specialty,omitempty"`
}

// Caller converts the claims into the explicit caller identity.
func (c *TokenClaims) Caller() Caller {
	return Caller{
		UserID:      c.UserID,
		AccountType: c.AccountType,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		Admin:       c.Admin,
		Specialties: c.Specialties,
	}
}
