package model

import "time"

// TelegramThread links a chat-bot conversation to the patient it produced.
type TelegramThread struct {
	ID        string    `bson:"_id" json:"_id"`
	ChatID    string    `bson:"chat_id" json:"chat_id"`
	PatientID string    `bson:"patient_id,omitempty" json:"patient_id,omitempty"`
	Language  string    `bson:"language,omitempty" json:"language,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// TelegramIntakeRequest is the webhook payload delivered by the chat-bot
// platform. PatientID is issued externally and used as the document key.
type TelegramIntakeRequest struct {
	PatientID      string `json:"patient_id" binding:"required"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Language       string `json:"language"`
	Phone          string `json:"phone"`
	City           string `json:"city"`
	Country        string `json:"country"`
	Gender         string `json:"gender"`
	DOB            string `json:"dob"`
	TelegramChatID string `json:"telegram_chat_id"`
}
