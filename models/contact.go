package models

import "time"

// ContactSubmission is a record from the general contact form. Immutable after
// creation.
type ContactSubmission struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"not null;index" json:"email"`
	VocalType string    `json:"vocalType"`
	Message   string    `gorm:"type:text" json:"message"`
	Source    string    `json:"source"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (ContactSubmission) TableName() string {
	return "contact_submissions"
}

// ContactMessage is the legacy parallel table used by an older form variant.
// It exists only in the local database; the routing repository pins all
// ContactMessage operations to the local backend.
type ContactMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"not null;index" json:"email"`
	Message   string    `gorm:"type:text" json:"message"`
	Source    string    `json:"source"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (ContactMessage) TableName() string {
	return "contact_messages"
}
