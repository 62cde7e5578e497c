package models

import "time"

// EmailSignup is a lead captured by the marketing popup. The popup also writes
// these rows directly through the remote store's REST layer, so the column
// set here must stay in sync with that payload.
type EmailSignup struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"not null;index" json:"email"`
	Source    string    `json:"source"`
	Variant   string    `json:"variant"`
	PagePath  string    `json:"pagePath"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (EmailSignup) TableName() string {
	return "email_signups"
}
