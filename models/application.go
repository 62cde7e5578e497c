package models

import "time"

// Payment sub-state values for Application.PaymentStatus.
const (
	PaymentStatusUnpaid  = "unpaid"
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// Application is one submission of the workshop intake form. Created once by
// the intake endpoint; afterwards only the payment fields are ever mutated.
type Application struct {
	ID                  uint   `gorm:"primaryKey" json:"id"`
	FirstName           string `gorm:"not null" json:"firstName"`
	LastName            string `gorm:"not null" json:"lastName"`
	Email               string `gorm:"not null;index" json:"email"`
	Phone               string `gorm:"not null" json:"phone"`
	DateOfBirth         string `json:"dateOfBirth"`
	Nationality         string `json:"nationality"`
	City                string `json:"city"`
	Country             string `json:"country"`
	VocalRange          string `gorm:"not null" json:"vocalRange"`
	YearsSinging        string `json:"yearsSinging"`
	MusicalBackground   string `gorm:"type:text" json:"musicalBackground"`
	ReasonForApplying   string `gorm:"type:text" json:"reasonForApplying"`
	HeardAboutUs        string `json:"heardAboutUs"`
	DietaryRestriction  string `json:"dietaryRestriction"`
	DietaryDetail       string `json:"dietaryDetail"`
	ScholarshipInterest bool   `json:"scholarshipInterest"`
	TermsAgreed         bool   `gorm:"not null" json:"termsAgreed"`

	// File paths are nil when the applicant uploaded nothing for the slot,
	// never an empty string.
	AudioFile1Path         *string `json:"audioFile1Path"`
	AudioFile2Path         *string `json:"audioFile2Path"`
	CVFilePath             *string `json:"cvFilePath"`
	RecommendationFilePath *string `json:"recommendationFilePath"`

	PaymentStatus    string     `gorm:"default:'unpaid'" json:"paymentStatus"`
	PaymentSessionID string     `json:"paymentSessionId"`
	PaidAt           *time.Time `json:"paidAt"`

	Source    string    `json:"source"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (Application) TableName() string {
	return "applications"
}
