package models

import "time"

// VerificationCode stores emailed one-time login/registration codes.
// At most one live code exists per email: issuing a new code deletes all
// prior rows for that address first.
type VerificationCode struct {
	BaseModel

	Email     string    `gorm:"index;not null" json:"email"`
	Code      string    `gorm:"not null" json:"-"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
}
