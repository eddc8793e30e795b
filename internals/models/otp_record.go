package models

import "time"

type OTPPurpose string

const (
	PurposeSignupVerification OTPPurpose = "signup_verification"
	PurposeLoginOTP           OTPPurpose = "login_otp"
	PurposeAdminLogin         OTPPurpose = "admin_login"
	PurposePasswordReset      OTPPurpose = "password_reset"
)

func (p OTPPurpose) Valid() bool {
	switch p {
	case PurposeSignupVerification, PurposeLoginOTP, PurposeAdminLogin, PurposePasswordReset:
		return true
	}
	return false
}

// OTPRecord is the single live code for an identifier. A new request
// replaces the previous row instead of adding another one.
type OTPRecord struct {
	Identifier string     `gorm:"column:identifier;primaryKey;type:varchar(320)" json:"identifier"`
	Code       string     `gorm:"column:code;type:varchar(12);not null" json:"code"`
	Purpose    OTPPurpose `gorm:"column:purpose;type:varchar(32);not null" json:"purpose"`
	// Attempts counts wrong submissions against Code
	Attempts  int       `gorm:"column:attempts;not null;default:0" json:"attempts"`
	ExpiresAt time.Time `gorm:"column:expires_at;index" json:"expires_at"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (OTPRecord) TableName() string {
	return "otp_verifications"
}

func (r *OTPRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
