package entity

import (
	"time"

	"github.com/google/uuid"
)

type OTPPurpose string

const (
	PurposeRegistration      OTPPurpose = "registration"
	PurposeLogin             OTPPurpose = "login"
	PurposePasswordReset     OTPPurpose = "password_reset"
	PurposePhoneVerification OTPPurpose = "phone_verification"
	PurposeEmailVerification OTPPurpose = "email_verification"
	PurposeProfileUpdate     OTPPurpose = "profile_update"
)

// ParseOTPPurpose rejects unknown purpose strings at the boundary.
func ParseOTPPurpose(s string) (OTPPurpose, bool) {
	switch OTPPurpose(s) {
	case PurposeRegistration, PurposeLogin, PurposePasswordReset,
		PurposePhoneVerification, PurposeEmailVerification, PurposeProfileUpdate:
		return OTPPurpose(s), true
	}
	return "", false
}

type DeliveryMethod string

const (
	DeliverySMS       DeliveryMethod = "sms"
	DeliveryEmail     DeliveryMethod = "email"
	DeliveryWhatsApp  DeliveryMethod = "whatsapp"
	DeliveryVoiceCall DeliveryMethod = "voice_call"
)

// ParseDeliveryMethod maps the empty string to the SMS default.
func ParseDeliveryMethod(s string) (DeliveryMethod, bool) {
	if s == "" {
		return DeliverySMS, true
	}
	switch DeliveryMethod(s) {
	case DeliverySMS, DeliveryEmail, DeliveryWhatsApp, DeliveryVoiceCall:
		return DeliveryMethod(s), true
	}
	return "", false
}

type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliverySent      DeliveryStatus = "sent"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryFailed    DeliveryStatus = "failed"
	DeliveryBlocked   DeliveryStatus = "blocked"
)

// OTP is one issuance of a one-time code.
type OTP struct {
	BaseSimple
	UserID        *uuid.UUID `db:"user_id"`
	PhoneNumber   string     `db:"phone_number"`
	Email         string     `db:"email"`
	Code          string     `db:"code"`
	Purpose       OTPPurpose `db:"purpose"`
	Used          bool       `db:"used"`
	Expired       bool       `db:"expired"`
	AttemptsCount int        `db:"attempts_count"`
	MaxAttempts   int        `db:"max_attempts"`
	ExpiresAt     time.Time  `db:"expires_at"`
	UsedAt        *time.Time `db:"used_at"`
	LastAttemptAt *time.Time `db:"last_attempt_at"`

	DeliveryMethod    DeliveryMethod `db:"delivery_method"`
	DeliveryStatus    DeliveryStatus `db:"delivery_status"`
	DeliveryProvider  string         `db:"delivery_provider"`
	DeliveryMessageID string         `db:"delivery_message_id"`
	DeliveryError     string         `db:"delivery_error"`

	RateLimitKey string `db:"rate_limit_key"`

	// Request metadata, carried for auditing only.
	IPAddress string `db:"ip_address"`
	UserAgent string `db:"user_agent"`
	SessionID string `db:"session_id"`
}

// RateLimitKeyFor scopes the issuance window to one phone number and purpose.
func RateLimitKeyFor(phoneNumber string, purpose OTPPurpose) string {
	return phoneNumber + "_" + string(purpose)
}

// IsExpired computes expiry from expires_at; the stored Expired flag is only
// an audit trail written when expiry is observed.
func (o *OTP) IsExpired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

// IsVerifiable reports whether a verification attempt may still be registered
// against this record. It checks the stored flags only; time expiry is
// evaluated separately when the record is touched, so a stale record still
// surfaces once to be reported as expired. The tipping attempt
// (attempts_count == max_attempts) is admitted so it reports attempt
// exhaustion instead of silently disappearing from lookups.
func (o *OTP) IsVerifiable() bool {
	return !o.Used && !o.Expired && o.AttemptsCount <= o.MaxAttempts
}
