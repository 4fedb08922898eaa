package usecase

import "errors"

// Caller-visible failure taxonomy. Transport failures never appear here; the
// dispatcher absorbs them into fallback delivery.
var (
	ErrRateLimited         = errors.New("too many OTP requests")
	ErrNoValidOTP          = errors.New("no valid OTP found")
	ErrExpired             = errors.New("OTP expired")
	ErrMaxAttemptsExceeded = errors.New("maximum verification attempts exceeded")
	ErrInvalidCode         = errors.New("invalid OTP code")
	ErrNoRecentOTP         = errors.New("no recent OTP to resend")
	ErrTooSoon             = errors.New("please wait before requesting another OTP")
	ErrInvalidPurpose      = errors.New("unknown OTP purpose")
)

// RetryAfterError decorates a taxonomy error with the caller-visible
// retry-after hint in seconds.
type RetryAfterError struct {
	Err        error
	RetryAfter int
}

func (e *RetryAfterError) Error() string {
	return e.Err.Error()
}

func (e *RetryAfterError) Unwrap() error {
	return e.Err
}
