package sms

import (
	"context"
	"fmt"
)

// Fixed message template; only the code varies. The wording is part of the
// gateway contract and must not be reworded.
const messageTemplate = "Use OTP %s, to Login on Marriagepaper.com, We shall advertise your profile till you find matching profile"

// OTPMessage renders the delivery message for a generated code.
func OTPMessage(code string) string {
	return fmt.Sprintf(messageTemplate, code)
}

// SendResult is the outcome of one transport tier.
type SendResult struct {
	MessageID string
	Mock      bool
}

// Provider is a single transport tier. A Provider either delivers the message
// or returns a transport error; deciding what a failure means is the
// dispatcher's job.
type Provider interface {
	Name() string
	Send(ctx context.Context, to, message string) (*SendResult, error)
}
