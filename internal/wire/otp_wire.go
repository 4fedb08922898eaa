package wire

import (
	"matrimony-otp/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireOTP(r chi.Router, otpHandler *adaptor.OTPHandler) {
	// Callers are the registration/login/verification/reset flows of the
	// main application; no session auth on these routes.
	r.Post("/api/otp/send", otpHandler.Issue)
	r.Post("/api/otp/verify", otpHandler.Verify)
	r.Post("/api/otp/resend", otpHandler.Resend)
}
