package adaptor

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"matrimony-otp/internal/dto/request"
	"matrimony-otp/internal/dto/response"
	"matrimony-otp/internal/usecase"
	"matrimony-otp/pkg/utils"

	"go.uber.org/zap"
)

type OTPHandler struct {
	service usecase.OTPService
	log     *zap.Logger
}

func NewOTPHandler(service usecase.OTPService, log *zap.Logger) *OTPHandler {
	return &OTPHandler{
		service: service,
		log:     log,
	}
}

// Issue handles POST /api/otp/send
func (h *OTPHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req request.IssueOTPRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	resp, err := h.service.Issue(r.Context(), &req, requestMeta(r))
	if err != nil {
		h.handleServiceError(w, err, "issue OTP")
		return
	}

	message := "OTP sent successfully"
	if resp.Fallback {
		// Delivery could not be confirmed through a real transport; the
		// caller must show the code to the user directly.
		message = "OTP generated; delivery unconfirmed"
	}

	utils.ResponseSuccess(w, message, resp)
}

// Verify handles POST /api/otp/verify
func (h *OTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyOTPRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	resp, err := h.service.Verify(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "verify OTP")
		return
	}

	utils.ResponseSuccess(w, "OTP verified successfully", resp)
}

// Resend handles POST /api/otp/resend
func (h *OTPHandler) Resend(w http.ResponseWriter, r *http.Request) {
	var req request.ResendOTPRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	resp, err := h.service.Resend(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "resend OTP")
		return
	}

	message := "OTP resent successfully"
	if resp.Fallback {
		message = "OTP regenerated; delivery unconfirmed"
	}

	utils.ResponseSuccess(w, message, resp)
}

// handleServiceError maps the service error taxonomy onto HTTP responses.
// The invalid/expired class shares one user-facing message so a failed
// verification never reveals whether any OTP exists for the number.
func (h *OTPHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	retryAfter := 0
	var ra *usecase.RetryAfterError
	if errors.As(err, &ra) {
		retryAfter = ra.RetryAfter
	}

	switch {
	case errors.Is(err, usecase.ErrRateLimited):
		h.log.Warn(operation+" rate limited", zap.Error(err))
		utils.ResponseTooManyRequests(w, "Too many OTP requests. Please try again later.",
			response.ErrorCode{Code: "rate_limited", RetryAfter: retryAfter})

	case errors.Is(err, usecase.ErrTooSoon):
		h.log.Warn(operation+" requested too soon", zap.Error(err))
		utils.ResponseTooManyRequests(w, "Please wait before requesting another OTP.",
			response.ErrorCode{Code: "too_soon", RetryAfter: retryAfter})

	case errors.Is(err, usecase.ErrNoRecentOTP):
		h.log.Warn(operation+" failed - no recent OTP", zap.Error(err))
		utils.ResponseNotFound(w, "No recent OTP found for this number")

	case errors.Is(err, usecase.ErrNoValidOTP),
		errors.Is(err, usecase.ErrExpired),
		errors.Is(err, usecase.ErrInvalidCode):
		h.log.Warn(operation+" failed - invalid OTP", zap.Error(err))
		utils.ResponseBadRequest(w, "Invalid or expired OTP",
			response.ErrorCode{Code: errorCode(err)})

	case errors.Is(err, usecase.ErrMaxAttemptsExceeded):
		h.log.Warn(operation+" failed - attempts exhausted", zap.Error(err))
		utils.ResponseBadRequest(w, "Maximum verification attempts exceeded",
			response.ErrorCode{Code: "max_attempts_exceeded"})

	case errors.Is(err, usecase.ErrInvalidPurpose):
		h.log.Warn(operation+" failed - unknown purpose", zap.Error(err))
		utils.ResponseBadRequest(w, "Unknown OTP purpose", nil)

	default:
		h.log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, usecase.ErrNoValidOTP):
		return "no_valid_otp"
	case errors.Is(err, usecase.ErrExpired):
		return "expired"
	case errors.Is(err, usecase.ErrInvalidCode):
		return "invalid_code"
	}
	return "error"
}

func requestMeta(r *http.Request) usecase.RequestMeta {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ip = host
	}

	return usecase.RequestMeta{
		IPAddress: ip,
		UserAgent: r.UserAgent(),
		SessionID: r.Header.Get("X-Session-ID"),
	}
}
