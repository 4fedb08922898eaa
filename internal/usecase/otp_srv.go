package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"matrimony-otp/internal/data/entity"
	"matrimony-otp/internal/data/repository"
	"matrimony-otp/internal/dto/request"
	"matrimony-otp/internal/dto/response"
	"matrimony-otp/internal/rate"
	"matrimony-otp/internal/sms"
	"matrimony-otp/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// rateLimitRetryAfter is the caller-visible hint when the issuance window is
// exhausted; the window recomputes on every check, so this is an approximation.
const rateLimitRetryAfter = 3600

// Dispatcher is the delivery side of issuance; internal/sms implements it.
type Dispatcher interface {
	Send(ctx context.Context, to, code string, method entity.DeliveryMethod) (*sms.DispatchResult, error)
}

// RequestMeta carries per-request audit fields onto the record.
type RequestMeta struct {
	IPAddress string
	UserAgent string
	SessionID string
}

type OTPService interface {
	Issue(ctx context.Context, req *request.IssueOTPRequest, meta RequestMeta) (*response.IssueOTPResponse, error)
	Verify(ctx context.Context, req *request.VerifyOTPRequest) (*response.VerifyOTPResponse, error)
	Resend(ctx context.Context, req *request.ResendOTPRequest) (*response.ResendOTPResponse, error)
	Cleanup(ctx context.Context) (int64, error)
}

type otpService struct {
	repo       repository.OTPRepository
	limiter    *rate.Limiter
	dispatcher Dispatcher
	config     *utils.Config
	log        *zap.Logger
}

func NewOTPService(
	repo repository.OTPRepository,
	limiter *rate.Limiter,
	dispatcher Dispatcher,
	config *utils.Config,
	log *zap.Logger,
) OTPService {
	return &otpService{
		repo:       repo,
		limiter:    limiter,
		dispatcher: dispatcher,
		config:     config,
		log:        log.With(zap.String("service", "otp")),
	}
}

func (s *otpService) expiry() time.Duration {
	return time.Duration(s.config.OTP.ExpiryMinutes) * time.Minute
}

func (s *otpService) Issue(ctx context.Context, req *request.IssueOTPRequest, meta RequestMeta) (*response.IssueOTPResponse, error) {
	purpose, ok := entity.ParseOTPPurpose(req.Purpose)
	if !ok {
		return nil, ErrInvalidPurpose
	}
	method, ok := entity.ParseDeliveryMethod(req.DeliveryMethod)
	if !ok {
		method = entity.DeliverySMS
	}

	// Registration is exempt so first-time signup is never blocked by earlier
	// anonymous probing.
	if purpose != entity.PurposeRegistration {
		quota, err := s.limiter.Check(ctx, entity.RateLimitKeyFor(req.PhoneNumber, purpose))
		if err != nil {
			s.log.Error("Rate limit check failed", zap.Error(err), zap.String("phone_number", req.PhoneNumber))
			return nil, fmt.Errorf("failed to check rate limit")
		}
		if quota.Remaining == 0 {
			s.log.Warn("OTP issuance rate limited",
				zap.String("phone_number", req.PhoneNumber),
				zap.String("purpose", string(purpose)),
				zap.Int("count", quota.Count),
			)
			return nil, &RetryAfterError{Err: ErrRateLimited, RetryAfter: rateLimitRetryAfter}
		}
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		s.log.Error("Failed to generate OTP code", zap.Error(err))
		return nil, fmt.Errorf("failed to generate OTP")
	}

	var userID *uuid.UUID
	if req.UserID != nil {
		if parsed, err := uuid.Parse(*req.UserID); err == nil {
			userID = &parsed
		}
	}

	now := time.Now()
	otp := &entity.OTP{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:         userID,
		PhoneNumber:    req.PhoneNumber,
		Email:          req.Email,
		Code:           code,
		Purpose:        purpose,
		AttemptsCount:  0,
		MaxAttempts:    s.config.OTP.MaxAttempts,
		ExpiresAt:      now.Add(s.expiry()),
		DeliveryMethod: method,
		DeliveryStatus: entity.DeliveryPending,
		RateLimitKey:   entity.RateLimitKeyFor(req.PhoneNumber, purpose),
		IPAddress:      meta.IPAddress,
		UserAgent:      meta.UserAgent,
		SessionID:      meta.SessionID,
	}

	// Persistence failure is the only hard failure of issuance; everything
	// past this point degrades to "usable code, broken notification".
	if err := s.repo.Create(ctx, otp); err != nil {
		return nil, fmt.Errorf("failed to create OTP record: %w", err)
	}

	fallback, fallbackOTP := s.deliver(ctx, otp.ID, req.PhoneNumber, code, method)

	s.log.Info("OTP issued",
		zap.String("otp_id", otp.ID.String()),
		zap.String("phone_number", req.PhoneNumber),
		zap.String("purpose", string(purpose)),
		zap.Bool("fallback", fallback),
	)

	return &response.IssueOTPResponse{
		Success:     true,
		Fallback:    fallback,
		FallbackOTP: fallbackOTP,
	}, nil
}

// deliver dispatches the code and records the delivery outcome. It never
// fails issuance: a dispatch error or a degraded real transport both resolve
// to exposing the raw code to the caller.
func (s *otpService) deliver(ctx context.Context, otpID uuid.UUID, phoneNumber, code string, method entity.DeliveryMethod) (bool, string) {
	result, err := s.dispatcher.Send(ctx, phoneNumber, code, method)
	if err != nil {
		s.log.Error("OTP dispatch failed entirely, exposing code to caller",
			zap.Error(err),
			zap.String("otp_id", otpID.String()),
		)
		if uerr := s.repo.UpdateDeliveryOutcome(ctx, otpID, entity.DeliveryFailed, "", "", err.Error()); uerr != nil {
			s.log.Warn("Failed to record delivery failure", zap.Error(uerr), zap.String("otp_id", otpID.String()))
		}
		return true, code
	}

	// The record stays usable even when transport failed: the code is real
	// and verifiable, so the status is sent either way.
	if uerr := s.repo.UpdateDeliveryOutcome(ctx, otpID, entity.DeliverySent, result.Provider, result.MessageID, result.TransportErr); uerr != nil {
		s.log.Warn("Failed to record delivery outcome", zap.Error(uerr), zap.String("otp_id", otpID.String()))
	}

	if result.Fallback {
		return true, code
	}
	return false, ""
}

func (s *otpService) Verify(ctx context.Context, req *request.VerifyOTPRequest) (*response.VerifyOTPResponse, error) {
	purpose, ok := entity.ParseOTPPurpose(req.Purpose)
	if !ok {
		return nil, ErrInvalidPurpose
	}

	otp, err := s.repo.FindLatestVerifiable(ctx, req.PhoneNumber, purpose)
	if err != nil {
		return nil, fmt.Errorf("failed to look up OTP: %w", err)
	}
	if otp == nil {
		return nil, ErrNoValidOTP
	}

	now := time.Now()

	// Every attempt counts, including the one that succeeds.
	attempts, err := s.repo.RegisterAttempt(ctx, otp.ID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to register attempt: %w", err)
	}

	if otp.IsExpired(now) {
		if merr := s.repo.MarkExpired(ctx, otp.ID); merr != nil {
			s.log.Warn("Failed to flag expired OTP", zap.Error(merr), zap.String("otp_id", otp.ID.String()))
		}
		return nil, ErrExpired
	}

	if attempts > otp.MaxAttempts {
		s.log.Warn("OTP attempts exhausted",
			zap.String("otp_id", otp.ID.String()),
			zap.String("phone_number", req.PhoneNumber),
			zap.Int("attempts", attempts),
		)
		return nil, ErrMaxAttemptsExceeded
	}

	if req.Code != otp.Code {
		return nil, ErrInvalidCode
	}

	if err := s.repo.MarkUsed(ctx, otp.ID, now); err != nil {
		return nil, fmt.Errorf("failed to mark OTP as used: %w", err)
	}

	s.log.Info("OTP verified",
		zap.String("otp_id", otp.ID.String()),
		zap.String("phone_number", req.PhoneNumber),
		zap.String("purpose", string(purpose)),
		zap.Int("attempts", attempts),
	)

	return &response.VerifyOTPResponse{Success: true}, nil
}

func (s *otpService) Resend(ctx context.Context, req *request.ResendOTPRequest) (*response.ResendOTPResponse, error) {
	purpose, ok := entity.ParseOTPPurpose(req.Purpose)
	if !ok {
		return nil, ErrInvalidPurpose
	}

	otp, err := s.repo.FindLatestByKey(ctx, req.PhoneNumber, purpose)
	if err != nil {
		return nil, fmt.Errorf("failed to look up OTP: %w", err)
	}

	now := time.Now()
	if otp == nil || now.Sub(otp.CreatedAt) > s.expiry() {
		return nil, ErrNoRecentOTP
	}

	cooldown := time.Duration(s.config.OTP.ResendCooldownSeconds) * time.Second
	if age := now.Sub(otp.CreatedAt); age < cooldown {
		retryAfter := int(math.Ceil((cooldown - age).Seconds()))
		return nil, &RetryAfterError{Err: ErrTooSoon, RetryAfter: retryAfter}
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		s.log.Error("Failed to generate OTP code", zap.Error(err))
		return nil, fmt.Errorf("failed to generate OTP")
	}

	// Same record id: counters back to initial state, fresh code and expiry.
	// Refreshing the issuance time restarts the cooldown, so consecutive
	// resends stay 60 seconds apart.
	if err := s.repo.ResetForResend(ctx, otp.ID, code, now, now.Add(s.expiry())); err != nil {
		return nil, fmt.Errorf("failed to reset OTP for resend: %w", err)
	}

	fallback, fallbackOTP := s.deliver(ctx, otp.ID, req.PhoneNumber, code, otp.DeliveryMethod)

	s.log.Info("OTP resent",
		zap.String("otp_id", otp.ID.String()),
		zap.String("phone_number", req.PhoneNumber),
		zap.String("purpose", string(purpose)),
		zap.Bool("fallback", fallback),
	)

	return &response.ResendOTPResponse{
		Success:     true,
		Fallback:    fallback,
		FallbackOTP: fallbackOTP,
	}, nil
}

// Cleanup deletes every record whose expiry has passed, regardless of the
// used/expired flags. Destructive, idempotent, order-independent.
func (s *otpService) Cleanup(ctx context.Context) (int64, error) {
	deleted, err := s.repo.DeleteExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("cleanup sweep failed: %w", err)
	}

	if deleted > 0 {
		s.log.Info("Expired OTP records swept", zap.Int64("deleted", deleted))
	}

	return deleted, nil
}
