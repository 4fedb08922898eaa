package usecase

import (
	"matrimony-otp/internal/data/repository"
	"matrimony-otp/internal/rate"
	"matrimony-otp/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	OTP OTPService
}

func NewService(repo *repository.Repository, limiter *rate.Limiter, dispatcher Dispatcher, config *utils.Config, log *zap.Logger) *Service {
	return &Service{
		OTP: NewOTPService(repo.OTP, limiter, dispatcher, config, log),
	}
}
