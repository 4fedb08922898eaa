package repository

import (
	"matrimony-otp/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	OTP OTPRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		OTP: NewOTPRepository(db, log),
	}
}
