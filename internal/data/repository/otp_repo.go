package repository

import (
	"context"
	"fmt"
	"time"

	"matrimony-otp/internal/data/entity"
	"matrimony-otp/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type OTPRepository interface {
	Create(ctx context.Context, otp *entity.OTP) error
	// FindLatestVerifiable returns the newest record a verification attempt may
	// still be registered against, or nil. Duplicates per (phone, purpose) are
	// tolerated; newest wins.
	FindLatestVerifiable(ctx context.Context, phoneNumber string, purpose entity.OTPPurpose) (*entity.OTP, error)
	// FindLatestByKey returns the newest record for (phone, purpose) regardless
	// of validity, or nil.
	FindLatestByKey(ctx context.Context, phoneNumber string, purpose entity.OTPPurpose) (*entity.OTP, error)
	// RegisterAttempt increments the attempt counter and returns the new count.
	RegisterAttempt(ctx context.Context, otpID uuid.UUID, at time.Time) (int, error)
	MarkUsed(ctx context.Context, otpID uuid.UUID, at time.Time) error
	MarkExpired(ctx context.Context, otpID uuid.UUID) error
	// ResetForResend regenerates the record in place: new code, counters back
	// to initial state, issuance time refreshed so cooldown and recency
	// windows restart from the resend.
	ResetForResend(ctx context.Context, otpID uuid.UUID, code string, issuedAt, expiresAt time.Time) error
	UpdateDeliveryOutcome(ctx context.Context, otpID uuid.UUID, status entity.DeliveryStatus, provider, messageID, deliveryError string) error
	// CountIssuedSince counts records issued for a rate-limit key within the
	// trailing window.
	CountIssuedSince(ctx context.Context, rateLimitKey string, since time.Time) (int, error)
	// DeleteExpired removes every record whose expiry has passed and returns
	// the number deleted.
	DeleteExpired(ctx context.Context) (int64, error)
}

type otpRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewOTPRepository(db database.PgxIface, log *zap.Logger) OTPRepository {
	return &otpRepository{
		db:  db,
		log: log.With(zap.String("repository", "otp")),
	}
}

const otpColumns = `id, user_id, phone_number, email, code, purpose,
	       used, expired, attempts_count, max_attempts,
	       created_at, expires_at, used_at, last_attempt_at,
	       delivery_method, delivery_status, delivery_provider,
	       delivery_message_id, delivery_error, rate_limit_key,
	       ip_address, user_agent, session_id`

func scanOTP(row pgx.Row) (*entity.OTP, error) {
	var otp entity.OTP
	err := row.Scan(
		&otp.ID,
		&otp.UserID,
		&otp.PhoneNumber,
		&otp.Email,
		&otp.Code,
		&otp.Purpose,
		&otp.Used,
		&otp.Expired,
		&otp.AttemptsCount,
		&otp.MaxAttempts,
		&otp.CreatedAt,
		&otp.ExpiresAt,
		&otp.UsedAt,
		&otp.LastAttemptAt,
		&otp.DeliveryMethod,
		&otp.DeliveryStatus,
		&otp.DeliveryProvider,
		&otp.DeliveryMessageID,
		&otp.DeliveryError,
		&otp.RateLimitKey,
		&otp.IPAddress,
		&otp.UserAgent,
		&otp.SessionID,
	)
	if err != nil {
		return nil, err
	}
	return &otp, nil
}

func (r *otpRepository) Create(ctx context.Context, otp *entity.OTP) error {
	query := `
		INSERT INTO otp_records (id, user_id, phone_number, email, code, purpose,
		                         used, expired, attempts_count, max_attempts,
		                         created_at, expires_at, used_at, last_attempt_at,
		                         delivery_method, delivery_status, delivery_provider,
		                         delivery_message_id, delivery_error, rate_limit_key,
		                         ip_address, user_agent, session_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23)
	`

	_, err := r.db.Exec(ctx, query,
		otp.ID,
		otp.UserID,
		otp.PhoneNumber,
		otp.Email,
		otp.Code,
		otp.Purpose,
		otp.Used,
		otp.Expired,
		otp.AttemptsCount,
		otp.MaxAttempts,
		otp.CreatedAt,
		otp.ExpiresAt,
		otp.UsedAt,
		otp.LastAttemptAt,
		otp.DeliveryMethod,
		otp.DeliveryStatus,
		otp.DeliveryProvider,
		otp.DeliveryMessageID,
		otp.DeliveryError,
		otp.RateLimitKey,
		otp.IPAddress,
		otp.UserAgent,
		otp.SessionID,
	)

	if err != nil {
		r.log.Error("Failed to create OTP record",
			zap.Error(err),
			zap.String("phone_number", otp.PhoneNumber),
			zap.String("purpose", string(otp.Purpose)),
		)
		return fmt.Errorf("create OTP record for %s: %w", otp.PhoneNumber, err)
	}

	return nil
}

func (r *otpRepository) FindLatestVerifiable(ctx context.Context, phoneNumber string, purpose entity.OTPPurpose) (*entity.OTP, error) {
	// Filters on the stored flags, not on expires_at: time expiry is
	// evaluated by the validator when the record is touched, so a stale
	// record still surfaces once to be reported (and flagged) as expired.
	// attempts_count <= max_attempts admits the tipping attempt so it can be
	// reported as attempt exhaustion.
	query := `
		SELECT ` + otpColumns + `
		FROM otp_records
		WHERE phone_number = $1
		  AND purpose = $2
		  AND used = false
		  AND expired = false
		  AND attempts_count <= max_attempts
		ORDER BY created_at DESC
		LIMIT 1
	`

	otp, err := scanOTP(r.db.QueryRow(ctx, query, phoneNumber, purpose))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find verifiable OTP",
			zap.Error(err),
			zap.String("phone_number", phoneNumber),
			zap.String("purpose", string(purpose)),
		)
		return nil, fmt.Errorf("find verifiable OTP for %s type %s: %w", phoneNumber, purpose, err)
	}

	return otp, nil
}

func (r *otpRepository) FindLatestByKey(ctx context.Context, phoneNumber string, purpose entity.OTPPurpose) (*entity.OTP, error) {
	query := `
		SELECT ` + otpColumns + `
		FROM otp_records
		WHERE phone_number = $1
		  AND purpose = $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	otp, err := scanOTP(r.db.QueryRow(ctx, query, phoneNumber, purpose))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find latest OTP",
			zap.Error(err),
			zap.String("phone_number", phoneNumber),
			zap.String("purpose", string(purpose)),
		)
		return nil, fmt.Errorf("find latest OTP for %s type %s: %w", phoneNumber, purpose, err)
	}

	return otp, nil
}

func (r *otpRepository) RegisterAttempt(ctx context.Context, otpID uuid.UUID, at time.Time) (int, error) {
	query := `
		UPDATE otp_records
		SET attempts_count = attempts_count + 1,
		    last_attempt_at = $2
		WHERE id = $1
		RETURNING attempts_count
	`

	var attempts int
	if err := r.db.QueryRow(ctx, query, otpID, at).Scan(&attempts); err != nil {
		r.log.Error("Failed to register OTP attempt",
			zap.Error(err),
			zap.String("otp_id", otpID.String()),
		)
		return 0, fmt.Errorf("register attempt on OTP %s: %w", otpID.String(), err)
	}

	return attempts, nil
}

func (r *otpRepository) MarkUsed(ctx context.Context, otpID uuid.UUID, at time.Time) error {
	query := `
		UPDATE otp_records
		SET used = true,
		    used_at = $2
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, otpID, at)
	if err != nil {
		r.log.Error("Failed to mark OTP as used",
			zap.Error(err),
			zap.String("otp_id", otpID.String()),
		)
		return fmt.Errorf("mark OTP %s as used: %w", otpID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("OTP %s not found", otpID.String())
	}

	return nil
}

func (r *otpRepository) MarkExpired(ctx context.Context, otpID uuid.UUID) error {
	query := `
		UPDATE otp_records
		SET expired = true
		WHERE id = $1
	`

	_, err := r.db.Exec(ctx, query, otpID)
	if err != nil {
		r.log.Error("Failed to mark OTP as expired",
			zap.Error(err),
			zap.String("otp_id", otpID.String()),
		)
		return fmt.Errorf("mark OTP %s as expired: %w", otpID.String(), err)
	}

	return nil
}

func (r *otpRepository) ResetForResend(ctx context.Context, otpID uuid.UUID, code string, issuedAt, expiresAt time.Time) error {
	query := `
		UPDATE otp_records
		SET code = $2,
		    used = false,
		    expired = false,
		    attempts_count = 0,
		    used_at = NULL,
		    last_attempt_at = NULL,
		    created_at = $3,
		    expires_at = $4,
		    delivery_status = 'pending'
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, otpID, code, issuedAt, expiresAt)
	if err != nil {
		r.log.Error("Failed to reset OTP for resend",
			zap.Error(err),
			zap.String("otp_id", otpID.String()),
		)
		return fmt.Errorf("reset OTP %s for resend: %w", otpID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("OTP %s not found", otpID.String())
	}

	return nil
}

func (r *otpRepository) UpdateDeliveryOutcome(ctx context.Context, otpID uuid.UUID, status entity.DeliveryStatus, provider, messageID, deliveryError string) error {
	query := `
		UPDATE otp_records
		SET delivery_status = $2,
		    delivery_provider = $3,
		    delivery_message_id = $4,
		    delivery_error = $5
		WHERE id = $1
	`

	_, err := r.db.Exec(ctx, query, otpID, status, provider, messageID, deliveryError)
	if err != nil {
		r.log.Error("Failed to update OTP delivery outcome",
			zap.Error(err),
			zap.String("otp_id", otpID.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update delivery outcome on OTP %s: %w", otpID.String(), err)
	}

	return nil
}

func (r *otpRepository) CountIssuedSince(ctx context.Context, rateLimitKey string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM otp_records
		WHERE rate_limit_key = $1
		  AND created_at > $2
	`

	var count int
	if err := r.db.QueryRow(ctx, query, rateLimitKey, since).Scan(&count); err != nil {
		r.log.Error("Failed to count issued OTPs",
			zap.Error(err),
			zap.String("rate_limit_key", rateLimitKey),
		)
		return 0, fmt.Errorf("count issued OTPs for %s: %w", rateLimitKey, err)
	}

	return count, nil
}

func (r *otpRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM otp_records
		WHERE expires_at < NOW()
	`

	result, err := r.db.Exec(ctx, query)
	if err != nil {
		r.log.Error("Failed to delete expired OTP records", zap.Error(err))
		return 0, fmt.Errorf("delete expired OTP records: %w", err)
	}

	return result.RowsAffected(), nil
}
