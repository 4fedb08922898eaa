package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"matrimony-otp/internal/data/entity"
	"matrimony-otp/internal/sms"

	"github.com/google/uuid"
)

// MockOTPRepository implements repository.OTPRepository over an in-memory map.
type MockOTPRepository struct {
	mu      sync.Mutex
	Records map[uuid.UUID]*entity.OTP

	// Error injection
	CreateErr           error
	FindErr             error
	RegisterAttemptErr  error
	MarkUsedErr         error
	ResetForResendErr   error
	CountIssuedErr      error
	DeleteExpiredErr    error
	UpdateDeliveryCalls int
}

func NewMockOTPRepository() *MockOTPRepository {
	return &MockOTPRepository{Records: make(map[uuid.UUID]*entity.OTP)}
}

func (m *MockOTPRepository) Create(ctx context.Context, otp *entity.OTP) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *otp
	m.Records[otp.ID] = &clone
	return nil
}

func (m *MockOTPRepository) latest(phoneNumber string, purpose entity.OTPPurpose, pred func(*entity.OTP) bool) *entity.OTP {
	var newest *entity.OTP
	for _, rec := range m.Records {
		if rec.PhoneNumber != phoneNumber || rec.Purpose != purpose {
			continue
		}
		if pred != nil && !pred(rec) {
			continue
		}
		if newest == nil || rec.CreatedAt.After(newest.CreatedAt) {
			newest = rec
		}
	}
	return newest
}

func (m *MockOTPRepository) FindLatestVerifiable(ctx context.Context, phoneNumber string, purpose entity.OTPPurpose) (*entity.OTP, error) {
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latest(phoneNumber, purpose, func(o *entity.OTP) bool {
		return o.IsVerifiable()
	}), nil
}

func (m *MockOTPRepository) FindLatestByKey(ctx context.Context, phoneNumber string, purpose entity.OTPPurpose) (*entity.OTP, error) {
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latest(phoneNumber, purpose, nil), nil
}

func (m *MockOTPRepository) RegisterAttempt(ctx context.Context, otpID uuid.UUID, at time.Time) (int, error) {
	if m.RegisterAttemptErr != nil {
		return 0, m.RegisterAttemptErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.Records[otpID]
	if !ok {
		return 0, errors.New("record not found")
	}
	rec.AttemptsCount++
	attemptAt := at
	rec.LastAttemptAt = &attemptAt
	return rec.AttemptsCount, nil
}

func (m *MockOTPRepository) MarkUsed(ctx context.Context, otpID uuid.UUID, at time.Time) error {
	if m.MarkUsedErr != nil {
		return m.MarkUsedErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.Records[otpID]
	if !ok {
		return errors.New("record not found")
	}
	usedAt := at
	rec.Used = true
	rec.UsedAt = &usedAt
	return nil
}

func (m *MockOTPRepository) MarkExpired(ctx context.Context, otpID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.Records[otpID]; ok {
		rec.Expired = true
	}
	return nil
}

func (m *MockOTPRepository) ResetForResend(ctx context.Context, otpID uuid.UUID, code string, issuedAt, expiresAt time.Time) error {
	if m.ResetForResendErr != nil {
		return m.ResetForResendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.Records[otpID]
	if !ok {
		return errors.New("record not found")
	}
	rec.Code = code
	rec.CreatedAt = issuedAt
	rec.Used = false
	rec.Expired = false
	rec.AttemptsCount = 0
	rec.UsedAt = nil
	rec.LastAttemptAt = nil
	rec.ExpiresAt = expiresAt
	rec.DeliveryStatus = entity.DeliveryPending
	return nil
}

func (m *MockOTPRepository) UpdateDeliveryOutcome(ctx context.Context, otpID uuid.UUID, status entity.DeliveryStatus, provider, messageID, deliveryError string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateDeliveryCalls++
	if rec, ok := m.Records[otpID]; ok {
		rec.DeliveryStatus = status
		rec.DeliveryProvider = provider
		rec.DeliveryMessageID = messageID
		rec.DeliveryError = deliveryError
	}
	return nil
}

func (m *MockOTPRepository) CountIssuedSince(ctx context.Context, rateLimitKey string, since time.Time) (int, error) {
	if m.CountIssuedErr != nil {
		return 0, m.CountIssuedErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, rec := range m.Records {
		if rec.RateLimitKey == rateLimitKey && rec.CreatedAt.After(since) {
			count++
		}
	}
	return count, nil
}

func (m *MockOTPRepository) DeleteExpired(ctx context.Context) (int64, error) {
	if m.DeleteExpiredErr != nil {
		return 0, m.DeleteExpiredErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	var deleted int64
	for id, rec := range m.Records {
		if rec.ExpiresAt.Before(now) {
			delete(m.Records, id)
			deleted++
		}
	}
	return deleted, nil
}

// LatestFor returns the newest stored record for inspection in tests.
func (m *MockOTPRepository) LatestFor(phoneNumber string, purpose entity.OTPPurpose) *entity.OTP {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latest(phoneNumber, purpose, nil)
}

type DispatchCall struct {
	To     string
	Code   string
	Method entity.DeliveryMethod
}

// MockDispatcher records dispatch calls and returns a configurable result.
type MockDispatcher struct {
	Result *sms.DispatchResult
	Err    error
	Calls  []DispatchCall
}

func (m *MockDispatcher) Send(ctx context.Context, to, code string, method entity.DeliveryMethod) (*sms.DispatchResult, error) {
	m.Calls = append(m.Calls, DispatchCall{To: to, Code: code, Method: method})
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Result != nil {
		res := *m.Result
		return &res, nil
	}
	return &sms.DispatchResult{MessageID: "msg-1", Provider: "xml_api"}, nil
}
