package sms

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MockProvider logs the message instead of delivering it. It never fails,
// which makes it the terminal tier of the dispatcher chain.
type MockProvider struct {
	log *zap.Logger
}

func NewMockProvider(log *zap.Logger) *MockProvider {
	return &MockProvider{log: log.With(zap.String("sms_provider", "mock"))}
}

func (p *MockProvider) Name() string {
	return "mock"
}

func (p *MockProvider) Send(ctx context.Context, to, message string) (*SendResult, error) {
	messageID := "mock-" + uuid.New().String()

	p.log.Info("Mock SMS delivery",
		zap.String("to", to),
		zap.String("message", message),
		zap.String("message_id", messageID),
	)

	return &SendResult{MessageID: messageID, Mock: true}, nil
}
