package sms

import (
	"context"
	"errors"
	"testing"

	"matrimony-otp/internal/data/entity"
	"matrimony-otp/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubProvider struct {
	name  string
	err   error
	mock  bool
	calls int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Send(ctx context.Context, to, message string) (*SendResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &SendResult{MessageID: s.name + "-1", Mock: s.mock}, nil
}

func TestDispatcher_PrimarySucceeds(t *testing.T) {
	gateway := &stubProvider{name: "xml_api"}
	mock := &stubProvider{name: "mock", mock: true}
	d := NewDispatcherWithProviders(gateway, nil, mock, zap.NewNop())

	res, err := d.Send(context.Background(), "+919999999999", "123456", entity.DeliverySMS)
	require.NoError(t, err)
	assert.Equal(t, "xml_api", res.Provider)
	assert.Equal(t, "xml_api-1", res.MessageID)
	assert.False(t, res.Mock)
	assert.False(t, res.Fallback)
	assert.Empty(t, res.TransportErr)
	assert.Equal(t, 0, mock.calls)
}

func TestDispatcher_GatewayFailureFallsBackToMock(t *testing.T) {
	gateway := &stubProvider{name: "xml_api", err: errors.New("sms gateway returned status 500")}
	mock := &stubProvider{name: "mock", mock: true}
	d := NewDispatcherWithProviders(gateway, nil, mock, zap.NewNop())

	res, err := d.Send(context.Background(), "+919999999999", "123456", entity.DeliverySMS)
	require.NoError(t, err)
	assert.Equal(t, "mock", res.Provider)
	assert.True(t, res.Mock)
	assert.True(t, res.Fallback)
	assert.Equal(t, "sms gateway returned status 500", res.TransportErr)
	assert.Equal(t, 1, gateway.calls)
	assert.Equal(t, 1, mock.calls)
}

func TestDispatcher_MockOnlyIsNotFallback(t *testing.T) {
	mock := &stubProvider{name: "mock", mock: true}
	d := NewDispatcherWithProviders(nil, nil, mock, zap.NewNop())

	res, err := d.Send(context.Background(), "+919999999999", "123456", entity.DeliverySMS)
	require.NoError(t, err)
	assert.Equal(t, "mock", res.Provider)
	assert.True(t, res.Mock)
	assert.False(t, res.Fallback)
}

func TestDispatcher_WhatsAppMethodUsesWhatsAppTier(t *testing.T) {
	gateway := &stubProvider{name: "xml_api"}
	whatsapp := &stubProvider{name: "twilio_whatsapp"}
	mock := &stubProvider{name: "mock", mock: true}
	d := NewDispatcherWithProviders(gateway, whatsapp, mock, zap.NewNop())

	res, err := d.Send(context.Background(), "+919999999999", "123456", entity.DeliveryWhatsApp)
	require.NoError(t, err)
	assert.Equal(t, "twilio_whatsapp", res.Provider)
	assert.Equal(t, 0, gateway.calls)
}

func TestDispatcher_WhatsAppFailureFallsBackToMock(t *testing.T) {
	whatsapp := &stubProvider{name: "twilio_whatsapp", err: errors.New("twilio error 63016")}
	mock := &stubProvider{name: "mock", mock: true}
	d := NewDispatcherWithProviders(nil, whatsapp, mock, zap.NewNop())

	res, err := d.Send(context.Background(), "+919999999999", "123456", entity.DeliveryWhatsApp)
	require.NoError(t, err)
	assert.Equal(t, "mock", res.Provider)
	assert.True(t, res.Fallback)
	assert.Equal(t, "twilio error 63016", res.TransportErr)
}

func TestDispatcher_UnconfiguredGatewayNotInChain(t *testing.T) {
	// Provider selected but no credentials: the gateway tier must not be wired,
	// and the mock tier serving alone is a normal success, not a fallback.
	d := NewDispatcher(utils.SMSConfig{Provider: "xml_api"}, utils.TwilioConfig{}, zap.NewNop())


	res, err := d.Send(context.Background(), "+919999999999", "123456", entity.DeliverySMS)
	require.NoError(t, err)
	assert.Equal(t, "mock", res.Provider)
	assert.False(t, res.Fallback)
}

func TestDispatcher_PartialGatewayCredentialsNotWired(t *testing.T) {
	// Only one credential present: wiring the gateway would send every
	// request to a broken transport, so the mock tier serves instead.
	d := NewDispatcher(utils.SMSConfig{Provider: "xml_api", Username: "gw-user"}, utils.TwilioConfig{}, zap.NewNop())

	res, err := d.Send(context.Background(), "+919999999999", "123456", entity.DeliverySMS)
	require.NoError(t, err)
	assert.Equal(t, "mock", res.Provider)
	assert.True(t, res.Mock)
	assert.False(t, res.Fallback)
}

func TestOTPMessage(t *testing.T) {
	assert.Equal(t,
		"Use OTP 987654, to Login on Marriagepaper.com, We shall advertise your profile till you find matching profile",
		OTPMessage("987654"))
}
