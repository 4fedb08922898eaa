package sms

import (
	"context"
	"fmt"

	"matrimony-otp/internal/data/entity"
	"matrimony-otp/pkg/utils"

	"go.uber.org/zap"
)

// DispatchResult describes how a code was (or was not) delivered. Fallback is
// true when a configured real transport failed and delivery degraded to a
// lower tier; the caller decides whether that means exposing the raw code.
type DispatchResult struct {
	MessageID    string
	Provider     string
	Mock         bool
	Fallback     bool
	TransportErr string
}

// Dispatcher walks an explicit ordered list of transport tiers. Transport
// failures are absorbed as long as a lower tier exists; because the mock tier
// never fails, Send only errors when the chain is somehow empty.
type Dispatcher struct {
	gateway  Provider // nil when the HTTP gateway is not configured
	whatsapp Provider // nil when Twilio is not configured
	mock     Provider
	log      *zap.Logger
}

func NewDispatcher(smsCfg utils.SMSConfig, twilioCfg utils.TwilioConfig, log *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		mock: NewMockProvider(log),
		log:  log.With(zap.String("component", "sms_dispatcher")),
	}

	if smsCfg.Provider == "xml_api" {
		if smsCfg.GatewayConfigured() {
			d.gateway = NewXMLAPIProvider(smsCfg, log)
		} else if smsCfg.GatewayPartiallyConfigured() {
			d.log.Warn("xml_api gateway credentials incomplete, using mock transport",
				zap.Bool("endpoint_set", smsCfg.Endpoint != ""),
				zap.Bool("username_set", smsCfg.Username != ""),
				zap.Bool("password_set", smsCfg.Password != ""),
			)
		}
	}
	if twilioCfg.Configured() {
		d.whatsapp = NewWhatsAppProvider(twilioCfg, log)
	}

	return d
}

// NewDispatcherWithProviders wires explicit tiers; used by tests and by any
// caller that needs a custom chain.
func NewDispatcherWithProviders(gateway, whatsapp, mock Provider, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		gateway:  gateway,
		whatsapp: whatsapp,
		mock:     mock,
		log:      log.With(zap.String("component", "sms_dispatcher")),
	}
}

// Send delivers the code for one OTP record through the first tier that
// accepts it.
func (d *Dispatcher) Send(ctx context.Context, to, code string, method entity.DeliveryMethod) (*DispatchResult, error) {
	message := OTPMessage(code)

	var tiers []Provider
	switch method {
	case entity.DeliveryWhatsApp:
		if d.whatsapp != nil {
			tiers = append(tiers, d.whatsapp)
		}
	default:
		if d.gateway != nil {
			tiers = append(tiers, d.gateway)
		}
	}
	tiers = append(tiers, d.mock)

	result := &DispatchResult{}
	for i, tier := range tiers {
		sent, err := tier.Send(ctx, to, message)
		if err != nil {
			result.TransportErr = err.Error()
			// Degrading past a real transport means the caller must expose
			// the code; degrading from nothing (mock-only chain) does not.
			result.Fallback = true
			d.log.Warn("transport tier failed, falling back",
				zap.String("provider", tier.Name()),
				zap.String("to", to),
				zap.Int("tier", i),
				zap.Error(err),
			)
			continue
		}

		result.MessageID = sent.MessageID
		result.Provider = tier.Name()
		result.Mock = sent.Mock
		return result, nil
	}

	return nil, fmt.Errorf("all transport tiers exhausted for %s", to)
}
