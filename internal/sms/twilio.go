package sms

import (
	"context"
	"fmt"

	"matrimony-otp/pkg/utils"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

// WhatsAppProvider delivers the code over WhatsApp via Twilio. Only used for
// records whose delivery method is whatsapp.
type WhatsAppProvider struct {
	client *twilio.RestClient
	from   string
	log    *zap.Logger
}

func NewWhatsAppProvider(cfg utils.TwilioConfig, log *zap.Logger) *WhatsAppProvider {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return &WhatsAppProvider{
		client: client,
		from:   cfg.WhatsAppFrom,
		log:    log.With(zap.String("sms_provider", "twilio_whatsapp")),
	}
}

func (p *WhatsAppProvider) Name() string {
	return "twilio_whatsapp"
}

func (p *WhatsAppProvider) Send(ctx context.Context, to, message string) (*SendResult, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(p.from)
	params.SetTo(fmt.Sprintf("whatsapp:%s", to))
	params.SetBody(message)

	resp, err := p.client.Api.CreateMessage(params)
	if err != nil {
		p.log.Warn("Failed to send WhatsApp message", zap.Error(err), zap.String("to", to))
		return nil, fmt.Errorf("twilio whatsapp send: %w", err)
	}

	if resp.ErrorCode != nil && *resp.ErrorCode != 0 {
		return nil, fmt.Errorf("twilio error %d: %s", *resp.ErrorCode, *resp.ErrorMessage)
	}

	messageID := ""
	if resp.Sid != nil {
		messageID = *resp.Sid
	}

	p.log.Info("WhatsApp message sent", zap.String("to", to), zap.String("sid", messageID))

	return &SendResult{MessageID: messageID}, nil
}
