package sms

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"matrimony-otp/pkg/utils"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// gatewayTimeout bounds the issuing request when the gateway hangs; a timeout
// is a transport failure and falls through to the next tier.
const gatewayTimeout = 10 * time.Second

// XMLAPIProvider sends through the HTTP SMS gateway. The query parameter
// names and the datetime format are the provider's wire contract.
type XMLAPIProvider struct {
	cfg    utils.SMSConfig
	client *http.Client
	cb     *gobreaker.CircuitBreaker
	log    *zap.Logger
}

func NewXMLAPIProvider(cfg utils.SMSConfig, log *zap.Logger) *XMLAPIProvider {
	logger := log.With(zap.String("sms_provider", "xml_api"))

	st := gobreaker.Settings{
		Name:     "sms-xml-api",
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &XMLAPIProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: gatewayTimeout},
		cb:     gobreaker.NewCircuitBreaker(st),
		log:    logger,
	}
}

func (p *XMLAPIProvider) Name() string {
	return "xml_api"
}

func (p *XMLAPIProvider) Send(ctx context.Context, to, message string) (*SendResult, error) {
	result, err := p.cb.Execute(func() (interface{}, error) {
		return p.send(ctx, to, message)
	})
	if err != nil {
		return nil, err
	}
	return result.(*SendResult), nil
}

func (p *XMLAPIProvider) send(ctx context.Context, to, message string) (*SendResult, error) {
	params := url.Values{}
	params.Set("username", p.cfg.Username)
	params.Set("password", p.cfg.Password)
	params.Set("senderid", p.cfg.SenderID)
	params.Set("to", to)
	params.Set("text", message)
	params.Set("route", p.cfg.Route)
	params.Set("type", "text")
	params.Set("datetime", time.Now().Format("2006-01-02 15:04:05"))

	reqURL := p.cfg.Endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build gateway request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.log.Warn("SMS gateway request failed", zap.Error(err), zap.String("to", to))
		return nil, fmt.Errorf("sms gateway request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		p.log.Warn("SMS gateway rejected message",
			zap.Int("status", resp.StatusCode),
			zap.String("to", to),
		)
		return nil, fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}

	messageID := strings.TrimSpace(string(body))
	if messageID == "" {
		messageID = fmt.Sprintf("xml-%d", time.Now().UnixNano())
	}

	p.log.Info("SMS sent via gateway",
		zap.String("to", to),
		zap.String("message_id", messageID),
	)

	return &SendResult{MessageID: messageID}, nil
}
