package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSMSConfig_GatewayConfigured(t *testing.T) {
	tests := []struct {
		name       string
		cfg        SMSConfig
		configured bool
		partial    bool
	}{
		{"all empty", SMSConfig{}, false, false},
		{"complete", SMSConfig{Endpoint: "https://sms.example.com/send", Username: "u", Password: "p"}, true, false},
		{"username only", SMSConfig{Username: "u"}, false, true},
		{"endpoint only", SMSConfig{Endpoint: "https://sms.example.com/send"}, false, true},
		{"missing password", SMSConfig{Endpoint: "https://sms.example.com/send", Username: "u"}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.configured, tt.cfg.GatewayConfigured())
			assert.Equal(t, tt.partial, tt.cfg.GatewayPartiallyConfigured())
		})
	}
}
