package utils

import (
	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	OTP      OTPConfig
	SMS      SMSConfig
	Twilio   TwilioConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type OTPConfig struct {
	ExpiryMinutes          int
	Length                 int
	MaxAttempts            int
	RateLimit              int
	RateWindowMinutes      int
	ResendCooldownSeconds  int
	CleanupIntervalMinutes int
}

// SMSConfig carries the xml_api gateway surface. The gateway tier is only
// wired when Endpoint, Username and Password are all present; anything less
// would send every request to a broken transport.
type SMSConfig struct {
	Provider string // "xml_api" or "mock"
	Endpoint string
	Username string
	Password string
	SenderID string
	Route    string
}

func (c SMSConfig) GatewayConfigured() bool {
	return c.Endpoint != "" && c.Username != "" && c.Password != ""
}

// GatewayPartiallyConfigured reports a credentials set that is neither empty
// nor complete, which is almost certainly an operator mistake.
func (c SMSConfig) GatewayPartiallyConfigured() bool {
	any := c.Endpoint != "" || c.Username != "" || c.Password != ""
	return any && !c.GatewayConfigured()
}

type TwilioConfig struct {
	AccountSID   string
	AuthToken    string
	WhatsAppFrom string
}

func (c TwilioConfig) Configured() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.WhatsAppFrom != ""
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("OTP_EXPIRY_MINUTES", 10)
	viper.SetDefault("OTP_LENGTH", 6)
	viper.SetDefault("OTP_MAX_ATTEMPTS", 5)
	viper.SetDefault("OTP_RATE_LIMIT", 5)
	viper.SetDefault("OTP_RATE_WINDOW_MINUTES", 60)
	viper.SetDefault("OTP_RESEND_COOLDOWN_SECONDS", 60)
	viper.SetDefault("OTP_CLEANUP_INTERVAL_MINUTES", 60)
	viper.SetDefault("SMS_PROVIDER", "mock")
	viper.SetDefault("XML_API_SENDER_ID", "MARAGE")
	viper.SetDefault("XML_API_ROUTE", "1")

	if err := viper.ReadInConfig(); err != nil {
		// .env is optional; system env vars still apply
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		OTP: OTPConfig{
			ExpiryMinutes:          viper.GetInt("OTP_EXPIRY_MINUTES"),
			Length:                 viper.GetInt("OTP_LENGTH"),
			MaxAttempts:            viper.GetInt("OTP_MAX_ATTEMPTS"),
			RateLimit:              viper.GetInt("OTP_RATE_LIMIT"),
			RateWindowMinutes:      viper.GetInt("OTP_RATE_WINDOW_MINUTES"),
			ResendCooldownSeconds:  viper.GetInt("OTP_RESEND_COOLDOWN_SECONDS"),
			CleanupIntervalMinutes: viper.GetInt("OTP_CLEANUP_INTERVAL_MINUTES"),
		},
		SMS: SMSConfig{
			Provider: viper.GetString("SMS_PROVIDER"),
			Endpoint: viper.GetString("XML_API_ENDPOINT"),
			Username: viper.GetString("XML_API_USERNAME"),
			Password: viper.GetString("XML_API_PASSWORD"),
			SenderID: viper.GetString("XML_API_SENDER_ID"),
			Route:    viper.GetString("XML_API_ROUTE"),
		},
		Twilio: TwilioConfig{
			AccountSID:   viper.GetString("TWILIO_ACCOUNT_SID"),
			AuthToken:    viper.GetString("TWILIO_AUTH_TOKEN"),
			WhatsAppFrom: viper.GetString("TWILIO_WHATSAPP_FROM"),
		},
	}

	return config, nil
}
