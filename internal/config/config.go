package config

import (
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	MongoDB    MongoDBConfig
	JWT        JWTConfig
	Mpesa      MpesaConfig
	SMS        SMSConfig
	Dispatcher DispatcherConfig
	LogLevel   string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	AllowedHosts []string
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn int
}

// MpesaConfig holds Daraja API-specific configuration
type MpesaConfig struct {
	AuthURL           string
	STKPushURL        string
	ConsumerKey       string
	ConsumerSecret    string
	BusinessShortCode string
	PassKey           string
	CallbackURL       string
	MockAPI           bool
}

// SMSConfig holds SMS gateway-specific configuration
type SMSConfig struct {
	BaseURL         string
	Username        string
	APIKey          string
	DefaultSenderID string
	MockGateway     bool
}

// DispatcherConfig holds async send dispatcher configuration
type DispatcherConfig struct {
	Workers   int
	QueueSize int
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults sets default values for configuration
func setDefaults() {
	viper.SetDefault("Server.Port", "4000")
	viper.SetDefault("Server.AllowedHosts", []string{"localhost:3000"})
	viper.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	viper.SetDefault("MongoDB.Database", "jambosms")
	viper.SetDefault("JWT.ExpiresIn", 24*60*60) // 24 hours
	viper.SetDefault("LogLevel", "info")
	viper.SetDefault("Mpesa.AuthURL", "https://sandbox.safaricom.co.ke/oauth/v1/generate?grant_type=client_credentials")
	viper.SetDefault("Mpesa.STKPushURL", "https://sandbox.safaricom.co.ke/mpesa/stkpush/v1/processrequest")
	viper.SetDefault("Mpesa.MockAPI", true)
	viper.SetDefault("SMS.BaseURL", "https://api.africastalking.com/version1/messaging")
	viper.SetDefault("SMS.DefaultSenderID", "JamboSMS")
	viper.SetDefault("SMS.MockGateway", true)
	viper.SetDefault("Dispatcher.Workers", 4)
	viper.SetDefault("Dispatcher.QueueSize", 256)
}
