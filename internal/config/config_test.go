package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Host:   "localhost",
			Port:   3306,
			User:   "test",
			DBName: "test",
		},
		Feed: FeedConfig{
			URL:          "https://www.google.com/appsstatus/dashboard/en/feed.atom",
			DashboardURL: "https://www.google.com/appsstatus/dashboard/",
		},
		Mail: MailConfig{
			ClientID:     "test",
			ClientSecret: "test",
			RefreshToken: "test",
			SenderEmail:  "monitor@example.com",
		},
		Monitor: MonitorConfig{
			Timezone:       "Europe/Paris",
			Locale:         "fr",
			RetentionLimit: 50,
		},
		Scheduler: SchedulerConfig{
			IntervalMinutes: 10,
		},
	}
}

func TestConfigValidation(t *testing.T) {
	// Test valid configuration
	config := validConfig()
	assert.NoError(t, config.Validate())

	// Test invalid configurations
	invalid := validConfig()
	invalid.Server.Port = ""
	assert.Error(t, invalid.Validate())

	invalid = validConfig()
	invalid.Feed.URL = ""
	assert.Error(t, invalid.Validate())

	invalid = validConfig()
	invalid.Mail.RefreshToken = ""
	assert.Error(t, invalid.Validate())

	invalid = validConfig()
	invalid.Monitor.RetentionLimit = 0
	assert.Error(t, invalid.Validate())

	invalid = validConfig()
	invalid.Scheduler.IntervalMinutes = 0
	assert.Error(t, invalid.Validate())
}

func TestDatabaseDSN(t *testing.T) {
	config := DatabaseConfig{
		Host:     "localhost",
		Port:     3306,
		User:     "testuser",
		Password: "testpass",
		DBName:   "testdb",
	}

	dsn := config.GetDSN()
	expected := "testuser:testpass@tcp(localhost:3306)/testdb?charset=utf8mb4&parseTime=True&loc=Local"
	assert.Equal(t, expected, dsn)
}

func TestNotifyRecipientFallsBackToSender(t *testing.T) {
	mail := MailConfig{SenderEmail: "monitor@example.com"}
	assert.Equal(t, "monitor@example.com", mail.NotifyRecipient())

	mail.Recipient = "ops@example.com"
	assert.Equal(t, "ops@example.com", mail.NotifyRecipient())
}
