package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Feed      FeedConfig      `mapstructure:"feed"`
	Mail      MailConfig      `mapstructure:"mail"`
	Monitor   MonitorConfig   `mapstructure:"monitor"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// FeedConfig holds the status feed source configuration
type FeedConfig struct {
	URL          string        `mapstructure:"url"`
	DashboardURL string        `mapstructure:"dashboard_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	UserAgent    string        `mapstructure:"user_agent"`
}

// MailConfig holds Gmail API delivery configuration
type MailConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RefreshToken string `mapstructure:"refresh_token"`
	SenderEmail  string `mapstructure:"sender_email"`
	// Recipient defaults to the sender address, matching the original
	// behavior of notifying the account the monitor runs under.
	Recipient     string `mapstructure:"recipient"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

// MonitorConfig holds incident processing configuration
type MonitorConfig struct {
	Timezone       string `mapstructure:"timezone"`
	Locale         string `mapstructure:"locale"`
	RetentionLimit int    `mapstructure:"retention_limit"`
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	IntervalMinutes int `mapstructure:"interval_minutes"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set defaults
	setDefaults()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Environment variables override config file
	viper.AutomaticEnv()

	// Bind environment variables
	bindEnvVars()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 3306)

	viper.SetDefault("feed.url", "https://www.google.com/appsstatus/dashboard/en/feed.atom")
	viper.SetDefault("feed.dashboard_url", "https://www.google.com/appsstatus/dashboard/")
	viper.SetDefault("feed.timeout", "30s")
	viper.SetDefault("feed.user_agent", "Google-Workspace-Status-Monitor/1.0")

	viper.SetDefault("mail.subject_prefix", "[Workspace Status]")

	viper.SetDefault("monitor.timezone", "Europe/Paris")
	viper.SetDefault("monitor.locale", "fr")
	viper.SetDefault("monitor.retention_limit", 50)

	viper.SetDefault("scheduler.interval_minutes", 10)
}

// bindEnvVars binds environment variables to configuration keys
func bindEnvVars() {
	// Server
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	viper.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")

	// Database
	viper.BindEnv("database.host", "DB_HOST")
	viper.BindEnv("database.port", "DB_PORT")
	viper.BindEnv("database.user", "DB_USER")
	viper.BindEnv("database.password", "DB_PASSWORD")
	viper.BindEnv("database.dbname", "DB_NAME")

	// Feed
	viper.BindEnv("feed.url", "FEED_URL")
	viper.BindEnv("feed.dashboard_url", "FEED_DASHBOARD_URL")
	viper.BindEnv("feed.timeout", "FEED_TIMEOUT")
	viper.BindEnv("feed.user_agent", "FEED_USER_AGENT")

	// Mail
	viper.BindEnv("mail.client_id", "GMAIL_CLIENT_ID")
	viper.BindEnv("mail.client_secret", "GMAIL_CLIENT_SECRET")
	viper.BindEnv("mail.refresh_token", "GMAIL_REFRESH_TOKEN")
	viper.BindEnv("mail.sender_email", "GMAIL_SENDER_EMAIL")
	viper.BindEnv("mail.recipient", "MAIL_RECIPIENT")
	viper.BindEnv("mail.subject_prefix", "MAIL_SUBJECT_PREFIX")

	// Monitor
	viper.BindEnv("monitor.timezone", "MONITOR_TIMEZONE")
	viper.BindEnv("monitor.locale", "MONITOR_LOCALE")
	viper.BindEnv("monitor.retention_limit", "MONITOR_RETENTION_LIMIT")

	// Scheduler
	viper.BindEnv("scheduler.interval_minutes", "SCHEDULER_INTERVAL_MINUTES")
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

// NotifyRecipient returns the configured recipient, falling back to the
// sender's own address.
func (c *MailConfig) NotifyRecipient() string {
	if c.Recipient != "" {
		return c.Recipient
	}
	return c.SenderEmail
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "" {
		return fmt.Errorf("database host, user, and dbname are required")
	}

	if c.Feed.URL == "" {
		return fmt.Errorf("feed URL is required")
	}

	if c.Mail.ClientID == "" || c.Mail.ClientSecret == "" || c.Mail.RefreshToken == "" {
		return fmt.Errorf("Gmail OAuth2 credentials are required")
	}

	if c.Mail.SenderEmail == "" {
		return fmt.Errorf("mail sender email is required")
	}

	if c.Monitor.RetentionLimit <= 0 {
		return fmt.Errorf("monitor retention limit must be greater than 0")
	}

	if c.Scheduler.IntervalMinutes <= 0 {
		return fmt.Errorf("scheduler interval must be greater than 0")
	}

	return nil
}
