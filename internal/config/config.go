package config

import "fmt"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Dapr     DaprConfig     `mapstructure:"dapr" validate:"required"`
	Topics   TopicsConfig   `mapstructure:"topics" validate:"required"`
	Reminder ReminderConfig `mapstructure:"reminder" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"`
}

// AuthConfig controls how request identity is resolved.
type AuthConfig struct {
	// DevUserID is the identity assumed when a request carries no
	// X-User-ID header. Set it empty to reject anonymous requests.
	DevUserID string `mapstructure:"dev_user_id"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// DaprConfig contains the settings needed to reach the Dapr sidecar.
// All infrastructure interactions (pub/sub, jobs, state, secrets) go
// through the sidecar's HTTP API on localhost.
type DaprConfig struct {
	HTTPPort   int    `mapstructure:"http_port" validate:"required,gt=0,lt=65536"`
	AppID      string `mapstructure:"app_id" validate:"required"`
	PubsubName string `mapstructure:"pubsub_name" validate:"required"`
}

// BaseURL returns the root URL of the sidecar's HTTP API. The versioned
// path segments are appended by the client.
func (d DaprConfig) BaseURL() string {
	return fmt.Sprintf("http://localhost:%d", d.HTTPPort)
}

// TopicsConfig names the logical topics task events are routed to.
type TopicsConfig struct {
	// TaskEvents is the lifecycle audit topic; every task mutation
	// (created, updated, completed, deleted) lands here.
	TaskEvents string `mapstructure:"task_events" validate:"required"`

	// TaskUpdates duplicates the lifecycle events for realtime consumers.
	TaskUpdates string `mapstructure:"task_updates" validate:"required"`

	// Reminders carries reminder.due notifications.
	Reminders string `mapstructure:"reminders" validate:"required"`
}

// ReminderConfig controls reminder scheduling behavior.
type ReminderConfig struct {
	// LeadMinutes is how many minutes before a task's due date its
	// reminder fires.
	LeadMinutes int `mapstructure:"lead_minutes" validate:"required,gt=0"`
}
