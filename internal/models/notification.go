package models

// NotificationLevel is the severity of a transient toast.
type NotificationLevel string

const (
	LevelSuccess NotificationLevel = "success"
	LevelWarning NotificationLevel = "warning"
	LevelError   NotificationLevel = "error"
	LevelInfo    NotificationLevel = "info"
)

// Notification is a transient message raised by a workflow stage.
type Notification struct {
	Level   NotificationLevel `json:"level"`
	Message string            `json:"message"`
}
