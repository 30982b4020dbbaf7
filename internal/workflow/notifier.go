// Package workflow drives the import, generation and mailing stages of a
// convocation session against the convocation service.
package workflow

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Mk-yl/convocation-portal/internal/models"
)

// Notifier receives the transient messages raised by the stages.
type Notifier interface {
	Notify(n models.Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n models.Notification)

// Notify implements Notifier.
func (f NotifierFunc) Notify(n models.Notification) {
	f(n)
}

// Recorder keeps notifications in the order they were raised.
type Recorder struct {
	mu    sync.Mutex
	items []models.Notification
}

// Notify implements Notifier.
func (r *Recorder) Notify(n models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// Items returns a copy of the recorded notifications.
func (r *Recorder) Items() []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Notification(nil), r.items...)
}

// Last returns the most recent notification.
func (r *Recorder) Last() (models.Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return models.Notification{}, false
	}
	return r.items[len(r.items)-1], true
}

// LogNotifier mirrors notifications into the application log.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier constructs a LogNotifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// Notify implements Notifier.
func (l *LogNotifier) Notify(n models.Notification) {
	fields := []zap.Field{zap.String("level", string(n.Level)), zap.String("message", n.Message)}
	switch n.Level {
	case models.LevelError:
		l.logger.Warn("workflow notification", fields...)
	default:
		l.logger.Debug("workflow notification", fields...)
	}
}

// Fanout delivers every notification to each non-nil notifier.
func Fanout(notifiers ...Notifier) Notifier {
	active := make([]Notifier, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			active = append(active, n)
		}
	}
	return NotifierFunc(func(n models.Notification) {
		for _, target := range active {
			target.Notify(n)
		}
	})
}

func success(format string, args ...interface{}) models.Notification {
	return models.Notification{Level: models.LevelSuccess, Message: fmt.Sprintf(format, args...)}
}

func warning(format string, args ...interface{}) models.Notification {
	return models.Notification{Level: models.LevelWarning, Message: fmt.Sprintf(format, args...)}
}

func failure(message string) models.Notification {
	return models.Notification{Level: models.LevelError, Message: message}
}
