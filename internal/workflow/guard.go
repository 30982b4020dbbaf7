package workflow

import (
	"sync"

	"go.uber.org/zap"

	"github.com/Mk-yl/convocation-portal/internal/models"
)

// Guard tracks in-flight actions so the same action is never submitted twice
// concurrently.
type Guard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

// NewGuard returns an empty guard.
func NewGuard() *Guard {
	return &Guard{active: make(map[string]struct{})}
}

// TryStart marks key as running. It returns false when key is already
// running; otherwise the returned release must be called once the action
// completes.
func (g *Guard) TryStart(key string) (func(), bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.active[key]; busy {
		return nil, false
	}
	g.active[key] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.active, key)
			g.mu.Unlock()
		})
	}, true
}

// Running reports whether key is in flight.
func (g *Guard) Running(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.active[key]
	return busy
}

// Env carries what every stage needs besides its own collaborators. Scope
// prefixes guard keys so separate screens do not block one another.
type Env struct {
	Notifier Notifier
	Guard    *Guard
	Scope    string
	Logger   *zap.Logger
}

func (e Env) withDefaults() Env {
	if e.Notifier == nil {
		e.Notifier = NotifierFunc(func(models.Notification) {})
	}
	if e.Guard == nil {
		e.Guard = NewGuard()
	}
	if e.Logger == nil {
		e.Logger = zap.NewNop()
	}
	return e
}

func (e Env) key(action string) string {
	if e.Scope == "" {
		return action
	}
	return e.Scope + "/" + action
}
