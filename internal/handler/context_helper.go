package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Mk-yl/convocation-portal/internal/middleware"
	"github.com/Mk-yl/convocation-portal/internal/models"
	"github.com/Mk-yl/convocation-portal/internal/service"
	"github.com/Mk-yl/convocation-portal/internal/workflow"
	"github.com/Mk-yl/convocation-portal/pkg/logger"
)

// StageEnv builds the workflow environment of each request. Guard is shared
// by every request so a screen cannot start the same action twice; Notifier
// receives every notification besides the per-request recorder.
type StageEnv struct {
	Guard    *workflow.Guard
	Notifier workflow.Notifier
	Logger   *zap.Logger
}

// NewStageEnv wires the shared guard with metrics and log notifiers.
func NewStageEnv(metrics *service.MetricsService, logger *zap.Logger) StageEnv {
	if logger == nil {
		logger = zap.NewNop()
	}
	return StageEnv{
		Guard:    workflow.NewGuard(),
		Notifier: workflow.Fanout(MetricsNotifier(metrics), workflow.NewLogNotifier(logger)),
		Logger:   logger,
	}
}

// MetricsNotifier counts notifications per level.
func MetricsNotifier(metrics *service.MetricsService) workflow.Notifier {
	if metrics == nil {
		return nil
	}
	return workflow.NotifierFunc(func(n models.Notification) {
		metrics.CountNotification(string(n.Level))
	})
}

func (e StageEnv) forRequest(c *gin.Context) (workflow.Env, *workflow.Recorder) {
	recorder := &workflow.Recorder{}
	guard := e.Guard
	if guard == nil {
		guard = workflow.NewGuard()
	}
	log := e.Logger
	if log == nil {
		log = zap.NewNop()
	}
	scope := screenScope(c)
	return workflow.Env{
		Notifier: workflow.Fanout(recorder, e.Notifier),
		Guard:    guard,
		Scope:    scope,
		Logger:   log.With(zap.String("screen", scope)),
	}, recorder
}

// screenScope identifies the issuing screen, falling back to the client IP.
func screenScope(c *gin.Context) string {
	if screen := strings.TrimSpace(c.GetHeader(logger.ScreenHeader)); screen != "" {
		return screen
	}
	return c.ClientIP()
}

// responseMeta merges the request metadata with the raised notifications.
func responseMeta(c *gin.Context, recorder *workflow.Recorder) map[string]interface{} {
	meta := map[string]interface{}{}
	for k, v := range middleware.ExtractMeta(c) {
		meta[k] = v
	}
	if recorder != nil {
		if items := recorder.Items(); len(items) > 0 {
			meta["notifications"] = items
		}
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}

func adminFromContext(c *gin.Context) *middleware.AdminClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*middleware.AdminClaims)
	if !ok {
		return nil
	}
	return claims
}
