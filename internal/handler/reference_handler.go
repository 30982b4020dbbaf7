package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Mk-yl/convocation-portal/internal/models"
	appErrors "github.com/Mk-yl/convocation-portal/pkg/errors"
	"github.com/Mk-yl/convocation-portal/pkg/response"
)

type referenceService interface {
	Snapshot(ctx context.Context) (*models.ReferenceSnapshot, error)
	List(ctx context.Context, kind models.ReferenceKind) (interface{}, error)
	Create(ctx context.Context, kind models.ReferenceKind, raw []byte) (interface{}, error)
	Update(ctx context.Context, kind models.ReferenceKind, id int, raw []byte) (interface{}, error)
	Delete(ctx context.Context, kind models.ReferenceKind, id int) error
}

// ReferenceHandler exposes the lookup collections and their administration.
type ReferenceHandler struct {
	service referenceService
	logger  *zap.Logger
}

// NewReferenceHandler constructs the handler.
func NewReferenceHandler(service referenceService, logger *zap.Logger) *ReferenceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReferenceHandler{service: service, logger: logger}
}

// Snapshot godoc
// @Summary All reference collections
// @Tags Reference
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /reference [get]
func (h *ReferenceHandler) Snapshot(c *gin.Context) {
	snap, err := h.service.Snapshot(c.Request.Context())
	if err != nil {
		if snap != nil {
			response.Partial(c, err, snap)
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snap, nil)
}

// List godoc
// @Summary List a reference collection
// @Tags Admin
// @Produce json
// @Param kind path string true "villes, adresses, certifications, types-examen, durees or classes"
// @Success 200 {object} response.Envelope
// @Router /admin/{kind} [get]
func (h *ReferenceHandler) List(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	items, err := h.service.List(c.Request.Context(), kind)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Create godoc
// @Summary Create a reference entity
// @Tags Admin
// @Accept json
// @Produce json
// @Param kind path string true "Reference kind"
// @Success 201 {object} response.Envelope
// @Router /admin/{kind} [post]
func (h *ReferenceHandler) Create(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	raw, err := c.GetRawData()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "cannot read payload"))
		return
	}
	entity, err := h.service.Create(c.Request.Context(), kind, raw)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.audit(c, "reference entity created", kind, 0)
	response.Created(c, entity)
}

// Update godoc
// @Summary Update a reference entity
// @Tags Admin
// @Accept json
// @Produce json
// @Param kind path string true "Reference kind"
// @Param id path int true "Entity id"
// @Success 200 {object} response.Envelope
// @Router /admin/{kind}/{id} [put]
func (h *ReferenceHandler) Update(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	raw, err := c.GetRawData()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "cannot read payload"))
		return
	}
	entity, err := h.service.Update(c.Request.Context(), kind, id, raw)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.audit(c, "reference entity updated", kind, id)
	response.JSON(c, http.StatusOK, entity, nil)
}

// Delete godoc
// @Summary Delete a reference entity
// @Tags Admin
// @Param kind path string true "Reference kind"
// @Param id path int true "Entity id"
// @Success 204
// @Router /admin/{kind}/{id} [delete]
func (h *ReferenceHandler) Delete(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), kind, id); err != nil {
		response.Error(c, err)
		return
	}
	h.audit(c, "reference entity deleted", kind, id)
	response.NoContent(c)
}

func (h *ReferenceHandler) audit(c *gin.Context, msg string, kind models.ReferenceKind, id int) {
	fields := []zap.Field{zap.String("kind", string(kind))}
	if id > 0 {
		fields = append(fields, zap.Int("id", id))
	}
	if claims := adminFromContext(c); claims != nil {
		fields = append(fields, zap.String("actor", claims.Subject))
	}
	h.logger.Info(msg, fields...)
}

func kindParam(c *gin.Context) (models.ReferenceKind, bool) {
	kind, ok := models.ParseReferenceKind(c.Param("kind"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrUnsupportedKind, "unknown reference kind "+strconv.Quote(c.Param("kind"))))
		return "", false
	}
	return kind, true
}

func idParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid id"))
		return 0, false
	}
	return id, true
}
