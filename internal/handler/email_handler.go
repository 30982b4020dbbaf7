package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/Mk-yl/convocation-portal/internal/models"
	"github.com/Mk-yl/convocation-portal/internal/workflow"
	appErrors "github.com/Mk-yl/convocation-portal/pkg/errors"
	"github.com/Mk-yl/convocation-portal/pkg/response"
)

type emailSender interface {
	SendEmails(ctx context.Context, req models.EmailRequest) (string, error)
}

// EmailHandler triggers the mailing of a generated session.
type EmailHandler struct {
	sender    emailSender
	validator *validator.Validate
	env       StageEnv
}

// NewEmailHandler constructs the handler.
func NewEmailHandler(sender emailSender, validate *validator.Validate, env StageEnv) *EmailHandler {
	if validate == nil {
		validate = workflow.NewValidator()
	}
	return &EmailHandler{sender: sender, validator: validate, env: env}
}

type emailResponse struct {
	Message string `json:"message"`
	Sent    bool   `json:"sent"`
}

// Send godoc
// @Summary Email the convocations of a session
// @Tags Email
// @Accept json
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /email [post]
func (h *EmailHandler) Send(c *gin.Context) {
	var form workflow.EmailForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid email payload"))
		return
	}
	env, recorder := h.env.forRequest(c)
	stage := workflow.NewEmailStage(workflow.Handoff{SessionID: form.SessionID}, h.sender, h.validator, env)
	stage.SetForm(form)
	message, err := stage.Submit(c.Request.Context())
	if err != nil {
		response.Error(c, err, responseMeta(c, recorder))
		return
	}
	response.JSON(c, http.StatusOK, emailResponse{Message: message, Sent: stage.Sent()}, responseMeta(c, recorder))
}
