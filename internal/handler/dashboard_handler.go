package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Mk-yl/convocation-portal/pkg/response"
)

// DashboardStep is one quick-action tile of the home screen.
type DashboardStep struct {
	Order       int    `json:"order"`
	Key         string `json:"key"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Method      string `json:"method"`
	Path        string `json:"path"`
}

// DashboardHandler describes the convocation workflow.
type DashboardHandler struct {
	steps []DashboardStep
}

// NewDashboardHandler builds the step list with paths under prefix.
func NewDashboardHandler(prefix string) *DashboardHandler {
	prefix = strings.TrimRight(prefix, "/")
	return &DashboardHandler{steps: []DashboardStep{
		{Order: 1, Key: "import", Title: "Import candidates", Description: "Upload the candidate spreadsheet and get a session id", Method: http.MethodPost, Path: prefix + "/import"},
		{Order: 2, Key: "generate", Title: "Generate convocations", Description: "Fill in the exam details and merge them into the Word template", Method: http.MethodPost, Path: prefix + "/generate"},
		{Order: 3, Key: "download", Title: "Download the archive", Description: "Fetch the zip of generated convocations", Method: http.MethodGet, Path: prefix + "/download/{sessionId}"},
		{Order: 4, Key: "email", Title: "Send emails", Description: "Mail every candidate their convocation", Method: http.MethodPost, Path: prefix + "/email"},
		{Order: 5, Key: "admin", Title: "Reference data", Description: "Maintain locations, venues, certifications, exam types, durations and classes", Method: http.MethodGet, Path: prefix + "/admin/{kind}"},
	}}
}

// Steps godoc
// @Summary Workflow overview
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router / [get]
func (h *DashboardHandler) Steps(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.steps, nil)
}
