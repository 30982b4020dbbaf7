package workflow

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Mk-yl/convocation-portal/internal/models"
	appErrors "github.com/Mk-yl/convocation-portal/pkg/errors"
	"github.com/Mk-yl/convocation-portal/pkg/formdata"
)

var ccEmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// GenerationForm is the editable state of the generation screen. The class
// only narrows the certification and exam type choices; it is not sent.
type GenerationForm struct {
	SessionID       string `json:"sessionId" form:"sessionId" validate:"notblank"`
	LocationID      int    `json:"villeId" form:"villeId" validate:"gt=0"`
	ClassID         int    `json:"classeId" form:"classeId" validate:"gte=0"`
	CertificationID int    `json:"certificationId" form:"certificationId" validate:"gt=0"`
	ExamTypeID      int    `json:"typeExamenId" form:"typeExamenId" validate:"gt=0"`
	VenueID         int    `json:"adresseId" form:"adresseId" validate:"gt=0"`
	DurationID      int    `json:"dureeEpreuveId" form:"dureeEpreuveId" validate:"gt=0"`
	RenderDate      string `json:"dateRendu" form:"dateRendu"`
	RenderTime      string `json:"heureRendu" form:"heureRendu"`
	DriveLink       string `json:"lienDrive" form:"lienDrive" validate:"omitempty,url"`
}

// GenerationFiles are the uploads attached to a generation.
type GenerationFiles struct {
	Template  *formdata.File
	Signature *formdata.File
}

// Request assembles the wire request from the form and its files.
func (f GenerationForm) Request(files GenerationFiles) models.GenerationRequest {
	return models.GenerationRequest{
		GenerationData: models.GenerationData{
			SessionID:       f.SessionID,
			LocationID:      f.LocationID,
			ExamTypeID:      f.ExamTypeID,
			CertificationID: f.CertificationID,
			VenueID:         f.VenueID,
			DurationID:      f.DurationID,
			RenderDate:      f.RenderDate,
			RenderTime:      f.RenderTime,
			DriveLink:       f.DriveLink,
		},
		Template:  files.Template,
		Signature: files.Signature,
	}
}

// EmailForm is the editable state of the mailing screen. It always holds at
// least one CC row.
type EmailForm struct {
	SessionID string   `json:"sessionId" validate:"notblank"`
	ExamLabel string   `json:"examenLabel" validate:"notblank"`
	CCEmails  []string `json:"ccEmails" validate:"dive,ccemail"`
}

// NewValidator returns a validator that knows the form rules and reports
// fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return !isBlank(fl.Field().String())
	})
	_ = v.RegisterValidation("ccemail", func(fl validator.FieldLevel) bool {
		return validCC(fl.Field().String())
	})
	return v
}

// ValidateForm checks a form and returns ErrValidation naming the offending
// fields.
func ValidateForm(v *validator.Validate, form interface{}) error {
	if v == nil {
		v = NewValidator()
	}
	err := v.Struct(form)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fe.Field())
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
		"invalid fields: "+strings.Join(fields, ", "))
}

// FilterBlankCC drops blank rows. Other rows are kept verbatim.
func FilterBlankCC(rows []string) []string {
	kept := make([]string, 0, len(rows))
	for _, row := range rows {
		if isBlank(row) {
			continue
		}
		kept = append(kept, row)
	}
	return kept
}

func validCC(value string) bool {
	if isBlank(value) {
		return true
	}
	return ccEmailPattern.MatchString(value)
}

func isBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}
