package repository

import (
	"github.com/Mk-yl/convocation-portal/internal/models"
	appErrors "github.com/Mk-yl/convocation-portal/pkg/errors"
	"github.com/Mk-yl/convocation-portal/pkg/formdata"
)

// Part names expected by the convocation service.
const (
	PartData      = "data"
	PartTemplate  = "templateFile"
	PartSignature = "signatureImage"
	PartImport    = "file"
)

// ComposeGenerationPayload builds the generate upload: the data segment, the
// template and the signature when one is attached.
func ComposeGenerationPayload(req models.GenerationRequest) (*formdata.Payload, error) {
	if req.Template == nil || req.Template.Content == nil {
		return nil, appErrors.ErrMissingTemplate
	}
	b := formdata.NewBuilder().
		JSON(PartData, req.GenerationData).
		File(PartTemplate, *req.Template)
	if req.Signature != nil && req.Signature.Content != nil {
		b.File(PartSignature, *req.Signature)
	}
	return b.Build()
}

// ComposeImportPayload wraps a roster spreadsheet in the import upload.
func ComposeImportPayload(file formdata.File) (*formdata.Payload, error) {
	return formdata.NewBuilder().File(PartImport, file).Build()
}
