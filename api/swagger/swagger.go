package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Convocation Portal API",
        "description": "Import candidates, generate convocations and email them",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Import", "description": "Candidate roster upload"},
        {"name": "Generate", "description": "Convocation generation and download"},
        {"name": "Email", "description": "Convocation mailing"},
        {"name": "Reference", "description": "Lookup collections"},
        {"name": "Admin", "description": "Lookup collection maintenance"}
    ],
    "paths": {
        "/": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Workflow overview",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/import": {
            "post": {
                "tags": ["Import"],
                "summary": "Import a candidate roster",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "type": "file", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "No file", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Service failure", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/import/report": {
            "post": {
                "tags": ["Import"],
                "summary": "Export an import result",
                "consumes": ["application/json"],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ImportResult"}}
                ],
                "responses": {
                    "200": {"description": "Report file"},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/generate/form": {
            "get": {
                "tags": ["Generate"],
                "summary": "Generation form with its reference data",
                "parameters": [
                    {"name": "sessionId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Partial reference data", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/generate/selection": {
            "post": {
                "tags": ["Generate"],
                "summary": "Change the selected class",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SelectionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/generate": {
            "post": {
                "tags": ["Generate"],
                "summary": "Generate convocations",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "sessionId", "in": "formData", "type": "string", "required": true},
                    {"name": "villeId", "in": "formData", "type": "integer", "required": true},
                    {"name": "classeId", "in": "formData", "type": "integer"},
                    {"name": "certificationId", "in": "formData", "type": "integer", "required": true},
                    {"name": "typeExamenId", "in": "formData", "type": "integer", "required": true},
                    {"name": "adresseId", "in": "formData", "type": "integer", "required": true},
                    {"name": "dureeEpreuveId", "in": "formData", "type": "integer", "required": true},
                    {"name": "dateRendu", "in": "formData", "type": "string"},
                    {"name": "heureRendu", "in": "formData", "type": "string"},
                    {"name": "lienDrive", "in": "formData", "type": "string"},
                    {"name": "templateFile", "in": "formData", "type": "file", "required": true},
                    {"name": "signatureImage", "in": "formData", "type": "file"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid form or missing template", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Generation already running", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Generation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/download/{sessionId}": {
            "get": {
                "tags": ["Generate"],
                "summary": "Download the convocation archive",
                "produces": ["application/zip"],
                "parameters": [
                    {"name": "sessionId", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Zip archive"},
                    "502": {"description": "Service failure", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/email": {
            "post": {
                "tags": ["Email"],
                "summary": "Email the convocations of a session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EmailForm"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid form", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reference": {
            "get": {
                "tags": ["Reference"],
                "summary": "All reference collections",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/{kind}": {
            "get": {
                "tags": ["Admin"],
                "summary": "List a reference collection",
                "parameters": [
                    {"name": "kind", "in": "path", "type": "string", "required": true, "enum": ["villes", "adresses", "certifications", "types-examen", "durees", "classes"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Admin"],
                "summary": "Create a reference entity",
                "parameters": [
                    {"name": "kind", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/{kind}/{id}": {
            "put": {
                "tags": ["Admin"],
                "summary": "Update a reference entity",
                "parameters": [
                    {"name": "kind", "in": "path", "type": "string", "required": true},
                    {"name": "id", "in": "path", "type": "integer", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Admin"],
                "summary": "Delete a reference entity",
                "parameters": [
                    {"name": "kind", "in": "path", "type": "string", "required": true},
                    {"name": "id", "in": "path", "type": "integer", "required": true}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        }
    },
    "definitions": {
        "Candidate": {
            "type": "object",
            "properties": {
                "nom": {"type": "string"},
                "prenom": {"type": "string"},
                "email": {"type": "string"},
                "groupe": {"type": "string"}
            }
        },
        "ImportResult": {
            "type": "object",
            "properties": {
                "sessionId": {"type": "string"},
                "candidatsCount": {"type": "integer"},
                "errors": {"type": "array", "items": {"type": "string"}},
                "message": {"type": "string"},
                "candidats": {"type": "array", "items": {"$ref": "#/definitions/Candidate"}}
            }
        },
        "GenerationForm": {
            "type": "object",
            "properties": {
                "sessionId": {"type": "string"},
                "villeId": {"type": "integer"},
                "classeId": {"type": "integer"},
                "certificationId": {"type": "integer"},
                "typeExamenId": {"type": "integer"},
                "adresseId": {"type": "integer"},
                "dureeEpreuveId": {"type": "integer"},
                "dateRendu": {"type": "string"},
                "heureRendu": {"type": "string"},
                "lienDrive": {"type": "string"}
            }
        },
        "SelectionRequest": {
            "type": "object",
            "properties": {
                "form": {"$ref": "#/definitions/GenerationForm"},
                "classeId": {"type": "integer"}
            }
        },
        "EmailForm": {
            "type": "object",
            "properties": {
                "sessionId": {"type": "string"},
                "examenLabel": {"type": "string"},
                "ccEmails": {"type": "array", "items": {"type": "string"}}
            }
        },
        "Notification": {
            "type": "object",
            "properties": {
                "level": {"type": "string", "enum": ["success", "warning", "error", "info"]},
                "message": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {
                    "type": "object",
                    "properties": {
                        "notifications": {"type": "array", "items": {"$ref": "#/definitions/Notification"}}
                    }
                }
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
