package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "UCA API",
        "description": "Course assessment statistics, chart export and report generation",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Analysis", "description": "Statistics and chart artifacts"},
        {"name": "Reports", "description": "Asynchronous report generation"}
    ],
    "paths": {
        "/courses/{id}/analysis": {
            "get": {
                "tags": ["Analysis"],
                "summary": "Computed statistics for a course",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid weight configuration"},
                    "404": {"description": "Course not found"}
                }
            }
        },
        "/courses/{id}/charts": {
            "post": {
                "tags": ["Analysis"],
                "summary": "Render and persist chart artifacts",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChartExportRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Empty selection or invalid weights"}
                }
            }
        },
        "/courses/{id}/snapshot": {
            "get": {
                "tags": ["Analysis"],
                "summary": "Full JSON snapshot of a course's assessment state",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Analysis"],
                "summary": "Replace a course's stored data from an exported snapshot",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid weight configuration"}
                }
            }
        },
        "/reports": {
            "post": {
                "tags": ["Reports"],
                "summary": "Queue report generation",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateReportRequest"}}
                ],
                "responses": {
                    "201": {"description": "Queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Report job status",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Job not found"}
                }
            }
        },
        "/reports/download/{token}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a finished report via signed token",
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "token", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Report file"},
                    "400": {"description": "Invalid or expired token"}
                }
            }
        }
    },
    "definitions": {
        "ChartExportRequest": {
            "type": "object",
            "properties": {
                "kinds": {"type": "array", "items": {"type": "string", "enum": ["section_comparison", "weighted_composite", "grade_distribution"]}},
                "toggles": {"$ref": "#/definitions/ToggleSelection"}
            }
        },
        "ToggleSelection": {
            "type": "object",
            "properties": {
                "categories": {"type": "object", "additionalProperties": {"type": "boolean"}},
                "composite": {"type": "boolean"}
            }
        },
        "CreateReportRequest": {
            "type": "object",
            "required": ["course_id", "format"],
            "properties": {
                "course_id": {"type": "string"},
                "format": {"type": "string", "enum": ["pdf", "csv"]},
                "toggles": {"$ref": "#/definitions/ToggleSelection"},
                "include_distribution": {"type": "boolean"},
                "regenerate_artifacts": {"type": "boolean"},
                "title": {"type": "string"}
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
                "meta": {"type": "object"}
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
