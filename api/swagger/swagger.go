package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Internship API",
        "description": "Internship management backend: profiles, internships, diaries and evaluations behind a single operation endpoint.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Operations", "description": "Named queries and mutations"},
        {"name": "Exports", "description": "Diary book downloads"},
        {"name": "Health", "description": "Liveness and readiness"}
    ],
    "paths": {
        "/query": {
            "post": {
                "tags": ["Operations"],
                "summary": "Execute an operation",
                "description": "Queries: me, myStudentProfile, myCompanyProfile, allRoles, allPermissions, myInternships, internshipDiaries, internshipEvaluations. Mutations: updateStudentProfile, approveCompany, createInternship, createInternshipDiary, tokenAuth, verifyToken, refreshToken, createEvaluation, updateEvaluation, approveEvaluation, exportInternshipDiary.",
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/OperationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error or unknown operation", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthenticated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden or not owner", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/export/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download an exported diary book",
                "produces": ["application/pdf", "text/csv"],
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "403": {"description": "Link expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown link", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "OperationRequest": {
            "type": "object",
            "properties": {
                "operation": {"type": "string", "example": "createInternship"},
                "variables": {"type": "object"}
            },
            "required": ["operation"]
        },
        "CreateInternshipVariables": {
            "type": "object",
            "properties": {
                "companyId": {"type": "string"},
                "topic": {"type": "string"},
                "description": {"type": "string"},
                "startDate": {"type": "string", "example": "2024-01-01"},
                "endDate": {"type": "string", "example": "2024-01-31"}
            },
            "required": ["companyId", "topic", "startDate", "endDate"]
        },
        "CreateDiaryVariables": {
            "type": "object",
            "properties": {
                "internshipId": {"type": "string"},
                "dayNumber": {"type": "integer"},
                "content": {"type": "string"},
                "date": {"type": "string", "example": "2024-01-02"}
            },
            "required": ["internshipId", "content", "date"]
        },
        "EvaluationVariables": {
            "type": "object",
            "properties": {
                "internshipId": {"type": "string"},
                "evaluationId": {"type": "string"},
                "attendance": {"type": "integer", "minimum": 1, "maximum": 10},
                "performance": {"type": "integer", "minimum": 1, "maximum": 10},
                "adaptation": {"type": "integer", "minimum": 1, "maximum": 10},
                "technicalSkills": {"type": "integer", "minimum": 1, "maximum": 10},
                "communicationSkills": {"type": "integer", "minimum": 1, "maximum": 10},
                "teamwork": {"type": "integer", "minimum": 1, "maximum": 10},
                "comment": {"type": "string"}
            }
        },
        "TokenPair": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "refresh_token": {"type": "string"},
                "expires_in": {"type": "integer"},
                "issued_at": {"type": "string", "format": "date-time"}
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
