package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "TutorTrack API",
        "description": "REST API for tracking students, class sessions, payments and earnings",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http",
        "https"
    ],
    "tags": [
        {"name": "Auth", "description": "Registration, login, token refresh and Google OAuth"},
        {"name": "Students", "description": "Student roster and derived balances"},
        {"name": "Classes", "description": "Class session log"},
        {"name": "Stats", "description": "Dashboard rollups"},
        {"name": "Earnings", "description": "Full-history earnings and exports"},
        {"name": "Notifications", "description": "Parent email side-effects"}
    ],
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register a local account",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Login with email and password",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Exchange a refresh token",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/auth/google": {
            "get": {
                "tags": ["Auth"],
                "summary": "Start the Google OAuth flow",
                "responses": {"307": {"description": "Redirect to Google"}}
            }
        },
        "/auth/google/callback": {
            "get": {
                "tags": ["Auth"],
                "summary": "Complete the Google OAuth flow",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Students"],
                "summary": "Add a student",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateStudentRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get one student",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "patch": {
                "tags": ["Students"],
                "summary": "Edit a student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStudentRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Delete a student",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/students/{id}/recalculate": {
            "post": {
                "tags": ["Students"],
                "summary": "Force a balance recalculation",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/classes": {
            "get": {
                "tags": ["Classes"],
                "summary": "List class sessions",
                "parameters": [
                    {"name": "paid", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Classes"],
                "summary": "Log a class",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSessionRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/classes/{id}": {
            "get": {
                "tags": ["Classes"],
                "summary": "Get one class session",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "patch": {
                "tags": ["Classes"],
                "summary": "Edit a class session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSessionRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/classes/student/{studentId}": {
            "get": {
                "tags": ["Classes"],
                "summary": "List sessions for one student",
                "parameters": [{"name": "studentId", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/stats": {
            "get": {
                "tags": ["Stats"],
                "summary": "Dashboard stats",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/earnings": {
            "get": {
                "tags": ["Earnings"],
                "summary": "Earnings breakdown",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/earnings/export": {
            "get": {
                "tags": ["Earnings"],
                "summary": "Export an earnings report",
                "parameters": [{"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf", "xlsx"]}],
                "responses": {"200": {"description": "File download"}}
            }
        },
        "/notify/class-summary": {
            "post": {
                "tags": ["Notifications"],
                "summary": "Email a class summary",
                "responses": {"202": {"description": "Queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/notify/payment-reminder": {
            "post": {
                "tags": ["Notifications"],
                "summary": "Email a payment reminder",
                "responses": {"202": {"description": "Queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/notify/custom": {
            "post": {
                "tags": ["Notifications"],
                "summary": "Email a custom message",
                "responses": {"202": {"description": "Queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "full_name": {"type": "string"}
            },
            "required": ["email", "password", "full_name"]
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "CreateStudentRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "grade": {"type": "string"},
                "parent_name": {"type": "string"},
                "parent_email": {"type": "string"},
                "parent_phone": {"type": "string"},
                "hourly_rate": {"type": "integer", "default": 50}
            },
            "required": ["name"]
        },
        "UpdateStudentRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "grade": {"type": "string"},
                "parent_name": {"type": "string"},
                "parent_email": {"type": "string"},
                "parent_phone": {"type": "string"},
                "hourly_rate": {"type": "integer"}
            }
        },
        "CreateSessionRequest": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "format": "date-time"},
                "duration_minutes": {"type": "integer"},
                "summary": {"type": "string"},
                "student_ids": {"type": "array", "items": {"type": "string"}},
                "status": {"type": "string", "default": "completed"},
                "is_paid": {"type": "boolean", "default": false}
            },
            "required": ["duration_minutes", "student_ids"]
        },
        "UpdateSessionRequest": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "format": "date-time"},
                "duration_minutes": {"type": "integer"},
                "summary": {"type": "string"},
                "status": {"type": "string"},
                "is_paid": {"type": "boolean"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
