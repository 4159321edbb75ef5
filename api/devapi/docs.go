// Package devapi registers the OpenAPI document of the development backend
// with swag so /swagger/ can serve it. Regenerate with
// `swag init -g internal/devapi/http/router.go -o api/devapi`.
package devapi

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/v1/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Sign in",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/travelsdk.LoginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/travelsdk.AuthResponse"}},
                    "401": {"description": "invalid_credentials", "schema": {"$ref": "#/definitions/travelsdk.ErrorResponse"}},
                    "403": {"description": "forbidden: account not active", "schema": {"$ref": "#/definitions/travelsdk.ErrorResponse"}}
                }
            }
        },
        "/v1/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Create a customer account",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/travelsdk.RegisterRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/travelsdk.AuthResponse"}},
                    "409": {"description": "duplicate_email", "schema": {"$ref": "#/definitions/travelsdk.ErrorResponse"}},
                    "422": {"description": "validation_error with fields", "schema": {"$ref": "#/definitions/travelsdk.ErrorResponse"}}
                }
            }
        },
        "/v1/auth/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Auth"],
                "summary": "Sign out",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/v1/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Auth"],
                "summary": "Current user",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/travelsdk.User"}}}
            }
        },
        "/v1/invites": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Invitations"],
                "summary": "List invitations",
                "parameters": [{"in": "query", "name": "status", "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/travelsdk.ListInvitesResponse"}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Invitations"],
                "summary": "Send an invitation",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/travelsdk.SendInviteRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/travelsdk.InviteIssued"}},
                    "403": {"description": "forbidden", "schema": {"$ref": "#/definitions/travelsdk.ErrorResponse"}},
                    "409": {"description": "duplicate_email or duplicate_invite", "schema": {"$ref": "#/definitions/travelsdk.ErrorResponse"}}
                }
            }
        },
        "/v1/invites/verify": {
            "get": {
                "tags": ["Invitations"],
                "summary": "Inspect an invitation token",
                "parameters": [{"in": "query", "name": "token", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/travelsdk.InviteDetails"}},
                    "404": {"description": "token_invalid", "schema": {"$ref": "#/definitions/travelsdk.ErrorResponse"}},
                    "410": {"description": "token_expired", "schema": {"$ref": "#/definitions/travelsdk.ErrorResponse"}}
                }
            }
        },
        "/v1/invites/complete": {
            "post": {
                "tags": ["Invitations"],
                "summary": "Complete onboarding",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/travelsdk.CompleteOnboardingRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/travelsdk.AuthResponse"}}}
            }
        },
        "/v1/invites/{id}/resend": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Invitations"],
                "summary": "Resend an invitation",
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/travelsdk.InviteIssued"}}}
            }
        },
        "/v1/invites/{id}/revoke": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Invitations"],
                "summary": "Revoke an invitation",
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/livez": {
            "get": {"tags": ["Health"], "summary": "Liveness probe", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/travelsdk.HealthResponse"}}}}
        },
        "/readyz": {
            "get": {"tags": ["Health"], "summary": "Readiness probe", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/travelsdk.HealthResponse"}}, "503": {"description": "degraded", "schema": {"$ref": "#/definitions/travelsdk.HealthResponse"}}}}
        },
        "/.well-known/jwks.json": {
            "get": {"tags": ["well-known"], "summary": "Get JWKS", "responses": {"200": {"description": "OK"}}}
        }
    },
    "definitions": {
        "travelsdk.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}, "error_description": {"type": "string"}, "fields": {"type": "object", "additionalProperties": {"type": "string"}}}
        },
        "travelsdk.HealthResponse": {
            "type": "object",
            "properties": {"status": {"type": "string"}, "uptime": {"type": "string"}, "version": {"type": "string"}, "checks": {"type": "object"}}
        },
        "travelsdk.LoginRequest": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "travelsdk.RegisterRequest": {
            "type": "object",
            "properties": {"name": {"type": "string"}, "email": {"type": "string"}, "phone": {"type": "string"}, "password": {"type": "string"}, "role": {"type": "string"}}
        },
        "travelsdk.User": {
            "type": "object",
            "properties": {"id": {"type": "string"}, "name": {"type": "string"}, "email": {"type": "string"}, "phone": {"type": "string"}, "role": {"type": "string"}, "status": {"type": "string"}, "agency_id": {"type": "string"}}
        },
        "travelsdk.AuthResponse": {
            "type": "object",
            "properties": {"token": {"type": "string"}, "token_type": {"type": "string"}, "expires_in": {"type": "integer"}, "user": {"$ref": "#/definitions/travelsdk.User"}}
        },
        "travelsdk.SendInviteRequest": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "role": {"type": "string"}, "agency_id": {"type": "string"}}
        },
        "travelsdk.Invitation": {
            "type": "object",
            "properties": {"id": {"type": "string"}, "email": {"type": "string"}, "role": {"type": "string"}, "agency_id": {"type": "string"}, "status": {"type": "string"}, "invited_by": {"type": "string"}, "invited_at": {"type": "string"}, "expires_at": {"type": "string"}, "resend_count": {"type": "integer"}}
        },
        "travelsdk.InviteIssued": {
            "type": "object",
            "properties": {"invitation": {"$ref": "#/definitions/travelsdk.Invitation"}, "token": {"type": "string"}}
        },
        "travelsdk.ListInvitesResponse": {
            "type": "object",
            "properties": {"invitations": {"type": "array", "items": {"$ref": "#/definitions/travelsdk.Invitation"}}}
        },
        "travelsdk.InviteDetails": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "role": {"type": "string"}, "agency_id": {"type": "string"}, "status": {"type": "string"}, "expires_at": {"type": "string"}}
        },
        "travelsdk.CompleteOnboardingRequest": {
            "type": "object",
            "properties": {"token": {"type": "string"}, "name": {"type": "string"}, "phone": {"type": "string"}, "password": {"type": "string"}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header", "description": "Session token. Format: \"Bearer {token}\"."}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8081",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "TripNest Platform API (development backend)",
	Description:      "Accounts, sessions and invitations for the TripNest web tier.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
