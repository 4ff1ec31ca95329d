// Package docs registers the OpenAPI description served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/rooms": {
            "get": {"security": [{"ApiKeyAuth": []}], "tags": ["Rooms"], "summary": "List owned and joined rooms", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"ApiKeyAuth": []}], "tags": ["Rooms"], "summary": "Create a room", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/rooms/join": {
            "post": {"security": [{"ApiKeyAuth": []}], "tags": ["Rooms"], "summary": "Join a room by code", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}}
        },
        "/rooms/{roomID}": {
            "get": {"security": [{"ApiKeyAuth": []}], "tags": ["Rooms"], "summary": "Get a room", "parameters": [{"type": "string", "name": "roomID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}
        },
        "/rooms/{roomID}/members": {
            "get": {"security": [{"ApiKeyAuth": []}], "tags": ["Rooms"], "summary": "List room members", "parameters": [{"type": "string", "name": "roomID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/rooms/{roomID}/leaderboard": {
            "get": {"security": [{"ApiKeyAuth": []}], "tags": ["Rooms"], "summary": "Room leaderboard", "parameters": [{"type": "string", "name": "roomID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}
        },
        "/rooms/{roomID}/documents": {
            "get": {"security": [{"ApiKeyAuth": []}], "tags": ["Documents"], "summary": "List documents", "parameters": [{"type": "string", "name": "roomID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"ApiKeyAuth": []}], "tags": ["Documents"], "summary": "Upload a text document", "parameters": [{"type": "string", "name": "roomID", "in": "path", "required": true}], "responses": {"201": {"description": "Created"}}}
        },
        "/rooms/{roomID}/quizzes": {
            "get": {"security": [{"ApiKeyAuth": []}], "tags": ["Quizzes"], "summary": "List quizzes", "parameters": [{"type": "string", "name": "roomID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"ApiKeyAuth": []}], "tags": ["Quizzes"], "summary": "Generate and store a quiz from a document", "parameters": [{"type": "string", "name": "roomID", "in": "path", "required": true}], "responses": {"201": {"description": "Created"}, "402": {"description": "Payment Required"}, "429": {"description": "Too Many Requests"}, "502": {"description": "Bad Gateway"}}}
        },
        "/quizzes/{quizID}": {
            "get": {"security": [{"ApiKeyAuth": []}], "tags": ["Quizzes"], "summary": "Get a quiz without answers", "parameters": [{"type": "string", "name": "quizID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/quizzes/{quizID}/attempts": {
            "post": {"security": [{"ApiKeyAuth": []}], "tags": ["Attempts"], "summary": "Start or resume an attempt", "parameters": [{"type": "string", "name": "quizID", "in": "path", "required": true}], "responses": {"200": {"description": "Resumed"}, "201": {"description": "Created"}, "409": {"description": "Conflict"}}}
        },
        "/quizzes/{quizID}/active-users": {
            "get": {"security": [{"ApiKeyAuth": []}], "tags": ["Attempts"], "summary": "Other users active on the quiz", "parameters": [{"type": "string", "name": "quizID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/attempts/{attemptID}": {
            "get": {"security": [{"ApiKeyAuth": []}], "tags": ["Attempts"], "summary": "Attempt state and deadline", "parameters": [{"type": "string", "name": "attemptID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/attempts/{attemptID}/answers": {
            "put": {"security": [{"ApiKeyAuth": []}], "tags": ["Attempts"], "summary": "Select an answer", "parameters": [{"type": "string", "name": "attemptID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}
        },
        "/attempts/{attemptID}/submit": {
            "post": {"security": [{"ApiKeyAuth": []}], "tags": ["Attempts"], "summary": "Submit an attempt", "parameters": [{"type": "string", "name": "attemptID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/attempts/{attemptID}/timeup": {
            "post": {"security": [{"ApiKeyAuth": []}], "tags": ["Attempts"], "summary": "Submit on timer expiry", "parameters": [{"type": "string", "name": "attemptID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/attempts/{attemptID}/review": {
            "get": {"security": [{"ApiKeyAuth": []}], "tags": ["Attempts"], "summary": "Per-question review", "parameters": [{"type": "string", "name": "attemptID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}
        },
        "/questions/{questionID}/bookmark": {
            "put": {"security": [{"ApiKeyAuth": []}], "tags": ["Users"], "summary": "Bookmark a question", "parameters": [{"type": "string", "name": "questionID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"ApiKeyAuth": []}], "tags": ["Users"], "summary": "Remove a bookmark", "parameters": [{"type": "string", "name": "questionID", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}}
        },
        "/users/me": {
            "get": {"security": [{"ApiKeyAuth": []}], "tags": ["Users"], "summary": "Profile with level progress", "responses": {"200": {"description": "OK"}}}
        },
        "/users/me/achievements": {
            "get": {"security": [{"ApiKeyAuth": []}], "tags": ["Users"], "summary": "Achievement catalog with earned dates", "responses": {"200": {"description": "OK"}}}
        },
        "/users/me/activity": {
            "get": {"security": [{"ApiKeyAuth": []}], "tags": ["Users"], "summary": "Daily activity", "parameters": [{"type": "integer", "name": "days", "in": "query"}], "responses": {"200": {"description": "OK"}}}
        },
        "/users/me/attempts": {
            "get": {"security": [{"ApiKeyAuth": []}], "tags": ["Users"], "summary": "Attempt history", "parameters": [{"type": "integer", "name": "limit", "in": "query"}], "responses": {"200": {"description": "OK"}}}
        },
        "/users/me/preferences": {
            "get": {"security": [{"ApiKeyAuth": []}], "tags": ["Users"], "summary": "Get preferences", "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"ApiKeyAuth": []}], "tags": ["Users"], "summary": "Update preferences", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/users/me/bookmarks": {
            "get": {"security": [{"ApiKeyAuth": []}], "tags": ["Users"], "summary": "List bookmarks", "responses": {"200": {"description": "OK"}}}
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {
            "description": "Type 'Bearer YOUR_JWT_TOKEN' to authorize.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{"http", "https"},
	Title:            "Synapse API",
	Description:      "Collaborative study rooms with AI generated quizzes.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
