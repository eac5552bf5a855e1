// Package docs holds the OpenAPI description served under /swagger.
// Regenerate with `swag init -g cmd/api/main.go` after changing handler annotations.
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
        "/pick": {
            "get": {
                "produces": ["application/json"],
                "tags": ["pick"],
                "summary": "Pick one random open restaurant near a position",
                "parameters": [
                    {"type": "number", "description": "Latitude", "name": "lat", "in": "query", "required": true},
                    {"type": "number", "description": "Longitude", "name": "lon", "in": "query", "required": true},
                    {"type": "string", "description": "Search term", "name": "term", "in": "query"},
                    {"type": "string", "description": "Price tier: $, $$, $$$ or any", "name": "price", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/view.View"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/sessions": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Start a pick session",
                "parameters": [
                    {"description": "Location permission and position", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.CreateSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/view.View"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/sessions/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Show the current screen state of a session",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/view.View"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/sessions/{id}/pick": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Search and pick one random restaurant",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true},
                    {"description": "Search filters", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/handler.PickRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/view.View"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "handler.CreateSessionRequest": {
            "type": "object",
            "properties": {
                "latitude": {"type": "number", "example": 37.7749},
                "longitude": {"type": "number", "example": -122.4194},
                "permission": {"type": "string", "example": "granted"}
            }
        },
        "handler.PickRequest": {
            "type": "object",
            "properties": {
                "price": {"type": "string", "example": "$$"},
                "term": {"type": "string", "example": "tacos"}
            }
        },
        "models.SearchFilters": {
            "type": "object",
            "properties": {
                "price": {"type": "string"},
                "term": {"type": "string"}
            }
        },
        "view.Actions": {
            "type": "object",
            "properties": {
                "call": {"type": "string"},
                "directions": {"type": "string"},
                "provider": {"type": "string"}
            }
        },
        "view.Card": {
            "type": "object",
            "properties": {
                "actions": {"$ref": "#/definitions/view.Actions"},
                "address": {"type": "string"},
                "distance": {"type": "string"},
                "image": {"type": "string"},
                "name": {"type": "string"},
                "phone": {"type": "string"},
                "price": {"type": "string"},
                "rating": {"type": "number"},
                "reviews": {"type": "integer"}
            }
        },
        "view.View": {
            "type": "object",
            "properties": {
                "business": {"$ref": "#/definitions/view.Card"},
                "can_pick": {"type": "boolean"},
                "filters": {"$ref": "#/definitions/models.SearchFilters"},
                "kind": {"type": "string", "enum": ["blocked", "idle", "loading", "error", "empty", "business"]},
                "message": {"type": "string"},
                "session_id": {"type": "string"},
                "total": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "U-Pick API",
	Description:      "Picks one random open restaurant near you.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
