// Package swagger registers the OpenAPI document served at /api/docs.
// Regenerate with: swag init -g internal/api/main_annotations.go -o docs/swagger
package swagger

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
        "/categories": {
            "get": {
                "description": "Categories that have at least one published event, ordered by name. Counts may lag writes by the cache TTL.",
                "produces": ["application/json"],
                "tags": ["Categories"],
                "summary": "List category facets",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.CategoryListResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/events": {
            "get": {
                "description": "Upcoming published events in start order. filters is a JSON object such as {\"categories\":[\"Music\",\"Tech\"]}; an event matches when it carries any listed category. A malformed filters value is ignored.",
                "produces": ["application/json"],
                "tags": ["Events"],
                "summary": "List events",
                "parameters": [
                    {"type": "string", "description": "Free-text search over title, description and venue", "name": "q", "in": "query"},
                    {"type": "string", "description": "JSON filter object", "name": "filters", "in": "query"},
                    {"type": "integer", "default": 1, "description": "1-based page number", "name": "page", "in": "query"},
                    {"maximum": 100, "type": "integer", "default": 12, "description": "Page size", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.EventListResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/events/{slug}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Events"],
                "summary": "Get an event",
                "parameters": [
                    {"type": "string", "description": "Event slug", "name": "slug", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.EventResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.CategoryCountResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "name": {"type": "string"},
                "slug": {"type": "string"}
            }
        },
        "api.CategoryListResponse": {
            "type": "object",
            "properties": {
                "categories": {"type": "array", "items": {"$ref": "#/definitions/api.CategoryCountResponse"}}
            }
        },
        "api.CategoryResponse": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "slug": {"type": "string"}
            }
        },
        "api.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "api.EventListResponse": {
            "type": "object",
            "properties": {
                "events": {"type": "array", "items": {"$ref": "#/definitions/api.EventResponse"}},
                "links": {"$ref": "#/definitions/api.PageLinks"},
                "meta": {"$ref": "#/definitions/api.PageMeta"}
            }
        },
        "api.EventResponse": {
            "type": "object",
            "properties": {
                "capacity": {"type": "integer"},
                "categories": {"type": "array", "items": {"$ref": "#/definitions/api.CategoryResponse"}},
                "description": {"type": "string"},
                "id": {"type": "string"},
                "price_cents": {"type": "integer"},
                "remaining": {"type": "integer"},
                "slug": {"type": "string"},
                "starts_at": {"type": "string"},
                "title": {"type": "string"},
                "venue": {"type": "string"}
            }
        },
        "api.PageLinks": {
            "type": "object",
            "properties": {
                "next": {"type": "string"},
                "prev": {"type": "string"},
                "self": {"type": "string"}
            }
        },
        "api.PageMeta": {
            "type": "object",
            "properties": {
                "limit": {"type": "integer"},
                "page": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "joe-events API",
	Description:      "Published events, their categories and ticket availability. Listings accept the same q, filters, page and limit parameters as the /events page.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
