// Package docs holds the OpenAPI document served under /swagger. Keep it in
// step with the handler annotations in internal/server.
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
        "/login": {
            "post": {
                "description": "Verify credentials and set the session cookie",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [
                    {
                        "description": "Credentials",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/server.credentials"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "properties": {"id": {"type": "string"}, "username": {"type": "string"}}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "properties": {"error": {"type": "string"}}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "properties": {"error": {"type": "string"}}}}
                }
            }
        },
        "/logout": {
            "post": {
                "description": "Clear the session cookie",
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Logout",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "properties": {"message": {"type": "string"}}}}
                }
            }
        },
        "/postList": {
            "get": {
                "description": "The three newest posts, newest first",
                "produces": ["application/json"],
                "tags": ["posts"],
                "summary": "Latest posts",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Post"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "properties": {"error": {"type": "string"}}}}
                }
            }
        },
        "/postWrite": {
            "post": {
                "description": "Create a post with an optional cover file. The author is the session user.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["posts"],
                "summary": "Create post",
                "parameters": [
                    {"type": "string", "description": "Title", "name": "title", "in": "formData"},
                    {"type": "string", "description": "Summary", "name": "summary", "in": "formData"},
                    {"type": "string", "description": "Content (HTML)", "name": "content", "in": "formData"},
                    {"type": "file", "description": "Cover file", "name": "files", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "Created, or {error} when there is no session and STRICT_AUTH_STATUS is off", "schema": {"type": "object", "properties": {"message": {"type": "string"}}}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "properties": {"error": {"type": "string"}}}},
                    "401": {"description": "Only with STRICT_AUTH_STATUS", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "properties": {"error": {"type": "string"}}}}
                }
            }
        },
        "/profile": {
            "get": {
                "description": "Decoded claims of the session cookie",
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current session",
                "responses": {
                    "200": {"description": "Claims, or {error} when no valid session and STRICT_AUTH_STATUS is off", "schema": {"$ref": "#/definitions/service.Claims"}},
                    "401": {"description": "Only with STRICT_AUTH_STATUS", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/register": {
            "post": {
                "description": "Create a new account",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register",
                "parameters": [
                    {
                        "description": "Credentials",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/server.credentials"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"type": "object", "properties": {"_id": {"type": "string"}, "username": {"type": "string"}}}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "properties": {"message": {"type": "string"}}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "properties": {"message": {"type": "string"}}}}
                }
            }
        },
        "/uploads/{filename}": {
            "get": {
                "produces": ["application/octet-stream"],
                "tags": ["posts"],
                "summary": "Uploaded file",
                "parameters": [
                    {"type": "string", "description": "Stored filename", "name": "filename", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "models.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "models.Post": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "author": {"type": "string"},
                "content": {"type": "string"},
                "cover": {"type": "string"},
                "createdAt": {"type": "string"},
                "summary": {"type": "string"},
                "title": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "server.credentials": {
            "type": "object",
            "properties": {
                "password": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "service.Claims": {
            "type": "object",
            "properties": {
                "exp": {"type": "integer"},
                "iat": {"type": "integer"},
                "id": {"type": "string"},
                "jti": {"type": "string"},
                "username": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3000",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Blog API",
	Description:      "Blog backend with cookie sessions, posts and cover uploads",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
