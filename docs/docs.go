// Package docs registers the OpenAPI document served under /swagger.
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
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "security": [{"BearerAuth": []}],
    "paths": {
        "/inventory": {
            "get": {
                "tags": ["inventory"],
                "summary": "Current sheets, active sheet and undo availability",
                "responses": {"200": {"description": "OK"}, "403": {"$ref": "#/responses/NoTenant"}}
            }
        },
        "/inventory/add": {
            "post": {
                "tags": ["inventory"],
                "summary": "Add to an item's quantity, creating it in the active sheet if missing",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/QuantityRequest"}}],
                "responses": {"200": {"description": "Updated"}, "201": {"description": "Created"}, "400": {"$ref": "#/responses/Validation"}, "409": {"description": "No active sheet"}}
            }
        },
        "/inventory/set": {
            "post": {
                "tags": ["inventory"],
                "summary": "Set an item's quantity",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/QuantityRequest"}}],
                "responses": {"200": {"description": "Updated"}, "201": {"description": "Created"}, "400": {"$ref": "#/responses/Validation"}}
            }
        },
        "/inventory/corrections": {
            "post": {
                "tags": ["inventory"],
                "summary": "Record an entrada or saida with optional threshold and unit cost",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/CorrectionRequest"}}],
                "responses": {"200": {"description": "Updated"}, "201": {"description": "Created"}, "400": {"$ref": "#/responses/Validation"}}
            }
        },
        "/inventory/undo": {
            "post": {
                "tags": ["inventory"],
                "summary": "Revert the last mutation of the active sheet",
                "responses": {"200": {"description": "Reverted"}, "409": {"description": "Nothing to undo"}}
            }
        },
        "/inventory/find": {
            "get": {
                "tags": ["inventory"],
                "summary": "Resolve an item by exact, normalized or fuzzy name",
                "parameters": [
                    {"in": "query", "name": "name", "type": "string", "required": true},
                    {"in": "query", "name": "scope", "type": "string", "enum": ["active", "all"]}
                ],
                "responses": {"200": {"description": "Match"}, "404": {"description": "No match"}}
            }
        },
        "/inventory/low-stock": {
            "get": {"tags": ["inventory"], "summary": "Items at or below their minimum", "responses": {"200": {"description": "OK"}}}
        },
        "/inventory/commands": {
            "post": {
                "tags": ["inventory"],
                "summary": "Run quick text commands, one per line",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/CommandsRequest"}}],
                "responses": {"200": {"description": "Outcomes"}, "429": {"description": "Rate limited"}}
            }
        },
        "/inventory/refresh": {
            "post": {"tags": ["inventory"], "summary": "Merge the remote snapshot into memory", "responses": {"200": {"description": "OK"}}}
        },
        "/inventory/log": {
            "get": {
                "tags": ["inventory"],
                "summary": "Update log, local or remote",
                "parameters": [
                    {"in": "query", "name": "source", "type": "string", "enum": ["local", "remote"]},
                    {"in": "query", "name": "item", "type": "string"},
                    {"in": "query", "name": "limit", "type": "integer"},
                    {"in": "query", "name": "offset", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/inventory/import": {
            "post": {
                "tags": ["transfer"],
                "summary": "Import an xlsx workbook, one tab per sheet",
                "consumes": ["multipart/form-data"],
                "parameters": [{"in": "formData", "name": "file", "type": "file", "required": true}],
                "responses": {"200": {"description": "Imported"}, "400": {"description": "Unreadable workbook"}, "413": {"description": "Too large"}}
            }
        },
        "/inventory/export": {
            "get": {
                "tags": ["transfer"],
                "summary": "Export the inventory as xlsx",
                "parameters": [{"in": "query", "name": "download", "type": "boolean"}],
                "responses": {"200": {"description": "Presigned link or workbook"}, "503": {"description": "Storage disabled"}}
            }
        },
        "/sheets": {
            "get": {"tags": ["sheets"], "summary": "List sheets", "responses": {"200": {"description": "OK"}}},
            "post": {
                "tags": ["sheets"],
                "summary": "Create a sheet",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/SheetRequest"}}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/sheets/active": {
            "put": {
                "tags": ["sheets"],
                "summary": "Select the active sheet",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/SheetRequest"}}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Unknown sheet"}}
            }
        },
        "/recipes": {
            "get": {"tags": ["recipes"], "summary": "List recipes", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["recipes"], "summary": "Create a recipe", "responses": {"201": {"description": "Created"}}}
        },
        "/recipes/{id}": {
            "get": {"tags": ["recipes"], "summary": "Get a recipe", "parameters": [{"$ref": "#/parameters/ID"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
            "put": {"tags": ["recipes"], "summary": "Replace a recipe", "parameters": [{"$ref": "#/parameters/ID"}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["recipes"], "summary": "Delete a recipe", "parameters": [{"$ref": "#/parameters/ID"}], "responses": {"204": {"description": "Deleted"}}}
        },
        "/recipes/{id}/cost": {
            "get": {"tags": ["recipes"], "summary": "Cost a recipe from current unit costs", "parameters": [{"$ref": "#/parameters/ID"}], "responses": {"200": {"description": "OK"}}}
        },
        "/recipes/{id}/produce": {
            "post": {"tags": ["recipes"], "summary": "Deduct ingredients for a number of portions", "parameters": [{"$ref": "#/parameters/ID"}], "responses": {"201": {"description": "Produced"}, "422": {"description": "Ingredient missing"}}}
        },
        "/recipes/{id}/productions": {
            "get": {"tags": ["recipes"], "summary": "Production history", "parameters": [{"$ref": "#/parameters/ID"}], "responses": {"200": {"description": "OK"}}}
        },
        "/purchases": {
            "get": {
                "tags": ["purchases"],
                "summary": "List purchases in a date window",
                "parameters": [
                    {"in": "query", "name": "from", "type": "string", "format": "date"},
                    {"in": "query", "name": "to", "type": "string", "format": "date"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {"tags": ["purchases"], "summary": "Register a purchase and add its lines to stock", "responses": {"201": {"description": "Registered"}}}
        },
        "/purchases/{id}": {
            "get": {"tags": ["purchases"], "summary": "Get a purchase", "parameters": [{"$ref": "#/parameters/ID"}], "responses": {"200": {"description": "OK"}}}
        },
        "/checklists": {
            "get": {
                "tags": ["checklists"],
                "summary": "Checklists of a day, or the templates",
                "parameters": [
                    {"in": "query", "name": "day", "type": "string", "format": "date"},
                    {"in": "query", "name": "templates", "type": "boolean"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {"tags": ["checklists"], "summary": "Create a checklist or template", "responses": {"201": {"description": "Created"}}}
        },
        "/checklists/{id}": {
            "get": {"tags": ["checklists"], "summary": "Get a checklist", "parameters": [{"$ref": "#/parameters/ID"}], "responses": {"200": {"description": "OK"}}}
        },
        "/checklists/items/{id}": {
            "put": {"tags": ["checklists"], "summary": "Mark an item done or not done", "parameters": [{"$ref": "#/parameters/ID"}], "responses": {"200": {"description": "OK"}}}
        },
        "/utensils": {
            "get": {"tags": ["utensils"], "summary": "List utensils", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["utensils"], "summary": "Create a utensil", "responses": {"201": {"description": "Created"}}}
        },
        "/utensils/{id}": {
            "get": {"tags": ["utensils"], "summary": "Get a utensil", "parameters": [{"$ref": "#/parameters/ID"}], "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["utensils"], "summary": "Update a utensil", "parameters": [{"$ref": "#/parameters/ID"}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["utensils"], "summary": "Delete a utensil", "parameters": [{"$ref": "#/parameters/ID"}], "responses": {"204": {"description": "Deleted"}}}
        },
        "/realtime": {
            "get": {
                "tags": ["realtime"],
                "summary": "WebSocket stream of the tenant's item changes",
                "parameters": [{"in": "query", "name": "access_token", "type": "string"}],
                "responses": {"101": {"description": "Switching protocols"}}
            }
        },
        "/admin/tenants": {
            "get": {"tags": ["admin"], "summary": "List tenants", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["admin"], "summary": "Create a tenant", "responses": {"201": {"description": "Created"}}}
        },
        "/admin/tenants/{code}": {
            "get": {"tags": ["admin"], "summary": "Get a tenant", "parameters": [{"in": "path", "name": "code", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/admin/tenants/{code}/status": {
            "put": {"tags": ["admin"], "summary": "Activate or suspend a tenant", "parameters": [{"in": "path", "name": "code", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/admin/outbox": {
            "get": {"tags": ["admin"], "summary": "Outbox depth and dead letters", "responses": {"200": {"description": "OK"}}}
        },
        "/admin/outbox/drain": {
            "post": {"tags": ["admin"], "summary": "Replay due outbox envelopes now", "responses": {"200": {"description": "OK"}}}
        },
        "/admin/jobs": {
            "get": {"tags": ["admin"], "summary": "Scheduled background jobs", "responses": {"200": {"description": "OK"}}}
        }
    },
    "parameters": {
        "ID": {"in": "path", "name": "id", "type": "string", "format": "uuid", "required": true}
    },
    "responses": {
        "Validation": {"description": "Validation error", "schema": {"$ref": "#/definitions/ErrorResponse"}},
        "NoTenant": {"description": "No tenant on the token", "schema": {"$ref": "#/definitions/ErrorResponse"}}
    },
    "definitions": {
        "QuantityRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {"name": {"type": "string"}, "quantity": {"type": "number"}}
        },
        "CorrectionRequest": {
            "type": "object",
            "required": ["name", "direction"],
            "properties": {
                "name": {"type": "string"},
                "quantity": {"type": "number", "minimum": 0},
                "direction": {"type": "string", "enum": ["entrada", "saida"]},
                "min_threshold": {"type": "number"},
                "unit_cost": {"type": "number"},
                "reason": {"type": "string"},
                "sheet": {"type": "string"},
                "unit": {"type": "string"}
            }
        },
        "CommandsRequest": {
            "type": "object",
            "required": ["text"],
            "properties": {"text": {"type": "string"}, "dry_run": {"type": "boolean"}}
        },
        "SheetRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {"name": {"type": "string"}}
        },
        "ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string"},
                        "message": {"type": "string"},
                        "details": {"type": "object", "additionalProperties": {"type": "string"}}
                    }
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "kitchenstock API",
	Description:      "Multi-tenant kitchen inventory: sheets, corrections, recipes, purchases and checklists.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
