// Package docs registers the OpenAPI document served at /swagger.
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
        "/public/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Public"],
                "summary": "Liveness check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.StatusResponse"}}
                }
            }
        },
        "/public/info": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Public"],
                "summary": "API name and version",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.InfoResponse"}}
                }
            }
        },
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Authentication"],
                "summary": "Register an API user",
                "parameters": [
                    {"description": "Registration request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "User registered", "schema": {"$ref": "#/definitions/dto.UserResponse"}},
                    "400": {"description": "Invalid request payload", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "409": {"description": "Email already registered", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "description": "Returns a signed HS256 JWT to send as \"Authorization: Bearer <token>\" on customer endpoints.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Authentication"],
                "summary": "Exchange credentials for a bearer token",
                "parameters": [
                    {"description": "Login request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Token issued", "schema": {"$ref": "#/definitions/dto.TokenResponse"}},
                    "400": {"description": "Invalid request payload", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "401": {"description": "Invalid email or password", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/customers": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns every customer ordered by id, including the computed loan eligibility and maximum loan amount.",
                "produces": ["application/json"],
                "tags": ["Customers"],
                "summary": "List customers",
                "responses": {
                    "200": {"description": "List of customers", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.CustomerResponse"}}},
                    "401": {"description": "Missing or invalid bearer token", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Creates a customer. loanEligible and maxLoanAmount are computed by the server from salary, credit score and employment status.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Customers"],
                "summary": "Create a new customer",
                "parameters": [
                    {"description": "Customer creation request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CustomerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Customer successfully created", "schema": {"$ref": "#/definitions/dto.CustomerResponse"}},
                    "400": {"description": "Invalid request payload", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "409": {"description": "Username or email already registered", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal server error during creation", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/customers/{customerID}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Customers"],
                "summary": "Retrieve customer details",
                "parameters": [
                    {"minimum": 1, "type": "integer", "description": "Customer ID", "name": "customerID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Customer details retrieved", "schema": {"$ref": "#/definitions/dto.CustomerResponse"}},
                    "400": {"description": "Invalid customer ID format", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Customer not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Overwrites every editable field with the request body (absent optional fields are cleared) and recomputes the loan assessment.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Customers"],
                "summary": "Replace a customer",
                "parameters": [
                    {"minimum": 1, "type": "integer", "description": "Customer ID", "name": "customerID", "in": "path", "required": true},
                    {"description": "Customer update request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CustomerRequest"}}
                ],
                "responses": {
                    "200": {"description": "Customer updated", "schema": {"$ref": "#/definitions/dto.CustomerResponse"}},
                    "400": {"description": "Invalid request payload or ID", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Customer not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "409": {"description": "Username or email already registered", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Customers"],
                "summary": "Delete a customer",
                "parameters": [
                    {"minimum": 1, "type": "integer", "description": "Customer ID", "name": "customerID", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "Customer deleted"},
                    "400": {"description": "Invalid customer ID format", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Customer not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.CustomerRequest": {
            "type": "object",
            "required": ["email", "name", "surname", "username"],
            "properties": {
                "address": {"type": "string", "maxLength": 255},
                "creditScore": {"type": "integer", "maximum": 1000, "minimum": 0, "example": 720},
                "email": {"type": "string", "maxLength": 255},
                "employmentStatus": {"type": "string", "maxLength": 50, "example": "Employed"},
                "monthlySalary": {"type": "string", "example": "2500.00"},
                "name": {"type": "string", "maxLength": 100},
                "phone": {"type": "string", "maxLength": 30},
                "surname": {"type": "string", "maxLength": 100},
                "username": {"type": "string", "maxLength": 50}
            }
        },
        "dto.CustomerResponse": {
            "type": "object",
            "properties": {
                "address": {"type": "string"},
                "createdAt": {"type": "string"},
                "creditScore": {"type": "integer"},
                "creditTier": {"type": "string", "example": "GOOD"},
                "customerId": {"type": "integer"},
                "email": {"type": "string"},
                "employmentStatus": {"type": "string"},
                "loanEligible": {"type": "boolean"},
                "maxLoanAmount": {"type": "string", "example": "120000.00"},
                "monthlySalary": {"type": "string", "example": "2500.00"},
                "name": {"type": "string"},
                "phone": {"type": "string"},
                "surname": {"type": "string"},
                "updatedAt": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "dto.ErrorDetail": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/dto.ErrorDetail"}
            }
        },
        "dto.InfoResponse": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "example": "Customer Management API"},
                "version": {"type": "string", "example": "v1.0"}
            }
        },
        "dto.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "dto.RegisterRequest": {
            "type": "object",
            "required": ["email", "name", "password"],
            "properties": {
                "email": {"type": "string", "maxLength": 255},
                "name": {"type": "string", "maxLength": 100},
                "password": {"type": "string", "maxLength": 72}
            }
        },
        "dto.StatusResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "Server is running!"}
            }
        },
        "dto.TokenResponse": {
            "type": "object",
            "properties": {
                "expiresAt": {"type": "string"},
                "token": {"type": "string"},
                "tokenType": {"type": "string", "example": "Bearer"}
            }
        },
        "dto.UserResponse": {
            "type": "object",
            "properties": {
                "createdAt": {"type": "string"},
                "email": {"type": "string"},
                "id": {"type": "integer"},
                "name": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
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
	Schemes:          []string{},
	Title:            "Customer Management API",
	Description:      "Customer records with server-computed loan eligibility and maximum loan amount.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
