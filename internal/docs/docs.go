// Package docs registra el documento OpenAPI que sirve /swagger/*.
package docs

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
    "securityDefinitions": {
        "Bearer": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["auth"], "summary": "Registrar usuario y company",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/registerRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/tokenResponse"}}, "400": {"$ref": "#/responses/Error"}, "409": {"$ref": "#/responses/Error"}}
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"], "summary": "Login",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/loginRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/tokenResponse"}}, "401": {"$ref": "#/responses/Error"}}
            }
        },
        "/auth/me": {
            "get": {"tags": ["auth"], "summary": "Perfil de la sesión", "security": [{"Bearer": []}], "responses": {"200": {"description": "OK"}, "401": {"$ref": "#/responses/Error"}}}
        },
        "/clients": {
            "get": {"tags": ["clients"], "summary": "Listar clientes", "security": [{"Bearer": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["clients"], "summary": "Crear cliente", "security": [{"Bearer": []}], "responses": {"201": {"description": "Created"}, "409": {"$ref": "#/responses/Error"}}}
        },
        "/clients/{clientID}": {
            "get": {"tags": ["clients"], "summary": "Obtener cliente", "security": [{"Bearer": []}], "parameters": [{"$ref": "#/parameters/clientID"}], "responses": {"200": {"description": "OK"}, "404": {"$ref": "#/responses/Error"}}},
            "patch": {"tags": ["clients"], "summary": "Actualizar cliente", "security": [{"Bearer": []}], "parameters": [{"$ref": "#/parameters/clientID"}], "responses": {"200": {"description": "OK"}, "404": {"$ref": "#/responses/Error"}}},
            "delete": {"tags": ["clients"], "summary": "Borrar cliente y sus presupuestos", "security": [{"Bearer": []}], "parameters": [{"$ref": "#/parameters/clientID"}], "responses": {"204": {"description": "No Content"}, "404": {"$ref": "#/responses/Error"}, "409": {"$ref": "#/responses/Error"}}}
        },
        "/quotes": {
            "get": {"tags": ["quotes"], "summary": "Listar presupuestos", "security": [{"Bearer": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["quotes"], "summary": "Crear presupuesto", "security": [{"Bearer": []}], "responses": {"201": {"description": "Created"}}}
        },
        "/quotes/{quoteID}": {
            "get": {"tags": ["quotes"], "summary": "Obtener presupuesto", "security": [{"Bearer": []}], "parameters": [{"$ref": "#/parameters/quoteID"}], "responses": {"200": {"description": "OK"}, "404": {"$ref": "#/responses/Error"}}},
            "patch": {"tags": ["quotes"], "summary": "Actualizar presupuesto", "security": [{"Bearer": []}], "parameters": [{"$ref": "#/parameters/quoteID"}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["quotes"], "summary": "Borrar presupuesto", "security": [{"Bearer": []}], "parameters": [{"$ref": "#/parameters/quoteID"}], "responses": {"204": {"description": "No Content"}}}
        },
        "/invoices": {
            "get": {"tags": ["invoices"], "summary": "Listar facturas", "security": [{"Bearer": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["invoices"], "summary": "Crear factura con líneas", "security": [{"Bearer": []}], "responses": {"201": {"description": "Created"}, "400": {"$ref": "#/responses/Error"}}}
        },
        "/invoices/{invoiceID}": {
            "get": {"tags": ["invoices"], "summary": "Obtener factura", "security": [{"Bearer": []}], "parameters": [{"$ref": "#/parameters/invoiceID"}], "responses": {"200": {"description": "OK"}, "404": {"$ref": "#/responses/Error"}}}
        },
        "/invoices/{invoiceID}/send": {
            "post": {"tags": ["invoices"], "summary": "draft -> sent", "security": [{"Bearer": []}], "parameters": [{"$ref": "#/parameters/invoiceID"}], "responses": {"200": {"description": "OK"}, "409": {"$ref": "#/responses/Error"}}}
        },
        "/invoices/{invoiceID}/cancel": {
            "post": {"tags": ["invoices"], "summary": "Cancelar factura", "security": [{"Bearer": []}], "parameters": [{"$ref": "#/parameters/invoiceID"}], "responses": {"200": {"description": "OK"}, "409": {"$ref": "#/responses/Error"}}}
        },
        "/invoices/{invoiceID}/public_url": {
            "get": {"tags": ["invoices"], "summary": "Link público de descarga", "security": [{"Bearer": []}], "parameters": [{"$ref": "#/parameters/invoiceID"}], "responses": {"200": {"description": "OK"}}}
        },
        "/invoices/{invoiceID}/download.pdf": {
            "get": {"tags": ["invoices"], "summary": "Descargar factura", "security": [{"Bearer": []}], "produces": ["application/pdf", "text/html"], "parameters": [{"$ref": "#/parameters/invoiceID"}, {"in": "query", "name": "format", "type": "string", "enum": ["pdf", "html"]}], "responses": {"200": {"description": "OK"}, "400": {"$ref": "#/responses/Error"}}}
        },
        "/payments/{invoiceID}": {
            "get": {"tags": ["payments"], "summary": "Listar pagos", "security": [{"Bearer": []}], "parameters": [{"$ref": "#/parameters/invoiceID"}], "responses": {"200": {"description": "OK"}, "404": {"$ref": "#/responses/Error"}}},
            "post": {"tags": ["payments"], "summary": "Registrar pago y conciliar", "security": [{"Bearer": []}], "parameters": [{"$ref": "#/parameters/invoiceID"}], "responses": {"201": {"description": "Created"}, "400": {"$ref": "#/responses/Error"}, "404": {"$ref": "#/responses/Error"}}}
        },
        "/reports/refresh": {
            "post": {"tags": ["reports"], "summary": "Refrescar reportes", "security": [{"Bearer": []}], "responses": {"202": {"description": "Accepted"}}}
        },
        "/reports/status": {
            "get": {"tags": ["reports"], "summary": "Presupuestos por status", "security": [{"Bearer": []}], "parameters": [{"in": "query", "name": "refresh", "type": "boolean"}], "responses": {"200": {"description": "OK"}}}
        },
        "/reports/monthly": {
            "get": {"tags": ["reports"], "summary": "Revenue mensual", "security": [{"Bearer": []}], "parameters": [{"in": "query", "name": "months", "type": "integer"}, {"in": "query", "name": "refresh", "type": "boolean"}], "responses": {"200": {"description": "OK"}, "400": {"$ref": "#/responses/Error"}}}
        },
        "/public/{invoiceID}/download.pdf": {
            "get": {
                "tags": ["public"], "summary": "Descarga anónima con capability token",
                "parameters": [{"$ref": "#/parameters/invoiceID"}, {"in": "query", "name": "token", "type": "string", "required": true}, {"in": "query", "name": "format", "type": "string", "enum": ["pdf", "html", "json"]}],
                "produces": ["application/pdf", "text/html", "application/json"],
                "responses": {"200": {"description": "OK"}, "400": {"$ref": "#/responses/Error"}, "401": {"$ref": "#/responses/Error"}}
            }
        }
    },
    "parameters": {
        "clientID": {"in": "path", "name": "clientID", "type": "integer", "required": true},
        "quoteID": {"in": "path", "name": "quoteID", "type": "integer", "required": true},
        "invoiceID": {"in": "path", "name": "invoiceID", "type": "integer", "required": true}
    },
    "responses": {
        "Error": {"description": "Error", "schema": {"$ref": "#/definitions/errorBody"}}
    },
    "definitions": {
        "errorBody": {"type": "object", "properties": {"error": {"type": "string"}}},
        "registerRequest": {"type": "object", "properties": {"email": {"type": "string"}, "password": {"type": "string"}, "company_name": {"type": "string"}}},
        "loginRequest": {"type": "object", "properties": {"email": {"type": "string"}, "password": {"type": "string"}}},
        "tokenResponse": {"type": "object", "properties": {"access_token": {"type": "string"}, "token_type": {"type": "string"}, "expires_at": {"type": "string"}}}
    }
}`

// SwaggerInfo lo ajusta main (host) antes de servir.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Invoicing API",
	Description:      "Multi-tenant quotes, invoices and payments.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
