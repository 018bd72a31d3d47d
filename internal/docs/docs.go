// Package docs registra el documento OpenAPI que sirve /swagger.
// Regenerar con: swag init -g cmd/api/main.go -o internal/docs
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
        "/pets": {
            "get": {"tags": ["pets"], "summary": "Catálogo de mascotas disponibles", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["pets"], "summary": "Publicar mascota", "responses": {"201": {"description": "Created"}}}
        },
        "/pets/{petID}": {
            "get": {"tags": ["pets"], "summary": "Detalle de mascota", "responses": {"200": {"description": "OK"}}},
            "patch": {"tags": ["pets"], "summary": "Actualizar mascota", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["pets"], "summary": "Borrar mascota (confirm=true)", "responses": {"200": {"description": "OK"}}}
        },
        "/adoption-requests": {
            "post": {"tags": ["adoption-requests"], "summary": "Enviar solicitud de adopción", "responses": {"201": {"description": "Created"}}}
        },
        "/adoption-requests/{requestID}/approve": {
            "post": {"tags": ["adoption-requests"], "summary": "Aprobar solicitud", "responses": {"200": {"description": "OK"}}}
        },
        "/adoption-requests/{requestID}/reject": {
            "post": {"tags": ["adoption-requests"], "summary": "Rechazar solicitud", "responses": {"200": {"description": "OK"}}}
        },
        "/adoption-requests/{requestID}/complete": {
            "post": {"tags": ["adoption-requests"], "summary": "Completar adopción", "responses": {"200": {"description": "OK"}}}
        },
        "/me/notifications": {
            "get": {"tags": ["notifications"], "summary": "Mis notificaciones", "responses": {"200": {"description": "OK"}}}
        },
        "/me/notifications/stream": {
            "get": {"tags": ["notifications"], "summary": "Stream SSE de notificaciones", "responses": {"200": {"description": "OK"}}}
        },
        "/conversations": {
            "post": {"tags": ["conversations"], "summary": "Abrir o reutilizar conversación", "responses": {"200": {"description": "OK"}}}
        },
        "/conversations/{conversationID}/messages": {
            "get": {"tags": ["conversations"], "summary": "Mensajes de la conversación", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["conversations"], "summary": "Enviar mensaje", "responses": {"201": {"description": "Created"}}}
        },
        "/shelters": {
            "get": {"tags": ["shelters"], "summary": "Listar refugios", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["shelters"], "summary": "Registrar refugio", "responses": {"201": {"description": "Created"}}}
        },
        "/me/favorites": {
            "get": {"tags": ["favorites"], "summary": "Mis favoritos", "responses": {"200": {"description": "OK"}}}
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Pet Adoption Hub API",
	Description:      "Marketplace de adopción: mascotas, refugios, solicitudes, notificaciones, favoritos y chat.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
