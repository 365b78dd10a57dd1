// Package view holds the server-rendered templates.
package view

import (
	"embed"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

//go:embed layouts notes auth
var templates embed.FS

// NewEngine returns the template engine for fiber.Config.Views.
func NewEngine() *html.Engine {
	return html.NewFileSystem(http.FS(templates), ".html")
}
