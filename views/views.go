// Package views holds the HTML templates and static assets, embedded so the
// server binary runs from any working directory.
package views

import (
	"embed"
	"fmt"
	"net/http"

	"github.com/gofiber/template/html/v3"

	"kisansense/internal/models"
)

//go:embed *.html layouts partials admin static
var FS embed.FS

// NewEngine returns the template engine with the helpers templates use.
func NewEngine() *html.Engine {
	engine := html.NewFileSystem(http.FS(FS), ".html")
	engine.AddFunc("humanize", models.HumanizeLabel)
	engine.AddFunc("percent", func(score float64) string {
		return fmt.Sprintf("%.0f%%", score*100)
	})
	engine.AddFunc("celsius", func(t float64) string {
		return fmt.Sprintf("%.1f°C", t)
	})
	return engine
}
