package handler

import (
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/chat.html
var templateFS embed.FS

func parsePage() (*template.Template, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/chat.html")
	if err != nil {
		return nil, fmt.Errorf("handler: parse chat page template: %w", err)
	}
	return tmpl, nil
}
