package views

import (
	"embed"
	"html/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.New("views").
		Funcs(template.FuncMap{"emptyCartText": func() string { return EmptyCartText }}).
		ParseFS(templateFS, "templates/*.tmpl")
}
