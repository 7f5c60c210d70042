package pages

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// Renderer holds the parsed, immutable template set. Build once with
// LoadRenderer at startup; safe for concurrent use thereafter, matching the
// "immutable once-initialised value held through a shared pointer" pattern
// used for the taxonomy tree and rule table.
type Renderer struct {
	tmpl *template.Template
}

// LoadRenderer parses the embedded template set.
func LoadRenderer() (*Renderer, error) {
	t, err := template.New("layout.html.tmpl").Funcs(template.FuncMap{
		"fmtFloat": func(f float64) string { return fmt.Sprintf("%.2f", f) },
	}).ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("pages: parse embedded templates: %w", err)
	}
	return &Renderer{tmpl: t}, nil
}

// render executes the named template into bytes.
func (r *Renderer) render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("pages: render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
