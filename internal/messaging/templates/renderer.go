// Package templates renders the outbound email and chat bodies.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	"text/template"
)

//go:embed html/*.html
var htmlFS embed.FS

var htmlTemplates = htmltemplate.Must(
	htmltemplate.New("emails").
		Option("missingkey=error").
		Funcs(htmltemplate.FuncMap{"nl2br": nl2br}).
		ParseFS(htmlFS, "html/*.html"),
)

const (
	OperatorBookingEmail   = "operator_booking.html"
	CustomerConfirmedEmail = "customer_confirmed.html"
	ContactMessageEmail    = "contact_message.html"
)

// Renderer renders small text templates and the embedded HTML emails.
type Renderer struct{}

// Render compiles the provided template text with strict missing-key semantics.
func (Renderer) Render(name, tmpl string, data any) (string, error) {
	if tmpl == "" {
		return "", fmt.Errorf("templates: template text required")
	}
	t, err := template.New(name).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("templates: parse: %w", err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("templates: execute: %w", err)
	}
	return buf.String(), nil
}

// RenderHTML executes one of the embedded email templates. Values are
// HTML-escaped by html/template.
func (Renderer) RenderHTML(name string, data any) (string, error) {
	t := htmlTemplates.Lookup(name)
	if t == nil {
		return "", fmt.Errorf("templates: unknown html template %q", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("templates: execute %s: %w", name, err)
	}
	return buf.String(), nil
}

func nl2br(s string) htmltemplate.HTML {
	escaped := htmltemplate.HTMLEscapeString(s)
	return htmltemplate.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}
