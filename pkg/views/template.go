package views

import (
	"html/template"
	"io"
)

// TemplateView is a View backed by an html/template.
type TemplateView struct {
	title string
	tmpl  *template.Template
}

// NewTemplateView parses body as an html/template. The template is executed
// with Data.
func NewTemplateView(title, body string) (*TemplateView, error) {
	tmpl, err := template.New(title).Parse(body)
	if err != nil {
		return nil, err
	}
	return &TemplateView{title: title, tmpl: tmpl}, nil
}

// MustTemplateView is like NewTemplateView but panics on error.
func MustTemplateView(title, body string) *TemplateView {
	v, err := NewTemplateView(title, body)
	if err != nil {
		panic(err)
	}
	return v
}

// Title implements View.
func (v *TemplateView) Title() string {
	return v.title
}

// Render implements View.
func (v *TemplateView) Render(w io.Writer, data Data) error {
	return v.tmpl.Execute(w, data)
}

const notFoundBody = `<section class="not-found">
  <h1>Page not found</h1>
  <p>Nothing is registered at <code>{{.Path}}</code>.</p>
  <p><a href="/" data-nav>Back to the main page</a></p>
</section>`

// NotFound returns the default view for unmatched paths.
func NotFound() View {
	return MustTemplateView("Not found", notFoundBody)
}
