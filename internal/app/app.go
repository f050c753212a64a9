// Package app defines the application served by the viewrouter command:
// its default route table and the views those routes name.
package app

import (
	"html/template"
	"io"

	"github.com/nerviz/viewrouter/pkg/router"
	"github.com/nerviz/viewrouter/pkg/views"
)

// View handles.
const (
	MainView   router.ViewHandle = "main"
	ConfigView router.ViewHandle = "config"
)

// Routes returns the default route table.
func Routes() router.RouteTable {
	return router.RouteTable{
		{Path: "/", View: MainView},
		{Path: "/config", View: ConfigView},
	}
}

// Info describes the running application for the config view.
type Info struct {
	Name    string
	History string
	Routes  router.RouteTable
}

// Views returns a registry holding the application's views.
func Views(info Info) *views.Registry {
	reg := views.NewRegistry()
	reg.MustRegister(MainView, views.MustTemplateView("Home", mainBody))
	reg.MustRegister(ConfigView, &configView{info: info, tmpl: template.Must(template.New("config").Parse(configBody))})
	return reg
}

const mainBody = `<section class="main">
  <h1>Home</h1>
  <p>You are at <code>{{.Path}}</code>.</p>
  <nav><a href="/config" data-nav>Configuration</a></nav>
</section>`

const configBody = `<section class="config">
  <h1>Configuration</h1>
  <dl>
    <dt>Application</dt><dd>{{.Info.Name}}</dd>
    <dt>History mode</dt><dd>{{.Info.History}}</dd>
  </dl>
  <table>
    <thead><tr><th>#</th><th>Pattern</th><th>View</th></tr></thead>
    <tbody>
    {{- range $i, $r := .Info.Routes}}
      <tr><td>{{$i}}</td><td><code>{{$r.Path}}</code></td><td>{{$r.View}}</td></tr>
    {{- end}}
    </tbody>
  </table>
  <nav><a href="/" data-nav>Home</a></nav>
</section>`

// configView renders the route table it was built with.
type configView struct {
	info Info
	tmpl *template.Template
}

func (v *configView) Title() string {
	return "Configuration"
}

func (v *configView) Render(w io.Writer, data views.Data) error {
	return v.tmpl.Execute(w, struct {
		views.Data
		Info Info
	}{data, v.info})
}
