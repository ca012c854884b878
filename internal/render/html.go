package render

import (
	"bytes"
	"html/template"
	"io"
	"time"

	"github.com/couchcryptid/weather-dashboard-service/internal/domain"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
{{- if not .Ready}}
<meta http-equiv="refresh" content="5">
{{- end}}
<title>{{if .Ready}}{{.Dashboard.Title}}{{else}}Weather{{end}}</title>
<style>
body { font-family: system-ui, sans-serif; margin: 0; }
.loading { text-align: center; margin-top: 2.5rem; font-size: 1.25rem; }
.widget { max-width: 48rem; margin: 2.5rem auto; padding: 2rem; border-radius: 1.5rem; color: #fff;
  background: linear-gradient(to bottom right, #60a5fa, #c084fc, #f472b6); box-shadow: 0 25px 50px rgba(0,0,0,.25); }
.widget h1 { font-size: 2.25rem; margin: 0 0 1rem; }
.widget h2 { font-size: 1.5rem; margin: 0 0 1rem; }
.tiles { display: grid; grid-template-columns: 1fr 1fr; gap: 1.5rem; margin-bottom: 2rem; }
.tile { background: rgba(255,255,255,.2); border-radius: .75rem; padding: 1rem; text-align: center; }
.tile .label { font-size: .875rem; text-transform: uppercase; margin: 0; }
.tile .value { font-size: 1.5rem; font-weight: 600; margin: .25rem 0 0; }
.meta { font-size: .75rem; opacity: .8; margin-top: 1rem; }
.stale { color: #fde68a; }
</style>
</head>
<body>
{{- if .Ready}}
<div class="widget">
  <h1>&#x1F324; {{.Dashboard.Title}}</h1>
  <div class="tiles">
  {{- range .Dashboard.Tiles}}
    <div class="tile"><p class="label">{{.Label}}</p><p class="value">{{.Value}}</p></div>
  {{- end}}
  </div>
  <h2>{{.Dashboard.HourlyTitle}} &#x1F321;</h2>
  <div class="chart">{{.Chart}}</div>
  <p class="meta">
    {{- with .Dashboard.Location}}{{.}} &middot; {{end -}}
    Observed {{.Observed}}
    {{- if .Dashboard.Stale}} &middot; <span class="stale">data may be out of date</span>{{end -}}
  </p>
</div>
{{- else}}
<p class="loading">Loading weather...</p>
{{- end}}
</body>
</html>
`))

type pageData struct {
	Ready     bool
	Dashboard domain.Dashboard
	Chart     template.HTML
	Observed  string
}

// HTML writes the widget page. When ok is false the loading page is written
// instead; it reloads itself every five seconds until data arrives.
func HTML(w io.Writer, d domain.Dashboard, ok bool) error {
	data := pageData{Ready: ok, Dashboard: d}

	if ok {
		var svg bytes.Buffer
		if err := Chart(&svg, d.Chart); err != nil {
			return err
		}
		// go-chart output is generated from numbers and escaped labels.
		data.Chart = template.HTML(svg.String()) //nolint:gosec // trusted renderer output
		data.Observed = d.ObservedAt.Format(time.DateTime + " MST")
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}
