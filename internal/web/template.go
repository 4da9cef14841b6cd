package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/egg-timer/internal/logic"
	"github.com/sweeney/egg-timer/internal/prefs"
	"github.com/sweeney/egg-timer/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"minutes":  func(d time.Duration) int { return int(d / time.Minute) },
	"describe": prefs.Describe,
	"preset":   prefs.PresetFor,
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
{{if eq .State "RUNNING"}}<meta http-equiv="refresh" content="1">{{end}}
<title>{{.Readout}} · Egg Timer</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.readout { font-size: 4em; text-align: center; margin: 0.3em 0; }
.egg { width: 120px; height: 160px; margin: 0 auto; border-radius: 50% 50% 50% 50% / 60% 60% 40% 40%; background: #f6eedd; border: 2px solid #c9b99a; position: relative; }
.egg .yolk { position: absolute; left: 30px; top: 60px; width: 60px; height: 60px; border-radius: 50%; }
.egg-stopped .yolk { background: transparent; }
.egg-0 .yolk { background: #ffd34d; }
.egg-25 .yolk { background: #f7c531; }
.egg-50 .yolk { background: #f0b429; }
.egg-75 .yolk { background: #e8a317; }
.egg-100 .yolk { background: #f5e2a0; }
.controls { text-align: center; margin: 1em 0; }
.controls form { display: inline; }
button { font-family: monospace; font-size: 1.1em; padding: 0.3em 1em; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Egg Timer</h1>

<div class="egg egg-{{.Egg}}" title="{{.Egg}}"><div class="yolk"></div></div>
<p class="readout" id="readout">{{.Readout}}</p>

{{if .Interactive}}
<div class="controls">
<form method="post" action="/start"><button{{if not .Controls.Start}} disabled{{end}}>{{if eq .State "PAUSED"}}Resume{{else}}Start{{end}}</button></form>
<form method="post" action="/stop"><button{{if not .Controls.Stop}} disabled{{end}}>Stop</button></form>
<form method="post" action="/reset"><button{{if not .Controls.Reset}} disabled{{end}}>Reset</button></form>
</div>

<h2>Preferences</h2>
<form method="post" action="/prefs">
<select name="minutes">
{{range .Presets}}<option value="{{.Minutes}}"{{if eq .Minutes (minutes $.Selected)}} selected{{end}}>{{.Name}} ({{describe .Minutes}})</option>
{{end}}{{range .Custom}}<option value="{{.}}"{{if eq . (minutes $.Selected)}} selected{{end}}>{{describe .}}</option>
{{end}}</select>
{{if eq .State "RUNNING"}}<label><input type="checkbox" name="force" value="true"> reset running timer</label>{{end}}
<button>Save</button>
</form>
{{end}}

<h2>Timer</h2>
<table>
<tr><th>State</th><td>{{.State}}</td></tr>
<tr><th>Boil time</th><td>{{describe (minutes .Selected)}} ({{preset (minutes .Selected)}})</td></tr>
<tr><th>Boils finished</th><td>{{.Counts.Finishes}}</td></tr>
<tr><th>Started / stopped / resumed / reset</th><td>{{.Counts.Starts}} / {{.Counts.Stops}} / {{.Counts.Resumes}} / {{.Counts.Resets}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Buttons</th><td>{{if .Config.GPIO}}enabled{{else}}disabled{{end}}</td></tr>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

// customMinutes lists the slider values not already offered as presets.
func customMinutes() []int {
	var out []int
	for m := prefs.MinMinutes; m <= prefs.MaxMinutes; m++ {
		if prefs.PresetFor(m) == prefs.CustomPreset {
			out = append(out, m)
		}
	}
	return out
}

func renderHTML(w io.Writer, snap status.Snapshot, interactive bool) {
	// Snapshot has methods but the template reads plain fields.
	data := struct {
		status.Snapshot
		Uptime      time.Duration
		Readout     string
		Egg         string
		Controls    logic.Controls
		Interactive bool
		Presets     []prefs.Preset
		Custom      []int
	}{
		Snapshot:    snap,
		Uptime:      snap.Uptime(),
		Readout:     snap.Readout(),
		Egg:         snap.Egg(),
		Controls:    snap.Controls(),
		Interactive: interactive,
		Presets:     prefs.Presets,
		Custom:      customMinutes(),
	}
	indexTmpl.Execute(w, data)
}
