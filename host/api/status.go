package api

import (
	"html/template"
	"net/http"

	"github.com/gorilla/csrf"

	"ap1key/core"
	"ap1key/host/bench"
)

type statusTemplateData struct {
	bench.Status
	Hosts     []statusTemplateHost
	CSRFField template.HTML
	Done      bool
}

type statusTemplateHost struct {
	Slot      int
	Saved     bool
	Connected bool
}

func (s *Server) statusPage(w http.ResponseWriter, r *http.Request) {
	snap := s.rig.Snapshot()

	hosts := make([]statusTemplateHost, 0, core.MaxHostSlot)
	for slot := 1; slot <= core.MaxHostSlot; slot++ {
		hosts = append(hosts, statusTemplateHost{
			Slot:      slot,
			Saved:     snap.Bluetooth.HasSavedHost(uint8(slot)),
			Connected: int(snap.Bluetooth.ConnectedHost) == slot,
		})
	}

	data := &statusTemplateData{
		Status:    snap,
		Hosts:     hosts,
		CSRFField: csrf.TemplateField(r),
		Done:      r.URL.Query().Get("pushed") != "",
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := statusTemplate.Execute(w, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) statusPush(w http.ResponseWriter, r *http.Request) {
	if err := s.rig.PushBluetoothTheme(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	http.Redirect(w, r, "/status/?pushed=1", http.StatusSeeOther)
}

var statusTemplate = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>LED link bench</title>
  <style>
    body { font-family: -apple-system, "Segoe UI", Arial, sans-serif; }
    td { padding: 2px 12px; }
    .saved { color: #2a7d2a; }
    pre { background: #f4f4f4; padding: 8px; }
  </style>
</head>
<body>
  <h1>LED link bench</h1>
  <table>
    <tr><td>Device</td><td>{{.Device}}</td></tr>
    <tr><td>Link</td><td>{{if .Busy}}busy{{else}}idle{{end}}, awaiting {{.Stage}}</td></tr>
    <tr><td>Faults</td><td>{{.Faults}}</td></tr>
    <tr><td>Bluetooth mode</td><td>{{.Mode}}</td></tr>
    <tr><td>USB report</td><td>{{if .USBReport}}on{{else}}off{{end}}</td></tr>
  </table>
  <h2>Hosts</h2>
  <table>
    {{range .Hosts}}<tr><td>{{.Slot}}</td><td{{if .Saved}} class="saved"{{end}}>{{if .Connected}}connected{{else if .Saved}}saved{{else}}empty{{end}}</td></tr>
    {{end}}
  </table>
  <form method="POST" action="/status/push">
    {{.CSRFField}}
    <button type="submit">Push Bluetooth theme</button>
  </form>
  {{if .Done}}<p>Theme pushed.</p>{{end}}
  <h2>Messages</h2>
  <pre>{{range .Messages}}{{.}}
{{end}}</pre>
</body>
</html>
`))
