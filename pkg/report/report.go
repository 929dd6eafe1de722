// Package report renders a submitted inspection protocol as a
// self-contained HTML document and, when a render engine is configured,
// converts it into a PDF attachment.
package report

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"fzp/pkg/protocol"
)

// Engine converts an HTML document into a binary artifact (PDF). Engine
// failures are recovered by attaching the raw HTML instead.
type Engine interface {
	Render(ctx context.Context, html []byte) ([]byte, error)
}

// Renderer builds report attachments. A nil Engine skips PDF conversion and
// always attaches HTML.
type Renderer struct {
	Engine Engine
	Log    *slog.Logger
}

func (r *Renderer) logger() *slog.Logger {
	if r.Log != nil {
		return r.Log
	}
	return slog.Default()
}

// BuildAttachment implements protocol.Reporter. It never fails: a broken
// engine degrades to the HTML document, a broken template to a stub page.
func (r *Renderer) BuildAttachment(ctx context.Context, sub *protocol.Submission) protocol.Attachment {
	html, err := BuildHTML(sub)
	if err != nil {
		r.logger().Error("report template failed", "error", err)
		html = []byte("<html><body><h1>Fahrzeugprotokoll</h1><p>Bericht konnte nicht erstellt werden.</p></body></html>")
	}
	if r.Engine != nil {
		pdf, err := r.Engine.Render(ctx, html)
		if err == nil {
			return protocol.Attachment{Filename: "protokoll.pdf", MIME: "application/pdf", Data: pdf}
		}
		r.logger().Warn("pdf rendering failed, attaching html", "error", err)
	}
	return protocol.Attachment{Filename: "protokoll.html", MIME: "text/html", Data: html}
}

// imageSrc rebuilds a usable data URI from an embedded payload. Payloads
// arrive either as full data URIs or bare base64.
func imageSrc(payload string) template.URL {
	if strings.HasPrefix(payload, "data:") {
		return template.URL(payload)
	}
	return template.URL("data:image/jpeg;base64," + payload)
}

var reportTmpl = template.Must(template.New("protokoll").Funcs(template.FuncMap{
	"img": imageSrc,
}).Parse(reportHTML))

// BuildHTML renders the complete report document for a submission.
func BuildHTML(sub *protocol.Submission) ([]byte, error) {
	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, sub); err != nil {
		return nil, fmt.Errorf("execute report template: %w", err)
	}
	return buf.Bytes(), nil
}

const reportHTML = `<!DOCTYPE html>
<html lang="de">
<head>
<meta charset="utf-8">
<title>Fahrzeugprotokoll {{.Plate}}</title>
<style>
body { font-family: Arial, sans-serif; line-height: 1.5; color: #333; margin: 0; }
.wrap { max-width: 800px; margin: 0 auto; padding: 20px; }
.head { background: linear-gradient(135deg, #c8102e, #8b0000); color: white; padding: 20px; border-radius: 10px 10px 0 0; }
.head h1 { margin: 0; font-size: 24px; }
.head p { margin: 5px 0 0; opacity: 0.9; }
h2 { color: #c8102e; font-size: 18px; margin: 24px 0 8px; }
table { width: 100%; border-collapse: collapse; }
th, td { padding: 8px; border-bottom: 1px solid #eee; text-align: left; vertical-align: top; }
th { background: #f9f9f9; }
.photo { max-width: 180px; max-height: 140px; margin: 2px; border: 1px solid #ddd; }
.sig { max-width: 260px; border-bottom: 1px solid #999; }
.empty { color: #888; font-style: italic; }
.footer { text-align: center; color: #888; font-size: 12px; margin-top: 24px; }
</style>
</head>
<body>
<div class="wrap">
<div class="head">
<h1>🚗 Fahrzeugprotokoll</h1>
<p>{{.Process}} - {{.Date}} um {{.Time}}</p>
</div>

<h2>Allgemein</h2>
<table>
<tr><td><strong>Vorgang:</strong></td><td>{{.Process}}</td></tr>
<tr><td><strong>Mitarbeiter:</strong></td><td>{{.Employee}}</td></tr>
<tr><td><strong>Kunde/Fahrer:</strong></td><td>{{.Customer}}</td></tr>
<tr><td><strong>E-Mail Fahrer:</strong></td><td>{{.CustomerEmail}}</td></tr>
<tr><td><strong>Standort:</strong></td><td>{{.Location}}</td></tr>
</table>

<h2>Fahrzeugdaten</h2>
<table>
<tr><td><strong>Kennzeichen:</strong></td><td>{{.Plate}}</td></tr>
<tr><td><strong>Marke/Modell:</strong></td><td>{{.Model}}</td></tr>
<tr><td><strong>Kilometerstand:</strong></td><td>{{.Mileage}} km</td></tr>
</table>

<h2>Sichtprüfung Außen</h2>
{{if .Exterior}}
<table>
<tr><th>Bereich</th><th>Status</th><th>Kommentar</th><th>Fotos</th></tr>
{{range .Exterior}}
<tr><td>{{.Area}}</td><td>{{.Status}}</td><td>{{.Comment}}</td>
<td>{{range .Photos}}<img class="photo" src="{{img .}}">{{end}}</td></tr>
{{end}}
</table>
{{else}}<p class="empty">Keine Einträge</p>{{end}}

<h2>Sichtprüfung Innen</h2>
{{if .Interior}}
<table>
<tr><th>Bereich</th><th>Status</th><th>Kommentar</th><th>Fotos</th></tr>
{{range .Interior}}
<tr><td>{{.Area}}</td><td>{{.Status}}</td><td>{{.Comment}}</td>
<td>{{range .Photos}}<img class="photo" src="{{img .}}">{{end}}</td></tr>
{{end}}
</table>
{{else}}<p class="empty">Keine Einträge</p>{{end}}

<h2>Schäden</h2>
{{if .Damage}}
<table>
<tr><th>Bereich</th><th>Beschreibung</th><th>Größe</th><th>Fotos</th></tr>
{{range .Damage}}
<tr><td>{{.Area}}</td><td>{{.Desc}}</td><td>{{.Size}} cm</td>
<td>{{range .Photos}}<img class="photo" src="{{img .}}">{{end}}</td></tr>
{{end}}
</table>
{{else}}<p class="empty">Keine Einträge</p>{{end}}

<h2>Pflichtfotos</h2>
{{if .Photos}}
<div>
{{range .Photos}}{{if .DataURL}}
<figure style="display:inline-block; margin:4px; text-align:center;">
<img class="photo" src="{{img .DataURL}}">
<figcaption>{{.Title}}</figcaption>
</figure>
{{end}}{{end}}
</div>
{{else}}<p class="empty">Keine Einträge</p>{{end}}

{{if .Signatures}}
<h2>Unterschriften</h2>
{{range $role, $sig := .Signatures}}{{if $sig}}
<p>{{$role}}:<br><img class="sig" src="{{img $sig}}"></p>
{{end}}{{end}}
{{end}}

<p class="footer">ALMAS INDUSTRIES AG | Floßwörthstraße 57 | D-68199 Mannheim<br>
Dieses Protokoll wurde automatisch generiert.</p>
</div>
</body>
</html>
`
