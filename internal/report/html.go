package report

import (
	"bytes"
	"html/template"
	"io"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/brocaar/digico-report/internal/aggregator"
	"github.com/brocaar/digico-report/internal/render"
)

const pageTemplate = `{{define "upload"}}
<form method="post" action="/api/session" enctype="multipart/form-data">
  <input type="file" name="file" accept=".sqlite,.db,.session">
  <button type="submit">Load session</button>
</form>
{{end}}
{{define "field"}}{{range .}}<div>{{.Label}}: {{.Value}}</div>{{end}}{{end}}
<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>DiGiCo session report</title>
<style>
body { font-family: sans-serif; margin: 16px; color: #111827; }
section { border: 1px solid #e5e7eb; border-radius: 6px; padding: 12px; margin-bottom: 16px; }
.columns { display: grid; grid-template-columns: 1fr 1fr; gap: 12px; }
.title { font-weight: 600; margin: 6px 0; }
.absent { color: #6b7280; }
table { width: 100%; border-collapse: collapse; font-size: 13px; }
th, td { padding: 6px 8px; text-align: left; border-bottom: 1px solid #f3f4f6; }
</style>
</head>
<body>
<h1>DiGiCo session report</h1>
{{template "upload"}}
{{if not .Loaded}}<p class="absent">No session loaded</p>{{else}}
{{if .SessionID}}<p>Session {{.SessionID}}</p>{{end}}
{{range .Channels}}
<section id="channel-{{.ID}}">
  <h2>Channel {{.Number}} - {{.Title}} <small>(id {{.ID}}, snapshot {{.SnapshotID}})</small></h2>
  <div class="columns">
    <div>
      <div class="title">Channel name:</div><div>{{.Name}}</div>
      <div class="title">Gain</div><div>{{.Gain}}</div>
      <div class="title">Compressor</div>
      {{if .Compressor}}{{template "field" .Compressor}}{{else}}<div class="absent">{{$.NoCompressor}}</div>{{end}}
    </div>
    <div>
      <div class="title">Gate</div>
      {{if .Gate}}{{template "field" .Gate}}{{else}}<div class="absent">{{$.NoGate}}</div>{{end}}
      <div class="title">Passband (HPF / LPF)</div>
      {{if .Passband}}{{template "field" .Passband}}{{else}}<div class="absent">{{$.NoPassband}}</div>{{end}}
    </div>
  </div>
  <div class="title">EQ Bands</div>
  {{if .EQBands}}
  <table>
    <thead><tr><th>Band</th><th>Freq (Hz)</th><th>Gain (dB)</th><th>Q</th></tr></thead>
    <tbody>
    {{range .EQBands}}<tr><td>{{.Name}}</td><td>{{.Frequency}}</td><td>{{.Gain}}</td><td>{{.Q}}</td></tr>
    {{end}}
    </tbody>
  </table>
  {{else}}<div class="absent">{{$.NoEQBands}}</div>{{end}}
  {{if .Graph}}<div class="graph">{{.Graph}}</div>{{else}}<div class="absent">{{$.NoEQGraph}}</div>{{end}}
</section>
{{else}}<p class="absent">No channels</p>{{end}}
{{end}}
</body>
</html>
`

var page = template.Must(template.New("page").Parse(pageTemplate))

type htmlChannel struct {
	channelView
	Graph template.HTML
}

type htmlPage struct {
	Loaded    bool
	SessionID string
	Channels  []htmlChannel

	NoCompressor string
	NoGate       string
	NoPassband   string
	NoEQBands    string
	NoEQGraph    string
}

func newPage() htmlPage {
	return htmlPage{
		NoCompressor: NoCompressor,
		NoGate:       NoGate,
		NoPassband:   NoPassband,
		NoEQBands:    NoEQBands,
		NoEQGraph:    NoEQGraph,
	}
}

// HTML writes a HTML report of the given records to w. graphs holds the
// SVG graph per channel id, channels without graph show the absent
// indicator.
func HTML(w io.Writer, sessionID string, records []aggregator.ChannelRecord, graphs map[int64][]byte) error {
	p := newPage()
	p.Loaded = true
	p.SessionID = sessionID

	for _, rec := range records {
		p.Channels = append(p.Channels, htmlChannel{
			channelView: newChannelView(rec),
			// generated by the svg renderer, band names are escaped
			Graph: template.HTML(graphs[rec.Channel.ID]),
		})
	}

	return errors.Wrap(page.Execute(w, p), "execute template error")
}

// UploadForm writes the HTML page shown when no session is loaded.
func UploadForm(w io.Writer) error {
	return errors.Wrap(page.Execute(w, newPage()), "execute template error")
}

// Graphs renders the SVG graph of every record with EQ bands, keyed by
// channel id.
func Graphs(records []aggregator.ChannelRecord, vp render.Viewport) (map[int64][]byte, error) {
	out := make(map[int64][]byte, len(records))

	for _, rec := range records {
		scene, err := render.NewScene(rec.Curve(), vp)
		if err != nil {
			if err == render.ErrUnavailable {
				continue
			}
			return nil, errors.Wrapf(err, "channel %d: new scene error", rec.Channel.ID)
		}

		var buf bytes.Buffer
		if err := render.Draw(&buf, scene, render.FormatSVG); err != nil {
			return nil, errors.Wrapf(err, "channel %d: draw graph error", rec.Channel.ID)
		}
		out[rec.Channel.ID] = buf.Bytes()
	}

	log.WithField("graphs", len(out)).Debug("report: graphs rendered")

	return out, nil
}
