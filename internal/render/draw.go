package render

import (
	"html"
	"io"
	"math"
	"strings"

	"github.com/pkg/errors"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Format defines the output format of a graph.
type Format string

// Formats.
const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat parses the given format string. An empty string defaults to
// SVG.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(FormatSVG):
		return FormatSVG, nil
	case string(FormatPNG):
		return FormatPNG, nil
	default:
		return "", errors.Errorf("unknown graph format: %s", s)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

const (
	fontSize     = 10
	markerStroke = 0.6
	gridWidth    = 1
	axisWidth    = 1
)

// Draw draws the scene in the given format to w.
func Draw(w io.Writer, s Scene, f Format) error {
	var provider chart.RendererProvider
	switch f {
	case FormatSVG:
		provider = chart.SVG
	case FormatPNG:
		provider = chart.PNG
	default:
		return errors.Errorf("unknown graph format: %s", f)
	}

	r, err := provider(s.Viewport.Width, s.Viewport.Height)
	if err != nil {
		return errors.Wrap(err, "create renderer error")
	}

	font, err := chart.GetDefaultFont()
	if err != nil {
		return errors.Wrap(err, "get default font error")
	}

	d := drawer{r: r, svg: f == FormatSVG}

	// background
	r.ResetStyle()
	r.SetFillColor(BackgroundColor)
	r.SetStrokeColor(drawing.ColorTransparent)
	r.MoveTo(0, 0)
	r.LineTo(s.Viewport.Width, 0)
	r.LineTo(s.Viewport.Width, s.Viewport.Height)
	r.LineTo(0, s.Viewport.Height)
	r.Close()
	r.Fill()

	for _, l := range s.FrequencyGrid {
		d.line(l, GridColor, gridWidth)
	}
	for _, l := range s.ValueGrid {
		d.line(l, ValueGridColor, gridWidth)
	}

	// axes
	bottom := s.Top + s.Height
	d.line(Line{From: Point{s.Left, s.Top}, To: Point{s.Left, bottom}}, AxisColor, axisWidth)
	d.line(Line{From: Point{s.Left, bottom}, To: Point{s.Left + s.Width, bottom}}, AxisColor, axisWidth)
	for _, l := range s.FrequencyTicks {
		d.line(l, AxisColor, axisWidth)
	}

	for _, p := range s.Bands {
		d.path(p)
	}
	if s.HighPass != nil {
		d.path(*s.HighPass)
	}
	if s.LowPass != nil {
		d.path(*s.LowPass)
	}
	d.path(s.Combined)

	for _, m := range s.Markers {
		d.marker(m)
	}

	r.ResetStyle()
	r.SetFont(font)
	r.SetFontSize(fontSize)

	r.SetFontColor(LabelColor)
	for _, m := range s.Markers {
		d.text(m.Label)
	}
	for _, l := range s.FrequencyLabels {
		d.text(l)
	}

	r.SetFontColor(ValueLabelColor)
	for _, l := range s.ValueLabels {
		d.text(l)
	}

	return errors.Wrap(r.Save(w), "save graph error")
}

type drawer struct {
	r   chart.Renderer
	svg bool
}

func (d drawer) line(l Line, color drawing.Color, width float64) {
	d.r.ResetStyle()
	d.r.SetStrokeColor(color)
	d.r.SetStrokeWidth(width)
	d.r.MoveTo(round(l.From.X), round(l.From.Y))
	d.r.LineTo(round(l.To.X), round(l.To.Y))
	d.r.Stroke()
}

func (d drawer) path(p Path) {
	if len(p.Points) < 2 {
		return
	}

	d.r.ResetStyle()
	d.r.SetStrokeColor(p.Color)
	d.r.SetStrokeWidth(p.Width)
	if len(p.DashArray) != 0 {
		d.r.SetStrokeDashArray(p.DashArray)
	}

	d.r.MoveTo(round(p.Points[0].X), round(p.Points[0].Y))
	for _, pt := range p.Points[1:] {
		d.r.LineTo(round(pt.X), round(pt.Y))
	}
	d.r.Stroke()
}

func (d drawer) marker(m Marker) {
	d.r.ResetStyle()
	d.r.SetFillColor(m.Color)
	d.r.SetStrokeColor(drawing.ColorBlack)
	d.r.SetStrokeWidth(markerStroke)
	d.r.Circle(m.Radius, round(m.Center.X), round(m.Center.Y))

	// the raster renderer only builds the circle path
	if !d.svg {
		d.r.FillStroke()
	}
}

func (d drawer) text(l Label) {
	if l.Text == "" {
		return
	}

	x := l.Position.X
	if l.Centered {
		x -= float64(d.r.MeasureText(l.Text).Width()) / 2
	}

	body := l.Text
	// the svg renderer writes text bodies as-is
	if d.svg {
		body = html.EscapeString(body)
	}
	d.r.Text(body, round(x), round(l.Position.Y))
}

func round(f float64) int {
	return int(math.Round(f))
}
