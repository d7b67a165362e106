// Package render draws the frequency-response graph of a channel.
package render

import (
	"math"
	"strconv"

	"github.com/pkg/errors"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/brocaar/digico-report/internal/curve"
)

// ErrUnavailable is returned when there is no graph to render because the
// channel has no EQ bands.
var ErrUnavailable = errors.New("graph unavailable: no eq bands")

// Plot area insets.
const (
	insetLeft   = 48
	insetTop    = 20
	insetRight  = 12
	insetBottom = 30
)

// Default viewport.
const (
	DefaultWidth  = 720
	DefaultHeight = 200
)

// GridFrequencies holds the frequencies of the vertical grid lines.
var GridFrequencies = []float64{20, 50, 100, 200, 500, 1000, 2000, 5000, 10000, 20000}

// ValueGridLines is the number of horizontal grid lines.
const ValueGridLines = 5

// Colors.
var (
	BandColors = []drawing.Color{
		drawing.ColorFromHex("d62728"),
		drawing.ColorFromHex("ff7f0e"),
		drawing.ColorFromHex("2ca02c"),
		drawing.ColorFromHex("1f77b4"),
		drawing.ColorFromHex("9467bd"),
		drawing.ColorFromHex("8c564b"),
	}
	HighPassColor   = drawing.ColorFromHex("6a0dad")
	LowPassColor    = drawing.ColorFromHex("8b4513")
	CombinedColor   = drawing.ColorFromHex("000000")
	BackgroundColor = drawing.ColorFromHex("fbfbfb")
	GridColor       = drawing.ColorFromHex("eeeeee")
	ValueGridColor  = drawing.ColorFromHex("f0f0f0")
	AxisColor       = drawing.ColorFromHex("333333")
	LabelColor      = drawing.ColorFromHex("222222")
	ValueLabelColor = drawing.ColorFromHex("666666")
)

// Viewport defines the size of the graph in pixels.
type Viewport struct {
	Width  int
	Height int
}

// Point is a position in viewport coordinates.
type Point struct {
	X float64
	Y float64
}

// Line is a straight line segment.
type Line struct {
	From Point
	To   Point
}

// Label is a text at a position. When Centered is set, the text is
// horizontally centered around the position.
type Label struct {
	Position Point
	Text     string
	Centered bool
}

// Path is a polyline.
type Path struct {
	Points    []Point
	Color     drawing.Color
	Width     float64
	DashArray []float64
}

// Marker marks the center of an EQ band.
type Marker struct {
	Center Point
	Radius float64
	Color  drawing.Color
	Label  Label
}

// Scene holds everything needed to draw a graph.
type Scene struct {
	Viewport Viewport

	// plot area
	Left   float64
	Top    float64
	Width  float64
	Height float64

	// value range in dB
	Min float64
	Max float64

	FrequencyGrid   []Line
	FrequencyTicks  []Line
	FrequencyLabels []Label
	ValueGrid       []Line
	ValueLabels     []Label

	Bands    []Path
	Markers  []Marker
	HighPass *Path
	LowPass  *Path
	Combined Path
}

// FrequencyToX maps a frequency to a horizontal coordinate.
func (s Scene) FrequencyToX(f float64) float64 {
	t := (math.Log10(f) - math.Log10(curve.MinFrequency)) / (math.Log10(curve.MaxFrequency) - math.Log10(curve.MinFrequency))
	return s.Left + t*s.Width
}

// ValueToY maps a dB value to a vertical coordinate.
func (s Scene) ValueToY(v float64) float64 {
	t := (v - s.Min) / (s.Max - s.Min)
	return s.Top + (1-t)*s.Height
}

// NewScene lays out the given curve result in the given viewport.
func NewScene(res curve.Result, vp Viewport) (Scene, error) {
	if !res.Available {
		return Scene{}, ErrUnavailable
	}

	s := Scene{
		Viewport: vp,
		Left:     insetLeft,
		Top:      insetTop,
		Width:    float64(vp.Width - insetLeft - insetRight),
		Height:   float64(vp.Height - insetTop - insetBottom),
		Min:      res.Min,
		Max:      res.Max,
	}
	if s.Width <= 0 || s.Height <= 0 {
		return Scene{}, errors.Errorf("viewport %dx%d is too small", vp.Width, vp.Height)
	}
	if !(s.Max > s.Min) {
		return Scene{}, errors.Errorf("invalid value range [%f, %f]", s.Min, s.Max)
	}

	bottom := s.Top + s.Height
	for _, f := range GridFrequencies {
		x := s.FrequencyToX(f)
		s.FrequencyGrid = append(s.FrequencyGrid, Line{From: Point{x, s.Top}, To: Point{x, bottom}})
		s.FrequencyTicks = append(s.FrequencyTicks, Line{From: Point{x, bottom}, To: Point{x, bottom + 6}})
		s.FrequencyLabels = append(s.FrequencyLabels, Label{
			Position: Point{x, bottom + 20},
			Text:     FrequencyLabel(f),
			Centered: true,
		})
	}

	for i := 0; i < ValueGridLines; i++ {
		v := s.Min + float64(i)/float64(ValueGridLines-1)*(s.Max-s.Min)
		y := s.ValueToY(v)
		s.ValueGrid = append(s.ValueGrid, Line{From: Point{s.Left, y}, To: Point{s.Left + s.Width, y}})
		s.ValueLabels = append(s.ValueLabels, Label{
			Position: Point{6, y + 4},
			Text:     strconv.FormatFloat(v, 'f', 1, 64),
		})
	}

	for i, b := range res.Bands {
		color := BandColors[i%len(BandColors)]
		s.Bands = append(s.Bands, s.path(res.Frequencies, b.Response, color, 1.3, []float64{4, 4}))

		center := Point{s.FrequencyToX(b.Band.Frequency), s.ValueToY(b.Band.Gain)}
		s.Markers = append(s.Markers, Marker{
			Center: center,
			Radius: 3,
			Color:  color,
			Label: Label{
				Position: Point{center.X, center.Y - 8},
				Text:     b.Band.Name,
				Centered: true,
			},
		})
	}

	if res.HighPass != nil {
		p := s.path(res.Frequencies, res.HighPass, HighPassColor, 1.2, []float64{2, 3})
		s.HighPass = &p
	}
	if res.LowPass != nil {
		p := s.path(res.Frequencies, res.LowPass, LowPassColor, 1.2, []float64{2, 3})
		s.LowPass = &p
	}

	s.Combined = s.path(res.Frequencies, res.Combined, CombinedColor, 2.4, nil)

	return s, nil
}

func (s Scene) path(freqs, values []float64, color drawing.Color, width float64, dash []float64) Path {
	p := Path{
		Points:    make([]Point, 0, len(values)),
		Color:     color,
		Width:     width,
		DashArray: dash,
	}
	for i, v := range values {
		// e.g. the filter responses can not be drawn when the cutoff is 0
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		p.Points = append(p.Points, Point{s.FrequencyToX(freqs[i]), s.ValueToY(v)})
	}
	return p
}

// FrequencyLabel formats a grid frequency, e.g. 500 or 2k.
func FrequencyLabel(f float64) string {
	if f >= 1000 {
		return strconv.FormatFloat(f/1000, 'f', -1, 64) + "k"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
