// Package curve computes the frequency-response graph of a channel EQ.
//
// The band model is a visualization heuristic: every band is drawn as a
// gaussian bump in log-frequency space and the filters as first-order
// magnitude responses. It is not a model of the console DSP.
package curve

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Frequency axis.
const (
	Samples      = 320
	MinFrequency = 20.0
	MaxFrequency = 20000.0
)

// Band defaults.
const (
	DefaultFrequency = 1000.0
	DefaultQ         = 1.0
	MinQ             = 1e-4
)

// Filter defaults, used when a filter is enabled without a cutoff.
const (
	DefaultHighPassFrequency = 20.0
	DefaultLowPassFrequency  = 20000.0
)

// MinPadding is the minimum padding applied to the value range.
const MinPadding = 6.0

// Band defines an EQ band. Use math.NaN() for unknown values.
type Band struct {
	Name      string
	Frequency float64
	Gain      float64
	Q         float64
}

// resolve returns the band with the defaults applied.
func (b Band) resolve() Band {
	if math.IsNaN(b.Frequency) || math.IsInf(b.Frequency, 0) || b.Frequency <= 0 {
		b.Frequency = DefaultFrequency
	}
	if math.IsNaN(b.Gain) {
		b.Gain = 0
	}
	if math.IsNaN(b.Q) || b.Q <= 0 {
		b.Q = DefaultQ
	}
	b.Q = math.Max(b.Q, MinQ)
	return b
}

// Passband defines the high- and low-pass filter settings.
type Passband struct {
	HighPassEnabled   bool
	HighPassFrequency float64
	LowPassEnabled    bool
	LowPassFrequency  float64
}

// BandCurve holds the sampled response of a single band.
type BandCurve struct {
	// Band holds the band with defaults applied.
	Band     Band
	Response []float64
}

// Result holds the sampled responses of a channel.
type Result struct {
	// Available is false when there are no bands to draw.
	Available bool

	Frequencies []float64
	Bands       []BandCurve
	Combined    []float64

	// HighPass and LowPass are nil when the filter is disabled or absent.
	HighPass []float64
	LowPass  []float64

	// Min and Max hold the padded value range in dB.
	Min float64
	Max float64
}

// Frequencies returns the log-spaced frequency axis.
func Frequencies() []float64 {
	out := make([]float64, Samples)
	floats.Span(out, math.Log10(MinFrequency), math.Log10(MaxFrequency))
	for i := range out {
		out[i] = math.Pow(10, out[i])
	}
	return out
}

// BandResponse returns the contribution in dB of the given band at
// frequency f.
func BandResponse(f float64, b Band) float64 {
	b = b.resolve()
	// TODO: sigma = 0.5/Q has no acoustic basis, replace with a peaking
	// biquad magnitude once graphs no longer need to match existing reports.
	sigma := 0.5 / b.Q
	d := (math.Log10(f) - math.Log10(b.Frequency)) / sigma
	return b.Gain * math.Exp(-0.5*d*d)
}

// HighPass returns the first-order high-pass response in dB at frequency f
// for the given cutoff.
func HighPass(f, cutoff float64) float64 {
	return 20 * math.Log10(f/math.Sqrt(f*f+cutoff*cutoff))
}

// LowPass returns the first-order low-pass response in dB at frequency f
// for the given cutoff.
func LowPass(f, cutoff float64) float64 {
	return 20 * math.Log10(cutoff/math.Sqrt(f*f+cutoff*cutoff))
}

// Compute computes the responses of the given bands and passband. pass may
// be nil.
func Compute(bands []Band, pass *Passband) Result {
	if len(bands) == 0 {
		return Result{}
	}

	freqs := Frequencies()
	res := Result{
		Available:   true,
		Frequencies: freqs,
		Combined:    make([]float64, len(freqs)),
	}

	for _, b := range bands {
		b = b.resolve()
		bc := BandCurve{
			Band:     b,
			Response: sample(freqs, func(f float64) float64 { return BandResponse(f, b) }),
		}
		floats.Add(res.Combined, bc.Response)
		res.Bands = append(res.Bands, bc)
	}

	if pass != nil && pass.HighPassEnabled {
		cutoff := cutoffOrDefault(pass.HighPassFrequency, DefaultHighPassFrequency)
		res.HighPass = sample(freqs, func(f float64) float64 { return HighPass(f, cutoff) })
	}
	if pass != nil && pass.LowPassEnabled {
		cutoff := cutoffOrDefault(pass.LowPassFrequency, DefaultLowPassFrequency)
		res.LowPass = sample(freqs, func(f float64) float64 { return LowPass(f, cutoff) })
	}

	res.Min, res.Max = valueRange(res)
	return res
}

func sample(freqs []float64, fn func(float64) float64) []float64 {
	out := make([]float64, len(freqs))
	for i, f := range freqs {
		out[i] = fn(f)
	}
	return out
}

func cutoffOrDefault(f, def float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return def
	}
	return f
}

// valueRange returns the padded min / max over all finite values of the
// result.
func valueRange(res Result) (float64, float64) {
	series := [][]float64{res.Combined, res.HighPass, res.LowPass}
	for _, bc := range res.Bands {
		series = append(series, bc.Response)
	}

	var values []float64
	for _, s := range series {
		for _, v := range s {
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				values = append(values, v)
			}
		}
	}

	var min, max float64
	if len(values) != 0 {
		min, max = floats.Min(values), floats.Max(values)
	}

	pad := math.Max(MinPadding, 0.12*(max-min))
	if math.IsNaN(pad) {
		pad = MinPadding
	}

	return min - pad, max + pad
}
