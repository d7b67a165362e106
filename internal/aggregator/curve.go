package aggregator

import (
	"database/sql"
	"math"

	"github.com/brocaar/digico-report/internal/curve"
)

// CurveBands returns the EQ bands of the record as curve bands. Unknown
// values are NaN so that the curve defaults apply.
func (r ChannelRecord) CurveBands() []curve.Band {
	out := make([]curve.Band, 0, len(r.EQBands))
	for _, b := range r.EQBands {
		out = append(out, curve.Band{
			Name:      b.Name.String,
			Frequency: nullFloat(b.Frequency),
			Gain:      nullFloat(b.Gain),
			Q:         nullFloat(b.QValue),
		})
	}
	return out
}

// CurvePassband returns the passband of the record, or nil when absent.
func (r ChannelRecord) CurvePassband() *curve.Passband {
	if r.Passband == nil {
		return nil
	}

	return &curve.Passband{
		HighPassEnabled:   r.Passband.HighPassEnabled.Valid && r.Passband.HighPassEnabled.Bool,
		HighPassFrequency: nullFloat(r.Passband.HighPassFrequency),
		LowPassEnabled:    r.Passband.LowPassEnabled.Valid && r.Passband.LowPassEnabled.Bool,
		LowPassFrequency:  nullFloat(r.Passband.LowPassFrequency),
	}
}

// Curve computes the frequency response of the record.
func (r ChannelRecord) Curve() curve.Result {
	return curve.Compute(r.CurveBands(), r.CurvePassband())
}

func nullFloat(f sql.NullFloat64) float64 {
	if !f.Valid {
		return math.NaN()
	}
	return f.Float64
}
