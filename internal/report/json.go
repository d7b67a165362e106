package report

import (
	"database/sql"
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"github.com/brocaar/digico-report/internal/aggregator"
	"github.com/brocaar/digico-report/internal/storage"
)

// Channel is the JSON representation of a channel record. Unknown values
// are null, absent facets are null.
type Channel struct {
	ID            int64      `json:"id"`
	SnapshotID    int64      `json:"snapshotId"`
	ChannelNumber *int64     `json:"channelNumber"`
	Name          *string    `json:"name"`
	Gain          *float64   `json:"gain"`
	Compressor    *Processor `json:"compressor"`
	Gate          *Processor `json:"gate"`
	Passband      *Passband  `json:"passband"`
	EQBands       []Band     `json:"eqBands"`
	Curve         *Curve     `json:"curve,omitempty"`
}

// Processor is the JSON representation of a compressor or gate. Durations
// are in seconds.
type Processor struct {
	Threshold *float64 `json:"threshold"`
	Ratio     *float64 `json:"ratio"`
	Gain      *float64 `json:"gain"`
	Attack    *float64 `json:"attack"`
	Hold      *float64 `json:"hold"`
	Release   *float64 `json:"release"`
}

// Passband is the JSON representation of the passband filters.
type Passband struct {
	HighPassEnabled   bool     `json:"highPassEnabled"`
	HighPassFrequency *float64 `json:"highPassFrequency"`
	LowPassEnabled    bool     `json:"lowPassEnabled"`
	LowPassFrequency  *float64 `json:"lowPassFrequency"`
}

// Band is the JSON representation of an EQ band.
type Band struct {
	ID         int64    `json:"id"`
	BandNumber *int64   `json:"bandNumber"`
	Name       *string  `json:"name"`
	Frequency  *float64 `json:"frequency"`
	Gain       *float64 `json:"gain"`
	Q          *float64 `json:"q"`
}

// Curve is the JSON representation of the frequency response.
type Curve struct {
	Frequencies []float64 `json:"frequencies"`
	Combined    []float64 `json:"combined"`
	HighPass    []float64 `json:"highPass,omitempty"`
	LowPass     []float64 `json:"lowPass,omitempty"`
	Min         float64   `json:"min"`
	Max         float64   `json:"max"`
}

// NewChannel returns the JSON representation of the given record. When
// withCurve is set and the record has EQ bands, the curve is included.
func NewChannel(rec aggregator.ChannelRecord, withCurve bool) Channel {
	out := Channel{
		ID:            rec.Channel.ID,
		SnapshotID:    rec.Channel.SnapshotID,
		ChannelNumber: nullInt(rec.Channel.ChannelNumber),
		Name:          nullString(rec.Channel.Name),
		Gain:          nullFloat(rec.Channel.Gain),
		Compressor:    newProcessor(rec.Compressor),
		Gate:          newProcessor(rec.Gate),
		EQBands:       make([]Band, 0, len(rec.EQBands)),
	}

	if p := rec.Passband; p != nil {
		out.Passband = &Passband{
			HighPassEnabled:   p.HighPassEnabled.Valid && p.HighPassEnabled.Bool,
			HighPassFrequency: nullFloat(p.HighPassFrequency),
			LowPassEnabled:    p.LowPassEnabled.Valid && p.LowPassEnabled.Bool,
			LowPassFrequency:  nullFloat(p.LowPassFrequency),
		}
	}

	for _, b := range rec.EQBands {
		out.EQBands = append(out.EQBands, Band{
			ID:         b.ID,
			BandNumber: nullInt(b.BandNumber),
			Name:       nullString(b.Name),
			Frequency:  nullFloat(b.Frequency),
			Gain:       nullFloat(b.Gain),
			Q:          nullFloat(b.QValue),
		})
	}

	if withCurve {
		if res := rec.Curve(); res.Available {
			out.Curve = &Curve{
				Frequencies: res.Frequencies,
				Combined:    res.Combined,
				HighPass:    res.HighPass,
				LowPass:     res.LowPass,
				Min:         res.Min,
				Max:         res.Max,
			}
		}
	}

	return out
}

// JSON writes the given records as a JSON array to w.
func JSON(w io.Writer, records []aggregator.ChannelRecord, withCurve bool) error {
	out := make([]Channel, 0, len(records))
	for _, rec := range records {
		out = append(out, NewChannel(rec, withCurve))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(out), "encode json error")
}

func newProcessor(dp *storage.DynamicProcessor) *Processor {
	if dp == nil {
		return nil
	}
	return &Processor{
		Threshold: nullFloat(dp.Threshold),
		Ratio:     nullFloat(dp.Ratio),
		Gain:      nullFloat(dp.Gain),
		Attack:    nullFloat(dp.Attack),
		Hold:      nullFloat(dp.Hold),
		Release:   nullFloat(dp.Release),
	}
}

func nullInt(n storage.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	return &n.Int64
}

func nullFloat(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
