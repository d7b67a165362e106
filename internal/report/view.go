// Package report formats aggregated channel records as text, JSON and HTML.
package report

import (
	"database/sql"
	"strconv"

	"github.com/brocaar/digico-report/internal/aggregator"
	"github.com/brocaar/digico-report/internal/storage"
)

// Indicators shown for absent facets.
const (
	NoCompressor = "No compressor"
	NoGate       = "No gate"
	NoPassband   = "No passband settings"
	NoEQBands    = "No EQ bands"
	NoEQGraph    = "No EQ graph - no bands"
)

// Unnamed is shown in the channel heading when the channel has no name.
const Unnamed = "(unnamed)"

// placeholder for unknown values
const unknown = "-"

type field struct {
	Label string
	Value string
}

type bandView struct {
	Name      string
	Frequency string
	Gain      string
	Q         string
}

type channelView struct {
	ID         int64
	SnapshotID int64
	Number     string
	Name       string
	Title      string
	Gain       string
	Compressor []field
	Gate       []field
	Passband   []field
	EQBands    []bandView
}

func newChannelView(rec aggregator.ChannelRecord) channelView {
	v := channelView{
		ID:         rec.Channel.ID,
		SnapshotID: rec.Channel.SnapshotID,
		Number:     rec.Channel.ChannelNumber.String(),
		Name:       rec.Channel.Name.String,
		Title:      rec.Channel.Name.String,
		Gain:       formatFixed(rec.Channel.Gain, 6) + " dB",
	}
	if v.Title == "" {
		v.Title = Unnamed
	}

	if c := rec.Compressor; c != nil {
		v.Compressor = []field{
			{"Threshold", formatNumber(c.Threshold) + " dB"},
			{"Ratio", formatNumber(c.Ratio)},
			{"Makeup/Gain", formatNumber(c.Gain) + " dB"},
			{"Attack", FormatMS(c.Attack) + " ms"},
			{"Release", FormatMS(c.Release) + " ms"},
		}
	}

	if g := rec.Gate; g != nil {
		v.Gate = []field{
			{"Threshold", formatNumber(g.Threshold) + " dB"},
			{"Attack", FormatMS(g.Attack) + " ms"},
			{"Hold", FormatMS(g.Hold) + " ms"},
			{"Release", FormatMS(g.Release) + " ms"},
		}
	}

	if p := rec.Passband; p != nil {
		v.Passband = []field{
			{"HPF", "enabled: " + formatEnabled(p.HighPassEnabled) + "; Frequency: " + formatNumber(p.HighPassFrequency) + " Hz"},
			{"LPF", "enabled: " + formatEnabled(p.LowPassEnabled) + "; Frequency: " + formatNumber(p.LowPassFrequency) + " Hz"},
		}
	}

	for _, b := range rec.EQBands {
		v.EQBands = append(v.EQBands, bandView{
			Name:      b.Name.String,
			Frequency: formatNumber(b.Frequency),
			Gain:      formatFixed(b.Gain, 2),
			Q:         formatFixed(b.QValue, 2),
		})
	}

	return v
}

// FormatMS formats a duration in seconds as milliseconds with two decimals.
// An unknown duration formats as zero.
func FormatMS(s sql.NullFloat64) string {
	return strconv.FormatFloat(s.Float64*1000, 'f', 2, 64)
}

func formatFixed(f sql.NullFloat64, prec int) string {
	if !f.Valid {
		return unknown
	}
	return strconv.FormatFloat(f.Float64, 'f', prec, 64)
}

func formatNumber(f sql.NullFloat64) string {
	if !f.Valid {
		return unknown
	}
	return strconv.FormatFloat(f.Float64, 'f', -1, 64)
}

func formatEnabled(b storage.NullBool) string {
	if b.Valid && b.Bool {
		return "Yes"
	}
	return "No"
}
