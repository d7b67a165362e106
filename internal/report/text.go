package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/brocaar/digico-report/internal/aggregator"
)

// Text writes a plain-text report of the given records to w.
func Text(w io.Writer, records []aggregator.ChannelRecord) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	if len(records) == 0 {
		fmt.Fprintln(tw, "No channels")
	}

	for i, rec := range records {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		writeChannelText(tw, newChannelView(rec))
	}

	return errors.Wrap(tw.Flush(), "write report error")
}

func writeChannelText(w io.Writer, v channelView) {
	fmt.Fprintf(w, "Channel %s - %s\t(id %d, snapshot %d)\n", v.Number, v.Title, v.ID, v.SnapshotID)
	fmt.Fprintf(w, "  Channel name:\t%s\n", v.Name)
	fmt.Fprintf(w, "  Gain:\t%s\n", v.Gain)

	writeFieldsText(w, "Compressor", v.Compressor, NoCompressor)
	writeFieldsText(w, "Gate", v.Gate, NoGate)
	writeFieldsText(w, "Passband (HPF / LPF)", v.Passband, NoPassband)

	fmt.Fprintln(w, "  EQ Bands:")
	if len(v.EQBands) == 0 {
		fmt.Fprintf(w, "    %s\n", NoEQBands)
		fmt.Fprintf(w, "    %s\n", NoEQGraph)
		return
	}

	fmt.Fprintln(w, "    Band\tFreq (Hz)\tGain (dB)\tQ")
	for _, b := range v.EQBands {
		fmt.Fprintf(w, "    %s\t%s\t%s\t%s\n", b.Name, b.Frequency, b.Gain, b.Q)
	}
}

func writeFieldsText(w io.Writer, title string, fields []field, absent string) {
	fmt.Fprintf(w, "  %s:\n", title)
	if len(fields) == 0 {
		fmt.Fprintf(w, "    %s\n", absent)
		return
	}
	for _, f := range fields {
		fmt.Fprintf(w, "    %s:\t%s\n", f.Label, f.Value)
	}
}
