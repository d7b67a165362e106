// Package aggregator joins the per-channel session tables into channel
// records.
package aggregator

import (
	"context"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/brocaar/digico-report/internal/config"
	"github.com/brocaar/digico-report/internal/storage"
)

// Defaults.
const (
	DefaultMinChannelID = 21
	DefaultMaxChannelID = 116
	DefaultSnapshotID   = 10000
	DefaultWorkers      = 4
)

// Options defines the channel selection.
type Options struct {
	MinChannelID int64
	MaxChannelID int64
	SnapshotID   int64
	Workers      int
}

// DefaultOptions returns the default channel selection.
func DefaultOptions() Options {
	return Options{
		MinChannelID: DefaultMinChannelID,
		MaxChannelID: DefaultMaxChannelID,
		SnapshotID:   DefaultSnapshotID,
		Workers:      DefaultWorkers,
	}
}

// OptionsFromConfig returns the options from the given configuration,
// falling back to the defaults for unset values.
func OptionsFromConfig(c config.Config) Options {
	opts := DefaultOptions()
	if c.Aggregator.MinChannelID != 0 || c.Aggregator.MaxChannelID != 0 {
		opts.MinChannelID = c.Aggregator.MinChannelID
		opts.MaxChannelID = c.Aggregator.MaxChannelID
	}
	if c.Aggregator.SnapshotID != 0 {
		opts.SnapshotID = c.Aggregator.SnapshotID
	}
	if c.Aggregator.Workers != 0 {
		opts.Workers = c.Aggregator.Workers
	}
	return opts
}

// Validate validates the options.
func (o Options) Validate() error {
	if o.MinChannelID > o.MaxChannelID {
		return errors.Errorf("min channel id %d is greater than max channel id %d", o.MinChannelID, o.MaxChannelID)
	}
	if o.Workers <= 0 {
		return errors.New("workers must be greater than zero")
	}
	return nil
}

// ChannelRecord holds the settings of a single channel. Compressor, Gate
// and Passband are nil when absent.
type ChannelRecord struct {
	Channel    storage.Channel
	EQBands    []storage.EqualiserBand
	Compressor *storage.DynamicProcessor
	Gate       *storage.DynamicProcessor
	Passband   *storage.Passband
}

// Aggregate returns the channel records of the selected channels, ordered
// by channel id. Failing queries are logged and treated as returning no
// rows: a failing channel query results in no records, a failing facet
// query leaves the facet absent. Only invalid options are returned as error.
func Aggregate(ctx context.Context, s *storage.Session, opts Options) ([]ChannelRecord, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "validate options error")
	}

	db := s.DB()

	channels, err := storage.GetChannels(ctx, db, opts.MinChannelID, opts.MaxChannelID, opts.SnapshotID)
	if err != nil {
		facetErrorCounter("channels").Inc()
		log.WithError(err).WithFields(log.Fields{
			"session_id":  s.ID,
			"snapshot_id": opts.SnapshotID,
		}).Error("aggregator: query channels error")
		channels = []storage.Channel{}
	}

	records := make([]ChannelRecord, len(channels))

	var g errgroup.Group
	g.SetLimit(opts.Workers)
	for i := range channels {
		i := i
		g.Go(func() error {
			records[i] = aggregateChannel(ctx, db, channels[i], opts.SnapshotID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// channels are already selected by id, this only guards the invariant
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Channel.ID < records[j].Channel.ID
	})

	channelCounter().Add(float64(len(records)))
	log.WithFields(log.Fields{
		"session_id":  s.ID,
		"snapshot_id": opts.SnapshotID,
		"channels":    len(records),
	}).Info("aggregator: channels aggregated")

	return records, nil
}

func aggregateChannel(ctx context.Context, db sqlx.QueryerContext, ch storage.Channel, snapshotID int64) ChannelRecord {
	rec := ChannelRecord{
		Channel: ch,
	}

	logger := log.WithFields(log.Fields{
		"channel_id":     ch.ID,
		"channel_number": ch.ChannelNumber.String(),
		"snapshot_id":    snapshotID,
	})

	if !ch.ChannelNumber.Valid {
		invalidChannelNumberCounter().Inc()
		logger.Warning("aggregator: channel without valid channel number, facets skipped")
		rec.EQBands = []storage.EqualiserBand{}
		return rec
	}
	number := ch.ChannelNumber.Int64

	bands, err := storage.GetEqualiserBands(ctx, db, number, snapshotID)
	if err != nil {
		logFacetError(logger, "eq", err)
	} else if len(bands) == 0 {
		logFacetError(logger, "eq", storage.ErrDoesNotExist)
	}
	rec.EQBands = DeduplicateBands(bands)

	for _, p := range []storage.ProcessorNumber{storage.ProcessorCompressor, storage.ProcessorGate} {
		dp, err := storage.GetDynamicProcessor(ctx, db, number, snapshotID, p)
		if err != nil {
			logFacetError(logger, strings.ToLower(p.String()), err)
			continue
		}

		switch p {
		case storage.ProcessorCompressor:
			rec.Compressor = &dp
		case storage.ProcessorGate:
			rec.Gate = &dp
		}
	}

	if pb, err := storage.GetPassband(ctx, db, number, snapshotID); err == nil {
		rec.Passband = &pb
	} else {
		logFacetError(logger, "passband", err)
	}

	return rec
}

func logFacetError(logger *log.Entry, facet string, err error) {
	if err == storage.ErrDoesNotExist {
		missingFacetCounter(facet).Inc()
		logger.WithField("facet", facet).Debug("aggregator: facet does not exist")
		return
	}

	facetErrorCounter(facet).Inc()
	logger.WithError(err).WithField("facet", facet).Error("aggregator: query facet error")
}

// DeduplicateBands returns one band per band number, ordered by band
// number. Of bands sharing a band number, the first one is kept. Bands must
// be ordered by band number and id so that this is the lowest id. Bands
// without a valid band number share a single key and sort last.
func DeduplicateBands(bands []storage.EqualiserBand) []storage.EqualiserBand {
	seen := make(map[storage.NullInt64]struct{}, len(bands))
	out := make([]storage.EqualiserBand, 0, len(bands))

	for _, b := range bands {
		key := b.BandNumber
		if !key.Valid {
			key = storage.NullInt64{}
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, b)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].BandNumber, out[j].BandNumber
		if a.Valid != b.Valid {
			return a.Valid
		}
		return a.Int64 < b.Int64
	})

	return out
}
