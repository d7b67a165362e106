package aggregator

import (
	"context"
	"database/sql"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/brocaar/digico-report/internal/storage"
	"github.com/brocaar/digico-report/internal/test"
)

func mustLoad(t *testing.T, statements ...string) *storage.Session {
	b := test.MustSQLiteFile(t, statements...)
	s, err := storage.Load(context.Background(), b, storage.LoadOptions{TempDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func bandIDs(bands []storage.EqualiserBand) []int64 {
	var out []int64
	for _, b := range bands {
		out = append(out, b.ID)
	}
	return out
}

func bandNumber(n int64) storage.NullInt64 {
	return storage.NullInt64{Int64: n, Valid: true}
}

func TestAggregate(t *testing.T) {
	Convey("Given a session with three channels in range", t, func() {
		s := mustLoad(t, append(test.Schema, test.DemoSession()...)...)

		Convey("When aggregating with the default options", func() {
			records, err := Aggregate(context.Background(), s, DefaultOptions())
			So(err, ShouldBeNil)

			Convey("Then the channels in range and snapshot are returned ordered by id", func() {
				So(records, ShouldHaveLength, 3)
				So(records[0].Channel.ID, ShouldEqual, 21)
				So(records[1].Channel.ID, ShouldEqual, 22)
				So(records[2].Channel.ID, ShouldEqual, 23)
				for _, r := range records {
					So(r.Channel.SnapshotID, ShouldEqual, 10000)
				}
			})

			Convey("Then the EQ bands are deduplicated keeping the lowest id", func() {
				bands := records[0].EQBands
				So(bandIDs(bands), ShouldResemble, []int64{8, 5, 9})
				So(bands[1].BandNumber, ShouldResemble, storage.NullInt64{Int64: 1, Valid: true})
				So(bands[1].Name, ShouldResemble, sql.NullString{String: "Low", Valid: true})
			})

			Convey("Then the compressor, gate and passband are set", func() {
				r := records[0]
				So(r.Compressor, ShouldNotBeNil)
				So(r.Compressor.Threshold.Float64, ShouldEqual, -18)
				So(r.Gate, ShouldNotBeNil)
				So(r.Gate.ProcessorNumber, ShouldEqual, storage.ProcessorGate)
				So(r.Passband, ShouldNotBeNil)
				So(r.Passband.HighPassEnabled.Bool, ShouldBeTrue)
			})

			Convey("Then missing facets are absent", func() {
				r := records[2]
				So(r.Compressor, ShouldBeNil)
				So(r.Gate, ShouldBeNil)
				So(r.Passband, ShouldBeNil)
				So(r.EQBands, ShouldHaveLength, 1)

				Convey("Then the curve is computed without filters", func() {
					res := r.Curve()
					So(res.Available, ShouldBeTrue)
					So(res.HighPass, ShouldBeNil)
					So(res.LowPass, ShouldBeNil)
				})
			})
		})

		Convey("When aggregating another snapshot", func() {
			opts := DefaultOptions()
			opts.SnapshotID = 10001
			records, err := Aggregate(context.Background(), s, opts)
			So(err, ShouldBeNil)

			Convey("Then only its channels and bands are returned", func() {
				So(records, ShouldHaveLength, 1)
				So(records[0].Channel.ID, ShouldEqual, 30)
				So(records[0].EQBands, ShouldHaveLength, 0)
			})
		})

		Convey("When aggregating with a single worker", func() {
			opts := DefaultOptions()
			opts.Workers = 1
			records, err := Aggregate(context.Background(), s, opts)
			So(err, ShouldBeNil)

			Convey("Then the result equals the parallel result", func() {
				parallel, err := Aggregate(context.Background(), s, DefaultOptions())
				So(err, ShouldBeNil)
				So(records, ShouldResemble, parallel)
			})
		})

		Convey("When the options are invalid", func() {
			opts := DefaultOptions()
			opts.MinChannelID = 200
			_, err := Aggregate(context.Background(), s, opts)

			Convey("Then an error is returned", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})

	Convey("Given a session with only a Channel table", t, func() {
		s := mustLoad(t,
			test.Schema[0],
			`insert into Channel (id, snapshotId, channelNumber, name, gain) values (21, 10000, 1, 'Kick', 0)`,
		)

		Convey("When aggregating", func() {
			records, err := Aggregate(context.Background(), s, DefaultOptions())

			Convey("Then the failing facet queries leave the facets absent", func() {
				So(err, ShouldBeNil)
				So(records, ShouldHaveLength, 1)
				So(records[0].EQBands, ShouldHaveLength, 0)
				So(records[0].Compressor, ShouldBeNil)
				So(records[0].Gate, ShouldBeNil)
				So(records[0].Passband, ShouldBeNil)
				So(records[0].Curve().Available, ShouldBeFalse)
			})
		})
	})

	Convey("Given a session without a Channel table", t, func() {
		s := mustLoad(t, test.Schema[1])

		Convey("Then aggregating returns no records", func() {
			records, err := Aggregate(context.Background(), s, DefaultOptions())
			So(err, ShouldBeNil)
			So(records, ShouldNotBeNil)
			So(records, ShouldHaveLength, 0)
		})
	})

	Convey("Given a session with a channel without channel number", t, func() {
		s := mustLoad(t, append(test.Schema,
			`insert into Channel (id, snapshotId, channelNumber, name, gain) values (21, 10000, 1, 'Kick', 0)`,
			`insert into Channel (id, snapshotId, channelNumber, name, gain) values (22, 10000, null, 'Snare', 0)`,
			`insert into Channel (id, snapshotId, channelNumber, name, gain) values (23, 10000, 'n/a', 'Vox', 0)`,
			`insert into EqualiserBand (id, channelNumber, snapshotId, bandNumber, name, frequency, gain, qvalue) values (1, 1, 10000, 0, 'Low', 100, 3, 1)`,
			`insert into Passband (id, channelNumber, snapshotId, highPassEnabled, highPassFrequency, lowPassEnabled, lowPassFrequency) values (1, 1, 10000, 1, 80, 0, 18000)`,
		)...)

		Convey("When aggregating", func() {
			records, err := Aggregate(context.Background(), s, DefaultOptions())
			So(err, ShouldBeNil)

			Convey("Then all channels are returned", func() {
				So(records, ShouldHaveLength, 3)
				So(records[0].Channel.ChannelNumber, ShouldResemble, storage.NullInt64{Int64: 1, Valid: true})
				So(records[0].EQBands, ShouldHaveLength, 1)
				So(records[0].Passband, ShouldNotBeNil)
			})

			Convey("Then the channels without valid number have no facets", func() {
				for _, r := range records[1:] {
					So(r.Channel.ChannelNumber.Valid, ShouldBeFalse)
					So(r.EQBands, ShouldHaveLength, 0)
					So(r.Compressor, ShouldBeNil)
					So(r.Gate, ShouldBeNil)
					So(r.Passband, ShouldBeNil)
				}
				So(records[1].Channel.Name.String, ShouldEqual, "Snare")
			})
		})
	})

	Convey("Given a channel with an EQ band without band number", t, func() {
		s := mustLoad(t, append(test.Schema,
			`insert into Channel (id, snapshotId, channelNumber, name, gain) values (21, 10000, 1, 'Kick', 0)`,
			`insert into EqualiserBand (id, channelNumber, snapshotId, bandNumber, name, frequency, gain, qvalue) values (1, 1, 10000, 0, 'Low', 100, 3, 1)`,
			`insert into EqualiserBand (id, channelNumber, snapshotId, bandNumber, name, frequency, gain, qvalue) values (2, 1, 10000, null, 'Loose', 1000, -2, 1)`,
		)...)

		Convey("When aggregating", func() {
			records, err := Aggregate(context.Background(), s, DefaultOptions())
			So(err, ShouldBeNil)
			So(records, ShouldHaveLength, 1)

			Convey("Then the valid band is kept and the band without number sorts last", func() {
				So(bandIDs(records[0].EQBands), ShouldResemble, []int64{1, 2})
				So(records[0].EQBands[1].BandNumber.Valid, ShouldBeFalse)
				So(records[0].Curve().Available, ShouldBeTrue)
			})
		})
	})
}

func TestDeduplicateBands(t *testing.T) {
	Convey("Given bands with a duplicate band number", t, func() {
		bands := []storage.EqualiserBand{
			{ID: 5, BandNumber: bandNumber(1), Name: sql.NullString{String: "Low", Valid: true}},
			{ID: 7, BandNumber: bandNumber(1), Name: sql.NullString{String: "LowDup", Valid: true}},
		}

		Convey("Then the first band is kept", func() {
			out := DeduplicateBands(bands)
			So(out, ShouldHaveLength, 1)
			So(out[0].ID, ShouldEqual, 5)
			So(out[0].Name.String, ShouldEqual, "Low")
		})
	})

	Convey("Given bands out of band number order", t, func() {
		bands := []storage.EqualiserBand{
			{ID: 9, BandNumber: bandNumber(3)},
			{ID: 2, BandNumber: bandNumber(0)},
			{ID: 4, BandNumber: bandNumber(2)},
			{ID: 6, BandNumber: bandNumber(2)},
		}

		Convey("Then the result is sorted by band number", func() {
			So(bandIDs(DeduplicateBands(bands)), ShouldResemble, []int64{2, 4, 9})
		})
	})

	Convey("Given bands without band number", t, func() {
		bands := []storage.EqualiserBand{
			{ID: 1},
			{ID: 3},
			{ID: 2, BandNumber: bandNumber(1)},
			{ID: 4, BandNumber: storage.NullInt64{Int64: 1}},
		}

		Convey("Then they share one key and sort after the valid bands", func() {
			So(bandIDs(DeduplicateBands(bands)), ShouldResemble, []int64{2, 1})
		})
	})

	Convey("Given no bands", t, func() {
		Convey("Then an empty slice is returned", func() {
			out := DeduplicateBands(nil)
			So(out, ShouldNotBeNil)
			So(out, ShouldHaveLength, 0)
		})
	})
}
