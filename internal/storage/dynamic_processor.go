package storage

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

//go:generate stringer -type=ProcessorNumber -trimprefix=Processor

// ProcessorNumber defines the role of a dynamic processor.
type ProcessorNumber int64

// Dynamic processors.
const (
	ProcessorCompressor ProcessorNumber = 0
	ProcessorGate       ProcessorNumber = 1
)

// DynamicProcessor defines a compressor or gate of a channel. Attack, hold
// and release are in seconds.
type DynamicProcessor struct {
	ChannelNumber   int64           `db:"channelNumber"`
	SnapshotID      int64           `db:"snapshotId"`
	ProcessorNumber ProcessorNumber `db:"processorNumber"`
	Threshold       sql.NullFloat64 `db:"threashold"`
	Ratio           sql.NullFloat64 `db:"ratio"`
	Gain            sql.NullFloat64 `db:"gain"`
	Attack          sql.NullFloat64 `db:"attack"`
	Hold            sql.NullFloat64 `db:"hold"`
	Release         sql.NullFloat64 `db:"release"`
}

// GetDynamicProcessor returns the first processor row matching the given
// channel, snapshot and processor number. ErrDoesNotExist is returned when
// there is none.
func GetDynamicProcessor(ctx context.Context, db sqlx.QueryerContext, channelNumber, snapshotID int64, processor ProcessorNumber) (DynamicProcessor, error) {
	const query = `
		select
			channelNumber,
			snapshotId,
			processorNumber,
			threashold,
			ratio,
			gain,
			attack,
			hold,
			release
		from DynamicProcessor
		where
			channelNumber = ?
			and snapshotId = ?
			and processorNumber = ?
		limit 1`

	defer observeQuery("dynamic_processor")()

	var dp DynamicProcessor
	if err := sqlx.GetContext(ctx, db, &dp, query, channelNumber, snapshotID, processor); err != nil {
		return dp, queryError(query, err, "select error")
	}

	return dp, nil
}
