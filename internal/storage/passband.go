package storage

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// Passband defines the high-pass and low-pass filter settings of a channel.
type Passband struct {
	ChannelNumber     int64           `db:"channelNumber"`
	SnapshotID        int64           `db:"snapshotId"`
	HighPassEnabled   NullBool        `db:"highPassEnabled"`
	HighPassFrequency sql.NullFloat64 `db:"highPassFrequency"`
	LowPassEnabled    NullBool        `db:"lowPassEnabled"`
	LowPassFrequency  sql.NullFloat64 `db:"lowPassFrequency"`
}

// GetPassband returns the first passband row of the given channel and
// snapshot. ErrDoesNotExist is returned when there is none.
func GetPassband(ctx context.Context, db sqlx.QueryerContext, channelNumber, snapshotID int64) (Passband, error) {
	const query = `
		select
			channelNumber,
			snapshotId,
			highPassEnabled,
			highPassFrequency,
			lowPassEnabled,
			lowPassFrequency
		from Passband
		where
			channelNumber = ?
			and snapshotId = ?
		limit 1`

	defer observeQuery("passband")()

	var pb Passband
	if err := sqlx.GetContext(ctx, db, &pb, query, channelNumber, snapshotID); err != nil {
		return pb, queryError(query, err, "select error")
	}

	return pb, nil
}
