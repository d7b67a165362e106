package storage

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// EqualiserBand defines a single parametric EQ band of a channel.
type EqualiserBand struct {
	ID         int64           `db:"id"`
	BandNumber NullInt64       `db:"bandNumber"`
	Name       sql.NullString  `db:"name"`
	Frequency  sql.NullFloat64 `db:"frequency"`
	Gain       sql.NullFloat64 `db:"gain"`
	QValue     sql.NullFloat64 `db:"qvalue"`
}

// GetEqualiserBands returns all EQ band rows of the given channel and
// snapshot, ordered by band number and id. Session files may contain more
// than one row per band number, these are all returned.
func GetEqualiserBands(ctx context.Context, db sqlx.QueryerContext, channelNumber, snapshotID int64) ([]EqualiserBand, error) {
	const query = `
		select
			id,
			bandNumber,
			name,
			frequency,
			gain,
			qvalue
		from EqualiserBand
		where
			channelNumber = ?
			and snapshotId = ?
		order by bandNumber, id`

	defer observeQuery("equaliser_bands")()

	bands := []EqualiserBand{}
	if err := sqlx.SelectContext(ctx, db, &bands, query, channelNumber, snapshotID); err != nil {
		return nil, queryError(query, err, "select error")
	}

	return bands, nil
}
