package storage

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// Channel defines a console input channel within a snapshot. The ID is the
// row id, ChannelNumber is the stable key used by the other tables. A
// channel without a valid ChannelNumber has no rows in the other tables.
type Channel struct {
	ID            int64           `db:"id"`
	SnapshotID    int64           `db:"snapshotId"`
	ChannelNumber NullInt64       `db:"channelNumber"`
	Name          sql.NullString  `db:"name"`
	Gain          sql.NullFloat64 `db:"gain"`
}

// GetChannels returns the channels with an id within [minID, maxID] for the
// given snapshot, ordered by id.
func GetChannels(ctx context.Context, db sqlx.QueryerContext, minID, maxID, snapshotID int64) ([]Channel, error) {
	const query = `
		select
			id,
			snapshotId,
			channelNumber,
			name,
			gain
		from Channel
		where
			id between ? and ?
			and snapshotId = ?
		order by id`

	defer observeQuery("channels")()

	channels := []Channel{}
	if err := sqlx.SelectContext(ctx, db, &channels, query, minID, maxID, snapshotID); err != nil {
		return nil, queryError(query, err, "select error")
	}

	return channels, nil
}
