package storage

import (
	"context"
	"fmt"
)

// BrowsableTables holds the tables that can be browsed per channel.
var BrowsableTables = []string{
	"Channel",
	"EqualiserBand",
	"DynamicProcessor",
	"Passband",
}

// GetTableRows returns all rows of the given table for the given channel
// and snapshot. Only BrowsableTables are accepted as the table name can not
// be bound as a query parameter.
func GetTableRows(ctx context.Context, s *Session, table string, channelNumber, snapshotID int64) ([]Row, error) {
	if !isBrowsableTable(table) {
		return nil, ErrUnknownTable
	}

	query := fmt.Sprintf(`
		select
			*
		from %s
		where
			channelNumber = ?
			and snapshotId = ?`, table)

	return s.Query(ctx, query, channelNumber, snapshotID)
}

func isBrowsableTable(table string) bool {
	for _, t := range BrowsableTables {
		if t == table {
			return true
		}
	}
	return false
}
