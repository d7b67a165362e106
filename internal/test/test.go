package test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"

	// sqlite driver for the fixture files
	_ "modernc.org/sqlite"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

// Schema contains the subset of the console session schema used by
// digico-report.
var Schema = []string{
	`create table Channel (
		id integer primary key,
		snapshotId integer,
		channelNumber integer,
		name text,
		gain real
	)`,
	`create table EqualiserBand (
		id integer primary key,
		channelNumber integer,
		snapshotId integer,
		bandNumber integer,
		name text,
		frequency real,
		gain real,
		qvalue real
	)`,
	`create table DynamicProcessor (
		id integer primary key,
		channelNumber integer,
		snapshotId integer,
		processorNumber integer,
		threashold real,
		ratio real,
		gain real,
		attack real,
		hold real,
		release real
	)`,
	`create table Passband (
		id integer primary key,
		channelNumber integer,
		snapshotId integer,
		highPassEnabled integer,
		highPassFrequency real,
		lowPassEnabled integer,
		lowPassFrequency real
	)`,
}

// MustSessionFile creates a session database containing the Schema and the
// given statements and returns its contents.
func MustSessionFile(t testing.TB, statements ...string) []byte {
	t.Helper()
	return MustSQLiteFile(t, append(append([]string{}, Schema...), statements...)...)
}

// MustSQLiteFile creates a SQLite database by executing the given statements
// and returns its contents.
func MustSQLiteFile(t testing.TB, statements ...string) []byte {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.session")
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			t.Fatalf("exec %q error: %s", stmt, err)
		}
	}

	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

// DemoSession returns the statements of a small but complete session:
// channels 1 and 2 with EQ, dynamics and passband, channel 3 with EQ only,
// plus rows of another snapshot and outside the channel id range.
func DemoSession() []string {
	return []string{
		`insert into Channel (id, snapshotId, channelNumber, name, gain) values
			(20, 10000, 0, 'Talkback', 0),
			(21, 10000, 1, 'Kick', 2.5),
			(22, 10000, 2, 'Snare', -1.25),
			(23, 10000, 3, 'Vox', 0),
			(117, 10000, 97, 'Out of range', 0),
			(30, 10001, 10, 'Other snapshot', 0)`,
		`insert into EqualiserBand (id, channelNumber, snapshotId, bandNumber, name, frequency, gain, qvalue) values
			(7, 1, 10000, 1, 'LowDup', 90, 9, 2),
			(5, 1, 10000, 1, 'Low', 80, 3, 1.5),
			(8, 1, 10000, 0, 'Sub', 40, -2, 1),
			(9, 1, 10000, 2, 'High', 6000, 1.5, 0.7),
			(10, 1, 10001, 0, 'Wrong snapshot', 100, 12, 1),
			(11, 2, 10000, 0, 'Body', 200, 4, 1),
			(12, 3, 10000, 0, 'Presence', 3000, 2, 2)`,
		`insert into DynamicProcessor (channelNumber, snapshotId, processorNumber, threashold, ratio, gain, attack, hold, release) values
			(1, 10000, 0, -18, 4, 3, 0.005, 0, 0.12),
			(1, 10000, 0, -30, 8, 0, 0.001, 0, 0.5),
			(1, 10000, 1, -40, 0, 0, 0.0005, 0.05, 0.2),
			(2, 10000, 0, -12, 2, 1, 0.01, 0, 0.25)`,
		`insert into Passband (channelNumber, snapshotId, highPassEnabled, highPassFrequency, lowPassEnabled, lowPassFrequency) values
			(1, 10000, 1, 100, 0, 18000),
			(2, 10000, 0, 80, 1, 12000)`,
	}
}
