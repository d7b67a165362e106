package storage

import (
	"bytes"
	"context"
	"os"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	// sqlite driver for the session files
	_ "modernc.org/sqlite"
)

// sqliteMagic is the header every SQLite 3 database file starts with.
var sqliteMagic = []byte("SQLite format 3\x00")

// LoadOptions holds the options for loading a session.
type LoadOptions struct {
	// TempDir is the directory in which the session database is staged.
	// The OS temp directory is used when empty.
	TempDir string

	// MaxOpenConnections limits the number of open connections to the
	// session database. Defaults to 1.
	MaxOpenConnections int
}

// Session is a loaded console session. It is read-only once loaded and may
// be shared between goroutines.
type Session struct {
	ID       uuid.UUID
	LoadedAt time.Time
	Size     int

	db   *sqlx.DB
	path string
}

// Load loads the given session file contents. A *LoadError is returned when
// the bytes are not a readable SQLite database.
func Load(ctx context.Context, b []byte, opts LoadOptions) (*Session, error) {
	s, err := load(ctx, b, opts)
	if err != nil {
		sessionLoadCounter("error").Inc()
		return nil, err
	}
	sessionLoadCounter("ok").Inc()

	log.WithFields(log.Fields{
		"session_id": s.ID,
		"size":       s.Size,
	}).Info("storage: session loaded")

	return s, nil
}

func load(ctx context.Context, b []byte, opts LoadOptions) (*Session, error) {
	if len(b) < len(sqliteMagic) || !bytes.Equal(b[:len(sqliteMagic)], sqliteMagic) {
		return nil, &LoadError{Err: ErrInvalidSession}
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, errors.Wrap(err, "new uuid error")
	}

	f, err := os.CreateTemp(opts.TempDir, "session-*.sqlite")
	if err != nil {
		return nil, &LoadError{Err: errors.Wrap(err, "create temp file error")}
	}
	path := f.Name()

	if _, err := f.Write(b); err != nil {
		f.Close()
		os.Remove(path)
		return nil, &LoadError{Err: errors.Wrap(err, "write temp file error")}
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, &LoadError{Err: errors.Wrap(err, "close temp file error")}
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		os.Remove(path)
		return nil, &LoadError{Err: errors.Wrap(err, "open session database error")}
	}

	maxConns := opts.MaxOpenConnections
	if maxConns <= 0 {
		maxConns = 1
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(0)

	s := Session{
		ID:       id,
		LoadedAt: time.Now(),
		Size:     len(b),
		db:       db,
		path:     path,
	}

	// sqlite opens lazily, a corrupt file only fails on the first statement
	if _, err := s.tables(ctx); err != nil {
		s.Close()
		return nil, &LoadError{Err: err}
	}

	return &s, nil
}

// LoadFile reads and loads the session file at the given path.
func LoadFile(ctx context.Context, path string, opts LoadOptions) (*Session, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Err: errors.Wrap(err, "read session file error")}
	}
	return Load(ctx, b, opts)
}

// DB returns the underlying database handle.
func (s *Session) DB() *sqlx.DB {
	return s.db
}

// Close closes the session database and removes the staged file.
func (s *Session) Close() error {
	err := s.db.Close()
	if rmErr := os.Remove(s.path); rmErr != nil && !os.IsNotExist(rmErr) {
		log.WithError(rmErr).WithField("path", s.path).Warning("storage: remove session file error")
	}
	if err != nil {
		return errors.Wrap(err, "close session database error")
	}
	return nil
}

// Row is a single query result row, keyed by column name. Values are
// string, int64, float64, bool or nil.
type Row map[string]interface{}

// Query executes the given query with bound arguments. It returns an empty
// (non-nil) slice when no rows match and a *QueryError when the query fails.
func (s *Session) Query(ctx context.Context, query string, args ...interface{}) ([]Row, error) {
	defer observeQuery("adhoc")()

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, queryError(query, err, "select error")
	}
	defer rows.Close()

	out := []Row{}
	for rows.Next() {
		m := make(map[string]interface{})
		if err := rows.MapScan(m); err != nil {
			return nil, queryError(query, err, "scan error")
		}
		for k, v := range m {
			// text affinity values may come back as raw bytes
			if b, ok := v.([]byte); ok {
				m[k] = string(b)
			}
		}
		out = append(out, Row(m))
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(query, err, "rows error")
	}

	return out, nil
}

// Tables returns the names of the tables in the session.
func (s *Session) Tables(ctx context.Context) ([]string, error) {
	return s.tables(ctx)
}

func (s *Session) tables(ctx context.Context) ([]string, error) {
	const query = `
		select
			name
		from sqlite_master
		where
			type = 'table'
		order by name`

	defer observeQuery("tables")()

	names := []string{}
	if err := sqlx.SelectContext(ctx, s.db, &names, query); err != nil {
		return nil, queryError(query, err, "select error")
	}
	return names, nil
}

func queryError(query string, err error, description string) error {
	err = handleSQLiteError(err, query, description)
	if err != ErrDoesNotExist {
		queryErrorCounter().Inc()
	}
	return err
}
