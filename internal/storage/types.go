package storage

import (
	"database/sql/driver"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// NullBool is a nullable boolean. Session files store flags as integers,
// reals or text depending on the console software version, so all of these
// are accepted.
type NullBool struct {
	Bool  bool
	Valid bool
}

// Scan implements sql.Scanner.
func (b *NullBool) Scan(src interface{}) error {
	b.Bool, b.Valid = false, false

	switch v := src.(type) {
	case nil:
		return nil
	case bool:
		b.Bool = v
	case int64:
		b.Bool = v != 0
	case float64:
		b.Bool = v != 0
	case []byte:
		return b.scanString(string(v))
	case string:
		return b.scanString(v)
	default:
		return errors.Errorf("unsupported bool type %T", src)
	}

	b.Valid = true
	return nil
}

func (b *NullBool) scanString(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if v, err := strconv.ParseBool(s); err == nil {
		b.Bool, b.Valid = v, true
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		b.Bool, b.Valid = f != 0, true
		return nil
	}

	return errors.Errorf("invalid bool value %q", s)
}

// Value implements driver.Valuer.
func (b NullBool) Value() (driver.Value, error) {
	if !b.Valid {
		return nil, nil
	}
	return b.Bool, nil
}

// NullInt64 is a nullable integer key. Values that do not hold an integer
// (NULL, empty or non-numeric text, fractional reals) scan as invalid
// instead of failing the row, so a single broken key never fails a select.
type NullInt64 struct {
	Int64 int64
	Valid bool
}

// Scan implements sql.Scanner.
func (n *NullInt64) Scan(src interface{}) error {
	n.Int64, n.Valid = 0, false

	switch v := src.(type) {
	case nil:
	case int64:
		n.Int64, n.Valid = v, true
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			n.Int64, n.Valid = int64(v), true
		}
	case bool:
		if v {
			n.Int64 = 1
		}
		n.Valid = true
	case []byte:
		n.scanString(string(v))
	case string:
		n.scanString(v)
	default:
		return errors.Errorf("unsupported integer type %T", src)
	}

	return nil
}

func (n *NullInt64) scanString(s string) {
	if v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
		n.Int64, n.Valid = v, true
	}
}

// Value implements driver.Valuer.
func (n NullInt64) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Int64, nil
}

// String returns the integer, or "-" when invalid.
func (n NullInt64) String() string {
	if !n.Valid {
		return "-"
	}
	return strconv.FormatInt(n.Int64, 10)
}
