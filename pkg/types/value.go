package types

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// DateTimeFormat is the layout used for timestamps stored as text.
const DateTimeFormat = "2006-01-02 15:04:05"

// ErrInvalidValue is returned when a value cannot be stored in a column.
var ErrInvalidValue = errors.New("unsupported column value")

// NormalizeValue maps a Go value onto the column value domain: nil, string,
// int64, float64 or bool. Byte slices become strings. Unsigned integers above
// math.MaxInt64 are rejected with ErrInvalidValue.
//
// Times are converted to UTC and formatted with DateTimeFormat, so the zone
// offset and any fraction of a second are dropped. Store a formatted string
// instead when either must survive a round trip.
func NormalizeValue(v any) (any, error) {
	switch val := v.(type) {
	case nil, string, int64, float64, bool:
		return val, nil
	case []byte:
		return string(val), nil
	case int:
		return int64(val), nil
	case int8:
		return int64(val), nil
	case int16:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case uint:
		if uint64(val) > math.MaxInt64 {
			return nil, fmt.Errorf("%w: %d overflows int64", ErrInvalidValue, val)
		}
		return int64(val), nil
	case uint8:
		return int64(val), nil
	case uint16:
		return int64(val), nil
	case uint32:
		return int64(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return nil, fmt.Errorf("%w: %d overflows int64", ErrInvalidValue, val)
		}
		return int64(val), nil
	case float32:
		return float64(val), nil
	case time.Time:
		return val.UTC().Format(DateTimeFormat), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidValue, v)
	}
}

// IsEmpty reports whether a column value counts as empty: nil, "", "0",
// numeric zero or false.
func IsEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == "" || val == "0"
	case int64:
		return val == 0
	case float64:
		return val == 0
	case bool:
		return !val
	default:
		return false
	}
}
