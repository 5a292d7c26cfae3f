package mapper

import (
	"math"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/rowkeeper/pkg/types"
)

// coerce converts a normalized value toward the affinity of the declared
// column type, the way SQLite would on storage. Values that do not convert
// cleanly are returned unchanged.
func coerce(v any, sqlType string) any {
	switch types.AffinityOf(sqlType) {
	case types.AffinityInteger:
		switch x := v.(type) {
		case bool:
			return boolInt(x)
		case float64:
			if x == math.Trunc(x) && x >= math.MinInt64 && x < math.MaxInt64 {
				return int64(x)
			}
		case string:
			if n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64); err == nil {
				return n
			}
		}
	case types.AffinityReal:
		switch x := v.(type) {
		case bool:
			return float64(boolInt(x))
		case int64:
			return float64(x)
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
				return f
			}
		}
	case types.AffinityNumeric:
		switch x := v.(type) {
		case bool:
			return boolInt(x)
		case string:
			s := strings.TrimSpace(x)
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return n
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f
			}
		}
	case types.AffinityText:
		switch x := v.(type) {
		case bool:
			return strconv.FormatInt(boolInt(x), 10)
		case int64:
			return strconv.FormatInt(x, 10)
		case float64:
			return strconv.FormatFloat(x, 'f', -1, 64)
		}
	}
	return v
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
