package mapper

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		sqlType string
		want    any
	}{
		{"integer from text", "42", "INTEGER", int64(42)},
		{"integer from padded text", " 7 ", "BIGINT", int64(7)},
		{"integer keeps non-numeric text", "abc", "INT", "abc"},
		{"integer from whole float", 3.0, "INTEGER", int64(3)},
		{"integer keeps fraction", 3.5, "INTEGER", 3.5},
		{"integer keeps float above range", 1e300, "INTEGER", 1e300},
		{"integer keeps float below range", -1e300, "INTEGER", -1e300},
		{"integer keeps two to the 63rd", math.Exp2(63), "INTEGER", math.Exp2(63)},
		{"integer from smallest int64", float64(math.MinInt64), "INTEGER", int64(math.MinInt64)},
		{"integer keeps infinity", math.Inf(1), "INTEGER", math.Inf(1)},
		{"integer from bool", true, "INTEGER", int64(1)},
		{"real from int", int64(2), "REAL", float64(2)},
		{"real from text", "2.5", "DOUBLE", 2.5},
		{"numeric from int text", "10", "DECIMAL(10,2)", int64(10)},
		{"numeric from float text", "1.25", "NUMERIC", 1.25},
		{"numeric keeps datetime text", "2024-05-01 10:00:00", "DATETIME", "2024-05-01 10:00:00"},
		{"numeric from bool", false, "BOOLEAN", int64(0)},
		{"text from int", int64(5), "VARCHAR(20)", "5"},
		{"text from float", 1.5, "TEXT", "1.5"},
		{"text from bool", true, "TEXT", "1"},
		{"blob untouched", int64(5), "BLOB", int64(5)},
		{"untyped untouched", "5", "", "5"},
		{"nil untouched", nil, "INTEGER", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, coerce(tt.value, tt.sqlType))
		})
	}
}
