package types

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type savingOwner struct {
	saved []*Record
}

func (o *savingOwner) Save(r *Record) error {
	o.saved = append(o.saved, r)
	return nil
}

func TestRecord_NewIsEmpty(t *testing.T) {
	r := NewRecord(articleSchema(), nil)

	assert.Equal(t, StateNew, r.State())
	assert.Empty(t, r.ModifiedColumns())
	assert.False(t, r.HasValue("name"))

	v, err := r.Get("name")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestRecord_SetMarksModified(t *testing.T) {
	r := NewRecord(articleSchema(), nil)

	require.NoError(t, r.Set("name", "Hello"))
	require.NoError(t, r.Set("id", 7))

	assert.True(t, r.HasValue("name"))
	assert.Equal(t, []string{"id", "name"}, r.ModifiedColumns())

	v, err := r.Get("id")
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)
}

func TestRecord_SetSameValueStillModified(t *testing.T) {
	r := NewRecord(articleSchema(), nil)
	require.NoError(t, r.Load("name", "Hello"))
	assert.False(t, r.IsModified("name"))

	require.NoError(t, r.Set("name", "Hello"))
	assert.True(t, r.IsModified("name"))
}

func TestRecord_NilValueCountsAsAssigned(t *testing.T) {
	r := NewRecord(articleSchema(), nil)
	require.NoError(t, r.Set("seo_url", nil))
	assert.True(t, r.HasValue("seo_url"))
	assert.True(t, r.IsModified("seo_url"))
}

func TestRecord_UnknownColumn(t *testing.T) {
	r := NewRecord(articleSchema(), nil)

	err := r.Set("nope", 1)
	assert.ErrorIs(t, err, ErrUnknownColumn)
	assert.Contains(t, err.Error(), `"nope"`)

	_, err = r.Get("nope")
	assert.ErrorIs(t, err, ErrUnknownColumn)

	assert.ErrorIs(t, r.Load("nope", 1), ErrUnknownColumn)
	assert.Empty(t, r.ModifiedColumns())
}

func TestRecord_InvalidValue(t *testing.T) {
	r := NewRecord(articleSchema(), nil)
	err := r.Set("name", []string{"a"})
	assert.ErrorIs(t, err, ErrInvalidValue)
	assert.False(t, r.HasValue("name"))
}

func TestRecord_UnsignedOverflowIsInvalid(t *testing.T) {
	r := NewRecord(articleSchema(), nil)

	assert.ErrorIs(t, r.Set("id", uint64(math.MaxUint64)), ErrInvalidValue)
	assert.ErrorIs(t, r.Set("id", uint64(math.MaxInt64)+1), ErrInvalidValue)
	assert.False(t, r.HasValue("id"))

	require.NoError(t, r.Set("id", uint64(math.MaxInt64)))
	v, err := r.Get("id")
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), v)
}

func TestRecord_LoadDoesNotMarkModified(t *testing.T) {
	r := NewRecord(articleSchema(), nil)
	require.NoError(t, r.Load("name", []byte("raw")))

	v, err := r.Get("name")
	require.NoError(t, err)
	assert.Equal(t, "raw", v)
	assert.Empty(t, r.ModifiedColumns())
}

func TestRecord_GetValues(t *testing.T) {
	r := NewRecord(articleSchema(), nil)
	require.NoError(t, r.Set("id", 3))
	require.NoError(t, r.Set("name", "x"))

	vals, err := r.GetValues("id", "name")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": int64(3), "name": "x"}, vals)

	_, err = r.GetValues("id", "seo_url", "created")
	var mk *MissingKeyError
	require.True(t, errors.As(err, &mk))
	assert.Equal(t, []string{"seo_url", "created"}, mk.Columns)
	assert.True(t, IsMissingKey(err))

	_, err = r.GetValues("bogus")
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestRecord_Primary(t *testing.T) {
	r := NewRecord(articleSchema(), nil)

	_, err := r.Primary()
	assert.True(t, IsMissingKey(err))

	require.NoError(t, r.Load("id", int64(42)))
	pk, err := r.Primary()
	require.NoError(t, err)
	assert.Equal(t, int64(42), pk)
}

func TestRecord_ClearModifiedAndState(t *testing.T) {
	r := NewRecord(articleSchema(), nil)
	require.NoError(t, r.Set("name", "x"))
	r.ClearModified()
	assert.Empty(t, r.ModifiedColumns())
	assert.True(t, r.HasValue("name"))

	r.SetState(StateExisting)
	assert.Equal(t, StateExisting, r.State())
}

func TestRecord_FireRunsHooksInOrder(t *testing.T) {
	r := NewRecord(articleSchema(), nil)
	var order []string
	r.On(EventBeforeInsert, func(*Record) error { order = append(order, "first"); return nil })
	r.On(EventBeforeInsert, func(*Record) error { order = append(order, "second"); return nil })
	r.On(EventAfterInsert, func(*Record) error { order = append(order, "after"); return nil })

	require.NoError(t, r.Fire(EventBeforeInsert))
	assert.Equal(t, []string{"first", "second"}, order)
	assert.Equal(t, 2, r.HookCount(EventBeforeInsert))
	assert.Equal(t, 0, r.HookCount(EventBeforeDelete))
	require.NoError(t, r.Fire(EventBeforeDelete))
}

func TestRecord_FireStopsOnError(t *testing.T) {
	r := NewRecord(articleSchema(), nil)
	boom := errors.New("boom")
	ran := false
	r.On(EventBeforeUpdate, func(*Record) error { return boom })
	r.On(EventBeforeUpdate, func(*Record) error { ran = true; return nil })

	assert.ErrorIs(t, r.Fire(EventBeforeUpdate), boom)
	assert.False(t, ran)
}

func TestRecord_HookReceivesRecord(t *testing.T) {
	r := NewRecord(articleSchema(), nil)
	r.On(EventBeforeInsert, func(rec *Record) error { return rec.Set("seo_url", "derived") })

	require.NoError(t, r.Fire(EventBeforeInsert))
	v, _ := r.Get("seo_url")
	assert.Equal(t, "derived", v)
	assert.True(t, r.IsModified("seo_url"))
}

func TestRecord_Save(t *testing.T) {
	detached := NewRecord(articleSchema(), nil)
	assert.ErrorIs(t, detached.Save(), ErrDetached)

	owner := &savingOwner{}
	r := NewRecord(articleSchema(), owner)
	require.NoError(t, r.Save())
	assert.Equal(t, []*Record{r}, owner.saved)
}

func TestNormalizeValue(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	tests := []struct {
		in   any
		want any
	}{
		{nil, nil},
		{"s", "s"},
		{[]byte("b"), "b"},
		{int(1), int64(1)},
		{int32(2), int64(2)},
		{uint8(3), int64(3)},
		{uint64(math.MaxInt64), int64(math.MaxInt64)},
		{float32(1.5), float64(1.5)},
		{true, true},
		{ts, "2024-03-01 12:30:00"},
		{time.Date(2024, 3, 1, 14, 30, 0, 999, time.FixedZone("CEST", 2*3600)), "2024-03-01 12:30:00"},
	}
	for _, tt := range tests {
		got, err := NormalizeValue(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := NormalizeValue(struct{}{})
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestIsEmpty(t *testing.T) {
	for _, v := range []any{nil, "", "0", int64(0), float64(0), false} {
		assert.True(t, IsEmpty(v), "IsEmpty(%#v)", v)
	}
	for _, v := range []any{"x", int64(1), 0.5, true} {
		assert.False(t, IsEmpty(v), "IsEmpty(%#v)", v)
	}
}
