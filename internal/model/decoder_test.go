package model

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecoder(t *testing.T) {
	id := uuid.MustParse("01900000-0000-7000-8000-000000000001")
	columns := []string{"id", "name", "description", "web_id", "raw_id"}

	d := newDecoder("user", columns, []any{int64(3), []byte("Ana"), nil, id.String(), id[:]})
	assert.Equal(t, int64(3), d.Int64("id"))
	assert.Equal(t, "Ana", d.String("name"))
	assert.Nil(t, d.OptionalString("description"))
	assert.Equal(t, id, d.UUID("web_id"))
	assert.Equal(t, id, d.UUID("raw_id"))
	require.NoError(t, d.Err())
}

func TestDecoder_FirstErrorWins(t *testing.T) {
	d := newDecoder("plan", []string{"id", "name"}, []any{"seven", nil})

	_ = d.Int64("id")
	_ = d.String("name")
	_ = d.Time("ctime")

	var de *DecodeError
	require.True(t, errors.As(d.Err(), &de))
	assert.Equal(t, "plan", de.Entity)
	assert.Equal(t, "id", de.Column)
}

func TestDecoder_Failures(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		decode func(d *Decoder)
	}{
		{name: "null text", value: nil, decode: func(d *Decoder) { d.String("c") }},
		{name: "null date", value: nil, decode: func(d *Decoder) { d.Date("c") }},
		{name: "bad date", value: "2024-13-01", decode: func(d *Decoder) { d.Date("c") }},
		{name: "bad uuid", value: "not-a-uuid", decode: func(d *Decoder) { d.UUID("c") }},
		{name: "bad timestamp", value: "noon", decode: func(d *Decoder) { d.Time("c") }},
		{name: "float id", value: 1.5, decode: func(d *Decoder) { d.Int64("c") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDecoder("user_date", []string{"c"}, []any{tt.value})
			tt.decode(d)

			var de *DecodeError
			require.ErrorAs(t, d.Err(), &de)
			assert.Equal(t, "c", de.Column)
		})
	}
}

func TestDecoder_MissingColumn(t *testing.T) {
	d := newDecoder("plan", []string{"id"}, []any{int64(1)})
	_ = d.String("name")
	assert.ErrorContains(t, d.Err(), "plan.name")
}
