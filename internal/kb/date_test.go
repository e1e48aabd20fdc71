package kb

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want Date
	}{
		{"2025-06-15", NewDate(2025, time.June, 15)},
		{"2025-06-15T23:30:00Z", NewDate(2025, time.June, 15)},
		{"2025-06-15T23:30:00-02:00", NewDate(2025, time.June, 16)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate_Invalid(t *testing.T) {
	_, err := ParseDate("15.06.2025")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYY-MM-DD")
}

func TestDate_Arithmetic(t *testing.T) {
	d := NewDate(2025, time.March, 1)

	assert.Equal(t, NewDate(2025, time.February, 26), d.AddDays(-3))
	assert.True(t, d.AddDays(-1).Before(d))
	assert.False(t, d.Before(d))
	assert.Equal(t, 0, d.Compare(NewDate(2025, time.March, 1)))
	assert.Equal(t, "2025-03-01", d.String())
}

func TestDateOf_UsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	local := time.Date(2025, 6, 16, 2, 0, 0, 0, loc) // 2025-06-15 21:00 UTC
	assert.Equal(t, NewDate(2025, time.June, 15), DateOf(local))
}

func TestDate_JSON(t *testing.T) {
	a := Attempt{Date: NewDate(2025, time.June, 15), Correct: true}

	data, err := json.Marshal(a)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2025-06-15","correct":true}`, string(data))

	var back Attempt
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, a, back)
}

func TestDate_EmptyStringIsZero(t *testing.T) {
	var d Date
	require.NoError(t, d.UnmarshalText([]byte("")))
	assert.True(t, d.IsZero())
}

func TestDate_ZeroMarshalsEmpty(t *testing.T) {
	data, err := Date{}.MarshalText()
	require.NoError(t, err)
	assert.Empty(t, data)
}
