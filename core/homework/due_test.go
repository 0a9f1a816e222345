package homework

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDueFromParts(t *testing.T) {
	tests := []struct {
		name    string
		day     string
		hour    int
		minute  int
		want    string
		wantErr bool
	}{
		{name: "padded", day: "2024-07-30", hour: 9, minute: 5, want: "2024-07-30 09:05"},
		{name: "midnight", day: "2024-07-30", hour: 0, minute: 0, want: "2024-07-30 00:00"},
		{name: "bad day", day: "30/07/2024", hour: 9, minute: 5, wantErr: true},
		{name: "bad hour", day: "2024-07-30", hour: 24, minute: 0, wantErr: true},
		{name: "bad minute", day: "2024-07-30", hour: 9, minute: 60, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			due, err := DueFromParts(tt.day, tt.hour, tt.minute)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, ErrMalformedDue, errors.Cause(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, due.String())
		})
	}
}

func TestDue_In(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	for _, raw := range []string{"2024-07-30 09:05", "2024-07-30 9:5"} {
		got, err := DueFromString(raw).In(tokyo)
		require.NoError(t, err, raw)
		assert.True(t, got.Equal(time.Date(2024, 7, 30, 9, 5, 0, 0, tokyo)), raw)
	}

	_, err = DueFromString("tomorrow").In(tokyo)
	assert.Equal(t, ErrMalformedDue, errors.Cause(err))
}

func TestDue_PassedAt(t *testing.T) {
	due := DueFromString("2024-07-30 09:05")
	at := func(hour, minute int) time.Time { return time.Date(2024, 7, 30, hour, minute, 0, 0, time.UTC) }

	passed, err := due.PassedAt(at(9, 4))
	require.NoError(t, err)
	assert.False(t, passed)

	passed, err = due.PassedAt(at(9, 5))
	require.NoError(t, err)
	assert.False(t, passed, "due time itself is not past")

	passed, err = due.PassedAt(at(9, 6))
	require.NoError(t, err)
	assert.True(t, passed)

	_, err = DueFromString("").PassedAt(at(9, 6))
	assert.Error(t, err)
}

func TestDue_Parts(t *testing.T) {
	day, hour, minute, err := DueFromString("2024-07-30 9:5").Parts()
	require.NoError(t, err)
	assert.Equal(t, "2024-07-30", day)
	assert.Equal(t, 9, hour)
	assert.Equal(t, 5, minute)

	assert.Equal(t, "2024/07/30 09:05 (Tue)", DueFromString("2024-07-30 9:5").Display())
	assert.Equal(t, "lol", DueFromString("lol").Display())
}

func TestStatusFromCode(t *testing.T) {
	for _, s := range Statuses {
		got, err := StatusFromCode(s.Code())
		require.NoError(t, err)
		assert.Equal(t, s, got)

		parsed, err := ParseStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	for _, code := range []int{-1, 2, 4} {
		_, err := StatusFromCode(code)
		assert.Equal(t, ErrUnknownStatus, errors.Cause(err), "code %d", code)
	}
	_, err := ParseStatus("done")
	assert.Equal(t, ErrUnknownStatus, errors.Cause(err))
}
