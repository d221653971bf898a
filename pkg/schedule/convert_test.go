package schedule_test

import (
	"testing"
	"time"

	"github.com/lcastiglione/go-schedule/pkg/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMillis(t *testing.T) {
	loc := schedule.DefaultLocation()

	assert.Equal(t, int64(1684465200000), schedule.ToMillis(time.Date(2023, 5, 19, 0, 0, 0, 0, loc)))

	ms, err := schedule.ParseToMillis("2023-05-19")
	require.NoError(t, err)
	assert.Equal(t, int64(1684465200000), ms)

	got := schedule.FromMillis(1684465200000)
	assert.True(t, got.Equal(time.Date(2023, 5, 19, 0, 0, 0, 0, loc)))
	assert.Equal(t, loc, got.Location())

	_, err = schedule.ParseToMillis("19/05/2023")
	assert.ErrorIs(t, err, schedule.ErrUnparsableDate)
}

func TestSecondsOfDay(t *testing.T) {
	assert.Equal(t, 45045, schedule.SecondsOfDay(time.Date(2023, 5, 19, 12, 30, 45, 0, time.UTC)))
	assert.Equal(t, 0, schedule.SecondsOfDay(date(2023, 5, 19)))
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "12:30:45", schedule.FormatSeconds(45045))
	assert.Equal(t, "25:01:01", schedule.FormatSeconds(90061))
	assert.Equal(t, "0:00:00", schedule.FormatSeconds(0))
	assert.Equal(t, "-0:01:01", schedule.FormatSeconds(-61))
}

func TestParseDate(t *testing.T) {
	loc := schedule.DefaultLocation()

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2023-05-19 12:30:45", time.Date(2023, 5, 19, 12, 30, 45, 0, loc)},
		{"2023-05-19", time.Date(2023, 5, 19, 0, 0, 0, 0, loc)},
		{"2023-05-19T12:30:45.123456", time.Date(2023, 5, 19, 12, 30, 45, 123456000, loc)},
		{"2023-05-19 12:30:45.5", time.Date(2023, 5, 19, 12, 30, 45, 500000000, loc)},
		{"2023-05-19T12:30:45.5Z", time.Date(2023, 5, 19, 12, 30, 45, 500000000, time.UTC)},
		{"2023-05-19T12:30:45", time.Date(2023, 5, 19, 12, 30, 45, 0, loc)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := schedule.ParseDate(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
		})
	}

	_, err := schedule.ParseDate("tomorrow")
	assert.ErrorIs(t, err, schedule.ErrUnparsableDate)
}

func TestParseDateIn(t *testing.T) {
	got, err := schedule.ParseDateIn("2023-05-19", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, date(2023, 5, 19), got)
}

func TestParseDates(t *testing.T) {
	got, err := schedule.ParseDates([]string{"2023-05-19", "2023-05-20"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 19, got[0].Day())
	assert.Equal(t, 20, got[1].Day())

	_, err = schedule.ParseDates([]string{"2023-05-19", "nope"})
	assert.ErrorIs(t, err, schedule.ErrUnparsableDate)
	assert.ErrorContains(t, err, "entry 1")

	got, err = schedule.ParseDates(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
