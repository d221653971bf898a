package feed_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lcastiglione/go-schedule/internal/config"
	"github.com/lcastiglione/go-schedule/internal/feed"
	"github.com/lcastiglione/go-schedule/pkg/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockFetcher simulates the network layer.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error) {
	args := m.Called(ctx, url, user, pass)
	if r := args.Get(0); r != nil {
		return r.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

var syncNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// crlf converts a readable fixture into RFC 5545 line endings.
func crlf(s string) string {
	return strings.ReplaceAll(s, "\n", "\r\n")
}

var holidayFeed = crlf(`BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Test//Holidays//EN
BEGIN:VEVENT
UID:mayo@test
DTSTAMP:20250101T000000Z
DTSTART;VALUE=DATE:20250525
SUMMARY:Revolución de Mayo
END:VEVENT
BEGIN:VEVENT
UID:independencia@test
DTSTAMP:20250101T000000Z
DTSTART;VALUE=DATE:20000709
RRULE:FREQ=YEARLY
SUMMARY:Día de la Independencia
END:VEVENT
END:VCALENDAR
`)

func TestRunSync_Web_Success(t *testing.T) {
	mockFetcher := new(MockFetcher)
	mockFetcher.On("Fetch", mock.Anything, "http://example.com/ar.ics", "user", "pw").
		Return(io.NopCloser(strings.NewReader(holidayFeed)), nil)

	gen := &feed.Generator{
		Clock:   schedule.FixedClock{At: syncNow},
		Fetcher: mockFetcher,
	}

	res, err := gen.RunSync(context.Background(), feed.SyncConfig{
		Mode: config.SourceModeWeb,
		URL:  "http://example.com/ar.ics",
		User: "user",
		Pass: "pw",
	})
	require.NoError(t, err)
	mockFetcher.AssertExpectations(t)

	// One single event plus the recurring one in 2024 and 2025 (2026-07-09 is past the window).
	assert.Len(t, res.Imported, 3)

	assert.False(t, res.Calendar.IsBusinessDay(time.Date(2025, 7, 9, 0, 0, 0, 0, time.UTC)))
	name, ok := res.Calendar.HolidayName(time.Date(2025, 7, 9, 10, 0, 0, 0, time.UTC))
	assert.True(t, ok)
	assert.Equal(t, "Día de la Independencia", name)

	ics := string(res.ICS)
	assert.Contains(t, ics, "BEGIN:VCALENDAR")
	assert.Contains(t, ics, "SUMMARY:Holiday: Revolución de Mayo")
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20240709")
	assert.Equal(t, 3, strings.Count(ics, "BEGIN:VEVENT"))
}

func TestRunSync_Local_Success(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holidays.ics")
	require.NoError(t, os.WriteFile(path, []byte(holidayFeed), 0o600))

	gen := &feed.Generator{Clock: schedule.FixedClock{At: syncNow}}

	res, err := gen.RunSync(context.Background(), feed.SyncConfig{
		Mode:      config.SourceModeLocal,
		LocalPath: path,
	})
	require.NoError(t, err)
	assert.False(t, res.Calendar.IsBusinessDay(time.Date(2025, 5, 25, 0, 0, 0, 0, time.UTC)))
}

func TestRunSync_NoSource_StaticHolidaysAndRules(t *testing.T) {
	christmas, err := schedule.ParseHolidayRule("Navidad", "FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=25")
	require.NoError(t, err)
	labour := schedule.Holiday{Date: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), Name: "Día del Trabajador"}

	gen := &feed.Generator{Clock: schedule.FixedClock{At: syncNow}}
	res, err := gen.RunSync(context.Background(), feed.SyncConfig{
		Holidays: []schedule.Holiday{labour},
		Rules:    []schedule.HolidayRule{christmas},
	})
	require.NoError(t, err)

	assert.Empty(t, res.Imported)
	assert.False(t, res.Calendar.IsBusinessDay(labour.Date))
	assert.False(t, res.Calendar.IsBusinessDay(time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC)))

	// 2025-05-01 plus Christmas 2024 and 2025.
	require.Len(t, res.Holidays, 3)
	assert.Equal(t, time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC), res.Holidays[0].Date)
	assert.Contains(t, string(res.ICS), feed.HolidayUID(labour))
}

func TestRunSync_EmptyCalendarReturnsStub(t *testing.T) {
	gen := &feed.Generator{Clock: schedule.FixedClock{At: syncNow}}
	res, err := gen.RunSync(context.Background(), feed.SyncConfig{})
	require.NoError(t, err)
	assert.Equal(t, config.StubVCalendar, string(res.ICS))
}

func TestRunSync_Web_NetworkError(t *testing.T) {
	mockFetcher := new(MockFetcher)
	expectedErr := errors.New("network unreachable")
	mockFetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, expectedErr)

	gen := &feed.Generator{Clock: schedule.FixedClock{At: syncNow}, Fetcher: mockFetcher}
	res, err := gen.RunSync(context.Background(), feed.SyncConfig{Mode: config.SourceModeWeb, URL: "http://bad-url.com"})

	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.Nil(t, res)
}

func TestRunSync_ConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		gen     *feed.Generator
		cfg     feed.SyncConfig
		wantErr string
	}{
		{"local path empty", &feed.Generator{}, feed.SyncConfig{Mode: config.SourceModeLocal}, config.ErrLocalPathEmpty},
		{"web URL empty", &feed.Generator{}, feed.SyncConfig{Mode: config.SourceModeWeb}, config.ErrWebURLEmpty},
		{"fetcher missing", &feed.Generator{}, feed.SyncConfig{Mode: config.SourceModeWeb, URL: "http://x"}, config.ErrFetcherMissing},
		{"unsupported mode", &feed.Generator{}, feed.SyncConfig{Mode: "carddav"}, config.ErrModeUnsupport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.gen.Clock = schedule.FixedClock{At: syncNow}
			_, err := tt.gen.RunSync(context.Background(), tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRunSync_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mockFetcher := new(MockFetcher)
	mockFetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, context.Canceled)

	gen := &feed.Generator{Clock: schedule.FixedClock{At: syncNow}, Fetcher: mockFetcher}
	_, err := gen.RunSync(ctx, feed.SyncConfig{Mode: config.SourceModeWeb, URL: "http://x"})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestWindow(t *testing.T) {
	from, to := feed.Window(syncNow)
	assert.Equal(t, time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC), to)
}
