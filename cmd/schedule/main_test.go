package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lcastiglione/go-schedule/internal/config"
	"github.com/lcastiglione/go-schedule/internal/feed"
	"github.com/lcastiglione/go-schedule/pkg/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

var cliNow = time.Date(2023, 5, 19, 15, 30, 0, 0, time.UTC)

// isolate keeps logs and the default database out of the real cache dir.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
}

// execute runs the command tree in-process with a fixed clock.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer

	a := newApp(strings.NewReader(stdin), &stdout)
	a.clock = schedule.FixedClock{At: cliNow}
	defer a.close()

	root := newRootCommand(a)
	root.SetArgs(args)
	root.SetIn(a.in)
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// settingsFile writes a UTC settings file with a private database.
func settingsFile(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, config.SettingsFileName)
	content := "timezone = \"UTC\"\n" +
		"database = \"" + filepath.ToSlash(filepath.Join(dir, config.DBFileName)) + "\"\n" +
		extra
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRunMain_ExitCodes(t *testing.T) {
	isolate(t)

	tests := []struct {
		name string
		args []string
		code int
		out  string
		err  string
	}{
		{name: "version", args: []string{"version"}, code: config.ExitCodeSuccess, out: "Go Schedule version dev"},
		{name: "unknown command", args: []string{"nope"}, code: config.ExitCodeError, err: "schedule: unknown command"},
		{name: "bad duration", args: []string{"format-duration", "soon"}, code: config.ExitCodeError, err: config.ErrArgs},
		{name: "bad date", args: []string{"business", "is", "someday"}, code: config.ExitCodeError, err: config.ErrDateParse},
		{name: "missing settings", args: []string{"--config", "/does/not/exist.toml", "today"}, code: config.ExitCodeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := runMain(tt.args, strings.NewReader(""), &stdout, &stderr)

			assert.Equal(t, tt.code, code)
			assert.Contains(t, stdout.String(), tt.out)
			assert.Contains(t, stderr.String(), tt.err)
		})
	}
}

func TestToday(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, "", "today")
	require.NoError(t, err)
	assert.Equal(t, "2023-05-19T12:30:00-03:00\n", out, "Default zone is Buenos Aires")

	out, _, err = execute(t, "", "today", "--tz", "UTC", "--format", time.DateTime)
	require.NoError(t, err)
	assert.Equal(t, "2023-05-19 15:30:00\n", out)

	_, _, err = execute(t, "", "today", "--tz", "Mars/Olympus")
	assert.ErrorIs(t, err, schedule.ErrUnknownZone)
}

func TestDateCommands(t *testing.T) {
	isolate(t)
	cfg := settingsFile(t, "")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"add months rolls over", []string{"add-date", "2024-01-31", "--months", "1"}, "2024-03-01 00:00:00\n"},
		{"add negative days", []string{"add-date", "2024-03-01 08:00:00", "--days", "-1"}, "2024-02-29 08:00:00\n"},
		{"parse", []string{"parse", "2023-05-19 10:00:00"}, "2023-05-19T10:00:00Z\t1684490400000\t10:00:00\n"},
		{"format duration", []string{"format-duration", "1500us"}, "1.5mS\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, "", append([]string{"--config", cfg}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestBusinessCommands(t *testing.T) {
	isolate(t)
	cfg := settingsFile(t, "holidays = [\"2023-05-25\"]\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"friday", []string{"business", "is", "2023-05-19"}, "2023-05-19 is a business day\n"},
		{"saturday", []string{"business", "is", "2023-05-20"}, "2023-05-20 is not a business day\n"},
		{"settings holiday", []string{"business", "is", "2023-05-25"}, "2023-05-25 is not a business day\n"},
		{"spanish", []string{"--lang", "es", "business", "is", "2023-05-19"}, "2023-05-19 es un día hábil\n"},
		{"next keeps", []string{"business", "next", "2023-05-19", "--keep"}, "2023-05-19\n"},
		{"next skips flag holiday", []string{"business", "next", "2023-05-19", "--holidays", "2023-05-22"}, "2023-05-23\n"},
		{"prev", []string{"business", "prev", "2023-05-22"}, "2023-05-19\n"},
		{"between excludes start", []string{"business", "between", "2023-05-24", "2023-05-29"}, "2023-05-26\n2023-05-29\n"},
		{"last", []string{"business", "last"}, "2023-05-19\n"},
		{"run", []string{"business", "run", "--cron", "0 9 * * *", "2023-05-19T10:00:00"}, "2023-05-22T09:00:00Z\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, "", append([]string{"--config", cfg}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}

	t.Run("run requires cron", func(t *testing.T) {
		_, _, err := execute(t, "", "--config", cfg, "business", "run")
		assert.Error(t, err)
	})
}

func TestHolidaysCommands(t *testing.T) {
	isolate(t)
	cfg := settingsFile(t, "")

	out, _, err := execute(t, "", "--config", cfg, "holidays", "list")
	require.NoError(t, err)
	assert.Equal(t, "No holidays stored\n", out, "Listing must not create the database")

	out, _, err = execute(t, "", "--config", cfg, "holidays", "add", "2023-05-19", "--name", "Puente")
	require.NoError(t, err)
	assert.Equal(t, "Holiday Puente added on 2023-05-19\n", out)

	out, _, err = execute(t, "", "--config", cfg, "business", "is", "2023-05-19")
	require.NoError(t, err)
	assert.Equal(t, "2023-05-19 is not a business day\n", out)

	out, _, err = execute(t, "", "--config", cfg, "holidays", "list")
	require.NoError(t, err)
	assert.Equal(t, "2023-05-19\tPuente\tmanual\n", out)

	out, _, err = execute(t, "", "--config", cfg, "holidays", "remove", "2023-05-19")
	require.NoError(t, err)
	assert.Equal(t, "Holiday on 2023-05-19 removed\n", out)

	_, _, err = execute(t, "", "--config", cfg, "holidays", "remove", "2023-05-19")
	assert.Error(t, err)

	_, _, err = execute(t, "", "--config", cfg, "holidays", "add", "19/05/2023")
	assert.ErrorIs(t, err, schedule.ErrUnparsableDate)
}

func TestHolidaysImport(t *testing.T) {
	isolate(t)

	ics := filepath.Join(t.TempDir(), "feed.ics")
	require.NoError(t, os.WriteFile(ics, []byte(strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Test//EN",
		"BEGIN:VEVENT",
		"UID:1",
		"DTSTAMP:20230101T000000Z",
		"DTSTART;VALUE=DATE:20230525",
		"SUMMARY:Revolución de Mayo",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")), 0o600))

	cfg := settingsFile(t, "[feed]\nmode = \"local\"\npath = \""+filepath.ToSlash(ics)+"\"\n")

	out, _, err := execute(t, "", "--config", cfg, "holidays", "import")
	require.NoError(t, err)
	assert.Equal(t, "1 holiday imported\n", out)

	out, _, err = execute(t, "", "--config", cfg, "holidays", "list")
	require.NoError(t, err)
	assert.Equal(t, "2023-05-25\tRevolución de Mayo\tfeed\n", out)

	t.Run("no feed", func(t *testing.T) {
		_, _, err := execute(t, "", "--config", settingsFile(t, ""), "holidays", "import")
		assert.EqualError(t, err, config.ErrNoFeedSource)
	})
}

func TestLogin(t *testing.T) {
	isolate(t)
	keyring.MockInit()

	out, stderr, err := execute(t, "s3cret\n", "login", "--user", "ana")
	require.NoError(t, err)
	assert.Equal(t, config.MsgPasswordPrompt, stderr)
	assert.Contains(t, out, "ana")
	assert.Equal(t, "s3cret", feed.LoadPassword("ana"))

	_, _, err = execute(t, "x\n", "login")
	assert.EqualError(t, err, config.ErrUserMissing)
}

func TestTimeit(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "", "timeit")
	assert.EqualError(t, err, config.ErrCommandMissing)

	bin, err := exec.LookPath("true")
	if err != nil {
		t.Skip("true is not available")
	}

	out, _, err := execute(t, "", "timeit", "--repeat", "2", "--", bin)
	require.NoError(t, err)
	assert.Contains(t, out, "ran in an average of")
	assert.Contains(t, out, "over 2 trials with 1 calls per trial")
}

func TestBusinessCommands_NoBusinessDay(t *testing.T) {
	isolate(t)

	var days []string
	for d := time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC); d.Year() < 2035; d = d.AddDate(0, 0, 1) {
		days = append(days, `"`+d.Format(time.DateOnly)+`"`)
	}
	cfg := settingsFile(t, "holidays = ["+strings.Join(days, ", ")+"]\n")

	for _, args := range [][]string{
		{"business", "next", "2023-05-19"},
		{"business", "prev", "2023-05-19", "--keep"},
		{"business", "last"},
	} {
		t.Run(args[1], func(t *testing.T) {
			out, _, err := execute(t, "", append([]string{"--config", cfg}, args...)...)
			assert.ErrorIs(t, err, schedule.ErrNoOccurrence)
			assert.Empty(t, out)
		})
	}

	var stdout, stderr bytes.Buffer
	code := runMain([]string{"--config", cfg, "business", "next", "2023-05-19"}, strings.NewReader(""), &stdout, &stderr)
	assert.Equal(t, config.ExitCodeError, code)
	assert.Contains(t, stderr.String(), config.ErrNoOccurrence)
}

func TestMsg_FallsBackWithoutCatalog(t *testing.T) {
	a := newApp(strings.NewReader(""), &bytes.Buffer{})

	assert.Equal(t, "No holidays stored", a.msg(config.TKeyHolidaysNone, nil, config.FallbackHolidaysNone))
	assert.Equal(t, "Holiday on 2023-05-19 removed",
		a.msg(config.TKeyHolidayRemoved, nil, fmt.Sprintf(config.FallbackHolidayRemove, "2023-05-19")))
}
