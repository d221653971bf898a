package feed

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/lcastiglione/go-schedule/internal/config"
	"github.com/lcastiglione/go-schedule/pkg/schedule"
)

// DecodeHolidays reads every VEVENT of an iCalendar stream as a holiday dated
// on its DTSTART civil day. Recurring events are expanded over [from, to].
// Malformed events are logged and skipped.
func DecodeHolidays(r io.Reader, from, to time.Time) ([]schedule.Holiday, error) {
	loc := from.Location()
	dec := ical.NewDecoder(r)

	var out []schedule.Holiday
	for {
		cal, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrICalParse, err)
		}

		for _, ev := range cal.Events() {
			hs, err := eventHolidays(ev, from, to, loc)
			if err != nil {
				slog.Warn(config.MsgSkippedEvent,
					config.LogKeyComponent, config.CompFeed,
					config.LogKeyError, err)
				continue
			}
			out = append(out, hs...)
		}
	}
	return out, nil
}

func eventHolidays(ev ical.Event, from, to time.Time, loc *time.Location) ([]schedule.Holiday, error) {
	start, err := ev.DateTimeStart(loc)
	if err != nil {
		return nil, err
	}
	if start.IsZero() {
		return nil, errors.New(config.ErrDateParse)
	}

	name := config.FallbackName
	if summary, err := ev.Props.Text(config.PropSummary); err == nil && summary != "" {
		name = summary
	}

	set, err := ev.RecurrenceSet(loc)
	if err != nil {
		return nil, err
	}
	if set == nil {
		return []schedule.Holiday{{Date: midnight(start, loc), Name: name}}, nil
	}

	var out []schedule.Holiday
	for _, t := range set.Between(midnight(from, loc), midnight(to, loc).AddDate(0, 0, 1), true) {
		out = append(out, schedule.Holiday{Date: midnight(t, loc), Name: name})
	}
	return out, nil
}

func midnight(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Render encodes holidays as an iCalendar feed of all-day events. An empty
// list yields a minimal valid VCALENDAR so clients do not flag the feed.
func Render(holidays []schedule.Holiday, now time.Time) ([]byte, error) {
	if len(holidays) == 0 {
		return []byte(config.StubVCalendar), nil
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	for _, h := range holidays {
		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, HolidayUID(h))
		event.Props.SetText(config.PropSummary, fmt.Sprintf(config.SummaryHoliday, h.Name))
		event.Props.SetText(config.PropCategories, config.CategoryHoliday)
		event.Props.Set(dtStampProp)

		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDate(h.Date)
		event.Props.Set(dtStartProp)

		cal.Children = append(cal.Children, event.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return buf.Bytes(), nil
}

// HolidayUID derives a UID that stays stable across refreshes.
func HolidayUID(h schedule.Holiday) string {
	input := fmt.Sprintf(config.FormatHashInput, h.Name, h.Date.Format(config.DateLayoutISO), config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf(config.FormatUID, fmt.Sprintf("%x", hash[:config.UIDHashLength]), config.ICalDomain)
}
