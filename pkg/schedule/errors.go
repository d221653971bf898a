package schedule

import (
	"errors"

	"github.com/lcastiglione/go-schedule/internal/config"
)

var (
	// ErrClockUnavailable is returned when the time source cannot be read.
	ErrClockUnavailable = errors.New(config.ErrClockUnavailable)

	// ErrUnknownZone is returned when a time zone name cannot be resolved.
	ErrUnknownZone = errors.New(config.ErrUnknownZone)

	// ErrUnparsableDate is returned when a string matches none of the known layouts.
	ErrUnparsableDate = errors.New(config.ErrDateParse)

	// ErrNoOccurrence is returned when a recurrence never lands on a business day
	// within the search bound.
	ErrNoOccurrence = errors.New(config.ErrNoOccurrence)

	ErrInvalidCron = errors.New(config.ErrCronParse)
	ErrInvalidRule = errors.New(config.ErrRuleParse)
)
