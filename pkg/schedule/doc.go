// Package schedule provides functions for handling times and dates.
//
// This package includes:
//   - Today() and Provider for reading the current time in a zone
//   - Calendar for business days, holidays and yearly holiday rules
//   - AddDate, AdjustDate and TimeOfDay for calendar and clock arithmetic
//   - ParseDate, ToMillis, FromMillis and SecondsOfDay conversions
//   - FormatDuration and Measure for timing code
//   - Randomizer for generating date fixtures
//
// Unless stated otherwise, functions without an explicit location use the
// default zone America/Argentina/Buenos_Aires.
package schedule
