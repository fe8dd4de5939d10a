package utils

import (
	"fmt"
	"strconv"
	"time"
)

// DateFormat is the calendar-date layout used across the scheduling pipeline.
const DateFormat = "2006-01-02"

const minutesPerDay = 24 * 60

// DayTime is a calendar date plus a 12-hour wall-clock time.
type DayTime struct {
	Date   string // YYYY-MM-DD
	Hour   string // "01".."12"
	Minute string // "00".."59"
	AmPm   string // "AM" or "PM"
}

// To24Hour converts a 12-hour clock triple into "HH:MM".
// Midnight is 12 AM -> 00, noon is 12 PM -> 12.
func To24Hour(hour, minute, meridiem string) string {
	h, _ := strconv.Atoi(hour)
	m := minute
	if m == "" {
		m = "00"
	}
	if meridiem == "PM" && h != 12 {
		h += 12
	}
	if meridiem == "AM" && h == 12 {
		h = 0
	}
	return fmt.Sprintf("%02d:%s", h, m)
}

// ToMinutesSinceMidnight converts a 12-hour clock triple into the number of
// minutes since midnight, in [0, 1439].
func ToMinutesSinceMidnight(hour, minute, meridiem string) int {
	h, _ := strconv.Atoi(hour)
	m, _ := strconv.Atoi(minute)
	if meridiem == "PM" && h != 12 {
		h += 12
	}
	if meridiem == "AM" && h == 12 {
		h = 0
	}
	return h*60 + m
}

// MinutesToClockParts converts minutes since midnight back into a 12-hour
// clock triple. The total is normalized modulo 1440, so negative offsets and
// values past a day boundary are safe.
func MinutesToClockParts(total int) (hour, minute, meridiem string) {
	day := ((total % minutesPerDay) + minutesPerDay) % minutesPerDay
	h := day / 60
	m := day % 60

	meridiem = "AM"
	if h >= 12 {
		meridiem = "PM"
	}
	if h == 0 {
		h = 12
	} else if h > 12 {
		h -= 12
	}
	return fmt.Sprintf("%02d", h), fmt.Sprintf("%02d", m), meridiem
}

// AddDays shifts a YYYY-MM-DD date by the given number of days. A date that
// does not parse is returned unchanged; callers validate dates before doing
// arithmetic on them.
func AddDays(date string, days int) string {
	t, err := time.Parse(DateFormat, date)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, days).Format(DateFormat)
}

// AddMinutes adds delta minutes to a date plus 12-hour clock time, rolling
// the date forward or backward across midnight as needed.
func AddMinutes(date, hour, minute, meridiem string, delta int) DayTime {
	total := ToMinutesSinceMidnight(hour, minute, meridiem) + delta

	dayOffset := total / minutesPerDay
	if total < 0 && total%minutesPerDay != 0 {
		dayOffset--
	}

	h, m, ampm := MinutesToClockParts(total)
	return DayTime{
		Date:   AddDays(date, dayOffset),
		Hour:   h,
		Minute: m,
		AmPm:   ampm,
	}
}
