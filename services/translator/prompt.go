package translator

import (
	"fmt"
	"strings"
	"time"
)

// NextWeekday resolves "next <weekday>" relative to today: always the next
// occurrence strictly after today, rolling a full week when today already is
// the target weekday.
func NextWeekday(today time.Time, target time.Weekday) time.Time {
	delta := int(target) - int(today.Weekday())
	if delta <= 0 {
		delta += 7
	}
	return today.AddDate(0, 0, delta)
}

// ThisWeekday resolves "this <weekday>": the upcoming occurrence in the
// current week, rolling to next week when the target already passed or is
// today. Exception: on a Saturday, "this Sunday" means tomorrow.
func ThisWeekday(today time.Time, target time.Weekday) time.Time {
	if today.Weekday() == time.Saturday && target == time.Sunday {
		return today.AddDate(0, 0, 1)
	}
	delta := int(target) - int(today.Weekday())
	if delta <= 0 {
		delta += 7
	}
	return today.AddDate(0, 0, delta)
}

// buildInstructions assembles the system instructions for the translator.
// All relative dates are resolved here and injected as fixed strings so the
// model never does date arithmetic itself.
func buildInstructions(today time.Time, defaultTZ string) string {
	const dateFmt = "2006-01-02"

	current := today.Format(dateFmt)
	tomorrow := today.AddDate(0, 0, 1).Format(dateFmt)

	var b strings.Builder
	b.WriteString("You are an expert at parsing natural language meeting/event requests into structured JSON.\n")
	b.WriteString("Extract meeting details from the user's request. Return ONLY valid JSON (no extra text).\n\n")
	fmt.Fprintf(&b, "CRITICAL: Today's date is %s (%s). Use EXACTLY these dates for relative date calculations:\n", current, today.Weekday())
	fmt.Fprintf(&b, "- \"today\" = %s\n", current)
	fmt.Fprintf(&b, "- \"tomorrow\" = %s\n", tomorrow)
	fmt.Fprintf(&b, "- \"this Sunday\" = %s\n", ThisWeekday(today, time.Sunday).Format(dateFmt))
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		fmt.Fprintf(&b, "- \"next %s\" = %s\n", wd, NextWeekday(today, wd).Format(dateFmt))
	}
	fmt.Fprintf(&b, "- \"coming Sunday\" = %s\n", NextWeekday(today, time.Sunday).Format(dateFmt))

	b.WriteString(`
The output MUST be a single JSON object containing either a single "event" object or an "events" array. Each event object must have these exact fields (null if not mentioned):
- title: string (meeting name/subject) - infer from context if missing
- date: string in YYYY-MM-DD format, or null
- startHour: string "01" to "12" (12-hour format), or null
- startMinute: string ("00", "15", "30", "45"), or null
- startAmPm: string ("AM" or "PM"), or null
- endHour, endMinute, endAmPm: same shapes as the start fields, or null
`)
	fmt.Fprintf(&b, "- timeZone: IANA timezone string, default %q\n", defaultTZ)
	b.WriteString(`- addMeet: boolean (true if the user mentions video/meet/zoom/conference)
- guests: array of email strings (extract ALL mentioned emails), or empty array

An event object MAY also include these optional fields describing multi-meeting patterns:
- pattern: one of "single", "back-to-back", "sequential", "parallel"
- bufferMinutes: integer gap between consecutive meetings
- occurrences: integer number of repeated meetings
- perGuest: boolean (true to schedule separate meetings per guest)

Rules:
- If the request asks for "one-on-one" or "back-to-back" meetings with multiple guests, return an events array with one event per guest, each guests array holding only that guest, with pattern "back-to-back" and perGuest true.
- If a gap is requested but bufferMinutes is missing, infer 15.
- Use ONLY the exact dates listed above. Do not calculate dates yourself.
`)
	return b.String()
}
