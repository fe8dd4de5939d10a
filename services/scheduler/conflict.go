package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"slotwise/models"
	"slotwise/utils"
)

// DetectConflicts checks every proposed instance against the events already
// on the calendar for its date. Each instance reports at most its first
// overlap. A day listing that fails is logged and treated as conflict-free
// rather than failing the whole batch.
func (s *Service) DetectConflicts(ctx context.Context, store Store, instances []models.EventInstance) []models.Conflict {
	dayCache := make(map[string][]models.ExistingEvent)

	var conflicts []models.Conflict
	for idx, inst := range instances {
		existing, ok := dayCache[inst.Date]
		if !ok {
			var err error
			existing, err = store.ListDay(ctx, inst.Date)
			if err != nil {
				log.Printf("[scheduler] conflict check skipped for %s: %v", inst.Date, err)
				existing = nil
			}
			dayCache[inst.Date] = existing
		}

		propStart, propEnd := instanceWindow(inst)
		for _, ev := range existing {
			if ev.AllDay {
				continue
			}
			evStart, evEnd, err := eventWindow(ev)
			if err != nil {
				continue
			}
			if overlaps(propStart, propEnd, evStart, evEnd) {
				conflicts = append(conflicts, models.Conflict{
					InstanceIdx: idx,
					Proposed:    proposedSlot(inst),
					Existing: models.ConflictingEvent{
						ID:        ev.ID,
						Title:     ev.Summary,
						Start:     ev.StartRaw,
						End:       ev.EndRaw,
						Attendees: ev.Attendees,
					},
				})
				break
			}
		}
	}
	return conflicts
}

// overlaps reports whether two half-open windows [s1,e1) and [s2,e2)
// intersect. Events that merely touch do not conflict.
func overlaps(s1, e1, s2, e2 int64) bool {
	return !(e1 <= s2 || e2 <= s1)
}

// instanceWindow maps an instance to absolute wall-clock minutes. A missing
// end time is assumed to be one default duration after the start.
func instanceWindow(inst models.EventInstance) (start, end int64) {
	startMin := utils.ToMinutesSinceMidnight(inst.StartHour, inst.StartMinute, inst.StartAmPm)
	start = dayMinutes(inst.Date) + int64(startMin)

	if !inst.HasEnd() {
		return start, start + defaultDurationMinutes
	}

	endMin := utils.ToMinutesSinceMidnight(inst.EndHour, inst.EndMinute, inst.EndAmPm)
	endDate := inst.EndDate
	if endDate == "" {
		endDate = inst.Date
		if endMin <= startMin {
			endDate = utils.AddDays(inst.Date, 1)
		}
	}
	return start, dayMinutes(endDate) + int64(endMin)
}

// eventWindow maps a stored event's RFC3339 window onto the same wall-clock
// minute scale used for proposed instances. Zone offsets are dropped on
// both sides, so events compare in the calendar's local time.
func eventWindow(ev models.ExistingEvent) (start, end int64, err error) {
	start, err = wallMinutes(ev.StartRaw)
	if err != nil {
		return 0, 0, err
	}
	end, err = wallMinutes(ev.EndRaw)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func wallMinutes(raw string) (int64, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return 0, err
	}
	return dayMinutes(t.Format(utils.DateFormat)) + int64(t.Hour()*60+t.Minute()), nil
}

func dayMinutes(date string) int64 {
	t, err := time.Parse(utils.DateFormat, date)
	if err != nil {
		return 0
	}
	return t.Unix() / 60
}

func proposedSlot(inst models.EventInstance) models.ProposedSlot {
	slot := models.ProposedSlot{
		Title:  inst.Title,
		Date:   inst.Date,
		Start:  fmt.Sprintf("%s:%s %s", inst.StartHour, inst.StartMinute, inst.StartAmPm),
		Guests: inst.Guests,
	}
	if inst.HasEnd() {
		slot.End = fmt.Sprintf("%s:%s %s", inst.EndHour, inst.EndMinute, inst.EndAmPm)
	}
	return slot
}
