package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"slotwise/models"
	"slotwise/utils"
)

// Service owns expansion, conflict handling and commit of event batches.
// It is stateless between requests; conflict state rides in the
// request/response payloads.
type Service struct {
	maxInstances int
	now          func() time.Time
}

func New() *Service {
	return &Service{
		maxInstances: MaxInstances,
		now:          time.Now,
	}
}

// CommitSummary aggregates what the per-instance results imply for the
// caller's response.
type CommitSummary struct {
	AutoSetCount     int
	PermissionDenied bool
}

// Validate checks that every parsed request carries the minimum the
// pipeline needs: a parseable date plus a complete start time.
func (s *Service) Validate(reqs []models.EventRequest) error {
	if len(reqs) == 0 {
		return fmt.Errorf("%w: no events found in request", models.ErrValidation)
	}
	for i, req := range reqs {
		if req.Date == "" || req.StartHour == "" || req.StartMinute == "" || req.StartAmPm == "" {
			return fmt.Errorf("%w: event %d is missing date or start time", models.ErrValidation, i+1)
		}
		if _, err := time.Parse(utils.DateFormat, req.Date); err != nil {
			return fmt.Errorf("%w: event %d has invalid date %q", models.ErrValidation, i+1, req.Date)
		}
	}
	return nil
}

// Commit inserts every instance into the store, in order. A failed insert
// is recorded in that instance's result and never rolls back or aborts the
// others. Instances without an end time get the default duration, and the
// summary counts how often that happened so the caller can say so.
func (s *Service) Commit(ctx context.Context, store Store, instances []models.EventInstance, description string) ([]models.InstanceResult, CommitSummary) {
	var summary CommitSummary
	results := make([]models.InstanceResult, 0, len(instances))

	for _, inst := range instances {
		inst := inst
		autoSet := false
		if !inst.HasEnd() {
			end := utils.AddMinutes(inst.Date, inst.StartHour, inst.StartMinute, inst.StartAmPm, defaultDurationMinutes)
			inst.EndHour, inst.EndMinute, inst.EndAmPm = end.Hour, end.Minute, end.AmPm
			if end.Date != inst.Date {
				inst.EndDate = end.Date
			}
			autoSet = true
			summary.AutoSetCount++
		} else if inst.EndDate == "" {
			startMin := utils.ToMinutesSinceMidnight(inst.StartHour, inst.StartMinute, inst.StartAmPm)
			endMin := utils.ToMinutesSinceMidnight(inst.EndHour, inst.EndMinute, inst.EndAmPm)
			if endMin <= startMin {
				// An end reading earlier than the start means the
				// event runs past midnight.
				inst.EndDate = utils.AddDays(inst.Date, 1)
			}
		}

		start, end := instanceWindow(inst)
		if end <= start {
			results = append(results, models.InstanceResult{
				Success:  false,
				Error:    models.ErrInvalidTimeRange.Error(),
				Instance: &inst,
			})
			continue
		}

		created, err := store.Insert(ctx, inst, description)
		if err != nil {
			if errors.Is(err, models.ErrProviderPermission) {
				summary.PermissionDenied = true
			}
			log.Printf("[scheduler] insert failed for %q on %s: %v", inst.Title, inst.Date, err)
			results = append(results, models.InstanceResult{
				Success:  false,
				Error:    err.Error(),
				Instance: &inst,
			})
			continue
		}
		results = append(results, models.InstanceResult{
			Success:         true,
			Created:         created,
			DurationAutoSet: autoSet,
			Instance:        &inst,
		})
	}
	return results, summary
}

// Resolve applies a conflict resolution strategy and then commits the
// batch. The instances and conflicts are the ones returned by the original
// scheduling call, echoed back by the client.
func (s *Service) Resolve(ctx context.Context, store Store, action string, conflicts []models.Conflict, instances []models.EventInstance, resched *models.RescheduleTime, description string) ([]models.InstanceResult, CommitSummary, error) {
	switch action {
	case models.ActionOverwrite:
		// Best effort: an event that vanished since detection is fine.
		for _, c := range conflicts {
			if c.Existing.ID == "" {
				continue
			}
			if err := store.Delete(ctx, c.Existing.ID); err != nil {
				log.Printf("[scheduler] overwrite delete of %s failed: %v", c.Existing.ID, err)
			}
		}
		results, summary := s.Commit(ctx, store, instances, description)
		return results, summary, nil

	case models.ActionPostponeExisting:
		if resched == nil {
			return nil, CommitSummary{}, fmt.Errorf("%w: postpone_existing requires a new time", models.ErrValidation)
		}
		startDT, endDT, tz, err := rescheduleWindow(*resched)
		if err != nil {
			return nil, CommitSummary{}, err
		}
		for _, c := range conflicts {
			if c.Existing.ID == "" {
				continue
			}
			if err := store.Patch(ctx, c.Existing.ID, startDT, endDT, tz); err != nil {
				return nil, CommitSummary{}, fmt.Errorf("postponing %q: %w", c.Existing.Title, err)
			}
		}
		results, summary := s.Commit(ctx, store, instances, description)
		return results, summary, nil

	case models.ActionRescheduleNew:
		if resched == nil {
			return nil, CommitSummary{}, fmt.Errorf("%w: reschedule_new requires a new time", models.ErrValidation)
		}
		moved := make([]models.EventInstance, len(instances))
		copy(moved, instances)
		for _, c := range conflicts {
			if c.InstanceIdx < 0 || c.InstanceIdx >= len(moved) {
				continue
			}
			applyReschedule(&moved[c.InstanceIdx], *resched)
		}
		results, summary := s.Commit(ctx, store, moved, description)
		return results, summary, nil

	default:
		return nil, CommitSummary{}, fmt.Errorf("%w: unknown resolution action %q", models.ErrValidation, action)
	}
}

// applyReschedule moves one instance to the replacement window, keeping its
// title, guests and other settings.
func applyReschedule(inst *models.EventInstance, r models.RescheduleTime) {
	inst.Date = r.Date
	inst.StartHour, inst.StartMinute, inst.StartAmPm = r.StartHour, r.StartMinute, r.StartAmPm
	inst.EndHour, inst.EndMinute, inst.EndAmPm = r.EndHour, r.EndMinute, r.EndAmPm
	inst.EndDate = ""
	if r.TimeZone != "" {
		inst.TimeZone = r.TimeZone
	}
}

// rescheduleWindow renders the replacement time as the local datetime
// strings a calendar patch expects. A missing end gets the default
// duration.
func rescheduleWindow(r models.RescheduleTime) (startDT, endDT, tz string, err error) {
	if r.Date == "" || r.StartHour == "" || r.StartMinute == "" || r.StartAmPm == "" {
		return "", "", "", fmt.Errorf("%w: reschedule time is missing date or start", models.ErrValidation)
	}
	startDT = r.Date + "T" + utils.To24Hour(r.StartHour, r.StartMinute, r.StartAmPm) + ":00"

	if r.EndHour != "" && r.EndMinute != "" && r.EndAmPm != "" {
		endDate := r.Date
		if utils.ToMinutesSinceMidnight(r.EndHour, r.EndMinute, r.EndAmPm) <= utils.ToMinutesSinceMidnight(r.StartHour, r.StartMinute, r.StartAmPm) {
			endDate = utils.AddDays(r.Date, 1)
		}
		endDT = endDate + "T" + utils.To24Hour(r.EndHour, r.EndMinute, r.EndAmPm) + ":00"
	} else {
		end := utils.AddMinutes(r.Date, r.StartHour, r.StartMinute, r.StartAmPm, defaultDurationMinutes)
		endDT = end.Date + "T" + utils.To24Hour(end.Hour, end.Minute, end.AmPm) + ":00"
	}
	return startDT, endDT, r.TimeZone, nil
}

// CleanupDuplicates scans the window from a week back to a month ahead and
// deletes events whose title and exact start/end match an earlier event.
// The first event of each group is kept.
func (s *Service) CleanupDuplicates(ctx context.Context, store Store) (found, deleted int, err error) {
	now := s.now()
	events, err := store.ListRange(ctx, now.AddDate(0, 0, -7), now.AddDate(0, 1, 0))
	if err != nil {
		return 0, 0, err
	}

	seen := make(map[string]bool)
	for _, ev := range events {
		// All-day and untitled events are never treated as duplicates.
		if ev.AllDay || ev.Summary == "" {
			continue
		}
		key := ev.Summary + "|" + ev.StartRaw + "|" + ev.EndRaw
		if !seen[key] {
			seen[key] = true
			continue
		}
		found++
		if err := store.Delete(ctx, ev.ID); err != nil {
			log.Printf("[scheduler] duplicate delete of %s failed: %v", ev.ID, err)
			continue
		}
		deleted++
	}
	return found, deleted, nil
}

const (
	workdayStartMinute = 9 * 60  // 9 AM
	workdayEndMinute   = 18 * 60 // 6 PM
	freeSlotStep       = 30
	maxFreeSlots       = 4
)

// FreeSlots walks the working day in half-hour steps and suggests up to
// four start times where an event of the given duration fits without
// touching anything already scheduled.
func (s *Service) FreeSlots(ctx context.Context, store Store, date string, durationMinutes int) ([]models.FreeSlot, error) {
	if durationMinutes <= 0 {
		durationMinutes = defaultDurationMinutes
	}
	existing, err := store.ListDay(ctx, date)
	if err != nil {
		return nil, err
	}

	base := dayMinutes(date)
	type window struct{ start, end int64 }
	var busy []window
	for _, ev := range existing {
		if ev.AllDay {
			continue
		}
		start, end, err := eventWindow(ev)
		if err != nil {
			continue
		}
		busy = append(busy, window{start, end})
	}

	slots := make([]models.FreeSlot, 0, maxFreeSlots)
	for t := workdayStartMinute; t+durationMinutes <= workdayEndMinute; t += freeSlotStep {
		candStart := base + int64(t)
		candEnd := candStart + int64(durationMinutes)
		free := true
		for _, w := range busy {
			if overlaps(candStart, candEnd, w.start, w.end) {
				free = false
				break
			}
		}
		if !free {
			continue
		}
		slots = append(slots, models.FreeSlot{
			StartTime: fmt.Sprintf("%02d:%02d", t/60, t%60),
		})
		if len(slots) == maxFreeSlots {
			break
		}
	}
	return slots, nil
}
