package scheduler

import (
	"log"

	"slotwise/models"
	"slotwise/utils"
)

const (
	// MaxInstances caps how many concrete events a single request batch
	// may expand into.
	MaxInstances = 200

	defaultBufferMinutes   = 15
	defaultDurationMinutes = 60
)

// Expand turns parsed requests into concrete event instances. Per-guest
// back-to-back expansion takes precedence over repeated occurrences, which
// takes precedence over the plain single instance. Chained slots roll over
// midnight into the following date. The batch is truncated at the global
// instance cap.
func (s *Service) Expand(reqs []models.EventRequest) []models.EventInstance {
	var out []models.EventInstance
	for _, req := range reqs {
		remaining := s.maxInstances - len(out)
		if remaining <= 0 {
			break
		}
		instances := expandRequest(req)
		if len(instances) > remaining {
			log.Printf("[scheduler] truncating expansion of %q to %d instances", req.Title, remaining)
			instances = instances[:remaining]
		}
		out = append(out, instances...)
	}
	return out
}

func expandRequest(req models.EventRequest) []models.EventInstance {
	chained := req.Pattern == models.PatternBackToBack || req.Pattern == models.PatternSequential
	if chained && req.PerGuest && len(req.Guests) >= 1 {
		return expandPerGuest(req)
	}
	if req.Occurrences != nil && *req.Occurrences > 1 {
		return expandOccurrences(req, *req.Occurrences)
	}
	return []models.EventInstance{toInstance(req)}
}

// expandPerGuest schedules one meeting per guest, back to back, separated
// by the buffer.
func expandPerGuest(req models.EventRequest) []models.EventInstance {
	duration := requestDuration(req)
	buffer := bufferMinutes(req)

	out := make([]models.EventInstance, 0, len(req.Guests))
	cursor := utils.DayTime{Date: req.Date, Hour: req.StartHour, Minute: req.StartMinute, AmPm: req.StartAmPm}
	for _, guest := range req.Guests {
		end := utils.AddMinutes(cursor.Date, cursor.Hour, cursor.Minute, cursor.AmPm, duration)
		inst := models.EventInstance{
			Title:       req.Title,
			Date:        cursor.Date,
			StartHour:   cursor.Hour,
			StartMinute: cursor.Minute,
			StartAmPm:   cursor.AmPm,
			EndHour:     end.Hour,
			EndMinute:   end.Minute,
			EndAmPm:     end.AmPm,
			TimeZone:    req.TimeZone,
			AddMeet:     req.AddMeet,
			Guests:      []string{guest},
		}
		if end.Date != cursor.Date {
			inst.EndDate = end.Date
		}
		out = append(out, inst)
		cursor = utils.AddMinutes(end.Date, end.Hour, end.Minute, end.AmPm, buffer)
	}
	return out
}

// expandOccurrences schedules the same meeting n times in a row, each with
// the full guest list.
func expandOccurrences(req models.EventRequest, n int) []models.EventInstance {
	duration := requestDuration(req)
	buffer := bufferMinutes(req)

	out := make([]models.EventInstance, 0, n)
	cursor := utils.DayTime{Date: req.Date, Hour: req.StartHour, Minute: req.StartMinute, AmPm: req.StartAmPm}
	for i := 1; i <= n; i++ {
		end := utils.AddMinutes(cursor.Date, cursor.Hour, cursor.Minute, cursor.AmPm, duration)
		inst := models.EventInstance{
			Title:       req.Title,
			Date:        cursor.Date,
			StartHour:   cursor.Hour,
			StartMinute: cursor.Minute,
			StartAmPm:   cursor.AmPm,
			EndHour:     end.Hour,
			EndMinute:   end.Minute,
			EndAmPm:     end.AmPm,
			TimeZone:    req.TimeZone,
			AddMeet:     req.AddMeet,
			Guests:      append([]string(nil), req.Guests...),
		}
		if end.Date != cursor.Date {
			inst.EndDate = end.Date
		}
		out = append(out, inst)
		cursor = utils.AddMinutes(end.Date, end.Hour, end.Minute, end.AmPm, buffer)
	}
	return out
}

func toInstance(req models.EventRequest) models.EventInstance {
	return models.EventInstance{
		Title:       req.Title,
		Date:        req.Date,
		StartHour:   req.StartHour,
		StartMinute: req.StartMinute,
		StartAmPm:   req.StartAmPm,
		EndHour:     req.EndHour,
		EndMinute:   req.EndMinute,
		EndAmPm:     req.EndAmPm,
		TimeZone:    req.TimeZone,
		AddMeet:     req.AddMeet,
		Guests:      append([]string(nil), req.Guests...),
	}
}

// requestDuration derives each expanded slot's length from the request's
// start and end times. A missing end, or an end that is not after the
// start, falls back to the default.
func requestDuration(req models.EventRequest) int {
	if req.EndHour == "" || req.EndMinute == "" || req.EndAmPm == "" {
		return defaultDurationMinutes
	}
	start := utils.ToMinutesSinceMidnight(req.StartHour, req.StartMinute, req.StartAmPm)
	end := utils.ToMinutesSinceMidnight(req.EndHour, req.EndMinute, req.EndAmPm)
	duration := end - start
	if duration <= 0 {
		duration = defaultDurationMinutes
	}
	return duration
}

func bufferMinutes(req models.EventRequest) int {
	if req.BufferMinutes != nil && *req.BufferMinutes >= 0 {
		return *req.BufferMinutes
	}
	return defaultBufferMinutes
}
