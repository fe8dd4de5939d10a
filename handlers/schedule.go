package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"slotwise/internal/auth"
	"slotwise/models"
	"slotwise/services/prospects"
	"slotwise/services/scheduler"
	"slotwise/utils"
)

// eventParser turns free text into canonical event requests.
type eventParser interface {
	Parse(ctx context.Context, prompt string) ([]models.EventRequest, error)
}

// StoreProvider opens a per-account calendar store.
type StoreProvider interface {
	StoreFor(ctx context.Context, acct models.Account) (scheduler.Store, error)
}

// ScheduleHandler serves the scheduling pipeline and the event endpoints.
type ScheduleHandler struct {
	parser    eventParser
	scheduler *scheduler.Service
	stores    StoreProvider
	prospects *prospects.Service
}

func NewScheduleHandler(parser eventParser, schedulerSvc *scheduler.Service, stores StoreProvider, prospectsSvc *prospects.Service) *ScheduleHandler {
	return &ScheduleHandler{
		parser:    parser,
		scheduler: schedulerSvc,
		stores:    stores,
		prospects: prospectsSvc,
	}
}

// storeForRequest resolves the caller's calendar store, writing the
// appropriate auth response itself when it cannot.
func (h *ScheduleHandler) storeForRequest(w http.ResponseWriter, r *http.Request) (scheduler.Store, models.Account, bool) {
	acct, ok := auth.GetAccount(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return nil, models.Account{}, false
	}
	store, err := h.stores.StoreFor(r.Context(), acct)
	if err != nil {
		if errors.Is(err, models.ErrCredentialsRequired) {
			writeReauthRequired(w)
		} else {
			log.Printf("[schedule] opening calendar store: %v", err)
			writeError(w, http.StatusBadGateway, "calendar provider unavailable")
		}
		return nil, models.Account{}, false
	}
	return store, acct, true
}

type scheduleRequest struct {
	Prompt string `json:"prompt"`
}

// Schedule is the main entry point: parse the prompt, expand it into
// instances, check for conflicts, and either commit or hand the conflicts
// back for the user to resolve.
func (h *ScheduleHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	store, _, ok := h.storeForRequest(w, r)
	if !ok {
		return
	}

	requests, err := h.parser.Parse(r.Context(), req.Prompt)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrTranslatorUnavailable):
			writeError(w, http.StatusServiceUnavailable, "the scheduling assistant is temporarily unavailable, please try again")
		case errors.Is(err, models.ErrParseFailure):
			writeError(w, http.StatusBadRequest, "could not understand the request, please rephrase it")
		default:
			log.Printf("[schedule] parse: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to process request")
		}
		return
	}

	if err := h.scheduler.Validate(requests); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	instances := h.scheduler.Expand(requests)
	if len(instances) == 0 {
		writeError(w, http.StatusBadRequest, "no events found in request")
		return
	}

	conflicts := h.scheduler.DetectConflicts(r.Context(), store, instances)
	if len(conflicts) > 0 {
		writeJSON(w, http.StatusOK, map[string]any{
			"success":           false,
			"hasConflicts":      true,
			"message":           conflictMessage(conflicts),
			"conflicts":         conflicts,
			"resolutionOptions": models.ResolutionOptions(),
			"instances":         instances,
			"prompt":            req.Prompt,
		})
		return
	}

	h.commitAndRespond(w, r, store, instances, req.Prompt)
}

type resolveRequest struct {
	Action          string                 `json:"action"`
	Conflicts       []models.Conflict      `json:"conflicts"`
	ConflictIndices []int                  `json:"conflictIndices,omitempty"`
	Instances       []models.EventInstance `json:"instances"`
	RescheduleTime  *models.RescheduleTime `json:"rescheduleTime,omitempty"`
	Prompt          string                 `json:"prompt,omitempty"`
}

// mergedConflicts folds bare conflictIndices into the conflict list so the
// resolver sees every instance the caller flagged, whether or not the full
// conflict object was echoed back.
func (req resolveRequest) mergedConflicts() []models.Conflict {
	seen := make(map[int]bool, len(req.Conflicts))
	out := req.Conflicts
	for _, c := range req.Conflicts {
		seen[c.InstanceIdx] = true
	}
	for _, idx := range req.ConflictIndices {
		if !seen[idx] {
			seen[idx] = true
			out = append(out, models.Conflict{InstanceIdx: idx})
		}
	}
	return out
}

// ResolveConflict applies the user's chosen strategy to the conflict state
// echoed back from a previous Schedule call.
func (h *ScheduleHandler) ResolveConflict(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Action == "" || len(req.Instances) == 0 {
		writeError(w, http.StatusBadRequest, "action and instances are required")
		return
	}

	store, _, ok := h.storeForRequest(w, r)
	if !ok {
		return
	}

	results, summary, err := h.scheduler.Resolve(r.Context(), store, req.Action, req.mergedConflicts(), req.Instances, req.RescheduleTime, eventDescription(req.Prompt))
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			writeError(w, http.StatusBadRequest, validationMessage(err))
			return
		}
		if errors.Is(err, models.ErrProviderPermission) {
			writeReauthRequired(w)
			return
		}
		log.Printf("[schedule] resolve: %v", err)
		writeError(w, http.StatusBadGateway, "failed to apply resolution")
		return
	}
	h.respondResults(w, results, summary)
}

// commitAndRespond inserts the instances and writes the batch outcome.
func (h *ScheduleHandler) commitAndRespond(w http.ResponseWriter, r *http.Request, store scheduler.Store, instances []models.EventInstance, prompt string) {
	results, summary := h.scheduler.Commit(r.Context(), store, instances, eventDescription(prompt))

	if h.prospects != nil {
		for _, res := range results {
			if !res.Success || res.Instance == nil {
				continue
			}
			for _, guest := range res.Instance.Guests {
				h.prospects.TouchLastMessage(r.Context(), guest)
			}
		}
	}

	h.respondResults(w, results, summary)
}

func (h *ScheduleHandler) respondResults(w http.ResponseWriter, results []models.InstanceResult, summary scheduler.CommitSummary) {
	if summary.PermissionDenied {
		writeReauthRequired(w)
		return
	}

	succeeded := 0
	for _, res := range results {
		if res.Success {
			succeeded++
		}
	}

	msg := fmt.Sprintf("Created %d of %d events.", succeeded, len(results))
	if succeeded == len(results) {
		msg = fmt.Sprintf("Created %d event(s).", succeeded)
	}
	if summary.AutoSetCount > 0 {
		msg += fmt.Sprintf(" %d event(s) had no end time, so a 1 hour duration was set.", summary.AutoSetCount)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   succeeded > 0,
		"message":   msg,
		"requested": len(results),
		"created":   succeeded,
		"results":   results,
	})
}

// DeleteEvent removes a single calendar event by ID.
func (h *ScheduleHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["eventID"]
	if eventID == "" {
		writeError(w, http.StatusBadRequest, "event id is required")
		return
	}

	store, _, ok := h.storeForRequest(w, r)
	if !ok {
		return
	}

	if err := store.Delete(r.Context(), eventID); err != nil {
		if errors.Is(err, models.ErrProviderPermission) {
			writeReauthRequired(w)
			return
		}
		log.Printf("[schedule] delete %s: %v", eventID, err)
		writeError(w, http.StatusBadGateway, "failed to delete event")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Event deleted.",
	})
}

// CleanupDuplicates removes repeated copies of the same event around now.
func (h *ScheduleHandler) CleanupDuplicates(w http.ResponseWriter, r *http.Request) {
	store, _, ok := h.storeForRequest(w, r)
	if !ok {
		return
	}

	found, deleted, err := h.scheduler.CleanupDuplicates(r.Context(), store)
	if err != nil {
		if errors.Is(err, models.ErrProviderPermission) {
			writeReauthRequired(w)
			return
		}
		log.Printf("[schedule] cleanup: %v", err)
		writeError(w, http.StatusBadGateway, "failed to scan for duplicates")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"found":   found,
		"deleted": deleted,
		"message": fmt.Sprintf("Removed %d duplicate event(s).", deleted),
	})
}

type freeSlotsRequest struct {
	Date     string `json:"date"`
	Duration int    `json:"duration"`
}

// FreeSlots suggests open start times on a given day.
func (h *ScheduleHandler) FreeSlots(w http.ResponseWriter, r *http.Request) {
	var req freeSlotsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Date == "" {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}
	if _, err := time.Parse(utils.DateFormat, req.Date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	store, _, ok := h.storeForRequest(w, r)
	if !ok {
		return
	}

	slots, err := h.scheduler.FreeSlots(r.Context(), store, req.Date, req.Duration)
	if err != nil {
		if errors.Is(err, models.ErrProviderPermission) {
			writeReauthRequired(w)
			return
		}
		log.Printf("[schedule] free slots: %v", err)
		writeError(w, http.StatusBadGateway, "failed to read calendar")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":  req.Date,
		"slots": slots,
	})
}

const (
	upcomingWindowDays = 90
	upcomingMaxEvents  = 50
)

// ListUpcoming returns the next three months of events, capped.
func (h *ScheduleHandler) ListUpcoming(w http.ResponseWriter, r *http.Request) {
	store, _, ok := h.storeForRequest(w, r)
	if !ok {
		return
	}

	now := time.Now()
	events, err := store.ListRange(r.Context(), now, now.AddDate(0, 0, upcomingWindowDays))
	if err != nil {
		if errors.Is(err, models.ErrProviderPermission) {
			writeReauthRequired(w)
			return
		}
		log.Printf("[schedule] list upcoming: %v", err)
		writeError(w, http.StatusBadGateway, "failed to read calendar")
		return
	}
	if len(events) > upcomingMaxEvents {
		events = events[:upcomingMaxEvents]
	}

	out := make([]map[string]any, 0, len(events))
	for _, ev := range events {
		out = append(out, map[string]any{
			"id":        ev.ID,
			"summary":   ev.Summary,
			"start":     ev.StartRaw,
			"end":       ev.EndRaw,
			"allDay":    ev.AllDay,
			"attendees": ev.Attendees,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": out})
}

type createEventRequest struct {
	Title       string   `json:"title"`
	Date        string   `json:"date"`
	StartTime   string   `json:"startTime"` // HH:MM, 24-hour
	EndTime     string   `json:"endTime,omitempty"`
	TimeZone    string   `json:"timeZone,omitempty"`
	Guests      []string `json:"guests,omitempty"`
	AddMeet     bool     `json:"addMeet"`
	Description string   `json:"description,omitempty"`
}

// CreateEvent creates one event from an already-structured request,
// bypassing the natural-language parser.
func (h *ScheduleHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" || req.Date == "" || req.StartTime == "" {
		writeError(w, http.StatusBadRequest, "title, date and startTime are required")
		return
	}
	if _, err := time.Parse(utils.DateFormat, req.Date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	inst := models.EventInstance{
		Title:    req.Title,
		Date:     req.Date,
		TimeZone: req.TimeZone,
		AddMeet:  req.AddMeet,
		Guests:   req.Guests,
	}
	var ok bool
	if inst.StartHour, inst.StartMinute, inst.StartAmPm, ok = clockParts(req.StartTime); !ok {
		writeError(w, http.StatusBadRequest, "startTime must be HH:MM")
		return
	}
	if req.EndTime != "" {
		if inst.EndHour, inst.EndMinute, inst.EndAmPm, ok = clockParts(req.EndTime); !ok {
			writeError(w, http.StatusBadRequest, "endTime must be HH:MM")
			return
		}
	}

	store, _, authed := h.storeForRequest(w, r)
	if !authed {
		return
	}
	h.commitAndRespondDirect(w, r, store, inst, req.Description)
}

func (h *ScheduleHandler) commitAndRespondDirect(w http.ResponseWriter, r *http.Request, store scheduler.Store, inst models.EventInstance, description string) {
	results, summary := h.scheduler.Commit(r.Context(), store, []models.EventInstance{inst}, description)
	if summary.PermissionDenied {
		writeReauthRequired(w)
		return
	}
	res := results[0]
	if !res.Success {
		status := http.StatusBadGateway
		if res.Error == models.ErrInvalidTimeRange.Error() {
			status = http.StatusBadRequest
		}
		writeError(w, status, res.Error)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"event":   res.Created,
	})
}

// clockParts converts an "HH:MM" 24-hour string into 12-hour clock fields.
func clockParts(hhmm string) (hour, minute, meridiem string, ok bool) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return "", "", "", false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return "", "", "", false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return "", "", "", false
	}
	hour, minute, meridiem = utils.MinutesToClockParts(h*60 + m)
	return hour, minute, meridiem, true
}

func eventDescription(prompt string) string {
	if strings.TrimSpace(prompt) == "" {
		return "Scheduled by the SlotWise assistant."
	}
	return fmt.Sprintf("Scheduled by the SlotWise assistant from: %q", strings.TrimSpace(prompt))
}

func conflictMessage(conflicts []models.Conflict) string {
	if len(conflicts) == 1 {
		c := conflicts[0]
		return fmt.Sprintf("%q clashes with %q on %s. How should it be resolved?", c.Proposed.Title, c.Existing.Title, c.Proposed.Date)
	}
	return fmt.Sprintf("%d of the proposed events clash with existing meetings. How should they be resolved?", len(conflicts))
}

// validationMessage strips the sentinel prefix so users see only the
// human-readable part.
func validationMessage(err error) string {
	msg := err.Error()
	if idx := strings.Index(msg, ": "); idx != -1 && strings.HasPrefix(msg, models.ErrValidation.Error()) {
		return msg[idx+2:]
	}
	return msg
}
