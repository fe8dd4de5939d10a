package gcal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"slotwise/models"
	"slotwise/services/scheduler"
	"slotwise/utils"
)

const (
	calendarID    = "primary"
	maxDayResults = 100
)

// Client builds per-account calendar stores from stored OAuth tokens.
type Client struct {
	cfg *oauth2.Config
}

func NewClient(cfg *oauth2.Config) *Client {
	return &Client{cfg: cfg}
}

// ForAccount returns a Store bound to the account's Google Calendar. The
// underlying HTTP client refreshes the access token from the refresh token
// as needed.
func (c *Client) ForAccount(ctx context.Context, acct models.Account) (*Store, error) {
	if !acct.HasCalendarGrant() {
		return nil, models.ErrCredentialsRequired
	}
	token := &oauth2.Token{
		AccessToken:  acct.AccessToken,
		RefreshToken: acct.RefreshToken,
		Expiry:       acct.TokenExpiry,
	}
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(c.cfg.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("calendar service: %w", err)
	}
	return &Store{svc: svc}, nil
}

// StoreFor adapts ForAccount to the scheduler's store interface.
func (c *Client) StoreFor(ctx context.Context, acct models.Account) (scheduler.Store, error) {
	store, err := c.ForAccount(ctx, acct)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Store reads and writes a single account's primary calendar.
type Store struct {
	svc *calendar.Service
}

func (s *Store) ListDay(ctx context.Context, date string) ([]models.ExistingEvent, error) {
	return s.list(ctx, date+"T00:00:00Z", date+"T23:59:59Z")
}

func (s *Store) ListRange(ctx context.Context, from, to time.Time) ([]models.ExistingEvent, error) {
	return s.list(ctx, from.Format(time.RFC3339), to.Format(time.RFC3339))
}

func (s *Store) list(ctx context.Context, timeMin, timeMax string) ([]models.ExistingEvent, error) {
	call := s.svc.Events.List(calendarID).
		TimeMin(timeMin).
		TimeMax(timeMax).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(maxDayResults).
		Context(ctx)

	var out []models.ExistingEvent
	err := call.Pages(ctx, func(page *calendar.Events) error {
		for _, item := range page.Items {
			if item.Status == "cancelled" {
				continue
			}
			out = append(out, fromAPI(item))
		}
		return nil
	})
	if err != nil {
		return nil, wrapErr(err)
	}
	return out, nil
}

func fromAPI(item *calendar.Event) models.ExistingEvent {
	ev := models.ExistingEvent{
		ID:      item.Id,
		Summary: item.Summary,
	}
	if item.Start != nil {
		if item.Start.DateTime == "" {
			ev.AllDay = true
			ev.StartRaw = item.Start.Date
		} else {
			ev.StartRaw = item.Start.DateTime
		}
	}
	if item.End != nil {
		if item.End.DateTime == "" {
			ev.EndRaw = item.End.Date
		} else {
			ev.EndRaw = item.End.DateTime
		}
	}
	for _, a := range item.Attendees {
		if a.Email != "" {
			ev.Attendees = append(ev.Attendees, a.Email)
		}
	}
	return ev
}

func (s *Store) Insert(ctx context.Context, inst models.EventInstance, description string) (*models.CreatedEvent, error) {
	endDate := inst.EndDate
	if endDate == "" {
		endDate = inst.Date
	}
	event := &calendar.Event{
		Summary:     inst.Title,
		Description: description,
		Start: &calendar.EventDateTime{
			DateTime: inst.Date + "T" + utils.To24Hour(inst.StartHour, inst.StartMinute, inst.StartAmPm) + ":00",
			TimeZone: inst.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: endDate + "T" + utils.To24Hour(inst.EndHour, inst.EndMinute, inst.EndAmPm) + ":00",
			TimeZone: inst.TimeZone,
		},
	}
	for _, guest := range inst.Guests {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{
			Email:          guest,
			ResponseStatus: "needsAction",
		})
	}

	call := s.svc.Events.Insert(calendarID, event).SendUpdates("all").Context(ctx)
	if inst.AddMeet {
		event.ConferenceData = &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId: uuid.NewString(),
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{
					Type: "hangoutsMeet",
				},
			},
		}
		call = call.ConferenceDataVersion(1)
	}

	created, err := call.Do()
	if err != nil {
		return nil, wrapErr(err)
	}
	return toCreated(created), nil
}

func toCreated(ev *calendar.Event) *models.CreatedEvent {
	out := &models.CreatedEvent{
		ID:       ev.Id,
		Summary:  ev.Summary,
		MeetLink: ev.HangoutLink,
		HTMLLink: ev.HtmlLink,
	}
	if ev.Start != nil {
		out.Start = ev.Start.DateTime
		out.TimeZone = ev.Start.TimeZone
	}
	if ev.End != nil {
		out.End = ev.End.DateTime
	}
	if ev.Organizer != nil {
		out.Organizer = ev.Organizer.Email
	}
	for _, a := range ev.Attendees {
		if a.Email != "" {
			out.Attendees = append(out.Attendees, a.Email)
		}
	}
	return out
}

func (s *Store) Patch(ctx context.Context, eventID, startDateTime, endDateTime, timeZone string) error {
	patch := &calendar.Event{
		Start: &calendar.EventDateTime{DateTime: startDateTime, TimeZone: timeZone},
		End:   &calendar.EventDateTime{DateTime: endDateTime, TimeZone: timeZone},
	}
	_, err := s.svc.Events.Patch(calendarID, eventID, patch).SendUpdates("all").Context(ctx).Do()
	if err != nil {
		return wrapErr(err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, eventID string) error {
	err := s.svc.Events.Delete(calendarID, eventID).SendUpdates("all").Context(ctx).Do()
	if err != nil {
		return wrapErr(err)
	}
	return nil
}

// wrapErr maps provider failures onto the service error taxonomy so
// handlers can tell "reconnect your calendar" apart from everything else.
func wrapErr(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == 401 || gerr.Code == 403 {
			return fmt.Errorf("%w: %v", models.ErrProviderPermission, err)
		}
		for _, e := range gerr.Errors {
			if e.Reason == "insufficientPermissions" || e.Reason == "forbidden" {
				return fmt.Errorf("%w: %v", models.ErrProviderPermission, err)
			}
		}
	}
	return fmt.Errorf("%w: %v", models.ErrProvider, err)
}
