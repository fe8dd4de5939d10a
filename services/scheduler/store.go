package scheduler

import (
	"context"
	"time"

	"slotwise/models"
)

// Store is the calendar backend the scheduler reads from and writes to.
// The production implementation talks to Google Calendar; tests substitute
// in-memory fakes.
type Store interface {
	// ListDay returns all events whose window touches the given
	// YYYY-MM-DD date, recurring events expanded to single instances.
	ListDay(ctx context.Context, date string) ([]models.ExistingEvent, error)

	// ListRange returns events between two absolute instants.
	ListRange(ctx context.Context, from, to time.Time) ([]models.ExistingEvent, error)

	// Insert creates the event described by the instance and returns the
	// provider's view of it.
	Insert(ctx context.Context, inst models.EventInstance, description string) (*models.CreatedEvent, error)

	// Patch moves an existing event to a new window. The datetime strings
	// are local wall-clock values ("2006-01-02T15:04:05") interpreted in
	// the given time zone.
	Patch(ctx context.Context, eventID, startDateTime, endDateTime, timeZone string) error

	// Delete removes an event by its provider ID.
	Delete(ctx context.Context, eventID string) error
}
