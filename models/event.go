package models

// Expansion patterns a parsed request may carry.
const (
	PatternSingle     = "single"
	PatternBackToBack = "back-to-back"
	PatternSequential = "sequential"
	PatternParallel   = "parallel"
)

// Conflict resolution actions.
const (
	ActionOverwrite        = "overwrite"
	ActionPostponeExisting = "postpone_existing"
	ActionRescheduleNew    = "reschedule_new"
)

// EventRequest is the canonical output of the natural-language parser.
// Clock fields use the 12-hour convention: hour "01".."12", minute one of
// "00"/"15"/"30"/"45", meridiem "AM" or "PM".
type EventRequest struct {
	Title         string   `json:"title"`
	Date          string   `json:"date"` // YYYY-MM-DD
	StartHour     string   `json:"startHour"`
	StartMinute   string   `json:"startMinute"`
	StartAmPm     string   `json:"startAmPm"`
	EndHour       string   `json:"endHour,omitempty"`
	EndMinute     string   `json:"endMinute,omitempty"`
	EndAmPm       string   `json:"endAmPm,omitempty"`
	TimeZone      string   `json:"timeZone"`
	AddMeet       bool     `json:"addMeet"`
	Guests        []string `json:"guests"`
	Pattern       string   `json:"pattern"`
	BufferMinutes *int     `json:"bufferMinutes,omitempty"`
	PerGuest      bool     `json:"perGuest"`
	Occurrences   *int     `json:"occurrences,omitempty"`
}

// EventInstance is one concrete, time-bound event produced by the expander
// and fed to conflict detection and commit. End fields may be empty until
// commit time, when a 60-minute default is applied.
type EventInstance struct {
	Title       string   `json:"title"`
	Date        string   `json:"date"`
	StartHour   string   `json:"startHour"`
	StartMinute string   `json:"startMinute"`
	StartAmPm   string   `json:"startAmPm"`
	EndHour     string   `json:"endHour,omitempty"`
	EndMinute   string   `json:"endMinute,omitempty"`
	EndAmPm     string   `json:"endAmPm,omitempty"`
	EndDate     string   `json:"endDate,omitempty"`
	TimeZone    string   `json:"timeZone"`
	AddMeet     bool     `json:"addMeet"`
	Guests      []string `json:"guests"`
}

// HasEnd reports whether the instance carries a complete end time.
func (i EventInstance) HasEnd() bool {
	return i.EndHour != "" && i.EndMinute != "" && i.EndAmPm != ""
}

// ProposedSlot is the user-facing summary of a proposed instance inside a
// conflict report.
type ProposedSlot struct {
	Title  string   `json:"title"`
	Date   string   `json:"date"`
	Start  string   `json:"start"`
	End    string   `json:"end"`
	Guests []string `json:"guests"`
}

// ConflictingEvent identifies the already-committed calendar event that a
// proposed instance overlaps with.
type ConflictingEvent struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Start     string   `json:"start"` // RFC3339
	End       string   `json:"end"`   // RFC3339
	Attendees []string `json:"attendees,omitempty"`
}

// Conflict pairs a proposed instance (by index) with one existing event.
// Conflicts live only inside a single request/response cycle; the caller
// echoes them back together with the instances when resolving.
type Conflict struct {
	InstanceIdx int              `json:"instanceIdx"`
	Proposed    ProposedSlot     `json:"proposedEvent"`
	Existing    ConflictingEvent `json:"conflictingEvent"`
}

// ExistingEvent is a calendar event read back from the external store.
type ExistingEvent struct {
	ID        string
	Summary   string
	AllDay    bool
	StartRaw  string // RFC3339 as returned by the provider
	EndRaw    string
	Attendees []string
}

// CreatedEvent describes an event successfully inserted into the store.
type CreatedEvent struct {
	ID        string   `json:"id"`
	Summary   string   `json:"summary"`
	Start     string   `json:"start"`
	End       string   `json:"end"`
	TimeZone  string   `json:"timeZone,omitempty"`
	MeetLink  string   `json:"meetLink,omitempty"`
	HTMLLink  string   `json:"htmlLink,omitempty"`
	Organizer string   `json:"organizer,omitempty"`
	Attendees []string `json:"attendees,omitempty"`
}

// InstanceResult is the per-instance outcome of a commit batch. A failed
// insert is recorded here and never aborts the remaining instances.
type InstanceResult struct {
	Success         bool           `json:"success"`
	Created         *CreatedEvent  `json:"created,omitempty"`
	DurationAutoSet bool           `json:"durationAutoSet,omitempty"`
	Error           string         `json:"error,omitempty"`
	Instance        *EventInstance `json:"instance,omitempty"`
}

// RescheduleTime is the caller-supplied replacement time used by the
// postpone_existing and reschedule_new actions.
type RescheduleTime struct {
	Date        string `json:"date"`
	StartHour   string `json:"startHour"`
	StartMinute string `json:"startMinute"`
	StartAmPm   string `json:"startAmPm"`
	EndHour     string `json:"endHour,omitempty"`
	EndMinute   string `json:"endMinute,omitempty"`
	EndAmPm     string `json:"endAmPm,omitempty"`
	TimeZone    string `json:"timeZone,omitempty"`
}

// ResolutionOption is one of the choices offered when conflicts are found.
type ResolutionOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ResolutionOptions returns the three strategies offered to the caller.
func ResolutionOptions() []ResolutionOption {
	return []ResolutionOption{
		{Value: ActionOverwrite, Label: "Overwrite existing meeting with new one"},
		{Value: ActionPostponeExisting, Label: "Postpone existing meeting and create new one"},
		{Value: ActionRescheduleNew, Label: "Change new meeting time"},
	}
}

// FreeSlot is a suggested open start time on a given day.
type FreeSlot struct {
	StartTime string `json:"start_time"` // HH:MM, 24-hour
}
