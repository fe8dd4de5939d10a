package translator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"slotwise/models"
)

// LLM is the external natural-language-to-JSON translator.
type LLM interface {
	Translate(ctx context.Context, instructions, userText string) (string, error)
}

// Service turns free-form scheduling text into canonical event requests.
type Service struct {
	llm       LLM
	defaultTZ string
	now       func() time.Time
}

// NewService creates a parser service. defaultTZ is assigned to events the
// translator leaves without a time zone.
func NewService(llm LLM, defaultTZ string) *Service {
	return &Service{
		llm:       llm,
		defaultTZ: defaultTZ,
		now:       time.Now,
	}
}

// Parse translates free text into zero or more canonical event requests.
// Relative dates in the text are resolved against the current date before
// the translator ever sees them.
func (s *Service) Parse(ctx context.Context, prompt string) ([]models.EventRequest, error) {
	instructions := buildInstructions(s.now(), s.defaultTZ)
	userText := fmt.Sprintf("Parse this event request: %q", prompt)

	raw, err := s.llm.Translate(ctx, instructions, userText)
	if err != nil {
		return nil, err
	}

	events, err := s.normalize(raw)
	if err != nil {
		return nil, err
	}

	return splitPerGuest(prompt, events), nil
}

// flexString tolerates translator replies that put numbers where the schema
// asks for strings (e.g. startHour 9 instead of "09").
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	trimmed := strings.TrimSpace(string(b))
	if trimmed == "null" {
		*s = ""
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = flexString(str)
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*s = flexString(strconv.Itoa(int(n)))
		return nil
	}
	return fmt.Errorf("cannot decode %s as string", trimmed)
}

// flexInt tolerates integers arriving as numbers, numeric strings, or null.
type flexInt struct {
	value int
	set   bool
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	trimmed := strings.TrimSpace(string(b))
	if trimmed == "null" {
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		f.value, f.set = int(n), true
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		parsed, err := strconv.Atoi(strings.TrimSpace(str))
		if err != nil {
			return nil // unparseable stays unset, matching null handling
		}
		f.value, f.set = parsed, true
		return nil
	}
	return fmt.Errorf("cannot decode %s as integer", trimmed)
}

type rawEvent struct {
	Title         flexString `json:"title"`
	Date          flexString `json:"date"`
	StartHour     flexString `json:"startHour"`
	StartMinute   flexString `json:"startMinute"`
	StartAmPm     flexString `json:"startAmPm"`
	EndHour       flexString `json:"endHour"`
	EndMinute     flexString `json:"endMinute"`
	EndAmPm       flexString `json:"endAmPm"`
	TimeZone      flexString `json:"timeZone"`
	AddMeet       bool       `json:"addMeet"`
	Guests        []string   `json:"guests"`
	Pattern       flexString `json:"pattern"`
	BufferMinutes flexInt    `json:"bufferMinutes"`
	PerGuest      bool       `json:"perGuest"`
	Occurrences   flexInt    `json:"occurrences"`
}

type rawEnvelope struct {
	Event  *rawEvent  `json:"event"`
	Events []rawEvent `json:"events"`
}

// normalize extracts the JSON object from the reply and maps any of the
// three accepted shapes (single event, events array, bare flat object) to a
// canonical request list.
func (s *Service) normalize(reply string) ([]models.EventRequest, error) {
	payload, ok := extractJSON(reply)
	if !ok {
		return nil, fmt.Errorf("%w", models.ErrParseFailure)
	}

	var env rawEnvelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrParseFailure, err)
	}

	raws := env.Events
	if len(raws) == 0 && env.Event != nil {
		raws = []rawEvent{*env.Event}
	}
	if len(raws) == 0 {
		// Bare flat object without a wrapper.
		var flat rawEvent
		if err := json.Unmarshal([]byte(payload), &flat); err == nil {
			if flat.Title != "" || flat.Date != "" || flat.StartHour != "" {
				raws = []rawEvent{flat}
			}
		}
	}

	out := make([]models.EventRequest, 0, len(raws))
	for _, raw := range raws {
		out = append(out, s.canonical(raw))
	}
	return out, nil
}

func (s *Service) canonical(raw rawEvent) models.EventRequest {
	req := models.EventRequest{
		Title:       strings.TrimSpace(string(raw.Title)),
		Date:        string(raw.Date),
		StartHour:   string(raw.StartHour),
		StartMinute: string(raw.StartMinute),
		StartAmPm:   strings.ToUpper(string(raw.StartAmPm)),
		EndHour:     string(raw.EndHour),
		EndMinute:   string(raw.EndMinute),
		EndAmPm:     strings.ToUpper(string(raw.EndAmPm)),
		TimeZone:    string(raw.TimeZone),
		AddMeet:     raw.AddMeet,
		Pattern:     string(raw.Pattern),
		PerGuest:    raw.PerGuest,
	}
	if req.Title == "" {
		req.Title = "Untitled Meeting"
	}
	if req.TimeZone == "" {
		req.TimeZone = s.defaultTZ
	}
	if req.Pattern == "" {
		req.Pattern = models.PatternSingle
	}
	for _, g := range raw.Guests {
		if g = strings.TrimSpace(g); g != "" {
			req.Guests = append(req.Guests, g)
		}
	}
	if req.Guests == nil {
		req.Guests = []string{}
	}
	if raw.BufferMinutes.set {
		v := raw.BufferMinutes.value
		req.BufferMinutes = &v
	}
	if raw.Occurrences.set {
		v := raw.Occurrences.value
		req.Occurrences = &v
	}
	return req
}

// splitPerGuest is a safety net for translator outputs that under-specify
// one-on-one scheduling: if the original text asks for one-on-one or
// back-to-back meetings and a single parsed event still carries multiple
// guests, split it into one request per guest.
func splitPerGuest(prompt string, events []models.EventRequest) []models.EventRequest {
	lower := strings.ToLower(prompt)
	if !strings.Contains(lower, "one-on-one") && !strings.Contains(lower, "back-to-back") {
		return events
	}

	needsSplit := false
	for _, ev := range events {
		if len(ev.Guests) > 1 {
			needsSplit = true
			break
		}
	}
	if !needsSplit {
		return events
	}

	log.Printf("[translator] splitting multi-guest events per guest")
	split := make([]models.EventRequest, 0, len(events))
	for _, ev := range events {
		if len(ev.Guests) <= 1 {
			split = append(split, ev)
			continue
		}
		for _, guest := range ev.Guests {
			per := ev
			per.Guests = []string{guest}
			per.Pattern = models.PatternBackToBack
			per.PerGuest = true
			split = append(split, per)
		}
	}
	return split
}

// extractJSON returns the first top-level JSON object in the reply,
// tolerating markdown fences and prose around it.
func extractJSON(reply string) (string, bool) {
	cleaned := strings.TrimSpace(reply)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return cleaned[start : end+1], true
}
