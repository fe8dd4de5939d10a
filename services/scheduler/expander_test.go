package scheduler

import (
	"testing"

	"slotwise/models"
)

func intPtr(v int) *int { return &v }

func TestExpandPerGuestBackToBack(t *testing.T) {
	svc := New()
	reqs := []models.EventRequest{{
		Title:         "Interview",
		Date:          "2024-06-10",
		StartHour:     "09",
		StartMinute:   "00",
		StartAmPm:     "AM",
		EndHour:       "09",
		EndMinute:     "30",
		EndAmPm:       "AM",
		TimeZone:      "Asia/Kolkata",
		Guests:        []string{"a@x.com", "b@x.com", "c@x.com"},
		Pattern:       models.PatternBackToBack,
		PerGuest:      true,
		BufferMinutes: intPtr(15),
	}}

	instances := svc.Expand(reqs)
	if len(instances) != 3 {
		t.Fatalf("got %d instances, want 3", len(instances))
	}

	want := []struct {
		start, end string
		guest      string
	}{
		{"09:00 AM", "09:30 AM", "a@x.com"},
		{"09:45 AM", "10:15 AM", "b@x.com"},
		{"10:30 AM", "11:00 AM", "c@x.com"},
	}
	for i, w := range want {
		inst := instances[i]
		start := inst.StartHour + ":" + inst.StartMinute + " " + inst.StartAmPm
		end := inst.EndHour + ":" + inst.EndMinute + " " + inst.EndAmPm
		if start != w.start || end != w.end {
			t.Errorf("instance %d window %s-%s, want %s-%s", i, start, end, w.start, w.end)
		}
		if len(inst.Guests) != 1 || inst.Guests[0] != w.guest {
			t.Errorf("instance %d guests %v, want [%s]", i, inst.Guests, w.guest)
		}
		if inst.Date != "2024-06-10" {
			t.Errorf("instance %d date %s", i, inst.Date)
		}
	}
}

func TestExpandOccurrences(t *testing.T) {
	svc := New()
	reqs := []models.EventRequest{{
		Title:       "Focus block",
		Date:        "2024-06-10",
		StartHour:   "02",
		StartMinute: "00",
		StartAmPm:   "PM",
		TimeZone:    "UTC",
		Pattern:     models.PatternSequential,
		Occurrences: intPtr(2),
	}}

	instances := svc.Expand(reqs)
	if len(instances) != 2 {
		t.Fatalf("got %d instances, want 2", len(instances))
	}
	// No end time on the request: each slot gets the default hour, and
	// consecutive slots are separated by the default buffer.
	if instances[0].EndHour != "03" || instances[0].EndAmPm != "PM" {
		t.Errorf("first end = %s:%s %s", instances[0].EndHour, instances[0].EndMinute, instances[0].EndAmPm)
	}
	if instances[1].StartHour != "03" || instances[1].StartMinute != "15" || instances[1].StartAmPm != "PM" {
		t.Errorf("second start = %s:%s %s", instances[1].StartHour, instances[1].StartMinute, instances[1].StartAmPm)
	}
	if instances[0].Title != "Focus block" || instances[1].Title != "Focus block" {
		t.Errorf("titles = %q, %q", instances[0].Title, instances[1].Title)
	}
}

func TestExpandPerGuestRollsOverMidnight(t *testing.T) {
	svc := New()
	reqs := []models.EventRequest{{
		Title:       "Late sync",
		Date:        "2024-06-10",
		StartHour:   "11",
		StartMinute: "00",
		StartAmPm:   "PM",
		TimeZone:    "UTC",
		Guests:      []string{"a@x.com", "b@x.com"},
		Pattern:     models.PatternBackToBack,
		PerGuest:    true,
	}}

	instances := svc.Expand(reqs)
	if len(instances) != 2 {
		t.Fatalf("got %d instances, want 2", len(instances))
	}
	first := instances[0]
	if first.EndHour != "12" || first.EndAmPm != "AM" || first.EndDate != "2024-06-11" {
		t.Errorf("first end = %s:%s %s endDate=%s", first.EndHour, first.EndMinute, first.EndAmPm, first.EndDate)
	}
	second := instances[1]
	if second.Date != "2024-06-11" || second.StartHour != "12" || second.StartMinute != "15" || second.StartAmPm != "AM" {
		t.Errorf("second = %s %s:%s %s", second.Date, second.StartHour, second.StartMinute, second.StartAmPm)
	}
}

func TestExpandSingleDefault(t *testing.T) {
	svc := New()
	reqs := []models.EventRequest{{
		Title:       "Sync",
		Date:        "2024-06-10",
		StartHour:   "10",
		StartMinute: "00",
		StartAmPm:   "AM",
		Guests:      []string{"a@x.com", "b@x.com"},
	}}

	instances := svc.Expand(reqs)
	if len(instances) != 1 {
		t.Fatalf("got %d instances, want 1", len(instances))
	}
	if len(instances[0].Guests) != 2 {
		t.Errorf("single instance keeps the full guest list, got %v", instances[0].Guests)
	}
	if instances[0].HasEnd() {
		t.Errorf("single instance should keep its end open until commit")
	}
}

func TestExpandTruncatesAtCap(t *testing.T) {
	svc := New()
	occ := MaxInstances + 50
	reqs := []models.EventRequest{{
		Title:       "Spam",
		Date:        "2024-06-10",
		StartHour:   "09",
		StartMinute: "00",
		StartAmPm:   "AM",
		Occurrences: &occ,
	}}

	instances := svc.Expand(reqs)
	if len(instances) != MaxInstances {
		t.Fatalf("got %d instances, want %d", len(instances), MaxInstances)
	}
}

func TestExpandPerGuestRequiresChainedPattern(t *testing.T) {
	svc := New()
	reqs := []models.EventRequest{{
		Title:       "Briefing",
		Date:        "2024-06-10",
		StartHour:   "09",
		StartMinute: "00",
		StartAmPm:   "AM",
		Guests:      []string{"a@x.com", "b@x.com", "c@x.com"},
		Pattern:     models.PatternParallel,
		PerGuest:    true,
	}}

	instances := svc.Expand(reqs)
	if len(instances) != 1 {
		t.Fatalf("got %d instances, want 1", len(instances))
	}
	if len(instances[0].Guests) != 3 {
		t.Errorf("parallel meeting keeps the full guest list, got %v", instances[0].Guests)
	}
}

func TestExpandPerGuestSingleGuest(t *testing.T) {
	svc := New()
	reqs := []models.EventRequest{{
		Title:       "Interview",
		Date:        "2024-06-10",
		StartHour:   "09",
		StartMinute: "00",
		StartAmPm:   "AM",
		Guests:      []string{"a@x.com"},
		Pattern:     models.PatternBackToBack,
		PerGuest:    true,
	}}

	instances := svc.Expand(reqs)
	if len(instances) != 1 {
		t.Fatalf("got %d instances, want 1", len(instances))
	}
	// The lone slot still gets a concrete end from the default duration.
	if instances[0].EndHour != "10" || instances[0].EndMinute != "00" || instances[0].EndAmPm != "AM" {
		t.Errorf("end = %s:%s %s", instances[0].EndHour, instances[0].EndMinute, instances[0].EndAmPm)
	}
}

func TestExpandDefaultsDurationWhenEndNotAfterStart(t *testing.T) {
	svc := New()
	reqs := []models.EventRequest{{
		Title:       "Check-in",
		Date:        "2024-06-10",
		StartHour:   "10",
		StartMinute: "00",
		StartAmPm:   "AM",
		EndHour:     "09",
		EndMinute:   "00",
		EndAmPm:     "AM",
		Guests:      []string{"a@x.com", "b@x.com"},
		Pattern:     models.PatternBackToBack,
		PerGuest:    true,
	}}

	instances := svc.Expand(reqs)
	if len(instances) != 2 {
		t.Fatalf("got %d instances, want 2", len(instances))
	}
	first := instances[0]
	if first.EndHour != "11" || first.EndMinute != "00" || first.EndAmPm != "AM" || first.EndDate != "" {
		t.Errorf("first end = %s:%s %s endDate=%q", first.EndHour, first.EndMinute, first.EndAmPm, first.EndDate)
	}
	second := instances[1]
	if second.Date != "2024-06-10" || second.StartHour != "11" || second.StartMinute != "15" || second.StartAmPm != "AM" {
		t.Errorf("second = %s %s:%s %s", second.Date, second.StartHour, second.StartMinute, second.StartAmPm)
	}
}
