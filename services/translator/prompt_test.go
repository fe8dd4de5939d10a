package translator

import (
	"strings"
	"testing"
	"time"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNextWeekday(t *testing.T) {
	tests := []struct {
		name   string
		today  string
		target time.Weekday
		want   string
	}{
		// 2024-06-05 is a Wednesday.
		{"later this week", "2024-06-05", time.Friday, "2024-06-07"},
		{"already passed rolls a week", "2024-06-05", time.Monday, "2024-06-10"},
		{"same day rolls a week", "2024-06-05", time.Wednesday, "2024-06-12"},
		{"sunday from saturday", "2024-06-08", time.Sunday, "2024-06-09"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := NextWeekday(date(tc.today), tc.target).Format("2006-01-02")
			if got != tc.want {
				t.Errorf("NextWeekday(%s, %v) = %s, want %s", tc.today, tc.target, got, tc.want)
			}
		})
	}
}

func TestThisWeekday(t *testing.T) {
	tests := []struct {
		name   string
		today  string
		target time.Weekday
		want   string
	}{
		{"upcoming friday", "2024-06-05", time.Friday, "2024-06-07"},
		{"passed day means next week", "2024-06-05", time.Monday, "2024-06-10"},
		// "this sunday" on a Saturday means tomorrow, not eight days out.
		{"sunday from saturday", "2024-06-08", time.Sunday, "2024-06-09"},
		{"sunday from wednesday", "2024-06-05", time.Sunday, "2024-06-09"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ThisWeekday(date(tc.today), tc.target).Format("2006-01-02")
			if got != tc.want {
				t.Errorf("ThisWeekday(%s, %v) = %s, want %s", tc.today, tc.want, got, tc.want)
			}
		})
	}
}

func TestBuildInstructionsPinsDates(t *testing.T) {
	today := date("2024-06-05") // Wednesday
	out := buildInstructions(today, "Asia/Kolkata")

	for _, want := range []string{
		"2024-06-05", // today
		"2024-06-06", // tomorrow
		"2024-06-09", // this/coming Sunday
		"2024-06-07", // next Friday
		"Asia/Kolkata",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("instructions missing %q", want)
		}
	}
}
