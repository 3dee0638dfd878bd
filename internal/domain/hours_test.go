package domain_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"bakery_locations/internal/domain"
)

// 2024-01-01 is a Monday.
func at(day, hour, minute int) time.Time {
	return time.Date(2024, 1, day, hour, minute, 0, 0, time.UTC)
}

func tod(h, m int) *domain.TimeOfDay {
	t := domain.NewTimeOfDay(h, m, 0)
	return &t
}

func TestIsOpen(t *testing.T) {
	Convey("Given a Monday 09:00-17:00 schedule", t, func() {
		s := domain.Schedule{{Day: domain.Monday, Opening: tod(9, 0), Closing: tod(17, 0)}}

		Convey("It is open on both inclusive boundaries", func() {
			So(domain.IsOpen(s, at(1, 9, 0)), ShouldBeTrue)
			So(domain.IsOpen(s, at(1, 17, 0)), ShouldBeTrue)
			So(domain.IsOpen(s, at(1, 12, 30)), ShouldBeTrue)
		})

		Convey("It is closed just outside the window", func() {
			So(domain.IsOpen(s, at(1, 8, 59)), ShouldBeFalse)
			So(domain.IsOpen(s, at(1, 17, 1)), ShouldBeFalse)
		})

		Convey("It is closed on a day without an entry", func() {
			So(domain.IsOpen(s, at(2, 12, 0)), ShouldBeFalse)
			So(domain.IsOpen(s, at(7, 12, 0)), ShouldBeFalse)
		})

		Convey("Seconds past the closing minute are outside the window", func() {
			So(domain.IsOpen(s, at(1, 17, 0).Add(30*time.Second)), ShouldBeFalse)
		})

		Convey("A fraction of a second past closing is outside the window", func() {
			So(domain.IsOpen(s, at(1, 17, 0).Add(500*time.Millisecond)), ShouldBeFalse)
			So(domain.IsOpen(s, at(1, 16, 59).Add(59*time.Second+999*time.Millisecond)), ShouldBeTrue)
			So(domain.IsOpen(s, at(1, 9, 0).Add(500*time.Millisecond)), ShouldBeTrue)
		})
	})

	Convey("Given a closed entry with times set", t, func() {
		s := domain.Schedule{{Day: domain.Sunday, Opening: tod(0, 0), Closing: tod(23, 59), Closed: true}}

		Convey("It is never open that day", func() {
			for h := 0; h < 24; h++ {
				So(domain.IsOpen(s, at(7, h, 30)), ShouldBeFalse)
			}
		})

		Convey("A later duplicate window does not reopen the day", func() {
			s = append(s, domain.OperatingHours{Day: domain.Sunday, Opening: tod(9, 0), Closing: tod(17, 0)})
			So(domain.IsOpen(s, at(7, 12, 0)), ShouldBeFalse)
		})
	})

	Convey("Given entries with a missing bound", t, func() {
		s := domain.Schedule{
			{Day: domain.Tuesday, Opening: tod(9, 0)},
			{Day: domain.Wednesday, Closing: tod(17, 0)},
			{Day: domain.Thursday},
		}

		Convey("They never yield open", func() {
			So(domain.IsOpen(s, at(2, 12, 0)), ShouldBeFalse)
			So(domain.IsOpen(s, at(3, 12, 0)), ShouldBeFalse)
			So(domain.IsOpen(s, at(4, 12, 0)), ShouldBeFalse)
		})
	})

	Convey("Given an overnight window 22:00-02:00 on Friday", t, func() {
		s := domain.Schedule{{Day: domain.Friday, Opening: tod(22, 0), Closing: tod(2, 0)}}

		Convey("It never matches, before or after midnight", func() {
			So(domain.IsOpen(s, at(5, 23, 0)), ShouldBeFalse)
			So(domain.IsOpen(s, at(5, 22, 0)), ShouldBeFalse)
			So(domain.IsOpen(s, at(5, 1, 0)), ShouldBeFalse)
			So(domain.IsOpen(s, at(6, 1, 0)), ShouldBeFalse)
		})
	})

	Convey("Given duplicate entries for one day", t, func() {
		s := domain.Schedule{
			{Day: domain.Saturday, Opening: tod(8, 0), Closing: tod(12, 0)},
			{Day: domain.Saturday, Opening: tod(14, 0), Closing: tod(18, 0)},
		}

		Convey("Entry returns the first one", func() {
			e, ok := s.Entry(domain.Saturday)
			So(ok, ShouldBeTrue)
			So(*e.Opening, ShouldEqual, domain.NewTimeOfDay(8, 0, 0))
		})

		Convey("Validate rejects the schedule", func() {
			So(errors.Is(s.Validate(), domain.ErrDuplicateDay), ShouldBeTrue)
		})
	})

	Convey("The wall clock of now is used without zone conversion", t, func() {
		tokyo := time.FixedZone("JST", 9*3600)
		s := domain.Schedule{{Day: domain.Monday, Opening: tod(9, 0), Closing: tod(10, 0)}}
		So(domain.IsOpen(s, time.Date(2024, 1, 1, 9, 30, 0, 0, tokyo)), ShouldBeTrue)
	})
}

func TestOperatingHoursFormat(t *testing.T) {
	cases := []struct {
		name string
		h    domain.OperatingHours
		want string
	}{
		{"both times", domain.OperatingHours{Day: domain.Monday, Opening: tod(9, 0), Closing: tod(17, 30)}, "MON: 09:00 - 17:30 Europe/London"},
		{"no opening", domain.OperatingHours{Day: domain.Tuesday, Closing: tod(17, 0)}, "TUE: -- - 17:00 Europe/London"},
		{"no closing", domain.OperatingHours{Day: domain.Sunday, Opening: tod(7, 5)}, "SUN: 07:05 - -- Europe/London"},
		{"closed", domain.OperatingHours{Day: domain.Thursday, Closed: true}, "THU: -- - -- Europe/London"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.h.Format("Europe/London"); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseWeekday(t *testing.T) {
	cases := map[string]domain.Weekday{
		"MON": domain.Monday, "tue": domain.Tuesday, "TUES": domain.Tuesday,
		"THUR": domain.Thursday, "Thursday": domain.Thursday, " sun ": domain.Sunday,
	}
	for in, want := range cases {
		got, err := domain.ParseWeekday(in)
		if err != nil || got != want {
			t.Fatalf("ParseWeekday(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := domain.ParseWeekday("MONDAYS"); !errors.Is(err, domain.ErrInvalidDay) {
		t.Fatalf("expected ErrInvalidDay, got %v", err)
	}
}

func TestWeekdayOf(t *testing.T) {
	if domain.WeekdayOf(time.Sunday) != domain.Sunday || domain.WeekdayOf(time.Monday) != domain.Monday {
		t.Fatalf("unexpected weekday mapping")
	}
}

func TestOperatingHoursJSON(t *testing.T) {
	in := domain.OperatingHours{Day: domain.Wednesday, Opening: tod(8, 0), Closing: tod(18, 15), SortOrder: 2}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"day":"WED","opening_time":"08:00","closing_time":"18:15","closed":false,"sort_order":2}`
	if string(b) != want {
		t.Fatalf("got %s, want %s", b, want)
	}

	var out domain.OperatingHours
	if err := json.Unmarshal([]byte(`{"day":"THUR","opening_time":"07:30:15"}`), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Day != domain.Thursday || out.Opening == nil || *out.Opening != domain.NewTimeOfDay(7, 30, 15) || out.Closing != nil {
		t.Fatalf("unexpected: %+v", out)
	}
}

func TestScheduleSorted(t *testing.T) {
	s := domain.Schedule{
		{Day: domain.Friday, SortOrder: 1},
		{Day: domain.Monday, SortOrder: 1},
		{Day: domain.Sunday, SortOrder: 0},
	}
	got := s.Sorted()
	if got[0].Day != domain.Sunday || got[1].Day != domain.Friday || got[2].Day != domain.Monday {
		t.Fatalf("unexpected order: %+v", got)
	}
	if s[0].Day != domain.Friday {
		t.Fatalf("Sorted mutated the receiver")
	}

	// entries without an explicit order keep the editor's order, not day order
	plain := domain.Schedule{{Day: domain.Sunday}, {Day: domain.Monday}}
	if got := plain.Sorted(); got[0].Day != domain.Sunday {
		t.Fatalf("tie reordered by day: %+v", got)
	}
}
