package schedule_test

import (
	"errors"
	"testing"
	"time"

	"github.com/edgard/calbot/internal/schedule"
)

func TestParseLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    schedule.Draft
		wantErr error
	}{
		{
			name:  "hour range with h suffix and location",
			input: "16-18h: badminton @Gym",
			want: schedule.Draft{
				Start:    schedule.Clock{Hour: 16},
				End:      schedule.Clock{Hour: 18},
				RawTitle: "badminton",
				Location: "Gym",
			},
		},
		{
			name:  "minutes",
			input: "9:15-10:45: standup",
			want: schedule.Draft{
				Start:    schedule.Clock{Hour: 9, Minute: 15},
				End:      schedule.Clock{Hour: 10, Minute: 45},
				RawTitle: "standup",
			},
		},
		{
			name:  "am pm suffixes",
			input: "11am-1pm lunch with team",
			want: schedule.Draft{
				Start:    schedule.Clock{Hour: 11},
				End:      schedule.Clock{Hour: 13},
				RawTitle: "lunch with team",
			},
		},
		{
			name:  "twelve am and twelve pm",
			input: "12am-12pm: sleep",
			want: schedule.Draft{
				Start:    schedule.Clock{Hour: 0},
				End:      schedule.Clock{Hour: 12},
				RawTitle: "sleep",
			},
		},
		{
			name:  "weekday code",
			input: "T3 18-19: gym",
			want: schedule.Draft{
				Date:     schedule.DateToken{Kind: schedule.DateWeekday, Weekday: time.Tuesday},
				Start:    schedule.Clock{Hour: 18},
				End:      schedule.Clock{Hour: 19},
				RawTitle: "gym",
			},
		},
		{
			name:  "lowercase weekday code",
			input: "t7 8-9: run",
			want: schedule.Draft{
				Date:     schedule.DateToken{Kind: schedule.DateWeekday, Weekday: time.Saturday},
				Start:    schedule.Clock{Hour: 8},
				End:      schedule.Clock{Hour: 9},
				RawTitle: "run",
			},
		},
		{
			name:  "relative marker",
			input: "mai 7-8: yoga",
			want: schedule.Draft{
				Date:     schedule.DateToken{Kind: schedule.DateTomorrow},
				Start:    schedule.Clock{Hour: 7},
				End:      schedule.Clock{Hour: 8},
				RawTitle: "yoga",
			},
		},
		{
			name:  "tomorrow morning",
			input: "Tomorrow morning: english class",
			want: schedule.Draft{
				Date:     schedule.DateToken{Kind: schedule.DateTomorrow},
				Start:    schedule.Clock{Hour: 8},
				End:      schedule.Clock{Hour: 10},
				RawTitle: "english class",
			},
		},
		{
			name:  "evening word and tonight removed",
			input: "movie tonight evening",
			want: schedule.Draft{
				Start:    schedule.Clock{Hour: 18},
				End:      schedule.Clock{Hour: 20},
				RawTitle: "movie",
			},
		},
		{
			name:  "afternoon",
			input: "afternoon: project work @office",
			want: schedule.Draft{
				Start:    schedule.Clock{Hour: 14},
				End:      schedule.Clock{Hour: 16},
				RawTitle: "project work",
				Location: "office",
			},
		},
		{
			name:  "spaced range and collapsed whitespace",
			input: "  walk    the dog   17 - 18  ",
			want: schedule.Draft{
				Start:    schedule.Clock{Hour: 17},
				End:      schedule.Clock{Hour: 18},
				RawTitle: "walk the dog",
			},
		},
		{
			name:  "cross midnight accepted as-is",
			input: "22-1: night shift",
			want: schedule.Draft{
				Start:    schedule.Clock{Hour: 22},
				End:      schedule.Clock{Hour: 1},
				RawTitle: "night shift",
			},
		},
		{
			name:  "location split on first at sign",
			input: "10-11: call @home @desk",
			want: schedule.Draft{
				Start:    schedule.Clock{Hour: 10},
				End:      schedule.Clock{Hour: 11},
				RawTitle: "call",
				Location: "home @desk",
			},
		},
		{
			name:    "no time range",
			input:   "badminton at the gym",
			wantErr: schedule.ErrNoTimeRange,
		},
		{
			name:    "time range in location only",
			input:   "gym @ 16-18",
			wantErr: schedule.ErrNoTimeRange,
		},
		{
			name:    "empty title",
			input:   "16-18h:",
			wantErr: schedule.ErrEmptyTitle,
		},
		{
			name:    "hour out of range",
			input:   "25-26: nothing",
			wantErr: schedule.ErrInvalidTime,
		},
		{
			name:    "pm pushes past midnight",
			input:   "13pm-14pm: nope",
			wantErr: schedule.ErrInvalidTime,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := schedule.ParseLine(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseLine(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				if !errors.Is(err, schedule.ErrParse) {
					t.Errorf("ParseLine(%q) error %v does not wrap ErrParse", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLine(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseLine(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseLineExcludesTimeRangeFromTitle(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"8-9: breakfast",
		"08:30-09:45: reading",
		"19-21h: dinner with family",
		"1pm-2pm: nap",
	}
	for _, in := range inputs {
		d, err := schedule.ParseLine(in)
		if err != nil {
			t.Fatalf("ParseLine(%q): %v", in, err)
		}
		for _, ch := range []string{"-", ":"} {
			if containsDigitAround(d.RawTitle, ch) {
				t.Errorf("ParseLine(%q) title %q still contains the time range", in, d.RawTitle)
			}
		}
	}
}

func containsDigitAround(s, sep string) bool {
	for i := 0; i+len(sep) <= len(s); i++ {
		if s[i:i+len(sep)] != sep {
			continue
		}
		before := i > 0 && s[i-1] >= '0' && s[i-1] <= '9'
		after := i+len(sep) < len(s) && s[i+len(sep)] >= '0' && s[i+len(sep)] <= '9'
		if before && after {
			return true
		}
	}
	return false
}

func TestParseClockRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"0", "00:00"},
		{"7", "07:00"},
		{"07:05", "07:05"},
		{"16h", "16:00"},
		{"4pm", "16:00"},
		{"4:30PM", "16:30"},
		{"12pm", "12:00"},
		{"12am", "00:00"},
		{"23:59", "23:59"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			c, err := schedule.ParseClock(tt.input)
			if err != nil {
				t.Fatalf("ParseClock(%q): %v", tt.input, err)
			}
			if c.String() != tt.want {
				t.Errorf("ParseClock(%q) = %s, want %s", tt.input, c, tt.want)
			}

			again, err := schedule.ParseClock(c.String())
			if err != nil || again != c {
				t.Errorf("round trip of %s = %+v, %v", c, again, err)
			}
		})
	}
}

func TestParseClockRejects(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "24", "10:60", "abc", "1:5", "123"} {
		if _, err := schedule.ParseClock(in); !errors.Is(err, schedule.ErrInvalidTime) {
			t.Errorf("ParseClock(%q) error = %v, want ErrInvalidTime", in, err)
		}
	}
}

func TestParseMessageCountsSkips(t *testing.T) {
	t.Parallel()

	text := "16-18h: badminton @Gym\n\nnot an event\n19-20: dinner\n:\n"
	drafts, skipped := schedule.ParseMessage(text)

	if len(drafts) != 2 {
		t.Fatalf("got %d drafts, want 2", len(drafts))
	}
	if drafts[0].RawTitle != "badminton" || drafts[1].RawTitle != "dinner" {
		t.Errorf("unexpected titles: %q, %q", drafts[0].RawTitle, drafts[1].RawTitle)
	}
	if len(skipped) != 2 {
		t.Fatalf("got %d skipped lines, want 2", len(skipped))
	}
	if skipped[0].Line != "not an event" {
		t.Errorf("skipped[0].Line = %q", skipped[0].Line)
	}
	for _, s := range skipped {
		if !errors.Is(s.Err, schedule.ErrParse) {
			t.Errorf("skipped line %q has error %v, want ErrParse", s.Line, s.Err)
		}
	}
}
