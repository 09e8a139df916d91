package markethours

import (
	"testing"
	"time"
)

func at(month time.Month, day, hour, min int) time.Time {
	return time.Date(2026, month, day, hour, min, 0, 0, CST)
}

func TestIsMarketOpen_Sessions(t *testing.T) {
	// 2026-08-28 is a Friday.
	cases := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"before morning open", at(time.August, 28, 9, 29), false},
		{"morning open", at(time.August, 28, 9, 30), true},
		{"mid morning", at(time.August, 28, 10, 45), true},
		{"lunch break", at(time.August, 28, 12, 0), false},
		{"afternoon open", at(time.August, 28, 13, 0), true},
		{"before close", at(time.August, 28, 14, 59), true},
		{"at close", at(time.August, 28, 15, 0), false},
		{"saturday", at(time.August, 29, 10, 0), false},
		{"sunday", at(time.August, 30, 10, 0), false},
		{"national day", at(time.October, 1, 10, 0), false},
	}
	for _, tc := range cases {
		if got := IsMarketOpen(tc.t); got != tc.want {
			t.Errorf("%s: IsMarketOpen = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestNextOpen_LunchBreakReturnsAfternoon(t *testing.T) {
	got := NextOpen(at(time.August, 28, 12, 0))
	want := at(time.August, 28, 13, 0)
	if !got.Equal(want) {
		t.Errorf("NextOpen = %v, want %v", got, want)
	}
}

func TestNextOpen_AfterCloseSkipsWeekend(t *testing.T) {
	// Friday after close → Monday morning.
	got := NextOpen(at(time.August, 28, 15, 30))
	want := at(time.August, 31, 9, 30)
	if !got.Equal(want) {
		t.Errorf("NextOpen = %v, want %v", got, want)
	}
}

func TestNextOpen_SkipsHolidayWeek(t *testing.T) {
	// Sep 30 after close → National Day week closed, reopen Oct 8.
	got := NextOpen(at(time.September, 30, 16, 0))
	want := at(time.October, 8, 9, 30)
	if !got.Equal(want) {
		t.Errorf("NextOpen = %v, want %v", got, want)
	}
}

func TestTimeUntilClose(t *testing.T) {
	d := TimeUntilClose(at(time.August, 28, 14, 0))
	if d != time.Hour {
		t.Errorf("TimeUntilClose = %v, want 1h", d)
	}
	if d := TimeUntilClose(at(time.August, 28, 16, 0)); d != 0 {
		t.Errorf("after close TimeUntilClose = %v, want 0", d)
	}
}

func TestIsTradingDay(t *testing.T) {
	if IsTradingDay(at(time.October, 1, 10, 0)) {
		t.Error("National Day must not be a trading day")
	}
	if !IsTradingDay(at(time.August, 28, 10, 0)) {
		t.Error("regular Friday must be a trading day")
	}
}

func TestStatusString(t *testing.T) {
	if s := StatusString(at(time.August, 28, 10, 0)); s == "" {
		t.Error("expected non-empty open status")
	}
	if s := StatusString(at(time.August, 29, 10, 0)); s == "" {
		t.Error("expected non-empty closed status")
	}
}
