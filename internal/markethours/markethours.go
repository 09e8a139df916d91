// Package markethours answers "is the A-share market trading right now"
// so the monitor can idle outside sessions instead of hammering the
// quote API with stale data.
package markethours

import (
	"fmt"
	"time"
)

// CST is China Standard Time (UTC+8). Mainland exchanges have no DST.
var CST = time.FixedZone("CST", 8*3600)

// A-share trading sessions in CST: a morning and an afternoon session
// with a lunch break between them.
const (
	MorningOpenHour     = 9
	MorningOpenMinute   = 30
	MorningCloseHour    = 11
	MorningCloseMinute  = 30
	AfternoonOpenHour   = 13
	AfternoonOpenMinute = 0
	CloseHour           = 15
	CloseMinute         = 0
)

// IsMarketOpen returns true if t falls within a trading session
// (9:30–11:30 or 13:00–15:00 CST, Mon–Fri, excluding holidays).
func IsMarketOpen(t time.Time) bool {
	cst := t.In(CST)
	wd := cst.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	if IsHoliday(cst) {
		return false
	}
	hm := cst.Hour()*60 + cst.Minute()
	morning := hm >= MorningOpenHour*60+MorningOpenMinute && hm < MorningCloseHour*60+MorningCloseMinute
	afternoon := hm >= AfternoonOpenHour*60+AfternoonOpenMinute && hm < CloseHour*60+CloseMinute
	return morning || afternoon
}

// IsWeekday returns true if t is Mon–Fri.
func IsWeekday(t time.Time) bool {
	wd := t.In(CST).Weekday()
	return wd >= time.Monday && wd <= time.Friday
}

// IsTradingDay returns true if t is a weekday and not a holiday.
func IsTradingDay(t time.Time) bool {
	cst := t.In(CST)
	return IsWeekday(cst) && !IsHoliday(cst)
}

// NextOpen returns the next session open. Within the lunch break that
// is today's afternoon session; after close it is the next trading
// day's morning session.
func NextOpen(t time.Time) time.Time {
	cst := t.In(CST)

	if IsTradingDay(cst) {
		morning := time.Date(cst.Year(), cst.Month(), cst.Day(), MorningOpenHour, MorningOpenMinute, 0, 0, CST)
		if cst.Before(morning) {
			return morning
		}
		afternoon := time.Date(cst.Year(), cst.Month(), cst.Day(), AfternoonOpenHour, AfternoonOpenMinute, 0, 0, CST)
		if cst.Before(afternoon) && !IsMarketOpen(cst) {
			return afternoon
		}
	}

	d := cst.AddDate(0, 0, 1)
	for i := 0; i < 15; i++ { // max 15 days ahead (Spring Festival + weekends)
		if IsTradingDay(d) {
			return time.Date(d.Year(), d.Month(), d.Day(), MorningOpenHour, MorningOpenMinute, 0, 0, CST)
		}
		d = d.AddDate(0, 0, 1)
	}
	return time.Date(cst.Year(), cst.Month(), cst.Day()+1, MorningOpenHour, MorningOpenMinute, 0, 0, CST)
}

// TodayClose returns today's final close time (3:00 PM CST).
func TodayClose(t time.Time) time.Time {
	cst := t.In(CST)
	return time.Date(cst.Year(), cst.Month(), cst.Day(), CloseHour, CloseMinute, 0, 0, CST)
}

// TimeUntilClose returns the duration until today's close.
// Returns 0 if the market is already closed.
func TimeUntilClose(t time.Time) time.Duration {
	d := TodayClose(t).Sub(t.In(CST))
	if d < 0 {
		return 0
	}
	return d
}

// TimeUntilOpen returns the duration until the next session open.
func TimeUntilOpen(t time.Time) time.Duration {
	return NextOpen(t).Sub(t.In(CST))
}

// StatusString returns a human-readable market status.
func StatusString(t time.Time) string {
	if IsMarketOpen(t) {
		return fmt.Sprintf("Market Open — closes in %s", fmtDur(TimeUntilClose(t)))
	}
	next := NextOpen(t)
	cst := next.In(CST)
	return fmt.Sprintf("Market Closed — opens %s %s (%s)",
		cst.Weekday().String()[:3], cst.Format("15:04"), fmtDur(next.Sub(t)))
}

func fmtDur(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
