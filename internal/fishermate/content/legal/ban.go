package legal

import (
	"fmt"
	"strings"
	"time"
)

// BanState classifies today against a ban period.
type BanState int

const (
	BanUnknown BanState = iota
	BanActive
	BanUpcoming
	BanInactive
)

// BanStatus is the result of CheckBan.
type BanStatus struct {
	State BanState
	Days  int // remaining when active, until start when upcoming
}

// String renders the status line shown to users; unknown renders empty.
func (s BanStatus) String() string {
	switch s.State {
	case BanActive:
		return fmt.Sprintf("🔴 ACTIVE BAN - %d days remaining", s.Days)
	case BanUpcoming:
		return fmt.Sprintf("🟡 Ban starts in %d days", s.Days)
	case BanInactive:
		return "🟢 No active ban"
	}
	return ""
}

// CheckBan evaluates a period such as "April 15 - June 14" at now. Text
// after the end date, like "(Bay of Bengal)", is ignored. Both dates are
// placed in now's year. When the end falls before the start, the period
// wraps the new year: in January to June the start moves back a year,
// otherwise the end moves forward a year. The end date counts from its
// midnight, so the last day itself reads as no active ban.
func CheckBan(period string, now time.Time) BanStatus {
	startStr, endStr, ok := strings.Cut(period, " - ")
	if !ok {
		return BanStatus{}
	}
	year := now.Year()
	start, err1 := monthDay(startStr, year, now.Location())
	end, err2 := monthDay(endStr, year, now.Location())
	if err1 != nil || err2 != nil {
		return BanStatus{}
	}

	if end.Before(start) {
		if now.Month() <= time.June {
			start = start.AddDate(-1, 0, 0)
		} else {
			end = end.AddDate(1, 0, 0)
		}
	}

	switch {
	case !now.Before(start) && !now.After(end):
		return BanStatus{State: BanActive, Days: wholeDays(end.Sub(now))}
	case now.Before(start):
		return BanStatus{State: BanUpcoming, Days: wholeDays(start.Sub(now))}
	}
	return BanStatus{State: BanInactive}
}

// monthDay parses the leading "Month D" of s.
func monthDay(s string, year int, loc *time.Location) (time.Time, error) {
	f := strings.Fields(s)
	if len(f) < 2 {
		return time.Time{}, fmt.Errorf("legal: bad date %q", s)
	}
	t, err := time.Parse("January 2", f[0]+" "+f[1])
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(year, t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

func wholeDays(d time.Duration) int { return int(d / (24 * time.Hour)) }
