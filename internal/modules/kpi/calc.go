package kpi

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultOpeningMinutes is the opening time assumed until the shift hours are known.
const DefaultOpeningMinutes = 480

// Availability is (required - lost) / required in percent, clamped at zero.
func Availability(requiredMin, lostMin float64) float64 {
	if requiredMin <= 0 {
		return 0
	}
	if lostMin < 0 {
		lostMin = 0
	}
	return math.Max(0, (requiredMin-lostMin)/requiredMin*100)
}

// Performance is actual over theoretical output in percent, capped at 100.
func Performance(actual, theoretical float64) float64 {
	if theoretical <= 0 || actual <= 0 {
		return 0
	}
	return math.Min(100, actual/theoretical*100)
}

// Quality is the share of conforming rolls in percent; 100 before any roll.
func Quality(conform, total int) float64 {
	if total <= 0 {
		return 100
	}
	return float64(conform) / float64(total) * 100
}

// OEE combines three percentages into one.
func OEE(availability, performance, quality float64) float64 {
	return availability * performance * quality / 10000
}

// TheoreticalProduction is the length the line would wind at belt speed (m/min)
// over the available minutes.
func TheoreticalProduction(beltSpeed, availableMin float64) float64 {
	if beltSpeed <= 0 || availableMin <= 0 {
		return 0
	}
	return beltSpeed * availableMin
}

// Productivity is meters per production hour, rounded to the unit.
func Productivity(length, shiftMin, lostMin float64) float64 {
	hours := (shiftMin - lostMin) / 60
	if hours <= 0 {
		return 0
	}
	return math.Round(length / hours)
}

// ScrapRate is the share of non-conforming rolls in percent.
func ScrapRate(conform, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(total-conform) / float64(total) * 100
}

// MTBF is the mean operating time between breakdowns in minutes. Without any
// breakdown it is the whole operating time.
func MTBF(operatingMin float64, breakdowns int) float64 {
	if breakdowns <= 0 {
		return math.Max(0, operatingMin)
	}
	return math.Round(operatingMin / float64(breakdowns))
}

// MaterialYield is finished over consumed material in percent.
func MaterialYield(finishedKg, rawKg float64) float64 {
	if rawKg <= 0 {
		return 0
	}
	return finishedKg / rawKg * 100
}

// Round1 rounds to the single decimal the dashboards display.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ParseClock reads "HH:MM" into minutes after midnight.
func ParseClock(s string) (int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("clock %q: want HH:MM", s)
	}
	hh, err := strconv.Atoi(h)
	if err != nil || hh < 0 || hh > 23 {
		return 0, fmt.Errorf("clock %q: bad hour", s)
	}
	mm, err := strconv.Atoi(m)
	if err != nil || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("clock %q: bad minute", s)
	}
	return hh*60 + mm, nil
}

// ShiftDuration is the length of a shift in minutes. An end clock earlier than
// the start means the shift crosses midnight.
func ShiftDuration(start, end string) (int, error) {
	s, err := ParseClock(start)
	if err != nil {
		return 0, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return 0, err
	}
	if e < s {
		e += 24 * 60
	}
	return e - s, nil
}

// FormatMinutes renders a duration as "XhMM", or "N min" under an hour.
func FormatMinutes(min int) string {
	if min < 0 {
		min = 0
	}
	if min < 60 {
		return fmt.Sprintf("%d min", min)
	}
	return fmt.Sprintf("%dh%02d", min/60, min%60)
}

// TRSClass maps an OEE percentage to the dashboard colour.
func TRSClass(oee float64) string {
	switch {
	case oee >= 80:
		return "success"
	case oee >= 60:
		return "warning"
	default:
		return "danger"
	}
}
