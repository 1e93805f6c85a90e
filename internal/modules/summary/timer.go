package summary

import (
	"fmt"
	"time"
)

// RollTimer is the time elapsed since the last saved roll.
type RollTimer struct {
	Elapsed  string `json:"elapsedTime"`
	LastSave string `json:"lastSaveHour"`
}

// Timer renders the roll timer at now, in loc. "--:--" before the first save.
func Timer(last *time.Time, now time.Time, loc *time.Location) RollTimer {
	if last == nil || last.IsZero() {
		return RollTimer{Elapsed: "--:--", LastSave: "--:--"}
	}
	if loc == nil {
		loc = time.Local
	}
	total := int(now.Sub(*last) / time.Minute)
	if total < 0 {
		total = 0
	}
	return RollTimer{
		Elapsed:  fmt.Sprintf("%02d:%02d", total/60, total%60),
		LastSave: last.In(loc).Format("15:04"),
	}
}

func (b *Bar) Timer() RollTimer {
	return Timer(b.f.LastRollSaveTime, b.now(), nil)
}
