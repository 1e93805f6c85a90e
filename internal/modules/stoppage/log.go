package stoppage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tissage-sgq/shiftconsole/internal/domain"
)

// StartupReason is the stoppage reason that marks machine start-up time.
const StartupReason = "Démarrage"

const tempPrefix = "temp_"

var (
	ErrNoReason    = errors.New("stoppage reason required")
	ErrBadDuration = errors.New("stoppage duration must be a positive number of minutes")
	ErrNotFound    = errors.New("stoppage entry not found")
)

// Declaration is the operator's input for one stoppage.
type Declaration struct {
	Reason   string `json:"reason"`
	Comment  string `json:"comment"`
	Duration int    `json:"duration"`
}

// Log is the list of the shift's declared stoppages. Not safe for concurrent use.
type Log struct {
	entries []domain.LostTimeEntry
	reasons []domain.LostTimeReason
	now     func() time.Time
}

func NewLog(entries []domain.LostTimeEntry, now func() time.Time) *Log {
	if now == nil {
		now = time.Now
	}
	return &Log{entries: append([]domain.LostTimeEntry{}, entries...), now: now}
}

// SetReasons keeps the active reasons of the catalog.
func (l *Log) SetReasons(all []domain.LostTimeReason) {
	l.reasons = l.reasons[:0]
	for _, r := range all {
		if r.IsActive {
			l.reasons = append(l.reasons, r)
		}
	}
}

func (l *Log) Reasons() []domain.LostTimeReason {
	return append([]domain.LostTimeReason{}, l.reasons...)
}

func (l *Log) Entries() []domain.LostTimeEntry {
	return append([]domain.LostTimeEntry{}, l.entries...)
}

// Replace swaps in the entries known to the session server.
func (l *Log) Replace(entries []domain.LostTimeEntry) {
	l.entries = append(l.entries[:0], entries...)
}

// CanDeclare mirrors the declare button state.
func CanDeclare(d Declaration) bool {
	return strings.TrimSpace(d.Reason) != "" && d.Duration > 0
}

// Declare appends a stoppage with a temporary id until the server assigns one.
func (l *Log) Declare(d Declaration) (domain.LostTimeEntry, error) {
	if strings.TrimSpace(d.Reason) == "" {
		return domain.LostTimeEntry{}, ErrNoReason
	}
	if d.Duration <= 0 {
		return domain.LostTimeEntry{}, fmt.Errorf("%w: %d", ErrBadDuration, d.Duration)
	}
	e := domain.LostTimeEntry{
		ID:        tempPrefix + uuid.NewString(),
		Reason:    strings.TrimSpace(d.Reason),
		Comment:   strings.TrimSpace(d.Comment),
		Duration:  d.Duration,
		CreatedAt: l.now().UTC(),
	}
	l.entries = append(l.entries, e)
	return e, nil
}

// Confirm replaces a temporary id with the one assigned by the server.
func (l *Log) Confirm(tempID, id string) {
	for i := range l.entries {
		if l.entries[i].ID == tempID {
			l.entries[i].ID = id
			return
		}
	}
}

// Remove deletes an entry and returns it.
func (l *Log) Remove(id string) (domain.LostTimeEntry, error) {
	for i, e := range l.entries {
		if e.ID == id {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return e, nil
		}
	}
	return domain.LostTimeEntry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// IsTemporary reports an entry the server has not acknowledged yet.
func IsTemporary(id string) bool { return strings.HasPrefix(id, tempPrefix) }

func (l *Log) Count() int { return len(l.entries) }

func (l *Log) TotalMinutes() int {
	total := 0
	for _, e := range l.entries {
		total += e.Duration
	}
	return total
}

// HasStartupTime reports whether a start-up stoppage was declared.
func (l *Log) HasStartupTime() bool {
	for _, e := range l.entries {
		if strings.EqualFold(e.Reason, StartupReason) {
			return true
		}
	}
	return false
}

// Fields is the persisted form of the log.
func (l *Log) Fields() domain.LostTimeFields {
	return domain.LostTimeFields{
		Entries:        l.Entries(),
		Total:          FormatTotal(l.TotalMinutes()),
		HasStartupTime: l.HasStartupTime(),
	}
}

// FormatTotal renders minutes as "XhMM".
func FormatTotal(min int) string {
	if min < 0 {
		min = 0
	}
	return fmt.Sprintf("%dh%02d", min/60, min%60)
}
