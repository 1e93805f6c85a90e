package stoppage

import (
	"errors"
	"testing"
	"time"

	"github.com/tissage-sgq/shiftconsole/internal/domain"
)

func TestDeclareAndTotals(t *testing.T) {
	at := time.Date(2026, 3, 2, 6, 30, 0, 0, time.UTC)
	l := NewLog(nil, func() time.Time { return at })

	e, err := l.Declare(Declaration{Reason: "Démarrage", Duration: 45})
	if err != nil {
		t.Fatalf("Declare: %v", err)
	}
	if !IsTemporary(e.ID) || !e.CreatedAt.Equal(at) {
		t.Fatalf("entry: got %+v", e)
	}
	if _, err := l.Declare(Declaration{Reason: "Casse fil", Comment: " bobine 3 ", Duration: 30}); err != nil {
		t.Fatalf("Declare: %v", err)
	}

	f := l.Fields()
	if f.Total != "1h15" || !f.HasStartupTime || len(f.Entries) != 2 {
		t.Fatalf("fields: got %+v", f)
	}
	if f.Entries[1].Comment != "bobine 3" {
		t.Fatalf("comment must be trimmed: got %q", f.Entries[1].Comment)
	}

	l.Confirm(e.ID, "17")
	if _, err := l.Remove("17"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if l.HasStartupTime() || l.TotalMinutes() != 30 {
		t.Fatalf("after remove: startup=%v total=%d", l.HasStartupTime(), l.TotalMinutes())
	}
}

func TestDeclareValidation(t *testing.T) {
	l := NewLog(nil, nil)
	if _, err := l.Declare(Declaration{Duration: 10}); !errors.Is(err, ErrNoReason) {
		t.Fatalf("missing reason: want=ErrNoReason got=%v", err)
	}
	if _, err := l.Declare(Declaration{Reason: "Panne", Duration: 0}); !errors.Is(err, ErrBadDuration) {
		t.Fatalf("zero duration: want=ErrBadDuration got=%v", err)
	}
	if _, err := l.Remove("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("remove missing: want=ErrNotFound got=%v", err)
	}
	if l.Count() != 0 {
		t.Fatalf("rejected declarations must not be stored")
	}
}

func TestSetReasonsKeepsActive(t *testing.T) {
	l := NewLog(nil, nil)
	l.SetReasons([]domain.LostTimeReason{
		{ID: 1, Name: "Démarrage", IsActive: true},
		{ID: 2, Name: "Ancien motif", IsActive: false},
	})
	if got := l.Reasons(); len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("active reasons: got %+v", got)
	}
}

func TestFormatTotal(t *testing.T) {
	for min, want := range map[int]string{0: "0h00", 5: "0h05", 60: "1h00", 135: "2h15", -3: "0h00"} {
		if got := FormatTotal(min); got != want {
			t.Fatalf("FormatTotal(%d): want=%s got=%s", min, want, got)
		}
	}
}
