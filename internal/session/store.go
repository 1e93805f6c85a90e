// Package session holds the typed, persisted state of one console. Each area is
// read and written through its own Slot; every write bumps the area generation
// so a background save can tell whether what it sent is still current.
package session

import (
	"encoding/json"
	"sync"

	"github.com/tissage-sgq/shiftconsole/internal/domain"
)

// Store is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	snap  Snapshot
	gen   map[Area]uint64
	saved map[Area]uint64
}

func NewStore(s Snapshot) *Store {
	st := &Store{}
	st.reset(s)
	return st
}

func (st *Store) reset(s Snapshot) {
	st.snap = s.Clone()
	st.snap.SchemaVersion = domain.SessionSchemaVersion
	st.gen = make(map[Area]uint64, len(Areas))
	st.saved = make(map[Area]uint64, len(Areas))
}

// Replace swaps in a reloaded session; every area is clean afterwards.
func (st *Store) Replace(s Snapshot) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.reset(s)
}

func (st *Store) Snapshot() Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.snap.Clone()
}

func (st *Store) Encode() (json.RawMessage, error) {
	return Encode(st.Snapshot())
}

// Patch encodes the given areas with the generation each one had when read.
func (st *Store) Patch(areas ...Area) (json.RawMessage, map[Area]uint64, error) {
	st.mu.RLock()
	snap := st.snap.Clone()
	gens := make(map[Area]uint64, len(areas))
	for _, a := range areas {
		gens[a] = st.gen[a]
	}
	st.mu.RUnlock()

	raw, err := EncodeAreas(snap, areas...)
	if err != nil {
		return nil, nil, err
	}
	return raw, gens, nil
}

func (st *Store) Generation(a Area) uint64 {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.gen[a]
}

// Dirty reports whether a has writes not yet confirmed by a save.
func (st *Store) Dirty(a Area) bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.gen[a] > st.saved[a]
}

func (st *Store) DirtyAreas() []Area {
	st.mu.RLock()
	defer st.mu.RUnlock()
	var out []Area
	for _, a := range Areas {
		if st.gen[a] > st.saved[a] {
			out = append(out, a)
		}
	}
	return out
}

// MarkSaved records that generation gen of a reached the server. Writes made
// after gen was read keep the area dirty.
func (st *Store) MarkSaved(a Area, gen uint64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if gen > st.saved[a] {
		st.saved[a] = gen
	}
}

// Slot is the scoped accessor of one area.
type Slot[T any] struct {
	st    *Store
	area  Area
	field func(*Snapshot) *T
	clone func(T) T
}

func (s Slot[T]) Area() Area { return s.area }

func (s Slot[T]) Get() T {
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()
	return s.copy(*s.field(&s.st.snap))
}

// Set stores v and returns the new generation of the area.
func (s Slot[T]) Set(v T) uint64 {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	*s.field(&s.st.snap) = s.copy(v)
	s.st.gen[s.area]++
	return s.st.gen[s.area]
}

// Update applies fn to a copy of the area and stores the result.
func (s Slot[T]) Update(fn func(*T)) uint64 {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	v := s.copy(*s.field(&s.st.snap))
	fn(&v)
	*s.field(&s.st.snap) = v
	s.st.gen[s.area]++
	return s.st.gen[s.area]
}

func (s Slot[T]) copy(v T) T {
	if s.clone == nil {
		return v
	}
	return s.clone(v)
}

func (st *Store) Shift() Slot[domain.ShiftFields] {
	return Slot[domain.ShiftFields]{st: st, area: AreaShift, field: func(s *Snapshot) *domain.ShiftFields { return &s.Shift }}
}

func (st *Store) Order() Slot[domain.OrderFields] {
	return Slot[domain.OrderFields]{st: st, area: AreaOrder, field: func(s *Snapshot) *domain.OrderFields { return &s.Order }}
}

func (st *Store) Roll() Slot[domain.RollData] {
	return Slot[domain.RollData]{
		st:    st,
		area:  AreaRoll,
		field: func(s *Snapshot) *domain.RollData { return &s.Roll },
		clone: domain.RollData.Clone,
	}
}

func (st *Store) Quality() Slot[domain.QualityControl] {
	return Slot[domain.QualityControl]{st: st, area: AreaQuality, field: func(s *Snapshot) *domain.QualityControl { return &s.Quality }}
}

func (st *Store) LostTime() Slot[domain.LostTimeFields] {
	return Slot[domain.LostTimeFields]{
		st:    st,
		area:  AreaLostTime,
		field: func(s *Snapshot) *domain.LostTimeFields { return &s.LostTime },
		clone: cloneLostTime,
	}
}

func (st *Store) Checklist() Slot[domain.ChecklistFields] {
	return Slot[domain.ChecklistFields]{
		st:    st,
		area:  AreaChecklist,
		field: func(s *Snapshot) *domain.ChecklistFields { return &s.Checklist },
		clone: cloneChecklist,
	}
}

func (st *Store) Profile() Slot[domain.ProfileFields] {
	return Slot[domain.ProfileFields]{
		st:    st,
		area:  AreaProfile,
		field: func(s *Snapshot) *domain.ProfileFields { return &s.Profile },
		clone: cloneProfile,
	}
}

func (st *Store) Summary() Slot[domain.SummaryFields] {
	return Slot[domain.SummaryFields]{st: st, area: AreaSummary, field: func(s *Snapshot) *domain.SummaryFields { return &s.Summary }}
}

func (st *Store) Production() Slot[domain.ProductionFields] {
	return Slot[domain.ProductionFields]{st: st, area: AreaProduction, field: func(s *Snapshot) *domain.ProductionFields { return &s.Production }}
}
