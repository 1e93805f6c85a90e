package profile

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/tissage-sgq/shiftconsole/internal/domain"
	"github.com/tissage-sgq/shiftconsole/internal/modules/quality"
)

// DefaultMaxNok is the reject allowance shown when the profile has no NOK spec.
const DefaultMaxNok = 3

var (
	ErrUnknownProfile = errors.New("unknown profile")
	ErrUnknownMode    = errors.New("unknown mode")
)

// Selector holds the profile catalog, the selected profile and the machine
// modes. Not safe for concurrent use.
type Selector struct {
	profiles []domain.ProfileSummary
	selected *domain.Profile
	modes    []domain.Mode
	f        domain.ProfileFields
}

func NewSelector(fields domain.ProfileFields) *Selector {
	return &Selector{f: fields}
}

// Fields returns the persisted selection with the enabled mode names.
func (s *Selector) Fields() domain.ProfileFields {
	out := s.f
	out.Modes = append([]string{}, s.f.Modes...)
	return out
}

func (s *Selector) Profiles() []domain.ProfileSummary {
	return append([]domain.ProfileSummary{}, s.profiles...)
}

// SetProfiles stores the whole catalog. IsActive marks the profile activated
// on the machine, not a visible one, so nothing is filtered.
func (s *Selector) SetProfiles(list []domain.ProfileSummary) {
	s.profiles = append([]domain.ProfileSummary{}, list...)
}

// InitialID is the profile to load on start: the persisted selection, else the
// catalog default, else the first profile.
func (s *Selector) InitialID() (int, bool) {
	if s.f.SelectedProfileID != nil {
		return *s.f.SelectedProfileID, true
	}
	for _, p := range s.profiles {
		if p.IsDefault {
			return p.ID, true
		}
	}
	if len(s.profiles) > 0 {
		return s.profiles[0].ID, true
	}
	return 0, false
}

// CheckID validates a selection against the catalog when one is loaded.
func (s *Selector) CheckID(id int) error {
	if len(s.profiles) == 0 {
		return nil
	}
	for _, p := range s.profiles {
		if p.ID == id {
			return nil
		}
	}
	return fmt.Errorf("%w: %d", ErrUnknownProfile, id)
}

// Select stores the full profile just fetched. nil clears the selection.
func (s *Selector) Select(p *domain.Profile) {
	s.selected = p
	if p == nil {
		s.f.SelectedProfileID = nil
		return
	}
	id := p.ID
	s.f.SelectedProfileID = &id
}

func (s *Selector) Selected() *domain.Profile { return s.selected }

// SetModes stores the mode catalog; the enabled modes become the selection.
func (s *Selector) SetModes(modes []domain.Mode) {
	s.modes = append(s.modes[:0], modes...)
	s.syncModeNames()
}

func (s *Selector) Modes() []domain.Mode {
	return append([]domain.Mode{}, s.modes...)
}

// ModeToggled records the state the server answered for a toggled mode.
func (s *Selector) ModeToggled(id int, enabled bool) error {
	for i := range s.modes {
		if s.modes[i].ID == id {
			s.modes[i].IsEnabled = enabled
			s.syncModeNames()
			return nil
		}
	}
	return fmt.Errorf("%w: %d", ErrUnknownMode, id)
}

func (s *Selector) syncModeNames() {
	names := make([]string, 0, len(s.modes))
	for _, m := range s.modes {
		if m.IsEnabled {
			names = append(names, m.Name)
		}
	}
	s.f.Modes = names
}

// Header is the accordion title, e.g. "Profil : 80g/m² (Permissif)".
func (s *Selector) Header() string {
	name := "--"
	if s.selected != nil {
		name = s.selected.Name
	}
	modes := "Aucun"
	if len(s.f.Modes) > 0 {
		modes = strings.Join(s.f.Modes, ", ")
	}
	return fmt.Sprintf("Profil : %s (%s)", name, modes)
}

// QCThresholds are the quality-control bands of the selected profile.
func (s *Selector) QCThresholds(defaults domain.QCThresholds) domain.QCThresholds {
	return quality.FromProfile(s.selected, defaults)
}

// ThicknessBand is the thickness spec of the selected profile, used for display.
func (s *Selector) ThicknessBand() *domain.Thresholds {
	spec, ok := s.findSpec(func(it domain.SpecItem) bool {
		return it.Name == "thickness" || strings.Contains(strings.ToLower(it.DisplayName), "épaisseur")
	})
	if !ok {
		return nil
	}
	band := quality.BandFromSpec(spec)
	return &band
}

// GlobalSurfaceMassBand is the roll grammage spec of the selected profile.
func (s *Selector) GlobalSurfaceMassBand() *domain.Thresholds {
	spec, ok := s.findSpec(func(it domain.SpecItem) bool {
		return strings.Contains(strings.ToLower(it.Name), "global") ||
			strings.Contains(strings.ToLower(it.DisplayName), "globale")
	})
	if !ok {
		return nil
	}
	band := quality.BandFromSpec(spec)
	return &band
}

// MaxNok is the reject allowance of the selected profile.
func (s *Selector) MaxNok() int {
	spec, ok := s.findSpec(func(it domain.SpecItem) bool {
		return strings.Contains(strings.ToLower(it.Name), "nok") ||
			strings.Contains(strings.ToLower(it.DisplayName), "nok")
	})
	if !ok || !spec.ValueMax.Valid || int(spec.ValueMax.Value) <= 0 {
		return DefaultMaxNok
	}
	return int(spec.ValueMax.Value)
}

func (s *Selector) findSpec(match func(domain.SpecItem) bool) (domain.SpecValue, bool) {
	if s.selected == nil {
		return domain.SpecValue{}, false
	}
	for _, spec := range s.selected.SpecValues {
		if match(spec.SpecItem) {
			return spec, true
		}
	}
	return domain.SpecValue{}, false
}

// BeltSpeedParam finds the belt ("tapis") speed parameter given in m/h.
func (s *Selector) BeltSpeedParam() (domain.ParamValue, bool) {
	if s.selected == nil {
		return domain.ParamValue{}, false
	}
	for _, p := range s.selected.ParamValues {
		name := p.ParamItem.Name
		if name == "" {
			name = p.ParamItem.DisplayName
		}
		if strings.Contains(strings.ToLower(name), "tapis") && isSpeedUnit(p.ParamItem.Unit) && p.Value.Positive() {
			return p, true
		}
	}
	return domain.ParamValue{}, false
}

func isSpeedUnit(unit string) bool { return strings.EqualFold(strings.TrimSpace(unit), "m/h") }

// BeltSpeedPerMinute is the belt speed in m/min: the profile field when set,
// else the "tapis" parameter converted from m/h.
func (s *Selector) BeltSpeedPerMinute() float64 {
	if s.selected == nil {
		return 0
	}
	if s.selected.BeltSpeedMPerMinute.Positive() {
		return s.selected.BeltSpeedMPerMinute.Value
	}
	if p, ok := s.BeltSpeedParam(); ok {
		return p.Value.Value / 60
	}
	return 0
}

// ProductionEstimate renders the time to wind targetLength at the belt speed,
// e.g. "~01:40 pour 100m". Empty without speed or length.
func (s *Selector) ProductionEstimate(targetLength int) string {
	p, ok := s.BeltSpeedParam()
	if !ok || targetLength <= 0 {
		return ""
	}
	total := int(math.Round(float64(targetLength) / p.Value.Value * 60))
	return fmt.Sprintf("~%02d:%02d pour %dm", total/60, total%60, targetLength)
}

// ParamCategories lists the parameter categories of the selected profile, sorted.
func (s *Selector) ParamCategories() []string {
	if s.selected == nil {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	for _, p := range s.selected.ParamValues {
		if !seen[p.ParamItem.Category] {
			seen[p.ParamItem.Category] = true
			out = append(out, p.ParamItem.Category)
		}
	}
	sort.Strings(out)
	return out
}
