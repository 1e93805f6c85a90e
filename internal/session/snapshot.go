package session

import "github.com/tissage-sgq/shiftconsole/internal/domain"

// Area names one independently saved slice of the session.
type Area string

const (
	AreaShift      Area = "shift"
	AreaOrder      Area = "order"
	AreaRoll       Area = "roll"
	AreaQuality    Area = "quality"
	AreaLostTime   Area = "lost_time"
	AreaChecklist  Area = "checklist"
	AreaProfile    Area = "profile"
	AreaSummary    Area = "summary"
	AreaProduction Area = "production"
)

// Areas lists every area in save order.
var Areas = []Area{
	AreaShift, AreaOrder, AreaRoll, AreaQuality, AreaLostTime,
	AreaChecklist, AreaProfile, AreaSummary, AreaProduction,
}

func (a Area) Valid() bool {
	for _, known := range Areas {
		if a == known {
			return true
		}
	}
	return false
}

// Snapshot is the typed session. Shift, order, lost time, checklist, profile,
// summary and production fields sit at the top level of the wire object; the
// roll grid and the QC panel are nested under roll_data and quality_control.
type Snapshot struct {
	SchemaVersion int
	Shift         domain.ShiftFields
	Order         domain.OrderFields
	Roll          domain.RollData
	Quality       domain.QualityControl
	LostTime      domain.LostTimeFields
	Checklist     domain.ChecklistFields
	Profile       domain.ProfileFields
	Summary       domain.SummaryFields
	Production    domain.ProductionFields
}

// Defaults is the state of a fresh session.
func Defaults() Snapshot {
	return Snapshot{
		SchemaVersion: domain.SessionSchemaVersion,
		Roll: domain.RollData{
			Thicknesses:    []domain.Thickness{},
			NokThicknesses: []domain.Thickness{},
			Defects:        []domain.Defect{},
		},
		Quality:   domain.QualityControl{Status: domain.QCPending},
		LostTime:  domain.LostTimeFields{Entries: []domain.LostTimeEntry{}, Total: "0h00"},
		Checklist: domain.ChecklistFields{Responses: map[string]string{}},
		Profile:   domain.ProfileFields{Modes: []string{}},
	}
}

// Clone deep-copies the slices and maps of s.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Roll = s.Roll.Clone()
	out.LostTime = cloneLostTime(s.LostTime)
	out.Checklist = cloneChecklist(s.Checklist)
	out.Profile = cloneProfile(s.Profile)
	return out
}

func cloneLostTime(f domain.LostTimeFields) domain.LostTimeFields {
	f.Entries = append([]domain.LostTimeEntry{}, f.Entries...)
	return f
}

func cloneChecklist(f domain.ChecklistFields) domain.ChecklistFields {
	m := make(map[string]string, len(f.Responses))
	for k, v := range f.Responses {
		m[k] = v
	}
	f.Responses = m
	return f
}

func cloneProfile(f domain.ProfileFields) domain.ProfileFields {
	f.Modes = append([]string{}, f.Modes...)
	if f.SelectedProfileID != nil {
		id := *f.SelectedProfileID
		f.SelectedProfileID = &id
	}
	return f
}
