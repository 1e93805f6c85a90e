package shift

import "github.com/tissage-sgq/shiftconsole/internal/domain"

const (
	ReasonIncomplete     = "Opérateur, date et vacation requis"
	ReasonNoShiftID      = "Opérateur inconnu, ID poste impossible"
	ReasonQCIncomplete   = "Contrôle qualité incomplet"
	ReasonQCFailed       = "Contrôle qualité non conforme"
	ReasonDuplicateShift = "Ce poste existe déjà"
)

// SaveAction gates the shift save on the form, the quality-control verdict and
// the uniqueness of the shift id among saved shifts.
func (f *Form) SaveAction(qc domain.QCStatus, duplicate bool) domain.ActionState {
	var reasons []string
	switch {
	case !f.Identified():
		reasons = append(reasons, ReasonIncomplete)
	case f.f.ShiftID == "":
		reasons = append(reasons, ReasonNoShiftID)
	}
	switch qc {
	case domain.QCPassed:
	case domain.QCFailed:
		reasons = append(reasons, ReasonQCFailed)
	default:
		reasons = append(reasons, ReasonQCIncomplete)
	}
	if duplicate {
		reasons = append(reasons, ReasonDuplicateShift)
	}
	return domain.ActionState{
		Enabled: len(reasons) == 0,
		Label:   "Sauvegarder le poste",
		Reasons: reasons,
	}
}

// IsDuplicate reports whether id is already used by a saved shift.
func IsDuplicate(id string, saved []domain.ShiftSummary) bool {
	if id == "" {
		return false
	}
	for _, s := range saved {
		if s.ShiftID == id {
			return true
		}
	}
	return false
}
