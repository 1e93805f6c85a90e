package services

import (
	"github.com/tissage-sgq/shiftconsole/internal/domain"
	"github.com/tissage-sgq/shiftconsole/internal/modules/checklist"
	"github.com/tissage-sgq/shiftconsole/internal/modules/quality"
	"github.com/tissage-sgq/shiftconsole/internal/modules/shift"
)

// DefaultPlantDefaults are the built-in site settings. The defect catalog is the
// one operators worked with before the catalog moved to the session server.
func DefaultPlantDefaults() domain.PlantDefaults {
	return domain.PlantDefaults{
		QCThresholds:  quality.DefaultThresholds(),
		VacationHours: shift.DefaultHours(),
		DefectTypes: []domain.DefectType{
			{ID: 1, Name: "Trou", Severity: domain.SeverityBlocking, IsActive: true},
			{ID: 2, Name: "Déchirure", Severity: domain.SeverityBlocking, IsActive: true},
			{ID: 3, Name: "Tache", Severity: domain.SeverityBlocking, IsActive: true},
			{ID: 4, Name: "Pli", Severity: domain.SeverityBlocking, IsActive: true},
			{ID: 5, Name: "Corps étranger", Severity: domain.SeverityBlocking, IsActive: true},
			{ID: 6, Name: "Surépaisseur", Severity: domain.SeverityBlocking, IsActive: true},
			{ID: 7, Name: "Manque matière", Severity: domain.SeverityBlocking, IsActive: true},
		},
		LostTimeReasons: []domain.LostTimeReason{},
		ChecklistItems:  checklist.FallbackItems(),
	}
}

// completeDefaults fills the zero parts of d from the built-in defaults.
func completeDefaults(d domain.PlantDefaults) domain.PlantDefaults {
	base := DefaultPlantDefaults()
	if d.QCThresholds == (domain.QCThresholds{}) {
		d.QCThresholds = base.QCThresholds
	}
	if len(d.VacationHours) == 0 {
		d.VacationHours = base.VacationHours
	}
	if d.DefectTypes == nil {
		d.DefectTypes = base.DefectTypes
	}
	if d.LostTimeReasons == nil {
		d.LostTimeReasons = base.LostTimeReasons
	}
	if len(d.ChecklistItems) == 0 {
		d.ChecklistItems = base.ChecklistItems
	}
	return d
}
