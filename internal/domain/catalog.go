package domain

// Catalogs is the reference data a console needs from the session server.
// Degraded names the catalogs served from plant defaults after a failed fetch.
type Catalogs struct {
	DefectTypes       []DefectType      `json:"defectTypes"`
	LostTimeReasons   []LostTimeReason  `json:"lostTimeReasons"`
	ChecklistTemplate ChecklistTemplate `json:"checklistTemplate"`
	Operators         []Operator        `json:"operators"`
	Profiles          []ProfileSummary  `json:"profiles"`
	Modes             []Mode            `json:"modes"`
	Degraded          []string          `json:"degraded,omitempty"`
}

// ShiftData is the per-shift data loaded alongside the session.
type ShiftData struct {
	LostTimeEntries    []LostTimeEntry     `json:"lostTimeEntries"`
	ChecklistResponses []ChecklistResponse `json:"checklistResponses"`
}

// PlantDefaults are the site settings used when the session server has nothing
// better: QC thresholds, vacation hours and fallback catalogs.
type PlantDefaults struct {
	QCThresholds    QCThresholds               `json:"qcThresholds"`
	VacationHours   map[Vacation]VacationHours `json:"vacationHours"`
	DefectTypes     []DefectType               `json:"defectTypes"`
	LostTimeReasons []LostTimeReason           `json:"lostTimeReasons"`
	ChecklistItems  []ChecklistItem            `json:"checklistItems"`
}
