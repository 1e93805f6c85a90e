package domain

import "time"

// SessionSchemaVersion is written with every persisted session. Version 1 is the
// untyped blob written before per-area structs existed.
const SessionSchemaVersion = 2

// ShiftFields is the shift form area of the session.
type ShiftFields struct {
	OperatorID     string   `json:"operator_id"`
	ShiftDate      string   `json:"shift_date"`
	Vacation       Vacation `json:"vacation"`
	StartTime      string   `json:"start_time"`
	EndTime        string   `json:"end_time"`
	MachineStarted bool     `json:"machine_started"`
	MachineStopped bool     `json:"machine_stopped"`
	LengthStart    *float64 `json:"length_start"`
	LengthEnd      *float64 `json:"length_end"`
	Comment        string   `json:"comment"`
	ShiftID        string   `json:"shift_id"`
}

// OrderFields is the production order area.
type OrderFields struct {
	Current      string `json:"of_en_cours"`
	TargetLength int    `json:"target_length"`
	Cutting      string `json:"of_decoupe"`
}

// LostTimeFields is the stoppage log area. Total is the "XhMM" label.
type LostTimeFields struct {
	Entries        []LostTimeEntry `json:"lost_time_entries"`
	Total          string          `json:"temps_total"`
	HasStartupTime bool            `json:"has_startup_time"`
}

// ChecklistFields is the checklist area; responses are keyed by item id.
type ChecklistFields struct {
	Responses     map[string]string `json:"checklist_responses"`
	Signature     string            `json:"checklist_signature"`
	SignatureTime string            `json:"checklist_signature_time"`
}

// ProfileFields is the profile selector area; modes are the enabled mode names.
type ProfileFields struct {
	SelectedProfileID *int     `json:"selected_profile_id"`
	Modes             []string `json:"profile_modes"`
}

// SummaryFields is the sticky bar area of the roll in progress.
type SummaryFields struct {
	RollNumber       *int       `json:"roll_number"`
	TubeMass         *float64   `json:"tube_mass"`
	RollLength       *float64   `json:"roll_length"`
	TotalMass        *float64   `json:"total_mass"`
	NextTubeMass     *float64   `json:"next_tube_mass"`
	LastRollSaveTime *time.Time `json:"last_roll_save_time"`
}

// ProductionFields are the shift production counters updated on roll save.
type ProductionFields struct {
	WoundLengthOK    float64 `json:"wound_length_ok"`
	WoundLengthNOK   float64 `json:"wound_length_nok"`
	WoundLengthTotal float64 `json:"wound_length_total"`
	RollsTotal       int     `json:"rolls_total"`
	RollsConform     int     `json:"rolls_conform"`
}
