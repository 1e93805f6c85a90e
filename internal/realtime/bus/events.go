package bus

import "github.com/tissage-sgq/shiftconsole/internal/domain"

// RollUpdated follows every grid mutation.
type RollUpdated struct {
	Data           domain.RollData   `json:"rollData"`
	Counts         domain.RollCounts `json:"counts"`
	Conform        bool              `json:"isConform"`
	AllThicknesses bool              `json:"hasAllThicknesses"`
	CellsWithNok   int               `json:"cellsWithNokCount"`
}

type RollSaved struct {
	Record     domain.RollRecord `json:"roll"`
	NonConform bool              `json:"isNonConform"`
}

type QualityControlUpdated struct {
	Status domain.QCStatus       `json:"status"`
	QC     domain.QualityControl `json:"qualityControl"`
}

type LostTimeUpdated struct {
	Entries        []domain.LostTimeEntry `json:"entries"`
	TotalMinutes   int                    `json:"totalMinutes"`
	HasStartupTime bool                   `json:"hasStartupTime"`
}

type TargetLengthChanged struct {
	Length int `json:"length"`
}

type OrderChanged struct {
	Order domain.OrderFields `json:"order"`
}

// ProfileChanged carries the selected profile, nil when none is selected.
type ProfileChanged struct {
	Profile *domain.Profile `json:"profile"`
	Modes   []string        `json:"modes"`
}

type ShiftChanged struct {
	ShiftID string `json:"shiftId"`
	Valid   bool   `json:"isValid"`
}

type ChecklistChanged struct {
	Complete bool `json:"isComplete"`
	NokCount int  `json:"nokCount"`
}

// SaveState is the lifecycle of a background session save.
type SaveState string

const (
	SaveQueued    SaveState = "queued"
	SaveSaving    SaveState = "saving"
	SaveSaved     SaveState = "saved"
	SaveFailed    SaveState = "failed"
	SaveCancelled SaveState = "cancelled"
)

type SaveStatus struct {
	Area  string    `json:"area"`
	State SaveState `json:"state"`
	Error string    `json:"error,omitempty"`
}

var (
	TopicRollUpdated           = NewTopic[RollUpdated]("RollUpdated")
	TopicRollSaved             = NewTopic[RollSaved]("RollSaved")
	TopicQualityControlUpdated = NewTopic[QualityControlUpdated]("QualityControlUpdated")
	TopicLostTimeUpdated       = NewTopic[LostTimeUpdated]("LostTimeUpdated")
	TopicTargetLengthChanged   = NewTopic[TargetLengthChanged]("TargetLengthChanged")
	TopicOrderChanged          = NewTopic[OrderChanged]("OrderChanged")
	TopicProfileChanged        = NewTopic[ProfileChanged]("ProfileChanged")
	TopicShiftChanged          = NewTopic[ShiftChanged]("ShiftChanged")
	TopicChecklistChanged      = NewTopic[ChecklistChanged]("ChecklistChanged")
	TopicSaveStatus            = NewTopic[SaveStatus]("SaveStatus")
)
