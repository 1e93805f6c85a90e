package realtime

type SSEEvent string

// Events streamed to the console views. Names follow the bus topics they mirror.
const (
	SSEEventConsoleState          SSEEvent = "ConsoleState"
	SSEEventRollUpdated           SSEEvent = "RollUpdated"
	SSEEventRollSaved             SSEEvent = "RollSaved"
	SSEEventQualityControlUpdated SSEEvent = "QualityControlUpdated"
	SSEEventLostTimeUpdated       SSEEvent = "LostTimeUpdated"
	SSEEventTargetLengthChanged   SSEEvent = "TargetLengthChanged"
	SSEEventOrderChanged          SSEEvent = "OrderChanged"
	SSEEventProfileChanged        SSEEvent = "ProfileChanged"
	SSEEventShiftChanged          SSEEvent = "ShiftChanged"
	SSEEventChecklistChanged      SSEEvent = "ChecklistChanged"
	SSEEventSaveStatus            SSEEvent = "SaveStatus"
	SSEEventDashboardUpdated      SSEEvent = "DashboardUpdated"
)

// ManagementChannel carries the manager dashboard; console channels are the
// console ids.
const ManagementChannel = "management"

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}
