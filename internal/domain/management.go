package domain

// CurrentKPIs is today's aggregate block of the management dashboard.
type CurrentKPIs struct {
	Date            string `json:"date"`
	ShiftsCount     int    `json:"shifts_count"`
	TotalProduction Number `json:"total_production"`
	AvgTRS          Number `json:"avg_trs"`
	AvgAvailability Number `json:"avg_availability"`
	AvgPerformance  Number `json:"avg_performance"`
	AvgQuality      Number `json:"avg_quality"`
}

type DailyTrend struct {
	Date            string `json:"date"`
	ShiftsCount     int    `json:"shifts_count"`
	TotalProduction Number `json:"total_production"`
	OKProduction    Number `json:"ok_production"`
	NOKProduction   Number `json:"nok_production"`
	RollsCount      int    `json:"rolls_count"`
	DefectsCount    int    `json:"defects_count"`
	LostTime        int    `json:"lost_time"`
}

// Alert is a production alert raised by the session server.
type Alert struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	ShiftID  *int   `json:"shift_id,omitempty"`
	Date     string `json:"date,omitempty"`
}

// DashboardStats is the answer of the dashboard statistics endpoint. Blocks the
// console does not render are not decoded.
type DashboardStats struct {
	CurrentKPIs CurrentKPIs  `json:"current_kpis"`
	DailyTrends []DailyTrend `json:"daily_trends"`
	Alerts      []Alert      `json:"alerts"`
}

// ShiftReport is a recent shift as summarised for managers.
type ShiftReport struct {
	ID              int    `json:"id"`
	ShiftID         string `json:"shift_id"`
	Date            string `json:"date"`
	Vacation        string `json:"vacation"`
	Operator        string `json:"operator"`
	TRS             Number `json:"trs"`
	TotalLength     Number `json:"total_length"`
	ChecklistSigned bool   `json:"checklist_signed"`
}
