package domain

// Vacation is a named shift slot.
type Vacation string

const (
	VacationMorning   Vacation = "Matin"
	VacationAfternoon Vacation = "ApresMidi"
	VacationNight     Vacation = "Nuit"
	VacationDay       Vacation = "Journee"
)

// Vacations lists the known slots in display order.
var Vacations = []Vacation{VacationMorning, VacationAfternoon, VacationNight, VacationDay}

func (v Vacation) Valid() bool {
	for _, known := range Vacations {
		if v == known {
			return true
		}
	}
	return false
}

// VacationHours are the default clock times pre-filled when a slot is picked.
type VacationHours struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

// Operator is an entry of the operator list shown on the shift form.
type Operator struct {
	ID        string `json:"employee_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ShiftSummary is a saved shift as listed by the session server.
type ShiftSummary struct {
	ID       int    `json:"id"`
	ShiftID  string `json:"shift_id"`
	Date     string `json:"date"`
	Vacation string `json:"vacation"`
	Operator string `json:"operator,omitempty"`
}
