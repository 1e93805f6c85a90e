package shift

import (
	"fmt"
	"strings"
	"time"

	"github.com/tissage-sgq/shiftconsole/internal/domain"
)

// DefaultHours are the clock times pre-filled for each slot.
func DefaultHours() map[domain.Vacation]domain.VacationHours {
	return map[domain.Vacation]domain.VacationHours{
		domain.VacationMorning:   {Start: "04:00", End: "12:00"},
		domain.VacationAfternoon: {Start: "12:00", End: "20:00"},
		domain.VacationNight:     {Start: "20:00", End: "04:00"},
		domain.VacationDay:       {Start: "07:30", End: "15:30"},
	}
}

// Patch is a partial update of the form.
type Patch struct {
	OperatorID     domain.OptionalString  `json:"operator_id"`
	ShiftDate      domain.OptionalString  `json:"shift_date"`
	Vacation       domain.OptionalString  `json:"vacation"`
	StartTime      domain.OptionalString  `json:"start_time"`
	EndTime        domain.OptionalString  `json:"end_time"`
	MachineStarted domain.OptionalBool    `json:"machine_started"`
	MachineStopped domain.OptionalBool    `json:"machine_stopped"`
	LengthStart    domain.OptionalFloat64 `json:"length_start"`
	LengthEnd      domain.OptionalFloat64 `json:"length_end"`
	Comment        domain.OptionalString  `json:"comment"`
}

// Form is the shift metadata form. Not safe for concurrent use.
type Form struct {
	f         domain.ShiftFields
	operators map[string]domain.Operator
	hours     map[domain.Vacation]domain.VacationHours
}

func NewForm(fields domain.ShiftFields, hours map[domain.Vacation]domain.VacationHours) *Form {
	if len(hours) == 0 {
		hours = DefaultHours()
	}
	f := &Form{f: fields, operators: map[string]domain.Operator{}, hours: hours}
	f.f.ShiftID = f.computeID()
	return f
}

func (f *Form) Fields() domain.ShiftFields { return f.f }

func (f *Form) ShiftID() string { return f.f.ShiftID }

// SetOperators replaces the operator list used to name the shift.
func (f *Form) SetOperators(ops []domain.Operator) {
	f.operators = make(map[string]domain.Operator, len(ops))
	for _, op := range ops {
		f.operators[op.ID] = op
	}
	f.f.ShiftID = f.computeID()
}

// Apply merges a patch. Changing the operator, date or slot regenerates the
// shift id, and a slot change pre-fills its default hours unless the patch
// carries explicit times. Unchecking a machine flag clears its length.
func (f *Form) Apply(p Patch) (bool, error) {
	next := f.f
	identity := false
	if p.OperatorID.Set {
		next.OperatorID = p.OperatorID.Or("")
		identity = true
	}
	if p.ShiftDate.Set {
		d := p.ShiftDate.Or("")
		if d != "" {
			if _, err := time.Parse("2006-01-02", d); err != nil {
				return false, fmt.Errorf("shift_date %q: want YYYY-MM-DD", d)
			}
		}
		next.ShiftDate = d
		identity = true
	}
	if p.Vacation.Set {
		v := domain.Vacation(p.Vacation.Or(""))
		if v != "" && !v.Valid() {
			return false, fmt.Errorf("unknown vacation %q", v)
		}
		next.Vacation = v
		identity = true
		if h, ok := f.hours[v]; ok {
			next.StartTime, next.EndTime = h.Start, h.End
		}
	}
	if p.StartTime.Set {
		next.StartTime = p.StartTime.Or("")
	}
	if p.EndTime.Set {
		next.EndTime = p.EndTime.Or("")
	}
	if p.MachineStarted.Set {
		next.MachineStarted = p.MachineStarted.Value != nil && *p.MachineStarted.Value
	}
	if p.MachineStopped.Set {
		next.MachineStopped = p.MachineStopped.Value != nil && *p.MachineStopped.Value
	}
	if p.LengthStart.Set {
		next.LengthStart = p.LengthStart.Value
	}
	if p.LengthEnd.Set {
		next.LengthEnd = p.LengthEnd.Value
	}
	if p.Comment.Set {
		next.Comment = p.Comment.Or("")
	}
	if !next.MachineStarted {
		next.LengthStart = nil
	}
	if !next.MachineStopped {
		next.LengthEnd = nil
	}
	changed := !equalFields(f.f, next)
	f.f = next
	if identity {
		f.f.ShiftID = f.computeID()
	}
	return changed, nil
}

// Identified reports whether operator, date and slot are all filled.
func (f *Form) Identified() bool {
	return f.f.OperatorID != "" && f.f.ShiftDate != "" && f.f.Vacation != ""
}

func (f *Form) computeID() string {
	if !f.Identified() {
		return ""
	}
	op, ok := f.operators[f.f.OperatorID]
	if !ok {
		return ""
	}
	return ShiftID(f.f.ShiftDate, op, f.f.Vacation)
}

// ShiftID is "DDMMYY_FirstnameLASTNAME_Vacation". Last name parts are joined
// without spaces. Empty when the date cannot be read.
func ShiftID(date string, op domain.Operator, v domain.Vacation) string {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ""
	}
	first := strings.TrimSpace(op.FirstName)
	last := strings.ToUpper(strings.Join(strings.Fields(op.LastName), ""))
	if first == "" && last == "" {
		return ""
	}
	return fmt.Sprintf("%s_%s%s_%s", d.Format("020106"), first, last, v)
}

func equalFields(a, b domain.ShiftFields) bool {
	if !eqPtr(a.LengthStart, b.LengthStart) || !eqPtr(a.LengthEnd, b.LengthEnd) {
		return false
	}
	a.LengthStart, a.LengthEnd, b.LengthStart, b.LengthEnd = nil, nil, nil, nil
	return a == b
}

func eqPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
