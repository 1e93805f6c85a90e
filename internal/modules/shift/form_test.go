package shift

import (
	"encoding/json"
	"testing"

	"github.com/tissage-sgq/shiftconsole/internal/domain"
)

var testOperators = []domain.Operator{
	{ID: "E042", FirstName: "Camille", LastName: "De La Tour"},
	{ID: "E007", FirstName: "Sam", LastName: "Martin"},
}

func mustPatch(t *testing.T, body string) Patch {
	t.Helper()
	var p Patch
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("unmarshal patch: %v", err)
	}
	return p
}

func TestShiftIDAndDefaultHours(t *testing.T) {
	f := NewForm(domain.ShiftFields{}, nil)
	f.SetOperators(testOperators)
	if _, err := f.Apply(mustPatch(t, `{"operator_id":"E042","shift_date":"2026-03-02","vacation":"Nuit"}`)); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := f.ShiftID(); got != "020326_CamilleDELATOUR_Nuit" {
		t.Fatalf("shift id: want=020326_CamilleDELATOUR_Nuit got=%s", got)
	}
	fields := f.Fields()
	if fields.StartTime != "20:00" || fields.EndTime != "04:00" {
		t.Fatalf("night hours: got %s-%s", fields.StartTime, fields.EndTime)
	}

	if _, err := f.Apply(mustPatch(t, `{"vacation":"Journee","start_time":"08:00"}`)); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	fields = f.Fields()
	if fields.StartTime != "08:00" || fields.EndTime != "15:30" {
		t.Fatalf("explicit start wins over default: got %s-%s", fields.StartTime, fields.EndTime)
	}
	if f.ShiftID() != "020326_CamilleDELATOUR_Journee" {
		t.Fatalf("id must follow the slot: got=%s", f.ShiftID())
	}
}

func TestUnknownOperatorHasNoID(t *testing.T) {
	f := NewForm(domain.ShiftFields{OperatorID: "X1", ShiftDate: "2026-03-02", Vacation: domain.VacationMorning}, nil)
	if f.ShiftID() != "" {
		t.Fatalf("unknown operator: want empty id got=%s", f.ShiftID())
	}
	st := f.SaveAction(domain.QCPassed, false)
	if st.Enabled || st.Reason() != ReasonNoShiftID {
		t.Fatalf("save action: got %+v", st)
	}
}

func TestMachineFlagsClearLengths(t *testing.T) {
	f := NewForm(domain.ShiftFields{}, nil)
	if _, err := f.Apply(mustPatch(t, `{"machine_started":true,"length_start":"1250,5","machine_stopped":true,"length_end":1900}`)); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if ls := f.Fields().LengthStart; ls == nil || *ls != 1250.5 {
		t.Fatalf("length start: got=%v", ls)
	}
	if _, err := f.Apply(mustPatch(t, `{"machine_started":false}`)); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if f.Fields().LengthStart != nil {
		t.Fatalf("unchecking machine started must clear length start")
	}
	if f.Fields().LengthEnd == nil {
		t.Fatalf("length end must survive")
	}
	changed, err := f.Apply(mustPatch(t, `{"machine_started":false}`))
	if err != nil || changed {
		t.Fatalf("same value: want unchanged got changed=%v err=%v", changed, err)
	}
}

func TestApplyRejectsBadInput(t *testing.T) {
	f := NewForm(domain.ShiftFields{}, nil)
	if _, err := f.Apply(mustPatch(t, `{"vacation":"Soir"}`)); err == nil {
		t.Fatalf("unknown vacation must fail")
	}
	if _, err := f.Apply(mustPatch(t, `{"shift_date":"02/03/2026"}`)); err == nil {
		t.Fatalf("bad date must fail")
	}
	if f.Fields().Vacation != "" {
		t.Fatalf("failed patch must not be applied")
	}
}

func TestSaveActionGate(t *testing.T) {
	f := NewForm(domain.ShiftFields{OperatorID: "E007", ShiftDate: "2026-03-02", Vacation: domain.VacationMorning}, nil)
	f.SetOperators(testOperators)

	cases := []struct {
		name      string
		qc        domain.QCStatus
		duplicate bool
		enabled   bool
		reason    string
	}{
		{"passed", domain.QCPassed, false, true, ""},
		{"pending", domain.QCPending, false, false, ReasonQCIncomplete},
		{"failed", domain.QCFailed, false, false, ReasonQCFailed},
		{"duplicate", domain.QCPassed, true, false, ReasonDuplicateShift},
	}
	for _, c := range cases {
		st := f.SaveAction(c.qc, c.duplicate)
		if st.Enabled != c.enabled || st.Reason() != c.reason {
			t.Fatalf("%s: want enabled=%v reason=%q got %+v", c.name, c.enabled, c.reason, st)
		}
	}

	saved := []domain.ShiftSummary{{ShiftID: "020326_SamMARTIN_Matin"}}
	if !IsDuplicate(f.ShiftID(), saved) {
		t.Fatalf("IsDuplicate: want true for %s", f.ShiftID())
	}
}
