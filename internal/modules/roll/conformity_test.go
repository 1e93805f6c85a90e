package roll

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tissage-sgq/shiftconsole/internal/domain"
)

func TestEvaluateEmptyRollIsConform(t *testing.T) {
	v := Evaluate(domain.RollData{}, nil, 100)
	if !v.Conform || len(v.Reasons) != 0 || v.LastProblemRow != 0 {
		t.Fatalf("empty roll: got=%+v", v)
	}
}

func TestEvaluateSeverityResolution(t *testing.T) {
	catalog := []domain.DefectType{{ID: 4, Name: "Tache", Severity: domain.SeverityNonBlocking}}
	data := domain.RollData{Defects: []domain.Defect{
		{Row: 2, Col: domain.ColG1, TypeID: 4, Severity: domain.SeverityBlocking},
	}}
	if v := Evaluate(data, catalog, 100); !v.Conform {
		t.Fatalf("catalog severity must win over the copied one: got=%+v", v)
	}
	data.Defects = append(data.Defects, domain.Defect{Row: 9, Col: domain.ColC2, TypeID: 77})
	v := Evaluate(data, catalog, 100)
	if v.Conform || v.LastProblemRow != 9 {
		t.Fatalf("unknown severity counts as blocking: got=%+v", v)
	}
}

func TestEvaluateCollectsAllReasons(t *testing.T) {
	data := domain.RollData{
		Thicknesses: []domain.Thickness{
			{Row: 3, Col: domain.ColG1, Value: 4, IsNok: true},
			{Row: 8, Col: domain.ColG1, Value: 3, IsNok: true},
		},
		NokThicknesses: []domain.Thickness{
			{Row: 3, Col: domain.ColG1, Value: 4.5, IsNok: true},
			{Row: 3, Col: domain.ColC1, Value: 4.5, IsNok: true},
			{Row: 13, Col: domain.ColD2, Value: 1, IsNok: true},
		},
		Defects: []domain.Defect{{Row: 5, Col: domain.ColD1, TypeID: 1, Severity: domain.SeverityBlocking}},
	}
	v := Evaluate(data, nil, 100)
	want := []Reason{ReasonBlockingDefect, ReasonTooManyNokCells, ReasonDoubleNok}
	if diff := cmp.Diff(want, v.Reasons); diff != "" {
		t.Fatalf("reasons mismatch (-want +got):\n%s", diff)
	}
	if v.CellsWithNok != 4 || v.LastProblemRow != 13 {
		t.Fatalf("counts: got=%+v", v)
	}
	if !HasDoubleNok(data, 100, domain.Cell{Row: 3, Col: domain.ColG1}) {
		t.Fatalf("3-G1 is a double reject cell")
	}
	if HasDoubleNok(data, 100, domain.Cell{Row: 8, Col: domain.ColG1}) {
		t.Fatalf("8-G1 has no badge, it is not a double reject")
	}
}
