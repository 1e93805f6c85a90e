package roll

import (
	"testing"
	"time"

	"github.com/tissage-sgq/shiftconsole/internal/domain"
)

func f64(v float64) *float64 { return &v }

func TestNetMass(t *testing.T) {
	if got := NetMass(f64(52.5), f64(2.5)); got == nil || *got != 50 {
		t.Fatalf("NetMass: want=50 got=%v", got)
	}
	if got := NetMass(f64(2), f64(3)); got != nil {
		t.Fatalf("NetMass total<tube: want=nil got=%v", *got)
	}
	if got := NetMass(nil, f64(3)); got != nil {
		t.Fatalf("NetMass missing total: want=nil")
	}
	if !MassInvalid(f64(2), f64(3)) || MassInvalid(f64(3), f64(2)) {
		t.Fatalf("MassInvalid mismatch")
	}
}

func TestGrammage(t *testing.T) {
	v, ok := Grammage(50, 40, 0)
	if !ok || v != 1.3 {
		t.Fatalf("Grammage: want=1.3 got=%v ok=%v", v, ok)
	}
	if FormatGrammage(v) != "1.3 g/m²" {
		t.Fatalf("FormatGrammage: got=%s", FormatGrammage(v))
	}
	if _, ok := Grammage(50, 0, 1); ok {
		t.Fatalf("zero length must not produce a grammage")
	}
	band := &domain.Thresholds{Min: 1, MinAlert: 1.1, Nominal: 1.2, MaxAlert: 1.3, Max: 1.4}
	if WeightNok(1.3, band) || !WeightNok(1.5, band) || WeightNok(9, nil) {
		t.Fatalf("WeightNok mismatch")
	}
}

func TestRollIDs(t *testing.T) {
	if got := RollID("3249", 7); got != "3249_007" {
		t.Fatalf("RollID: want=3249_007 got=%s", got)
	}
	if got := RollID("", 7); got != "" {
		t.Fatalf("RollID without OF: want empty got=%s", got)
	}
	at := time.Date(2026, 3, 2, 14, 5, 9, 0, time.UTC)
	if got := CuttingRollID("9999", at, false); got != "9999_020326" {
		t.Fatalf("CuttingRollID preview: got=%s", got)
	}
	if got := CuttingRollID("9999", at, true); got != "9999_020326_140509" {
		t.Fatalf("CuttingRollID full: got=%s", got)
	}
}

func TestPointCode(t *testing.T) {
	want := []string{"GG", "GC", "GD", "DG", "DC", "DD"}
	for i, col := range domain.Columns {
		if got := PointCode(col); got != want[i] {
			t.Fatalf("PointCode(%s): want=%s got=%s", col, want[i], got)
		}
	}
}
