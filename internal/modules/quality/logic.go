package quality

import (
	"math"

	"github.com/tissage-sgq/shiftconsole/internal/domain"
)

// Average is the mean of the values present, or nil when none is.
func Average(values ...*float64) *float64 {
	sum, n := 0.0, 0
	for _, v := range values {
		if v == nil || math.IsNaN(*v) {
			continue
		}
		sum += *v
		n++
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}

// averageIfComplete is the mean only when every value is present.
func averageIfComplete(values ...*float64) *float64 {
	for _, v := range values {
		if v == nil {
			return nil
		}
	}
	return Average(values...)
}

// Validate classifies one value: outside [Min, Max] is an error, outside
// [MinAlert, MaxAlert] a warning.
func Validate(v *float64, th domain.Thresholds) domain.MeasureStatus {
	if v == nil || math.IsNaN(*v) {
		return domain.MeasureEmpty
	}
	switch {
	case *v < th.Min || *v > th.Max:
		return domain.MeasureError
	case *v < th.MinAlert || *v > th.MaxAlert:
		return domain.MeasureWarning
	default:
		return domain.MeasureSuccess
	}
}

// HasRequired reports whether every measure needed for a verdict is present:
// three micrometry values per side, the four surface-mass points, the dry
// extract value and a confirmed LOI sample.
func HasRequired(qc domain.QualityControl) bool {
	for i := 0; i < 3; i++ {
		if qc.Micrometry.Left[i] == nil || qc.Micrometry.Right[i] == nil {
			return false
		}
	}
	sm := qc.SurfaceMass
	if sm.LeftLeft == nil || sm.LeftCenter == nil || sm.RightCenter == nil || sm.RightRight == nil {
		return false
	}
	if qc.DryExtract.Value == nil {
		return false
	}
	return qc.DryExtract.Sample != nil && *qc.DryExtract.Sample
}

// Recompute refreshes the derived averages. Surface-mass side averages need
// both points of the side.
func Recompute(qc domain.QualityControl) domain.QualityControl {
	m := qc.Micrometry
	qc.Micrometry.AverageLeft = Average(m.Left[0], m.Left[1], m.Left[2])
	qc.Micrometry.AverageRight = Average(m.Right[0], m.Right[1], m.Right[2])
	sm := qc.SurfaceMass
	qc.SurfaceMass.AverageLeft = averageIfComplete(sm.LeftLeft, sm.LeftCenter)
	qc.SurfaceMass.AverageRight = averageIfComplete(sm.RightCenter, sm.RightRight)
	return qc
}

// Status is pending until HasRequired, then failed when a micrometry side
// average, a surface-mass side average or the dry extract falls outside its
// [Min, Max] band, else passed. Alert bands never fail a control.
func Status(qc domain.QualityControl, th domain.QCThresholds) domain.QCStatus {
	if !HasRequired(qc) {
		return domain.QCPending
	}
	qc = Recompute(qc)
	checks := []struct {
		v  *float64
		th domain.Thresholds
	}{
		{qc.Micrometry.AverageLeft, th.Micrometry},
		{qc.Micrometry.AverageRight, th.Micrometry},
		{qc.SurfaceMass.AverageLeft, th.SurfaceMass},
		{qc.SurfaceMass.AverageRight, th.SurfaceMass},
		{qc.DryExtract.Value, th.DryExtract},
	}
	for _, c := range checks {
		if Validate(c.v, c.th) == domain.MeasureError {
			return domain.QCFailed
		}
	}
	return domain.QCPassed
}

// Touched reports whether any field has been filled.
func Touched(qc domain.QualityControl) bool {
	for i := 0; i < 3; i++ {
		if qc.Micrometry.Left[i] != nil || qc.Micrometry.Right[i] != nil {
			return true
		}
	}
	sm := qc.SurfaceMass
	return sm.LeftLeft != nil || sm.LeftCenter != nil || sm.RightCenter != nil || sm.RightRight != nil ||
		qc.DryExtract.Value != nil || qc.DryExtract.Sample != nil
}
