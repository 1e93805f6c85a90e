package quality

import (
	"errors"
	"fmt"
	"time"

	"github.com/tissage-sgq/shiftconsole/internal/domain"
)

type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

type SurfacePoint string

const (
	PointLeftLeft    SurfacePoint = "leftLeft"
	PointLeftCenter  SurfacePoint = "leftCenter"
	PointRightCenter SurfacePoint = "rightCenter"
	PointRightRight  SurfacePoint = "rightRight"
)

var (
	ErrUnknownSide  = errors.New("unknown micrometry side")
	ErrBadIndex     = errors.New("micrometry index must be 0, 1 or 2")
	ErrUnknownPoint = errors.New("unknown surface mass point")
)

// Patch is a partial update of the panel; absent fields are left untouched and
// explicit nulls clear the field.
type Patch struct {
	MicrometryLeft  [3]domain.OptionalFloat64 `json:"micrometry_left"`
	MicrometryRight [3]domain.OptionalFloat64 `json:"micrometry_right"`
	LeftLeft        domain.OptionalFloat64    `json:"surface_mass_left_left"`
	LeftCenter      domain.OptionalFloat64    `json:"surface_mass_left_center"`
	RightCenter     domain.OptionalFloat64    `json:"surface_mass_right_center"`
	RightRight      domain.OptionalFloat64    `json:"surface_mass_right_right"`
	DryExtract      domain.OptionalFloat64    `json:"dry_extract"`
	Sample          domain.OptionalBool       `json:"sample"`
}

// Panel is the quality-control panel. Every mutation recomputes averages and
// status. Not safe for concurrent use.
type Panel struct {
	data       domain.QualityControl
	defaults   domain.QCThresholds
	thresholds domain.QCThresholds
	now        func() time.Time
}

func NewPanel(data domain.QualityControl, defaults domain.QCThresholds, now func() time.Time) *Panel {
	if now == nil {
		now = time.Now
	}
	p := &Panel{data: data, defaults: defaults, thresholds: defaults, now: now}
	p.refresh()
	return p
}

func (p *Panel) Data() domain.QualityControl { return p.data }

func (p *Panel) Status() domain.QCStatus { return p.data.Status }

func (p *Panel) Thresholds() domain.QCThresholds { return p.thresholds }

// ApplyProfile switches to the profile's bands (nil restores defaults).
func (p *Panel) ApplyProfile(profile *domain.Profile) {
	p.thresholds = FromProfile(profile, p.defaults)
	p.refresh()
}

func (p *Panel) SetMicrometry(side Side, index int, v *float64) error {
	if index < 0 || index > 2 {
		return fmt.Errorf("%w: %d", ErrBadIndex, index)
	}
	switch side {
	case SideLeft:
		p.data.Micrometry.Left[index] = v
	case SideRight:
		p.data.Micrometry.Right[index] = v
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSide, side)
	}
	p.refresh()
	return nil
}

func (p *Panel) SetSurfaceMass(point SurfacePoint, v *float64) error {
	switch point {
	case PointLeftLeft:
		p.data.SurfaceMass.LeftLeft = v
	case PointLeftCenter:
		p.data.SurfaceMass.LeftCenter = v
	case PointRightCenter:
		p.data.SurfaceMass.RightCenter = v
	case PointRightRight:
		p.data.SurfaceMass.RightRight = v
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPoint, point)
	}
	p.refresh()
	return nil
}

// SetDryExtract stores the value and stamps the time of its first entry.
func (p *Panel) SetDryExtract(v *float64) {
	p.data.DryExtract.Value = v
	p.refresh()
}

// SetSample records the LOI sample answer and stamps when it was confirmed.
func (p *Panel) SetSample(sample *bool) {
	p.data.DryExtract.Sample = sample
	p.refresh()
}

// Apply merges a patch and reports whether anything was set.
func (p *Panel) Apply(patch Patch) bool {
	changed := false
	for i := 0; i < 3; i++ {
		if patch.MicrometryLeft[i].Set {
			p.data.Micrometry.Left[i] = patch.MicrometryLeft[i].Value
			changed = true
		}
		if patch.MicrometryRight[i].Set {
			p.data.Micrometry.Right[i] = patch.MicrometryRight[i].Value
			changed = true
		}
	}
	points := []struct {
		opt domain.OptionalFloat64
		dst **float64
	}{
		{patch.LeftLeft, &p.data.SurfaceMass.LeftLeft},
		{patch.LeftCenter, &p.data.SurfaceMass.LeftCenter},
		{patch.RightCenter, &p.data.SurfaceMass.RightCenter},
		{patch.RightRight, &p.data.SurfaceMass.RightRight},
		{patch.DryExtract, &p.data.DryExtract.Value},
	}
	for _, pt := range points {
		if pt.opt.Set {
			*pt.dst = pt.opt.Value
			changed = true
		}
	}
	if patch.Sample.Set {
		p.data.DryExtract.Sample = patch.Sample.Value
		changed = true
	}
	if changed {
		p.refresh()
	}
	return changed
}

func (p *Panel) refresh() {
	p.data = Recompute(p.data)
	de := &p.data.DryExtract
	if de.Value == nil {
		de.ValueTimestamp = nil
	} else if de.ValueTimestamp == nil {
		de.ValueTimestamp = p.clock()
	}
	if de.Sample == nil || !*de.Sample {
		de.SampleTimestamp = nil
	} else if de.SampleTimestamp == nil {
		de.SampleTimestamp = p.clock()
	}
	p.data.Status = Status(p.data, p.thresholds)
}

func (p *Panel) clock() *string {
	s := p.now().Format("15:04")
	return &s
}

// MeasureStatuses is the per-field display classification.
type MeasureStatuses struct {
	MicrometryLeft  [3]domain.MeasureStatus `json:"micrometryLeft"`
	MicrometryRight [3]domain.MeasureStatus `json:"micrometryRight"`
	AverageLeft     domain.MeasureStatus    `json:"micrometryAverageLeft"`
	AverageRight    domain.MeasureStatus    `json:"micrometryAverageRight"`
	LeftLeft        domain.MeasureStatus    `json:"leftLeft"`
	LeftCenter      domain.MeasureStatus    `json:"leftCenter"`
	RightCenter     domain.MeasureStatus    `json:"rightCenter"`
	RightRight      domain.MeasureStatus    `json:"rightRight"`
	DryExtract      domain.MeasureStatus    `json:"dryExtract"`
}

func (p *Panel) Statuses() MeasureStatuses {
	th := p.thresholds
	d := p.data
	var s MeasureStatuses
	for i := 0; i < 3; i++ {
		s.MicrometryLeft[i] = Validate(d.Micrometry.Left[i], th.Micrometry)
		s.MicrometryRight[i] = Validate(d.Micrometry.Right[i], th.Micrometry)
	}
	s.AverageLeft = Validate(d.Micrometry.AverageLeft, th.Micrometry)
	s.AverageRight = Validate(d.Micrometry.AverageRight, th.Micrometry)
	s.LeftLeft = Validate(d.SurfaceMass.LeftLeft, th.SurfaceMass)
	s.LeftCenter = Validate(d.SurfaceMass.LeftCenter, th.SurfaceMass)
	s.RightCenter = Validate(d.SurfaceMass.RightCenter, th.SurfaceMass)
	s.RightRight = Validate(d.SurfaceMass.RightRight, th.SurfaceMass)
	s.DryExtract = Validate(d.DryExtract.Value, th.DryExtract)
	return s
}

// HasWarning reports a value inside [Min, Max] but outside the alert band.
func (p *Panel) HasWarning() bool {
	s := p.Statuses()
	all := append([]domain.MeasureStatus{}, s.MicrometryLeft[:]...)
	all = append(all, s.MicrometryRight[:]...)
	all = append(all, s.LeftLeft, s.LeftCenter, s.RightCenter, s.RightRight, s.DryExtract)
	for _, st := range all {
		if st == domain.MeasureWarning {
			return true
		}
	}
	return false
}
