package quality

import (
	"strings"

	"github.com/tissage-sgq/shiftconsole/internal/domain"
)

// Profile spec item names carrying the quality-control bands.
const (
	SpecMicrometry  = "micronaire"
	SpecSurfaceMass = "masse surfacique"
	SpecDryExtract  = "extrait sec"
)

// DefaultThresholds are the bands used when no profile is selected.
func DefaultThresholds() domain.QCThresholds {
	return domain.QCThresholds{
		Micrometry:  domain.Thresholds{Min: 30, MinAlert: 31, Nominal: 32, MaxAlert: 33, Max: 34},
		SurfaceMass: domain.Thresholds{Min: 0.008, MinAlert: 0.009, Nominal: 0.010, MaxAlert: 0.011, Max: 0.012},
		DryExtract:  domain.Thresholds{Min: 0.20, MinAlert: 0.22, Nominal: 0.23, MaxAlert: 0.24, Max: 0.25},
	}
}

// FromProfile overlays the profile's specs on defaults, field by field: a spec
// value left empty on the profile keeps the default for that field only.
func FromProfile(p *domain.Profile, defaults domain.QCThresholds) domain.QCThresholds {
	out := defaults
	if p == nil {
		return out
	}
	for _, spec := range p.SpecValues {
		switch strings.ToLower(strings.TrimSpace(spec.SpecItem.Name)) {
		case SpecMicrometry:
			out.Micrometry = overlay(out.Micrometry, spec)
		case SpecSurfaceMass:
			out.SurfaceMass = overlay(out.SurfaceMass, spec)
		case SpecDryExtract:
			out.DryExtract = overlay(out.DryExtract, spec)
		}
	}
	return out
}

// BandFromSpec converts a profile spec to a band, using zero for empty fields.
func BandFromSpec(spec domain.SpecValue) domain.Thresholds {
	return overlay(domain.Thresholds{}, spec)
}

func overlay(t domain.Thresholds, spec domain.SpecValue) domain.Thresholds {
	if spec.ValueMin.Valid {
		t.Min = spec.ValueMin.Value
	}
	if spec.ValueMinAlert.Valid {
		t.MinAlert = spec.ValueMinAlert.Value
	}
	if spec.ValueNominal.Valid {
		t.Nominal = spec.ValueNominal.Value
	}
	if spec.ValueMaxAlert.Valid {
		t.MaxAlert = spec.ValueMaxAlert.Value
	}
	if spec.ValueMax.Valid {
		t.Max = spec.ValueMax.Value
	}
	return t
}
