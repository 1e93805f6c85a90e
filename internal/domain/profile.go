package domain

import "strings"

// ProfileSummary is the light list form of a product profile.
type ProfileSummary struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
	IsDefault   bool   `json:"is_default"`
}

type SpecItem struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Unit        string `json:"unit,omitempty"`
	Order       int    `json:"order,omitempty"`
}

// SpecValue holds the five-point tolerance band a profile sets for one measure.
type SpecValue struct {
	ID            int      `json:"id"`
	SpecItem      SpecItem `json:"spec_item"`
	ValueMin      Number   `json:"value_min"`
	ValueMinAlert Number   `json:"value_min_alert"`
	ValueNominal  Number   `json:"value_nominal"`
	ValueMaxAlert Number   `json:"value_max_alert"`
	ValueMax      Number   `json:"value_max"`
	MaxNok        *int     `json:"max_nok,omitempty"`
	IsBlocking    bool     `json:"is_blocking"`
}

type ParamItem struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	DisplayName  string `json:"display_name"`
	Category     string `json:"category"`
	Unit         string `json:"unit,omitempty"`
	Order        int    `json:"order,omitempty"`
	DefaultValue Number `json:"default_value"`
}

type ParamValue struct {
	ID        int       `json:"id"`
	ParamItem ParamItem `json:"param_item"`
	Value     Number    `json:"value"`
}

// Profile is the full product profile with its specs and machine parameters.
type Profile struct {
	ID                  int          `json:"id"`
	Name                string       `json:"name"`
	Description         string       `json:"description,omitempty"`
	IsActive            bool         `json:"is_active"`
	IsDefault           bool         `json:"is_default"`
	BeltSpeedMPerMinute Number       `json:"belt_speed_m_per_minute"`
	OEETarget           Number       `json:"oee_target"`
	SpecValues          []SpecValue  `json:"profilespecvalue_set"`
	ParamValues         []ParamValue `json:"profileparamvalue_set"`
}

// Spec finds a spec by item name, case-insensitively, matching either the
// technical name or the display name.
func (p *Profile) Spec(name string) (SpecValue, bool) {
	if p == nil {
		return SpecValue{}, false
	}
	want := strings.ToLower(strings.TrimSpace(name))
	for _, s := range p.SpecValues {
		if strings.ToLower(s.SpecItem.Name) == want || strings.ToLower(s.SpecItem.DisplayName) == want {
			return s, true
		}
	}
	return SpecValue{}, false
}

// Mode is a machine operating mode that can be toggled on the session server.
type Mode struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsEnabled   bool   `json:"is_enabled"`
	IsActive    bool   `json:"is_active"`
}
