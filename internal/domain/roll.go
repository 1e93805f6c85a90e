package domain

import (
	"fmt"
	"strings"
)

// Column identifies one of the six measurement lanes across the roll width.
type Column string

const (
	ColG1 Column = "G1"
	ColC1 Column = "C1"
	ColD1 Column = "D1"
	ColG2 Column = "G2"
	ColC2 Column = "C2"
	ColD2 Column = "D2"
)

// Columns is the fixed left-to-right lane order used for navigation.
var Columns = []Column{ColG1, ColC1, ColD1, ColG2, ColC2, ColD2}

func (c Column) Index() int {
	for i, col := range Columns {
		if col == c {
			return i
		}
	}
	return -1
}

func (c Column) Valid() bool { return c.Index() >= 0 }

func ParseColumn(s string) (Column, error) {
	c := Column(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown column %q", s)
	}
	return c, nil
}

// Cell addresses one (row, column) slot of the grid.
type Cell struct {
	Row int    `json:"row"`
	Col Column `json:"col"`
}

// Key is the "row-col" form used by the view.
func (c Cell) Key() string { return fmt.Sprintf("%d-%s", c.Row, c.Col) }

// Thickness is one measurement. In the accepted collection IsNok marks a failed
// catch-up; entries of the rejected-badge collection always carry IsNok=true.
type Thickness struct {
	Row   int     `json:"row"`
	Col   Column  `json:"col"`
	Value float64 `json:"value"`
	IsNok bool    `json:"isNok"`
}

func (t Thickness) Cell() Cell { return Cell{Row: t.Row, Col: t.Col} }

type Severity string

const (
	SeverityBlocking    Severity = "blocking"
	SeverityNonBlocking Severity = "non_blocking"
	SeverityThreshold   Severity = "threshold"
)

// DefectType is a catalog entry from the session server.
type DefectType struct {
	ID             int      `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description,omitempty"`
	Severity       Severity `json:"severity,omitempty"`
	ThresholdValue *int     `json:"threshold_value,omitempty"`
	IsActive       bool     `json:"is_active"`
}

// IsThickness reports whether this is the catalog's thickness defect, which the
// grid raises implicitly from rejected measurements.
func (d DefectType) IsThickness() bool {
	n := strings.ToLower(d.Name)
	return strings.Contains(n, "épaisseur") || strings.Contains(n, "epaisseur")
}

// Defect tags one cell with a defect type.
type Defect struct {
	Row      int      `json:"row"`
	Col      Column   `json:"col"`
	TypeID   int      `json:"typeId"`
	TypeName string   `json:"typeName"`
	Severity Severity `json:"severity,omitempty"`
}

func (d Defect) Cell() Cell { return Cell{Row: d.Row, Col: d.Col} }

// RollData is the roll grid state persisted under roll_data.
type RollData struct {
	Thicknesses    []Thickness `json:"thicknesses"`
	NokThicknesses []Thickness `json:"nokThicknesses"`
	Defects        []Defect    `json:"defects"`
}

func (r RollData) Clone() RollData {
	return RollData{
		Thicknesses:    append([]Thickness{}, r.Thicknesses...),
		NokThicknesses: append([]Thickness{}, r.NokThicknesses...),
		Defects:        append([]Defect{}, r.Defects...),
	}
}

// RollCounts are the derived counters shown under the grid.
type RollCounts struct {
	Thickness int `json:"thicknessCount"`
	Nok       int `json:"nokCount"`
	Defect    int `json:"defectCount"`
}

func (r RollData) Counts() RollCounts {
	return RollCounts{
		Thickness: len(r.Thicknesses),
		Nok:       len(r.NokThicknesses),
		Defect:    len(r.Defects),
	}
}

type RollStatus string

const (
	RollConforme    RollStatus = "CONFORME"
	RollNonConforme RollStatus = "NON_CONFORME"
)

type RollDestination string

const (
	DestinationProduction RollDestination = "PRODUCTION"
	DestinationCutting    RollDestination = "DECOUPE"
)

// RollThicknessRecord and RollDefectRecord are the measurement rows sent with a
// saved roll. Point codes name the lane as the server stores it (GG, GC, ...).
type RollThicknessRecord struct {
	MeterPosition     int     `json:"meter_position"`
	MeasurementPoint  string  `json:"measurement_point"`
	ThicknessValue    float64 `json:"thickness_value"`
	IsCatchup         bool    `json:"is_catchup"`
	IsWithinTolerance bool    `json:"is_within_tolerance"`
}

type RollDefectRecord struct {
	DefectTypeID  int    `json:"defect_type_id"`
	MeterPosition int    `json:"meter_position"`
	SidePosition  string `json:"side_position"`
	Comment       string `json:"comment"`
}

// RollCreate is the body of POST /api/rolls/.
type RollCreate struct {
	RollID             string                `json:"roll_id"`
	ShiftID            string                `json:"shift_id_str,omitempty"`
	RollNumber         *int                  `json:"roll_number"`
	Length             *float64              `json:"length"`
	TubeMass           *float64              `json:"tube_mass"`
	TotalMass          *float64              `json:"total_mass"`
	NetMass            *float64              `json:"net_mass"`
	Grammage           *float64              `json:"grammage_calc"`
	Status             RollStatus            `json:"status"`
	Destination        RollDestination       `json:"destination"`
	HasBlockingDefects bool                  `json:"has_blocking_defects"`
	HasThicknessIssues bool                  `json:"has_thickness_issues"`
	Comment            *string               `json:"comment"`
	Thicknesses        []RollThicknessRecord `json:"thicknesses,omitempty"`
	Defects            []RollDefectRecord    `json:"defects,omitempty"`
}

// RollRecord is the server's answer to a roll creation.
type RollRecord struct {
	ID               int             `json:"id"`
	RollID           string          `json:"roll_id"`
	Status           RollStatus      `json:"status"`
	Destination      RollDestination `json:"destination"`
	Length           Number          `json:"length"`
	FabricationOrder *int            `json:"fabrication_order,omitempty"`
}
