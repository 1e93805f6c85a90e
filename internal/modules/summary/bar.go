package summary

import (
	"errors"
	"fmt"
	"time"

	"github.com/tissage-sgq/shiftconsole/internal/domain"
	"github.com/tissage-sgq/shiftconsole/internal/modules/quality"
	"github.com/tissage-sgq/shiftconsole/internal/modules/roll"
)

// Save button reasons, as shown in the tooltip.
const (
	ReasonShiftIncomplete = "Données du poste incomplètes"
	ReasonNoRollID        = "ID rouleau manquant"
	ReasonDuplicateRollID = "Cet ID rouleau existe déjà"
	ReasonThicknesses     = "Toutes les épaisseurs doivent être remplies"
	ReasonNoGrammage      = "Masse totale requise pour calculer le grammage"
)

var ErrSaveDisabled = errors.New("roll save is not allowed")

type IDStatus string

const (
	IDEmpty     IDStatus = "empty"
	IDValid     IDStatus = "valid"
	IDDuplicate IDStatus = "duplicate"
)

type Patch struct {
	RollNumber   domain.OptionalInt     `json:"roll_number"`
	TubeMass     domain.OptionalFloat64 `json:"tube_mass"`
	RollLength   domain.OptionalFloat64 `json:"roll_length"`
	TotalMass    domain.OptionalFloat64 `json:"total_mass"`
	NextTubeMass domain.OptionalFloat64 `json:"next_tube_mass"`
}

// RollState is what the bar needs to know about the roll grid.
type RollState struct {
	Conform        bool
	AllThicknesses bool
	DefectCount    int
	NokCount       int
}

// Bar is the sticky summary of the roll in progress: masses, grammage, roll id
// and the save action. Not safe for concurrent use.
type Bar struct {
	f         domain.SummaryFields
	prod      domain.ProductionFields
	order     domain.OrderFields
	roll      RollState
	band      *domain.Thresholds
	maxNok    int
	feltWidth float64
	idStatus  IDStatus
	now       func() time.Time
}

func NewBar(fields domain.SummaryFields, prod domain.ProductionFields, ord domain.OrderFields, now func() time.Time) *Bar {
	if now == nil {
		now = time.Now
	}
	return &Bar{
		f:         fields,
		prod:      prod,
		order:     ord,
		maxNok:    3,
		feltWidth: roll.DefaultFeltWidth,
		idStatus:  IDEmpty,
		now:       now,
	}
}

func (b *Bar) Fields() domain.SummaryFields { return b.f }

func (b *Bar) Production() domain.ProductionFields { return b.prod }

// Apply merges a patch and reports whether the roll id may have changed.
func (b *Bar) Apply(p Patch) (idChanged bool) {
	before := b.RollID()
	if p.RollNumber.Set {
		b.f.RollNumber = p.RollNumber.Value
	}
	if p.TubeMass.Set {
		b.f.TubeMass = p.TubeMass.Value
	}
	if p.RollLength.Set {
		b.f.RollLength = p.RollLength.Value
	}
	if p.TotalMass.Set {
		b.f.TotalMass = p.TotalMass.Value
	}
	if p.NextTubeMass.Set {
		b.f.NextTubeMass = p.NextTubeMass.Value
	}
	return b.idChangedFrom(before)
}

// SetOrder follows the production order. It reports whether the roll id changed.
func (b *Bar) SetOrder(o domain.OrderFields) bool {
	before := b.RollID()
	b.order = o
	return b.idChangedFrom(before)
}

// SetRoll follows the grid. It reports whether the roll id changed, which
// happens when the roll flips between production and cutting.
func (b *Bar) SetRoll(s RollState) bool {
	before := b.RollID()
	b.roll = s
	return b.idChangedFrom(before)
}

// SetProfile takes the grammage band and reject allowance of the selected
// profile. A nil band accepts every grammage.
func (b *Bar) SetProfile(band *domain.Thresholds, maxNok int) {
	b.band = band
	if maxNok > 0 {
		b.maxNok = maxNok
	}
}

func (b *Bar) idChangedFrom(before string) bool {
	if b.RollID() == before {
		return false
	}
	b.idStatus = IDEmpty
	return true
}

// Length is the roll length, defaulting to the order's target length.
func (b *Bar) Length() *float64 {
	if b.f.RollLength != nil {
		return b.f.RollLength
	}
	if b.order.TargetLength > 0 {
		v := float64(b.order.TargetLength)
		return &v
	}
	return nil
}

func (b *Bar) NetMass() *float64 { return roll.NetMass(b.f.TotalMass, b.f.TubeMass) }

func (b *Bar) MassInvalid() bool { return roll.MassInvalid(b.f.TotalMass, b.f.TubeMass) }

// Grammage is the roll grammage in g/m² once net mass and length are known.
func (b *Bar) Grammage() (float64, bool) {
	net, length := b.NetMass(), b.Length()
	if net == nil || length == nil {
		return 0, false
	}
	return roll.Grammage(*net, *length, b.feltWidth)
}

// WeightNok reports a mass lighter than its tube or a grammage outside the band.
func (b *Bar) WeightNok() bool {
	if b.MassInvalid() {
		return true
	}
	g, ok := b.Grammage()
	return ok && roll.WeightNok(g, b.band)
}

func (b *Bar) WeightClass() domain.MeasureStatus {
	g, ok := b.Grammage()
	if !ok || b.band == nil {
		return ""
	}
	return quality.Validate(&g, *b.band)
}

// RollID is the preview id: the cutting id for a non-conforming roll when a
// cutting order is set, else "<OF>_<nnn>".
func (b *Bar) RollID() string {
	if !b.roll.Conform && b.order.Cutting != "" {
		return roll.CuttingRollID(b.order.Cutting, b.now(), false)
	}
	n := 0
	if b.f.RollNumber != nil {
		n = *b.f.RollNumber
	}
	return roll.RollID(b.order.Current, n)
}

func (b *Bar) IDStatus() IDStatus { return b.idStatus }

// SetIDExists records the duplicate check of the current id.
func (b *Bar) SetIDExists(exists bool) {
	switch {
	case b.RollID() == "":
		b.idStatus = IDEmpty
	case exists:
		b.idStatus = IDDuplicate
	default:
		b.idStatus = IDValid
	}
}

// SaveAction is the state of the save button. A conforming roll needs every
// thickness and a grammage; a non-conforming one always goes to cutting.
func (b *Bar) SaveAction(shiftValid bool) domain.ActionState {
	id := b.RollID()
	var reasons []string
	if !shiftValid {
		reasons = append(reasons, ReasonShiftIncomplete)
	}
	if id == "" {
		reasons = append(reasons, ReasonNoRollID)
	}
	if b.idStatus == IDDuplicate {
		reasons = append(reasons, ReasonDuplicateRollID)
	}
	if len(reasons) > 0 {
		return domain.ActionState{Label: "Sauvegarder Rouleau", Reasons: reasons}
	}
	if !b.roll.Conform {
		return domain.ActionState{Enabled: true, Label: "Vers Découpe"}
	}
	if !b.roll.AllThicknesses {
		reasons = append(reasons, ReasonThicknesses)
	} else if _, ok := b.Grammage(); !ok {
		reasons = append(reasons, ReasonNoGrammage)
	}
	return domain.ActionState{
		Enabled: len(reasons) == 0,
		Label:   fmt.Sprintf("Sauvegarder %s", id),
		Reasons: reasons,
	}
}

// Preview is the confirmation shown before a roll is saved.
type Preview struct {
	NonConform     bool                 `json:"isNonConform"`
	RollID         string               `json:"rollId"`
	Length         *float64             `json:"length"`
	NetMass        *float64             `json:"netMass"`
	Grammage       string               `json:"weight"`
	WeightClass    domain.MeasureStatus `json:"weightClass"`
	AllThicknesses bool                 `json:"hasAllThicknesses"`
	WeightOK       bool                 `json:"isWeightOk"`
	DefectCount    int                  `json:"defectCount"`
	NokCount       int                  `json:"nokCount"`
	MaxNok         int                  `json:"maxNok"`
}

func (b *Bar) Preview() Preview {
	p := Preview{
		NonConform:     !b.roll.Conform,
		RollID:         b.RollID(),
		Length:         b.Length(),
		NetMass:        b.NetMass(),
		WeightClass:    b.WeightClass(),
		AllThicknesses: b.roll.AllThicknesses,
		WeightOK:       !b.WeightNok(),
		DefectCount:    b.roll.DefectCount,
		NokCount:       b.roll.NokCount,
		MaxNok:         b.maxNok,
	}
	if g, ok := b.Grammage(); ok {
		p.Grammage = roll.FormatGrammage(g)
	}
	if p.NonConform && b.order.Cutting != "" {
		p.RollID = roll.CuttingRollID(b.order.Cutting, b.now(), true)
	}
	return p
}
