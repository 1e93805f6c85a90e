package summary

import (
	"fmt"
	"strings"

	"github.com/tissage-sgq/shiftconsole/internal/domain"
	"github.com/tissage-sgq/shiftconsole/internal/modules/roll"
)

// BuildRoll assembles the roll creation request from the bar and the grid data.
// A non-conforming roll is sent to cutting under a timestamped cutting id and
// without a roll number.
func (b *Bar) BuildRoll(shiftID string, data domain.RollData, comment string) (domain.RollCreate, error) {
	if st := b.SaveAction(shiftID != ""); !st.Enabled {
		return domain.RollCreate{}, fmt.Errorf("%w: %s", ErrSaveDisabled, st.Reason())
	}
	nonConform := !b.roll.Conform
	req := domain.RollCreate{
		RollID:             b.RollID(),
		ShiftID:            shiftID,
		Length:             b.Length(),
		TubeMass:           b.f.TubeMass,
		TotalMass:          b.f.TotalMass,
		NetMass:            b.NetMass(),
		Status:             domain.RollConforme,
		Destination:        domain.DestinationProduction,
		HasBlockingDefects: b.roll.DefectCount > 0,
		HasThicknessIssues: b.roll.NokCount > 0 || !b.roll.AllThicknesses,
	}
	if g, ok := b.Grammage(); ok {
		req.Grammage = &g
	}
	if c := strings.TrimSpace(comment); c != "" {
		req.Comment = &c
	}
	if nonConform {
		req.Status = domain.RollNonConforme
		req.Destination = domain.DestinationCutting
		if b.order.Cutting != "" {
			req.RollID = roll.CuttingRollID(b.order.Cutting, b.now(), true)
		}
	} else {
		req.RollNumber = b.f.RollNumber
	}
	req.Thicknesses = thicknessRecords(data)
	req.Defects = defectRecords(data)
	return req, nil
}

func thicknessRecords(data domain.RollData) []domain.RollThicknessRecord {
	badges := make(map[domain.Cell]bool, len(data.NokThicknesses))
	for _, t := range data.NokThicknesses {
		badges[t.Cell()] = true
	}
	var out []domain.RollThicknessRecord
	for _, t := range data.Thicknesses {
		out = append(out, domain.RollThicknessRecord{
			MeterPosition:     t.Row,
			MeasurementPoint:  roll.PointCode(t.Col),
			ThicknessValue:    t.Value,
			IsCatchup:         badges[t.Cell()],
			IsWithinTolerance: !t.IsNok,
		})
	}
	for _, t := range data.NokThicknesses {
		out = append(out, domain.RollThicknessRecord{
			MeterPosition:    t.Row,
			MeasurementPoint: roll.PointCode(t.Col),
			ThicknessValue:   t.Value,
		})
	}
	return out
}

func defectRecords(data domain.RollData) []domain.RollDefectRecord {
	var out []domain.RollDefectRecord
	for _, d := range data.Defects {
		if d.TypeID == 0 {
			continue
		}
		out = append(out, domain.RollDefectRecord{
			DefectTypeID:  d.TypeID,
			MeterPosition: d.Row,
			SidePosition:  roll.PointCode(d.Col),
		})
	}
	return out
}

// Record books a saved roll: the wound length counters move, the save time is
// stamped and the bar resets for the next roll. The number only advances after
// a conforming roll; the next tube becomes the current one.
func (b *Bar) Record(saved domain.RollRecord, nonConform bool) {
	length := 0.0
	if saved.Length.Positive() {
		length = saved.Length.Value
	}
	conform := saved.Status == domain.RollConforme
	if saved.Status == "" {
		conform = !nonConform
	}
	if conform {
		b.prod.WoundLengthOK += length
		b.prod.RollsConform++
	} else {
		b.prod.WoundLengthNOK += length
	}
	b.prod.RollsTotal++
	b.prod.WoundLengthTotal = b.prod.WoundLengthOK + b.prod.WoundLengthNOK

	now := b.now().UTC()
	b.f.LastRollSaveTime = &now
	if !nonConform {
		next := 1
		if b.f.RollNumber != nil {
			next = *b.f.RollNumber + 1
		}
		b.f.RollNumber = &next
	}
	b.f.TubeMass = b.f.NextTubeMass
	b.f.NextTubeMass = nil
	b.f.TotalMass = nil
	b.f.RollLength = nil
	if b.order.TargetLength > 0 {
		v := float64(b.order.TargetLength)
		b.f.RollLength = &v
	}
	b.roll = RollState{}
	b.idStatus = IDEmpty
}
