package roll

import (
	"sort"

	"github.com/tissage-sgq/shiftconsole/internal/domain"
)

// Reason names a conformity rule that fired.
type Reason string

const (
	ReasonBlockingDefect  Reason = "blocking_defect"
	ReasonDefectThreshold Reason = "defect_threshold"
	ReasonTooManyNokCells Reason = "too_many_nok_cells"
	ReasonDoubleNok       Reason = "double_nok"
)

// Verdict is the recomputed conformity of a roll. It is never persisted.
type Verdict struct {
	Conform        bool          `json:"isConform"`
	Reasons        []Reason      `json:"reasons,omitempty"`
	CellsWithNok   int           `json:"cellsWithNokCount"`
	DoubleNokCells []domain.Cell `json:"doubleNokCells,omitempty"`
	LastProblemRow int           `json:"lastProblemRow"`
}

// Evaluate applies the conformity rules to the roll state. A roll is non-conforming
// when it has a blocking defect, when a threshold defect type reaches its count,
// when more than MaxCellsWithNok distinct cells carry a reject, or when one cell
// carries both a reject badge and a rejected catch-up. Reject markers left on
// rows past the target length are ignored.
func Evaluate(data domain.RollData, catalog []domain.DefectType, targetLength int) Verdict {
	v := Verdict{Conform: true}

	for _, d := range data.Defects {
		if severityOf(d, catalog) == domain.SeverityBlocking {
			v.fire(ReasonBlockingDefect)
			v.bumpRow(d.Row)
		}
	}

	counts := make(map[int]int)
	lastRowByType := make(map[int]int)
	for _, d := range data.Defects {
		counts[d.TypeID]++
		if d.Row > lastRowByType[d.TypeID] {
			lastRowByType[d.TypeID] = d.Row
		}
	}
	for _, dt := range catalog {
		if dt.Severity != domain.SeverityThreshold || dt.ThresholdValue == nil || *dt.ThresholdValue <= 0 {
			continue
		}
		if counts[dt.ID] >= *dt.ThresholdValue {
			v.fire(ReasonDefectThreshold)
			v.bumpRow(lastRowByType[dt.ID])
		}
	}

	nokCells := CellsWithNok(data, targetLength)
	v.CellsWithNok = len(nokCells)
	if v.CellsWithNok > MaxCellsWithNok {
		v.fire(ReasonTooManyNokCells)
		for _, c := range nokCells {
			v.bumpRow(c.Row)
		}
	}

	v.DoubleNokCells = DoubleNokCells(data, targetLength)
	if len(v.DoubleNokCells) > 0 {
		v.fire(ReasonDoubleNok)
		for _, c := range v.DoubleNokCells {
			v.bumpRow(c.Row)
		}
	}
	return v
}

func (v *Verdict) fire(r Reason) {
	v.Conform = false
	for _, existing := range v.Reasons {
		if existing == r {
			return
		}
	}
	v.Reasons = append(v.Reasons, r)
}

func (v *Verdict) bumpRow(row int) {
	if row > v.LastProblemRow {
		v.LastProblemRow = row
	}
}

// severityOf prefers the catalog's current severity over the one copied onto the
// defect when it was tagged. Unknown severities count as blocking.
func severityOf(d domain.Defect, catalog []domain.DefectType) domain.Severity {
	for _, dt := range catalog {
		if dt.ID == d.TypeID && dt.Severity != "" {
			return dt.Severity
		}
	}
	if d.Severity != "" {
		return d.Severity
	}
	return domain.SeverityBlocking
}

// CellsWithNok returns the distinct cells carrying any reject marker (a badge or a
// rejected catch-up value) within the grid rows, ordered by row then lane.
func CellsWithNok(data domain.RollData, targetLength int) []domain.Cell {
	rows := RowCount(targetLength)
	seen := make(map[domain.Cell]struct{})
	for _, t := range data.NokThicknesses {
		if t.Row <= rows {
			seen[t.Cell()] = struct{}{}
		}
	}
	for _, t := range data.Thicknesses {
		if t.IsNok && t.Row <= rows {
			seen[t.Cell()] = struct{}{}
		}
	}
	return sortedCells(seen)
}

// DoubleNokCells returns the cells within the grid rows where the catch-up was
// rejected too.
func DoubleNokCells(data domain.RollData, targetLength int) []domain.Cell {
	rows := RowCount(targetLength)
	badges := make(map[domain.Cell]struct{}, len(data.NokThicknesses))
	for _, t := range data.NokThicknesses {
		badges[t.Cell()] = struct{}{}
	}
	out := make(map[domain.Cell]struct{})
	for _, t := range data.Thicknesses {
		if !t.IsNok || t.Row > rows {
			continue
		}
		if _, ok := badges[t.Cell()]; ok {
			out[t.Cell()] = struct{}{}
		}
	}
	return sortedCells(out)
}

// HasDoubleNok reports whether one cell carries two reject markers.
func HasDoubleNok(data domain.RollData, targetLength int, cell domain.Cell) bool {
	for _, c := range DoubleNokCells(data, targetLength) {
		if c == cell {
			return true
		}
	}
	return false
}

func sortedCells(set map[domain.Cell]struct{}) []domain.Cell {
	out := make([]domain.Cell, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col.Index() < out[j].Col.Index()
	})
	return out
}
