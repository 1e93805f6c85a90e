package roll

import (
	"errors"
	"fmt"
	"time"

	"github.com/tissage-sgq/shiftconsole/internal/domain"
)

// DefaultGuardWindow suppresses the duplicate blur/keydown that follows a first
// rejection on the same cell.
const DefaultGuardWindow = 100 * time.Millisecond

var (
	ErrNotMeasurementCell = errors.New("cell is not a thickness cell")
	ErrUnknownDefectType  = errors.New("unknown defect type")
	ErrInputNotEmpty      = errors.New("clear the thickness input before removing its reject badge")
	ErrCellOutOfGrid      = errors.New("cell is outside the grid")
)

// Outcome tells the view how a thickness input was handled.
type Outcome string

const (
	OutcomeAccepted        Outcome = "accepted"
	OutcomeRejected        Outcome = "rejected"
	OutcomeCatchupRejected Outcome = "catchup_rejected"
	OutcomeCleared         Outcome = "cleared"
	OutcomeIgnored         Outcome = "ignored"
)

// InputResult describes the state of one cell after an input event. Display is
// the text the input should show; it is empty after a first rejection so the
// operator can type the catch-up value.
type InputResult struct {
	Cell    domain.Cell `json:"cell"`
	Outcome Outcome     `json:"outcome"`
	Display string      `json:"display"`
	Badge   bool        `json:"badge"`
	Changed bool        `json:"changed"`
}

// Grid is the roll measurement grid: thickness entries with their reject badges
// and the defect tags, for the current target length. Grid is not safe for
// concurrent use; the owning console serializes access.
type Grid struct {
	targetLength int
	data         domain.RollData
	defectTypes  []domain.DefectType

	guardWindow time.Duration
	guard       map[domain.Cell]time.Time
	now         func() time.Time
}

type GridOption func(*Grid)

func WithClock(now func() time.Time) GridOption {
	return func(g *Grid) { g.now = now }
}

func WithGuardWindow(d time.Duration) GridOption {
	return func(g *Grid) { g.guardWindow = d }
}

func NewGrid(targetLength int, data domain.RollData, opts ...GridOption) *Grid {
	g := &Grid{
		targetLength: targetLength,
		data:         data.Clone(),
		guardWindow:  DefaultGuardWindow,
		guard:        make(map[domain.Cell]time.Time),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Grid) TargetLength() int { return g.targetLength }

// SetTargetLength resizes the grid. Entries outside the new size are kept so that
// growing the roll again shows them.
func (g *Grid) SetTargetLength(l int) {
	if l < 0 {
		l = 0
	}
	g.targetLength = l
}

func (g *Grid) SetDefectTypes(types []domain.DefectType) {
	g.defectTypes = append([]domain.DefectType{}, types...)
}

func (g *Grid) DefectTypes() []domain.DefectType {
	return append([]domain.DefectType{}, g.defectTypes...)
}

func (g *Grid) Data() domain.RollData { return g.data.Clone() }

func (g *Grid) Counts() domain.RollCounts { return g.data.Counts() }

func (g *Grid) Conformity() Verdict {
	return Evaluate(g.data, g.defectTypes, g.targetLength)
}

// Reset clears the grid for a new roll.
func (g *Grid) Reset() {
	g.data = domain.RollData{}
	g.guard = make(map[domain.Cell]time.Time)
}

// Replace swaps the whole roll state, as when the session is reloaded.
func (g *Grid) Replace(data domain.RollData) {
	g.data = data.Clone()
	g.guard = make(map[domain.Cell]time.Time)
}

func (g *Grid) checkThicknessCell(row int, col domain.Column) error {
	if !col.Valid() {
		return fmt.Errorf("%w: column %q", ErrCellOutOfGrid, col)
	}
	if row < 1 || row > RowCount(g.targetLength) {
		return fmt.Errorf("%w: row %d", ErrCellOutOfGrid, row)
	}
	if !IsThicknessRow(row, g.targetLength) {
		return fmt.Errorf("%w: row %d", ErrNotMeasurementCell, row)
	}
	return nil
}

// HandleThicknessInput processes the text typed into a thickness cell:
//   - blank clears the cell (accepted value and badge);
//   - text that is not a number is ignored;
//   - a value below NokThreshold on a cell without badge records the badge and
//     clears the input for a catch-up;
//   - a rejected catch-up stays visible and is flagged NOK;
//   - an accepted value fills the slot and leaves any badge in place.
func (g *Grid) HandleThicknessInput(row int, col domain.Column, raw string) (InputResult, error) {
	if err := g.checkThicknessCell(row, col); err != nil {
		return InputResult{}, err
	}
	cell := domain.Cell{Row: row, Col: col}
	res := InputResult{Cell: cell}

	if until, ok := g.guard[cell]; ok {
		if g.now().Before(until) {
			res.Outcome = OutcomeIgnored
			res.Badge = g.hasBadge(cell)
			return res, nil
		}
		delete(g.guard, cell)
	}

	value, empty, ok := ParseThickness(raw)
	switch {
	case empty:
		removedInput := g.removeInput(cell)
		removedBadge := g.removeBadge(cell)
		res.Outcome = OutcomeCleared
		res.Changed = removedInput || removedBadge
		return res, nil
	case !ok:
		res.Outcome = OutcomeIgnored
		res.Badge = g.hasBadge(cell)
		if t, found := g.input(cell); found {
			res.Display = FormatThickness(t.Value)
		}
		return res, nil
	}

	if IsNok(value) {
		if !g.hasBadge(cell) {
			g.removeInput(cell)
			g.data.NokThicknesses = append(g.data.NokThicknesses, domain.Thickness{Row: row, Col: col, Value: value, IsNok: true})
			g.guard[cell] = g.now().Add(g.guardWindow)
			res.Outcome = OutcomeRejected
			res.Badge = true
			res.Changed = true
			return res, nil
		}
		g.upsertInput(domain.Thickness{Row: row, Col: col, Value: value, IsNok: true})
		res.Outcome = OutcomeCatchupRejected
		res.Display = FormatThickness(value)
		res.Badge = true
		res.Changed = true
		return res, nil
	}

	g.upsertInput(domain.Thickness{Row: row, Col: col, Value: value})
	res.Outcome = OutcomeAccepted
	res.Display = FormatThickness(value)
	res.Badge = g.hasBadge(cell)
	res.Changed = true
	return res, nil
}

// RemoveThickness drops the accepted value of a cell. The badge stays.
func (g *Grid) RemoveThickness(row int, col domain.Column) bool {
	return g.removeInput(domain.Cell{Row: row, Col: col})
}

// RemoveNokBadge drops the reject badge of a cell whose input is empty.
func (g *Grid) RemoveNokBadge(row int, col domain.Column) (bool, error) {
	cell := domain.Cell{Row: row, Col: col}
	if _, ok := g.input(cell); ok {
		return false, ErrInputNotEmpty
	}
	return g.removeBadge(cell), nil
}

// AddDefect tags a cell with a defect type, replacing any tag already there.
func (g *Grid) AddDefect(row int, col domain.Column, typeID int) (domain.Defect, error) {
	if !col.Valid() {
		return domain.Defect{}, fmt.Errorf("%w: column %q", ErrCellOutOfGrid, col)
	}
	if row < 1 || row > RowCount(g.targetLength) {
		return domain.Defect{}, fmt.Errorf("%w: row %d", ErrCellOutOfGrid, row)
	}
	dt, ok := g.defectType(typeID)
	if !ok {
		return domain.Defect{}, fmt.Errorf("%w: %d", ErrUnknownDefectType, typeID)
	}
	d := domain.Defect{Row: row, Col: col, TypeID: dt.ID, TypeName: dt.Name, Severity: dt.Severity}
	for i := range g.data.Defects {
		if g.data.Defects[i].Cell() == d.Cell() {
			g.data.Defects[i] = d
			return d, nil
		}
	}
	g.data.Defects = append(g.data.Defects, d)
	return d, nil
}

// RemoveDefect drops the tag of a cell.
func (g *Grid) RemoveDefect(row int, col domain.Column) bool {
	cell := domain.Cell{Row: row, Col: col}
	for i, d := range g.data.Defects {
		if d.Cell() == cell {
			g.data.Defects = append(g.data.Defects[:i], g.data.Defects[i+1:]...)
			return true
		}
	}
	return false
}

// DefectAt returns the tag of a cell, if any.
func (g *Grid) DefectAt(row int, col domain.Column) (domain.Defect, bool) {
	cell := domain.Cell{Row: row, Col: col}
	for _, d := range g.data.Defects {
		if d.Cell() == cell {
			return d, true
		}
	}
	return domain.Defect{}, false
}

// DefectCount counts the tags of one defect type.
func (g *Grid) DefectCount(typeID int) int {
	n := 0
	for _, d := range g.data.Defects {
		if d.TypeID == typeID {
			n++
		}
	}
	return n
}

// NextCell returns the cell Tab (or Shift-Tab when reverse) moves to. Only
// thickness rows are visited; the walk wraps at both ends of the grid.
func (g *Grid) NextCell(row int, col domain.Column, reverse bool) (domain.Cell, bool) {
	rows := ThicknessRows(g.targetLength)
	if len(rows) == 0 {
		return domain.Cell{}, false
	}
	ncols := len(domain.Columns)
	total := len(rows) * ncols

	pos := -1
	for i, r := range rows {
		if r == row && col.Valid() {
			pos = i*ncols + col.Index()
			break
		}
	}
	var next int
	switch {
	case pos < 0 && reverse:
		next = total - 1
	case pos < 0:
		next = 0
	case reverse:
		next = (pos - 1 + total) % total
	default:
		next = (pos + 1) % total
	}
	return domain.Cell{Row: rows[next/ncols], Col: domain.Columns[next%ncols]}, true
}

// FirstRowComplete reports whether every lane of the first thickness row has a value.
func (g *Grid) FirstRowComplete() bool {
	rows := ThicknessRows(g.targetLength)
	if len(rows) == 0 {
		return false
	}
	for _, col := range domain.Columns {
		if _, ok := g.input(domain.Cell{Row: rows[0], Col: col}); !ok {
			return false
		}
	}
	return true
}

// AllThicknessesFilled reports whether every visible thickness slot has a value.
func (g *Grid) AllThicknessesFilled() bool {
	rows := ThicknessRows(g.targetLength)
	if len(rows) == 0 {
		return false
	}
	for _, row := range rows {
		for _, col := range domain.Columns {
			if _, ok := g.input(domain.Cell{Row: row, Col: col}); !ok {
				return false
			}
		}
	}
	return true
}

// ThicknessDefect returns the catalog's thickness defect type, if configured.
func (g *Grid) ThicknessDefect() (domain.DefectType, bool) {
	for _, dt := range g.defectTypes {
		if dt.IsThickness() {
			return dt, true
		}
	}
	return domain.DefectType{}, false
}

func (g *Grid) defectType(id int) (domain.DefectType, bool) {
	for _, dt := range g.defectTypes {
		if dt.ID == id {
			return dt, true
		}
	}
	return domain.DefectType{}, false
}

func (g *Grid) input(cell domain.Cell) (domain.Thickness, bool) {
	for _, t := range g.data.Thicknesses {
		if t.Cell() == cell {
			return t, true
		}
	}
	return domain.Thickness{}, false
}

func (g *Grid) hasBadge(cell domain.Cell) bool {
	for _, t := range g.data.NokThicknesses {
		if t.Cell() == cell {
			return true
		}
	}
	return false
}

func (g *Grid) upsertInput(t domain.Thickness) {
	for i := range g.data.Thicknesses {
		if g.data.Thicknesses[i].Cell() == t.Cell() {
			g.data.Thicknesses[i] = t
			return
		}
	}
	g.data.Thicknesses = append(g.data.Thicknesses, t)
}

func (g *Grid) removeInput(cell domain.Cell) bool {
	for i, t := range g.data.Thicknesses {
		if t.Cell() == cell {
			g.data.Thicknesses = append(g.data.Thicknesses[:i], g.data.Thicknesses[i+1:]...)
			return true
		}
	}
	return false
}

func (g *Grid) removeBadge(cell domain.Cell) bool {
	for i, t := range g.data.NokThicknesses {
		if t.Cell() == cell {
			g.data.NokThicknesses = append(g.data.NokThicknesses[:i], g.data.NokThicknesses[i+1:]...)
			return true
		}
	}
	return false
}
