package console

import (
	"github.com/google/uuid"

	"github.com/tissage-sgq/shiftconsole/internal/domain"
	"github.com/tissage-sgq/shiftconsole/internal/modules/kpi"
	"github.com/tissage-sgq/shiftconsole/internal/modules/quality"
	"github.com/tissage-sgq/shiftconsole/internal/modules/roll"
	"github.com/tissage-sgq/shiftconsole/internal/modules/summary"
)

// View is the full console state rendered by the operator screen.
type View struct {
	ID        uuid.UUID          `json:"id"`
	Shift     ShiftView          `json:"shift"`
	Order     domain.OrderFields `json:"order"`
	Roll      RollView           `json:"roll"`
	Quality   QCView             `json:"qualityControl"`
	LostTime  LostView           `json:"lostTime"`
	Checklist ListView           `json:"checklist"`
	Profile   ProfView           `json:"profile"`
	Summary   SumView            `json:"summary"`
	KPI       kpi.Snapshot       `json:"kpi"`
	Degraded  []string           `json:"degradedCatalogs,omitempty"`
}

type ShiftView struct {
	domain.ShiftFields
	Identified bool              `json:"isValid"`
	Operators  []domain.Operator `json:"operators"`
}

type RollView struct {
	TargetLength   int                 `json:"targetLength"`
	Rows           int                 `json:"rowCount"`
	ThicknessRows  []int               `json:"thicknessRows"`
	Data           domain.RollData     `json:"rollData"`
	Counts         domain.RollCounts   `json:"counts"`
	Verdict        roll.Verdict        `json:"verdict"`
	AllThicknesses bool                `json:"hasAllThicknesses"`
	DefectTypes    []domain.DefectType `json:"defectTypes"`
}

type QCView struct {
	domain.QualityControl
	Statuses   quality.MeasureStatuses `json:"statuses"`
	Badge      quality.Badge           `json:"badge"`
	HasWarning bool                    `json:"hasWarning"`
	Thresholds domain.QCThresholds     `json:"thresholds"`
}

type LostView struct {
	domain.LostTimeFields
	TotalMinutes int                     `json:"totalMinutes"`
	Reasons      []domain.LostTimeReason `json:"reasons"`
}

type ListView struct {
	domain.ChecklistFields
	TemplateID int                    `json:"templateId"`
	Items      []domain.ChecklistItem `json:"items"`
	Complete   bool                   `json:"isComplete"`
	NokCount   int                    `json:"nokCount"`
}

type ProfView struct {
	domain.ProfileFields
	Header   string                  `json:"header"`
	Selected *domain.Profile         `json:"selectedProfile"`
	Profiles []domain.ProfileSummary `json:"profiles"`
	ModeList []domain.Mode           `json:"modes"`
	Estimate string                  `json:"productionEstimate"`
}

type SumView struct {
	domain.SummaryFields
	Production domain.ProductionFields `json:"production"`
	RollID     string                  `json:"rollId"`
	IDStatus   summary.IDStatus        `json:"rollIdStatus"`
	Preview    summary.Preview         `json:"preview"`
	Timer      summary.RollTimer       `json:"timer"`
	SaveAction domain.ActionState      `json:"saveAction"`
}

// State renders the whole console.
func (c *Console) State() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	ord := c.ord.Fields()
	data := c.grid.Data()
	qc := c.qc.Data()
	stops := c.stops.Fields()

	return View{
		ID: c.id,
		Shift: ShiftView{
			ShiftFields: c.form.Fields(),
			Identified:  c.form.Identified(),
			Operators:   c.catalogs.Operators,
		},
		Order: ord,
		Roll: RollView{
			TargetLength:   c.grid.TargetLength(),
			Rows:           roll.RowCount(c.grid.TargetLength()),
			ThicknessRows:  roll.ThicknessRows(c.grid.TargetLength()),
			Data:           data,
			Counts:         data.Counts(),
			Verdict:        c.grid.Conformity(),
			AllThicknesses: c.grid.AllThicknessesFilled(),
			DefectTypes:    c.grid.DefectTypes(),
		},
		Quality: QCView{
			QualityControl: qc,
			Statuses:       c.qc.Statuses(),
			Badge:          quality.BadgeFor(qc.Status),
			HasWarning:     c.qc.HasWarning(),
			Thresholds:     c.qc.Thresholds(),
		},
		LostTime: LostView{
			LostTimeFields: stops,
			TotalMinutes:   c.stops.TotalMinutes(),
			Reasons:        c.stops.Reasons(),
		},
		Checklist: ListView{
			ChecklistFields: c.list.Fields(),
			TemplateID:      c.list.TemplateID(),
			Items:           c.list.Items(),
			Complete:        c.list.Complete(),
			NokCount:        c.list.NokCount(),
		},
		Profile: ProfView{
			ProfileFields: c.prof.Fields(),
			Header:        c.prof.Header(),
			Selected:      c.prof.Selected(),
			Profiles:      c.prof.Profiles(),
			ModeList:      c.prof.Modes(),
			Estimate:      c.prof.ProductionEstimate(ord.TargetLength),
		},
		Summary: SumView{
			SummaryFields: c.bar.Fields(),
			Production:    c.bar.Production(),
			RollID:        c.bar.RollID(),
			IDStatus:      c.bar.IDStatus(),
			Preview:       c.bar.Preview(),
			Timer:         c.bar.Timer(),
			SaveAction:    c.bar.SaveAction(c.form.Identified()),
		},
		KPI:      c.kpis.Snapshot(),
		Degraded: c.catalogs.Degraded,
	}
}

func (c *Console) KPI() kpi.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kpis.Snapshot()
}
