// Package console assembles the components of one operator console around a
// typed session store and a typed event bus. Every operation runs under the
// console lock; bus handlers run synchronously inside it. Events reach the
// views through an outbox drained outside the lock.
package console

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tissage-sgq/shiftconsole/internal/clients/shiftapi"
	"github.com/tissage-sgq/shiftconsole/internal/domain"
	"github.com/tissage-sgq/shiftconsole/internal/modules/checklist"
	"github.com/tissage-sgq/shiftconsole/internal/modules/kpi"
	"github.com/tissage-sgq/shiftconsole/internal/modules/order"
	"github.com/tissage-sgq/shiftconsole/internal/modules/profile"
	"github.com/tissage-sgq/shiftconsole/internal/modules/quality"
	"github.com/tissage-sgq/shiftconsole/internal/modules/roll"
	"github.com/tissage-sgq/shiftconsole/internal/modules/shift"
	"github.com/tissage-sgq/shiftconsole/internal/modules/stoppage"
	"github.com/tissage-sgq/shiftconsole/internal/modules/summary"
	"github.com/tissage-sgq/shiftconsole/internal/platform/logger"
	"github.com/tissage-sgq/shiftconsole/internal/realtime"
	"github.com/tissage-sgq/shiftconsole/internal/realtime/bus"
	"github.com/tissage-sgq/shiftconsole/internal/session"
)

// Saver queues the background save of a session area.
type Saver interface {
	Schedule(area session.Area)
}

// Emitter streams bus events to the views of the console.
type Emitter interface {
	Emit(ctx context.Context, msg realtime.SSEMessage)
}

type Deps struct {
	ID        uuid.UUID
	API       shiftapi.Client
	Store     *session.Store
	Saver     Saver
	Bus       *bus.Bus
	Emitter   Emitter
	Catalogs  domain.Catalogs
	ShiftData domain.ShiftData
	Defaults  domain.PlantDefaults
	Now       func() time.Time
}

type Console struct {
	mu      sync.Mutex
	log     *logger.Logger
	id      uuid.UUID
	api     shiftapi.Client
	store   *session.Store
	saver   Saver
	bus     *bus.Bus
	out     *outbox
	now     func() time.Time

	defaults  domain.PlantDefaults
	catalogs  domain.Catalogs
	reasonIDs map[string]int

	grid  *roll.Grid
	qc    *quality.Panel
	form  *shift.Form
	stops *stoppage.Log
	list  *checklist.Checklist
	ord   *order.Order
	prof  *profile.Selector
	bar   *summary.Bar
	kpis  *kpi.Dashboard

	unsub  []func()
	saving bool
	closed bool
}

func New(log *logger.Logger, deps Deps) (*Console, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("session store required")
	}
	if deps.API == nil {
		return nil, fmt.Errorf("session api required")
	}
	if deps.ID == uuid.Nil {
		deps.ID = uuid.New()
	}
	if deps.Bus == nil {
		deps.Bus = bus.New()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	snap := deps.Store.Snapshot()
	c := &Console{
		log:       log.With("service", "Console", "console_id", deps.ID.String()),
		id:        deps.ID,
		api:       deps.API,
		store:     deps.Store,
		saver:     deps.Saver,
		bus:       deps.Bus,
		now:       deps.Now,
		defaults:  deps.Defaults,
		catalogs:  deps.Catalogs,
		reasonIDs: map[string]int{},
	}

	c.grid = roll.NewGrid(snap.Order.TargetLength, snap.Roll, roll.WithClock(deps.Now))
	c.grid.SetDefectTypes(deps.Catalogs.DefectTypes)
	c.qc = quality.NewPanel(snap.Quality, deps.Defaults.QCThresholds, deps.Now)
	c.form = shift.NewForm(snap.Shift, deps.Defaults.VacationHours)
	c.form.SetOperators(deps.Catalogs.Operators)
	c.stops = stoppage.NewLog(snap.LostTime.Entries, deps.Now)
	c.stops.SetReasons(deps.Catalogs.LostTimeReasons)
	for _, r := range deps.Catalogs.LostTimeReasons {
		c.reasonIDs[r.Name] = r.ID
	}
	c.list = checklist.New(deps.Catalogs.ChecklistTemplate, snap.Checklist, deps.Now)
	c.ord = order.New(snap.Order)
	c.prof = profile.NewSelector(snap.Profile)
	c.prof.SetProfiles(deps.Catalogs.Profiles)
	if len(deps.Catalogs.Modes) > 0 {
		c.prof.SetModes(deps.Catalogs.Modes)
	}
	c.bar = summary.NewBar(snap.Summary, snap.Production, snap.Order, deps.Now)
	c.kpis = kpi.NewDashboard()
	if deps.Emitter != nil {
		c.out = newOutbox(deps.Emitter)
	}
	if err := c.kpis.SetShiftHours(snap.Shift.StartTime, snap.Shift.EndTime); err != nil {
		c.log.Debug("ignoring stored shift hours", "error", err)
	}
	c.kpis.SetProduction(snap.Production.WoundLengthTotal, snap.Production.RollsConform, snap.Production.RollsTotal)

	c.adoptShiftData(deps.ShiftData)
	c.kpis.SetLostTime(c.stops.TotalMinutes())
	c.bar.SetRoll(c.rollState())

	c.wire()

	// Operators and modes may have changed the derived fields since the save.
	c.commitShift(false)
	c.commitProfile(false)
	return c, nil
}

// adoptShiftData takes the server's view of the shift: its stoppages replace the
// session copy, and a signed response fills an empty checklist.
func (c *Console) adoptShiftData(d domain.ShiftData) {
	if len(d.LostTimeEntries) > 0 {
		c.stops.Replace(d.LostTimeEntries)
		c.store.LostTime().Set(c.stops.Fields())
		c.schedule(session.AreaLostTime)
	}
	if len(d.ChecklistResponses) == 0 || len(c.list.Fields().Responses) > 0 {
		return
	}
	latest := d.ChecklistResponses[0]
	for _, r := range d.ChecklistResponses[1:] {
		if r.ID > latest.ID {
			latest = r
		}
	}
	f := domain.ChecklistFields{
		Responses:     latest.Responses,
		Signature:     latest.OperatorSignature,
		SignatureTime: latest.SignatureTime,
	}
	c.list = checklist.New(domain.ChecklistTemplate{ID: c.list.TemplateID(), Items: c.list.Items()}, f, c.now)
	c.store.Checklist().Set(c.list.Fields())
	c.schedule(session.AreaChecklist)
}

// wire subscribes the components to each other's events and mirrors every
// publication to the console's SSE channel.
func (c *Console) wire() {
	c.unsub = append(c.unsub,
		bus.Subscribe(c.bus, bus.TopicTargetLengthChanged, func(e bus.TargetLengthChanged) {
			c.grid.SetTargetLength(e.Length)
			c.publishRoll()
		}),
		bus.Subscribe(c.bus, bus.TopicOrderChanged, func(e bus.OrderChanged) {
			c.bar.SetOrder(e.Order)
		}),
		bus.Subscribe(c.bus, bus.TopicRollUpdated, func(bus.RollUpdated) {
			c.bar.SetRoll(c.rollState())
		}),
		bus.Subscribe(c.bus, bus.TopicLostTimeUpdated, func(e bus.LostTimeUpdated) {
			c.kpis.SetLostTime(e.TotalMinutes)
		}),
		bus.Subscribe(c.bus, bus.TopicProfileChanged, func(e bus.ProfileChanged) {
			c.qc.ApplyProfile(e.Profile)
			c.bar.SetProfile(c.prof.GlobalSurfaceMassBand(), c.prof.MaxNok())
			c.kpis.SetBeltSpeed(c.prof.BeltSpeedPerMinute())
		}),
		bus.Subscribe(c.bus, bus.TopicShiftChanged, func(bus.ShiftChanged) {
			f := c.form.Fields()
			if err := c.kpis.SetShiftHours(f.StartTime, f.EndTime); err != nil {
				c.log.Debug("shift hours not usable for kpi", "error", err)
			}
		}),
		bus.Subscribe(c.bus, bus.TopicRollSaved, func(e bus.RollSaved) {
			length := 0.0
			if e.Record.Length.Positive() {
				length = e.Record.Length.Value
			}
			c.kpis.RecordRoll(length, !e.NonConform)
		}),
	)
	if c.out != nil {
		channel := c.id.String()
		c.unsub = append(c.unsub, c.bus.Mirror(func(ev bus.Event) {
			c.out.push(realtime.SSEMessage{
				Channel: channel,
				Event:   realtime.SSEEvent(ev.Topic),
				Data:    ev.Payload,
			})
		}))
	}
}

func (c *Console) ID() uuid.UUID { return c.id }

func (c *Console) Bus() *bus.Bus { return c.bus }

func (c *Console) SessionKey() string { return c.api.SessionKey() }

// Close detaches the bus handlers and delivers the events already published.
// Pending saves belong to the Saver.
func (c *Console) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	for _, fn := range c.unsub {
		fn()
	}
	c.unsub = nil
	c.mu.Unlock()

	if c.out != nil {
		c.out.close()
	}
}

// Init loads the initial profile. A failed fetch leaves the console without a
// profile, on default thresholds.
func (c *Console) Init(ctx context.Context) {
	c.mu.Lock()
	id, ok := c.prof.InitialID()
	c.mu.Unlock()
	if !ok {
		return
	}
	p, err := c.api.GetProfile(ctx, id)
	if err != nil {
		c.log.Warn("initial profile fetch failed", "profile_id", id, "error", err)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prof.Select(p)
	c.commitProfile(true)
}

func (c *Console) schedule(area session.Area) {
	if c.saver != nil {
		c.saver.Schedule(area)
	}
}

func (c *Console) rollState() summary.RollState {
	v := c.grid.Conformity()
	counts := c.grid.Counts()
	return summary.RollState{
		Conform:        v.Conform,
		AllThicknesses: c.grid.AllThicknessesFilled(),
		DefectCount:    counts.Defect,
		NokCount:       counts.Nok,
	}
}

func (c *Console) publishRoll() {
	data := c.grid.Data()
	v := c.grid.Conformity()
	bus.Publish(c.bus, bus.TopicRollUpdated, bus.RollUpdated{
		Data:           data,
		Counts:         data.Counts(),
		Conform:        v.Conform,
		AllThicknesses: c.grid.AllThicknessesFilled(),
		CellsWithNok:   v.CellsWithNok,
	})
}

func (c *Console) commitRoll() {
	c.store.Roll().Set(c.grid.Data())
	c.schedule(session.AreaRoll)
	c.publishRoll()
}

func (c *Console) commitQuality() {
	data := c.qc.Data()
	c.store.Quality().Set(data)
	c.schedule(session.AreaQuality)
	bus.Publish(c.bus, bus.TopicQualityControlUpdated, bus.QualityControlUpdated{Status: data.Status, QC: data})
}

func (c *Console) commitShift(publish bool) {
	f := c.form.Fields()
	if !reflect.DeepEqual(c.store.Shift().Get(), f) {
		c.store.Shift().Set(f)
		c.schedule(session.AreaShift)
	}
	if publish {
		bus.Publish(c.bus, bus.TopicShiftChanged, bus.ShiftChanged{ShiftID: f.ShiftID, Valid: c.form.Identified()})
	}
}

func (c *Console) commitOrder(ch order.Change) {
	f := c.ord.Fields()
	c.store.Order().Set(f)
	c.schedule(session.AreaOrder)
	if ch.Target {
		bus.Publish(c.bus, bus.TopicTargetLengthChanged, bus.TargetLengthChanged{Length: f.TargetLength})
	}
	bus.Publish(c.bus, bus.TopicOrderChanged, bus.OrderChanged{Order: f})
}

func (c *Console) commitProfile(publish bool) {
	f := c.prof.Fields()
	if !reflect.DeepEqual(c.store.Profile().Get(), f) {
		c.store.Profile().Set(f)
		c.schedule(session.AreaProfile)
	}
	if publish {
		bus.Publish(c.bus, bus.TopicProfileChanged, bus.ProfileChanged{Profile: c.prof.Selected(), Modes: f.Modes})
	}
}

func (c *Console) commitStops() {
	f := c.stops.Fields()
	c.store.LostTime().Set(f)
	c.schedule(session.AreaLostTime)
	bus.Publish(c.bus, bus.TopicLostTimeUpdated, bus.LostTimeUpdated{
		Entries:        f.Entries,
		TotalMinutes:   c.stops.TotalMinutes(),
		HasStartupTime: f.HasStartupTime,
	})
}

func (c *Console) commitChecklist() {
	c.store.Checklist().Set(c.list.Fields())
	c.schedule(session.AreaChecklist)
	bus.Publish(c.bus, bus.TopicChecklistChanged, bus.ChecklistChanged{
		Complete: c.list.Complete(),
		NokCount: c.list.NokCount(),
	})
}

func (c *Console) commitSummary() {
	c.store.Summary().Set(c.bar.Fields())
	c.schedule(session.AreaSummary)
}
