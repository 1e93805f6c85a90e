package console

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/tissage-sgq/shiftconsole/internal/clients/shiftapi"
	"github.com/tissage-sgq/shiftconsole/internal/domain"
	"github.com/tissage-sgq/shiftconsole/internal/modules/order"
	"github.com/tissage-sgq/shiftconsole/internal/modules/profile"
	"github.com/tissage-sgq/shiftconsole/internal/modules/roll"
	"github.com/tissage-sgq/shiftconsole/internal/modules/shift"
	"github.com/tissage-sgq/shiftconsole/internal/modules/stoppage"
	"github.com/tissage-sgq/shiftconsole/internal/modules/summary"
	"github.com/tissage-sgq/shiftconsole/internal/platform/logger"
	"github.com/tissage-sgq/shiftconsole/internal/realtime"
	"github.com/tissage-sgq/shiftconsole/internal/session"
)

var errUpstream = errors.New("upstream unavailable")

type fakeAPI struct {
	shiftapi.Client

	mu         sync.Mutex
	profiles   map[int]*domain.Profile
	activated  []int
	created    []shiftapi.LostTimeEntryCreate
	createErr  error
	deleted    []string
	submitted  []domain.ChecklistResponse
	rolls      []domain.RollCreate
	rollExists map[string]bool
	shifts     []domain.ShiftSummary
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{profiles: map[int]*domain.Profile{}, rollExists: map[string]bool{}}
}

func (f *fakeAPI) SessionKey() string { return "sess-1" }

func (f *fakeAPI) GetProfile(_ context.Context, id int) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return nil, errUpstream
	}
	return p, nil
}

func (f *fakeAPI) ActivateProfile(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activated = append(f.activated, id)
	return nil
}

func (f *fakeAPI) ToggleMode(_ context.Context, id int) (domain.Mode, error) {
	return domain.Mode{ID: id, Name: "Nuit calme", IsEnabled: true, IsActive: true}, nil
}

func (f *fakeAPI) CreateLostTimeEntry(_ context.Context, in shiftapi.LostTimeEntryCreate) (domain.LostTimeEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return domain.LostTimeEntry{}, f.createErr
	}
	f.created = append(f.created, in)
	return domain.LostTimeEntry{ID: "57", Duration: in.Duration, Comment: in.Comment}, nil
}

func (f *fakeAPI) DeleteLostTimeEntry(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAPI) SubmitChecklist(_ context.Context, in domain.ChecklistResponse) (domain.ChecklistResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, in)
	in.ID = len(f.submitted)
	return in, nil
}

func (f *fakeAPI) RollIDExists(_ context.Context, rollID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rollExists[rollID], nil
}

func (f *fakeAPI) CreateRoll(_ context.Context, in domain.RollCreate) (domain.RollRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rolls = append(f.rolls, in)
	rec := domain.RollRecord{ID: len(f.rolls), RollID: in.RollID, Status: in.Status, Destination: in.Destination}
	if in.Length != nil {
		rec.Length = domain.NewNumber(*in.Length)
	}
	return rec, nil
}

func (f *fakeAPI) ListShifts(context.Context) ([]domain.ShiftSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shifts, nil
}

type recordingSaver struct {
	areas []session.Area
}

func (s *recordingSaver) Schedule(a session.Area) { s.areas = append(s.areas, a) }

func (s *recordingSaver) saw(a session.Area) bool {
	for _, got := range s.areas {
		if got == a {
			return true
		}
	}
	return false
}

type recordingEmitter struct {
	mu    sync.Mutex
	msgs  []realtime.SSEMessage
	drain func()
}

func (e *recordingEmitter) Emit(_ context.Context, m realtime.SSEMessage) {
	e.mu.Lock()
	e.msgs = append(e.msgs, m)
	e.mu.Unlock()
}

// messages waits for the console outbox, then returns what was emitted.
func (e *recordingEmitter) messages() []realtime.SSEMessage {
	if e.drain != nil {
		e.drain()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]realtime.SSEMessage{}, e.msgs...)
}

func (e *recordingEmitter) reset() {
	if e.drain != nil {
		e.drain()
	}
	e.mu.Lock()
	e.msgs = nil
	e.mu.Unlock()
}

func (e *recordingEmitter) events() []realtime.SSEEvent {
	msgs := e.messages()
	out := make([]realtime.SSEEvent, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Event)
	}
	return out
}

func (e *recordingEmitter) has(ev realtime.SSEEvent) bool {
	for _, m := range e.messages() {
		if m.Event == ev {
			return true
		}
	}
	return false
}

var testNow = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

func testCatalogs() domain.Catalogs {
	return domain.Catalogs{
		DefectTypes: []domain.DefectType{
			{ID: 1, Name: "Trou", Severity: domain.SeverityBlocking, IsActive: true},
			{ID: 2, Name: "Tache", Severity: domain.SeverityNonBlocking, IsActive: true},
		},
		LostTimeReasons: []domain.LostTimeReason{{ID: 4, Name: "Panne", IsActive: true}},
		ChecklistTemplate: domain.ChecklistTemplate{ID: 3, Items: []domain.ChecklistItem{
			{ID: 10, Text: "Carter fermé", IsRequired: true},
		}},
		Operators: []domain.Operator{{ID: "E1", FirstName: "Ana", LastName: "Silva"}},
		Profiles:  []domain.ProfileSummary{{ID: 1, Name: "80g", IsDefault: true}, {ID: 2, Name: "120g"}},
		Modes:     []domain.Mode{{ID: 5, Name: "Nuit calme", IsActive: true}},
	}
}

type harness struct {
	c     *Console
	api   *fakeAPI
	store *session.Store
	saver *recordingSaver
	emit  *recordingEmitter
}

func newHarness(t *testing.T, snap session.Snapshot) *harness {
	t.Helper()
	h := &harness{
		api:   newFakeAPI(),
		store: session.NewStore(snap),
		saver: &recordingSaver{},
		emit:  &recordingEmitter{},
	}
	c, err := New(logger.Nop(), Deps{
		ID:        uuid.New(),
		API:       h.api,
		Store:     h.store,
		Saver:     h.saver,
		Emitter:   h.emit,
		Catalogs:  testCatalogs(),
		ShiftData: domain.ShiftData{},
		Now:       func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	h.c = c
	h.emit.drain = c.out.drain
	h.saver.areas = nil
	h.emit.reset()
	return h
}

func identifiedSnapshot(target int) session.Snapshot {
	snap := session.Defaults()
	snap.Shift = domain.ShiftFields{OperatorID: "E1", ShiftDate: "2026-03-02", Vacation: domain.VacationMorning}
	snap.Order = domain.OrderFields{Current: "OF42", TargetLength: target}
	return snap
}

func decodePatch[T any](t *testing.T, body string) T {
	t.Helper()
	var p T
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	return p
}

func TestNewRequiresDeps(t *testing.T) {
	if _, err := New(nil, Deps{}); err == nil {
		t.Fatalf("nil logger: want error")
	}
	if _, err := New(logger.Nop(), Deps{API: newFakeAPI()}); err == nil {
		t.Fatalf("nil store: want error")
	}
	if _, err := New(logger.Nop(), Deps{Store: session.NewStore(session.Defaults())}); err == nil {
		t.Fatalf("nil api: want error")
	}
}

func TestTargetLengthReshapesGrid(t *testing.T) {
	h := newHarness(t, session.Defaults())

	f, err := h.c.PatchOrder(context.Background(), decodePatch[order.Patch](t, `{"of_en_cours":"OF42","target_length":10}`))
	if err != nil {
		t.Fatalf("PatchOrder: %v", err)
	}
	if f.TargetLength != 10 || f.Current != "OF42" {
		t.Fatalf("order: got %+v", f)
	}
	st := h.c.State()
	if st.Roll.TargetLength != 10 || st.Roll.Rows != 10 {
		t.Fatalf("grid: want=10 rows got=%d/%d", st.Roll.TargetLength, st.Roll.Rows)
	}
	if !h.saver.saw(session.AreaOrder) {
		t.Fatalf("saver: want order scheduled got=%v", h.saver.areas)
	}
	for _, ev := range []realtime.SSEEvent{realtime.SSEEventTargetLengthChanged, realtime.SSEEventRollUpdated, realtime.SSEEventOrderChanged} {
		if !h.emit.has(ev) {
			t.Fatalf("events: want %s got=%v", ev, h.emit.events())
		}
	}
	for _, m := range h.emit.messages() {
		if m.Channel != h.c.ID().String() {
			t.Fatalf("channel: want=%s got=%s", h.c.ID(), m.Channel)
		}
	}

	if _, err := h.c.PatchOrder(context.Background(), decodePatch[order.Patch](t, `{"target_length":-1}`)); !errors.Is(err, order.ErrNegativeLength) {
		t.Fatalf("negative length: want ErrNegativeLength got=%v", err)
	}
}

func TestThicknessInputPersistsRoll(t *testing.T) {
	h := newHarness(t, identifiedSnapshot(10))

	res, err := h.c.InputThickness(3, domain.ColG1, "5,6")
	if err != nil {
		t.Fatalf("InputThickness: %v", err)
	}
	if res.Outcome != roll.OutcomeAccepted {
		t.Fatalf("outcome: want=accepted got=%s", res.Outcome)
	}
	stored := h.store.Roll().Get()
	want := []domain.Thickness{{Row: 3, Col: domain.ColG1, Value: 5.6}}
	if diff := cmp.Diff(want, stored.Thicknesses); diff != "" {
		t.Fatalf("stored thicknesses (-want +got):\n%s", diff)
	}
	if !h.saver.saw(session.AreaRoll) || !h.emit.has(realtime.SSEEventRollUpdated) {
		t.Fatalf("fan-out: saver=%v events=%v", h.saver.areas, h.emit.events())
	}

	if _, err := h.c.InputThickness(2, domain.ColG1, "5,6"); !errors.Is(err, roll.ErrNotMeasurementCell) {
		t.Fatalf("row 2: want ErrNotMeasurementCell got=%v", err)
	}

	if _, err := h.c.AddDefect(7, domain.ColC2, 1); err != nil {
		t.Fatalf("AddDefect: %v", err)
	}
	st := h.c.State()
	if st.Roll.Verdict.Conform {
		t.Fatalf("blocking defect: want non-conform roll")
	}
	if st.Summary.Preview.NonConform != true {
		t.Fatalf("summary follows roll: want non-conform preview")
	}
	if ok, _ := h.c.RemoveDefect(7, domain.ColC2); !ok {
		t.Fatalf("RemoveDefect: want removed")
	}
	if !h.c.State().Roll.Verdict.Conform {
		t.Fatalf("defect removed: want conform roll")
	}
}

func TestSelectProfile(t *testing.T) {
	h := newHarness(t, session.Defaults())
	h.api.profiles[2] = &domain.Profile{ID: 2, Name: "120g"}

	p, err := h.c.SelectProfile(context.Background(), 2)
	if err != nil {
		t.Fatalf("SelectProfile: %v", err)
	}
	if p.ID != 2 {
		t.Fatalf("profile: want=2 got=%d", p.ID)
	}
	if got := h.store.Profile().Get().SelectedProfileID; got == nil || *got != 2 {
		t.Fatalf("stored selection: want=2 got=%v", got)
	}
	if diff := cmp.Diff([]int{2}, h.api.activated); diff != "" {
		t.Fatalf("activated (-want +got):\n%s", diff)
	}
	if !h.emit.has(realtime.SSEEventProfileChanged) {
		t.Fatalf("events: want ProfileChanged got=%v", h.emit.events())
	}

	if _, err := h.c.SelectProfile(context.Background(), 9); !errors.Is(err, profile.ErrUnknownProfile) {
		t.Fatalf("unknown profile: want ErrUnknownProfile got=%v", err)
	}
	if _, err := h.c.SelectProfile(context.Background(), 1); err == nil {
		t.Fatalf("fetch failure: want error")
	}
	if got := h.c.State().Profile.Selected; got == nil || got.ID != 2 {
		t.Fatalf("failed fetch keeps selection: got=%v", got)
	}
}

func TestInitLoadsDefaultProfile(t *testing.T) {
	h := newHarness(t, session.Defaults())
	h.api.profiles[1] = &domain.Profile{ID: 1, Name: "80g"}

	h.c.Init(context.Background())
	if got := h.c.State().Profile.Selected; got == nil || got.ID != 1 {
		t.Fatalf("initial profile: want=1 got=%v", got)
	}
	if len(h.api.activated) != 0 {
		t.Fatalf("init must not activate: got=%v", h.api.activated)
	}
}

func TestToggleMode(t *testing.T) {
	h := newHarness(t, session.Defaults())
	if _, err := h.c.ToggleMode(context.Background(), 5); err != nil {
		t.Fatalf("ToggleMode: %v", err)
	}
	if diff := cmp.Diff([]string{"Nuit calme"}, h.store.Profile().Get().Modes); diff != "" {
		t.Fatalf("modes (-want +got):\n%s", diff)
	}
}

func TestDeclareStoppage(t *testing.T) {
	h := newHarness(t, identifiedSnapshot(10))

	e, err := h.c.DeclareStoppage(context.Background(), stoppage.Declaration{Reason: "Panne", Duration: 15})
	if err != nil {
		t.Fatalf("DeclareStoppage: %v", err)
	}
	if e.ID != "57" {
		t.Fatalf("server id: want=57 got=%s", e.ID)
	}
	if len(h.api.created) != 1 || h.api.created[0].ReasonID != 4 || h.api.created[0].ShiftID == "" {
		t.Fatalf("create request: got %+v", h.api.created)
	}
	if got := h.c.KPI().LostMinutes; got != 15 {
		t.Fatalf("kpi lost time: want=15 got=%d", got)
	}

	local, err := h.c.DeclareStoppage(context.Background(), stoppage.Declaration{Reason: "Autre", Duration: 5})
	if err != nil {
		t.Fatalf("DeclareStoppage unknown reason: %v", err)
	}
	if !stoppage.IsTemporary(local.ID) || len(h.api.created) != 1 {
		t.Fatalf("unknown reason stays local: id=%s created=%d", local.ID, len(h.api.created))
	}

	h.api.createErr = errUpstream
	kept, err := h.c.DeclareStoppage(context.Background(), stoppage.Declaration{Reason: "Panne", Duration: 10})
	if err != nil || !stoppage.IsTemporary(kept.ID) {
		t.Fatalf("server failure: want temp entry got id=%s err=%v", kept.ID, err)
	}
	if got := len(h.store.LostTime().Get().Entries); got != 3 {
		t.Fatalf("stored entries: want=3 got=%d", got)
	}

	if err := h.c.RemoveStoppage(context.Background(), "57"); err != nil {
		t.Fatalf("RemoveStoppage: %v", err)
	}
	if err := h.c.RemoveStoppage(context.Background(), local.ID); err != nil {
		t.Fatalf("RemoveStoppage temp: %v", err)
	}
	if diff := cmp.Diff([]string{"57"}, h.api.deleted); diff != "" {
		t.Fatalf("server deletes (-want +got):\n%s", diff)
	}
	if err := h.c.RemoveStoppage(context.Background(), "404"); !errors.Is(err, stoppage.ErrNotFound) {
		t.Fatalf("unknown entry: want ErrNotFound got=%v", err)
	}
	if got := h.c.KPI().LostMinutes; got != 10 {
		t.Fatalf("kpi lost time after removals: want=10 got=%d", got)
	}

	if _, err := h.c.DeclareStoppage(context.Background(), stoppage.Declaration{Reason: "Panne"}); !errors.Is(err, stoppage.ErrBadDuration) {
		t.Fatalf("zero duration: want ErrBadDuration got=%v", err)
	}
}

func TestSignChecklistSubmits(t *testing.T) {
	h := newHarness(t, identifiedSnapshot(10))

	if _, err := h.c.SignChecklist(context.Background(), "as"); err == nil {
		t.Fatalf("sign before answers: want error")
	}
	if _, err := h.c.AnswerChecklist(10, domain.ChecklistOK); err != nil {
		t.Fatalf("AnswerChecklist: %v", err)
	}
	f, err := h.c.SignChecklist(context.Background(), "as")
	if err != nil {
		t.Fatalf("SignChecklist: %v", err)
	}
	if f.Signature != "AS" || f.SignatureTime != "09:30" {
		t.Fatalf("signature: got %+v", f)
	}
	if len(h.api.submitted) != 1 || h.api.submitted[0].TemplateID != 3 {
		t.Fatalf("submission: got %+v", h.api.submitted)
	}
	if !h.saver.saw(session.AreaChecklist) || !h.emit.has(realtime.SSEEventChecklistChanged) {
		t.Fatalf("fan-out: saver=%v events=%v", h.saver.areas, h.emit.events())
	}
}

func TestSaveRoll(t *testing.T) {
	h := newHarness(t, identifiedSnapshot(3))

	for _, col := range domain.Columns {
		if _, err := h.c.InputThickness(3, col, "6"); err != nil {
			t.Fatalf("InputThickness %s: %v", col, err)
		}
	}
	if _, err := h.c.PatchSummary(context.Background(), decodePatch[summary.Patch](t, `{"roll_number":1,"tube_mass":2,"total_mass":5}`)); err != nil {
		t.Fatalf("PatchSummary: %v", err)
	}
	if st := h.c.State().Summary; st.RollID != "OF42_001" || st.IDStatus != summary.IDValid || !st.SaveAction.Enabled {
		t.Fatalf("summary before save: got id=%s status=%s action=%+v", st.RollID, st.IDStatus, st.SaveAction)
	}

	rec, err := h.c.SaveRoll(context.Background(), "ok")
	if err != nil {
		t.Fatalf("SaveRoll: %v", err)
	}
	if rec.RollID != "OF42_001" || rec.Status != domain.RollConforme {
		t.Fatalf("record: got %+v", rec)
	}
	prod := h.store.Production().Get()
	if prod.RollsTotal != 1 || prod.RollsConform != 1 || prod.WoundLengthOK != 3 {
		t.Fatalf("production: got %+v", prod)
	}
	if n := h.store.Summary().Get().RollNumber; n == nil || *n != 2 {
		t.Fatalf("next roll number: want=2 got=%v", n)
	}
	if got := h.store.Roll().Get().Counts(); got != (domain.RollCounts{}) {
		t.Fatalf("grid reset: got %+v", got)
	}
	if k := h.c.KPI(); k.TotalRolls != 1 || k.ConformRolls != 1 {
		t.Fatalf("kpi: got %+v", k)
	}
	if !h.emit.has(realtime.SSEEventRollSaved) || !h.saver.saw(session.AreaProduction) {
		t.Fatalf("fan-out: saver=%v events=%v", h.saver.areas, h.emit.events())
	}

	if _, err := h.c.SaveRoll(context.Background(), ""); !errors.Is(err, summary.ErrSaveDisabled) {
		t.Fatalf("empty roll: want ErrSaveDisabled got=%v", err)
	}
}

func TestDuplicateRollID(t *testing.T) {
	h := newHarness(t, identifiedSnapshot(3))
	h.api.rollExists["OF42_004"] = true

	if _, err := h.c.PatchSummary(context.Background(), decodePatch[summary.Patch](t, `{"roll_number":4}`)); err != nil {
		t.Fatalf("PatchSummary: %v", err)
	}
	st := h.c.State().Summary
	if st.IDStatus != summary.IDDuplicate || st.SaveAction.Enabled {
		t.Fatalf("duplicate id: got status=%s action=%+v", st.IDStatus, st.SaveAction)
	}
}

func TestShiftSaveAction(t *testing.T) {
	h := newHarness(t, identifiedSnapshot(3))
	id := h.c.State().Shift.ShiftID
	if id == "" {
		t.Fatalf("shift id: want computed id")
	}
	h.api.shifts = []domain.ShiftSummary{{ID: 1, ShiftID: id}}

	st := h.c.ShiftSaveAction(context.Background())
	if st.Enabled {
		t.Fatalf("duplicate shift with pending QC: want disabled got %+v", st)
	}
	found := false
	for _, r := range st.Reasons {
		if r == shift.ReasonDuplicateShift {
			found = true
		}
	}
	if !found {
		t.Fatalf("reasons: want duplicate got=%v", st.Reasons)
	}
}

func TestServerShiftDataIsAdopted(t *testing.T) {
	snap := identifiedSnapshot(3)
	snap.LostTime.Entries = []domain.LostTimeEntry{{ID: "temp_x", Reason: "Panne", Duration: 5}}
	store := session.NewStore(snap)
	c, err := New(logger.Nop(), Deps{
		API:      newFakeAPI(),
		Store:    store,
		Catalogs: testCatalogs(),
		ShiftData: domain.ShiftData{
			LostTimeEntries: []domain.LostTimeEntry{{ID: "8", Reason: "Panne", Duration: 20}},
			ChecklistResponses: []domain.ChecklistResponse{
				{ID: 1, Responses: map[string]string{"10": "nok"}, OperatorSignature: "OLD"},
				{ID: 2, Responses: map[string]string{"10": "ok"}, OperatorSignature: "AS", SignatureTime: "06:10"},
			},
		},
		Now: func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	if got := store.LostTime().Get().Entries; len(got) != 1 || got[0].ID != "8" {
		t.Fatalf("entries: want server entry got=%+v", got)
	}
	if got := c.KPI().LostMinutes; got != 20 {
		t.Fatalf("kpi lost time: want=20 got=%d", got)
	}
	cl := store.Checklist().Get()
	if cl.Signature != "AS" || cl.Responses["10"] != "ok" {
		t.Fatalf("checklist: want latest response got=%+v", cl)
	}
}

func TestClosedConsoleRefusesMutations(t *testing.T) {
	h := newHarness(t, identifiedSnapshot(10))
	h.c.Close()
	if _, err := h.c.InputThickness(3, domain.ColG1, "6"); !errors.Is(err, ErrClosed) {
		t.Fatalf("closed: want ErrClosed got=%v", err)
	}
	if _, err := h.c.PatchOrder(context.Background(), order.Patch{}); !errors.Is(err, ErrClosed) {
		t.Fatalf("closed order: want ErrClosed got=%v", err)
	}
}

type lockCheckingEmitter struct {
	c *Console

	mu     sync.Mutex
	emits  int
	locked int
}

func (e *lockCheckingEmitter) Emit(_ context.Context, _ realtime.SSEMessage) {
	held := !e.c.mu.TryLock()
	if !held {
		e.c.mu.Unlock()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.emits++
	if held {
		e.locked++
	}
}

func TestEmitRunsOutsideConsoleLock(t *testing.T) {
	emit := &lockCheckingEmitter{}
	c, err := New(logger.Nop(), Deps{
		ID:        uuid.New(),
		API:       newFakeAPI(),
		Store:     session.NewStore(identifiedSnapshot(10)),
		Saver:     &recordingSaver{},
		Emitter:   emit,
		Catalogs:  testCatalogs(),
		ShiftData: domain.ShiftData{},
		Now:       func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	emit.c = c
	t.Cleanup(c.Close)

	if _, err := c.InputThickness(3, domain.ColG1, "6"); err != nil {
		t.Fatalf("InputThickness: %v", err)
	}
	c.out.drain()

	emit.mu.Lock()
	defer emit.mu.Unlock()
	if emit.emits == 0 {
		t.Fatalf("emits: want>0 got=0")
	}
	if emit.locked != 0 {
		t.Fatalf("emitted while console locked: want=0 got=%d", emit.locked)
	}
}

func TestCloseFlushesQueuedEvents(t *testing.T) {
	h := newHarness(t, identifiedSnapshot(10))
	if _, err := h.c.InputThickness(3, domain.ColG1, "6"); err != nil {
		t.Fatalf("InputThickness: %v", err)
	}
	h.c.Close()

	h.emit.mu.Lock()
	n := len(h.emit.msgs)
	h.emit.mu.Unlock()
	if n == 0 {
		t.Fatalf("events after close: want>0 got=0")
	}

	h.c.out.push(realtime.SSEMessage{Event: realtime.SSEEventRollUpdated})
	if got := len(h.emit.messages()); got != n {
		t.Fatalf("push after close: want=%d got=%d", n, got)
	}
}
