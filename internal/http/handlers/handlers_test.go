package handlers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tissage-sgq/shiftconsole/internal/clients/shiftapi"
	"github.com/tissage-sgq/shiftconsole/internal/data/repos/testutil"
	"github.com/tissage-sgq/shiftconsole/internal/domain"
	"github.com/tissage-sgq/shiftconsole/internal/http/response"
	"github.com/tissage-sgq/shiftconsole/internal/modules/checklist"
	"github.com/tissage-sgq/shiftconsole/internal/modules/management"
	"github.com/tissage-sgq/shiftconsole/internal/realtime"
	"github.com/tissage-sgq/shiftconsole/internal/services"
)

var errDown = errors.New("session server down")

// stubAPI answers the calls a console makes on open; catalogs fail so the
// plant defaults apply.
type stubAPI struct {
	shiftapi.Client

	mu      sync.Mutex
	key     string
	signed  map[int]string
	pending []domain.PendingChecklist
}

func (s *stubAPI) WithSession(key string) shiftapi.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = key
	return s
}

func (s *stubAPI) SessionKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

func (s *stubAPI) GetSession(context.Context) (json.RawMessage, error) {
	return json.RawMessage(`{"of_en_cours":"OF42","target_length":3}`), nil
}

func (s *stubAPI) PatchSession(_ context.Context, patch any) (json.RawMessage, error) {
	raw, _ := patch.(json.RawMessage)
	return raw, nil
}

func (s *stubAPI) ListDefectTypes(context.Context) ([]domain.DefectType, error) { return nil, errDown }

func (s *stubAPI) ListLostTimeReasons(context.Context) ([]domain.LostTimeReason, error) {
	return nil, errDown
}

func (s *stubAPI) DefaultChecklistTemplate(context.Context) (domain.ChecklistTemplate, error) {
	return domain.ChecklistTemplate{}, errDown
}

func (s *stubAPI) ListOperators(context.Context) ([]domain.Operator, error) { return nil, errDown }

func (s *stubAPI) ListProfiles(context.Context) ([]domain.ProfileSummary, error) { return nil, errDown }

func (s *stubAPI) ListModes(context.Context) ([]domain.Mode, error) { return nil, errDown }

func (s *stubAPI) RollIDExists(context.Context, string) (bool, error) { return false, nil }

func (s *stubAPI) DashboardStats(context.Context) (domain.DashboardStats, error) {
	return domain.DashboardStats{}, nil
}

func (s *stubAPI) PendingChecklists(context.Context) ([]domain.PendingChecklist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.PendingChecklist(nil), s.pending...), nil
}

func (s *stubAPI) RecentShiftReports(context.Context, int, int) ([]domain.ShiftReport, error) {
	return []domain.ShiftReport{}, nil
}

func (s *stubAPI) SignChecklist(_ context.Context, id int, visa string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == 404 {
		return errDown
	}
	if s.signed == nil {
		s.signed = map[int]string{}
	}
	s.signed[id] = visa
	return nil
}

type testEnv struct {
	router   *gin.Engine
	api      *stubAPI
	registry services.ConsoleRegistry
	dash     *management.Dashboard
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := testutil.Logger(t)
	api := &stubAPI{pending: []domain.PendingChecklist{{ID: 7}, {ID: 8}, {ID: 9}}}
	hub := realtime.NewSSEHub(log)

	reg, err := services.NewConsoleRegistry(log, services.ConsoleRegistryDeps{
		API:       api,
		Loader:    services.NewDataLoader(log, services.DefaultPlantDefaults(), time.Minute),
		Emitter:   &services.HubEmitter{Hub: hub},
		SaveDelay: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewConsoleRegistry: %v", err)
	}
	t.Cleanup(func() { _ = reg.Shutdown(context.Background()) })

	dash := management.NewDashboard(log, api, time.Hour, nil)
	dash.Refresh(context.Background())

	consoles := NewConsoleHandler(log, reg)
	mgmt := NewManagementHandler(log, dash, checklist.NewReview(api))
	rt := NewRealtimeHandler(log, hub, consoles, dash)

	r := gin.New()
	r.GET("/healthcheck", NewHealthHandler(reg.Len).HealthCheck)
	r.POST("/api/consoles", consoles.Create)
	con := r.Group("/api/consoles/:id")
	con.GET("", consoles.Get)
	con.DELETE("", consoles.Close)
	con.POST("/thickness", consoles.InputThickness)
	con.DELETE("/thickness/:row/:col", consoles.RemoveThickness)
	con.POST("/defects", consoles.AddDefect)
	con.GET("/navigate", consoles.Navigate)
	con.PATCH("/order", consoles.PatchOrder)
	con.PUT("/profile", consoles.SelectProfile)
	con.POST("/stoppages", consoles.DeclareStoppage)
	con.DELETE("/stoppages/:entryId", consoles.RemoveStoppage)
	con.PUT("/checklist/items/:itemId", consoles.AnswerChecklist)
	con.POST("/summary/save", consoles.SaveRoll)
	con.GET("/kpi", consoles.KPI)
	con.GET("/stream", rt.ConsoleStream)
	r.GET("/api/management/dashboard", mgmt.Dashboard)
	r.POST("/api/management/checklists/:id/sign", mgmt.Sign)
	r.POST("/api/management/checklists/sign-all", mgmt.SignAll)

	return &testEnv{router: r, api: api, registry: reg, dash: dash}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != "" {
		rd = bytes.NewReader([]byte(body))
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) createConsole(t *testing.T) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/consoles", `{"sessionKey":"sess-1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: want=201 got=%d body=%s", rec.Code, rec.Body.String())
	}
	var view struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil || view.ID == "" {
		t.Fatalf("create body: err=%v body=%s", err, rec.Body.String())
	}
	return view.ID
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env response.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("error envelope: %v body=%s", err, rec.Body.String())
	}
	return env.Error.Code
}

func TestCreateAndGetConsole(t *testing.T) {
	e := newTestEnv(t)
	id := e.createConsole(t)

	rec := e.do(t, http.MethodGet, "/api/consoles/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: want=200 got=%d", rec.Code)
	}
	var view struct {
		Order struct {
			Current      string `json:"of_en_cours"`
			TargetLength int    `json:"target_length"`
		} `json:"order"`
		Roll struct {
			Rows int `json:"rowCount"`
		} `json:"roll"`
		Degraded []string `json:"degradedCatalogs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view.Order.Current != "OF42" || view.Order.TargetLength != 3 || view.Roll.Rows != 3 {
		t.Fatalf("view: got %+v", view)
	}
	if len(view.Degraded) == 0 {
		t.Fatalf("failed catalogs must be reported as degraded")
	}

	rec = e.do(t, http.MethodGet, "/healthcheck", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"consoles":1`) {
		t.Fatalf("health: code=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestConsoleLookupErrors(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodGet, "/api/consoles/not-a-uuid", "")
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "invalid_console_id" {
		t.Fatalf("bad id: code=%d body=%s", rec.Code, rec.Body.String())
	}
	rec = e.do(t, http.MethodGet, "/api/consoles/6f1c2a3e-0000-4000-8000-000000000001", "")
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "console_not_found" {
		t.Fatalf("unknown id: code=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestThicknessRoutes(t *testing.T) {
	e := newTestEnv(t)
	id := e.createConsole(t)
	base := "/api/consoles/" + id

	rec := e.do(t, http.MethodPost, base+"/thickness", `{"row":3,"col":"g1","value":"6"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("input: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	var res struct {
		Outcome string `json:"outcome"`
		Changed bool   `json:"changed"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode input: %v", err)
	}
	if res.Outcome != "accepted" || !res.Changed {
		t.Fatalf("input result: got %+v", res)
	}

	rec = e.do(t, http.MethodPost, base+"/thickness", `{"row":3,"col":"X9","value":"6"}`)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "invalid_column" {
		t.Fatalf("bad column: code=%d body=%s", rec.Code, rec.Body.String())
	}
	rec = e.do(t, http.MethodPost, base+"/thickness", `{"row":99,"col":"G1","value":"6"}`)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "cell_out_of_grid" {
		t.Fatalf("out of grid: code=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = e.do(t, http.MethodGet, base+"/navigate?row=3&col=G1", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"found":true`) {
		t.Fatalf("navigate: code=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = e.do(t, http.MethodDelete, base+"/thickness/3/G1", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"removed":true`) {
		t.Fatalf("remove: code=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestStoppageAndChecklistRoutes(t *testing.T) {
	e := newTestEnv(t)
	id := e.createConsole(t)
	base := "/api/consoles/" + id

	rec := e.do(t, http.MethodPost, base+"/stoppages", `{"reason":"Maintenance","duration":0}`)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "bad_stoppage_duration" {
		t.Fatalf("bad duration: code=%d body=%s", rec.Code, rec.Body.String())
	}
	rec = e.do(t, http.MethodPost, base+"/stoppages", `{"reason":"Maintenance","duration":15}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("declare: want=201 got=%d body=%s", rec.Code, rec.Body.String())
	}
	var entry domain.LostTimeEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	rec = e.do(t, http.MethodDelete, base+"/stoppages/"+entry.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("remove: want=204 got=%d body=%s", rec.Code, rec.Body.String())
	}
	rec = e.do(t, http.MethodDelete, base+"/stoppages/"+entry.ID, "")
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "stoppage_not_found" {
		t.Fatalf("remove twice: code=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = e.do(t, http.MethodPut, base+"/checklist/items/abc", `{"value":"ok"}`)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "invalid_item_id" {
		t.Fatalf("bad item id: code=%d body=%s", rec.Code, rec.Body.String())
	}
	rec = e.do(t, http.MethodPut, base+"/checklist/items/999999", `{"value":"ok"}`)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "unknown_checklist_item" {
		t.Fatalf("unknown item: code=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestSaveRollRefusedOnIncompleteRoll(t *testing.T) {
	e := newTestEnv(t)
	id := e.createConsole(t)

	rec := e.do(t, http.MethodPost, "/api/consoles/"+id+"/summary/save", "")
	if rec.Code != http.StatusUnprocessableEntity || errorCode(t, rec) != "save_disabled" {
		t.Fatalf("save: code=%d body=%s", rec.Code, rec.Body.String())
	}
	rec = e.do(t, http.MethodGet, "/api/consoles/"+id+"/kpi", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("kpi: want=200 got=%d", rec.Code)
	}
}

func TestCloseConsole(t *testing.T) {
	e := newTestEnv(t)
	id := e.createConsole(t)

	if rec := e.do(t, http.MethodDelete, "/api/consoles/"+id, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("close: want=204 got=%d", rec.Code)
	}
	if rec := e.do(t, http.MethodGet, "/api/consoles/"+id, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("after close: want=404 got=%d", rec.Code)
	}
	if e.registry.Len() != 0 {
		t.Fatalf("registry: want=0 got=%d", e.registry.Len())
	}
}

func TestManagementRoutes(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodGet, "/api/management/dashboard", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"pendingChecklists"`) {
		t.Fatalf("dashboard: code=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = e.do(t, http.MethodPost, "/api/management/checklists/7/sign", `{"visa":"a"}`)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "bad_visa" {
		t.Fatalf("short visa: code=%d body=%s", rec.Code, rec.Body.String())
	}
	rec = e.do(t, http.MethodPost, "/api/management/checklists/7/sign", `{"visa":" jd "}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("sign: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	if e.api.signed[7] != "JD" {
		t.Fatalf("visa sent: want=JD got=%q", e.api.signed[7])
	}

	rec = e.do(t, http.MethodPost, "/api/management/checklists/sign-all",
		`{"requests":[{"id":8,"visa":"ab"},{"id":404,"visa":"cd"},{"id":9,"visa":""}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("sign-all: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	var out struct {
		Results []checklist.SignResult    `json:"results"`
		Pending []domain.PendingChecklist `json:"pending"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode sign-all: %v", err)
	}
	if len(out.Results) != 2 || !out.Results[0].OK || out.Results[1].OK {
		t.Fatalf("results: got %+v", out.Results)
	}
	if len(out.Pending) != 1 || out.Pending[0].ID != 9 {
		t.Fatalf("pending after sign-all: got %+v", out.Pending)
	}
}

func TestConsoleStreamStartsWithState(t *testing.T) {
	e := newTestEnv(t)
	id := e.createConsole(t)

	srv := httptest.NewServer(e.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/consoles/"+id+"/stream", nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type: got %q", ct)
	}

	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	if !sc.Scan() {
		t.Fatalf("no event: %v", sc.Err())
	}
	if got := sc.Text(); got != "event: ConsoleState" {
		t.Fatalf("first line: want=%q got=%q", "event: ConsoleState", got)
	}
	if !sc.Scan() || !strings.HasPrefix(sc.Text(), "data: ") || !strings.Contains(sc.Text(), id) {
		t.Fatalf("state payload: got %q", sc.Text())
	}
	cancel()
}
