package shiftapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tissage-sgq/shiftconsole/internal/domain"
)

func (c *client) GetSession(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, "get_session", http.MethodGet, "/api/session/", nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// PatchSession merges patch into the server session and returns the merged state.
func (c *client) PatchSession(ctx context.Context, patch any) (json.RawMessage, error) {
	if patch == nil {
		return nil, opErr("patch_session", OperationErrorValidation, "patch required", nil)
	}
	var raw json.RawMessage
	if err := c.doJSON(ctx, "patch_session", http.MethodPatch, "/api/session/", patch, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *client) ListLostTimeReasons(ctx context.Context) ([]domain.LostTimeReason, error) {
	const op = "list_lost_time_reasons"
	raw, err := c.getList(ctx, op, "/api/lost-time-reasons/")
	if err != nil {
		return nil, err
	}
	return decodeList[domain.LostTimeReason](op, raw)
}

// lostTimeEntryWire is an entry as serialized by the server: reason is the
// catalog id and motif_name its label.
type lostTimeEntryWire struct {
	ID        json.RawMessage `json:"id"`
	Reason    json.RawMessage `json:"reason"`
	MotifName string          `json:"motif_name"`
	Comment   string          `json:"comment"`
	Duration  int             `json:"duration"`
	CreatedAt *time.Time      `json:"created_at"`
}

func (w lostTimeEntryWire) entry() domain.LostTimeEntry {
	e := domain.LostTimeEntry{
		ID:       decodeID(w.ID),
		Reason:   strings.TrimSpace(w.MotifName),
		Comment:  w.Comment,
		Duration: w.Duration,
	}
	if e.Reason == "" {
		var name string
		if json.Unmarshal(w.Reason, &name) == nil {
			e.Reason = name
		}
	}
	if w.CreatedAt != nil {
		e.CreatedAt = *w.CreatedAt
	}
	return e
}

func (c *client) ListLostTimeEntries(ctx context.Context, shiftID string) ([]domain.LostTimeEntry, error) {
	const op = "list_lost_time_entries"
	path := "/api/lost-time-entries/"
	if s := strings.TrimSpace(shiftID); s != "" {
		path += "?" + url.Values{"shift_id": {s}}.Encode()
	}
	raw, err := c.getList(ctx, op, path)
	if err != nil {
		return nil, err
	}
	wires, err := decodeList[lostTimeEntryWire](op, raw)
	if err != nil {
		return nil, err
	}
	out := make([]domain.LostTimeEntry, 0, len(wires))
	for _, w := range wires {
		out = append(out, w.entry())
	}
	return out, nil
}

func (c *client) CreateLostTimeEntry(ctx context.Context, in LostTimeEntryCreate) (domain.LostTimeEntry, error) {
	const op = "create_lost_time_entry"
	if in.ReasonID <= 0 {
		return domain.LostTimeEntry{}, opErr(op, OperationErrorValidation, "reason id required", nil)
	}
	if in.Duration <= 0 {
		return domain.LostTimeEntry{}, opErr(op, OperationErrorValidation, "duration must be positive", nil)
	}
	var w lostTimeEntryWire
	if err := c.doJSON(ctx, op, http.MethodPost, "/api/lost-time-entries/", in, &w); err != nil {
		return domain.LostTimeEntry{}, err
	}
	e := w.entry()
	if e.Reason == "" {
		e.Reason = fmt.Sprint(in.ReasonID)
	}
	return e, nil
}

func (c *client) DeleteLostTimeEntry(ctx context.Context, id string) error {
	const op = "delete_lost_time_entry"
	id = strings.TrimSpace(id)
	if id == "" {
		return opErr(op, OperationErrorValidation, "entry id required", nil)
	}
	return c.doJSON(ctx, op, http.MethodDelete, "/api/lost-time-entries/"+url.PathEscape(id)+"/", nil, nil)
}

func (c *client) DefaultChecklistTemplate(ctx context.Context) (domain.ChecklistTemplate, error) {
	var tpl domain.ChecklistTemplate
	if err := c.doJSON(ctx, "default_checklist_template", http.MethodGet, "/api/checklist-template-default/", nil, &tpl); err != nil {
		return domain.ChecklistTemplate{}, err
	}
	return tpl, nil
}

func (c *client) ListChecklistResponses(ctx context.Context, shiftID string) ([]domain.ChecklistResponse, error) {
	const op = "list_checklist_responses"
	path := "/api/checklist-responses/"
	if s := strings.TrimSpace(shiftID); s != "" {
		path += "?" + url.Values{"shift_id": {s}}.Encode()
	}
	raw, err := c.getList(ctx, op, path)
	if err != nil {
		return nil, err
	}
	return decodeList[domain.ChecklistResponse](op, raw)
}

func (c *client) SubmitChecklist(ctx context.Context, in domain.ChecklistResponse) (domain.ChecklistResponse, error) {
	const op = "submit_checklist"
	if strings.TrimSpace(in.ShiftID) == "" {
		return domain.ChecklistResponse{}, opErr(op, OperationErrorValidation, "shift id required", nil)
	}
	var out domain.ChecklistResponse
	if err := c.doJSON(ctx, op, http.MethodPost, "/api/checklist-responses/", in, &out); err != nil {
		return domain.ChecklistResponse{}, err
	}
	return out, nil
}

func (c *client) ListDefectTypes(ctx context.Context) ([]domain.DefectType, error) {
	const op = "list_defect_types"
	raw, err := c.getList(ctx, op, "/api/defect-types/")
	if err != nil {
		return nil, err
	}
	return decodeList[domain.DefectType](op, raw)
}

func (c *client) ListOperators(ctx context.Context) ([]domain.Operator, error) {
	const op = "list_operators"
	raw, err := c.getList(ctx, op, "/api/operators/")
	if err != nil {
		return nil, err
	}
	return decodeList[domain.Operator](op, raw)
}

func (c *client) ListProfiles(ctx context.Context) ([]domain.ProfileSummary, error) {
	const op = "list_profiles"
	raw, err := c.getList(ctx, op, "/api/profiles/")
	if err != nil {
		return nil, err
	}
	return decodeList[domain.ProfileSummary](op, raw)
}

func (c *client) GetProfile(ctx context.Context, id int) (*domain.Profile, error) {
	const op = "get_profile"
	if id <= 0 {
		return nil, opErr(op, OperationErrorValidation, "profile id required", nil)
	}
	var p domain.Profile
	if err := c.doJSON(ctx, op, http.MethodGet, "/api/profiles/"+strconv.Itoa(id)+"/", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *client) ActivateProfile(ctx context.Context, id int) error {
	const op = "activate_profile"
	if id <= 0 {
		return opErr(op, OperationErrorValidation, "profile id required", nil)
	}
	return c.doJSON(ctx, op, http.MethodPost, "/api/profiles/"+strconv.Itoa(id)+"/set_active/", struct{}{}, nil)
}

func (c *client) ListModes(ctx context.Context) ([]domain.Mode, error) {
	const op = "list_modes"
	raw, err := c.getList(ctx, op, "/api/modes/")
	if err != nil {
		return nil, err
	}
	return decodeList[domain.Mode](op, raw)
}

// ToggleMode flips a mode on the server and returns it in its new state.
func (c *client) ToggleMode(ctx context.Context, id int) (domain.Mode, error) {
	const op = "toggle_mode"
	if id <= 0 {
		return domain.Mode{}, opErr(op, OperationErrorValidation, "mode id required", nil)
	}
	var m domain.Mode
	if err := c.doJSON(ctx, op, http.MethodPost, "/api/modes/"+strconv.Itoa(id)+"/toggle/", struct{}{}, &m); err != nil {
		return domain.Mode{}, err
	}
	return m, nil
}

func (c *client) CreateRoll(ctx context.Context, in domain.RollCreate) (domain.RollRecord, error) {
	const op = "create_roll"
	if strings.TrimSpace(in.RollID) == "" {
		return domain.RollRecord{}, opErr(op, OperationErrorValidation, "roll id required", nil)
	}
	var out domain.RollRecord
	if err := c.doJSON(ctx, op, http.MethodPost, "/api/rolls/", in, &out); err != nil {
		return domain.RollRecord{}, err
	}
	if out.RollID == "" {
		out.RollID = in.RollID
	}
	if out.Status == "" {
		out.Status = in.Status
	}
	if !out.Length.Valid && in.Length != nil {
		out.Length = domain.NewNumber(*in.Length)
	}
	return out, nil
}

func (c *client) RollIDExists(ctx context.Context, rollID string) (bool, error) {
	const op = "check_roll_id"
	rollID = strings.TrimSpace(rollID)
	if rollID == "" {
		return false, opErr(op, OperationErrorValidation, "roll id required", nil)
	}
	var out struct {
		Exists bool `json:"exists"`
	}
	path := "/api/rolls/check-id/?" + url.Values{"roll_id": {rollID}}.Encode()
	if err := c.doJSON(ctx, op, http.MethodGet, path, nil, &out); err != nil {
		return false, err
	}
	return out.Exists, nil
}

// NextRollNumber is the first free roll number for an order, 1 when the server
// has none to suggest.
func (c *client) NextRollNumber(ctx context.Context, order string) (int, error) {
	const op = "next_roll_number"
	order = strings.TrimSpace(order)
	if order == "" {
		return 0, opErr(op, OperationErrorValidation, "order required", nil)
	}
	var out struct {
		NextNumber int `json:"next_number"`
	}
	path := "/api/rolls/next-number/?" + url.Values{"of": {order}}.Encode()
	if err := c.doJSON(ctx, op, http.MethodGet, path, nil, &out); err != nil {
		return 0, err
	}
	if out.NextNumber <= 0 {
		return 1, nil
	}
	return out.NextNumber, nil
}

func (c *client) ListShifts(ctx context.Context) ([]domain.ShiftSummary, error) {
	const op = "list_shifts"
	raw, err := c.getList(ctx, op, "/api/shifts/")
	if err != nil {
		return nil, err
	}
	return decodeList[domain.ShiftSummary](op, raw)
}

func (c *client) DashboardStats(ctx context.Context) (domain.DashboardStats, error) {
	var out domain.DashboardStats
	if err := c.doJSON(ctx, "dashboard_stats", http.MethodGet, "/management/api/dashboard-stats/", nil, &out); err != nil {
		return domain.DashboardStats{}, err
	}
	return out, nil
}

func (c *client) PendingChecklists(ctx context.Context) ([]domain.PendingChecklist, error) {
	const op = "pending_checklists"
	raw, err := c.getList(ctx, op, "/management/api/checklists/pending/")
	if err != nil {
		return nil, err
	}
	return decodeList[domain.PendingChecklist](op, raw)
}

func (c *client) SignChecklist(ctx context.Context, id int, visa string) error {
	const op = "sign_checklist"
	if id <= 0 {
		return opErr(op, OperationErrorValidation, "checklist id required", nil)
	}
	visa = strings.ToUpper(strings.TrimSpace(visa))
	if visa == "" {
		return opErr(op, OperationErrorValidation, "visa required", nil)
	}
	body := map[string]string{"visa": visa}
	return c.doJSON(ctx, op, http.MethodPost, "/management/api/checklists/"+strconv.Itoa(id)+"/sign/", body, nil)
}

func (c *client) RecentShiftReports(ctx context.Context, days, limit int) ([]domain.ShiftReport, error) {
	const op = "recent_shift_reports"
	if days <= 0 {
		days = 7
	}
	if limit <= 0 {
		limit = 10
	}
	q := url.Values{}
	q.Set("days", strconv.Itoa(days))
	q.Set("limit", strconv.Itoa(limit))
	raw, err := c.getList(ctx, op, "/management/api/shift-reports/recent/?"+q.Encode())
	if err != nil {
		return nil, err
	}
	return decodeList[domain.ShiftReport](op, raw)
}
