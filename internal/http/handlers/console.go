package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tissage-sgq/shiftconsole/internal/console"
	"github.com/tissage-sgq/shiftconsole/internal/domain"
	"github.com/tissage-sgq/shiftconsole/internal/http/response"
	"github.com/tissage-sgq/shiftconsole/internal/modules/order"
	"github.com/tissage-sgq/shiftconsole/internal/modules/quality"
	"github.com/tissage-sgq/shiftconsole/internal/modules/shift"
	"github.com/tissage-sgq/shiftconsole/internal/modules/stoppage"
	"github.com/tissage-sgq/shiftconsole/internal/modules/summary"
	"github.com/tissage-sgq/shiftconsole/internal/platform/logger"
	"github.com/tissage-sgq/shiftconsole/internal/services"
)

type ConsoleHandler struct {
	log      *logger.Logger
	registry services.ConsoleRegistry
}

func NewConsoleHandler(log *logger.Logger, registry services.ConsoleRegistry) *ConsoleHandler {
	return &ConsoleHandler{
		log:      log.With("handler", "ConsoleHandler"),
		registry: registry,
	}
}

// console resolves the :id console, answering the error itself when it fails.
func (h *ConsoleHandler) console(c *gin.Context) (*console.Console, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_console_id", err)
		return nil, false
	}
	con, err := h.registry.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, classify(err))
		return nil, false
	}
	return con, true
}

// cell reads the :row/:col path params.
func cell(c *gin.Context) (int, domain.Column, bool) {
	row, err := strconv.Atoi(c.Param("row"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_row", err)
		return 0, "", false
	}
	col, err := domain.ParseColumn(c.Param("col"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_column", err)
		return 0, "", false
	}
	return row, col, true
}

// positiveParam reads a strictly positive integer path param.
func positiveParam(c *gin.Context, name, code string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err == nil && n <= 0 {
		err = fmt.Errorf("%s must be positive", name)
	}
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, code, err)
		return 0, false
	}
	return n, true
}

func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return false
	}
	return true
}

// POST /api/consoles
func (h *ConsoleHandler) Create(c *gin.Context) {
	var req struct {
		SessionKey string `json:"sessionKey"`
	}
	if !bind(c, &req) {
		return
	}
	con, err := h.registry.Create(c.Request.Context(), strings.TrimSpace(req.SessionKey))
	if err != nil {
		h.log.Error("console create failed", "error", err)
		response.RespondErr(c, classify(err))
		return
	}
	response.RespondCreated(c, con.State())
}

// GET /api/consoles/:id
func (h *ConsoleHandler) Get(c *gin.Context) {
	con, ok := h.console(c)
	if !ok {
		return
	}
	response.RespondOK(c, con.State())
}

// DELETE /api/consoles/:id
func (h *ConsoleHandler) Close(c *gin.Context) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_console_id", err)
		return
	}
	if err := h.registry.Close(c.Request.Context(), id); err != nil {
		response.RespondErr(c, classify(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/consoles/:id/thickness
func (h *ConsoleHandler) InputThickness(c *gin.Context) {
	con, ok := h.console(c)
	if !ok {
		return
	}
	var req struct {
		Row   int    `json:"row"`
		Col   string `json:"col"`
		Value string `json:"value"`
	}
	if !bind(c, &req) {
		return
	}
	col, err := domain.ParseColumn(req.Col)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_column", err)
		return
	}
	res, err := con.InputThickness(req.Row, col, req.Value)
	if err != nil {
		response.RespondErr(c, classify(err))
		return
	}
	response.RespondOK(c, res)
}

// DELETE /api/consoles/:id/thickness/:row/:col
func (h *ConsoleHandler) RemoveThickness(c *gin.Context) {
	con, ok := h.console(c)
	if !ok {
		return
	}
	row, col, ok := cell(c)
	if !ok {
		return
	}
	removed, err := con.RemoveThickness(row, col)
	if err != nil {
		response.RespondErr(c, classify(err))
		return
	}
	response.RespondOK(c, gin.H{"removed": removed})
}

// DELETE /api/consoles/:id/rejects/:row/:col
func (h *ConsoleHandler) RemoveNokBadge(c *gin.Context) {
	con, ok := h.console(c)
	if !ok {
		return
	}
	row, col, ok := cell(c)
	if !ok {
		return
	}
	removed, err := con.RemoveNokBadge(row, col)
	if err != nil {
		response.RespondErr(c, classify(err))
		return
	}
	response.RespondOK(c, gin.H{"removed": removed})
}

// POST /api/consoles/:id/defects
func (h *ConsoleHandler) AddDefect(c *gin.Context) {
	con, ok := h.console(c)
	if !ok {
		return
	}
	var req struct {
		Row    int    `json:"row"`
		Col    string `json:"col"`
		TypeID int    `json:"typeId"`
	}
	if !bind(c, &req) {
		return
	}
	col, err := domain.ParseColumn(req.Col)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_column", err)
		return
	}
	d, err := con.AddDefect(req.Row, col, req.TypeID)
	if err != nil {
		response.RespondErr(c, classify(err))
		return
	}
	response.RespondCreated(c, d)
}

// DELETE /api/consoles/:id/defects/:row/:col
func (h *ConsoleHandler) RemoveDefect(c *gin.Context) {
	con, ok := h.console(c)
	if !ok {
		return
	}
	row, col, ok := cell(c)
	if !ok {
		return
	}
	removed, err := con.RemoveDefect(row, col)
	if err != nil {
		response.RespondErr(c, classify(err))
		return
	}
	response.RespondOK(c, gin.H{"removed": removed})
}

// GET /api/consoles/:id/navigate?row=&col=&reverse=
func (h *ConsoleHandler) Navigate(c *gin.Context) {
	con, ok := h.console(c)
	if !ok {
		return
	}
	row, err := strconv.Atoi(c.Query("row"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_row", err)
		return
	}
	col, err := domain.ParseColumn(c.Query("col"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_column", err)
		return
	}
	reverse, _ := strconv.ParseBool(c.DefaultQuery("reverse", "false"))
	next, found := con.NextCell(row, col, reverse)
	if !found {
		response.RespondOK(c, gin.H{"found": false})
		return
	}
	response.RespondOK(c, gin.H{"found": true, "cell": next})
}

// PATCH /api/consoles/:id/quality
func (h *ConsoleHandler) PatchQuality(c *gin.Context) {
	con, ok := h.console(c)
	if !ok {
		return
	}
	var p quality.Patch
	if !bind(c, &p) {
		return
	}
	qc, err := con.PatchQuality(p)
	if err != nil {
		response.RespondErr(c, classify(err))
		return
	}
	response.RespondOK(c, qc)
}

// PATCH /api/consoles/:id/shift
func (h *ConsoleHandler) PatchShift(c *gin.Context) {
	con, ok := h.console(c)
	if !ok {
		return
	}
	var p shift.Patch
	if !bind(c, &p) {
		return
	}
	f, err := con.PatchShift(p)
	if err != nil {
		response.RespondErr(c, classify(err))
		return
	}
	response.RespondOK(c, f)
}

// GET /api/consoles/:id/shift/save-action
func (h *ConsoleHandler) ShiftSaveAction(c *gin.Context) {
	con, ok := h.console(c)
	if !ok {
		return
	}
	response.RespondOK(c, con.ShiftSaveAction(c.Request.Context()))
}

// PATCH /api/consoles/:id/order
func (h *ConsoleHandler) PatchOrder(c *gin.Context) {
	con, ok := h.console(c)
	if !ok {
		return
	}
	var p order.Patch
	if !bind(c, &p) {
		return
	}
	f, err := con.PatchOrder(c.Request.Context(), p)
	if err != nil {
		response.RespondErr(c, classify(err))
		return
	}
	response.RespondOK(c, f)
}

// PUT /api/consoles/:id/profile
func (h *ConsoleHandler) SelectProfile(c *gin.Context) {
	con, ok := h.console(c)
	if !ok {
		return
	}
	var req struct {
		ProfileID int `json:"profileId"`
	}
	if !bind(c, &req) {
		return
	}
	p, err := con.SelectProfile(c.Request.Context(), req.ProfileID)
	if err != nil {
		response.RespondErr(c, classify(err))
		return
	}
	response.RespondOK(c, gin.H{"profile": p})
}

// POST /api/consoles/:id/profile/modes/:modeId/toggle
func (h *ConsoleHandler) ToggleMode(c *gin.Context) {
	con, ok := h.console(c)
	if !ok {
		return
	}
	modeID, ok := positiveParam(c, "modeId", "invalid_mode_id")
	if !ok {
		return
	}
	m, err := con.ToggleMode(c.Request.Context(), modeID)
	if err != nil {
		response.RespondErr(c, classify(err))
		return
	}
	response.RespondOK(c, m)
}

// POST /api/consoles/:id/stoppages
func (h *ConsoleHandler) DeclareStoppage(c *gin.Context) {
	con, ok := h.console(c)
	if !ok {
		return
	}
	var d stoppage.Declaration
	if !bind(c, &d) {
		return
	}
	e, err := con.DeclareStoppage(c.Request.Context(), d)
	if err != nil {
		response.RespondErr(c, classify(err))
		return
	}
	response.RespondCreated(c, e)
}

// DELETE /api/consoles/:id/stoppages/:entryId
func (h *ConsoleHandler) RemoveStoppage(c *gin.Context) {
	con, ok := h.console(c)
	if !ok {
		return
	}
	if err := con.RemoveStoppage(c.Request.Context(), c.Param("entryId")); err != nil {
		response.RespondErr(c, classify(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// PUT /api/consoles/:id/checklist/items/:itemId
func (h *ConsoleHandler) AnswerChecklist(c *gin.Context) {
	con, ok := h.console(c)
	if !ok {
		return
	}
	itemID, err := strconv.Atoi(c.Param("itemId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_item_id", err)
		return
	}
	var req struct {
		Value string `json:"value"`
	}
	if !bind(c, &req) {
		return
	}
	f, err := con.AnswerChecklist(itemID, req.Value)
	if err != nil {
		response.RespondErr(c, classify(err))
		return
	}
	response.RespondOK(c, f)
}

// PUT /api/consoles/:id/checklist/signature
func (h *ConsoleHandler) SignChecklist(c *gin.Context) {
	con, ok := h.console(c)
	if !ok {
		return
	}
	var req struct {
		Signature string `json:"signature"`
	}
	if !bind(c, &req) {
		return
	}
	f, err := con.SignChecklist(c.Request.Context(), req.Signature)
	if err != nil {
		response.RespondErr(c, classify(err))
		return
	}
	response.RespondOK(c, f)
}

// PATCH /api/consoles/:id/summary
func (h *ConsoleHandler) PatchSummary(c *gin.Context) {
	con, ok := h.console(c)
	if !ok {
		return
	}
	var p summary.Patch
	if !bind(c, &p) {
		return
	}
	f, err := con.PatchSummary(c.Request.Context(), p)
	if err != nil {
		response.RespondErr(c, classify(err))
		return
	}
	response.RespondOK(c, gin.H{"summary": f, "preview": con.RollPreview()})
}

// GET /api/consoles/:id/summary/roll-id
func (h *ConsoleHandler) CheckRollID(c *gin.Context) {
	con, ok := h.console(c)
	if !ok {
		return
	}
	status := con.CheckRollID(c.Request.Context())
	response.RespondOK(c, gin.H{"status": status, "preview": con.RollPreview()})
}

// POST /api/consoles/:id/summary/save
func (h *ConsoleHandler) SaveRoll(c *gin.Context) {
	con, ok := h.console(c)
	if !ok {
		return
	}
	var req struct {
		Comment string `json:"comment"`
	}
	if c.Request.ContentLength != 0 && !bind(c, &req) {
		return
	}
	rec, err := con.SaveRoll(c.Request.Context(), req.Comment)
	if err != nil {
		h.log.Warn("roll save failed", "console_id", con.ID().String(), "error", err)
		response.RespondErr(c, classify(err))
		return
	}
	response.RespondCreated(c, rec)
}

// GET /api/consoles/:id/kpi
func (h *ConsoleHandler) KPI(c *gin.Context) {
	con, ok := h.console(c)
	if !ok {
		return
	}
	response.RespondOK(c, con.KPI())
}
