package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/tissage-sgq/shiftconsole/internal/http/response"
	"github.com/tissage-sgq/shiftconsole/internal/modules/checklist"
	"github.com/tissage-sgq/shiftconsole/internal/modules/management"
	"github.com/tissage-sgq/shiftconsole/internal/platform/logger"
)

type ManagementHandler struct {
	log       *logger.Logger
	dashboard *management.Dashboard
	review    *checklist.Review
}

func NewManagementHandler(log *logger.Logger, dashboard *management.Dashboard, review *checklist.Review) *ManagementHandler {
	return &ManagementHandler{
		log:       log.With("handler", "ManagementHandler"),
		dashboard: dashboard,
		review:    review,
	}
}

// GET /api/management/dashboard[?refresh=1]
func (h *ManagementHandler) Dashboard(c *gin.Context) {
	if c.Query("refresh") == "1" {
		h.dashboard.Refresh(c.Request.Context())
	}
	response.RespondOK(c, h.dashboard.View())
}

// POST /api/management/checklists/:id/sign
func (h *ManagementHandler) Sign(c *gin.Context) {
	id, ok := positiveParam(c, "id", "invalid_checklist_id")
	if !ok {
		return
	}
	var req struct {
		Visa string `json:"visa"`
	}
	if !bind(c, &req) {
		return
	}
	if err := h.review.Sign(c.Request.Context(), id, req.Visa); err != nil {
		h.log.Warn("checklist visa failed", "checklist_id", id, "error", err)
		response.RespondErr(c, classify(err))
		return
	}
	h.dashboard.RemovePending(id)
	response.RespondOK(c, checklist.SignResult{ID: id, OK: true})
}

// POST /api/management/checklists/sign-all
func (h *ManagementHandler) SignAll(c *gin.Context) {
	var req struct {
		Requests []checklist.VisaRequest `json:"requests"`
	}
	if !bind(c, &req) {
		return
	}
	results := h.review.SignAll(c.Request.Context(), req.Requests)
	var signed []int
	for _, r := range results {
		if r.OK {
			signed = append(signed, r.ID)
		}
	}
	h.dashboard.RemovePending(signed...)
	h.log.Info("checklists signed", "requested", len(req.Requests), "signed", len(signed))
	response.RespondOK(c, gin.H{"results": results, "pending": h.dashboard.View().Pending})
}
