package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/tissage-sgq/shiftconsole/internal/http/handlers"
	httpMW "github.com/tissage-sgq/shiftconsole/internal/http/middleware"
	"github.com/tissage-sgq/shiftconsole/internal/observability"
	"github.com/tissage-sgq/shiftconsole/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	ConsoleHandler    *httpH.ConsoleHandler
	ManagementHandler *httpH.ManagementHandler
	RealtimeHandler   *httpH.RealtimeHandler
	HealthHandler     *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.Metrics(cfg.Metrics))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")

	// Consoles
	if h := cfg.ConsoleHandler; h != nil {
		api.POST("/consoles", h.Create)
		con := api.Group("/consoles/:id")
		{
			con.GET("", h.Get)
			con.DELETE("", h.Close)

			// Roll grid
			con.POST("/thickness", h.InputThickness)
			con.DELETE("/thickness/:row/:col", h.RemoveThickness)
			con.DELETE("/rejects/:row/:col", h.RemoveNokBadge)
			con.POST("/defects", h.AddDefect)
			con.DELETE("/defects/:row/:col", h.RemoveDefect)
			con.GET("/navigate", h.Navigate)

			// Forms
			con.PATCH("/quality", h.PatchQuality)
			con.PATCH("/shift", h.PatchShift)
			con.GET("/shift/save-action", h.ShiftSaveAction)
			con.PATCH("/order", h.PatchOrder)
			con.PUT("/profile", h.SelectProfile)
			con.POST("/profile/modes/:modeId/toggle", h.ToggleMode)

			// Stoppages and checklist
			con.POST("/stoppages", h.DeclareStoppage)
			con.DELETE("/stoppages/:entryId", h.RemoveStoppage)
			con.PUT("/checklist/items/:itemId", h.AnswerChecklist)
			con.PUT("/checklist/signature", h.SignChecklist)

			// Summary
			con.PATCH("/summary", h.PatchSummary)
			con.GET("/summary/roll-id", h.CheckRollID)
			con.POST("/summary/save", h.SaveRoll)
			con.GET("/kpi", h.KPI)
		}
	}

	// Realtime (SSE)
	if cfg.RealtimeHandler != nil {
		api.GET("/consoles/:id/stream", cfg.RealtimeHandler.ConsoleStream)
		api.GET("/management/stream", cfg.RealtimeHandler.ManagementStream)
	}

	// Management
	if h := cfg.ManagementHandler; h != nil {
		api.GET("/management/dashboard", h.Dashboard)
		api.POST("/management/checklists/:id/sign", h.Sign)
		api.POST("/management/checklists/sign-all", h.SignAll)
	}

	return r
}
