package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	consoles func() int
}

// NewHealthHandler reports the number of open consoles when openConsoles is
// set.
func NewHealthHandler(openConsoles func() int) *HealthHandler {
	return &HealthHandler{consoles: openConsoles}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	if h.consoles == nil {
		c.String(http.StatusOK, "ok")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "consoles": h.consoles()})
}
