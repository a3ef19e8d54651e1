package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sony/gobreaker"
)

func (h *Handler) health(c *gin.Context) {
	if h.sessionState == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	state := h.sessionState()
	status := "ok"
	if state != gobreaker.StateClosed.String() {
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        status,
		"session_store": state,
	})
}
