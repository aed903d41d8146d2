package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const journalLimit = 200

// журнал решений (только admin)
func (h *Handler) ListJournal(c *gin.Context) {
	logs, err := h.journal.Recent(c.Request.Context(), journalLimit)
	errMsg := ""
	if err != nil {
		h.log.Error().Err(err).Msg("read journal")
		errMsg = "Failed to load the journal."
	}

	render(c, http.StatusOK, "audit_list.html", gin.H{
		"logs":    logs,
		"enabled": h.journal.Enabled(),
		"error":   errMsg,
	})
}
