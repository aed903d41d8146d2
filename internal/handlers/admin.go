package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"wastetrack/internal/models"
	"wastetrack/internal/session"
	"wastetrack/internal/workflow"
)

//
// ПАНЕЛЬ АДМИНИСТРАТОРА
//

func (h *Handler) AdminDashboard(c *gin.Context) {
	pending := load(c, h.log, "pending companies", h.approvals.ListPending)

	render(c, http.StatusOK, "admin_dashboard.html", gin.H{"pending": pending})
}

//
// СМЕНА СТАТУСА
//

func (h *Handler) ChangeCompanyStatus(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		notFound(c, "Company not found.")
		return
	}
	status := models.CompanyStatus(strings.TrimSpace(c.PostForm("status")))

	pending, err := h.approvals.SetStatus(c.Request.Context(), session.FromContext(c), id, status)
	switch {
	case err == nil:
		render(c, http.StatusOK, "admin_dashboard.html", gin.H{
			"pending": Loaded[models.Company]{Items: pending},
			"message": fmt.Sprintf("Company status updated to %s!", status),
		})

	case errors.Is(err, workflow.ErrStale):
		render(c, http.StatusOK, "admin_dashboard.html", gin.H{
			"pending": Loaded[models.Company]{Error: "Failed to load pending companies."},
			"error":   workflow.Message(err, status),
		})

	default:
		// решение не принято, показываем текущий список как есть
		code := statusFor(err)
		if errors.Is(err, workflow.ErrInvalidTransition) {
			code = http.StatusBadRequest
		}
		render(c, code, "admin_dashboard.html", gin.H{
			"pending": load(c, h.log, "pending companies", h.approvals.ListPending),
			"error":   workflow.Message(err, status),
		})
	}
}
