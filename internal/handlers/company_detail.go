package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wastetrack/internal/api"
	"wastetrack/internal/database"
	"wastetrack/internal/session"
)

// детальная карточка компании
func (h *Handler) ShowCompany(c *gin.Context) {
	h.showCompany(c, http.StatusOK, "")
}

func (h *Handler) showCompany(c *gin.Context, status int, msg string) {
	id, ok := paramID(c)
	if !ok {
		notFound(c, "Company not found.")
		return
	}

	co, err := h.api.Companies().Get(c.Request.Context(), id)
	if err != nil {
		if api.IsNotFound(err) {
			notFound(c, "Company not found.")
			return
		}
		h.log.Error().Err(err).Int("company_id", id).Msg("load company")
		render(c, http.StatusBadGateway, "company_detail.html", gin.H{"fatal": "Failed to load company details."})
		return
	}

	st := session.FromContext(c)
	render(c, status, "company_detail.html", gin.H{
		"company":   co,
		"canManage": st.IsAdmin(),
		"canEdit":   st.IsAdmin() || st.IsCollector(),
		"error":     msg,
	})
}

func (h *Handler) DeleteCompany(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		notFound(c, "Company not found.")
		return
	}

	st := session.FromContext(c)
	if err := h.api.Companies().Remove(c.Request.Context(), st.Token, id); err != nil {
		if api.IsNotFound(err) {
			notFound(c, "Company not found.")
			return
		}
		h.log.Warn().Err(err).Int("company_id", id).Msg("delete company")
		h.showCompany(c, statusFor(err), api.Message(err, "An unexpected error occurred during deletion."))
		return
	}

	h.journal.Record(c.Request.Context(), *st.User, database.EntityCompany, id, "delete", "")

	c.Redirect(http.StatusFound, "/companies")
}
