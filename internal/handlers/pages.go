package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wastetrack/internal/models"
)

func approvedOnly(all []models.Company) []models.Company {
	out := make([]models.Company, 0, len(all))
	for _, co := range all {
		if co.Status == models.StatusApproved {
			out = append(out, co)
		}
	}
	return out
}

// ГЛАВНАЯ

func (h *Handler) Index(c *gin.Context) {
	companies := load(c, h.log, "companies", h.api.Companies().List)

	render(c, http.StatusOK, "index.html", gin.H{
		"approvedCount": len(approvedOnly(companies.Items)),
		"loadError":     companies.Error,
	})
}

// ДАШБОРДЫ

func (h *Handler) CollectorDashboard(c *gin.Context) {
	companies := load(c, h.log, "companies", h.api.Companies().List)
	companies.Items = approvedOnly(companies.Items)

	render(c, http.StatusOK, "collector_dashboard.html", gin.H{"companies": companies})
}

func (h *Handler) UserDashboard(c *gin.Context) {
	companies := load(c, h.log, "companies", h.api.Companies().List)
	companies.Items = approvedOnly(companies.Items)
	regions := load(c, h.log, "regions", h.api.Regions().List)

	render(c, http.StatusOK, "user_dashboard.html", gin.H{
		"companies": companies,
		"regions":   regions,
	})
}

// СЛУЖЕБНЫЕ

func (h *Handler) Forbidden(c *gin.Context) {
	render(c, http.StatusForbidden, "forbidden.html", nil)
}

func (h *Handler) NotFound(c *gin.Context) {
	notFound(c, "Page not found.")
}
