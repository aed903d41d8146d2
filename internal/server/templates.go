package server

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"wastetrack/internal/models"
	"wastetrack/web"
)

func statusClass(s models.CompanyStatus) string {
	switch s {
	case models.StatusApproved:
		return "status-approved"
	case models.StatusRejected:
		return "status-rejected"
	default:
		return "status-pending"
	}
}

func upper(v any) string {
	return strings.ToUpper(fmt.Sprint(v))
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}

// fieldsOf готовит данные для partial "company_fields" с нужным disabled.
func fieldsOf(data gin.H, disabled bool) gin.H {
	return gin.H{
		"form":     data["form"],
		"regions":  data["regions"],
		"services": data["services"],
		"disabled": disabled,
	}
}

func loadTemplates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"statusClass": statusClass,
		"upper":       upper,
		"fmtTime":     fmtTime,
		"fieldsOf":    fieldsOf,
	}).ParseFS(web.Templates, "templates/*.html")
}
