package server

import (
	"fmt"
	"io/fs"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"wastetrack/internal/config"
	"wastetrack/internal/handlers"
	"wastetrack/internal/middleware"
	"wastetrack/internal/models"
	"wastetrack/web"
)

const sessionCookie = "wastetrack_session"

func NewRouter(cfg *config.Config, deps handlers.Deps) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(deps.Log))

	tmpl, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}
	r.StaticFS("/static", http.FS(static))

	// HEALTHCHECK — без сессии
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionCookie, store))
	r.Use(middleware.InjectSession(deps.Sessions))

	h := handlers.New(deps)

	// ГЛАВНАЯ
	r.GET("/", h.Index)
	r.GET("/forbidden", h.Forbidden)
	r.NoRoute(h.NotFound)

	// AUTH
	r.GET("/login", h.ShowLogin)
	r.POST("/login", h.Login)
	r.GET("/register", h.ShowRegister)
	r.POST("/register", h.Register)
	r.GET("/register-company", h.ShowRegisterCompany)
	r.POST("/register-company", h.RegisterCompany)
	r.GET("/logout", h.Logout)
	r.POST("/logout", h.Logout)

	// КОМПАНИИ (публичный каталог)
	r.GET("/companies", h.ListCompanies)

	// создание и редактирование: admin и collector, окончательно решает API
	editors := middleware.RequireRole(models.RoleAdmin, models.RoleCollector)
	r.GET("/companies/new", editors, h.ShowNewCompany)
	r.POST("/companies/new", editors, h.CreateCompany)
	r.GET("/companies/:id", h.ShowCompany)
	r.GET("/companies/:id/edit", editors, h.ShowEditCompany)
	r.POST("/companies/:id/edit", editors, h.UpdateCompany)
	r.POST("/companies/:id/delete", middleware.RequireRole(models.RoleAdmin), h.DeleteCompany)

	// ДАШБОРДЫ
	r.GET("/collector-dashboard", middleware.RequireRole(models.RoleCollector), h.CollectorDashboard)
	r.GET("/user-dashboard", middleware.RequireRole(models.RoleUser), h.UserDashboard)

	owner := r.Group("/my-company-dashboard", middleware.RequireRole(models.RoleCompanyOwner))
	owner.GET("", h.MyCompanyDashboard)
	owner.POST("", h.UpdateMyCompany)

	// ПРОФИЛЬ (любой вошедший)
	auth := r.Group("/", middleware.RequireAuth())
	auth.GET("/my-profile", h.ShowProfile)
	auth.POST("/my-profile", h.UpdateProfile)

	// АДМИНИСТРИРОВАНИЕ
	admin := r.Group("/", middleware.RequireRole(models.RoleAdmin))
	admin.GET("/admin-dashboard", h.AdminDashboard)
	admin.POST("/admin-dashboard/companies/:id/status", h.ChangeCompanyStatus)

	admin.GET("/admin/regions", h.ListRegions)
	admin.POST("/admin/regions", h.SaveRegion)
	admin.POST("/admin/regions/:id/delete", h.DeleteRegion)

	admin.GET("/admin/services", h.ListServices)
	admin.POST("/admin/services", h.SaveService)
	admin.POST("/admin/services/:id/delete", h.DeleteService)

	// АУДИТ
	admin.GET("/admin/audit", h.ListJournal)

	return r, nil
}
