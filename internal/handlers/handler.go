package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"wastetrack/internal/api"
	"wastetrack/internal/database"
	"wastetrack/internal/session"
	"wastetrack/internal/workflow"
)

type Deps struct {
	API       *api.Client
	Sessions  *session.Store
	Approvals *workflow.Approvals
	Journal   *database.Journal
	Log       zerolog.Logger
}

// Handler держит зависимости страниц; общий на все запросы.
type Handler struct {
	api       *api.Client
	sessions  *session.Store
	approvals *workflow.Approvals
	journal   *database.Journal
	log       zerolog.Logger
}

func New(d Deps) *Handler {
	return &Handler{
		api:       d.API,
		sessions:  d.Sessions,
		approvals: d.Approvals,
		journal:   d.Journal,
		log:       d.Log.With().Str("component", "handlers").Logger(),
	}
}

// Loaded is a list fetched for one page together with its own load error.
type Loaded[T any] struct {
	Items []T
	Error string
}

func (l Loaded[T]) Empty() bool { return l.Error == "" && len(l.Items) == 0 }

// load fetches a list for the page; a failure becomes a message on that page only.
func load[T any](c *gin.Context, log zerolog.Logger, what string, fetch func(context.Context) ([]T, error)) Loaded[T] {
	items, err := fetch(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Str("resource", what).Msg("load failed")
		return Loaded[T]{Error: fmt.Sprintf("Failed to load %s.", what)}
	}
	return Loaded[T]{Items: items}
}

func paramID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	return id, err == nil && id > 0
}

// statusFor: клиентские ошибки API отдаём тем же кодом, остальное 502.
func statusFor(err error) int {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		return apiErr.Status
	}
	return http.StatusBadGateway
}

func notFound(c *gin.Context, msg string) {
	render(c, http.StatusNotFound, "not_found.html", gin.H{"message": msg})
}
