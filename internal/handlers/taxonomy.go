package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"wastetrack/internal/api"
	"wastetrack/internal/database"
	"wastetrack/internal/forms"
	"wastetrack/internal/models"
	"wastetrack/internal/session"
)

// ====== СПРАВОЧНИКИ: РЕГИОНЫ И УСЛУГИ ======

// catalog описывает один справочник; регионы и услуги устроены одинаково.
type catalog[T any] struct {
	entity string // "region"
	plural string // "regions"
	title  string
	path   string
	col    *api.Collection[T, api.TaxonomyInput]
	form   func(T) forms.TaxonomyForm
}

func (h *Handler) regions() catalog[models.Region] {
	return catalog[models.Region]{entity: database.EntityRegion, plural: "regions", title: "Manage Regions", path: "/admin/regions", col: h.api.Regions(), form: regionForm}
}

func (h *Handler) services() catalog[models.Service] {
	return catalog[models.Service]{entity: database.EntityService, plural: "services", title: "Manage Services", path: "/admin/services", col: h.api.Services(), form: serviceForm}
}

type catalogView struct {
	editID  string
	form    forms.TaxonomyForm
	message string
	errMsg  string
}

// renderCatalog всегда перечитывает список, поэтому после мутации он свежий.
func renderCatalog[T any](h *Handler, c *gin.Context, cat catalog[T], status int, v catalogView) {
	items := load(c, h.log, cat.plural, cat.col.List)
	// ?edit=<id> заполняет форму выбранной записью
	if v.editID != "" {
		for _, it := range items.Items {
			if f := cat.form(it); f.ID == v.editID {
				v.form = f
			}
		}
	}

	render(c, status, "taxonomy.html", gin.H{
		"title":   cat.title,
		"entity":  cat.entity,
		"path":    cat.path,
		"items":   items,
		"form":    v.form,
		"message": v.message,
		"error":   v.errMsg,
	})
}

func showCatalog[T any](h *Handler, c *gin.Context, cat catalog[T]) {
	renderCatalog(h, c, cat, http.StatusOK, catalogView{editID: forms.CoerceID(c.Query("edit"))})
}

func saveCatalog[T any](h *Handler, c *gin.Context, cat catalog[T]) {
	form, err := forms.BindTaxonomy(c)
	if err != nil {
		renderCatalog(h, c, cat, http.StatusBadRequest, catalogView{form: form, errMsg: "Invalid form data."})
		return
	}
	if err := form.Validate(); err != nil {
		renderCatalog(h, c, cat, http.StatusBadRequest, catalogView{form: form, errMsg: err.Error()})
		return
	}

	st := session.FromContext(c)
	ctx := c.Request.Context()
	var (
		id     int
		action string
	)
	if form.Editing() {
		id, _ = strconv.Atoi(form.ID)
		action = "update"
		err = cat.col.Update(ctx, st.Token, id, form.Input())
	} else {
		action = "create"
		id, err = cat.col.Create(ctx, st.Token, form.Input())
	}
	if err != nil {
		h.log.Warn().Err(err).Str("entity", cat.entity).Msg("save catalog entry")
		renderCatalog(h, c, cat, statusFor(err), catalogView{
			form:   form,
			errMsg: api.Message(err, fmt.Sprintf("Failed to save %s.", cat.entity)),
		})
		return
	}

	h.record(ctx, st, cat.entity, id, action, form.Name)
	renderCatalog(h, c, cat, http.StatusOK, catalogView{message: fmt.Sprintf("%s %sd successfully!", capitalize(cat.entity), action)})
}

func deleteCatalog[T any](h *Handler, c *gin.Context, cat catalog[T]) {
	id, ok := paramID(c)
	if !ok {
		notFound(c, capitalize(cat.entity)+" not found.")
		return
	}

	st := session.FromContext(c)
	if err := cat.col.Remove(c.Request.Context(), st.Token, id); err != nil {
		h.log.Warn().Err(err).Str("entity", cat.entity).Int("id", id).Msg("delete catalog entry")
		renderCatalog(h, c, cat, statusFor(err), catalogView{
			errMsg: api.Message(err, fmt.Sprintf("Failed to delete %s.", cat.entity)),
		})
		return
	}

	h.record(c.Request.Context(), st, cat.entity, id, "delete", "")
	renderCatalog(h, c, cat, http.StatusOK, catalogView{message: capitalize(cat.entity) + " deleted successfully!"})
}

func (h *Handler) record(ctx context.Context, st session.State, entity string, id int, action, details string) {
	if st.User == nil {
		return
	}
	h.journal.Record(ctx, *st.User, entity, id, action, details)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// --- Регионы

func regionForm(r models.Region) forms.TaxonomyForm {
	return forms.TaxonomyForm{ID: strconv.Itoa(r.ID), Name: r.Name, Description: r.Description}
}

func (h *Handler) ListRegions(c *gin.Context)  { showCatalog(h, c, h.regions()) }
func (h *Handler) SaveRegion(c *gin.Context)   { saveCatalog(h, c, h.regions()) }
func (h *Handler) DeleteRegion(c *gin.Context) { deleteCatalog(h, c, h.regions()) }

// --- Услуги

func serviceForm(s models.Service) forms.TaxonomyForm {
	return forms.TaxonomyForm{ID: strconv.Itoa(s.ID), Name: s.Name, Description: s.Description}
}

func (h *Handler) ListServices(c *gin.Context)  { showCatalog(h, c, h.services()) }
func (h *Handler) SaveService(c *gin.Context)   { saveCatalog(h, c, h.services()) }
func (h *Handler) DeleteService(c *gin.Context) { deleteCatalog(h, c, h.services()) }
