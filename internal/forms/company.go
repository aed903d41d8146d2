// Package forms binds and validates the HTML forms of the web interface.
// A form keeps exactly what the visitor submitted so a failed submit can be
// re-rendered without losing input.
package forms

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"wastetrack/internal/api"
	"wastetrack/internal/models"
)

type companyFields struct {
	Name        string   `form:"name"`
	Description string   `form:"description"`
	Email       string   `form:"email"`
	Phone       string   `form:"phone"`
	Status      string   `form:"status"`
	RegionID    string   `form:"region_id"`
	Services    []string `form:"services"`
}

// CompanyForm — общая форма создания и редактирования компании.
type CompanyForm struct {
	Name        string
	Description string
	Email       string
	Phone       string
	Status      string
	// RegionID пустой или десятичный id региона.
	RegionID   string
	ServiceIDs []int
}

// BindCompany returns whatever part of the form was read even when binding fails,
// so the page can be shown again with the visitor's input.
func BindCompany(c *gin.Context) (CompanyForm, error) {
	var raw companyFields
	if err := c.ShouldBind(&raw); err != nil {
		// тело разобрано частично: берём то, что успело попасть в PostForm
		return companyFieldsFrom(c.Request.PostForm).form(), err
	}
	return raw.form(), nil
}

func companyFieldsFrom(v url.Values) companyFields {
	return companyFields{
		Name:        v.Get("name"),
		Description: v.Get("description"),
		Email:       v.Get("email"),
		Phone:       v.Get("phone"),
		Status:      v.Get("status"),
		RegionID:    v.Get("region_id"),
		Services:    v["services"],
	}
}

func (raw companyFields) form() CompanyForm {
	return CompanyForm{
		Name:        strings.TrimSpace(raw.Name),
		Description: strings.TrimSpace(raw.Description),
		Email:       strings.TrimSpace(raw.Email),
		Phone:       strings.TrimSpace(raw.Phone),
		Status:      strings.TrimSpace(raw.Status),
		RegionID:    CoerceID(raw.RegionID),
		ServiceIDs:  IDs(raw.Services),
	}
}

// CompanyFormFrom prefills the edit form from the stored company.
func CompanyFormFrom(co models.Company) CompanyForm {
	f := CompanyForm{
		Name:        co.Name,
		Description: co.Description,
		Email:       co.Email,
		Phone:       co.Phone,
		Status:      string(co.Status),
		ServiceIDs:  co.ServiceIDs(),
	}
	if id := co.RegionID(); id > 0 {
		f.RegionID = strconv.Itoa(id)
	}
	return f
}

// Payload: пустой статус не отправляется, API тогда ставит pending.
func (f CompanyForm) Payload() api.CompanyInput {
	in := api.CompanyInput{
		Name:        f.Name,
		Description: f.Description,
		Email:       f.Email,
		Phone:       f.Phone,
		Status:      models.CompanyStatus(f.Status),
		Services:    f.ServiceIDs,
	}
	if in.Services == nil {
		in.Services = []int{}
	}
	if id, err := strconv.Atoi(f.RegionID); err == nil && id > 0 {
		in.RegionID = &id
	}
	return in
}

func (f CompanyForm) HasRegion(id int) bool {
	return f.RegionID != "" && f.RegionID == strconv.Itoa(id)
}

func (f CompanyForm) HasService(id int) bool {
	return slices.Contains(f.ServiceIDs, id)
}

// CoerceID returns s as a canonical positive decimal id, or "".
func CoerceID(s string) string {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// IDs drops everything that is not a positive integer and keeps the order.
func IDs(vals []string) []int {
	out := make([]int, 0, len(vals))
	for _, v := range vals {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n <= 0 || slices.Contains(out, n) {
			continue
		}
		out = append(out, n)
	}
	return out
}
