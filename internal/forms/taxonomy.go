package forms

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"wastetrack/internal/api"
)

var ErrNameRequired = errors.New("Name is required.")

// TaxonomyForm is the region and service form: both have a name and a description.
type TaxonomyForm struct {
	ID          string `form:"id"`
	Name        string `form:"name"`
	Description string `form:"description"`
}

func BindTaxonomy(c *gin.Context) (TaxonomyForm, error) {
	var f TaxonomyForm
	if err := c.ShouldBind(&f); err != nil {
		return f, err
	}
	f.ID = CoerceID(f.ID)
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)
	return f, nil
}

func (f TaxonomyForm) Validate() error {
	if f.Name == "" {
		return ErrNameRequired
	}
	return nil
}

// Editing: форма с id правит существующую запись.
func (f TaxonomyForm) Editing() bool { return f.ID != "" }

func (f TaxonomyForm) Input() api.TaxonomyInput {
	return api.TaxonomyInput{Name: f.Name, Description: f.Description}
}
