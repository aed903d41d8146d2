package forms

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wastetrack/internal/models"
)

func postContext(t *testing.T, values url.Values) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.Request = req
	return c
}

func TestBindCompany_KeepsInputOnMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	body := "name=GreenBin&email=info%40greenbin.test&region_id=3&services=2&description=%zz"
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.Request = req

	f, err := BindCompany(c)
	require.Error(t, err)

	assert.Equal(t, "GreenBin", f.Name)
	assert.Equal(t, "info@greenbin.test", f.Email)
	assert.Equal(t, "3", f.RegionID)
	assert.Equal(t, []int{2}, f.ServiceIDs)
}

func TestBindCompany_Coerces(t *testing.T) {
	c := postContext(t, url.Values{
		"name":      {"  GreenBin "},
		"email":     {"info@greenbin.test"},
		"region_id": {"007"},
		"services":  {"3", "x", "1", "3", "-2"},
	})

	f, err := BindCompany(c)
	require.NoError(t, err)

	assert.Equal(t, "GreenBin", f.Name)
	assert.Equal(t, "7", f.RegionID)
	assert.Equal(t, []int{3, 1}, f.ServiceIDs)
	assert.True(t, f.HasRegion(7))
	assert.True(t, f.HasService(1))
	assert.False(t, f.HasService(2))
}

func TestCoerceID(t *testing.T) {
	assert.Equal(t, "", CoerceID(""))
	assert.Equal(t, "", CoerceID("abc"))
	assert.Equal(t, "", CoerceID("0"))
	assert.Equal(t, "", CoerceID("-4"))
	assert.Equal(t, "12", CoerceID(" 12 "))
}

func TestPayload_StatusOmittedAndRegionNull(t *testing.T) {
	raw, err := json.Marshal(CompanyForm{Name: "GreenBin", Email: "e@x"}.Payload())
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.NotContains(t, body, "status")
	assert.Contains(t, body, "region_id")
	assert.Nil(t, body["region_id"])
	assert.Equal(t, []any{}, body["services"])
}

func TestPayload_WithValues(t *testing.T) {
	in := CompanyForm{Name: "GreenBin", Status: "approved", RegionID: "4", ServiceIDs: []int{2, 5}}.Payload()

	require.NotNil(t, in.RegionID)
	assert.Equal(t, 4, *in.RegionID)
	assert.Equal(t, models.StatusApproved, in.Status)
	assert.Equal(t, []int{2, 5}, in.Services)
}

func TestCompanyFormFrom(t *testing.T) {
	co := models.Company{
		Name:     "GreenBin",
		Status:   models.StatusRejected,
		Region:   &models.Region{ID: 3, Name: "North"},
		Services: []models.Service{{ID: 1}, {ID: 9}},
	}

	f := CompanyFormFrom(co)
	assert.Equal(t, "3", f.RegionID)
	assert.Equal(t, "rejected", f.Status)
	assert.Equal(t, []int{1, 9}, f.ServiceIDs)

	assert.Equal(t, "", CompanyFormFrom(models.Company{}).RegionID)
}

func TestCompanyRegistration_RegionRequired(t *testing.T) {
	c := postContext(t, url.Values{
		"username": {"owner"}, "password": {"pw"}, "user_email": {"o@x.test"},
		"name": {"GreenBin"}, "email": {"info@x.test"}, "phone": {"555"},
	})
	f, err := BindCompanyRegistration(c)
	require.NoError(t, err)
	assert.ErrorIs(t, f.Validate(), ErrRegistrationFields)

	f.Company.RegionID = "2"
	require.NoError(t, f.Validate())
	in := f.Input()
	assert.Equal(t, 2, in.RegionID)
	assert.Equal(t, "o@x.test", in.UserEmail)
	assert.Equal(t, []int{}, in.Services)
}

func TestLoginForm_Validate(t *testing.T) {
	assert.ErrorIs(t, LoginForm{Username: "admin"}.Validate(), ErrCredentialsRequired)
	assert.NoError(t, LoginForm{Username: "admin", Password: "x"}.Validate())
}

func TestTaxonomyForm(t *testing.T) {
	c := postContext(t, url.Values{"id": {"abc"}, "name": {"  "}, "description": {"d"}})
	f, err := BindTaxonomy(c)
	require.NoError(t, err)

	assert.False(t, f.Editing())
	assert.ErrorIs(t, f.Validate(), ErrNameRequired)

	f = TaxonomyForm{ID: "5", Name: "North"}
	assert.True(t, f.Editing())
	assert.Equal(t, "North", f.Input().Name)
}

func TestProfileForm_Changes(t *testing.T) {
	cur := models.User{Username: "jane", Email: "jane@x.test"}

	_, err := ProfileFormFrom(cur).Changes(cur)
	assert.ErrorIs(t, err, ErrNoChanges)

	_, err = ProfileForm{Username: "jane", Email: "jane@x.test", Password: "a", ConfirmPassword: "b"}.Changes(cur)
	assert.ErrorIs(t, err, ErrPasswordMismatch)

	upd, err := ProfileForm{Username: "jane", Email: "new@x.test"}.Changes(cur)
	require.NoError(t, err)
	assert.Equal(t, "new@x.test", upd.Email)
	assert.Empty(t, upd.Username)
	assert.Empty(t, upd.Password)

	upd, err = ProfileForm{Username: "jane", Email: "jane@x.test", Password: "s3cret", ConfirmPassword: "s3cret"}.Changes(cur)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", upd.Password)
}
