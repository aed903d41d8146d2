package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wastetrack/internal/api"
	"wastetrack/internal/apitest"
	"wastetrack/internal/models"
)

func setup(t *testing.T) (*apitest.Server, *api.Client) {
	t.Helper()
	srv := apitest.NewServer(t)
	return srv, api.New(srv.URL(), 5*time.Second)
}

func TestAuth_LoginReturnsTokenAndUser(t *testing.T) {
	srv, c := setup(t)
	admin := srv.AddUser("admin", "Admin123!", models.RoleAdmin)

	res, err := c.Auth().Login(context.Background(), "admin", "Admin123!")
	require.NoError(t, err)

	assert.NotEmpty(t, res.AccessToken)
	require.NotNil(t, res.User)
	assert.Equal(t, admin.ID, res.User.ID)
	assert.Equal(t, models.RoleAdmin, res.User.Role)
}

func TestAuth_LoginFailureKeepsServerMessage(t *testing.T) {
	srv, c := setup(t)
	srv.AddUser("admin", "Admin123!", models.RoleAdmin)

	_, err := c.Auth().Login(context.Background(), "admin", "wrong")
	require.Error(t, err)

	assert.True(t, api.IsUnauthorized(err))
	assert.Equal(t, "Bad username or password", api.Message(err, "fallback"))
}

func TestAuth_LoginPathOption(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.AddUser("admin", "pw", models.RoleAdmin)
	c := api.New(srv.URL(), time.Second, api.WithLoginPath("/auth/login"))

	_, err := c.Auth().Login(context.Background(), "admin", "pw")
	require.NoError(t, err)
	assert.Equal(t, 1, srv.Count("POST /api/auth/login"))
}

func TestCollection_ListIsPublicAndUsesTrailingSlash(t *testing.T) {
	srv, c := setup(t)
	srv.AddRegion("North")
	srv.AddRegion("South")

	regions, err := c.Regions().List(context.Background())
	require.NoError(t, err)

	require.Len(t, regions, 2)
	assert.Equal(t, "North", regions[0].Name)
	assert.Equal(t, []string{"GET /api/regions/"}, srv.Requests())
}

func TestCollection_MutationsNeedBearer(t *testing.T) {
	srv, c := setup(t)
	admin := srv.AddUser("admin", "pw", models.RoleAdmin)
	ctx := context.Background()

	_, err := c.Services().Create(ctx, "", api.TaxonomyInput{Name: "Recycling"})
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))

	tok := srv.Token(admin.ID, time.Hour)
	id, err := c.Services().Create(ctx, tok, api.TaxonomyInput{Name: "Recycling"})
	require.NoError(t, err)
	assert.NotZero(t, id)

	require.NoError(t, c.Services().Update(ctx, tok, id, api.TaxonomyInput{Name: "Recycling+", Description: "glass"}))
	list, err := c.Services().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "glass", list[0].Description)

	require.NoError(t, c.Services().Remove(ctx, tok, id))
	list, err = c.Services().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCollection_RemoveMissing(t *testing.T) {
	srv, c := setup(t)
	admin := srv.AddUser("admin", "pw", models.RoleAdmin)

	err := c.Regions().Remove(context.Background(), srv.Token(admin.ID, time.Hour), 999)
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))
	assert.Equal(t, "Region not found", api.Message(err, ""))
}

func TestCompanies_CreateWithoutStatusIsPending(t *testing.T) {
	srv, c := setup(t)
	admin := srv.AddUser("admin", "pw", models.RoleAdmin)
	region := srv.AddRegion("North")
	ctx := context.Background()

	id, err := c.Companies().Create(ctx, srv.Token(admin.ID, time.Hour), api.CompanyInput{
		Name:     "GreenBin",
		Email:    "info@greenbin.test",
		RegionID: &region.ID,
		Services: []int{},
	})
	require.NoError(t, err)

	got, err := c.Companies().Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, region.ID, got.RegionID())
}

func TestCompanies_SetStatusForbiddenForCollector(t *testing.T) {
	srv, c := setup(t)
	collector := srv.AddUser("col", "pw", models.RoleCollector)
	co := srv.AddCompany(models.Company{Name: "GreenBin"}, 0)

	err := c.Companies().SetStatus(context.Background(), srv.Token(collector.ID, time.Hour), co.ID, models.StatusApproved)
	require.Error(t, err)
	assert.True(t, api.IsForbidden(err))
	assert.Equal(t, "Access Denied: Insufficient permissions", api.Message(err, ""))
}

func TestCompanies_GetMissing(t *testing.T) {
	_, c := setup(t)

	_, err := c.Companies().Get(context.Background(), 404)
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))
}

func TestUsers_MeAndUpdate(t *testing.T) {
	srv, c := setup(t)
	u := srv.AddUser("jane", "pw", models.RoleUser)
	tok := srv.Token(u.ID, time.Hour)
	ctx := context.Background()

	me, err := c.Users().Me(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, "jane", me.Username)

	msg, err := c.Users().UpdateMe(ctx, tok, api.ProfileUpdate{Email: "jane@new.test"})
	require.NoError(t, err)
	assert.Equal(t, "Profile updated successfully", msg)

	me, err = c.Users().Me(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, "jane@new.test", me.Email)
}

func TestClient_ForwardsRequestIDAndDecodesErrorFields(t *testing.T) {
	var gotID, gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("X-Request-ID")
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "bad payload"})
	}))
	defer ts.Close()

	c := api.New(ts.URL, time.Second)
	ctx := api.WithRequestID(context.Background(), "req-42")

	err := c.Regions().Update(ctx, "tok", 1, api.TaxonomyInput{Name: "x"})
	require.Error(t, err)

	assert.Equal(t, "req-42", gotID)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "bad payload", api.Message(err, "fallback"))
}

func TestMessage_Fallback(t *testing.T) {
	assert.Equal(t, "fallback", api.Message(&api.Error{Status: 500}, "fallback"))
	assert.Equal(t, "fallback", api.Message(context.DeadlineExceeded, "fallback"))
}
