package workflow

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wastetrack/internal/api"
	"wastetrack/internal/apitest"
	"wastetrack/internal/database"
	"wastetrack/internal/models"
	"wastetrack/internal/session"
)

func signedIn(srv *apitest.Server, u models.User) session.State {
	return session.State{Token: srv.Token(u.ID, time.Hour), User: &u}
}

func setup(t *testing.T) (*apitest.Server, *Approvals) {
	t.Helper()
	srv := apitest.NewServer(t)
	c := api.New(srv.URL(), 2*time.Second)
	return srv, NewApprovals(c.Companies(), nil, zerolog.Nop())
}

func ids(cs []models.Company) []int {
	out := make([]int, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.ID)
	}
	return out
}

func TestListPending_FiltersClientSide(t *testing.T) {
	srv, a := setup(t)
	srv.AddCompany(models.Company{ID: 1, Name: "A", Status: models.StatusApproved}, 0)
	srv.AddCompany(models.Company{ID: 2, Name: "B"}, 0)
	srv.AddCompany(models.Company{ID: 3, Name: "C", Status: models.StatusRejected}, 0)
	srv.AddCompany(models.Company{ID: 4, Name: "D", Status: models.StatusPending}, 0)

	pending, err := a.ListPending(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{2, 4}, ids(pending))
	assert.Equal(t, []string{"GET /api/companies/"}, srv.Requests())
}

func TestSetStatus_ApproveRemovesFromPending(t *testing.T) {
	srv, a := setup(t)
	admin := srv.AddUser("admin", "Admin123!", models.RoleAdmin)
	srv.AddCompany(models.Company{ID: 7, Name: "GreenBin"}, 0)
	srv.AddCompany(models.Company{ID: 8, Name: "EcoHaul"}, 0)
	ctx := context.Background()

	pending, err := a.ListPending(ctx)
	require.NoError(t, err)
	require.Contains(t, ids(pending), 7)
	srv.ResetRequests()

	pending, err = a.SetStatus(ctx, signedIn(srv, admin), 7, models.StatusApproved)
	require.NoError(t, err)

	assert.NotContains(t, ids(pending), 7)
	assert.Equal(t, []int{8}, ids(pending))
	assert.Equal(t, []string{"GET /api/companies/7", "PUT /api/companies/7/status", "GET /api/companies/"}, srv.Requests())

	got, ok := srv.Company(7)
	require.True(t, ok)
	assert.Equal(t, models.StatusApproved, got.Status)

	pending, err = a.ListPending(ctx)
	require.NoError(t, err)
	assert.NotContains(t, ids(pending), 7)
}

func TestSetStatus_NonAdminSendsNothing(t *testing.T) {
	srv, a := setup(t)
	srv.AddCompany(models.Company{ID: 7, Name: "GreenBin"}, 0)

	for _, r := range []models.UserRole{models.RoleCollector, models.RoleCompanyOwner, models.RoleUser} {
		u := srv.AddUser("u-"+string(r), "pw", r)
		_, err := a.SetStatus(context.Background(), signedIn(srv, u), 7, models.StatusApproved)
		require.ErrorIs(t, err, ErrUnauthorized, r)
		assert.Equal(t, UnauthorizedMessage, Message(err, models.StatusApproved))
	}

	_, err := a.SetStatus(context.Background(), session.State{}, 7, models.StatusRejected)
	require.ErrorIs(t, err, ErrUnauthorized)

	assert.Empty(t, srv.Requests())
}

func TestSetStatus_OnlyReviewDecisions(t *testing.T) {
	srv, a := setup(t)
	admin := srv.AddUser("admin", "pw", models.RoleAdmin)

	for _, st := range []models.CompanyStatus{models.StatusPending, "archived", ""} {
		_, err := a.SetStatus(context.Background(), signedIn(srv, admin), 7, st)
		require.ErrorIs(t, err, ErrInvalidTransition, st)
	}
	assert.Empty(t, srv.Requests())
}

func TestSetStatus_DecidedCompanyStaysDecided(t *testing.T) {
	srv, a := setup(t)
	admin := srv.AddUser("admin", "pw", models.RoleAdmin)
	srv.AddCompany(models.Company{ID: 7, Name: "GreenBin", Status: models.StatusApproved}, 0)
	srv.AddCompany(models.Company{ID: 8, Name: "EcoHaul", Status: models.StatusRejected}, 0)

	cases := []struct {
		id int
		to models.CompanyStatus
	}{
		{7, models.StatusRejected},
		{7, models.StatusApproved},
		{8, models.StatusApproved},
	}
	for _, tc := range cases {
		_, err := a.SetStatus(context.Background(), signedIn(srv, admin), tc.id, tc.to)
		require.ErrorIs(t, err, ErrInvalidTransition)
	}

	assert.Zero(t, srv.Count("PUT /api/companies/"))
	got, _ := srv.Company(7)
	assert.Equal(t, models.StatusApproved, got.Status)
	got, _ = srv.Company(8)
	assert.Equal(t, models.StatusRejected, got.Status)
}

func TestSetStatus_APIErrors(t *testing.T) {
	srv, a := setup(t)
	admin := srv.AddUser("admin", "pw", models.RoleAdmin)
	srv.AddCompany(models.Company{ID: 7, Name: "GreenBin"}, 0)

	// стейт говорит admin, а API уже не согласен
	stale := session.State{Token: srv.Token(admin.ID, -time.Minute), User: &admin}
	_, err := a.SetStatus(context.Background(), stale, 7, models.StatusApproved)
	require.Error(t, err)
	assert.Equal(t, UnauthorizedMessage, Message(err, models.StatusApproved))

	_, err = a.SetStatus(context.Background(), signedIn(srv, admin), 404, models.StatusRejected)
	require.Error(t, err)
	assert.Equal(t, "Company not found", Message(err, models.StatusRejected))
	assert.NotContains(t, srv.Requests(), "GET /api/companies/")
	assert.Zero(t, srv.Count("PUT /api/companies/404"))
}

func TestSetStatus_ReloadFailure(t *testing.T) {
	a := NewApprovals(&flakyCompanies{listErr: errors.New("connection reset")}, nil, zerolog.Nop())
	admin := models.User{ID: 1, Username: "admin", Role: models.RoleAdmin}

	_, err := a.SetStatus(context.Background(), session.State{Token: "t", User: &admin}, 7, models.StatusApproved)
	require.ErrorIs(t, err, ErrStale)
	assert.Contains(t, Message(err, models.StatusApproved), "updated to approved")
}

func TestSetStatus_RecordsDecision(t *testing.T) {
	srv := apitest.NewServer(t)
	admin := srv.AddUser("admin", "pw", models.RoleAdmin)
	srv.AddCompany(models.Company{ID: 7, Name: "GreenBin"}, 0)

	db, err := database.Connect(sqlite.Open(filepath.Join(t.TempDir(), "j.db")), 1, 0, zerolog.Nop())
	require.NoError(t, err)
	journal := database.NewJournal(db, zerolog.Nop())

	a := NewApprovals(api.New(srv.URL(), time.Second).Companies(), journal, zerolog.Nop())
	_, err = a.SetStatus(context.Background(), signedIn(srv, admin), 7, models.StatusRejected)
	require.NoError(t, err)

	logs, err := journal.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, 7, logs[0].EntityID)
	assert.Equal(t, "status set to rejected", logs[0].Details)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Failed to update company status to approved.", Message(errors.New("boom"), models.StatusApproved))
	assert.Equal(t, "Invalid status value", Message(&api.Error{Status: 400, Message: "Invalid status value"}, models.StatusApproved))
	assert.Equal(t, UnauthorizedMessage, Message(&api.Error{Status: 403}, models.StatusRejected))
}

func TestOwnerCanEdit(t *testing.T) {
	assert.True(t, OwnerCanEdit(models.Company{Status: models.StatusApproved}))
	assert.False(t, OwnerCanEdit(models.Company{Status: models.StatusPending}))
	assert.False(t, OwnerCanEdit(models.Company{Status: models.StatusRejected}))
}

type flakyCompanies struct {
	listErr error
}

func (f *flakyCompanies) List(context.Context) ([]models.Company, error) { return nil, f.listErr }

func (f *flakyCompanies) Get(_ context.Context, id int) (models.Company, error) {
	return models.Company{ID: id, Status: models.StatusPending}, nil
}

func (f *flakyCompanies) SetStatus(context.Context, string, int, models.CompanyStatus) error {
	return nil
}
