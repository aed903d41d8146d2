package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"wastetrack/internal/models"
)

// Collection is the list/get/create/update/remove set of one REST collection.
// path keeps the trailing slash used by the list endpoints.
type Collection[T any, In any] struct {
	c    *Client
	path string
}

func (col Collection[T, In]) item(id int) string {
	return strings.TrimSuffix(col.path, "/") + "/" + strconv.Itoa(id)
}

func (col Collection[T, In]) List(ctx context.Context) ([]T, error) {
	var out []T
	if err := col.c.do(ctx, http.MethodGet, col.path, "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (col Collection[T, In]) Get(ctx context.Context, id int) (T, error) {
	var out T
	err := col.c.do(ctx, http.MethodGet, col.item(id), "", nil, &out)
	return out, err
}

// Create returns the id reported by the API (0 if it reported none).
func (col Collection[T, In]) Create(ctx context.Context, token string, in In) (int, error) {
	var out struct {
		ID int `json:"id"`
	}
	if err := col.c.do(ctx, http.MethodPost, col.path, token, in, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

func (col Collection[T, In]) Update(ctx context.Context, token string, id int, in In) error {
	return col.c.do(ctx, http.MethodPut, col.item(id), token, in, nil)
}

func (col Collection[T, In]) Remove(ctx context.Context, token string, id int) error {
	return col.c.do(ctx, http.MethodDelete, col.item(id), token, nil, nil)
}

// TaxonomyInput is the payload for regions and services.
type TaxonomyInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CompanyInput — тело POST/PUT /companies. Пустой Status не отправляется,
// тогда API ставит pending.
type CompanyInput struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Email       string               `json:"email"`
	Phone       string               `json:"phone"`
	Status      models.CompanyStatus `json:"status,omitempty"`
	RegionID    *int                 `json:"region_id"`
	Services    []int                `json:"services"`
}

type Companies struct {
	Collection[models.Company, CompanyInput]
}

func (cs *Companies) SetStatus(ctx context.Context, token string, id int, status models.CompanyStatus) error {
	in := struct {
		Status models.CompanyStatus `json:"status"`
	}{status}
	return cs.c.do(ctx, http.MethodPut, cs.item(id)+"/status", token, in, nil)
}

func (cs *Companies) MyCompany(ctx context.Context, token string) (models.Company, error) {
	var out models.Company
	err := cs.c.do(ctx, http.MethodGet, "/companies/my-company", token, nil, &out)
	return out, err
}

type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	User        *models.User `json:"user"`
	Message     string       `json:"message"`
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CompanyRegistration creates a company_owner account together with its company.
type CompanyRegistration struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	UserEmail   string `json:"user_email"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Description string `json:"description"`
	RegionID    int    `json:"region_id"`
	Services    []int  `json:"services"`
}

type Auth struct {
	c *Client
}

func (a *Auth) Login(ctx context.Context, username, password string) (AuthResponse, error) {
	in := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{username, password}

	var out AuthResponse
	err := a.c.do(ctx, http.MethodPost, a.c.loginPath, "", in, &out)
	return out, err
}

func (a *Auth) Register(ctx context.Context, in RegisterInput) (AuthResponse, error) {
	var out AuthResponse
	err := a.c.do(ctx, http.MethodPost, "/auth/register", "", in, &out)
	return out, err
}

func (a *Auth) RegisterCompany(ctx context.Context, in CompanyRegistration) (AuthResponse, error) {
	var out AuthResponse
	err := a.c.do(ctx, http.MethodPost, "/auth/register-company", "", in, &out)
	return out, err
}

// ProfileUpdate carries only the fields that changed.
type ProfileUpdate struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

type Users struct {
	c *Client
}

// Me is the whoami call used to rehydrate a session.
func (u *Users) Me(ctx context.Context, token string) (models.User, error) {
	var out models.User
	err := u.c.do(ctx, http.MethodGet, "/users/me", token, nil, &out)
	return out, err
}

func (u *Users) UpdateMe(ctx context.Context, token string, in ProfileUpdate) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := u.c.do(ctx, http.MethodPut, "/users/me", token, in, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}
