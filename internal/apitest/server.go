// Package apitest runs an in-memory stand-in for the WasteTrack REST API.
// It follows the API's authorization rules closely enough for end-to-end tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"wastetrack/internal/models"
)

const signingKey = "apitest-signing-key"

type account struct {
	models.User
	Password string
}

type company struct {
	models.Company
	RegionID   int
	ServiceIDs []int
}

type Server struct {
	t  testing.TB
	ts *httptest.Server

	mu        sync.Mutex
	nextID    int
	users     map[int]*account
	companies map[int]*company
	regions   map[int]*models.Region
	services  map[int]*models.Service
	requests  []string
}

func NewServer(t testing.TB) *Server {
	s := &Server{
		t:         t,
		nextID:    1,
		users:     map[int]*account{},
		companies: map[int]*company{},
		regions:   map[int]*models.Region{},
		services:  map[int]*models.Service{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/token", s.login)
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.HandleFunc("POST /api/auth/register", s.register)
	mux.HandleFunc("POST /api/auth/register-company", s.registerCompany)
	mux.HandleFunc("GET /api/users/me", s.me)
	mux.HandleFunc("PUT /api/users/me", s.updateMe)

	mux.HandleFunc("GET /api/companies/{$}", s.listCompanies)
	mux.HandleFunc("POST /api/companies/{$}", s.createCompany)
	mux.HandleFunc("GET /api/companies/my-company", s.myCompany)
	mux.HandleFunc("GET /api/companies/{id}", s.getCompany)
	mux.HandleFunc("PUT /api/companies/{id}", s.updateCompany)
	mux.HandleFunc("DELETE /api/companies/{id}", s.deleteCompany)
	mux.HandleFunc("PUT /api/companies/{id}/status", s.setStatus)

	mux.HandleFunc("GET /api/regions/{$}", s.listRegions)
	mux.HandleFunc("POST /api/regions/{$}", s.createRegion)
	mux.HandleFunc("PUT /api/regions/{id}", s.updateRegion)
	mux.HandleFunc("DELETE /api/regions/{id}", s.deleteRegion)

	mux.HandleFunc("GET /api/services/{$}", s.listServices)
	mux.HandleFunc("POST /api/services/{$}", s.createService)
	mux.HandleFunc("PUT /api/services/{id}", s.updateService)
	mux.HandleFunc("DELETE /api/services/{id}", s.deleteService)

	s.ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		s.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(s.ts.Close)
	return s
}

// URL is the API base URL, including the /api prefix.
func (s *Server) URL() string { return s.ts.URL + "/api" }

// Close stops the server; later calls fail at the transport level.
func (s *Server) Close() { s.ts.Close() }

func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}

func (s *Server) ResetRequests() {
	s.mu.Lock()
	s.requests = nil
	s.mu.Unlock()
}

// Count returns how many recorded requests start with prefix, e.g. "PUT /api/companies/".
func (s *Server) Count(prefix string) int {
	n := 0
	for _, r := range s.Requests() {
		if strings.HasPrefix(r, prefix) {
			n++
		}
	}
	return n
}

// ---- seeding

func (s *Server) id() int {
	id := s.nextID
	s.nextID++
	return id
}

func (s *Server) AddUser(username, password string, role models.UserRole) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &account{
		User:     models.User{ID: s.id(), Username: username, Email: username + "@wastetrack.test", Role: role},
		Password: password,
	}
	s.users[u.ID] = u
	return u.User
}

func (s *Server) AddRegion(name string) models.Region {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &models.Region{ID: s.id(), Name: name}
	s.regions[r.ID] = r
	return *r
}

func (s *Server) AddService(name string) models.Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	sv := &models.Service{ID: s.id(), Name: name}
	s.services[sv.ID] = sv
	return *sv
}

// AddCompany stores c as is; c.ID is assigned when zero.
func (s *Server) AddCompany(c models.Company, ownerID int) models.Company {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.id()
	} else if c.ID >= s.nextID {
		s.nextID = c.ID + 1
	}
	if c.Status == "" {
		c.Status = models.StatusPending
	}
	rec := &company{Company: c, RegionID: c.RegionID(), ServiceIDs: c.ServiceIDs()}
	if ownerID != 0 {
		rec.UserID = &ownerID
		if u, ok := s.users[ownerID]; ok {
			u.CompanyID = &c.ID
		}
	}
	s.companies[c.ID] = rec
	return s.view(rec)
}

func (s *Server) Company(id int) (models.Company, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.companies[id]
	if !ok {
		return models.Company{}, false
	}
	return s.view(c), true
}

// Token issues a token for the user that expires after ttl (negative ttl: already expired).
func (s *Server) Token(userID int, ttl time.Duration) string {
	s.t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingKey))
	if err != nil {
		s.t.Fatalf("sign token: %v", err)
	}
	return tok
}

// ---- helpers

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func fail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) view(c *company) models.Company {
	out := c.Company
	out.Region = nil
	if r, ok := s.regions[c.RegionID]; ok {
		rr := *r
		out.Region = &rr
	}
	out.Services = []models.Service{}
	for _, id := range c.ServiceIDs {
		if sv, ok := s.services[id]; ok {
			out.Services = append(out.Services, *sv)
		}
	}
	if c.UserID != nil {
		if u, ok := s.users[*c.UserID]; ok {
			out.OwnerUsername = u.Username
		}
	}
	return out
}

func (s *Server) issue(userID int) string {
	return s.Token(userID, time.Hour)
}

// caller разбирает Bearer-токен; s.mu должен быть захвачен.
func (s *Server) caller(r *http.Request) (*account, int, string) {
	h := r.Header.Get("Authorization")
	tok, ok := strings.CutPrefix(h, "Bearer ")
	if !ok || tok == "" {
		return nil, http.StatusUnauthorized, "Missing Authorization Header"
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tok, claims, func(*jwt.Token) (any, error) { return []byte(signingKey), nil })
	if err != nil {
		return nil, http.StatusUnauthorized, "Token has expired"
	}
	id, _ := strconv.Atoi(claims.Subject)
	u, ok := s.users[id]
	if !ok {
		return nil, http.StatusNotFound, "User not found"
	}
	return u, 0, ""
}

func (s *Server) requireRole(w http.ResponseWriter, r *http.Request, roles ...models.UserRole) (*account, bool) {
	u, status, msg := s.caller(r)
	if u == nil {
		writeJSON(w, status, map[string]string{"msg": msg})
		return nil, false
	}
	if len(roles) > 0 && !slices.Contains(roles, u.Role) {
		writeJSON(w, http.StatusForbidden, map[string]string{"msg": "Access Denied: Insufficient permissions"})
		return nil, false
	}
	return u, true
}

func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	return id, err == nil
}

func userJSON(u *account) models.User {
	return u.User
}

// ---- auth / users

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in struct{ Username, Password string }
	_ = json.NewDecoder(r.Body).Decode(&in)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == in.Username && u.Password == in.Password {
			writeJSON(w, http.StatusOK, map[string]any{"access_token": s.issue(u.ID), "user": userJSON(u)})
			return
		}
	}
	writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Bad username or password"})
}

func (s *Server) taken(username, email string) string {
	for _, u := range s.users {
		if u.Username == username {
			return "Username already exists"
		}
		if u.Email == email {
			return "Email already exists"
		}
	}
	return ""
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in struct{ Username, Email, Password string }
	_ = json.NewDecoder(r.Body).Decode(&in)
	if in.Username == "" || in.Email == "" || in.Password == "" {
		fail(w, http.StatusBadRequest, "Username, email, and password are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if msg := s.taken(in.Username, in.Email); msg != "" {
		fail(w, http.StatusConflict, msg)
		return
	}
	u := &account{User: models.User{ID: s.id(), Username: in.Username, Email: in.Email, Role: models.RoleUser}, Password: in.Password}
	s.users[u.ID] = u
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":      "User registered successfully",
		"access_token": s.issue(u.ID),
		"user":         userJSON(u),
	})
}

func (s *Server) registerCompany(w http.ResponseWriter, r *http.Request) {
	var in struct {
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
	_ = json.NewDecoder(r.Body).Decode(&in)
	if in.Username == "" || in.Password == "" || in.UserEmail == "" || in.Name == "" || in.Email == "" || in.Phone == "" {
		fail(w, http.StatusBadRequest, "All required fields (user credentials and company details) must be provided")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if msg := s.taken(in.Username, in.UserEmail); msg != "" {
		fail(w, http.StatusConflict, msg)
		return
	}
	if in.RegionID != 0 {
		if _, ok := s.regions[in.RegionID]; !ok {
			fail(w, http.StatusBadRequest, "Invalid region ID provided")
			return
		}
	}
	u := &account{User: models.User{ID: s.id(), Username: in.Username, Email: in.UserEmail, Role: models.RoleCompanyOwner}, Password: in.Password}
	s.users[u.ID] = u
	c := &company{
		Company:    models.Company{ID: s.id(), Name: in.Name, Email: in.Email, Phone: in.Phone, Description: in.Description, Status: models.StatusPending, UserID: &u.ID},
		RegionID:   in.RegionID,
		ServiceIDs: s.knownServices(in.Services),
	}
	s.companies[c.ID] = c
	u.CompanyID = &c.ID
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":      "Company and owner registered successfully",
		"access_token": s.issue(u.ID),
	})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.requireRole(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, userJSON(u))
}

func (s *Server) updateMe(w http.ResponseWriter, r *http.Request) {
	var in struct{ Username, Email, Password string }
	_ = json.NewDecoder(r.Body).Decode(&in)

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.requireRole(w, r)
	if !ok {
		return
	}
	for _, other := range s.users {
		if other.ID == u.ID {
			continue
		}
		if in.Username != "" && other.Username == in.Username {
			fail(w, http.StatusConflict, "Username already taken")
			return
		}
		if in.Email != "" && other.Email == in.Email {
			fail(w, http.StatusConflict, "Email already taken")
			return
		}
	}
	if in.Username != "" {
		u.Username = in.Username
	}
	if in.Email != "" {
		u.Email = in.Email
	}
	if in.Password != "" {
		u.Password = in.Password
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Profile updated successfully"})
}

// ---- companies

type companyBody struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	Status      *string `json:"status"`
	RegionID    *int    `json:"region_id"`
	Services    []int   `json:"services"`
}

func (s *Server) knownServices(ids []int) []int {
	out := []int{}
	for _, id := range ids {
		if _, ok := s.services[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func (s *Server) sortedCompanies() []models.Company {
	ids := make([]int, 0, len(s.companies))
	for id := range s.companies {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]models.Company, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.view(s.companies[id]))
	}
	return out
}

func (s *Server) listCompanies(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.sortedCompanies())
}

func (s *Server) getCompany(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.companies[id]
	if !ok {
		fail(w, http.StatusNotFound, "Company not found")
		return
	}
	writeJSON(w, http.StatusOK, s.view(c))
}

func (s *Server) myCompany(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.requireRole(w, r, models.RoleCompanyOwner)
	if !ok {
		return
	}
	if u.CompanyID == nil {
		fail(w, http.StatusNotFound, "No company associated with this user")
		return
	}
	c, ok := s.companies[*u.CompanyID]
	if !ok {
		fail(w, http.StatusNotFound, "Company not found")
		return
	}
	writeJSON(w, http.StatusOK, s.view(c))
}

func (s *Server) createCompany(w http.ResponseWriter, r *http.Request) {
	var in companyBody
	_ = json.NewDecoder(r.Body).Decode(&in)

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.requireRole(w, r, models.RoleAdmin)
	if !ok {
		return
	}
	if in.Name == nil || *in.Name == "" || in.Email == nil || *in.Email == "" {
		fail(w, http.StatusBadRequest, "Name and Email are required")
		return
	}
	status := models.StatusPending
	if in.Status != nil && *in.Status != "" {
		st, err := models.ParseCompanyStatus(*in.Status)
		if err != nil {
			fail(w, http.StatusBadRequest, "Invalid status")
			return
		}
		status = st
	}
	c := &company{Company: models.Company{ID: s.id(), Name: *in.Name, Email: *in.Email, Status: status, UserID: &u.ID}}
	if in.Phone != nil {
		c.Phone = *in.Phone
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.RegionID != nil && *in.RegionID != 0 {
		if _, ok := s.regions[*in.RegionID]; !ok {
			fail(w, http.StatusBadRequest, "Invalid region_id")
			return
		}
		c.RegionID = *in.RegionID
	}
	c.ServiceIDs = s.knownServices(in.Services)
	s.companies[c.ID] = c
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Company created", "id": c.ID})
}

func (s *Server) updateCompany(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	var in companyBody
	_ = json.NewDecoder(r.Body).Decode(&in)

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.requireRole(w, r, models.RoleAdmin, models.RoleCompanyOwner)
	if !ok {
		return
	}
	c, ok := s.companies[id]
	if !ok {
		fail(w, http.StatusNotFound, "Company not found")
		return
	}
	if u.Role == models.RoleCompanyOwner && (c.UserID == nil || *c.UserID != u.ID) {
		writeJSON(w, http.StatusForbidden, map[string]string{"msg": "Access Denied: Insufficient permissions"})
		return
	}
	if in.RegionID != nil && *in.RegionID != 0 {
		if _, ok := s.regions[*in.RegionID]; !ok {
			fail(w, http.StatusBadRequest, "Invalid region_id")
			return
		}
	}
	if in.Status != nil && *in.Status != "" {
		if _, err := models.ParseCompanyStatus(*in.Status); err != nil {
			fail(w, http.StatusBadRequest, "Invalid status")
			return
		}
		// владелец не может менять статус
		if u.Role == models.RoleAdmin {
			c.Status = models.CompanyStatus(*in.Status)
		}
	}
	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.Email != nil {
		c.Email = *in.Email
	}
	if in.Phone != nil {
		c.Phone = *in.Phone
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.RegionID != nil {
		c.RegionID = *in.RegionID
	}
	if in.Services != nil {
		c.ServiceIDs = s.knownServices(in.Services)
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Company updated successfully", "company": s.view(c)})
}

func (s *Server) deleteCompany(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requireRole(w, r, models.RoleAdmin); !ok {
		return
	}
	if _, ok := s.companies[id]; !ok {
		fail(w, http.StatusNotFound, "Company not found")
		return
	}
	delete(s.companies, id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Company deleted successfully"})
}

func (s *Server) setStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	var in struct{ Status string }
	_ = json.NewDecoder(r.Body).Decode(&in)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requireRole(w, r, models.RoleAdmin); !ok {
		return
	}
	c, ok := s.companies[id]
	if !ok {
		fail(w, http.StatusNotFound, "Company not found")
		return
	}
	st, err := models.ParseCompanyStatus(in.Status)
	if err != nil {
		fail(w, http.StatusBadRequest, "Invalid status value")
		return
	}
	c.Status = st
	writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("Company status updated to %s", st)})
}

// ---- regions / services

func listOf[T any](m map[int]*T) []T {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, *m[id])
	}
	return out
}

type taxonomyBody struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) listRegions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, listOf(s.regions))
}

func (s *Server) createRegion(w http.ResponseWriter, r *http.Request) {
	var in taxonomyBody
	_ = json.NewDecoder(r.Body).Decode(&in)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requireRole(w, r, models.RoleAdmin); !ok {
		return
	}
	if in.Name == "" {
		fail(w, http.StatusBadRequest, "Region name is required")
		return
	}
	for _, reg := range s.regions {
		if reg.Name == in.Name {
			fail(w, http.StatusConflict, "Region with this name already exists")
			return
		}
	}
	reg := &models.Region{ID: s.id(), Name: in.Name, Description: in.Description}
	s.regions[reg.ID] = reg
	writeJSON(w, http.StatusCreated, reg)
}

func (s *Server) updateRegion(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	var in taxonomyBody
	_ = json.NewDecoder(r.Body).Decode(&in)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requireRole(w, r, models.RoleAdmin); !ok {
		return
	}
	reg, ok := s.regions[id]
	if !ok {
		fail(w, http.StatusNotFound, "Region not found")
		return
	}
	reg.Name, reg.Description = in.Name, in.Description
	writeJSON(w, http.StatusOK, reg)
}

func (s *Server) deleteRegion(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requireRole(w, r, models.RoleAdmin); !ok {
		return
	}
	if _, ok := s.regions[id]; !ok {
		fail(w, http.StatusNotFound, "Region not found")
		return
	}
	delete(s.regions, id)
	for _, c := range s.companies {
		if c.RegionID == id {
			c.RegionID = 0
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Region deleted"})
}

func (s *Server) listServices(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, listOf(s.services))
}

func (s *Server) createService(w http.ResponseWriter, r *http.Request) {
	var in taxonomyBody
	_ = json.NewDecoder(r.Body).Decode(&in)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requireRole(w, r, models.RoleAdmin); !ok {
		return
	}
	if in.Name == "" {
		fail(w, http.StatusBadRequest, "Service name is required")
		return
	}
	sv := &models.Service{ID: s.id(), Name: in.Name, Description: in.Description}
	s.services[sv.ID] = sv
	writeJSON(w, http.StatusCreated, sv)
}

func (s *Server) updateService(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	var in taxonomyBody
	_ = json.NewDecoder(r.Body).Decode(&in)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requireRole(w, r, models.RoleAdmin); !ok {
		return
	}
	sv, ok := s.services[id]
	if !ok {
		fail(w, http.StatusNotFound, "Service not found")
		return
	}
	sv.Name, sv.Description = in.Name, in.Description
	writeJSON(w, http.StatusOK, sv)
}

func (s *Server) deleteService(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requireRole(w, r, models.RoleAdmin); !ok {
		return
	}
	if _, ok := s.services[id]; !ok {
		fail(w, http.StatusNotFound, "Service not found")
		return
	}
	delete(s.services, id)
	for _, c := range s.companies {
		c.ServiceIDs = slices.DeleteFunc(c.ServiceIDs, func(x int) bool { return x == id })
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Service deleted"})
}
