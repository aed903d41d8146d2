// Package session keeps the pairing of an API token and the user it authorizes.
// The token lives in the browser cookie session; the user is rehydrated from the
// API on every page request and is never trusted from the cookie.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"wastetrack/internal/api"
	"wastetrack/internal/models"
)

// TokenKey — единственный ключ, под которым токен лежит в cookie-сессии.
const TokenKey = "access_token"

var ErrNoToken = errors.New("session: api returned no access token")

// Persister is the part of a cookie session the store needs;
// gin-contrib/sessions.Session satisfies it.
type Persister interface {
	Get(key any) any
	Set(key, val any)
	Delete(key any)
	Clear()
	Save() error
}

type AuthAPI interface {
	Login(ctx context.Context, username, password string) (api.AuthResponse, error)
	Register(ctx context.Context, in api.RegisterInput) (api.AuthResponse, error)
	RegisterCompany(ctx context.Context, in api.CompanyRegistration) (api.AuthResponse, error)
}

type ProfileAPI interface {
	Me(ctx context.Context, token string) (models.User, error)
}

type Store struct {
	auth    AuthAPI
	users   ProfileAPI
	timeout time.Duration
	log     zerolog.Logger
	now     func() time.Time
}

func NewStore(auth AuthAPI, users ProfileAPI, restoreTimeout time.Duration, log zerolog.Logger) *Store {
	return &Store{
		auth:    auth,
		users:   users,
		timeout: restoreTimeout,
		log:     log.With().Str("component", "session").Logger(),
		now:     time.Now,
	}
}

// Restore rehydrates the session from the persisted token. Any failure
// discards the token and yields an empty, resolved state.
func (s *Store) Restore(ctx context.Context, p Persister) State {
	token, _ := p.Get(TokenKey).(string)
	if token == "" {
		return State{}
	}

	if expired(token, s.now()) {
		s.log.Debug().Msg("persisted token expired, discarding")
		s.discard(p)
		return State{}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	user, err := s.users.Me(ctx, token)
	if err != nil {
		s.log.Info().Err(err).Msg("persisted token rejected, discarding")
		s.discard(p)
		return State{}
	}
	if !user.Role.Valid() {
		s.log.Warn().Str("role", string(user.Role)).Int("user_id", user.ID).Msg("unknown role, discarding token")
		s.discard(p)
		return State{}
	}

	return State{Token: token, User: &user}
}

// Login returns the API error unchanged so its message can be shown as is.
func (s *Store) Login(ctx context.Context, p Persister, username, password string) (models.User, error) {
	res, err := s.auth.Login(ctx, username, password)
	if err != nil {
		return models.User{}, err
	}
	return s.adopt(ctx, p, res)
}

func (s *Store) Register(ctx context.Context, p Persister, in api.RegisterInput) (models.User, error) {
	res, err := s.auth.Register(ctx, in)
	if err != nil {
		return models.User{}, err
	}
	return s.adopt(ctx, p, res)
}

// RegisterCompany creates the owner and the company; the API answers with a
// token only, so the user is fetched through Me.
func (s *Store) RegisterCompany(ctx context.Context, p Persister, in api.CompanyRegistration) (models.User, error) {
	res, err := s.auth.RegisterCompany(ctx, in)
	if err != nil {
		return models.User{}, err
	}
	return s.adopt(ctx, p, res)
}

func (s *Store) Logout(p Persister) error {
	p.Clear()
	if err := p.Save(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *Store) adopt(ctx context.Context, p Persister, res api.AuthResponse) (models.User, error) {
	if res.AccessToken == "" {
		return models.User{}, ErrNoToken
	}

	var user models.User
	if res.User != nil {
		user = *res.User
	} else {
		var err error
		if user, err = s.users.Me(ctx, res.AccessToken); err != nil {
			return models.User{}, fmt.Errorf("fetch profile: %w", err)
		}
	}

	p.Set(TokenKey, res.AccessToken)
	if err := p.Save(); err != nil {
		return models.User{}, fmt.Errorf("save session: %w", err)
	}

	s.log.Info().Int("user_id", user.ID).Str("role", string(user.Role)).Msg("session started")
	return user, nil
}

func (s *Store) discard(p Persister) {
	p.Delete(TokenKey)
	if err := p.Save(); err != nil {
		s.log.Error().Err(err).Msg("save session after discarding token")
	}
}
