package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"caixa/internal/api"
	"caixa/internal/settings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var (
	ErrNotLoggedIn  = errors.New("not logged in")
	ErrTokenExpired = errors.New("session expired")
	ErrNotAdmin     = errors.New("admin role required")
)

var (
	RememberedEmail = settings.Key[string]{Name: "auth.remembered_email"}
	AuthToken       = settings.Key[string]{Name: "auth.token"}
	CompanyName     = settings.Key[string]{Name: "auth.company_name"}
)

// Claims is the subset of the API token the client cares about. The
// signature is not checked here; the server does that on every call.
type Claims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type Authenticator interface {
	Login(ctx context.Context, creds api.Credentials) (api.AuthResponse, error)
	Register(ctx context.Context, in api.RegisterAccountRequest) (api.AuthResponse, error)
	SetToken(token string)
}

type Manager struct {
	auth     Authenticator
	store    *settings.Store
	logger   *zap.Logger
	now      func() time.Time
	onChange []func(context.Context) error
}

func NewManager(auth *api.Client, store *settings.Store, logger *zap.Logger) *Manager {
	return newManager(auth, store, logger)
}

func newManager(auth Authenticator, store *settings.Store, logger *zap.Logger) *Manager {
	return &Manager{
		auth:   auth,
		store:  store,
		logger: logger.Named("session"),
		now:    time.Now,
	}
}

// OnChange registers fn to run after every login, signup or logout, for
// state that belongs to one session.
func (m *Manager) OnChange(fn func(context.Context) error) {
	m.onChange = append(m.onChange, fn)
}

func (m *Manager) changed(ctx context.Context) {
	for _, fn := range m.onChange {
		if err := fn(ctx); err != nil {
			m.logger.Warn("session change hook", zap.Error(err))
		}
	}
}

// Restore loads a saved token into the API client. It is a no-op when
// nothing was saved.
func (m *Manager) Restore(ctx context.Context) error {
	token, ok, err := settings.Get(ctx, m.store, AuthToken)
	if err != nil {
		return err
	}
	if ok {
		m.auth.SetToken(token)
	}
	return nil
}

func (m *Manager) Login(ctx context.Context, email, password string, remember bool) (api.AuthResponse, error) {
	email = strings.TrimSpace(email)
	resp, err := m.auth.Login(ctx, api.Credentials{Email: email, Password: password})
	if err != nil {
		m.logger.Warn("login failed", zap.String("email", email), zap.Error(err))
		return api.AuthResponse{}, err
	}
	if err := m.persist(ctx, resp); err != nil {
		return api.AuthResponse{}, err
	}

	if remember {
		err = settings.Set(ctx, m.store, RememberedEmail, email)
	} else {
		err = settings.Delete(ctx, m.store, RememberedEmail)
	}
	if err != nil {
		return api.AuthResponse{}, err
	}

	m.logger.Info("logged in", zap.String("email", email), zap.String("company", resp.CompanyName))
	return resp, nil
}

func (m *Manager) SignUp(ctx context.Context, in api.RegisterAccountRequest) (api.AuthResponse, error) {
	resp, err := m.auth.Register(ctx, in)
	if err != nil {
		return api.AuthResponse{}, err
	}
	if resp.Token == "" {
		return resp, nil
	}
	return resp, m.persist(ctx, resp)
}

func (m *Manager) persist(ctx context.Context, resp api.AuthResponse) error {
	if err := settings.Set(ctx, m.store, AuthToken, resp.Token); err != nil {
		return err
	}
	if err := settings.Set(ctx, m.store, CompanyName, resp.CompanyName); err != nil {
		return err
	}
	m.auth.SetToken(resp.Token)
	m.changed(ctx)
	return nil
}

// Logout forgets the token and company but keeps the remembered email.
func (m *Manager) Logout(ctx context.Context) error {
	m.auth.SetToken("")
	if err := settings.Delete(ctx, m.store, AuthToken); err != nil {
		return err
	}
	if err := settings.Delete(ctx, m.store, CompanyName); err != nil {
		return err
	}
	m.changed(ctx)
	return nil
}

func (m *Manager) RememberedEmail(ctx context.Context) string {
	email, _, err := settings.Get(ctx, m.store, RememberedEmail)
	if err != nil {
		m.logger.Warn("read remembered email", zap.Error(err))
	}
	return email
}

func (m *Manager) CompanyName(ctx context.Context) string {
	name, _, err := settings.Get(ctx, m.store, CompanyName)
	if err != nil {
		m.logger.Warn("read company name", zap.Error(err))
	}
	return name
}

// Claims decodes the saved token.
func (m *Manager) Claims(ctx context.Context) (Claims, error) {
	token, ok, err := settings.Get(ctx, m.store, AuthToken)
	if err != nil {
		return Claims{}, err
	}
	if !ok || token == "" {
		return Claims{}, ErrNotLoggedIn
	}
	claims, err := ParseClaims(token)
	if err != nil {
		return Claims{}, err
	}
	if claims.ExpiresAt != nil && !m.now().Before(claims.ExpiresAt.Time) {
		return claims, ErrTokenExpired
	}
	return claims, nil
}

// RequireAdmin fails unless the saved token carries the admin role.
func (m *Manager) RequireAdmin(ctx context.Context) error {
	claims, err := m.Claims(ctx)
	if err != nil {
		return err
	}
	if !claims.IsAdmin() {
		return ErrNotAdmin
	}
	return nil
}

func (c Claims) IsAdmin() bool {
	return strings.EqualFold(c.Role, "admin")
}

func ParseClaims(token string) (Claims, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Claims{}, fmt.Errorf("decode token: %w", err)
	}
	return claims, nil
}
