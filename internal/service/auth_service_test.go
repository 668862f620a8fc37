package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tutortrack/tutortrack-api/internal/models"
	appErrors "github.com/tutortrack/tutortrack-api/pkg/errors"
)

type mockUserRepo struct {
	users         map[string]models.User
	refreshTokens map[string]models.RefreshToken
	revoked       []string
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			user := u
			return &user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.users == nil {
		m.users = make(map[string]models.User)
	}
	if user.ID == "" {
		user.ID = "user-generated"
	}
	m.users[user.ID] = *user
	return nil
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	return nil
}

func (m *mockUserRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.refreshTokens == nil {
		m.refreshTokens = make(map[string]models.RefreshToken)
	}
	if token.ID == "" {
		token.ID = "rt-generated"
	}
	m.refreshTokens[token.Token] = *token
	return nil
}

func (m *mockUserRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if rt, ok := m.refreshTokens[token]; ok {
		return &rt, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	m.revoked = append(m.revoked, id)
	for key, rt := range m.refreshTokens {
		if rt.ID == id {
			rt.Revoked = true
			rt.RevokedAt = &revokedAt
			m.refreshTokens[key] = rt
		}
	}
	return nil
}

func newTestAuthService(repo *mockUserRepo) *AuthService {
	return NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "tutortrack-test",
	})
}

func TestAuthRegisterAndValidate(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newTestAuthService(repo)

	resp, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "tutor@example.com",
		Password: "supersecret",
		FullName: "Taylor Tutor",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "tutor@example.com", resp.User.Email)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "tutor@example.com", claims.Email)
}

func TestAuthRegisterDuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{users: map[string]models.User{
		"u1": {ID: "u1", Email: "tutor@example.com", Active: true},
	}}
	svc := newTestAuthService(repo)

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "tutor@example.com",
		Password: "supersecret",
		FullName: "Someone Else",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAuthLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("supersecret"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &mockUserRepo{users: map[string]models.User{
		"u1": {ID: "u1", Email: "tutor@example.com", PasswordHash: string(hash), Active: true},
	}}
	svc := newTestAuthService(repo)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "tutor@example.com", Password: "supersecret"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "tutor@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthLoginInactiveAccount(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("supersecret"), bcrypt.MinCost)
	repo := &mockUserRepo{users: map[string]models.User{
		"u1": {ID: "u1", Email: "tutor@example.com", PasswordHash: string(hash), Active: false},
	}}
	svc := newTestAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "tutor@example.com", Password: "supersecret"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthRefreshTokenRotation(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newTestAuthService(repo)

	resp, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "tutor@example.com",
		Password: "supersecret",
		FullName: "Taylor Tutor",
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: resp.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, resp.RefreshToken, refreshed.RefreshToken)
	assert.NotEmpty(t, repo.revoked)

	// the used token was revoked and cannot be replayed
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: resp.RefreshToken})
	require.Error(t, err)
}

func TestAuthRefreshTokenExpired(t *testing.T) {
	repo := &mockUserRepo{
		users: map[string]models.User{"u1": {ID: "u1", Email: "t@example.com", Active: true}},
		refreshTokens: map[string]models.RefreshToken{
			"stale": {ID: "rt1", UserID: "u1", Token: "stale", ExpiresAt: time.Now().UTC().Add(-time.Hour)},
		},
	}
	svc := newTestAuthService(repo)

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "stale"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthValidateTokenRejectsGarbage(t *testing.T) {
	svc := newTestAuthService(&mockUserRepo{})

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
}

func TestAuthGoogleLoginUnconfigured(t *testing.T) {
	svc := newTestAuthService(&mockUserRepo{})

	_, err := svc.GoogleLoginURL("state123")
	require.Error(t, err)

	_, err = svc.GoogleCallback(context.Background(), "code")
	require.Error(t, err)
}

func TestAuthGoogleLoginURL(t *testing.T) {
	svc := NewAuthService(&mockUserRepo{}, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret: "test-secret",
		GoogleClientID:    "client-id",
		GoogleRedirectURL: "http://localhost:8080/api/auth/google/callback",
	})

	url, err := svc.GoogleLoginURL("state123")
	require.NoError(t, err)
	assert.Contains(t, url, "state=state123")
	assert.Contains(t, url, "client-id")
}
