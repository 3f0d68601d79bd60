package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/campus-lms-api/internal/models"
	appErrors "github.com/noah-isme/campus-lms-api/pkg/errors"
)

type mockAuthRepo struct {
	user      *models.User
	auditLogs []*models.AuditLog
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.user == nil || m.user.Email != email {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.user == nil || m.user.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func (m *mockAuthRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

func newAuthFixture(t *testing.T, active bool) (*AuthService, *mockAuthRepo) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &mockAuthRepo{user: &models.User{
		ID:           "m1",
		Email:        "meera@campus.test",
		PasswordHash: string(hash),
		FullName:     "Meera Nair",
		Role:         models.RoleMentor,
		Active:       active,
	}}
	svc := NewAuthService(repo, nil, zap.NewNop(), AuthConfig{
		AccessTokenSecret: "secret",
		AccessTokenExpiry: time.Minute,
		Issuer:            "campus-lms",
	})
	return svc, repo
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	svc, repo := newAuthFixture(t, true)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: " Meera@Campus.test ", Password: "password123", IP: "127.0.0.1"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(60), resp.ExpiresIn)
	assert.Equal(t, models.RoleMentor, resp.User.Role)
	require.Len(t, repo.auditLogs, 1)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "m1", claims.UserID)
	assert.Equal(t, models.RoleMentor, claims.Role)

	user, err := svc.Me(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, "Meera Nair", user.FullName)
}

func TestAuthServiceLoginFailures(t *testing.T) {
	svc, _ := newAuthFixture(t, true)
	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "meera@campus.test", Password: "wrong"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidCredentials.Code))

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "nobody@campus.test", Password: "password123"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidCredentials.Code))

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "not-an-email", Password: "x"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	inactive, _ := newAuthFixture(t, false)
	_, err = inactive.Login(context.Background(), models.LoginRequest{Email: "meera@campus.test", Password: "password123"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInactiveAccount.Code))
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	svc, _ := newAuthFixture(t, true)
	other := NewAuthService(&mockAuthRepo{}, nil, nil, AuthConfig{AccessTokenSecret: "other", Issuer: "campus-lms"})

	token, err := other.generateAccessToken(&models.User{ID: "x", Role: models.RoleAdmin}, time.Now())
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrUnauthorized.Code))

	_, err = svc.ValidateToken("garbage")
	assert.Error(t, err)
}

func TestAuthServiceLoginRecordsClientDetails(t *testing.T) {
	svc, repo := newAuthFixture(t, true)
	repo.user.Campus = "Pune"

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "meera@campus.test", Password: "password123", IP: "10.0.0.7", UserAgent: "dashboard/2.1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, "Pune", resp.User.Campus)

	require.Len(t, repo.auditLogs, 1)
	entry := repo.auditLogs[0]
	assert.Equal(t, models.AuditActionLogin, entry.Action)
	assert.Equal(t, "10.0.0.7", entry.IPAddress)
	assert.Equal(t, "dashboard/2.1", entry.UserAgent)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "Pune", claims.Campus)
}

func TestAuthServiceInactiveNeedsCorrectPassword(t *testing.T) {
	inactive, repo := newAuthFixture(t, false)
	_, err := inactive.Login(context.Background(), models.LoginRequest{Email: "meera@campus.test", Password: "wrong"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidCredentials.Code))
	assert.Empty(t, repo.auditLogs)
}

func TestValidateTokenChecksAudience(t *testing.T) {
	issuer := NewAuthService(&mockAuthRepo{}, nil, nil, AuthConfig{AccessTokenSecret: "s", Audience: []string{"dashboard"}})
	verifier := NewAuthService(&mockAuthRepo{}, nil, nil, AuthConfig{AccessTokenSecret: "s", Audience: []string{"mobile"}})

	token, err := issuer.generateAccessToken(&models.User{ID: "a1", Role: models.RoleAdmin}, time.Now())
	require.NoError(t, err)

	_, err = issuer.ValidateToken(token)
	require.NoError(t, err)
	_, err = verifier.ValidateToken(token)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrUnauthorized.Code))
}
