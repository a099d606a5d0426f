package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timber-backend/internal/auth"
	"timber-backend/internal/config"
	"timber-backend/internal/models"
	"timber-backend/internal/repositories/memstore"
)

func newUserService(t *testing.T) (*UserService, *auth.JWTManager) {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpirationHours = 1
	cfg.JWT.Issuer = "timber-backend"
	jwtManager := auth.NewJWTManager(cfg)

	svc := NewUserService(memstore.New(), jwtManager)
	require.NoError(t, svc.EnsureAdmin(context.Background(), testOrg, "boss@mill.test", "s3cret!"))
	return svc, jwtManager
}

func TestLoginIssuesToken(t *testing.T) {
	svc, jwtManager := newUserService(t)

	resp, err := svc.Login(context.Background(), &models.LoginRequest{Email: "BOSS@mill.test", Password: "s3cret!"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, resp.User.Role)

	claims, err := jwtManager.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, testOrg, claims.OrganisationID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, &models.LoginRequest{Email: "boss@mill.test", Password: "wrong"})
	assert.Equal(t, KindUnauthenticated, KindOf(err))
	_, err = svc.Login(ctx, &models.LoginRequest{Email: "nobody@mill.test", Password: "s3cret!"})
	assert.Equal(t, KindUnauthenticated, KindOf(err))
	_, err = svc.Login(ctx, &models.LoginRequest{Email: " "})
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()
	require.NoError(t, svc.EnsureAdmin(ctx, testOrg, "boss@mill.test", "other"))

	// The original password still works
	resp, err := svc.Login(ctx, &models.LoginRequest{Email: "boss@mill.test", Password: "s3cret!"})
	require.NoError(t, err)

	user, err := svc.GetUser(ctx, Actor{UserID: resp.User.ID, Role: resp.User.Role, OrganisationID: testOrg, HomeOrganisationID: testOrg})
	require.NoError(t, err)
	assert.Equal(t, "boss@mill.test", user.Email)

	_, err = svc.GetUser(ctx, Actor{})
	assert.Equal(t, KindUnauthenticated, KindOf(err))
}
