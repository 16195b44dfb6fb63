package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kitchenstock/internal/common"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const testSecret = "test-secret"

type AuthTestSuite struct {
	suite.Suite
	auth *Authenticator
	e    *echo.Echo
}

func (suite *AuthTestSuite) SetupTest() {
	auth, err := NewAuthenticator(context.Background(), AuthConfig{Secret: testSecret, Issuer: "https://id.example"}, zerolog.Nop())
	require.NoError(suite.T(), err)
	suite.auth = auth
	suite.e = echo.New()
}

func TestAuthTestSuite(t *testing.T) {
	suite.Run(t, new(AuthTestSuite))
}

func signToken(t *testing.T, claims Claims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims(role string) Claims {
	return Claims{
		Email:      "ana@cozinha.com",
		TenantCode: "cozinha-1",
		Role:       role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "https://id.example",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func (suite *AuthTestSuite) serve(req *http.Request, mws ...echo.MiddlewareFunc) (*httptest.ResponseRecorder, context.Context, error) {
	rec := httptest.NewRecorder()
	c := suite.e.NewContext(req, rec)
	var seen context.Context
	h := func(c echo.Context) error {
		seen = c.Request().Context()
		return c.NoContent(http.StatusNoContent)
	}
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	err := h(c)
	return rec, seen, err
}

func httpStatus(err error) int {
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code
	}
	return 0
}

func (suite *AuthTestSuite) TestValidTokenPopulatesContext() {
	req := httptest.NewRequest(http.MethodGet, "/v1/inventory", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(suite.T(), validClaims(RoleStaff), testSecret))

	_, ctx, err := suite.serve(req, suite.auth.Middleware())
	require.NoError(suite.T(), err)
	tenant, ok := common.GetTenantCodeFromContext(ctx)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), "cozinha-1", tenant)
	assert.Equal(suite.T(), "ana@cozinha.com", common.ActorFromContext(ctx))
}

func (suite *AuthTestSuite) TestMissingAndInvalidTokens() {
	req := httptest.NewRequest(http.MethodGet, "/v1/inventory", nil)
	_, _, err := suite.serve(req, suite.auth.Middleware())
	assert.Equal(suite.T(), http.StatusUnauthorized, httpStatus(err))

	req = httptest.NewRequest(http.MethodGet, "/v1/inventory", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(suite.T(), validClaims(RoleStaff), "other-secret"))
	_, _, err = suite.serve(req, suite.auth.Middleware())
	assert.Equal(suite.T(), http.StatusUnauthorized, httpStatus(err))

	expired := validClaims(RoleStaff)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	req = httptest.NewRequest(http.MethodGet, "/v1/inventory", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(suite.T(), expired, testSecret))
	_, _, err = suite.serve(req, suite.auth.Middleware())
	assert.Equal(suite.T(), http.StatusUnauthorized, httpStatus(err))
}

func (suite *AuthTestSuite) TestWrongIssuerRejected() {
	claims := validClaims(RoleStaff)
	claims.Issuer = "https://evil.example"
	req := httptest.NewRequest(http.MethodGet, "/v1/inventory", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(suite.T(), claims, testSecret))

	_, _, err := suite.serve(req, suite.auth.Middleware())
	assert.Equal(suite.T(), http.StatusUnauthorized, httpStatus(err))
}

func (suite *AuthTestSuite) TestQueryTokenForWebsocket() {
	req := httptest.NewRequest(http.MethodGet, "/v1/realtime?access_token="+signToken(suite.T(), validClaims(RoleStaff), testSecret), nil)

	_, ctx, err := suite.serve(req, suite.auth.Middleware())
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "ana@cozinha.com", common.ActorFromContext(ctx))
}

func (suite *AuthTestSuite) TestTenantOverrideOnlyForAdmins() {
	req := httptest.NewRequest(http.MethodGet, "/v1/inventory", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(suite.T(), validClaims(RoleStaff), testSecret))
	req.Header.Set(TenantHeader, "cozinha-2")
	_, ctx, err := suite.serve(req, suite.auth.Middleware())
	require.NoError(suite.T(), err)
	tenant, _ := common.GetTenantCodeFromContext(ctx)
	assert.Equal(suite.T(), "cozinha-1", tenant)

	req = httptest.NewRequest(http.MethodGet, "/v1/inventory", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(suite.T(), validClaims(RoleAdmin), testSecret))
	req.Header.Set(TenantHeader, "cozinha-2")
	_, ctx, err = suite.serve(req, suite.auth.Middleware())
	require.NoError(suite.T(), err)
	tenant, _ = common.GetTenantCodeFromContext(ctx)
	assert.Equal(suite.T(), "cozinha-2", tenant)
}

func (suite *AuthTestSuite) TestRequireRole() {
	req := httptest.NewRequest(http.MethodDelete, "/v1/sheets/Secos", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(suite.T(), validClaims(RoleStaff), testSecret))
	_, _, err := suite.serve(req, suite.auth.Middleware(), RequireRole(RoleAdmin))
	assert.Equal(suite.T(), http.StatusForbidden, httpStatus(err))

	req = httptest.NewRequest(http.MethodDelete, "/v1/sheets/Secos", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(suite.T(), validClaims(RoleAdmin), testSecret))
	rec, _, err := suite.serve(req, suite.auth.Middleware(), RequireRole(RoleAdmin))
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusNoContent, rec.Code)
}

func TestNewAuthenticatorRequiresKeyMaterial(t *testing.T) {
	_, err := NewAuthenticator(context.Background(), AuthConfig{}, zerolog.Nop())
	assert.Error(t, err)
}

func TestClaimsActorFallsBack(t *testing.T) {
	c := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-9"}}
	assert.Equal(t, "user-9", c.Actor())
	assert.Equal(t, common.SystemActor, (&Claims{}).Actor())
}
