package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"kitchenstock/internal/common"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"

	// TenantHeader lets admins act on a tenant other than their own.
	TenantHeader = "X-Tenant-Code"
)

// Claims are the token claims issued by the identity provider.
type Claims struct {
	Email      string `json:"email,omitempty"`
	TenantCode string `json:"tenant_code"`
	Role       string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Actor is the name recorded on mutations made with these claims.
func (c *Claims) Actor() string {
	if c.Email != "" {
		return c.Email
	}
	if c.Subject != "" {
		return c.Subject
	}
	return common.SystemActor
}

type AuthConfig struct {
	JWKSURL         string
	Secret          string
	Issuer          string
	Audience        string
	RefreshInterval time.Duration
}

// Authenticator verifies bearer tokens against a JWKS endpoint or, when no
// endpoint is configured, an HS256 shared secret.
type Authenticator struct {
	keyfunc jwt.Keyfunc
	parser  *jwt.Parser
	jwks    *keyfunc.JWKS
	logger  zerolog.Logger
}

func NewAuthenticator(ctx context.Context, cfg AuthConfig, logger zerolog.Logger) (*Authenticator, error) {
	logger = logger.With().Str("component", "auth").Logger()
	opts := []jwt.ParserOption{jwt.WithLeeway(30 * time.Second)}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	a := &Authenticator{logger: logger}
	switch {
	case cfg.JWKSURL != "":
		refresh := cfg.RefreshInterval
		if refresh <= 0 {
			refresh = time.Hour
		}
		jwks, err := keyfunc.Get(cfg.JWKSURL, keyfunc.Options{
			Ctx:               ctx,
			RefreshInterval:   refresh,
			RefreshRateLimit:  5 * time.Minute,
			RefreshTimeout:    10 * time.Second,
			RefreshUnknownKID: true,
			RefreshErrorHandler: func(err error) {
				logger.Warn().Err(err).Msg("jwks refresh failed")
			},
		})
		if err != nil {
			return nil, err
		}
		a.jwks = jwks
		a.keyfunc = jwks.Keyfunc
		opts = append(opts, jwt.WithValidMethods([]string{"RS256", "ES256", "EdDSA"}))
	case cfg.Secret != "":
		secret := []byte(cfg.Secret)
		a.keyfunc = func(*jwt.Token) (interface{}, error) { return secret, nil }
		opts = append(opts, jwt.WithValidMethods([]string{"HS256"}))
	default:
		return nil, errors.New("either a JWKS URL or a JWT secret is required")
	}
	a.parser = jwt.NewParser(opts...)
	return a, nil
}

// Close stops the JWKS refresh goroutine.
func (a *Authenticator) Close() {
	if a.jwks != nil {
		a.jwks.EndBackground()
	}
}

// Parse verifies a raw token and returns its claims.
func (a *Authenticator) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := a.parser.ParseWithClaims(raw, claims, a.keyfunc)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token not valid")
	}
	return claims, nil
}

// Middleware authenticates the request and puts actor, role and tenant on
// the request context. Browsers cannot set headers on websocket upgrades, so
// an access_token query parameter is accepted as well.
func (a *Authenticator) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c.Request())
			if raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
			}

			claims, err := a.Parse(raw)
			if err != nil {
				a.logger.Debug().Err(err).Msg("token rejected")
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			tenant := claims.TenantCode
			if override := strings.TrimSpace(c.Request().Header.Get(TenantHeader)); override != "" && claims.Role == RoleAdmin {
				tenant = override
			}

			ctx := common.WithActor(c.Request().Context(), claims.Actor())
			ctx = common.WithRole(ctx, claims.Role)
			if tenant != "" {
				ctx = common.WithTenantCode(ctx, tenant)
			}
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("claims", claims)
			return next(c)
		}
	}
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			return ""
		}
		return strings.TrimSpace(token)
	}
	return r.URL.Query().Get("access_token")
}

// RequireRole rejects callers whose role is not one of roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := common.GetRoleFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
			}
			for _, r := range roles {
				if role == r {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
		}
	}
}
