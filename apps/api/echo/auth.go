package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/risingacademy/backend/core"
	"github.com/risingacademy/backend/core/user"
)

const (
	contextTokenKey     = "userToken"
	contextPrincipalKey = "principal"
	tokenAudience       = "RisingAcademy"
)

// Claims represents the authorization claims transmitted via a JWT.
// The token ID is the identity provider session: a signed-out session invalidates the token.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Email        string `json:"email,omitempty"`
	IsAdmin      bool   `json:"is_admin,omitempty"`
}

type tokenAuth struct {
	conf      *core.Config
	jwtConfig middleware.JWTConfig
}

func newTokenAuth(conf *core.Config) *tokenAuth {
	return &tokenAuth{
		conf: conf,
		jwtConfig: middleware.JWTConfig{
			SigningKey:    []byte(conf.SecretKey),
			SigningMethod: middleware.AlgorithmHS256,
			ContextKey:    contextTokenKey,
			Claims:        new(Claims),
		},
	}
}

func (ta *tokenAuth) getUserClaims(p user.Principal, isAdmin bool, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	oriat := nownix
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	exp := now.Add(ta.conf.Server.JWTExpirationDelta)
	if !p.ExpiresAt.IsZero() && p.ExpiresAt.Before(exp) {
		exp = p.ExpiresAt
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        p.SessionID,
			Issuer:    ta.conf.AppName,
			Subject:   p.UID,
			Audience:  tokenAudience,
			ExpiresAt: exp.Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Email:        p.Email,
		IsAdmin:      isAdmin,
	}
}

// generateToken generates a signed JWT token string representing the user Claims.
func (ta *tokenAuth) generateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(ta.jwtConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(ta.jwtConfig.SigningKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// refreshToken re-issues the token of the live session, keeping its original issue time.
func (ta *tokenAuth) refreshToken(ctx echo.Context, svc *user.AuthService) (string, bool, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", false, errors.Wrap(err, "getting context claims")
	}
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return "", false, errors.Wrap(err, "getting context principal")
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(ta.conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", false, errRefreshExpired
	}

	isAdmin, err := svc.IsAdmin(ctx.Request().Context(), p.UID)
	if err != nil {
		return "", false, errors.Wrap(err, "checking admin role")
	}
	token, err := ta.generateToken(ta.getUserClaims(p, isAdmin, claims.OrigIssuedAt))
	return token, isAdmin, err
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextPrincipal(ctx echo.Context) (user.Principal, error) {
	if p, ok := ctx.Get(contextPrincipalKey).(user.Principal); ok {
		return p, nil
	}
	return user.Principal{}, errUnauthorized
}
