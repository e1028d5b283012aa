package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

var (
	errMissingAuthorization = errors.New("missing authorization header")
	errBadAuthorization     = errors.New("bad auth header")
)

const (
	ctxUserID   = "user_id"
	ctxUserName = "user_name"
)

// Identity is who a valid token belongs to
type Identity struct {
	UserID string
	Name   string
}

// Auth validates HS256 bearer tokens for the admin API
type Auth struct {
	secret []byte
	parser *jwt.Parser
}

// NewAuth creates an Auth for the shared secret
func NewAuth(secret string) *Auth {
	return &Auth{
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{"HS256"})),
	}
}

// IssueToken signs a token for userID valid for ttl
func (a *Auth) IssueToken(userID, name string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	if name != "" {
		claims["name"] = name
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// IdentityFromAuthHeader validates an "Authorization: Bearer ..." value
func (a *Auth) IdentityFromAuthHeader(h string) (Identity, error) {
	h = strings.TrimSpace(h)
	if h == "" {
		return Identity{}, errMissingAuthorization
	}
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok || strings.Count(token, ".") != 2 {
		return Identity{}, errBadAuthorization
	}

	parsed, err := a.parser.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return a.secret, nil
	})
	if err != nil {
		return Identity{}, err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, errors.New("invalid claims")
	}
	if !claims.VerifyExpiresAt(time.Now().Unix(), true) {
		return Identity{}, errors.New("token expired")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return Identity{}, errors.New("missing sub")
	}
	name, _ := claims["name"].(string)
	if name == "" {
		name = sub
	}
	return Identity{UserID: sub, Name: name}, nil
}

// Middleware rejects requests without a valid token and stores the caller's
// identity on the context
func (a *Auth) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := a.IdentityFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		c.Set(ctxUserID, id.UserID)
		c.Set(ctxUserName, id.Name)
		return next(c)
	}
}

func identityFrom(c echo.Context) Identity {
	id, _ := c.Get(ctxUserID).(string)
	name, _ := c.Get(ctxUserName).(string)
	return Identity{UserID: id, Name: name}
}
