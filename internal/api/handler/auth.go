package handler

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"swarajdesk/backend/internal/complaint"
	"swarajdesk/backend/internal/models"

	"github.com/gin-gonic/gin"

	jwt "github.com/golang-jwt/jwt/v5"
)

const (
	claimsKey   = "claims"
	tokenCookie = "token"
)

// Claims is the payload of a bearer token.
type Claims struct {
	ID          string             `json:"id"`
	AccessLevel models.AccessLevel `json:"accessLevel"`
	jwt.RegisteredClaims
}

// Authenticator issues and verifies HS256 bearer tokens.
type Authenticator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthenticator(secret string, ttl time.Duration) *Authenticator {
	return &Authenticator{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// IssueToken signs a token for id at the given access level.
func (a *Authenticator) IssueToken(id string, level models.AccessLevel) (string, error) {
	if id == "" || !level.Valid() {
		return "", fmt.Errorf("invalid token subject %q/%q", id, level)
	}
	now := a.now()
	claims := Claims{
		ID:          id,
		AccessLevel: level,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Parse verifies the signature and expiry of raw and returns its claims.
func (a *Authenticator) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, err
	}
	if claims.ID == "" || !claims.AccessLevel.Valid() {
		return nil, errors.New("token is missing id or access level")
	}
	return claims, nil
}

func tokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(header[len("Bearer "):])
	}
	if cookie, err := c.Cookie(tokenCookie); err == nil {
		return cookie
	}
	return ""
}

// RequireAuth rejects requests without a valid token (401) or whose access
// level is not among levels (403). No levels means any authenticated caller.
func (h *Handler) RequireAuth(levels ...models.AccessLevel) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := tokenFromRequest(c)
		if raw == "" {
			h.respondError(c, complaint.Unauthorized("Authentication required"))
			return
		}
		claims, err := h.Auth.Parse(raw)
		if err != nil {
			h.respondError(c, complaint.Unauthorized("Invalid or expired token"))
			return
		}
		if len(levels) > 0 && !slices.Contains(levels, claims.AccessLevel) {
			h.respondError(c, complaint.Forbidden("Access denied"))
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// OptionalAuth attaches claims when a valid token is present and otherwise
// lets the request through anonymously.
func (h *Handler) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := tokenFromRequest(c); raw != "" {
			if claims, err := h.Auth.Parse(raw); err == nil {
				c.Set(claimsKey, claims)
			}
		}
		c.Next()
	}
}

func claimsFrom(c *gin.Context) *Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*Claims)
	return claims
}

func viewerFrom(c *gin.Context) complaint.Viewer {
	if claims := claimsFrom(c); claims != nil {
		return complaint.Viewer{ID: claims.ID, Role: claims.AccessLevel}
	}
	return complaint.Viewer{}
}

func actorFrom(c *gin.Context) models.Actor {
	if claims := claimsFrom(c); claims != nil {
		return models.Actor{ID: claims.ID, Role: claims.AccessLevel}
	}
	return models.Actor{}
}
