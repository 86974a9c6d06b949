package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"restaurant-admin-api/models"
)

const adminKey = "admin"

type Claims struct {
	AdminID  string           `json:"id"`
	Username string           `json:"username"`
	Email    string           `json:"email,omitempty"`
	Role     models.AdminRole `json:"role"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies admin JWTs.
type Tokens struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewTokens returns a signer using HS256 with the given secret.
func NewTokens(secret string, expiry time.Duration) *Tokens {
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &Tokens{secret: []byte(secret), expiry: expiry, now: time.Now}
}

// GenerateToken creates a signed JWT for the given admin
func (t *Tokens) GenerateToken(admin models.AdminIdentity) (string, error) {
	now := t.now()
	claims := Claims{
		AdminID:  admin.ID,
		Username: admin.Username,
		Email:    admin.Email,
		Role:     admin.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(t.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Parse validates a token string and returns its claims.
func (t *Tokens) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.AdminID == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// AuthRequired validates the JWT and injects the admin identity into context
func AuthRequired(tokens *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required (Bearer <token>)"})
			c.Abort()
			return
		}
		claims, err := tokens.Parse(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}
		c.Set(adminKey, models.AdminIdentity{
			ID:       claims.AdminID,
			Username: claims.Username,
			Email:    claims.Email,
			Role:     claims.Role,
		})
		c.Next()
	}
}

// AdminRequired enforces that the caller has one of the allowed roles.
// With no roles given, any admin role is accepted.
func AdminRequired(roles ...models.AdminRole) gin.HandlerFunc {
	if len(roles) == 0 {
		roles = []models.AdminRole{models.RoleAdmin, models.RoleSuperAdmin}
	}
	return func(c *gin.Context) {
		admin, ok := GetAdmin(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Admin identity not found in context"})
			c.Abort()
			return
		}
		for _, r := range roles {
			if admin.Role == r {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Access denied. Required role(s): " + rolesString(roles),
		})
		c.Abort()
	}
}

func rolesString(roles []models.AdminRole) string {
	s := make([]string, len(roles))
	for i, r := range roles {
		s[i] = string(r)
	}
	return strings.Join(s, ", ")
}

// GetAdmin extracts the caller identity from context
func GetAdmin(c *gin.Context) (models.AdminIdentity, bool) {
	val, ok := c.Get(adminKey)
	if !ok {
		return models.AdminIdentity{}, false
	}
	admin, ok := val.(models.AdminIdentity)
	return admin, ok
}

// SetAdmin attaches an identity to the context, e.g. in tests.
func SetAdmin(c *gin.Context, admin models.AdminIdentity) {
	c.Set(adminKey, admin)
}
