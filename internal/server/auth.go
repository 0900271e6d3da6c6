package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoJWTSecret  = errors.New("JWT secret is not configured")
	ErrInvalidToken = errors.New("invalid token")
)

const userIDKey = "userID"

// IssueToken signs an HS256 token whose subject is userID.
func IssueToken(secret []byte, userID string, ttl time.Duration, now time.Time) (string, error) {
	if len(secret) == 0 {
		return "", ErrNoJWTSecret
	}
	if userID == "" {
		return "", errors.New("empty userID passed to IssueToken")
	}
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken validates token and returns its subject.
func ParseToken(secret []byte, token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// authenticate requires a bearer token whose subject matches the :userID
// path parameter. WebSocket clients may pass the token as ?token= instead.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if header := c.GetHeader("Authorization"); header != "" {
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				abort(c, http.StatusUnauthorized, "invalid authorization format, use 'Bearer <token>'")
				return
			}
			token = parts[1]
		}
		if token == "" {
			abort(c, http.StatusUnauthorized, "missing authorization header")
			return
		}

		subject, err := ParseToken(s.secret, token)
		if err != nil {
			abort(c, http.StatusUnauthorized, err.Error())
			return
		}
		if subject != c.Param("userID") {
			abort(c, http.StatusForbidden, "token does not grant access to this onboarding")
			return
		}
		c.Set(userIDKey, subject)
		c.Next()
	}
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: msg, Status: status})
}
