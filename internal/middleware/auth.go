package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/rdd81/smart-budget-app/internal/errors"
	"github.com/rdd81/smart-budget-app/internal/uuid"
)

// Context keys set by AuthMiddleware.
const (
	UserIDKey = "userID"
	EmailKey  = "email"
)

const tokenTypeRefresh = "refresh"

// JWTClaims represents the claims in the JWT. Tokens are issued by the
// identity service; this API only validates them.
type JWTClaims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// subject returns the user the token was issued for. user_id wins over sub.
func (c *JWTClaims) subject() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}

// GenerateAccessToken signs an HS256 access token for userID. Used by tests
// and local tooling.
func GenerateAccessToken(secret, userID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		UserID:    userID,
		Email:     email,
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   userID,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseAccessToken validates tokenString and returns its claims. Refresh
// tokens and tokens without a UUID subject are rejected.
func ParseAccessToken(secret, tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.TokenType == tokenTypeRefresh {
		return nil, errors.New("refresh token used as access token")
	}
	id, err := uuid.Parse(claims.subject())
	if err != nil {
		return nil, fmt.Errorf("token subject is not a user ID: %w", err)
	}
	claims.UserID = id
	return claims, nil
}

// AuthMiddleware verifies the bearer token and sets the user in the context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Authorization header is required"))
			return
		}

		scheme, tokenString, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid authorization header format"))
			return
		}

		claims, err := ParseAccessToken(secret, strings.TrimSpace(tokenString))
		if err != nil {
			abortWithError(c, apperrors.Wrap(
				apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid or expired token"), err))
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(EmailKey, claims.Email)
		c.Next()
	}
}

// abortWithError stops the chain and leaves err for ErrorHandler to render.
func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
