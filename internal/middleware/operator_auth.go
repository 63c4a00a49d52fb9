package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/rdd81/smart-budget-app/internal/errors"
)

const operatorKeyHeader = "X-API-Key"

var errOperatorDisabled = &apperrors.AppError{
	Code:       "OPERATOR_API_DISABLED",
	Message:    "Operator endpoints are not configured",
	StatusCode: http.StatusServiceUnavailable,
}

var errInvalidOperatorKey = &apperrors.AppError{
	Code:       "INVALID_API_KEY",
	Message:    "Invalid or missing API key",
	StatusCode: http.StatusForbidden,
}

// OperatorKeyMiddleware guards shared reference data (categories and rules)
// behind the X-API-Key header. With no key configured the routes are closed.
func OperatorKeyMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			abortWithError(c, errOperatorDisabled)
			return
		}
		key := c.GetHeader(operatorKeyHeader)
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			abortWithError(c, errInvalidOperatorKey)
			return
		}
		c.Next()
	}
}
