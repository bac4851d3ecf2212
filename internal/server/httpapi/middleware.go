package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/konasal/konasal-backend/internal/common"
	"github.com/konasal/konasal-backend/internal/server/models"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	userKey         = "user"
)

// requestLogger logs method, path, status and latency under a request id
// taken from X-Request-ID or freshly generated.
func (s *HTTPServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)

		c.Next()

		s.logger.Info(c.Request.Context(), "request",
			"request_id", id,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
		)
	}
}

// recovery turns a panic into a 500 JSON response.
func (s *HTTPServer) recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, rec any) {
		s.logger.Error(c.Request.Context(), "panic recovered", "request_id", c.GetString(requestIDKey), "panic", rec)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": msgInternal})
	})
}

// cors admits requests without an Origin header and requests from the
// configured origins. Credentials are allowed, so the origin is echoed
// rather than "*".
func (s *HTTPServer) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}

		if _, ok := s.allowedOrigins[origin]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"message": "The CORS policy for this site does not allow access from the specified Origin.",
			})
			return
		}

		header := c.Writer.Header()
		header.Set("Access-Control-Allow-Origin", origin)
		header.Add("Vary", "Origin")
		header.Set("Access-Control-Allow-Credentials", "true")
		header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// authRequired resolves the bearer token to a user and stores it in the
// context. Missing, malformed and expired tokens get 401.
func (s *HTTPServer) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, ok := strings.Cut(c.GetHeader(common.AuthorizationHeaderName), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			respondMessage(c, http.StatusUnauthorized, "Not authorized, no token")
			c.Abort()
			return
		}

		user, err := s.users.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			switch {
			case errors.Is(err, common.ErrTokenExpired):
				respondMessage(c, http.StatusUnauthorized, "Session expired")
			case errors.Is(err, common.ErrInvalidToken):
				respondMessage(c, http.StatusUnauthorized, "Not authorized, token failed")
			default:
				s.logFailure(c, "authenticate", err)
				respondMessage(c, http.StatusInternalServerError, msgInternal)
			}
			c.Abort()
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// adminOnly must run after authRequired.
func (s *HTTPServer) adminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			respondMessage(c, http.StatusUnauthorized, "Not authorized, no token")
			c.Abort()
			return
		}
		if user.Role != common.RoleAdmin {
			respondMessage(c, http.StatusForbidden, "Admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user stored by authRequired.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok && u != nil
}
