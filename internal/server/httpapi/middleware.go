package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/linkkeeper/internal/common"
	"github.com/dmitrijs2005/linkkeeper/internal/logging"
	"github.com/dmitrijs2005/linkkeeper/internal/server/auth"
	"github.com/dmitrijs2005/linkkeeper/internal/server/models"
	"github.com/gin-gonic/gin"
)

const (
	ctxUserID = "userID"
	ctxRole   = "role"
)

func requestLogger(l logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		l.Info(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

func recovery(l logging.Logger, development bool) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, rec any) {
		l.Error(c.Request.Context(), "panic recovered", "path", c.Request.URL.Path, "panic", rec)

		body := envelope{Message: "Internal server error"}
		if development {
			if err, ok := rec.(error); ok {
				body.Error = err.Error()
			}
		}
		abortWith(c, http.StatusInternalServerError, body)
	})
}

// cors allows the configured origins with credentials so the refresh cookie
// travels with cross-origin requests from the frontend.
func cors(origins ...string) gin.HandlerFunc {
	allowed := map[string]struct{}{}
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" {
			allowed[o] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}

		if _, ok := allowed[origin]; !ok {
			// unknown origin gets no CORS headers; preflight is refused
			if c.Request.Method == http.MethodOptions {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Add("Vary", "Origin")
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Expose-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
			reqHeaders := c.GetHeader("Access-Control-Request-Headers")
			if reqHeaders == "" {
				reqHeaders = "Content-Type, Authorization"
			}
			h.Set("Access-Control-Allow-Headers", reqHeaders)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// authenticate requires a valid Bearer access token and stores the caller's
// id and role in the context.
func authenticate(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeaderName)
		token, ok := strings.CutPrefix(header, common.BearerPrefix)
		if !ok || strings.TrimSpace(token) == "" {
			abortWith(c, http.StatusUnauthorized, envelope{Message: "No token provided. Authorization denied."})
			return
		}

		id, err := tokens.VerifyAccessToken(strings.TrimSpace(token))
		if err != nil {
			if errors.Is(err, common.ErrTokenExpired) {
				abortWith(c, http.StatusUnauthorized, envelope{
					Message: "Token expired or invalid. Please refresh your token.",
					Expired: true,
				})
				return
			}
			abortWith(c, http.StatusUnauthorized, envelope{Message: "Authentication failed."})
			return
		}

		c.Set(ctxUserID, id.UserID)
		c.Set(ctxRole, id.Role)
		c.Next()
	}
}

// requireAdmin must run after authenticate.
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if callerRole(c) != models.RoleAdmin {
			abortWith(c, http.StatusForbidden, envelope{Message: "Access denied. Admin privileges required."})
			return
		}
		c.Next()
	}
}

func callerID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

func callerRole(c *gin.Context) models.Role {
	v, _ := c.Get(ctxRole)
	r, _ := v.(models.Role)
	return r
}
