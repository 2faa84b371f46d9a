// Package httpapi is the JSON HTTP boundary of the server. It maps requests
// onto the services and their errors onto status codes.
package httpapi

import (
	"net/http"
	"sync"

	"github.com/dmitrijs2005/linkkeeper/internal/logging"
	"github.com/dmitrijs2005/linkkeeper/internal/server/auth"
	"github.com/dmitrijs2005/linkkeeper/internal/server/services"
	"github.com/dmitrijs2005/linkkeeper/internal/validatex"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// bindingRules adds the custom tags to gin's process-wide validator.
var bindingRules sync.Once

type Options struct {
	Users       *services.UserService
	Links       *services.ShareLinkService
	Tokens      *auth.TokenManager
	Logger      logging.Logger
	FrontendURL string
	Development bool
}

type handler struct {
	users       *services.UserService
	links       *services.ShareLinkService
	tokens      *auth.TokenManager
	logger      logging.Logger
	development bool
}

// NewRouter builds the gin engine serving every /api route.
func NewRouter(o Options) *gin.Engine {
	bindingRules.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			validatex.Register(v)
		}
	})

	l := o.Logger
	if l == nil {
		l = logging.Nop()
	}
	l = l.With("module", "http_server")

	h := &handler{
		users:       o.Users,
		links:       o.Links,
		tokens:      o.Tokens,
		logger:      l,
		development: o.Development,
	}

	r := gin.New()
	r.Use(recovery(l, o.Development), requestLogger(l), cors(o.FrontendURL))

	r.NoRoute(func(c *gin.Context) {
		abortWith(c, http.StatusNotFound, envelope{Message: "Route not found"})
	})

	api := r.Group("/api")
	api.GET("/health", h.health)

	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.register)
	authGroup.POST("/login", h.login)
	authGroup.POST("/refresh", h.refresh)
	authGroup.POST("/logout", h.logout)
	authGroup.GET("/me", authenticate(h.tokens), h.me)

	admin := api.Group("/admin", authenticate(h.tokens), requireAdmin())
	admin.GET("/users", h.listUsers)
	admin.GET("/users/stats", h.userStats)
	admin.GET("/users/:id", h.getUser)
	admin.PATCH("/users/:id/role", h.updateUserRole)
	admin.DELETE("/users/:id", h.deleteUser)

	share := api.Group("/share")
	share.GET("/access/:token", h.accessShareLink)
	owned := share.Group("", authenticate(h.tokens))
	owned.POST("/create", h.createShareLink)
	owned.GET("/my-links", h.myShareLinks)
	owned.DELETE("/:id", h.deleteShareLink)
	owned.PATCH("/:id/toggle", h.toggleShareLink)
	owned.GET("/:id/log", h.shareLinkLog)

	return r
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK", "message": "Server is running"})
}
