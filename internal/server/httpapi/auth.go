package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/linkkeeper/internal/common"
	"github.com/dmitrijs2005/linkkeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

const refreshCookiePath = "/api/auth"

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30,username"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// loginRequest accepts the login under "login", "username" or "email".
type loginRequest struct {
	Login    string `json:"login"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

func (r loginRequest) identifier() string {
	switch {
	case r.Login != "":
		return r.Login
	case r.Username != "":
		return r.Username
	}
	return r.Email
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *handler) setRefreshCookie(c *gin.Context, token string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     common.RefreshTokenCookieName,
		Value:    token,
		Path:     refreshCookiePath,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   !h.development,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *handler) writeAuthResult(c *gin.Context, status int, msg string, res *services.AuthResult) {
	h.setRefreshCookie(c, res.Tokens.RefreshToken, int(h.tokens.RefreshTTL().Seconds()))
	respond(c, status, msg, gin.H{
		"user":        res.User,
		"accessToken": res.Tokens.AccessToken,
	})
}

func (h *handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		rejectBody(c, err)
		return
	}

	res, err := h.users.Register(c.Request.Context(), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.fail(c, err, messages{common.ErrorAlreadyExists: "User with this email or username already exists"})
		return
	}

	h.writeAuthResult(c, http.StatusCreated, "User registered successfully", res)
}

func (h *handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		rejectBody(c, err)
		return
	}

	res, err := h.users.Login(c.Request.Context(), services.LoginInput{
		Login:    req.identifier(),
		Password: req.Password,
		IP:       c.ClientIP(),
	})
	if err != nil {
		h.fail(c, err, messages{common.ErrorUnauthorized: "Invalid credentials"})
		return
	}

	h.writeAuthResult(c, http.StatusOK, "Login successful", res)
}

// refresh reads the token from the cookie, falling back to the JSON body.
func (h *handler) refresh(c *gin.Context) {
	token, err := c.Cookie(common.RefreshTokenCookieName)
	if err != nil || token == "" {
		var req refreshRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				rejectBody(c, err)
				return
			}
		}
		token = req.RefreshToken
	}
	if token == "" {
		abortWith(c, http.StatusUnauthorized, envelope{Message: "Refresh token not found"})
		return
	}

	res, err := h.users.Refresh(c.Request.Context(), token)
	if err != nil {
		h.fail(c, err, messages{
			common.ErrInvalidToken:   "Invalid or expired refresh token",
			common.ErrorUnauthorized: "User not found",
		})
		return
	}

	respond(c, http.StatusOK, "", gin.H{"accessToken": res.AccessToken})
}

func (h *handler) logout(c *gin.Context) {
	h.setRefreshCookie(c, "", -1)
	respond(c, http.StatusOK, "Logout successful", nil)
}

func (h *handler) me(c *gin.Context) {
	u, err := h.users.Me(c.Request.Context(), callerID(c))
	if err != nil {
		h.fail(c, err, messages{common.ErrorNotFound: "User not found"})
		return
	}
	respond(c, http.StatusOK, "", gin.H{"user": u})
}
