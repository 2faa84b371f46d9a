package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/linkkeeper/internal/common"
	"github.com/gin-gonic/gin"
)

var userNotFound = messages{common.ErrorNotFound: "User not found"}

type updateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=user admin"`
}

func (h *handler) listUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"users": users, "count": len(users)})
}

func (h *handler) userStats(c *gin.Context) {
	stats, err := h.users.Stats(c.Request.Context())
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"stats": stats})
}

func (h *handler) getUser(c *gin.Context) {
	u, err := h.users.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, userNotFound)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"user": u})
}

func (h *handler) updateUserRole(c *gin.Context) {
	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		rejectBody(c, err)
		return
	}

	u, err := h.users.UpdateRole(c.Request.Context(), callerID(c), c.Param("id"), req.Role)
	if err != nil {
		h.fail(c, err, userNotFound)
		return
	}
	respond(c, http.StatusOK, "User role updated successfully", gin.H{"user": u})
}

func (h *handler) deleteUser(c *gin.Context) {
	if err := h.users.DeleteUser(c.Request.Context(), callerID(c), c.Param("id")); err != nil {
		h.fail(c, err, userNotFound)
		return
	}
	respond(c, http.StatusOK, "User deleted successfully", nil)
}
