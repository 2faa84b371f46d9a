package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/linkkeeper/internal/common"
	"github.com/dmitrijs2005/linkkeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

var (
	linkNotFound      = messages{common.ErrorNotFound: "Share link not found"}
	ownedLinkNotFound = messages{common.ErrorNotFound: "Share link not found or unauthorized"}
)

type createShareLinkRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
	ExpiryHours *int   `json:"expiryHours" binding:"omitempty,min=0"`
	MaxUses     *int   `json:"maxUses" binding:"omitempty,min=1"`
}

func (h *handler) createShareLink(c *gin.Context) {
	var req createShareLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		rejectBody(c, err)
		return
	}

	res, err := h.links.Create(c.Request.Context(), callerID(c), services.CreateShareLinkInput{
		Title:       req.Title,
		Description: req.Description,
		ExpiryHours: req.ExpiryHours,
		MaxUses:     req.MaxUses,
	})
	if err != nil {
		h.fail(c, err, nil)
		return
	}

	respond(c, http.StatusCreated, "Share link created successfully", gin.H{
		"shareLink": res.ShareLink,
		"url":       res.URL,
	})
}

func (h *handler) myShareLinks(c *gin.Context) {
	links, err := h.links.ListOwned(c.Request.Context(), callerID(c))
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"shareLinks": links})
}

func (h *handler) accessShareLink(c *gin.Context) {
	view, err := h.links.Access(c.Request.Context(), c.Param("token"), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		h.fail(c, err, linkNotFound)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"shareLink": view})
}

func (h *handler) deleteShareLink(c *gin.Context) {
	if err := h.links.Delete(c.Request.Context(), callerID(c), c.Param("id")); err != nil {
		h.fail(c, err, ownedLinkNotFound)
		return
	}
	respond(c, http.StatusOK, "Share link deleted successfully", nil)
}

func (h *handler) toggleShareLink(c *gin.Context) {
	link, err := h.links.Toggle(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		h.fail(c, err, ownedLinkNotFound)
		return
	}

	msg := "Share link deactivated successfully"
	if link.IsActive {
		msg = "Share link activated successfully"
	}
	respond(c, http.StatusOK, msg, gin.H{"shareLink": link})
}

func (h *handler) shareLinkLog(c *gin.Context) {
	entries, err := h.links.AccessLog(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		h.fail(c, err, ownedLinkNotFound)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"accessLog": entries})
}
