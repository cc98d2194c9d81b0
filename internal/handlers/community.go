package handlers

import (
	"net/http"

	"phreddit/internal/middleware"
	"phreddit/internal/services"
	"phreddit/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CommunityHandler struct {
	svc   *services.Services
	cache *utils.Cache
	log   logrus.FieldLogger
}

func NewCommunityHandler(svc *services.Services, cache *utils.Cache, log logrus.FieldLogger) *CommunityHandler {
	return &CommunityHandler{svc: svc, cache: cache, log: log}
}

// List 社区列表，已加入的排在前面
func (h *CommunityHandler) List(c *gin.Context) {
	communities, err := h.svc.Ranker.ListCommunities(c.Request.Context(), middleware.ViewerID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, communities)
}

func (h *CommunityHandler) Get(c *gin.Context) {
	community, err := h.svc.Forum.GetCommunity(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, community)
}

func (h *CommunityHandler) Create(c *gin.Context) {
	var in services.CommunityInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	community, err := h.svc.Membership.CreateCommunity(c.Request.Context(), in, middleware.CurrentUserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, community)
}

func (h *CommunityHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	community, err := h.svc.Forum.GetCommunity(ctx, c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	if !h.isCreatorOrAdmin(c, community.Creator()) {
		forbidden(c)
		return
	}

	var in services.CommunityInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	community, err = h.svc.Membership.UpdateCommunity(ctx, community.ID, in)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, community)
}

func (h *CommunityHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	community, err := h.svc.Forum.GetCommunity(ctx, c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	if !h.isCreatorOrAdmin(c, community.Creator()) {
		forbidden(c)
		return
	}
	if err := h.svc.Content.DeleteCommunityCascade(ctx, community.ID); err != nil {
		RespondError(c, err)
		return
	}
	logFor(c, h.log).WithField("community_id", community.ID).Info("community deleted")
	c.JSON(http.StatusOK, gin.H{"message": "Community and associated content deleted successfully"})
}

func (h *CommunityHandler) Join(c *gin.Context) {
	community, err := h.svc.Membership.Join(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, community)
}

func (h *CommunityHandler) Leave(c *gin.Context) {
	community, err := h.svc.Membership.Leave(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, community)
}

// Posts 社区内的帖子，按 sort 排序
func (h *CommunityHandler) Posts(c *gin.Context) {
	cached(c, h.cache, func() (interface{}, error) {
		return h.svc.Ranker.CommunityPosts(c.Request.Context(), c.Param("id"), c.Query("sort"))
	})
}

func (h *CommunityHandler) isCreatorOrAdmin(c *gin.Context, creatorID string) bool {
	u := middleware.CurrentUser(c)
	return u != nil && (u.IsAdmin || u.ID == creatorID)
}
