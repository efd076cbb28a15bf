package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vector-admin/backend/internal/model"
	"github.com/vector-admin/backend/internal/service"
)

type CollectionHandler struct {
	svc *service.VectorService
}

func NewCollectionHandler(svc *service.VectorService) *CollectionHandler {
	return &CollectionHandler{svc: svc}
}

// List godoc
// @Summary List collections
// @Tags collections
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.CollectionListResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /collections [get]
func (h *CollectionHandler) List(c *gin.Context) {
	collections, err := h.svc.ListCollections(c.Request.Context(), GetAuthUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.CollectionListResponse{Collections: collections})
}

// Create godoc
// @Summary Create a collection
// @Description Admin only. Distance defaults to Cosine.
// @Tags collections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.CreateCollectionRequest true "Name, vector size and distance"
// @Success 201 {object} model.Collection
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Router /collections [post]
func (h *CollectionHandler) Create(c *gin.Context) {
	var req model.CreateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	col, err := h.svc.CreateCollection(c.Request.Context(), GetAuthUser(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, col)
}

// Delete godoc
// @Summary Delete a collection
// @Description Admin only. Points in the collection are removed with it.
// @Tags collections
// @Produce json
// @Security BearerAuth
// @Param name path string true "Collection name"
// @Success 200 {object} model.StatusResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /collections/{name} [delete]
func (h *CollectionHandler) Delete(c *gin.Context) {
	name := c.Param("name")
	if err := h.svc.DeleteCollection(c.Request.Context(), GetAuthUser(c), name); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.StatusResponse{Status: "success", Message: "collection deleted"})
}
