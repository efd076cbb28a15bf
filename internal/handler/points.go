package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vector-admin/backend/internal/model"
	"github.com/vector-admin/backend/internal/service"
)

type PointHandler struct {
	svc *service.VectorService
}

func NewPointHandler(svc *service.VectorService) *PointHandler {
	return &PointHandler{svc: svc}
}

// Upsert godoc
// @Summary Upsert a point
// @Description Inserts or replaces a point; the vector must match the collection's size.
// @Tags points
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.UpsertPointRequest true "Collection, point id, vector and payload"
// @Success 200 {object} model.StatusResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /points [post]
func (h *PointHandler) Upsert(c *gin.Context) {
	var req model.UpsertPointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.svc.UpsertPoint(c.Request.Context(), GetAuthUser(c), req); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.StatusResponse{Status: "success", Message: "point upserted"})
}

// Get godoc
// @Summary Scroll points in a collection
// @Tags points
// @Produce json
// @Security BearerAuth
// @Param collection path string true "Collection name"
// @Param limit query int false "Max points to return (default 10)"
// @Success 200 {object} model.PointListResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /points/{collection} [get]
func (h *PointHandler) Get(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	points, err := h.svc.GetPoints(c.Request.Context(), GetAuthUser(c), c.Param("collection"), limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.PointListResponse{Points: points, Count: len(points)})
}

// Delete godoc
// @Summary Delete points
// @Tags points
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.DeletePointsRequest true "Collection and point ids"
// @Success 200 {object} model.StatusResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /points [delete]
func (h *PointHandler) Delete(c *gin.Context) {
	var req model.DeletePointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.svc.DeletePoints(c.Request.Context(), GetAuthUser(c), req); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.StatusResponse{Status: "success", Message: "points deleted"})
}
