package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vector-admin/backend/internal/model"
	"github.com/vector-admin/backend/internal/service"
)

type SearchHandler struct {
	svc *service.VectorService
}

func NewSearchHandler(svc *service.VectorService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

// Search godoc
// @Summary Vector search
// @Description Nearest-neighbor search in a collection, scored by its distance metric.
// @Tags search
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.SearchRequest true "Collection, query vector and limits"
// @Success 200 {object} model.SearchResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /search [post]
func (h *SearchHandler) Search(c *gin.Context) {
	var req model.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	hits, err := h.svc.Search(c.Request.Context(), GetAuthUser(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.SearchResponse{Results: hits})
}
