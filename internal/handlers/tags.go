package handlers

import (
	"net/http"

	"github.com/curiohub/curiohub/internal/util"
	"github.com/gin-gonic/gin"
)

// ListTags returns every tag, ordered by name
// GET /api/v1/tags
func (h *Handlers) ListTags(c *gin.Context) {
	tags, err := h.tags.List(c.Request.Context())
	if err != nil {
		util.RespondInternalError(c, "failed to load tags", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}
