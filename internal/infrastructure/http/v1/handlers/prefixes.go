package handlers

import (
	"github.com/gin-gonic/gin"

	"docserial/internal/core/numerator"
	"docserial/internal/infrastructure/http/v1/dto"
)

// PrefixHandler administers the prefix registry.
type PrefixHandler struct {
	*BaseHandler
	registry numerator.PrefixRegistry
}

// NewPrefixHandler creates a new registry handler.
func NewPrefixHandler(base *BaseHandler, registry numerator.PrefixRegistry) *PrefixHandler {
	return &PrefixHandler{BaseHandler: base, registry: registry}
}

// List handles GET /api/v1/prefixes
func (h *PrefixHandler) List(c *gin.Context) {
	entries, err := h.registry.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(dto.FromPrefixEntries(entries)))
}

// Set handles PUT /api/v1/prefixes/:name
func (h *PrefixHandler) Set(c *gin.Context) {
	var req dto.SetPrefixRequest
	if !h.BindJSON(c, &req) {
		return
	}

	saved, err := h.registry.Upsert(c.Request.Context(), req.ToEntry(c.Param("name")))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromPrefixEntry(saved))
}

// Delete handles DELETE /api/v1/prefixes/:name
func (h *PrefixHandler) Delete(c *gin.Context) {
	if err := h.registry.Delete(c.Request.Context(), c.Param("name")); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "prefix deleted")
}
