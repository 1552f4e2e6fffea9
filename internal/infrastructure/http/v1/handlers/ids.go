package handlers

import (
	"github.com/gin-gonic/gin"

	"docserial/internal/core/apperror"
	"docserial/internal/core/numerator"
	"docserial/internal/infrastructure/http/v1/dto"
)

// IDHandler exposes identifier allocation.
// Allocation never fails: storage problems surface as degraded: true.
type IDHandler struct {
	*BaseHandler
	allocator numerator.Allocator
	allowed   map[numerator.Target]bool
}

// NewIDHandler creates a new allocation handler. With allowed non-empty,
// other targets are refused before any lock is taken.
func NewIDHandler(base *BaseHandler, allocator numerator.Allocator, allowed ...numerator.Target) *IDHandler {
	h := &IDHandler{BaseHandler: base, allocator: allocator}
	if len(allowed) > 0 {
		h.allowed = make(map[numerator.Target]bool, len(allowed))
		for _, t := range allowed {
			h.allowed[t] = true
		}
	}
	return h
}

func (h *IDHandler) permitted(c *gin.Context, target numerator.Target) bool {
	if h.allowed == nil || h.allowed[target] {
		return true
	}
	h.Error(c, apperror.NewForbidden("target not allowed").WithDetail("target", target.String()))
	return false
}

// ByType allocates using the prefix registered for the type.
// POST /api/v1/ids/by-type
func (h *IDHandler) ByType(c *gin.Context) {
	var req dto.AllocateByTypeRequest
	if !h.BindJSON(c, &req) || !h.permitted(c, req.Target()) {
		return
	}

	res := h.allocator.AllocateByType(c.Request.Context(), req.Type, req.Target())
	h.OK(c, dto.FromResult(res))
}

// ByPrefix allocates using an explicit prefix.
// POST /api/v1/ids/by-prefix
func (h *IDHandler) ByPrefix(c *gin.Context) {
	var req dto.AllocateByPrefixRequest
	if !h.BindJSON(c, &req) || !h.permitted(c, req.Target()) {
		return
	}

	res := h.allocator.AllocateByPrefix(c.Request.Context(), req.Prefix, req.Target())
	h.OK(c, dto.FromResult(res))
}
