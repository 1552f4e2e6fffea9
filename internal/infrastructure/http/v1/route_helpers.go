// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	appctx "docserial/internal/core/context"
	"docserial/internal/infrastructure/http/v1/middleware"
)

// IDRouteHandler defines the allocation endpoints.
type IDRouteHandler interface {
	ByType(c *gin.Context)
	ByPrefix(c *gin.Context)
}

// PrefixRouteHandler defines the registry admin endpoints.
type PrefixRouteHandler interface {
	List(c *gin.Context)
	Set(c *gin.Context)
	Delete(c *gin.Context)
}

// RegisterIDRoutes registers allocation routes.
func RegisterIDRoutes(group *gin.RouterGroup, handler IDRouteHandler, guarded bool) {
	perm := permissionChain(guarded)

	group.POST("/by-type", append(perm(appctx.PermIDAllocate), handler.ByType)...)
	group.POST("/by-prefix", append(perm(appctx.PermIDAllocate), handler.ByPrefix)...)
}

// RegisterPrefixRoutes registers registry routes. With guarded set, each
// route also checks the caller's permission.
func RegisterPrefixRoutes(group *gin.RouterGroup, handler PrefixRouteHandler, guarded bool) {
	perm := permissionChain(guarded)

	group.GET("", append(perm(appctx.PermPrefixRead), handler.List)...)
	group.PUT("/:name", append(perm(appctx.PermPrefixWrite), handler.Set)...)
	group.DELETE("/:name", append(perm(appctx.PermPrefixWrite), handler.Delete)...)
}

func permissionChain(guarded bool) func(p string) []gin.HandlerFunc {
	return func(p string) []gin.HandlerFunc {
		if !guarded {
			return nil
		}
		return []gin.HandlerFunc{middleware.RequirePermission(p)}
	}
}
