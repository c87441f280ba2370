// Package http holds the pieces the router and the domain modules share.
package http

import (
	"github.com/gin-gonic/gin"
)

// Module is a bounded context that mounts its own routes.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext is handed to every module at startup. Public routes are
// rate limited only; Protected additionally requires a valid access token and
// exposes the caller through httpkit.GetIdentity.
type RouterContext struct {
	Public    *gin.RouterGroup
	Protected *gin.RouterGroup
}
