package app

import "github.com/gin-gonic/gin"

// Module defines the contract for a self-registering view server module.
// Each module registers its routes under /api/v1.
type Module interface {
	RegisterRoutes(api *gin.RouterGroup)
}
