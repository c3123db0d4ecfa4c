package http

import (
	"github.com/gin-gonic/gin"
	"github.com/stockkeep/inventory-service/internal/config"
	"github.com/stockkeep/inventory-service/internal/http/controller"
	"github.com/stockkeep/inventory-service/internal/http/middleware"
)

// InitRouter registers the middleware stack and all inventory endpoints.
func InitRouter(config *config.Config, server *gin.Engine, ctr *controller.Controller, productCtr *controller.ProductController, assistCtr *controller.AssistController) *gin.Engine {
	server.Use(middleware.Recovery())
	server.Use(middleware.CORS())
	server.Use(middleware.Logger())

	server.GET("/health", ctr.Health)

	products := server.Group("/products")
	{
		products.POST("", productCtr.CreateProduct)
		products.GET("", productCtr.ListProducts)
		products.GET("/:id", productCtr.GetProduct)
		products.PUT("/:id", productCtr.UpdateProduct)
		products.DELETE("/:id", productCtr.DeleteProduct)
		products.GET("/:id/restock-suggestion", productCtr.RestockSuggestion)
	}

	server.POST("/autofill", assistCtr.Autofill)
	server.POST("/chat", assistCtr.Chat)

	return server
}
