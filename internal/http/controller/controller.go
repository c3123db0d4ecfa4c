// Package controller translates HTTP requests into service calls and
// service errors into status codes.
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stockkeep/inventory-service/internal/config"
)

// Controller handles general HTTP requests.
type Controller struct {
	config *config.Config
}

// New creates a new Controller with the given configuration.
func New(config *config.Config) *Controller {
	return &Controller{
		config: config,
	}
}

// Health handles the HTTP GET request for the health check endpoint.
func (con *Controller) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}
