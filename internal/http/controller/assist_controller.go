package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stockkeep/inventory-service/internal/service"
)

// AssistController handles HTTP requests backed by the assist service.
type AssistController struct {
	productService *service.ProductService
}

// NewAssistController creates a new AssistController with the given product service.
func NewAssistController(productService *service.ProductService) *AssistController {
	return &AssistController{
		productService: productService,
	}
}

// AutofillRequest represents the request body for an autofill suggestion.
type AutofillRequest struct {
	Description string `json:"description"`
}

// AutofillResponse represents the response body for an autofill suggestion.
type AutofillResponse struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    int64  `json:"price"`
}

// Autofill handles the HTTP POST request for suggesting product fields from
// a free-form description.
func (ac *AssistController) Autofill(c *gin.Context) {
	var req AutofillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "description cannot be empty"})
		return
	}

	suggestion, err := ac.productService.AutofillProduct(c.Request.Context(), req.Description)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, AutofillResponse{
		Name:     suggestion.Name,
		Category: suggestion.Category,
		Price:    suggestion.Price,
	})
}

// ChatRequest represents the request body for an inventory question.
type ChatRequest struct {
	Question string `json:"question"`
}

// Chat handles the HTTP POST request for answering a free-form inventory question.
func (ac *AssistController) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "question cannot be empty"})
		return
	}

	answer, err := ac.productService.ChatAnswer(c.Request.Context(), req.Question)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"answer": answer})
}
