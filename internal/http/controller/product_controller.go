package controller

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stockkeep/inventory-service/internal/assist"
	"github.com/stockkeep/inventory-service/internal/model"
	"github.com/stockkeep/inventory-service/internal/repository"
	"github.com/stockkeep/inventory-service/internal/service"
	"github.com/stockkeep/inventory-service/internal/validate"
)

// ProductController handles HTTP requests for product operations.
type ProductController struct {
	productService *service.ProductService
}

// NewProductController creates a new ProductController with the given product service.
func NewProductController(productService *service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

// ProductResponse represents the response body for a product.
type ProductResponse struct {
	ID              int64   `json:"id"`
	SKU             string  `json:"sku"`
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	Category        string  `json:"category,omitempty"`
	Price           int64   `json:"price"`
	PriceDollars    float64 `json:"price_dollars"`
	Stock           int64   `json:"stock"`
	Barcode         string  `json:"barcode,omitempty"`
	SupplierID      *int64  `json:"supplier_id,omitempty"`
	ReorderPoint    *int64  `json:"reorder_point,omitempty"`
	ReorderQuantity *int64  `json:"reorder_quantity,omitempty"`
	LeadTimeDays    *int64  `json:"lead_time_days,omitempty"`
	IsActive        bool    `json:"is_active"`
	CreatedAt       string  `json:"created_at"`
}

// CreateProduct handles the HTTP POST request for creating a new product.
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var candidate validate.Candidate
	if err := c.ShouldBindJSON(&candidate); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	created, err := pc.productService.CreateProduct(c.Request.Context(), &candidate)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toProductResponse(created))
}

// GetProduct handles the HTTP GET request for retrieving a product by ID.
func (pc *ProductController) GetProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	product, err := pc.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProductResponse(product))
}

// ListProductsRequest represents the query parameters for listing products.
type ListProductsRequest struct {
	Limit    int32  `form:"limit"`
	Token    string `form:"token"`
	Category string `form:"category"`
}

// ListProductsResponse represents the response body for listing products.
type ListProductsResponse struct {
	Products      []ProductResponse `json:"products"`
	NextPageToken string            `json:"next_page_token,omitempty"`
}

// ListProducts handles the HTTP GET request for listing products with pagination.
func (pc *ProductController) ListProducts(c *gin.Context) {
	var req ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	query := repository.NewQuery()
	if req.Category != "" {
		query.WithCategory(req.Category)
	}
	if err := query.ApplyPagination(req.Limit, req.Token); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	products, err := pc.productService.ListProducts(c.Request.Context(), *query)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response := ListProductsResponse{
		Products: make([]ProductResponse, 0, len(products)),
	}
	for _, product := range products {
		response.Products = append(response.Products, toProductResponse(product))
	}

	if len(products) == query.Limit {
		last := products[len(products)-1]
		paginator := repository.Paginator{
			LastID:        last.ID,
			LastCreatedAt: last.CreatedAt,
		}
		response.NextPageToken = paginator.Encode()
	}

	c.JSON(http.StatusOK, response)
}

// UpdateProduct handles the HTTP PUT request for partially updating a product.
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	var patch validate.Candidate
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	updated, err := pc.productService.UpdateProduct(c.Request.Context(), id, &patch)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProductResponse(updated))
}

// DeleteProduct handles the HTTP DELETE request for deleting a product by ID.
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	if err := pc.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RestockSuggestionResponse represents the response body for a restock suggestion.
type RestockSuggestionResponse struct {
	Restock       bool   `json:"restock"`
	OrderQuantity int64  `json:"order_quantity"`
	ReorderPoint  int64  `json:"reorder_point"`
	Suggestion    string `json:"suggestion"`
}

// RestockSuggestion handles the HTTP GET request for a restock recommendation.
func (pc *ProductController) RestockSuggestion(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	recommendation, err := pc.productService.RestockSuggestion(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, RestockSuggestionResponse{
		Restock:       recommendation.Restock,
		OrderQuantity: recommendation.OrderQuantity,
		ReorderPoint:  recommendation.ReorderPoint,
		Suggestion:    recommendation.Suggestion,
	})
}

func productID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return 0, false
	}
	return id, true
}

func toProductResponse(product *model.Product) ProductResponse {
	dollars, _ := model.FormatPrice(product.Price)
	return ProductResponse{
		ID:              product.ID,
		SKU:             product.SKU,
		Name:            product.Name,
		Description:     product.Description,
		Category:        product.Category,
		Price:           product.Price,
		PriceDollars:    dollars,
		Stock:           product.Stock,
		Barcode:         product.Barcode,
		SupplierID:      product.SupplierID,
		ReorderPoint:    product.ReorderPoint,
		ReorderQuantity: product.ReorderQuantity,
		LeadTimeDays:    product.LeadTimeDays,
		IsActive:        product.IsActive,
		CreatedAt:       product.CreatedAt.Format(time.RFC3339),
	}
}

// writeServiceError maps service errors to HTTP status codes: validation
// failures are 422, uniqueness conflicts 400, missing records 404 and an
// unconfigured assist service 503.
func writeServiceError(c *gin.Context, err error) {
	var validationErr *validate.Error
	if errors.As(err, &validationErr) {
		body := gin.H{"error": validationErr.Message}
		if validationErr.Field != "" {
			body["field"] = validationErr.Field
		}
		c.JSON(http.StatusUnprocessableEntity, body)
		return
	}

	var uniqueErr *repository.UniqueConstraintError
	if errors.As(err, &uniqueErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": uniqueErr.Error()})
		return
	}

	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	if errors.Is(err, assist.ErrUnavailable) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": assist.ErrUnavailable.Error()})
		return
	}

	slog.Error("Request failed", slog.Any("err", err), slog.String("path", c.Request.URL.Path))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
