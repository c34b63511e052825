package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"baul-admin-api/internal/middleware"
	"baul-admin-api/internal/pricing"
	"baul-admin-api/internal/services"
	"baul-admin-api/pkg/lambda"
)

// PricingHandler serves the public /api/precios endpoint. Response bodies
// keep the shapes the storefront clients already parse.
type PricingHandler struct {
	pricingService services.PricingService
	logger         *logrus.Logger
}

// NewPricingHandler creates a new pricing handler
func NewPricingHandler(pricingService services.PricingService, logger *logrus.Logger) *PricingHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &PricingHandler{
		pricingService: pricingService,
		logger:         logger,
	}
}

// @Summary Price lookup
// @Description Prices one published product by id, codigo (SKU) or nombre, or every published product when all is set
// @Tags precios
// @Produce json
// @Param id query string false "Product ID"
// @Param codigo query string false "Product SKU"
// @Param nombre query string false "Exact product name"
// @Param cantidad query number false "Quantity" default(1)
// @Param all query string false "1, true, t, si, sí or yes lists the whole published catalog"
// @Success 200 {object} pricing.Quote
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /precios [get]
func (h *PricingHandler) GetPrices(c *gin.Context) {
	query := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			query[key] = values[0]
		}
	}

	status, body := h.lookup(c.Request.Context(), query)
	c.JSON(status, body)
}

// @Summary Batch pricing
// @Description Prices each item by embedded producto or by id; failures become error entries in place
// @Tags precios
// @Accept json
// @Produce json
// @Param request body object true "{items: [{id, cantidad} | {producto, cantidad}]}"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /precios [post]
func (h *PricingHandler) PostPrices(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	status, resp := h.batch(c.Request.Context(), body)
	c.JSON(status, resp)
}

// HandlePricing serves the endpoint for Lambda
func (h *PricingHandler) HandlePricing(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	var (
		status int
		body   any
	)
	switch strings.ToUpper(req.Method) {
	case http.MethodOptions:
		return &lambda.Response{
			StatusCode: http.StatusNoContent,
			Headers:    middleware.PricingCORSHeaders,
		}, nil
	case http.MethodGet:
		status, body = h.lookup(ctx, req.QueryParams)
	case http.MethodPost:
		status, body = h.batch(ctx, req.Body)
	default:
		status, body = http.StatusMethodNotAllowed, gin.H{"error": "Método no permitido"}
	}

	return jsonResponse(status, body, middleware.PricingCORSHeaders)
}

func (h *PricingHandler) lookup(ctx context.Context, query map[string]string) (int, any) {
	qty := pricing.ParseQuantity(query["cantidad"])

	if pricing.IsTruthy(query["all"]) {
		catalog, err := h.pricingService.Catalog(ctx, qty)
		if err != nil {
			return h.failure(err)
		}
		return http.StatusOK, catalog
	}

	quote, err := h.pricingService.Lookup(ctx, &services.PriceLookupRequest{
		ID:       strings.TrimSpace(query["id"]),
		Code:     strings.TrimSpace(query["codigo"]),
		Name:     strings.TrimSpace(query["nombre"]),
		Quantity: qty,
	})
	if err != nil {
		var notPublished *pricing.NotPublishedError
		switch {
		case errors.As(err, &notPublished):
			return http.StatusForbidden, gin.H{
				"error":     notPublished.Error(),
				"publicado": notPublished.Published,
				"mensaje":   notPublished.Message(),
			}
		case errors.Is(err, pricing.ErrMissingLookup):
			return http.StatusBadRequest, gin.H{"error": err.Error()}
		case errors.Is(err, pricing.ErrProductNotFound):
			return http.StatusNotFound, gin.H{"error": err.Error()}
		default:
			return h.failure(err)
		}
	}

	return http.StatusOK, quote
}

func (h *PricingHandler) batch(ctx context.Context, body []byte) (int, any) {
	var req struct {
		Items json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return h.failure(err)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(req.Items, &items); err != nil || len(items) == 0 {
		return http.StatusBadRequest, gin.H{"error": pricing.ErrEmptyItems.Error()}
	}

	results, err := h.pricingService.PriceItems(ctx, items)
	if err != nil {
		if errors.Is(err, pricing.ErrEmptyItems) {
			return http.StatusBadRequest, gin.H{"error": err.Error()}
		}
		return h.failure(err)
	}

	return http.StatusOK, gin.H{"items": results}
}

func (h *PricingHandler) failure(err error) (int, any) {
	h.logger.WithError(err).Error("Pricing request failed")
	return http.StatusInternalServerError, gin.H{"error": err.Error()}
}
