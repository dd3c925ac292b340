package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopbill/internal/domain"
	"shopbill/internal/service"
)

// CatalogHandler handles stock endpoints for the grocery and fertilizer catalogs.
type CatalogHandler struct {
	catalogService service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// RestockGrocery handles PUT /api/v1/grocery/:id/restock
// @Summary      Restock grocery product
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        body body RestockRequest true "Received quantity"
// @Success      200 {object} APIResponse{data=domain.Product}
// @Failure      400 {object} APIResponse
// @Failure      404 {object} APIResponse
// @Security     BearerAuth
// @Router       /grocery/{id}/restock [put]
func (h *CatalogHandler) RestockGrocery(c *gin.Context) {
	h.restock(c, domain.ShopTypeGrocery)
}

// RestockFertilizer handles PUT /api/v1/fertilizer/:id/restock
// @Summary      Restock fertilizer product
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        body body RestockRequest true "Received quantity"
// @Success      200 {object} APIResponse{data=domain.Product}
// @Failure      400 {object} APIResponse
// @Failure      404 {object} APIResponse
// @Security     BearerAuth
// @Router       /fertilizer/{id}/restock [put]
func (h *CatalogHandler) RestockFertilizer(c *gin.Context) {
	h.restock(c, domain.ShopTypeFertilizer)
}

func (h *CatalogHandler) restock(c *gin.Context, shopType domain.ShopType) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input service.RestockInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	product, err := h.catalogService.Restock(c.Request.Context(), shopType, id, input.Quantity)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, product)
}
