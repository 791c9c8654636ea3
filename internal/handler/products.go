package handler

import (
	"net/http"

	"jannypos/internal/dto"
	"jannypos/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductsHandler struct {
	catalog   service.CatalogService
	inventory service.InventoryService
}

func NewProductsHandler(catalog service.CatalogService, inventory service.InventoryService) *ProductsHandler {
	return &ProductsHandler{catalog: catalog, inventory: inventory}
}

// Search godoc
// @Summary      Buscar productos
// @Description  Sin search devuelve todo el catálogo (más nuevo primero). Con search filtra por id, nombre o código de barras sin distinguir mayúsculas.
// @Tags         productos
// @Produce      json
// @Param        search query string false "Texto a buscar"
// @Success      200 {array}  dto.ProductResponse
// @Router       /api/products [get]
func (h *ProductsHandler) Search(c *gin.Context) {
	var filter dto.ProductFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.catalog.Search(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary      Crear producto
// @Description  Alta de producto con stock inicial opcional en un sitio.
// @Tags         productos
// @Accept       json
// @Produce      json
// @Param        body body dto.CreateProductRequest true "Producto"
// @Success      201  {object} dto.ProductResponse
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /api/products [post]
func (h *ProductsHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.catalog.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// PriceCheck godoc
// @Summary Consulta de precio por codigo de barras
// @Tags    productos
// @Produce json
// @Param   barcode path string true "Codigo de barras"
// @Success 200 {object} dto.PriceCheckResponse
// @Failure 404 {object} apierror.APIError
// @Router  /api/price/{barcode} [get]
func (h *ProductsHandler) PriceCheck(c *gin.Context) {
	resp, err := h.catalog.PriceCheck(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Movements godoc
// @Summary Movimientos de stock de un producto
// @Tags    productos
// @Produce json
// @Param   id    path  string true  "ID del producto"
// @Param   kind  query string false "venta | cancelacion | inicial"
// @Param   limit query int    false "Máximo de filas (default 100)"
// @Success 200 {array} dto.StockMovementResponse
// @Router  /api/products/{id}/movements [get]
func (h *ProductsHandler) Movements(c *gin.Context) {
	var filter dto.StockMovementFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.inventory.ListMovements(c.Request.Context(), c.Param("id"), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
