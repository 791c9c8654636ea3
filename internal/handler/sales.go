package handler

import (
	"errors"
	"io"
	"net/http"

	"jannypos/internal/apierror"
	"jannypos/internal/dto"
	"jannypos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SalesHandler struct {
	sales   service.SaleService
	tickets service.TicketService
}

func NewSalesHandler(sales service.SaleService, tickets service.TicketService) *SalesHandler {
	return &SalesHandler{sales: sales, tickets: tickets}
}

// Checkout godoc
// @Summary      Cobrar carrito
// @Description  Transacción única: valida totales, crea la venta y descuenta stock por sitio. Si una línea no tiene stock no cambia nada.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Param        body body dto.CheckoutRequest true "Carrito y totales"
// @Success      201  {object} dto.CheckoutResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /api/checkout [post]
func (h *SalesHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.sales.Checkout(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary Historial de ventas
// @Tags    ventas
// @Produce json
// @Param   status query string false "completada | cancelada"
// @Param   site   query string false "Nombre del sitio"
// @Param   limit  query int    false "Máximo de filas"
// @Success 200 {array} dto.SaleResponse
// @Router  /api/sales [get]
func (h *SalesHandler) List(c *gin.Context) {
	var filter dto.SaleFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.sales.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary Detalle de venta
// @Tags    ventas
// @Produce json
// @Param   id path string true "UUID de la venta"
// @Success 200 {object} dto.SaleResponse
// @Failure 404 {object} apierror.APIError
// @Router  /api/sales/{id} [get]
func (h *SalesHandler) Get(c *gin.Context) {
	id, ok := saleID(c)
	if !ok {
		return
	}
	resp, err := h.sales.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancel godoc
// @Summary      Cancelar venta
// @Description  Requiere el PIN de cancelación. Devuelve el stock al sitio de la venta. Cancelar dos veces no tiene efecto.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Param        id   path string                true "UUID de la venta"
// @Param        body body dto.CancelSaleRequest true "PIN"
// @Success      200  {object} dto.SaleResponse
// @Failure      401  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Failure      429  {object} apierror.APIError
// @Router       /api/sales/{id}/cancel [post]
func (h *SalesHandler) Cancel(c *gin.Context) {
	// a malformed id still goes through the PIN check, as uuid.Nil
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		id = uuid.Nil
	}
	var req dto.CancelSaleRequest
	// a missing body is just an empty PIN
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return
	}
	resp, err := h.sales.Cancel(c.Request.Context(), id, string(req.PIN))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Ticket godoc
// @Summary Ticket PDF
// @Tags    ventas
// @Produce application/pdf
// @Param   id path string true "UUID de la venta"
// @Success 200 {file} binary
// @Failure 404 {object} apierror.APIError
// @Router  /api/sales/{id}/ticket.pdf [get]
func (h *SalesHandler) Ticket(c *gin.Context) {
	id, ok := saleID(c)
	if !ok {
		return
	}
	file, err := h.tickets.Render(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, "application/pdf", file.Content)
}

// saleID parses :id. A malformed id cannot name a sale, so it is a 404.
func saleID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(service.ErrSaleNotFound.Error()))
		return uuid.Nil, false
	}
	return id, true
}
