package handler

import (
	"net/http"

	"jannypos/internal/service"

	"github.com/gin-gonic/gin"
)

// SeedBasic godoc
// @Summary Crear sitio por defecto
// @Description Crea el sitio "Principal" si todavía no existe ningún sitio. Idempotente.
// @Tags    sitios
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router  /api/seed-basic [post]
func SeedBasic(sites service.SiteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		created, err := sites.EnsureDefault(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "created": created})
	}
}
