package handler

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"jannypos/internal/apierror"

	"github.com/gin-gonic/gin"
)

// Frontend serves the built UI from dir for every unmatched route. Existing files
// are served as-is; anything else falls back to index.html so client-side routes
// survive a reload. Unknown /api paths get a JSON 404 instead.
func Frontend(dir string) gin.HandlerFunc {
	index := filepath.Join(dir, "index.html")

	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if p == "/api" || strings.HasPrefix(p, "/api/") {
			c.JSON(http.StatusNotFound, apierror.New("Ruta no encontrada"))
			return
		}
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusNotFound, apierror.New("Ruta no encontrada"))
			return
		}

		// Clean against "/" so ".." can never climb out of dir.
		target := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+p)))
		if fi, err := os.Stat(target); err == nil && !fi.IsDir() {
			c.File(target)
			return
		}
		if _, err := os.Stat(index); err == nil {
			c.File(index)
			return
		}
		c.JSON(http.StatusNotFound, apierror.New("Ruta no encontrada"))
	}
}
