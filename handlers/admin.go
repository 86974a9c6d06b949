package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"restaurant-admin-api/services"
	"restaurant-admin-api/tiers"
)

// ExportDatabase returns a JSON dump of restaurants, menu items and admins
// as a file download
func (h *AuthHandler) ExportDatabase(c *gin.Context) {
	out, err := h.admins.Export(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header(tiers.HeaderName, string(out.Tier))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", exportFilename(out)))
	c.JSON(http.StatusOK, out)
}

func exportFilename(out services.Export) string {
	return fmt.Sprintf("restaurant-admin-export-%s.json", out.Timestamp.Format("2006-01-02"))
}
