package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"restaurant-admin-api/apperr"
	"restaurant-admin-api/tiers"
)

// respondError writes the error in the {"error": msg} shape with the status
// its kind maps to. Unclassified errors are logged and hidden.
func respondError(c *gin.Context, err error) {
	status := apperr.Status(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.WithError(err).Errorf("❌ %s %s failed", c.Request.Method, c.FullPath())
		msg = "Internal server error"
	}
	c.JSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// respond writes body with the answering tier in both header and payload.
func respond(c *gin.Context, status int, tier tiers.Tier, body gin.H) {
	c.Header(tiers.HeaderName, string(tier))
	body["tier"] = tier
	c.JSON(status, body)
}
