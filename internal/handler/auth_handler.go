package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type passwordPayload struct {
	Password string `json:"password"`
}

// CheckPassword reports whether the submitted password matches the admin secret.
func (a *API) CheckPassword(c *gin.Context) {
	var payload passwordPayload
	if !bindJSON(c, &payload, "Invalid request body") {
		return
	}

	if !a.auth.Check(payload.Password) {
		a.logger(c).Warn().Msg("admin password rejected")
		c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true})
}
