package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const internalErrorMessage = "internal server error"

var errMissingQuery = errors.New("missing query parameter")

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

// parseUintQuery returns errMissingQuery when key is absent or blank.
func parseUintQuery(c *gin.Context, key string) (uint, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, errMissingQuery
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

// MethodNotAllowed answers methods a function does not serve.
func MethodNotAllowed(c *gin.Context) {
	respondError(c, http.StatusMethodNotAllowed, "Method not allowed")
}
