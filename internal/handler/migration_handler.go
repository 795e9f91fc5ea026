package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/weddinggallery/internal/service"
)

// APIKeyHeader may carry the image host key instead of the request body.
const APIKeyHeader = "X-Api-Key"

type migratePayload struct {
	APIKey  string `json:"api_key"`
	PhotoID uint   `json:"photo_id"`
}

// ListPendingMigrations returns the next batch of photos without CDN copies.
func (a *API) ListPendingMigrations(c *gin.Context) {
	photos, err := a.migrations.ListPending(c.Request.Context())
	if err != nil {
		a.internalError(c, err, "failed to list pending photos")
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(photos), "photos": photos})
}

// MigratePhoto uploads one photo's inline images and reports each field's outcome.
func (a *API) MigratePhoto(c *gin.Context) {
	var payload migratePayload
	if !bindJSON(c, &payload, "Invalid request body") {
		return
	}
	apiKey := strings.TrimSpace(payload.APIKey)
	if apiKey == "" {
		apiKey = strings.TrimSpace(c.GetHeader(APIKeyHeader))
	}

	result, err := a.migrations.MigrateOne(c.Request.Context(), apiKey, payload.PhotoID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMigrationInputRequired):
			respondError(c, http.StatusBadRequest, "api_key and photo_id required")
		case errors.Is(err, service.ErrPhotoNotFound):
			respondError(c, http.StatusNotFound, "Photo not found")
		default:
			a.internalError(c, err, "failed to migrate photo")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":           result.Succeeded(),
		"photo_id":          result.PhotoID,
		"cdn_full_url":      result.Full.URL,
		"cdn_thumbnail_url": result.Thumbnail.URL,
		"full":              result.Full,
		"thumbnail":         result.Thumbnail,
	})
}
