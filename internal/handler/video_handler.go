package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weddinggallery/internal/service"
)

type videoPayload struct {
	ID  uint   `json:"id"`
	URL string `json:"url"`
}

// ListVideos returns the video slots.
func (a *API) ListVideos(c *gin.Context) {
	videos, err := a.videos.List(c.Request.Context())
	if err != nil {
		a.internalError(c, err, "failed to list videos")
		return
	}
	c.JSON(http.StatusOK, gin.H{"videos": videos})
}

// UpdateVideo sets or clears the URL of a slot.
func (a *API) UpdateVideo(c *gin.Context) {
	var payload videoPayload
	if !bindJSON(c, &payload, "Invalid request body") {
		return
	}

	if err := a.videos.UpdateURL(c.Request.Context(), payload.ID, payload.URL); err != nil {
		if errors.Is(err, service.ErrVideoIDRequired) {
			respondError(c, http.StatusBadRequest, "Video ID required")
			return
		}
		a.internalError(c, err, "failed to update video")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Video updated"})
}
