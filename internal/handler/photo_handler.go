package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weddinggallery/internal/service"
)

type photoPayload struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url"`
	Alt          string `json:"alt"`
}

type reorderPayload struct {
	Orders []struct {
		ID           uint `json:"id"`
		DisplayOrder int  `json:"display_order"`
	} `json:"orders"`
}

// GetPhotos returns one photo when ?id= is given, otherwise the ordered list.
// ?admin=true switches the list to the privileged view.
func (a *API) GetPhotos(c *gin.Context) {
	if c.Query("id") != "" {
		a.getPhoto(c)
		return
	}

	mode := service.PhotoListPublic
	if c.Query("admin") == "true" {
		mode = service.PhotoListPrivileged
	}

	photos, err := a.photos.List(c.Request.Context(), mode)
	if err != nil {
		a.internalError(c, err, "failed to list photos")
		return
	}
	c.JSON(http.StatusOK, gin.H{"photos": photos})
}

func (a *API) getPhoto(c *gin.Context) {
	id, err := parseUintQuery(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid photo ID")
		return
	}

	photo, err := a.photos.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPhotoNotFound) {
			respondError(c, http.StatusNotFound, "Photo not found")
			return
		}
		a.internalError(c, err, "failed to get photo")
		return
	}
	c.JSON(http.StatusOK, photo)
}

// CreatePhoto appends a photo to the gallery.
func (a *API) CreatePhoto(c *gin.Context) {
	var payload photoPayload
	if !bindJSON(c, &payload, "Invalid request body") {
		return
	}

	photo, err := a.photos.Create(c.Request.Context(), service.PhotoInput{
		URL:          payload.URL,
		ThumbnailURL: payload.ThumbnailURL,
		Alt:          payload.Alt,
	})
	if err != nil {
		if errors.Is(err, service.ErrPhotoImageMissing) {
			respondError(c, http.StatusBadRequest, "Photo URL required")
			return
		}
		a.internalError(c, err, "failed to create photo")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "id": photo.ID, "message": "Photo added"})
}

// DeletePhoto removes the photo named by ?id=.
func (a *API) DeletePhoto(c *gin.Context) {
	id, err := parseUintQuery(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Photo ID required")
		return
	}

	if err := a.photos.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrPhotoIDRequired) {
			respondError(c, http.StatusBadRequest, "Photo ID required")
			return
		}
		a.internalError(c, err, "failed to delete photo")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Photo deleted"})
}

// ReorderPhotos applies a batch of display order changes atomically.
func (a *API) ReorderPhotos(c *gin.Context) {
	var payload reorderPayload
	if !bindJSON(c, &payload, "Invalid request body") {
		return
	}

	orders := make([]service.PhotoOrder, 0, len(payload.Orders))
	for _, o := range payload.Orders {
		orders = append(orders, service.PhotoOrder{ID: o.ID, DisplayOrder: o.DisplayOrder})
	}

	if err := a.photos.Reorder(c.Request.Context(), orders); err != nil {
		if errors.Is(err, service.ErrReorderInvalid) {
			respondError(c, http.StatusBadRequest, "Every order entry needs a photo ID")
			return
		}
		a.internalError(c, err, "failed to reorder photos")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Photos reordered"})
}
