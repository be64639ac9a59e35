package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"memoria/pkg/mediastore"
	"memoria/pkg/utils"
)

// MediaController serves objects kept by the in-memory store so local
// setups without a bucket still render images and audio. With any other
// store every lookup is a 404; those URLs point at the bucket directly.
type MediaController struct {
	store mediastore.Store
}

func NewMediaController(store mediastore.Store) *MediaController {
	return &MediaController{store: store}
}

// Serve godoc
// @Summary Fetch a locally stored media object
// @Tags Media
// @Param key path string true "Object key"
// @Success 200
// @Router /media/{key} [get]
func (m *MediaController) Serve(c *gin.Context) {
	mem, ok := m.store.(*mediastore.MemoryStore)
	if !ok {
		utils.RespondError(c, http.StatusNotFound, "Media not found")
		return
	}

	data, contentType, found := mem.Get(strings.TrimPrefix(c.Param("key"), "/"))
	if !found {
		utils.RespondError(c, http.StatusNotFound, "Media not found")
		return
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, contentType, data)
}
