package controllers

import (
	"github.com/gin-gonic/gin"

	"memoria/internal/services"
	"memoria/pkg/middleware"
	"memoria/pkg/utils"
)

type GalleryController struct {
	galleryService services.GalleryService
}

func NewGalleryController(galleryService services.GalleryService) *GalleryController {
	return &GalleryController{galleryService: galleryService}
}

// List godoc
// @Summary Gallery images of a memorial
// @Tags Gallery
// @Produce json
// @Param id path string true "Memorial ID"
// @Success 200 {object} utils.APIResponse
// @Router /memorials/{id}/gallery [get]
func (g *GalleryController) List(c *gin.Context) {
	id, ok := uuidParam(c, "id", "Memorial not found")
	if !ok {
		return
	}
	images, err := g.galleryService.List(c.Request.Context(), id)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, images, "Gallery fetched successfully")
}

// Upload godoc
// @Summary Upload gallery images
// @Description Files beyond the plan's remaining slots are skipped
// @Tags Gallery
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Memorial ID"
// @Param images formData file true "Images"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /memorials/{id}/gallery [post]
func (g *GalleryController) Upload(c *gin.Context) {
	id, ok := uuidParam(c, "id", "Memorial not found")
	if !ok {
		return
	}

	var files []services.FileUpload
	if form, err := c.MultipartForm(); err == nil {
		for _, fh := range form.File["images"] {
			files = append(files, toFileUpload(fh))
		}
	}

	result, err := g.galleryService.BulkUpload(c.Request.Context(), id, middleware.CurrentUserID(c), files)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, result, result.Message)
}

// Delete godoc
// @Summary Remove one gallery image
// @Tags Gallery
// @Produce json
// @Param id path string true "Memorial ID"
// @Param imageId path string true "Image ID"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /memorials/{id}/gallery/{imageId} [delete]
func (g *GalleryController) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id", "Memorial not found")
	if !ok {
		return
	}
	imageID, ok := uuidParam(c, "imageId", "Image not found")
	if !ok {
		return
	}
	if err := g.galleryService.DeleteImage(c.Request.Context(), id, imageID, middleware.CurrentUserID(c)); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "Image deleted successfully")
}
