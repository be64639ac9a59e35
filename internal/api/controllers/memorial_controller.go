package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"memoria/internal/models/request_models"
	"memoria/internal/models/response_models"
	"memoria/internal/services"
	"memoria/pkg/middleware"
	"memoria/pkg/utils"
)

type MemorialController struct {
	memorialService services.MemorialService
}

func NewMemorialController(memorialService services.MemorialService) *MemorialController {
	return &MemorialController{memorialService: memorialService}
}

// Create godoc
// @Summary Create a memorial
// @Tags Memorials
// @Accept json
// @Produce json
// @Param request body request_models.CreateMemorialRequest true "Memorial payload"
// @Success 201 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /memorials [post]
func (m *MemorialController) Create(c *gin.Context) {
	var req request_models.CreateMemorialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleServiceError(c, utils.FromBindingError(err))
		return
	}

	detail, err := m.memorialService.Create(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondCreated(c, detail, "Memorial created successfully")
}

// Browse godoc
// @Summary Search memorials
// @Tags Memorials
// @Produce json
// @Param name query string false "Name contains"
// @Param dob query string false "Date of birth (YYYY-MM-DD)"
// @Param dod query string false "Date of death (YYYY-MM-DD)"
// @Param page query int false "Page number"
// @Success 200 {object} utils.APIResponse
// @Router /memorials [get]
func (m *MemorialController) Browse(c *gin.Context) {
	var req request_models.BrowseMemorialsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.HandleServiceError(c, utils.ErrInvalidPage)
		return
	}

	page, err := m.memorialService.Browse(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, page, "Memorials fetched successfully")
}

// Get godoc
// @Summary Memorial detail
// @Tags Memorials
// @Produce json
// @Param id path string true "Memorial ID"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /memorials/{id} [get]
func (m *MemorialController) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id", "Memorial not found")
	if !ok {
		return
	}

	detail, err := m.memorialService.Get(c.Request.Context(), id, middleware.CurrentUserID(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, detail, "Memorial fetched successfully")
}

// Delete godoc
// @Summary Delete a memorial and all of its media
// @Tags Memorials
// @Produce json
// @Param id path string true "Memorial ID"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /memorials/{id} [delete]
func (m *MemorialController) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id", "Memorial not found")
	if !ok {
		return
	}

	if err := m.memorialService.Delete(c.Request.Context(), id, middleware.CurrentUserID(c)); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "Memorial deleted successfully")
}

// respond writes the outcome of an owner edit.
func respond(c *gin.Context, detail *response_models.MemorialDetail, err error) {
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, detail, "Memorial updated successfully")
}

// UpdateName godoc
// @Summary Change the memorial's name
// @Tags Memorials
// @Accept json
// @Produce json
// @Param id path string true "Memorial ID"
// @Param request body request_models.UpdateNameRequest true "Names"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /memorials/{id}/name [patch]
func (m *MemorialController) UpdateName(c *gin.Context) {
	id, ok := uuidParam(c, "id", "Memorial not found")
	if !ok {
		return
	}
	var req request_models.UpdateNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "First and last name are required")
		return
	}
	detail, err := m.memorialService.UpdateName(c.Request.Context(), id, middleware.CurrentUserID(c), req)
	respond(c, detail, err)
}

// UpdateDates godoc
// @Summary Change birth and death dates
// @Tags Memorials
// @Accept json
// @Produce json
// @Param id path string true "Memorial ID"
// @Param request body request_models.UpdateDatesRequest true "Dates"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /memorials/{id}/dates [patch]
func (m *MemorialController) UpdateDates(c *gin.Context) {
	id, ok := uuidParam(c, "id", "Memorial not found")
	if !ok {
		return
	}
	var req request_models.UpdateDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleServiceError(c, utils.FromBindingError(err))
		return
	}
	detail, err := m.memorialService.UpdateDates(c.Request.Context(), id, middleware.CurrentUserID(c), req)
	respond(c, detail, err)
}

// UpdateQuote godoc
// @Summary Change the quote
// @Tags Memorials
// @Accept json
// @Produce json
// @Param id path string true "Memorial ID"
// @Param request body request_models.UpdateQuoteRequest true "Quote"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /memorials/{id}/quote [patch]
func (m *MemorialController) UpdateQuote(c *gin.Context) {
	id, ok := uuidParam(c, "id", "Memorial not found")
	if !ok {
		return
	}
	var req request_models.UpdateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Quote must be at most 500 characters")
		return
	}
	detail, err := m.memorialService.UpdateQuote(c.Request.Context(), id, middleware.CurrentUserID(c), req.Quote)
	respond(c, detail, err)
}

// UpdateBiography godoc
// @Summary Change the biography
// @Tags Memorials
// @Accept json
// @Produce json
// @Param id path string true "Memorial ID"
// @Param request body request_models.UpdateBiographyRequest true "Biography"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /memorials/{id}/biography [patch]
func (m *MemorialController) UpdateBiography(c *gin.Context) {
	id, ok := uuidParam(c, "id", "Memorial not found")
	if !ok {
		return
	}
	var req request_models.UpdateBiographyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	detail, err := m.memorialService.UpdateBiography(c.Request.Context(), id, middleware.CurrentUserID(c), req.Biography)
	respond(c, detail, err)
}

// UpdateBanner godoc
// @Summary Change the banner
// @Description Color banners are free; image banners need a plan with custom banners
// @Tags Memorials
// @Accept json
// @Produce json
// @Param id path string true "Memorial ID"
// @Param request body request_models.UpdateBannerRequest true "Banner"
// @Success 200 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Security BearerAuth
// @Router /memorials/{id}/banner [patch]
func (m *MemorialController) UpdateBanner(c *gin.Context) {
	id, ok := uuidParam(c, "id", "Memorial not found")
	if !ok {
		return
	}
	var req request_models.UpdateBannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	detail, err := m.memorialService.UpdateBanner(c.Request.Context(), id, middleware.CurrentUserID(c), req)
	respond(c, detail, err)
}

// UploadProfilePicture godoc
// @Summary Replace the profile picture
// @Tags Memorials
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Memorial ID"
// @Param profile_picture formData file true "Image"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /memorials/{id}/profile-picture [post]
func (m *MemorialController) UploadProfilePicture(c *gin.Context) {
	id, ok := uuidParam(c, "id", "Memorial not found")
	if !ok {
		return
	}
	file, ok := formFile(c, "profile_picture")
	if !ok {
		return
	}
	detail, err := m.memorialService.UploadProfilePicture(c.Request.Context(), id, middleware.CurrentUserID(c), file)
	respond(c, detail, err)
}

// UploadAudio godoc
// @Summary Replace the background audio
// @Tags Memorials
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Memorial ID"
// @Param audio_file formData file true "Audio"
// @Success 200 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Security BearerAuth
// @Router /memorials/{id}/audio [post]
func (m *MemorialController) UploadAudio(c *gin.Context) {
	id, ok := uuidParam(c, "id", "Memorial not found")
	if !ok {
		return
	}
	file, ok := formFile(c, "audio_file")
	if !ok {
		return
	}
	detail, err := m.memorialService.UploadAudio(c.Request.Context(), id, middleware.CurrentUserID(c), file)
	respond(c, detail, err)
}
