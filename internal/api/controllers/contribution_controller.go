package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"memoria/internal/models/db_models"
	"memoria/internal/models/request_models"
	"memoria/internal/services"
	"memoria/pkg/middleware"
	"memoria/pkg/utils"
)

// ContributionController serves tributes and stories. Each handler is built
// for one kind so the routes stay separate while sharing the code.
type ContributionController struct {
	contributionService services.ContributionService
}

func NewContributionController(contributionService services.ContributionService) *ContributionController {
	return &ContributionController{contributionService: contributionService}
}

func notFoundMessage(kind db_models.ContributionKind) string {
	if kind == db_models.KindStory {
		return "Story not found"
	}
	return "Tribute not found"
}

// List godoc
// @Summary List tributes or stories of a memorial
// @Description Visitors see approved entries only; the owner sees everything
// @Tags Contributions
// @Produce json
// @Param id path string true "Memorial ID"
// @Param offset query int false "Offset"
// @Param limit query int false "Page size"
// @Success 200 {object} utils.APIResponse
// @Router /memorials/{id}/tributes [get]
// @Router /memorials/{id}/stories [get]
func (cc *ContributionController) List(kind db_models.ContributionKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "id", "Memorial not found")
		if !ok {
			return
		}
		var req request_models.ListContributionsRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			utils.RespondError(c, http.StatusBadRequest, "Invalid paging parameters")
			return
		}

		page, err := cc.contributionService.List(c.Request.Context(), id, kind, middleware.CurrentUserID(c), req.Offset, req.Limit)
		if err != nil {
			utils.HandleServiceError(c, err)
			return
		}
		utils.RespondSuccess(c, page, "Contributions fetched successfully")
	}
}

// Submit godoc
// @Summary Add a tribute or story
// @Tags Contributions
// @Accept json
// @Produce json
// @Param id path string true "Memorial ID"
// @Param request body request_models.ContributionRequest true "Contribution"
// @Success 201 {object} utils.APIResponse
// @Security BearerAuth
// @Router /memorials/{id}/tributes [post]
// @Router /memorials/{id}/stories [post]
func (cc *ContributionController) Submit(kind db_models.ContributionKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "id", "Memorial not found")
		if !ok {
			return
		}
		var req request_models.ContributionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
			return
		}

		resp, err := cc.contributionService.Submit(c.Request.Context(), id, middleware.CurrentUserID(c), kind, req)
		if err != nil {
			utils.HandleServiceError(c, err)
			return
		}

		msg := "Thank you! Your " + string(kind) + " is awaiting approval"
		if resp.Status == string(db_models.StatusApproved) {
			msg = "Your " + string(kind) + " has been published"
		}
		utils.RespondCreated(c, resp, msg)
	}
}

// Edit godoc
// @Summary Edit a tribute or story
// @Tags Contributions
// @Accept json
// @Produce json
// @Param id path string true "Contribution ID"
// @Param request body request_models.ContributionRequest true "Contribution"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /tributes/{id} [put]
// @Router /stories/{id} [put]
func (cc *ContributionController) Edit(kind db_models.ContributionKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "id", notFoundMessage(kind))
		if !ok {
			return
		}
		var req request_models.ContributionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
			return
		}

		resp, err := cc.contributionService.Edit(c.Request.Context(), id, middleware.CurrentUserID(c), kind, req)
		if err != nil {
			utils.HandleServiceError(c, err)
			return
		}
		utils.RespondSuccess(c, resp, "Updated successfully")
	}
}

// Delete godoc
// @Summary Delete a tribute or story
// @Tags Contributions
// @Produce json
// @Param id path string true "Contribution ID"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /tributes/{id} [delete]
// @Router /stories/{id} [delete]
func (cc *ContributionController) Delete(kind db_models.ContributionKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "id", notFoundMessage(kind))
		if !ok {
			return
		}
		if err := cc.contributionService.Delete(c.Request.Context(), id, middleware.CurrentUserID(c), kind); err != nil {
			utils.HandleServiceError(c, err)
			return
		}
		utils.RespondSuccess(c, nil, "Deleted successfully")
	}
}

// Approve godoc
// @Summary Approve a pending tribute or story
// @Tags Contributions
// @Produce json
// @Param id path string true "Contribution ID"
// @Success 200 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Security BearerAuth
// @Router /tributes/{id}/approve [post]
// @Router /stories/{id}/approve [post]
func (cc *ContributionController) Approve(kind db_models.ContributionKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "id", notFoundMessage(kind))
		if !ok {
			return
		}
		resp, err := cc.contributionService.Approve(c.Request.Context(), id, middleware.CurrentUserID(c), kind)
		if err != nil {
			utils.HandleServiceError(c, err)
			return
		}
		utils.RespondSuccess(c, resp, "Approved")
	}
}

// Reject godoc
// @Summary Reject a pending tribute or story
// @Tags Contributions
// @Produce json
// @Param id path string true "Contribution ID"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /tributes/{id}/reject [post]
// @Router /stories/{id}/reject [post]
func (cc *ContributionController) Reject(kind db_models.ContributionKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "id", notFoundMessage(kind))
		if !ok {
			return
		}
		resp, err := cc.contributionService.Reject(c.Request.Context(), id, middleware.CurrentUserID(c), kind)
		if err != nil {
			utils.HandleServiceError(c, err)
			return
		}
		utils.RespondSuccess(c, resp, "Rejected")
	}
}
