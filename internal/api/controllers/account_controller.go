package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"memoria/internal/models/request_models"
	"memoria/internal/services"
	"memoria/pkg/middleware"
	"memoria/pkg/utils"
)

type AccountController struct {
	accountService  services.AccountServiceInterface
	memorialService services.MemorialService
}

func NewAccountController(accountService services.AccountServiceInterface, memorialService services.MemorialService) *AccountController {
	return &AccountController{
		accountService:  accountService,
		memorialService: memorialService,
	}
}

// Register godoc
// @Summary Register a new account
// @Description Create a new user account
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body request_models.SignUpRequest true "Account registration payload"
// @Success 201 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Router /accounts/register [post]
func (a *AccountController) Register(c *gin.Context) {
	var req request_models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleServiceError(c, utils.FromBindingError(err))
		return
	}

	account, err := a.accountService.CreateAccount(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondCreated(c, account, "Account created successfully")
}

// Login godoc
// @Summary Login to an account
// @Description Authenticate a user and return a token
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body request_models.LoginRequest true "Login payload"
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Router /accounts/login [post]
func (a *AccountController) Login(c *gin.Context) {
	var req request_models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	token, err := a.accountService.Login(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, token, "Login successful")
}

// Me godoc
// @Summary Current account
// @Tags Accounts
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /accounts/me [get]
func (a *AccountController) Me(c *gin.Context) {
	account, err := a.accountService.GetProfile(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, account, "Account fetched successfully")
}

// UpdateProfile godoc
// @Summary Update the current account
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body request_models.UpdateProfileRequest true "Profile fields to change"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /accounts/me [put]
func (a *AccountController) UpdateProfile(c *gin.Context) {
	var req request_models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	account, err := a.accountService.UpdateProfile(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, account, "Profile updated successfully")
}

// MyMemorials godoc
// @Summary Memorials owned by the current account
// @Tags Accounts
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /accounts/me/memorials [get]
func (a *AccountController) MyMemorials(c *gin.Context) {
	memorials, err := a.memorialService.ListByOwner(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, memorials, "Memorials fetched successfully")
}

// ForgotPassword handles the forgot password functionality.
// @Summary Request a password reset
// @Description Sends a password reset link to the provided email if it exists
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body request_models.RequestForgotPassword true "Forgot password payload"
// @Success 200 {object} utils.APIResponse
// @Router /accounts/forgot-password [post]
func (a *AccountController) ForgotPassword(c *gin.Context) {
	var req request_models.RequestForgotPassword
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := a.accountService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "If the email exists, a reset link has been sent")
}

// ResetPassword godoc
// @Summary Reset password with an emailed token
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body request_models.ForgotPasswordRequest true "Password reset payload"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Router /accounts/reset-password [post]
func (a *AccountController) ResetPassword(c *gin.Context) {
	var req request_models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := a.accountService.ResetPassword(c.Request.Context(), req); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Password has been reset successfully")
}
