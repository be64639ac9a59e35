package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"memoria/internal/models/request_models"
	"memoria/internal/services"
	"memoria/pkg/utils"
)

type ContactController struct {
	contactService    services.ContactServiceInterface
	newsletterService services.NewsletterService
}

func NewContactController(contactService services.ContactServiceInterface, newsletterService services.NewsletterService) *ContactController {
	return &ContactController{
		contactService:    contactService,
		newsletterService: newsletterService,
	}
}

// Contact godoc
// @Summary Send a message to the site team
// @Tags Contact
// @Accept json
// @Produce json
// @Param request body request_models.ContactRequest true "Message"
// @Success 200 {object} utils.APIResponse
// @Router /contact [post]
func (cc *ContactController) Contact(c *gin.Context) {
	var req request_models.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := cc.contactService.Contact(c.Request.Context(), req); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "Thank you for your message! We'll get back to you soon.")
}

// Subscribe godoc
// @Summary Subscribe to the newsletter
// @Tags Newsletter
// @Accept json
// @Produce json
// @Param request body request_models.SubscribeRequest true "Subscriber"
// @Success 200 {object} utils.APIResponse
// @Router /newsletter/subscribe [post]
func (cc *ContactController) Subscribe(c *gin.Context) {
	var req request_models.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Please enter a valid email address")
		return
	}
	resp, err := cc.newsletterService.Subscribe(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	msg := "Thank you for subscribing!"
	switch {
	case resp.AlreadySubscribed:
		msg = "You are already subscribed"
	case resp.Resubscribed:
		msg = "Welcome back! You have been resubscribed"
	}
	utils.RespondSuccess(c, resp, msg)
}

// Unsubscribe godoc
// @Summary Unsubscribe from the newsletter
// @Tags Newsletter
// @Produce json
// @Param email path string true "Email"
// @Success 200 {object} utils.APIResponse
// @Router /newsletter/unsubscribe/{email} [post]
func (cc *ContactController) Unsubscribe(c *gin.Context) {
	if err := cc.newsletterService.Unsubscribe(c.Request.Context(), c.Param("email")); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "You have been unsubscribed")
}

// SendNewsletter godoc
// @Summary Send a newsletter to every active subscriber
// @Tags Newsletter
// @Accept json
// @Produce json
// @Param request body request_models.SendNewsletterRequest true "Newsletter"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/newsletters [post]
func (cc *ContactController) SendNewsletter(c *gin.Context) {
	var req request_models.SendNewsletterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Subject and content are required")
		return
	}
	result, err := cc.newsletterService.SendNewsletter(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, result, "Newsletter sent")
}
