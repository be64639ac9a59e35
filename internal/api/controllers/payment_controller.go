package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"memoria/internal/services"
	"memoria/pkg/middleware"
	"memoria/pkg/utils"
)

// maxWebhookBody mirrors the processor's own event size ceiling.
const maxWebhookBody = 65536

type PaymentController struct {
	planService    services.PlanServiceInterface
	paymentService services.PaymentService
}

func NewPaymentController(planService services.PlanServiceInterface, paymentService services.PaymentService) *PaymentController {
	return &PaymentController{
		planService:    planService,
		paymentService: paymentService,
	}
}

// ListPlans godoc
// @Summary List active plans
// @Tags Plans
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Router /plans [get]
func (p *PaymentController) ListPlans(c *gin.Context) {
	plans, err := p.planService.ListActivePlans(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, plans, "Plans fetched successfully")
}

// Checkout godoc
// @Summary Start a plan checkout for a memorial
// @Description Free plans are applied immediately; paid plans return the hosted checkout URL
// @Tags Plans
// @Produce json
// @Param planId path string true "Plan ID"
// @Param memorialId path string true "Memorial ID"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /plans/checkout/{planId}/{memorialId} [post]
func (p *PaymentController) Checkout(c *gin.Context) {
	memorialID, ok := uuidParam(c, "memorialId", "Memorial not found")
	if !ok {
		return
	}

	resp, err := p.paymentService.Checkout(c.Request.Context(), memorialID, c.Param("planId"), middleware.CurrentUserID(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	msg := "Checkout session created"
	if resp.Applied {
		msg = "Plan updated successfully"
	}
	utils.RespondSuccess(c, resp, msg)
}

// CancelPlan godoc
// @Summary Cancel a memorial's paid plan
// @Tags Plans
// @Produce json
// @Param memorialId path string true "Memorial ID"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /plans/cancel/{memorialId} [post]
func (p *PaymentController) CancelPlan(c *gin.Context) {
	memorialID, ok := uuidParam(c, "memorialId", "Memorial not found")
	if !ok {
		return
	}

	detail, err := p.paymentService.CancelPlan(c.Request.Context(), memorialID, middleware.CurrentUserID(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, detail, "Your subscription has been canceled")
}

// PaymentSuccess godoc
// @Summary Landing endpoint after a completed checkout
// @Tags Plans
// @Produce json
// @Param memorial_id query string false "Memorial ID"
// @Param session_id query string false "Checkout session ID"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /plans/success [get]
func (p *PaymentController) PaymentSuccess(c *gin.Context) {
	resp, err := p.paymentService.PaymentSuccess(c.Request.Context(),
		middleware.CurrentUserID(c), c.Query("memorial_id"), c.Query("session_id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, resp, resp.Message)
}

// HandleWebhook godoc
// @Summary Payment processor webhook
// @Tags Plans
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Webhook signature"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Router /plans/webhook [post]
func (p *PaymentController) HandleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid payload")
		return
	}

	if err := p.paymentService.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "Webhook received")
}
