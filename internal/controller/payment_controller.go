package controller

import (
	"io"
	"net/http"

	"testprep_backend/internal/service"
	"testprep_backend/internal/util"
	"testprep_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PaymentController struct {
	Service *service.PaymentService
}

func NewPaymentController(svc *service.PaymentService) *PaymentController {
	return &PaymentController{Service: svc}
}

// @Summary List active subscription plans
// @Tags payments
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/plans [get]
func (c *PaymentController) ListPlans(ctx *gin.Context) {
	plans, err := c.Service.ListPlans()
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, plans)
}

type createOrderRequest struct {
	PlanID     uint  `json:"planId" binding:"required"`
	CategoryID *uint `json:"categoryId"`
}

// @Summary Create a payment order for a plan
// @Tags payments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body createOrderRequest true "Order"
// @Success 201 {object} util.Response
// @Router /api/payments/order [post]
func (c *PaymentController) CreateOrder(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req createOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	order, err := c.Service.CreateOrder(user.UserID, req.PlanID, req.CategoryID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, order)
}

type verifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}

// @Summary Verify a checkout callback and activate the subscription
// @Tags payments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body verifyPaymentRequest true "Gateway callback fields"
// @Success 200 {object} util.Response
// @Router /api/payments/verify [post]
func (c *PaymentController) VerifyPayment(ctx *gin.Context) {
	var req verifyPaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	outcome, err := c.Service.VerifyPayment(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"status": string(outcome)})
}

// @Summary Payment gateway webhook
// @Description Asynchronous confirmations from the gateway. Valid-signature
// @Description events are always acknowledged so the gateway stops retrying;
// @Description unprocessed payments stay reconcilable.
// @Tags payments
// @Accept json
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/payments/webhook [post]
func (c *PaymentController) Webhook(ctx *gin.Context) {
	body, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		util.BadRequest(ctx, "unreadable body")
		return
	}

	signature := ctx.GetHeader("X-Razorpay-Signature")
	if err := c.Service.HandleWebhook(body, signature); err != nil {
		// only signature/shape failures surface; those are not gateway
		// retries worth triggering
		logger.Log.Warn("webhook rejected", zap.Error(err))
		util.RespondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}
