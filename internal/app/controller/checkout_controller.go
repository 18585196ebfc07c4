package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/statelink/statelink-backend/internal/app/pricing"
	"github.com/statelink/statelink-backend/internal/app/service"
	"github.com/statelink/statelink-backend/internal/app/wizard"
	apperrors "github.com/statelink/statelink-backend/internal/errors"
	"github.com/statelink/statelink-backend/internal/middleware"
	"github.com/statelink/statelink-backend/pkg/logger"
)

type CheckoutController struct {
	checkoutService service.CheckoutService
}

func NewCheckoutController(checkoutService service.CheckoutService) *CheckoutController {
	return &CheckoutController{
		checkoutService: checkoutService,
	}
}

type SelectServicesRequest struct {
	Services []pricing.ServiceCode `json:"services"`
}

// StartCheckout creates one compliance request per selected service
// POST /api/v1/businesses/:reference_id/compliance-requests
func (ctrl *CheckoutController) StartCheckout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID := middleware.GetSessionID(c)
	ref := c.Param("reference_id")

	var req SelectServicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid service selection", map[string]interface{}{
			"reference_id": ref,
			"error":        err.Error(),
		})
		apperrors.RespondWithBindingError(c, err)
		return
	}

	result, err := ctrl.checkoutService.StartCheckout(c.Request.Context(), sessionID, ref, req.Services)
	if err != nil {
		var unknown pricing.ErrUnknownCode
		var notOffered pricing.ErrNotOffered
		switch {
		case errors.Is(err, service.ErrBusinessNotFound):
			apperrors.NotFound(c, apperrors.BusinessNotFound, "Business not found")
		case errors.Is(err, service.ErrNoServicesSelected):
			apperrors.BadRequest(c, apperrors.BusinessNoSelection, "Select at least one service")
		case errors.As(err, &unknown):
			apperrors.BadRequest(c, apperrors.BusinessUnknownCode, unknown.Error())
		case errors.As(err, &notOffered):
			apperrors.BadRequest(c, apperrors.BusinessNotOffered, notOffered.Error())
		default:
			log.Error("Failed to start checkout", err, map[string]interface{}{
				"reference_id": ref,
			})
			apperrors.InternalError(c, "Failed to create compliance requests")
		}
		return
	}

	if result.Step == wizard.StepSelectingServices {
		log.Info("All selected services already in progress", map[string]interface{}{
			"reference_id": ref,
			"duplicates":   result.Duplicates,
		})
		c.JSON(http.StatusOK, gin.H{
			"code":   apperrors.BusinessAllDuplicate,
			"result": result,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"result": result,
	})
}

// GetServiceForm returns the form step for a request
// GET /api/v1/service-forms/:request_id
func (ctrl *CheckoutController) GetServiceForm(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	requestID, ok := parseRequestID(c)
	if !ok {
		return
	}

	view, err := ctrl.checkoutService.GetServiceForm(c.Request.Context(), middleware.GetSessionID(c), requestID)
	if err != nil {
		respondCheckoutError(c, log, err, requestID)
		return
	}

	c.JSON(http.StatusOK, view)
}

// SubmitServiceForm stores one intake form and advances the wizard
// POST /api/v1/service-forms/:request_id
func (ctrl *CheckoutController) SubmitServiceForm(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	requestID, ok := parseRequestID(c)
	if !ok {
		return
	}

	bind := func(form service.ServiceForm) error {
		return c.ShouldBindJSON(form)
	}
	result, err := ctrl.checkoutService.SubmitServiceForm(c.Request.Context(), middleware.GetSessionID(c), requestID, bind)
	if err != nil {
		respondCheckoutError(c, log, err, requestID)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPayment returns the priced payment summary
// GET /api/v1/payments/:request_id
func (ctrl *CheckoutController) GetPayment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	requestID, ok := parseRequestID(c)
	if !ok {
		return
	}

	summary, err := ctrl.checkoutService.GetPaymentSummary(c.Request.Context(), middleware.GetSessionID(c), requestID)
	if err != nil {
		respondCheckoutError(c, log, err, requestID)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// SubmitPayment charges the card for the whole checkout
// POST /api/v1/payments/:request_id
func (ctrl *CheckoutController) SubmitPayment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	requestID, ok := parseRequestID(c)
	if !ok {
		return
	}

	var input service.PaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Warn("Invalid payment submission", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		apperrors.RespondWithBindingError(c, err)
		return
	}

	result, err := ctrl.checkoutService.SubmitPayment(c.Request.Context(), middleware.GetSessionID(c), requestID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentDeclined) && result != nil:
			c.JSON(http.StatusPaymentRequired, gin.H{
				"error":   apperrors.PaymentDeclined,
				"message": result.Message,
				"result":  result,
			})
		case errors.Is(err, service.ErrGatewayUnavailable) && result != nil:
			c.JSON(http.StatusPaymentRequired, gin.H{
				"error":   apperrors.PaymentGatewayDown,
				"message": result.Message,
				"result":  result,
			})
		default:
			respondCheckoutError(c, log, err, requestID)
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetConfirmation shows the receipt once
// GET /api/v1/payments/:request_id/confirmation
func (ctrl *CheckoutController) GetConfirmation(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	requestID, ok := parseRequestID(c)
	if !ok {
		return
	}

	info, err := ctrl.checkoutService.GetConfirmation(c.Request.Context(), middleware.GetSessionID(c), requestID)
	if err != nil {
		respondCheckoutError(c, log, err, requestID)
		return
	}

	c.JSON(http.StatusOK, info)
}

func parseRequestID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("request_id"), 10, 32)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid request ID")
		return 0, false
	}
	return uint(id), true
}

// respondCheckoutError maps wizard and service errors onto HTTP statuses.
func respondCheckoutError(c *gin.Context, log *logger.Logger, err error, requestID uint) {
	var bindErr *service.BindError
	switch {
	case errors.As(err, &bindErr):
		log.Warn("Service form rejected", map[string]interface{}{
			"request_id": requestID,
			"error":      bindErr.Err.Error(),
		})
		apperrors.RespondWithBindingError(c, bindErr.Err)
	case errors.Is(err, service.ErrRequestNotFound):
		apperrors.NotFound(c, apperrors.CheckoutRequestNotFound, "Compliance request not found")
	case errors.Is(err, service.ErrUnknownServiceType):
		apperrors.NotFound(c, apperrors.CheckoutUnknownService, "No form exists for this service")
	case errors.Is(err, service.ErrBusinessNotFound):
		apperrors.NotFound(c, apperrors.BusinessNotFound, "Business not found")
	case errors.Is(err, service.ErrNoCheckoutSession):
		apperrors.Conflict(c, apperrors.CheckoutNoSession, "No checkout in progress. Select services to start")
	case errors.Is(err, wizard.ErrUnknownRequest), errors.Is(err, wizard.ErrOutOfOrder):
		apperrors.Conflict(c, apperrors.CheckoutOutOfOrder, "This step is not available yet")
	case errors.Is(err, wizard.ErrAlreadyPaid):
		apperrors.Conflict(c, apperrors.CheckoutAlreadyPaid, "This checkout has already been paid")
	case errors.Is(err, service.ErrCheckoutStale):
		apperrors.Conflict(c, apperrors.ResourceConflict, "Your order changed. Please review the summary and pay again")
	case errors.Is(err, service.ErrConfirmationNotReady):
		apperrors.Conflict(c, apperrors.CheckoutNotConfirmed, "Payment has not been completed")
	case errors.Is(err, service.ErrConfirmationConsumed):
		apperrors.Conflict(c, apperrors.CheckoutNotConfirmed, "This confirmation has already been shown")
	default:
		log.Error("Checkout step failed", err, map[string]interface{}{
			"request_id": requestID,
		})
		apperrors.InternalError(c, "")
	}
}
