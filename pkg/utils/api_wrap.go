package utils

import (
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Field   string      `json:"field,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func traceIDFrom(c *gin.Context) string {
	return c.GetString("trace_id")
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Status:  "success",
		Code:    http.StatusOK,
		Message: message,
		TraceID: traceIDFrom(c),
		Data:    data,
	})
}

func RespondCreated(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusCreated, APIResponse{
		Success: true,
		Status:  "success",
		Code:    http.StatusCreated,
		Message: message,
		TraceID: traceIDFrom(c),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Success: false,
		Status:  "error",
		Code:    code,
		Error:   message,
		TraceID: traceIDFrom(c),
	})
}

func respondFieldError(c *gin.Context, field, message string) {
	c.JSON(http.StatusBadRequest, APIResponse{
		Success: false,
		Status:  "error",
		Code:    http.StatusBadRequest,
		Error:   message,
		Field:   field,
		TraceID: traceIDFrom(c),
	})
}

func HandleServiceError(c *gin.Context, err error) {
	var validationErr *ValidationError
	var limitErr *GalleryLimitError

	switch {
	case errors.As(err, &validationErr):
		respondFieldError(c, validationErr.Field, validationErr.Message)
	case errors.As(err, &limitErr):
		RespondError(c, http.StatusBadRequest, limitErr.Error())
	case errors.Is(err, ErrInvalidPage):
		RespondError(c, http.StatusBadRequest, "Page must be greater than 0")
	case errors.Is(err, ErrInvalidPageSize):
		RespondError(c, http.StatusBadRequest, "Page size must be between 1 and 100")
	case errors.Is(err, ErrInvalidInput):
		RespondError(c, http.StatusBadRequest, "Invalid input")
	case errors.Is(err, ErrInvalidSignature):
		RespondError(c, http.StatusBadRequest, "Invalid signature")
	case errors.Is(err, ErrInvalidCredentials):
		RespondError(c, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, ErrUnauthenticated):
		RespondError(c, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, ErrPermissionDenied):
		RespondError(c, http.StatusForbidden, "Permission denied")
	case errors.Is(err, ErrFeatureNotInPlan):
		RespondError(c, http.StatusForbidden, "Your plan does not include this feature")
	case errors.Is(err, ErrEmailAlreadyExists):
		RespondError(c, http.StatusConflict, "Email already registered")
	case errors.Is(err, ErrInvalidTransition):
		RespondError(c, http.StatusConflict, "Only pending items can be moderated")
	case errors.Is(err, ErrMemorialNotFound):
		RespondError(c, http.StatusNotFound, "Memorial not found")
	case errors.Is(err, ErrPlanNotFound):
		RespondError(c, http.StatusNotFound, "Plan not found")
	case errors.Is(err, ErrContributionMissing):
		RespondError(c, http.StatusNotFound, "Not found")
	case errors.Is(err, ErrImageNotFound):
		RespondError(c, http.StatusNotFound, "Image not found")
	case errors.Is(err, ErrAccountNotFound):
		RespondError(c, http.StatusNotFound, "Account not found")
	case errors.Is(err, ErrSubscriberNotFound):
		RespondError(c, http.StatusNotFound, "This email is not subscribed")
	case errors.Is(err, ErrPaymentsDisabled):
		RespondError(c, http.StatusServiceUnavailable, "Payments are currently unavailable")
	case errors.Is(err, ErrExternalService):
		zap.L().Error("external service error", zap.String("trace_id", traceIDFrom(c)), zap.Error(err))
		captureError(c, err)
		RespondError(c, http.StatusBadGateway, "Something went wrong, please try again later")
	case errors.Is(err, ErrDatabaseError):
		zap.L().Error("database error", zap.String("trace_id", traceIDFrom(c)), zap.Error(err))
		captureError(c, err)
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	default:
		zap.L().Error("unknown error", zap.String("trace_id", traceIDFrom(c)), zap.Error(err))
		captureError(c, err)
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	}
}

func captureError(c *gin.Context, err error) {
	hub := sentry.GetHubFromContext(c.Request.Context())
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.CaptureException(err)
}
