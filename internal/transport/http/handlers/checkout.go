package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arklim/checkout-registration/internal/core/domain"
	"github.com/arklim/checkout-registration/internal/core/port"
	"github.com/arklim/checkout-registration/internal/infra/telemetry"
	"github.com/arklim/checkout-registration/internal/repository"
	"github.com/arklim/checkout-registration/internal/usecase"
)

// CheckoutHandler exposes the two commerce webhooks plus the outcome read endpoint.
type CheckoutHandler struct {
	stager    *usecase.StagerService
	completer *usecase.CompleterService
	outcomes  port.OutcomeRecorder
	telemetry *telemetry.Provider
	logger    *zap.Logger
}

func NewCheckoutHandler(
	stager *usecase.StagerService,
	completer *usecase.CompleterService,
	outcomes port.OutcomeRecorder,
	tel *telemetry.Provider,
	log *zap.Logger,
) *CheckoutHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CheckoutHandler{
		stager:    stager,
		completer: completer,
		outcomes:  outcomes,
		telemetry: tel,
		logger:    log,
	}
}

// RegisterRoutes binds checkout endpoints.
func (h *CheckoutHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/save", h.SaveCheckout)
	r.POST("/complete", h.CompleteOrder)
	r.GET("/outcome/:sessionID", h.Outcome)
}

// SaveCheckout handles the pre-completion checkout save event. When the
// shopper opted into registration and supplied a password, the credential is
// encrypted and staged for the completion event. A staging failure is a hard
// error: the host must know registration will not happen for this order.
func (h *CheckoutHandler) SaveCheckout(c *gin.Context) {
	var req CheckoutSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid checkout save payload"})
		return
	}

	if !req.RegisterOnCheckout || req.Password == "" {
		c.JSON(http.StatusOK, MessageResponse{Message: "no registration requested"})
		return
	}

	if err := h.stager.Stage(c.Request.Context(), req.OrderID, req.Password); err != nil {
		h.logger.Error("stage checkout registration",
			zap.String("order_id", req.OrderID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to stage registration"})
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "registration staged"})
}

// CompleteOrder handles the order completion event. The response is always
// 200: order completion is the primary operation and is never failed or
// delayed by a registration problem. The outcome rides in the body and the
// per-session side channel.
func (h *CheckoutHandler) CompleteOrder(c *gin.Context) {
	var req OrderCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid order completion payload"})
		return
	}

	outcome := h.completer.Complete(c.Request.Context(), domain.CompletionRequest{
		OrderID:           req.OrderID,
		CheckoutSessionID: req.CheckoutSessionID,
		Email:             req.Email,
		BillingFirstName:  req.BillingFirstName,
		BillingLastName:   req.BillingLastName,
		OverrideFirstName: strings.TrimSpace(req.FirstName),
		OverrideLastName:  strings.TrimSpace(req.LastName),
	})

	h.telemetry.ObserveOutcome(outcome)

	c.JSON(http.StatusOK, newOutcomeResponse(outcome))
}

// Outcome lets the storefront read the flash-style registration result for a
// checkout session.
func (h *CheckoutHandler) Outcome(c *gin.Context) {
	sessionID := strings.TrimSpace(c.Param("sessionID"))
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "checkout session id is required"})
		return
	}

	outcome, err := h.outcomes.Get(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "no registration outcome recorded"})
			return
		}
		h.logger.Error("read registration outcome",
			zap.String("checkout_session_id", sessionID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to read registration outcome"})
		return
	}

	c.JSON(http.StatusOK, newOutcomeResponse(*outcome))
}
