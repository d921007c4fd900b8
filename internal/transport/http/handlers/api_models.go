package handlers

import "github.com/arklim/checkout-registration/internal/core/domain"

// ErrorResponse represents a generic error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// CheckoutSaveRequest is the pre-completion checkout save webhook payload.
type CheckoutSaveRequest struct {
	OrderID            string `json:"order_id" binding:"required"`
	RegisterOnCheckout bool   `json:"register_on_checkout"`
	Password           string `json:"password"`
}

// OrderCompleteRequest is the order completion webhook payload.
type OrderCompleteRequest struct {
	OrderID           string `json:"order_id" binding:"required"`
	CheckoutSessionID string `json:"checkout_session_id"`
	Email             string `json:"email"`
	BillingFirstName  string `json:"billing_first_name"`
	BillingLastName   string `json:"billing_last_name"`
	// First/last name overrides collected at checkout. Useful when billing
	// data is not under the shopper's control, e.g. redirect gateways.
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// OutcomeResponse reports a registration outcome to the storefront.
type OutcomeResponse struct {
	Status  string   `json:"status"`
	Reason  string   `json:"reason,omitempty"`
	UserID  string   `json:"user_id,omitempty"`
	Details []string `json:"details,omitempty"`
}

func newOutcomeResponse(outcome domain.Outcome) OutcomeResponse {
	return OutcomeResponse{
		Status:  string(outcome.Status),
		Reason:  string(outcome.Reason),
		UserID:  outcome.UserID,
		Details: outcome.Details,
	}
}
