package domain

import "time"

// StagedRegistration is the encrypted credential stashed between a checkout
// save and order completion, correlated by the commerce order number.
// At most one record exists per order number; consumption deletes it.
type StagedRegistration struct {
	OrderID           string
	EncryptedPassword string
	UpdatedAt         time.Time
}

// OutcomeStatus enumerates terminal registration outcomes for an order.
type OutcomeStatus string

const (
	OutcomeRegistered OutcomeStatus = "registered"
	OutcomeSkipped    OutcomeStatus = "skipped"
	OutcomeFailed     OutcomeStatus = "failed"
)

// FailureReason classifies why a registration attempt did not produce an account.
type FailureReason string

const (
	FailureDecryption      FailureReason = "decryption_error"
	FailureAccountCreation FailureReason = "account_creation_error"
	FailureTimeout         FailureReason = "timeout"
)

// Outcome is the result of a registration completion attempt. Order completion
// itself is never affected by the outcome; callers surface it out of band.
type Outcome struct {
	Status  OutcomeStatus
	Reason  FailureReason
	UserID  string
	Details []string
}

// Registered builds a success outcome carrying the new account identifier.
func Registered(userID string) Outcome {
	return Outcome{Status: OutcomeRegistered, UserID: userID}
}

// Skipped reports that no staged credential existed for the order. Most orders
// never opt into registration, so this is the common, non-error path.
func Skipped() Outcome {
	return Outcome{Status: OutcomeSkipped}
}

// Failed builds a failure outcome with optional operator-facing details.
func Failed(reason FailureReason, details ...string) Outcome {
	return Outcome{Status: OutcomeFailed, Reason: reason, Details: details}
}

// CompletionRequest carries the order-completion event fields the completer
// consumes. Override names win over billing names per field when present.
type CompletionRequest struct {
	OrderID           string
	CheckoutSessionID string
	Email             string
	BillingFirstName  string
	BillingLastName   string
	OverrideFirstName string
	OverrideLastName  string
}

// FirstName resolves the first name with the per-field override policy.
func (r CompletionRequest) FirstName() string {
	if r.OverrideFirstName != "" {
		return r.OverrideFirstName
	}
	return r.BillingFirstName
}

// LastName resolves the last name with the per-field override policy.
func (r CompletionRequest) LastName() string {
	if r.OverrideLastName != "" {
		return r.OverrideLastName
	}
	return r.BillingLastName
}
