package domain

import "time"

// UserRegisteredEvent announces an account created from a completed order.
type UserRegisteredEvent struct {
	EventID      string
	UserID       string
	OrderID      string
	Username     string
	Email        string
	FirstName    string
	LastName     string
	RegisteredAt time.Time
	Metadata     map[string]any
}

// RegistrationFailedEvent announces a registration attempt that did not
// produce an account. The order itself completed normally.
type RegistrationFailedEvent struct {
	EventID  string
	OrderID  string
	Email    string
	Reason   FailureReason
	Details  []string
	FailedAt time.Time
	Metadata map[string]any
}
