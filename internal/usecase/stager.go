package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/checkout-registration/internal/core/domain"
	"github.com/arklim/checkout-registration/internal/core/port"
)

// StagerService stashes an encrypted checkout password keyed by order number
// so the completer can create the account once the order is final. Checkout
// save events repeat for the same order; staging is an idempotent overwrite.
type StagerService struct {
	staging port.StagingRepository
	cipher  port.PasswordCipher
	logger  *zap.Logger
	now     func() time.Time
}

// NewStagerService constructs a credential stager.
func NewStagerService(staging port.StagingRepository, cipher port.PasswordCipher, logger *zap.Logger) *StagerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StagerService{
		staging: staging,
		cipher:  cipher,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock overrides the time source, used by tests.
func (s *StagerService) WithClock(clock func() time.Time) *StagerService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Stage encrypts the password and upserts the staged registration for the
// order. Encryption failures propagate: the caller must not let the shopper
// believe registration will happen when the credential was never stashed.
func (s *StagerService) Stage(ctx context.Context, orderID, rawPassword string) error {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return fmt.Errorf("order id is required")
	}
	if rawPassword == "" {
		return fmt.Errorf("password is required")
	}

	encrypted, err := s.cipher.Encrypt(rawPassword)
	if err != nil {
		return fmt.Errorf("encrypt password for order %s: %w", orderID, err)
	}

	staged := domain.StagedRegistration{
		OrderID:           orderID,
		EncryptedPassword: encrypted,
		UpdatedAt:         s.now().UTC(),
	}

	if err := s.staging.Upsert(ctx, staged); err != nil {
		return fmt.Errorf("stage registration for order %s: %w", orderID, err)
	}

	// Checkout saves fire repeatedly, so seeing this log per order more than
	// once is normal.
	s.logger.Debug("staged registration record saved", zap.String("order_id", orderID))

	return nil
}
