package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/checkout-registration/internal/core/domain"
	"github.com/arklim/checkout-registration/internal/core/port"
	"github.com/arklim/checkout-registration/internal/infra/logger"
	"github.com/arklim/checkout-registration/internal/infra/security"
	"github.com/arklim/checkout-registration/internal/repository"
)

const (
	defaultRetentionWindow = 90 * 24 * time.Hour
	defaultAccountTimeout  = 5 * time.Second
)

// CompleterService reacts to order completion: it consumes the staged
// credential for the order, creates the shopper account, and logs the new
// user in. Order completion is never blocked or reverted by anything here;
// every failure is reported through the outcome side channel only.
type CompleterService struct {
	staging   port.StagingRepository
	users     port.UserRepository
	roles     port.RoleRepository
	sessions  port.SessionStore
	outcomes  port.OutcomeRecorder
	events    port.EventPublisher
	cipher    port.PasswordCipher
	validator *security.PasswordValidator

	retention      time.Duration
	accountTimeout time.Duration

	logger *zap.Logger
	now    func() time.Time
}

// CompleterOptions tunes the completion workflow.
type CompleterOptions struct {
	// RetentionWindow caps staged credential age; swept on every completion.
	RetentionWindow time.Duration
	// AccountTimeout bounds the account-creation call.
	AccountTimeout time.Duration
}

// NewCompleterService constructs a registration completer.
func NewCompleterService(
	staging port.StagingRepository,
	users port.UserRepository,
	roles port.RoleRepository,
	sessions port.SessionStore,
	outcomes port.OutcomeRecorder,
	events port.EventPublisher,
	cipher port.PasswordCipher,
	validator *security.PasswordValidator,
	opts CompleterOptions,
	log *zap.Logger,
) *CompleterService {
	if log == nil {
		log = zap.NewNop()
	}
	if validator == nil {
		validator = security.CheckoutPasswordValidator(8, 2)
	}
	retention := opts.RetentionWindow
	if retention <= 0 {
		retention = defaultRetentionWindow
	}
	accountTimeout := opts.AccountTimeout
	if accountTimeout <= 0 {
		accountTimeout = defaultAccountTimeout
	}

	return &CompleterService{
		staging:        staging,
		users:          users,
		roles:          roles,
		sessions:       sessions,
		outcomes:       outcomes,
		events:         events,
		cipher:         cipher,
		validator:      validator,
		retention:      retention,
		accountTimeout: accountTimeout,
		logger:         log,
		now:            time.Now,
	}
}

// WithClock overrides the time source, used by tests.
func (s *CompleterService) WithClock(clock func() time.Time) *CompleterService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Complete runs the registration workflow for a completed order and returns
// the terminal outcome. It never returns an error: persistence trouble
// degrades to Skipped and everything else lands in a Failed outcome, because
// the triggering order-completion event must always succeed from the host's
// point of view.
func (s *CompleterService) Complete(ctx context.Context, req domain.CompletionRequest) domain.Outcome {
	orderID := strings.TrimSpace(req.OrderID)
	if orderID == "" {
		s.logger.Warn("order completion event without order id")
		return domain.Skipped()
	}

	staged, err := s.staging.Consume(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Most orders never opt into registration.
			s.logger.Debug("no staged registration for order", zap.String("order_id", orderID))
			return domain.Skipped()
		}
		s.logger.Error("consume staged registration",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return domain.Skipped()
	}

	s.logger.Info("staged registration found for order", zap.String("order_id", orderID))

	// The secret is already deleted at this point. Piggy-back the retention
	// sweep for abandoned carts; its failure never affects this registration.
	s.sweep(ctx)

	password, err := s.cipher.Decrypt(staged.EncryptedPassword)
	if err != nil {
		s.logger.Error("decrypt staged password",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return s.finish(ctx, req, domain.Failed(domain.FailureDecryption, "stored credential could not be recovered"))
	}

	user, outcome := s.createAccount(ctx, req, password)
	if outcome.Status != domain.OutcomeRegistered {
		return s.finish(ctx, req, outcome)
	}

	if err := s.roles.AssignDefault(ctx, user.ID); err != nil {
		// The account exists; group membership can be repaired afterwards.
		s.logger.Error("assign default role",
			zap.String("order_id", orderID),
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	}

	if _, err := s.sessions.Login(ctx, user.ID); err != nil {
		s.logger.Error("establish login session",
			zap.String("order_id", orderID),
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	}

	s.logger.Info("registered new user on checkout",
		zap.String("order_id", orderID),
		zap.String("user_id", user.ID),
		zap.String("email", logger.MaskEmail(user.Email)),
	)

	return s.finish(ctx, req, outcome)
}

func (s *CompleterService) createAccount(ctx context.Context, req domain.CompletionRequest, password string) (domain.User, domain.Outcome) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return domain.User{}, domain.Failed(domain.FailureAccountCreation, "order has no email address")
	}

	if err := s.validator.Validate(password); err != nil {
		return domain.User{}, domain.Failed(domain.FailureAccountCreation, err.Error())
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		s.logger.Error("hash password", zap.String("order_id", req.OrderID), zap.Error(err))
		return domain.User{}, domain.Failed(domain.FailureAccountCreation, "could not process password")
	}

	// Username equals email: everything in the commerce host is keyed by email.
	user := domain.User{
		ID:           uuid.NewString(),
		Username:     email,
		Email:        email,
		FirstName:    req.FirstName(),
		LastName:     req.LastName(),
		PasswordHash: passwordHash,
		PasswordAlgo: "argon2id",
		Status:       domain.UserStatusActive,
		RegisteredAt: s.now().UTC(),
	}

	createCtx, cancel := context.WithTimeout(ctx, s.accountTimeout)
	defer cancel()

	if err := s.users.Create(createCtx, user); err != nil {
		var validationErrs domain.ValidationErrors
		if errors.As(err, &validationErrs) {
			return domain.User{}, domain.Failed(domain.FailureAccountCreation, validationErrs.Messages()...)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			s.logger.Error("account creation timed out",
				zap.String("order_id", req.OrderID),
				zap.Duration("timeout", s.accountTimeout),
			)
			return domain.User{}, domain.Failed(domain.FailureTimeout, "account creation timed out")
		}
		s.logger.Error("create user", zap.String("order_id", req.OrderID), zap.Error(err))
		return domain.User{}, domain.Failed(domain.FailureAccountCreation, "account creation failed")
	}

	return user, domain.Registered(user.ID)
}

// sweep opportunistically purges staged credentials past the retention
// window. Best effort only.
func (s *CompleterService) sweep(ctx context.Context) {
	cutoff := s.now().UTC().Add(-s.retention)
	purged, err := s.staging.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Warn("purge stale staged registrations", zap.Error(err))
		return
	}
	if purged > 0 {
		s.logger.Info("purged stale staged registrations",
			zap.Int64("count", purged),
			zap.Time("cutoff", cutoff),
		)
	}
}

// finish records the outcome side channel and publishes the lifecycle event.
// Both are best effort.
func (s *CompleterService) finish(ctx context.Context, req domain.CompletionRequest, outcome domain.Outcome) domain.Outcome {
	if sessionID := strings.TrimSpace(req.CheckoutSessionID); sessionID != "" && s.outcomes != nil {
		if err := s.outcomes.Record(ctx, sessionID, outcome); err != nil {
			s.logger.Error("record registration outcome",
				zap.String("order_id", req.OrderID),
				zap.Error(err),
			)
		}
	}

	if s.events != nil {
		s.publishEvent(ctx, req, outcome)
	}

	return outcome
}

func (s *CompleterService) publishEvent(ctx context.Context, req domain.CompletionRequest, outcome domain.Outcome) {
	var err error
	switch outcome.Status {
	case domain.OutcomeRegistered:
		err = s.events.PublishUserRegistered(ctx, domain.UserRegisteredEvent{
			EventID:      uuid.NewString(),
			UserID:       outcome.UserID,
			OrderID:      req.OrderID,
			Username:     req.Email,
			Email:        req.Email,
			FirstName:    req.FirstName(),
			LastName:     req.LastName(),
			RegisteredAt: s.now().UTC(),
		})
	case domain.OutcomeFailed:
		err = s.events.PublishRegistrationFailed(ctx, domain.RegistrationFailedEvent{
			EventID:  uuid.NewString(),
			OrderID:  req.OrderID,
			Email:    req.Email,
			Reason:   outcome.Reason,
			Details:  outcome.Details,
			FailedAt: s.now().UTC(),
		})
	default:
		return
	}

	if err != nil {
		s.logger.Warn("publish registration event",
			zap.String("order_id", req.OrderID),
			zap.String("status", string(outcome.Status)),
			zap.Error(err),
		)
	}
}
