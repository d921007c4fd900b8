package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/arklim/checkout-registration/internal/core/port"
	"github.com/arklim/checkout-registration/internal/infra/config"
	"github.com/arklim/checkout-registration/internal/infra/database"
	kafkainfra "github.com/arklim/checkout-registration/internal/infra/kafka"
	"github.com/arklim/checkout-registration/internal/infra/logger"
	redisinfra "github.com/arklim/checkout-registration/internal/infra/redis"
	"github.com/arklim/checkout-registration/internal/infra/security"
	"github.com/arklim/checkout-registration/internal/infra/telemetry"
	postgresrepo "github.com/arklim/checkout-registration/internal/repository/postgres"
	redisrepo "github.com/arklim/checkout-registration/internal/repository/redis"
	"github.com/arklim/checkout-registration/internal/transport/http/routes"
	"github.com/arklim/checkout-registration/internal/usecase"
)

type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redisinfra.Client
	kafka  *kafkainfra.Producer
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env, cfg.App.Debug)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	tel, err := telemetry.Attach(cfg)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	cipher, err := security.NewAESCipherFromBase64(cfg.Registration.EncryptionKey)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init password cipher: %w", err)
	}

	argonCfg := security.Argon2Config{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	}
	if err := security.ConfigureArgon2(argonCfg); err != nil {
		pool.Close()
		return nil, fmt.Errorf("configure argon2: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool, cfg.Registration.DefaultRoleID)
	outcomeRepo := redisrepo.NewOutcomeRepository(redisClient.Client(), cfg.Redis.OutcomePrefix, cfg.Registration.OutcomeTTL)
	sessionRepo := redisrepo.NewSessionRepository(redisClient.Client(), cfg.Redis.SessionPrefix, cfg.Registration.SessionTTL)

	var (
		eventPublisher port.EventPublisher
		kafkaProducer  *kafkainfra.Producer
	)
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
			kafkaProducer = nil
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(kafkaProducer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	validator := security.CheckoutPasswordValidator(
		cfg.Registration.MinPasswordLength,
		cfg.Registration.MinPasswordScore,
	)

	stager := usecase.NewStagerService(repos.Staging, cipher, log)
	completer := usecase.NewCompleterService(
		repos.Staging,
		repos.Users,
		repos.Roles,
		sessionRepo,
		outcomeRepo,
		eventPublisher,
		cipher,
		validator,
		usecase.CompleterOptions{
			RetentionWindow: cfg.Registration.RetentionWindow,
			AccountTimeout:  cfg.Registration.AccountTimeout,
		},
		log,
	)

	engine := routes.Register(routes.Dependencies{
		Config:    cfg,
		Logger:    log,
		Telemetry: tel,
		Database:  pool,
		Cache:     redisClient,
		Services: routes.ServiceSet{
			Stager:    stager,
			Completer: completer,
			Outcomes:  outcomeRepo,
		},
	})

	return &Application{
		cfg:    cfg,
		engine: engine,
		logger: log,
		pool:   pool,
		redis:  redisClient,
		kafka:  kafkaProducer,
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.kafka != nil {
			_ = a.kafka.Close()
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting checkout registration API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
