package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/jangir-rishbh/clothing-shop-sub000/internals/config"
	"github.com/jangir-rishbh/clothing-shop-sub000/internals/controllers"
	"github.com/jangir-rishbh/clothing-shop-sub000/internals/initializers"
	"github.com/jangir-rishbh/clothing-shop-sub000/internals/middleware"
	"github.com/jangir-rishbh/clothing-shop-sub000/internals/repositories"
	"github.com/jangir-rishbh/clothing-shop-sub000/internals/routes"
	"github.com/jangir-rishbh/clothing-shop-sub000/internals/services"
	"github.com/jangir-rishbh/clothing-shop-sub000/internals/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	app := fx.New(
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),
		fx.Provide(
			newConfig,
			initializers.NewLogger,
			newDatabase,
			newRedis,
			newUserRepository,
			newOTPRepository,
			newMailer,
			newSigner,
			newTokenManager,
			newCaptchaManager,
			newOTPService,
			newAuthService,
			middleware.NewGuard,
			controllers.NewAuthController,
			controllers.NewVerificationController,
			controllers.NewCaptchaController,
			controllers.NewAdminController,
			routes.SetupRouter,
		),
		fx.Invoke(startJanitor, startHTTPServer),
	)

	app.Run()
}

func newConfig() (config.Config, error) {
	if err := initializers.LoadEnvVariables(); err != nil {
		return config.Config{}, err
	}
	return config.Load()
}

// newDatabase returns nil when users are kept in memory.
func newDatabase(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*gorm.DB, error) {
	if cfg.Storage != config.StorageDatabase {
		logger.Warn("using in-memory storage; data is lost on restart")
		return nil, nil
	}
	db, err := initializers.ConnectToDb(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := initializers.SyncDatabase(db); err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})
	return db, nil
}

func newRedis(lc fx.Lifecycle, cfg config.Config) (*redis.Client, error) {
	if cfg.OTPStore != config.StorageRedis {
		return nil, nil
	}
	client, err := initializers.ConnectToRedis(cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}

func newUserRepository(cfg config.Config, db *gorm.DB) repositories.UserRepository {
	if cfg.Storage == config.StorageMemory {
		return repositories.NewMemoryUserRepository()
	}
	return repositories.NewGormUserRepository(db)
}

func newOTPRepository(cfg config.Config, db *gorm.DB, rdb *redis.Client) repositories.OTPRepository {
	switch cfg.OTPStore {
	case config.StorageRedis:
		return repositories.NewRedisOTPRepository(rdb, cfg.OTPPurgeGrace)
	case config.StorageMemory:
		return repositories.NewMemoryOTPRepository()
	default:
		return repositories.NewGormOTPRepository(db)
	}
}

func newMailer(cfg config.Config, logger *zap.Logger) utils.Mailer {
	if cfg.SMTP.Host == "" {
		logger.Warn("SMTP_HOST is not set; verification emails are written to the log")
		return &utils.LogMailer{Logger: logger}
	}
	return utils.NewEmailManager(&utils.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		User:     cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
}

func newSigner(cfg config.Config, logger *zap.Logger) *utils.Signer {
	if cfg.UsingDevSecret {
		logger.Warn("SESSION_SECRET is missing or shorter than 32 bytes; using an insecure development secret. Never run like this in production.")
	}
	return utils.NewSigner(cfg.SessionSecret, nil)
}

func newTokenManager(cfg config.Config, signer *utils.Signer) *utils.TokenManager {
	return utils.NewTokenManager(signer, cfg.SessionCookie(), cfg.SessionTTL)
}

func newCaptchaManager(cfg config.Config, signer *utils.Signer) *utils.CaptchaManager {
	return utils.NewCaptchaManager(signer, cfg.CaptchaLength, cfg.CaptchaTTL)
}

func newOTPService(cfg config.Config, users repositories.UserRepository, records repositories.OTPRepository, mailer utils.Mailer, signer *utils.Signer, logger *zap.Logger) *services.OTPService {
	return services.NewOTPService(users, records, mailer, signer, logger, services.OTPOptions{
		AppName:        cfg.AppName,
		TTL:            cfg.OTPTTL,
		ResetTTL:       cfg.OTPResetTTL,
		ResendCooldown: cfg.OTPResendCooldown,
		PurgeGrace:     cfg.OTPPurgeGrace,
		MaxAttempts:    cfg.OTPMaxAttempts,
		VerifiedWindow: cfg.VerifiedWindow,
	})
}

func newAuthService(cfg config.Config, users repositories.UserRepository, otp *services.OTPService, tokens *utils.TokenManager, logger *zap.Logger) *services.AuthService {
	return services.NewAuthService(users, otp, tokens, logger, cfg.MinPasswordLength)
}

func startJanitor(lc fx.Lifecycle, cfg config.Config, otp *services.OTPService, logger *zap.Logger) {
	var (
		cancel context.CancelFunc
		done   <-chan struct{}
	)
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())
			done = initializers.StartOTPCleanup(ctx, otp, cfg.CleanupInterval, logger)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

func startHTTPServer(lc fx.Lifecycle, cfg config.Config, engine *gin.Engine, logger *zap.Logger) {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			logger.Info("http server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
