// Package container builds the application's components once at startup and
// hands them to the router modules and commands.
package container

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/daniellescalera/user-management/config"
	"github.com/daniellescalera/user-management/internal/application"
	"github.com/daniellescalera/user-management/internal/domain/repository"
	"github.com/daniellescalera/user-management/internal/infrastructure/memory"
	"github.com/daniellescalera/user-management/internal/infrastructure/notify"
	pginfra "github.com/daniellescalera/user-management/internal/infrastructure/postgres"
	"github.com/daniellescalera/user-management/internal/infrastructure/search"
	"github.com/daniellescalera/user-management/internal/infrastructure/storage"
	"github.com/daniellescalera/user-management/pkg/helpers"
	mailtpl "github.com/daniellescalera/user-management/pkg/mailer/templates"
)

const pingTimeout = 5 * time.Second

// Container holds the shared components. Redis is nil when REDIS_ADDR is empty.
type Container struct {
	Config    *config.Config
	Logger    *logrus.Logger
	Users     repository.UserRepository
	Service   *application.Service
	Analytics *application.AnalyticsService
	Redis     redis.Cmdable
	JWT       *helpers.JWTManager
	Cookies   *helpers.Manager
	Metrics   *application.Metrics

	closers []func()
}

// Option tweaks a Container before the service is built.
type Option func(*Container)

// WithMetrics replaces the process-wide expvar counters.
func WithMetrics(m *application.Metrics) Option {
	return func(c *Container) { c.Metrics = m }
}

// New connects the configured backends and wires the service graph.
// Close releases whatever New opened, also after a partial failure.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger, opts ...Option) (*Container, error) {
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		JWT:     helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL),
		Cookies: helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure),
	}
	for _, o := range opts {
		o(c)
	}
	if c.Metrics == nil {
		c.Metrics = application.PublishedMetrics()
	}

	users, err := c.openUsers(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Users = users

	if err := c.openRedis(ctx); err != nil {
		c.Close()
		return nil, err
	}

	deps := application.Deps{
		Repo:             users,
		Hasher:           helpers.NewBcryptHasher(cfg.PasswordHashCost),
		Tokens:           c.JWT,
		Logger:           logger,
		Metrics:          c.Metrics,
		MaxLoginAttempts: cfg.MaxLoginAttempts,
	}
	if deps.Notifier, err = c.openNotifier(); err != nil {
		c.Close()
		return nil, err
	}
	// Optional collaborators are only assigned when present so the interfaces stay nil.
	if idx, err := c.openIndex(ctx); err != nil {
		c.Close()
		return nil, err
	} else if idx != nil {
		deps.Index = idx
	}
	if avatars, err := c.openAvatars(ctx); err != nil {
		c.Close()
		return nil, err
	} else if avatars != nil {
		deps.Avatars = avatars
	}

	c.Service = application.NewService(deps)
	c.Analytics = application.NewAnalyticsService(users, c.Redis, cfg.AnalyticsCacheTTL, logger)
	return c, nil
}

func (c *Container) onClose(fn func()) { c.closers = append(c.closers, fn) }

// Close runs the registered cleanups in reverse order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

func (c *Container) openUsers(ctx context.Context) (repository.UserRepository, error) {
	cfg := c.Config
	if cfg.StorageDriver == config.StorageMemory {
		c.Logger.Warn("using in-memory storage; data is lost on restart")
		return memory.NewUserRepository(), nil
	}

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	c.onClose(pool.Close)

	db := pginfra.OpenDB(pool)
	c.onClose(func() { _ = db.Close() })
	if err := pginfra.RunMigrations(db, cfg.MigrationsDir, c.Logger); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return pginfra.NewUserRepository(db), nil
}

func (c *Container) openRedis(ctx context.Context) error {
	cfg := c.Config
	if cfg.RedisAddr == "" {
		c.Logger.Info("redis not configured; rate limiting and analytics cache disabled")
		return nil
	}
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	c.onClose(func() { _ = rdb.Close() })

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	c.Redis = rdb
	return nil
}

func (c *Container) openNotifier() (application.Notifier, error) {
	cfg := c.Config
	if !cfg.MailSendEnabled {
		return notify.NewLogNotifier(c.Logger), nil
	}
	pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}
	c.onClose(pub.Close)
	return notify.NewQueueNotifier(pub, Branding(cfg), cfg.VerifyEmailURL), nil
}

// openIndex returns nil when search is not configured. An unreachable cluster
// only warns; indexing is best-effort and the index is created on a later start.
func (c *Container) openIndex(ctx context.Context) (*search.UserIndex, error) {
	cfg := c.Config
	if len(cfg.ElasticsearchAddrs) == 0 {
		return nil, nil
	}
	es, err := search.NewClient(cfg.ElasticsearchAddrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	idx := search.NewUserIndex(es, cfg.ESUsersIndex)
	if err := idx.EnsureIndex(ctx); err != nil {
		c.Logger.WithError(err).WithField("index", cfg.ESUsersIndex).Warn("search index not ready")
	}
	return idx, nil
}

func (c *Container) openAvatars(ctx context.Context) (*storage.AvatarStore, error) {
	cfg := c.Config
	if cfg.GCSBucket == "" {
		return nil, nil
	}
	client, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath, cfg.GCSEndpoint)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	c.onClose(func() { _ = client.Close() })
	return storage.NewAvatarStore(client, cfg.GCSBucket), nil
}

// Branding is the email footer data taken from configuration.
func Branding(cfg *config.Config) mailtpl.Branding {
	return mailtpl.Branding{
		AppName:        cfg.AppName,
		CompanyName:    cfg.CompanyName,
		CompanyAddress: cfg.CompanyAddress,
		LogoURL:        cfg.LogoURL,
		SupportURL:     cfg.SupportURL,
		PrivacyURL:     cfg.PrivacyURL,
	}
}
