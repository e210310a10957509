package dig_container

import (
	"context"
	"fmt"
	"log"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"
	"go.uber.org/zap"

	echoapi "github.com/risingacademy/backend/apps/api/echo"
	"github.com/risingacademy/backend/core"
	"github.com/risingacademy/backend/core/application"
	"github.com/risingacademy/backend/core/settings"
	"github.com/risingacademy/backend/core/user"
	emailsvc "github.com/risingacademy/backend/services/email"
	identitysvc "github.com/risingacademy/backend/services/identity"
	logsvc "github.com/risingacademy/backend/services/logger"
	metricsvc "github.com/risingacademy/backend/services/metrics"
	"github.com/risingacademy/backend/services/ratelimit"
	"github.com/risingacademy/backend/storage/database"
	inmemdb "github.com/risingacademy/backend/storage/database/inmem"
	sqlxrepos "github.com/risingacademy/backend/storage/database/sqlx"
)

const rateLimitPrefix = "ratelimit:submit:"

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// Storage holds the repositories of the configured engine. DB is nil in memory mode.
	Storage struct {
		dig.Out
		DB           *sqlx.DB
		AppRepo      application.Repository
		SettingsRepo settings.Repository
		UserRepo     user.Repository
		CredRepo     user.CredentialRepository
	}

	ServerParam struct {
		dig.In
		Conf        *core.Config
		Logger      core.Logger
		AppSvc      *application.Service
		SettingsSvc *settings.Service
		AuthSvc     *user.AuthService
		Limiter     ratelimit.Limiter
		Metrics     *metricsvc.Collector
		DB          *sqlx.DB
		Validate    *validator.Validate
		Uni         *ut.UniversalTranslator
	}
)

func newZapLogger(conf *core.Config) (*zap.Logger, error) {
	return logsvc.NewZapLogger(conf.LogLevel, conf.Env)
}

func newLogger(conf *core.Config, std *zap.Logger) core.Logger {
	logger := logsvc.NewRollbarLogger(std, conf).Named("API")
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config, std *zap.Logger) core.Logger {
	logger := logsvc.NewRollbarLogger(std, conf).Named("DB")
	logger.Enable(!conf.Debug)
	return logger
}

func newStorage(conf *core.Config, loggerParam DBLoggerParam) Storage {
	if conf.Database.InMemory() {
		loggerParam.Logger.Warn("using the in-memory store: data is lost on restart")
		db := inmemdb.Open()
		return Storage{
			AppRepo:      inmemdb.NewApplicationRepository(db),
			SettingsRepo: inmemdb.NewSettingsRepository(db),
			UserRepo:     inmemdb.NewUserRepository(db),
			CredRepo:     inmemdb.NewCredentialRepository(db),
		}
	}

	setUp := func() (*sqlx.DB, error) {
		ctx := context.Background()
		if err := database.CreateIfNotExist(ctx, conf); err != nil {
			return nil, err
		}

		db, err := database.Open(ctx, conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(ctx, db.DB, "up"); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return Storage{
		DB:           db,
		AppRepo:      sqlxrepos.NewApplicationRepository(db),
		SettingsRepo: sqlxrepos.NewSettingsRepository(db),
		UserRepo:     sqlxrepos.NewUserRepository(db),
		CredRepo:     sqlxrepos.NewCredentialRepository(db),
	}
}

// newRedisClient returns nil when no redis.url is configured.
func newRedisClient(conf *core.Config, logger core.Logger) *redis.Client {
	if conf.Redis.URL == "" {
		return nil
	}
	opts, err := redis.ParseURL(conf.Redis.URL)
	if err != nil {
		logger.Fatal(fmt.Sprintf("parsing redis.url: %v", err), err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Fatal(fmt.Sprintf("connecting to redis: %v", err), err)
	}
	return client
}

func newSessionStore(client *redis.Client) identitysvc.SessionStore {
	if client == nil {
		return identitysvc.NewMemorySessionStore()
	}
	return identitysvc.NewRedisSessionStore(client)
}

func newLimiter(conf *core.Config, client *redis.Client) ratelimit.Limiter {
	limit, window := conf.Server.SubmitRateLimit, conf.Server.SubmitRateWindow
	if client == nil {
		return ratelimit.NewMemoryLimiter(limit, window)
	}
	return ratelimit.NewRedisLimiter(client, limit, window, rateLimitPrefix)
}

func newMetrics(collector *metricsvc.Collector) core.Metrics {
	return collector
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newValidator() (*validator.Validate, *ut.UniversalTranslator) {
	validate := validator.New()
	uni := core.NewUniversalTranslator()
	core.InitValidators(validate, uni)
	application.InitValidators(validate, uni)
	user.InitValidators(validate, uni)
	return validate, uni
}

func newServer(p ServerParam) *echoapi.Server {
	deps := echoapi.ServerDeps{
		Conf:        p.Conf,
		Logger:      p.Logger,
		AppSvc:      p.AppSvc,
		SettingsSvc: p.SettingsSvc,
		AuthSvc:     p.AuthSvc,
		Limiter:     p.Limiter,
		Metrics:     p.Metrics,
		Validate:    p.Validate,
		Uni:         p.Uni,
	}
	if p.DB != nil {
		deps.DB = p.DB
	}
	return echoapi.NewServer(deps)
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newZapLogger))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStorage))
	must(c.Provide(newRedisClient))
	must(c.Provide(newSessionStore))
	must(c.Provide(newLimiter))
	must(c.Provide(metricsvc.NewCollector))
	must(c.Provide(newMetrics))
	must(c.Provide(newEmailService))
	must(c.Provide(newValidator))
	must(c.Provide(identitysvc.NewLocalProvider, dig.As(new(user.IdentityProvider))))
	must(c.Provide(application.NewService))
	must(c.Provide(settings.NewService))
	must(c.Provide(user.NewAuthService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
