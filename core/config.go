package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env              string // DEV (local; default), TEST, QA, PROD
		Build            string
		Debug            bool
		TestMode         bool
		AppName          string
		SecretKey        string
		FrontendBaseURL  string
		SendgridApiKey   string
		RollbarToken     string
		LogLevel         string
		defaultFromEmail string

		Server       ServerConfig
		Database     DatabaseConfig
		Redis        RedisConfig
		Auth         AuthConfig
		Applications ApplicationsConfig
	}

	ServerConfig struct {
		Host                      string
		Address                   string
		DebugHost                 string
		DisableReqLogs            bool
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		SubmitRateLimit           int
		SubmitRateWindow          time.Duration
	}

	DatabaseConfig struct {
		Engine        string // postgres | memory
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
		MaxOpenConns  int
		MaxIdleConns  int
	}

	RedisConfig struct {
		URL string // empty: in-process sessions & rate limiting
	}

	AuthConfig struct {
		DemoBootstrap bool
		DemoEmail     string
		DemoPassword  string
	}

	ApplicationsConfig struct {
		StrictTransitions bool
		NotifyApplicants  bool
	}
)

func (c *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(c.defaultFromEmail)
	if err != nil {
		return mail.Address{Name: c.AppName, Address: "noreply@localhost"}
	}
	if addr.Name == "" {
		addr.Name = c.AppName
	}
	return *addr
}

func (db DatabaseConfig) Address() string {
	return net.JoinHostPort(db.Host, db.Port)
}

func (db DatabaseConfig) InMemory() bool {
	return strings.EqualFold(db.Engine, "memory")
}

// NewConfig loads the configuration from defaults, the optional config/.env.<env> file and the environment.
// Env vars are prefixed with the environment name, e.g. PROD_DATABASE_HOST.
func NewConfig() *Config {
	conf := viper.New()

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("build", "develop")
	conf.SetDefault("debug", env == "DEV")
	conf.SetDefault("testMode", env == "TEST")
	conf.SetDefault("appName", "Rising Academy")
	conf.SetDefault("secretKey", "n7r$2kq+x0v!b5w8=hz&ma3c(e)p#t9yu^d4fg6js1l*o")
	conf.SetDefault("frontendBaseURL", "http://localhost:3000")
	conf.SetDefault("defaultFromEmail", "Rising Academy <noreply@risingacademy.com>")
	conf.SetDefault("sendgridApiKey", "")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("logLevel", "info")

	conf.SetDefault("server.host", "localhost")
	conf.SetDefault("server.address", ":8000")
	conf.SetDefault("server.debugHost", ":4000")
	conf.SetDefault("server.disableReqLogs", false)
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("server.jwtRefreshExpirationDelta", 30*24*time.Hour)
	conf.SetDefault("server.submitRateLimit", 5)
	conf.SetDefault("server.submitRateWindow", 10*time.Minute)

	conf.SetDefault("database.engine", "postgres")
	conf.SetDefault("database.host", "localhost")
	conf.SetDefault("database.port", "5432")
	conf.SetDefault("database.name", "risingacademy")
	conf.SetDefault("database.user", "risingacademy")
	conf.SetDefault("database.password", "risingacademy")
	conf.SetDefault("database.adminUser", "")
	conf.SetDefault("database.adminPassword", "")
	conf.SetDefault("database.disableTLS", env == "DEV" || env == "TEST")
	conf.SetDefault("database.maxOpenConns", 25)
	conf.SetDefault("database.maxIdleConns", 10)

	conf.SetDefault("redis.url", "")

	conf.SetDefault("auth.demoBootstrap", true)
	conf.SetDefault("auth.demoEmail", "admin@risingacademy.com")
	conf.SetDefault("auth.demoPassword", "admin123")

	conf.SetDefault("applications.strictTransitions", true)
	conf.SetDefault("applications.notifyApplicants", true)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	conf.AutomaticEnv()

	return &Config{
		Env:              env,
		Build:            conf.GetString("build"),
		Debug:            conf.GetBool("debug"),
		TestMode:         conf.GetBool("testMode"),
		AppName:          conf.GetString("appName"),
		SecretKey:        conf.GetString("secretKey"),
		FrontendBaseURL:  conf.GetString("frontendBaseURL"),
		SendgridApiKey:   conf.GetString("sendgridApiKey"),
		RollbarToken:     conf.GetString("rollbarToken"),
		LogLevel:         conf.GetString("logLevel"),
		defaultFromEmail: conf.GetString("defaultFromEmail"),
		Server: ServerConfig{
			Host:                      conf.GetString("server.host"),
			Address:                   conf.GetString("server.address"),
			DebugHost:                 conf.GetString("server.debugHost"),
			DisableReqLogs:            conf.GetBool("server.disableReqLogs"),
			ShutdownTimeout:           conf.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta:        conf.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: conf.GetDuration("server.jwtRefreshExpirationDelta"),
			SubmitRateLimit:           conf.GetInt("server.submitRateLimit"),
			SubmitRateWindow:          conf.GetDuration("server.submitRateWindow"),
		},
		Database: DatabaseConfig{
			Engine:        conf.GetString("database.engine"),
			Host:          conf.GetString("database.host"),
			Port:          conf.GetString("database.port"),
			Name:          conf.GetString("database.name"),
			User:          conf.GetString("database.user"),
			Password:      conf.GetString("database.password"),
			AdminUser:     conf.GetString("database.adminUser"),
			AdminPassword: conf.GetString("database.adminPassword"),
			DisableTLS:    conf.GetBool("database.disableTLS"),
			MaxOpenConns:  conf.GetInt("database.maxOpenConns"),
			MaxIdleConns:  conf.GetInt("database.maxIdleConns"),
		},
		Redis: RedisConfig{
			URL: conf.GetString("redis.url"),
		},
		Auth: AuthConfig{
			DemoBootstrap: conf.GetBool("auth.demoBootstrap"),
			DemoEmail:     conf.GetString("auth.demoEmail"),
			DemoPassword:  conf.GetString("auth.demoPassword"),
		},
		Applications: ApplicationsConfig{
			StrictTransitions: conf.GetBool("applications.strictTransitions"),
			NotifyApplicants:  conf.GetBool("applications.notifyApplicants"),
		},
	}
}

// NewTestConfig returns the configuration used by tests: in-memory storage, no request logs.
func NewTestConfig() *Config {
	return &Config{
		Env:              "TEST",
		Build:            "test",
		TestMode:         true,
		AppName:          "Rising Academy",
		SecretKey:        "test-secret",
		FrontendBaseURL:  "http://localhost:3000",
		LogLevel:         "error",
		defaultFromEmail: "noreply@risingacademy.test",
		Server: ServerConfig{
			DisableReqLogs:            true,
			ShutdownTimeout:           time.Second,
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 24 * time.Hour,
			SubmitRateLimit:           3,
			SubmitRateWindow:          time.Minute,
		},
		Database: DatabaseConfig{Engine: "memory"},
		Auth: AuthConfig{
			DemoBootstrap: true,
			DemoEmail:     "admin@risingacademy.com",
			DemoPassword:  "admin123",
		},
		Applications: ApplicationsConfig{
			StrictTransitions: true,
			NotifyApplicants:  true,
		},
	}
}

// Getwd tries to find the project root (the directory holding go.mod).
// go-test changes the working directory to the test package being run.
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	currDir := wd
	for {
		if _, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil {
			return currDir
		}
		newDir := filepath.Dir(currDir)
		if newDir == currDir {
			return wd
		}
		currDir = newDir
	}
}
