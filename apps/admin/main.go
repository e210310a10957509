package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/risingacademy/backend/core"
	"github.com/risingacademy/backend/core/application"
	"github.com/risingacademy/backend/core/user"
	identitysvc "github.com/risingacademy/backend/services/identity"
	logsvc "github.com/risingacademy/backend/services/logger"
	"github.com/risingacademy/backend/storage/database"
	sqlxrepos "github.com/risingacademy/backend/storage/database/sqlx"
)

var logger core.Logger

func main() {
	conf := core.NewConfig()

	std, err := logsvc.NewZapLogger(conf.LogLevel, conf.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "building logger: %v\n", err)
		os.Exit(1)
	}
	rbLogger := logsvc.NewRollbarLogger(std, conf).Named("ADMIN")
	rbLogger.Enable(!conf.Debug)
	defer func() { _ = rbLogger.Sync() }()
	logger = rbLogger

	if conf.Database.InMemory() {
		logger.Fatal("admin commands need a persistent database; set database.engine to postgres")
	}

	// set up DB
	ctx := context.Background()
	db, err := database.Open(ctx, conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(database.Ping(ctx, db))

	validate := validator.New()
	uni := core.NewUniversalTranslator()
	core.InitValidators(validate, uni)
	application.InitValidators(validate, uni)
	user.InitValidators(validate, uni)

	idp := identitysvc.NewLocalProvider(sqlxrepos.NewCredentialRepository(db), identitysvc.NewMemorySessionStore(), logger, conf)

	// start CLI
	cli := commandLine{
		db:       db.DB,
		authSvc:  user.NewAuthService(idp, sqlxrepos.NewUserRepository(db), core.NopMetrics{}, logger, conf),
		validate: validate,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %s", err), err)
		}
		_ = rbLogger.Sync()
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
