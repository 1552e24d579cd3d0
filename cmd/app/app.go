package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eventreg/regclient/internal/api"
	"github.com/eventreg/regclient/internal/backend"
	"github.com/eventreg/regclient/internal/config"
	"github.com/eventreg/regclient/internal/db"
	"github.com/eventreg/regclient/internal/logger"
	"github.com/eventreg/regclient/internal/repository"
	"github.com/eventreg/regclient/internal/repository/dao"
)

func Start() error {
	conf, err := config.Load("./cmd/app/config.yml")
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}

	sqliteDB, err := db.OpenSQLite(conf.SQLite)
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	if conf.API.SeedDemoData {
		users := backend.NewUserService(repository.NewUserRepository(dao.NewUserDAO(sqliteDB)))
		events := backend.NewEventService(
			repository.NewEventRepository(dao.NewEventDAO(sqliteDB)),
			repository.NewRegistrationRepository(dao.NewRegistrationDAO(sqliteDB)),
		)
		if err = backend.Seed(context.Background(), users, events, time.Now()); err != nil {
			return fmt.Errorf("failed to seed demo data -> %w", err)
		}
	}

	s := api.NewServer(conf, sqliteDB)

	addr := ":" + s.Config.API.Port
	zap.L().Info(fmt.Sprintf("starting server at %v", addr))
	if err = s.Router.Run(addr); err != nil {
		return fmt.Errorf("failed to start the server -> %w", err)
	}

	return nil
}
