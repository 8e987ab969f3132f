package main

import (
	"courtside/internal/back"
	"courtside/internal/config"
)

func migrateDatabase(conf *config.Config) error {
	return back.Migrate(conf.MigrationsURL, conf.DatabasePath)
}
