package main

import (
	"context"

	"courtside/internal/back"
	"courtside/internal/config"
)

func loadFixtures(conf *config.Config) error {
	if err := migrateDatabase(conf); err != nil {
		return err
	}

	b, err := back.New("sqlite3", conf.DatabasePath, conf)
	if err != nil {
		return err
	}
	defer b.Close()

	return b.LoadFixtures(context.Background())
}
