package back

import (
	"context"
	"courtside/internal/config"
	"courtside/internal/util"
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3" // migrate driver
	_ "github.com/golang-migrate/migrate/v4/source/file"      // migrate source
	"github.com/jmoiron/sqlx"
)

// notificationsBufferSize is the number of notifications that can wait for
// the bot before new ones get dropped.
const notificationsBufferSize = 256

type Back struct {
	db     *sqlx.DB
	config *config.Config

	notifications chan Notification
}

func New(sqlDriver string, sqlDSN string, conf *config.Config) (*Back, error) {
	// Why even bother converting names? A single greppable string across all
	// your source code is better than any odd conversion scheme you could ever
	// come up with.
	// HACK: This is global but putting this in init() makes test ugly.
	// As only the Back relies on the DB, this seems like an okay-ish place.
	sqlx.NameMapper = func(v string) string { return v }

	db, err := sqlx.Connect(sqlDriver, sqlDSN)
	if err != nil {
		return nil, err
	}

	// SQLite has a single writer, a single connection serializes every
	// transaction instead of failing with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if conf == nil {
		conf = &config.Config{}
	}

	return &Back{
		db:            db,
		config:        conf,
		notifications: make(chan Notification, notificationsBufferSize),
	}, nil
}

// Close closes the database. The notifications channel stays open as
// operations still in flight may publish to it.
func (b *Back) Close() error {
	return b.db.Close()
}

// GetNotificationsChan returns the channel where notifications for players
// are published once the operation that produced them has been committed.
func (b *Back) GetNotificationsChan() <-chan Notification {
	return b.notifications
}

func (b *Back) transaction(ctx context.Context, cb util.TransactionCallback) error {
	return util.Transaction(ctx, b.db, cb)
}

// Migrate applies every pending migration found at sourceURL (eg.
// file://resources/migrations) to the SQLite database at dbPath.
func Migrate(sourceURL, dbPath string) error {
	migrator, err := migrate.New(sourceURL, "sqlite3://"+dbPath)
	if err != nil {
		return fmt.Errorf("unable to create migrator: %w", err)
	}
	defer func() {
		if srcErr, dbErr := migrator.Close(); srcErr != nil || dbErr != nil {
			log.Printf("warning: unable to close migrator: %v", util.ConcatErrors([]error{srcErr, dbErr}))
		}
	}()

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}
	log.Printf("info: database schema at version %d (dirty: %t)", version, dirty)

	return nil
}
