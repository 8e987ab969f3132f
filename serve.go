package main

import (
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"courtside/internal/back"
	"courtside/internal/bot"
	"courtside/internal/config"
	"courtside/internal/web"
)

func serve(conf *config.Config) error {
	if err := migrateDatabase(conf); err != nil {
		return err
	}

	b, err := back.New("sqlite3", conf.DatabasePath, conf)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	done := make(chan struct{})
	signaled := make(chan os.Signal, 1)
	signal.Notify(signaled, syscall.SIGINT, syscall.SIGTERM)

	server := web.NewServer(b, conf)
	wg.Add(1)
	go server.Serve(&wg, done)

	if conf.DiscordToken != "" {
		bot, err := bot.New(b, conf)
		if err != nil {
			return err
		}
		wg.Add(1)
		go bot.Serve(&wg, done)
	} else {
		log.Print("warning: no Discord token, the bot is disabled")
		go logNotifications(b.GetNotificationsChan())
	}

	sig := <-signaled
	log.Printf("info: received signal %s", sig)

	close(done)
	wg.Wait()

	if err := b.Close(); err != nil {
		return err
	}

	log.Print("info: shutdown complete")

	return nil
}

// logNotifications consumes the notifications nobody can deliver.
func logNotifications(notifications <-chan back.Notification) {
	for notif := range notifications {
		log.Printf("debug: undelivered notification %s", notif.String())
	}
}
