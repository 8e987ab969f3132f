package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"courtside/internal/config"

	_ "github.com/mattn/go-sqlite3"
)

// Version holds the build-time version string.
var Version = "unknown" // nolint:gochecknoglobals

func main() {
	configPath := flag.String("config", "", "path to the JSON configuration, defaults to the user config dir")
	flag.Parse()

	if flag.Arg(0) == "version" {
		fmt.Fprintf(os.Stdout, "Courtside %s\n", Version)
		return
	}
	if flag.Arg(0) == "help" {
		fmt.Fprint(os.Stdout, help())
		return
	}

	conf, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	switch flag.Arg(0) {
	case "serve":
		err = serve(conf)
	case "migrate":
		err = migrateDatabase(conf)
	case "dev:fixtures":
		err = loadFixtures(conf)
	default:
		fmt.Fprint(os.Stderr, help())
		os.Exit(1)
	}

	if err != nil {
		log.Fatalf("error: %s", err)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.NewFromPath(path)
	}

	return config.NewFromUserConfigDir()
}

func help() string {
	return fmt.Sprintf(`
Courtside rates padel club players and keeps track of their matches.

Usage: %[1]s [-config PATH] COMMAND

COMMANDS
    dev:fixtures create default data for quick testing during development
    help         display this help
    migrate      apply the pending database migrations
    serve        start the Discord bot and the HTTP API
    version      display the current version
`,
		os.Args[0],
	)
}
