package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// DiscordListenIDs is a list of channel ID where the bot will listen and
	// accept commands. PMs are always listened to.
	DiscordListenIDs []string

	// Who is allowed to use `!dev` commands.
	DiscordAdminUserIDs []string

	// Who is not allowed to do anything.
	DiscordBannedUserIDs []string

	// Where disputed results are announced for a referee to look at.
	DiscordAnnounceChannelID string

	DiscordToken string

	// JWTSecret is the HMAC key shared with the identity provider, tokens
	// signed with it carry the player ID as their subject.
	JWTSecret string

	HTTPAddress   string
	DatabasePath  string
	MigrationsURL string

	// DevMode enables the `!dev` bot commands and verbose logs.
	DevMode bool
}

func (c *Config) setDefaults() {
	if c.HTTPAddress == "" {
		c.HTTPAddress = "127.0.0.1:3001"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "./courtside.db"
	}
	if c.MigrationsURL == "" {
		c.MigrationsURL = "file://resources/migrations"
	}
}

func NewFromUserConfigDir() (*Config, error) {
	c := &Config{}
	if err := c.ReloadFromUserConfigDir(); err != nil {
		return nil, err
	}

	return c, nil
}

// NewFromPath reads the configuration from the given JSON file, a missing
// file yields the default configuration.
func NewFromPath(path string) (*Config, error) {
	c := &Config{}
	if err := c.reload(path); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) expandFromEnv() {
	// A missing .env is the common case outside of development.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: unable to load .env: %s", err)
	}

	vars := []struct {
		src string
		dst *string
	}{
		{"COURTSIDE_DISCORD_TOKEN", &c.DiscordToken},
		{"COURTSIDE_DISCORD_ANNOUNCE_CHANNEL_ID", &c.DiscordAnnounceChannelID},
		{"COURTSIDE_JWT_SECRET", &c.JWTSecret},
		{"COURTSIDE_HTTP_ADDRESS", &c.HTTPAddress},
		{"COURTSIDE_DATABASE_PATH", &c.DatabasePath},
		{"COURTSIDE_MIGRATIONS_URL", &c.MigrationsURL},
	}

	for _, v := range vars {
		if str := os.Getenv(v.src); str != "" {
			*v.dst = str
		}
	}

	if str := os.Getenv("COURTSIDE_DEV_MODE"); str != "" {
		dev, err := strconv.ParseBool(str)
		if err != nil {
			log.Printf("warning: ignoring invalid COURTSIDE_DEV_MODE %q", str)
			return
		}
		c.DevMode = dev
	}
}

func (c *Config) ReloadFromUserConfigDir() error {
	path, err := getOrCreateUserConfigPath()
	if err != nil {
		return err
	}

	return c.reload(path)
}

func (c *Config) reload(path string) error {
	defer c.setDefaults()
	defer c.expandFromEnv()

	log.Printf("debug: reading conf from %s", path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		*c = Config{}
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	*c = Config{}
	if err := json.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("unable to decode %s: %w", path, err)
	}

	return nil
}

func (c *Config) IsDiscordIDAdmin(id string) bool {
	return contains(c.DiscordAdminUserIDs, id)
}

func (c *Config) IsDiscordIDBanned(id string) bool {
	return contains(c.DiscordBannedUserIDs, id)
}

// IsDiscordChannelListened returns true if the bot should accept commands
// from the given channel, an empty list means every channel.
func (c *Config) IsDiscordChannelListened(id string) bool {
	return len(c.DiscordListenIDs) == 0 || contains(c.DiscordListenIDs, id)
}

func contains(haystack []string, needle string) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}

	return false
}

func getOrCreateUserConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(configDir, "courtside")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}

	return filepath.Join(dir, "config.json"), nil
}

func (c *Config) Write() error {
	path, err := getOrCreateUserConfigPath()
	if err != nil {
		return err
	}

	return c.WriteToPath(path)
}

func (c *Config) WriteToPath(path string) error {
	log.Printf("debug: writing conf to %s", path)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "    ")
	if err := enc.Encode(c); err != nil {
		if err2 := f.Close(); err2 != nil {
			return fmt.Errorf("unable to close file (%s) after error: %w", err2, err)
		}

		return err
	}

	return f.Close()
}
