package back

import (
	"context"
	"os"
	"testing"

	"courtside/internal/util"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"gopkg.in/guregu/null.v4"
)

// testPlayers are inserted in every fixtured test database.
var testPlayers = []struct { // nolint:gochecknoglobals
	name string
	tier SkillTier
}{
	{"Ana", SkillTierBeginner},
	{"Bruno", SkillTierBeginner},
	{"Carla", SkillTierBeginner},
	{"Dario", SkillTierBeginner},
	{"Elena", SkillTierIntermediate},
	{"Fede", SkillTierAdvanced},
	{"Gala", SkillTierPro},
}

func createFixturedTestBack(t *testing.T) (*Back, map[string]Player) {
	f, err := os.CreateTemp("", "*.db")
	if err != nil {
		t.Fatal(err)
	}
	path := f.Name()
	f.Close()
	t.Cleanup(func() {
		os.Remove(path)
	})

	migrator, err := migrate.New(
		"file://../../resources/migrations",
		"sqlite3://"+path,
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := migrator.Up(); err != nil {
		t.Fatal(err)
	}
	migrator.Close()

	back, err := New("sqlite3", path, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		back.Close()
	})

	players := make(map[string]Player, len(testPlayers))
	if err := back.transaction(context.Background(), func(tx *sqlx.Tx) error {
		for _, v := range testPlayers {
			player := NewPlayer(util.UUIDAsBlob{}, v.name, v.tier)
			player.DiscordID = null.StringFrom("discord-" + v.name)
			if err := player.insert(tx); err != nil {
				return err
			}
			players[v.name] = player
		}

		return nil
	}); err != nil {
		t.Fatal(err)
	}

	return back, players
}

func mustGetPlayer(t *testing.T, back *Back, id util.UUIDAsBlob) Player {
	t.Helper()
	player, err := back.GetPlayerByID(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}

	return player
}

// drainNotifications empties the notification channel and returns what it
// contained.
func drainNotifications(back *Back) []Notification {
	var ret []Notification
	for {
		select {
		case v := <-back.notifications:
			ret = append(ret, v)
		default:
			return ret
		}
	}
}
