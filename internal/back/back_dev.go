package back

import (
	"context"
	"courtside/internal/elo"
	"courtside/internal/util"
	"fmt"

	"github.com/jmoiron/sqlx"
	"gopkg.in/guregu/null.v4"
)

// SendDevNotification sends a dummy notification to a Discord user, used to
// check the bot wiring.
func (b *Back) SendDevNotification(discordID string, typ NotificationType) error {
	var out outbox
	n := out.toPlayer(Player{DiscordID: null.StringFrom(discordID)}, typ)
	if _, err := n.Printf("This is a test %s notification.\n", NotificationTypeName(typ)); err != nil {
		return err
	}

	b.publish(out)
	return nil
}

// LoadFixtures fills an empty database with a few club members and matches.
func (b *Back) LoadFixtures(ctx context.Context) error {
	players := []Player{
		NewPlayer(util.UUIDAsBlob{}, "Rafa", SkillTierPro),
		NewPlayer(util.UUIDAsBlob{}, "Carlos", SkillTierAdvanced),
		NewPlayer(util.UUIDAsBlob{}, "Lucia", SkillTierAdvanced),
		NewPlayer(util.UUIDAsBlob{}, "Marta", SkillTierIntermediate),
		NewPlayer(util.UUIDAsBlob{}, "Jorge", SkillTierIntermediate),
		NewPlayer(util.UUIDAsBlob{}, "Ana", SkillTierBeginner),
	}

	if err := b.transaction(ctx, func(tx *sqlx.Tx) error {
		for k := range players {
			if err := players[k].insert(tx); err != nil {
				return fmt.Errorf("unable to insert player %s: %w", players[k].Name, err)
			}
		}

		return nil
	}); err != nil {
		return err
	}

	matches := []struct {
		team1, team2 [2]int
		score        string
		winner       elo.Side
		dispute      bool
	}{
		{[2]int{0, 5}, [2]int{1, 2}, "6-4 3-6 7-5", elo.SideTeam1, false},
		{[2]int{3, 4}, [2]int{1, 5}, "6-2 6-3", elo.SideTeam1, false},
		{[2]int{2, 3}, [2]int{0, 4}, "7-6 6-4", elo.SideTeam1, false},
		{[2]int{0, 1}, [2]int{2, 3}, "6-0 6-1", elo.SideTeam2, true},
		{[2]int{4, 5}, [2]int{2, 1}, "4-6 2-6", elo.SideTeam2, false},
	}

	for k, v := range matches {
		match, err := b.SubmitResult(ctx, SubmitRequest{
			Score:       v.score,
			Winner:      v.winner,
			SubmittedBy: players[v.team1[0]].ID,
			Team1:       [2]util.UUIDAsBlob{players[v.team1[0]].ID, players[v.team1[1]].ID},
			Team2:       [2]util.UUIDAsBlob{players[v.team2[0]].ID, players[v.team2[1]].ID},
			Tags:        []string{"fixture"},
		})
		if err != nil {
			return fmt.Errorf("unable to submit match #%d: %w", k, err)
		}

		// Leave the last one pending.
		if k == len(matches)-1 {
			break
		}

		opponent := players[v.team2[0]].ID
		if v.dispute {
			_, err = b.DisputeResult(ctx, match.ID, opponent, "we never played that day")
		} else {
			_, err = b.ConfirmResult(ctx, match.ID, opponent)
		}
		if err != nil {
			return fmt.Errorf("unable to resolve match #%d: %w", k, err)
		}
	}

	return nil
}
