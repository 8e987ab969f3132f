package bot

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"courtside/internal/back"
	"courtside/internal/util"

	"github.com/bwmarrin/discordgo"
)

const historyDisplayLength = 10

func argsAsName(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func (bot *Bot) cmdRename(ctx context.Context, m *discordgo.Message, args []string, out io.Writer) error {
	if len(args) < 1 {
		return util.ErrPublic("your forgot to tell me your desired name")
	}

	player, err := bot.back.GetPlayerByDiscordID(ctx, m.Author.ID)
	if err != nil {
		return err
	}

	name := argsAsName(args)
	if err := bot.back.RenamePlayer(ctx, player.ID, name); err != nil {
		return err
	}

	fmt.Fprintf(out, "You'll be henceforth known as `%s` on the leaderboard.", name)
	return nil
}

func (bot *Bot) cmdRegister(ctx context.Context, m *discordgo.Message, args []string, out io.Writer) error {
	if len(args) < 1 {
		return util.ErrPublic("tell me your level: beginner, intermediate, advanced, or pro")
	}

	tier, err := back.ParseSkillTier(args[0])
	if err != nil {
		return err
	}

	name := argsAsName(args[1:])
	if name == "" {
		name = m.Author.Username
	}

	player, err := bot.back.RegisterDiscordPlayer(ctx, m.Author.ID, name, tier)
	if err != nil {
		return err
	}

	fmt.Fprintf(
		out,
		"Welcome to the club! You have been registered as `%s` and start with a rating of %s.",
		player.Name, util.Rating(player.Rating),
	)
	return nil
}

func (bot *Bot) cmdRating(ctx context.Context, m *discordgo.Message, args []string, out io.Writer) error {
	var (
		player back.Player
		err    error
	)
	if name := argsAsName(args); name != "" {
		player, err = bot.back.GetPlayerByName(ctx, name)
	} else {
		player, err = bot.back.GetPlayerByDiscordID(ctx, m.Author.ID)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(
		out,
		"**%s** (%s): rating %s, %d win(s) in %d match(es).",
		player.Name, player.Tier,
		util.Rating(player.Rating),
		player.Wins, player.MatchesPlayed,
	)
	return nil
}

func (bot *Bot) cmdHistory(ctx context.Context, m *discordgo.Message, _ []string, out io.Writer) error {
	player, err := bot.back.GetPlayerByDiscordID(ctx, m.Author.ID)
	if err != nil {
		return err
	}

	history, err := bot.back.GetRatingHistory(ctx, player.ID)
	if err != nil {
		return err
	}

	if len(history) == 0 {
		fmt.Fprintf(out, "You have no confirmed match yet, your rating is %s.", util.Rating(player.Rating))
		return nil
	}

	if len(history) > historyDisplayLength {
		fmt.Fprintf(out, "Your last %d rating changes:\n", historyDisplayLength)
		history = history[len(history)-historyDisplayLength:]
	} else {
		fmt.Fprint(out, "Your rating changes:\n")
	}

	fmt.Fprint(out, "```\n")
	table := tabwriter.NewWriter(out, 0, 0, 1, ' ', 0)
	for _, v := range history {
		fmt.Fprintf(
			table, "%s\t%s\t→ %s\t(%s)\n",
			util.Datetime(v.CreatedAt),
			util.Rating(v.OldRating), util.Rating(v.NewRating),
			util.SignedPoints(int(v.Delta())),
		)
	}
	table.Flush()
	fmt.Fprint(out, "```")

	return nil
}

func (bot *Bot) cmdLeaderboard(ctx context.Context, _ *discordgo.Message, _ []string, out io.Writer) error {
	players, err := bot.back.GetLeaderboard(ctx, 20)
	if err != nil {
		return err
	}

	if len(players) == 0 {
		fmt.Fprint(out, "Nobody joined the club yet.")
		return nil
	}

	fmt.Fprint(out, "```\n")
	table := tabwriter.NewWriter(out, 0, 0, 1, ' ', 0)
	fmt.Fprintln(table, "#\tname\trating\twins\tplayed")
	for k, v := range players {
		fmt.Fprintf(table, "%d\t%s\t%s\t%d\t%d\n", k+1, v.Name, util.Rating(v.Rating), v.Wins, v.MatchesPlayed)
	}
	table.Flush()
	fmt.Fprint(out, "```")

	return nil
}

func (bot *Bot) cmdStats(ctx context.Context, _ *discordgo.Message, _ []string, out io.Writer) error {
	misc, err := bot.back.GetMiscStats(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(
		out,
		"%d player(s), %d of them played at least one match.\n"+
			"%d confirmed match(es), %d pending, %d disputed, %d rating points exchanged.\n"+
			"Average rating %s, best rating %s.",
		misc.Players, misc.ActivePlayers,
		misc.MatchesCompleted, misc.MatchesPending, misc.MatchesDisputed, misc.PointsExchanged,
		util.Rating(misc.AverageRating), util.Rating(misc.HighestRating),
	)
	if misc.FirstMatch.Valid {
		fmt.Fprintf(out, "\nFirst confirmed match on %s.", util.Datetime(misc.FirstMatch.Time))
	}

	return nil
}
