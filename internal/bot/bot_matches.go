package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"courtside/internal/back"
	"courtside/internal/elo"
	"courtside/internal/util"

	"github.com/bwmarrin/discordgo"
)

var mentionRegexp = regexp.MustCompile(`^<@!?(\d+)>$`) // nolint:gochecknoglobals

// parseMention returns the Discord user ID of a `<@ID>` mention.
func parseMention(str string) (string, error) {
	matches := mentionRegexp.FindStringSubmatch(str)
	if matches == nil {
		return "", util.ErrPublic(fmt.Sprintf("expected a @mention, got `%s`", str))
	}

	return matches[1], nil
}

// parseOutcome reads the result of the author team.
func parseOutcome(str string) (elo.Side, error) {
	switch strings.ToLower(str) {
	case "won", "win", "w":
		return elo.SideTeam1, nil
	case "lost", "loss", "l":
		return elo.SideTeam2, nil
	default:
		return 0, util.ErrPublic(fmt.Sprintf("expected `won` or `lost`, got `%s`", str))
	}
}

// resolveLineup maps the author and the three mentions (partner then
// opponents) to players, the author is always in team 1.
func (bot *Bot) resolveLineup(
	ctx context.Context,
	authorID string,
	mentions []string,
) (team1, team2 [2]util.UUIDAsBlob, _ error) {
	if len(mentions) != 3 {
		return team1, team2, util.ErrPublic("mention your partner and your two opponents")
	}

	discordIDs := []string{authorID}
	for _, v := range mentions {
		id, err := parseMention(v)
		if err != nil {
			return team1, team2, err
		}
		discordIDs = append(discordIDs, id)
	}

	var ids [4]util.UUIDAsBlob
	for k, v := range discordIDs {
		player, err := bot.back.GetPlayerByDiscordID(ctx, v)
		if k > 0 && errors.Is(err, back.ErrNotFound) {
			return team1, team2, fmt.Errorf("%w: <@%s> is not a club member", back.ErrNotFound, v)
		}
		if err != nil {
			return team1, team2, err
		}
		ids[k] = player.ID
	}

	return [2]util.UUIDAsBlob{ids[0], ids[1]}, [2]util.UUIDAsBlob{ids[2], ids[3]}, nil
}

func (bot *Bot) cmdReport(ctx context.Context, m *discordgo.Message, args []string, out io.Writer) error {
	if len(args) < 5 {
		return util.ErrPublic("expected: !report won|lost SCORE @partner @opponent @opponent")
	}

	winner, err := parseOutcome(args[0])
	if err != nil {
		return err
	}

	mentions := args[len(args)-3:]
	score := strings.Join(args[1:len(args)-3], " ")

	team1, team2, err := bot.resolveLineup(ctx, m.Author.ID, mentions)
	if err != nil {
		return err
	}

	match, err := bot.back.SubmitResult(ctx, back.SubmitRequest{
		Score:       score,
		Winner:      winner,
		SubmittedBy: team1[0],
		Team1:       team1,
		Team2:       team2,
		Tags:        []string{"discord"},
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(
		out,
		"Your result **%s** vs **%s** (%s) has been recorded as `%s`.\n"+
			"It will count once another player confirms it.",
		match.Team1Label, match.Team2Label, match.Score, match.ID,
	)
	return nil
}

func (bot *Bot) cmdConfirm(ctx context.Context, m *discordgo.Message, args []string, out io.Writer) error {
	if len(args) != 1 {
		return util.ErrPublic("expected: !confirm MATCHID")
	}

	matchID, err := util.ParseUUIDAsBlob(args[0])
	if err != nil {
		return err
	}

	player, err := bot.back.GetPlayerByDiscordID(ctx, m.Author.ID)
	if err != nil {
		return err
	}

	match, err := bot.back.ConfirmResult(ctx, matchID, player.ID)
	if err != nil {
		return err
	}

	fmt.Fprintf(
		out,
		"Thanks, **%s** vs **%s** is confirmed, %d points were exchanged.",
		match.Team1Label, match.Team2Label, abs(match.EloChange),
	)
	return nil
}

func (bot *Bot) cmdDispute(ctx context.Context, m *discordgo.Message, args []string, out io.Writer) error {
	if len(args) < 2 {
		return util.ErrPublic("expected: !dispute MATCHID REASON")
	}

	matchID, err := util.ParseUUIDAsBlob(args[0])
	if err != nil {
		return err
	}

	player, err := bot.back.GetPlayerByDiscordID(ctx, m.Author.ID)
	if err != nil {
		return err
	}

	match, err := bot.back.DisputeResult(ctx, matchID, player.ID, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}

	fmt.Fprintf(
		out,
		"The result of **%s** vs **%s** is now disputed, a referee will get in touch.",
		match.Team1Label, match.Team2Label,
	)
	return nil
}

func (bot *Bot) cmdPending(ctx context.Context, m *discordgo.Message, _ []string, out io.Writer) error {
	player, err := bot.back.GetPlayerByDiscordID(ctx, m.Author.ID)
	if err != nil {
		return err
	}

	matches, err := bot.back.GetPendingMatchesForPlayer(ctx, player.ID)
	if err != nil {
		return err
	}

	if len(matches) == 0 {
		fmt.Fprint(out, "Nothing is waiting for your confirmation.")
		return nil
	}

	fmt.Fprint(out, "Results waiting for your confirmation:\n")
	for _, v := range matches {
		fmt.Fprintf(
			out, "- `%s` %s: **%s** vs **%s**, %s\n",
			v.ID, v.Date, v.Team1Label, v.Team2Label, v.Score,
		)
	}
	fmt.Fprint(out, "Use `!confirm MATCHID` or `!dispute MATCHID REASON`.")

	return nil
}

func (bot *Bot) cmdPreview(ctx context.Context, m *discordgo.Message, args []string, out io.Writer) error {
	if len(args) != 4 {
		return util.ErrPublic("expected: !preview won|lost @partner @opponent @opponent")
	}

	winner, err := parseOutcome(args[0])
	if err != nil {
		return err
	}

	team1, team2, err := bot.resolveLineup(ctx, m.Author.ID, args[1:])
	if err != nil {
		return err
	}

	res, err := bot.back.PreviewMatch(ctx, team1, team2, winner)
	if err != nil {
		return err
	}

	fmt.Fprintf(
		out,
		"Your team would get %s points, your opponents %s.",
		util.SignedPoints(res.Delta), util.SignedPoints(-res.Delta),
	)
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}

	return v
}
