package bot

import (
	"context"
	"fmt"
	"io"
	"time"

	"courtside/internal/back"
	"courtside/internal/util"

	"github.com/bwmarrin/discordgo"
)

const devTokenLifetime = 1 * time.Hour

func (bot *Bot) cmdDev(ctx context.Context, m *discordgo.Message, args []string, out io.Writer) error {
	if !bot.config.IsDiscordIDAdmin(m.Author.ID) {
		return fmt.Errorf("!dev command ran by a non-admin: %v", args)
	}
	if len(args) < 1 {
		return util.ErrPublic("need a subcommand")
	}

	switch args[0] {
	case "panic":
		panic("an admin asked me to panic")
	case "uptime":
		fmt.Fprintf(out, "The bot has been online for %s", time.Since(bot.startedAt).Truncate(time.Second))
	case "error":
		return util.ErrPublic("here's your error")
	case "url":
		fmt.Fprintf(
			out,
			"https://discordapp.com/api/oauth2/authorize?client_id=%s&scope=bot&permissions=%d",
			bot.dg.State.User.ID,
			discordgo.PermissionViewChannel|discordgo.PermissionSendMessages|
				discordgo.PermissionEmbedLinks|discordgo.PermissionAttachFiles|
				discordgo.PermissionManageMessages,
		)
	case "notify":
		return bot.back.SendDevNotification(m.Author.ID, back.NotificationTypeMatchSubmitted)
	case "token":
		player, err := bot.back.GetPlayerByDiscordID(ctx, m.Author.ID)
		if err != nil {
			return err
		}

		token, err := bot.config.IssueToken(player.ID.String(), devTokenLifetime)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Your API token, valid for %s:\n```%s```", devTokenLifetime, token)
	default:
		return util.ErrPublic(fmt.Sprintf("unknown subcommand `%s`", args[0]))
	}

	return nil
}
