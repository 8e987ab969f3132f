package bot

import (
	"context"
	"fmt"
	"io"
	"log"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"courtside/internal/back"
	"courtside/internal/config"
	"courtside/internal/util"

	"github.com/bwmarrin/discordgo"
)

// commandTimeout bounds the time spent processing a single command.
const commandTimeout = 10 * time.Second

type commandHandler func(ctx context.Context, m *discordgo.Message, args []string, w io.Writer) error

type Bot struct {
	back   *back.Back
	config *config.Config

	startedAt time.Time
	dg        *discordgo.Session
	limiter   *userLimiter

	handlers map[string]commandHandler
}

func New(back *back.Back, conf *config.Config) (*Bot, error) {
	dg, err := discordgo.New("Bot " + conf.DiscordToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	bot := &Bot{
		back:      back,
		config:    conf,
		dg:        dg,
		startedAt: time.Now(),
		limiter:   newUserLimiter(),
	}

	dg.AddHandler(bot.handleMessage)

	bot.handlers = map[string]commandHandler{
		"!dev":         bot.cmdDev,
		"!help":        bot.cmdHelp,
		"!leaderboard": bot.cmdLeaderboard,
		"!register":    bot.cmdRegister,
		"!rename":      bot.cmdRename,
		"!rating":      bot.cmdRating,
		"!history":     bot.cmdHistory,
		"!stats":       bot.cmdStats,

		"!confirm": bot.cmdConfirm,
		"!dispute": bot.cmdDispute,
		"!pending": bot.cmdPending,
		"!preview": bot.cmdPreview,
		"!report":  bot.cmdReport,
	}

	return bot, nil
}

// Serve connects to Discord and forwards the notifications of the Back to
// their recipients until done is closed.
func (bot *Bot) Serve(wg *sync.WaitGroup, done <-chan struct{}) {
	log.Println("info: starting Discord bot")
	defer wg.Done()
	if err := bot.dg.Open(); err != nil {
		log.Panic(err)
	}

	notifications := bot.back.GetNotificationsChan()
loop:
	for {
		select {
		case notif, ok := <-notifications:
			if !ok {
				break loop
			}
			if err := bot.sendNotification(notif); err != nil {
				log.Printf("error: unable to send notification: %s", err)
			}
		case <-done:
			break loop
		}
	}

	if err := bot.dg.Close(); err != nil {
		log.Printf("error: could not close Discord bot: %s", err)
	}
}

func (bot *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Ignore webooks, self, bots, non-commands.
	if m.Author == nil || m.Author.ID == s.State.User.ID ||
		m.Author.Bot || !strings.HasPrefix(m.Content, "!") {
		return
	}

	// Commands are accepted in DMs and in listened channels only.
	if m.GuildID != "" && !bot.config.IsDiscordChannelListened(m.ChannelID) {
		return
	}

	log.Printf(
		"info: <%s(%s)@%s#%s> %s",
		m.Author.String(), m.Author.ID,
		m.GuildID, m.ChannelID,
		m.Content,
	)

	if bot.config.IsDiscordIDBanned(m.Author.ID) {
		log.Printf("info: ignoring banned user %s", m.Author.ID)
		return
	}

	out, err := newUserChannelWriter(s, m.Author.ID)
	if err != nil {
		log.Printf("error: could not create channel writer: %s", err)
	}
	defer func() {
		if err := out.Flush(); err != nil {
			log.Printf("error: could not send message: %s", err)
		}
	}()

	defer func() {
		r := recover()
		if r != nil {
			out.Reset()
			fmt.Fprintf(out, "Someting went very wrong, please tell %s.", bot.adminMention())
			log.Print("panic: ", r)
			log.Print(string(debug.Stack()))
		}
	}()

	if !bot.limiter.allow(m.Author.ID) {
		fmt.Fprint(out, "You are sending commands too fast, wait a few seconds and try again.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := bot.dispatch(ctx, m.Message, out); err != nil {
		out.Reset()
		fmt.Fprintln(out, "There was an error processing your command.")

		if util.IsPublic(err) {
			fmt.Fprintf(out, "```%s\n```\nIf you need help, send `!help`.", err)
		} else {
			fmt.Fprintf(out, "%s will check the logs when they have time.", bot.adminMention())
		}

		log.Printf("error: failed to process command: %s", err)
	}

	if err := bot.maybeCleanupMessage(s, m.ChannelID, m.Message.ID); err != nil {
		log.Printf("error: unable to cleanup message: %s", err)
	}
}

func (bot *Bot) adminMention() string {
	if len(bot.config.DiscordAdminUserIDs) == 0 {
		return "an admin"
	}

	return "<@" + bot.config.DiscordAdminUserIDs[0] + ">"
}

// maybeCleanupMessage deletes commands sent in a public channel, the answer
// is sent privately anyway.
func (bot *Bot) maybeCleanupMessage(s *discordgo.Session, channelID string, messageID string) error {
	channel, err := s.Channel(channelID)
	if err != nil {
		return err
	}

	if channel.Type != discordgo.ChannelTypeGuildText {
		return nil
	}

	if err := s.ChannelMessageDelete(channelID, messageID); err != nil {
		log.Printf("error: unable to delete message: %s", err)
	}

	return nil
}

func parseCommand(cmd string) (string, []string) {
	parts := strings.Fields(cmd)

	switch len(parts) {
	case 0:
		return "", nil
	case 1:
		return parts[0], nil
	default:
		return parts[0], parts[1:]
	}
}

func (bot *Bot) dispatch(ctx context.Context, m *discordgo.Message, w io.Writer) error {
	command, args := parseCommand(m.Content)
	handler, ok := bot.handlers[command]
	if !ok {
		return util.ErrPublic(fmt.Sprintf("invalid command: %v", m.Content))
	}

	return handler(ctx, m, args, w)
}

func (bot *Bot) cmdHelp(_ context.Context, m *discordgo.Message, _ []string, w io.Writer) error {
	fmt.Fprint(w, strings.ReplaceAll(`Available commands:
'''
# Profile
!help                      # display this help message
!register LEVEL NAME       # join the club, LEVEL is beginner, intermediate, advanced, or pro
!rename NAME               # set your display name to NAME
!rating [NAME]             # display your rating, or someone else's
!history                   # display your rating changes and chart
!leaderboard               # display the best rated players
!stats                     # display club statistics

# Matches
!report won|lost SCORE @partner @opponent @opponent
                           # report a match you played, the others have to confirm it
!pending                   # list the results waiting for your confirmation
!confirm MATCHID           # confirm a result reported by another player
!dispute MATCHID REASON    # dispute a result, a referee will look into it
!preview won|lost @partner @opponent @opponent
                           # display what a result would do to your ratings
'''`, "'''", "```"))

	if !bot.config.IsDiscordIDAdmin(m.Author.ID) {
		return nil
	}

	fmt.Fprint(w, strings.ReplaceAll(`Admin-only commands:
'''
!dev error           error out
!dev panic           panic and abort
!dev uptime          display for how long the server has been running
!dev url             display the link to use when adding the bot to a new server
!dev notify          send yourself a test notification
!dev token           get a one hour API token for your player
'''`, "'''", "```"))

	return nil
}
