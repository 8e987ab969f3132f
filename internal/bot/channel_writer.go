package bot

import (
	"bytes"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"courtside/internal/back"

	"github.com/bwmarrin/discordgo"
)

// discordMessageLimit is the maximum number of characters in a message.
const discordMessageLimit = 2000

const codeFence = "```"

// messageSender is the part of the Discord session a channelWriter needs.
type messageSender interface {
	ChannelMessageSendComplex(
		channelID string,
		data *discordgo.MessageSend,
		options ...discordgo.RequestOption,
	) (*discordgo.Message, error)
}

// channelWriter buffers a reply and sends it to a channel (or DM) on Flush,
// split in as many messages as Discord requires. Attached files go with the
// last message. A nil *channelWriter discards everything.
type channelWriter struct {
	sender    messageSender
	channelID string
	label     string

	content bytes.Buffer
	files   []*discordgo.File
}

func newUserChannelWriter(dg *discordgo.Session, userID string) (*channelWriter, error) {
	if userID == "" {
		log.Print("warning: not writing to an empty Discord user ID")
		return nil, nil
	}

	channel, err := dg.UserChannelCreate(userID)
	if err != nil {
		return nil, fmt.Errorf("unable to open DM with %s: %w", userID, err)
	}

	w := newChannelWriter(dg, channel.ID)
	w.label = fmt.Sprintf("DM %s (chan %s)", userID, channel.ID)

	return w, nil
}

func newChannelWriter(sender messageSender, channelID string) *channelWriter {
	if channelID == "" {
		log.Print("warning: not writing to an empty Discord channel ID")
		return nil
	}

	return &channelWriter{
		sender:    sender,
		channelID: channelID,
		label:     "chan " + channelID,
	}
}

func (w *channelWriter) Write(p []byte) (int, error) {
	if w == nil {
		return len(p), nil
	}

	return w.content.Write(p)
}

func (w *channelWriter) attach(file back.NotificationFile) {
	if w == nil {
		return
	}

	w.files = append(w.files, &discordgo.File{
		Name:        file.Name,
		ContentType: file.ContentType,
		Reader:      file.Reader,
	})
}

// Reset drops the pending reply and its files.
func (w *channelWriter) Reset() {
	if w == nil {
		return
	}

	w.content.Reset()
	w.files = nil
}

func (w *channelWriter) Flush() error {
	if w == nil || w.content.Len() == 0 {
		return nil
	}
	defer w.Reset()

	content := w.content.String()
	chunks := splitMessage(content, discordMessageLimit)
	for k, v := range chunks {
		msg := &discordgo.MessageSend{Content: v}
		if k == len(chunks)-1 {
			msg.Files = w.files
		}

		if _, err := w.sender.ChannelMessageSendComplex(w.channelID, msg); err != nil {
			return fmt.Errorf("unable to send message %d/%d to %s: %w", k+1, len(chunks), w.label, err)
		}
	}

	log.Printf("info: %s: %s", w.label, content)
	return nil
}

// splitMessage cuts content in messages of at most limit characters, on line
// boundaries when possible. A code block spanning two messages is closed at
// the end of the first one and reopened in the next.
func splitMessage(content string, limit int) []string {
	if utf8.RuneCountInString(content) <= limit {
		return []string{content}
	}

	// Room kept for closing then reopening a code block.
	reserve := len(codeFence) + 1
	budget := limit - reserve

	var (
		ret    []string
		lines  []string
		length int
		inCode bool
	)

	emit := func() {
		str := strings.Join(lines, "\n")
		if inCode {
			str += "\n" + codeFence
		}
		ret = append(ret, str)

		lines, length = nil, 0
		if inCode {
			lines, length = []string{codeFence}, len(codeFence)
		}
	}

	for _, line := range strings.Split(content, "\n") {
		for _, piece := range cutRunes(line, budget-reserve) {
			n := utf8.RuneCountInString(piece)
			if len(lines) > 0 && length+1+n > budget {
				emit()
			}

			if len(lines) > 0 {
				length++
			}
			lines = append(lines, piece)
			length += n

			if strings.Count(piece, codeFence)%2 == 1 {
				inCode = !inCode
			}
		}
	}

	if len(lines) > 0 {
		ret = append(ret, strings.Join(lines, "\n"))
	}

	return ret
}

// cutRunes splits str in pieces of at most n characters.
func cutRunes(str string, n int) []string {
	if utf8.RuneCountInString(str) <= n {
		return []string{str}
	}

	var ret []string
	runes := []rune(str)
	for len(runes) > n {
		ret = append(ret, string(runes[:n]))
		runes = runes[n:]
	}

	return append(ret, string(runes))
}
