package bot

import (
	"fmt"
	"io"
	"log"

	"courtside/internal/back"
)

func (bot *Bot) sendNotification(notif back.Notification) error {
	log.Printf("debug: sending notification %s", notif.String())

	w, err := bot.getWriterForNotification(notif)
	if err != nil {
		return err
	}
	if w == nil {
		return nil
	}

	if _, err := io.Copy(w, &notif); err != nil {
		return err
	}
	for _, v := range notif.Files {
		w.attach(v)
	}

	return w.Flush()
}

func (bot *Bot) getWriterForNotification(notif back.Notification) (*channelWriter, error) {
	switch notif.RecipientType {
	case back.NotificationRecipientTypeDiscordUser:
		return newUserChannelWriter(bot.dg, notif.Recipient)
	case back.NotificationRecipientTypeDiscordChannel:
		return newChannelWriter(bot.dg, notif.Recipient), nil
	default:
		return nil, fmt.Errorf("cannot handle recipient type: %d", notif.RecipientType)
	}
}
