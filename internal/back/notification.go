package back

import (
	"bytes"
	"courtside/internal/util"
	"encoding/json"
	"fmt"
	"io"
	"log"
)

type NotificationRecipientType int

const (
	NotificationRecipientTypeDiscordChannel NotificationRecipientType = 0
	NotificationRecipientTypeDiscordUser    NotificationRecipientType = 1
)

type NotificationType int

const (
	NotificationTypeMatchSubmitted NotificationType = iota
	NotificationTypeMatchConfirmed
	NotificationTypeMatchDisputed
)

type NotificationFile struct {
	Name        string
	ContentType string
	Reader      io.Reader
}

type Notification struct {
	RecipientType NotificationRecipientType
	Recipient     string
	Type          NotificationType
	Files         []NotificationFile

	body bytes.Buffer
}

func (n *Notification) Printf(str string, args ...interface{}) (int, error) {
	return fmt.Fprintf(&n.body, str, args...)
}

func (n *Notification) Print(args ...interface{}) (int, error) {
	return fmt.Fprint(&n.body, args...)
}

func (n *Notification) Read(p []byte) (int, error) {
	return n.body.Read(p)
}

func NotificationTypeName(typ NotificationType) string {
	switch typ {
	case NotificationTypeMatchSubmitted:
		return "MatchSubmitted"
	case NotificationTypeMatchConfirmed:
		return "MatchConfirmed"
	case NotificationTypeMatchDisputed:
		return "MatchDisputed"
	default:
		return "invalid"
	}
}

func NotificationRecipientTypeName(typ NotificationRecipientType) string {
	switch typ {
	case NotificationRecipientTypeDiscordChannel:
		return "DiscordChannel"
	case NotificationRecipientTypeDiscordUser:
		return "DiscordUser"
	default:
		return "invalid"
	}
}

// For debugging purposes only.
func (n *Notification) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(
		&buf,
		"type %s, recipient type %s \"%s\"",
		NotificationTypeName(n.Type),
		NotificationRecipientTypeName(n.RecipientType),
		n.Recipient,
	)

	if len := len(n.Files); len > 0 {
		fmt.Fprintf(&buf, ", %d file(s)", len)
	}

	// HACK: Ensure its on one line (and safe to print)
	content, _ := json.Marshal(n.body.String())
	fmt.Fprintf(&buf, ", contents: %s", string(content))

	return buf.String()
}

// outbox collects the notifications produced inside a transaction, they are
// only published once it has been committed.
type outbox []*Notification

func (o *outbox) toPlayer(player Player, typ NotificationType) *Notification {
	if !player.DiscordID.Valid {
		return &Notification{}
	}

	n := &Notification{
		RecipientType: NotificationRecipientTypeDiscordUser,
		Recipient:     player.DiscordID.String,
		Type:          typ,
	}
	*o = append(*o, n)

	return n
}

func (o *outbox) toChannel(channelID string, typ NotificationType) *Notification {
	if channelID == "" {
		return &Notification{}
	}

	n := &Notification{
		RecipientType: NotificationRecipientTypeDiscordChannel,
		Recipient:     channelID,
		Type:          typ,
	}
	*o = append(*o, n)

	return n
}

func (b *Back) publish(o outbox) {
	for _, v := range o {
		select {
		case b.notifications <- *v:
		default:
			log.Printf("warning: notification buffer full, dropping %s", v.String())
		}
	}
}

func (o *outbox) matchSubmitted(match Match, players map[util.UUIDAsBlob]Player) {
	submitter := players[match.SubmittedBy]
	for _, v := range match.Entries {
		if v.PlayerID == match.SubmittedBy {
			continue
		}

		n := o.toPlayer(players[v.PlayerID], NotificationTypeMatchSubmitted)
		n.Printf(
			"%s reported the result of your match of %s:\n"+
				"**%s** vs **%s**, %s, won by **%s**.\n"+
				"Use `!confirm %s` if this is right or `!dispute %s REASON` if it is not.\n",
			submitter.Name, match.Date,
			match.Team1Label, match.Team2Label, match.Score,
			match.winnerLabel(),
			match.ID, match.ID,
		)
	}
}

func (o *outbox) matchConfirmed(match Match, changes []RatingChange, players map[util.UUIDAsBlob]Player) {
	for _, v := range changes {
		player := players[v.PlayerID]
		n := o.toPlayer(player, NotificationTypeMatchConfirmed)
		n.Printf(
			"Your match of %s (**%s** vs **%s**, %s) has been confirmed.\n"+
				"Your rating went from %s to %s (%s).\n",
			match.Date, match.Team1Label, match.Team2Label, match.Score,
			util.Rating(v.OldRating), util.Rating(v.NewRating),
			util.SignedPoints(match.EloChangeFor(v.PlayerID)),
		)
	}
}

func (o *outbox) matchDisputed(match Match, disputer Player, players map[util.UUIDAsBlob]Player, channelID string) {
	n := o.toPlayer(players[match.SubmittedBy], NotificationTypeMatchDisputed)
	n.Printf(
		"%s disputed the result you reported for your match of %s: %s\n",
		disputer.Name, match.Date, match.DisputeReason.String,
	)

	n = o.toChannel(channelID, NotificationTypeMatchDisputed)
	n.Printf(
		"The result of **%s** vs **%s** (%s) was disputed by %s and needs a referee.\n"+
			"Match `%s`, reason: %s\n",
		match.Team1Label, match.Team2Label, match.Date,
		disputer.Name, match.ID, match.DisputeReason.String,
	)
}
