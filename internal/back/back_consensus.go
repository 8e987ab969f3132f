package back

import (
	"context"
	"courtside/internal/elo"
	"courtside/internal/util"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"gopkg.in/guregu/null.v4"
)

// pendingMatchesLimit is the maximum number of results listed as awaiting a
// player's confirmation.
const pendingMatchesLimit = 50

// SubmitRequest is a match result as reported by one of its participants.
type SubmitRequest struct {
	// MatchID is supplied by the caller (eg. the court booking), a new one is
	// generated when left empty.
	MatchID util.UUIDAsBlob
	Date    util.Date // defaults to today
	Score   string
	Winner  elo.Side

	SubmittedBy util.UUIDAsBlob
	Team1       [2]util.UUIDAsBlob
	Team2       [2]util.UUIDAsBlob

	// Optional, derived from the player names when empty.
	Team1Label string
	Team2Label string
	Tags       []string
}

func (r SubmitRequest) playerIDs() []util.UUIDAsBlob {
	return []util.UUIDAsBlob{r.Team1[0], r.Team1[1], r.Team2[0], r.Team2[1]}
}

func (r SubmitRequest) validate() error {
	if strings.TrimSpace(r.Score) == "" {
		return fmt.Errorf("%w: the score is missing", ErrValidation)
	}

	if !r.Winner.Valid() {
		return fmt.Errorf("%w: the winner must be team 1 or team 2", ErrValidation)
	}

	ids := r.playerIDs()
	seen := make(map[util.UUIDAsBlob]struct{}, len(ids))
	for _, id := range ids {
		if id.IsZero() {
			return fmt.Errorf("%w: each team needs two players", ErrValidation)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: a player can only appear once in a match", ErrValidation)
		}
		seen[id] = struct{}{}
	}

	if _, ok := seen[r.SubmittedBy]; !ok {
		return fmt.Errorf("%w: only a participant can report a match", ErrUnauthorized)
	}

	return nil
}

// SubmitResult records a match result reported by one of its participants.
// The result stays pending until another participant confirms or disputes it.
func (b *Back) SubmitResult(ctx context.Context, req SubmitRequest) (match Match, _ error) {
	if err := req.validate(); err != nil {
		return Match{}, err
	}

	if req.MatchID.IsZero() {
		req.MatchID = util.NewUUIDAsBlob()
	}
	if req.Date.IsZero() {
		req.Date = util.NewDate(time.Now())
	}

	var out outbox
	if err := b.transaction(ctx, func(tx *sqlx.Tx) error {
		if _, err := getMatchByID(tx, req.MatchID); err == nil {
			return fmt.Errorf("%w: match %s was already reported", ErrValidation, req.MatchID)
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}

		players, err := getPlayersByIDs(tx, req.playerIDs())
		if err != nil {
			return err
		}

		match = newMatchFromRequest(req, players)
		if err := match.insert(tx); err != nil {
			return err
		}

		out.matchSubmitted(match, players)
		return nil
	}); err != nil {
		return Match{}, err
	}

	b.publish(out)
	log.Printf("info: match %s reported by %s", match.ID, match.SubmittedBy)

	return match, nil
}

func newMatchFromRequest(req SubmitRequest, players map[util.UUIDAsBlob]Player) Match {
	match := Match{
		ID:          req.MatchID,
		CreatedAt:   util.Now(),
		Date:        req.Date,
		Team1Label:  strings.TrimSpace(req.Team1Label),
		Team2Label:  strings.TrimSpace(req.Team2Label),
		Score:       strings.TrimSpace(req.Score),
		Winner:      req.Winner,
		Status:      MatchStatusPendingConfirmation,
		SubmittedBy: req.SubmittedBy,
		Tags:        util.NewStringArrayAsJSON(req.Tags),
		Entries:     make([]MatchEntry, 0, 4),
	}

	if match.Team1Label == "" {
		match.Team1Label = util.JoinNames(players[req.Team1[0]].Name, players[req.Team1[1]].Name)
	}
	if match.Team2Label == "" {
		match.Team2Label = util.JoinNames(players[req.Team2[0]].Name, players[req.Team2[1]].Name)
	}

	for slot, id := range req.Team1 {
		match.Entries = append(match.Entries, NewMatchEntry(match.ID, id, elo.SideTeam1, slot))
	}
	for slot, id := range req.Team2 {
		match.Entries = append(match.Entries, NewMatchEntry(match.ID, id, elo.SideTeam2, slot))
	}

	return match
}

// ensureResolvableBy returns an error if the actor cannot confirm or dispute
// the match right now.
func ensureResolvableBy(match Match, actorID util.UUIDAsBlob) error {
	if !match.IsPending() {
		return fmt.Errorf("%w: match %s is %s", ErrInvalidStateTransition, match.ID, match.Status)
	}

	if !match.HasPlayerID(actorID) {
		return fmt.Errorf("%w: you did not play this match", ErrUnauthorized)
	}

	if match.SubmittedBy == actorID {
		return fmt.Errorf("%w: another participant has to confirm the result you reported", ErrUnauthorized)
	}

	return nil
}

// ConfirmResult completes a pending match and applies the rating change to
// its four participants. Everything happens in a single transaction: either
// the ratings, the ledger, and the status are all written or nothing is.
func (b *Back) ConfirmResult(ctx context.Context, matchID, actorID util.UUIDAsBlob) (match Match, _ error) {
	var out outbox
	if err := b.transaction(ctx, func(tx *sqlx.Tx) error {
		var err error
		match, err = getMatchByID(tx, matchID)
		if err != nil {
			return err
		}

		if err := ensureResolvableBy(match, actorID); err != nil {
			return err
		}

		ids, err := match.PlayerIDs()
		if err != nil {
			return err
		}

		players, err := getPlayersByIDs(tx, ids[:])
		if err != nil {
			return err
		}

		res := elo.Compute(
			players[ids[0]].Rating, players[ids[1]].Rating,
			players[ids[2]].Rating, players[ids[3]].Rating,
			match.Winner,
		)

		match.Status = MatchStatusCompleted
		match.EloChange = res.Delta
		match.ResolvedBy = util.NewNullUUIDAsBlob(actorID)
		match.ResolvedAt = util.NewNullTimeAsTimestamp(time.Now())
		if err := match.transition(tx, MatchStatusPendingConfirmation); err != nil {
			return err
		}

		changes, err := applyRatings(tx, match, ids, res.Ratings(), players)
		if err != nil {
			return err
		}

		out.matchConfirmed(match, changes, players)
		return nil
	}); err != nil {
		return Match{}, err
	}

	b.publish(out)
	log.Printf("info: match %s confirmed by %s, %s points", match.ID, actorID, util.SignedPoints(match.EloChange))

	return match, nil
}

// applyRatings persists the new ratings and counters of the participants and
// appends one RatingChange per player. players is updated in place.
func applyRatings(
	tx *sqlx.Tx,
	match Match,
	ids [4]util.UUIDAsBlob,
	ratings [4]float64,
	players map[util.UUIDAsBlob]Player,
) ([]RatingChange, error) {
	changes := make([]RatingChange, 0, len(ids))
	for k, id := range ids {
		player := players[id]
		change := NewRatingChange(id, match.ID, player.Rating, math.Max(0, ratings[k]))

		player.Rating = change.NewRating
		player.MatchesPlayed++
		if side, _ := match.SideOf(id); side == match.Winner {
			player.Wins++
		}

		if err := player.updateRating(tx); err != nil {
			return nil, err
		}
		if err := change.insert(tx); err != nil {
			return nil, err
		}

		players[id] = player
		changes = append(changes, change)
	}

	return changes, nil
}

// DisputeResult closes a pending match without touching any rating, the
// match is then left to a human referee.
func (b *Back) DisputeResult(ctx context.Context, matchID, actorID util.UUIDAsBlob, reason string) (match Match, _ error) {
	reason = strings.TrimSpace(reason)

	var out outbox
	if err := b.transaction(ctx, func(tx *sqlx.Tx) error {
		var err error
		match, err = getMatchByID(tx, matchID)
		if err != nil {
			return err
		}

		if err := ensureResolvableBy(match, actorID); err != nil {
			return err
		}

		if reason == "" {
			return fmt.Errorf("%w: tell us what is wrong with this result", ErrValidation)
		}

		match.Status = MatchStatusDisputed
		match.DisputeReason = null.StringFrom(reason)
		match.ResolvedBy = util.NewNullUUIDAsBlob(actorID)
		match.ResolvedAt = util.NewNullTimeAsTimestamp(time.Now())
		if err := match.transition(tx, MatchStatusPendingConfirmation); err != nil {
			return err
		}

		players, err := getPlayersByIDs(tx, []util.UUIDAsBlob{match.SubmittedBy, actorID})
		if err != nil {
			return err
		}

		out.matchDisputed(match, players[actorID], players, b.config.DiscordAnnounceChannelID)
		return nil
	}); err != nil {
		return Match{}, err
	}

	b.publish(out)
	log.Printf("info: match %s disputed by %s", match.ID, actorID)

	return match, nil
}

// GetRatingHistory returns the rating ledger of a player, oldest first.
func (b *Back) GetRatingHistory(ctx context.Context, playerID util.UUIDAsBlob) (history []RatingChange, _ error) {
	if err := b.transaction(ctx, func(tx *sqlx.Tx) error {
		if _, err := getPlayerByID(tx, playerID); err != nil {
			return err
		}

		var err error
		history, err = getRatingHistory(tx, playerID)
		return err
	}); err != nil {
		return nil, err
	}

	return history, nil
}

// PreviewMatch returns what a match between the given teams would do to the
// current ratings of its players, nothing is persisted.
func (b *Back) PreviewMatch(
	ctx context.Context,
	team1, team2 [2]util.UUIDAsBlob,
	winner elo.Side,
) (res elo.Result, _ error) {
	if !winner.Valid() {
		return elo.Result{}, fmt.Errorf("%w: the winner must be team 1 or team 2", ErrValidation)
	}

	ids := []util.UUIDAsBlob{team1[0], team1[1], team2[0], team2[1]}
	var ratings [4]float64
	if err := b.transaction(ctx, func(tx *sqlx.Tx) error {
		for k, id := range ids {
			rating, err := getPlayerRating(tx, id)
			if err != nil {
				return err
			}
			ratings[k] = rating
		}

		return nil
	}); err != nil {
		return elo.Result{}, err
	}

	return elo.Compute(ratings[0], ratings[1], ratings[2], ratings[3], winner), nil
}

func (b *Back) GetMatchByID(ctx context.Context, id util.UUIDAsBlob) (match Match, _ error) {
	if err := b.transaction(ctx, func(tx *sqlx.Tx) (err error) {
		match, err = getMatchByID(tx, id)
		return err
	}); err != nil {
		return Match{}, err
	}

	return match, nil
}

// GetMatches returns the most recent matches, status and playerID are
// optional filters.
func (b *Back) GetMatches(
	ctx context.Context,
	status *MatchStatus,
	playerID *util.UUIDAsBlob,
	limit uint64,
) (matches []Match, _ error) {
	if err := b.transaction(ctx, func(tx *sqlx.Tx) (err error) {
		matches, err = getMatches(tx, matchFilter{Status: status, PlayerID: playerID}, limit)
		return err
	}); err != nil {
		return nil, err
	}

	return matches, nil
}

// GetPendingMatchesForPlayer returns the pending matches the player can
// confirm or dispute, ie. the ones they did not report themselves.
func (b *Back) GetPendingMatchesForPlayer(ctx context.Context, playerID util.UUIDAsBlob) (matches []Match, _ error) {
	status := MatchStatusPendingConfirmation
	filter := matchFilter{
		Status:         &status,
		PlayerID:       &playerID,
		NotSubmittedBy: &playerID,
	}

	if err := b.transaction(ctx, func(tx *sqlx.Tx) (err error) {
		matches, err = getMatches(tx, filter, pendingMatchesLimit)
		return err
	}); err != nil {
		return nil, err
	}

	return matches, nil
}
