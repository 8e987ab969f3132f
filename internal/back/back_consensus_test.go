package back

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"courtside/internal/elo"
	"courtside/internal/util"

	"github.com/jmoiron/sqlx"
)

func submitTestMatch(
	t *testing.T,
	back *Back,
	players map[string]Player,
	team1, team2 [2]string,
	winner elo.Side,
) Match {
	t.Helper()
	match, err := back.SubmitResult(context.Background(), SubmitRequest{
		Score:       "6-4 6-4",
		Winner:      winner,
		SubmittedBy: players[team1[0]].ID,
		Team1:       [2]util.UUIDAsBlob{players[team1[0]].ID, players[team1[1]].ID},
		Team2:       [2]util.UUIDAsBlob{players[team2[0]].ID, players[team2[1]].ID},
	})
	if err != nil {
		t.Fatal(err)
	}

	return match
}

func TestSubmitResult(t *testing.T) {
	back, players := createFixturedTestBack(t)
	ctx := context.Background()

	match, err := back.SubmitResult(ctx, SubmitRequest{
		Score:       " 6-3 7-5 ",
		Winner:      elo.SideTeam2,
		SubmittedBy: players["Carla"].ID,
		Team1:       [2]util.UUIDAsBlob{players["Ana"].ID, players["Bruno"].ID},
		Team2:       [2]util.UUIDAsBlob{players["Carla"].ID, players["Dario"].ID},
		Tags:        []string{"friendly", " friendly", "indoor"},
	})
	if err != nil {
		t.Fatal(err)
	}

	if match.Status != MatchStatusPendingConfirmation {
		t.Errorf("expected status %s got %s", MatchStatusPendingConfirmation, match.Status)
	}
	if match.EloChange != 0 {
		t.Errorf("expected no EloChange while pending, got %d", match.EloChange)
	}
	if match.Team1Label != "Ana & Bruno" || match.Team2Label != "Carla & Dario" {
		t.Errorf("unexpected labels %q vs %q", match.Team1Label, match.Team2Label)
	}
	if match.Score != "6-3 7-5" {
		t.Errorf("expected trimmed score, got %q", match.Score)
	}
	if match.Date.IsZero() {
		t.Error("expected a default date")
	}

	stored, err := back.GetMatchByID(ctx, match.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored.Entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(stored.Entries))
	}
	if side, ok := stored.SideOf(players["Dario"].ID); !ok || side != elo.SideTeam2 {
		t.Errorf("expected Dario in team 2, got %v %v", side, ok)
	}
	if tags := stored.Tags.Slice(); len(tags) != 2 {
		t.Errorf("expected 2 tags, got %v", tags)
	}

	// The three other participants are asked to confirm.
	notifs := drainNotifications(back)
	if len(notifs) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(notifs))
	}
	for _, v := range notifs {
		if v.Recipient == "discord-Carla" {
			t.Error("submitter should not be notified")
		}
		if v.Type != NotificationTypeMatchSubmitted {
			t.Errorf("unexpected notification %s", v.String())
		}
	}

	// Nothing changed for the players.
	for _, name := range []string{"Ana", "Bruno", "Carla", "Dario"} {
		if got := mustGetPlayer(t, back, players[name].ID); got.Rating != 1200 || got.MatchesPlayed != 0 {
			t.Errorf("%s: rating changed on submit: %v", name, got.Rating)
		}
	}
}

func TestSubmitResultErrors(t *testing.T) {
	back, players := createFixturedTestBack(t)
	ctx := context.Background()

	valid := func() SubmitRequest {
		return SubmitRequest{
			Score:       "6-0 6-0",
			Winner:      elo.SideTeam1,
			SubmittedBy: players["Ana"].ID,
			Team1:       [2]util.UUIDAsBlob{players["Ana"].ID, players["Bruno"].ID},
			Team2:       [2]util.UUIDAsBlob{players["Carla"].ID, players["Dario"].ID},
		}
	}

	existing := submitTestMatch(t, back, players, [2]string{"Ana", "Bruno"}, [2]string{"Carla", "Dario"}, elo.SideTeam1)

	cases := []struct {
		mutate   func(*SubmitRequest)
		expected error
	}{
		{func(r *SubmitRequest) { r.Score = "  " }, ErrValidation},
		{func(r *SubmitRequest) { r.Winner = 0 }, ErrValidation},
		{func(r *SubmitRequest) { r.Winner = 3 }, ErrValidation},
		{func(r *SubmitRequest) { r.Team1[1] = r.Team1[0] }, ErrValidation},
		{func(r *SubmitRequest) { r.Team2[0] = r.Team1[1] }, ErrValidation},
		{func(r *SubmitRequest) { r.Team2[1] = util.UUIDAsBlob{} }, ErrValidation},
		{func(r *SubmitRequest) { r.SubmittedBy = players["Elena"].ID }, ErrUnauthorized},
		{func(r *SubmitRequest) { r.Team2[1] = util.NewUUIDAsBlob() }, ErrNotFound},
		{func(r *SubmitRequest) { r.MatchID = existing.ID }, ErrValidation},
	}

	for k, v := range cases {
		req := valid()
		v.mutate(&req)
		_, err := back.SubmitResult(ctx, req)
		if !errors.Is(err, v.expected) {
			t.Errorf("case #%d: expected %s got %v", k, v.expected, err)
		}
		if err != nil && !util.IsPublic(err) {
			t.Errorf("case #%d: expected a public error, got %v", k, err)
		}
	}

	matches, err := back.GetMatches(ctx, nil, nil, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Errorf("expected only the first match to be stored, got %d", len(matches))
	}
}

func TestConfirmResult(t *testing.T) {
	back, players := createFixturedTestBack(t)
	ctx := context.Background()

	match := submitTestMatch(t, back, players, [2]string{"Ana", "Bruno"}, [2]string{"Carla", "Dario"}, elo.SideTeam1)
	drainNotifications(back)

	confirmed, err := back.ConfirmResult(ctx, match.ID, players["Dario"].ID)
	if err != nil {
		t.Fatal(err)
	}

	if confirmed.Status != MatchStatusCompleted {
		t.Errorf("expected status %s got %s", MatchStatusCompleted, confirmed.Status)
	}
	if confirmed.EloChange != 16 {
		t.Errorf("expected EloChange 16 got %d", confirmed.EloChange)
	}
	if !confirmed.ResolvedBy.Valid || confirmed.ResolvedBy.UUID != players["Dario"].ID {
		t.Errorf("expected ResolvedBy to be Dario, got %v", confirmed.ResolvedBy)
	}

	expected := map[string]struct {
		rating float64
		wins   int
	}{
		"Ana":   {1216, 1},
		"Bruno": {1216, 1},
		"Carla": {1184, 0},
		"Dario": {1184, 0},
	}
	for name, v := range expected {
		got := mustGetPlayer(t, back, players[name].ID)
		if got.Rating != v.rating || got.Wins != v.wins || got.MatchesPlayed != 1 {
			t.Errorf(
				"%s: expected %v/%d/1 got %v/%d/%d",
				name, v.rating, v.wins, got.Rating, got.Wins, got.MatchesPlayed,
			)
		}
	}

	notifs := drainNotifications(back)
	if len(notifs) != 4 {
		t.Fatalf("expected 4 notifications, got %d", len(notifs))
	}
	for _, v := range notifs {
		if v.Type != NotificationTypeMatchConfirmed {
			t.Errorf("unexpected notification %s", v.String())
		}
	}

	// Stored match matches the returned one.
	stored, err := back.GetMatchByID(ctx, match.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != MatchStatusCompleted || stored.EloChange != 16 || !stored.ResolvedAt.Valid {
		t.Errorf("unexpected stored match %+v", stored)
	}
	if got := stored.EloChangeFor(players["Carla"].ID); got != -16 {
		t.Errorf("expected -16 for Carla, got %d", got)
	}
}

func TestConfirmResultUsesRealRatings(t *testing.T) {
	back, players := createFixturedTestBack(t)

	// Gala (1800) and Fede (1600) against four beginners, the favorite wins.
	match := submitTestMatch(t, back, players, [2]string{"Ana", "Bruno"}, [2]string{"Gala", "Fede"}, elo.SideTeam2)
	confirmed, err := back.ConfirmResult(context.Background(), match.ID, players["Gala"].ID)
	if err != nil {
		t.Fatal(err)
	}

	res := elo.Compute(1200, 1200, 1800, 1600, elo.SideTeam2)
	if confirmed.EloChange != res.Delta {
		t.Errorf("expected EloChange %d got %d", res.Delta, confirmed.EloChange)
	}
	if got := mustGetPlayer(t, back, players["Gala"].ID).Rating; got != res.P3 {
		t.Errorf("expected Gala at %v got %v", res.P3, got)
	}
	if got := mustGetPlayer(t, back, players["Ana"].ID).Rating; got != res.P1 {
		t.Errorf("expected Ana at %v got %v", res.P1, got)
	}
}

func TestConfirmResultErrors(t *testing.T) {
	back, players := createFixturedTestBack(t)
	ctx := context.Background()

	match := submitTestMatch(t, back, players, [2]string{"Ana", "Bruno"}, [2]string{"Carla", "Dario"}, elo.SideTeam1)

	cases := []struct {
		matchID, actorID util.UUIDAsBlob
		expected         error
	}{
		{util.NewUUIDAsBlob(), players["Bruno"].ID, ErrNotFound},
		{match.ID, players["Ana"].ID, ErrUnauthorized},   // submitter
		{match.ID, players["Elena"].ID, ErrUnauthorized}, // not a participant
	}

	for k, v := range cases {
		if _, err := back.ConfirmResult(ctx, v.matchID, v.actorID); !errors.Is(err, v.expected) {
			t.Errorf("case #%d: expected %s got %v", k, v.expected, err)
		}
		if _, err := back.DisputeResult(ctx, v.matchID, v.actorID, "nope"); !errors.Is(err, v.expected) {
			t.Errorf("case #%d (dispute): expected %s got %v", k, v.expected, err)
		}
	}

	// A failed attempt leaves the match pending for the next one.
	stored, err := back.GetMatchByID(ctx, match.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !stored.IsPending() {
		t.Errorf("expected match to still be pending, got %s", stored.Status)
	}

	// The partner of the submitter can confirm.
	if _, err := back.ConfirmResult(ctx, match.ID, players["Bruno"].ID); err != nil {
		t.Errorf("partner confirmation failed: %v", err)
	}
}

func TestConfirmTwice(t *testing.T) {
	back, players := createFixturedTestBack(t)
	ctx := context.Background()

	match := submitTestMatch(t, back, players, [2]string{"Ana", "Bruno"}, [2]string{"Carla", "Dario"}, elo.SideTeam1)
	if _, err := back.ConfirmResult(ctx, match.ID, players["Carla"].ID); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"Carla", "Dario", "Bruno"} {
		if _, err := back.ConfirmResult(ctx, match.ID, players[name].ID); !errors.Is(err, ErrInvalidStateTransition) {
			t.Errorf("%s: expected %s got %v", name, ErrInvalidStateTransition, err)
		}
	}

	if got := mustGetPlayer(t, back, players["Ana"].ID).Rating; got != 1216 {
		t.Errorf("expected a single adjustment to 1216, got %v", got)
	}

	history, err := back.GetRatingHistory(ctx, players["Ana"].ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 {
		t.Errorf("expected a single RatingChange, got %d", len(history))
	}
}

func TestDisputeResult(t *testing.T) {
	back, players := createFixturedTestBack(t)
	ctx := context.Background()

	match := submitTestMatch(t, back, players, [2]string{"Ana", "Bruno"}, [2]string{"Carla", "Dario"}, elo.SideTeam1)
	drainNotifications(back)

	if _, err := back.DisputeResult(ctx, match.ID, players["Carla"].ID, "   "); !errors.Is(err, ErrValidation) {
		t.Errorf("expected %s for an empty reason, got %v", ErrValidation, err)
	}

	// The match is checked before the reason.
	emptyReasonCases := []struct {
		matchID  util.UUIDAsBlob
		actor    string
		expected error
	}{
		{util.NewUUIDAsBlob(), "Carla", ErrNotFound},
		{match.ID, "Ana", ErrUnauthorized},
		{match.ID, "Elena", ErrUnauthorized},
	}
	for k, v := range emptyReasonCases {
		if _, err := back.DisputeResult(ctx, v.matchID, players[v.actor].ID, ""); !errors.Is(err, v.expected) {
			t.Errorf("case #%d: expected %s got %v", k, v.expected, err)
		}
	}

	disputed, err := back.DisputeResult(ctx, match.ID, players["Carla"].ID, "we won the third set")
	if err != nil {
		t.Fatal(err)
	}
	if disputed.Status != MatchStatusDisputed {
		t.Errorf("expected status %s got %s", MatchStatusDisputed, disputed.Status)
	}
	if disputed.DisputeReason.String != "we won the third set" {
		t.Errorf("unexpected reason %q", disputed.DisputeReason.String)
	}
	if disputed.EloChange != 0 {
		t.Errorf("expected no EloChange, got %d", disputed.EloChange)
	}

	notifs := drainNotifications(back)
	if len(notifs) != 1 || notifs[0].Recipient != "discord-Ana" {
		t.Errorf("expected the submitter to be notified, got %v", notifs)
	}

	// Terminal.
	if _, err := back.ConfirmResult(ctx, match.ID, players["Dario"].ID); !errors.Is(err, ErrInvalidStateTransition) {
		t.Errorf("expected %s got %v", ErrInvalidStateTransition, err)
	}
	if _, err := back.DisputeResult(ctx, match.ID, players["Dario"].ID, "again"); !errors.Is(err, ErrInvalidStateTransition) {
		t.Errorf("expected %s got %v", ErrInvalidStateTransition, err)
	}
	if _, err := back.DisputeResult(ctx, match.ID, players["Dario"].ID, ""); !errors.Is(err, ErrInvalidStateTransition) {
		t.Errorf("expected %s got %v", ErrInvalidStateTransition, err)
	}

	for _, name := range []string{"Ana", "Bruno", "Carla", "Dario"} {
		if got := mustGetPlayer(t, back, players[name].ID); got.Rating != 1200 || got.MatchesPlayed != 0 {
			t.Errorf("%s: rating changed on dispute: %v", name, got.Rating)
		}
	}
}

func TestDisputeAfterConfirm(t *testing.T) {
	back, players := createFixturedTestBack(t)
	ctx := context.Background()

	match := submitTestMatch(t, back, players, [2]string{"Ana", "Bruno"}, [2]string{"Carla", "Dario"}, elo.SideTeam2)
	if _, err := back.ConfirmResult(ctx, match.ID, players["Carla"].ID); err != nil {
		t.Fatal(err)
	}

	if _, err := back.DisputeResult(ctx, match.ID, players["Dario"].ID, "too late"); !errors.Is(err, ErrInvalidStateTransition) {
		t.Errorf("expected %s got %v", ErrInvalidStateTransition, err)
	}

	if got := mustGetPlayer(t, back, players["Ana"].ID).Rating; got != 1184 {
		t.Errorf("expected rating to stay at 1184, got %v", got)
	}

	stored, err := back.GetMatchByID(ctx, match.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != MatchStatusCompleted || stored.DisputeReason.Valid {
		t.Errorf("expected an untouched completed match, got %+v", stored)
	}
}

func TestConcurrentConfirm(t *testing.T) {
	back, players := createFixturedTestBack(t)
	ctx := context.Background()

	match := submitTestMatch(t, back, players, [2]string{"Ana", "Bruno"}, [2]string{"Carla", "Dario"}, elo.SideTeam1)

	actors := []string{"Bruno", "Carla", "Dario", "Carla", "Dario", "Bruno"}
	errs := make([]error, len(actors))
	var wg sync.WaitGroup
	for k, name := range actors {
		wg.Add(1)
		go func(k int, id util.UUIDAsBlob) {
			defer wg.Done()
			_, errs[k] = back.ConfirmResult(ctx, match.ID, id)
		}(k, players[name].ID)
	}
	wg.Wait()

	var ok int
	for k, err := range errs {
		if err == nil {
			ok++
			continue
		}
		if !errors.Is(err, ErrInvalidStateTransition) {
			t.Errorf("case #%d: expected %s got %v", k, ErrInvalidStateTransition, err)
		}
	}
	if ok != 1 {
		t.Errorf("expected exactly one successful confirmation, got %d", ok)
	}

	if got := mustGetPlayer(t, back, players["Carla"].ID); got.Rating != 1184 || got.MatchesPlayed != 1 {
		t.Errorf("expected a single adjustment, got %v after %d matches", got.Rating, got.MatchesPlayed)
	}
}

func TestConfirmIsAtomic(t *testing.T) {
	back, players := createFixturedTestBack(t)
	ctx := context.Background()

	match := submitTestMatch(t, back, players, [2]string{"Ana", "Bruno"}, [2]string{"Carla", "Dario"}, elo.SideTeam1)

	// Make the ledger write of the last player fail.
	dario := players["Dario"].ID.UUID()
	if _, err := back.db.Exec(fmt.Sprintf(`
        CREATE TRIGGER "FailRatingChange" BEFORE INSERT ON "RatingChange"
        WHEN NEW.PlayerID = X'%X'
        BEGIN SELECT RAISE(ABORT, 'ledger unavailable'); END`,
		dario[:],
	)); err != nil {
		t.Fatal(err)
	}

	if _, err := back.ConfirmResult(ctx, match.ID, players["Carla"].ID); err == nil ||
		!strings.Contains(err.Error(), "ledger unavailable") {
		t.Fatalf("expected the ledger error, got %v", err)
	}

	stored, err := back.GetMatchByID(ctx, match.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !stored.IsPending() || stored.EloChange != 0 || stored.ResolvedBy.Valid {
		t.Errorf("expected an untouched pending match, got %+v", stored)
	}

	for _, name := range []string{"Ana", "Bruno", "Carla", "Dario"} {
		if got := mustGetPlayer(t, back, players[name].ID); got.Rating != 1200 || got.MatchesPlayed != 0 {
			t.Errorf("%s: partial rating update %v", name, got.Rating)
		}
	}

	var count int
	if err := back.transaction(ctx, func(tx *sqlx.Tx) error {
		return tx.Get(&count, `SELECT COUNT(*) FROM RatingChange`)
	}); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("expected an empty ledger, got %d records", count)
	}

	// Once the storage is back the same confirmation succeeds.
	if _, err := back.db.Exec(`DROP TRIGGER "FailRatingChange"`); err != nil {
		t.Fatal(err)
	}
	if _, err := back.ConfirmResult(ctx, match.ID, players["Carla"].ID); err != nil {
		t.Errorf("retry failed: %v", err)
	}
}

func TestGetRatingHistory(t *testing.T) {
	back, players := createFixturedTestBack(t)
	ctx := context.Background()

	games := []struct {
		team1, team2 [2]string
		winner       elo.Side
		confirmer    string
	}{
		{[2]string{"Elena", "Ana"}, [2]string{"Carla", "Dario"}, elo.SideTeam1, "Carla"},
		{[2]string{"Bruno", "Carla"}, [2]string{"Elena", "Fede"}, elo.SideTeam1, "Fede"},
		{[2]string{"Gala", "Elena"}, [2]string{"Ana", "Bruno"}, elo.SideTeam2, "Bruno"},
		{[2]string{"Dario", "Fede"}, [2]string{"Elena", "Gala"}, elo.SideTeam2, "Gala"},
	}

	for k, v := range games {
		match := submitTestMatch(t, back, players, v.team1, v.team2, v.winner)
		if _, err := back.ConfirmResult(ctx, match.ID, players[v.confirmer].ID); err != nil {
			t.Fatalf("case #%d: %v", k, err)
		}
	}

	// A pending and a disputed match do not show up in the history.
	submitTestMatch(t, back, players, [2]string{"Elena", "Ana"}, [2]string{"Bruno", "Carla"}, elo.SideTeam1)
	disputed := submitTestMatch(t, back, players, [2]string{"Elena", "Dario"}, [2]string{"Bruno", "Carla"}, elo.SideTeam1)
	if _, err := back.DisputeResult(ctx, disputed.ID, players["Bruno"].ID, "wrong score"); err != nil {
		t.Fatal(err)
	}

	elena := players["Elena"]
	history, err := back.GetRatingHistory(ctx, elena.ID)
	if err != nil {
		t.Fatal(err)
	}

	if len(history) != len(games) {
		t.Fatalf("expected %d records got %d", len(games), len(history))
	}

	previous := SkillTierIntermediate.StartingRating()
	for k, v := range history {
		if v.OldRating != previous {
			t.Errorf("case #%d: expected OldRating %v got %v", k, previous, v.OldRating)
		}
		if v.PlayerID != elena.ID {
			t.Errorf("case #%d: unexpected player %s", k, v.PlayerID)
		}
		previous = v.NewRating
	}

	if got := mustGetPlayer(t, back, elena.ID); got.Rating != previous || got.MatchesPlayed != len(games) {
		t.Errorf("expected current rating %v after %d matches, got %v after %d", previous, len(games), got.Rating, got.MatchesPlayed)
	}

	if _, err := back.GetRatingHistory(ctx, util.NewUUIDAsBlob()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected %s got %v", ErrNotFound, err)
	}
}

func TestPreviewMatch(t *testing.T) {
	back, players := createFixturedTestBack(t)
	ctx := context.Background()

	team1 := [2]util.UUIDAsBlob{players["Ana"].ID, players["Bruno"].ID}
	team2 := [2]util.UUIDAsBlob{players["Fede"].ID, players["Fede"].ID}

	res, err := back.PreviewMatch(ctx, team1, team2, elo.SideTeam1)
	if err != nil {
		t.Fatal(err)
	}
	if res.PointsExchanged != 29 || res.P1 != 1229 || res.P3 != 1571 {
		t.Errorf("unexpected upset preview %+v", res)
	}

	if _, err := back.PreviewMatch(ctx, team1, team2, 0); !errors.Is(err, ErrValidation) {
		t.Errorf("expected %s got %v", ErrValidation, err)
	}
	if _, err := back.PreviewMatch(ctx, team1, [2]util.UUIDAsBlob{util.NewUUIDAsBlob()}, elo.SideTeam1); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected %s got %v", ErrNotFound, err)
	}

	// Nothing persisted.
	if got := mustGetPlayer(t, back, players["Ana"].ID).Rating; got != 1200 {
		t.Errorf("preview changed a rating: %v", got)
	}
}

func TestGetPendingMatchesForPlayer(t *testing.T) {
	back, players := createFixturedTestBack(t)
	ctx := context.Background()

	first := submitTestMatch(t, back, players, [2]string{"Ana", "Bruno"}, [2]string{"Carla", "Dario"}, elo.SideTeam1)
	submitTestMatch(t, back, players, [2]string{"Carla", "Elena"}, [2]string{"Fede", "Gala"}, elo.SideTeam1)
	third := submitTestMatch(t, back, players, [2]string{"Bruno", "Ana"}, [2]string{"Elena", "Fede"}, elo.SideTeam2)
	if _, err := back.ConfirmResult(ctx, third.ID, players["Elena"].ID); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name     string
		expected int
	}{
		{"Ana", 0},   // submitted the first one, the third is completed
		{"Bruno", 1}, // can confirm the first one
		{"Carla", 1}, // submitted the second one
		{"Gala", 1},
	}

	for k, v := range cases {
		matches, err := back.GetPendingMatchesForPlayer(ctx, players[v.name].ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(matches) != v.expected {
			t.Errorf("case #%d: expected %d pending matches for %s got %d", k, v.expected, v.name, len(matches))
		}
	}

	status := MatchStatusCompleted
	completed, err := back.GetMatches(ctx, &status, nil, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(completed) != 1 || completed[0].ID != third.ID || len(completed[0].Entries) != 4 {
		t.Errorf("unexpected completed matches %+v", completed)
	}

	all, err := back.GetMatches(ctx, nil, nil, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[2].ID != first.ID {
		t.Errorf("expected 3 matches, most recent first, got %d", len(all))
	}
}

func TestPendingMatchesIgnoreOwnReports(t *testing.T) {
	back, players := createFixturedTestBack(t)
	ctx := context.Background()

	awaiting := submitTestMatch(t, back, players, [2]string{"Carla", "Dario"}, [2]string{"Ana", "Bruno"}, elo.SideTeam1)

	// Ana's own reports are more recent and exceed the listing limit.
	for i := 0; i < pendingMatchesLimit+5; i++ {
		submitTestMatch(t, back, players, [2]string{"Ana", "Bruno"}, [2]string{"Elena", "Fede"}, elo.SideTeam1)
	}

	matches, err := back.GetPendingMatchesForPlayer(ctx, players["Ana"].ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].ID != awaiting.ID {
		t.Errorf("expected Ana to see the match reported by Carla, got %d match(es)", len(matches))
	}

	matches, err = back.GetPendingMatchesForPlayer(ctx, players["Bruno"].ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != pendingMatchesLimit {
		t.Errorf("expected the listing to be capped at %d, got %d", pendingMatchesLimit, len(matches))
	}
}
