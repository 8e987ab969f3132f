package back

import (
	"courtside/internal/elo"
	"courtside/internal/util"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"gopkg.in/guregu/null.v4"
)

// MatchStatus is the consensus state of a reported match result.
type MatchStatus int

const ( // this is stored in DB, don't change values
	MatchStatusPendingConfirmation MatchStatus = 0
	MatchStatusCompleted           MatchStatus = 1 // terminal, ratings applied
	MatchStatusDisputed            MatchStatus = 2 // terminal, left to a human
)

func ParseMatchStatus(str string) (MatchStatus, error) {
	switch str {
	case "pending_confirmation":
		return MatchStatusPendingConfirmation, nil
	case "completed":
		return MatchStatusCompleted, nil
	case "disputed":
		return MatchStatusDisputed, nil
	default:
		return 0, fmt.Errorf("%w: unknown match status %q", ErrValidation, str)
	}
}

func (s MatchStatus) String() string {
	switch s {
	case MatchStatusPendingConfirmation:
		return "pending_confirmation"
	case MatchStatusCompleted:
		return "completed"
	case MatchStatusDisputed:
		return "disputed"
	default:
		return "invalid"
	}
}

func (s MatchStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// A Match is a reported doubles match result, it only affects ratings once
// another participant has confirmed it.
type Match struct {
	ID        util.UUIDAsBlob
	CreatedAt util.TimeAsTimestamp
	Date      util.Date

	// Display labels, the participants are the Entries.
	Team1Label string
	Team2Label string

	Score  string
	Winner elo.Side

	// EloChange is the signed delta applied to team 1, zero until completed.
	EloChange int
	Status    MatchStatus

	SubmittedBy   util.UUIDAsBlob
	ResolvedBy    util.NullUUIDAsBlob
	ResolvedAt    util.NullTimeAsTimestamp
	DisputeReason null.String
	Tags          util.StringArrayAsJSON

	Entries []MatchEntry `db:"-"`
}

func (m *Match) IsPending() bool {
	return m.Status == MatchStatusPendingConfirmation
}

// HasPlayerID returns true if the player is one of the four participants.
func (m *Match) HasPlayerID(id util.UUIDAsBlob) bool {
	_, ok := m.getEntry(id)
	return ok
}

// SideOf returns the team of the given participant.
func (m *Match) SideOf(id util.UUIDAsBlob) (elo.Side, bool) {
	entry, ok := m.getEntry(id)
	if !ok {
		return 0, false
	}

	return entry.Team, true
}

func (m *Match) getEntry(id util.UUIDAsBlob) (MatchEntry, bool) {
	for _, v := range m.Entries {
		if v.PlayerID == id {
			return v, true
		}
	}

	return MatchEntry{}, false
}

// PlayerIDs returns the participants in calculator order: team 1 slot 0 and
// 1, then team 2 slot 0 and 1.
func (m *Match) PlayerIDs() ([4]util.UUIDAsBlob, error) {
	var ret [4]util.UUIDAsBlob
	var found int
	for _, v := range m.Entries {
		idx := v.Slot
		if v.Team == elo.SideTeam2 {
			idx += 2
		}
		if idx < 0 || idx > 3 || !ret[idx].IsZero() {
			return ret, fmt.Errorf("match %s has an invalid entry %d/%d", m.ID, v.Team, v.Slot)
		}

		ret[idx] = v.PlayerID
		found++
	}

	if found != 4 {
		return ret, fmt.Errorf("match %s has %d entries, expected 4", m.ID, found)
	}

	return ret, nil
}

// EloChangeFor returns the signed rating delta of a participant, it is only
// meaningful once the match is completed.
func (m *Match) EloChangeFor(id util.UUIDAsBlob) int {
	side, ok := m.SideOf(id)
	if !ok || m.Status != MatchStatusCompleted {
		return 0
	}

	if side == elo.SideTeam1 {
		return m.EloChange
	}

	return -m.EloChange
}

func (m *Match) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("Match").SetMap(squirrel.Eq{
		"ID":            m.ID,
		"CreatedAt":     m.CreatedAt,
		"Date":          m.Date,
		"Team1Label":    m.Team1Label,
		"Team2Label":    m.Team2Label,
		"Score":         m.Score,
		"Winner":        m.Winner,
		"EloChange":     m.EloChange,
		"Status":        m.Status,
		"SubmittedBy":   m.SubmittedBy,
		"ResolvedBy":    m.ResolvedBy,
		"ResolvedAt":    m.ResolvedAt,
		"DisputeReason": m.DisputeReason,
		"Tags":          m.Tags,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	for k := range m.Entries {
		if err := m.Entries[k].insert(tx); err != nil {
			return err
		}
	}

	return nil
}

// transition persists the resolution of the match only if its stored status
// is still the expected one, this is the only way a Match status changes.
// It fails with ErrInvalidStateTransition if another transaction got there
// first.
func (m *Match) transition(tx *sqlx.Tx, from MatchStatus) error {
	query, args, err := squirrel.Update("Match").SetMap(squirrel.Eq{
		"Status":        m.Status,
		"EloChange":     m.EloChange,
		"ResolvedBy":    m.ResolvedBy,
		"ResolvedAt":    m.ResolvedAt,
		"DisputeReason": m.DisputeReason,
	}).Where(squirrel.Eq{
		"Match.ID":     m.ID,
		"Match.Status": from,
	}).ToSql()
	if err != nil {
		return err
	}

	res, err := tx.Exec(query, args...)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return fmt.Errorf("%w: match %s", ErrInvalidStateTransition, m.ID)
	}

	return nil
}

func getMatchByID(tx *sqlx.Tx, id util.UUIDAsBlob) (Match, error) {
	var ret Match
	query := `SELECT * FROM Match WHERE Match.ID = ? LIMIT 1`
	if err := tx.Get(&ret, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Match{}, fmt.Errorf("%w: match %s", ErrNotFound, id)
		}
		return Match{}, err
	}

	entries, err := getEntriesByMatchIDs(tx, []util.UUIDAsBlob{ret.ID})
	if err != nil {
		return Match{}, err
	}
	ret.Entries = entries[ret.ID]

	return ret, nil
}

// matchFilter restricts getMatches results, nil fields are ignored.
type matchFilter struct {
	Status   *MatchStatus
	PlayerID *util.UUIDAsBlob

	// NotSubmittedBy drops the matches reported by this player.
	NotSubmittedBy *util.UUIDAsBlob
}

// getMatches returns the most recent matches matching the filter.
func getMatches(tx *sqlx.Tx, filter matchFilter, limit uint64) ([]Match, error) {
	q := squirrel.Select("Match.*").From("Match").
		OrderBy("Match.CreatedAt DESC", "Match.rowid DESC").
		Limit(limit)

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"Match.Status": *filter.Status})
	}
	if filter.PlayerID != nil {
		q = q.Where(
			"EXISTS (SELECT 1 FROM MatchEntry WHERE MatchEntry.MatchID = Match.ID AND MatchEntry.PlayerID = ?)",
			*filter.PlayerID,
		)
	}
	if filter.NotSubmittedBy != nil {
		q = q.Where(squirrel.NotEq{"Match.SubmittedBy": *filter.NotSubmittedBy})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var ret []Match
	if err := tx.Select(&ret, query, args...); err != nil {
		return nil, err
	}

	ids := make([]util.UUIDAsBlob, 0, len(ret))
	for k := range ret {
		ids = append(ids, ret[k].ID)
	}

	entries, err := getEntriesByMatchIDs(tx, ids)
	if err != nil {
		return nil, err
	}

	for k := range ret {
		ret[k].Entries = entries[ret[k].ID]
	}

	return ret, nil
}

func (m *Match) winnerLabel() string {
	if m.Winner == elo.SideTeam2 {
		return m.Team2Label
	}

	return m.Team1Label
}
