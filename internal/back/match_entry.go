package back

import (
	"courtside/internal/elo"
	"courtside/internal/util"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// A MatchEntry binds a player to a team of a Match.
type MatchEntry struct {
	MatchID   util.UUIDAsBlob
	PlayerID  util.UUIDAsBlob
	CreatedAt util.TimeAsTimestamp

	Team elo.Side
	Slot int // 0 or 1, position inside the team
}

func NewMatchEntry(matchID, playerID util.UUIDAsBlob, team elo.Side, slot int) MatchEntry {
	return MatchEntry{
		MatchID:   matchID,
		PlayerID:  playerID,
		CreatedAt: util.Now(),
		Team:      team,
		Slot:      slot,
	}
}

func (m *MatchEntry) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("MatchEntry").SetMap(squirrel.Eq{
		"MatchID":   m.MatchID,
		"PlayerID":  m.PlayerID,
		"CreatedAt": m.CreatedAt,
		"Team":      m.Team,
		"Slot":      m.Slot,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func getEntriesByMatchIDs(tx *sqlx.Tx, ids []util.UUIDAsBlob) (map[util.UUIDAsBlob][]MatchEntry, error) {
	if len(ids) == 0 {
		return map[util.UUIDAsBlob][]MatchEntry{}, nil
	}

	query, args, err := sqlx.In(`
        SELECT * FROM MatchEntry
        WHERE MatchID IN(?)
        ORDER BY MatchEntry.Team ASC, MatchEntry.Slot ASC`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	query = tx.Rebind(query)

	var entries []MatchEntry
	if err := tx.Select(&entries, query, args...); err != nil {
		return nil, err
	}

	ret := make(map[util.UUIDAsBlob][]MatchEntry, len(ids))
	for _, v := range entries {
		ret[v.MatchID] = append(ret[v.MatchID], v)
	}

	return ret, nil
}
