package back

import (
	"courtside/internal/util"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// A RatingChange is an immutable ledger entry written when a confirmed match
// changes a player rating. The history of a player is the ordered list of
// these entries, each OldRating being the NewRating of the previous one.
type RatingChange struct {
	ID        util.UUIDAsBlob
	PlayerID  util.UUIDAsBlob
	MatchID   util.UUIDAsBlob
	CreatedAt util.TimeAsTimestamp

	OldRating float64
	NewRating float64
}

func NewRatingChange(playerID, matchID util.UUIDAsBlob, oldRating, newRating float64) RatingChange {
	return RatingChange{
		ID:        util.NewUUIDAsBlob(),
		PlayerID:  playerID,
		MatchID:   matchID,
		CreatedAt: util.Now(),
		OldRating: oldRating,
		NewRating: newRating,
	}
}

// Delta returns the signed rating change.
func (c RatingChange) Delta() float64 {
	return c.NewRating - c.OldRating
}

func (c *RatingChange) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("RatingChange").SetMap(squirrel.Eq{
		"ID":        c.ID,
		"PlayerID":  c.PlayerID,
		"MatchID":   c.MatchID,
		"CreatedAt": c.CreatedAt,
		"OldRating": c.OldRating,
		"NewRating": c.NewRating,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

// getRatingHistory returns the ledger of a player, oldest first.
// Entries created in the same second are ordered by insertion.
func getRatingHistory(tx *sqlx.Tx, playerID util.UUIDAsBlob) ([]RatingChange, error) {
	query := `
        SELECT * FROM RatingChange
        WHERE RatingChange.PlayerID = ?
        ORDER BY RatingChange.CreatedAt ASC, RatingChange.rowid ASC`

	var ret []RatingChange
	if err := tx.Select(&ret, query, playerID); err != nil {
		return nil, err
	}

	return ret, nil
}
