package back

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"courtside/internal/util"

	"github.com/jmoiron/sqlx"
)

// StatsMisc holds miscellaneous stats about the club.
type StatsMisc struct {
	Players, ActivePlayers                            int
	MatchesCompleted, MatchesPending, MatchesDisputed int
	PointsExchanged                                   int
	AverageRating, HighestRating                      float64
	FirstMatch                                        util.NullTimeAsTimestamp
}

func (b *Back) GetMiscStats(ctx context.Context) (misc StatsMisc, _ error) {
	start := time.Now()
	defer func() { log.Printf("info: computed misc stats in %s", time.Since(start)) }()

	queries := []struct {
		Dst   interface{}
		Query string
		Args  []interface{}
	}{
		{&misc.Players, `SELECT COUNT(*) FROM Player`, nil},
		{&misc.ActivePlayers, `SELECT COUNT(*) FROM Player WHERE MatchesPlayed > 0`, nil},
		{
			&misc.MatchesCompleted,
			`SELECT COUNT(*) FROM Match WHERE Status = ?`,
			[]interface{}{MatchStatusCompleted},
		},
		{
			&misc.MatchesPending,
			`SELECT COUNT(*) FROM Match WHERE Status = ?`,
			[]interface{}{MatchStatusPendingConfirmation},
		},
		{
			&misc.MatchesDisputed,
			`SELECT COUNT(*) FROM Match WHERE Status = ?`,
			[]interface{}{MatchStatusDisputed},
		},
		{
			&misc.PointsExchanged,
			`SELECT COALESCE(SUM(ABS(EloChange)), 0) FROM Match WHERE Status = ?`,
			[]interface{}{MatchStatusCompleted},
		},
		{&misc.AverageRating, `SELECT COALESCE(AVG(Rating), 0) FROM Player`, nil},
		{&misc.HighestRating, `SELECT COALESCE(MAX(Rating), 0) FROM Player`, nil},
		{
			&misc.FirstMatch,
			`SELECT ResolvedAt FROM Match WHERE Status = ? ORDER BY ResolvedAt ASC LIMIT 1`,
			[]interface{}{MatchStatusCompleted},
		},
	}

	if err := b.transaction(ctx, func(tx *sqlx.Tx) error {
		for _, v := range queries {
			if err := tx.Get(v.Dst, v.Query, v.Args...); err != nil {
				// Ignore empty results, that's just an empty club.
				if !errors.Is(err, sql.ErrNoRows) {
					return err
				}
			}
		}

		return nil
	}); err != nil {
		return StatsMisc{}, err
	}

	return misc, nil
}
