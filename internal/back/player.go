package back

import (
	"context"
	"courtside/internal/util"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"gopkg.in/guregu/null.v4"
)

// SkillTier is the level players declare when joining the club, it only
// decides their starting rating.
type SkillTier int

const ( // this is stored in DB, don't change values
	SkillTierBeginner     SkillTier = 1
	SkillTierIntermediate SkillTier = 2
	SkillTierAdvanced     SkillTier = 3
	SkillTierPro          SkillTier = 4
)

func ParseSkillTier(str string) (SkillTier, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "beginner", "1":
		return SkillTierBeginner, nil
	case "intermediate", "2":
		return SkillTierIntermediate, nil
	case "advanced", "3":
		return SkillTierAdvanced, nil
	case "pro", "coach", "4":
		return SkillTierPro, nil
	default:
		return 0, fmt.Errorf(
			"%w: unknown level %q, expected beginner, intermediate, advanced, or pro",
			ErrValidation, str,
		)
	}
}

func (t SkillTier) Valid() bool {
	return t >= SkillTierBeginner && t <= SkillTierPro
}

// StartingRating returns the rating a new player of this tier starts with.
func (t SkillTier) StartingRating() float64 {
	switch t {
	case SkillTierIntermediate:
		return 1400
	case SkillTierAdvanced:
		return 1600
	case SkillTierPro:
		return 1800
	default:
		return 1200
	}
}

func (t SkillTier) String() string {
	switch t {
	case SkillTierBeginner:
		return "beginner"
	case SkillTierIntermediate:
		return "intermediate"
	case SkillTierAdvanced:
		return "advanced"
	case SkillTierPro:
		return "pro"
	default:
		return "invalid"
	}
}

func (t SkillTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// A Player is a club member, the owner of a rating.
type Player struct {
	ID        util.UUIDAsBlob
	CreatedAt util.TimeAsTimestamp
	Name      string
	DiscordID null.String `json:"-"`

	Tier          SkillTier
	Rating        float64
	Wins          int
	MatchesPlayed int
}

func NewPlayer(id util.UUIDAsBlob, name string, tier SkillTier) Player {
	if id.IsZero() {
		id = util.NewUUIDAsBlob()
	}

	return Player{
		ID:        id,
		CreatedAt: util.Now(),
		Name:      name,
		Tier:      tier,
		Rating:    tier.StartingRating(),
	}
}

func validatePlayerName(name string) error {
	if len(name) < 3 || len(name) > 32 {
		return fmt.Errorf("%w: your name must be between 3 and 32 characters", ErrValidation)
	}

	return nil
}

func (p *Player) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("Player").SetMap(squirrel.Eq{
		"ID":            p.ID,
		"CreatedAt":     p.CreatedAt,
		"Name":          p.Name,
		"DiscordID":     p.DiscordID,
		"Tier":          p.Tier,
		"Rating":        p.Rating,
		"Wins":          p.Wins,
		"MatchesPlayed": p.MatchesPlayed,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func (p *Player) update(tx *sqlx.Tx) error {
	query, args, err := squirrel.Update("Player").SetMap(squirrel.Eq{
		"Name":      p.Name,
		"DiscordID": p.DiscordID,
	}).Where("Player.ID = ?", p.ID).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

// updateRating persists the rating and match counters, it is only called
// when a match result is confirmed.
func (p *Player) updateRating(tx *sqlx.Tx) error {
	query, args, err := squirrel.Update("Player").SetMap(squirrel.Eq{
		"Rating":        p.Rating,
		"Wins":          p.Wins,
		"MatchesPlayed": p.MatchesPlayed,
	}).Where("Player.ID = ?", p.ID).ToSql()
	if err != nil {
		return err
	}

	res, err := tx.Exec(query, args...)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n != 1 {
		return fmt.Errorf("%w: player %s", ErrNotFound, p.ID)
	}

	return nil
}

func getPlayerByID(tx *sqlx.Tx, id util.UUIDAsBlob) (Player, error) {
	var ret Player
	query := `SELECT * FROM Player WHERE Player.ID = ? LIMIT 1`
	if err := tx.Get(&ret, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Player{}, fmt.Errorf("%w: player %s", ErrNotFound, id)
		}
		return Player{}, err
	}

	return ret, nil
}

func getPlayerByName(tx *sqlx.Tx, name string) (Player, error) {
	var ret Player
	query := `SELECT * FROM Player WHERE Player.Name = ? LIMIT 1`
	if err := tx.Get(&ret, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Player{}, fmt.Errorf("%w: no player named %q", ErrNotFound, name)
		}
		return Player{}, err
	}

	return ret, nil
}

// ensureNameAvailable returns an error if the name is taken or cannot be
// checked.
func ensureNameAvailable(tx *sqlx.Tx, name string) error {
	_, err := getPlayerByName(tx, name)
	switch {
	case err == nil:
		return fmt.Errorf("%w: the name %q is taken already", ErrValidation, name)
	case errors.Is(err, ErrNotFound):
		return nil
	default:
		return err
	}
}

// getPlayersByIDs returns the players indexed by their ID, it fails if any of
// the given IDs does not match a player.
func getPlayersByIDs(tx *sqlx.Tx, ids []util.UUIDAsBlob) (map[util.UUIDAsBlob]Player, error) {
	if len(ids) == 0 {
		return map[util.UUIDAsBlob]Player{}, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM Player WHERE ID IN(?)`, ids)
	if err != nil {
		return nil, err
	}
	query = tx.Rebind(query)

	players := make([]Player, 0, len(ids))
	if err := tx.Select(&players, query, args...); err != nil {
		return nil, err
	}

	ret := make(map[util.UUIDAsBlob]Player, len(players))
	for k := range players {
		ret[players[k].ID] = players[k]
	}

	for _, id := range ids {
		if _, ok := ret[id]; !ok {
			return nil, fmt.Errorf("%w: player %s", ErrNotFound, id)
		}
	}

	return ret, nil
}

// RegisterPlayer creates the profile of a player authenticated by the
// identity provider, id is the subject of their token.
func (b *Back) RegisterPlayer(ctx context.Context, id util.UUIDAsBlob, name string, tier SkillTier) (player Player, _ error) {
	name = strings.TrimSpace(name)
	if err := validatePlayerName(name); err != nil {
		return Player{}, err
	}
	if !tier.Valid() {
		return Player{}, fmt.Errorf("%w: invalid level", ErrValidation)
	}

	if err := b.transaction(ctx, func(tx *sqlx.Tx) error {
		if _, err := getPlayerByID(tx, id); err == nil {
			return fmt.Errorf("%w: you are already registered", ErrValidation)
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}

		if err := ensureNameAvailable(tx, name); err != nil {
			return err
		}

		player = NewPlayer(id, name, tier)
		return player.insert(tx)
	}); err != nil {
		return Player{}, err
	}

	return player, nil
}

func (b *Back) RenamePlayer(ctx context.Context, id util.UUIDAsBlob, name string) error {
	name = strings.TrimSpace(name)

	return b.transaction(ctx, func(tx *sqlx.Tx) error {
		player, err := getPlayerByID(tx, id)
		if err != nil {
			return err
		}

		if player.Name == name {
			return fmt.Errorf("%w: that's your name already", ErrValidation)
		}

		if err := validatePlayerName(name); err != nil {
			return err
		}

		if err := ensureNameAvailable(tx, name); err != nil {
			return err
		}

		player.Name = name
		return player.update(tx)
	})
}

func (b *Back) GetPlayerByID(ctx context.Context, id util.UUIDAsBlob) (player Player, _ error) {
	if err := b.transaction(ctx, func(tx *sqlx.Tx) (err error) {
		player, err = getPlayerByID(tx, id)
		return err
	}); err != nil {
		return Player{}, err
	}

	return player, nil
}

// GetLeaderboard returns the players sorted by rating, best first.
func (b *Back) GetLeaderboard(ctx context.Context, limit uint64) (players []Player, _ error) {
	query, args, err := squirrel.Select("*").From("Player").
		OrderBy("Rating DESC", "Name ASC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, err
	}

	if err := b.transaction(ctx, func(tx *sqlx.Tx) error {
		return tx.Select(&players, query, args...)
	}); err != nil {
		return nil, err
	}

	return players, nil
}

func getPlayerRating(tx *sqlx.Tx, id util.UUIDAsBlob) (float64, error) {
	player, err := getPlayerByID(tx, id)
	if err != nil {
		return 0, err
	}

	return player.Rating, nil
}

func getPlayerByDiscordID(tx *sqlx.Tx, discordID string) (Player, error) {
	var ret Player
	query := `SELECT * FROM Player WHERE Player.DiscordID = ? LIMIT 1`
	if err := tx.Get(&ret, query, discordID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Player{}, fmt.Errorf("%w: you are not registered, use `!register`", ErrNotFound)
		}
		return Player{}, err
	}

	return ret, nil
}

func (b *Back) GetPlayerByDiscordID(ctx context.Context, discordID string) (player Player, _ error) {
	if err := b.transaction(ctx, func(tx *sqlx.Tx) (err error) {
		player, err = getPlayerByDiscordID(tx, discordID)
		return err
	}); err != nil {
		return Player{}, err
	}

	return player, nil
}

func (b *Back) GetPlayerByName(ctx context.Context, name string) (player Player, _ error) {
	if err := b.transaction(ctx, func(tx *sqlx.Tx) (err error) {
		player, err = getPlayerByName(tx, strings.TrimSpace(name))
		return err
	}); err != nil {
		return Player{}, err
	}

	return player, nil
}

// RegisterDiscordPlayer creates the profile of a player joining from Discord.
func (b *Back) RegisterDiscordPlayer(ctx context.Context, discordID, name string, tier SkillTier) (player Player, _ error) {
	name = strings.TrimSpace(name)
	if err := validatePlayerName(name); err != nil {
		return Player{}, err
	}
	if !tier.Valid() {
		return Player{}, fmt.Errorf("%w: invalid level", ErrValidation)
	}

	if err := b.transaction(ctx, func(tx *sqlx.Tx) error {
		if _, err := getPlayerByDiscordID(tx, discordID); err == nil {
			return fmt.Errorf("%w: you are already registered", ErrValidation)
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}

		if err := ensureNameAvailable(tx, name); err != nil {
			return err
		}

		player = NewPlayer(util.UUIDAsBlob{}, name, tier)
		player.DiscordID = null.StringFrom(discordID)
		return player.insert(tx)
	}); err != nil {
		return Player{}, err
	}

	log.Printf("info: registered Discord player %s (%s) as %s", player.Name, player.ID, player.Tier)

	return player, nil
}
