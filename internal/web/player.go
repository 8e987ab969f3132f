package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"courtside/internal/back"
	"courtside/internal/util"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/go-chi/chi"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

func limitFromQuery(r *http.Request) (uint64, error) {
	str := r.URL.Query().Get("limit")
	if str == "" {
		return defaultListLimit, nil
	}

	limit, err := strconv.ParseUint(str, 10, 64)
	if err != nil || limit == 0 || limit > maxListLimit {
		return 0, fmt.Errorf("%w: limit must be between 1 and %d", back.ErrValidation, maxListLimit)
	}

	return limit, nil
}

func idFromURL(r *http.Request) (util.UUIDAsBlob, error) {
	return util.ParseUUIDAsBlob(chi.URLParam(r, "id"))
}

func (s *Server) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := limitFromQuery(r)
	if err != nil {
		s.error(w, r, err)
		return
	}

	players, err := s.back.GetLeaderboard(r.Context(), limit)
	if err != nil {
		s.error(w, r, err)
		return
	}

	s.cache(w, "public", 1*time.Minute)
	s.response(w, http.StatusOK, players)
}

type tierResponse struct {
	Tier           back.SkillTier
	StartingRating float64
}

func (s *Server) getTiers(w http.ResponseWriter, _ *http.Request) {
	tiers := []back.SkillTier{
		back.SkillTierBeginner,
		back.SkillTierIntermediate,
		back.SkillTierAdvanced,
		back.SkillTierPro,
	}

	ret := make([]tierResponse, 0, len(tiers))
	for _, v := range tiers {
		ret = append(ret, tierResponse{Tier: v, StartingRating: v.StartingRating()})
	}

	s.cache(w, "public", 24*time.Hour)
	s.response(w, http.StatusOK, ret)
}

func (s *Server) getPlayer(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r)
	if err != nil {
		s.error(w, r, err)
		return
	}

	player, err := s.back.GetPlayerByID(r.Context(), id)
	if err != nil {
		s.error(w, r, err)
		return
	}

	s.response(w, http.StatusOK, player)
}

func (s *Server) getMe(w http.ResponseWriter, r *http.Request) {
	player, err := s.back.GetPlayerByID(r.Context(), actorFromRequest(r))
	if err != nil {
		s.error(w, r, err)
		return
	}

	s.response(w, http.StatusOK, player)
}

type onboardingRequest struct {
	Name string
	Tier string
}

func (s *Server) postOnboarding(w http.ResponseWriter, r *http.Request) {
	var req onboardingRequest
	if err := decode(r, &req); err != nil {
		s.error(w, r, err)
		return
	}

	tier, err := back.ParseSkillTier(req.Tier)
	if err != nil {
		s.error(w, r, err)
		return
	}

	player, err := s.back.RegisterPlayer(r.Context(), actorFromRequest(r), req.Name, tier)
	if err != nil {
		s.error(w, r, err)
		return
	}

	s.response(w, http.StatusCreated, player)
}

// profileDocument is the part of a profile a player can edit with a JSON
// merge patch (RFC 7386).
type profileDocument struct {
	Name string
}

func (s *Server) patchMe(w http.ResponseWriter, r *http.Request) {
	actorID := actorFromRequest(r)
	player, err := s.back.GetPlayerByID(r.Context(), actorID)
	if err != nil {
		s.error(w, r, err)
		return
	}

	patch, err := readPatch(r)
	if err != nil {
		s.error(w, r, err)
		return
	}

	doc, err := applyProfilePatch(profileDocument{Name: player.Name}, patch)
	if err != nil {
		s.error(w, r, err)
		return
	}

	if doc.Name != player.Name {
		if err := s.back.RenamePlayer(r.Context(), actorID, doc.Name); err != nil {
			s.error(w, r, err)
			return
		}
	}

	s.getMe(w, r)
}

func readPatch(r *http.Request) ([]byte, error) {
	var raw json.RawMessage
	if err := decode(r, &raw); err != nil {
		return nil, err
	}

	return raw, nil
}

func applyProfilePatch(current profileDocument, patch []byte) (profileDocument, error) {
	original, err := json.Marshal(current)
	if err != nil {
		return profileDocument{}, err
	}

	patched, err := jsonpatch.MergePatch(original, patch)
	if err != nil {
		return profileDocument{}, fmt.Errorf("%w: invalid merge patch: %s", back.ErrValidation, err)
	}

	var ret profileDocument
	dec := json.NewDecoder(bytes.NewReader(patched))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ret); err != nil {
		return profileDocument{}, fmt.Errorf("%w: invalid profile: %s", back.ErrValidation, err)
	}

	return ret, nil
}

func (s *Server) getRatingHistory(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r)
	if err != nil {
		s.error(w, r, err)
		return
	}

	history, err := s.back.GetRatingHistory(r.Context(), id)
	if err != nil {
		s.error(w, r, err)
		return
	}

	if history == nil {
		history = []back.RatingChange{}
	}

	s.response(w, http.StatusOK, history)
}

func (s *Server) getPending(w http.ResponseWriter, r *http.Request) {
	matches, err := s.back.GetPendingMatchesForPlayer(r.Context(), actorFromRequest(r))
	if err != nil {
		s.error(w, r, err)
		return
	}

	if matches == nil {
		matches = []back.Match{}
	}

	s.response(w, http.StatusOK, matches)
}
