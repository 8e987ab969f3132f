package web

import (
	"net/http"

	"courtside/internal/back"
	"courtside/internal/elo"
	"courtside/internal/util"
)

func (s *Server) getMatches(w http.ResponseWriter, r *http.Request) {
	limit, err := limitFromQuery(r)
	if err != nil {
		s.error(w, r, err)
		return
	}

	var (
		status   *back.MatchStatus
		playerID *util.UUIDAsBlob
	)

	q := r.URL.Query()
	if str := q.Get("status"); str != "" {
		v, err := back.ParseMatchStatus(str)
		if err != nil {
			s.error(w, r, err)
			return
		}
		status = &v
	}
	if str := q.Get("player"); str != "" {
		v, err := util.ParseUUIDAsBlob(str)
		if err != nil {
			s.error(w, r, err)
			return
		}
		playerID = &v
	}

	matches, err := s.back.GetMatches(r.Context(), status, playerID, limit)
	if err != nil {
		s.error(w, r, err)
		return
	}

	if matches == nil {
		matches = []back.Match{}
	}

	s.response(w, http.StatusOK, matches)
}

func (s *Server) getMatch(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r)
	if err != nil {
		s.error(w, r, err)
		return
	}

	match, err := s.back.GetMatchByID(r.Context(), id)
	if err != nil {
		s.error(w, r, err)
		return
	}

	s.response(w, http.StatusOK, match)
}

type submitRequest struct {
	ID     util.UUIDAsBlob
	Date   util.Date
	Score  string
	Winner elo.Side

	Team1, Team2           [2]util.UUIDAsBlob
	Team1Label, Team2Label string
	Tags                   []string
}

func (s *Server) postMatch(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decode(r, &req); err != nil {
		s.error(w, r, err)
		return
	}

	match, err := s.back.SubmitResult(r.Context(), back.SubmitRequest{
		MatchID:     req.ID,
		Date:        req.Date,
		Score:       req.Score,
		Winner:      req.Winner,
		SubmittedBy: actorFromRequest(r),
		Team1:       req.Team1,
		Team2:       req.Team2,
		Team1Label:  req.Team1Label,
		Team2Label:  req.Team2Label,
		Tags:        req.Tags,
	})
	if err != nil {
		s.error(w, r, err)
		return
	}

	s.response(w, http.StatusCreated, match)
}

func (s *Server) postConfirm(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r)
	if err != nil {
		s.error(w, r, err)
		return
	}

	match, err := s.back.ConfirmResult(r.Context(), id, actorFromRequest(r))
	if err != nil {
		s.error(w, r, err)
		return
	}

	s.response(w, http.StatusOK, match)
}

type disputeRequest struct {
	Reason string
}

func (s *Server) postDispute(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r)
	if err != nil {
		s.error(w, r, err)
		return
	}

	var req disputeRequest
	if err := decode(r, &req); err != nil {
		s.error(w, r, err)
		return
	}

	match, err := s.back.DisputeResult(r.Context(), id, actorFromRequest(r), req.Reason)
	if err != nil {
		s.error(w, r, err)
		return
	}

	s.response(w, http.StatusOK, match)
}

type previewRequest struct {
	Team1, Team2 [2]util.UUIDAsBlob
	Winner       elo.Side
}

func (s *Server) postPreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := decode(r, &req); err != nil {
		s.error(w, r, err)
		return
	}

	res, err := s.back.PreviewMatch(r.Context(), req.Team1, req.Team2, req.Winner)
	if err != nil {
		s.error(w, r, err)
		return
	}

	s.response(w, http.StatusOK, res)
}
