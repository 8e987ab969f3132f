package web

import (
	"net/http"
	"time"
)

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	misc, err := s.back.GetMiscStats(r.Context())
	if err != nil {
		s.error(w, r, err)
		return
	}

	s.cache(w, "public", 5*time.Minute)
	s.response(w, http.StatusOK, misc)
}
