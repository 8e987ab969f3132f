package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"courtside/internal/back"
	"courtside/internal/config"
	"courtside/internal/util"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(s.authenticator)

	r.Get("/", s.index)
	r.Get("/stats/ratings.svg", s.statsRatings)

	r.Route("/api", func(r chi.Router) {
		r.Get("/leaderboard", s.getLeaderboard)
		r.Get("/stats", s.getStats)
		r.Get("/onboarding/tiers", s.getTiers)
		r.Post("/preview", s.postPreview)

		r.Get("/players/{id}", s.getPlayer)
		r.Get("/players/{id}/history", s.getRatingHistory)
		r.Get("/players/{id}/history.svg", s.getRatingHistoryChart)

		r.Get("/matches", s.getMatches)
		r.Get("/matches/{id}", s.getMatch)

		r.Group(func(r chi.Router) {
			r.Use(s.requireActor)

			r.Post("/players", s.postOnboarding)
			r.Get("/me", s.getMe)
			r.Patch("/me", s.patchMe)
			r.Get("/me/pending", s.getPending)

			r.Post("/matches", s.postMatch)
			r.Post("/matches/{id}/confirm", s.postConfirm)
			r.Post("/matches/{id}/dispute", s.postDispute)
		})
	})

	return r
}

// shutdownTimeout bounds the time given to in-flight requests on shutdown.
const shutdownTimeout = 10 * time.Second

type Server struct {
	http   *http.Server
	back   *back.Back
	config *config.Config
}

func NewServer(back *back.Back, conf *config.Config) *Server {
	s := &Server{
		back:   back,
		config: conf,
	}

	s.http = &http.Server{
		Addr:         conf.HTTPAddress,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  10 * time.Second,
		Handler:      s.setupRouter(),
	}

	return s
}

func (s *Server) Serve(wg *sync.WaitGroup, done <-chan struct{}) {
	log.Printf("info: starting HTTP server on %s", s.http.Addr)
	defer wg.Done()

	go func() {
		err := s.http.ListenAndServe()
		if err == http.ErrServerClosed {
			log.Println("info: HTTP server closed")
			return
		}

		log.Fatalf("webserver crashed: %s", err)
	}()

	<-done
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(ctx); err != nil {
		log.Printf("warning: unable to gracefully stop webserver: %s", err)
	}
}

func (s *Server) response(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	response, err := json.Marshal(data)
	if err != nil {
		log.Printf("error: unable to marshal response: %s", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(code)

	if _, err := w.Write(response); err != nil {
		log.Printf("error: unable to send response: %s", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// error sends err to the client if it is public, and a generic message
// otherwise. The status code is derived from the error.
func (s *Server) error(w http.ResponseWriter, r *http.Request, err error) {
	code := errorStatusCode(err)
	msg := http.StatusText(code)
	if util.IsPublic(err) {
		msg = err.Error()
	}

	if code >= http.StatusInternalServerError {
		log.Printf("error: %s %s: %s", r.Method, r.URL.Path, err)
	} else {
		log.Printf("debug: %s %s: %s", r.Method, r.URL.Path, err)
	}

	s.response(w, code, errorResponse{Error: msg})
}

func errorStatusCode(err error) int {
	switch {
	case errors.Is(err, errUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, back.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, back.ErrInvalidStateTransition):
		return http.StatusConflict
	case errors.Is(err, back.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, back.ErrValidation), util.IsPublic(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) cache(w http.ResponseWriter, scope string, d time.Duration) {
	w.Header().Set("Cache-Control", fmt.Sprintf("%s,max-age=%d", scope, d/time.Second))
}

// decode reads a JSON request body into dst.
func decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed request body: %s", back.ErrValidation, err)
	}

	return nil
}
