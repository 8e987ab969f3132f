package web

import (
	"context"
	"courtside/internal/util"
	"errors"
	"log"
	"net/http"
	"strings"
)

type ctxKey int

const ctxKeyActorID ctxKey = iota

var errUnauthenticated = util.ErrPublic("missing or invalid bearer token")

// authenticator resolves the actor from the bearer token issued by the
// identity provider, requests without a valid token are anonymous.
func (s *Server) authenticator(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actorID, err := s.actorFromHeader(r)
		if err != nil {
			log.Printf("debug: bearer auth: %s", err)
		}

		h.ServeHTTP(w, r.WithContext(withActorID(r.Context(), actorID)))
	})
}

func (s *Server) actorFromHeader(r *http.Request) (util.UUIDAsBlob, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		// anonymous, ignore successfully
		return util.UUIDAsBlob{}, nil
	}

	if !strings.HasPrefix(header, "Bearer ") {
		return util.UUIDAsBlob{}, errors.New("not a bearer token")
	}

	subject, err := s.config.ParseToken(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return util.UUIDAsBlob{}, err
	}

	return util.ParseUUIDAsBlob(subject)
}

func withActorID(ctx context.Context, id util.UUIDAsBlob) context.Context {
	return context.WithValue(ctx, ctxKeyActorID, id)
}

// actorFromRequest returns the authenticated player ID, zero for anonymous
// requests.
func actorFromRequest(r *http.Request) util.UUIDAsBlob {
	id, _ := r.Context().Value(ctxKeyActorID).(util.UUIDAsBlob)
	return id
}

func (s *Server) requireActor(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if actorFromRequest(r).IsZero() {
			w.Header().Set("WWW-Authenticate", `Bearer realm="courtside"`)
			s.error(w, r, errUnauthenticated)
			return
		}

		h.ServeHTTP(w, r)
	})
}
