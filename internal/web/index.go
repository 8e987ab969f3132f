package web

import (
	_ "embed" // API documentation
	"fmt"
	"net/http"
	"time"

	"github.com/russross/blackfriday/v2"
)

//go:embed docs/api.md
var apiDocumentation []byte

// index serves the API documentation.
func (s *Server) index(w http.ResponseWriter, _ *http.Request) {
	s.cache(w, "public", 1*time.Hour)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(
		w,
		"<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>Courtside API</title></head><body>\n%s</body></html>\n",
		blackfriday.Run(apiDocumentation),
	)
}
