package web

import (
	"log"
	"math"
	"net/http"
	"time"

	"courtside/internal/back"

	chart "github.com/wcharczuk/go-chart/v2"
)

// getRatingHistoryChart renders the rating of a player over time.
func (s *Server) getRatingHistoryChart(w http.ResponseWriter, r *http.Request) {
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

	history, err := s.back.GetRatingHistory(r.Context(), id)
	if err != nil {
		s.error(w, r, err)
		return
	}

	xs, ys := ratingSeries(player, history, time.Now())
	low, high := ys[0], ys[0]
	for _, v := range ys {
		low, high = math.Min(low, v), math.Max(high, v)
	}

	graph := chart.Chart{
		Title:  player.Name,
		Height: 300,
		Width:  600,
		Canvas: chart.Style{FillColor: chart.ColorTransparent},
		Background: chart.Style{
			FillColor: chart.ColorTransparent,
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: low - 25, Max: high + 25},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name: "Rating",
				Style: chart.Style{
					StrokeColor: ratingStyle.StrokeColor,
					StrokeWidth: 2,
				},
				XValues: xs,
				YValues: ys,
			},
		},
	}

	s.cache(w, "public", 5*time.Minute)
	w.Header().Set("Content-Type", "image/svg+xml")
	if err := graph.Render(chart.SVG, w); err != nil {
		log.Printf("error: unable to render rating history: %s", err)
	}
}

// ratingSeries returns the points of the rating history of a player, starting
// with their onboarding rating and ending now. There are always at least two
// points.
func ratingSeries(player back.Player, history []back.RatingChange, now time.Time) ([]time.Time, []float64) {
	xs := make([]time.Time, 0, len(history)+2)
	ys := make([]float64, 0, len(history)+2)

	initial := player.Rating
	if len(history) > 0 {
		initial = history[0].OldRating
	}
	xs = append(xs, player.CreatedAt.Time())
	ys = append(ys, initial)

	for _, v := range history {
		xs = append(xs, v.CreatedAt.Time())
		ys = append(ys, v.NewRating)
	}

	xs = append(xs, now)
	ys = append(ys, player.Rating)

	return xs, ys
}
