package web

import (
	"context"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"courtside/internal/back"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var ratingStyle = chart.Style{ // nolint:gochecknoglobals
	FontColor:   drawing.ColorBlack,
	FillColor:   drawing.ColorFromHex("285577"),
	StrokeColor: drawing.ColorFromHex("4c7899"),
	StrokeWidth: 1,
}

// statsRatings renders the distribution of the club ratings.
func (s *Server) statsRatings(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { log.Printf("info: computed ratings stats in %s", time.Since(start)) }()

	bars, maxValue, err := s.getRatingsStats(r.Context(), ratingStyle)
	if err != nil {
		s.error(w, r, err)
		return
	}

	if len(bars) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	graph := chart.BarChart{
		Height: 300,
		Width:  600,
		Canvas: chart.Style{FillColor: chart.ColorTransparent},
		Background: chart.Style{
			FillColor: chart.ColorTransparent,
		},
		YAxis: chart.YAxis{
			Ticks: []chart.Tick{
				{Value: 0},
				{Value: maxValue},
			},
		},
		Bars: bars,
	}
	graph.BarWidth = (graph.Width - (len(bars) * graph.BarSpacing)) / len(bars)

	s.cache(w, "public", 1*time.Hour)
	w.Header().Set("Content-Type", "image/svg+xml")
	if err := graph.Render(chart.SVG, w); err != nil {
		log.Printf("error: unable to render ratings stats: %s", err)
	}
}

func (s *Server) getRatingsStats(
	ctx context.Context,
	barStyle chart.Style,
) (
	[]chart.Value, float64, error,
) {
	players, err := s.back.GetLeaderboard(ctx, math.MaxInt32)
	if err != nil {
		return nil, 0, err
	}

	bars, maxValue := ratingsHistogram(players, 100, barStyle)
	return bars, maxValue, nil
}

// ratingsHistogram bins the player ratings by binWidth rating units, values
// are the share of players in each bin.
func ratingsHistogram(players []back.Player, binWidth int, barStyle chart.Style) ([]chart.Value, float64) {
	if len(players) == 0 {
		return nil, 0
	}

	bins := make(map[int]int, 20)
	minBin, maxBin := math.MaxInt64, math.MinInt64
	maxValue := math.MinInt64

	for k := range players {
		r := int(math.Round(players[k].Rating/float64(binWidth)) * float64(binWidth))
		bins[r]++
		if r < minBin {
			minBin = r
		}
		if r > maxBin {
			maxBin = r
		}

		if bins[r] > maxValue {
			maxValue = bins[r]
		}
	}

	bars := make([]chart.Value, 0, len(bins))
	for i := minBin; i <= maxBin; i += binWidth {
		bars = append(bars, chart.Value{
			Value: float64(bins[i]) / float64(len(players)),
			Label: strconv.Itoa(i),
			Style: barStyle,
		})
	}

	return bars, float64(maxValue) / float64(len(players))
}
