package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MovesPlayed counts accepted moves by the color that played them.
	MovesPlayed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "goban_moves_played_total",
		Help: "Total accepted moves by color",
	}, []string{"color"})

	// IllegalMoves counts rejected moves by reason (occupied, suicide, ko, off_board).
	IllegalMoves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "goban_illegal_moves_total",
		Help: "Total rejected moves by reason",
	}, []string{"reason"})

	Commands = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "goban_commands_total",
		Help: "Total session commands by kind and whether the position changed",
	}, []string{"kind", "changed"})

	// TreeLoads counts game tree imports and restores by result.
	TreeLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "goban_tree_loads_total",
		Help: "Total game tree loads by result",
	}, []string{"result"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "goban_active_sessions",
		Help: "Number of sessions held in memory",
	})

	// LoadDuration tracks how long replaying a stored tree takes.
	LoadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "goban_tree_load_duration_seconds",
		Help:    "Game tree replay duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
	})
)
