package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionAuthenticated = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "newsdesk_session_authenticated",
		Help: "1 while a user is signed in, 0 otherwise",
	})

	sessionRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsdesk_session_refresh_total",
			Help: "Identity refreshes by result",
		},
		[]string{"result"},
	)
)
