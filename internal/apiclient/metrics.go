package apiclient

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "github.com/Gilberthb/Umunsi-sub002/pkg/errors"
)

// Outcome is the terminal state of one request: Succeeded or one of the
// Failed variants. A request never ends in any other state.
type Outcome string

const (
	OutcomeSucceeded    Outcome = "succeeded"
	OutcomeNetworkError Outcome = "network_error"
	OutcomeHTTPError    Outcome = "http_error"
	OutcomeShapeError   Outcome = "shape_error"
	// OutcomeRejected covers calls that never left the process, such as
	// payloads that failed validation.
	OutcomeRejected Outcome = "rejected"
)

var (
	apiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsdesk_api_requests_total",
			Help: "CMS API calls by resource, method and outcome",
		},
		[]string{"resource", "method", "outcome"},
	)

	apiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newsdesk_api_request_duration_seconds",
			Help:    "CMS API call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"resource", "method"},
	)
)

// OutcomeOf classifies err into the request outcome it represents.
func OutcomeOf(err error) Outcome {
	return outcomeOf(err)
}

func outcomeOf(err error) Outcome {
	var httpErr *apperrors.HTTPError
	switch {
	case err == nil:
		return OutcomeSucceeded
	case errors.Is(err, apperrors.ErrNetwork):
		return OutcomeNetworkError
	case errors.Is(err, apperrors.ErrShape):
		return OutcomeShapeError
	case errors.As(err, &httpErr):
		return OutcomeHTTPError
	default:
		return OutcomeRejected
	}
}

func observe(resource, method string, outcome Outcome, d time.Duration) {
	apiRequestsTotal.WithLabelValues(resource, method, string(outcome)).Inc()
	apiRequestDuration.WithLabelValues(resource, method).Observe(d.Seconds())
}
