package service

import (
	"context"
	"errors"

	"github.com/alexanderramin/orgdir/internal/domain"
	"github.com/alexanderramin/orgdir/internal/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metricsUseCaseObserver struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetricsUseCaseObserver registers use-case counters and latency
// histograms with reg. Pass prometheus.DefaultRegisterer in production and a
// fresh registry in tests.
func NewMetricsUseCaseObserver(reg prometheus.Registerer) UseCaseObserver {
	factory := promauto.With(reg)
	return &metricsUseCaseObserver{
		calls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orgdir",
			Subsystem: "service",
			Name:      "use_cases_total",
			Help:      "Total number of service use cases broken down by name and outcome.",
		}, []string{"use_case", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "orgdir",
			Subsystem: "service",
			Name:      "use_case_duration_seconds",
			Help:      "Service use case latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"use_case"}),
	}
}

func (o *metricsUseCaseObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	o.calls.WithLabelValues(event.Name, outcomeLabel(event.Err)).Inc()
	o.duration.WithLabelValues(event.Name).Observe(event.Duration.Seconds())
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrStructuralIntegrity):
		return "integrity_error"
	case errors.Is(err, repository.ErrNotFound):
		return "not_found"
	case domain.IsValidationError(err):
		return "rejected"
	default:
		return "error"
	}
}
