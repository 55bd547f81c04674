package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics — счётчики Prometheus приложения.
type Metrics struct {
	ItemsCreated      prometheus.Counter
	ClaimsSubmitted   prometheus.Counter
	ClaimsApproved    prometheus.Counter
	ClaimsRejected    prometheus.Counter
	ImageAccessDenied prometheus.Counter
}

// New создаёт и регистрирует счётчики в переданном Registerer.
// Тесты передают собственный prometheus.NewRegistry, чтобы не конфликтовать
// с глобальной регистрацией.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ItemsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "lostfound_items_created_total",
			Help: "Total number of lost/found items reported",
		}),
		ClaimsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "lostfound_claims_submitted_total",
			Help: "Total number of ownership claims submitted",
		}),
		ClaimsApproved: factory.NewCounter(prometheus.CounterOpts{
			Name: "lostfound_claims_approved_total",
			Help: "Total number of claims approved by item owners",
		}),
		ClaimsRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "lostfound_claims_rejected_total",
			Help: "Total number of claims rejected by item owners",
		}),
		ImageAccessDenied: factory.NewCounter(prometheus.CounterOpts{
			Name: "lostfound_image_access_denied_total",
			Help: "Total number of denied secure-image requests",
		}),
	}
}
