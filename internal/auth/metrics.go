package auth

import "github.com/prometheus/client_golang/prometheus"

var (
	refreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vacationagent_credential_refresh_total",
			Help: "Total credential refresh attempts by outcome (success, failure)",
		},
		[]string{"outcome"},
	)

	refreshCollapsedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vacationagent_credential_refresh_collapsed_total",
			Help: "Renewal requests that joined an already in-flight refresh instead of issuing their own",
		},
	)
)

func init() {
	prometheus.MustRegister(refreshTotal)
	prometheus.MustRegister(refreshCollapsedTotal)
}
