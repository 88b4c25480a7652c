package booking

import "github.com/prometheus/client_golang/prometheus"

var (
	bookingAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vacationagent_booking_unit_total",
			Help: "Booking commit attempts per resource unit and outcome",
		},
		[]string{"unit", "outcome"},
	)

	stageTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vacationagent_stage_transitions_total",
			Help: "Booking stage transitions by event and resulting stage",
		},
		[]string{"event", "to"},
	)
)

func init() {
	prometheus.MustRegister(bookingAttempts)
	prometheus.MustRegister(stageTransitions)
}
