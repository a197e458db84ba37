package services

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"campus-access-backend/internal/models"
)

// Instruments holds the engine counters exported on /metrics. A nil
// *Instruments is valid and records nothing.
type Instruments struct {
	accessDecisions *prometheus.CounterVec
	admissions      *prometheus.CounterVec
}

func NewInstruments(reg prometheus.Registerer) *Instruments {
	factory := promauto.With(reg)
	return &Instruments{
		accessDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campus",
			Name:      "access_decisions_total",
			Help:      "Access attempts by recorded access type.",
		}, []string{"access_type"}),
		admissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campus",
			Name:      "reservation_admissions_total",
			Help:      "Reservation admission attempts by outcome.",
		}, []string{"outcome"}),
	}
}

func (m *Instruments) accessDecision(t models.AccessType) {
	if m == nil {
		return
	}
	m.accessDecisions.WithLabelValues(string(t)).Inc()
}

// admission labels err by its service error code, "admitted" when nil.
func (m *Instruments) admission(err error) {
	if m == nil {
		return
	}
	outcome := "admitted"
	if err != nil {
		outcome = "error"
		var svcErr ServiceError
		if errors.As(err, &svcErr) {
			outcome = svcErr.Code
		}
	}
	m.admissions.WithLabelValues(outcome).Inc()
}
