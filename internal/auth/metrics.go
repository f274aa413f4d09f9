package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	resolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "elementar_auth_resolutions_total",
		Help: "Membership resolutions by access mode and outcome.",
	}, []string{"access", "outcome"})

	permissionDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "elementar_authz_permission_decisions_total",
		Help: "Permission guard decisions by required slug and outcome.",
	}, []string{"permission", "outcome"})
)
