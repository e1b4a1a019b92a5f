// Package metrics exposes Prometheus counters for the point economy. Counters
// are incremented after the owning database transaction commits, so a rolled
// back award never shows up here.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ReportsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "greencop_reports_submitted_total",
		Help: "Waste reports successfully created.",
	})

	WasteCollected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "greencop_waste_collected_total",
		Help: "Reports marked collected with a collection record.",
	})

	PointsAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "greencop_points_awarded_total",
		Help: "Points credited to users, by transaction type.",
	}, []string{"type"})

	PointsRedeemed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "greencop_points_redeemed_total",
		Help: "Points debited through reward redemptions.",
	})

	RedemptionsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "greencop_redemptions_rejected_total",
		Help: "Redemption attempts rejected for insufficient balance.",
	})
)

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
