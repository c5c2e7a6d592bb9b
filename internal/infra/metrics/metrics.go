// Package metrics holds the Prometheus instruments exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PurchasesRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dukan_purchases_recorded_total",
		Help: "Purchase entries accepted, merged or new.",
	})

	SalesRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dukan_sales_recorded_total",
		Help: "Sales committed to the ledger.",
	})

	UnitsSold = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dukan_units_sold_total",
		Help: "Units sold across all sales.",
	})

	ProfitIQD = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dukan_profit_iqd_total",
		Help: "Accumulated profit in IQD, from sale-time snapshots.",
	})
)
