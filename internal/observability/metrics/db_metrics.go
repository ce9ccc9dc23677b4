package metrics

import (
	"database/sql"
	"log"

	"github.com/prometheus/client_golang/prometheus"
)

func registerDBMetrics(db *sql.DB, logger *log.Logger) {
	tables := map[string]string{
		"consumption": "entsoe_consumption",
		"production":  "entsoe_production",
		"exchange":    "entsoe_exchange",
	}
	for kind, table := range tables {
		query := "SELECT COUNT(*) FROM " + table
		prometheus.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name:        metricPrefix + "stored_records",
				Help:        "Stored reconciled records",
				ConstLabels: prometheus.Labels{"kind": kind},
			},
			func() float64 {
				return queryCount(db, logger, query)
			},
		))
	}
}

func queryCount(db *sql.DB, logger *log.Logger, query string) float64 {
	if db == nil {
		return 0
	}
	var count int64
	if err := db.QueryRow(query).Scan(&count); err != nil {
		if logger != nil {
			logger.Printf("metrics query failed: %v", err)
		}
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}
