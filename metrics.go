package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ingestCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "linksaver_ingest_total",
		Help: "Links processed by the ingest pipeline, by platform and outcome.",
	},
	[]string{"platform", "outcome"},
)
