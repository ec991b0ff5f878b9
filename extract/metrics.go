package extract

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// fallbackCounter counts fetcher misses per platform so chain health
// is visible without log spelunking.
var fallbackCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "linksaver_extract_fetcher_miss_total",
		Help: "Number of extraction fetcher misses, by platform and fetcher.",
	},
	[]string{"platform", "fetcher"},
)
