package handlers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	shortenCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "linkshort_shorten_total",
		Help: "Short links created.",
	})
	redirectCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "linkshort_redirect_total",
		Help: "Successful redirects served.",
	})
)
