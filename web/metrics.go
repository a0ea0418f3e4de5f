package web

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "conceptnet",
	Subsystem: "web",
	Name:      "requests_total",
	Help:      "HTTP requests served, by status class.",
}, []string{"code"})

func init() {
	prometheus.MustRegister(requestsTotal)
}

// statusClass buckets a status code as "2xx", "4xx" and so on.
func statusClass(status int) string {
	return strconv.Itoa(status/100) + "xx"
}
