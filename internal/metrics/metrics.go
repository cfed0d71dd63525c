package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	CMSRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ephemera", Name: "cms_requests_total", Help: "Number of CMS queries by query name and outcome."},
		[]string{"query", "outcome"},
	)
	PagesRendered = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ephemera", Name: "pages_rendered_total", Help: "Number of pages rendered by kind and state."},
		[]string{"kind", "state"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ephemera", Name: "http_requests_total", Help: "Number of HTTP requests by route and status."},
		[]string{"route", "status"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(CMSRequests)
	reg.MustRegister(PagesRendered)
	reg.MustRegister(HTTPRequests)
}
