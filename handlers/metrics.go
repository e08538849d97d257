package handlers

import (
	"fmt"
	"net/http"

	"github.com/kscout/paper-submission-api/metrics"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsHandler exports custom API metrics. Requests are labeled with the
// template of the Router route they match, or "unmatched".
//
// The PanicHandler is the only other middleware handler that exports metrics.
// This is neccessary due to the nature of the metrics it collections.
type MetricsHandler struct {
	BaseHandler

	// Router resolves route templates
	Router *mux.Router

	// Handler will actually handle requests
	Handler http.Handler
}

// routePath returns the template of the router route r matches, which keeps the
// number of distinct path labels bounded
func routePath(router *mux.Router, r *http.Request) string {
	if router == nil {
		return "unmatched"
	}

	var match mux.RouteMatch
	if !router.Match(r, &match) || match.Route == nil {
		return "unmatched"
	}

	tpl, err := match.Route.GetPathTemplate()
	if err != nil {
		return "unmatched"
	}

	return tpl
}

// ServeHTTP will observe custom metrics and let the .Handler handle the request
func (h MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Pre-request metrics
	respCode := http.StatusOK

	// metricsW will be used as a ResponseWriter by all child handlers. We will
	// capture response HTTP codes using OnWriteHeader.
	metricsW := metrics.MetricsResponseWriter{
		ResponseWriter: w,
		OnWriteHeader: func(code int) {
			respCode = code
		},
	}

	durationTimer := h.Metrics.StartTimer()

	// Handle
	h.Handler.ServeHTTP(metricsW, r)

	// Post-request metrics
	durationTimer.Finish(h.Metrics.APIResponseDurationsMilliseconds.With(prometheus.Labels{
		"path":        routePath(h.Router, r),
		"method":      r.Method,
		"status_code": fmt.Sprintf("%d", respCode),
	}))
}
