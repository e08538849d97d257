package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Routes holds the handlers which serve API endpoints
type Routes struct {
	// Checker serves check identity requests
	Checker EligibilityChecker

	// Submitter serves submit requests
	Submitter Submitter

	// Jobs receives completed submissions
	Jobs JobSubmitter

	// MetricsHandler serves Prometheus metrics
	MetricsHandler http.Handler
}

// NewRouter builds the API's http.Handler, including all middleware
func NewRouter(baseHandler BaseHandler, routes Routes) http.Handler {
	router := mux.NewRouter()

	router.PathPrefix("/").Methods(http.MethodOptions).Handler(PreFlightOptionsHandler{
		BaseHandler: baseHandler,
	})

	router.Handle("/health", HealthHandler{
		BaseHandler: baseHandler.GetChild("health"),
	}).Methods(http.MethodGet)

	router.Handle("/metrics", routes.MetricsHandler).Methods(http.MethodGet)

	router.Handle("/check-identity", CheckIdentityHandler{
		BaseHandler: baseHandler.GetChild("check-identity"),
		Checker:     routes.Checker,
	}).Methods(http.MethodPost)

	router.Handle("/submit", SubmitHandler{
		BaseHandler: baseHandler.GetChild("submit"),
		Submitter:   routes.Submitter,
		Jobs:        routes.Jobs,
	}).Methods(http.MethodPost)

	// Metrics wrap the router so unmatched requests are recorded too
	return PanicHandler{
		BaseHandler: baseHandler,
		Router:      router,
		Handler: ReqLoggerHandler{
			BaseHandler: baseHandler,
			Handler: CORSHandler{
				BaseHandler: baseHandler,
				Handler: MetricsHandler{
					BaseHandler: baseHandler,
					Router:      router,
					Handler:     router,
				},
			},
		},
	}
}
