package http

import (
	"fmt"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hyperterse/querygate/core/domain/interfaces"
	"github.com/hyperterse/querygate/core/infrastructure/auth"
	"github.com/hyperterse/querygate/core/infrastructure/logging"
	httpmiddleware "github.com/hyperterse/querygate/core/infrastructure/transport/http/middleware"
)

// Routes holds what the HTTP routes are served from
type Routes struct {
	QueryService  interfaces.QueryService
	Registry      interfaces.RegistrySource
	Authenticator *auth.Authenticator
	BaseURL       string
}

// RegisterRoutes registers all HTTP routes
func RegisterRoutes(r chi.Router, routes Routes) {
	log := logging.New("routes")
	log.Infof("Registering HTTP routes")

	var registered []string

	r.Group(func(r chi.Router) {
		r.Use(httpmiddleware.Authenticate(routes.Authenticator))
		r.Post("/query", handleQuery(routes.QueryService))
	})
	registered = append(registered, "POST /query")

	procedure, handler := newConnectHandler(routes.QueryService, routes.Authenticator)
	r.Handle(procedure, handler)
	registered = append(registered, fmt.Sprintf("POST %s (Connect)", procedure))

	r.Get("/docs", handleDocs(routes.Registry, routes.BaseURL))
	registered = append(registered, "GET /docs")

	r.Get("/heartbeat", handleHeartbeat)
	registered = append(registered, "GET /heartbeat")

	r.Handle("/metrics", promhttp.Handler())
	registered = append(registered, "GET /metrics")

	log.Infof("Routes registered: %d", len(registered))
	for _, route := range registered {
		log.Debugf("  %s", route)
	}
}
