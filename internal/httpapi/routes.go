package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DoyleJ11/gamesync/internal/ws"
)

func SetupRoutes(s *Server, relay *ws.Relay, gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Post("/games/{type}", CreateGame(s))
	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", ListSessions(s))
		r.Post("/", EnterSession(s))
		r.Get("/{id}", GetSession(s))
		r.Post("/{id}/ready", Ready(s))
		r.Post("/{id}/actions", SubmitAction(s))
		r.Delete("/{id}", LeaveSession(s))
	})
	r.Get("/ws", ws.Handler(s.Hub, relay, s.Log))
	return r
}
