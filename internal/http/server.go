package http

import (
	"net/http"

	"github.com/mauv0809/courtside/internal/app"
	"github.com/mauv0809/courtside/internal/config"
	"github.com/mauv0809/courtside/internal/http/handlers"
	"github.com/mauv0809/courtside/internal/processor"
)

func NewServer(a *app.App, metricsHandler http.Handler, cfg config.Config, processor *processor.Processor) *Server {
	server := &Server{
		App:            a,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Processor:      processor,
		Router:         http.NewServeMux(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// Reads are open. Writes and the call sheet go through the coach gate.
	open := func(h http.Handler) http.Handler {
		return Chain(h, requestIDMiddleware, paramsMiddleware)
	}
	coach := func(h http.Handler) http.Handler {
		return Chain(h, requestIDMiddleware, paramsMiddleware, coachMiddleware(s.Cfg.CoachPassword))
	}
	a := s.App

	s.Router.Handle("GET /metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", open(handlers.HealthCheckHandler()))
	s.Router.Handle("GET /status", open(handlers.StatusHandler(a)))
	s.Router.Handle("POST /refresh", coach(handlers.RefreshHandler(a)))

	s.Router.Handle("GET /roster", open(handlers.ListRosterHandler(a)))
	s.Router.Handle("GET /roster/{id}", open(handlers.GetMemberHandler(a)))
	s.Router.Handle("POST /roster", coach(handlers.AddMemberHandler(a)))
	s.Router.Handle("PUT /roster/{id}", coach(handlers.UpdateMemberHandler(a)))
	s.Router.Handle("PUT /roster/{id}/attendance", coach(handlers.AttendanceShortcutHandler(a)))
	s.Router.Handle("DELETE /roster/{id}", coach(handlers.DeleteMemberHandler(a)))

	s.Router.Handle("GET /trainings", open(handlers.ListTrainingsHandler(a)))
	s.Router.Handle("GET /trainings/{id}", open(handlers.GetTrainingHandler(a)))
	s.Router.Handle("POST /trainings", coach(handlers.AddTrainingHandler(a)))
	s.Router.Handle("PUT /trainings/{id}", coach(handlers.UpdateTrainingHandler(a)))
	s.Router.Handle("DELETE /trainings/{id}", coach(handlers.DeleteTrainingHandler(a)))

	s.Router.Handle("GET /trainings/{id}/call", coach(handlers.GetCallHandler(a)))
	s.Router.Handle("POST /trainings/{id}/call", coach(handlers.StartCallHandler(a)))
	s.Router.Handle("POST /trainings/{id}/call/edit", coach(handlers.EditCallHandler(a)))
	s.Router.Handle("PUT /trainings/{id}/call/assignments", coach(handlers.AssignHandler(a)))
	s.Router.Handle("PUT /trainings/{id}/call/mode", coach(handlers.SetModeHandler(a)))
	s.Router.Handle("POST /trainings/{id}/call/next", coach(handlers.StepHandler(a, false)))
	s.Router.Handle("POST /trainings/{id}/call/previous", coach(handlers.StepHandler(a, true)))
	s.Router.Handle("POST /trainings/{id}/call/validate", coach(handlers.ValidateCallHandler(a)))
	s.Router.Handle("DELETE /trainings/{id}/call", coach(handlers.CancelCallHandler(a)))

	s.Router.Handle("GET /matches", open(handlers.ListMatchesHandler(a)))
	s.Router.Handle("GET /matches/{id}", open(handlers.GetMatchHandler(a)))
	s.Router.Handle("POST /matches", coach(handlers.AddMatchHandler(a)))
	s.Router.Handle("PUT /matches/{id}", coach(handlers.UpdateMatchHandler(a)))
	s.Router.Handle("DELETE /matches/{id}", coach(handlers.DeleteMatchHandler(a)))
	s.Router.Handle("PUT /matches/{id}/players", coach(handlers.SetPlayersHandler(a)))
	s.Router.Handle("POST /matches/{id}/players/{memberID}", coach(handlers.TogglePlayerHandler(a, false)))
	s.Router.Handle("DELETE /matches/{id}/players/{memberID}", coach(handlers.TogglePlayerHandler(a, true)))
	s.Router.Handle("PUT /matches/{id}/score", coach(handlers.ScoreHandler(a)))
	s.Router.Handle("PUT /matches/{id}/status", coach(handlers.MatchStatusHandler(a)))

	s.Router.Handle("GET /roles", open(handlers.ListRolesHandler(a)))
	s.Router.Handle("POST /roles", coach(handlers.AssignRoleHandler(a)))
	s.Router.Handle("DELETE /roles/{id}", coach(handlers.RemoveRoleHandler(a)))

	s.Router.Handle("GET /news", open(handlers.ListNewsHandler(a)))
	s.Router.Handle("POST /news", coach(handlers.AddNewsHandler(a)))
	s.Router.Handle("PUT /news", coach(handlers.SaveNewsHandler(a)))
	s.Router.Handle("DELETE /news/{id}", coach(handlers.RemoveNewsHandler(a)))

	s.Router.Handle("GET /stats/dashboard", open(handlers.DashboardHandler(a)))
	s.Router.Handle("GET /stats/players/{id}", open(handlers.PlayerStatsHandler(a)))
	s.Router.Handle("GET /stats/teams", open(handlers.TeamStatsHandler(a)))

	// Pub/Sub push subscriptions.
	s.Router.Handle("POST /events/{topic}", open(handlers.EventHandler(s.Processor)))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
