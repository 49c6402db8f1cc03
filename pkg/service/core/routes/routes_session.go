package routes

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/navikt/brd-backend/pkg/service/core/handlers"
	"github.com/navikt/brd-backend/pkg/service/core/transport"
	"github.com/rs/zerolog"
)

type SessionEndpoints struct {
	CreateSession http.HandlerFunc
	GetSession    http.HandlerFunc
	UpdateFields  http.HandlerFunc
	AppendRow     http.HandlerFunc
	UpdateRow     http.HandlerFunc
	ImportRows    http.HandlerFunc
	Document      http.HandlerFunc
	Draft         http.HandlerFunc
	Submit        http.HandlerFunc
}

func NewSessionEndpoints(log zerolog.Logger, h *handlers.SessionHandler) *SessionEndpoints {
	return &SessionEndpoints{
		CreateSession: transport.For(h.CreateSession).Build(log),
		GetSession:    transport.For(h.GetSession).Build(log),
		UpdateFields:  transport.For(h.UpdateFields).RequestFromJSON().Build(log),
		AppendRow:     transport.For(h.AppendRow).Build(log),
		UpdateRow:     transport.For(h.UpdateRow).RequestFromJSON().Build(log),
		ImportRows:    transport.For(h.ImportRows).RequestFromText().Build(log),
		Document:      transport.For(h.Document).Build(log),
		Draft:         transport.For(h.Draft).Build(log),
		Submit:        transport.For(h.Submit).Build(log),
	}
}

func NewSessionRoutes(endpoints *SessionEndpoints) AddRoutesFn {
	return func(router chi.Router) {
		router.Route("/api/sessions", func(r chi.Router) {
			r.Post("/", endpoints.CreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", endpoints.GetSession)
				r.Put("/fields", endpoints.UpdateFields)
				r.Get("/document", endpoints.Document)
				r.Post("/draft", endpoints.Draft)
				r.Post("/submit", endpoints.Submit)
				r.Route("/tables/{kind}", func(r chi.Router) {
					r.Post("/rows", endpoints.AppendRow)
					r.Patch("/rows/{index}", endpoints.UpdateRow)
					r.Post("/csv", endpoints.ImportRows)
				})
			})
		})
	}
}
