package routes

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/navikt/brd-backend/pkg/service/core/handlers"
	"github.com/navikt/brd-backend/pkg/service/core/transport"
	"github.com/rs/zerolog"
)

type BRDEndpoints struct {
	Schema  http.HandlerFunc
	Render  http.HandlerFunc
	Summary http.HandlerFunc
	Draft   http.HandlerFunc
	Submit  http.HandlerFunc
}

func NewBRDEndpoints(log zerolog.Logger, h *handlers.BRDHandler) *BRDEndpoints {
	return &BRDEndpoints{
		Schema:  transport.For(h.Schema).Build(log),
		Render:  transport.For(h.Render).RequestFromJSON().Build(log),
		Summary: transport.For(h.Summary).RequestFromJSON().Build(log),
		Draft:   transport.For(h.Draft).RequestFromJSON().Build(log),
		Submit:  transport.For(h.Submit).Build(log),
	}
}

func NewBRDRoutes(endpoints *BRDEndpoints) AddRoutesFn {
	return func(router chi.Router) {
		router.Route("/api/brd", func(r chi.Router) {
			r.Get("/schema", endpoints.Schema)
			r.Post("/render", endpoints.Render)
			r.Post("/summary", endpoints.Summary)
			r.Post("/draft", endpoints.Draft)
			r.Post("/submit", endpoints.Submit)
		})
	}
}
