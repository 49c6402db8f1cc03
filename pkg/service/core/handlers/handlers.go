package handlers

import (
	"github.com/navikt/brd-backend/pkg/service/core"
	"github.com/rs/zerolog"
)

type Handlers struct {
	BRDHandler     *BRDHandler
	SessionHandler *SessionHandler
}

func NewHandlers(s *core.Services, maxUploadBytes int64, log zerolog.Logger) *Handlers {
	return &Handlers{
		BRDHandler:     NewBRDHandler(s.BRDService, maxUploadBytes, log.With().Str("handler", "brd").Logger()),
		SessionHandler: NewSessionHandler(s.SessionService, maxUploadBytes, log.With().Str("handler", "session").Logger()),
	}
}
