package core

import (
	"time"

	"github.com/navikt/brd-backend/pkg/service"
	"github.com/rs/zerolog"
)

type Services struct {
	BRDService     service.BRDService
	SessionService service.SessionService
}

// APIs holds the external collaborators of the pipeline, a nil API disables
// the corresponding optional stage.
type APIs struct {
	BRDAPI       service.BRDAPI
	NarrativeAPI service.NarrativeAPI
	DeliveryAPI  service.DeliveryAPI
	NotifierAPI  service.NotifierAPI
}

func NewServices(
	apis *APIs,
	sessionStorage service.SessionStorage,
	sessionMaxIdle time.Duration,
	metrics *Metrics,
	log zerolog.Logger,
) *Services {
	brdService := NewBRDService(
		apis.BRDAPI,
		apis.NarrativeAPI,
		apis.DeliveryAPI,
		apis.NotifierAPI,
		metrics,
		log.With().Str("service", "brd").Logger(),
	)

	return &Services{
		BRDService: brdService,
		SessionService: NewSessionService(
			sessionStorage,
			brdService,
			sessionMaxIdle,
			log.With().Str("service", "session").Logger(),
		),
	}
}
