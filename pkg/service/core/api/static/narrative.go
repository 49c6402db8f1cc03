package static

import (
	"context"

	"github.com/navikt/brd-backend/pkg/service"
	"github.com/rs/zerolog"
)

const Model = "static"

type narrativeAPI struct {
	log zerolog.Logger
}

var _ service.NarrativeAPI = &narrativeAPI{}

// Draft echoes the prompt back.
func (a *narrativeAPI) Draft(_ context.Context, prompt string) (*service.Draft, error) {
	a.log.Info().Int("prompt_length", len(prompt)).Msg("drafting narrative")

	return &service.Draft{
		Text:  prompt,
		Model: Model,
	}, nil
}

func NewNarrativeAPI(log zerolog.Logger) *narrativeAPI {
	return &narrativeAPI{
		log: log,
	}
}
