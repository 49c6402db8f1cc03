package static

import (
	"context"
	"sync"

	"github.com/navikt/brd-backend/pkg/service"
	"github.com/rs/zerolog"
)

// deliveryAPI logs deliveries instead of sending them, for local development.
type deliveryAPI struct {
	recipient string
	log       zerolog.Logger

	mu        sync.Mutex
	delivered []*service.Delivery
}

var _ service.DeliveryAPI = &deliveryAPI{}

func (a *deliveryAPI) Deliver(_ context.Context, delivery *service.Delivery) error {
	names := make([]string, len(delivery.Attachments))
	for i, att := range delivery.Attachments {
		names[i] = att.FileName
	}

	a.log.Info().
		Str("recipient", a.recipient).
		Str("subject", delivery.Subject).
		Strs("attachments", names).
		Msg("delivering submission")

	a.mu.Lock()
	defer a.mu.Unlock()

	a.delivered = append(a.delivered, delivery)

	return nil
}

func (a *deliveryAPI) Recipient() string {
	return a.recipient
}

// Delivered returns every delivery seen so far.
func (a *deliveryAPI) Delivered() []*service.Delivery {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]*service.Delivery, len(a.delivered))
	copy(out, a.delivered)

	return out
}

func NewDeliveryAPI(recipient string, log zerolog.Logger) *deliveryAPI {
	return &deliveryAPI{
		recipient: recipient,
		log:       log,
	}
}
