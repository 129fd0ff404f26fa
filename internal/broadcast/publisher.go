package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/auctionhub/auctionhub-backend/pkg/logger"
)

// ChannelPublisher is the fan-out transport, satisfied by the redis client.
type ChannelPublisher interface {
	Publish(ctx context.Context, channel string, payload any) error
	AuctionChannel(eventID string) string
}

// Publisher fans engine events out to the per-event realtime channel.
// Publish failures are logged, never returned: realtime delivery is
// best-effort and must not affect auction state.
type Publisher interface {
	Publish(ctx context.Context, eventID uuid.UUID, messageType MessageType, data any)
}

type publisher struct {
	channels ChannelPublisher
	logg     *logger.Logger
}

// NewPublisher wires the realtime publisher.
func NewPublisher(channels ChannelPublisher, logg *logger.Logger) (Publisher, error) {
	if channels == nil {
		return nil, fmt.Errorf("channel publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &publisher{channels: channels, logg: logg}, nil
}

func (p *publisher) Publish(ctx context.Context, eventID uuid.UUID, messageType MessageType, data any) {
	message := Message{
		Type:       messageType,
		EventID:    eventID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
	encoded, err := json.Marshal(message)
	if err != nil {
		p.logg.Error(ctx, fmt.Sprintf("broadcast: encode %s", messageType), err)
		return
	}

	channel := p.channels.AuctionChannel(eventID.String())
	if err := p.channels.Publish(ctx, channel, encoded); err != nil {
		p.logg.Error(ctx, fmt.Sprintf("broadcast: publish %s to %s", messageType, channel), err)
	}
}
