package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pscheid92/messpulse/internal/domain"
)

const statusChannelPrefix = "busyness:"

func statusChannel(venueID string) string {
	return statusChannelPrefix + venueID
}

// StatusPubSub fans published venue statuses out across instances via
// Redis Pub/Sub. Each instance's WebSocket hub subscribes and forwards
// to its local clients. Delivery is at-most-once, no acknowledgment.
type StatusPubSub struct {
	rdb *goredis.Client
}

func NewStatusPubSub(rdb *goredis.Client) *StatusPubSub {
	return &StatusPubSub{rdb: rdb}
}

// PublishStatus publishes a status payload to the venue's channel.
func (ps *StatusPubSub) PublishStatus(ctx context.Context, status domain.VenueStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("marshal status: %w", err)
	}
	if err := ps.rdb.Publish(ctx, statusChannel(status.VenueID), data).Err(); err != nil {
		return fmt.Errorf("publish status failed: %w", err)
	}
	return nil
}

// Listen subscribes to all venue status channels and invokes handler
// for each update until ctx is cancelled. Malformed payloads are
// logged and skipped.
func (ps *StatusPubSub) Listen(ctx context.Context, handler func(venueID string, payload []byte)) error {
	sub := ps.rdb.PSubscribe(ctx, statusChannel("*"))
	defer func() { _ = sub.Close() }()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			venueID := strings.TrimPrefix(msg.Channel, statusChannelPrefix)
			if venueID == "" {
				slog.Warn("Ignoring status message with empty venue", "channel", msg.Channel)
				continue
			}
			handler(venueID, []byte(msg.Payload))
		}
	}
}
