package hub

import (
	"context"
	"encoding/json"
	"log"

	nanoid "github.com/matoous/go-nanoid/v2"
	"github.com/redis/go-redis/v9"
)

const bridgeChannel = "mediverse:events"

// Bridge replicates relayed events across server instances through Redis
// pub/sub. Without it, an event emitted on instance A never reaches a member
// connected to instance B. Each instance tags what it publishes and skips its
// own envelopes on the way back in.
type Bridge struct {
	rdb        *redis.Client
	instanceID string
}

type wireEvent struct {
	Origin string `json:"origin"`
	Event  Event  `json:"event"`
}

func NewBridge(addr string) *Bridge {
	return &Bridge{
		rdb:        redis.NewClient(&redis.Options{Addr: addr}),
		instanceID: nanoid.Must(8),
	}
}

func (b *Bridge) Publish(ctx context.Context, ev Event) {
	data, err := json.Marshal(wireEvent{Origin: b.instanceID, Event: ev})
	if err != nil {
		log.Printf("bridge: failed to encode %s event: %v", ev.Type, err)
		return
	}

	if err := b.rdb.Publish(ctx, bridgeChannel, data).Err(); err != nil {
		log.Printf("bridge: publish failed: %v", err)
	}
}

// Listen relays envelopes published by other instances into the local hub.
// Blocks until ctx is cancelled; run it in its own goroutine.
func (b *Bridge) Listen(ctx context.Context, h *Hub) {
	pubsub := b.rdb.Subscribe(ctx, bridgeChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var we wireEvent
			if err := json.Unmarshal([]byte(msg.Payload), &we); err != nil {
				log.Printf("bridge: bad envelope: %v", err)
				continue
			}
			if we.Origin == b.instanceID {
				continue
			}
			h.relayRemote(we.Event)
		}
	}
}

func (b *Bridge) Close() error {
	return b.rdb.Close()
}
